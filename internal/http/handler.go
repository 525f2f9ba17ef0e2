// FILE: internal/http/handler.go
package http

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"chesscore/internal/core"
	"chesscore/internal/processor"
	"chesscore/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const rateLimitRate = 10 // req/sec

var errValidationBypass = errors.New("validation bypass detected")

type HTTPHandler struct {
	proc *processor.Processor
	svc  *service.Service
}

func NewHTTPHandler(proc *processor.Processor, svc *service.Service) *HTTPHandler {
	return &HTTPHandler{proc: proc, svc: svc}
}

func NewFiberApp(proc *processor.Processor, svc *service.Service, devMode bool) *fiber.App {
	h := NewHTTPHandler(proc, svc)

	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: service.WaitTimeout + 5*time.Second, // long-poll responses
		IdleTimeout:  30 * time.Second,
	})

	// Global middleware (order matters)
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Health check (no rate limit)
	app.Get("/health", h.Health)

	api := app.Group("/api/v1")

	// Rate limiter: 10/20 req/sec per IP
	maxReq := rateLimitRate
	if devMode {
		maxReq = rateLimitRate * 2
	}
	api.Use(limiter.New(limiter.Config{
		Max:        maxReq,
		Expiration: 1 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			// First hop of X-Forwarded-For, else the peer address
			if xff := c.Get("X-Forwarded-For"); xff != "" {
				if idx := strings.Index(xff, ","); idx != -1 {
					return strings.TrimSpace(xff[:idx])
				}
				return xff
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(core.ErrorResponse{
				Error:   "rate limit exceeded",
				Code:    core.ErrRateLimitExceeded,
				Details: fmt.Sprintf("%d requests per second allowed", maxReq),
			})
		},
	}))

	api.Use(contentTypeValidator)
	api.Use(validationMiddleware)

	api.Post("/games", h.CreateGame)
	api.Put("/games/:gameId/players", h.ConfigurePlayers)
	api.Get("/games/:gameId", h.GetGame)
	api.Delete("/games/:gameId", h.DeleteGame)
	api.Post("/games/:gameId/moves", h.MakeMove)
	api.Get("/games/:gameId/moves", h.GetLegalMoves)
	api.Post("/games/:gameId/undo", h.UndoMove)
	api.Get("/games/:gameId/board", h.GetBoard)

	return app
}

// customErrorHandler provides consistent error responses
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	response := core.ErrorResponse{
		Error: "internal server error",
		Code:  core.ErrInternalError,
	}

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		response.Error = e.Message

		switch code {
		case fiber.StatusNotFound:
			response.Code = core.ErrGameNotFound
		case fiber.StatusBadRequest, fiber.StatusMethodNotAllowed:
			response.Code = core.ErrInvalidRequest
		case fiber.StatusTooManyRequests:
			response.Code = core.ErrRateLimitExceeded
		}
	} else if errors.Is(err, errValidationBypass) {
		response.Error = err.Error()
	}

	return c.Status(code).JSON(response)
}

// statusFor maps a processor error code to an HTTP status
func statusFor(code string) int {
	switch code {
	case core.ErrGameNotFound:
		return fiber.StatusNotFound
	case core.ErrResourceLimit:
		return fiber.StatusServiceUnavailable
	case core.ErrInternalError:
		return fiber.StatusInternalServerError
	default:
		return fiber.StatusBadRequest
	}
}

// respond writes a processor response with the given success status
func respond(c *fiber.Ctx, resp processor.ProcessorResponse, okStatus int) error {
	if !resp.Success {
		return c.Status(statusFor(resp.Error.Code)).JSON(resp.Error)
	}
	if resp.Data == nil {
		return c.SendStatus(okStatus)
	}
	return c.Status(okStatus).JSON(resp.Data)
}

// gameID returns the route game ID, writing a 400 response when it is not a UUID
func gameID(c *fiber.Ctx) (string, bool) {
	id := c.Params("gameId")
	if !isValidUUID(id) {
		c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "invalid game ID format",
			Code:    core.ErrInvalidRequest,
			Details: "game ID must be a valid UUID",
		})
		return "", false
	}
	return id, true
}

// Health check endpoint
func (h *HTTPHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"time":    time.Now().Unix(),
		"storage": h.svc.GetStorageHealth(),
	})
}

// CreateGame creates a new game with specified player types
func (h *HTTPHandler) CreateGame(c *fiber.Ctx) error {
	req, ok := validatedBody[core.CreateGameRequest](c)
	if !ok {
		return errValidationBypass
	}

	resp := h.proc.Execute(processor.NewCreateGameCommand(req))
	return respond(c, resp, fiber.StatusCreated)
}

// ConfigurePlayers updates player configuration mid-game
func (h *HTTPHandler) ConfigurePlayers(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return nil
	}
	req, ok := validatedBody[core.ConfigurePlayersRequest](c)
	if !ok {
		return errValidationBypass
	}

	resp := h.proc.Execute(processor.NewConfigurePlayersCommand(id, req))
	return respond(c, resp, fiber.StatusOK)
}

// GetGame retrieves current game state. With wait=true it long-polls until
// the move count moves past moveCount, the game changes state, or the wait
// times out.
func (h *HTTPHandler) GetGame(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return nil
	}

	if c.Query("wait") == "true" {
		moveCount, err := strconv.Atoi(c.Query("moveCount", "-1"))
		if err != nil {
			moveCount = -1
		}

		notify, err := h.svc.RegisterWait(c.Context(), id, moveCount)
		if err != nil {
			return respond(c, h.proc.Execute(processor.NewGetGameCommand(id)), fiber.StatusOK)
		}

		select {
		case <-notify:
		case <-c.Context().Done():
			return nil
		}
	}

	// Game might have been deleted while waiting
	return respond(c, h.proc.Execute(processor.NewGetGameCommand(id)), fiber.StatusOK)
}

// MakeMove submits a move, "cccc" asks the computer to move
func (h *HTTPHandler) MakeMove(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return nil
	}
	req, ok := validatedBody[core.MoveRequest](c)
	if !ok {
		return errValidationBypass
	}

	resp := h.proc.Execute(processor.NewMakeMoveCommand(id, req))
	if resp.Success && resp.Pending {
		return respond(c, resp, fiber.StatusAccepted)
	}
	return respond(c, resp, fiber.StatusOK)
}

// GetLegalMoves lists the legal moves of the current position
func (h *HTTPHandler) GetLegalMoves(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return nil
	}
	return respond(c, h.proc.Execute(processor.NewGetLegalMovesCommand(id)), fiber.StatusOK)
}

// UndoMove undoes one or more moves
func (h *HTTPHandler) UndoMove(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return nil
	}
	req, ok := validatedBody[core.UndoRequest](c)
	if !ok {
		return errValidationBypass
	}

	return respond(c, h.proc.Execute(processor.NewUndoMoveCommand(id, req)), fiber.StatusOK)
}

// DeleteGame ends and cleans up a game
func (h *HTTPHandler) DeleteGame(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return nil
	}
	return respond(c, h.proc.Execute(processor.NewDeleteGameCommand(id)), fiber.StatusNoContent)
}

// GetBoard returns ASCII representation of the board
func (h *HTTPHandler) GetBoard(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return nil
	}
	return respond(c, h.proc.Execute(processor.NewGetBoardCommand(id)), fiber.StatusOK)
}
