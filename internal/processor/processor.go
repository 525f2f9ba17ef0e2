// FILE: internal/processor/processor.go
package processor

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode"

	"chesscore/internal/core"
	"chesscore/internal/engine"
	"chesscore/internal/game"
	"chesscore/internal/service"
)

const (
	minSearchTime   = 100
	shutdownTimeout = 5 * time.Second
)

// Config selects the move-search collaborator
type Config struct {
	Workers     int
	NewSearcher SearcherFactory // nil plays random moves
}

// DefaultConfig drives Stockfish from PATH with two workers
func DefaultConfig() Config {
	return Config{
		Workers: 2,
		NewSearcher: func() (engine.Searcher, error) {
			return engine.NewUCI(engine.DefaultPath)
		},
	}
}

// Processor handles command execution and coordinates between service and engine layers
type Processor struct {
	svc    *service.Service
	queue  *EngineQueue
	random *engine.Random // fallback when a search returns nothing usable
}

// New creates a processor with its engine worker pool
func New(svc *service.Service, cfg Config) *Processor {
	return &Processor{
		svc:    svc,
		queue:  NewEngineQueue(cfg.Workers, cfg.NewSearcher),
		random: engine.NewRandom(uint64(time.Now().UnixNano())),
	}
}

func (p *Processor) Execute(cmd Command) ProcessorResponse {
	switch cmd.Type {
	case CmdCreateGame:
		return p.handleCreateGame(cmd)
	case CmdConfigurePlayers:
		return p.handleConfigurePlayers(cmd)
	case CmdGetGame:
		return p.handleGetGame(cmd)
	case CmdMakeMove:
		return p.handleMakeMove(cmd)
	case CmdUndoMove:
		return p.handleUndoMove(cmd)
	case CmdDeleteGame:
		return p.handleDeleteGame(cmd)
	case CmdGetBoard:
		return p.handleGetBoard(cmd)
	case CmdGetLegalMoves:
		return p.handleGetLegalMoves(cmd)
	case CmdResetGame:
		return p.handleResetGame(cmd)
	default:
		return p.errorResponse("unknown command", core.ErrInvalidRequest)
	}
}

// isMoveSafe checks coordinate notation: [a-h][1-8][a-h][1-8] with an
// optional trailing 'q', and no control characters
func (p *Processor) isMoveSafe(move string) bool {
	for _, r := range move {
		if unicode.IsControl(r) {
			return false
		}
	}

	if len(move) < 4 || len(move) > 5 {
		return false
	}

	if move[0] < 'a' || move[0] > 'h' ||
		move[1] < '1' || move[1] > '8' ||
		move[2] < 'a' || move[2] > 'h' ||
		move[3] < '1' || move[3] > '8' {
		return false
	}

	// Promotion is always to a queen
	if len(move) == 5 && move[4] != 'q' {
		return false
	}

	return true
}

// normalizeConfig enforces the minimum search time for computer players
func normalizeConfig(c core.PlayerConfig) core.PlayerConfig {
	if c.Type == core.PlayerComputer && c.SearchTime < minSearchTime {
		c.SearchTime = minSearchTime
	}
	return c
}

// handleCreateGame creates a new game at the starting position
func (p *Processor) handleCreateGame(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.CreateGameRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	gameID := p.svc.GenerateGameID()
	whitePlayer := core.NewPlayer(normalizeConfig(args.White), core.ColorWhite)
	blackPlayer := core.NewPlayer(normalizeConfig(args.Black), core.ColorBlack)

	if err := p.svc.CreateGame(gameID, whitePlayer, blackPlayer); err != nil {
		return p.errorResponse(fmt.Sprintf("failed to create game: %v", err), core.ErrInternalError)
	}

	return p.gameResponse(gameID, false)
}

// handleConfigurePlayers updates player configuration mid-game
func (p *Processor) handleConfigurePlayers(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.ConfigurePlayersRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	whitePlayer := core.NewPlayer(normalizeConfig(args.White), core.ColorWhite)
	blackPlayer := core.NewPlayer(normalizeConfig(args.Black), core.ColorBlack)

	if err := p.svc.UpdatePlayers(cmd.GameID, whitePlayer, blackPlayer); err != nil {
		if errors.Is(err, service.ErrSearchPending) {
			return p.errorResponse("cannot change players while computer is calculating", core.ErrInvalidRequest)
		}
		return p.serviceError(err)
	}

	return p.gameResponse(cmd.GameID, false)
}

func (p *Processor) handleGetGame(cmd Command) ProcessorResponse {
	return p.gameResponse(cmd.GameID, false)
}

// handleMakeMove processes human moves and "cccc" computer move requests
func (p *Processor) handleMakeMove(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.MoveRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	snap, err := p.svc.GetGame(cmd.GameID)
	if err != nil {
		return p.serviceError(err)
	}

	switch {
	case snap.State == core.StatePending:
		return p.errorResponse("computer move in progress", core.ErrInvalidRequest)
	case snap.State.IsOver():
		return p.errorResponse(fmt.Sprintf("game is over: %s", snap.State), core.ErrGameOver)
	}

	next := snap.NextPlayer()

	move := strings.ToLower(strings.TrimSpace(args.Move))
	if move == ComputerMove {
		if next.Type != core.PlayerComputer {
			return p.errorResponse("not computer player's turn", core.ErrNotHumanTurn)
		}
		return p.triggerComputerMove(cmd.GameID)
	}

	if next.Type != core.PlayerHuman {
		return p.errorResponse("not human player's turn", core.ErrNotHumanTurn)
	}

	if !p.isMoveSafe(move) {
		return p.errorResponse("invalid move format", core.ErrInvalidMove)
	}

	if _, err := p.svc.MakeMove(cmd.GameID, move); err != nil {
		return p.serviceError(err)
	}

	return p.gameResponse(cmd.GameID, false)
}

// triggerComputerMove marks the game pending and queues the search. The
// result is applied only while the ticket is still outstanding.
func (p *Processor) triggerComputerMove(gameID string) ProcessorResponse {
	in, err := p.svc.BeginSearch(gameID)
	if err != nil {
		return p.serviceError(err)
	}

	req := engine.SearchRequest{
		Moves:      in.Moves,
		Legal:      in.Legal,
		Level:      in.Player.Level,
		SearchTime: in.Player.SearchTime,
	}

	err = p.queue.SubmitAsync(gameID, in.Ticket, req, func(result EngineResult) {
		p.completeComputerMove(gameID, in, result)
	})
	if err != nil {
		if ferr := p.svc.FailSearch(gameID, in.Ticket); ferr != nil {
			log.Printf("Discarded queue failure for game %s: %v", gameID, ferr)
		}
		return p.errorResponse(fmt.Sprintf("failed to queue computer move: %v", err), core.ErrResourceLimit)
	}

	resp := p.gameResponse(gameID, true)
	if data, ok := resp.Data.(core.GameResponse); ok {
		data.LastMove = &core.MoveInfo{PlayerColor: in.Player.Color.String()}
		resp.Data = data
	}
	return resp
}

func (p *Processor) completeComputerMove(gameID string, in service.SearchInput, result EngineResult) {
	if result.Error != nil {
		log.Printf("Engine error for game %s: %v", gameID, result.Error)
		if err := p.svc.FailSearch(gameID, in.Ticket); err != nil {
			log.Printf("Discarded engine error for game %s: %v", gameID, err)
		}
		return
	}

	move, fallback := result.Search.BestMove, false
	if !result.Search.Found(in.Legal) {
		move, fallback = p.random.Pick(in.Legal), true
		log.Printf("Engine returned %q for game %s, playing random move %s", result.Search.BestMove, gameID, move)
	}

	if _, err := p.svc.CompleteSearch(gameID, in.Ticket, move, fallback, result.Search.Score, result.Search.Depth); err != nil {
		// Deleted, undone or reset while searching
		log.Printf("Discarded computer move %s for game %s: %v", move, gameID, err)
	}
}

func (p *Processor) handleUndoMove(cmd Command) ProcessorResponse {
	args := core.UndoRequest{Count: 1}
	if req, ok := cmd.Args.(core.UndoRequest); ok {
		args = req
	}

	if err := p.svc.UndoMoves(cmd.GameID, args.Count); err != nil {
		return p.serviceError(err)
	}

	return p.gameResponse(cmd.GameID, false)
}

func (p *Processor) handleResetGame(cmd Command) ProcessorResponse {
	if err := p.svc.ResetGame(cmd.GameID); err != nil {
		return p.serviceError(err)
	}
	return p.gameResponse(cmd.GameID, false)
}

// handleDeleteGame removes a game; a pending search result is discarded
func (p *Processor) handleDeleteGame(cmd Command) ProcessorResponse {
	if err := p.svc.DeleteGame(cmd.GameID); err != nil {
		return p.serviceError(err)
	}

	return ProcessorResponse{
		Success: true,
	}
}

// handleGetBoard returns board visualization
func (p *Processor) handleGetBoard(cmd Command) ProcessorResponse {
	snap, err := p.svc.GetGame(cmd.GameID)
	if err != nil {
		return p.serviceError(err)
	}

	return ProcessorResponse{
		Success: true,
		Data: core.BoardResponse{
			Board: snap.Board.ToASCII(),
			Turn:  snap.Turn.String(),
		},
	}
}

func (p *Processor) handleGetLegalMoves(cmd Command) ProcessorResponse {
	snap, err := p.svc.GetGame(cmd.GameID)
	if err != nil {
		return p.serviceError(err)
	}

	return ProcessorResponse{
		Success: true,
		Data: core.LegalMovesResponse{
			GameID: cmd.GameID,
			Moves:  snap.LegalMoves,
			SAN:    snap.LegalSAN,
		},
	}
}

func (p *Processor) gameResponse(gameID string, pending bool) ProcessorResponse {
	snap, err := p.svc.GetGame(gameID)
	if err != nil {
		return p.serviceError(err)
	}

	return ProcessorResponse{
		Success: true,
		Pending: pending,
		Data:    BuildGameResponse(gameID, snap),
	}
}

// BuildGameResponse constructs the standard game response
func BuildGameResponse(gameID string, snap game.Snapshot) core.GameResponse {
	white, black := snap.White, snap.Black
	resp := core.GameResponse{
		GameID:  gameID,
		Turn:    snap.Turn.String(),
		State:   snap.State.String(),
		InCheck: snap.InCheck,
		Moves:   snap.Moves,
		History: snap.History,
		Players: core.PlayersResponse{
			White: &white,
			Black: &black,
		},
	}

	if result := snap.LastResult; result != nil {
		resp.LastMove = &core.MoveInfo{
			Move:        result.Move,
			Notation:    result.Notation,
			PlayerColor: result.PlayerColor.String(),
			Score:       result.Score,
			Depth:       result.Depth,
			Fallback:    result.Fallback,
		}
	}

	return resp
}

// serviceError maps service and game errors to transport error codes
func (p *Processor) serviceError(err error) ProcessorResponse {
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		return p.errorResponse("game not found", core.ErrGameNotFound)
	case errors.Is(err, game.ErrIllegalMove):
		return p.errorResponse("illegal move", core.ErrInvalidMove)
	case errors.Is(err, game.ErrGameOver):
		return p.errorResponse("game is over", core.ErrGameOver)
	case errors.Is(err, service.ErrSearchPending):
		return p.errorResponse("computer move in progress", core.ErrInvalidRequest)
	case errors.Is(err, game.ErrNothingToUndo):
		return p.errorResponse(err.Error(), core.ErrInvalidRequest)
	default:
		return p.errorResponse(err.Error(), core.ErrInvalidRequest)
	}
}

// errorResponse creates error response
func (p *Processor) errorResponse(message, code string) ProcessorResponse {
	return ProcessorResponse{
		Success: false,
		Error: &core.ErrorResponse{
			Error: message,
			Code:  code,
		},
	}
}

// Close stops the engine workers
func (p *Processor) Close() error {
	return p.queue.Shutdown(shutdownTimeout)
}
