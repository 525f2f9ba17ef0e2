package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"chesscore/internal/core"
	"chesscore/internal/processor"
	"chesscore/internal/service"

	"github.com/gofiber/fiber/v2"
)

type testServer struct {
	app *fiber.App
	svc *service.Service
}

func newTestServer(t *testing.T, devMode bool) *testServer {
	t.Helper()
	svc, err := service.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	proc := processor.New(svc, processor.Config{Workers: 1})
	t.Cleanup(func() {
		proc.Close()
		svc.Shutdown(time.Second)
	})
	return &testServer{app: NewFiberApp(proc, svc, devMode), svc: svc}
}

// do sends a request and decodes a JSON body into out when out is non-nil
func (s *testServer) do(t *testing.T, method, path, body string, out any) int {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.app.Test(req, 5000)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func (s *testServer) createGame(t *testing.T, black core.PlayerType) string {
	t.Helper()
	var game core.GameResponse
	body := fmt.Sprintf(`{"white":{"type":1},"black":{"type":%d,"level":3,"searchTime":100}}`, black)
	if code := s.do(t, "POST", "/api/v1/games", body, &game); code != fiber.StatusCreated {
		t.Fatalf("create game status = %d, want %d", code, fiber.StatusCreated)
	}
	return game.GameID
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, true)
	var health map[string]any
	if code := s.do(t, "GET", "/health", "", &health); code != fiber.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if health["status"] != "healthy" {
		t.Errorf("status = %v, want healthy", health["status"])
	}
	if health["storage"] != "disabled" {
		t.Errorf("storage = %v, want disabled", health["storage"])
	}
}

func TestGameLifecycle(t *testing.T) {
	s := newTestServer(t, true)
	id := s.createGame(t, core.PlayerHuman)

	var game core.GameResponse
	if code := s.do(t, "POST", "/api/v1/games/"+id+"/moves", `{"move":"e2e4"}`, &game); code != fiber.StatusOK {
		t.Fatalf("move status = %d", code)
	}
	if game.Turn != "b" || len(game.Moves) != 1 || game.History[0] != "e4" {
		t.Errorf("after e2e4: turn=%s moves=%v history=%v", game.Turn, game.Moves, game.History)
	}

	var legal core.LegalMovesResponse
	if code := s.do(t, "GET", "/api/v1/games/"+id+"/moves", "", &legal); code != fiber.StatusOK {
		t.Fatalf("legal moves status = %d", code)
	}
	if len(legal.Moves) != 20 || len(legal.SAN) != 20 {
		t.Errorf("black has %d moves (%d SAN), want 20", len(legal.Moves), len(legal.SAN))
	}

	var board core.BoardResponse
	if code := s.do(t, "GET", "/api/v1/games/"+id+"/board", "", &board); code != fiber.StatusOK {
		t.Fatalf("board status = %d", code)
	}
	if board.Turn != "b" || board.Board == "" {
		t.Errorf("board = %+v", board)
	}

	// Empty undo body means one move
	if code := s.do(t, "POST", "/api/v1/games/"+id+"/undo", "", &game); code != fiber.StatusOK {
		t.Fatalf("undo status = %d", code)
	}
	if len(game.Moves) != 0 || game.Turn != "w" {
		t.Errorf("after undo: turn=%s moves=%v", game.Turn, game.Moves)
	}

	if code := s.do(t, "DELETE", "/api/v1/games/"+id, "", nil); code != fiber.StatusNoContent {
		t.Fatalf("delete status = %d", code)
	}
	var apiErr core.ErrorResponse
	if code := s.do(t, "GET", "/api/v1/games/"+id, "", &apiErr); code != fiber.StatusNotFound {
		t.Fatalf("get deleted status = %d", code)
	}
	if apiErr.Code != core.ErrGameNotFound {
		t.Errorf("code = %s, want %s", apiErr.Code, core.ErrGameNotFound)
	}
}

func TestRequestErrors(t *testing.T) {
	s := newTestServer(t, true)
	id := s.createGame(t, core.PlayerHuman)

	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		wantCode int
		wantErr  string
	}{
		{"illegal move", "POST", "/api/v1/games/" + id + "/moves", `{"move":"e2e5"}`, fiber.StatusBadRequest, core.ErrInvalidMove},
		{"underpromotion", "POST", "/api/v1/games/" + id + "/moves", `{"move":"e2e4n"}`, fiber.StatusBadRequest, core.ErrInvalidMove},
		{"missing move", "POST", "/api/v1/games/" + id + "/moves", `{}`, fiber.StatusBadRequest, core.ErrInvalidRequest},
		{"malformed json", "POST", "/api/v1/games/" + id + "/moves", `{"move":`, fiber.StatusBadRequest, core.ErrInvalidRequest},
		{"bad player type", "POST", "/api/v1/games", `{"white":{"type":3},"black":{"type":1}}`, fiber.StatusBadRequest, core.ErrInvalidRequest},
		{"undo count zero", "POST", "/api/v1/games/" + id + "/undo", `{"count":0}`, fiber.StatusBadRequest, core.ErrInvalidRequest},
		{"nothing to undo", "POST", "/api/v1/games/" + id + "/undo", `{"count":1}`, fiber.StatusBadRequest, core.ErrInvalidRequest},
		{"computer move on human turn", "POST", "/api/v1/games/" + id + "/moves", `{"move":"cccc"}`, fiber.StatusBadRequest, core.ErrNotHumanTurn},
		{"invalid uuid", "GET", "/api/v1/games/not-a-uuid", "", fiber.StatusBadRequest, core.ErrInvalidRequest},
		{"unknown game", "GET", "/api/v1/games/00000000-0000-4000-8000-000000000000", "", fiber.StatusNotFound, core.ErrGameNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var apiErr core.ErrorResponse
			if code := s.do(t, tt.method, tt.path, tt.body, &apiErr); code != tt.wantCode {
				t.Fatalf("status = %d, want %d (%+v)", code, tt.wantCode, apiErr)
			}
			if apiErr.Code != tt.wantErr {
				t.Errorf("code = %s, want %s", apiErr.Code, tt.wantErr)
			}
		})
	}
}

func TestContentType(t *testing.T) {
	s := newTestServer(t, true)
	req := httptest.NewRequest("POST", "/api/v1/games", strings.NewReader("white=1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusUnsupportedMediaType {
		t.Errorf("status = %d, want %d", resp.StatusCode, fiber.StatusUnsupportedMediaType)
	}
}

func TestLongPoll(t *testing.T) {
	s := newTestServer(t, true)
	id := s.createGame(t, core.PlayerHuman)

	// A stale move count returns at once
	var game core.GameResponse
	start := time.Now()
	if code := s.do(t, "GET", "/api/v1/games/"+id+"?wait=true&moveCount=5", "", &game); code != fiber.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("stale move count waited %v", elapsed)
	}

	go func() {
		time.Sleep(100 * time.Millisecond)
		s.svc.MakeMove(id, "d2d4")
	}()

	if code := s.do(t, "GET", "/api/v1/games/"+id+"?wait=true&moveCount=0", "", &game); code != fiber.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if len(game.Moves) != 1 || game.Moves[0] != "d2d4" {
		t.Errorf("woke with moves %v, want [d2d4]", game.Moves)
	}
}

func TestComputerMove(t *testing.T) {
	s := newTestServer(t, true)
	id := s.createGame(t, core.PlayerComputer)

	var game core.GameResponse
	if code := s.do(t, "POST", "/api/v1/games/"+id+"/moves", `{"move":"e2e4"}`, &game); code != fiber.StatusOK {
		t.Fatalf("move status = %d", code)
	}

	if code := s.do(t, "POST", "/api/v1/games/"+id+"/moves", `{"move":"cccc"}`, &game); code != fiber.StatusAccepted {
		t.Fatalf("cccc status = %d, want %d", code, fiber.StatusAccepted)
	}

	deadline := time.Now().Add(4 * time.Second)
	for len(game.Moves) < 2 && time.Now().Before(deadline) {
		if code := s.do(t, "GET", "/api/v1/games/"+id+"?wait=true&moveCount=1", "", &game); code != fiber.StatusOK {
			t.Fatalf("poll status = %d", code)
		}
	}
	if len(game.Moves) != 2 {
		t.Fatalf("computer did not move: %v", game.Moves)
	}
	if game.Turn != "w" || game.State != "ongoing" {
		t.Errorf("turn=%s state=%s, want w ongoing", game.Turn, game.State)
	}
	if game.LastMove == nil || game.LastMove.PlayerColor != "b" || game.LastMove.Move != game.Moves[1] {
		t.Errorf("last move = %+v, want black's %s", game.LastMove, game.Moves[1])
	}
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, false)
	limited := false
	for i := 0; i < rateLimitRate+5; i++ {
		req := httptest.NewRequest("GET", "/api/v1/games/not-a-uuid", nil)
		resp, err := s.app.Test(req)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode == fiber.StatusTooManyRequests {
			limited = true
			break
		}
	}
	if !limited {
		t.Errorf("no request was rate limited after %d requests", rateLimitRate+5)
	}
}
