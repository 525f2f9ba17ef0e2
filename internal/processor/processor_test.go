package processor

import (
	"context"
	"errors"
	"testing"
	"time"

	"chesscore/internal/core"
	"chesscore/internal/engine"
	"chesscore/internal/service"
)

// stubSearcher answers every search with best, or err, optionally after
// blocking until released or cancelled
type stubSearcher struct {
	best    string
	err     error
	release chan struct{}
}

func (s *stubSearcher) Search(ctx context.Context, req engine.SearchRequest) (*engine.SearchResult, error) {
	if s.release != nil {
		select {
		case <-s.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return &engine.SearchResult{BestMove: s.best, Score: 25, Depth: 9}, nil
}

func (s *stubSearcher) Close() error { return nil }

func newTestProcessor(t *testing.T, s engine.Searcher) (*Processor, *service.Service) {
	t.Helper()
	svc, err := service.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	cfg := Config{Workers: 1}
	if s != nil {
		cfg.NewSearcher = func() (engine.Searcher, error) { return s, nil }
	}
	p := New(svc, cfg)
	t.Cleanup(func() {
		p.Close()
		svc.Shutdown(time.Second)
	})
	return p, svc
}

func createGame(t *testing.T, p *Processor, white, black core.PlayerType) string {
	t.Helper()
	resp := p.Execute(NewCreateGameCommand(core.CreateGameRequest{
		White: core.PlayerConfig{Type: white},
		Black: core.PlayerConfig{Type: black, Level: 5},
	}))
	if !resp.Success {
		t.Fatalf("create game failed: %+v", resp.Error)
	}
	return resp.Data.(core.GameResponse).GameID
}

func move(p *Processor, id, mv string) ProcessorResponse {
	return p.Execute(NewMakeMoveCommand(id, core.MoveRequest{Move: mv}))
}

// waitForMoves blocks until the game has n moves or is no longer pending
func waitForMoves(t *testing.T, svc *service.Service, id string, n int) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		snap, err := svc.GetGame(id)
		if err != nil {
			t.Fatal(err)
		}
		if snap.MoveCount == n || snap.State != core.StatePending {
			return
		}
		ch, err := svc.RegisterWait(context.Background(), id, snap.MoveCount)
		if err != nil {
			t.Fatal(err)
		}
		select {
		case <-ch:
		case <-deadline:
			t.Fatalf("timed out waiting for %d moves", n)
		}
	}
}

func TestHumanMoves(t *testing.T) {
	p, _ := newTestProcessor(t, nil)
	id := createGame(t, p, core.PlayerHuman, core.PlayerHuman)

	resp := move(p, id, " E2E4 ")
	if !resp.Success {
		t.Fatalf("move e2e4 failed: %+v", resp.Error)
	}
	data := resp.Data.(core.GameResponse)
	if data.Turn != "b" || len(data.Moves) != 1 || data.History[0] != "e4" {
		t.Errorf("response after e2e4 = %+v", data)
	}

	tests := []struct {
		move string
		code string
	}{
		{"e2e4", core.ErrInvalidMove},
		{"e7e8r", core.ErrInvalidMove},
		{"z9z9", core.ErrInvalidMove},
		{"e7\x00e5", core.ErrInvalidMove},
		{ComputerMove, core.ErrNotHumanTurn},
	}
	for _, tt := range tests {
		resp := move(p, id, tt.move)
		if resp.Success || resp.Error.Code != tt.code {
			t.Errorf("move %q = %+v, want code %s", tt.move, resp.Error, tt.code)
		}
	}
}

func TestFoolsMateEndsGame(t *testing.T) {
	p, _ := newTestProcessor(t, nil)
	id := createGame(t, p, core.PlayerHuman, core.PlayerHuman)
	for _, mv := range []string{"f2f3", "e7e5", "g2g4", "d8h4"} {
		if resp := move(p, id, mv); !resp.Success {
			t.Fatalf("move %s failed: %+v", mv, resp.Error)
		}
	}

	resp := p.Execute(NewGetGameCommand(id))
	data := resp.Data.(core.GameResponse)
	if data.State != core.StateBlackWins.String() || !data.InCheck {
		t.Errorf("state = %q, inCheck = %v", data.State, data.InCheck)
	}
	if resp := move(p, id, "a2a3"); resp.Success || resp.Error.Code != core.ErrGameOver {
		t.Errorf("move after mate = %+v, want GAME_OVER", resp.Error)
	}

	legal := p.Execute(NewGetLegalMovesCommand(id)).Data.(core.LegalMovesResponse)
	if len(legal.Moves) != 0 {
		t.Errorf("legal moves after mate = %v", legal.Moves)
	}
}

func TestComputerMove(t *testing.T) {
	p, svc := newTestProcessor(t, &stubSearcher{best: "e7e5"})
	id := createGame(t, p, core.PlayerHuman, core.PlayerComputer)

	if resp := move(p, id, "e2e4"); !resp.Success {
		t.Fatalf("e2e4 failed: %+v", resp.Error)
	}
	resp := move(p, id, ComputerMove)
	if !resp.Success || !resp.Pending {
		t.Fatalf("computer move = %+v, want pending success", resp)
	}

	waitForMoves(t, svc, id, 2)

	data := p.Execute(NewGetGameCommand(id)).Data.(core.GameResponse)
	if len(data.Moves) != 2 || data.Moves[1] != "e7e5" {
		t.Fatalf("moves = %v, want [e2e4 e7e5]", data.Moves)
	}
	if data.LastMove == nil || data.LastMove.Score != 25 || data.LastMove.Depth != 9 || data.LastMove.Fallback {
		t.Errorf("last move = %+v", data.LastMove)
	}
	if data.State != core.StateOngoing.String() {
		t.Errorf("state = %q, want ongoing", data.State)
	}
}

func TestComputerMoveFallback(t *testing.T) {
	for _, best := range []string{engine.NoMove, "", "a1a8"} {
		t.Run(best, func(t *testing.T) {
			p, svc := newTestProcessor(t, &stubSearcher{best: best})
			id := createGame(t, p, core.PlayerComputer, core.PlayerHuman)

			if resp := move(p, id, ComputerMove); !resp.Success {
				t.Fatalf("computer move failed: %+v", resp.Error)
			}
			waitForMoves(t, svc, id, 1)

			data := p.Execute(NewGetGameCommand(id)).Data.(core.GameResponse)
			if len(data.Moves) != 1 {
				t.Fatalf("moves = %v, want one random move", data.Moves)
			}
			if data.LastMove == nil || !data.LastMove.Fallback {
				t.Errorf("last move = %+v, want fallback", data.LastMove)
			}
		})
	}
}

func TestComputerMoveError(t *testing.T) {
	p, svc := newTestProcessor(t, &stubSearcher{err: errors.New("engine crashed")})
	id := createGame(t, p, core.PlayerComputer, core.PlayerHuman)

	if resp := move(p, id, ComputerMove); !resp.Success {
		t.Fatalf("computer move failed: %+v", resp.Error)
	}
	waitForMoves(t, svc, id, 1)

	snap, _ := svc.GetGame(id)
	if snap.State != core.StateStuck {
		t.Errorf("state = %v, want stuck", snap.State)
	}
}

func TestComputerMoveQueueClosed(t *testing.T) {
	p, svc := newTestProcessor(t, &stubSearcher{best: "e2e4"})
	id := createGame(t, p, core.PlayerComputer, core.PlayerHuman)
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}

	// The second attempt must not see a leftover pending search
	for i := 0; i < 2; i++ {
		resp := move(p, id, ComputerMove)
		if resp.Success || resp.Error.Code != core.ErrResourceLimit {
			t.Fatalf("attempt %d: response = %+v, want %s", i+1, resp, core.ErrResourceLimit)
		}
		snap, _ := svc.GetGame(id)
		if snap.State != core.StateStuck {
			t.Errorf("attempt %d: state = %v, want stuck", i+1, snap.State)
		}
	}
}

func TestUndoDiscardsPendingSearch(t *testing.T) {
	stub := &stubSearcher{best: "e7e5", release: make(chan struct{})}
	p, svc := newTestProcessor(t, stub)
	id := createGame(t, p, core.PlayerHuman, core.PlayerComputer)

	move(p, id, "e2e4")
	if resp := move(p, id, ComputerMove); !resp.Pending {
		t.Fatalf("computer move = %+v, want pending", resp)
	}
	if resp := move(p, id, "d2d4"); resp.Success {
		t.Error("human move accepted while computer is calculating")
	}

	if resp := p.Execute(NewUndoMoveCommand(id, core.UndoRequest{Count: 1})); !resp.Success {
		t.Fatalf("undo failed: %+v", resp.Error)
	}
	close(stub.release)

	// Let the late result arrive and be discarded
	time.Sleep(100 * time.Millisecond)

	snap, _ := svc.GetGame(id)
	if snap.MoveCount != 0 || snap.State != core.StateOngoing {
		t.Errorf("after undo: moves %d, state %v", snap.MoveCount, snap.State)
	}
}

func TestDeleteDuringSearch(t *testing.T) {
	stub := &stubSearcher{best: "e2e4", release: make(chan struct{})}
	p, svc := newTestProcessor(t, stub)
	id := createGame(t, p, core.PlayerComputer, core.PlayerHuman)

	move(p, id, ComputerMove)
	if resp := p.Execute(NewDeleteGameCommand(id)); !resp.Success {
		t.Fatalf("delete failed: %+v", resp.Error)
	}
	close(stub.release)
	time.Sleep(50 * time.Millisecond)

	if _, err := svc.GetGame(id); !errors.Is(err, service.ErrGameNotFound) {
		t.Errorf("GetGame after delete error = %v", err)
	}
}

func TestConfigurePlayers(t *testing.T) {
	p, _ := newTestProcessor(t, nil)
	id := createGame(t, p, core.PlayerHuman, core.PlayerHuman)

	resp := p.Execute(NewConfigurePlayersCommand(id, core.ConfigurePlayersRequest{
		White: core.PlayerConfig{Type: core.PlayerHuman},
		Black: core.PlayerConfig{Type: core.PlayerComputer, Level: 10, SearchTime: 10},
	}))
	if !resp.Success {
		t.Fatalf("configure failed: %+v", resp.Error)
	}
	black := resp.Data.(core.GameResponse).Players.Black
	if black.Type != core.PlayerComputer || black.SearchTime != minSearchTime || black.Level != 10 {
		t.Errorf("black player = %+v", black)
	}
}

func TestBoardAndReset(t *testing.T) {
	p, _ := newTestProcessor(t, nil)
	id := createGame(t, p, core.PlayerHuman, core.PlayerHuman)
	move(p, id, "e2e4")

	b := p.Execute(NewGetBoardCommand(id)).Data.(core.BoardResponse)
	if b.Turn != "b" || len(b.Board) == 0 {
		t.Errorf("board response = %+v", b)
	}

	resp := p.Execute(NewResetGameCommand(id))
	if !resp.Success {
		t.Fatalf("reset failed: %+v", resp.Error)
	}
	if data := resp.Data.(core.GameResponse); len(data.Moves) != 0 || data.Turn != "w" {
		t.Errorf("after reset = %+v", data)
	}
}

func TestMissingGame(t *testing.T) {
	p, _ := newTestProcessor(t, nil)
	cmds := []Command{
		NewGetGameCommand("nope"),
		NewMakeMoveCommand("nope", core.MoveRequest{Move: "e2e4"}),
		NewUndoMoveCommand("nope", core.UndoRequest{Count: 1}),
		NewDeleteGameCommand("nope"),
		NewGetBoardCommand("nope"),
		NewGetLegalMovesCommand("nope"),
	}
	for _, cmd := range cmds {
		if resp := p.Execute(cmd); resp.Success || resp.Error.Code != core.ErrGameNotFound {
			t.Errorf("command %d on missing game = %+v", cmd.Type, resp.Error)
		}
	}
	if resp := p.Execute(Command{Type: CommandType(99)}); resp.Success {
		t.Error("unknown command succeeded")
	}
}

func TestRandomWorkers(t *testing.T) {
	failing := func() (engine.Searcher, error) { return nil, errors.New("no engine") }
	svc, _ := service.New(nil)
	p := New(svc, Config{Workers: 2, NewSearcher: failing})
	defer p.Close()

	id := createGame(t, p, core.PlayerComputer, core.PlayerHuman)
	move(p, id, ComputerMove)
	waitForMoves(t, svc, id, 1)

	snap, _ := svc.GetGame(id)
	if snap.MoveCount != 1 {
		t.Errorf("random worker played %d moves, want 1", snap.MoveCount)
	}
}
