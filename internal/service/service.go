// FILE: internal/service/service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"chesscore/internal/core"
	"chesscore/internal/game"
	"chesscore/internal/storage"

	"github.com/google/uuid"
)

var (
	ErrGameNotFound  = errors.New("game not found")
	ErrSearchPending = errors.New("computer move in progress")
	ErrStaleSearch   = errors.New("search result no longer applies")
)

// Service is the state manager for chess games with optional persistence.
// Every access to a game happens under mu; games never leave the service.
type Service struct {
	games   map[string]*game.Game
	mu      sync.Mutex
	store   *storage.Store // nil if persistence disabled
	waiter  *WaitRegistry
	tickets uint64
}

// SearchInput is what a computer player needs to pick a move
type SearchInput struct {
	Ticket uint64
	Moves  []string // UCI history from the start position
	Legal  []string
	Player core.Player
}

// New creates a new service instance with optional storage
func New(store *storage.Store) (*Service, error) {
	return &Service{
		games:  make(map[string]*game.Game),
		store:  store,
		waiter: NewWaitRegistry(),
	}, nil
}

// get returns the game or ErrGameNotFound; callers hold mu
func (s *Service) get(gameID string) (*game.Game, error) {
	g, ok := s.games[gameID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	return g, nil
}

// GenerateGameID creates a new unique game ID
func (s *Service) GenerateGameID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	for {
		id := uuid.New().String()
		if _, exists := s.games[id]; !exists {
			return id
		}
	}
}

// CreateGame registers a new game at the starting position
func (s *Service) CreateGame(id string, whitePlayer, blackPlayer *core.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.games[id]; exists {
		return fmt.Errorf("game %s already exists", id)
	}

	s.games[id] = game.New(whitePlayer, blackPlayer)

	if s.store != nil {
		s.store.RecordNewGame(gameRecord(id, whitePlayer, blackPlayer))
	}
	return nil
}

func gameRecord(id string, white, black *core.Player) storage.GameRecord {
	return storage.GameRecord{
		GameID:          id,
		WhitePlayerID:   white.ID,
		WhiteType:       int(white.Type),
		WhiteLevel:      white.Level,
		WhiteSearchTime: white.SearchTime,
		BlackPlayerID:   black.ID,
		BlackType:       int(black.Type),
		BlackLevel:      black.Level,
		BlackSearchTime: black.SearchTime,
		StartTimeUTC:    time.Now().UTC(),
	}
}

// UpdatePlayers replaces players in an existing game
func (s *Service) UpdatePlayers(gameID string, whitePlayer, blackPlayer *core.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.get(gameID)
	if err != nil {
		return err
	}
	if g.Ticket() != 0 {
		return ErrSearchPending
	}

	g.SetPlayers(whitePlayer, blackPlayer)

	if s.store != nil {
		s.store.UpdatePlayers(gameRecord(gameID, whitePlayer, blackPlayer))
	}
	return nil
}

// GetGame returns a snapshot of the game
func (s *Service) GetGame(gameID string) (game.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.get(gameID)
	if err != nil {
		return game.Snapshot{}, err
	}
	return g.Snapshot(), nil
}

// WithGame runs fn with exclusive access to the game
func (s *Service) WithGame(gameID string, fn func(g *game.Game) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.get(gameID)
	if err != nil {
		return err
	}
	return fn(g)
}

// MakeMove applies a human move given in coordinate notation
func (s *Service) MakeMove(gameID, moveUCI string) (*game.MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.get(gameID)
	if err != nil {
		return nil, err
	}
	if g.Ticket() != 0 {
		return nil, ErrSearchPending
	}

	return s.apply(gameID, g, moveUCI)
}

// apply plays the move, persists it and wakes waiters; callers hold mu
func (s *Service) apply(gameID string, g *game.Game, moveUCI string) (*game.MoveResult, error) {
	result, err := g.Apply(moveUCI)
	if err != nil {
		return nil, err
	}

	moveNumber := g.MoveCount()
	s.waiter.NotifyGame(gameID, moveNumber)

	if s.store != nil {
		s.store.RecordMove(storage.MoveRecord{
			GameID:      gameID,
			MoveNumber:  moveNumber,
			MoveUCI:     result.Move,
			MoveSAN:     result.Notation,
			PlayerColor: result.PlayerColor.String(),
			MoveTimeUTC: time.Now().UTC(),
		})
	}
	return result, nil
}

// BeginSearch marks the game pending for the computer player to move and
// returns the search input under a fresh ticket
func (s *Service) BeginSearch(gameID string) (SearchInput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.get(gameID)
	if err != nil {
		return SearchInput{}, err
	}
	if g.Ticket() != 0 {
		return SearchInput{}, ErrSearchPending
	}
	if g.State().IsOver() {
		return SearchInput{}, game.ErrGameOver
	}

	s.tickets++
	g.BeginSearch(s.tickets)

	return SearchInput{
		Ticket: s.tickets,
		Moves:  g.Moves(),
		Legal:  g.LegalMoves(),
		Player: *g.NextPlayer(),
	}, nil
}

// CompleteSearch applies a computer move if ticket is still outstanding.
// A game that was deleted, undone or reset in the meantime yields ErrStaleSearch
// or ErrGameNotFound and is left untouched.
func (s *Service) CompleteSearch(gameID string, ticket uint64, moveUCI string, fallback bool, score, depth int) (*game.MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.get(gameID)
	if err != nil {
		return nil, err
	}
	if g.Ticket() != ticket {
		return nil, ErrStaleSearch
	}

	g.EndSearch()
	result, err := s.apply(gameID, g, moveUCI)
	if err != nil {
		g.SetState(core.StateStuck)
		s.waiter.NotifyAll(gameID)
		return nil, err
	}
	result.Fallback = fallback
	result.Score = score
	result.Depth = depth
	return result, nil
}

// FailSearch marks the game stuck if ticket is still outstanding
func (s *Service) FailSearch(gameID string, ticket uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.get(gameID)
	if err != nil {
		return err
	}
	if g.Ticket() != ticket {
		return ErrStaleSearch
	}

	g.EndSearch()
	g.SetState(core.StateStuck)
	s.waiter.NotifyAll(gameID)
	return nil
}

// UndoMoves removes the specified number of moves from game history,
// abandoning any outstanding search
func (s *Service) UndoMoves(gameID string, count int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.get(gameID)
	if err != nil {
		return err
	}

	if err := g.UndoMoves(count); err != nil {
		return err
	}

	remaining := g.MoveCount()
	s.waiter.NotifyGame(gameID, remaining)

	if s.store != nil {
		s.store.DeleteUndoneMoves(gameID, remaining)
	}
	return nil
}

// ResetGame restarts the game from the initial position with the same players
func (s *Service) ResetGame(gameID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.get(gameID)
	if err != nil {
		return err
	}

	g.Reset()
	s.waiter.NotifyAll(gameID)

	if s.store != nil {
		s.store.DeleteUndoneMoves(gameID, 0)
	}
	return nil
}

// DeleteGame removes a game from memory
func (s *Service) DeleteGame(gameID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.get(gameID); err != nil {
		return err
	}

	s.waiter.RemoveGame(gameID)
	delete(s.games, gameID)

	if s.store != nil {
		s.store.DeleteGame(gameID)
	}
	return nil
}

// RegisterWait returns a channel closed on the next change of the game. It
// is already closed when the game moved past moveCount or cannot change any
// more without a client request.
func (s *Service) RegisterWait(ctx context.Context, gameID string, moveCount int) (<-chan struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.get(gameID)
	if err != nil {
		return nil, err
	}

	if g.MoveCount() != moveCount || g.State().IsOver() || g.State() == core.StateStuck {
		ch := make(chan struct{})
		close(ch)
		return ch, nil
	}
	return s.waiter.RegisterWait(ctx, gameID, moveCount), nil
}

// GetStorageHealth returns the storage component status
func (s *Service) GetStorageHealth() string {
	if s.store == nil {
		return "disabled"
	}
	if s.store.IsHealthy() {
		return "ok"
	}
	return "degraded"
}

// Sync waits for queued storage writes; a no-op without storage
func (s *Service) Sync(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	return s.store.Sync(ctx)
}

// Shutdown wakes long-poll clients and closes storage
func (s *Service) Shutdown(timeout time.Duration) error {
	var errs []error
	if err := s.waiter.Shutdown(timeout); err != nil {
		errs = append(errs, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.games = make(map[string]*game.Game)

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage close: %w", err))
		}
	}
	return errors.Join(errs...)
}
