// FILE: internal/game/game.go
package game

import (
	"errors"
	"fmt"

	"chesscore/internal/board"
	"chesscore/internal/core"
	"chesscore/internal/rules"
)

var (
	ErrIllegalMove   = errors.New("illegal move")
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrGameOver      = errors.New("game is over")
)

// MoveResult tracks the outcome of a move
type MoveResult struct {
	Move        string
	Notation    string
	PlayerColor core.Color
	GameState   core.State
	Score       int
	Depth       int
	Fallback    bool // computer move picked at random after the search gave nothing
}

// Game wraps the rules engine with players and the externally visible state.
// It is not safe for concurrent use; the service serializes access.
type Game struct {
	rules      *rules.GameState
	players    map[core.Color]*core.Player
	state      core.State
	legal      []rules.Move // ValidMoves of the current position
	lastResult *MoveResult
	ticket     uint64 // non-zero while a computer search is outstanding
}

func New(whitePlayer, blackPlayer *core.Player) *Game {
	g := &Game{
		rules: rules.New(),
		players: map[core.Color]*core.Player{
			core.ColorWhite: whitePlayer,
			core.ColorBlack: blackPlayer,
		},
	}
	g.refresh()
	return g
}

// NewFromRules adopts an existing rules state, used for set-up positions
func NewFromRules(gs *rules.GameState, whitePlayer, blackPlayer *core.Player) *Game {
	g := New(whitePlayer, blackPlayer)
	g.rules = gs
	g.refresh()
	return g
}

// refresh recomputes the legal set and maps terminal flags to a game state
func (g *Game) refresh() {
	g.legal = g.rules.ValidMoves()
	switch {
	case g.rules.Checkmate():
		g.state = core.WinnerState(g.rules.ToMove().Opposite())
	case g.rules.Stalemate():
		g.state = core.StateStalemate
	default:
		g.state = core.StateOngoing
	}
}

// Apply plays a move given in coordinate notation. The move must be in the
// current legal set.
func (g *Game) Apply(uci string) (*MoveResult, error) {
	if g.state.IsOver() {
		return nil, ErrGameOver
	}

	m, ok := g.find(uci)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrIllegalMove, uci)
	}

	g.rules.MakeMove(m)
	g.ticket = 0
	g.refresh()

	result := &MoveResult{
		Move:        m.UCI(),
		Notation:    m.Algebraic(),
		PlayerColor: m.Color(),
		GameState:   g.state,
	}
	g.lastResult = result
	return result, nil
}

func (g *Game) find(uci string) (rules.Move, bool) {
	for _, m := range g.legal {
		if m.UCI() == uci {
			return m, true
		}
	}
	return rules.Move{}, false
}

// UndoMoves takes back count plies
func (g *Game) UndoMoves(count int) error {
	if count < 1 {
		return fmt.Errorf("invalid undo count: %d", count)
	}

	available := g.rules.MoveCount()
	if available == 0 {
		return ErrNothingToUndo
	}
	if available < count {
		return fmt.Errorf("cannot undo %d moves: only %d moves available: %w", count, available, ErrNothingToUndo)
	}

	for i := 0; i < count; i++ {
		g.rules.UndoMove()
	}
	g.ticket = 0 // any outstanding search is for a position that no longer exists
	g.lastResult = nil
	g.refresh()
	return nil
}

// Reset returns to the starting position keeping the players
func (g *Game) Reset() {
	g.rules.Reset()
	g.ticket = 0
	g.lastResult = nil
	g.refresh()
}

// Moves lists the played moves in UCI notation, oldest first
func (g *Game) Moves() []string {
	log := g.rules.MoveLog()
	moves := make([]string, len(log))
	for i, m := range log {
		moves[i] = m.UCI()
	}
	return moves
}

// History lists the played moves in short algebraic notation
func (g *Game) History() []string {
	log := g.rules.MoveLog()
	history := make([]string, len(log))
	for i, m := range log {
		history[i] = m.Algebraic()
	}
	return history
}

// LegalMoves returns the legal moves of the current position in UCI notation
func (g *Game) LegalMoves() []string {
	moves := make([]string, len(g.legal))
	for i, m := range g.legal {
		moves[i] = m.UCI()
	}
	return moves
}

// LegalNotation returns the legal moves in short algebraic notation, same order as LegalMoves
func (g *Game) LegalNotation() []string {
	moves := make([]string, len(g.legal))
	for i, m := range g.legal {
		moves[i] = m.Algebraic()
	}
	return moves
}

func (g *Game) MoveCount() int {
	return g.rules.MoveCount()
}

func (g *Game) NextTurn() core.Color {
	return g.rules.ToMove()
}

func (g *Game) NextPlayer() *core.Player {
	return g.players[g.NextTurn()]
}

func (g *Game) InCheck() bool {
	return g.rules.InCheck()
}

func (g *Game) Rules() *rules.GameState {
	return g.rules
}

func (g *Game) State() core.State {
	return g.state
}

// SetState overrides the state; used for pending and stuck computer moves
func (g *Game) SetState(s core.State) {
	g.state = s
}

func (g *Game) SetLastResult(result *MoveResult) {
	g.lastResult = result
}

func (g *Game) LastResult() *MoveResult {
	return g.lastResult
}

func (g *Game) GetPlayer(color core.Color) *core.Player {
	return g.players[color]
}

func (g *Game) SetPlayers(white, black *core.Player) {
	g.players[core.ColorWhite] = white
	g.players[core.ColorBlack] = black
}

// BeginSearch marks a computer search as outstanding under ticket
func (g *Game) BeginSearch(ticket uint64) {
	g.ticket = ticket
	g.state = core.StatePending
}

// Ticket returns the outstanding search ticket, zero if none
func (g *Game) Ticket() uint64 {
	return g.ticket
}

// EndSearch clears the outstanding ticket and restores the computed state
func (g *Game) EndSearch() {
	g.ticket = 0
	g.refresh()
}

// Snapshot is a copy of everything a caller may read about a game, taken
// while the owner holds the game
type Snapshot struct {
	Board      board.Board
	Turn       core.Color
	State      core.State
	InCheck    bool
	MoveCount  int
	Moves      []string
	History    []string
	LegalMoves []string
	LegalSAN   []string
	White      core.Player
	Black      core.Player
	LastResult *MoveResult
}

func (g *Game) Snapshot() Snapshot {
	s := Snapshot{
		Board:      g.rules.Board(),
		Turn:       g.NextTurn(),
		State:      g.state,
		InCheck:    g.InCheck(),
		MoveCount:  g.MoveCount(),
		Moves:      g.Moves(),
		History:    g.History(),
		LegalMoves: g.LegalMoves(),
		LegalSAN:   g.LegalNotation(),
		White:      *g.players[core.ColorWhite],
		Black:      *g.players[core.ColorBlack],
	}
	if g.lastResult != nil {
		r := *g.lastResult
		s.LastResult = &r
	}
	return s
}

// NextPlayer returns the player to move in the snapshot
func (s Snapshot) NextPlayer() core.Player {
	if s.Turn == core.ColorBlack {
		return s.Black
	}
	return s.White
}
