// FILE: internal/rules/gamestate.go
// Package rules implements the chess rules engine: pseudo-legal move
// generation per piece, legality filtering against the opponent's replies,
// castling, en passant, queen promotion and terminal-state detection, with a
// fully reversible move history.
//
// The engine is synchronous and not safe for concurrent use. A GameState is
// owned by one caller at a time; independent games use independent values.
package rules

import (
	"fmt"
	"slices"

	"chesscore/internal/board"
	"chesscore/internal/core"
)

// GameState owns the board and every piece of state needed to undo a move.
// moveLog, castleRightsLog and enPassantLog move in lock-step; the two logs
// start with one entry for the position before the first move.
type GameState struct {
	board        board.Board
	toMove       core.Color
	whiteKing    board.Square
	blackKing    board.Square
	enPassant    board.Square
	castleRights CastleRights

	moveLog         []Move
	castleRightsLog []CastleRights
	enPassantLog    []board.Square

	checkmate bool
	stalemate bool

	// attackBuf is reused by SquareUnderAttack only
	attackBuf []Move
}

// Position is a comparable snapshot of everything MakeMove and UndoMove touch
type Position struct {
	Board        board.Board
	ToMove       core.Color
	WhiteKing    board.Square
	BlackKing    board.Square
	EnPassant    board.Square
	CastleRights CastleRights
}

// New returns a game at the standard starting position, white to move
func New() *GameState {
	gs := &GameState{}
	gs.Reset()
	return gs
}

// Reset restores the standard starting position and clears all history
func (gs *GameState) Reset() {
	gs.init(board.Standard(), core.ColorWhite, AllCastleRights)
	gs.whiteKing = board.Sq(7, 4)
	gs.blackKing = board.Sq(0, 4)
}

// NewFromPosition starts a game from an arbitrary placement. Exactly one king
// of each color is required. Castling rights without the king and rook on
// their home squares are dropped.
func NewFromPosition(b board.Board, toMove core.Color, rights CastleRights) (*GameState, error) {
	if toMove != core.ColorWhite && toMove != core.ColorBlack {
		return nil, fmt.Errorf("invalid side to move: %v", toMove)
	}

	kings := [2]board.Square{}
	for i, c := range []core.Color{core.ColorWhite, core.ColorBlack} {
		king := board.New(c, board.King)
		if n := b.Count(king); n != 1 {
			return nil, fmt.Errorf("invalid position: %d %s kings, want 1", n, c.Name())
		}
		kings[i], _ = b.Find(king)
	}

	gs := &GameState{}
	rights.sanitize(&b)
	gs.init(b, toMove, rights)
	gs.whiteKing = kings[0]
	gs.blackKing = kings[1]
	return gs, nil
}

func (gs *GameState) init(b board.Board, toMove core.Color, rights CastleRights) {
	gs.board = b
	gs.toMove = toMove
	gs.enPassant = board.NoSquare
	gs.castleRights = rights
	gs.moveLog = gs.moveLog[:0]
	gs.castleRightsLog = append(gs.castleRightsLog[:0], rights)
	gs.enPassantLog = append(gs.enPassantLog[:0], board.NoSquare)
	gs.checkmate = false
	gs.stalemate = false
}

// MakeMove applies m. The move must come from the latest ValidMoves result;
// anything else is outside the contract and may corrupt the position.
func (gs *GameState) MakeMove(m Move) {
	gs.board.Set(m.from, board.Empty)
	gs.board.Set(m.to, m.piece)
	gs.moveLog = append(gs.moveLog, m)
	gs.toMove = gs.toMove.Opposite()

	if m.piece.Kind == board.King {
		gs.setKingSquare(m.piece.Color, m.to)
	}

	if m.promotion {
		gs.board.Set(m.to, board.New(m.piece.Color, board.Queen))
	}

	// The captured pawn sits beside the start square, on the landing file
	if m.enPassant {
		gs.board.Set(board.Sq(m.from.Row, m.to.Col), board.Empty)
	}

	if m.piece.Kind == board.Pawn && abs(m.from.Row-m.to.Row) == 2 {
		gs.enPassant = board.Sq((m.from.Row+m.to.Row)/2, m.from.Col)
	} else {
		gs.enPassant = board.NoSquare
	}
	gs.enPassantLog = append(gs.enPassantLog, gs.enPassant)

	if m.castle {
		row := m.to.Row
		if m.IsKingSide() {
			gs.board.Set(board.Sq(row, m.to.Col-1), gs.board.At(board.Sq(row, m.to.Col+1)))
			gs.board.Set(board.Sq(row, m.to.Col+1), board.Empty)
		} else {
			gs.board.Set(board.Sq(row, m.to.Col+1), gs.board.At(board.Sq(row, m.to.Col-2)))
			gs.board.Set(board.Sq(row, m.to.Col-2), board.Empty)
		}
	}

	gs.castleRights.update(m)
	gs.castleRightsLog = append(gs.castleRightsLog, gs.castleRights)
}

// UndoMove reverts the last move. It is a no-op on an empty history.
func (gs *GameState) UndoMove() {
	if len(gs.moveLog) == 0 {
		return
	}

	m := gs.moveLog[len(gs.moveLog)-1]
	gs.moveLog = gs.moveLog[:len(gs.moveLog)-1]

	gs.board.Set(m.from, m.piece)
	gs.board.Set(m.to, m.captured)
	gs.toMove = gs.toMove.Opposite()

	if m.piece.Kind == board.King {
		gs.setKingSquare(m.piece.Color, m.from)
	}

	if m.enPassant {
		gs.board.Set(m.to, board.Empty)
		gs.board.Set(board.Sq(m.from.Row, m.to.Col), m.captured)
	}

	gs.enPassantLog = gs.enPassantLog[:len(gs.enPassantLog)-1]
	gs.enPassant = gs.enPassantLog[len(gs.enPassantLog)-1]

	gs.castleRightsLog = gs.castleRightsLog[:len(gs.castleRightsLog)-1]
	gs.castleRights = gs.castleRightsLog[len(gs.castleRightsLog)-1]

	if m.castle {
		row := m.to.Row
		if m.IsKingSide() {
			gs.board.Set(board.Sq(row, m.to.Col+1), gs.board.At(board.Sq(row, m.to.Col-1)))
			gs.board.Set(board.Sq(row, m.to.Col-1), board.Empty)
		} else {
			gs.board.Set(board.Sq(row, m.to.Col-2), gs.board.At(board.Sq(row, m.to.Col+1)))
			gs.board.Set(board.Sq(row, m.to.Col+1), board.Empty)
		}
	}

	// A position reached by undo is never terminal until ValidMoves says so
	gs.checkmate = false
	gs.stalemate = false
}

// ValidMoves returns the legal moves for the side to move and refreshes the
// checkmate and stalemate flags. Every candidate is played, the opponent's
// coverage of the mover's king is checked, and the move is taken back.
func (gs *GameState) ValidMoves() []Move {
	moves := gs.pseudoLegalMoves(make([]Move, 0, 64))
	moves = gs.castleMoves(gs.KingSquare(gs.toMove), moves)

	legal := moves[:0]
	for _, m := range moves {
		gs.MakeMove(m)
		gs.toMove = gs.toMove.Opposite()
		attacked := gs.InCheck()
		gs.toMove = gs.toMove.Opposite()
		gs.UndoMove()

		if !attacked {
			legal = append(legal, m)
		}
	}

	if len(legal) == 0 {
		inCheck := gs.InCheck()
		gs.checkmate = inCheck
		gs.stalemate = !inCheck
	} else {
		gs.checkmate = false
		gs.stalemate = false
	}
	return legal
}

// FindMove returns the legal move written in UCI ("e2e4"). Promotions are
// written with the q suffix ("e7e8q") and no other move takes one.
func (gs *GameState) FindMove(s string) (Move, bool) {
	if len(s) != 4 && len(s) != 5 {
		return Move{}, false
	}
	// Promotions must carry the q suffix and nothing else may
	for _, m := range gs.ValidMoves() {
		if m.UCI() == s {
			return m, true
		}
	}
	return Move{}, false
}

func (gs *GameState) Checkmate() bool { return gs.checkmate }
func (gs *GameState) Stalemate() bool { return gs.stalemate }

// ToMove returns the side to move
func (gs *GameState) ToMove() core.Color { return gs.toMove }

// Board returns a copy of the grid
func (gs *GameState) Board() board.Board { return gs.board }

func (gs *GameState) CastleRights() CastleRights { return gs.castleRights }

// EnPassantTarget returns the square a pawn may capture onto en passant
func (gs *GameState) EnPassantTarget() (board.Square, bool) {
	return gs.enPassant, gs.enPassant.OnBoard()
}

// MoveLog returns a copy of the moves played so far, oldest first
func (gs *GameState) MoveLog() []Move {
	return slices.Clone(gs.moveLog)
}

// MoveCount returns the number of plies played
func (gs *GameState) MoveCount() int {
	return len(gs.moveLog)
}

// LastMove returns the most recent move, if any
func (gs *GameState) LastMove() (Move, bool) {
	if len(gs.moveLog) == 0 {
		return Move{}, false
	}
	return gs.moveLog[len(gs.moveLog)-1], true
}

func (gs *GameState) KingSquare(c core.Color) board.Square {
	if c == core.ColorWhite {
		return gs.whiteKing
	}
	return gs.blackKing
}

func (gs *GameState) setKingSquare(c core.Color, sq board.Square) {
	if c == core.ColorWhite {
		gs.whiteKing = sq
	} else {
		gs.blackKing = sq
	}
}

// Position snapshots the current state
func (gs *GameState) Position() Position {
	return Position{
		Board:        gs.board,
		ToMove:       gs.toMove,
		WhiteKing:    gs.whiteKing,
		BlackKing:    gs.blackKing,
		EnPassant:    gs.enPassant,
		CastleRights: gs.castleRights,
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
