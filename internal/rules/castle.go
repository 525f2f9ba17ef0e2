// FILE: internal/rules/castle.go
package rules

import (
	"chesscore/internal/board"
	"chesscore/internal/core"
)

// CastleRights is copied by value into the history on every ply, so later
// changes to the current rights never reach older entries.
type CastleRights struct {
	WhiteKingSide  bool
	BlackKingSide  bool
	WhiteQueenSide bool
	BlackQueenSide bool
}

// AllCastleRights is the starting set
var AllCastleRights = CastleRights{true, true, true, true}

// KingSide reports the king-side right for color c
func (cr CastleRights) KingSide(c core.Color) bool {
	if c == core.ColorWhite {
		return cr.WhiteKingSide
	}
	return cr.BlackKingSide
}

// QueenSide reports the queen-side right for color c
func (cr CastleRights) QueenSide(c core.Color) bool {
	if c == core.ColorWhite {
		return cr.WhiteQueenSide
	}
	return cr.BlackQueenSide
}

// String uses the usual letters: "KQkq", "-" when none remain
func (cr CastleRights) String() string {
	s := ""
	if cr.WhiteKingSide {
		s += "K"
	}
	if cr.WhiteQueenSide {
		s += "Q"
	}
	if cr.BlackKingSide {
		s += "k"
	}
	if cr.BlackQueenSide {
		s += "q"
	}
	if s == "" {
		return "-"
	}
	return s
}

func (cr *CastleRights) clearColor(c core.Color) {
	if c == core.ColorWhite {
		cr.WhiteKingSide = false
		cr.WhiteQueenSide = false
	} else {
		cr.BlackKingSide = false
		cr.BlackQueenSide = false
	}
}

// clearCorner drops the right tied to the rook home square sq, if any.
// Corners are keyed by their own color: row 7 is white's, row 0 is black's.
func (cr *CastleRights) clearCorner(sq board.Square) {
	switch sq {
	case board.Sq(7, 0):
		cr.WhiteQueenSide = false
	case board.Sq(7, 7):
		cr.WhiteKingSide = false
	case board.Sq(0, 0):
		cr.BlackQueenSide = false
	case board.Sq(0, 7):
		cr.BlackKingSide = false
	}
}

// update drops the rights lost by m. Rights only ever go from true to false.
func (cr *CastleRights) update(m Move) {
	switch m.piece.Kind {
	case board.King:
		cr.clearColor(m.piece.Color)
	case board.Rook:
		if m.from.Row == homeRow(m.piece.Color) {
			cr.clearCorner(m.from)
		}
	}

	if m.captured.Kind == board.Rook && m.to.Row == homeRow(m.captured.Color) {
		cr.clearCorner(m.to)
	}
}

// sanitize clears rights whose king or rook is not on its home square
func (cr *CastleRights) sanitize(b *board.Board) {
	for _, c := range []core.Color{core.ColorWhite, core.ColorBlack} {
		row := homeRow(c)
		if !b.At(board.Sq(row, 4)).Is(c, board.King) {
			cr.clearColor(c)
			continue
		}
		if !b.At(board.Sq(row, 0)).Is(c, board.Rook) {
			cr.clearCorner(board.Sq(row, 0))
		}
		if !b.At(board.Sq(row, 7)).Is(c, board.Rook) {
			cr.clearCorner(board.Sq(row, 7))
		}
	}
}

func homeRow(c core.Color) int {
	if c == core.ColorWhite {
		return 7
	}
	return 0
}

// castleMoves appends the castle moves available to the side to move from
// the king on kingSq. Checked in order: king not attacked, then per side the
// right, the vacant path and the unattacked pass-through and destination.
func (gs *GameState) castleMoves(kingSq board.Square, moves []Move) []Move {
	if gs.SquareUnderAttack(kingSq) {
		return moves
	}
	if gs.castleRights.KingSide(gs.toMove) {
		moves = gs.kingSideCastle(kingSq, moves)
	}
	if gs.castleRights.QueenSide(gs.toMove) {
		moves = gs.queenSideCastle(kingSq, moves)
	}
	return moves
}

func (gs *GameState) kingSideCastle(k board.Square, moves []Move) []Move {
	pass, dest := k.Offset(0, 1), k.Offset(0, 2)
	if !dest.OnBoard() || !gs.board.IsEmpty(pass) || !gs.board.IsEmpty(dest) {
		return moves
	}
	if gs.SquareUnderAttack(pass) || gs.SquareUnderAttack(dest) {
		return moves
	}
	return append(moves, newMove(k, dest, &gs.board, false, true))
}

// queenSideCastle needs three vacant squares; the b-file square may be attacked
func (gs *GameState) queenSideCastle(k board.Square, moves []Move) []Move {
	pass, dest, far := k.Offset(0, -1), k.Offset(0, -2), k.Offset(0, -3)
	if !far.OnBoard() || !gs.board.IsEmpty(pass) || !gs.board.IsEmpty(dest) || !gs.board.IsEmpty(far) {
		return moves
	}
	if gs.SquareUnderAttack(pass) || gs.SquareUnderAttack(dest) {
		return moves
	}
	return append(moves, newMove(k, dest, &gs.board, false, true))
}
