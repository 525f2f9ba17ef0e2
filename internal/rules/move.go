// FILE: internal/rules/move.go
package rules

import (
	"chesscore/internal/board"
	"chesscore/internal/core"
)

// Move describes a single ply. Fields are unexported so a Move cannot change
// after it has been generated.
type Move struct {
	from      board.Square
	to        board.Square
	piece     board.Piece
	captured  board.Piece
	promotion bool
	enPassant bool
	castle    bool
}

// newMove reads the moved and captured pieces off b. For en passant the
// captured piece is the opposing pawn, not the (empty) landing square.
func newMove(from, to board.Square, b *board.Board, enPassant, castle bool) Move {
	m := Move{
		from:      from,
		to:        to,
		piece:     b.At(from),
		captured:  b.At(to),
		enPassant: enPassant,
		castle:    castle,
	}
	if m.piece.Kind == board.Pawn {
		m.promotion = to.Row == promotionRow(m.piece.Color)
	}
	if enPassant {
		m.captured = board.New(m.piece.Color.Opposite(), board.Pawn)
	}
	return m
}

func promotionRow(c core.Color) int {
	if c == core.ColorWhite {
		return 0
	}
	return 7
}

func (m Move) From() board.Square { return m.from }
func (m Move) To() board.Square { return m.to }
func (m Move) Piece() board.Piece { return m.piece }
func (m Move) Captured() board.Piece { return m.captured }
func (m Move) IsPromotion() bool { return m.promotion }
func (m Move) IsEnPassant() bool { return m.enPassant }
func (m Move) IsCastle() bool { return m.castle }
func (m Move) IsCapture() bool { return !m.captured.IsEmpty() }
func (m Move) Color() core.Color { return m.piece.Color }
func (m Move) IsKingSide() bool { return m.castle && m.to.Col > m.from.Col }

// ID identifies a move by its squares. Only one piece can stand on the start
// square when moves are generated, so the squares are enough.
func (m Move) ID() int {
	return m.from.Row*1000 + m.from.Col*100 + m.to.Row*10 + m.to.Col
}

// Equal compares move identity
func (m Move) Equal(other Move) bool {
	return m.ID() == other.ID()
}

// Algebraic renders short algebraic notation: "O-O", "e4", "exd5", "Nf3", "Qxh4"
func (m Move) Algebraic() string {
	if m.castle {
		if m.IsKingSide() {
			return "O-O"
		}
		return "O-O-O"
	}

	dest := m.to.String()

	if m.piece.Kind == board.Pawn {
		if m.IsCapture() {
			return string(m.from.File()) + "x" + dest
		}
		return dest
	}

	s := string(m.piece.Kind.Letter())
	if m.IsCapture() {
		s += "x"
	}
	return s + dest
}

// Coordinate renders start and end squares, such as "e2e4"
func (m Move) Coordinate() string {
	return m.from.String() + m.to.String()
}

// UCI is Coordinate plus the promotion suffix: promotions are always to a queen
func (m Move) UCI() string {
	if m.promotion {
		return m.Coordinate() + "q"
	}
	return m.Coordinate()
}

func (m Move) String() string {
	return m.Algebraic()
}
