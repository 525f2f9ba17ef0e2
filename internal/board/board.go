// FILE: internal/board/board.go
package board

import (
	"fmt"
	"strings"

	"chesscore/internal/core"
)

// Board is the 8x8 grid, indexed [row][col]. It is a value type: assignment copies it.
type Board [8][8]Piece

var backRank = [8]Kind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// Standard returns the initial position, black on rows 0-1 and white on rows 6-7
func Standard() Board {
	var b Board
	for c := 0; c < 8; c++ {
		b[0][c] = New(core.ColorBlack, backRank[c])
		b[1][c] = New(core.ColorBlack, Pawn)
		b[6][c] = New(core.ColorWhite, Pawn)
		b[7][c] = New(core.ColorWhite, backRank[c])
	}
	return b
}

// FromASCII builds a board from eight rows of eight symbols, rank 8 first.
// Symbols follow Piece.Symbol; spaces are ignored.
func FromASCII(rows ...string) (Board, error) {
	var b Board
	if len(rows) != 8 {
		return b, fmt.Errorf("invalid diagram: expected 8 rows, got %d", len(rows))
	}

	for r, row := range rows {
		row = strings.ReplaceAll(row, " ", "")
		if len(row) != 8 {
			return b, fmt.Errorf("invalid diagram: row %d has %d squares", r+1, len(row))
		}
		for c := 0; c < 8; c++ {
			p, ok := pieceFromSymbol(row[c])
			if !ok {
				return b, fmt.Errorf("invalid diagram: unknown symbol %q in row %d", row[c], r+1)
			}
			b[r][c] = p
		}
	}
	return b, nil
}

func (b *Board) At(s Square) Piece {
	return b[s.Row][s.Col]
}

func (b *Board) Set(s Square, p Piece) {
	b[s.Row][s.Col] = p
}

// IsEmpty reports whether the on-board square s is vacant
func (b *Board) IsEmpty(s Square) bool {
	return b[s.Row][s.Col].IsEmpty()
}

// GetPieceAt returns the piece on an algebraic square, or Empty if the name is invalid
func (b *Board) GetPieceAt(square string) Piece {
	s, err := ParseSquare(square)
	if err != nil {
		return Empty
	}
	return b.At(s)
}

// Find returns the first square holding p, scanning rank 8 to rank 1
func (b *Board) Find(p Piece) (Square, bool) {
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			if b[r][c] == p {
				return Square{Row: r, Col: c}, true
			}
		}
	}
	return NoSquare, false
}

// Count returns how many squares hold p
func (b *Board) Count(p Piece) int {
	n := 0
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			if b[r][c] == p {
				n++
			}
		}
	}
	return n
}

// ToASCII creates an ASCII representation of the board
func (b *Board) ToASCII() string {
	var sb strings.Builder
	sb.WriteString("  a b c d e f g h\n")

	for r := 0; r < 8; r++ {
		sb.WriteString(fmt.Sprintf("%d ", 8-r))
		for c := 0; c < 8; c++ {
			sb.WriteByte(b[r][c].Symbol())
			sb.WriteByte(' ')
		}
		sb.WriteString(fmt.Sprintf(" %d\n", 8-r))
	}
	sb.WriteString("  a b c d e f g h")

	return sb.String()
}
