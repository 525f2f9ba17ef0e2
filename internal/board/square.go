// FILE: internal/board/square.go
package board

import "fmt"

// Square addresses the grid. Row 0 is black's back rank (rank 8), column 0 is file a.
type Square struct {
	Row int
	Col int
}

// NoSquare marks an absent square, such as no en-passant target
var NoSquare = Square{Row: -1, Col: -1}

func Sq(row, col int) Square {
	return Square{Row: row, Col: col}
}

// OnBoard reports whether both coordinates are in [0,7]
func (s Square) OnBoard() bool {
	return s.Row >= 0 && s.Row < 8 && s.Col >= 0 && s.Col < 8
}

// Offset returns the square shifted by the given deltas; it may be off the board
func (s Square) Offset(dRow, dCol int) Square {
	return Square{Row: s.Row + dRow, Col: s.Col + dCol}
}

// File returns the file letter 'a'-'h'
func (s Square) File() byte {
	return byte('a' + s.Col)
}

// Rank returns the rank digit '1'-'8'
func (s Square) Rank() byte {
	return byte('8' - s.Row)
}

// String returns algebraic coordinates such as "e4", or "-" for NoSquare
func (s Square) String() string {
	if !s.OnBoard() {
		return "-"
	}
	return string([]byte{s.File(), s.Rank()})
}

// ParseSquare converts algebraic coordinates ("e4") to a Square
func ParseSquare(name string) (Square, error) {
	if len(name) != 2 {
		return NoSquare, fmt.Errorf("invalid square %q: expected 2 characters", name)
	}
	if name[0] < 'a' || name[0] > 'h' || name[1] < '1' || name[1] > '8' {
		return NoSquare, fmt.Errorf("invalid square %q", name)
	}
	return Square{Row: int('8' - name[1]), Col: int(name[0] - 'a')}, nil
}
