// FILE: internal/board/piece.go
package board

import "chesscore/internal/core"

// Kind identifies a piece type. The zero value is an empty square.
type Kind uint8

const (
	None Kind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

// letters is indexed by Kind
var letters = [...]byte{'.', 'P', 'N', 'B', 'R', 'Q', 'K'}

// Letter returns the uppercase notation letter ('P' for pawns)
func (k Kind) Letter() byte {
	if int(k) >= len(letters) {
		return '?'
	}
	return letters[k]
}

// Piece is a colored piece, or empty when Kind is None
type Piece struct {
	Color core.Color
	Kind  Kind
}

// Empty is the content of a vacant square
var Empty = Piece{}

func New(c core.Color, k Kind) Piece {
	return Piece{Color: c, Kind: k}
}

func (p Piece) IsEmpty() bool {
	return p.Kind == None
}

// Is reports whether the piece has the given color and kind
func (p Piece) Is(c core.Color, k Kind) bool {
	return p.Color == c && p.Kind == k
}

// Symbol returns the ASCII symbol: uppercase for white, lowercase for black, '.' for empty
func (p Piece) Symbol() byte {
	if p.IsEmpty() {
		return '.'
	}
	ch := p.Kind.Letter()
	if p.Color == core.ColorBlack {
		ch += 'a' - 'A'
	}
	return ch
}

func (p Piece) String() string {
	return string(p.Symbol())
}

// pieceFromSymbol is the inverse of Symbol
func pieceFromSymbol(ch byte) (Piece, bool) {
	if ch == '.' {
		return Empty, true
	}
	color := core.ColorWhite
	upper := ch
	if ch >= 'a' && ch <= 'z' {
		color = core.ColorBlack
		upper = ch - ('a' - 'A')
	}
	for k := Pawn; k <= King; k++ {
		if letters[k] == upper {
			return New(color, k), true
		}
	}
	return Empty, false
}
