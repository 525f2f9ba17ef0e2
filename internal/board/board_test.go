package board

import (
	"strings"
	"testing"

	"chesscore/internal/core"
)

func TestParseSquare(t *testing.T) {
	tests := []struct {
		name    string
		want    Square
		wantErr bool
	}{
		{"a8", Sq(0, 0), false},
		{"h1", Sq(7, 7), false},
		{"e4", Sq(4, 4), false},
		{"e2", Sq(6, 4), false},
		{"i1", NoSquare, true},
		{"a9", NoSquare, true},
		{"e", NoSquare, true},
		{"", NoSquare, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSquare(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSquare(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseSquare(%q) = %v, want %v", tt.name, got, tt.want)
			}
			if !tt.wantErr && got.String() != tt.name {
				t.Errorf("ParseSquare(%q).String() = %q", tt.name, got.String())
			}
		})
	}
}

func TestSquareOffBoard(t *testing.T) {
	if NoSquare.OnBoard() {
		t.Error("NoSquare.OnBoard() = true, want false")
	}
	if got := NoSquare.String(); got != "-" {
		t.Errorf("NoSquare.String() = %q, want \"-\"", got)
	}
	if Sq(0, 7).Offset(-1, 0).OnBoard() {
		t.Error("h8 shifted one row up should be off the board")
	}
}

func TestStandard(t *testing.T) {
	b := Standard()

	checks := map[string]Piece{
		"e1": New(core.ColorWhite, King),
		"d1": New(core.ColorWhite, Queen),
		"e8": New(core.ColorBlack, King),
		"a8": New(core.ColorBlack, Rook),
		"g1": New(core.ColorWhite, Knight),
		"c7": New(core.ColorBlack, Pawn),
		"e4": Empty,
	}
	for sq, want := range checks {
		if got := b.GetPieceAt(sq); got != want {
			t.Errorf("Standard().GetPieceAt(%q) = %v, want %v", sq, got, want)
		}
	}

	if n := b.Count(New(core.ColorWhite, Pawn)); n != 8 {
		t.Errorf("white pawn count = %d, want 8", n)
	}
}

func TestFromASCIIRoundTrip(t *testing.T) {
	rows := []string{
		"r n b q k b n r",
		"p p p p p p p p",
		". . . . . . . .",
		". . . . . . . .",
		". . . . . . . .",
		". . . . . . . .",
		"P P P P P P P P",
		"R N B Q K B N R",
	}
	b, err := FromASCII(rows...)
	if err != nil {
		t.Fatalf("FromASCII() error: %v", err)
	}
	if b != Standard() {
		t.Errorf("FromASCII(start diagram) differs from Standard():\n%s", b.ToASCII())
	}

	ascii := b.ToASCII()
	if !strings.HasPrefix(ascii, "  a b c d e f g h\n8 r n b q k b n r  8\n") {
		t.Errorf("ToASCII() header mismatch:\n%s", ascii)
	}
}

func TestFromASCIIErrors(t *testing.T) {
	if _, err := FromASCII("8/8"); err == nil {
		t.Error("FromASCII(one row) error = nil, want error")
	}
	rows := make([]string, 8)
	for i := range rows {
		rows[i] = "........"
	}
	rows[3] = "...x...."
	if _, err := FromASCII(rows...); err == nil {
		t.Error("FromASCII(unknown symbol) error = nil, want error")
	}
	rows[3] = "......."
	if _, err := FromASCII(rows...); err == nil {
		t.Error("FromASCII(short row) error = nil, want error")
	}
}

func TestFind(t *testing.T) {
	b := Standard()
	sq, ok := b.Find(New(core.ColorBlack, King))
	if !ok || sq != Sq(0, 4) {
		t.Errorf("Find(black king) = %v, %v, want e8, true", sq, ok)
	}
	var empty Board
	if _, ok := empty.Find(New(core.ColorWhite, King)); ok {
		t.Error("Find on empty board returned ok")
	}
}
