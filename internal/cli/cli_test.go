package cli

import (
	"bytes"
	"strings"
	"testing"

	"chesscore/internal/board"
	"chesscore/internal/core"
	"chesscore/internal/game"

	"github.com/google/go-cmp/cmp"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input string
		want  *Command
	}{
		{"", &Command{Type: CmdNone}},
		{"   ", &Command{Type: CmdNone}},
		{"new", &Command{Type: CmdNew, Args: []string{}}},
		{"reset", &Command{Type: CmdReset}},
		{"e2e4", &Command{Type: CmdMove, Args: []string{"e2e4"}}},
		{"E7E8Q", &Command{Type: CmdMove, Args: []string{"e7e8q"}}},
		{"undo 3", &Command{Type: CmdUndo, Args: []string{"3"}}},
		{"moves", &Command{Type: CmdMoves}},
		{"color green", &Command{Type: CmdColor, Args: []string{"green"}}},
		{"verbose", &Command{Type: CmdVerbose}},
		{"history", &Command{Type: CmdHistory}},
		{"?", &Command{Type: CmdHelp}},
		{"exit", &Command{Type: CmdQuit}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, parseCommand(tt.input)); diff != "" {
				t.Errorf("parseCommand(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestGetCommandEndOfInput(t *testing.T) {
	var out bytes.Buffer
	c := New(NewScanner(strings.NewReader("e2e4\n"), &out), &out)

	cmd, err := c.GetCommand("> ")
	if err != nil || cmd.Type != CmdMove {
		t.Fatalf("first command = %+v, %v", cmd, err)
	}
	cmd, err = c.GetCommand("> ")
	if err != nil || cmd.Type != CmdQuit {
		t.Fatalf("command at EOF = %+v, %v, want quit", cmd, err)
	}
	if got := out.String(); got != "> > " {
		t.Errorf("prompts = %q", got)
	}
}

func TestDisplayBoard(t *testing.T) {
	var out bytes.Buffer
	c := New(NewScanner(strings.NewReader(""), &out), &out)

	c.DisplayBoard(board.Standard())
	got := out.String()
	for _, want := range []string{"8 r n b q k b n r  8", "4 . . . . . . . .  4", "1 R N B Q K B N R  1"} {
		if !strings.Contains(got, want) {
			t.Errorf("board missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "\033[") {
		t.Error("theme off printed escape codes")
	}

	out.Reset()
	if err := c.SetTheme(ThemeBrown); err != nil {
		t.Fatal(err)
	}
	c.DisplayBoard(board.Standard())
	if !strings.Contains(out.String(), themes[ThemeBrown].darkBg) {
		t.Error("brown theme missing background codes")
	}

	if err := c.SetTheme("purple"); err == nil {
		t.Error("SetTheme(purple) succeeded, want error")
	}
}

func TestShowGameOver(t *testing.T) {
	tests := []struct {
		state core.State
		want  string
	}{
		{core.StateWhiteWins, "Checkmate! White wins."},
		{core.StateBlackWins, "Checkmate! Black wins."},
		{core.StateStalemate, "Stalemate!"},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		c := New(NewScanner(strings.NewReader(""), &out), &out)
		c.ShowGameOver(tt.state)
		if !strings.Contains(out.String(), tt.want) {
			t.Errorf("ShowGameOver(%s) = %q, want %q", tt.state, out.String(), tt.want)
		}
	}
}

func TestShowGameHistory(t *testing.T) {
	var out bytes.Buffer
	c := New(NewScanner(strings.NewReader(""), &out), &out)
	c.ShowGameHistory(game.Snapshot{
		History: []string{"e4", "e5", "Nf3"},
		State:   core.StateOngoing,
	})

	want := "1. e4 | e5\n2. Nf3 | ...\nGame state: ongoing\n"
	if got := out.String(); got != want {
		t.Errorf("history = %q, want %q", got, want)
	}
}

func TestShowLegalMoves(t *testing.T) {
	var out bytes.Buffer
	c := New(NewScanner(strings.NewReader(""), &out), &out)

	c.ShowLegalMoves([]string{"e2e4", "g1f3"}, []string{"e4", "Nf3"})
	c.ToggleVerbose()
	c.ShowLegalMoves([]string{"e2e4", "g1f3"}, []string{"e4", "Nf3"})
	c.ShowLegalMoves(nil, nil)

	want := "e2e4 g1f3\ne2e4(e4) g1f3(Nf3)\nNo legal moves.\n"
	if got := out.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}
