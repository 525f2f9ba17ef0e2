// FILE: internal/cli/cli.go
package cli

import (
	"fmt"
	"io"
	"strings"

	"chesscore/internal/board"
	"chesscore/internal/core"
	"chesscore/internal/game"
)

type CommandType int

const (
	CmdNone CommandType = iota
	CmdNew
	CmdReset
	CmdMove
	CmdUndo
	CmdMoves
	CmdColor
	CmdVerbose
	CmdHistory
	CmdHelp
	CmdQuit
)

type Command struct {
	Type CommandType
	Args []string
}

type ColorTheme string

const (
	ThemeOff   ColorTheme = "off"
	ThemeBrown ColorTheme = "brown"
	ThemeGreen ColorTheme = "green"
	ThemeGray  ColorTheme = "gray"
)

type themeColors struct {
	lightBg string
	darkBg  string
	white   string
	black   string
	reset   string
}

var themes = map[ColorTheme]themeColors{
	ThemeOff: {},
	ThemeBrown: {
		lightBg: "\033[48;5;230m", // Beige
		darkBg:  "\033[48;5;94m",  // Brown
		white:   "\033[97m",
		black:   "\033[30m",
		reset:   "\033[0m",
	},
	ThemeGreen: {
		lightBg: "\033[48;5;157m", // Light green
		darkBg:  "\033[48;5;22m",  // Dark green
		white:   "\033[97m",
		black:   "\033[30m",
		reset:   "\033[0m",
	},
	ThemeGray: {
		lightBg: "\033[48;5;251m", // Light gray
		darkBg:  "\033[48;5;240m", // Dark gray
		white:   "\033[97m",
		black:   "\033[30m",
		reset:   "\033[0m",
	},
}

type CLI struct {
	input   LineReader
	output  io.Writer
	theme   ColorTheme
	verbose bool
}

func New(input LineReader, output io.Writer) *CLI {
	return &CLI{
		input:  input,
		output: output,
		theme:  ThemeOff,
	}
}

// GetCommand shows prompt and reads a command synchronously. End of input reads as quit.
func (c *CLI) GetCommand(prompt string) (*Command, error) {
	input, err := c.input.ReadLine(prompt)
	if err == io.EOF {
		return &Command{Type: CmdQuit}, nil
	}
	if err != nil {
		return nil, err
	}
	return parseCommand(input), nil
}

func parseCommand(input string) *Command {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return &Command{Type: CmdNone}
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "new":
		return &Command{Type: CmdNew, Args: args}
	case "reset":
		return &Command{Type: CmdReset}
	case "undo":
		return &Command{Type: CmdUndo, Args: args}
	case "moves":
		return &Command{Type: CmdMoves}
	case "color":
		return &Command{Type: CmdColor, Args: args}
	case "verbose":
		return &Command{Type: CmdVerbose}
	case "history":
		return &Command{Type: CmdHistory}
	case "help", "?":
		return &Command{Type: CmdHelp}
	case "quit", "exit":
		return &Command{Type: CmdQuit}
	default:
		// Assume it's a move
		return &Command{Type: CmdMove, Args: []string{cmd}}
	}
}

func (c *CLI) SetTheme(theme ColorTheme) error {
	if _, ok := themes[theme]; !ok {
		return fmt.Errorf("invalid theme: %s (use: off, brown, green, gray)", theme)
	}
	c.theme = theme
	return nil
}

func (c *CLI) ToggleVerbose() bool {
	c.verbose = !c.verbose
	return c.verbose
}

func (c *CLI) IsVerbose() bool {
	return c.verbose
}

func (c *CLI) ShowMessage(msg string) {
	fmt.Fprintln(c.output, msg)
}

func (c *CLI) ShowError(err error) {
	c.ShowMessage(fmt.Sprintf("Error: %v", err))
}

// ReadLine asks a question and returns the trimmed answer, "" at end of input
func (c *CLI) ReadLine(prompt string) string {
	line, err := c.input.ReadLine(prompt)
	if err != nil {
		return ""
	}
	return line
}

func (c *CLI) DisplayBoard(b board.Board) {
	theme := themes[c.theme]
	var sb strings.Builder

	sb.WriteString("\n  a b c d e f g h\n")

	for r := 0; r < 8; r++ {
		sb.WriteString(fmt.Sprintf("%d ", 8-r))
		for f := 0; f < 8; f++ {
			piece := b[r][f]

			if c.theme == ThemeOff {
				if piece.IsEmpty() {
					sb.WriteString(". ")
				} else {
					sb.WriteString(fmt.Sprintf("%c ", piece.Symbol()))
				}
				continue
			}

			bg := theme.darkBg
			if (r+f)%2 == 0 {
				bg = theme.lightBg
			}

			if piece.IsEmpty() {
				sb.WriteString(fmt.Sprintf("%s  %s", bg, theme.reset))
			} else {
				color := theme.black
				if piece.Color == core.ColorWhite {
					color = theme.white
				}
				sb.WriteString(fmt.Sprintf("%s%s%c %s", bg, color, piece.Symbol(), theme.reset))
			}
		}
		sb.WriteString(fmt.Sprintf(" %d\n", 8-r))
	}
	sb.WriteString("  a b c d e f g h\n")

	c.ShowMessage(sb.String())
}

func (c *CLI) ShowHelp() {
	help := `Commands:
  new              - Start a new game with player type selection
  reset            - Restart the current game with the same players
  <move>           - Make a move (e.g., e2e4, g1f3, e7e8q)
  undo [count]     - Undo last move(s), default 1
  moves            - List the legal moves
  color <theme>    - Set board color theme (off|brown|green|gray)
  verbose          - Toggle detailed move information
  history          - Show game move history
  quit/exit        - Exit the program
  help/?           - Show this help message

During any game:
  Press ENTER      - Execute computer move (when it's computer's turn)`

	c.ShowMessage(help)
}

func (c *CLI) ShowWelcome() {
	c.ShowMessage("Welcome to Chess!")
	c.ShowMessage("Commands: new, reset, <move>, undo, moves, quit/exit, verbose, history, help/?")
	c.ShowMessage("Press ENTER to execute computer moves when it's computer's turn.")
	c.ShowMessage("")
}

func (c *CLI) ShowGameHistory(snap game.Snapshot) {
	moves := snap.History
	if len(moves) == 0 {
		c.ShowMessage("No moves yet.")
	}
	for i := 0; i < len(moves); i += 2 {
		moveNum := i/2 + 1
		if i+1 < len(moves) {
			c.ShowMessage(fmt.Sprintf("%d. %s | %s", moveNum, moves[i], moves[i+1]))
		} else {
			c.ShowMessage(fmt.Sprintf("%d. %s | ...", moveNum, moves[i]))
		}
	}
	if c.verbose {
		c.ShowMessage(fmt.Sprintf("Moves: %s", strings.Join(snap.Moves, " ")))
	}
	c.ShowMessage(fmt.Sprintf("Game state: %s", snap.State))
}

func (c *CLI) ShowLegalMoves(moves, notation []string) {
	if len(moves) == 0 {
		c.ShowMessage("No legal moves.")
		return
	}
	if !c.verbose || len(notation) != len(moves) {
		c.ShowMessage(strings.Join(moves, " "))
		return
	}
	pairs := make([]string, len(moves))
	for i := range moves {
		pairs[i] = fmt.Sprintf("%s(%s)", moves[i], notation[i])
	}
	c.ShowMessage(strings.Join(pairs, " "))
}

func (c *CLI) ShowComputerMove(result *game.MoveResult) {
	line := fmt.Sprintf("Computer (%s): %s", result.PlayerColor, result.Notation)
	if c.verbose {
		line = fmt.Sprintf("Computer (%s): %s [%s] (depth=%d, score=%d)",
			result.PlayerColor, result.Notation, result.Move, result.Depth, result.Score)
		if result.Fallback {
			line += " random fallback"
		}
	}
	c.ShowMessage(line)
}

func (c *CLI) ShowHumanMove(result *game.MoveResult) {
	if c.verbose {
		c.ShowMessage(fmt.Sprintf("Your move: %s [%s]", result.Notation, result.Move))
	}
}

func (c *CLI) ShowGameOver(state core.State) {
	switch state {
	case core.StateWhiteWins:
		c.ShowMessage("\nCheckmate! White wins.")
	case core.StateBlackWins:
		c.ShowMessage("\nCheckmate! Black wins.")
	case core.StateStalemate:
		c.ShowMessage("\nStalemate! The game is drawn.")
	default:
		c.ShowMessage(fmt.Sprintf("\nGame Over: %s", state))
	}
	c.ShowMessage("Start a new game with 'new' or 'reset', or take back moves with 'undo'.")
}
