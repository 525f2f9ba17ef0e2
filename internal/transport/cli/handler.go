// FILE: internal/transport/cli/handler.go
package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"chesscore/internal/cli"
	"chesscore/internal/core"
	"chesscore/internal/game"
	"chesscore/internal/processor"
	"chesscore/internal/service"
	"chesscore/internal/transport"
)

// Computer players started from the terminal
const (
	defaultLevel      = 10
	defaultSearchTime = 1000 // ms
)

type CLIHandler struct {
	proc   *processor.Processor
	svc    *service.Service
	view   transport.View
	gameID string
}

func New(proc *processor.Processor, svc *service.Service, view transport.View) *CLIHandler {
	return &CLIHandler{
		proc: proc,
		svc:  svc,
		view: view,
	}
}

// Run is the main game loop; it returns on quit, end of input or ctx cancellation
func (h *CLIHandler) Run(ctx context.Context) {
	for ctx.Err() == nil {
		cmd, err := h.view.GetCommand(h.getPrompt())
		if err != nil {
			break
		}

		// Process command - returns false to exit
		if !h.ProcessCommand(ctx, cmd) {
			break
		}
	}
}

func (h *CLIHandler) snapshot() (game.Snapshot, bool) {
	if h.gameID == "" {
		return game.Snapshot{}, false
	}
	snap, err := h.svc.GetGame(h.gameID)
	if err != nil {
		return game.Snapshot{}, false
	}
	return snap, true
}

// Generates the appropriate command prompt
func (h *CLIHandler) getPrompt() string {
	snap, ok := h.snapshot()
	if !ok || snap.State.IsOver() {
		return "> "
	}
	if snap.NextPlayer().Type == core.PlayerComputer {
		h.view.ShowMessage("ENTER to execute computer move")
	}
	return fmt.Sprintf("[%s]> ", snap.Turn)
}

// ProcessCommand handles one user command - returns false to exit
func (h *CLIHandler) ProcessCommand(ctx context.Context, cmd *cli.Command) bool {
	switch cmd.Type {
	case cli.CmdQuit:
		return false

	case cli.CmdNone:
		// Empty command triggers computer move if it's computer's turn
		snap, ok := h.snapshot()
		if ok && !snap.State.IsOver() && snap.NextPlayer().Type == core.PlayerComputer {
			h.executeComputerMove(ctx)
		}

	case cli.CmdNew:
		h.handleNewGame()

	case cli.CmdReset:
		if !h.requireGame() {
			return true
		}
		if resp := h.proc.Execute(processor.NewResetGameCommand(h.gameID)); !resp.Success {
			h.showFailure(resp)
			return true
		}
		h.view.ShowMessage("Game restarted.")
		h.displayBoard()

	case cli.CmdMove:
		h.handleMove(cmd.Args[0])

	case cli.CmdUndo:
		if !h.requireGame() {
			return true
		}

		count := 1
		if len(cmd.Args) > 0 {
			n, err := strconv.Atoi(cmd.Args[0])
			if err != nil || n < 1 {
				h.view.ShowMessage("Invalid undo count. Usage: undo [count]")
				return true
			}
			count = n
		}

		resp := h.proc.Execute(processor.NewUndoMoveCommand(h.gameID, core.UndoRequest{Count: count}))
		if !resp.Success {
			h.showFailure(resp)
			return true
		}
		if count == 1 {
			h.view.ShowMessage("Move undone")
		} else {
			h.view.ShowMessage(fmt.Sprintf("%d moves undone", count))
		}
		h.displayBoard()

	case cli.CmdMoves:
		if !h.requireGame() {
			return true
		}
		resp := h.proc.Execute(processor.NewGetLegalMovesCommand(h.gameID))
		if !resp.Success {
			h.showFailure(resp)
			return true
		}
		legal := resp.Data.(core.LegalMovesResponse)
		h.view.ShowLegalMoves(legal.Moves, legal.SAN)

	case cli.CmdColor:
		if len(cmd.Args) < 1 {
			h.view.ShowMessage("Usage: color <off|brown|green|gray>")
			return true
		}

		theme := cli.ColorTheme(cmd.Args[0])
		if err := h.view.SetTheme(theme); err != nil {
			h.view.ShowError(err)
			return true
		}
		h.view.ShowMessage(fmt.Sprintf("Color theme set to: %s", theme))
		if h.gameID != "" {
			h.displayBoard()
		}

	case cli.CmdVerbose:
		verbose := h.view.ToggleVerbose()
		h.view.ShowMessage(fmt.Sprintf("Verbose mode: %t", verbose))

	case cli.CmdHistory:
		if !h.requireGame() {
			return true
		}
		if snap, ok := h.snapshot(); ok {
			h.view.ShowGameHistory(snap)
		}

	case cli.CmdHelp:
		h.view.ShowHelp()
	}

	return true
}

func (h *CLIHandler) requireGame() bool {
	if h.gameID == "" {
		h.view.ShowMessage("No active game. Use 'new'.")
		return false
	}
	return true
}

func (h *CLIHandler) showFailure(resp processor.ProcessorResponse) {
	if resp.Error == nil {
		h.view.ShowError(errors.New("request failed"))
		return
	}
	h.view.ShowError(errors.New(resp.Error.Error))
}

func (h *CLIHandler) displayBoard() {
	if snap, ok := h.snapshot(); ok {
		h.view.DisplayBoard(snap.Board)
	}
}

func (h *CLIHandler) handleMove(move string) {
	if !h.requireGame() {
		return
	}

	snap, ok := h.snapshot()
	if !ok {
		return
	}
	if !snap.State.IsOver() && snap.NextPlayer().Type != core.PlayerHuman {
		h.view.ShowMessage("It's not a human player's turn. Press ENTER to execute computer move.")
		return
	}

	resp := h.proc.Execute(processor.NewMakeMoveCommand(h.gameID, core.MoveRequest{Move: move}))
	if !resp.Success {
		h.showFailure(resp)
		return
	}

	snap, ok = h.snapshot()
	if !ok {
		return
	}
	if snap.LastResult != nil {
		h.view.ShowHumanMove(snap.LastResult)
	}
	h.view.DisplayBoard(snap.Board)
	if snap.State.IsOver() {
		h.view.ShowGameOver(snap.State)
	}
}

// executeComputerMove queues the search and blocks until the game leaves
// the pending state
func (h *CLIHandler) executeComputerMove(ctx context.Context) {
	resp := h.proc.Execute(processor.NewMakeMoveCommand(h.gameID, core.MoveRequest{Move: processor.ComputerMove}))
	if !resp.Success {
		h.showFailure(resp)
		return
	}
	if h.view.IsVerbose() {
		h.view.ShowMessage("Computer is thinking...")
	}

	snap, err := h.awaitComputer(ctx)
	if err != nil {
		h.view.ShowError(err)
		return
	}

	if snap.State == core.StateStuck {
		h.view.ShowError(errors.New("engine failed to move, press ENTER to retry or 'undo'"))
		return
	}

	if snap.LastResult != nil {
		h.view.ShowComputerMove(snap.LastResult)
	}
	h.view.DisplayBoard(snap.Board)
	if snap.State.IsOver() {
		h.view.ShowGameOver(snap.State)
	}
}

func (h *CLIHandler) awaitComputer(ctx context.Context) (game.Snapshot, error) {
	for {
		snap, err := h.svc.GetGame(h.gameID)
		if err != nil {
			return game.Snapshot{}, err
		}
		if snap.State != core.StatePending {
			return snap, nil
		}

		notify, err := h.svc.RegisterWait(ctx, h.gameID, snap.MoveCount)
		if err != nil {
			return game.Snapshot{}, err
		}
		select {
		case <-notify:
		case <-ctx.Done():
			return game.Snapshot{}, ctx.Err()
		}
	}
}

func (h *CLIHandler) readPlayerType(prompt string) core.PlayerType {
	input := h.view.ReadLine(prompt)
	if input == "c" || input == "computer" {
		return core.PlayerComputer
	}
	return core.PlayerHuman
}

// Starts a new game with player type selection
func (h *CLIHandler) handleNewGame() {
	whiteType := h.readPlayerType("Select White player (h/c): ")
	blackType := h.readPlayerType("Select Black player (h/c): ")

	resp := h.proc.Execute(processor.NewCreateGameCommand(core.CreateGameRequest{
		White: core.PlayerConfig{Type: whiteType, Level: defaultLevel, SearchTime: defaultSearchTime},
		Black: core.PlayerConfig{Type: blackType, Level: defaultLevel, SearchTime: defaultSearchTime},
	}))
	if !resp.Success {
		h.view.ShowError(fmt.Errorf("could not start the game: %s", resp.Error.Error))
		return
	}

	// One game at a time
	if h.gameID != "" {
		h.proc.Execute(processor.NewDeleteGameCommand(h.gameID))
	}
	h.gameID = resp.Data.(core.GameResponse).GameID

	h.view.ShowMessage("Game started.")
	h.displayBoard()
}

// GameID returns the active game, "" before the first 'new'
func (h *CLIHandler) GameID() string {
	return h.gameID
}
