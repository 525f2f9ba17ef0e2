// FILE: internal/transport/transport.go
package transport

import (
	"chesscore/internal/board"
	"chesscore/internal/cli"
	"chesscore/internal/core"
	"chesscore/internal/game"
)

// View abstracts terminal input and display for the command loop
type View interface {
	GetCommand(prompt string) (*cli.Command, error)
	ReadLine(prompt string) string

	DisplayBoard(b board.Board)
	ShowMessage(msg string)
	ShowError(err error)
	ShowGameHistory(snap game.Snapshot)
	ShowLegalMoves(moves, notation []string)
	ShowComputerMove(result *game.MoveResult)
	ShowHumanMove(result *game.MoveResult)
	ShowGameOver(state core.State)
	ShowHelp()

	SetTheme(theme cli.ColorTheme) error
	ToggleVerbose() bool
	IsVerbose() bool
}

var _ View = (*cli.CLI)(nil)
