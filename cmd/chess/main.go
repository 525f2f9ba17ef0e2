// FILE: cmd/chess/main.go
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"chesscore/internal/cli"
	"chesscore/internal/engine"
	"chesscore/internal/processor"
	"chesscore/internal/service"
	clitransport "chesscore/internal/transport/cli"

	"golang.org/x/term"
)

const (
	historyFileName = ".chess_history"
	shutdownTimeout = time.Second
)

func main() {
	enginePath := flag.String("engine", engine.DefaultPath, "UCI engine binary, 'random' for random moves")
	flag.Parse()

	// Engine and worker chatter would interleave with the board
	log.SetOutput(os.Stderr)

	svc, err := service.New(nil)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}

	cfg := processor.Config{Workers: 1}
	if *enginePath != "random" {
		path := *enginePath
		cfg.NewSearcher = func() (engine.Searcher, error) {
			return engine.NewUCI(path)
		}
	}
	proc := processor.New(svc, cfg)

	input, err := newLineReader()
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer input.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	view := cli.New(input, os.Stdout)
	handler := clitransport.New(proc, svc, view)

	view.ShowWelcome()
	handler.Run(ctx) // All game loop logic is in the handler

	if err := proc.Close(); err != nil {
		log.Printf("Processor close error: %v", err)
	}
	if err := svc.Shutdown(shutdownTimeout); err != nil {
		log.Printf("Service shutdown error: %v", err)
	}
}

// newLineReader uses readline on a terminal and a plain scanner for pipes
func newLineReader() (cli.LineReader, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return cli.NewScanner(os.Stdin, os.Stdout), nil
	}

	history := ""
	if home, err := os.UserHomeDir(); err == nil {
		history = filepath.Join(home, historyFileName)
	}
	return cli.NewReadline(history)
}
