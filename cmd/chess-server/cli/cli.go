// FILE: cmd/chess-server/cli/cli.go
package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"chesscore/internal/storage"
)

// Run is the entry point for the database maintenance commands
func Run(args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("subcommand required: init, delete, or query")
	}

	switch args[0] {
	case "init":
		return runInit(args[1:], out)
	case "delete":
		return runDelete(args[1:], out)
	case "query":
		return runQuery(args[1:], out)
	default:
		return fmt.Errorf("unknown subcommand: %s", args[0])
	}
}

// parsePath parses the flags of a subcommand and requires -path
func parsePath(fs *flag.FlagSet, path *string, args []string) error {
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *path == "" {
		return fmt.Errorf("database path required")
	}
	return nil
}

func runInit(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	fs.SetOutput(out)
	path := fs.String("path", "", "Database file path (required)")

	if err := parsePath(fs, path, args); err != nil {
		return err
	}

	store, err := storage.NewStore(*path, false)
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}
	defer store.Close()

	if err := store.InitDB(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	fmt.Fprintf(out, "Database initialized at: %s\n", *path)
	return nil
}

func runDelete(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	fs.SetOutput(out)
	path := fs.String("path", "", "Database file path (required)")

	if err := parsePath(fs, path, args); err != nil {
		return err
	}

	store, err := storage.NewStore(*path, false)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	if err := store.DeleteDB(); err != nil {
		return fmt.Errorf("failed to delete database: %w", err)
	}

	fmt.Fprintf(out, "Database deleted: %s\n", *path)
	return nil
}

func runQuery(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	fs.SetOutput(out)
	path := fs.String("path", "", "Database file path (required)")
	gameID := fs.String("gameId", "", "Game ID to filter (optional, * for all)")
	playerID := fs.String("playerId", "", "Player ID to filter (optional, * for all)")
	moves := fs.Bool("moves", false, "List the moves of each game found")

	if err := parsePath(fs, path, args); err != nil {
		return err
	}

	store, err := storage.NewStore(*path, false)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	games, err := store.QueryGames(*gameID, *playerID)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if len(games) == 0 {
		fmt.Fprintln(out, "No games found")
		return nil
	}

	// Print results in tabular format
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Game ID\tWhite Player\tBlack Player\tStart Time")
	fmt.Fprintln(w, strings.Repeat("-", 80))

	for _, g := range games {
		whiteInfo := fmt.Sprintf("%s (T%d)", short(g.WhitePlayerID), g.WhiteType)
		blackInfo := fmt.Sprintf("%s (T%d)", short(g.BlackPlayerID), g.BlackType)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			short(g.GameID)+"...",
			whiteInfo,
			blackInfo,
			g.StartTimeUTC.Format("2006-01-02 15:04:05"),
		)
	}
	w.Flush()

	if *moves {
		for _, g := range games {
			records, err := store.QueryMoves(g.GameID)
			if err != nil {
				return fmt.Errorf("move query failed: %w", err)
			}
			fmt.Fprintf(out, "\n%s:", g.GameID)
			for _, m := range records {
				if m.PlayerColor == "w" {
					fmt.Fprintf(out, " %d.", (m.MoveNumber+1)/2)
				}
				fmt.Fprintf(out, " %s", m.MoveSAN)
			}
			fmt.Fprintln(out)
		}
	}

	fmt.Fprintf(out, "\nFound %d game(s)\n", len(games))
	return nil
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
