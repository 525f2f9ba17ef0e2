// FILE: internal/engine/uci.go
package engine

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultPath is looked up in PATH
	DefaultPath = "stockfish"

	handshakeTimeout = 5 * time.Second
	defaultMoveTime  = 1000
	closeGrace       = time.Second
)

var errEngineClosed = errors.New("engine closed unexpectedly")

// UCI drives an out-of-process engine over the UCI protocol. A single reader
// goroutine owns stdout; waits consume its line channel. Searches are serial.
type UCI struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser
	lines chan string
	mu    sync.Mutex
}

// NewUCI starts the engine binary at path and completes the handshake
func NewUCI(path string) (*UCI, error) {
	cmd := exec.Command(path)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}

	if err = cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start engine: %w", err)
	}

	u := &UCI{
		cmd:   cmd,
		stdin: stdin,
		lines: make(chan string, 64),
	}
	go u.readLoop(stdout)

	ctx, cancel := context.WithTimeout(context.Background(), handshakeTimeout)
	defer cancel()

	if err := u.initialize(ctx); err != nil {
		u.Close()
		return nil, err
	}
	return u, nil
}

func (u *UCI) readLoop(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		u.lines <- scanner.Text()
	}
	close(u.lines)
}

func (u *UCI) initialize(ctx context.Context) error {
	if err := u.send("uci"); err != nil {
		return err
	}
	if _, err := u.waitFor(ctx, func(line string) bool { return line == "uciok" }); err != nil {
		return fmt.Errorf("waiting for uciok: %w", err)
	}
	return u.ready(ctx)
}

func (u *UCI) ready(ctx context.Context) error {
	if err := u.send("isready"); err != nil {
		return err
	}
	if _, err := u.waitFor(ctx, func(line string) bool { return line == "readyok" }); err != nil {
		return fmt.Errorf("waiting for readyok: %w", err)
	}
	return nil
}

// waitFor consumes lines until match accepts one, returning every line read
func (u *UCI) waitFor(ctx context.Context, match func(string) bool) ([]string, error) {
	var seen []string
	for {
		select {
		case line, ok := <-u.lines:
			if !ok {
				return seen, errEngineClosed
			}
			seen = append(seen, line)
			if match(line) {
				return seen, nil
			}
		case <-ctx.Done():
			return seen, ctx.Err()
		}
	}
}

func (u *UCI) send(cmd string) error {
	if _, err := fmt.Fprintln(u.stdin, cmd); err != nil {
		return fmt.Errorf("engine write failed: %w", err)
	}
	return nil
}

// Search sets up the position from the start position and searches for
// req.SearchTime milliseconds. A cancelled context sends "stop" and drains
// the pending bestmove so the engine stays usable.
func (u *UCI) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	level := min(max(req.Level, 0), 20)
	moveTime := req.SearchTime
	if moveTime <= 0 {
		moveTime = defaultMoveTime
	}

	setup := []string{
		"ucinewgame",
		fmt.Sprintf("setoption name Skill Level value %d", level),
		positionCommand(req.Moves),
	}
	for _, c := range setup {
		if err := u.send(c); err != nil {
			return nil, err
		}
	}
	if err := u.ready(ctx); err != nil {
		return nil, err
	}

	if err := u.send(fmt.Sprintf("go movetime %d", moveTime)); err != nil {
		return nil, err
	}

	isBest := func(line string) bool { return strings.HasPrefix(line, "bestmove") }
	lines, err := u.waitFor(ctx, isBest)
	if err != nil {
		if errors.Is(err, errEngineClosed) {
			return nil, err
		}
		// Abandon the search but keep the protocol in step
		u.send("stop")
		drain, cancel := context.WithTimeout(context.Background(), closeGrace)
		defer cancel()
		u.waitFor(drain, isBest)
		return nil, fmt.Errorf("search aborted: %w", err)
	}

	return parseSearch(lines), nil
}

func positionCommand(moves []string) string {
	if len(moves) == 0 {
		return "position startpos"
	}
	return "position startpos moves " + strings.Join(moves, " ")
}

// parseSearch reads the last reported depth and score and the bestmove line
func parseSearch(lines []string) *SearchResult {
	result := &SearchResult{}
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "info":
			for i := 1; i < len(fields)-1; i++ {
				switch fields[i] {
				case "depth":
					fmt.Sscanf(fields[i+1], "%d", &result.Depth)
				case "cp":
					fmt.Sscanf(fields[i+1], "%d", &result.Score)
					result.IsMate = false
				case "mate":
					fmt.Sscanf(fields[i+1], "%d", &result.MateIn)
					result.IsMate = true
					if result.MateIn > 0 {
						result.Score = 100000 - result.MateIn
					} else {
						result.Score = -100000 - result.MateIn
					}
				}
			}
		case "bestmove":
			if len(fields) >= 2 {
				result.BestMove = fields[1]
			}
		}
	}
	return result
}

// Close asks the engine to quit and kills it after a grace period
func (u *UCI) Close() error {
	u.send("quit")
	u.stdin.Close()
	go func() {
		for range u.lines {
		}
	}()

	done := make(chan error, 1)
	go func() {
		done <- u.cmd.Wait()
	}()

	select {
	case <-done:
		return nil
	case <-time.After(closeGrace):
		return u.cmd.Process.Kill()
	}
}
