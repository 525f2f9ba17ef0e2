// FILE: internal/cli/input.go
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

// LineReader reads one line of user input after showing a prompt.
// It returns io.EOF when input is exhausted or interrupted.
type LineReader interface {
	ReadLine(prompt string) (string, error)
	Close() error
}

type scannerReader struct {
	scanner *bufio.Scanner
	output  io.Writer
}

// NewScanner reads lines from a plain stream, for pipes and tests
func NewScanner(input io.Reader, output io.Writer) LineReader {
	return &scannerReader{
		scanner: bufio.NewScanner(input),
		output:  output,
	}
}

func (r *scannerReader) ReadLine(prompt string) (string, error) {
	fmt.Fprint(r.output, prompt)
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(r.scanner.Text()), nil
}

func (r *scannerReader) Close() error {
	return nil
}

type readlineReader struct {
	rl *readline.Instance
}

// NewReadline reads lines from the terminal with editing and a history file
func NewReadline(historyFile string) (LineReader, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize readline: %w", err)
	}
	return &readlineReader{rl: rl}, nil
}

func (r *readlineReader) ReadLine(prompt string) (string, error) {
	r.rl.SetPrompt(prompt)
	line, err := r.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		return "", io.EOF
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (r *readlineReader) Close() error {
	return r.rl.Close()
}
