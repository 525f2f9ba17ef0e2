// FILE: cmd/chess-server/pid.go
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"syscall"
)

const serverName = "chess-server"

// pidFile records the server's PID, optionally holding an exclusive flock on
// it for the life of the process so a second server refuses to start
type pidFile struct {
	path     string
	file     *os.File
	locked   bool
	released bool
}

// acquirePID writes the current PID to path. With lock set, a PID file held
// by a live server is an error; a leftover file nobody holds is taken over.
func acquirePID(path string, lock bool) (*pidFile, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("cannot open PID file: %w", err)
	}

	if lock {
		if err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
			holder := readPID(file)
			file.Close()
			if errors.Is(err, syscall.EWOULDBLOCK) {
				if holder > 0 {
					return nil, fmt.Errorf("another %s is running (pid %d, PID file %s)", serverName, holder, path)
				}
				return nil, fmt.Errorf("another %s holds PID file %s", serverName, path)
			}
			return nil, fmt.Errorf("lock failed: %w", err)
		}
	}

	p := &pidFile{path: path, file: file, locked: lock}
	if err := p.write(os.Getpid()); err != nil {
		p.Release()
		return nil, err
	}
	return p, nil
}

func (p *pidFile) write(pid int) error {
	if err := p.file.Truncate(0); err != nil {
		return fmt.Errorf("cannot truncate PID file: %w", err)
	}
	if _, err := p.file.WriteAt([]byte(strconv.Itoa(pid)+"\n"), 0); err != nil {
		return fmt.Errorf("cannot write PID: %w", err)
	}
	if err := p.file.Sync(); err != nil {
		return fmt.Errorf("cannot sync PID file: %w", err)
	}
	return nil
}

// readPID returns the PID stored in an open PID file, 0 if unreadable
func readPID(file *os.File) int {
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return 0
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return 0
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0
	}
	return pid
}

// Release removes the file while the lock is still held, then unlocks.
// It is the last step of the server's shutdown and safe to call twice.
func (p *pidFile) Release() {
	if p.released {
		return
	}
	p.released = true

	os.Remove(p.path)
	if p.locked {
		syscall.Flock(int(p.file.Fd()), syscall.LOCK_UN)
	}
	p.file.Close()
}
