// FILE: internal/service/waiter.go
package service

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const (
	// WaitTimeout is the maximum time a client can wait for notifications
	WaitTimeout = 25 * time.Second
)

// WaitRegistry manages long-polling clients waiting for game state changes
type WaitRegistry struct {
	mu       sync.Mutex
	waiters  map[string][]*WaitRequest // gameID → waiting clients
	timeout  time.Duration
	shutdown chan struct{}
	closed   bool
	wg       sync.WaitGroup
}

// WaitRequest represents a single client waiting for game updates. Notify is
// closed exactly once: on a change, timeout, game removal or shutdown.
type WaitRequest struct {
	MoveCount int           // Last known move count
	Notify    chan struct{} // Closed on wake-up
	GameID    string
	once      sync.Once
	timer     *time.Timer
}

func (req *WaitRequest) wake() {
	req.once.Do(func() { close(req.Notify) })
}

// NewWaitRegistry creates a new wait registry
func NewWaitRegistry() *WaitRegistry {
	return &WaitRegistry{
		waiters:  make(map[string][]*WaitRequest),
		timeout:  WaitTimeout,
		shutdown: make(chan struct{}),
	}
}

// RegisterWait registers a client to wait for game state changes. The
// returned channel is closed when the client should re-read the game.
func (w *WaitRegistry) RegisterWait(ctx context.Context, gameID string, moveCount int) <-chan struct{} {
	req := &WaitRequest{
		MoveCount: moveCount,
		Notify:    make(chan struct{}),
		GameID:    gameID,
	}
	req.timer = time.AfterFunc(w.timeout, req.wake)

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		req.timer.Stop()
		req.wake()
		return req.Notify
	}
	w.waiters[gameID] = append(w.waiters[gameID], req)
	w.wg.Add(1)
	w.mu.Unlock()

	go func() {
		defer w.wg.Done()
		select {
		case <-ctx.Done():
			// Client disconnected
		case <-req.Notify:
		case <-w.shutdown:
		}
		req.timer.Stop()
		req.wake()
		w.removeWaiter(gameID, req)
	}()

	return req.Notify
}

// NotifyGame wakes clients whose known move count differs from currentMoveCount
func (w *WaitRegistry) NotifyGame(gameID string, currentMoveCount int) {
	w.mu.Lock()
	waitList := append([]*WaitRequest(nil), w.waiters[gameID]...)
	w.mu.Unlock()

	for _, req := range waitList {
		if req.MoveCount != currentMoveCount {
			req.wake()
		}
	}
}

// NotifyAll wakes every client of a game, for changes that keep the move count
func (w *WaitRegistry) NotifyAll(gameID string) {
	w.mu.Lock()
	waitList := append([]*WaitRequest(nil), w.waiters[gameID]...)
	w.mu.Unlock()

	for _, req := range waitList {
		req.wake()
	}
}

// RemoveGame wakes and forgets all waiters for a game (called before game deletion)
func (w *WaitRegistry) RemoveGame(gameID string) {
	w.mu.Lock()
	waitList := w.waiters[gameID]
	delete(w.waiters, gameID)
	w.mu.Unlock()

	for _, req := range waitList {
		req.wake()
	}
}

// Waiting returns the number of registered clients for a game
func (w *WaitRegistry) Waiting(gameID string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.waiters[gameID])
}

// Shutdown wakes every client and waits for the cleanup goroutines
func (w *WaitRegistry) Shutdown(timeout time.Duration) error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.shutdown)
	}
	w.mu.Unlock()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("wait registry shutdown timed out after %v", timeout)
	}
}

// removeWaiter removes a specific waiter from the registry
func (w *WaitRegistry) removeWaiter(gameID string, req *WaitRequest) {
	w.mu.Lock()
	defer w.mu.Unlock()

	waitList := w.waiters[gameID]
	for i, waiter := range waitList {
		if waiter == req {
			w.waiters[gameID] = append(waitList[:i], waitList[i+1:]...)
			break
		}
	}

	if len(w.waiters[gameID]) == 0 {
		delete(w.waiters, gameID)
	}
}
