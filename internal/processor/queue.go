// FILE: internal/processor/queue.go
package processor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"chesscore/internal/engine"
)

const (
	queueSize = 100

	// searchSlack is added to twice the requested search time
	searchSlack = time.Second
)

var (
	ErrQueueFull     = errors.New("engine queue is full")
	ErrQueueShutdown = errors.New("engine queue is shutting down")
)

// SearcherFactory creates the searcher owned by one worker
type SearcherFactory func() (engine.Searcher, error)

// EngineTask contains computer move calculation request and response channel
type EngineTask struct {
	GameID   string
	Ticket   uint64
	Request  engine.SearchRequest
	Response chan<- EngineResult
}

// EngineResult contains the outcome of an engine calculation
type EngineResult struct {
	GameID string
	Ticket uint64
	Search *engine.SearchResult
	Error  error
}

// EngineQueue manages async engine computations on a fixed worker pool
type EngineQueue struct {
	tasks     chan EngineTask
	workers   int
	factory   SearcherFactory
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

// NewEngineQueue creates a queue with specified worker count
func NewEngineQueue(workerCount int, factory SearcherFactory) *EngineQueue {
	if workerCount < 1 {
		workerCount = 2
	}

	ctx, cancel := context.WithCancel(context.Background())

	q := &EngineQueue{
		tasks:   make(chan EngineTask, queueSize),
		workers: workerCount,
		factory: factory,
		ctx:     ctx,
		cancel:  cancel,
	}

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
	return q
}

// worker owns one searcher; a worker whose engine fails to start plays randomly
func (q *EngineQueue) worker(id int) {
	defer q.wg.Done()

	var s engine.Searcher
	if q.factory != nil {
		var err error
		if s, err = q.factory(); err != nil {
			log.Printf("Worker %d failed to initialize engine, using random moves: %v", id, err)
			s = nil
		}
	}
	if s == nil {
		s = engine.NewRandom(uint64(time.Now().UnixNano()) + uint64(id))
	}
	defer s.Close()

	for {
		select {
		case task, ok := <-q.tasks:
			if !ok {
				return
			}

			result := q.processTask(s, task)

			// Response channels are buffered; a full one means nobody listens
			select {
			case task.Response <- result:
			default:
			}

		case <-q.ctx.Done():
			return
		}
	}
}

// processTask executes a single engine calculation under a deadline
func (q *EngineQueue) processTask(s engine.Searcher, task EngineTask) EngineResult {
	result := EngineResult{
		GameID: task.GameID,
		Ticket: task.Ticket,
	}

	timeout := time.Duration(task.Request.SearchTime)*2*time.Millisecond + searchSlack
	ctx, cancel := context.WithTimeout(q.ctx, timeout)
	defer cancel()

	search, err := s.Search(ctx, task.Request)
	if err != nil {
		result.Error = fmt.Errorf("engine search failed: %w", err)
		return result
	}
	result.Search = search
	return result
}

// Submit adds a task to the queue without blocking
func (q *EngineQueue) Submit(task EngineTask) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueShutdown
	}

	select {
	case q.tasks <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

// SubmitAsync submits a task and runs callback with its result in the background
func (q *EngineQueue) SubmitAsync(gameID string, ticket uint64, req engine.SearchRequest, callback func(EngineResult)) error {
	respChan := make(chan EngineResult, 1)

	task := EngineTask{
		GameID:   gameID,
		Ticket:   ticket,
		Request:  req,
		Response: respChan,
	}

	if err := q.Submit(task); err != nil {
		return err
	}

	go func() {
		select {
		case result := <-respChan:
			callback(result)
		case <-q.ctx.Done():
			callback(EngineResult{GameID: gameID, Ticket: ticket, Error: ErrQueueShutdown})
		}
	}()

	return nil
}

// Shutdown stops accepting tasks, cancels running searches and waits for workers
func (q *EngineQueue) Shutdown(timeout time.Duration) error {
	q.closeOnce.Do(func() {
		q.mu.Lock()
		q.closed = true
		close(q.tasks)
		q.mu.Unlock()
		q.cancel()
	})

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("shutdown timeout exceeded")
	}
}
