// FILE: internal/engine/random.go
package engine

import (
	"context"
	"math/rand/v2"
	"sync"
)

// Random picks uniformly among the legal moves
type Random struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandom(seed uint64) *Random {
	return &Random{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Pick returns a uniformly chosen move, or NoMove for an empty list
func (r *Random) Pick(legal []string) string {
	if len(legal) == 0 {
		return NoMove
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return legal[r.rng.IntN(len(legal))]
}

func (r *Random) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &SearchResult{BestMove: r.Pick(req.Legal)}, nil
}

func (r *Random) Close() error { return nil }
