// FILE: internal/engine/searcher.go
package engine

import (
	"context"
	"slices"
)

// NoMove is the best move reported when nothing was found
const NoMove = "(none)"

// SearchRequest describes the position as the move list from the standard
// start position, plus the moves the caller will accept
type SearchRequest struct {
	Moves      []string // UCI history
	Legal      []string // UCI legal moves of the current position
	Level      int      // skill 0-20
	SearchTime int      // milliseconds
}

type SearchResult struct {
	BestMove string
	Score    int
	Depth    int
	IsMate   bool
	MateIn   int
}

// Found reports whether the result carries a move from the legal set
func (r *SearchResult) Found(legal []string) bool {
	if r == nil || r.BestMove == "" || r.BestMove == NoMove {
		return false
	}
	return slices.Contains(legal, r.BestMove)
}

// Searcher picks a move for the side to move
type Searcher interface {
	Search(ctx context.Context, req SearchRequest) (*SearchResult, error)
	Close() error
}
