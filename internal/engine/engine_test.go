package engine

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// fakeEngine answers the UCI handshake and replies to every search with the
// given info and bestmove lines
const fakeEngine = `#!/bin/sh
while read line; do
  case "$line" in
    uci) echo "id name fake"; echo "uciok" ;;
    isready) echo "readyok" ;;
    "position startpos moves e2e4") echo "info string after e2e4" ;;
    go*) echo "info depth 3 score cp 10"; echo "info depth 7 score cp 31 pv e7e5"; echo "bestmove e7e5 ponder g1f3" ;;
    quit) exit 0 ;;
  esac
done
`

// sleepyEngine never answers "go" until it is told to stop
const sleepyEngine = `#!/bin/sh
while read line; do
  case "$line" in
    uci) echo "uciok" ;;
    isready) echo "readyok" ;;
    stop) echo "bestmove a7a6" ;;
    quit) exit 0 ;;
  esac
done
`

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	path := filepath.Join(t.TempDir(), "engine.sh")
	if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestUCISearch(t *testing.T) {
	u, err := NewUCI(writeScript(t, fakeEngine))
	if err != nil {
		t.Fatalf("NewUCI() error: %v", err)
	}
	defer u.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for i := 0; i < 2; i++ {
		res, err := u.Search(ctx, SearchRequest{Moves: []string{"e2e4"}, Level: 30, SearchTime: 50})
		if err != nil {
			t.Fatalf("Search() error: %v", err)
		}
		want := &SearchResult{BestMove: "e7e5", Score: 31, Depth: 7}
		if diff := cmp.Diff(want, res); diff != "" {
			t.Errorf("Search() (-want +got):\n%s", diff)
		}
	}
}

func TestUCISearchCancelled(t *testing.T) {
	u, err := NewUCI(writeScript(t, sleepyEngine))
	if err != nil {
		t.Fatalf("NewUCI() error: %v", err)
	}
	defer u.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if _, err := u.Search(ctx, SearchRequest{SearchTime: 60000}); err == nil {
		t.Fatal("Search() with expired context succeeded")
	}

	// The engine must still answer after an aborted search
	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	if err := u.ready(ctx2); err != nil {
		t.Errorf("engine unusable after abort: %v", err)
	}
}

func TestNewUCIMissingBinary(t *testing.T) {
	if _, err := NewUCI(filepath.Join(t.TempDir(), "no-such-engine")); err == nil {
		t.Error("NewUCI(missing) error = nil")
	}
}

func TestStockfish(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping engine integration test in short mode")
	}
	path, err := exec.LookPath(DefaultPath)
	if err != nil {
		t.Skip("stockfish not installed")
	}
	u, err := NewUCI(path)
	if err != nil {
		t.Fatalf("NewUCI() error: %v", err)
	}
	defer u.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Fool's mate pending: the only sensible reply set includes d8h4
	legal := []string{"d8h4", "e5e4", "a7a6"}
	res, err := u.Search(ctx, SearchRequest{Moves: []string{"f2f3", "e7e5", "g2g4"}, Level: 20, SearchTime: 200, Legal: legal})
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if res.BestMove != "d8h4" {
		t.Errorf("BestMove = %q, want d8h4", res.BestMove)
	}
}

func TestParseSearchMate(t *testing.T) {
	res := parseSearch([]string{"info depth 12 score mate 3 pv d8h4", "bestmove d8h4"})
	if !res.IsMate || res.MateIn != 3 || res.Score != 99997 || res.BestMove != "d8h4" {
		t.Errorf("parseSearch() = %+v", res)
	}

	res = parseSearch([]string{"bestmove (none)"})
	if res.Found([]string{"e2e4"}) {
		t.Error("Found() = true for (none)")
	}
}

func TestFound(t *testing.T) {
	legal := []string{"e2e4", "d2d4"}
	tests := []struct {
		res  *SearchResult
		want bool
	}{
		{nil, false},
		{&SearchResult{}, false},
		{&SearchResult{BestMove: NoMove}, false},
		{&SearchResult{BestMove: "a2a5"}, false},
		{&SearchResult{BestMove: "d2d4"}, true},
	}
	for _, tt := range tests {
		if got := tt.res.Found(legal); got != tt.want {
			t.Errorf("Found(%+v) = %v, want %v", tt.res, got, tt.want)
		}
	}
}

func TestRandom(t *testing.T) {
	r := NewRandom(1)
	legal := []string{"e2e4", "d2d4", "g1f3"}

	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		res, err := r.Search(context.Background(), SearchRequest{Legal: legal})
		if err != nil {
			t.Fatal(err)
		}
		if !res.Found(legal) {
			t.Fatalf("Random picked %q outside the legal set", res.BestMove)
		}
		seen[res.BestMove] = true
	}
	if len(seen) != len(legal) {
		t.Errorf("Random covered %d of %d moves", len(seen), len(legal))
	}

	if got := r.Pick(nil); got != NoMove {
		t.Errorf("Pick(nil) = %q, want %q", got, NoMove)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Search(ctx, SearchRequest{Legal: legal}); err == nil {
		t.Error("Search(cancelled) error = nil")
	}
}
