// FILE: internal/rules/movegen.go
package rules

import (
	"chesscore/internal/board"
	"chesscore/internal/core"
)

// generator appends the pseudo-legal moves of the piece on from
type generator func(gs *GameState, from board.Square, moves []Move) []Move

// generators is indexed by board.Kind
var generators = [...]generator{
	board.Pawn:   (*GameState).pawnMoves,
	board.Knight: (*GameState).knightMoves,
	board.Bishop: (*GameState).bishopMoves,
	board.Rook:   (*GameState).rookMoves,
	board.Queen:  (*GameState).queenMoves,
	board.King:   (*GameState).kingMoves,
}

var (
	rookDirections   = [4][2]int{{-1, 0}, {0, -1}, {1, 0}, {0, 1}}
	bishopDirections = [4][2]int{{-1, -1}, {-1, 1}, {1, 1}, {1, -1}}
	knightOffsets    = [8][2]int{{-2, -1}, {-2, 1}, {-1, 2}, {1, 2}, {2, -1}, {2, 1}, {-1, -2}, {1, -2}}
	kingOffsets      = [8][2]int{{-1, -1}, {-1, 0}, {-1, 1}, {0, 1}, {1, 1}, {1, 0}, {1, -1}, {0, -1}}
)

// pseudoLegalMoves appends every move of the side to move, ignoring king
// safety and castling
func (gs *GameState) pseudoLegalMoves(moves []Move) []Move {
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			p := gs.board[r][c]
			if p.IsEmpty() || p.Color != gs.toMove {
				continue
			}
			moves = generators[p.Kind](gs, board.Sq(r, c), moves)
		}
	}
	return moves
}

// pawnDirection is the row delta of a forward pawn step
func pawnDirection(c core.Color) int {
	if c == core.ColorWhite {
		return -1
	}
	return 1
}

func pawnStartRow(c core.Color) int {
	if c == core.ColorWhite {
		return 6
	}
	return 1
}

func (gs *GameState) pawnMoves(from board.Square, moves []Move) []Move {
	dir := pawnDirection(gs.toMove)

	one := from.Offset(dir, 0)
	if one.OnBoard() && gs.board.IsEmpty(one) {
		moves = append(moves, newMove(from, one, &gs.board, false, false))
		two := from.Offset(2*dir, 0)
		if from.Row == pawnStartRow(gs.toMove) && gs.board.IsEmpty(two) {
			moves = append(moves, newMove(from, two, &gs.board, false, false))
		}
	}

	for _, dc := range [2]int{-1, 1} {
		to := from.Offset(dir, dc)
		if !to.OnBoard() {
			continue
		}
		target := gs.board.At(to)
		if !target.IsEmpty() && target.Color != gs.toMove {
			moves = append(moves, newMove(from, to, &gs.board, false, false))
		} else if to == gs.enPassant {
			moves = append(moves, newMove(from, to, &gs.board, true, false))
		}
	}
	return moves
}

// pawnAttacks appends both diagonal squares whatever they hold. Only the
// attack oracle uses it: a pawn covers its diagonals even when they are empty.
func (gs *GameState) pawnAttacks(from board.Square, moves []Move) []Move {
	dir := pawnDirection(gs.toMove)
	for _, dc := range [2]int{-1, 1} {
		to := from.Offset(dir, dc)
		if to.OnBoard() {
			moves = append(moves, newMove(from, to, &gs.board, false, false))
		}
	}
	return moves
}

// slide walks each direction until the edge, stopping at the first occupied
// square, which is included only when it holds an enemy piece
func (gs *GameState) slide(from board.Square, dirs [4][2]int, moves []Move) []Move {
	for _, d := range dirs {
		for i := 1; i < 8; i++ {
			to := from.Offset(d[0]*i, d[1]*i)
			if !to.OnBoard() {
				break
			}
			target := gs.board.At(to)
			if target.IsEmpty() {
				moves = append(moves, newMove(from, to, &gs.board, false, false))
				continue
			}
			if target.Color != gs.toMove {
				moves = append(moves, newMove(from, to, &gs.board, false, false))
			}
			break
		}
	}
	return moves
}

// step tries each offset once, skipping squares held by friendly pieces
func (gs *GameState) step(from board.Square, offsets [8][2]int, moves []Move) []Move {
	for _, o := range offsets {
		to := from.Offset(o[0], o[1])
		if !to.OnBoard() {
			continue
		}
		if target := gs.board.At(to); target.IsEmpty() || target.Color != gs.toMove {
			moves = append(moves, newMove(from, to, &gs.board, false, false))
		}
	}
	return moves
}

func (gs *GameState) rookMoves(from board.Square, moves []Move) []Move {
	return gs.slide(from, rookDirections, moves)
}

func (gs *GameState) bishopMoves(from board.Square, moves []Move) []Move {
	return gs.slide(from, bishopDirections, moves)
}

func (gs *GameState) queenMoves(from board.Square, moves []Move) []Move {
	moves = gs.bishopMoves(from, moves)
	return gs.rookMoves(from, moves)
}

func (gs *GameState) knightMoves(from board.Square, moves []Move) []Move {
	return gs.step(from, knightOffsets, moves)
}

// kingMoves covers the eight adjacent squares; castling is generated separately
func (gs *GameState) kingMoves(from board.Square, moves []Move) []Move {
	return gs.step(from, kingOffsets, moves)
}
