// FILE: internal/rules/attack.go
package rules

import "chesscore/internal/board"

// SquareUnderAttack reports whether the side not to move covers sq. It works
// purely at the pseudo-legal layer: no castling and no check filtering, so it
// never re-enters ValidMoves. Pawn coverage is the two forward diagonals,
// empty or not; pawn pushes never attack.
func (gs *GameState) SquareUnderAttack(sq board.Square) bool {
	gs.toMove = gs.toMove.Opposite()
	gs.attackBuf = gs.attackMoves(gs.attackBuf[:0])
	gs.toMove = gs.toMove.Opposite()

	for _, m := range gs.attackBuf {
		if m.to == sq {
			return true
		}
	}
	return false
}

// attackMoves is the oracle's own generation path. It differs from
// pseudoLegalMoves only for pawns, which cover diagonals and never pushes.
func (gs *GameState) attackMoves(moves []Move) []Move {
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			p := gs.board[r][c]
			if p.IsEmpty() || p.Color != gs.toMove {
				continue
			}
			from := board.Sq(r, c)
			if p.Kind == board.Pawn {
				moves = gs.pawnAttacks(from, moves)
				continue
			}
			moves = generators[p.Kind](gs, from, moves)
		}
	}
	return moves
}

// InCheck reports whether the king of the side to move is attacked
func (gs *GameState) InCheck() bool {
	return gs.SquareUnderAttack(gs.KingSquare(gs.toMove))
}
