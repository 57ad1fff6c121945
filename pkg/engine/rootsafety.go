package engine

import (
	dragon "github.com/Bubblyworld/dragontoothmg"
	"lukechampine.com/frand"
)

// Root-only safety heuristics. These bias the choice among root moves
// and are never written into the transposition table; inner nodes see
// plain minimax scores.

const hangingLossThreshold = 200

// demoteHangingQuiets pushes quiet, non-checking root moves that hang
// material (the opponent wins at least hangingLossThreshold on the
// destination square) to the back of the ordering.
func (t *thread) demoteHangingQuiets(pos *dragon.Board, list []orderedMove) {
	var changed = false
	for i := range list {
		var move = list[i].move
		if isCaptureOrPromotion(pos, move) || list[i].key >= sortKeyTT {
			continue
		}
		if givesCheck(pos, move) {
			continue
		}
		if isHangingAfter(pos, move, hangingLossThreshold) {
			list[i].key = -(sortKeyTT - list[i].key)
			changed = true
		}
	}
	if changed {
		sortMoves(list)
	}
}

// isHangingAfter reports whether, once move is played, the opponent
// has a recapture on its destination square that wins at least
// lossThreshold centipawns by static exchange.
func isHangingAfter(pos *dragon.Board, move dragon.Move, lossThreshold int) bool {
	var child = *pos
	child.Apply(move)
	var target = move.To()
	for _, reply := range child.GenerateLegalMoves() {
		if reply.To() != target {
			continue
		}
		if gain, ok := seeGain(&child, reply); ok && gain >= lossThreshold {
			return true
		}
	}
	return false
}

// isStalemateAfter reports whether move leaves the opponent with no
// legal replies while not in check.
func isStalemateAfter(pos *dragon.Board, move dragon.Move) bool {
	var child = *pos
	child.Apply(move)
	return len(child.GenerateLegalMoves()) == 0 && !child.OurKingInCheck()
}

// NoisyMove picks a pseudo-random move among the topK exchange-safe
// legal moves. It trades strength for variety, e.g. to diversify
// openings between otherwise deterministic games; it is not a search.
func NoisyMove(pos *dragon.Board, topK int) dragon.Move {
	var moves = pos.GenerateLegalMoves()
	if len(moves) == 0 {
		return 0
	}
	var safe []dragon.Move
	for _, move := range moves {
		if gain, ok := seeGain(pos, move); ok && gain < 0 {
			continue
		}
		if isHangingAfter(pos, move, hangingLossThreshold) {
			continue
		}
		safe = append(safe, move)
	}
	if len(safe) == 0 {
		safe = moves
	}
	if topK > 0 && topK < len(safe) {
		safe = safe[:topK]
	}
	return safe[frand.Intn(len(safe))]
}
