package engine

import (
	dragon "github.com/Bubblyworld/dragontoothmg"
)

const seeMaxSwaps = 32

// seeGain computes the static exchange value of a capture from the
// mover's perspective: the gain list of each recapture by the least
// valuable legal attacker on the target square is folded from the end
// with gain[i] = -max(-gain[i], gain[i+1]), the minimax of the forced
// swap sequence. ok is false when the move captures nothing.
func seeGain(p *dragon.Board, move dragon.Move) (value int, ok bool) {
	if !isCapture(p, move) {
		return 0, false
	}
	var target = move.To()
	var gains [seeMaxSwaps]int
	gains[0] = pieceValue(capturedPiece(p, move))

	// the piece left standing on the target square after each capture
	var occupant = pieceValue(p.PieceAt(move.From()))
	if promo := move.Promote(); promo != 0 {
		occupant = pieceValue(promo)
		gains[0] += occupant - pieceValue(dragon.Pawn)
	}

	var board = *p
	board.Apply(move)
	var n = 1
	for n < seeMaxSwaps {
		var recapture, attacker = leastValuableRecapture(&board, target)
		if recapture == 0 {
			break
		}
		gains[n] = occupant - gains[n-1]
		occupant = pieceValue(attacker)
		if promo := recapture.Promote(); promo != 0 {
			occupant = pieceValue(promo)
		}
		board.Apply(recapture)
		n++
	}
	for i := n - 2; i >= 0; i-- {
		gains[i] = -max(-gains[i], gains[i+1])
	}
	return gains[0], true
}

// leastValuableRecapture picks the cheapest legal capture onto the
// target square. Generating legal moves keeps pinned pieces out of the
// exchange, which a plain attack-map swap routine would miscount.
func leastValuableRecapture(p *dragon.Board, target uint8) (dragon.Move, dragon.Piece) {
	var bestMove dragon.Move
	var bestPiece dragon.Piece
	var bestValue = 0
	for _, move := range p.GenerateLegalMoves() {
		if move.To() != target {
			continue
		}
		var attacker = p.PieceAt(move.From())
		var value = pieceValue(attacker)
		if bestMove == 0 || value < bestValue {
			bestMove = move
			bestPiece = attacker
			bestValue = value
		}
	}
	return bestMove, bestPiece
}
