package material

import (
	"math/bits"

	dragon "github.com/Bubblyworld/dragontoothmg"
)

// EvaluationService is the classical evaluator: material plus small
// piece-square tables, from the side to move, in centipawns. The
// search blends it with the network evaluation and also uses it alone
// when no network is loaded.
type EvaluationService struct{}

func NewEvaluationService() *EvaluationService {
	return &EvaluationService{}
}

var pieceValues = [dragon.King + 1]int{
	dragon.Pawn:   100,
	dragon.Knight: 320,
	dragon.Bishop: 330,
	dragon.Rook:   500,
	dragon.Queen:  900,
}

var pawnPst = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	5, 10, 10, -20, -20, 10, 10, 5,
	5, -5, -10, 0, 0, -10, -5, 5,
	0, 0, 0, 20, 20, 0, 0, 0,
	5, 5, 10, 25, 25, 10, 5, 5,
	10, 10, 20, 30, 30, 20, 10, 10,
	50, 50, 50, 50, 50, 50, 50, 50,
	0, 0, 0, 0, 0, 0, 0, 0,
}

var knightPst = [64]int{
	-50, -40, -30, -30, -30, -30, -40, -50,
	-40, -20, 0, 5, 5, 0, -20, -40,
	-30, 5, 10, 15, 15, 10, 5, -30,
	-30, 0, 15, 20, 20, 15, 0, -30,
	-30, 5, 15, 20, 20, 15, 5, -30,
	-30, 0, 10, 15, 15, 10, 0, -30,
	-40, -20, 0, 0, 0, 0, -20, -40,
	-50, -40, -30, -30, -30, -30, -40, -50,
}

var bishopPst = [64]int{
	-20, -10, -10, -10, -10, -10, -10, -20,
	-10, 5, 0, 0, 0, 0, 5, -10,
	-10, 10, 10, 10, 10, 10, 10, -10,
	-10, 0, 10, 10, 10, 10, 0, -10,
	-10, 5, 5, 10, 10, 5, 5, -10,
	-10, 0, 5, 10, 10, 5, 0, -10,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-20, -10, -10, -10, -10, -10, -10, -20,
}

var rookPst = [64]int{
	0, 0, 0, 5, 5, 0, 0, 0,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	5, 10, 10, 10, 10, 10, 10, 5,
	0, 0, 0, 0, 0, 0, 0, 0,
}

var queenPst = [64]int{
	-20, -10, -10, -5, -5, -10, -10, -20,
	-10, 0, 5, 0, 0, 0, 0, -10,
	-10, 5, 5, 5, 5, 5, 0, -10,
	0, 0, 5, 5, 5, 5, 0, -5,
	-5, 0, 5, 5, 5, 5, 0, -5,
	-10, 0, 5, 5, 5, 5, 0, -10,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-20, -10, -10, -5, -5, -10, -10, -20,
}

var kingPst = [64]int{
	20, 30, 10, 0, 0, 10, 30, 20,
	20, 20, 0, 0, 0, 0, 20, 20,
	-10, -20, -20, -20, -20, -20, -20, -10,
	-20, -30, -30, -40, -40, -30, -30, -20,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
}

var pstByPiece = [dragon.King + 1]*[64]int{
	dragon.Pawn:   &pawnPst,
	dragon.Knight: &knightPst,
	dragon.Bishop: &bishopPst,
	dragon.Rook:   &rookPst,
	dragon.Queen:  &queenPst,
	dragon.King:   &kingPst,
}

func (e *EvaluationService) Evaluate(p *dragon.Board) int {
	var eval = 0
	for piece := dragon.Pawn; piece <= dragon.King; piece++ {
		var pst = pstByPiece[piece]
		for bb := p.Bbs[dragon.White][piece]; bb != 0; bb &= bb - 1 {
			var sq = bits.TrailingZeros64(bb)
			eval += pieceValues[piece] + pst[sq]
		}
		for bb := p.Bbs[dragon.Black][piece]; bb != 0; bb &= bb - 1 {
			// mirror the table vertically for Black
			var sq = bits.TrailingZeros64(bb) ^ 56
			eval -= pieceValues[piece] + pst[sq]
		}
	}
	if !p.Wtomove {
		eval = -eval
	}
	return eval
}
