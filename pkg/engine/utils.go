package engine

import (
	dragon "github.com/Bubblyworld/dragontoothmg"

	"github.com/piechess/pie/pkg/common"
)

const (
	stackSize     = 128
	maxHeight     = stackSize - 1
	valueDraw     = 0
	valueMate     = 30000
	valueInfinity = valueMate + 1
	valueWin      = valueMate - 2*maxHeight
	valueLoss     = -valueWin
)

func winIn(height int) int {
	return valueMate - height
}

func lossIn(height int) int {
	return -valueMate + height
}

// Mate scores are stored relative to the node, not to the root, so a
// deep entry stays valid when probed at another height.
func valueToTT(v, height int) int {
	if v >= valueWin {
		return v + height
	}

	if v <= valueLoss {
		return v - height
	}

	return v
}

func valueFromTT(v, height int) int {
	if v >= valueWin {
		return v - height
	}

	if v <= valueLoss {
		return v + height
	}

	return v
}

func newUciScore(v int) common.UciScore {
	if v >= valueWin {
		return common.UciScore{Mate: (valueMate - v + 1) / 2}
	} else if v <= valueLoss {
		return common.UciScore{Mate: (-valueMate - v) / 2}
	} else {
		return common.UciScore{Centipawns: v}
	}
}

func pieceValue(piece dragon.Piece) int {
	switch piece {
	case dragon.Pawn:
		return 100
	case dragon.Knight:
		return 320
	case dragon.Bishop:
		return 330
	case dragon.Rook:
		return 500
	case dragon.Queen:
		return 900
	case dragon.King:
		return 20000
	}
	return 0
}

func sideIndex(p *dragon.Board) int {
	if p.Wtomove {
		return int(dragon.White)
	}
	return int(dragon.Black)
}

func isCapture(p *dragon.Board, move dragon.Move) bool {
	if p.PieceAt(move.To()) != 0 {
		return true
	}
	// en passant: a pawn changing file onto an empty square
	return p.PieceAt(move.From()) == dragon.Pawn &&
		move.To()%8 != move.From()%8
}

func isCaptureOrPromotion(p *dragon.Board, move dragon.Move) bool {
	return move.Promote() != 0 || isCapture(p, move)
}

// capturedPiece is the victim of a capture, resolving en passant to a
// pawn. Call only when isCapture holds.
func capturedPiece(p *dragon.Board, move dragon.Move) dragon.Piece {
	if victim := p.PieceAt(move.To()); victim != 0 {
		return victim
	}
	return dragon.Pawn
}

// isLateEndgame reports a side down to king, pawns and at most one
// minor piece; null move is unsound there because of zugzwang.
func isLateEndgame(p *dragon.Board) bool {
	var side = sideIndex(p)
	if p.Bbs[side][dragon.Rook]|p.Bbs[side][dragon.Queen] != 0 {
		return false
	}
	var minors = p.Bbs[side][dragon.Knight] | p.Bbs[side][dragon.Bishop]
	return minors&(minors-1) == 0
}

func max(l, r int) int {
	if l > r {
		return l
	}
	return r
}

func min(l, r int) int {
	if l < r {
		return l
	}
	return r
}
