package engine

import (
	dragon "github.com/Bubblyworld/dragontoothmg"
)

type orderedMove struct {
	move dragon.Move
	key  int32
}

const (
	sortKeyTT      = int32(1) << 30
	sortKeyCapture = int32(1) << 22
	sortKeyKiller1 = int32(1)<<20 + 1
	sortKeyKiller2 = int32(1) << 20
	sortKeyCounter = int32(1) << 16
	sortKeyCheck   = int32(1) << 15
)

// orderMoves ranks the move list for one node. The TT move is hoisted
// only when its stored bound is exact; an untrusted bound move still
// competes on the composite key like everything else.
func (t *thread) orderMoves(height, depth int, moves []dragon.Move,
	ttMove dragon.Move, ttDepth, ttBound int) []orderedMove {

	var params = &t.engine.params
	var f = &t.stack[height]
	var pos = &f.position
	var parent dragon.Move
	if height > 0 {
		parent = t.stack[height-1].current
	}
	var counter dragon.Move
	if params.UseCounterMoves {
		counter = t.counters.Read(parent)
	}
	var hoistTT = params.UseTransTable && ttMove != 0 &&
		ttBound == boundExact && ttDepth > 0
	var probeChecks = params.OrderChecks && depth >= 3

	var list = f.moveList[:0]
	for _, move := range moves {
		var key int32
		if hoistTT && move == ttMove {
			key = sortKeyTT
		} else if params.OrderCaptures && isCaptureOrPromotion(pos, move) {
			key = sortKeyCapture + int32(mvvlva(pos, move))
		} else if params.UseKillers && move == f.killer1 {
			key = sortKeyKiller1
		} else if params.UseKillers && move == f.killer2 {
			key = sortKeyKiller2
		} else {
			if params.UseHistory && depth > params.HistoryMinDepth {
				key += int32(t.history.Read(move))
			}
			if params.UseContinuation {
				key += int32(t.contHist.Read(parent, move))
			}
			if counter != 0 && move == counter {
				key += sortKeyCounter
			}
			if probeChecks && givesCheck(pos, move) {
				key += sortKeyCheck
			}
		}
		list = append(list, orderedMove{move: move, key: key})
	}
	sortMoves(list)
	if params.UseSEEOrdering && params.SEETopK > 0 {
		t.applySeeBonus(pos, list, params.SEETopK)
	}
	if height == 0 {
		if t.div.rotateTail > 0 {
			rotateTail(list, t.div.rotateTail)
		}
		if params.RootBlunderGuard {
			t.demoteHangingQuiets(pos, list)
		}
	}
	return list
}

// applySeeBonus refines only the K best captures with an exchange
// bonus; running SEE over every capture would dominate node cost.
func (t *thread) applySeeBonus(pos *dragon.Board, list []orderedMove, topK int) {
	var seen = 0
	for i := range list {
		if seen >= topK {
			break
		}
		if list[i].key >= sortKeyCapture && list[i].key < sortKeyTT {
			if gain, ok := seeGain(pos, list[i].move); ok {
				list[i].key += int32(gain / seeOrderingDivisor)
			}
			seen++
		}
	}
	sortMoves(list)
}

func mvvlva(p *dragon.Board, move dragon.Move) int {
	var victim = 0
	if isCapture(p, move) {
		victim = int(capturedPiece(p, move))
	}
	var attacker = int(p.PieceAt(move.From()))
	var promo = int(move.Promote())
	return 64 * (8*(victim+promo) - attacker)
}

func givesCheck(p *dragon.Board, move dragon.Move) bool {
	var child = *p
	child.Apply(move)
	return child.OurKingInCheck()
}

func sortMoves(moves []orderedMove) {
	for i := 1; i < len(moves); i++ {
		var j, item = i, moves[i]
		for ; j > 0 && moves[j-1].key < item.key; j-- {
			moves[j] = moves[j-1]
		}
		moves[j] = item
	}
}

// rotateTail shifts the late part of the ordering left by n, keeping
// the head intact. Workers use distinct n so lazy-SMP threads disagree
// about marginal moves while still trying the clear candidates first.
func rotateTail(list []orderedMove, n int) {
	const keep = 4
	if len(list) <= keep+1 {
		return
	}
	var tail = list[keep:]
	n %= len(tail)
	if n == 0 {
		return
	}
	var rotated = make([]orderedMove, 0, len(tail))
	rotated = append(rotated, tail[n:]...)
	rotated = append(rotated, tail[:n]...)
	copy(tail, rotated)
}
