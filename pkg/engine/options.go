package engine

import (
	"math"
)

const (
	nullMoveMinDepth = 3
	iidMinDepth      = 4
	singularMinDepth = 8
	futilityMaxDepth = 8
	lmrMinDepth      = 3

	futilityMargin = 100

	qsDeltaMargin      = 120
	seeOrderingDivisor = 8

	// in-tree split thresholds: below these the parallel overhead
	// dominates the subtree cost
	splitMinDepth = 3
	splitMinMoves = 12
)

const lmrMax = 64

var lmrTable = initLmr()

// initLmr builds the late-move reduction grid over (depth, move
// number), growing logarithmically in both.
func initLmr() [lmrMax][lmrMax]int {
	var result [lmrMax][lmrMax]int
	for d := 3; d < lmrMax; d++ {
		for m := 2; m < lmrMax; m++ {
			result[d][m] = int(0.5 + math.Log(float64(d))*math.Log(float64(m))/2.25)
		}
	}
	return result
}

func lateMoveReduction(depth, moveIndex int) int {
	return lmrTable[min(depth, lmrMax-1)][min(moveIndex, lmrMax-1)]
}

// lateMovePruningLimit is the quiet-move count beyond which late quiets
// are skipped outright at shallow depth.
func lateMovePruningLimit(depth int, improving bool) int {
	var limit = 5 + (depth-1)*depth
	if !improving {
		limit /= 2
	}
	return limit
}
