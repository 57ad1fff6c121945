package nnue

import (
	"testing"

	dragon "github.com/Bubblyworld/dragontoothmg"
	"github.com/matryer/is"
)

func mustMove(t *testing.T, p *dragon.Board, uci string) dragon.Move {
	t.Helper()
	for _, move := range p.GenerateLegalMoves() {
		if move.String() == uci {
			return move
		}
	}
	t.Fatalf("no legal move %v", uci)
	return 0
}

func nextRand(state *uint64) uint64 {
	*state = *state*6364136223846793005 + 1442695040888963407
	return *state >> 33
}

func testQuantWeights(hidden int) *QuantWeights {
	var w = &QuantWeights{
		Version:   1,
		InputDim:  InputDim,
		HiddenDim: hidden,
		OutputDim: 1,
		W1Scale:   1,
		W2Scale:   1,
		W1:        make([]int8, hidden*InputDim),
		B1:        make([]int16, hidden),
		W2:        make([]int8, hidden),
		B2:        []int16{3},
	}
	var state = uint64(0x5DEECE66D)
	for i := range w.W1 {
		w.W1[i] = int8(nextRand(&state)%11) - 5
	}
	for i := range w.B1 {
		w.B1[i] = int16(nextRand(&state)%101) - 50
	}
	for i := range w.W2 {
		w.W2[i] = int8(nextRand(&state)%11) - 5
	}
	return w
}

func TestStartposActiveFeatures(t *testing.T) {
	is := is.New(t)
	var board = dragon.ParseFen(dragon.Startpos)
	var indices = appendActiveIndices(&board, nil)
	// 30 non-king pieces, seen from both perspectives
	is.Equal(len(indices), 60)
	var seen = map[int]bool{}
	for _, idx := range indices {
		is.True(idx >= 0 && idx < InputDim)
		is.True(!seen[idx])
		seen[idx] = true
	}
}

func TestNewEvaluationServiceRejectsWrongDims(t *testing.T) {
	is := is.New(t)
	var w = testQuantWeights(4)
	w.InputDim = 123
	_, err := NewEvaluationService(w)
	is.True(err != nil)
}

// The accumulator must track a game exactly: after every make and every
// unmake the incremental score equals the from-scratch one. The line
// includes captures, castling (a king move forces a full refresh) and
// an en passant capture.
func TestIncrementalMatchesFullRecompute(t *testing.T) {
	is := is.New(t)
	es, err := NewEvaluationService(testQuantWeights(8))
	is.NoErr(err)

	var line = []string{
		"e2e4", "e7e5", "g1f3", "b8c6", "f1c4", "g8f6",
		"e1g1", "f6e4", "d2d4", "e5d4", "c2c4", "d4c3",
	}
	var boards = make([]dragon.Board, len(line)+1)
	boards[0] = dragon.ParseFen(dragon.Startpos)
	es.Init(&boards[0])
	is.Equal(es.Evaluate(&boards[0]), es.EvaluateFull(&boards[0]))

	for i, uci := range line {
		boards[i+1] = boards[i]
		boards[i+1].Apply(mustMove(t, &boards[i+1], uci))
		es.MakeMove(&boards[i], &boards[i+1])
		is.Equal(es.Evaluate(&boards[i+1]), es.EvaluateFull(&boards[i+1]))
	}

	for i := len(line) - 1; i >= 0; i-- {
		es.UnmakeMove()
		is.Equal(es.Evaluate(&boards[i]), es.EvaluateFull(&boards[i]))
	}
}

func TestEvaluatePerspective(t *testing.T) {
	is := is.New(t)
	es, err := NewEvaluationService(testQuantWeights(8))
	is.NoErr(err)

	var white = dragon.ParseFen("k7/8/8/8/8/8/8/KQ6 w - - 0 1")
	var black = dragon.ParseFen("k7/8/8/8/8/8/8/KQ6 b - - 0 1")
	es.Init(&white)
	var fromWhite = es.Evaluate(&white)
	es.Init(&black)
	is.Equal(es.Evaluate(&black), -fromWhite)
}

func TestDenseEvaluatePerspective(t *testing.T) {
	is := is.New(t)
	var w = &DenseWeights{
		Version:   1,
		InputDim:  InputDim,
		HiddenDim: 4,
		OutputDim: 1,
		W1:        make([]float32, 4*InputDim),
		B1:        []float32{0.5, -0.5, 0.25, 0},
		W2:        []float32{1, -1, 2, -2},
		B2:        []float32{1},
	}
	var state = uint64(7)
	for i := range w.W1 {
		w.W1[i] = float32(int(nextRand(&state)%11) - 5)
	}
	es, err := NewDenseEvaluationService(w)
	is.NoErr(err)

	var white = dragon.ParseFen("k7/8/8/8/8/8/8/KQ6 w - - 0 1")
	var black = dragon.ParseFen("k7/8/8/8/8/8/8/KQ6 b - - 0 1")
	is.Equal(es.Evaluate(&black), -es.Evaluate(&white))
}
