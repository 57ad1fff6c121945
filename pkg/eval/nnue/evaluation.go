package nnue

import (
	"fmt"
	"math"

	dragon "github.com/Bubblyworld/dragontoothmg"
)

// EvaluationService evaluates positions with the quantized network,
// keeping the hidden-layer accumulator in sync with the search path.
// The accumulator is private to one search worker; workers never share
// an EvaluationService.
type EvaluationService struct {
	weights  *QuantWeights
	acc      []int32
	active   map[int]bool
	afterSet map[int]bool
	wkSq     int
	bkSq     int
	stack    []change
	scratch  []int
}

// change reverses one MakeMove. King moves shift the king-relative
// index of every feature on that side, so they store a full snapshot;
// everything else stores the symmetric difference of the feature sets.
type change struct {
	snapshot bool
	acc      []int32
	active   map[int]bool
	wkSq     int
	bkSq     int
	added    []int
	removed  []int
}

func NewEvaluationService(weights *QuantWeights) (*EvaluationService, error) {
	if weights.InputDim != InputDim {
		return nil, fmt.Errorf("nnue: model input dim %v, HalfKP needs %v",
			weights.InputDim, InputDim)
	}
	return &EvaluationService{
		weights:  weights,
		acc:      make([]int32, weights.HiddenDim),
		active:   make(map[int]bool, 64),
		afterSet: make(map[int]bool, 64),
		scratch:  make([]int, 0, 64),
	}, nil
}

// Init establishes a new root: incremental history is dropped and the
// accumulator is rebuilt from scratch.
func (e *EvaluationService) Init(p *dragon.Board) {
	e.stack = e.stack[:0]
	e.refresh(p)
}

func (e *EvaluationService) refresh(p *dragon.Board) {
	var w = e.weights
	for j := range e.acc {
		e.acc[j] = int32(w.B1[j])
	}
	clear(e.active)
	e.scratch = appendActiveIndices(p, e.scratch)
	for _, idx := range e.scratch {
		e.active[idx] = true
		e.addColumn(idx)
	}
	e.wkSq = kingSquare(p, int(dragon.White))
	e.bkSq = kingSquare(p, int(dragon.Black))
}

func (e *EvaluationService) addColumn(idx int) {
	var w = e.weights
	var base = idx
	for j := range e.acc {
		e.acc[j] += int32(w.W1[j*w.InputDim+base])
	}
}

func (e *EvaluationService) subColumn(idx int) {
	var w = e.weights
	var base = idx
	for j := range e.acc {
		e.acc[j] -= int32(w.W1[j*w.InputDim+base])
	}
}

func (e *EvaluationService) MakeMove(before, after *dragon.Board) {
	var wkAfter = kingSquare(after, int(dragon.White))
	var bkAfter = kingSquare(after, int(dragon.Black))
	if wkAfter != e.wkSq || bkAfter != e.bkSq {
		e.stack = append(e.stack, change{
			snapshot: true,
			acc:      append([]int32(nil), e.acc...),
			active:   copySet(e.active),
			wkSq:     e.wkSq,
			bkSq:     e.bkSq,
		})
		e.refresh(after)
		return
	}
	e.scratch = appendActiveIndices(after, e.scratch)
	clear(e.afterSet)
	for _, idx := range e.scratch {
		e.afterSet[idx] = true
	}
	var ch change
	for idx := range e.active {
		if !e.afterSet[idx] {
			ch.removed = append(ch.removed, idx)
		}
	}
	for idx := range e.afterSet {
		if !e.active[idx] {
			ch.added = append(ch.added, idx)
		}
	}
	for _, idx := range ch.removed {
		delete(e.active, idx)
		e.subColumn(idx)
	}
	for _, idx := range ch.added {
		e.active[idx] = true
		e.addColumn(idx)
	}
	e.stack = append(e.stack, ch)
}

func (e *EvaluationService) UnmakeMove() {
	var n = len(e.stack)
	var ch = e.stack[n-1]
	e.stack = e.stack[:n-1]
	if ch.snapshot {
		copy(e.acc, ch.acc)
		e.active = ch.active
		e.wkSq = ch.wkSq
		e.bkSq = ch.bkSq
		return
	}
	for _, idx := range ch.added {
		delete(e.active, idx)
		e.subColumn(idx)
	}
	for _, idx := range ch.removed {
		e.active[idx] = true
		e.addColumn(idx)
	}
}

// Evaluate scores the position from the side to move using the
// current accumulator, which must be in sync with p.
func (e *EvaluationService) Evaluate(p *dragon.Board) int {
	return perspective(p, e.toCentipawns(e.headFromAcc(e.acc)))
}

// EvaluateFull recomputes the same score with no incremental state,
// for parity checks against Evaluate.
func (e *EvaluationService) EvaluateFull(p *dragon.Board) int {
	var w = e.weights
	var acc = make([]int32, w.HiddenDim)
	for j := range acc {
		acc[j] = int32(w.B1[j])
	}
	var indices = appendActiveIndices(p, nil)
	for _, idx := range indices {
		for j := range acc {
			acc[j] += int32(w.W1[j*w.InputDim+idx])
		}
	}
	return perspective(p, e.toCentipawns(e.headFromAcc(acc)))
}

// headFromAcc applies ReLU to the accumulator and the second layer.
func (e *EvaluationService) headFromAcc(acc []int32) int64 {
	var w = e.weights
	var out = int64(w.B2[0])
	for j, v := range acc {
		if v > 0 {
			out += int64(w.W2[j]) * int64(v)
		}
	}
	return out
}

// toCentipawns undoes the quantization scales on the raw head output.
func (e *EvaluationService) toCentipawns(raw int64) int {
	var scale = float64(e.weights.W1Scale) * float64(e.weights.W2Scale)
	if scale <= 0 {
		scale = 1
	}
	return int(math.Round(float64(raw) / scale))
}

// The network always scores from White; negamax wants side to move.
func perspective(p *dragon.Board, score int) int {
	if p.Wtomove {
		return score
	}
	return -score
}

func copySet(src map[int]bool) map[int]bool {
	var dst = make(map[int]bool, len(src))
	for k := range src {
		dst[k] = true
	}
	return dst
}

// DenseEvaluationService evaluates with the float32 network. It keeps
// no incremental state; each call recomputes the hidden layer. Used
// when only a dense weight file is available.
type DenseEvaluationService struct {
	weights *DenseWeights
	hidden  []float32
	scratch []int
}

func NewDenseEvaluationService(weights *DenseWeights) (*DenseEvaluationService, error) {
	if weights.InputDim != InputDim {
		return nil, fmt.Errorf("nnue: model input dim %v, HalfKP needs %v",
			weights.InputDim, InputDim)
	}
	return &DenseEvaluationService{
		weights: weights,
		hidden:  make([]float32, weights.HiddenDim),
		scratch: make([]int, 0, 64),
	}, nil
}

func (e *DenseEvaluationService) Evaluate(p *dragon.Board) int {
	var w = e.weights
	copy(e.hidden, w.B1)
	e.scratch = appendActiveIndices(p, e.scratch)
	for _, idx := range e.scratch {
		for j := range e.hidden {
			e.hidden[j] += w.W1[j*w.InputDim+idx]
		}
	}
	var out = w.B2[0]
	for j, v := range e.hidden {
		if v > 0 {
			out += w.W2[j] * v
		}
	}
	return perspective(p, int(math.Round(float64(out))))
}
