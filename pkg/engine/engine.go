package engine

import (
	"context"
	"runtime"
	"sync"
	"time"

	dragon "github.com/Bubblyworld/dragontoothmg"

	"github.com/piechess/pie/pkg/common"
	"github.com/piechess/pie/pkg/eval/material"
)

const maxThreads = 64

// Evaluator scores a position in centipawns from the side to move.
type Evaluator interface {
	Evaluate(p *dragon.Board) int
}

// UpdatableEvaluator additionally maintains incremental state along the
// search path. MakeMove sees both boards of a transition; UnmakeMove
// must restore the state MakeMove found.
type UpdatableEvaluator interface {
	Evaluator
	Init(p *dragon.Board)
	MakeMove(before, after *dragon.Board)
	UnmakeMove()
}

// Engine searches chess positions. One Engine serves sequential Search
// calls; the transposition table persists between calls until Clear.
type Engine struct {
	evalBuilder func() Evaluator
	transTable  *transTable
	timeManager *timeManager
	threads     []thread
	helpers     chan *thread
	params      common.SearchParams
	progress    func(common.SearchInfo)
	mainLine    mainLine
	start       time.Time
	nodes       int64
	mu          sync.Mutex
}

type thread struct {
	id        int
	engine    *Engine
	evaluator Evaluator
	updatable UpdatableEvaluator
	classical Evaluator
	history   historyTable
	counters  counterMoveTable
	contHist  continuationTable
	div       diversity
	split     *splitPoint
	nodes     int64

	completedDepth int
	completedScore int
	completedLine  []dragon.Move

	stack [stackSize]frame
}

type frame struct {
	position      dragon.Board
	moveList      [maxMoves]orderedMove
	pv            pv
	staticEval    int
	current       dragon.Move
	killer1       dragon.Move
	killer2       dragon.Move
	nullForbidden bool
}

const maxMoves = 256

type pv struct {
	items [stackSize]dragon.Move
	size  int
}

type mainLine struct {
	moves []dragon.Move
	score int
	depth int
}

// diversity perturbs helper workers so lazy-SMP threads explore the
// tree differently while sharing one transposition table.
type diversity struct {
	aspirationOffset int
	lmrExtra         int
	nullExtra        int
	rotateTail       int
	helperPruning    bool
}

func newDiversity(id int) diversity {
	if id == 0 {
		return diversity{}
	}
	return diversity{
		aspirationOffset: 5 * (id % 4),
		lmrExtra:         (id >> 1) & 1,
		nullExtra:        id & 1,
		rotateTail:       id % 3,
		helperPruning:    id%4 == 3,
	}
}

// NewEngine builds an engine. evalBuilder constructs the network side
// of the evaluation blend per worker (workers never share evaluator
// state); nil means classical evaluation only.
func NewEngine(evalBuilder func() Evaluator) *Engine {
	return &Engine{
		evalBuilder: evalBuilder,
		params:      common.NewSearchParams(),
	}
}

func newClassicalEvaluator() Evaluator {
	return material.NewEvaluationService()
}

func sanitizeParams(params common.SearchParams) common.SearchParams {
	if params.Threads < 1 {
		params.Threads = 1
	}
	params.Threads = min(params.Threads, maxThreads)
	if params.Deterministic {
		params.Threads = 1
		params.InTreeSplit = false
	}
	params.BlendPercent = max(0, min(100, params.BlendPercent))
	if params.Limits.Depth <= 0 || params.Limits.Depth > maxHeight {
		params.Limits.Depth = maxHeight
	}
	if params.AspirationWindow <= 0 {
		params.AspirationWindow = 25
	}
	if params.SEETopK < 0 {
		params.SEETopK = 0
	}
	if params.QuietCheckProbes < 0 {
		params.QuietCheckProbes = 0
	}
	if params.SingularMargin <= 0 {
		params.SingularMargin = 2
	}
	return params
}

func (e *Engine) prepare() {
	if e.transTable == nil || (e.params.HashMB > 0 && e.transTable.size() != e.params.HashMB) {
		if e.transTable != nil {
			e.transTable = nil
			runtime.GC()
		}
		e.transTable = newTransTable(e.params.HashMB)
	}
	if len(e.threads) != e.params.Threads {
		e.threads = make([]thread, e.params.Threads)
		for i := range e.threads {
			var t = &e.threads[i]
			t.id = i
			t.engine = e
			t.div = newDiversity(i)
			t.classical = newClassicalEvaluator()
			if e.evalBuilder != nil {
				t.evaluator = e.evalBuilder()
				t.updatable, _ = t.evaluator.(UpdatableEvaluator)
			}
		}
	}
}

// Search finds the best move for the position under the given budgets.
// It blocks until a limit trips or the depth limit is reached.
func (e *Engine) Search(ctx context.Context, board *dragon.Board, params common.SearchParams) common.SearchInfo {
	e.start = time.Now()
	e.params = sanitizeParams(params)
	e.prepare()
	e.timeManager = newTimeManager(ctx, e.params.Limits)
	defer e.timeManager.Close()
	e.nodes = 0
	e.mainLine = mainLine{}
	e.progress = e.params.Progress
	for i := range e.threads {
		var t = &e.threads[i]
		t.nodes = 0
		t.split = nil
		t.completedDepth = 0
		t.completedLine = nil
		t.stack[0].position = *board
		if t.updatable != nil {
			t.updatable.Init(&t.stack[0].position)
		}
	}
	if e.params.InTreeSplit && e.params.Threads > 1 {
		e.searchWithSplit()
	} else {
		lazySmp(e)
	}
	for i := range e.threads {
		var t = &e.threads[i]
		e.nodes += t.nodes
		t.nodes = 0
	}
	return e.currentSearchResult()
}

// Clear drops the transposition table contents and every worker's
// heuristic tables, for searches that must not see earlier state.
func (e *Engine) Clear() {
	if e.transTable != nil {
		e.transTable.clear()
	}
	for i := range e.threads {
		var t = &e.threads[i]
		t.history.Clear()
		t.counters.Clear()
		t.contHist.Clear()
		for h := range t.stack {
			t.stack[h].killer1 = 0
			t.stack[h].killer2 = 0
			t.stack[h].current = 0
		}
	}
}

func (e *Engine) currentSearchResult() common.SearchInfo {
	return common.SearchInfo{
		Depth:    e.mainLine.depth,
		MainLine: e.mainLine.moves,
		Score:    newUciScore(e.mainLine.score),
		Nodes:    e.nodes,
		Time:     time.Since(e.start),
	}
}

// onIterationComplete publishes a worker's finished depth. The deepest
// iteration seen so far defines the provisional main line; the final
// reduction across workers happens in lazySmp.
func (e *Engine) onIterationComplete(t *thread, depth, score int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nodes += t.nodes
	t.nodes = 0
	t.completedDepth = depth
	t.completedScore = score
	t.completedLine = t.stack[0].pv.toSlice()
	if depth > e.mainLine.depth {
		e.mainLine = mainLine{
			depth: depth,
			score: score,
			moves: t.completedLine,
		}
		if e.progress != nil {
			e.progress(e.currentSearchResult())
		}
	}
}

func (t *thread) evaluate(p *dragon.Board) int {
	var blend = 0
	if t.evaluator != nil {
		blend = t.engine.params.BlendPercent
	}
	if blend <= 0 {
		return t.classical.Evaluate(p)
	}
	var network = t.evaluator.Evaluate(p)
	if blend >= 100 {
		return network
	}
	return (network*blend + t.classical.Evaluate(p)*(100-blend)) / 100
}

func (t *thread) makeMove(height int, move dragon.Move) {
	var parent = &t.stack[height].position
	var child = &t.stack[height+1].position
	*child = *parent
	var save dragon.BoardSaveT
	child.MakeMove(move, &save)
	t.stack[height].current = move
	if t.updatable != nil {
		t.updatable.MakeMove(parent, child)
	}
	t.incNodes()
}

func (t *thread) makeNullMove(height int) {
	var parent = &t.stack[height].position
	var child = &t.stack[height+1].position
	*child = *parent
	child.ApplyNullMove()
	t.stack[height].current = 0
	if t.updatable != nil {
		t.updatable.MakeMove(parent, child)
	}
	t.incNodes()
}

func (t *thread) unmakeMove() {
	if t.updatable != nil {
		t.updatable.UnmakeMove()
	}
}

func (t *thread) incNodes() {
	t.nodes++
	if t.nodes&255 == 0 {
		t.engine.timeManager.AddNodes(256)
	}
}

// isDone is the cooperative cancellation check: deadline, node limit,
// caller context and, inside a split point, the sibling abort flag.
func (t *thread) isDone() bool {
	if t.split != nil && t.split.aborted() {
		return true
	}
	return t.engine.timeManager.IsDone()
}

func (pv *pv) clear() {
	pv.size = 0
}

func (pv *pv) assign(m dragon.Move, child *pv) {
	pv.size = 1
	pv.items[0] = m
	if child.size > 0 {
		pv.size += child.size
		copy(pv.items[1:], child.items[:child.size])
	}
}

func (pv *pv) assignSingle(m dragon.Move) {
	pv.size = 1
	pv.items[0] = m
}

func (pv *pv) toSlice() []dragon.Move {
	var result = make([]dragon.Move, pv.size)
	copy(result, pv.items[:pv.size])
	return result
}
