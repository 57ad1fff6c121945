package engine

import (
	"sync"
	"sync/atomic"

	dragon "github.com/Bubblyworld/dragontoothmg"
)

// splitPoint is the shared state of one in-tree split: siblings search
// against an atomically maintained alpha and raise a common abort flag
// on fail-high so the rest stop early.
type splitPoint struct {
	alpha atomic.Int32
	stop  atomic.Bool
	mu    sync.Mutex
	best  int
	move  dragon.Move
	beta  int
}

func (sp *splitPoint) aborted() bool {
	return sp.stop.Load()
}

// raiseAlpha is a compare-and-swap maximum: shared alpha only ever
// grows, so siblings never narrow each other's windows incorrectly.
func (sp *splitPoint) raiseAlpha(score int) {
	for {
		var cur = sp.alpha.Load()
		if int32(score) <= cur || sp.alpha.CompareAndSwap(cur, int32(score)) {
			return
		}
	}
}

func (sp *splitPoint) record(score int, move dragon.Move) {
	sp.mu.Lock()
	if score > sp.best {
		sp.best = score
		sp.move = move
	}
	sp.mu.Unlock()
	sp.raiseAlpha(score)
	if score >= sp.beta {
		sp.stop.Store(true)
	}
}

// splitSiblings searches the remaining ordered moves of a node in
// parallel after the first move established alpha serially. Helpers
// are taken from the engine pool when available; moves with no free
// helper are searched inline on the owning thread.
func (t *thread) splitSiblings(height, depth, alpha, beta int,
	rest []orderedMove, skipMove dragon.Move) (int, dragon.Move) {

	var e = t.engine
	var sp = &splitPoint{best: -valueInfinity, beta: beta}
	sp.alpha.Store(int32(alpha))

	var wg sync.WaitGroup
	for i := range rest {
		var move = rest[i].move
		if move == skipMove {
			continue
		}
		if sp.aborted() {
			break
		}
		var helper = e.takeHelper()
		if helper == nil {
			t.searchSplitMove(sp, height, depth, move)
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			helper.adoptPosition(t, height)
			helper.searchSplitMove(sp, 0, depth, move)
			e.helpers <- helper
		}()
	}
	wg.Wait()

	sp.mu.Lock()
	defer sp.mu.Unlock()
	return sp.best, sp.move
}

func (e *Engine) takeHelper() *thread {
	if e.helpers == nil {
		return nil
	}
	select {
	case helper := <-e.helpers:
		return helper
	default:
		return nil
	}
}

// adoptPosition points a helper's root frame at the split node so its
// private stack, heuristics and accumulator stay self-contained.
func (t *thread) adoptPosition(owner *thread, height int) {
	t.stack[0].position = owner.stack[height].position
	if t.updatable != nil {
		t.updatable.Init(&t.stack[0].position)
	}
}

// searchSplitMove searches one sibling against the freshest shared
// alpha. A result computed before the abort flag rose is folded in; a
// provisional result after it is discarded.
func (t *thread) searchSplitMove(sp *splitPoint, height, depth int, move dragon.Move) {
	var alpha = int(sp.alpha.Load())
	if alpha >= sp.beta || sp.aborted() {
		return
	}
	var prev = t.split
	t.split = sp
	t.makeMove(height, move)
	var score = -t.alphaBeta(-sp.beta, -alpha, depth-1, height+1, 0, false)
	t.unmakeMove()
	t.split = prev
	// a result that finished after the abort flag rose may contain
	// static-eval stand-ins and is discarded
	if !sp.aborted() && !t.engine.timeManager.IsDone() {
		sp.record(score, move)
	}
}
