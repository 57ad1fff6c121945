package engine

import (
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// lazySmp runs one full iterative-deepening driver per worker against
// the shared transposition table. Helper workers are diversified by id
// so they disagree about move ordering and pruning at the margin; the
// table spreads whatever any of them proves.
func lazySmp(e *Engine) {
	if e.params.Threads == 1 {
		iterativeDeepening(&e.threads[0], true)
		e.reduceWorkers()
		return
	}
	var g errgroup.Group
	for i := range e.threads {
		var t = &e.threads[i]
		g.Go(func() error {
			iterativeDeepening(t, t.id == 0)
			return nil
		})
	}
	g.Wait()
	e.reduceWorkers()
}

// searchWithSplit runs a single driver whose alpha-beta may fan
// siblings out onto the helper pool (jamboree-style in-tree split).
func (e *Engine) searchWithSplit() {
	e.helpers = make(chan *thread, len(e.threads)-1)
	for i := 1; i < len(e.threads); i++ {
		e.helpers <- &e.threads[i]
	}
	iterativeDeepening(&e.threads[0], true)
	e.helpers = nil
	e.reduceWorkers()
}

func iterativeDeepening(t *thread, leader bool) {
	var e = t.engine
	var score = 0
	for depth := 1; depth <= e.params.Limits.Depth; depth++ {
		if leader {
			e.transTable.bumpGeneration()
		}
		score = t.searchDepth(depth, score, e.helpers != nil)
		if t.isDone() {
			break
		}
		e.onIterationComplete(t, depth, score)
		if score >= winIn(depth) || score <= lossIn(depth) {
			// the shortest mate within this horizon is proven
			break
		}
	}
}

// reduceWorkers picks the final answer: majority vote on the best move
// among the workers that reached the greatest completed depth, ties
// broken toward the least diversified worker. Node counts were already
// summed per iteration.
func (e *Engine) reduceWorkers() {
	e.mu.Lock()
	defer e.mu.Unlock()
	var maxDepth = 0
	for i := range e.threads {
		maxDepth = max(maxDepth, e.threads[i].completedDepth)
	}
	if maxDepth == 0 {
		return
	}
	var winner *thread
	var winnerVotes = 0
	for i := range e.threads {
		var t = &e.threads[i]
		if t.completedDepth != maxDepth || len(t.completedLine) == 0 {
			continue
		}
		var votes = 0
		for j := range e.threads {
			var o = &e.threads[j]
			if o.completedDepth == maxDepth && len(o.completedLine) > 0 &&
				o.completedLine[0] == t.completedLine[0] {
				votes++
			}
		}
		if winner == nil || votes > winnerVotes {
			winner = t
			winnerVotes = votes
		}
	}
	if winner == nil {
		return
	}
	e.mainLine = mainLine{
		depth: winner.completedDepth,
		score: winner.completedScore,
		moves: winner.completedLine,
	}
	if e.params.Threads > 1 {
		var move = e.mainLine.moves[0]
		log.Debug().
			Int("worker", winner.id).
			Int("votes", winnerVotes).
			Int("depth", maxDepth).
			Str("move", move.String()).
			Msg("smp-vote")
	}
}
