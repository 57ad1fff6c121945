package engine

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/piechess/pie/pkg/common"
)

// timeManager turns the wall-clock, node and context budgets into one
// atomic abort flag. The search polls IsDone cooperatively at node
// entry and never blocks on it.
type timeManager struct {
	abort     atomic.Bool
	nodes     atomic.Int64
	nodeLimit int64
	timer     *time.Timer
	stopCtx   func() bool
}

func newTimeManager(ctx context.Context, limits common.LimitsType) *timeManager {
	var tm = &timeManager{
		nodeLimit: limits.Nodes,
	}
	if limits.MoveTime > 0 && !limits.Infinite {
		tm.timer = time.AfterFunc(limits.MoveTime, func() {
			tm.abort.Store(true)
		})
	}
	if ctx != nil {
		tm.stopCtx = context.AfterFunc(ctx, func() {
			tm.abort.Store(true)
		})
	}
	return tm
}

func (tm *timeManager) IsDone() bool {
	return tm.abort.Load()
}

func (tm *timeManager) Abort() {
	tm.abort.Store(true)
}

// AddNodes flushes a worker's node batch into the shared counter and
// trips the abort flag once the node budget is exhausted.
func (tm *timeManager) AddNodes(n int64) {
	var total = tm.nodes.Add(n)
	if tm.nodeLimit > 0 && total >= tm.nodeLimit {
		tm.abort.Store(true)
	}
}

func (tm *timeManager) Nodes() int64 {
	return tm.nodes.Load()
}

func (tm *timeManager) Close() {
	if tm.timer != nil {
		tm.timer.Stop()
	}
	if tm.stopCtx != nil {
		tm.stopCtx()
	}
}
