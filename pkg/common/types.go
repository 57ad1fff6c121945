package common

import (
	"time"

	dragon "github.com/Bubblyworld/dragontoothmg"
)

// LimitsType bounds a single search call. Zero values mean unlimited.
type LimitsType struct {
	Depth    int
	Nodes    int64
	MoveTime time.Duration
	Infinite bool
}

// SearchParams carries every knob for one search call. It is consumed by
// value and never mutated mid-search, so concurrent searches with
// different settings cannot leak state into each other.
type SearchParams struct {
	Limits  LimitsType
	Threads int
	HashMB  int

	UseTransTable   bool
	OrderCaptures   bool
	OrderChecks     bool
	UseKillers      bool
	UseHistory      bool
	HistoryMinDepth int
	UseCounterMoves bool
	UseContinuation bool
	UseSEEOrdering  bool
	SEETopK         int

	UseNullMove        bool
	NullVerify         bool
	UseLMR             bool
	UseFutility        bool
	UseLateMovePruning bool
	UseSingular        bool
	SingularMargin     int
	UseIID             bool

	UseAspiration    bool
	AspirationWindow int

	// Maximum number of quiet checking moves probed per quiescence node.
	QuietCheckProbes int

	// BlendPercent mixes the network evaluation with the classical one:
	// 0 is classical only, 100 is network only.
	BlendPercent int

	RootBlunderGuard bool
	AvoidStalemate   bool

	InTreeSplit   bool
	Deterministic bool

	Progress func(SearchInfo)
}

// NewSearchParams returns the production defaults. Tests switch
// individual heuristics off from here.
func NewSearchParams() SearchParams {
	return SearchParams{
		Threads:            1,
		HashMB:             16,
		UseTransTable:      true,
		OrderCaptures:      true,
		OrderChecks:        true,
		UseKillers:         true,
		UseHistory:         true,
		HistoryMinDepth:    2,
		UseCounterMoves:    true,
		UseContinuation:    true,
		UseSEEOrdering:     true,
		SEETopK:            8,
		UseNullMove:        true,
		UseLMR:             true,
		UseFutility:        true,
		UseLateMovePruning: true,
		UseSingular:        true,
		SingularMargin:     2,
		UseIID:             true,
		UseAspiration:      true,
		AspirationWindow:   25,
		QuietCheckProbes:   2,
		BlendPercent:       100,
	}
}

// UciScore is a centipawn score, or a distance to mate in full moves
// when Mate is non-zero.
type UciScore struct {
	Centipawns int
	Mate       int
}

type SearchInfo struct {
	Score    UciScore
	Depth    int
	Nodes    int64
	Time     time.Duration
	MainLine []dragon.Move
}

// BestMove is the first move of the main line, or the zero move when
// the search produced no line (no legal moves).
func (si *SearchInfo) BestMove() dragon.Move {
	if len(si.MainLine) == 0 {
		return 0
	}
	return si.MainLine[0]
}
