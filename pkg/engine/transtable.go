package engine

import (
	"sync"
	"sync/atomic"

	dragon "github.com/Bubblyworld/dragontoothmg"
	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"
)

const (
	boundNone  = 0
	boundLower = 1 << 0
	boundUpper = 1 << 1
	boundExact = boundLower | boundUpper
)

const ttWays = 4

// ttEntrySize approximates the resident bytes per slot, bucket lock
// included, when converting a megabyte budget into a slot count.
const ttEntrySize = 24

type ttEntry struct {
	key   uint64
	move  dragon.Move
	score int16
	depth int8
	bound uint8
	gen   uint16
}

type ttBucket struct {
	mu    sync.Mutex
	slots [ttWays]ttEntry
}

// transTable is the only state shared between search workers. Each
// bucket carries its own lock, so writes to different buckets never
// contend and writes to the same bucket block only each other.
type transTable struct {
	buckets   []ttBucket
	gen       atomic.Uint32
	megabytes int
}

func newTransTable(megabytes int) *transTable {
	if megabytes <= 0 {
		// 1/64 of system memory, within sane bounds
		megabytes = int(memory.TotalMemory() / (64 * 1024 * 1024))
		megabytes = max(4, min(megabytes, 1024))
	}
	var t = newTransTableSlots(megabytes * 1024 * 1024 / ttEntrySize)
	t.megabytes = megabytes
	log.Debug().
		Int("megabytes", megabytes).
		Int("buckets", len(t.buckets)).
		Int("slots", len(t.buckets)*ttWays).
		Msg("transposition-table-size")
	return t
}

// newTransTableSlots sizes the table by slot count directly; tests use
// it for tiny tables with a predictable capacity.
func newTransTableSlots(slots int) *transTable {
	return &transTable{
		buckets: make([]ttBucket, max(1, slots/ttWays)),
	}
}

func (t *transTable) size() int {
	return t.megabytes
}

func (t *transTable) capacity() int {
	return len(t.buckets) * ttWays
}

// resident counts stored entries; the total never exceeds capacity.
func (t *transTable) resident() int {
	var n = 0
	for i := range t.buckets {
		var b = &t.buckets[i]
		b.mu.Lock()
		for way := range b.slots {
			if b.slots[way].bound != boundNone {
				n++
			}
		}
		b.mu.Unlock()
	}
	return n
}

func (t *transTable) clear() {
	for i := range t.buckets {
		var b = &t.buckets[i]
		b.mu.Lock()
		b.slots = [ttWays]ttEntry{}
		b.mu.Unlock()
	}
	t.gen.Store(0)
}

// bumpGeneration is called once per iterative-deepening depth so that
// stale entries become preferentially evictable without throwing away
// deep results from earlier iterations.
func (t *transTable) bumpGeneration() {
	t.gen.Add(1)
}

func (t *transTable) bucketFor(key uint64) *ttBucket {
	var mixed = key ^ key>>32
	return &t.buckets[mixed%uint64(len(t.buckets))]
}

func (t *transTable) read(key uint64) (depth, score, bound int, move dragon.Move, found bool) {
	var b = t.bucketFor(key)
	b.mu.Lock()
	defer b.mu.Unlock()
	for way := range b.slots {
		var e = &b.slots[way]
		if e.bound != boundNone && e.key == key {
			return int(e.depth), int(e.score), int(e.bound), e.move, true
		}
	}
	return
}

func (t *transTable) update(key uint64, depth, score, bound int, move dragon.Move) {
	var e = ttEntry{
		key:   key,
		move:  move,
		score: int16(score),
		depth: int8(depth),
		bound: uint8(bound),
		gen:   uint16(t.gen.Load()),
	}
	var b = t.bucketFor(key)
	b.mu.Lock()
	defer b.mu.Unlock()
	for way := range b.slots {
		var cur = &b.slots[way]
		if cur.bound != boundNone && cur.key == key {
			// same position: keep the deeper result
			if depth >= int(cur.depth) {
				*cur = e
			}
			return
		}
	}
	for way := range b.slots {
		if b.slots[way].bound == boundNone {
			b.slots[way] = e
			return
		}
	}
	// evict the shallowest slot, oldest generation on ties
	var victim = 0
	for way := 1; way < ttWays; way++ {
		var cur = &b.slots[way]
		var worst = &b.slots[victim]
		if cur.depth < worst.depth ||
			(cur.depth == worst.depth && cur.gen < worst.gen) {
			victim = way
		}
	}
	b.slots[victim] = e
}
