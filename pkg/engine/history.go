package engine

import (
	"encoding/binary"

	dragon "github.com/Bubblyworld/dragontoothmg"
	"github.com/cespare/xxhash/v2"
)

const historyMax = 1 << 14

// moveSignature packs (from, to, promotion kind) into a dense index.
// It identifies a move independent of position, which is exactly the
// granularity history-style heuristics want.
const signatureSize = 64 * 64 * 5

func moveSignature(move dragon.Move) int {
	var promo = 0
	switch move.Promote() {
	case dragon.Knight:
		promo = 1
	case dragon.Bishop:
		promo = 2
	case dragon.Rook:
		promo = 3
	case dragon.Queen:
		promo = 4
	}
	return (int(move.From())*64+int(move.To()))*5 + promo
}

// historyTable accumulates depth*depth for every quiet move that
// caused a beta cutoff. Private per worker; no locking.
type historyTable struct {
	values [signatureSize]int32
}

func (h *historyTable) Read(move dragon.Move) int {
	return int(h.values[moveSignature(move)])
}

func (h *historyTable) Update(move dragon.Move, depth int) {
	var v = &h.values[moveSignature(move)]
	*v += int32(depth * depth)
	if *v > historyMax {
		*v = historyMax
	}
}

func (h *historyTable) Clear() {
	h.values = [signatureSize]int32{}
}

// counterMoveTable remembers the most recent refutation of each parent
// move.
type counterMoveTable struct {
	moves [signatureSize]dragon.Move
}

func (c *counterMoveTable) Read(parent dragon.Move) dragon.Move {
	if parent == 0 {
		return 0
	}
	return c.moves[moveSignature(parent)]
}

func (c *counterMoveTable) Update(parent, move dragon.Move) {
	if parent != 0 {
		c.moves[moveSignature(parent)] = move
	}
}

func (c *counterMoveTable) Clear() {
	c.moves = [signatureSize]dragon.Move{}
}

const contHistBits = 15

// continuationTable scores (parent move, child move) pairs. The pair
// space is too large for a dense table, so pairs are hashed into a
// fixed power-of-two table; collisions just blur the heuristic.
type continuationTable struct {
	values [1 << contHistBits]int32
}

func contIndex(parent, child dragon.Move) int {
	var buf [8]byte
	binary.LittleEndian.PutUint32(buf[0:], uint32(moveSignature(parent)))
	binary.LittleEndian.PutUint32(buf[4:], uint32(moveSignature(child)))
	return int(xxhash.Sum64(buf[:]) & (1<<contHistBits - 1))
}

func (c *continuationTable) Read(parent, child dragon.Move) int {
	if parent == 0 {
		return 0
	}
	return int(c.values[contIndex(parent, child)])
}

func (c *continuationTable) Update(parent, child dragon.Move, depth int) {
	if parent == 0 {
		return
	}
	var v = &c.values[contIndex(parent, child)]
	*v += int32(depth * depth)
	if *v > historyMax {
		*v = historyMax
	}
}

func (c *continuationTable) Clear() {
	c.values = [1 << contHistBits]int32{}
}
