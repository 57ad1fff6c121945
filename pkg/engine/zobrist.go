package engine

import (
	"math/bits"
	"sync"

	dragon "github.com/Bubblyworld/dragontoothmg"
)

// Zobrist keys are derived from fixed seeds with splitmix64 so that the
// hash of any position is reproducible across builds and platforms.
const (
	zobristPieceSeed = 0xF00DF00DDEADBEEF
	zobristSideSeed  = 0xABCDEF1234567890
)

var (
	zobristOnce  sync.Once
	zobristPiece [12 * 64]uint64
	zobristSide  uint64
)

func splitmix64(state *uint64) uint64 {
	*state += 0x9E3779B97F4A7C15
	var z = *state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

func initZobrist() {
	var state uint64 = zobristPieceSeed
	for i := range zobristPiece {
		zobristPiece[i] = splitmix64(&state)
	}
	state = zobristSideSeed
	zobristSide = splitmix64(&state)
}

// positionHash computes the 64-bit key of a position from scratch:
// XOR of one key per (color, piece kind, square), XOR a side key when
// Black is to move. Independent of the board library's own hashing.
func positionHash(p *dragon.Board) uint64 {
	zobristOnce.Do(initZobrist)
	var key uint64
	for colorIndex, color := range [2]int{int(dragon.White), int(dragon.Black)} {
		for piece := dragon.Pawn; piece <= dragon.King; piece++ {
			var pieceIndex = colorIndex*6 + int(piece-dragon.Pawn)
			for bb := p.Bbs[color][piece]; bb != 0; bb &= bb - 1 {
				var sq = bits.TrailingZeros64(bb)
				key ^= zobristPiece[pieceIndex*64+sq]
			}
		}
	}
	if !p.Wtomove {
		key ^= zobristSide
	}
	return key
}
