package nnue

import (
	"math/bits"

	dragon "github.com/Bubblyworld/dragontoothmg"
)

// HalfKP features: one index per (perspective side, that side's king
// square, piece kind, piece square), for both sides, kings excluded.
// Every piece feature is relative to its own king, which is why a king
// move invalidates that side's whole feature set.

const halfKpPieceKinds = 5 // pawn, knight, bishop, rook, queen

// InputDim is the HalfKP feature space size: 2 sides x 64 king squares
// x 5 piece kinds x 64 piece squares.
const InputDim = 2 * 64 * halfKpPieceKinds * 64

func featureIndex(sideOffset, kingSq, pieceKind, sq int) int {
	return (((sideOffset*64+kingSq)*halfKpPieceKinds + pieceKind) * 64) + sq
}

func kingSquare(p *dragon.Board, color int) int {
	return bits.TrailingZeros64(p.Bbs[color][dragon.King])
}

// appendActiveIndices collects the active feature indices of a
// position into out, reusing its backing array.
func appendActiveIndices(p *dragon.Board, out []int) []int {
	out = out[:0]
	for sideOffset, color := range [2]int{int(dragon.White), int(dragon.Black)} {
		var kingSq = kingSquare(p, color)
		for pieceKind := 0; pieceKind < halfKpPieceKinds; pieceKind++ {
			var piece = dragon.Pawn + dragon.Piece(pieceKind)
			for bb := p.Bbs[color][piece]; bb != 0; bb &= bb - 1 {
				var sq = bits.TrailingZeros64(bb)
				out = append(out, featureIndex(sideOffset, kingSq, pieceKind, sq))
			}
		}
	}
	return out
}
