package engine

import (
	"testing"

	dragon "github.com/Bubblyworld/dragontoothmg"
	"github.com/matryer/is"
)

func TestHistoryAccumulatesAndClamps(t *testing.T) {
	is := is.New(t)
	var board = dragon.ParseFen(dragon.Startpos)
	var move = mustMove(t, &board, "g1f3")

	var h historyTable
	is.Equal(h.Read(move), 0)

	h.Update(move, 10)
	is.Equal(h.Read(move), 100)

	for i := 0; i < 4; i++ {
		h.Update(move, 100)
	}
	is.Equal(h.Read(move), historyMax)

	h.Clear()
	is.Equal(h.Read(move), 0)
}

func TestMoveSignatureSeparatesPromotions(t *testing.T) {
	is := is.New(t)
	var board = dragon.ParseFen("8/P6k/8/8/8/8/8/K7 w - - 0 1")
	var queen = mustMove(t, &board, "a7a8q")
	var knight = mustMove(t, &board, "a7a8n")
	is.True(moveSignature(queen) != moveSignature(knight))
	is.True(moveSignature(queen) < signatureSize)
	is.True(moveSignature(knight) < signatureSize)
}

func TestCounterMoveIgnoresEmptyParent(t *testing.T) {
	is := is.New(t)
	var board = dragon.ParseFen(dragon.Startpos)
	var parent = mustMove(t, &board, "e2e4")
	var reply = mustMove(t, &board, "d2d4")

	var c counterMoveTable
	c.Update(0, reply)
	is.Equal(c.Read(0), dragon.Move(0))

	c.Update(parent, reply)
	is.Equal(c.Read(parent), reply)
}

func TestContinuationHistory(t *testing.T) {
	is := is.New(t)
	var board = dragon.ParseFen(dragon.Startpos)
	var parent = mustMove(t, &board, "e2e4")
	var child = mustMove(t, &board, "g1f3")

	var c continuationTable
	is.Equal(c.Read(parent, child), 0)
	c.Update(parent, child, 6)
	is.Equal(c.Read(parent, child), 36)
	is.Equal(c.Read(0, child), 0)
}
