package engine

import (
	"testing"

	dragon "github.com/Bubblyworld/dragontoothmg"
	"github.com/matryer/is"
)

func applyLine(t *testing.T, p *dragon.Board, line ...string) {
	t.Helper()
	for _, uci := range line {
		p.Apply(mustMove(t, p, uci))
	}
}

func TestZobristSideToMove(t *testing.T) {
	is := is.New(t)
	var white = dragon.ParseFen("k7/8/8/8/8/8/8/K7 w - - 0 1")
	var black = dragon.ParseFen("k7/8/8/8/8/8/8/K7 b - - 0 1")
	is.True(positionHash(&white) != positionHash(&black))
}

func TestZobristTransposition(t *testing.T) {
	is := is.New(t)
	var a = dragon.ParseFen(dragon.Startpos)
	var b = dragon.ParseFen(dragon.Startpos)
	applyLine(t, &a, "e2e3", "e7e6", "d2d3")
	applyLine(t, &b, "d2d3", "e7e6", "e2e3")
	is.Equal(positionHash(&a), positionHash(&b))

	var start = dragon.ParseFen(dragon.Startpos)
	is.True(positionHash(&a) != positionHash(&start))
}

func TestZobristMoveChangesHash(t *testing.T) {
	is := is.New(t)
	var board = dragon.ParseFen(dragon.Startpos)
	var before = positionHash(&board)
	applyLine(t, &board, "g1f3")
	is.True(positionHash(&board) != before)
}

func TestSplitmixDeterministic(t *testing.T) {
	is := is.New(t)
	var a, b = uint64(42), uint64(42)
	for i := 0; i < 16; i++ {
		is.Equal(splitmix64(&a), splitmix64(&b))
	}
	var c = uint64(43)
	is.True(splitmix64(&a) != splitmix64(&c))
}
