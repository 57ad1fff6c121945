package engine

import (
	"testing"

	dragon "github.com/Bubblyworld/dragontoothmg"
	"github.com/matryer/is"
)

func mustMove(t *testing.T, p *dragon.Board, uci string) dragon.Move {
	t.Helper()
	for _, move := range p.GenerateLegalMoves() {
		if move.String() == uci {
			return move
		}
	}
	t.Fatalf("no legal move %v", uci)
	return 0
}

func TestSeeUndefendedCapture(t *testing.T) {
	is := is.New(t)
	var board = dragon.ParseFen("k7/8/8/3p4/4B3/8/8/K7 w - - 0 1")
	gain, ok := seeGain(&board, mustMove(t, &board, "e4d5"))
	is.True(ok)
	is.Equal(gain, 100) // pawn for free
}

func TestSeeDefendedPawnLosesBishop(t *testing.T) {
	is := is.New(t)
	var board = dragon.ParseFen("k7/8/4p3/3p4/4B3/8/8/K7 w - - 0 1")
	gain, ok := seeGain(&board, mustMove(t, &board, "e4d5"))
	is.True(ok)
	is.Equal(gain, -230) // pawn gained, bishop lost to exd5
}

func TestSeeLosingRookCapture(t *testing.T) {
	is := is.New(t)
	var board = dragon.ParseFen("6k1/2R4p/6p1/8/6K1/6P1/8/8 w - - 3 38")
	gain, ok := seeGain(&board, mustMove(t, &board, "c7h7"))
	is.True(ok)
	is.True(gain < 0) // h7 is defended by the g6 pawn
}

func TestSeeNonCapture(t *testing.T) {
	is := is.New(t)
	var board = dragon.ParseFen(dragon.Startpos)
	_, ok := seeGain(&board, mustMove(t, &board, "e2e4"))
	is.True(!ok)
}
