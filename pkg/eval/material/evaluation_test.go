package material

import (
	"testing"

	dragon "github.com/Bubblyworld/dragontoothmg"
	"github.com/matryer/is"
)

func TestStartposIsBalanced(t *testing.T) {
	is := is.New(t)
	var board = dragon.ParseFen(dragon.Startpos)
	is.Equal(NewEvaluationService().Evaluate(&board), 0)
}

func TestExtraQueenScoresForSideToMove(t *testing.T) {
	is := is.New(t)
	var e = NewEvaluationService()
	var white = dragon.ParseFen("k7/8/8/8/8/8/8/KQ6 w - - 0 1")
	var black = dragon.ParseFen("k7/8/8/8/8/8/8/KQ6 b - - 0 1")
	var fromWhite = e.Evaluate(&white)
	is.True(fromWhite > 800)
	is.Equal(e.Evaluate(&black), -fromWhite)
}

func TestBlackMirrorsPieceSquareTables(t *testing.T) {
	is := is.New(t)
	var e = NewEvaluationService()
	// mirrored positions with the move must score identically
	var white = dragon.ParseFen("k7/8/8/8/8/5N2/8/K7 w - - 0 1")
	var black = dragon.ParseFen("k7/8/5n2/8/8/8/8/K7 b - - 0 1")
	is.Equal(e.Evaluate(&white), e.Evaluate(&black))
}
