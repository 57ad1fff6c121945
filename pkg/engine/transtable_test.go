package engine

import (
	"testing"

	dragon "github.com/Bubblyworld/dragontoothmg"
	"github.com/matryer/is"
)

func TestTransTableRoundTrip(t *testing.T) {
	is := is.New(t)
	var tt = newTransTableSlots(64)

	var key = uint64(0x9D39247E33776D41)
	tt.update(key, 7, 42, boundExact, dragon.Move(123))

	depth, score, bound, move, found := tt.read(key)
	is.True(found)
	is.Equal(depth, 7)
	is.Equal(score, 42)
	is.Equal(bound, boundExact)
	is.Equal(move, dragon.Move(123))

	_, _, _, _, found = tt.read(key + 1)
	is.True(!found)
}

func TestTransTableSameKeyKeepsDeeper(t *testing.T) {
	is := is.New(t)
	var tt = newTransTableSlots(64)
	var key = uint64(0xABCDEF)

	tt.update(key, 5, 10, boundExact, dragon.Move(1))
	tt.update(key, 3, 99, boundExact, dragon.Move(2))

	depth, score, _, move, found := tt.read(key)
	is.True(found)
	is.Equal(depth, 5) // shallower result must not displace deeper one
	is.Equal(score, 10)
	is.Equal(move, dragon.Move(1))

	tt.update(key, 6, 77, boundLower, dragon.Move(3))
	depth, score, bound, move, found := tt.read(key)
	is.True(found)
	is.Equal(depth, 6)
	is.Equal(score, 77)
	is.Equal(bound, boundLower)
	is.Equal(move, dragon.Move(3))
}

func TestTransTableNeverExceedsCapacity(t *testing.T) {
	is := is.New(t)
	var tt = newTransTableSlots(8)
	is.Equal(tt.capacity(), 8)

	var state = uint64(1)
	for i := 0; i < 64; i++ {
		var key = splitmix64(&state)
		tt.update(key, i%10, i, boundExact, dragon.Move(i+1))
	}
	is.True(tt.resident() <= tt.capacity())
	is.True(tt.resident() > 0)

	tt.clear()
	is.Equal(tt.resident(), 0)
}

func TestMateScoreHeightAdjustment(t *testing.T) {
	is := is.New(t)

	// a mate found 5 plies below a node probed at the same height must
	// read back unchanged
	for _, v := range []int{winIn(5), lossIn(5), 123, -123, 0} {
		is.Equal(valueFromTT(valueToTT(v, 3), 3), v)
	}

	// stored relative to the node: probing deeper moves the mate further
	// from the probing node's root
	var stored = valueToTT(winIn(5), 3)
	is.Equal(valueFromTT(stored, 7), winIn(9))
}
