package tilemapping

import (
	"testing"

	"github.com/matryer/is"
)

func TestSuitAndRank(t *testing.T) {
	is := is.New(t)
	type tc struct {
		kind TileKind
		suit Suit
		rank int
	}
	for _, c := range []tc{
		{0, SuitCharacters, 1},
		{8, SuitCharacters, 9},
		{9, SuitBamboo, 1},
		{17, SuitBamboo, 9},
		{18, SuitDots, 1},
		{26, SuitDots, 9},
		{27, SuitWinds, 1},
		{30, SuitWinds, 4},
		{31, SuitDragons, 1},
		{33, SuitDragons, 3},
	} {
		is.Equal(c.kind.Suit(), c.suit)
		is.Equal(c.kind.Rank(), c.rank)
	}
}

func TestSequenceFrom(t *testing.T) {
	is := is.New(t)
	starts := 0
	for k := TileKind(0); k < NumKinds; k++ {
		if SequenceFrom(k) {
			starts++
			// runs never leave the suit
			is.Equal(k.Suit(), (k + 2).Suit())
			is.True(k.IsNumeral())
		}
	}
	is.Equal(starts, 21)
	is.True(!SequenceFrom(7))
	is.True(!SequenceFrom(25))
	is.True(!SequenceFrom(27))
}

func TestSuitKinds(t *testing.T) {
	is := is.New(t)
	is.Equal(SuitKinds(SuitBamboo)[0], TileKind(9))
	is.Equal(len(SuitKinds(SuitWinds)), 4)
	is.Equal(SuitKinds(SuitDragons), []TileKind{31, 32, 33})
	is.True(TileKind(0).IsTerminal())
	is.True(!TileKind(4).IsTerminal())
	is.True(!TileKind(27).IsTerminal())
}
