package progress

import (
	"testing"

	"github.com/matryer/is"

	"github.com/valarxu/mahjong-practice/cache"
	"github.com/valarxu/mahjong-practice/decompose"
	"github.com/valarxu/mahjong-practice/tilemapping"
)

func mustHand(t *testing.T, s string) tilemapping.Hand {
	t.Helper()
	h, err := tilemapping.HandFromString(s)
	if err != nil {
		t.Fatal(err)
	}
	return h
}

func TestScoreDecomposition(t *testing.T) {
	testCases := []struct {
		hand  string
		score int
	}{
		{"", 0},
		{"123m", 10},
		{"111z", 10},
		{"11z", 5},
		// only the first pair counts.
		{"1122z", 5},
		{"23m", 2},
		{"1z", -1},
		{"123m456s789p1234z", 30 - 4},
		{"111222333m55p", 35},
		{"13m5p7z", 2 - 2},
		{"11z22z33z44z55z66z77z", 5},
	}
	for _, tc := range testCases {
		t.Run(tc.hand, func(t *testing.T) {
			is := is.New(t)
			d := decompose.Decompose(mustHand(t, tc.hand))
			is.Equal(ScoreDecomposition(d), tc.score)
		})
	}
}

func TestGroupWeightedMatchesFormula(t *testing.T) {
	is := is.New(t)
	table := cache.NewTable[decompose.Decomposition](0)
	for _, dc := range []*decompose.Decomposer{nil, decompose.NewDecomposer(table)} {
		var sc Scorer = NewGroupWeighted(dc)
		for _, s := range []string{"123456789m11z", "1359m2468s", "147z258p"} {
			h := mustHand(t, s)
			is.Equal(sc.Score(h), ScoreDecomposition(decompose.Decompose(h)))
			// scoring twice gives the same answer, cached or not.
			is.Equal(sc.Score(h), sc.Score(h))
		}
	}
}

func TestTileScore(t *testing.T) {
	testCases := []struct {
		hand  string
		score int
	}{
		{"", 0},
		{"1m", 0},
		{"11m", 1},
		{"111m", 3},
		{"123m", 2},
		{"1122m", 2},
		{"111222333m", 9},
		{"11223344m55z", 6},
		{"1111z", 3},
	}
	for _, tc := range testCases {
		t.Run(tc.hand, func(t *testing.T) {
			is := is.New(t)
			h := mustHand(t, tc.hand)
			is.Equal(TileScore(h), tc.score)
			is.Equal(TileScorer{}.Score(h), tc.score)
		})
	}
}

func TestTileScoreLeavesHandAlone(t *testing.T) {
	is := is.New(t)
	h := mustHand(t, "112233m")
	before := h
	TileScore(h)
	is.Equal(h, before)
}
