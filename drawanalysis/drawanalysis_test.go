package drawanalysis

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/matryer/is"
	"github.com/stretchr/testify/assert"

	"github.com/valarxu/mahjong-practice/cache"
	"github.com/valarxu/mahjong-practice/decompose"
	"github.com/valarxu/mahjong-practice/discard"
	"github.com/valarxu/mahjong-practice/progress"
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

func mustTiles(t *testing.T, s string) []tilemapping.TileKind {
	t.Helper()
	ks, err := tilemapping.ParseTiles(s)
	if err != nil {
		t.Fatal(err)
	}
	return ks
}

func mustTile(t *testing.T, s string) tilemapping.TileKind {
	t.Helper()
	k, err := tilemapping.ParseTile(s)
	if err != nil {
		t.Fatal(err)
	}
	return k
}

func entryFor(es []Entry, k tilemapping.TileKind) (Entry, bool) {
	for _, e := range es {
		if e.Kind == k {
			return e, true
		}
	}
	return Entry{}, false
}

func TestAnalyzeSingleDiscard(t *testing.T) {
	is := is.New(t)
	a := NewAnalyzer(decompose.NewDecomposer(nil))
	res, err := a.Analyze(context.Background(), Request{
		Hand:      mustHand(t, "123m456s789p11z259m"),
		Candidate: mustTile(t, "9m"),
	})
	is.NoErr(err)
	is.True(!res.Verdict.IsBad)
	// three melds, the 1z pair, 2m and 5m left as singles.
	is.Equal(res.Baseline, 33)

	e, ok := entryFor(res.Entries, mustTile(t, "3m"))
	is.True(ok)
	is.Equal(e.Remaining, 3)
	is.Equal(e.Delta, 3)
	is.Equal(e.Score, 36)

	// drawing back the discarded tile doesn't help.
	_, ok = entryFor(res.Entries, mustTile(t, "9m"))
	is.True(!ok)

	for i, e := range res.Entries {
		is.True(e.Delta > 0)
		is.True(e.Remaining > 0)
		is.Equal(e.Score, res.Baseline+e.Delta)
		if i > 0 {
			is.True(res.Entries[i-1].Kind < e.Kind)
		}
	}
	is.Equal(res.ImprovingKinds(), len(res.Entries))
}

func TestVisibleTilesReduceSupply(t *testing.T) {
	is := is.New(t)
	a := NewAnalyzer(decompose.NewDecomposer(nil))
	req := Request{
		Hand:      mustHand(t, "123m456s789p11z259m"),
		Candidate: mustTile(t, "9m"),
		Discards:  mustTiles(t, "33m"),
		Exposed:   mustTiles(t, "3m1z"),
	}
	res, err := a.Analyze(context.Background(), req)
	is.NoErr(err)
	// every 3m is accounted for.
	_, ok := entryFor(res.Entries, mustTile(t, "3m"))
	is.True(!ok)

	// one 1z left: two in hand, one exposed.
	if e, ok := entryFor(res.Entries, mustTile(t, "1z")); ok {
		is.Equal(e.Remaining, 1)
	}

	req.Exposed = nil
	res2, err := a.Analyze(context.Background(), req)
	is.NoErr(err)
	e, ok := entryFor(res2.Entries, mustTile(t, "3m"))
	is.True(ok)
	is.Equal(e.Remaining, 1)
	is.True(res2.EffectiveSupply() > res.EffectiveSupply())
}

func TestBadDiscardIsNotSimulated(t *testing.T) {
	is := is.New(t)
	a := NewAnalyzer(decompose.NewDecomposer(nil))
	res, err := a.Analyze(context.Background(), Request{
		Hand:      mustHand(t, "123m456s789p11z259m"),
		Candidate: mustTile(t, "5s"),
	})
	is.NoErr(err)
	is.True(res.Verdict.IsBad)
	is.Equal(res.Verdict.Reason, discard.BreaksSequence)
	is.Equal(len(res.Entries), 0)
	is.Equal(res.Baseline, 0)
}

func TestAnalyzeErrors(t *testing.T) {
	is := is.New(t)
	a := NewAnalyzer(decompose.NewDecomposer(nil))

	_, err := a.Analyze(context.Background(), Request{
		Hand:      mustHand(t, "123m"),
		Candidate: mustTile(t, "5z"),
	})
	is.True(errors.Is(err, tilemapping.ErrTileNotInHand))

	var h tilemapping.Hand
	h[4] = 5
	_, err = a.Analyze(context.Background(), Request{Hand: h, Candidate: 4})
	is.True(errors.Is(err, tilemapping.ErrInvalidHand))

	_, err = a.Analyze(context.Background(), Request{
		Hand:      mustHand(t, "123m"),
		Candidate: 0,
		Discards:  mustTiles(t, "11111z"),
	})
	is.True(errors.Is(err, tilemapping.ErrInvalidHand))
}

func TestThreadsDoNotChangeResults(t *testing.T) {
	is := is.New(t)
	hands := []struct{ hand, discard string }{
		{"123m456s789p11z259m", "9m"},
		{"1359m2468s147p123z", "1z"},
		{"112233m4567s889p5z", "5z"},
	}
	table := cache.NewTable[decompose.Decomposition](0)
	for _, tc := range hands {
		req := Request{Hand: mustHand(t, tc.hand), Candidate: mustTile(t, tc.discard)}

		serial := NewAnalyzer(decompose.NewDecomposer(nil))
		want, err := serial.Analyze(context.Background(), req)
		is.NoErr(err)

		for _, threads := range []int{2, 4, 8, 34} {
			par := NewAnalyzer(decompose.NewDecomposer(table))
			par.SetThreads(threads)
			got, err := par.Analyze(context.Background(), req)
			is.NoErr(err)
			assert.Equal(t, want, got)
		}
	}
}

func TestSortByDelta(t *testing.T) {
	is := is.New(t)
	a := NewAnalyzer(decompose.NewDecomposer(nil))
	a.SetSortOrder(ByDelta)
	res, err := a.Analyze(context.Background(), Request{
		Hand:      mustHand(t, "1359m2468s147p123z"),
		Candidate: mustTile(t, "1z"),
	})
	is.NoErr(err)
	is.True(len(res.Entries) > 1)
	for i := 1; i < len(res.Entries); i++ {
		prev, cur := res.Entries[i-1], res.Entries[i]
		is.True(prev.Delta >= cur.Delta)
		if prev.Delta == cur.Delta {
			is.True(prev.Kind < cur.Kind)
		}
	}
}

func TestCanceledContext(t *testing.T) {
	is := is.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := Request{
		Hand:      mustHand(t, "123m456s789p11z259m"),
		Candidate: mustTile(t, "9m"),
	}
	for _, threads := range []int{1, 4} {
		a := NewAnalyzer(decompose.NewDecomposer(nil))
		a.SetThreads(threads)
		_, err := a.Analyze(ctx, req)
		is.True(errors.Is(err, context.Canceled))
	}
}

func TestParseSortOrder(t *testing.T) {
	is := is.New(t)
	o, err := ParseSortOrder("delta")
	is.NoErr(err)
	is.Equal(o, ByDelta)
	o, err = ParseSortOrder("")
	is.NoErr(err)
	is.Equal(o, ByKind)
	_, err = ParseSortOrder("random")
	is.True(err != nil)
}

// randomDeal deals a hand of n tiles and a few visible tiles from a
// shuffled wall of kinds below limit.
func randomDeal(r *rand.Rand, n, visible, limit int) (tilemapping.Hand, []tilemapping.TileKind) {
	var wall []tilemapping.TileKind
	for k := range limit {
		for range tilemapping.CopiesPerKind {
			wall = append(wall, tilemapping.TileKind(k))
		}
	}
	r.Shuffle(len(wall), func(i, j int) { wall[i], wall[j] = wall[j], wall[i] })
	var h tilemapping.Hand
	for _, k := range wall[:n] {
		h.Add(k)
	}
	return h, wall[n : n+visible]
}

func TestRandomHandProperties(t *testing.T) {
	is := is.New(t)
	r := rand.New(rand.NewPCG(21, 4))
	table := cache.NewTable[decompose.Decomposition](0)
	plain := NewAnalyzer(decompose.NewDecomposer(nil))
	cached := NewAnalyzer(decompose.NewDecomposer(table))
	cached.SetThreads(4)

	for i := range 150 {
		limit := []int{tilemapping.SuitSize, 2 * tilemapping.SuitSize, tilemapping.NumKinds}[i%3]
		h, river := randomDeal(r, []int{14, 17, 11}[i%3], r.IntN(8), limit)
		held := h.Kinds()
		req := Request{Hand: h, Discards: river, Candidate: held[r.IntN(len(held))]}

		res, err := plain.Analyze(context.Background(), req)
		is.NoErr(err)
		is.Equal(res.Verdict, discard.Classify(decompose.Decompose(h), req.Candidate))

		if res.Verdict.IsBad {
			is.Equal(len(res.Entries), 0)
			is.Equal(res.Baseline, 0)
		} else {
			after := h
			is.NoErr(after.Take(req.Candidate))
			is.Equal(res.Baseline, progress.ScoreDecomposition(decompose.Decompose(after)))
			supply := tilemapping.RemainingSupply(after, river)

			// every improving draw with unseen copies is listed, and only those.
			listed := 0
			for k := range tilemapping.NumKinds {
				kind := tilemapping.TileKind(k)
				drawn := after
				drawn.Add(kind)
				delta := progress.ScoreDecomposition(decompose.Decompose(drawn)) - res.Baseline
				e, ok := entryFor(res.Entries, kind)
				is.Equal(ok, supply[k] > 0 && delta > 0)
				if ok {
					listed++
					is.Equal(e.Delta, delta)
					is.Equal(e.Remaining, supply[k])
					is.Equal(e.Score, res.Baseline+delta)
				}
			}
			is.Equal(listed, len(res.Entries))
		}

		got, err := cached.Analyze(context.Background(), req)
		is.NoErr(err)
		assert.Equal(t, res, got)
	}
	is.True(table.Stats().Hits > 0)
}
