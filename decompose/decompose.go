// Package decompose splits a hand into melds, pairs, proto-melds and
// singles.
//
// The first phase searches for the assignment of complete melds and pairs
// with the most melds, breaking ties by pairs. The second phase salvages
// what the search left over: extra pairs, then partial sequences, then
// singles. The result is deterministic for a given hand.
package decompose

import (
	"github.com/valarxu/mahjong-practice/cache"
	"github.com/valarxu/mahjong-practice/tilemapping"
)

// Decompose runs both phases on h without any memoization. h is copied and
// never modified.
func Decompose(h tilemapping.Hand) Decomposition {
	d := Decomposition{Total: h.NumTiles()}
	counts := h

	var s meldSearch
	for _, c := range s.run(counts) {
		d.add(&counts, candidateGroup(c))
	}
	salvage(&d, &counts)
	return d
}

// salvage turns the tiles the search did not use into pairs, proto-melds
// and singles, in that order.
func salvage(d *Decomposition, counts *tilemapping.Hand) {
	for k := range counts {
		if counts[k] >= 2 {
			kind := tilemapping.TileKind(k)
			d.add(counts, newGroup(Pair, kind, kind))
		}
	}

	for _, suit := range []tilemapping.Suit{tilemapping.SuitCharacters,
		tilemapping.SuitBamboo, tilemapping.SuitDots} {

		ks := tilemapping.SuitKinds(suit)
		// two-sided: 2-3 through 7-8
		for i := 1; i < tilemapping.SuitSize-2; i++ {
			tryProto(d, counts, TwoSided, ks[i], ks[i+1])
		}
		for i := 0; i < tilemapping.SuitSize-2; i++ {
			tryProto(d, counts, Closed, ks[i], ks[i+2])
		}
		tryProto(d, counts, Edge, ks[0], ks[1])
		tryProto(d, counts, Edge, ks[tilemapping.SuitSize-2], ks[tilemapping.SuitSize-1])
	}

	for k := range counts {
		for counts[k] > 0 {
			d.add(counts, newGroup(Single, tilemapping.TileKind(k)))
		}
	}
}

// tryProto takes at most one proto-meld of the given shape.
func tryProto(d *Decomposition, counts *tilemapping.Hand, t GroupType, a, b tilemapping.TileKind) {
	if counts[a] > 0 && counts[b] > 0 {
		d.add(counts, newGroup(t, a, b))
	}
}

// Decomposer decomposes hands, consulting a memo table when it has one.
// The table only changes how fast results come back, never what they are.
type Decomposer struct {
	table *cache.Table[Decomposition]
}

// NewDecomposer returns a Decomposer backed by table, which may be nil.
func NewDecomposer(table *cache.Table[Decomposition]) *Decomposer {
	return &Decomposer{table: table}
}

// Decompose returns a decomposition the caller owns and may modify.
func (dc *Decomposer) Decompose(h tilemapping.Hand) Decomposition {
	key, ok := dc.Key(h)
	if !ok {
		return Decompose(h)
	}
	return dc.DecomposeKeyed(h, key)
}

// DecomposeKeyed is Decompose for a hand whose memo key is already known,
// e.g. from KeyWithDraw.
func (dc *Decomposer) DecomposeKeyed(h tilemapping.Hand, key uint64) Decomposition {
	if dc == nil || dc.table == nil {
		return Decompose(h)
	}
	if d, ok := dc.table.GetKeyed(key, &h); ok {
		return d.Clone()
	}
	d := Decompose(h)
	dc.table.PutKeyed(key, &h, d.Clone())
	return d
}

// Key returns the memo key of h. It reports false when there is no table
// or h is invalid.
func (dc *Decomposer) Key(h tilemapping.Hand) (uint64, bool) {
	if dc == nil || dc.table == nil || h.Validate() != nil {
		return 0, false
	}
	return dc.table.Key(&h), true
}

// KeyWithDraw derives the key of h plus one k from key, the key of h.
func (dc *Decomposer) KeyWithDraw(key uint64, h tilemapping.Hand, k tilemapping.TileKind) (uint64, bool) {
	if dc == nil || dc.table == nil {
		return 0, false
	}
	return dc.table.KeyAfterAdd(key, &h, k)
}

// KeyWithDiscard derives the key of h minus one k from key, the key of h.
func (dc *Decomposer) KeyWithDiscard(key uint64, h tilemapping.Hand, k tilemapping.TileKind) (uint64, bool) {
	if dc == nil || dc.table == nil {
		return 0, false
	}
	return dc.table.KeyAfterTake(key, &h, k)
}

// Table returns the memo table, or nil.
func (dc *Decomposer) Table() *cache.Table[Decomposition] {
	if dc == nil {
		return nil
	}
	return dc.table
}
