package cache

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"

	"github.com/valarxu/mahjong-practice/tilemapping"
	"github.com/valarxu/mahjong-practice/zobrist"
)

// The cache package holds a fixed-size memo table for per-hand results,
// mostly decompositions. Sibling draw simulations share most of their
// structure, so the same count vectors come up over and over while a player
// tries out discards.

// rough per-entry footprint, including the decomposition it points to.
const entrySize = 256

const (
	minSizePowerOf2 = 10
	maxSizePowerOf2 = 22
)

type entry[V any] struct {
	key   uint64
	hand  tilemapping.Hand
	value V
	valid bool
}

// Stats is a snapshot of the table counters.
type Stats struct {
	Size    int
	Lookups uint64
	Hits    uint64
	Created uint64
}

// Table maps hands to values. Buckets are indexed by the low bits of the
// hand's Zobrist key; a colliding store simply overwrites the bucket.
type Table[V any] struct {
	sync.Mutex
	zobrist  *zobrist.Zobrist
	table    []entry[V]
	sizeMask uint64

	lookups atomic.Uint64
	hits    atomic.Uint64
	created atomic.Uint64
}

// NewTable sizes a table to use roughly fractionOfMemory of system memory.
func NewTable[V any](fractionOfMemory float64) *Table[V] {
	t := &Table[V]{zobrist: zobrist.New()}
	t.Reset(fractionOfMemory)
	return t
}

func (t *Table[V]) Reset(fractionOfMemory float64) {
	t.Lock()
	defer t.Unlock()
	totalMem := memory.TotalMemory()
	desiredNElems := fractionOfMemory * (float64(totalMem) / float64(entrySize))
	sizePowerOf2 := minSizePowerOf2
	if desiredNElems >= 1 {
		// biggest power of 2 lower than desired.
		sizePowerOf2 = int(math.Log2(desiredNElems))
	}
	sizePowerOf2 = max(min(sizePowerOf2, maxSizePowerOf2), minSizePowerOf2)

	numElems := 1 << sizePowerOf2
	t.sizeMask = uint64(numElems - 1)
	if t.table != nil && len(t.table) == numElems {
		clear(t.table)
	} else {
		t.table = make([]entry[V], numElems)
	}

	log.Debug().Int("num-elems", numElems).
		Float64("desired-num-elems", desiredNElems).
		Uint64("total-system-memory-bytes", totalMem).
		Msg("memo-table-size")

	t.lookups.Store(0)
	t.hits.Store(0)
	t.created.Store(0)
}

// Key returns the Zobrist key of h. h must be valid.
func (t *Table[V]) Key(h *tilemapping.Hand) uint64 {
	return t.zobrist.Hash(h)
}

// KeyAfterAdd returns the key of h plus one k, given key, the key of h. It
// reports false if h already holds every copy of k.
func (t *Table[V]) KeyAfterAdd(key uint64, h *tilemapping.Hand, k tilemapping.TileKind) (uint64, bool) {
	if !k.Valid() || h.Count(k) >= tilemapping.CopiesPerKind {
		return 0, false
	}
	return t.zobrist.AddTile(key, k, h.Count(k)), true
}

// KeyAfterTake returns the key of h minus one k, given key, the key of h.
// It reports false if h holds no k.
func (t *Table[V]) KeyAfterTake(key uint64, h *tilemapping.Hand, k tilemapping.TileKind) (uint64, bool) {
	if !h.Has(k) {
		return 0, false
	}
	return t.zobrist.RemoveTile(key, k, h.Count(k)), true
}

// Get returns the stored value for h, if any.
func (t *Table[V]) Get(h *tilemapping.Hand) (V, bool) {
	if h.Validate() != nil {
		var zero V
		return zero, false
	}
	return t.GetKeyed(t.Key(h), h)
}

// GetKeyed is Get for a hand whose key the caller already has.
func (t *Table[V]) GetKeyed(key uint64, h *tilemapping.Hand) (V, bool) {
	var zero V
	t.lookups.Add(1)
	t.Lock()
	defer t.Unlock()
	e := &t.table[key&t.sizeMask]
	if !e.valid || e.key != key || e.hand != *h {
		return zero, false
	}
	t.hits.Add(1)
	return e.value, true
}

// Put stores v for h. Invalid hands are never stored.
func (t *Table[V]) Put(h *tilemapping.Hand, v V) {
	if h.Validate() != nil {
		return
	}
	t.PutKeyed(t.Key(h), h, v)
}

// PutKeyed is Put for a hand whose key the caller already has.
func (t *Table[V]) PutKeyed(key uint64, h *tilemapping.Hand, v V) {
	if h.Validate() != nil {
		return
	}
	t.Lock()
	defer t.Unlock()
	// just overwrite whatever is there for now.
	t.table[key&t.sizeMask] = entry[V]{key: key, hand: *h, value: v, valid: true}
	t.created.Add(1)
}

func (t *Table[V]) Stats() Stats {
	t.Lock()
	size := len(t.table)
	t.Unlock()
	return Stats{
		Size:    size,
		Lookups: t.lookups.Load(),
		Hits:    t.hits.Load(),
		Created: t.created.Load(),
	}
}
