package zobrist

import (
	"lukechampine.com/frand"

	"github.com/valarxu/mahjong-practice/tilemapping"
)

const bignum = 1<<63 - 2

// generate a zobrist hash for a hand of tiles.
// https://en.wikipedia.org/wiki/Zobrist_hashing
// Every (kind, count) pair gets its own random key, and a hand hashes to the
// XOR of the keys for its counts. A zero count contributes a key too, so the
// empty hand does not hash to 0.
type Zobrist struct {
	countTable [tilemapping.NumKinds][tilemapping.CopiesPerKind + 1]uint64
}

// New returns a Zobrist table seeded from a CSPRNG.
func New() *Zobrist {
	z := &Zobrist{}
	z.Initialize()
	return z
}

func (z *Zobrist) Initialize() {
	for i := range z.countTable {
		for j := range z.countTable[i] {
			z.countTable[i][j] = frand.Uint64n(bignum) + 1
		}
	}
}

// Hash returns the key for h. The hand must be valid (no count above
// CopiesPerKind).
func (z *Zobrist) Hash(h *tilemapping.Hand) uint64 {
	key := uint64(0)
	for i, ct := range h {
		key ^= z.countTable[i][ct]
	}
	return key
}

// AddTile updates key for one more copy of k, given the count of k before
// the addition.
func (z *Zobrist) AddTile(key uint64, k tilemapping.TileKind, before int) uint64 {
	return key ^ z.countTable[k][before] ^ z.countTable[k][before+1]
}

// RemoveTile is the inverse of AddTile.
func (z *Zobrist) RemoveTile(key uint64, k tilemapping.TileKind, before int) uint64 {
	return key ^ z.countTable[k][before] ^ z.countTable[k][before-1]
}
