package progress

import (
	"github.com/valarxu/mahjong-practice/tilemapping"
)

// Values used by TileScore.
const (
	tripletValue  = 3
	sequenceValue = 2
	pairValue     = 1
)

// TileScore is an older scoring rule kept for comparison. Starting at the
// lowest kind still held it tries a triplet, a pair, a sequence, or leaving
// one tile single, and keeps the best total. Proto-melds and singles are
// worth nothing and pairs are never capped, so its numbers cannot be
// compared with ScoreDecomposition. Nothing in draw analysis uses it.
func TileScore(h tilemapping.Hand) int {
	counts := h
	return tileScore(&counts, 0)
}

// TileScorer adapts TileScore to the Scorer interface.
type TileScorer struct{}

func (TileScorer) Score(h tilemapping.Hand) int {
	return TileScore(h)
}

func tileScore(counts *tilemapping.Hand, idx int) int {
	for idx < tilemapping.NumKinds && counts[idx] == 0 {
		idx++
	}
	if idx >= tilemapping.NumKinds {
		return 0
	}
	best := 0
	if counts[idx] >= 3 {
		counts[idx] -= 3
		best = max(best, tripletValue+tileScore(counts, idx))
		counts[idx] += 3
	}
	if counts[idx] >= 2 {
		counts[idx] -= 2
		best = max(best, pairValue+tileScore(counts, idx))
		counts[idx] += 2
	}
	if tilemapping.SequenceFrom(tilemapping.TileKind(idx)) &&
		counts[idx+1] > 0 && counts[idx+2] > 0 {

		counts[idx]--
		counts[idx+1]--
		counts[idx+2]--
		best = max(best, sequenceValue+tileScore(counts, idx))
		counts[idx]++
		counts[idx+1]++
		counts[idx+2]++
	}
	counts[idx]--
	best = max(best, tileScore(counts, idx))
	counts[idx]++
	return best
}
