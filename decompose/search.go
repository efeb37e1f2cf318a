package decompose

import (
	"github.com/valarxu/mahjong-practice/tilemapping"
)

// Candidates are numbered in the order the search tries them: the 21 legal
// sequences (suit by suit, lowest start first), then a triplet of each kind,
// then a pair of each kind.
const (
	numSequenceStarts = 3 * (tilemapping.SuitSize - 2)
	tripletBase       = numSequenceStarts
	pairBase          = tripletBase + tilemapping.NumKinds
	numCandidates     = pairBase + tilemapping.NumKinds
)

func sequenceStart(c int) tilemapping.TileKind {
	suit := c / (tilemapping.SuitSize - 2)
	return tilemapping.TileKind(suit*tilemapping.SuitSize + c%(tilemapping.SuitSize-2))
}

// candidateGroup builds the group a candidate number stands for.
func candidateGroup(c int) Group {
	switch {
	case c < tripletBase:
		k := sequenceStart(c)
		return newGroup(Sequence, k, k+1, k+2)
	case c < pairBase:
		k := tilemapping.TileKind(c - tripletBase)
		return newGroup(Triplet, k, k, k)
	}
	k := tilemapping.TileKind(c - pairBase)
	return newGroup(Pair, k, k)
}

// take removes candidate c from counts, reporting whether it was available.
func take(counts *tilemapping.Hand, c int) bool {
	switch {
	case c < tripletBase:
		k := sequenceStart(c)
		if counts[k] == 0 || counts[k+1] == 0 || counts[k+2] == 0 {
			return false
		}
		counts[k]--
		counts[k+1]--
		counts[k+2]--
	case c < pairBase:
		k := c - tripletBase
		if counts[k] < 3 {
			return false
		}
		counts[k] -= 3
	default:
		k := c - pairBase
		if counts[k] < 2 {
			return false
		}
		counts[k] -= 2
	}
	return true
}

// meldSearch looks for the assignment of sequences, triplets and pairs with
// the most melds, breaking ties by the most pairs. Only strictly better
// assignments replace the incumbent, so the first one found at the maximum
// is kept.
//
// Assignments are built in non-decreasing candidate order. The unrestricted
// search (any candidate at any depth) visits assignments in lexicographic
// order and so settles on the lexicographically smallest optimal sequence
// of candidates; that sequence is itself sorted, so the restricted search
// reaches the same one first while never expanding a permutation twice.
type meldSearch struct {
	stack     []int
	best      []int
	bestMelds int
	bestPairs int
}

func (s *meldSearch) run(counts tilemapping.Hand) []int {
	s.search(counts, counts.NumTiles(), 0, 0, 0)
	return s.best
}

func (s *meldSearch) search(counts tilemapping.Hand, remaining, from, melds, pairs int) {
	if melds > s.bestMelds || (melds == s.bestMelds && pairs > s.bestPairs) {
		s.bestMelds, s.bestPairs = melds, pairs
		s.best = append(s.best[:0], s.stack...)
	}
	if !s.canImprove(remaining, melds, pairs) {
		return
	}
	for c := from; c < numCandidates; c++ {
		next := counts
		if !take(&next, c) {
			continue
		}
		s.stack = append(s.stack, c)
		if c < pairBase {
			s.search(next, remaining-3, c, melds+1, pairs)
		} else {
			s.search(next, remaining-2, c, melds, pairs+1)
		}
		s.stack = s.stack[:len(s.stack)-1]
	}
}

// canImprove bounds what the remaining tiles could still add. A subtree
// that can at best tie the incumbent is skipped; ties never replace it.
func (s *meldSearch) canImprove(remaining, melds, pairs int) bool {
	maxMelds := melds + remaining/3
	if maxMelds != s.bestMelds {
		return maxMelds > s.bestMelds
	}
	left := remaining - 3*(s.bestMelds-melds)
	return pairs+left/2 > s.bestPairs
}
