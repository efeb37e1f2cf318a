// Package discard flags discards that tear apart structure a hand already
// has.
package discard

import (
	"github.com/valarxu/mahjong-practice/decompose"
	"github.com/valarxu/mahjong-practice/tilemapping"
)

// Reason says why a discard is bad. Rules are checked in declaration order
// and the first that applies wins.
type Reason uint8

const (
	NoBad Reason = iota
	BreaksSequence
	BreaksTripletWithPairPresent
	BreaksOnlyPair
)

func (r Reason) String() string {
	switch r {
	case NoBad:
		return "no-bad"
	case BreaksSequence:
		return "breaks-sequence"
	case BreaksTripletWithPairPresent:
		return "breaks-triplet-with-pair-present"
	case BreaksOnlyPair:
		return "breaks-only-pair"
	}
	return "unknown"
}

// Description is the message shown to a player.
func (r Reason) Description() string {
	switch r {
	case BreaksSequence:
		return "bad discard: breaks a sequence"
	case BreaksTripletWithPairPresent:
		return "bad discard: breaks a triplet while a pair is already held"
	case BreaksOnlyPair:
		return "bad discard: breaks the only pair"
	}
	return ""
}

// Verdict is the outcome of classifying one candidate discard. IsBad is
// true exactly when Reason is not NoBad.
type Verdict struct {
	IsBad  bool
	Reason Reason
}

func verdict(r Reason) Verdict {
	return Verdict{IsBad: r != NoBad, Reason: r}
}

// Classify judges discarding kind k from the hand d decomposes. Membership
// is by kind: if any tile of kind k sits in a sequence, discarding k breaks
// that sequence, even when another copy of k is held elsewhere.
func Classify(d decompose.Decomposition, k tilemapping.TileKind) Verdict {
	if len(d.GroupsContaining(k, decompose.Sequence)) > 0 {
		return verdict(BreaksSequence)
	}
	pairs := d.Pairs()
	if pairs > 0 && len(d.GroupsContaining(k, decompose.Triplet)) > 0 {
		return verdict(BreaksTripletWithPairPresent)
	}
	if pairs == 1 && len(d.GroupsContaining(k, decompose.Pair)) > 0 {
		return verdict(BreaksOnlyPair)
	}
	return verdict(NoBad)
}

// Classifier decomposes the pre-discard hand and then applies Classify.
type Classifier struct {
	decomposer *decompose.Decomposer
}

func NewClassifier(dc *decompose.Decomposer) *Classifier {
	return &Classifier{decomposer: dc}
}

// Classify judges discarding k from h. Whether h actually holds k is the
// caller's concern; a kind the hand lacks is never in any group, so it is
// never bad.
func (c *Classifier) Classify(h tilemapping.Hand, k tilemapping.TileKind) Verdict {
	return Classify(c.decomposer.Decompose(h), k)
}
