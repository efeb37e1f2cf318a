// Package progress turns a hand into a single number describing how close
// it is to a complete winning shape.
package progress

import (
	"github.com/samber/lo"

	"github.com/valarxu/mahjong-practice/decompose"
	"github.com/valarxu/mahjong-practice/tilemapping"
)

// Weights of the canonical formula.
const (
	MeldWeight      = 10
	PairWeight      = 5
	ProtoMeldWeight = 2
	SingleWeight    = -1
)

// Scorer scores a hand. Higher is closer to a win.
type Scorer interface {
	Score(h tilemapping.Hand) int
}

// ScoreDecomposition applies the canonical formula
//
//	10*melds + 5*min(pairs, 1) + 2*protoMelds - singles
//
// Only one pair counts toward a winning shape; extra pairs add nothing.
func ScoreDecomposition(d decompose.Decomposition) int {
	counts := lo.CountValuesBy(d.Groups, func(g decompose.Group) decompose.GroupType {
		return g.Type
	})
	melds := counts[decompose.Triplet] + counts[decompose.Sequence]
	protos := counts[decompose.TwoSided] + counts[decompose.Closed] + counts[decompose.Edge]
	return MeldWeight*melds +
		PairWeight*min(counts[decompose.Pair], 1) +
		ProtoMeldWeight*protos +
		SingleWeight*counts[decompose.Single]
}

// GroupWeighted decomposes a hand and applies ScoreDecomposition. It is the
// scorer draw analysis uses.
type GroupWeighted struct {
	decomposer *decompose.Decomposer
}

// NewGroupWeighted returns a scorer that decomposes through dc. A nil dc
// decomposes without memoization.
func NewGroupWeighted(dc *decompose.Decomposer) *GroupWeighted {
	return &GroupWeighted{decomposer: dc}
}

func (gw *GroupWeighted) Score(h tilemapping.Hand) int {
	return ScoreDecomposition(gw.decomposer.Decompose(h))
}

// ScoreKeyed scores a hand whose memo key is already known.
func (gw *GroupWeighted) ScoreKeyed(h tilemapping.Hand, key uint64) int {
	return ScoreDecomposition(gw.decomposer.DecomposeKeyed(h, key))
}

func (gw *GroupWeighted) Key(h tilemapping.Hand) (uint64, bool) {
	return gw.decomposer.Key(h)
}

func (gw *GroupWeighted) KeyWithDraw(key uint64, h tilemapping.Hand, k tilemapping.TileKind) (uint64, bool) {
	return gw.decomposer.KeyWithDraw(key, h, k)
}

func (gw *GroupWeighted) KeyWithDiscard(key uint64, h tilemapping.Hand, k tilemapping.TileKind) (uint64, bool) {
	return gw.decomposer.KeyWithDiscard(key, h, k)
}

// Decomposer returns the decomposer this scorer runs on.
func (gw *GroupWeighted) Decomposer() *decompose.Decomposer {
	return gw.decomposer
}
