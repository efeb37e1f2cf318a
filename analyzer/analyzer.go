// Package analyzer is the entry point most callers want: it validates
// input and wires the decomposer, scorer, classifier and draw analysis
// together from a config.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/valarxu/mahjong-practice/cache"
	"github.com/valarxu/mahjong-practice/config"
	"github.com/valarxu/mahjong-practice/decompose"
	"github.com/valarxu/mahjong-practice/discard"
	"github.com/valarxu/mahjong-practice/drawanalysis"
	"github.com/valarxu/mahjong-practice/progress"
	"github.com/valarxu/mahjong-practice/tilemapping"
)

// ErrEmptyHand is returned when an operation needs at least one tile.
var ErrEmptyHand = errors.New("empty hand")

type Analyzer struct {
	config     *config.Config
	decomposer *decompose.Decomposer
	scorer     *progress.GroupWeighted
	classifier *discard.Classifier
	draws      *drawanalysis.Analyzer
}

// NewAnalyzer builds an analyzer from cfg: threads, cache-enabled,
// cache-memory-fraction and draw-sort are read once, here.
func NewAnalyzer(cfg *config.Config) (*Analyzer, error) {
	order, err := drawanalysis.ParseSortOrder(cfg.GetString(config.ConfigDrawSort))
	if err != nil {
		return nil, err
	}
	var table *cache.Table[decompose.Decomposition]
	if cfg.GetBool(config.ConfigCacheEnabled) {
		table = cache.NewTable[decompose.Decomposition](cfg.GetFloat64(config.ConfigCacheMemoryFraction))
	}
	dc := decompose.NewDecomposer(table)

	an := &Analyzer{
		config:     cfg,
		decomposer: dc,
		scorer:     progress.NewGroupWeighted(dc),
		classifier: discard.NewClassifier(dc),
		draws:      drawanalysis.NewAnalyzer(dc),
	}
	an.draws.SetThreads(cfg.GetInt(config.ConfigThreads))
	an.draws.SetSortOrder(order)
	return an, nil
}

func (an *Analyzer) Config() *config.Config {
	return an.config
}

// SetSortOrder changes the order of improving draws for later analyses.
func (an *Analyzer) SetSortOrder(o drawanalysis.SortOrder) {
	an.draws.SetSortOrder(o)
}

// SetThreads changes the draw simulation fan-out for later analyses.
func (an *Analyzer) SetThreads(t int) {
	an.draws.SetThreads(t)
}

// CacheStats returns the memo table counters, or false if caching is off.
func (an *Analyzer) CacheStats() (cache.Stats, bool) {
	t := an.decomposer.Table()
	if t == nil {
		return cache.Stats{}, false
	}
	return t.Stats(), true
}

// Decompose splits a valid hand into groups.
func (an *Analyzer) Decompose(h tilemapping.Hand) (decompose.Decomposition, error) {
	if err := h.Validate(); err != nil {
		return decompose.Decomposition{}, err
	}
	return an.decomposer.Decompose(h), nil
}

// Score returns the progress score of a valid hand.
func (an *Analyzer) Score(h tilemapping.Hand) (int, error) {
	if err := h.Validate(); err != nil {
		return 0, err
	}
	return an.scorer.Score(h), nil
}

func (an *Analyzer) ScoreDecomposition(d decompose.Decomposition) int {
	return progress.ScoreDecomposition(d)
}

// ClassifyDiscard judges discarding k, which h must hold.
func (an *Analyzer) ClassifyDiscard(h tilemapping.Hand, k tilemapping.TileKind) (discard.Verdict, error) {
	if err := h.Validate(); err != nil {
		return discard.Verdict{}, err
	}
	if !h.Has(k) {
		return discard.Verdict{}, fmt.Errorf("%w: %v", tilemapping.ErrTileNotInHand, k)
	}
	return an.classifier.Classify(h, k), nil
}

// AnalyzeDraws classifies discarding k and, for a good discard, lists the
// improving draws.
func (an *Analyzer) AnalyzeDraws(ctx context.Context, h tilemapping.Hand,
	discards, exposed []tilemapping.TileKind, k tilemapping.TileKind) (*drawanalysis.Result, error) {

	return an.draws.Analyze(ctx, drawanalysis.Request{
		Hand:      h,
		Discards:  discards,
		Exposed:   exposed,
		Candidate: k,
	})
}

// DiscardOption is the analysis of one possible discard.
type DiscardOption struct {
	Kind   tilemapping.TileKind
	Result *drawanalysis.Result
}

// RankDiscards analyzes every distinct kind in the hand as the discard.
// Good discards come first, then those leaving the most improving tiles
// unseen, then those with the most improving kinds; ties go in tile order.
func (an *Analyzer) RankDiscards(ctx context.Context, h tilemapping.Hand,
	discards, exposed []tilemapping.TileKind) ([]DiscardOption, error) {

	if err := h.Validate(); err != nil {
		return nil, err
	}
	if h.Empty() {
		return nil, ErrEmptyHand
	}
	opts := make([]DiscardOption, 0, len(h.Kinds()))
	for _, k := range h.Kinds() {
		res, err := an.AnalyzeDraws(ctx, h, discards, exposed, k)
		if err != nil {
			return nil, err
		}
		opts = append(opts, DiscardOption{Kind: k, Result: res})
	}
	sort.SliceStable(opts, func(i, j int) bool {
		a, b := opts[i].Result, opts[j].Result
		if a.Verdict.IsBad != b.Verdict.IsBad {
			return !a.Verdict.IsBad
		}
		if a.EffectiveSupply() != b.EffectiveSupply() {
			return a.EffectiveSupply() > b.EffectiveSupply()
		}
		if a.ImprovingKinds() != b.ImprovingKinds() {
			return a.ImprovingKinds() > b.ImprovingKinds()
		}
		return opts[i].Kind < opts[j].Kind
	})
	log.Debug().Int("options", len(opts)).
		Int("bad", lo.CountBy(opts, func(o DiscardOption) bool { return o.Result.Verdict.IsBad })).
		Msg("ranked-discards")
	return opts, nil
}
