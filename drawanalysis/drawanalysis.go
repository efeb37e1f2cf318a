// Package drawanalysis answers: after discarding a tile, which draws would
// improve the hand, by how much, and how many of each are still unseen?
package drawanalysis

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/valarxu/mahjong-practice/decompose"
	"github.com/valarxu/mahjong-practice/discard"
	"github.com/valarxu/mahjong-practice/progress"
	"github.com/valarxu/mahjong-practice/tilemapping"
)

// SortOrder controls the order of Result.Entries.
type SortOrder int

const (
	// ByKind lists improving draws in tile order, suit by suit.
	ByKind SortOrder = iota
	// ByDelta lists the biggest improvements first, ties in tile order.
	ByDelta
)

func (o SortOrder) String() string {
	if o == ByDelta {
		return "delta"
	}
	return "kind"
}

// ParseSortOrder accepts "kind" (or "tile") and "delta".
func ParseSortOrder(s string) (SortOrder, error) {
	switch s {
	case "", "kind", "tile":
		return ByKind, nil
	case "delta":
		return ByDelta, nil
	}
	return ByKind, fmt.Errorf("unknown draw sort order %q", s)
}

// Request describes one analysis: the pre-discard hand, what is visible on
// the table, and the tile the player intends to discard.
type Request struct {
	Hand      tilemapping.Hand
	Discards  []tilemapping.TileKind
	Exposed   []tilemapping.TileKind
	Candidate tilemapping.TileKind
}

// Entry is one improving draw.
type Entry struct {
	Kind tilemapping.TileKind
	// Remaining is how many copies are still unseen; always positive.
	Remaining int
	// Delta is the score gain over the post-discard baseline; always positive.
	Delta int
	// Score is the score of the hand after the draw.
	Score int
}

// Result of an analysis. Entries is empty whenever Verdict.IsBad.
type Result struct {
	Verdict discard.Verdict
	// Baseline is the score of the hand after the discard. It is zero for a
	// bad discard, which is never simulated.
	Baseline int
	Entries  []Entry
}

// ImprovingKinds returns how many distinct draws improve the hand.
func (r *Result) ImprovingKinds() int {
	return len(r.Entries)
}

// EffectiveSupply returns how many unseen tiles would improve the hand.
func (r *Result) EffectiveSupply() int {
	n := 0
	for _, e := range r.Entries {
		n += e.Remaining
	}
	return n
}

// keyedScorer is a scorer backed by a memo table. Simulated hands differ
// from the post-discard hand by one tile, so their keys are derived from
// its key instead of hashed from scratch.
type keyedScorer interface {
	progress.Scorer
	Key(h tilemapping.Hand) (uint64, bool)
	KeyWithDraw(key uint64, h tilemapping.Hand, k tilemapping.TileKind) (uint64, bool)
	KeyWithDiscard(key uint64, h tilemapping.Hand, k tilemapping.TileKind) (uint64, bool)
	ScoreKeyed(h tilemapping.Hand, key uint64) int
}

// drawScorer scores after plus one drawn tile.
type drawScorer struct {
	scorer progress.Scorer
	keyed  keyedScorer // nil when after has no key
	after  tilemapping.Hand
	key    uint64
}

func (ds *drawScorer) baseline() int {
	if ds.keyed != nil {
		return ds.keyed.ScoreKeyed(ds.after, ds.key)
	}
	return ds.scorer.Score(ds.after)
}

func (ds *drawScorer) score(k tilemapping.TileKind) int {
	drawn := ds.after
	drawn.Add(k)
	if ds.keyed != nil {
		if key, ok := ds.keyed.KeyWithDraw(ds.key, ds.after, k); ok {
			return ds.keyed.ScoreKeyed(drawn, key)
		}
	}
	return ds.scorer.Score(drawn)
}

// newDrawScorer prepares scoring for h minus the candidate.
func (a *Analyzer) newDrawScorer(h tilemapping.Hand, candidate tilemapping.TileKind) *drawScorer {
	ds := &drawScorer{scorer: a.scorer, after: h}
	// the caller has checked that h holds the candidate.
	_ = ds.after.Take(candidate)
	ks, ok := a.scorer.(keyedScorer)
	if !ok {
		return ds
	}
	handKey, ok := ks.Key(h)
	if !ok {
		return ds
	}
	if ds.key, ok = ks.KeyWithDiscard(handKey, h, candidate); ok {
		ds.keyed = ks
	}
	return ds
}

// Analyzer runs draw analyses. It is safe for concurrent use as long as its
// scorer is.
type Analyzer struct {
	scorer     progress.Scorer
	classifier *discard.Classifier
	threads    int
	order      SortOrder
}

// NewAnalyzer builds an analyzer whose classifier and scorer share dc.
func NewAnalyzer(dc *decompose.Decomposer) *Analyzer {
	return &Analyzer{
		scorer:     progress.NewGroupWeighted(dc),
		classifier: discard.NewClassifier(dc),
		threads:    1,
	}
}

// SetThreads sets how many simulations may run at once. Values below 1
// mean 1.
func (a *Analyzer) SetThreads(t int) {
	a.threads = max(t, 1)
}

func (a *Analyzer) Threads() int {
	return a.threads
}

func (a *Analyzer) SetSortOrder(o SortOrder) {
	a.order = o
}

func (a *Analyzer) SortOrder() SortOrder {
	return a.order
}

// Analyze classifies the discard and, if it is not bad, tries every kind
// with unseen copies as the next draw. It fails if the hand is invalid, the
// candidate is not in it, or ctx is done before all draws are tried.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (*Result, error) {
	if err := req.Hand.Validate(); err != nil {
		return nil, err
	}
	for _, visible := range [][]tilemapping.TileKind{req.Discards, req.Exposed} {
		if _, err := tilemapping.VisibleCounts(visible); err != nil {
			return nil, err
		}
	}
	if !req.Hand.Has(req.Candidate) {
		return nil, fmt.Errorf("%w: %v", tilemapping.ErrTileNotInHand, req.Candidate)
	}

	res := &Result{
		Verdict: a.classifier.Classify(req.Hand, req.Candidate),
		Entries: []Entry{},
	}
	if res.Verdict.IsBad {
		log.Debug().Stringer("candidate", req.Candidate).
			Stringer("reason", res.Verdict.Reason).Msg("bad-discard")
		return res, nil
	}

	ds := a.newDrawScorer(req.Hand, req.Candidate)
	res.Baseline = ds.baseline()
	supply := tilemapping.RemainingSupply(ds.after, req.Discards, req.Exposed)

	slots, err := a.simulate(ctx, ds, res.Baseline, supply)
	if err != nil {
		return nil, err
	}
	for _, e := range slots {
		if e.Delta > 0 {
			res.Entries = append(res.Entries, e)
		}
	}
	a.sortEntries(res.Entries)

	log.Debug().Stringer("candidate", req.Candidate).
		Int("baseline", res.Baseline).
		Int("improving-kinds", res.ImprovingKinds()).
		Int("effective-supply", res.EffectiveSupply()).
		Int("threads", a.threads).
		Msg("draw-analysis-done")
	return res, nil
}

// simulate scores the post-discard hand plus k for every kind with unseen
// copies. Each kind writes only its own slot, so the outcome does not
// depend on scheduling.
func (a *Analyzer) simulate(ctx context.Context, ds *drawScorer, baseline int,
	supply tilemapping.Supply) ([tilemapping.NumKinds]Entry, error) {

	var slots [tilemapping.NumKinds]Entry
	try := func(k tilemapping.TileKind) {
		score := ds.score(k)
		slots[k] = Entry{Kind: k, Remaining: supply[k], Delta: score - baseline, Score: score}
	}

	if a.threads <= 1 {
		for k := range tilemapping.NumKinds {
			if err := ctx.Err(); err != nil {
				return slots, err
			}
			if supply[k] > 0 {
				try(tilemapping.TileKind(k))
			}
		}
		return slots, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.threads)
	for k := range tilemapping.NumKinds {
		if supply[k] == 0 {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			try(tilemapping.TileKind(k))
			return nil
		})
	}
	err := g.Wait()
	return slots, err
}

func (a *Analyzer) sortEntries(es []Entry) {
	switch a.order {
	case ByDelta:
		sort.SliceStable(es, func(i, j int) bool {
			if es[i].Delta != es[j].Delta {
				return es[i].Delta > es[j].Delta
			}
			return es[i].Kind < es[j].Kind
		})
	default:
		sort.Slice(es, func(i, j int) bool { return es[i].Kind < es[j].Kind })
	}
}
