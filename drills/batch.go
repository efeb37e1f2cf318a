package drills

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"

	"github.com/valarxu/mahjong-practice/analyzer"
	"github.com/valarxu/mahjong-practice/drawanalysis"
	"github.com/valarxu/mahjong-practice/tilemapping"
)

const histogramBins = 10

// PositionResult holds what happened to one position.
type PositionResult struct {
	ID       uint64
	Position Position
	// Err is set when the position could not be parsed or analyzed.
	Err error
	// Discard is the tile the statistics are about: the position's own
	// discard, or the top-ranked one.
	Discard  tilemapping.TileKind
	Analysis *drawanalysis.Result
	// Ranking is only filled for positions without a discard.
	Ranking []analyzer.DiscardOption
}

// Summary aggregates the successful positions.
type Summary struct {
	Positions   int
	Analyzed    int
	Failed      int
	Duplicates  int
	BadDiscards int

	MeanImprovingKinds   float64
	StdDevImprovingKinds float64
	MeanSupply           float64
	StdDevSupply         float64

	// SupplyHistogram buckets the effective supply of good discards.
	SupplyHistogram histogram.Histogram
}

// Batch is the result of running a drill file.
type Batch struct {
	Results []*PositionResult
	Summary Summary
	seen    map[uint64]bool
}

func NewBatch() *Batch {
	return &Batch{
		Results: make([]*PositionResult, 0),
		seen:    make(map[uint64]bool),
	}
}

// Run analyzes every distinct position in f. Positions that fail are
// recorded and skipped; only a done context stops the run.
func Run(ctx context.Context, an *analyzer.Analyzer, f *File) (*Batch, error) {
	b := NewBatch()
	for _, p := range f.Positions {
		if err := ctx.Err(); err != nil {
			return b, err
		}
		id := p.ID()
		b.Summary.Positions++
		if b.seen[id] {
			b.Summary.Duplicates++
			log.Debug().Str("position", p.String()).Msg("duplicate-position-skipped")
			continue
		}
		b.seen[id] = true

		res, err := runOne(ctx, an, p)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return b, err
		}
		res.ID = id
		res.Err = err
		b.AddResult(res)
	}
	b.CalculateStats()
	return b, nil
}

func runOne(ctx context.Context, an *analyzer.Analyzer, p Position) (*PositionResult, error) {
	res := &PositionResult{Position: p}
	req, err := p.Request().Parse()
	if err != nil {
		return res, err
	}
	if req.Rank {
		opts, err := an.RankDiscards(ctx, req.Hand, req.River, req.Exposed)
		if err != nil {
			return res, err
		}
		res.Ranking = opts
		res.Discard = opts[0].Kind
		res.Analysis = opts[0].Result
		return res, nil
	}
	res.Discard = req.Discard
	res.Analysis, err = an.AnalyzeDraws(ctx, req.Hand, req.River, req.Exposed, req.Discard)
	return res, err
}

func (b *Batch) AddResult(r *PositionResult) {
	b.Results = append(b.Results, r)
	if r.Err != nil {
		b.Summary.Failed++
		return
	}
	b.Summary.Analyzed++
	if r.Analysis.Verdict.IsBad {
		b.Summary.BadDiscards++
	}
}

// CalculateStats fills in the distribution fields of the summary from the
// good discards.
func (b *Batch) CalculateStats() {
	good := lo.Filter(b.Results, func(r *PositionResult, _ int) bool {
		return r.Err == nil && !r.Analysis.Verdict.IsBad
	})
	kinds := lo.Map(good, func(r *PositionResult, _ int) float64 {
		return float64(r.Analysis.ImprovingKinds())
	})
	supply := lo.Map(good, func(r *PositionResult, _ int) float64 {
		return float64(r.Analysis.EffectiveSupply())
	})
	b.Summary.MeanImprovingKinds, b.Summary.StdDevImprovingKinds = meanStdDev(kinds)
	b.Summary.MeanSupply, b.Summary.StdDevSupply = meanStdDev(supply)
	if len(supply) > 0 {
		b.Summary.SupplyHistogram = histogram.Hist(histogramBins, supply)
	}
}

func meanStdDev(xs []float64) (float64, float64) {
	switch len(xs) {
	case 0:
		return 0, 0
	case 1:
		return xs[0], 0
	}
	mean, std := stat.MeanStdDev(xs, nil)
	if math.IsNaN(std) {
		std = 0
	}
	return mean, std
}

// Fprint writes a human-readable report.
func (b *Batch) Fprint(w io.Writer) error {
	for _, r := range b.Results {
		switch {
		case r.Err != nil:
			fmt.Fprintf(w, "%-24s error: %v\n", r.Position.String(), r.Err)
		case r.Analysis.Verdict.IsBad:
			fmt.Fprintf(w, "%-24s discard %-3v %s\n", r.Position.String(), r.Discard,
				r.Analysis.Verdict.Reason.Description())
		default:
			fmt.Fprintf(w, "%-24s discard %-3v %2d kinds, %3d tiles\n", r.Position.String(), r.Discard,
				r.Analysis.ImprovingKinds(), r.Analysis.EffectiveSupply())
		}
	}
	s := b.Summary
	fmt.Fprintf(w, "\npositions: %d  analyzed: %d  failed: %d  duplicates: %d  bad discards: %d\n",
		s.Positions, s.Analyzed, s.Failed, s.Duplicates, s.BadDiscards)
	fmt.Fprintf(w, "improving kinds: %.2f ± %.2f\n", s.MeanImprovingKinds, s.StdDevImprovingKinds)
	fmt.Fprintf(w, "effective supply: %.2f ± %.2f\n", s.MeanSupply, s.StdDevSupply)
	if s.SupplyHistogram.Count == 0 {
		return nil
	}
	fmt.Fprintln(w, "\neffective supply histogram:")
	return histogram.Fprint(w, s.SupplyHistogram, histogram.Linear(40))
}
