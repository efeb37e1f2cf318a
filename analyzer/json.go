package analyzer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/samber/lo"

	"github.com/valarxu/mahjong-practice/decompose"
	"github.com/valarxu/mahjong-practice/drawanalysis"
	"github.com/valarxu/mahjong-practice/progress"
	"github.com/valarxu/mahjong-practice/tilemapping"
)

// SampleJSON is a request that exercises every field.
var SampleJSON = []byte(`{
"hand": "123m456s789p11z259m",
"river": "33m 9p",
"exposed": "",
"discard": "9m"
}`)

// JSONRequest is what the bot, lambda and one-shot CLI accept. An empty
// Discard asks for every discard to be ranked.
type JSONRequest struct {
	Hand    string `json:"hand"`
	River   string `json:"river,omitempty"`
	Exposed string `json:"exposed,omitempty"`
	Discard string `json:"discard,omitempty"`
}

type JSONGroup struct {
	Type  string `json:"type"`
	Tiles string `json:"tiles"`
	Kinds []int  `json:"kinds"`
}

type JSONDecomposition struct {
	Hand       string      `json:"hand"`
	Groups     []JSONGroup `json:"groups"`
	Used       int         `json:"used"`
	Total      int         `json:"total"`
	Melds      int         `json:"melds"`
	Pairs      int         `json:"pairs"`
	ProtoMelds int         `json:"protoMelds"`
	Singles    int         `json:"singles"`
	Score      int         `json:"score"`
}

type JSONDraw struct {
	Tile      string `json:"tile"`
	Kind      int    `json:"kind"`
	Remaining int    `json:"remaining"`
	Delta     int    `json:"delta"`
	Score     int    `json:"score"`
}

type JSONAnalysis struct {
	Hand            string     `json:"hand"`
	Discard         string     `json:"discard"`
	Bad             bool       `json:"bad"`
	Reason          string     `json:"reason"`
	Description     string     `json:"description,omitempty"`
	Baseline        int        `json:"baseline"`
	Draws           []JSONDraw `json:"draws"`
	ImprovingKinds  int        `json:"improvingKinds"`
	EffectiveSupply int        `json:"effectiveSupply"`
}

// JSONDiscard is one line of a discard ranking.
type JSONDiscard struct {
	Rank int `json:"rank"`
	JSONAnalysis
}

func MakeJSONDecomposition(h tilemapping.Hand, d decompose.Decomposition) JSONDecomposition {
	return JSONDecomposition{
		Hand: h.String(),
		Groups: lo.Map(d.Groups, func(g decompose.Group, _ int) JSONGroup {
			return JSONGroup{
				Type:  g.Type.String(),
				Tiles: tilemapping.FormatTiles(g.Tiles),
				Kinds: lo.Map(g.Tiles, func(k tilemapping.TileKind, _ int) int { return int(k) }),
			}
		}),
		Used:       d.Used,
		Total:      d.Total,
		Melds:      d.Melds(),
		Pairs:      d.Pairs(),
		ProtoMelds: d.ProtoMelds(),
		Singles:    d.Singles(),
		Score:      progress.ScoreDecomposition(d),
	}
}

func MakeJSONAnalysis(h tilemapping.Hand, k tilemapping.TileKind, r *drawanalysis.Result) JSONAnalysis {
	return JSONAnalysis{
		Hand:        h.String(),
		Discard:     k.String(),
		Bad:         r.Verdict.IsBad,
		Reason:      r.Verdict.Reason.String(),
		Description: r.Verdict.Reason.Description(),
		Baseline:    r.Baseline,
		Draws: lo.Map(r.Entries, func(e drawanalysis.Entry, _ int) JSONDraw {
			return JSONDraw{
				Tile:      e.Kind.String(),
				Kind:      int(e.Kind),
				Remaining: e.Remaining,
				Delta:     e.Delta,
				Score:     e.Score,
			}
		}),
		ImprovingKinds:  r.ImprovingKinds(),
		EffectiveSupply: r.EffectiveSupply(),
	}
}

func MakeJSONDiscards(h tilemapping.Hand, opts []DiscardOption) []JSONDiscard {
	return lo.Map(opts, func(o DiscardOption, i int) JSONDiscard {
		return JSONDiscard{Rank: i + 1, JSONAnalysis: MakeJSONAnalysis(h, o.Kind, o.Result)}
	})
}

// ParsedRequest is a JSONRequest turned into tiles.
type ParsedRequest struct {
	Hand    tilemapping.Hand
	River   []tilemapping.TileKind
	Exposed []tilemapping.TileKind
	Discard tilemapping.TileKind
	Rank    bool
}

// Parse validates the request's notation.
func (r JSONRequest) Parse() (ParsedRequest, error) {
	var p ParsedRequest
	var err error
	if p.Hand, err = tilemapping.HandFromString(r.Hand); err != nil {
		return p, fmt.Errorf("hand: %w", err)
	}
	if p.River, err = tilemapping.ParseTiles(r.River); err != nil {
		return p, fmt.Errorf("river: %w", err)
	}
	if p.Exposed, err = tilemapping.ParseTiles(r.Exposed); err != nil {
		return p, fmt.Errorf("exposed: %w", err)
	}
	if r.Discard == "" {
		p.Rank = true
		return p, nil
	}
	if p.Discard, err = tilemapping.ParseTile(r.Discard); err != nil {
		return p, fmt.Errorf("discard: %w", err)
	}
	return p, nil
}

// AnalyzeJSON answers one JSONRequest: a JSONAnalysis when a discard is
// given, otherwise a ranked []JSONDiscard.
func (an *Analyzer) AnalyzeJSON(ctx context.Context, req []byte) ([]byte, error) {
	var r JSONRequest
	if err := json.Unmarshal(req, &r); err != nil {
		return nil, err
	}
	p, err := r.Parse()
	if err != nil {
		return nil, err
	}
	if p.Rank {
		opts, err := an.RankDiscards(ctx, p.Hand, p.River, p.Exposed)
		if err != nil {
			return nil, err
		}
		return json.Marshal(MakeJSONDiscards(p.Hand, opts))
	}
	res, err := an.AnalyzeDraws(ctx, p.Hand, p.River, p.Exposed, p.Discard)
	if err != nil {
		return nil, err
	}
	return json.Marshal(MakeJSONAnalysis(p.Hand, p.Discard, res))
}

// RunTest analyzes SampleJSON and prints the result.
func (an *Analyzer) RunTest(ctx context.Context) error {
	out, err := an.AnalyzeJSON(ctx, SampleJSON)
	if err != nil {
		return err
	}
	var a JSONAnalysis
	if err := json.Unmarshal(out, &a); err != nil {
		return err
	}
	fmt.Printf("%s  discard %s  baseline %d\n", a.Hand, a.Discard, a.Baseline)
	for _, d := range a.Draws {
		fmt.Printf("%-4s %d left  %+d\n", d.Tile, d.Remaining, d.Delta)
	}
	return nil
}
