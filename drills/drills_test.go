package drills

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/matryer/is"

	"github.com/valarxu/mahjong-practice/analyzer"
	"github.com/valarxu/mahjong-practice/config"
	"github.com/valarxu/mahjong-practice/tilemapping"
)

func newTestAnalyzer(t *testing.T) *analyzer.Analyzer {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Set(config.ConfigCacheMemoryFraction, 0.0)
	an, err := analyzer.NewAnalyzer(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return an
}

func TestLoad(t *testing.T) {
	is := is.New(t)
	f, err := LoadFile("testdata/basic.yaml")
	is.NoErr(err)
	is.Equal(len(f.Positions), 5)
	is.Equal(f.Positions[0].Name, "isolated terminal")
	is.Equal(f.Positions[0].River, "33m 9p")
	is.Equal(f.Positions[2].Discard, "")
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	is := is.New(t)
	_, err := Load(strings.NewReader("positions:\n  - hand: 123m\n    wall: 5z\n"))
	is.True(err != nil)
}

func TestLoadEmpty(t *testing.T) {
	is := is.New(t)
	f, err := Load(strings.NewReader(""))
	is.NoErr(err)
	is.Equal(len(f.Positions), 0)
}

func TestIDIgnoresOrderAndName(t *testing.T) {
	is := is.New(t)
	a := Position{Name: "a", Hand: "123m11z", River: "9p 33m", Discard: "1m"}
	b := Position{Name: "b", Hand: "11z321m", River: "33m9p", Discard: "1m"}
	c := Position{Name: "a", Hand: "123m11z", River: "9p 33m", Discard: "2m"}
	is.Equal(a.ID(), b.ID())
	is.True(a.ID() != c.ID())
	is.Equal(Position{Hand: "123m"}.String(), Position{Hand: "1m2m3m"}.String())
}

func TestRun(t *testing.T) {
	is := is.New(t)
	f, err := LoadFile("testdata/basic.yaml")
	is.NoErr(err)

	b, err := Run(context.Background(), newTestAnalyzer(t), f)
	is.NoErr(err)

	s := b.Summary
	is.Equal(s.Positions, 5)
	is.Equal(s.Duplicates, 1)
	is.Equal(s.Analyzed, 3)
	is.Equal(s.Failed, 1)
	is.Equal(s.BadDiscards, 1)
	is.Equal(len(b.Results), 4)

	is.Equal(b.Results[0].Discard, tilemapping.TileKind(8))
	is.True(!b.Results[0].Analysis.Verdict.IsBad)
	is.True(b.Results[1].Analysis.Verdict.IsBad)
	is.True(len(b.Results[2].Ranking) > 0)
	is.Equal(b.Results[2].Discard, b.Results[2].Ranking[0].Kind)
	is.True(b.Results[3].Err != nil)

	is.True(s.MeanSupply > 0)
	is.True(s.StdDevSupply >= 0)
	is.Equal(s.SupplyHistogram.Count, 2)

	var out bytes.Buffer
	is.NoErr(b.Fprint(&out))
	is.True(strings.Contains(out.String(), "effective supply histogram"))
	is.True(strings.Contains(out.String(), "breaks a sequence"))
}

func TestRunCanceled(t *testing.T) {
	is := is.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := &File{Positions: []Position{{Hand: "123m", Discard: "1m"}}}
	_, err := Run(ctx, newTestAnalyzer(t), f)
	is.Equal(err, context.Canceled)
}

func TestMeanStdDev(t *testing.T) {
	is := is.New(t)
	m, s := meanStdDev(nil)
	is.Equal(m, 0.0)
	is.Equal(s, 0.0)
	m, s = meanStdDev([]float64{7})
	is.Equal(m, 7.0)
	is.Equal(s, 0.0)
	m, _ = meanStdDev([]float64{2, 4})
	is.Equal(m, 3.0)
}
