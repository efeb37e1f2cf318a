package shell

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/matryer/is"

	"github.com/valarxu/mahjong-practice/config"
	"github.com/valarxu/mahjong-practice/tilemapping"
)

func TestExtractFields(t *testing.T) {
	is := is.New(t)
	type testdata struct {
		line   string
		expCmd *shellcmd
		expErr error
	}
	cases := []testdata{
		{"", nil, errNoData},
		{"draws 9m -json true",
			&shellcmd{"draws", []string{"9m"}, CmdOptions{"json": {"true"}}},
			nil},
		{"hand 123m 456s",
			&shellcmd{"hand", []string{"123m", "456s"}, CmdOptions{}},
			nil},
		{"best -n 3 -n 4 ",
			&shellcmd{"best", nil, CmdOptions{"n": {"3", "4"}}},
			nil,
		},
		{`drill "my drills.yaml"`,
			&shellcmd{"drill", []string{"my drills.yaml"}, CmdOptions{}},
			nil},
		{"score -raw",
			nil, errWrongOptionSyntax},
	}
	for _, t := range cases {
		cmd, err := extractFields(t.line)
		is.Equal(cmd, t.expCmd)
		is.Equal(err, t.expErr)
	}
}

func newTestShell(t *testing.T) (*ShellController, *bytes.Buffer) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Set(config.ConfigCacheMemoryFraction, 0.0)
	var out bytes.Buffer
	sc, err := newController(cfg, &out)
	if err != nil {
		t.Fatal(err)
	}
	return sc, &out
}

func mustHand(t *testing.T, s string) tilemapping.Hand {
	t.Helper()
	h, err := tilemapping.HandFromString(s)
	if err != nil {
		t.Fatal(err)
	}
	return h
}

func run(t *testing.T, sc *ShellController, line string) (string, error) {
	t.Helper()
	resp, err := sc.standardModeSwitch(context.Background(), line)
	if resp == nil {
		return "", err
	}
	return resp.message, err
}

func TestPracticeTurn(t *testing.T) {
	is := is.New(t)
	sc, _ := newTestShell(t)

	_, err := run(t, sc, "hand 123m456s789p11z25m")
	is.NoErr(err)
	_, err = run(t, sc, "discard 2m")
	is.True(err != nil) // 13 tiles: must draw first

	_, err = run(t, sc, "draw 9m")
	is.NoErr(err)
	is.Equal(sc.hand.NumTiles(), 14)

	out, err := run(t, sc, "classify 2m")
	is.NoErr(err)
	is.Equal(out, "bad discard: breaks a sequence")

	out, err = run(t, sc, "discard 9m")
	is.NoErr(err)
	is.True(strings.HasPrefix(out, "discarded 9m"))
	is.Equal(sc.hand.NumTiles(), 13)
	is.Equal(sc.river, []tilemapping.TileKind{8})
}

func TestWhiteDragonIsSetAside(t *testing.T) {
	is := is.New(t)
	sc, _ := newTestShell(t)
	_, err := run(t, sc, "hand 123m456s789p11z25m")
	is.NoErr(err)
	out, err := run(t, sc, "draw 7z")
	is.NoErr(err)
	is.True(strings.Contains(out, "set aside"))
	is.Equal(sc.hand.NumTiles(), 13)
	is.Equal(sc.exposed, []tilemapping.TileKind{33})
}

func TestKong(t *testing.T) {
	is := is.New(t)
	sc, _ := newTestShell(t)
	_, err := run(t, sc, "hand 1111m456s789p11z25m")
	is.NoErr(err)
	_, err = run(t, sc, "kong 4s")
	is.True(err != nil)
	_, err = run(t, sc, "kong 1m")
	is.NoErr(err)
	is.Equal(sc.hand.NumTiles(), 10)
	is.Equal(len(sc.exposed), 4)
	is.True(tilemapping.CanDraw(sc.hand.NumTiles()))
}

func TestTooManyCopies(t *testing.T) {
	is := is.New(t)
	sc, _ := newTestShell(t)
	_, err := run(t, sc, "river 1111z")
	is.NoErr(err)
	_, err = run(t, sc, "hand 1z")
	is.True(err != nil)
	_, err = run(t, sc, "hand 1234m")
	is.NoErr(err)
	_, err = run(t, sc, "draw 1z")
	is.True(err != nil) // all four in the river
	_, err = run(t, sc, "draw 3m")
	is.NoErr(err)
	_, err = run(t, sc, "draw 3m")
	is.True(err != nil) // five tiles can't draw
}

func TestAnalysisCommands(t *testing.T) {
	is := is.New(t)
	sc, _ := newTestShell(t)
	_, err := run(t, sc, "hand 123m456s789p11z259m")
	is.NoErr(err)

	out, err := run(t, sc, "decompose")
	is.NoErr(err)
	is.True(strings.Contains(out, "score 32"))

	out, err = run(t, sc, "decompose -json true")
	is.NoErr(err)
	is.True(strings.Contains(out, `"melds": 3`))

	out, err = run(t, sc, "score -raw true")
	is.NoErr(err)
	is.Equal(out, "score 32 (tile score 7)")

	out, err = run(t, sc, "draws 9m")
	is.NoErr(err)
	is.True(strings.HasPrefix(out, "baseline 33"))

	out, err = run(t, sc, "draws 5s")
	is.NoErr(err)
	is.Equal(out, "bad discard: breaks a sequence")

	out, err = run(t, sc, "best -n 2")
	is.NoErr(err)
	is.Equal(len(strings.Split(out, "\n")), 3)
	is.Equal(len(sc.lastRanking), 12)
}

func TestSet(t *testing.T) {
	is := is.New(t)
	sc, _ := newTestShell(t)
	_, err := run(t, sc, "set draw-sort delta")
	is.NoErr(err)
	is.Equal(sc.config.GetString(config.ConfigDrawSort), "delta")
	_, err = run(t, sc, "set draw-sort sideways")
	is.True(err != nil)
	_, err = run(t, sc, "set threads 4")
	is.NoErr(err)
	_, err = run(t, sc, "set nats-token abc")
	is.True(err != nil)
}

func TestHelpAndUnknown(t *testing.T) {
	is := is.New(t)
	sc, out := newTestShell(t)
	_, err := run(t, sc, "help")
	is.NoErr(err)
	is.True(strings.Contains(out.String(), "commands:"))
	out.Reset()
	_, err = run(t, sc, "help drill")
	is.NoErr(err)
	is.True(strings.Contains(out.String(), "positions:"))
	_, err = run(t, sc, "flap")
	is.True(err != nil)
	_, err = run(t, sc, "exit")
	is.Equal(err, errQuit)
}

func TestScript(t *testing.T) {
	is := is.New(t)
	sc, _ := newTestShell(t)
	_, err := run(t, sc, "script testdata/practice.lua")
	is.NoErr(err)
	// the failed hand() call at the end leaves the hand alone.
	is.Equal(sc.hand, mustHand(t, "123m456s789p11z259m"))
	is.Equal(sc.hand.String(), "122359m456s789p11z")
	is.Equal(sc.river, []tilemapping.TileKind{2, 2})
}

func TestCompleter(t *testing.T) {
	is := is.New(t)
	sc, _ := newTestShell(t)
	_, err := run(t, sc, "hand 123m456s789p11z259m")
	is.NoErr(err)
	c := NewShellCompleter(sc)

	matches, n := c.Do([]rune("dra"), 3)
	is.Equal(n, 3)
	is.Equal(len(matches), 2) // draw, draws

	line := []rune("discard 9")
	matches, n = c.Do(line, len(line))
	is.Equal(n, 1)
	is.Equal(matches, [][]rune{[]rune("m"), []rune("p")})
}
