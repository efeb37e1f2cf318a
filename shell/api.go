package shell

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/valarxu/mahjong-practice/analyzer"
	"github.com/valarxu/mahjong-practice/config"
	"github.com/valarxu/mahjong-practice/drawanalysis"
	"github.com/valarxu/mahjong-practice/drills"
	"github.com/valarxu/mahjong-practice/tilemapping"
)

// The white dragon is set aside as soon as it is drawn, as in the practice
// table's house rule, and a replacement is drawn.
const whiteDragon = tilemapping.TileKind(tilemapping.NumKinds - 1)

type Response struct {
	message string
}

type CmdOptions map[string][]string

func (c CmdOptions) String(key string) string {
	v := c[key]
	if len(v) > 0 {
		return v[0]
	}
	return ""
}

func (c CmdOptions) Int(key string) (int, error) {
	v := c[key]
	if len(v) == 0 {
		return 0, errors.New(key + " not found in options")
	}
	return strconv.Atoi(v[0])
}

func (c CmdOptions) IntDefault(key string, defaultI int) (int, error) {
	v := c[key]
	if len(v) == 0 {
		return defaultI, nil
	}
	return strconv.Atoi(v[0])
}

func (c CmdOptions) Bool(key string) bool {
	v := c[key]
	if len(v) == 0 {
		return false
	}
	return strings.ToLower(v[0]) == "true"
}

func msg(message string) *Response {
	return &Response{message: message}
}

// tilesArg parses all positional args as one tile string.
func tilesArg(cmd *shellcmd) ([]tilemapping.TileKind, error) {
	return tilemapping.ParseTiles(strings.Join(cmd.args, " "))
}

func tileArg(cmd *shellcmd) (tilemapping.TileKind, error) {
	if len(cmd.args) != 1 {
		return 0, fmt.Errorf("%s takes exactly one tile", cmd.cmd)
	}
	return tilemapping.ParseTile(cmd.args[0])
}

// checkVisible fails if hand, river and exposed tiles together show more
// than four copies of any kind.
func checkVisible(h tilemapping.Hand, river, exposed []tilemapping.TileKind) error {
	all := append(h.Tiles(), river...)
	all = append(all, exposed...)
	_, err := tilemapping.VisibleCounts(all)
	return err
}

func (sc *ShellController) setHand(cmd *shellcmd) (*Response, error) {
	ks, err := tilesArg(cmd)
	if err != nil {
		return nil, err
	}
	h, err := tilemapping.HandFromTiles(ks)
	if err != nil {
		return nil, err
	}
	if err := checkVisible(h, sc.river, sc.exposed); err != nil {
		return nil, err
	}
	sc.hand = h
	sc.lastRanking = nil
	return sc.show(cmd)
}

func (sc *ShellController) setRiver(cmd *shellcmd) (*Response, error) {
	ks, err := tilesArg(cmd)
	if err != nil {
		return nil, err
	}
	if err := checkVisible(sc.hand, ks, sc.exposed); err != nil {
		return nil, err
	}
	sc.river = ks
	return sc.show(cmd)
}

func (sc *ShellController) setExposed(cmd *shellcmd) (*Response, error) {
	ks, err := tilesArg(cmd)
	if err != nil {
		return nil, err
	}
	if err := checkVisible(sc.hand, sc.river, ks); err != nil {
		return nil, err
	}
	sc.exposed = ks
	return sc.show(cmd)
}

func (sc *ShellController) draw(cmd *shellcmd) (*Response, error) {
	k, err := tileArg(cmd)
	if err != nil {
		return nil, err
	}
	if !tilemapping.CanDraw(sc.hand.NumTiles()) {
		return nil, fmt.Errorf("a hand of %d tiles can't draw", sc.hand.NumTiles())
	}
	supply := tilemapping.RemainingSupply(sc.hand, sc.river, sc.exposed)
	if supply[k] == 0 {
		return nil, fmt.Errorf("no %v left to draw", k)
	}
	sc.lastRanking = nil
	if k == whiteDragon {
		sc.exposed = append(sc.exposed, k)
		return msg(fmt.Sprintf("%v set aside; draw a replacement\n%s", k, sc.table())), nil
	}
	sc.hand.Add(k)
	return sc.show(cmd)
}

func (sc *ShellController) discard(ctx context.Context, cmd *shellcmd) (*Response, error) {
	k, err := tileArg(cmd)
	if err != nil {
		return nil, err
	}
	if !tilemapping.CanDiscard(sc.hand.NumTiles()) {
		return nil, fmt.Errorf("a hand of %d tiles can't discard", sc.hand.NumTiles())
	}
	res, err := sc.an.AnalyzeDraws(ctx, sc.hand, sc.river, sc.exposed, k)
	if err != nil {
		return nil, err
	}
	if err := sc.hand.Take(k); err != nil {
		return nil, err
	}
	sc.river = append(sc.river, k)
	sc.lastRanking = nil

	var sb strings.Builder
	if res.Verdict.IsBad {
		fmt.Fprintf(&sb, "%s\n", res.Verdict.Reason.Description())
	} else {
		fmt.Fprintf(&sb, "discarded %v: %d kinds, %d tiles improve the hand\n",
			k, res.ImprovingKinds(), res.EffectiveSupply())
	}
	sb.WriteString(sc.table())
	return msg(sb.String()), nil
}

func (sc *ShellController) kong(cmd *shellcmd) (*Response, error) {
	k, err := tileArg(cmd)
	if err != nil {
		return nil, err
	}
	if !tilemapping.CanDiscard(sc.hand.NumTiles()) {
		return nil, errors.New("a concealed kong can only be declared before discarding")
	}
	if !slices.Contains(tilemapping.ConcealedKongs(sc.hand), k) {
		return nil, fmt.Errorf("you need all four %v for a kong", k)
	}
	for range tilemapping.CopiesPerKind {
		sc.exposed = append(sc.exposed, k)
	}
	sc.hand[k] = 0
	sc.lastRanking = nil
	return msg(fmt.Sprintf("kong of %v declared; draw a replacement\n%s", k, sc.table())), nil
}

func (sc *ShellController) table() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "hand    %s  %s (%d)\n", sc.hand.String(),
		tilemapping.GlyphString(sc.hand.Tiles()), sc.hand.NumTiles())
	fmt.Fprintf(&sb, "river   %s\n", tilemapping.GlyphString(sc.river))
	fmt.Fprintf(&sb, "exposed %s\n", tilemapping.GlyphString(sc.exposed))
	fmt.Fprintf(&sb, "unseen  %d", tilemapping.RemainingSupply(sc.hand, sc.river, sc.exposed).Total())
	return sb.String()
}

func (sc *ShellController) show(cmd *shellcmd) (*Response, error) {
	return msg(sc.table()), nil
}

func (sc *ShellController) decompose(cmd *shellcmd) (*Response, error) {
	d, err := sc.an.Decompose(sc.hand)
	if err != nil {
		return nil, err
	}
	if cmd.options.Bool("json") {
		bts, err := json.MarshalIndent(analyzer.MakeJSONDecomposition(sc.hand, d), "", "  ")
		if err != nil {
			return nil, err
		}
		return msg(string(bts)), nil
	}
	var sb strings.Builder
	for _, g := range d.Groups {
		fmt.Fprintf(&sb, "%-10v %s\n", g.Type, tilemapping.FormatTiles(g.Tiles))
	}
	fmt.Fprintf(&sb, "melds %d  pairs %d  proto-melds %d  singles %d  score %d",
		d.Melds(), d.Pairs(), d.ProtoMelds(), d.Singles(), sc.an.ScoreDecomposition(d))
	return msg(sb.String()), nil
}

func (sc *ShellController) score(cmd *shellcmd) (*Response, error) {
	s, err := sc.an.Score(sc.hand)
	if err != nil {
		return nil, err
	}
	if cmd.options.Bool("raw") {
		return msg(fmt.Sprintf("score %d (tile score %d)", s, sc.rawScorer.Score(sc.hand))), nil
	}
	return msg(fmt.Sprintf("score %d", s)), nil
}

func (sc *ShellController) classify(cmd *shellcmd) (*Response, error) {
	k, err := tileArg(cmd)
	if err != nil {
		return nil, err
	}
	v, err := sc.an.ClassifyDiscard(sc.hand, k)
	if err != nil {
		return nil, err
	}
	if !v.IsBad {
		return msg(fmt.Sprintf("%v is not a bad discard", k)), nil
	}
	return msg(v.Reason.Description()), nil
}

func drawTable(res *drawanalysis.Result) string {
	var sb strings.Builder
	if res.Verdict.IsBad {
		return res.Verdict.Reason.Description()
	}
	fmt.Fprintf(&sb, "baseline %d\n", res.Baseline)
	sb.WriteString("tile  left  gain\n")
	for _, e := range res.Entries {
		fmt.Fprintf(&sb, "%-4v %5d %+5d\n", e.Kind, e.Remaining, e.Delta)
	}
	fmt.Fprintf(&sb, "%d kinds, %d tiles", res.ImprovingKinds(), res.EffectiveSupply())
	return sb.String()
}

func (sc *ShellController) draws(ctx context.Context, cmd *shellcmd) (*Response, error) {
	k, err := tileArg(cmd)
	if err != nil {
		return nil, err
	}
	res, err := sc.an.AnalyzeDraws(ctx, sc.hand, sc.river, sc.exposed, k)
	if err != nil {
		return nil, err
	}
	if cmd.options.Bool("json") {
		bts, err := json.MarshalIndent(analyzer.MakeJSONAnalysis(sc.hand, k, res), "", "  ")
		if err != nil {
			return nil, err
		}
		return msg(string(bts)), nil
	}
	return msg(drawTable(res)), nil
}

func (sc *ShellController) best(ctx context.Context, cmd *shellcmd) (*Response, error) {
	n, err := cmd.options.IntDefault("n", 5)
	if err != nil {
		return nil, err
	}
	opts, err := sc.an.RankDiscards(ctx, sc.hand, sc.river, sc.exposed)
	if err != nil {
		return nil, err
	}
	sc.lastRanking = opts
	var sb strings.Builder
	sb.WriteString("  #  tile  kinds  tiles\n")
	for i, o := range opts[:min(n, len(opts))] {
		if o.Result.Verdict.IsBad {
			fmt.Fprintf(&sb, "%3d: %-4v  %s\n", i+1, o.Kind, o.Result.Verdict.Reason)
			continue
		}
		fmt.Fprintf(&sb, "%3d: %-4v %6d %6d\n", i+1, o.Kind,
			o.Result.ImprovingKinds(), o.Result.EffectiveSupply())
	}
	return msg(strings.TrimRight(sb.String(), "\n")), nil
}

func (sc *ShellController) drill(ctx context.Context, cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: drill <file.yaml>")
	}
	f, err := drills.LoadFile(cmd.args[0])
	if err != nil {
		return nil, err
	}
	b, err := drills.Run(ctx, sc.an, f)
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	if err := b.Fprint(&sb); err != nil {
		return nil, err
	}
	return msg(strings.TrimRight(sb.String(), "\n")), nil
}

// set changes a setting for the rest of the session.
func (sc *ShellController) set(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		var sb strings.Builder
		for _, k := range []string{config.ConfigThreads, config.ConfigDrawSort, config.ConfigDebug} {
			fmt.Fprintf(&sb, "%-10s %v\n", k, sc.config.Get(k))
		}
		return msg(strings.TrimRight(sb.String(), "\n")), nil
	}
	if len(cmd.args) != 2 {
		return nil, errors.New("usage: set <key> <value>")
	}
	key, value := cmd.args[0], cmd.args[1]
	switch key {
	case config.ConfigThreads:
		t, err := strconv.Atoi(value)
		if err != nil {
			return nil, err
		}
		sc.an.SetThreads(t)
	case config.ConfigDrawSort:
		o, err := drawanalysis.ParseSortOrder(value)
		if err != nil {
			return nil, err
		}
		sc.an.SetSortOrder(o)
	case config.ConfigDebug:
		on, err := strconv.ParseBool(value)
		if err != nil {
			return nil, err
		}
		if on {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		} else {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
		}
	default:
		return nil, fmt.Errorf("can't set %q from the shell", key)
	}
	sc.config.Set(key, value)
	log.Debug().Str("key", key).Str("value", value).Msg("setting-changed")
	return msg("set " + key + " to " + value), nil
}

func (sc *ShellController) cacheStats(cmd *shellcmd) (*Response, error) {
	st, ok := sc.an.CacheStats()
	if !ok {
		return msg("caching is off"), nil
	}
	return msg(fmt.Sprintf("size %d  lookups %d  hits %d  stored %d",
		st.Size, st.Lookups, st.Hits, st.Created)), nil
}
