package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/valarxu/mahjong-practice/analyzer"
	"github.com/valarxu/mahjong-practice/bot"
	"github.com/valarxu/mahjong-practice/config"
)

var (
	hand    = flag.String("hand", "", "hand to analyze, e.g. 123m456s789p11z259m")
	river   = flag.String("river", "", "tiles already discarded")
	exposed = flag.String("exposed", "", "exposed tiles")
	discard = flag.String("discard", "", "discard to analyze; leave empty to rank every discard")
	remote  = flag.Bool("remote", false, "send the request to the analysis bot over NATS")
	sample  = flag.Bool("sample", false, "analyze a built-in sample position")
)

func main() {
	flag.Parse()
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	// settings still come from MAHJONG_* env vars and the defaults.
	cfg := config.DefaultConfig()
	if cfg.GetBool(config.ConfigDebug) {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	ctx := context.Background()

	b, err := bot.NewBot(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("could-not-create-bot")
	}
	if *sample {
		if err := b.Analyzer().RunTest(ctx); err != nil {
			log.Fatal().Err(err).Msg("sample-failed")
		}
		return
	}
	if *hand == "" {
		flag.Usage()
		os.Exit(2)
	}
	req := analyzer.JSONRequest{Hand: *hand, River: *river, Exposed: *exposed, Discard: *discard}

	var out []byte
	if *remote {
		nc, err := bot.Connect(cfg)
		if err != nil {
			log.Fatal().AnErr("natsConnectErr", err).Msg(":(")
		}
		defer nc.Close()
		out, err = bot.NewClient(nc, cfg.GetString(config.ConfigNatsChannel)).Request(ctx, req)
		if err != nil {
			log.Fatal().Err(err).Msg("remote-analysis-failed")
		}
	} else {
		out, err = b.Answer(ctx, req)
		if err != nil {
			log.Fatal().Err(err).Msg("analysis-failed")
		}
	}
	fmt.Println(string(out))
}
