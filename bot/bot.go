// Package bot answers analysis requests over NATS. Requests and replies are
// the analyzer's JSON types; a failed request is answered with an
// ErrorResponse.
package bot

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/valarxu/mahjong-practice/analyzer"
	"github.com/valarxu/mahjong-practice/config"
)

// RequestTimeout bounds the work done for a single message.
const RequestTimeout = 10 * time.Second

// ErrorResponse is sent back instead of an analysis when a request fails.
type ErrorResponse struct {
	Error string `json:"error"`
}

// LambdaEvent is the payload of a lambda invocation. When ReplyChannel is
// set the answer is also published there.
type LambdaEvent struct {
	RequestID    string               `json:"requestID"`
	Request      analyzer.JSONRequest `json:"request"`
	ReplyChannel string               `json:"replyChannel,omitempty"`
}

type Bot struct {
	config *config.Config
	an     *analyzer.Analyzer
}

func NewBot(cfg *config.Config) (*Bot, error) {
	an, err := analyzer.NewAnalyzer(cfg)
	if err != nil {
		return nil, err
	}
	return &Bot{config: cfg, an: an}, nil
}

func (bot *Bot) Analyzer() *analyzer.Analyzer {
	return bot.an
}

func errorResponse(message string, err error) []byte {
	msg := message
	if err != nil {
		msg = message + ": " + err.Error()
	}
	// marshaling a single string field can't fail.
	data, _ := json.Marshal(ErrorResponse{Error: msg})
	return data
}

// Answer analyzes one request and returns the JSON reply.
func (bot *Bot) Answer(ctx context.Context, req analyzer.JSONRequest) ([]byte, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	return bot.an.AnalyzeJSON(ctx, data)
}

// handle always returns something to send back.
func (bot *Bot) handle(ctx context.Context, data []byte) []byte {
	ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()
	resp, err := bot.an.AnalyzeJSON(ctx, data)
	if err != nil {
		log.Err(err).Msg("analysis-failed")
		return errorResponse("could not analyze request", err)
	}
	return resp
}

// Connect dials the configured NATS server.
func Connect(cfg *config.Config) (*nats.Conn, error) {
	opts := []nats.Option{nats.Name("mahjong-bot")}
	if tok := cfg.GetString(config.ConfigNatsToken); tok != "" {
		opts = append(opts, nats.Token(tok))
	}
	return nats.Connect(cfg.GetString(config.ConfigNatsURL), opts...)
}

// Serve answers requests on channel until ctx is done.
func (bot *Bot) Serve(ctx context.Context, nc *nats.Conn, channel string) error {
	sub, err := nc.Subscribe(channel, func(m *nats.Msg) {
		log.Info().Msgf("RECV: %d bytes", len(m.Data))
		if err := m.Respond(bot.handle(ctx, m.Data)); err != nil {
			log.Err(err).Msg("respond-failed")
		}
	})
	if err != nil {
		return err
	}
	if err := nc.Flush(); err != nil {
		return err
	}
	if err := nc.LastError(); err != nil {
		return err
	}
	log.Info().Msgf("Listening on [%s]", channel)

	<-ctx.Done()
	if err := sub.Drain(); err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
		return err
	}
	return nil
}
