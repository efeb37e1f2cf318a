package bot

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/valarxu/mahjong-practice/analyzer"
)

type Client struct {
	// NATS connection
	nc      *nats.Conn
	channel string
}

func NewClient(nc *nats.Conn, channel string) *Client {
	return &Client{nc: nc, channel: channel}
}

// decodeReply turns an ErrorResponse into an error and passes anything else
// through.
func decodeReply(data []byte) ([]byte, error) {
	var e ErrorResponse
	if err := json.Unmarshal(data, &e); err == nil && e.Error != "" {
		return nil, errors.New("bot returned: " + e.Error)
	}
	return data, nil
}

// Request sends a request to the bot and waits for its answer. The reply
// is either a JSONAnalysis or, with no discard, a []JSONDiscard.
func (c *Client) Request(ctx context.Context, req analyzer.JSONRequest) ([]byte, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, RequestTimeout)
		defer cancel()
	}
	res, err := c.nc.RequestWithContext(ctx, c.channel, data)
	if err != nil {
		if c.nc.LastError() != nil {
			log.Error().Msgf("%v for request", c.nc.LastError())
		}
		log.Error().Msgf("%v for request", err)
		return nil, err
	}
	log.Debug().Msgf("res: %v", string(res.Data))
	return decodeReply(res.Data)
}
