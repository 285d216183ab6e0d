// Package botapi implements the HTTP client for the remote bot control
// endpoints: status, start, stop and trade history.
package botapi

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"botdeck/config"
)

// Client talks to the remote bot control API.
type Client struct {
	logger *zap.Logger
	rc     *resty.Client
}

// NewClient creates a bot API client from config.
func NewClient(logger *zap.Logger, cfg *config.Config) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	timeout := cfg.API.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	rc := resty.New().
		SetBaseURL(cfg.API.BaseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &Client{
		logger: logger,
		rc:     rc,
	}
}

// GetStatus fetches the current status of one bot instance.
func (c *Client) GetStatus(ctx context.Context, botID string) (*StatusResponse, error) {
	var out StatusResponse
	resp, err := c.rc.R().
		SetContext(ctx).
		SetQueryParam("bot_id", botID).
		SetResult(&out).
		Get("/bot/status")
	if err != nil {
		return nil, errors.Wrap(err, "get bot status")
	}
	if resp.IsError() {
		return nil, errors.Errorf("get bot status: unexpected status %d", resp.StatusCode())
	}
	return &out, nil
}

// StartBot submits a start request with the given configuration.
func (c *Client) StartBot(ctx context.Context, botID string, cfg BotConfig) (*StatusResponse, error) {
	body, err := startBody(botID, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "start bot: encode config")
	}

	var out StatusResponse
	resp, err := c.rc.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&out).
		Post("/bot/start_bot_trading")
	if err != nil {
		return nil, errors.Wrap(err, "start bot")
	}
	if resp.IsError() {
		return nil, errors.Errorf("start bot: unexpected status %d", resp.StatusCode())
	}
	return &out, nil
}

// StopBot submits a stop request.
func (c *Client) StopBot(ctx context.Context, botID string) (*StatusResponse, error) {
	var out StatusResponse
	resp, err := c.rc.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"bot_id": botID}).
		SetResult(&out).
		Post("/bot/stop_bot_trading")
	if err != nil {
		return nil, errors.Wrap(err, "stop bot")
	}
	if resp.IsError() {
		return nil, errors.Errorf("stop bot: unexpected status %d", resp.StatusCode())
	}
	return &out, nil
}

// GetTrades fetches the trade history of one bot instance. A response with no
// trades field yields an empty slice.
func (c *Client) GetTrades(ctx context.Context, botID string) ([]Trade, error) {
	var out tradesResponse
	resp, err := c.rc.R().
		SetContext(ctx).
		SetQueryParam("by", "bot").
		SetQueryParam("bot_id", botID).
		SetResult(&out).
		Get("/trades")
	if err != nil {
		return nil, errors.Wrap(err, "get trades")
	}
	if resp.IsError() {
		return nil, errors.Errorf("get trades: unexpected status %d", resp.StatusCode())
	}
	return out.Trades, nil
}

// startBody merges the flat bot configuration with the bot_id field the start
// endpoint requires.
func startBody(botID string, cfg BotConfig) (json.RawMessage, error) {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var flat map[string]json.RawMessage
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, err
	}
	id, err := json.Marshal(botID)
	if err != nil {
		return nil, err
	}
	flat["bot_id"] = id
	return json.Marshal(flat)
}
