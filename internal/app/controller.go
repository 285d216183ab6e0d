package app

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const (
	defaultRefreshInterval = 10 * time.Second
	defaultHighlightWindow = 30 * time.Second
	defaultDecayAnimation  = 3 * time.Second
)

// ControllerOptions tunes one controller. Zero values fall back to the
// stock cadences.
type ControllerOptions struct {
	RefreshInterval time.Duration
	HighlightWindow time.Duration
	DecayAnimation  time.Duration
	Translate       Translator
}

// Controller supervises one bot instance: it owns the instance record, the
// poller, the renderer and the refresh scheduler, and binds them to one
// surface. Controllers are fully independent of each other; any number can
// coexist against the same remote system.
type Controller struct {
	logger    *zap.Logger
	api       BotAPI
	instance  *Instance
	surface   Surface
	fields    FieldSource
	poller    *StatusPoller
	renderer  *TradeRenderer
	scheduler *RefreshScheduler

	statusPolls  atomic.Int64
	tradeRenders atomic.Int64
}

// ControllerStats extends the instance snapshot with activity counters.
type ControllerStats struct {
	InstanceSnapshot
	StatusPolls  int64 `json:"status_polls"`
	TradeRenders int64 `json:"trade_renders"`
}

// NewController wires up a controller for one bot id.
func NewController(logger *zap.Logger, api BotAPI, id string, surface Surface, fields FieldSource, opts ControllerOptions) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = defaultRefreshInterval
	}
	if opts.HighlightWindow <= 0 {
		opts.HighlightWindow = defaultHighlightWindow
	}
	if opts.DecayAnimation <= 0 {
		opts.DecayAnimation = defaultDecayAnimation
	}
	if opts.Translate == nil {
		opts.Translate = IdentityTranslator
	}

	logger = logger.With(zap.String("bot_id", id))
	instance := NewInstance(id)

	c := &Controller{
		logger:   logger,
		api:      api,
		instance: instance,
		surface:  surface,
		fields:   fields,
		poller:   NewStatusPoller(logger, api, instance, surface, fields, opts.Translate),
		renderer: NewTradeRenderer(logger, surface, opts.Translate, opts.HighlightWindow, opts.DecayAnimation),
	}
	c.scheduler = NewRefreshScheduler(logger, opts.RefreshInterval, instance.IsRunning, c.refreshTrades)
	return c
}

// ID returns the supervised bot's identifier.
func (c *Controller) ID() string {
	return c.instance.ID
}

// Init performs the one-time bring-up: initial status reconciliation,
// initial trade render, and the scheduler start. A surface without a toggle
// affordance opts the whole controller out.
func (c *Controller) Init(ctx context.Context) {
	if !c.surface.HasToggle() {
		c.logger.Debug("surface has no toggle control, skipping init")
		return
	}

	c.logger.Info("initializing bot controller")

	c.statusPolls.Add(1)
	c.poller.FetchStatus(ctx)
	c.refreshTrades(ctx)
	c.scheduler.Start(ctx)
}

// Toggle starts or stops the bot depending on its current state.
func (c *Controller) Toggle(ctx context.Context) {
	c.poller.Toggle(ctx)
}

// FetchStatus forces a status reconciliation outside the toggle path.
func (c *Controller) FetchStatus(ctx context.Context) Category {
	c.statusPolls.Add(1)
	return c.poller.FetchStatus(ctx)
}

// refreshTrades fetches and renders the trade history. A fetch failure
// degrades to an empty table rather than surfacing an error.
func (c *Controller) refreshTrades(ctx context.Context) {
	trades, err := c.api.GetTrades(ctx, c.instance.ID)
	if err != nil {
		c.logger.Warn("trade fetch failed", zap.Error(err))
		trades = nil
	}

	newLast, hasNew := c.renderer.Render(trades, c.instance.LastTradeTimestamp())
	c.instance.advanceLastTrade(newLast)
	c.tradeRenders.Add(1)
	if hasNew {
		c.logger.Debug("new trade observed", zap.Time("timestamp", newLast))
	}
}

// Stats reports the instance snapshot plus poll/render counters.
func (c *Controller) Stats() ControllerStats {
	return ControllerStats{
		InstanceSnapshot: c.instance.Snapshot(),
		StatusPolls:      c.statusPolls.Load(),
		TradeRenders:     c.tradeRenders.Load(),
	}
}

// SetRefreshInterval retunes the trade refresh cadence.
func (c *Controller) SetRefreshInterval(interval time.Duration) {
	c.scheduler.SetInterval(interval)
}

// SetHighlightTuning retunes the highlight window and decay animation.
func (c *Controller) SetHighlightTuning(window, decay time.Duration) {
	c.renderer.SetTuning(window, decay)
}

// Close tears the controller down, cancelling the scheduler and any pending
// highlight decay timer. Required at teardown; leaked timers firing against
// a dead surface are the bug class this guards against.
func (c *Controller) Close() {
	c.scheduler.Stop()
	c.renderer.Close()
	c.logger.Debug("controller closed")
}
