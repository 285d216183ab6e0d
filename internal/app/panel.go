package app

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	clts "botdeck/clients"
	"botdeck/config"
)

// SurfaceFactory builds the surface for one bot widget. The field map is the
// surface's configuration inputs; the controller reads starts from it.
type SurfaceFactory func(botID string, fields *FieldMap) Surface

// Panel hosts one controller per configured bot on a single page. It owns
// their shared lifecycle, reacts to config hot-reloads, and exposes the
// stats server.
type Panel struct {
	clients    *clts.Clients
	liveConfig *config.LiveConfig
	newSurface SurfaceFactory
	translate  Translator

	mu          sync.RWMutex
	controllers []*Controller

	statsServer *statsServer
	startTime   time.Time
}

// NewPanel creates a panel. Controllers are not constructed until Run.
func NewPanel(clients *clts.Clients, liveConfig *config.LiveConfig, newSurface SurfaceFactory, translate Translator) *Panel {
	if translate == nil {
		translate = IdentityTranslator
	}
	return &Panel{
		clients:    clients,
		liveConfig: liveConfig,
		newSurface: newSurface,
		translate:  translate,
	}
}

// Run brings up every configured bot controller, starts the stats server if
// enabled, and blocks until ctx is cancelled, then tears everything down.
func (p *Panel) Run(ctx context.Context) error {
	p.startTime = time.Now()
	logger := p.clients.Logger
	cfg := p.liveConfig.Get()

	p.liveConfig.AddObserver(p)

	logger.Info("starting bot panel",
		zap.Int("bots", len(cfg.Panel.Bots)),
		zap.Duration("refreshInterval", cfg.Panel.RefreshInterval),
	)

	for _, seed := range cfg.Panel.Bots {
		id := seed.ID
		if id == "" {
			id = uuid.NewString()
			logger.Info("assigned bot id", zap.String("bot_id", id))
		}

		fields := NewFieldMap(seed.Fields)
		surface := p.newSurface(id, fields)
		controller := NewController(logger, p.clients.BotAPI, id, surface, fields, ControllerOptions{
			RefreshInterval: cfg.Panel.RefreshInterval,
			HighlightWindow: cfg.Panel.HighlightWindow,
			DecayAnimation:  cfg.Panel.DecayAnimation,
			Translate:       p.translate,
		})
		controller.Init(ctx)

		p.mu.Lock()
		p.controllers = append(p.controllers, controller)
		p.mu.Unlock()
	}

	if cfg.StatsServer.Enabled {
		p.statsServer = newStatsServer(logger, p, p.liveConfig)
		p.statsServer.start(cfg.StatsServer.Port)
	}

	<-ctx.Done()
	p.shutdown()
	return nil
}

// Toggle starts or stops the identified bot. Unknown ids are a no-op apart
// from a log line.
func (p *Panel) Toggle(ctx context.Context, botID string) {
	if c := p.controller(botID); c != nil {
		c.Toggle(ctx)
		return
	}
	p.clients.Logger.Warn("toggle for unknown bot", zap.String("bot_id", botID))
}

func (p *Panel) controller(botID string) *Controller {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, c := range p.controllers {
		if c.ID() == botID {
			return c
		}
	}
	return nil
}

// OnConfigUpdate implements config.Observer, propagating runtime-tunable
// settings to every controller.
func (p *Panel) OnConfigUpdate(cfg *config.Config) {
	p.clients.Logger.Info("config update received, propagating to controllers")

	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, c := range p.controllers {
		c.SetRefreshInterval(cfg.Panel.RefreshInterval)
		c.SetHighlightTuning(cfg.Panel.HighlightWindow, cfg.Panel.DecayAnimation)
	}
}

// PanelStats is the stats server payload.
type PanelStats struct {
	UptimeSeconds int64             `json:"uptime_seconds"`
	BotCount      int               `json:"bot_count"`
	Bots          []ControllerStats `json:"bots"`
}

// Stats snapshots every controller.
func (p *Panel) Stats() PanelStats {
	p.mu.RLock()
	defer p.mu.RUnlock()

	stats := PanelStats{
		UptimeSeconds: int64(time.Since(p.startTime).Seconds()),
		BotCount:      len(p.controllers),
		Bots:          make([]ControllerStats, 0, len(p.controllers)),
	}
	for _, c := range p.controllers {
		stats.Bots = append(stats.Bots, c.Stats())
	}
	return stats
}

func (p *Panel) shutdown() {
	logger := p.clients.Logger
	logger.Info("shutting down bot panel")

	p.mu.Lock()
	controllers := p.controllers
	p.controllers = nil
	p.mu.Unlock()

	for _, c := range controllers {
		c.Close()
	}

	if p.statsServer != nil {
		p.statsServer.stop()
	}
	logger.Info("bot panel stopped")
}
