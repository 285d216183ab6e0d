package app

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"botdeck/clients/botapi"
)

// BotAPI is the slice of the bot HTTP client the poller needs.
type BotAPI interface {
	GetStatus(ctx context.Context, botID string) (*botapi.StatusResponse, error)
	StartBot(ctx context.Context, botID string, cfg botapi.BotConfig) (*botapi.StatusResponse, error)
	StopBot(ctx context.Context, botID string) (*botapi.StatusResponse, error)
	GetTrades(ctx context.Context, botID string) ([]botapi.Trade, error)
}

// StatusPoller drives one instance's start/stop state machine and reconciles
// every remote status response into surface state. Failures never propagate
// to the caller: transport and parse errors collapse into the error category
// with a fixed message, leaving the surface re-interactable.
type StatusPoller struct {
	logger    *zap.Logger
	api       BotAPI
	instance  *Instance
	surface   Surface
	translate Translator
	fields    FieldSource

	// toggleMu serializes toggle admission so the synchronous transition to
	// loading is observed by any competing toggle before it decides.
	toggleMu sync.Mutex
}

// NewStatusPoller creates a poller bound to one instance and surface.
func NewStatusPoller(logger *zap.Logger, api BotAPI, instance *Instance, surface Surface, fields FieldSource, translate Translator) *StatusPoller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if translate == nil {
		translate = IdentityTranslator
	}
	return &StatusPoller{
		logger:    logger.With(zap.String("bot_id", instance.ID)),
		api:       api,
		instance:  instance,
		surface:   surface,
		translate: translate,
		fields:    fields,
	}
}

// FetchStatus queries the remote status and reconciles it. Transport failure
// maps to the error category with a fixed message instead of an error return.
func (p *StatusPoller) FetchStatus(ctx context.Context) Category {
	resp, err := p.api.GetStatus(ctx, p.instance.ID)
	if err != nil {
		p.logger.Warn("status fetch failed", zap.Error(err))
		resp = &botapi.StatusResponse{
			BotStatus:        "error",
			LastErrorMessage: "Error fetching bot status",
		}
	}
	return p.reconcile(resp)
}

// Toggle starts or stops the bot based on the current isRunning. Calls
// arriving while the category is loading are ignored; the transition to
// loading happens before any network traffic, so a rapid double toggle
// cannot issue two concurrent requests.
func (p *StatusPoller) Toggle(ctx context.Context) {
	p.toggleMu.Lock()
	if p.instance.Category() == CategoryLoading {
		p.toggleMu.Unlock()
		p.logger.Debug("toggle ignored while loading")
		return
	}
	wasRunning := p.instance.IsRunning()
	p.reconcile(&botapi.StatusResponse{BotStatus: "loading"})
	p.toggleMu.Unlock()

	if wasRunning {
		p.Stop(ctx)
	} else {
		p.Start(ctx)
	}
}

// Start extracts a fresh configuration and submits it. Extraction failure
// aborts before any network call and returns the instance to stopped with
// the validation message surfaced.
func (p *StatusPoller) Start(ctx context.Context) {
	cfg, failure := ExtractConfig(p.fields)
	if failure != nil {
		p.logger.Info("start blocked by invalid configuration")
		p.reconcile(&botapi.StatusResponse{
			BotStatus:        "stopped",
			LastErrorMessage: failure.Message,
		})
		return
	}

	p.logger.Info("starting bot",
		zap.String("symbol", cfg.Symbol),
		zap.Int("interval", cfg.IntervalSeconds))

	resp, err := p.api.StartBot(ctx, p.instance.ID, *cfg)
	if err != nil {
		p.logger.Error("start request failed", zap.Error(err))
		p.reconcile(&botapi.StatusResponse{
			BotStatus:        "error",
			LastErrorMessage: "Error starting trading bot",
		})
		return
	}
	if resp.Error != "" {
		p.logger.Warn("start rejected by remote", zap.String("reason", resp.Error))
		p.reconcile(&botapi.StatusResponse{
			BotStatus:        "error",
			LastErrorMessage: "Error starting bot: " + resp.Error,
		})
		return
	}
	p.reconcile(resp)
}

// Stop is the symmetric counterpart of Start without a configuration payload.
func (p *StatusPoller) Stop(ctx context.Context) {
	p.logger.Info("stopping bot")

	resp, err := p.api.StopBot(ctx, p.instance.ID)
	if err != nil {
		p.logger.Error("stop request failed", zap.Error(err))
		p.reconcile(&botapi.StatusResponse{
			BotStatus:        "error",
			LastErrorMessage: "Error stopping trading bot",
		})
		return
	}
	if resp.Error != "" {
		p.logger.Warn("stop rejected by remote", zap.String("reason", resp.Error))
		p.reconcile(&botapi.StatusResponse{
			BotStatus:        "error",
			LastErrorMessage: "Error stopping bot: " + resp.Error,
		})
		return
	}
	p.reconcile(resp)
}

// reconcile applies one remote status response to the instance and the
// surface. Effects land in a fixed order: inputs-enabled state, then the
// status indicator (button, then badge), then error text. Inputs are the
// guard against editing configuration mid-flight, so they change first.
func (p *StatusPoller) reconcile(resp *botapi.StatusResponse) Category {
	category := Classify(resp.BotStatus)
	p.instance.setReconciled(category, resp.LastErrorMessage)

	p.surface.SetInputsEnabled(category == CategoryStopped || category == CategoryError)
	p.surface.SetButtonState(buttonFor(category, p.translate))
	p.surface.SetStatusText(badgeFor(category, p.translate), category)
	p.surface.SetErrorText(p.translate(resp.LastErrorMessage))

	return category
}

func buttonFor(category Category, translate Translator) ButtonState {
	switch category {
	case CategoryRunning:
		return ButtonState{Label: translate("Stop Bot"), Enabled: true}
	case CategoryLoading:
		return ButtonState{Label: translate("Loading..."), Enabled: false}
	default:
		return ButtonState{Label: translate("Start Bot"), Enabled: true}
	}
}

func badgeFor(category Category, translate Translator) string {
	switch category {
	case CategoryRunning:
		return translate("Running")
	case CategoryLoading:
		return translate("Processing...")
	case CategoryError:
		return translate("Error")
	default:
		return translate("Stopped")
	}
}
