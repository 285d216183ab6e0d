package clients

import (
	"go.uber.org/zap"

	"botdeck/clients/botapi"
	"botdeck/config"
)

type Clients struct {
	Logger *zap.Logger

	BotAPI *botapi.Client
}

func NewClients(logger *zap.Logger, cfg *config.Config) *Clients {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Clients{
		Logger: logger,
		BotAPI: botapi.NewClient(logger, cfg),
	}
}
