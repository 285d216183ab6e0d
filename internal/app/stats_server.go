package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"botdeck/config"
)

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// statsServer exposes panel state over HTTP: health, a JSON snapshot, a
// websocket pushing the same snapshot every second, and a settings endpoint
// feeding the live config.
type statsServer struct {
	logger     *zap.Logger
	panel      *Panel
	liveConfig *config.LiveConfig
	server     *http.Server
}

func newStatsServer(logger *zap.Logger, panel *Panel, liveConfig *config.LiveConfig) *statsServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &statsServer{
		logger:     logger,
		panel:      panel,
		liveConfig: liveConfig,
	}
}

func (s *statsServer) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/stats", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(s.panel.Stats())
	})

	mux.HandleFunc("/ws", func(w http.ResponseWriter, req *http.Request) {
		conn, err := wsUpgrader.Upgrade(w, req, nil)
		if err != nil {
			s.logger.Error("websocket upgrade failed", zap.Error(err))
			return
		}
		defer conn.Close()

		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()

		for range ticker.C {
			if err := conn.WriteJSON(s.panel.Stats()); err != nil {
				return // client disconnected
			}
		}
	})

	mux.HandleFunc("/settings", s.handleSettings)

	return mux
}

func (s *statsServer) start(port int) {
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: s.handler(),
	}

	go func() {
		s.logger.Info("stats server listening", zap.String("addr", s.server.Addr))
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("stats server error", zap.Error(err))
		}
	}()
}

// settingsRequest carries the runtime-tunable panel settings. Absent fields
// keep their current values.
type settingsRequest struct {
	RefreshIntervalSeconds *int     `json:"refresh_interval_seconds"`
	HighlightWindowSeconds *int     `json:"highlight_window_seconds"`
	DecayAnimationSeconds  *float64 `json:"decay_animation_seconds"`
}

func (s *statsServer) handleSettings(w http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case http.MethodGet:
		s.writeSettings(w)
	case http.MethodPost:
		s.applySettings(w, req)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *statsServer) writeSettings(w http.ResponseWriter) {
	cfg := s.liveConfig.Get()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"refresh_interval_seconds": int(cfg.Panel.RefreshInterval.Seconds()),
		"highlight_window_seconds": int(cfg.Panel.HighlightWindow.Seconds()),
		"decay_animation_seconds":  cfg.Panel.DecayAnimation.Seconds(),
		"last_updated":             s.liveConfig.LastUpdated(),
	})
}

func (s *statsServer) applySettings(w http.ResponseWriter, req *http.Request) {
	var body settingsRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	cfg := s.liveConfig.Get()
	if body.RefreshIntervalSeconds != nil {
		cfg.Panel.RefreshInterval = time.Duration(*body.RefreshIntervalSeconds) * time.Second
	}
	if body.HighlightWindowSeconds != nil {
		cfg.Panel.HighlightWindow = time.Duration(*body.HighlightWindowSeconds) * time.Second
	}
	if body.DecayAnimationSeconds != nil {
		cfg.Panel.DecayAnimation = time.Duration(*body.DecayAnimationSeconds * float64(time.Second))
	}

	if err := s.liveConfig.Update(cfg); err != nil {
		s.logger.Warn("settings update rejected", zap.Error(err))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.logger.Info("settings updated",
		zap.Duration("refreshInterval", cfg.Panel.RefreshInterval),
		zap.Duration("highlightWindow", cfg.Panel.HighlightWindow),
	)
	s.writeSettings(w)
}

func (s *statsServer) stop() {
	if s.server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.Warn("stats server shutdown", zap.Error(err))
	}
}
