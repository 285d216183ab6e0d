package app

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// RefreshScheduler runs one recurring trade refresh per instance. The ticker
// never pauses; each tick gates on the running predicate, so a stopped bot
// keeps its cadence but skips the fetch. Stop is idempotent and mandatory at
// teardown.
type RefreshScheduler struct {
	logger   *zap.Logger
	interval time.Duration
	gate     func() bool
	refresh  func(ctx context.Context)

	mu      sync.Mutex
	ticker  *time.Ticker
	started bool
	done    chan struct{}
	once    sync.Once
}

// NewRefreshScheduler creates a scheduler. gate is consulted before every
// refresh; refresh runs on the scheduler goroutine.
func NewRefreshScheduler(logger *zap.Logger, interval time.Duration, gate func() bool, refresh func(ctx context.Context)) *RefreshScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RefreshScheduler{
		logger:   logger,
		interval: interval,
		gate:     gate,
		refresh:  refresh,
		done:     make(chan struct{}),
	}
}

// Start launches the tick loop. Subsequent calls are no-ops; the scheduler
// is started once for the life of its instance.
func (s *RefreshScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.ticker = time.NewTicker(s.interval)
	s.mu.Unlock()

	go s.loop(ctx)
}

func (s *RefreshScheduler) loop(ctx context.Context) {
	defer s.ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-s.ticker.C:
			if !s.gate() {
				continue
			}
			s.logger.Debug("refreshing trade history")
			s.refresh(ctx)
		}
	}
}

// SetInterval changes the tick cadence, taking effect immediately when the
// loop is running.
func (s *RefreshScheduler) SetInterval(interval time.Duration) {
	if interval <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interval = interval
	if s.ticker != nil {
		s.ticker.Reset(interval)
	}
}

// Stop terminates the loop. Safe to call multiple times and before Start.
func (s *RefreshScheduler) Stop() {
	s.once.Do(func() {
		close(s.done)
	})
}
