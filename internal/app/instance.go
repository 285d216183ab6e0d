package app

import (
	"sync"
	"time"
)

// Instance is the explicit per-bot state record. One exists per controller;
// nothing is shared between instances beyond the remote system itself.
type Instance struct {
	// ID is the opaque stable identifier, assigned at construction.
	ID string

	mu sync.RWMutex

	// isRunning is derived state: it only changes as a consequence of a
	// successful status reconciliation, never directly from UI code.
	isRunning bool

	lastCategory     Category
	lastErrorMessage string

	// lastTradeTimestamp only advances, and only on positive timestamps.
	lastTradeTimestamp time.Time
}

// NewInstance creates an instance record in the stopped category.
func NewInstance(id string) *Instance {
	return &Instance{
		ID:           id,
		lastCategory: CategoryStopped,
	}
}

// InstanceSnapshot is a point-in-time copy of an instance's state.
type InstanceSnapshot struct {
	ID                 string    `json:"id"`
	IsRunning          bool      `json:"is_running"`
	Category           Category  `json:"category"`
	LastErrorMessage   string    `json:"last_error_message,omitempty"`
	LastTradeTimestamp time.Time `json:"last_trade_timestamp,omitempty"`
}

// Snapshot returns a consistent copy of the instance state.
func (in *Instance) Snapshot() InstanceSnapshot {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return InstanceSnapshot{
		ID:                 in.ID,
		IsRunning:          in.isRunning,
		Category:           in.lastCategory,
		LastErrorMessage:   in.lastErrorMessage,
		LastTradeTimestamp: in.lastTradeTimestamp,
	}
}

// IsRunning reports whether the last reconciliation left the bot running.
func (in *Instance) IsRunning() bool {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.isRunning
}

// Category returns the last reconciled status category.
func (in *Instance) Category() Category {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.lastCategory
}

// LastTradeTimestamp returns the newest trade timestamp rendered so far.
func (in *Instance) LastTradeTimestamp() time.Time {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.lastTradeTimestamp
}

// setReconciled applies the outcome of a status reconciliation. Running sets
// isRunning; loading leaves it untouched; stopped and error clear it.
func (in *Instance) setReconciled(category Category, errorMessage string) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.lastCategory = category
	in.lastErrorMessage = errorMessage
	switch category {
	case CategoryRunning:
		in.isRunning = true
	case CategoryLoading:
		// in-flight: keep the previous value
	default:
		in.isRunning = false
	}
}

// advanceLastTrade moves the last rendered trade timestamp forward. Zero and
// regressing timestamps are ignored.
func (in *Instance) advanceLastTrade(ts time.Time) {
	if ts.IsZero() {
		return
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	if ts.After(in.lastTradeTimestamp) {
		in.lastTradeTimestamp = ts
	}
}
