package app

import (
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"botdeck/clients/botapi"
)

// timeframeIntervals maps a timeframe label to the polling interval, in
// seconds, submitted with a start request. Labels outside the table fall back
// to defaultIntervalSeconds rather than failing.
var timeframeIntervals = map[string]int{
	"1m":  60,
	"5m":  300,
	"15m": 900,
	"30m": 1800,
	"1h":  3600,
	"4h":  14400,
	"1d":  86400,
}

const defaultIntervalSeconds = 3600

// Required configuration field names, scoped per instance.
const (
	FieldSymbol      = "symbol"
	FieldTimeframe   = "timeframe"
	FieldAmount      = "amount"
	FieldTradingMode = "trading_mode"
	FieldStrategyID  = "strategy_id"
)

// FieldSource abstracts the labeled configuration inputs of one bot
// instance. Multiple instances coexist on a panel, so names are
// instance-scoped, never global.
type FieldSource interface {
	// Value returns the current value of a named field; empty when unset.
	Value(name string) string

	// Names returns every field name currently set, in any order.
	Names() []string
}

// FieldMap is a map-backed FieldSource, safe for concurrent use.
type FieldMap struct {
	mu     sync.RWMutex
	fields map[string]string
}

// NewFieldMap creates a FieldMap seeded with the given values.
func NewFieldMap(seed map[string]string) *FieldMap {
	fields := make(map[string]string, len(seed))
	for k, v := range seed {
		fields[k] = v
	}
	return &FieldMap{fields: fields}
}

// Value implements FieldSource.
func (fm *FieldMap) Value(name string) string {
	fm.mu.RLock()
	defer fm.mu.RUnlock()
	return fm.fields[name]
}

// Names implements FieldSource.
func (fm *FieldMap) Names() []string {
	fm.mu.RLock()
	defer fm.mu.RUnlock()
	names := make([]string, 0, len(fm.fields))
	for name := range fm.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Set updates one field value.
func (fm *FieldMap) Set(name, value string) {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	fm.fields[name] = value
}

// ValidationFailure reports a locally rejected configuration. It blocks the
// start sequence before any network call and is surfaced to the user; it is a
// value, not an error, because bad input is an expected outcome.
type ValidationFailure struct {
	Message string
}

// ExtractConfig reads the instance's configuration fields, validates the
// required ones and derives the polling interval from the timeframe label.
// On failure it returns a nil config and a non-nil ValidationFailure; no
// partial config is produced.
func ExtractConfig(fields FieldSource) (*botapi.BotConfig, *ValidationFailure) {
	symbol := strings.TrimSpace(fields.Value(FieldSymbol))
	timeframe := strings.TrimSpace(fields.Value(FieldTimeframe))
	amountRaw := strings.TrimSpace(fields.Value(FieldAmount))
	tradingMode := strings.TrimSpace(fields.Value(FieldTradingMode))

	if symbol == "" || timeframe == "" || amountRaw == "" || tradingMode == "" {
		return nil, &ValidationFailure{Message: "Please fill in all configuration fields correctly."}
	}

	amount, err := decimal.NewFromString(amountRaw)
	if err != nil || amount.Sign() <= 0 {
		return nil, &ValidationFailure{Message: "Please fill in all configuration fields correctly."}
	}

	interval, ok := timeframeIntervals[timeframe]
	if !ok {
		interval = defaultIntervalSeconds
	}

	cfg := &botapi.BotConfig{
		Symbol:          symbol,
		Timeframe:       timeframe,
		Amount:          amount,
		TradingMode:     tradingMode,
		IntervalSeconds: interval,
		StrategyID:      strings.TrimSpace(fields.Value(FieldStrategyID)),
	}

	// Everything else passes through unvalidated; the server is the sole
	// validator for advanced fields.
	for _, name := range fields.Names() {
		switch name {
		case FieldSymbol, FieldTimeframe, FieldAmount, FieldTradingMode, FieldStrategyID:
			continue
		}
		value := fields.Value(name)
		if value == "" {
			continue
		}
		if cfg.Extra == nil {
			cfg.Extra = make(map[string]string)
		}
		cfg.Extra[name] = value
	}

	return cfg, nil
}
