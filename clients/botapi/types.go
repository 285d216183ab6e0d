package botapi

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// StatusResponse is the remote status payload shared by the status, start and
// stop endpoints. Absent fields decode to zero values.
type StatusResponse struct {
	BotStatus        string `json:"bot_status"`
	LastErrorMessage string `json:"last_error_message"`
	Error            string `json:"error"`
}

// Trade is one remote trade record. It is never mutated locally, only
// re-sorted and re-rendered.
type Trade struct {
	OrderType       string          `json:"order_type"`
	Timestamp       TradeTime       `json:"timestamp"`
	OrderDirection  string          `json:"order_direction"`
	Symbol          string          `json:"symbol"`
	Price           decimal.Decimal `json:"price"`
	Volume          decimal.Decimal `json:"volume"`
	Status          string          `json:"status"`
	ActualProfit    decimal.Decimal `json:"actual_profit"`
	ActualProfitUSD decimal.Decimal `json:"actual_profit_in_usd"`
	TradingMode     string          `json:"trading_mode"`
	Exchange        string          `json:"exchange"`
	Comment         string          `json:"comment"`
}

// tradesResponse is the envelope of the trade history endpoint.
type tradesResponse struct {
	Trades []Trade `json:"trades"`
}

// TradeTime is a lenient timestamp. The remote system emits a mix of RFC3339
// strings, "2006-01-02 15:04:05" strings and unix epoch numbers; anything
// unparseable (and null) decodes to the zero time.
type TradeTime struct {
	time.Time
}

var tradeTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *TradeTime) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}

	if !strings.HasPrefix(s, `"`) {
		// Epoch seconds, possibly fractional.
		if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
			sec := int64(f)
			nsec := int64((f - float64(sec)) * float64(time.Second))
			t.Time = time.Unix(sec, nsec).UTC()
			return nil
		}
		t.Time = time.Time{}
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range tradeTimeLayouts {
		if parsed, err := time.Parse(layout, str); err == nil {
			t.Time = parsed
			return nil
		}
	}
	t.Time = time.Time{}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t TradeTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339))
}

// BotConfig is the validated configuration submitted when starting a bot.
// The remote endpoint expects a flat JSON object, so the free-form advanced
// fields in Extra are merged into the top level on marshal.
type BotConfig struct {
	Symbol          string          `json:"symbol"`
	Timeframe       string          `json:"timeframe"`
	Amount          decimal.Decimal `json:"amount"`
	TradingMode     string          `json:"trading_mode"`
	IntervalSeconds int             `json:"interval"`
	StrategyID      string          `json:"strategy_id,omitempty"`

	// Extra carries optional advanced fields (max active trades, stop-loss
	// percentage and so on) as opaque strings. The server is their sole
	// validator.
	Extra map[string]string `json:"-"`
}

// MarshalJSON flattens Extra into the top-level object. Known fields win on
// name collisions.
func (c BotConfig) MarshalJSON() ([]byte, error) {
	type alias BotConfig
	known, err := json.Marshal(alias(c))
	if err != nil {
		return nil, err
	}

	if len(c.Extra) == 0 {
		return known, nil
	}

	flat := make(map[string]json.RawMessage, len(c.Extra)+6)
	for k, v := range c.Extra {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		flat[k] = raw
	}

	var knownFields map[string]json.RawMessage
	if err := json.Unmarshal(known, &knownFields); err != nil {
		return nil, err
	}
	for k, v := range knownFields {
		flat[k] = v
	}

	return json.Marshal(flat)
}
