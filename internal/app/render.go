package app

import (
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"botdeck/clients/botapi"
)

// Tone is a display-only color hint derived purely from a row's fields.
type Tone int

const (
	ToneNeutral Tone = iota
	TonePositive
	ToneNegative
	ToneMuted
)

// Highlight marks how strongly a row is emphasized at render time. It is
// recomputed fresh every render, never carried as persistent row state.
type Highlight int

const (
	HighlightNone Highlight = iota
	// HighlightSoft marks trades still inside the highlight window that are
	// not the newest row.
	HighlightSoft
	// HighlightNew marks the newest row when this render detected a new
	// trade.
	HighlightNew
)

const commentDisplayLimit = 15

// RenderedRow is one trade table row with its display decorations. All
// decoration fields are pure functions of the trade's fields.
type RenderedRow struct {
	// Placeholder rows replace the table body when there are no trades.
	Placeholder bool
	Text        string

	OrderType     string
	Time          string
	Direction     string
	DirectionTone Tone
	Symbol        string
	Price         string
	Volume        string
	Status        string
	StatusTone    Tone
	Profit        string
	ProfitTone    Tone
	ProfitUSD     string
	ProfitUSDTone Tone
	TradingMode   string
	Exchange      string

	// Comment is truncated for display; CommentFull backs the hover
	// affordance when truncation happened.
	Comment     string
	CommentFull string

	Highlight Highlight
	// Decay marks the row carrying the transient emphasis that the
	// renderer's one-shot timer clears.
	Decay    bool
	NewBadge string
}

// BuildRows produces the time-sorted, decorated table view of a trade list.
// The input is never mutated; ties keep their original relative order. The
// returned newLast only ever advances past previousLast, and only on positive
// timestamps. hasNew reports whether this render observed a trade newer than
// previousLast (which requires previousLast to be set: the very first render
// never counts as new).
func BuildRows(trades []botapi.Trade, previousLast time.Time, now time.Time, highlightWindow time.Duration, translate Translator) (rows []RenderedRow, newLast time.Time, hasNew bool) {
	if translate == nil {
		translate = IdentityTranslator
	}

	if len(trades) == 0 {
		return []RenderedRow{{Placeholder: true, Text: translate("No trades found")}}, previousLast, false
	}

	sorted := make([]botapi.Trade, len(trades))
	copy(sorted, trades)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp.Time)
	})

	newestTs := sorted[0].Timestamp.Time
	hasNew = !previousLast.IsZero() && newestTs.After(previousLast)

	newLast = previousLast
	if !newestTs.IsZero() && newestTs.After(previousLast) {
		newLast = newestTs
	}

	rows = make([]RenderedRow, 0, len(sorted))
	for i, trade := range sorted {
		row := decorate(trade, translate)

		isNewest := i == 0
		ts := trade.Timestamp.Time
		isRecent := !ts.IsZero() && now.Sub(ts) < highlightWindow

		if isNewest && hasNew {
			row.Highlight = HighlightNew
			row.Decay = true
			row.NewBadge = translate("New")
		} else if isRecent && !isNewest {
			row.Highlight = HighlightSoft
		}

		rows = append(rows, row)
	}

	return rows, newLast, hasNew
}

// decorate derives the display-only fields of one row.
func decorate(trade botapi.Trade, translate Translator) RenderedRow {
	row := RenderedRow{
		OrderType:   nz(trade.OrderType, "N/A"),
		Symbol:      trade.Symbol,
		Price:       trade.Price.StringFixed(2),
		Volume:      trade.Volume.StringFixed(4),
		Status:      trade.Status,
		Profit:      trade.ActualProfit.String(),
		ProfitUSD:   trade.ActualProfitUSD.String() + "$",
		TradingMode: trade.TradingMode,
		Exchange:    trade.Exchange,
	}

	if trade.Timestamp.IsZero() {
		row.Time = translate("N/A")
	} else {
		row.Time = trade.Timestamp.Format("2006-01-02 15:04:05")
	}

	row.Direction = strings.ToUpper(trade.OrderDirection)
	if trade.OrderDirection == "buy" {
		row.DirectionTone = TonePositive
	} else {
		row.DirectionTone = ToneNegative
	}

	if trade.Status == "closed" {
		row.StatusTone = ToneMuted
	} else {
		row.StatusTone = TonePositive
	}

	if trade.ActualProfit.Sign() > 0 {
		row.ProfitTone = TonePositive
	} else {
		row.ProfitTone = ToneNegative
	}
	if trade.ActualProfitUSD.Sign() > 0 {
		row.ProfitUSDTone = TonePositive
	} else {
		row.ProfitUSDTone = ToneNegative
	}

	row.CommentFull = trade.Comment
	if runes := []rune(trade.Comment); len(runes) > commentDisplayLimit {
		row.Comment = string(runes[:commentDisplayLimit]) + "..."
	} else {
		row.Comment = trade.Comment
	}

	return row
}

// TradeRenderer pushes rendered trade tables to a surface and owns the
// one-shot decay timer, so repeated renders never leak timers.
type TradeRenderer struct {
	logger    *zap.Logger
	surface   Surface
	translate Translator

	mu              sync.Mutex
	highlightWindow time.Duration
	decayAnimation  time.Duration
	decayTimer      *time.Timer

	// now is a test hook.
	now func() time.Time
}

// NewTradeRenderer creates a renderer bound to one surface.
func NewTradeRenderer(logger *zap.Logger, surface Surface, translate Translator, highlightWindow, decayAnimation time.Duration) *TradeRenderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if translate == nil {
		translate = IdentityTranslator
	}
	return &TradeRenderer{
		logger:          logger,
		surface:         surface,
		translate:       translate,
		highlightWindow: highlightWindow,
		decayAnimation:  decayAnimation,
		now:             time.Now,
	}
}

// Render builds and pushes the table, returning the advanced last-trade
// timestamp and whether a new trade was detected. When it was, a fresh decay
// timer is armed; any previous one is cancelled first.
func (r *TradeRenderer) Render(trades []botapi.Trade, previousLast time.Time) (newLast time.Time, hasNew bool) {
	r.mu.Lock()
	window := r.highlightWindow
	decay := r.decayAnimation
	r.mu.Unlock()

	rows, newLast, hasNew := BuildRows(trades, previousLast, r.now(), window, r.translate)
	r.surface.RenderRows(rows)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.decayTimer != nil {
		r.decayTimer.Stop()
		r.decayTimer = nil
	}
	if hasNew {
		r.decayTimer = time.AfterFunc(decay, r.surface.ClearRowDecay)
	}

	return newLast, hasNew
}

// SetTuning updates the highlight window and decay animation durations.
func (r *TradeRenderer) SetTuning(highlightWindow, decayAnimation time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if highlightWindow > 0 {
		r.highlightWindow = highlightWindow
	}
	if decayAnimation > 0 {
		r.decayAnimation = decayAnimation
	}
}

// Close cancels any pending decay timer.
func (r *TradeRenderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.decayTimer != nil {
		r.decayTimer.Stop()
		r.decayTimer = nil
	}
}
