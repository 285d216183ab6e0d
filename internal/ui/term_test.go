package ui

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"botdeck/internal/app"
)

func newTestSurface() (*TermSurface, *bytes.Buffer) {
	var buf bytes.Buffer
	fields := app.NewFieldMap(map[string]string{
		"symbol":    "BTC/USD",
		"timeframe": "1h",
		"amount":    "1.5",
	})
	return NewTermSurface(&buf, "alpha", fields), &buf
}

func TestTermSurfaceShowsStatus(t *testing.T) {
	s, buf := newTestSurface()

	s.SetStatusText("Running", app.CategoryRunning)

	out := buf.String()
	if !strings.Contains(out, "Bot alpha") {
		t.Error("bot id missing from view")
	}
	if !strings.Contains(out, "Running") {
		t.Error("badge text missing from view")
	}
	if !strings.Contains(out, "BTC/USD") {
		t.Error("configuration fields missing from view")
	}
}

func TestTermSurfaceShowsButtonAndError(t *testing.T) {
	s, buf := newTestSurface()

	s.SetButtonState(app.ButtonState{Label: "Start Bot", Enabled: true})
	s.SetErrorText("Error starting bot: nope")

	out := buf.String()
	if !strings.Contains(out, "Start Bot") {
		t.Error("button label missing")
	}
	if !strings.Contains(out, "Error starting bot: nope") {
		t.Error("error text missing")
	}
}

func TestTermSurfaceRendersPlaceholder(t *testing.T) {
	s, buf := newTestSurface()

	s.RenderRows([]app.RenderedRow{{Placeholder: true, Text: "No trades found"}})

	if !strings.Contains(buf.String(), "No trades found") {
		t.Error("placeholder missing")
	}
}

func TestTermSurfaceConcurrentUpdatesKeepFramesWhole(t *testing.T) {
	s, buf := newTestSurface()

	const workers, updates = 8, 5
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < updates; j++ {
				if n%2 == 0 {
					s.SetErrorText("boom")
				} else {
					s.SetStatusText("Running", app.CategoryRunning)
				}
			}
		}(i)
	}
	wg.Wait()

	// Every frame carries the title exactly once; interleaved partial
	// frames would break the count.
	if got := strings.Count(buf.String(), "Bot alpha"); got != workers*updates {
		t.Errorf("whole frames = %d, want %d", got, workers*updates)
	}
}

func TestTermSurfaceClearRowDecay(t *testing.T) {
	s, buf := newTestSurface()

	s.RenderRows([]app.RenderedRow{{
		Symbol:    "BTC/USD",
		Highlight: app.HighlightNew,
		Decay:     true,
		NewBadge:  "New",
	}})
	if !strings.Contains(buf.String(), "[New]") {
		t.Fatal("new badge missing before decay")
	}

	buf.Reset()
	s.ClearRowDecay()

	out := buf.String()
	if strings.Contains(out, "[New]") {
		t.Error("new badge survived decay")
	}
	if !strings.Contains(out, "BTC/USD") {
		t.Error("row disappeared on decay")
	}
}
