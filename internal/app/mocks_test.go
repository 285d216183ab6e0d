package app

import (
	"context"
	"sync"

	"botdeck/clients/botapi"
)

// mockSurface records every call so tests can assert both content and the
// order side effects were applied in.
type mockSurface struct {
	mu sync.Mutex

	noToggle bool

	calls            []string
	buttonStates     []ButtonState
	statusTexts      []string
	statusCategories []Category
	inputsEnabled    []bool
	errorTexts       []string
	rendered         [][]RenderedRow
	decayCleared     int
}

func (m *mockSurface) HasToggle() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.noToggle
}

func (m *mockSurface) SetButtonState(s ButtonState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "button")
	m.buttonStates = append(m.buttonStates, s)
}

func (m *mockSurface) SetStatusText(text string, category Category) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "status")
	m.statusTexts = append(m.statusTexts, text)
	m.statusCategories = append(m.statusCategories, category)
}

func (m *mockSurface) SetInputsEnabled(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "inputs")
	m.inputsEnabled = append(m.inputsEnabled, enabled)
}

func (m *mockSurface) SetErrorText(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "error")
	m.errorTexts = append(m.errorTexts, text)
}

func (m *mockSurface) RenderRows(rows []RenderedRow) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "rows")
	m.rendered = append(m.rendered, rows)
}

func (m *mockSurface) ClearRowDecay() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "clear")
	m.decayCleared++
}

func (m *mockSurface) lastRows() []RenderedRow {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.rendered) == 0 {
		return nil
	}
	return m.rendered[len(m.rendered)-1]
}

func (m *mockSurface) lastButton() (ButtonState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.buttonStates) == 0 {
		return ButtonState{}, false
	}
	return m.buttonStates[len(m.buttonStates)-1], true
}

func (m *mockSurface) lastInputsEnabled() (bool, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.inputsEnabled) == 0 {
		return false, false
	}
	return m.inputsEnabled[len(m.inputsEnabled)-1], true
}

func (m *mockSurface) lastError() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.errorTexts) == 0 {
		return "", false
	}
	return m.errorTexts[len(m.errorTexts)-1], true
}

func (m *mockSurface) callLog() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// mockBotAPI is a programmable stand-in for the bot HTTP client.
type mockBotAPI struct {
	mu sync.Mutex

	statusResp *botapi.StatusResponse
	statusErr  error
	startResp  *botapi.StatusResponse
	startErr   error
	stopResp   *botapi.StatusResponse
	stopErr    error
	trades     []botapi.Trade
	tradesErr  error

	statusCalls int
	startCalls  int
	stopCalls   int
	tradesCalls int

	startConfigs []botapi.BotConfig

	// release, when set, is received from before Start/Stop return so tests
	// can hold a toggle in flight.
	release chan struct{}
}

func (m *mockBotAPI) GetStatus(ctx context.Context, botID string) (*botapi.StatusResponse, error) {
	m.mu.Lock()
	m.statusCalls++
	resp, err := m.statusResp, m.statusErr
	m.mu.Unlock()
	if resp == nil {
		resp = &botapi.StatusResponse{}
	}
	return resp, err
}

func (m *mockBotAPI) StartBot(ctx context.Context, botID string, cfg botapi.BotConfig) (*botapi.StatusResponse, error) {
	m.mu.Lock()
	m.startCalls++
	m.startConfigs = append(m.startConfigs, cfg)
	resp, err, release := m.startResp, m.startErr, m.release
	m.mu.Unlock()
	if release != nil {
		<-release
	}
	if resp == nil {
		resp = &botapi.StatusResponse{}
	}
	return resp, err
}

func (m *mockBotAPI) StopBot(ctx context.Context, botID string) (*botapi.StatusResponse, error) {
	m.mu.Lock()
	m.stopCalls++
	resp, err, release := m.stopResp, m.stopErr, m.release
	m.mu.Unlock()
	if release != nil {
		<-release
	}
	if resp == nil {
		resp = &botapi.StatusResponse{}
	}
	return resp, err
}

func (m *mockBotAPI) GetTrades(ctx context.Context, botID string) ([]botapi.Trade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tradesCalls++
	return m.trades, m.tradesErr
}

func (m *mockBotAPI) counts() (status, start, stop, trades int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statusCalls, m.startCalls, m.stopCalls, m.tradesCalls
}
