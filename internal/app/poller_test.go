package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"botdeck/clients/botapi"
)

func newTestPoller(api *mockBotAPI, surface *mockSurface, fields FieldSource) (*StatusPoller, *Instance) {
	if fields == nil {
		fields = validFields()
	}
	instance := NewInstance("bot-1")
	return NewStatusPoller(nil, api, instance, surface, fields, nil), instance
}

func TestFetchStatusReconcilesRunning(t *testing.T) {
	api := &mockBotAPI{statusResp: &botapi.StatusResponse{BotStatus: "bot is running"}}
	surface := &mockSurface{}
	p, instance := newTestPoller(api, surface, nil)

	category := p.FetchStatus(context.Background())

	if category != CategoryRunning {
		t.Fatalf("category = %v", category)
	}
	if !instance.IsRunning() {
		t.Error("isRunning not set after running reconciliation")
	}
	if enabled, ok := surface.lastInputsEnabled(); !ok || enabled {
		t.Error("inputs should be disabled while running")
	}
	if btn, ok := surface.lastButton(); !ok || btn.Label != "Stop Bot" || !btn.Enabled {
		t.Errorf("button = %+v", btn)
	}
}

func TestFetchStatusTransportFailure(t *testing.T) {
	api := &mockBotAPI{statusErr: errors.New("connection refused")}
	surface := &mockSurface{}
	p, instance := newTestPoller(api, surface, nil)

	category := p.FetchStatus(context.Background())

	if category != CategoryError {
		t.Fatalf("category = %v", category)
	}
	if msg, _ := surface.lastError(); msg != "Error fetching bot status" {
		t.Errorf("error text = %q", msg)
	}
	if enabled, _ := surface.lastInputsEnabled(); !enabled {
		t.Error("inputs must be re-enabled after a fetch failure")
	}
	if instance.IsRunning() {
		t.Error("fetch failure flipped isRunning on")
	}
}

func TestReconcileSideEffectOrder(t *testing.T) {
	api := &mockBotAPI{statusResp: &botapi.StatusResponse{BotStatus: "running"}}
	surface := &mockSurface{}
	p, _ := newTestPoller(api, surface, nil)

	p.FetchStatus(context.Background())

	want := []string{"inputs", "button", "status", "error"}
	got := surface.callLog()
	if len(got) != len(want) {
		t.Fatalf("call log = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("call log = %v, want %v", got, want)
		}
	}
}

func TestToggleStartsStoppedBot(t *testing.T) {
	api := &mockBotAPI{startResp: &botapi.StatusResponse{BotStatus: "running"}}
	surface := &mockSurface{}
	p, instance := newTestPoller(api, surface, nil)

	p.Toggle(context.Background())

	if !instance.IsRunning() {
		t.Fatal("bot not running after successful start")
	}
	_, starts, stops, _ := api.counts()
	if starts != 1 || stops != 0 {
		t.Errorf("start/stop calls = %d/%d", starts, stops)
	}
	if cfgs := api.startConfigs; len(cfgs) != 1 || cfgs[0].Symbol != "BTC/USD" {
		t.Errorf("submitted config = %+v", cfgs)
	}
	if enabled, _ := surface.lastInputsEnabled(); enabled {
		t.Error("inputs enabled while running")
	}
	if msg, _ := surface.lastError(); msg != "" {
		t.Errorf("error text not cleared: %q", msg)
	}
}

func TestToggleStopsRunningBot(t *testing.T) {
	api := &mockBotAPI{
		statusResp: &botapi.StatusResponse{BotStatus: "running"},
		stopResp:   &botapi.StatusResponse{BotStatus: "stopped"},
	}
	surface := &mockSurface{}
	p, instance := newTestPoller(api, surface, nil)
	p.FetchStatus(context.Background())

	p.Toggle(context.Background())

	if instance.IsRunning() {
		t.Fatal("bot still running after stop")
	}
	_, starts, stops, _ := api.counts()
	if starts != 0 || stops != 1 {
		t.Errorf("start/stop calls = %d/%d", starts, stops)
	}
}

func TestToggleIgnoredWhileLoading(t *testing.T) {
	release := make(chan struct{})
	api := &mockBotAPI{
		startResp: &botapi.StatusResponse{BotStatus: "running"},
		release:   release,
	}
	surface := &mockSurface{}
	p, instance := newTestPoller(api, surface, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		p.Toggle(context.Background())
	}()

	deadline := time.After(time.Second)
	for instance.Category() != CategoryLoading {
		select {
		case <-deadline:
			t.Fatal("first toggle never reached loading")
		case <-time.After(time.Millisecond):
		}
	}

	// Second and third toggles arrive mid-flight and must be no-ops.
	p.Toggle(context.Background())
	p.Toggle(context.Background())

	close(release)
	wg.Wait()

	_, starts, stops, _ := api.counts()
	if starts != 1 {
		t.Errorf("start calls = %d, want 1", starts)
	}
	if stops != 0 {
		t.Errorf("stop calls = %d, want 0", stops)
	}
	if !instance.IsRunning() {
		t.Error("first toggle's outcome was lost")
	}
}

func TestStartRemoteRejection(t *testing.T) {
	api := &mockBotAPI{startResp: &botapi.StatusResponse{
		BotStatus: "stopped",
		Error:     "insufficient balance",
	}}
	surface := &mockSurface{}
	p, instance := newTestPoller(api, surface, nil)

	p.Toggle(context.Background())

	if instance.IsRunning() {
		t.Error("rejected start left isRunning true")
	}
	if instance.Category() != CategoryError {
		t.Errorf("category = %v", instance.Category())
	}
	if msg, _ := surface.lastError(); msg != "Error starting bot: insufficient balance" {
		t.Errorf("error text = %q", msg)
	}
	if enabled, _ := surface.lastInputsEnabled(); !enabled {
		t.Error("inputs must be re-enabled after rejection")
	}
}

func TestStartTransportFailure(t *testing.T) {
	api := &mockBotAPI{startErr: errors.New("dial tcp: timeout")}
	surface := &mockSurface{}
	p, instance := newTestPoller(api, surface, nil)

	p.Toggle(context.Background())

	if instance.Category() != CategoryError {
		t.Errorf("category = %v", instance.Category())
	}
	if msg, _ := surface.lastError(); msg != "Error starting trading bot" {
		t.Errorf("error text = %q", msg)
	}
	if enabled, _ := surface.lastInputsEnabled(); !enabled {
		t.Error("inputs must be re-enabled so the user can retry")
	}
}

func TestStopTransportFailure(t *testing.T) {
	api := &mockBotAPI{
		statusResp: &botapi.StatusResponse{BotStatus: "running"},
		stopErr:    errors.New("dial tcp: timeout"),
	}
	surface := &mockSurface{}
	p, instance := newTestPoller(api, surface, nil)
	p.FetchStatus(context.Background())

	p.Toggle(context.Background())

	if instance.Category() != CategoryError {
		t.Errorf("category = %v", instance.Category())
	}
	if msg, _ := surface.lastError(); msg != "Error stopping trading bot" {
		t.Errorf("error text = %q", msg)
	}
	if enabled, _ := surface.lastInputsEnabled(); !enabled {
		t.Error("inputs must be re-enabled so the user can retry")
	}
}

func TestStartValidationFailureSkipsNetwork(t *testing.T) {
	api := &mockBotAPI{}
	surface := &mockSurface{}
	fields := NewFieldMap(map[string]string{"symbol": "", "timeframe": "5m", "amount": "1"})
	p, instance := newTestPoller(api, surface, fields)

	p.Toggle(context.Background())

	_, starts, stops, _ := api.counts()
	if starts != 0 || stops != 0 {
		t.Fatalf("network calls made despite invalid configuration: %d/%d", starts, stops)
	}
	if instance.Category() != CategoryStopped {
		t.Errorf("category = %v, want stopped", instance.Category())
	}
	if msg, _ := surface.lastError(); msg == "" {
		t.Error("validation message not surfaced")
	}
	if enabled, _ := surface.lastInputsEnabled(); !enabled {
		t.Error("inputs must stay enabled after a blocked start")
	}
}

func TestStopRemoteRejection(t *testing.T) {
	api := &mockBotAPI{
		statusResp: &botapi.StatusResponse{BotStatus: "running"},
		stopResp: &botapi.StatusResponse{
			BotStatus: "running",
			Error:     "shutdown already in progress",
		},
	}
	surface := &mockSurface{}
	p, instance := newTestPoller(api, surface, nil)
	p.FetchStatus(context.Background())

	p.Toggle(context.Background())

	if instance.Category() != CategoryError {
		t.Errorf("category = %v", instance.Category())
	}
	if msg, _ := surface.lastError(); msg != "Error stopping bot: shutdown already in progress" {
		t.Errorf("error text = %q", msg)
	}
}
