package app

// Translator converts display text, defaulting to identity when no
// translation collaborator is configured. It must be total, synchronous and
// side-effect free.
type Translator func(text string) string

// IdentityTranslator returns text unchanged.
func IdentityTranslator(text string) string { return text }

// ButtonState describes the toggle affordance for one bot instance. It is
// derived purely from the status category.
type ButtonState struct {
	Label   string
	Enabled bool
}

// Surface is the capability interface a bot controller drives. It replaces
// direct DOM access so the state machine and renderer stay testable without a
// document model. Implementations must tolerate being called from the
// controller's goroutines.
type Surface interface {
	// HasToggle reports whether the surface exposes a toggle affordance.
	// Controllers skip initialization entirely when it returns false.
	HasToggle() bool

	// SetButtonState updates the toggle affordance.
	SetButtonState(state ButtonState)

	// SetStatusText updates the visible status indicator.
	SetStatusText(text string, category Category)

	// SetInputsEnabled enables or disables every configuration input of the
	// instance. Disabled inputs are the concurrency guard against
	// configuration edits while a start/stop round-trip is in flight.
	SetInputsEnabled(enabled bool)

	// SetErrorText updates the surfaced error text; empty clears it.
	SetErrorText(text string)

	// RenderRows replaces the trade table contents.
	RenderRows(rows []RenderedRow)

	// ClearRowDecay removes the decay emphasis from whichever row carries
	// it. Invoked by the renderer's one-shot decay timer.
	ClearRowDecay()
}
