// Package ui renders bot widgets to a terminal with lipgloss styling. It is
// the default Surface implementation; the core never depends on it.
package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"botdeck/internal/app"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63"))

	borderStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	newRowStyle    = lipgloss.NewStyle().Background(lipgloss.Color("22"))
	recentRowStyle = lipgloss.NewStyle().Background(lipgloss.Color("236"))

	buttonStyle         = lipgloss.NewStyle().Bold(true).Padding(0, 2)
	buttonDisabledStyle = buttonStyle.Foreground(lipgloss.Color("240"))
)

// TermSurface is a terminal widget for one bot. Every state change triggers
// a full redraw to the writer; the writer decides how frames are displayed.
type TermSurface struct {
	mu  sync.Mutex
	out io.Writer

	botID  string
	fields *app.FieldMap

	button        app.ButtonState
	badge         string
	category      app.Category
	inputsEnabled bool
	errorText     string
	rows          []app.RenderedRow
}

// NewTermSurface creates a widget for one bot id. fields backs the widget's
// configuration inputs.
func NewTermSurface(out io.Writer, botID string, fields *app.FieldMap) *TermSurface {
	return &TermSurface{
		out:           out,
		botID:         botID,
		fields:        fields,
		inputsEnabled: true,
	}
}

func (s *TermSurface) HasToggle() bool { return true }

func (s *TermSurface) SetButtonState(state app.ButtonState) {
	s.mu.Lock()
	s.button = state
	s.mu.Unlock()
	s.redraw()
}

func (s *TermSurface) SetStatusText(text string, category app.Category) {
	s.mu.Lock()
	s.badge = text
	s.category = category
	s.mu.Unlock()
	s.redraw()
}

func (s *TermSurface) SetInputsEnabled(enabled bool) {
	s.mu.Lock()
	s.inputsEnabled = enabled
	s.mu.Unlock()
	s.redraw()
}

func (s *TermSurface) SetErrorText(text string) {
	s.mu.Lock()
	s.errorText = text
	s.mu.Unlock()
	s.redraw()
}

func (s *TermSurface) RenderRows(rows []app.RenderedRow) {
	s.mu.Lock()
	s.rows = rows
	s.mu.Unlock()
	s.redraw()
}

// ClearRowDecay drops the transient emphasis from whichever row carries it
// and redraws.
func (s *TermSurface) ClearRowDecay() {
	s.mu.Lock()
	for i := range s.rows {
		if s.rows[i].Decay {
			s.rows[i].Decay = false
			s.rows[i].NewBadge = ""
			s.rows[i].Highlight = app.HighlightNone
		}
	}
	s.mu.Unlock()
	s.redraw()
}

// redraw writes the frame while still holding the lock so concurrent state
// changes cannot interleave partial frames on the shared writer.
func (s *TermSurface) redraw() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.out, s.view())
}

// view assembles the widget. Caller holds the lock.
func (s *TermSurface) view() string {
	var sections []string

	badge := badgeStyle(s.category).Render(s.badge)
	sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render("Bot "+s.botID), "  ", badge))

	btn := buttonStyle
	if !s.button.Enabled {
		btn = buttonDisabledStyle
	}
	sections = append(sections, btn.Render("[ "+s.button.Label+" ]"))

	sections = append(sections, s.fieldLines())

	if s.errorText != "" {
		sections = append(sections, errorStyle.Render(s.errorText))
	}

	sections = append(sections, s.tradeLines())

	return borderStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (s *TermSurface) fieldLines() string {
	style := lipgloss.NewStyle()
	if !s.inputsEnabled {
		style = mutedStyle
	}

	var b strings.Builder
	for _, name := range s.fields.Names() {
		fmt.Fprintf(&b, "%-14s %s\n", name+":", s.fields.Value(name))
	}
	return style.Render(strings.TrimRight(b.String(), "\n"))
}

func (s *TermSurface) tradeLines() string {
	if len(s.rows) == 1 && s.rows[0].Placeholder {
		return mutedStyle.Render(s.rows[0].Text)
	}

	var lines []string
	for _, row := range s.rows {
		lines = append(lines, renderRow(row))
	}
	return strings.Join(lines, "\n")
}

func renderRow(row app.RenderedRow) string {
	cells := []string{
		row.Time,
		toneStyle(row.DirectionTone).Render(row.Direction),
		row.Symbol,
		row.Price,
		row.Volume,
		toneStyle(row.StatusTone).Render(row.Status),
		toneStyle(row.ProfitTone).Render(row.Profit),
		toneStyle(row.ProfitUSDTone).Render(row.ProfitUSD),
		row.TradingMode,
		row.Exchange,
		row.Comment,
	}
	line := strings.Join(cells, "  ")

	switch row.Highlight {
	case app.HighlightNew:
		line = newRowStyle.Render(line)
		if row.NewBadge != "" {
			line += " " + successStyle.Render("["+row.NewBadge+"]")
		}
	case app.HighlightSoft:
		line = recentRowStyle.Render(line)
	}
	return line
}

func toneStyle(tone app.Tone) lipgloss.Style {
	switch tone {
	case app.TonePositive:
		return successStyle
	case app.ToneNegative:
		return errorStyle
	case app.ToneMuted:
		return mutedStyle
	default:
		return lipgloss.NewStyle()
	}
}

func badgeStyle(category app.Category) lipgloss.Style {
	switch category {
	case app.CategoryRunning:
		return successStyle.Bold(true)
	case app.CategoryLoading:
		return warningStyle.Bold(true)
	case app.CategoryError:
		return errorStyle.Bold(true)
	default:
		return mutedStyle.Bold(true)
	}
}
