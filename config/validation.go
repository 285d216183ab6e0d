package config

import (
	"fmt"
	"strings"
	"time"
)

// ValidationError represents a validation error for a specific field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult holds the result of config validation.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// ConfigValidationError wraps validation errors for error returns.
type ConfigValidationError struct {
	Errors []ValidationError
}

func (e *ConfigValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "config validation failed"
	}
	parts := make([]string, len(e.Errors))
	for i, ve := range e.Errors {
		parts[i] = fmt.Sprintf("%s: %s", ve.Field, ve.Message)
	}
	return "config validation failed: " + strings.Join(parts, "; ")
}

// Validate checks the config for invalid values.
func (c *Config) Validate() ValidationResult {
	var errors []ValidationError

	errors = append(errors, validateAPI(&c.API)...)
	errors = append(errors, validatePanel(&c.Panel)...)
	errors = append(errors, validateStatsServer(&c.StatsServer)...)

	return ValidationResult{
		Valid:  len(errors) == 0,
		Errors: errors,
	}
}

func validateAPI(a *APIConfig) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(a.BaseURL) == "" {
		errors = append(errors, ValidationError{
			Field:   "api.base_url",
			Message: "must not be empty",
		})
	}

	if a.Timeout < 1*time.Second {
		errors = append(errors, ValidationError{
			Field:   "api.timeout",
			Message: "must be at least 1 second",
		})
	}

	return errors
}

func validatePanel(p *PanelConfig) []ValidationError {
	var errors []ValidationError

	if p.RefreshInterval < 1*time.Second {
		errors = append(errors, ValidationError{
			Field:   "panel.refresh_interval",
			Message: "must be at least 1 second",
		})
	}

	if p.HighlightWindow <= 0 {
		errors = append(errors, ValidationError{
			Field:   "panel.highlight_window",
			Message: "must be positive",
		})
	}

	if p.DecayAnimation <= 0 {
		errors = append(errors, ValidationError{
			Field:   "panel.decay_animation",
			Message: "must be positive",
		})
	}

	if p.DecayAnimation > p.HighlightWindow {
		errors = append(errors, ValidationError{
			Field:   "panel.decay_animation",
			Message: "must not exceed panel.highlight_window",
		})
	}

	seen := make(map[string]bool, len(p.Bots))
	for i, b := range p.Bots {
		if b.ID == "" {
			continue // assigned at startup
		}
		if seen[b.ID] {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("panel.bots[%d].id", i),
				Message: "duplicate instance id " + b.ID,
			})
		}
		seen[b.ID] = true
	}

	return errors
}

func validateStatsServer(s *StatsServerConfig) []ValidationError {
	var errors []ValidationError

	if s.Enabled && (s.Port < 1 || s.Port > 65535) {
		errors = append(errors, ValidationError{
			Field:   "stats_server.port",
			Message: "must be a valid port number",
		})
	}

	return errors
}
