package app

import "strings"

// Category is the coarse UI-facing classification of a bot's raw status
// string.
type Category string

const (
	CategoryRunning Category = "running"
	CategoryLoading Category = "loading"
	CategoryError   Category = "error"
	CategoryStopped Category = "stopped"
)

// Classify maps a raw remote status string to a category. The checks are
// case-sensitive substring tests in fixed priority order; a string matching
// none of them (including the empty string) classifies as stopped.
func Classify(raw string) Category {
	switch {
	case strings.Contains(raw, "running"):
		return CategoryRunning
	case strings.Contains(raw, "loading"):
		return CategoryLoading
	case strings.Contains(raw, "error"):
		return CategoryError
	default:
		return CategoryStopped
	}
}
