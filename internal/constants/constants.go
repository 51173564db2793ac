// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

import "time"

// Capture session constants
const (
	// DefaultCountdownTicks is the number of countdown ticks before a still is taken
	DefaultCountdownTicks = 5

	// DefaultTickInterval is the time between countdown ticks
	DefaultTickInterval = time.Second

	// DefaultProcessingDelay is how long the booth shows the processing screen
	DefaultProcessingDelay = 3 * time.Second

	// MaxStillSize is the maximum dimension (width or height) of a published still
	MaxStillSize = 1920
)

// Event streaming constants
const (
	// EventChannelBuffer is the buffer size for SSE event channels
	EventChannelBuffer = 100
)
