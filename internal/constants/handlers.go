// Package constants provides shared constants used across the codebase.
package constants

import "time"

// Handler constants
const (
	// MaxUploadSize is the maximum size for file uploads (20 MB)
	MaxUploadSize = 20 << 20

	// MaxJSONBodySize is the maximum size of a JSON request body (64 KB)
	MaxJSONBodySize = 64 << 10

	// MaxRunnerListLimit caps the limit query parameter of the runner list
	MaxRunnerListLimit = 500
)

// Session lifetime constants
const (
	// DraftTTL is how long an idle registration draft is kept
	DraftTTL = 30 * time.Minute

	// BoothSessionTTL is how long an idle booth session is kept before its camera is released
	BoothSessionTTL = 2 * time.Hour

	// SessionSweepInterval is how often idle drafts and booth sessions are swept
	SessionSweepInterval = time.Minute

	// StaffSessionTTL is how long a staff login cookie stays valid
	StaffSessionTTL = 12 * time.Hour
)
