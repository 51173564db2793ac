// Package runner holds the runner record and the small pure rules around it:
// ID generation, target time brackets, nickname normalisation and demographic
// labels.
package runner

import "time"

// Record is a registered runner as persisted by the record store.
type Record struct {
	RunnerID         string    `json:"runnerId"`
	Nickname         string    `json:"nickname"`
	Language         string    `json:"language"`
	TargetTime       string    `json:"targetTime"`
	TargetTimeNumber int       `json:"targetTimeNumber"`
	Message          string    `json:"message"`
	MessageNumber    int       `json:"messageNumber"`
	UpperPhrase      string    `json:"upperPhrase"`
	LowerPhrase      string    `json:"lowerPhrase"`
	CreatedAt        time.Time `json:"createdAt"`
	PhotoURL         string    `json:"photoUrl,omitempty"`
	AgeGroup         string    `json:"ageGroup,omitempty"`
	Gender           string    `json:"gender,omitempty"`
}

// HasCapture reports whether a photo has been attached to the record.
func (r *Record) HasCapture() bool {
	return r.PhotoURL != ""
}
