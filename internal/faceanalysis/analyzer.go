// Package faceanalysis estimates the apparent age and gender of the person in a
// booth still. Backends are a face analysis HTTP server or a vision model.
package faceanalysis

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kozaktomas/marathon-booth/internal/runner"
)

//go:embed prompts/face_analysis.txt
var faceAnalysisPrompt string

// analysisImageSize is the longest edge sent to the analysis backends.
const analysisImageSize = 800

// ErrInvalidResponse is returned when a backend answers with something that is
// not a usable detection.
var ErrInvalidResponse = errors.New("invalid face analysis response")

// Detection is the estimate for the most prominent face in a still.
type Detection struct {
	Age               float64 `json:"age"`
	Gender            string  `json:"gender"`
	GenderProbability float64 `json:"genderProbability"`
}

// AgeGroup returns the record label for the estimated age.
func (d *Detection) AgeGroup() string {
	return runner.AgeGroup(int(d.Age + 0.5))
}

// Analyzer estimates age and gender from a JPEG still.
// Analyze returns a nil detection and nil error when no face is found.
type Analyzer interface {
	Name() string
	Analyze(ctx context.Context, jpeg []byte) (*Detection, error)
}

// Usage tracks token usage and calculates cost for the vision backends.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalCost    float64 // in USD
}

// UsageReporter is implemented by analyzers that bill per token.
type UsageReporter interface {
	GetUsage() Usage
}

// UsageOf returns the accumulated usage of a, and false when a does not track
// usage or has not made a billed call yet.
func UsageOf(a Analyzer) (Usage, bool) {
	r, ok := a.(UsageReporter)
	if !ok {
		return Usage{}, false
	}
	u := r.GetUsage()
	return u, u.InputTokens > 0 || u.OutputTokens > 0
}

// RequestPricing holds input/output prices per 1M tokens
type RequestPricing struct {
	Input  float64
	Output float64
}

func (u *Usage) track(inputTokens, outputTokens int64, pricing RequestPricing) {
	u.InputTokens += int(inputTokens)
	u.OutputTokens += int(outputTokens)
	u.TotalCost += float64(inputTokens) / 1_000_000 * pricing.Input
	u.TotalCost += float64(outputTokens) / 1_000_000 * pricing.Output
}

// visionResponse is the JSON object the vision prompt asks for.
type visionResponse struct {
	FaceDetected     bool    `json:"face_detected"`
	Age              float64 `json:"age"`
	Gender           string  `json:"gender"`
	GenderConfidence float64 `json:"gender_confidence"`
}

// parseVisionResponse turns a model answer into a detection. A nil detection
// means the model saw no face.
func parseVisionResponse(content string) (*Detection, error) {
	var resp visionResponse
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &resp); err != nil {
		return nil, err
	}
	if !resp.FaceDetected {
		return nil, nil
	}
	return newDetection(resp.Age, resp.Gender, resp.GenderConfidence)
}

func newDetection(age float64, gender string, probability float64) (*Detection, error) {
	gender = strings.ToLower(strings.TrimSpace(gender))
	switch gender {
	case "m", "man":
		gender = runner.GenderMale
	case "f", "woman":
		gender = runner.GenderFemale
	}
	if !runner.ValidGender(gender) {
		return nil, fmt.Errorf("%w: unknown gender %q", ErrInvalidResponse, gender)
	}
	if age <= 0 || age > 120 {
		return nil, fmt.Errorf("%w: age %.1f out of range", ErrInvalidResponse, age)
	}
	if probability < 0 || probability > 1 {
		probability = 0
	}
	return &Detection{Age: age, Gender: gender, GenderProbability: probability}, nil
}
