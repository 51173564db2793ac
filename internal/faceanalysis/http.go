package faceanalysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/kozaktomas/marathon-booth/internal/camera"
)

const defaultAnalysisURL = "http://localhost:8000"

// HTTPAnalyzer calls a face analysis server that accepts a multipart image on
// /analyze/face and returns every face it found.
type HTTPAnalyzer struct {
	baseURL string
	client  *http.Client
}

// NewHTTPAnalyzer creates a new face analysis client
func NewHTTPAnalyzer(baseURL string) *HTTPAnalyzer {
	if baseURL == "" {
		baseURL = defaultAnalysisURL
	}
	return &HTTPAnalyzer{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// faceResponse represents the response from the face analysis server
type faceResponse struct {
	Faces []struct {
		Age               float64   `json:"age"`
		Gender            string    `json:"gender"`
		GenderProbability float64   `json:"gender_probability"`
		DetScore          float64   `json:"det_score"`
		BBox              []float64 `json:"bbox"`
	} `json:"faces"`
}

func (a *HTTPAnalyzer) Name() string {
	return "http"
}

// postMultipartImage posts the image as the "file" form field to the given endpoint.
func (a *HTTPAnalyzer) postMultipartImage(ctx context.Context, endpoint string, imageData []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", "still.jpg")
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(imageData); err != nil {
		return nil, fmt.Errorf("failed to write image data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// Analyze sends the still to the server and keeps the face with the highest
// detection score.
func (a *HTTPAnalyzer) Analyze(ctx context.Context, jpeg []byte) (*Detection, error) {
	data, err := camera.NormalizeStill(jpeg, analysisImageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to resize image: %w", err)
	}

	body, err := a.postMultipartImage(ctx, "/analyze/face", data)
	if err != nil {
		return nil, err
	}

	var resp faceResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(resp.Faces) == 0 {
		return nil, nil
	}

	best := resp.Faces[0]
	for _, f := range resp.Faces[1:] {
		if f.DetScore > best.DetScore {
			best = f
		}
	}
	return newDetection(best.Age, best.Gender, best.GenderProbability)
}
