package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHealthCheck(t *testing.T) {
	recorder := httptest.NewRecorder()
	HealthCheck(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	assertStatusCode(t, recorder, http.StatusOK)
	assertContentType(t, recorder, "application/json")

	var result map[string]string
	parseJSONResponse(t, recorder, &result)
	if result["status"] != "ok" {
		t.Errorf("expected status ok, got %q", result["status"])
	}
}

func TestSanitizeForLog(t *testing.T) {
	if got := sanitizeForLog("Aki\r\nINFO fake"); got != "AkiINFO fake" {
		t.Errorf("unexpected sanitized value %q", got)
	}
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}

	recorder := httptest.NewRecorder()
	if err := decodeJSON(recorder, jsonRequest(http.MethodPost, "/", `{"name":"x"}`), &dst, false); err != nil || dst.Name != "x" {
		t.Errorf("expected decoded body, got %v %+v", err, dst)
	}

	if err := decodeJSON(recorder, jsonRequest(http.MethodPost, "/", ""), &dst, true); err != nil {
		t.Errorf("empty body should be allowed: %v", err)
	}
	if err := decodeJSON(recorder, jsonRequest(http.MethodPost, "/", ""), &dst, false); err == nil {
		t.Error("empty body should be rejected")
	}

	huge := `{"name":"` + strings.Repeat("a", 70<<10) + `"}`
	if err := decodeJSON(recorder, jsonRequest(http.MethodPost, "/", huge), &dst, false); err == nil {
		t.Error("oversized body should be rejected")
	}
}
