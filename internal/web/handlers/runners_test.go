package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kozaktomas/marathon-booth/internal/database"
	"github.com/kozaktomas/marathon-booth/internal/database/mock"
	"github.com/kozaktomas/marathon-booth/internal/messages"
	"github.com/kozaktomas/marathon-booth/internal/runner"
)

func TestRunnersHandler_Create(t *testing.T) {
	store := mock.NewMockRunnerStore()
	store.SetIDGenerator(func() string { return "04213" })
	handler := NewRunnersHandler(store, messages.Default(), firstPick{})

	body := `{"nickname": " Taro ", "language": "en", "targetTime": "12:30:00", "messageNumber": 2}`
	recorder := httptest.NewRecorder()
	handler.Create(recorder, jsonRequest(http.MethodPost, "/api/v1/runners", body))

	assertStatusCode(t, recorder, http.StatusCreated)

	var resp createRunnerResponse
	parseJSONResponse(t, recorder, &resp)
	if !resp.Success || resp.RunnerID != "04213" {
		t.Fatalf("unexpected response %+v", resp)
	}

	stored, _ := store.Get(context.Background(), "04213")
	if stored == nil {
		t.Fatal("expected runner in store")
	}
	table, _ := messages.Default().Table(messages.LocaleEN)
	if stored.Nickname != "Taro" || stored.TargetTimeNumber != 3 || stored.TargetTime != "12:30:00" {
		t.Errorf("unexpected stored record %+v", stored)
	}
	if stored.UpperPhrase != table.Messages[1].Initial[0] || stored.LowerPhrase != table.Messages[1].Time[2][0] {
		t.Errorf("phrases should be generated server-side, got %q / %q", stored.UpperPhrase, stored.LowerPhrase)
	}
}

func TestRunnersHandler_Create_SuppliedPhrasesAndBracket(t *testing.T) {
	store := mock.NewMockRunnerStore()
	handler := NewRunnersHandler(store, messages.Default(), firstPick{})

	body := `{"nickname": "花子", "language": "ja", "targetTime": "ignored label", "targetTimeNumber": 2,
		"messageNumber": 1, "upperPhrase": "がんばれ", "lowerPhrase": "完走!"}`
	recorder := httptest.NewRecorder()
	handler.Create(recorder, jsonRequest(http.MethodPost, "/api/v1/runners", body))
	assertStatusCode(t, recorder, http.StatusCreated)

	var resp createRunnerResponse
	parseJSONResponse(t, recorder, &resp)
	if resp.Record.UpperPhrase != "がんばれ" || resp.Record.LowerPhrase != "完走!" {
		t.Errorf("supplied phrases should be kept, got %+v", resp.Record)
	}
	if resp.Record.TargetTimeNumber != 2 {
		t.Errorf("expected bracket 2, got %d", resp.Record.TargetTimeNumber)
	}
}

func TestRunnersHandler_Create_Validation(t *testing.T) {
	handler := NewRunnersHandler(mock.NewMockRunnerStore(), messages.Default(), nil)

	recorder := httptest.NewRecorder()
	handler.Create(recorder, jsonRequest(http.MethodPost, "/api/v1/runners", `{"nickname": "", "language": "en", "targetTime": "03:00:00", "messageNumber": 9}`))
	assertStatusCode(t, recorder, http.StatusBadRequest)

	var resp validationResponse
	parseJSONResponse(t, recorder, &resp)
	if resp.Error != "invalid registration" || len(resp.Fields) != 2 {
		t.Errorf("expected two field errors, got %+v", resp)
	}

	recorder = httptest.NewRecorder()
	handler.Create(recorder, jsonRequest(http.MethodPost, "/api/v1/runners", `not json`))
	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, errInvalidRequestBody)
}

func TestRunnersHandler_Create_StoreErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"transport", errors.New("connection refused"), http.StatusInternalServerError},
		{"id space", fmt.Errorf("%w after 5 attempts", database.ErrIDSpaceExhausted), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := mock.NewMockRunnerStore()
			store.CreateError = tt.err
			handler := NewRunnersHandler(store, messages.Default(), nil)

			recorder := httptest.NewRecorder()
			handler.Create(recorder, jsonRequest(http.MethodPost, "/api/v1/runners", `{"nickname": "x", "language": "ja", "targetTimeNumber": 1, "messageNumber": 1}`))
			assertStatusCode(t, recorder, tt.status)
			assertJSONError(t, recorder, "failed to save registration")
		})
	}
}

func TestRunnersHandler_Get(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		getErr error
		status int
	}{
		{"found", "01234", nil, http.StatusOK},
		{"missing", "99999", nil, http.StatusNotFound},
		{"malformed", "12ab", nil, http.StatusBadRequest},
		{"store failure", "01234", errors.New("timeout"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := seededStore()
			store.GetError = tt.getErr
			handler := NewRunnersHandler(store, messages.Default(), nil)

			req := requestWithChiParams(httptest.NewRequest(http.MethodGet, "/api/v1/runners/"+tt.id, nil), map[string]string{"id": tt.id})
			recorder := httptest.NewRecorder()
			handler.Get(recorder, req)
			assertStatusCode(t, recorder, tt.status)

			if tt.status == http.StatusOK {
				var rec runner.Record
				parseJSONResponse(t, recorder, &rec)
				if rec.Nickname != "Aki" || rec.UpperPhrase != "upper" {
					t.Errorf("unexpected record %+v", rec)
				}
			}
		})
	}
}

func TestRunnersHandler_List(t *testing.T) {
	store := mock.NewMockRunnerStore()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := range 12 {
		store.AddRunner(runner.Record{RunnerID: runner.FormatID(i), Nickname: fmt.Sprintf("r%d", i), CreatedAt: base.Add(time.Duration(i) * time.Minute)})
	}
	handler := NewRunnersHandler(store, messages.Default(), nil)

	recorder := httptest.NewRecorder()
	handler.List(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/runners", nil))
	assertStatusCode(t, recorder, http.StatusOK)

	var resp listRunnersResponse
	parseJSONResponse(t, recorder, &resp)
	if len(resp.Runners) != database.DefaultListLimit || resp.Total != 12 {
		t.Fatalf("expected 10 of 12 runners, got %d of %d", len(resp.Runners), resp.Total)
	}
	if resp.Runners[0].RunnerID != "00011" {
		t.Errorf("newest runner should come first, got %s", resp.Runners[0].RunnerID)
	}

	recorder = httptest.NewRecorder()
	handler.List(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/runners?limit=3", nil))
	var limited listRunnersResponse
	parseJSONResponse(t, recorder, &limited)
	if len(limited.Runners) != 3 {
		t.Errorf("expected 3 runners, got %d", len(limited.Runners))
	}

	recorder = httptest.NewRecorder()
	handler.List(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/runners?limit=-1", nil))
	assertStatusCode(t, recorder, http.StatusBadRequest)

	store.ListError = errors.New("down")
	recorder = httptest.NewRecorder()
	handler.List(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/runners", nil))
	assertStatusCode(t, recorder, http.StatusInternalServerError)
}
