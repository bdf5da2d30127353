package common

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"low-altitude/uavops/internal/models/dtos"
)

func TestRespondSuccessWritesEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondSuccess(rec, time.Now(), "Created", map[string]int{"index": 2}, http.StatusCreated)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("unexpected content type %q", ct)
	}
	var body dtos.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid body %q: %v", rec.Body.String(), err)
	}
	if body.Status != "ok" || body.Message != "Created" {
		t.Errorf("unexpected envelope %+v", body)
	}
}

func TestRespondSuccessEncodeFailureIs500(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondSuccess(rec, time.Now(), "Stats", map[string]float64{"avg": math.NaN()})

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for an unencodable body, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), `"status"`) {
		t.Errorf("partial envelope leaked: %q", rec.Body.String())
	}
}
