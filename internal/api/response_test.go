package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"low-altitude/uavops/internal/db/repositories"
	"low-altitude/uavops/internal/editor"
	"low-altitude/uavops/internal/services"
	"low-altitude/uavops/internal/session"
	"low-altitude/uavops/internal/simulation"
)

func TestRespondServiceErrorStatuses(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("name: %w", services.ErrInvalidInput), http.StatusBadRequest},
		{editor.ErrIndexOutOfRange, http.StatusBadRequest},
		{simulation.ErrRouteTooShort, http.StatusBadRequest},
		{fmt.Errorf("route r1: %w", repositories.ErrNotFound), http.StatusNotFound},
		{session.ErrSessionNotFound, http.StatusNotFound},
		{simulation.ErrNoRoute, http.StatusConflict},
		{repositories.ErrDuplicateCode, http.StatusConflict},
		{services.ErrPilotUnavailable, http.StatusConflict},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		respondServiceError(rec, req, time.Now(), tc.err)
		if rec.Code != tc.want {
			t.Errorf("%v: expected %d, got %d", tc.err, tc.want, rec.Code)
		}
	}
}
