package api

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"low-altitude/uavops/internal/common"
	"low-altitude/uavops/internal/constants"
	reqctx "low-altitude/uavops/internal/context"
	"low-altitude/uavops/internal/db/repositories"
	"low-altitude/uavops/internal/editor"
	"low-altitude/uavops/internal/logging"
	"low-altitude/uavops/internal/services"
	"low-altitude/uavops/internal/session"
	"low-altitude/uavops/internal/simulation"
)

// respondServiceError maps domain errors onto HTTP statuses.
func respondServiceError(w http.ResponseWriter, r *http.Request, initTime time.Time, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, editor.ErrIndexOutOfRange),
		errors.Is(err, simulation.ErrRouteTooShort):
		common.RespondError(w, initTime, err, constants.MsgInvalidBody, http.StatusBadRequest)
	case errors.Is(err, repositories.ErrNotFound):
		common.RespondError(w, initTime, nil, constants.MsgNotFound, http.StatusNotFound)
	case errors.Is(err, session.ErrSessionNotFound):
		common.RespondError(w, initTime, nil, constants.MsgSessionNotFound, http.StatusNotFound)
	case errors.Is(err, simulation.ErrNoRoute):
		common.RespondError(w, initTime, nil, constants.MsgNoRoute, http.StatusConflict)
	case errors.Is(err, repositories.ErrDuplicateCode):
		common.RespondError(w, initTime, nil, constants.MsgDuplicateCode, http.StatusConflict)
	case errors.Is(err, services.ErrPilotUnavailable),
		errors.Is(err, services.ErrAircraftInactive),
		errors.Is(err, services.ErrOrderNotPending):
		common.RespondError(w, initTime, err, "", http.StatusConflict)
	default:
		logging.Error("Request failed",
			"request_id", reqctx.GetRequestID(r.Context()),
			"session_id", reqctx.GetSessionID(r.Context()),
			"path", r.URL.Path,
			"error", err.Error(),
		)
		common.RespondError(w, initTime, nil, constants.MsgInternal, http.StatusInternalServerError)
	}
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func uintParam(r *http.Request, name string) (uint, bool) {
	n, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

// floatQuery returns nil for an absent parameter and false when it does not
// parse.
func floatQuery(r *http.Request, name string) (*float64, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, false
	}
	return &v, true
}

func intQuery(r *http.Request, name string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(name))
	return n
}
