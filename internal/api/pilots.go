package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"low-altitude/uavops/internal/common"
	"low-altitude/uavops/internal/constants"
	"low-altitude/uavops/internal/db/repositories"
	"low-altitude/uavops/internal/models/dtos"
	"low-altitude/uavops/internal/services"
)

func ListPilotsHandler(svc *services.PilotService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		q := r.URL.Query()
		pilots, err := svc.List(r.Context(), q.Get("keyword"), q.Get("status"))
		if err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Pilots retrieved", pilots)
	}
}

func UpdatePilotStatusHandler(svc *services.PilotService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.StatusRequest
		if err := decodeBody(r, &req); err != nil {
			common.RespondError(w, initTime, nil, constants.MsgInvalidBody, http.StatusBadRequest)
			return
		}
		pilot, err := svc.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
		if err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		if pilot == nil {
			respondServiceError(w, r, initTime, repositories.ErrNotFound)
			return
		}
		common.RespondSuccess(w, initTime, "Pilot status updated", pilot)
	}
}

func PilotStatsHandler(svc *services.PilotService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		stats, err := svc.Stats(r.Context())
		if err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Pilot stats retrieved", stats)
	}
}
