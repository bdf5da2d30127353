package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"low-altitude/uavops/internal/common"
	"low-altitude/uavops/internal/conflict"
	"low-altitude/uavops/internal/constants"
	"low-altitude/uavops/internal/models/dtos"
	"low-altitude/uavops/internal/services"
)

// ListZonesHandler handles GET /api/v1/zones
func ListZonesHandler(svc *services.AirspaceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		common.RespondSuccess(w, initTime, "No-fly zones retrieved", svc.Zones())
	}
}

// CheckRouteHandler handles POST /api/v1/check. It checks a path without a
// session and adds the full violation list when ?analyze=true.
func CheckRouteHandler(checker conflict.RouteChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.CheckRouteRequest
		if err := decodeBody(r, &req); err != nil {
			common.RespondError(w, initTime, nil, constants.MsgInvalidBody, http.StatusBadRequest)
			return
		}

		res := checker.Check(req.Waypoints)
		if r.URL.Query().Get("analyze") == "true" {
			res.Violations = checker.Analyze(req.Waypoints)
		}
		common.RespondSuccess(w, initTime, res.Message, res)
	}
}

// DetourHandler handles POST /api/v1/airspace/detour
func DetourHandler(svc *services.AirspaceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.DetourRequest
		if err := decodeBody(r, &req); err != nil {
			common.RespondError(w, initTime, nil, constants.MsgInvalidBody, http.StatusBadRequest)
			return
		}

		plan, err := svc.Detour(req)
		if err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		msg := "Direct leg is clear of no-fly zones"
		if plan.Detoured {
			msg = "Detour planned around " + plan.ZoneName
		}
		common.RespondSuccess(w, initTime, msg, plan)
	}
}

func ListApplicationsHandler(svc *services.AirspaceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		apps, err := svc.List(r.Context(), r.URL.Query().Get("status"))
		if err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Airspace applications retrieved", apps)
	}
}

func CreateApplicationHandler(svc *services.AirspaceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.AirspaceApplicationRequest
		if err := decodeBody(r, &req); err != nil {
			common.RespondError(w, initTime, nil, constants.MsgInvalidBody, http.StatusBadRequest)
			return
		}
		app, err := svc.Create(r.Context(), req)
		if err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Airspace application filed", app, http.StatusCreated)
	}
}

func UpdateApplicationStatusHandler(svc *services.AirspaceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.StatusRequest
		if err := decodeBody(r, &req); err != nil {
			common.RespondError(w, initTime, nil, constants.MsgInvalidBody, http.StatusBadRequest)
			return
		}
		if err := svc.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req); err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Airspace application updated", nil)
	}
}

func DeleteApplicationHandler(svc *services.AirspaceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		if err := svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Airspace application deleted", nil)
	}
}

// ApplicationByTaskHandler handles GET /api/v1/flight-tasks/{id}/application
func ApplicationByTaskHandler(svc *services.AirspaceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		app, err := svc.FindByFlightTask(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Airspace application retrieved", app)
	}
}
