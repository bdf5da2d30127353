package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"low-altitude/uavops/internal/common"
	"low-altitude/uavops/internal/constants"
	"low-altitude/uavops/internal/models/dtos"
	"low-altitude/uavops/internal/services"
)

func ListFlightTasksHandler(svc *services.FlightTaskService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		q := r.URL.Query()
		tasks, err := svc.List(r.Context(), q.Get("keyword"), q.Get("status"))
		if err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Flight tasks retrieved", tasks)
	}
}

func GetFlightTaskHandler(svc *services.FlightTaskService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		task, err := svc.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Flight task retrieved", task)
	}
}

func CreateFlightTaskHandler(svc *services.FlightTaskService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.FlightTaskRequest
		if err := decodeBody(r, &req); err != nil {
			common.RespondError(w, initTime, nil, constants.MsgInvalidBody, http.StatusBadRequest)
			return
		}
		task, err := svc.Create(r.Context(), req)
		if err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Flight task created", task, http.StatusCreated)
	}
}

func UpdateFlightTaskStatusHandler(svc *services.FlightTaskService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.StatusRequest
		if err := decodeBody(r, &req); err != nil {
			common.RespondError(w, initTime, nil, constants.MsgInvalidBody, http.StatusBadRequest)
			return
		}
		task, err := svc.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
		if err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Flight task status updated", task)
	}
}

func LinkFlightTaskWorkOrderHandler(svc *services.FlightTaskService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.LinkWorkOrderRequest
		if err := decodeBody(r, &req); err != nil || req.WorkOrderID == "" {
			common.RespondError(w, initTime, nil, constants.MsgInvalidBody, http.StatusBadRequest)
			return
		}
		task, err := svc.LinkWorkOrder(r.Context(), chi.URLParam(r, "id"), req.WorkOrderID)
		if err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Work order linked", task)
	}
}

func UpdateFlightTaskRouteHandler(svc *services.FlightTaskService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.UpdateTaskRouteRequest
		if err := decodeBody(r, &req); err != nil || req.RouteID == "" {
			common.RespondError(w, initTime, nil, constants.MsgInvalidBody, http.StatusBadRequest)
			return
		}
		task, err := svc.UpdateRoute(r.Context(), chi.URLParam(r, "id"), req.RouteID)
		if err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Flight task route updated", task)
	}
}

func DeleteFlightTaskHandler(svc *services.FlightTaskService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		if err := svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Flight task deleted", nil)
	}
}
