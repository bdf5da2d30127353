package api

import (
	"net/http"
	"strconv"
	"time"

	"low-altitude/uavops/internal/common"
	"low-altitude/uavops/internal/constants"
	"low-altitude/uavops/internal/models/dtos"
	"low-altitude/uavops/internal/services"
)

// ListAircraftHandler handles GET /api/v1/aircraft?keyword=&status=&page=&pageSize=
func ListAircraftHandler(svc *services.FleetService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		q := r.URL.Query()

		var status *int
		if raw := q.Get("status"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				common.RespondError(w, initTime, nil, constants.MsgInvalidStatus, http.StatusBadRequest)
				return
			}
			status = &n
		}

		page, err := svc.List(r.Context(), q.Get("keyword"), status, intQuery(r, "page"), intQuery(r, "pageSize"))
		if err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Aircraft retrieved", page)
	}
}

func AircraftOptionsHandler(svc *services.FleetService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		opts, err := svc.Options(r.Context())
		if err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Aircraft options retrieved", opts)
	}
}

func AircraftStatsHandler(svc *services.FleetService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		stats, err := svc.Stats(r.Context())
		if err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Aircraft stats retrieved", stats)
	}
}

func GetAircraftHandler(svc *services.FleetService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		id, ok := uintParam(r, "id")
		if !ok {
			common.RespondError(w, initTime, nil, constants.MsgNotFound, http.StatusNotFound)
			return
		}
		item, err := svc.Get(r.Context(), id)
		if err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Aircraft retrieved", item)
	}
}

func CreateAircraftHandler(svc *services.FleetService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.AircraftRequest
		if err := decodeBody(r, &req); err != nil {
			common.RespondError(w, initTime, nil, constants.MsgInvalidBody, http.StatusBadRequest)
			return
		}
		item, err := svc.Create(r.Context(), req)
		if err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Aircraft created", item, http.StatusCreated)
	}
}

func UpdateAircraftHandler(svc *services.FleetService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		id, ok := uintParam(r, "id")
		if !ok {
			common.RespondError(w, initTime, nil, constants.MsgNotFound, http.StatusNotFound)
			return
		}

		var req dtos.AircraftRequest
		if err := decodeBody(r, &req); err != nil {
			common.RespondError(w, initTime, nil, constants.MsgInvalidBody, http.StatusBadRequest)
			return
		}
		item, err := svc.Update(r.Context(), id, req)
		if err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Aircraft updated", item)
	}
}

func DeleteAircraftHandler(svc *services.FleetService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		id, ok := uintParam(r, "id")
		if !ok {
			common.RespondError(w, initTime, nil, constants.MsgNotFound, http.StatusNotFound)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Aircraft deleted", nil)
	}
}

func BatchDeleteAircraftHandler(svc *services.FleetService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.AircraftIDsRequest
		if err := decodeBody(r, &req); err != nil {
			common.RespondError(w, initTime, nil, constants.MsgInvalidBody, http.StatusBadRequest)
			return
		}
		n, err := svc.DeleteMany(r.Context(), req.IDs)
		if err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Aircraft deleted", dtos.BatchResult{Affected: n})
	}
}

func BatchAircraftStatusHandler(svc *services.FleetService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.AircraftBatchStatusRequest
		if err := decodeBody(r, &req); err != nil {
			common.RespondError(w, initTime, nil, constants.MsgInvalidBody, http.StatusBadRequest)
			return
		}
		n, err := svc.UpdateStatusMany(r.Context(), req.IDs, req.Status)
		if err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Aircraft status updated", dtos.BatchResult{Affected: n})
	}
}
