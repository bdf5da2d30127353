package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"low-altitude/uavops/internal/common"
	"low-altitude/uavops/internal/constants"
	"low-altitude/uavops/internal/models/dtos"
	"low-altitude/uavops/internal/services"
)

// ListRoutesHandler handles GET /api/v1/routes?keyword=&minAltitude=&maxAltitude=&minSpeed=&maxSpeed=
func ListRoutesHandler(svc *services.RouteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		q := dtos.RouteQuery{Keyword: r.URL.Query().Get("keyword")}
		bounds := []struct {
			name string
			dst  **float64
		}{
			{"minAltitude", &q.MinAltitude},
			{"maxAltitude", &q.MaxAltitude},
			{"minSpeed", &q.MinSpeed},
			{"maxSpeed", &q.MaxSpeed},
		}
		for _, b := range bounds {
			v, ok := floatQuery(r, b.name)
			if !ok {
				common.RespondError(w, initTime, nil, "Invalid "+b.name, http.StatusBadRequest)
				return
			}
			*b.dst = v
		}

		routes, err := svc.List(r.Context(), q)
		if err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Routes retrieved", routes)
	}
}

// RouteStatsHandler handles GET /api/v1/routes/stats
func RouteStatsHandler(svc *services.RouteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		stats, err := svc.Stats(r.Context())
		if err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Route statistics retrieved", stats)
	}
}

// ExportRoutesHandler handles GET /api/v1/routes/export?ids=a,b. Without ids
// every route is exported.
func ExportRoutesHandler(svc *services.RouteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var ids []string
		for _, id := range strings.Split(r.URL.Query().Get("ids"), ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}

		doc, err := svc.Export(r.Context(), ids)
		if err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Routes exported", doc)
	}
}

func GetRouteHandler(svc *services.RouteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		route, err := svc.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Route retrieved", route)
	}
}

// SaveRouteHandler handles POST /api/v1/routes. A body with an existing id
// replaces that route.
func SaveRouteHandler(svc *services.RouteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.SaveRouteRequest
		if err := decodeBody(r, &req); err != nil {
			common.RespondError(w, initTime, nil, constants.MsgInvalidBody, http.StatusBadRequest)
			return
		}
		if id := chi.URLParam(r, "id"); id != "" {
			req.ID = id
		}

		route, err := svc.Save(r.Context(), req)
		if err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Route saved", route)
	}
}

func DeleteRouteHandler(svc *services.RouteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		if err := svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Route deleted", nil)
	}
}

func DeleteRoutesHandler(svc *services.RouteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.IDsRequest
		if err := decodeBody(r, &req); err != nil {
			common.RespondError(w, initTime, nil, constants.MsgInvalidBody, http.StatusBadRequest)
			return
		}
		n, err := svc.DeleteMany(r.Context(), req.IDs)
		if err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Routes deleted", dtos.BatchResult{Affected: n})
	}
}

// CheckSavedRouteHandler handles GET /api/v1/routes/{id}/check
func CheckSavedRouteHandler(svc *services.RouteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		res, err := svc.Check(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, res.Message, res)
	}
}
