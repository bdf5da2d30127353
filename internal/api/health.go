package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"low-altitude/uavops/internal/models/entities"
)

// HealthCheckHandler handles GET /healthCheck
func HealthCheckHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services := make(map[string]entities.ServiceStatus)

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		dbStatus := "ok"
		dbDetails := "Database connected"
		if err := deps.SQL.PingContext(ctx); err != nil {
			dbStatus = "down"
			dbDetails = err.Error()
		}
		services["database"] = entities.ServiceStatus{
			Status:  dbStatus,
			Details: dbDetails,
		}

		queueStatus := "ok"
		queueDetails := "Dispatch queue reachable"
		if n, err := deps.Services.Queue.Len(ctx); err != nil {
			queueStatus = "down"
			queueDetails = err.Error()
		} else if n > 0 {
			queueDetails = "Dispatch jobs waiting"
		}
		services["dispatch_queue"] = entities.ServiceStatus{
			Status:  queueStatus,
			Details: queueDetails,
		}

		overallStatus := "ok"
		code := http.StatusOK
		for _, svc := range services {
			if svc.Status != "ok" {
				overallStatus = "down"
				code = http.StatusServiceUnavailable
				break
			}
		}

		resp := entities.HealthCheckResponse{
			Services: services,
			Status:   overallStatus,
			UpSince:  deps.UpSince,
			Uptime:   time.Since(deps.UpSince).Round(time.Second).String(),
			Sessions: deps.Sessions.Count(),
			Zones:    deps.Registry.Len(),
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(resp)
	}
}
