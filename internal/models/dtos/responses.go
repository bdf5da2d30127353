package dtos

import (
	"time"

	gormModels "low-altitude/uavops/internal/models/gorm"
	"low-altitude/uavops/internal/simulation"
)

// APIResponse is the envelope every handler writes.
type APIResponse struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	ResponseTime string `json:"response_time"`
	Data         any    `json:"data,omitempty"`
}

type PageResponse struct {
	Items    any   `json:"items"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
}

// CountByKey is one row of a GROUP BY count query.
type CountByKey struct {
	Key   string `db:"status" json:"key"`
	Count int64  `db:"count" json:"count"`
}

type AircraftStats struct {
	Total          int64            `json:"total"`
	Active         int64            `json:"active"`
	Inactive       int64            `json:"inactive"`
	ByManufacturer map[string]int64 `json:"byManufacturer"`
}

type PilotStats struct {
	Total int64 `json:"total"`
	Idle  int64 `json:"idle"`
	Busy  int64 `json:"busy"`
	Leave int64 `json:"leave"`
}

type WorkOrderStats struct {
	Total      int64 `json:"total"`
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Completed  int64 `json:"completed"`
	Cancelled  int64 `json:"cancelled"`
}

type ValueRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// RouteStats summarises the stored routes. AltitudeRange and SpeedRange
// cover the cruise parameters; WaypointAltitudeRange covers every waypoint.
type RouteStats struct {
	TotalRoutes           int        `json:"totalRoutes"`
	TotalWaypoints        int        `json:"totalWaypoints"`
	AverageWaypoints      int        `json:"averageWaypoints"`
	TotalDistance         float64    `json:"totalDistance"`
	AltitudeRange         ValueRange `json:"altitudeRange"`
	SpeedRange            ValueRange `json:"speedRange"`
	WaypointAltitudeRange ValueRange `json:"waypointAltitudeRange"`
}

// RouteExport is the bulk export document.
type RouteExport struct {
	ExportTime time.Time          `json:"exportTime"`
	Version    string             `json:"version"`
	RouteCount int                `json:"routeCount"`
	Routes     []gormModels.Route `json:"routes"`
}

type AircraftOption struct {
	ID    uint   `json:"id"`
	Label string `json:"label"`
	Code  string `json:"code"`
}

type BatchResult struct {
	Affected int64 `json:"affected"`
}

// SessionResponse summarises a planning session.
type SessionResponse struct {
	ID         string            `json:"id"`
	CreatedAt  time.Time         `json:"createdAt"`
	Waypoints  int               `json:"waypoints"`
	Altitude   float64           `json:"altitude"`
	Simulation simulation.Status `json:"simulation"`
}
