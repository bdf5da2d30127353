package dtos

import (
	"time"

	"low-altitude/uavops/internal/geo"
)

type SaveRouteRequest struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Waypoints   geo.Path `json:"waypoints"`
	Speed       float64  `json:"speed"`
	Altitude    float64  `json:"altitude"`
	Description string   `json:"description"`
}

// RouteQuery filters the route listing. Nil bounds are open.
type RouteQuery struct {
	Keyword     string
	MinAltitude *float64
	MaxAltitude *float64
	MinSpeed    *float64
	MaxSpeed    *float64
}

type IDsRequest struct {
	IDs []string `json:"ids"`
}

type AircraftIDsRequest struct {
	IDs []uint `json:"ids"`
}

type AircraftRequest struct {
	ModelName         string                 `json:"modelName"`
	Manufacturer      string                 `json:"manufacturer"`
	ModelCode         string                 `json:"modelCode"`
	MaxFlightTime     float64                `json:"maxFlightTime"`
	MaxFlightDistance float64                `json:"maxFlightDistance"`
	MaxAltitude       float64                `json:"maxAltitude"`
	MaxSpeed          float64                `json:"maxSpeed"`
	PayloadCapacity   float64                `json:"payloadCapacity"`
	BatteryCapacity   float64                `json:"batteryCapacity"`
	Specifications    map[string]interface{} `json:"specifications"`
	ImageURL          string                 `json:"imageUrl"`
	Status            *int                   `json:"status"`
}

type AircraftBatchStatusRequest struct {
	IDs    []uint `json:"ids"`
	Status int    `json:"status"`
}

type StatusRequest struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

type LocationRequest struct {
	Longitude float64 `json:"lng"`
	Latitude  float64 `json:"lat"`
	Address   string  `json:"address"`
}

type WorkOrderRequest struct {
	Title       string          `json:"title"`
	Type        string          `json:"type"`
	Priority    string          `json:"priority"`
	Description string          `json:"description"`
	Location    LocationRequest `json:"location"`
	RouteID     *string         `json:"routeId"`
}

type DispatchRequest struct {
	AircraftID uint   `json:"aircraftId"`
	PilotID    string `json:"pilotId"`
}

type FlightTaskRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	AircraftID  *uint   `json:"aircraftId"`
	RouteID     *string `json:"routeId"`
	PilotID     *string `json:"pilotId"`
}

type LinkWorkOrderRequest struct {
	WorkOrderID string `json:"workOrderId"`
}

type UpdateTaskRouteRequest struct {
	RouteID string `json:"routeId"`
}

type AirspaceApplicationRequest struct {
	Name         string     `json:"name"`
	FlightTaskID *string    `json:"flightTaskId"`
	RouteID      *string    `json:"routeId"`
	StartTime    *time.Time `json:"startTime"`
	EndTime      *time.Time `json:"endTime"`
	Description  string     `json:"description"`
}

// Session requests

type AltitudeRequest struct {
	Altitude float64 `json:"altitude"`
}

type SimulationRequest struct {
	Name     string  `json:"name"`
	Speed    float64 `json:"speed"`
	Altitude float64 `json:"altitude"`
}

type ExportRequest struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Speed       float64 `json:"speed"`
	Altitude    float64 `json:"altitude"`
	Description string  `json:"description"`
}

// ImportRequest loads either a stored route by id or an inline route.
type ImportRequest struct {
	RouteID string     `json:"routeId"`
	Route   *geo.Route `json:"route"`
}

// CheckRouteRequest checks an arbitrary path without a session.
type CheckRouteRequest struct {
	Waypoints geo.Path `json:"waypoints"`
}

// DetourRequest plans a leg between two points.
type DetourRequest struct {
	Start *geo.Waypoint `json:"start"`
	End   *geo.Waypoint `json:"end"`
}
