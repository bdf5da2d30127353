package services

import (
	"context"
	"math"
	"strings"
	"time"

	"low-altitude/uavops/internal/conflict"
	"low-altitude/uavops/internal/db/repositories"
	"low-altitude/uavops/internal/geo"
	gormModels "low-altitude/uavops/internal/models/gorm"
	"low-altitude/uavops/internal/models/dtos"
)

// RouteService stores planned routes and checks them against the zone registry
type RouteService struct {
	repo    *repositories.RouteRepository
	checker conflict.RouteChecker
}

func NewRouteService(repo *repositories.RouteRepository, checker conflict.RouteChecker) *RouteService {
	return &RouteService{repo: repo, checker: checker}
}

// RouteExportVersion tags export documents.
const RouteExportVersion = "1.0"

func (s *RouteService) List(ctx context.Context, q dtos.RouteQuery) ([]gormModels.Route, error) {
	if err := checkBounds("altitude", q.MinAltitude, q.MaxAltitude); err != nil {
		return nil, err
	}
	if err := checkBounds("speed", q.MinSpeed, q.MaxSpeed); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, repositories.RouteFilter{
		Keyword:     q.Keyword,
		MinAltitude: q.MinAltitude,
		MaxAltitude: q.MaxAltitude,
		MinSpeed:    q.MinSpeed,
		MaxSpeed:    q.MaxSpeed,
	})
}

func checkBounds(field string, lo, hi *float64) error {
	if lo != nil && hi != nil && *lo > *hi {
		return invalid("%s minimum %g exceeds maximum %g", field, *lo, *hi)
	}
	return nil
}

// Stats summarises every stored route. Ranges are zero when there are none
// and the average waypoint count is rounded to the nearest integer.
func (s *RouteService) Stats(ctx context.Context) (dtos.RouteStats, error) {
	routes, err := s.repo.List(ctx, repositories.RouteFilter{})
	if err != nil {
		return dtos.RouteStats{}, err
	}

	var st dtos.RouteStats
	st.TotalRoutes = len(routes)
	if len(routes) == 0 {
		return st, nil
	}

	st.AltitudeRange = dtos.ValueRange{Min: routes[0].Altitude, Max: routes[0].Altitude}
	st.SpeedRange = dtos.ValueRange{Min: routes[0].Speed, Max: routes[0].Speed}
	seenWaypoint := false
	for _, r := range routes {
		st.TotalWaypoints += len(r.Waypoints)
		st.TotalDistance += r.Distance
		st.AltitudeRange = widen(st.AltitudeRange, r.Altitude, r.Altitude)
		st.SpeedRange = widen(st.SpeedRange, r.Speed, r.Speed)

		if len(r.Waypoints) == 0 {
			continue
		}
		lo, hi := r.Waypoints.AltitudeRange()
		if !seenWaypoint {
			st.WaypointAltitudeRange = dtos.ValueRange{Min: lo, Max: hi}
			seenWaypoint = true
		}
		st.WaypointAltitudeRange = widen(st.WaypointAltitudeRange, lo, hi)
	}
	st.AverageWaypoints = int(math.Round(float64(st.TotalWaypoints) / float64(len(routes))))
	return st, nil
}

func widen(r dtos.ValueRange, lo, hi float64) dtos.ValueRange {
	return dtos.ValueRange{Min: math.Min(r.Min, lo), Max: math.Max(r.Max, hi)}
}

// Export bundles the selected routes, or all of them when ids is empty.
func (s *RouteService) Export(ctx context.Context, ids []string) (dtos.RouteExport, error) {
	routes, err := s.repo.List(ctx, repositories.RouteFilter{IDs: ids})
	if err != nil {
		return dtos.RouteExport{}, err
	}
	if routes == nil {
		routes = []gormModels.Route{}
	}
	return dtos.RouteExport{
		ExportTime: time.Now().UTC(),
		Version:    RouteExportVersion,
		RouteCount: len(routes),
		Routes:     routes,
	}, nil
}

// Get returns repositories.ErrNotFound for an unknown id
func (s *RouteService) Get(ctx context.Context, id string) (*gormModels.Route, error) {
	route, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if route == nil {
		return nil, repositories.ErrNotFound
	}
	return route, nil
}

// Save inserts or replaces a route. Distance is the 3D path length in
// metres and the estimate is in minutes at the route's speed.
func (s *RouteService) Save(ctx context.Context, req dtos.SaveRouteRequest) (*gormModels.Route, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("route name is required")
	}
	if plan := (geo.Route{Name: name, Waypoints: req.Waypoints}); !plan.Simulatable() {
		return nil, invalid("route needs at least 2 waypoints")
	}

	speed := req.Speed
	if speed <= 0 {
		speed = geo.DefaultSpeed
	}
	distance := req.Waypoints.Length()

	route := &gormModels.Route{
		ID:            req.ID,
		Name:          name,
		Waypoints:     req.Waypoints,
		Speed:         speed,
		Altitude:      req.Altitude,
		Description:   req.Description,
		Distance:      distance,
		EstimatedTime: distance / speed / 60,
	}
	if err := s.repo.Upsert(ctx, route); err != nil {
		return nil, err
	}
	return s.Get(ctx, route.ID)
}

func (s *RouteService) Delete(ctx context.Context, id string) error {
	n, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (s *RouteService) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, invalid("no ids supplied")
	}
	return s.repo.DeleteMany(ctx, ids)
}

// Check runs the conflict checker over a stored route
func (s *RouteService) Check(ctx context.Context, id string) (conflict.Result, error) {
	route, err := s.Get(ctx, id)
	if err != nil {
		return conflict.Result{}, err
	}
	return s.checker.Check(route.Waypoints), nil
}
