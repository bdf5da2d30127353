package services

import (
	"context"
	"fmt"
	"strings"

	"low-altitude/uavops/internal/airspace"
	"low-altitude/uavops/internal/conflict"
	"low-altitude/uavops/internal/constants"
	"low-altitude/uavops/internal/db/repositories"
	"low-altitude/uavops/internal/models/dtos"
	gormModels "low-altitude/uavops/internal/models/gorm"
)

// AirspaceService exposes the zone registry and airspace applications
type AirspaceService struct {
	repo     *repositories.AirspaceApplicationRepository
	routes   *repositories.RouteRepository
	registry *airspace.Registry
	checker  conflict.RouteChecker
}

func NewAirspaceService(
	repo *repositories.AirspaceApplicationRepository,
	routes *repositories.RouteRepository,
	registry *airspace.Registry,
	checker conflict.RouteChecker,
) *AirspaceService {
	return &AirspaceService{repo: repo, routes: routes, registry: registry, checker: checker}
}

func (s *AirspaceService) Zones() []airspace.View {
	zones := s.registry.Zones()
	out := make([]airspace.View, 0, len(zones))
	for _, z := range zones {
		out = append(out, airspace.Describe(z))
	}
	return out
}

// Detour plans start to end around the first blocking zone and checks the
// planned path.
func (s *AirspaceService) Detour(req dtos.DetourRequest) (conflict.DetourPlan, error) {
	if req.Start == nil || req.End == nil {
		return conflict.DetourPlan{}, invalid("start and end are required")
	}
	plan := conflict.Detour(s.registry, *req.Start, *req.End)
	res := s.checker.Check(plan.Path)
	plan.Check = &res
	return plan, nil
}

func (s *AirspaceService) List(ctx context.Context, status string) ([]gormModels.AirspaceApplication, error) {
	st := constants.ApplicationStatus(status)
	if status != "" && !st.Valid() {
		return nil, invalid("unknown application status %q", status)
	}
	return s.repo.List(ctx, st)
}

// Create files a pending application. When a route is referenced its
// conflict verdict is stored alongside.
func (s *AirspaceService) Create(ctx context.Context, req dtos.AirspaceApplicationRequest) (*gormModels.AirspaceApplication, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("application name is required")
	}
	if req.StartTime != nil && req.EndTime != nil && req.EndTime.Before(*req.StartTime) {
		return nil, invalid("end time precedes start time")
	}

	app := &gormModels.AirspaceApplication{
		Name:         name,
		FlightTaskID: req.FlightTaskID,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Description:  req.Description,
		Status:       constants.ApplicationPending,
	}

	if req.RouteID != nil && *req.RouteID != "" {
		route, err := s.routes.GetByID(ctx, *req.RouteID)
		if err != nil {
			return nil, err
		}
		if route == nil {
			return nil, fmt.Errorf("route %s: %w", *req.RouteID, repositories.ErrNotFound)
		}
		res := s.checker.Check(route.Waypoints)
		app.RouteID = &route.ID
		app.RouteName = route.Name
		app.CheckValid = &res.Valid
		app.CheckMessage = res.Message
	}

	if err := s.repo.Create(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

func (s *AirspaceService) UpdateStatus(ctx context.Context, id string, req dtos.StatusRequest) error {
	st := constants.ApplicationStatus(req.Status)
	if !st.Valid() {
		return invalid("unknown application status %q", req.Status)
	}
	return s.repo.UpdateStatus(ctx, id, st, req.Note)
}

func (s *AirspaceService) Delete(ctx context.Context, id string) error {
	n, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (s *AirspaceService) FindByFlightTask(ctx context.Context, taskID string) (*gormModels.AirspaceApplication, error) {
	app, err := s.repo.FindByFlightTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, repositories.ErrNotFound
	}
	return app, nil
}
