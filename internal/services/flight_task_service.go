package services

import (
	"context"
	"fmt"
	"strings"

	"low-altitude/uavops/internal/constants"
	"low-altitude/uavops/internal/db/repositories"
	"low-altitude/uavops/internal/models/dtos"
	gormModels "low-altitude/uavops/internal/models/gorm"
)

// FlightTaskService manages flight tasks and their links to orders and routes
type FlightTaskService struct {
	repo       *repositories.FlightTaskRepository
	workOrders *repositories.WorkOrderRepository
	routes     *repositories.RouteRepository
	pilots     *repositories.PilotRepository
	aircraft   *repositories.AircraftRepository
}

func NewFlightTaskService(
	repo *repositories.FlightTaskRepository,
	workOrders *repositories.WorkOrderRepository,
	routes *repositories.RouteRepository,
	pilots *repositories.PilotRepository,
	aircraft *repositories.AircraftRepository,
) *FlightTaskService {
	return &FlightTaskService{
		repo:       repo,
		workOrders: workOrders,
		routes:     routes,
		pilots:     pilots,
		aircraft:   aircraft,
	}
}

func (s *FlightTaskService) List(ctx context.Context, keyword, status string) ([]gormModels.FlightTask, error) {
	st := constants.TaskStatus(status)
	if status != "" && !st.Valid() {
		return nil, invalid("unknown task status %q", status)
	}
	return s.repo.List(ctx, keyword, st)
}

func (s *FlightTaskService) Get(ctx context.Context, id string) (*gormModels.FlightTask, error) {
	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, repositories.ErrNotFound
	}
	return task, nil
}

// Create stores a pending task, resolving display names of its references
func (s *FlightTaskService) Create(ctx context.Context, req dtos.FlightTaskRequest) (*gormModels.FlightTask, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("task name is required")
	}

	task := &gormModels.FlightTask{
		Name:        name,
		Description: req.Description,
		Status:      constants.TaskPending,
	}

	if req.AircraftID != nil {
		a, err := s.aircraft.GetByID(ctx, *req.AircraftID)
		if err != nil {
			return nil, err
		}
		if a == nil {
			return nil, fmt.Errorf("aircraft %d: %w", *req.AircraftID, repositories.ErrNotFound)
		}
		task.AircraftID = &a.ID
		task.AircraftName = a.ModelName
	}
	if req.RouteID != nil && *req.RouteID != "" {
		r, err := s.routes.GetByID(ctx, *req.RouteID)
		if err != nil {
			return nil, err
		}
		if r == nil {
			return nil, fmt.Errorf("route %s: %w", *req.RouteID, repositories.ErrNotFound)
		}
		task.RouteID = &r.ID
		task.RouteName = r.Name
	}
	if req.PilotID != nil && *req.PilotID != "" {
		p, err := s.pilots.GetByID(ctx, *req.PilotID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, fmt.Errorf("pilot %s: %w", *req.PilotID, repositories.ErrNotFound)
		}
		task.PilotID = &p.ID
		task.PilotName = p.Name
	}

	if err := s.repo.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *FlightTaskService) UpdateStatus(ctx context.Context, id, status string) (*gormModels.FlightTask, error) {
	st := constants.TaskStatus(status)
	if !st.Valid() {
		return nil, invalid("unknown task status %q", status)
	}
	if err := s.repo.UpdateFields(ctx, id, map[string]interface{}{"status": st}); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *FlightTaskService) LinkWorkOrder(ctx context.Context, id, workOrderID string) (*gormModels.FlightTask, error) {
	order, err := s.workOrders.GetByID(ctx, workOrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("work order %s: %w", workOrderID, repositories.ErrNotFound)
	}
	err = s.repo.UpdateFields(ctx, id, map[string]interface{}{
		"work_order_id": order.ID,
		"work_order_no": order.OrderNo,
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *FlightTaskService) UpdateRoute(ctx context.Context, id, routeID string) (*gormModels.FlightTask, error) {
	route, err := s.routes.GetByID(ctx, routeID)
	if err != nil {
		return nil, err
	}
	if route == nil {
		return nil, fmt.Errorf("route %s: %w", routeID, repositories.ErrNotFound)
	}
	err = s.repo.UpdateFields(ctx, id, map[string]interface{}{
		"route_id":   route.ID,
		"route_name": route.Name,
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *FlightTaskService) Delete(ctx context.Context, id string) error {
	n, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return repositories.ErrNotFound
	}
	return nil
}
