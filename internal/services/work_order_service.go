package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"low-altitude/uavops/internal/common"
	"low-altitude/uavops/internal/constants"
	"low-altitude/uavops/internal/db/repositories"
	"low-altitude/uavops/internal/logging"
	"low-altitude/uavops/internal/metrics"
	"low-altitude/uavops/internal/models/dtos"
	gormModels "low-altitude/uavops/internal/models/gorm"
)

// WorkOrderService handles work orders and their dispatch
type WorkOrderService struct {
	repo     *repositories.WorkOrderRepository
	pilots   *repositories.PilotRepository
	aircraft *repositories.AircraftRepository
	stats    *repositories.StatsRepository
	queue    common.QueueService
	cache    common.CacheInterface
	metrics  *metrics.MetricsRegistry

	now func() time.Time
}

func NewWorkOrderService(
	repo *repositories.WorkOrderRepository,
	pilots *repositories.PilotRepository,
	aircraft *repositories.AircraftRepository,
	stats *repositories.StatsRepository,
	queue common.QueueService,
	cache common.CacheInterface,
	m *metrics.MetricsRegistry,
) *WorkOrderService {
	return &WorkOrderService{
		repo:     repo,
		pilots:   pilots,
		aircraft: aircraft,
		stats:    stats,
		queue:    queue,
		cache:    cache,
		metrics:  m,
		now:      time.Now,
	}
}

func (s *WorkOrderService) List(ctx context.Context, status, kind, keyword string) ([]gormModels.WorkOrder, error) {
	st := constants.WorkOrderStatus(status)
	if status != "" && !st.Valid() {
		return nil, invalid("unknown work order status %q", status)
	}
	return s.repo.List(ctx, repositories.WorkOrderFilter{
		Status:  st,
		Type:    constants.WorkOrderType(kind),
		Keyword: keyword,
	})
}

func (s *WorkOrderService) Get(ctx context.Context, id string) (*gormModels.WorkOrder, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, repositories.ErrNotFound
	}
	return order, nil
}

// Create files a pending order numbered WO-YYYYMMDD-NNN
func (s *WorkOrderService) Create(ctx context.Context, req dtos.WorkOrderRequest) (*gormModels.WorkOrder, error) {
	if err := validateWorkOrder(req); err != nil {
		return nil, err
	}

	order := &gormModels.WorkOrder{
		Status:    constants.WorkOrderPending,
		CreatedBy: "admin",
	}
	applyWorkOrder(order, req)

	prefix := "WO-" + s.now().Format("20060102") + "-"
	for attempt := 0; attempt < 3; attempt++ {
		n, err := s.stats.CountOrdersWithPrefix(ctx, prefix)
		if err != nil {
			return nil, err
		}
		order.ID = ""
		order.OrderNo = fmt.Sprintf("%s%03d", prefix, n+1+attempt)

		err = s.repo.Create(ctx, order)
		if err == nil {
			s.cache.Delete(string(constants.CachePrefixWorkOrderStats))
			return order, nil
		}
		if !errors.Is(err, repositories.ErrDuplicateCode) {
			return nil, err
		}
		logging.Warn("Work order number collision, retrying", "order_no", order.OrderNo)
	}
	return nil, fmt.Errorf("failed to allocate work order number for %s", prefix)
}

func (s *WorkOrderService) Update(ctx context.Context, id string, req dtos.WorkOrderRequest) (*gormModels.WorkOrder, error) {
	if err := validateWorkOrder(req); err != nil {
		return nil, err
	}
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	applyWorkOrder(order, req)
	if err := s.repo.Save(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *WorkOrderService) UpdateStatus(ctx context.Context, id, status string) (*gormModels.WorkOrder, error) {
	st := constants.WorkOrderStatus(status)
	if !st.Valid() {
		return nil, invalid("unknown work order status %q", status)
	}
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Status = st
	if err := s.repo.Save(ctx, order); err != nil {
		return nil, err
	}
	s.cache.Delete(string(constants.CachePrefixWorkOrderStats))
	return order, nil
}

func (s *WorkOrderService) Delete(ctx context.Context, id string) error {
	n, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return repositories.ErrNotFound
	}
	s.cache.Delete(string(constants.CachePrefixWorkOrderStats))
	return nil
}

// releaseDispatch undoes a claim whose job never reached the queue. It uses
// a fresh context so a cancelled request still rolls back.
func (s *WorkOrderService) releaseDispatch(ctx context.Context, id, pilotID string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	err := s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Unassign(ctx, id); err != nil {
			return err
		}
		return s.pilots.WithTx(tx).TransitionStatus(ctx, pilotID, constants.PilotBusy, constants.PilotIdle)
	})
	if err != nil {
		logging.Error("Failed to roll back dispatch", "work_order_id", id, "pilot_id", pilotID, "error", err.Error())
	}
	s.invalidateDispatch()
}

func (s *WorkOrderService) invalidateDispatch() {
	s.cache.Delete(string(constants.CachePrefixWorkOrderStats))
	s.cache.Delete(string(constants.CachePrefixPilotStats))
}

// Dispatch assigns an aircraft and an idle pilot to a pending order and
// queues the job that creates its flight task.
func (s *WorkOrderService) Dispatch(ctx context.Context, id string, req dtos.DispatchRequest) (*gormModels.WorkOrder, error) {
	if req.AircraftID == 0 || req.PilotID == "" {
		return nil, invalid("aircraftId and pilotId are required")
	}

	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status != constants.WorkOrderPending {
		return nil, ErrOrderNotPending
	}

	aircraft, err := s.aircraft.GetByID(ctx, req.AircraftID)
	if err != nil {
		return nil, err
	}
	if aircraft == nil {
		return nil, repositories.ErrNotFound
	}
	if aircraft.Status != constants.AircraftActive {
		return nil, ErrAircraftInactive
	}

	pilot, err := s.pilots.GetByID(ctx, req.PilotID)
	if err != nil {
		return nil, err
	}
	if pilot == nil {
		return nil, repositories.ErrNotFound
	}
	if pilot.Status != constants.PilotIdle {
		return nil, ErrPilotUnavailable
	}

	// Order and pilot are claimed together so a concurrent dispatch loses
	// cleanly on whichever row it reaches second.
	err = s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Assign(ctx, id, req.AircraftID, req.PilotID); err != nil {
			if errors.Is(err, repositories.ErrStateChanged) {
				return ErrOrderNotPending
			}
			return err
		}
		if err := s.pilots.WithTx(tx).TransitionStatus(ctx, req.PilotID, constants.PilotIdle, constants.PilotBusy); err != nil {
			if errors.Is(err, repositories.ErrStateChanged) {
				return ErrPilotUnavailable
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidateDispatch()

	job := &common.DispatchJob{
		WorkOrderID: order.ID,
		WorkOrderNo: order.OrderNo,
		AircraftID:  req.AircraftID,
		PilotID:     req.PilotID,
		RequestedAt: s.now(),
	}
	if order.RouteID != nil {
		job.RouteID = *order.RouteID
	}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		s.observeDispatch("enqueue_failed")
		s.releaseDispatch(ctx, id, req.PilotID)
		return nil, fmt.Errorf("failed to queue dispatch: %w", err)
	}
	s.observeDispatch("queued")
	logging.Info("Work order dispatched", "order_no", order.OrderNo, "pilot_id", req.PilotID, "aircraft_id", req.AircraftID)

	return s.Get(ctx, id)
}

func (s *WorkOrderService) Stats(ctx context.Context) (*dtos.WorkOrderStats, error) {
	return common.CachedAs(s.cache, string(constants.CachePrefixWorkOrderStats), statsTTL, func() (*dtos.WorkOrderStats, error) {
		rows, err := s.stats.WorkOrdersByStatus(ctx)
		if err != nil {
			return nil, err
		}
		out := &dtos.WorkOrderStats{}
		for _, row := range rows {
			out.Total += row.Count
			switch constants.WorkOrderStatus(row.Key) {
			case constants.WorkOrderPending:
				out.Pending = row.Count
			case constants.WorkOrderProcessing:
				out.Processing = row.Count
			case constants.WorkOrderCompleted:
				out.Completed = row.Count
			case constants.WorkOrderCancelled:
				out.Cancelled = row.Count
			}
		}
		return out, nil
	})
}

func (s *WorkOrderService) observeDispatch(result string) {
	if s.metrics != nil {
		s.metrics.DispatchJobsTotal.WithLabelValues(result).Inc()
	}
}

func validateWorkOrder(req dtos.WorkOrderRequest) error {
	if strings.TrimSpace(req.Title) == "" {
		return invalid("title is required")
	}
	if req.Type == "" {
		return invalid("type is required")
	}
	return nil
}

func applyWorkOrder(order *gormModels.WorkOrder, req dtos.WorkOrderRequest) {
	order.Title = strings.TrimSpace(req.Title)
	order.Type = constants.WorkOrderType(req.Type)
	order.Priority = req.Priority
	if order.Priority == "" {
		order.Priority = "medium"
	}
	order.Description = req.Description
	order.Location = gormModels.Location{
		Longitude: req.Location.Longitude,
		Latitude:  req.Location.Latitude,
		Address:   req.Location.Address,
	}
	order.RouteID = req.RouteID
}
