package workers

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"low-altitude/uavops/internal/common"
	"low-altitude/uavops/internal/constants"
	"low-altitude/uavops/internal/db/repositories"
	"low-altitude/uavops/internal/logging"
	"low-altitude/uavops/internal/metrics"
	gormModels "low-altitude/uavops/internal/models/gorm"
)

// staleClaimer is implemented by queues that track unacknowledged messages
type staleClaimer interface {
	ClaimStale(ctx context.Context, consumer string, minIdle time.Duration) ([]*common.DispatchJob, []string, error)
}

// DispatchWorker turns dispatched work orders into flight tasks
type DispatchWorker struct {
	workerID   string
	db         *gorm.DB
	queue      common.QueueService
	pilots     *repositories.PilotRepository
	tasks      *repositories.FlightTaskRepository
	workOrders *repositories.WorkOrderRepository
	aircraft   *repositories.AircraftRepository
	routes     *repositories.RouteRepository
	metrics    *metrics.MetricsRegistry

	block      time.Duration
	staleAfter time.Duration
}

func NewDispatchWorker(
	workerID string,
	db *gorm.DB,
	queue common.QueueService,
	m *metrics.MetricsRegistry,
) *DispatchWorker {
	return &DispatchWorker{
		workerID:   workerID,
		db:         db,
		queue:      queue,
		pilots:     repositories.NewPilotRepository(db),
		tasks:      repositories.NewFlightTaskRepository(db),
		workOrders: repositories.NewWorkOrderRepository(db),
		aircraft:   repositories.NewAircraftRepository(db),
		routes:     repositories.NewRouteRepository(db),
		metrics:    m,
		block:      2 * time.Second,
		staleAfter: time.Minute,
	}
}

// Start runs numWorkers consumers until ctx is cancelled
func (w *DispatchWorker) Start(ctx context.Context, numWorkers int) error {
	if numWorkers < 1 {
		numWorkers = 1
	}
	logging.Info("Dispatch worker starting", "worker_id", w.workerID, "consumers", numWorkers)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < numWorkers; i++ {
		consumer := fmt.Sprintf("%s-%d", w.workerID, i)
		g.Go(func() error {
			w.processQueue(gctx, consumer)
			return nil
		})
	}
	if claimer, ok := w.queue.(staleClaimer); ok {
		g.Go(func() error {
			w.claimStale(gctx, claimer)
			return nil
		})
	}

	err := g.Wait()
	logging.Info("Dispatch worker stopped", "worker_id", w.workerID)
	return err
}

func (w *DispatchWorker) processQueue(ctx context.Context, consumer string) {
	processed, failed := 0, 0

	for {
		select {
		case <-ctx.Done():
			logging.Info("Dispatch consumer shutting down", "consumer", consumer, "processed", processed, "failed", failed)
			return
		default:
		}

		job, messageID, err := w.queue.Dequeue(ctx, consumer, w.block)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			logging.Warn("Dispatch dequeue failed", "consumer", consumer, "error", err.Error())
			sleepCtx(ctx, time.Second)
			continue
		}
		if job == nil {
			continue
		}

		if err := w.Process(ctx, job); err != nil {
			failed++
			w.observe("failed")
			logging.Error("Dispatch job failed", "consumer", consumer, "order_no", job.WorkOrderNo, "error", err.Error())
		} else {
			processed++
			w.observe("processed")
		}

		// Failed jobs are acknowledged too; the order stays in processing for an operator.
		if err := w.queue.Ack(ctx, messageID); err != nil {
			logging.Warn("Dispatch ack failed", "message_id", messageID, "error", err.Error())
		}
	}
}

// Process marks the pilot busy and creates the order's pending flight task.
// Replaying a job for an order that already has a task only refreshes the
// pilot status.
func (w *DispatchWorker) Process(ctx context.Context, job *common.DispatchJob) error {
	order, err := w.workOrders.GetByID(ctx, job.WorkOrderID)
	if err != nil {
		return err
	}
	if order == nil {
		return fmt.Errorf("work order %s: %w", job.WorkOrderID, repositories.ErrNotFound)
	}

	task := &gormModels.FlightTask{
		Name:        fmt.Sprintf("%s %s", order.OrderNo, order.Title),
		Description: order.Description,
		Status:      constants.TaskPending,
		WorkOrderID: &order.ID,
		WorkOrderNo: order.OrderNo,
	}
	if a, err := w.aircraft.GetByID(ctx, job.AircraftID); err == nil && a != nil {
		task.AircraftID = &a.ID
		task.AircraftName = a.ModelName
	}
	if job.RouteID != "" {
		if r, err := w.routes.GetByID(ctx, job.RouteID); err == nil && r != nil {
			task.RouteID = &r.ID
			task.RouteName = r.Name
		}
	}

	return w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pilots := w.pilots.WithTx(tx)
		p, err := pilots.GetByID(ctx, job.PilotID)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("pilot %s: %w", job.PilotID, repositories.ErrNotFound)
		}
		if err := pilots.UpdateStatus(ctx, job.PilotID, constants.PilotBusy); err != nil {
			return err
		}
		task.PilotID = &p.ID
		task.PilotName = p.Name

		tasks := w.tasks.WithTx(tx)
		existing, err := tasks.FindByWorkOrder(ctx, order.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return nil
		}
		if err := tasks.Create(ctx, task); err != nil {
			return err
		}
		if err := w.workOrders.WithTx(tx).LinkFlightTask(ctx, order.ID, task.ID); err != nil {
			return err
		}

		logging.Info("Flight task created for work order", "order_no", order.OrderNo, "task_id", task.ID)
		return nil
	})
}

func (w *DispatchWorker) claimStale(ctx context.Context, claimer staleClaimer) {
	ticker := time.NewTicker(w.staleAfter)
	defer ticker.Stop()
	consumer := w.workerID + "-reclaim"

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			jobs, ids, err := claimer.ClaimStale(ctx, consumer, w.staleAfter)
			if err != nil {
				logging.Warn("Claiming stale dispatch jobs failed", "error", err.Error())
				continue
			}
			for i, job := range jobs {
				if err := w.Process(ctx, job); err != nil {
					w.observe("failed")
					logging.Error("Reclaimed dispatch job failed", "order_no", job.WorkOrderNo, "error", err.Error())
				} else {
					w.observe("processed")
				}
				if err := w.queue.Ack(ctx, ids[i]); err != nil {
					logging.Warn("Dispatch ack failed", "message_id", ids[i], "error", err.Error())
				}
			}
		}
	}
}

func (w *DispatchWorker) observe(result string) {
	if w.metrics != nil {
		w.metrics.DispatchJobsTotal.WithLabelValues(result).Inc()
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
