package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"low-altitude/uavops/internal/constants"
	gormModels "low-altitude/uavops/internal/models/gorm"
)

type WorkOrderFilter struct {
	Status  constants.WorkOrderStatus
	Type    constants.WorkOrderType
	Keyword string
}

// WorkOrderRepository handles work order rows
type WorkOrderRepository struct {
	db *gorm.DB
}

func NewWorkOrderRepository(db *gorm.DB) *WorkOrderRepository {
	return &WorkOrderRepository{db: db}
}

func (r *WorkOrderRepository) WithTx(tx *gorm.DB) *WorkOrderRepository {
	return &WorkOrderRepository{db: tx}
}

// List returns matching orders, newest first
func (r *WorkOrderRepository) List(ctx context.Context, f WorkOrderFilter) ([]gormModels.WorkOrder, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC").Order("order_no DESC")
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.Keyword != "" {
		kw := likePattern(f.Keyword)
		q = q.Where("LOWER(title) LIKE ? OR LOWER(order_no) LIKE ?", kw, kw)
	}

	var orders []gormModels.WorkOrder
	if err := q.Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list work orders: %w", err)
	}
	return orders, nil
}

func (r *WorkOrderRepository) GetByID(ctx context.Context, id string) (*gormModels.WorkOrder, error) {
	var order gormModels.WorkOrder

	err := r.db.WithContext(ctx).Where("id = ?", id).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch work order: %w", err)
	}
	return &order, nil
}

func (r *WorkOrderRepository) Create(ctx context.Context, order *gormModels.WorkOrder) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateCode
		}
		return fmt.Errorf("failed to create work order: %w", err)
	}
	return nil
}

func (r *WorkOrderRepository) Save(ctx context.Context, order *gormModels.WorkOrder) error {
	if err := r.db.WithContext(ctx).Save(order).Error; err != nil {
		return fmt.Errorf("failed to update work order: %w", err)
	}
	return nil
}

// Transaction runs fn inside one database transaction
func (r *WorkOrderRepository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

// Assign records the dispatch target and moves a pending order to processing.
// An order that is no longer pending is left untouched.
func (r *WorkOrderRepository) Assign(ctx context.Context, id string, aircraftID uint, pilotID string) error {
	res := r.db.WithContext(ctx).
		Model(&gormModels.WorkOrder{}).
		Where("id = ? AND status = ?", id, constants.WorkOrderPending).
		Updates(map[string]interface{}{
			"status":      constants.WorkOrderProcessing,
			"aircraft_id": aircraftID,
			"pilot_id":    pilotID,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to assign work order: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return r.missingOr(ctx, id, ErrStateChanged)
	}
	return nil
}

// Unassign returns a processing order to pending and clears its target
func (r *WorkOrderRepository) Unassign(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).
		Model(&gormModels.WorkOrder{}).
		Where("id = ? AND status = ?", id, constants.WorkOrderProcessing).
		Updates(map[string]interface{}{
			"status":      constants.WorkOrderPending,
			"aircraft_id": nil,
			"pilot_id":    nil,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to unassign work order: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return r.missingOr(ctx, id, ErrStateChanged)
	}
	return nil
}

func (r *WorkOrderRepository) missingOr(ctx context.Context, id string, err error) error {
	var n int64
	if cerr := r.db.WithContext(ctx).Model(&gormModels.WorkOrder{}).Where("id = ?", id).Count(&n).Error; cerr != nil {
		return fmt.Errorf("failed to count work order: %w", cerr)
	}
	if n == 0 {
		return ErrNotFound
	}
	return err
}

// LinkFlightTask stores the task created for a dispatched order
func (r *WorkOrderRepository) LinkFlightTask(ctx context.Context, id, taskID string) error {
	res := r.db.WithContext(ctx).
		Model(&gormModels.WorkOrder{}).
		Where("id = ?", id).
		Update("flight_task_id", taskID)
	if res.Error != nil {
		return fmt.Errorf("failed to link flight task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *WorkOrderRepository) Delete(ctx context.Context, id string) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&gormModels.WorkOrder{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete work order: %w", res.Error)
	}
	return res.RowsAffected, nil
}
