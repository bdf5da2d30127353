package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"low-altitude/uavops/internal/constants"
	gormModels "low-altitude/uavops/internal/models/gorm"
)

// FlightTaskRepository handles flight task rows
type FlightTaskRepository struct {
	db *gorm.DB
}

func NewFlightTaskRepository(db *gorm.DB) *FlightTaskRepository {
	return &FlightTaskRepository{db: db}
}

func (r *FlightTaskRepository) WithTx(tx *gorm.DB) *FlightTaskRepository {
	return &FlightTaskRepository{db: tx}
}

// List returns tasks newest first
func (r *FlightTaskRepository) List(ctx context.Context, keyword string, status constants.TaskStatus) ([]gormModels.FlightTask, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if keyword != "" {
		q = q.Where("LOWER(name) LIKE ?", likePattern(keyword))
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var tasks []gormModels.FlightTask
	if err := q.Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to list flight tasks: %w", err)
	}
	return tasks, nil
}

func (r *FlightTaskRepository) GetByID(ctx context.Context, id string) (*gormModels.FlightTask, error) {
	var task gormModels.FlightTask

	err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch flight task: %w", err)
	}
	return &task, nil
}

// FindByWorkOrder returns nil, nil when no task was created for the order
func (r *FlightTaskRepository) FindByWorkOrder(ctx context.Context, workOrderID string) (*gormModels.FlightTask, error) {
	var task gormModels.FlightTask

	err := r.db.WithContext(ctx).Where("work_order_id = ?", workOrderID).First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch flight task: %w", err)
	}
	return &task, nil
}

func (r *FlightTaskRepository) Create(ctx context.Context, task *gormModels.FlightTask) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("failed to create flight task: %w", err)
	}
	return nil
}

// UpdateFields applies a partial update. Returns ErrNotFound for an unknown id.
func (r *FlightTaskRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).
		Model(&gormModels.FlightTask{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("failed to update flight task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *FlightTaskRepository) Delete(ctx context.Context, id string) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&gormModels.FlightTask{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete flight task: %w", res.Error)
	}
	return res.RowsAffected, nil
}
