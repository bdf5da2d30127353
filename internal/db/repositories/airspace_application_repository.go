package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"low-altitude/uavops/internal/constants"
	gormModels "low-altitude/uavops/internal/models/gorm"
)

type AirspaceApplicationRepository struct {
	db *gorm.DB
}

func NewAirspaceApplicationRepository(db *gorm.DB) *AirspaceApplicationRepository {
	return &AirspaceApplicationRepository{db: db}
}

func (r *AirspaceApplicationRepository) List(ctx context.Context, status constants.ApplicationStatus) ([]gormModels.AirspaceApplication, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var apps []gormModels.AirspaceApplication
	if err := q.Find(&apps).Error; err != nil {
		return nil, fmt.Errorf("failed to list airspace applications: %w", err)
	}
	return apps, nil
}

func (r *AirspaceApplicationRepository) Create(ctx context.Context, app *gormModels.AirspaceApplication) error {
	if err := r.db.WithContext(ctx).Create(app).Error; err != nil {
		return fmt.Errorf("failed to create airspace application: %w", err)
	}
	return nil
}

func (r *AirspaceApplicationRepository) UpdateStatus(ctx context.Context, id string, status constants.ApplicationStatus, note string) error {
	res := r.db.WithContext(ctx).
		Model(&gormModels.AirspaceApplication{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      status,
			"review_note": note,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update airspace application: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *AirspaceApplicationRepository) Delete(ctx context.Context, id string) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&gormModels.AirspaceApplication{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete airspace application: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// FindByFlightTask returns the newest application filed for a task, or nil
func (r *AirspaceApplicationRepository) FindByFlightTask(ctx context.Context, taskID string) (*gormModels.AirspaceApplication, error) {
	var app gormModels.AirspaceApplication

	err := r.db.WithContext(ctx).
		Where("flight_task_id = ?", taskID).
		Order("created_at DESC").
		First(&app).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch airspace application: %w", err)
	}
	return &app, nil
}
