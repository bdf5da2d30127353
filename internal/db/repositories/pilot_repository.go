package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"low-altitude/uavops/internal/constants"
	gormModels "low-altitude/uavops/internal/models/gorm"
)

// PilotRepository handles pilot roster rows
type PilotRepository struct {
	db *gorm.DB
}

func NewPilotRepository(db *gorm.DB) *PilotRepository {
	return &PilotRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *PilotRepository) WithTx(tx *gorm.DB) *PilotRepository {
	return &PilotRepository{db: tx}
}

func (r *PilotRepository) List(ctx context.Context, keyword string, status constants.PilotStatus) ([]gormModels.Pilot, error) {
	q := r.db.WithContext(ctx).Order("id")
	if keyword != "" {
		kw := likePattern(keyword)
		q = q.Where("LOWER(name) LIKE ? OR LOWER(license_no) LIKE ?", kw, kw)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var pilots []gormModels.Pilot
	if err := q.Find(&pilots).Error; err != nil {
		return nil, fmt.Errorf("failed to list pilots: %w", err)
	}
	return pilots, nil
}

func (r *PilotRepository) GetByID(ctx context.Context, id string) (*gormModels.Pilot, error) {
	var pilot gormModels.Pilot

	err := r.db.WithContext(ctx).Where("id = ?", id).First(&pilot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch pilot: %w", err)
	}
	return &pilot, nil
}

// UpdateStatus returns ErrNotFound when no pilot has id
func (r *PilotRepository) UpdateStatus(ctx context.Context, id string, status constants.PilotStatus) error {
	res := r.db.WithContext(ctx).
		Model(&gormModels.Pilot{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to update pilot status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// TransitionStatus moves a pilot from one status to another. It returns
// ErrStateChanged when the pilot exists but is not in from.
func (r *PilotRepository) TransitionStatus(ctx context.Context, id string, from, to constants.PilotStatus) error {
	res := r.db.WithContext(ctx).
		Model(&gormModels.Pilot{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return fmt.Errorf("failed to update pilot status: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var n int64
	if err := r.db.WithContext(ctx).Model(&gormModels.Pilot{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return fmt.Errorf("failed to count pilot: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrStateChanged
}
