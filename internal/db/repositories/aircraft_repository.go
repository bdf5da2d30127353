package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	gormModels "low-altitude/uavops/internal/models/gorm"
)

// AircraftFilter narrows the paged aircraft list
type AircraftFilter struct {
	Keyword string
	Status  *int
	Offset  int
	Limit   int
}

// AircraftRepository handles the aircraft model catalogue
type AircraftRepository struct {
	db *gorm.DB
}

func NewAircraftRepository(db *gorm.DB) *AircraftRepository {
	return &AircraftRepository{db: db}
}

// List returns one page plus the total row count for the filter
func (r *AircraftRepository) List(ctx context.Context, f AircraftFilter) ([]gormModels.AircraftModel, int64, error) {
	q := r.db.WithContext(ctx).Model(&gormModels.AircraftModel{})
	if f.Keyword != "" {
		kw := likePattern(f.Keyword)
		q = q.Where("LOWER(model_name) LIKE ? OR LOWER(manufacturer) LIKE ? OR LOWER(model_code) LIKE ?", kw, kw, kw)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count aircraft: %w", err)
	}

	var items []gormModels.AircraftModel
	err := q.Order("created_at DESC").Order("id DESC").
		Offset(f.Offset).
		Limit(f.Limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list aircraft: %w", err)
	}
	return items, total, nil
}

// ListActive returns enabled models for selection lists
func (r *AircraftRepository) ListActive(ctx context.Context) ([]gormModels.AircraftModel, error) {
	var items []gormModels.AircraftModel
	err := r.db.WithContext(ctx).
		Where("status = ?", 1).
		Order("model_name").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active aircraft: %w", err)
	}
	return items, nil
}

func (r *AircraftRepository) GetByID(ctx context.Context, id uint) (*gormModels.AircraftModel, error) {
	var item gormModels.AircraftModel

	err := r.db.WithContext(ctx).First(&item, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch aircraft: %w", err)
	}
	return &item, nil
}

// CodeTaken reports whether another model already uses code
func (r *AircraftRepository) CodeTaken(ctx context.Context, code string, excludeID uint) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&gormModels.AircraftModel{}).Where("model_code = ?", code)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check model code: %w", err)
	}
	return count > 0, nil
}

func (r *AircraftRepository) Create(ctx context.Context, item *gormModels.AircraftModel) error {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateCode
		}
		return fmt.Errorf("failed to create aircraft: %w", err)
	}
	return nil
}

func (r *AircraftRepository) Save(ctx context.Context, item *gormModels.AircraftModel) error {
	if err := r.db.WithContext(ctx).Save(item).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateCode
		}
		return fmt.Errorf("failed to update aircraft: %w", err)
	}
	return nil
}

func (r *AircraftRepository) DeleteMany(ctx context.Context, ids []uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&gormModels.AircraftModel{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete aircraft: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *AircraftRepository) UpdateStatusMany(ctx context.Context, ids []uint, status int) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&gormModels.AircraftModel{}).
		Where("id IN ?", ids).
		Update("status", status)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to update aircraft status: %w", res.Error)
	}
	return res.RowsAffected, nil
}
