package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	gormModels "low-altitude/uavops/internal/models/gorm"
)

// RouteFilter narrows a route listing. Keyword matches name or description;
// nil bounds are open and set bounds are inclusive.
type RouteFilter struct {
	Keyword     string
	IDs         []string
	MinAltitude *float64
	MaxAltitude *float64
	MinSpeed    *float64
	MaxSpeed    *float64
}

// RouteRepository handles saved routes
type RouteRepository struct {
	db *gorm.DB
}

func NewRouteRepository(db *gorm.DB) *RouteRepository {
	return &RouteRepository{db: db}
}

// List returns routes, most recently updated first
func (r *RouteRepository) List(ctx context.Context, f RouteFilter) ([]gormModels.Route, error) {
	var routes []gormModels.Route

	q := r.db.WithContext(ctx).Order("updated_at DESC")
	if strings.TrimSpace(f.Keyword) != "" {
		pattern := likePattern(f.Keyword)
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(COALESCE(description, '')) LIKE ?)", pattern, pattern)
	}
	if len(f.IDs) > 0 {
		q = q.Where("id IN ?", f.IDs)
	}
	if f.MinAltitude != nil {
		q = q.Where("altitude >= ?", *f.MinAltitude)
	}
	if f.MaxAltitude != nil {
		q = q.Where("altitude <= ?", *f.MaxAltitude)
	}
	if f.MinSpeed != nil {
		q = q.Where("speed >= ?", *f.MinSpeed)
	}
	if f.MaxSpeed != nil {
		q = q.Where("speed <= ?", *f.MaxSpeed)
	}
	if err := q.Find(&routes).Error; err != nil {
		return nil, fmt.Errorf("failed to list routes: %w", err)
	}
	return routes, nil
}

// GetByID returns nil, nil when the route does not exist
func (r *RouteRepository) GetByID(ctx context.Context, id string) (*gormModels.Route, error) {
	var route gormModels.Route

	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&route).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch route: %w", err)
	}
	return &route, nil
}

// Upsert inserts the route or overwrites everything but created_at
func (r *RouteRepository) Upsert(ctx context.Context, route *gormModels.Route) error {
	route.UpdatedAt = time.Now()

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name",
				"waypoints",
				"speed",
				"altitude",
				"description",
				"distance",
				"estimated_time",
				"updated_at",
			}),
		}).
		Create(route).Error

	if err != nil {
		return fmt.Errorf("failed to save route: %w", err)
	}
	return nil
}

func (r *RouteRepository) Delete(ctx context.Context, id string) (int64, error) {
	return r.DeleteMany(ctx, []string{id})
}

func (r *RouteRepository) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	res := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&gormModels.Route{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete routes: %w", res.Error)
	}
	return res.RowsAffected, nil
}
