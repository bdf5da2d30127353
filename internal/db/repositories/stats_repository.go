package repositories

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"low-altitude/uavops/internal/constants"
	"low-altitude/uavops/internal/models/dtos"
)

// StatsRepository runs the aggregate dashboard queries over raw SQL
type StatsRepository struct {
	db *sqlx.DB
}

func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

func (r *StatsRepository) countBy(ctx context.Context, query, what string) ([]dtos.CountByKey, error) {
	var rows []dtos.CountByKey
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to count %s: %w", what, err)
	}
	return rows, nil
}

func (r *StatsRepository) WorkOrdersByStatus(ctx context.Context) ([]dtos.CountByKey, error) {
	return r.countBy(ctx, constants.CountWorkOrdersByStatus, "work orders")
}

func (r *StatsRepository) PilotsByStatus(ctx context.Context) ([]dtos.CountByKey, error) {
	return r.countBy(ctx, constants.CountPilotsByStatus, "pilots")
}

func (r *StatsRepository) AircraftByManufacturer(ctx context.Context) ([]dtos.CountByKey, error) {
	return r.countBy(ctx, constants.CountAircraftByManufacturer, "aircraft by manufacturer")
}

func (r *StatsRepository) AircraftByActive(ctx context.Context) ([]dtos.CountByKey, error) {
	return r.countBy(ctx, constants.CountAircraftByActive, "aircraft by status")
}

// CountOrdersWithPrefix counts order numbers starting with prefix
func (r *StatsRepository) CountOrdersWithPrefix(ctx context.Context, prefix string) (int, error) {
	var n int
	query := r.db.Rebind(constants.CountWorkOrdersCreatedOnDay)
	if err := r.db.GetContext(ctx, &n, query, prefix+"%"); err != nil {
		return 0, fmt.Errorf("failed to count work orders: %w", err)
	}
	return n, nil
}

// Ping checks database connectivity
func (r *StatsRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
