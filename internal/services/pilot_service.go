package services

import (
	"context"

	"low-altitude/uavops/internal/common"
	"low-altitude/uavops/internal/constants"
	"low-altitude/uavops/internal/db/repositories"
	"low-altitude/uavops/internal/models/dtos"
	gormModels "low-altitude/uavops/internal/models/gorm"
)

type PilotService struct {
	repo  *repositories.PilotRepository
	stats *repositories.StatsRepository
	cache common.CacheInterface
}

func NewPilotService(repo *repositories.PilotRepository, stats *repositories.StatsRepository, cache common.CacheInterface) *PilotService {
	return &PilotService{repo: repo, stats: stats, cache: cache}
}

func (s *PilotService) List(ctx context.Context, keyword, status string) ([]gormModels.Pilot, error) {
	st := constants.PilotStatus(status)
	if status != "" && !st.Valid() {
		return nil, invalid("unknown pilot status %q", status)
	}
	return s.repo.List(ctx, keyword, st)
}

func (s *PilotService) UpdateStatus(ctx context.Context, id, status string) (*gormModels.Pilot, error) {
	st := constants.PilotStatus(status)
	if !st.Valid() {
		return nil, invalid("unknown pilot status %q", status)
	}
	if err := s.repo.UpdateStatus(ctx, id, st); err != nil {
		return nil, err
	}
	s.cache.Delete(string(constants.CachePrefixPilotStats))
	return s.repo.GetByID(ctx, id)
}

func (s *PilotService) Stats(ctx context.Context) (*dtos.PilotStats, error) {
	return common.CachedAs(s.cache, string(constants.CachePrefixPilotStats), statsTTL, func() (*dtos.PilotStats, error) {
		rows, err := s.stats.PilotsByStatus(ctx)
		if err != nil {
			return nil, err
		}
		out := &dtos.PilotStats{}
		for _, row := range rows {
			out.Total += row.Count
			switch constants.PilotStatus(row.Key) {
			case constants.PilotIdle:
				out.Idle = row.Count
			case constants.PilotBusy:
				out.Busy = row.Count
			case constants.PilotLeave:
				out.Leave = row.Count
			}
		}
		return out, nil
	})
}
