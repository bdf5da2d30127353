package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"low-altitude/uavops/internal/common"
	"low-altitude/uavops/internal/constants"
	"low-altitude/uavops/internal/db/repositories"
	"low-altitude/uavops/internal/models/dtos"
	gormModels "low-altitude/uavops/internal/models/gorm"
)

const statsTTL = 30 * time.Second

// FleetService manages the aircraft model catalogue
type FleetService struct {
	repo  *repositories.AircraftRepository
	stats *repositories.StatsRepository
	cache common.CacheInterface
}

func NewFleetService(repo *repositories.AircraftRepository, stats *repositories.StatsRepository, cache common.CacheInterface) *FleetService {
	return &FleetService{repo: repo, stats: stats, cache: cache}
}

func (s *FleetService) List(ctx context.Context, keyword string, status *int, page, size int) (*dtos.PageResponse, error) {
	page, size, offset := common.PageBounds(page, size)
	items, total, err := s.repo.List(ctx, repositories.AircraftFilter{
		Keyword: keyword,
		Status:  status,
		Offset:  offset,
		Limit:   size,
	})
	if err != nil {
		return nil, err
	}
	return &dtos.PageResponse{Items: items, Total: total, Page: page, PageSize: size}, nil
}

func (s *FleetService) Get(ctx context.Context, id uint) (*gormModels.AircraftModel, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, repositories.ErrNotFound
	}
	return item, nil
}

// Options lists enabled models for selection widgets
func (s *FleetService) Options(ctx context.Context) ([]dtos.AircraftOption, error) {
	return common.CachedAs(s.cache, string(constants.CachePrefixAircraftOpts), statsTTL, func() ([]dtos.AircraftOption, error) {
		items, err := s.repo.ListActive(ctx)
		if err != nil {
			return nil, err
		}
		opts := make([]dtos.AircraftOption, 0, len(items))
		for _, it := range items {
			opts = append(opts, dtos.AircraftOption{
				ID:    it.ID,
				Label: fmt.Sprintf("%s %s", it.Manufacturer, it.ModelName),
				Code:  it.ModelCode,
			})
		}
		return opts, nil
	})
}

func (s *FleetService) Stats(ctx context.Context) (*dtos.AircraftStats, error) {
	return common.CachedAs(s.cache, string(constants.CachePrefixAircraftStats), statsTTL, func() (*dtos.AircraftStats, error) {
		byActive, err := s.stats.AircraftByActive(ctx)
		if err != nil {
			return nil, err
		}
		byMaker, err := s.stats.AircraftByManufacturer(ctx)
		if err != nil {
			return nil, err
		}

		out := &dtos.AircraftStats{ByManufacturer: make(map[string]int64, len(byMaker))}
		for _, row := range byActive {
			out.Total += row.Count
			if row.Key == "1" {
				out.Active += row.Count
			} else {
				out.Inactive += row.Count
			}
		}
		for _, row := range byMaker {
			out.ByManufacturer[row.Key] = row.Count
		}
		return out, nil
	})
}

func (s *FleetService) Create(ctx context.Context, req dtos.AircraftRequest) (*gormModels.AircraftModel, error) {
	if err := validateAircraft(req); err != nil {
		return nil, err
	}
	taken, err := s.repo.CodeTaken(ctx, req.ModelCode, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, repositories.ErrDuplicateCode
	}

	item := &gormModels.AircraftModel{Status: constants.AircraftActive, CreatedBy: "admin"}
	applyAircraft(item, req)
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	s.invalidate()
	return item, nil
}

func (s *FleetService) Update(ctx context.Context, id uint, req dtos.AircraftRequest) (*gormModels.AircraftModel, error) {
	if err := validateAircraft(req); err != nil {
		return nil, err
	}
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	taken, err := s.repo.CodeTaken(ctx, req.ModelCode, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, repositories.ErrDuplicateCode
	}

	applyAircraft(item, req)
	if err := s.repo.Save(ctx, item); err != nil {
		return nil, err
	}
	s.invalidate()
	return item, nil
}

func (s *FleetService) Delete(ctx context.Context, id uint) error {
	n, err := s.DeleteMany(ctx, []uint{id})
	if err != nil {
		return err
	}
	if n == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (s *FleetService) DeleteMany(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, invalid("no ids supplied")
	}
	n, err := s.repo.DeleteMany(ctx, ids)
	if err != nil {
		return 0, err
	}
	s.invalidate()
	return n, nil
}

func (s *FleetService) UpdateStatusMany(ctx context.Context, ids []uint, status int) (int64, error) {
	if len(ids) == 0 {
		return 0, invalid("no ids supplied")
	}
	if status != constants.AircraftActive && status != constants.AircraftInactive {
		return 0, invalid("status must be 0 or 1")
	}
	n, err := s.repo.UpdateStatusMany(ctx, ids, status)
	if err != nil {
		return 0, err
	}
	s.invalidate()
	return n, nil
}

func (s *FleetService) invalidate() {
	s.cache.Delete(string(constants.CachePrefixAircraftStats))
	s.cache.Delete(string(constants.CachePrefixAircraftOpts))
}

func validateAircraft(req dtos.AircraftRequest) error {
	if strings.TrimSpace(req.ModelName) == "" {
		return invalid("model name is required")
	}
	if strings.TrimSpace(req.ModelCode) == "" {
		return invalid("model code is required")
	}
	if req.Status != nil && *req.Status != constants.AircraftActive && *req.Status != constants.AircraftInactive {
		return invalid("status must be 0 or 1")
	}
	return nil
}

func applyAircraft(item *gormModels.AircraftModel, req dtos.AircraftRequest) {
	item.ModelName = strings.TrimSpace(req.ModelName)
	item.Manufacturer = req.Manufacturer
	item.ModelCode = strings.TrimSpace(req.ModelCode)
	item.MaxFlightTime = req.MaxFlightTime
	item.MaxFlightDistance = req.MaxFlightDistance
	item.MaxAltitude = req.MaxAltitude
	item.MaxSpeed = req.MaxSpeed
	item.PayloadCapacity = req.PayloadCapacity
	item.BatteryCapacity = req.BatteryCapacity
	item.Specifications = gormModels.JSONMap(req.Specifications)
	item.ImageURL = req.ImageURL
	if req.Status != nil {
		item.Status = *req.Status
	}
}
