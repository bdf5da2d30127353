package api

import (
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"low-altitude/uavops/internal/airspace"
	"low-altitude/uavops/internal/common"
	"low-altitude/uavops/internal/conflict"
	"low-altitude/uavops/internal/db/repositories"
	"low-altitude/uavops/internal/metrics"
	"low-altitude/uavops/internal/services"
	"low-altitude/uavops/internal/session"
)

type Repositories struct {
	Routes       *repositories.RouteRepository
	Aircraft     *repositories.AircraftRepository
	Pilots       *repositories.PilotRepository
	WorkOrders   *repositories.WorkOrderRepository
	FlightTasks  *repositories.FlightTaskRepository
	Applications *repositories.AirspaceApplicationRepository
	Stats        *repositories.StatsRepository
}

type Services struct {
	Cache       common.CacheInterface
	Queue       common.QueueService
	Routes      *services.RouteService
	Fleet       *services.FleetService
	Pilots      *services.PilotService
	WorkOrders  *services.WorkOrderService
	FlightTasks *services.FlightTaskService
	Airspace    *services.AirspaceService
}

type Dependencies struct {
	Repo     *Repositories
	Services *Services
	Sessions *session.Manager
	Checker  conflict.RouteChecker
	Registry *airspace.Registry
	Metrics  *metrics.MetricsRegistry
	Gatherer prometheus.Gatherer
	SQL      *sqlx.DB
	UpSince  time.Time
}

// Infra is what the server process builds before wiring handlers.
type Infra struct {
	DB       *gorm.DB
	SQL      *sqlx.DB
	Cache    common.CacheInterface
	Queue    common.QueueService
	Registry *airspace.Registry
	Checker  conflict.RouteChecker
	Sessions *session.Manager
	Metrics  *metrics.MetricsRegistry
	// Gatherer backs /metrics; nil leaves it unmounted.
	Gatherer prometheus.Gatherer
}

func InitDependencies(in Infra) *Dependencies {
	repos := &Repositories{
		Routes:       repositories.NewRouteRepository(in.DB),
		Aircraft:     repositories.NewAircraftRepository(in.DB),
		Pilots:       repositories.NewPilotRepository(in.DB),
		WorkOrders:   repositories.NewWorkOrderRepository(in.DB),
		FlightTasks:  repositories.NewFlightTaskRepository(in.DB),
		Applications: repositories.NewAirspaceApplicationRepository(in.DB),
		Stats:        repositories.NewStatsRepository(in.SQL),
	}

	svcs := &Services{
		Cache:       in.Cache,
		Queue:       in.Queue,
		Routes:      services.NewRouteService(repos.Routes, in.Checker),
		Fleet:       services.NewFleetService(repos.Aircraft, repos.Stats, in.Cache),
		Pilots:      services.NewPilotService(repos.Pilots, repos.Stats, in.Cache),
		WorkOrders:  services.NewWorkOrderService(repos.WorkOrders, repos.Pilots, repos.Aircraft, repos.Stats, in.Queue, in.Cache, in.Metrics),
		FlightTasks: services.NewFlightTaskService(repos.FlightTasks, repos.WorkOrders, repos.Routes, repos.Pilots, repos.Aircraft),
		Airspace:    services.NewAirspaceService(repos.Applications, repos.Routes, in.Registry, in.Checker),
	}

	return &Dependencies{
		Repo:     repos,
		Services: svcs,
		Sessions: in.Sessions,
		Checker:  in.Checker,
		Registry: in.Registry,
		Metrics:  in.Metrics,
		Gatherer: in.Gatherer,
		SQL:      in.SQL,
		UpSince:  time.Now(),
	}
}
