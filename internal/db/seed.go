package db

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"low-altitude/uavops/internal/constants"
	"low-altitude/uavops/internal/geo"
	"low-altitude/uavops/internal/logging"
	gormModels "low-altitude/uavops/internal/models/gorm"
)

// Seed fills empty tables with the demonstration fleet. Tables that already
// hold rows are left alone.
func Seed(ctx context.Context, db *gorm.DB) error {
	seeders := []struct {
		model interface{}
		rows  func() interface{}
	}{
		{&gormModels.Pilot{}, func() interface{} { return defaultPilots() }},
		{&gormModels.AircraftModel{}, func() interface{} { return defaultAircraft() }},
		{&gormModels.Route{}, func() interface{} { return defaultRoutes() }},
		{&gormModels.WorkOrder{}, func() interface{} { return defaultWorkOrders() }},
	}

	for _, s := range seeders {
		var count int64
		if err := db.WithContext(ctx).Model(s.model).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count %T: %w", s.model, err)
		}
		if count > 0 {
			continue
		}
		if err := db.WithContext(ctx).Create(s.rows()).Error; err != nil {
			return fmt.Errorf("failed to seed %T: %w", s.model, err)
		}
		logging.Info("Seeded table", "model", fmt.Sprintf("%T", s.model))
	}
	return nil
}

func defaultPilots() []gormModels.Pilot {
	return []gormModels.Pilot{
		{ID: "pilot-001", Name: "Zhang Wei", Level: "Expert", LicenseNo: "UAV-2023-8888", Status: constants.PilotIdle, FlightHours: 1250, Phone: "13800000001"},
		{ID: "pilot-002", Name: "Li Na", Level: "L3", LicenseNo: "UAV-2023-8889", Status: constants.PilotBusy, FlightHours: 890, Phone: "13800000002"},
		{ID: "pilot-003", Name: "Wang Qiang", Level: "L2", LicenseNo: "UAV-2024-0012", Status: constants.PilotLeave, FlightHours: 320, Phone: "13800000003"},
		{ID: "pilot-004", Name: "Zhao Min", Level: "L3", LicenseNo: "UAV-2023-6621", Status: constants.PilotIdle, FlightHours: 650, Phone: "13800000004"},
	}
}

func defaultAircraft() []gormModels.AircraftModel {
	return []gormModels.AircraftModel{
		{
			ModelName:         "DJI Mini 3 Pro",
			Manufacturer:      "DJI",
			ModelCode:         "DJI-MINI3PRO",
			MaxFlightTime:     34,
			MaxFlightDistance: 12,
			MaxAltitude:       120,
			MaxSpeed:          16,
			PayloadCapacity:   0.249,
			BatteryCapacity:   2453,
			Specifications: gormModels.JSONMap{
				"weight": 249,
				"camera": map[string]interface{}{"resolution": "4K/60fps", "zoomRange": "3x"},
			},
			Status:    constants.AircraftActive,
			CreatedBy: "admin",
		},
	}
}

func defaultRoutes() []gormModels.Route {
	path := geo.Path{geo.NewWaypoint(117.2, 31.8, 100), geo.NewWaypoint(117.22, 31.82, 120)}
	return []gormModels.Route{
		{
			Name:          "Test Route A",
			Waypoints:     path,
			Speed:         geo.DefaultSpeed,
			Altitude:      100,
			Distance:      path.Length(),
			EstimatedTime: path.Length() / geo.DefaultSpeed / 60,
		},
	}
}

func defaultWorkOrders() []gormModels.WorkOrder {
	created := time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)
	return []gormModels.WorkOrder{
		{
			ID:          "WO-001",
			OrderNo:     "WO-20240501-001",
			Type:        constants.WorkOrderInspection,
			Status:      constants.WorkOrderPending,
			Priority:    "high",
			Title:       "Routine inspection of high-tech zone power facilities",
			Description: "Infrared temperature survey of the substation and nearby transmission lines.",
			Location:    gormModels.Location{Longitude: 117.2, Latitude: 31.8, Address: "Innovation Avenue, High-tech Zone"},
			CreatedAt:   created,
			UpdatedAt:   created,
		},
		{
			ID:          "WO-002",
			OrderNo:     "WO-20240502-002",
			Type:        constants.WorkOrderEmergency,
			Status:      constants.WorkOrderProcessing,
			Priority:    "critical",
			Title:       "Forest fire emergency monitoring",
			Description: "Fire reported, dispatch a drone immediately.",
			Location:    gormModels.Location{Longitude: 117.15, Latitude: 31.75, Address: "Dashu Mountain Forest Park"},
			CreatedAt:   created.Add(25*time.Hour + 30*time.Minute),
			UpdatedAt:   created.Add(25*time.Hour + 45*time.Minute),
		},
	}
}
