package gorm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"low-altitude/uavops/internal/constants"
)

type FlightTask struct {
	ID           string               `gorm:"column:id;primaryKey;size:36" json:"id"`
	Name         string               `gorm:"column:name;not null" json:"name"`
	Description  string               `gorm:"column:description" json:"description,omitempty"`
	Status       constants.TaskStatus `gorm:"column:status;index" json:"status"`
	AircraftID   *uint                `gorm:"column:aircraft_id" json:"aircraftId,omitempty"`
	AircraftName string               `gorm:"column:aircraft_name" json:"aircraftName,omitempty"`
	RouteID      *string              `gorm:"column:route_id" json:"routeId,omitempty"`
	RouteName    string               `gorm:"column:route_name" json:"routeName,omitempty"`
	PilotID      *string              `gorm:"column:pilot_id" json:"pilotId,omitempty"`
	PilotName    string               `gorm:"column:pilot_name" json:"pilotName,omitempty"`
	WorkOrderID  *string              `gorm:"column:work_order_id;index" json:"workOrderId,omitempty"`
	WorkOrderNo  string               `gorm:"column:work_order_no" json:"workOrderNo,omitempty"`
	CreatedAt    time.Time            `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time            `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName specifies the table name for GORM
func (FlightTask) TableName() string {
	return "flight_tasks"
}

func (f *FlightTask) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
