package gorm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"low-altitude/uavops/internal/constants"
)

// Location is the site a work order refers to.
type Location struct {
	Longitude float64 `gorm:"column:lng" json:"lng"`
	Latitude  float64 `gorm:"column:lat" json:"lat"`
	Address   string  `gorm:"column:address" json:"address,omitempty"`
}

type WorkOrder struct {
	ID           string                    `gorm:"column:id;primaryKey;size:36" json:"id"`
	OrderNo      string                    `gorm:"column:order_no;uniqueIndex" json:"orderNo"`
	Title        string                    `gorm:"column:title;not null" json:"title"`
	Type         constants.WorkOrderType   `gorm:"column:type;index" json:"type"`
	Priority     string                    `gorm:"column:priority" json:"priority"`
	Status       constants.WorkOrderStatus `gorm:"column:status;index" json:"status"`
	Description  string                    `gorm:"column:description" json:"description,omitempty"`
	Location     Location                  `gorm:"embedded;embeddedPrefix:location_" json:"location"`
	RouteID      *string                   `gorm:"column:route_id" json:"routeId,omitempty"`
	AircraftID   *uint                     `gorm:"column:aircraft_id" json:"aircraftId,omitempty"`
	PilotID      *string                   `gorm:"column:pilot_id" json:"pilotId,omitempty"`
	FlightTaskID *string                   `gorm:"column:flight_task_id" json:"flightTaskId,omitempty"`
	CreatedBy    string                    `gorm:"column:created_by" json:"createdBy,omitempty"`
	CreatedAt    time.Time                 `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time                 `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName specifies the table name for GORM
func (WorkOrder) TableName() string {
	return "work_orders"
}

func (w *WorkOrder) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return nil
}
