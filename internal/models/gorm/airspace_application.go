package gorm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"low-altitude/uavops/internal/constants"
)

// AirspaceApplication is a request to fly a route in a time window.
type AirspaceApplication struct {
	ID           string                      `gorm:"column:id;primaryKey;size:36" json:"id"`
	Name         string                      `gorm:"column:name;not null" json:"name"`
	FlightTaskID *string                     `gorm:"column:flight_task_id;index" json:"flightTaskId,omitempty"`
	RouteID      *string                     `gorm:"column:route_id" json:"routeId,omitempty"`
	RouteName    string                      `gorm:"column:route_name" json:"routeName,omitempty"`
	StartTime    *time.Time                  `gorm:"column:start_time" json:"startTime,omitempty"`
	EndTime      *time.Time                  `gorm:"column:end_time" json:"endTime,omitempty"`
	Status       constants.ApplicationStatus `gorm:"column:status;index" json:"status"`
	Description  string                      `gorm:"column:description" json:"description,omitempty"`
	CheckValid   *bool                       `gorm:"column:check_valid" json:"checkValid,omitempty"`
	CheckMessage string                      `gorm:"column:check_message" json:"checkMessage,omitempty"`
	ReviewNote   string                      `gorm:"column:review_note" json:"reviewNote,omitempty"`
	CreatedAt    time.Time                   `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time                   `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName specifies the table name for GORM
func (AirspaceApplication) TableName() string {
	return "airspace_applications"
}

func (a *AirspaceApplication) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
