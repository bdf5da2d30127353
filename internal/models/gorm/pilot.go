package gorm

import (
	"time"

	"low-altitude/uavops/internal/constants"
)

type Pilot struct {
	ID          string                `gorm:"column:id;primaryKey;size:36" json:"id"`
	Name        string                `gorm:"column:name;not null" json:"name"`
	Level       string                `gorm:"column:level" json:"level"`
	LicenseNo   string                `gorm:"column:license_no" json:"licenseNo"`
	Phone       string                `gorm:"column:phone" json:"phone,omitempty"`
	FlightHours float64               `gorm:"column:flight_hours" json:"flightHours"`
	Status      constants.PilotStatus `gorm:"column:status;index" json:"status"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time             `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName specifies the table name for GORM
func (Pilot) TableName() string {
	return "pilots"
}
