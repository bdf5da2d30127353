package gorm

import "time"

// AircraftModel is a catalogue entry for a drone type.
type AircraftModel struct {
	ID                uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ModelName         string    `gorm:"column:model_name;not null" json:"modelName"`
	Manufacturer      string    `gorm:"column:manufacturer;index" json:"manufacturer"`
	ModelCode         string    `gorm:"column:model_code;uniqueIndex;not null" json:"modelCode"`
	MaxFlightTime     float64   `gorm:"column:max_flight_time" json:"maxFlightTime"`
	MaxFlightDistance float64   `gorm:"column:max_flight_distance" json:"maxFlightDistance"`
	MaxAltitude       float64   `gorm:"column:max_altitude" json:"maxAltitude"`
	MaxSpeed          float64   `gorm:"column:max_speed" json:"maxSpeed"`
	PayloadCapacity   float64   `gorm:"column:payload_capacity" json:"payloadCapacity"`
	BatteryCapacity   float64   `gorm:"column:battery_capacity" json:"batteryCapacity"`
	Specifications    JSONMap   `gorm:"column:specifications;type:text" json:"specifications,omitempty"`
	ImageURL          string    `gorm:"column:image_url" json:"imageUrl,omitempty"`
	Status            int       `gorm:"column:status" json:"status"`
	CreatedBy         string    `gorm:"column:created_by" json:"createdBy,omitempty"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt         time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName specifies the table name for GORM
func (AircraftModel) TableName() string {
	return "aircraft_models"
}
