package gorm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"low-altitude/uavops/internal/geo"
)

// Route is a saved flight path.
type Route struct {
	ID            string    `gorm:"column:id;primaryKey;size:36" json:"id"`
	Name          string    `gorm:"column:name;not null" json:"name"`
	Waypoints     geo.Path  `gorm:"column:waypoints;type:text" json:"waypoints"`
	Speed         float64   `gorm:"column:speed" json:"speed"`
	Altitude      float64   `gorm:"column:altitude" json:"altitude"`
	Description   string    `gorm:"column:description" json:"description,omitempty"`
	Distance      float64   `gorm:"column:distance" json:"distance"`
	EstimatedTime float64   `gorm:"column:estimated_time" json:"estimatedTime"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName specifies the table name for GORM
func (Route) TableName() string {
	return "routes"
}

func (r *Route) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// ToGeo converts the row into the planning type.
func (r *Route) ToGeo() geo.Route {
	return geo.Route{
		ID:          r.ID,
		Name:        r.Name,
		Waypoints:   append(geo.Path(nil), r.Waypoints...),
		Speed:       r.Speed,
		Altitude:    r.Altitude,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}
