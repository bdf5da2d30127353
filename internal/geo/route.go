package geo

import "time"

// DefaultSpeed is used when a route carries no positive speed (m/s).
const DefaultSpeed = 100.0

// Route is an ordered path plus cruise parameters.
type Route struct {
	ID          string    `json:"id,omitempty"`
	Name        string    `json:"name"`
	Waypoints   Path      `json:"waypoints"`
	Speed       float64   `json:"speed"`
	Altitude    float64   `json:"altitude"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}

// EffectiveSpeed returns the route speed or DefaultSpeed when unset.
func (r *Route) EffectiveSpeed() float64 {
	if r.Speed > 0 {
		return r.Speed
	}
	return DefaultSpeed
}

// Simulatable reports whether the route has enough points to fly.
func (r *Route) Simulatable() bool {
	return r != nil && len(r.Waypoints) >= 2
}
