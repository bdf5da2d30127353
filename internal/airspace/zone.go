package airspace

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"low-altitude/uavops/internal/geo"
)

const (
	KindCircle  = "circle"
	KindPolygon = "polygon"
)

// Zone is a restricted airspace volume: a 2D footprint extruded from the
// ground up to a ceiling. Zones are immutable once built.
type Zone interface {
	ID() string
	Name() string
	Kind() string
	// Ceiling is the altitude in metres at or below which the zone applies.
	Ceiling() float64
	Description() string
	// Contains reports whether the point is inside the footprint (boundary
	// inclusive) and at or below the ceiling.
	Contains(p geo.Waypoint) bool
}

// Circle is a cylindrical zone around a centre point.
type Circle struct {
	ZoneID   string
	ZoneName string
	Info     string
	Center   orb.Point
	Radius   float64
	MaxAlt   float64
}

func (c *Circle) ID() string          { return c.ZoneID }
func (c *Circle) Name() string        { return c.ZoneName }
func (c *Circle) Kind() string        { return KindCircle }
func (c *Circle) Ceiling() float64    { return c.MaxAlt }
func (c *Circle) Description() string { return c.Info }

func (c *Circle) Contains(p geo.Waypoint) bool {
	if p.Altitude > c.MaxAlt {
		return false
	}
	centre := geo.Waypoint{Longitude: c.Center.Lon(), Latitude: c.Center.Lat()}
	return geo.Distance(centre, p) <= c.Radius
}

// Polygon is a prism zone over a simple ring of lng/lat vertices.
type Polygon struct {
	ZoneID   string
	ZoneName string
	Info     string
	Boundary orb.Ring
	MaxAlt   float64
}

func (z *Polygon) ID() string          { return z.ZoneID }
func (z *Polygon) Name() string        { return z.ZoneName }
func (z *Polygon) Kind() string        { return KindPolygon }
func (z *Polygon) Ceiling() float64    { return z.MaxAlt }
func (z *Polygon) Description() string { return z.Info }

// Contains treats points on an edge or vertex as inside.
func (z *Polygon) Contains(p geo.Waypoint) bool {
	if p.Altitude > z.MaxAlt || len(z.Boundary) < 3 {
		return false
	}
	return planar.RingContains(z.Boundary, p.Point())
}

// View is the JSON shape zones are published in.
type View struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Kind        string       `json:"type"`
	Description string       `json:"description,omitempty"`
	Ceiling     float64      `json:"maxAlt"`
	Center      []float64    `json:"center,omitempty"`
	Radius      float64      `json:"radius,omitempty"`
	Boundary    [][2]float64 `json:"positions,omitempty"`
}

// Describe converts a zone into its published form.
func Describe(z Zone) View {
	v := View{
		ID:          z.ID(),
		Name:        z.Name(),
		Kind:        z.Kind(),
		Description: z.Description(),
		Ceiling:     z.Ceiling(),
	}

	switch t := z.(type) {
	case *Circle:
		v.Center = []float64{t.Center.Lon(), t.Center.Lat()}
		v.Radius = t.Radius
	case *Polygon:
		for _, pt := range t.Boundary {
			v.Boundary = append(v.Boundary, [2]float64{pt.Lon(), pt.Lat()})
		}
	}
	return v
}
