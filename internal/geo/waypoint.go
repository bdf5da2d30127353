package geo

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// Waypoint is a single 3D navigation point. Altitude is metres above the
// reference surface used by the map.
type Waypoint struct {
	Longitude float64 `json:"lng"`
	Latitude  float64 `json:"lat"`
	Altitude  float64 `json:"alt"`
}

// NewWaypoint builds a waypoint from longitude, latitude and altitude.
func NewWaypoint(lng, lat, alt float64) Waypoint {
	return Waypoint{Longitude: lng, Latitude: lat, Altitude: alt}
}

// Point returns the 2D footprint of the waypoint.
func (w Waypoint) Point() orb.Point {
	return orb.Point{w.Longitude, w.Latitude}
}

// Tuple returns the [lng, lat, alt] encoding used by stored routes.
func (w Waypoint) Tuple() [3]float64 {
	return [3]float64{w.Longitude, w.Latitude, w.Altitude}
}

type waypointObject struct {
	Lng       *float64 `json:"lng"`
	Lat       *float64 `json:"lat"`
	Alt       *float64 `json:"alt"`
	Longitude *float64 `json:"longitude"`
	Latitude  *float64 `json:"latitude"`
	Altitude  *float64 `json:"altitude"`
}

// UnmarshalJSON accepts both the tuple form [lng, lat, alt] and the keyed
// form {lng, lat, alt}. A missing altitude is coerced to 0.
func (w *Waypoint) UnmarshalJSON(data []byte) error {
	wp, _, err := decodeWaypoint(data)
	if err != nil {
		return err
	}
	*w = wp
	return nil
}

// WaypointInput decodes like Waypoint but remembers whether an altitude was
// given, so callers can tell a missing altitude from an explicit 0.
type WaypointInput struct {
	Waypoint
	HasAltitude bool
}

func (in *WaypointInput) UnmarshalJSON(data []byte) error {
	wp, hasAlt, err := decodeWaypoint(data)
	if err != nil {
		return err
	}
	in.Waypoint = wp
	in.HasAltitude = hasAlt
	return nil
}

func decodeWaypoint(data []byte) (Waypoint, bool, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Waypoint{}, false, fmt.Errorf("waypoint: empty value")
	}

	switch data[0] {
	case '[':
		var tuple []float64
		if err := json.Unmarshal(data, &tuple); err != nil {
			return Waypoint{}, false, fmt.Errorf("waypoint: invalid tuple: %w", err)
		}
		if len(tuple) < 2 || len(tuple) > 3 {
			return Waypoint{}, false, fmt.Errorf("waypoint: tuple must have 2 or 3 elements, got %d", len(tuple))
		}
		w := Waypoint{Longitude: tuple[0], Latitude: tuple[1]}
		if len(tuple) == 3 {
			w.Altitude = tuple[2]
		}
		return w, len(tuple) == 3, nil

	case '{':
		var obj waypointObject
		if err := json.Unmarshal(data, &obj); err != nil {
			return Waypoint{}, false, fmt.Errorf("waypoint: invalid object: %w", err)
		}
		lng := firstOf(obj.Lng, obj.Longitude)
		lat := firstOf(obj.Lat, obj.Latitude)
		if lng == nil || lat == nil {
			return Waypoint{}, false, fmt.Errorf("waypoint: longitude and latitude are required")
		}
		w := Waypoint{Longitude: *lng, Latitude: *lat}
		alt := firstOf(obj.Alt, obj.Altitude)
		if alt != nil {
			w.Altitude = *alt
		}
		return w, alt != nil, nil
	}

	return Waypoint{}, false, fmt.Errorf("waypoint: unsupported encoding %q", data)
}

func firstOf(vals ...*float64) *float64 {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

// Path is an ordered list of waypoints. It serialises as a list of
// [lng, lat, alt] tuples, the format routes are stored and exported in.
type Path []Waypoint

// MarshalJSON writes the tuple encoding.
func (p Path) MarshalJSON() ([]byte, error) {
	tuples := make([][3]float64, len(p))
	for i, w := range p {
		tuples[i] = w.Tuple()
	}
	return json.Marshal(tuples)
}

// Scan implements sql.Scanner so paths can live in a text column.
func (p *Path) Scan(src interface{}) error {
	if src == nil {
		*p = nil
		return nil
	}

	var raw []byte
	switch v := src.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("Path: cannot scan type %T", src)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		*p = nil
		return nil
	}

	var out []Waypoint
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("Path: %w", err)
	}
	*p = out
	return nil
}

// Value implements driver.Valuer.
func (p Path) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	b, err := p.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Distance returns the great-circle distance in metres between the
// footprints of a and b.
func Distance(a, b Waypoint) float64 {
	return geo.DistanceHaversine(a.Point(), b.Point())
}

// SlantDistance includes the altitude difference.
func SlantDistance(a, b Waypoint) float64 {
	h := Distance(a, b)
	v := b.Altitude - a.Altitude
	return math.Sqrt(h*h + v*v)
}

// Bearing returns the initial heading from a to b in degrees, 0..360.
func Bearing(a, b Waypoint) float64 {
	deg := geo.Bearing(a.Point(), b.Point())
	if deg < 0 {
		deg += 360
	}
	return deg
}

// Midpoint averages longitude and latitude linearly and takes the higher of
// the two altitudes, the conservative choice for ceiling checks.
func Midpoint(a, b Waypoint) Waypoint {
	return Waypoint{
		Longitude: (a.Longitude + b.Longitude) / 2,
		Latitude:  (a.Latitude + b.Latitude) / 2,
		Altitude:  math.Max(a.Altitude, b.Altitude),
	}
}

// Lerp interpolates linearly between a and b; t is clamped to [0, 1].
func Lerp(a, b Waypoint, t float64) Waypoint {
	t = math.Max(0, math.Min(1, t))
	return Waypoint{
		Longitude: a.Longitude + (b.Longitude-a.Longitude)*t,
		Latitude:  a.Latitude + (b.Latitude-a.Latitude)*t,
		Altitude:  a.Altitude + (b.Altitude-a.Altitude)*t,
	}
}

// Length returns the sum of slant distances along the path in metres.
func (p Path) Length() float64 {
	total := 0.0
	for i := 1; i < len(p); i++ {
		total += SlantDistance(p[i-1], p[i])
	}
	return total
}

// AltitudeRange returns the lowest and highest altitude on the path.
func (p Path) AltitudeRange() (min, max float64) {
	if len(p) == 0 {
		return 0, 0
	}
	min, max = p[0].Altitude, p[0].Altitude
	for _, w := range p[1:] {
		min = math.Min(min, w.Altitude)
		max = math.Max(max, w.Altitude)
	}
	return min, max
}
