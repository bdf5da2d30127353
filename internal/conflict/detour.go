package conflict

import (
	"github.com/paulmach/orb/planar"

	"low-altitude/uavops/internal/airspace"
	"low-altitude/uavops/internal/geo"
)

const (
	// DetourMargin pads circle zones when testing the direct leg, in metres.
	DetourMargin = 100.0
	// DetourOffset shifts the inserted waypoint north of the midpoint, in degrees.
	DetourOffset = 0.015
	// DetourAltitude is the altitude of the inserted waypoint.
	DetourAltitude = 300.0
)

// DetourPlan is a two- or three-point path from start to end. Check is the
// verdict of the planned path when the caller asked for one.
type DetourPlan struct {
	Path     geo.Path `json:"path"`
	Detoured bool     `json:"detoured"`
	ZoneID   string   `json:"zoneId,omitempty"`
	ZoneName string   `json:"zoneName,omitempty"`
	Check    *Result  `json:"check,omitempty"`
}

// Detour plans a leg from start to end around the first zone blocking it.
// Only the midpoint of the direct leg is tested, ignoring altitude: circles
// match within their radius plus DetourMargin, polygons when the footprint
// contains it. A blocked leg gets one waypoint DetourOffset north of the
// midpoint at DetourAltitude. The detoured path is not re-planned.
func Detour(registry *airspace.Registry, start, end geo.Waypoint) DetourPlan {
	plan := DetourPlan{Path: geo.Path{start, end}}
	if registry == nil {
		return plan
	}

	mid := geo.Midpoint(start, end)
	for _, z := range registry.Zones() {
		if !blocksLeg(z, mid) {
			continue
		}
		plan.Path = geo.Path{
			start,
			geo.NewWaypoint(mid.Longitude, mid.Latitude+DetourOffset, DetourAltitude),
			end,
		}
		plan.Detoured = true
		plan.ZoneID = z.ID()
		plan.ZoneName = z.Name()
		break
	}
	return plan
}

func blocksLeg(z airspace.Zone, mid geo.Waypoint) bool {
	switch zone := z.(type) {
	case *airspace.Circle:
		centre := geo.Waypoint{Longitude: zone.Center.Lon(), Latitude: zone.Center.Lat()}
		return geo.Distance(centre, mid) < zone.Radius+DetourMargin
	case *airspace.Polygon:
		return len(zone.Boundary) >= 3 && planar.RingContains(zone.Boundary, mid.Point())
	}
	return false
}
