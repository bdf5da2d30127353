package conflict

import (
	"fmt"

	"low-altitude/uavops/internal/airspace"
	"low-altitude/uavops/internal/geo"
)

const MsgRouteClear = "route is clear of all no-fly zones"

// MsgTooShort is returned for routes that cannot be checked meaningfully.
const MsgTooShort = "route has fewer than 2 waypoints, nothing to check"

// Violation locates one intersection between a route and a zone. Indices
// are 1-based as shown to operators. SegmentEnd is set only for segment
// violations.
type Violation struct {
	WaypointIndex int    `json:"waypointIndex"`
	SegmentEnd    int    `json:"segmentEnd,omitempty"`
	ZoneID        string `json:"zoneId"`
	ZoneName      string `json:"zoneName"`
	Description   string `json:"description"`
}

// Result is the verdict of a route check.
type Result struct {
	Valid      bool        `json:"valid"`
	Message    string      `json:"msg"`
	Violations []Violation `json:"violations,omitempty"`
}

// Recorder receives check outcomes. *metrics.MetricsRegistry satisfies it.
type Recorder interface {
	ObserveCheck(valid bool)
}

// RouteChecker is what sessions and services depend on.
type RouteChecker interface {
	Check(path []geo.Waypoint) Result
	Analyze(path []geo.Waypoint) []Violation
}

// Checker tests routes against a zone registry.
type Checker struct {
	registry *airspace.Registry
	recorder Recorder
}

var _ RouteChecker = (*Checker)(nil)

func NewChecker(registry *airspace.Registry, recorder Recorder) *Checker {
	return &Checker{registry: registry, recorder: recorder}
}

func (c *Checker) Registry() *airspace.Registry {
	return c.registry
}

// Check stops at the first violation. Waypoints are tested before segment
// midpoints, so a waypoint conflict always wins over a segment one.
func (c *Checker) Check(path []geo.Waypoint) Result {
	res := c.check(path)
	if c.recorder != nil {
		c.recorder.ObserveCheck(res.Valid)
	}
	return res
}

func (c *Checker) check(path []geo.Waypoint) Result {
	if len(path) < 2 {
		return Result{Valid: true, Message: MsgTooShort}
	}

	zones := c.registry.Zones()

	for i, p := range path {
		for _, z := range zones {
			if z.Contains(p) {
				v := waypointViolation(i, z)
				return Result{Valid: false, Message: v.Description, Violations: []Violation{v}}
			}
		}
	}

	// Only the segment midpoint is sampled; a segment can clip a zone
	// corner without either endpoint or its midpoint being inside.
	for i := 0; i < len(path)-1; i++ {
		mid := geo.Midpoint(path[i], path[i+1])
		for _, z := range zones {
			if z.Contains(mid) {
				v := Violation{
					WaypointIndex: i + 1,
					SegmentEnd:    i + 2,
					ZoneID:        z.ID(),
					ZoneName:      z.Name(),
					Description:   fmt.Sprintf("warning: segment %d-%d may cross %s", i+1, i+2, z.Name()),
				}
				return Result{Valid: false, Message: v.Description, Violations: []Violation{v}}
			}
		}
	}

	return Result{Valid: true, Message: MsgRouteClear}
}

// Analyze reports every waypoint that lies inside any zone, without short
// circuiting. Segments are not sampled.
func (c *Checker) Analyze(path []geo.Waypoint) []Violation {
	var out []Violation
	zones := c.registry.Zones()
	for i, p := range path {
		for _, z := range zones {
			if z.Contains(p) {
				out = append(out, waypointViolation(i, z))
			}
		}
	}
	return out
}

func waypointViolation(i int, z airspace.Zone) Violation {
	return Violation{
		WaypointIndex: i + 1,
		ZoneID:        z.ID(),
		ZoneName:      z.Name(),
		Description:   fmt.Sprintf("warning: waypoint %d lies inside %s", i+1, z.Name()),
	}
}
