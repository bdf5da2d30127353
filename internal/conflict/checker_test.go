package conflict

import (
	"math"
	"strings"
	"testing"

	"github.com/paulmach/orb"

	"low-altitude/uavops/internal/airspace"
	"low-altitude/uavops/internal/geo"
)

type mockRecorder struct {
	clear, conflict int
}

func (m *mockRecorder) ObserveCheck(valid bool) {
	if valid {
		m.clear++
	} else {
		m.conflict++
	}
}

func demoZone() *airspace.Registry {
	return airspace.NewRegistry(&airspace.Circle{
		ZoneID:   "a",
		ZoneName: "Demo Zone A",
		Center:   orb.Point{118.318711, 31.36727},
		Radius:   500,
		MaxAlt:   200,
	})
}

func TestCheckTooShortIsValid(t *testing.T) {
	rec := &mockRecorder{}
	c := NewChecker(demoZone(), rec)

	for _, path := range [][]geo.Waypoint{nil, {geo.NewWaypoint(118.318711, 31.36727, 100)}} {
		res := c.Check(path)
		if !res.Valid || res.Message != MsgTooShort {
			t.Errorf("expected valid informational result, got %+v", res)
		}
	}
	if rec.clear != 2 {
		t.Errorf("expected 2 recorded clear checks, got %d", rec.clear)
	}
}

func TestCheckWaypointInsideZone(t *testing.T) {
	rec := &mockRecorder{}
	c := NewChecker(demoZone(), rec)

	res := c.Check([]geo.Waypoint{
		geo.NewWaypoint(118.30, 31.36, 100),
		geo.NewWaypoint(118.318711, 31.36727, 150),
		geo.NewWaypoint(118.34, 31.38, 100),
	})

	if res.Valid {
		t.Fatal("expected conflict")
	}
	if res.Message != "warning: waypoint 2 lies inside Demo Zone A" {
		t.Errorf("unexpected message %q", res.Message)
	}
	if len(res.Violations) != 1 || res.Violations[0].WaypointIndex != 2 {
		t.Errorf("unexpected violations %+v", res.Violations)
	}
	if rec.conflict != 1 {
		t.Errorf("expected 1 recorded conflict, got %d", rec.conflict)
	}
}

func TestCheckAboveCeilingIsClear(t *testing.T) {
	c := NewChecker(demoZone(), nil)

	res := c.Check([]geo.Waypoint{
		geo.NewWaypoint(118.318711, 31.36727, 250),
		geo.NewWaypoint(118.319, 31.3675, 260),
	})
	if !res.Valid || res.Message != MsgRouteClear {
		t.Errorf("expected clear route above ceiling, got %+v", res)
	}
}

func TestCheckSegmentMidpointInsideZone(t *testing.T) {
	c := NewChecker(demoZone(), nil)

	// Both endpoints are about 570 m from the centre; the midpoint is the centre.
	res := c.Check([]geo.Waypoint{
		geo.NewWaypoint(118.312711, 31.36727, 100),
		geo.NewWaypoint(118.324711, 31.36727, 100),
	})

	if res.Valid {
		t.Fatal("expected segment conflict")
	}
	if !strings.Contains(res.Message, "segment 1-2 may cross Demo Zone A") {
		t.Errorf("unexpected message %q", res.Message)
	}
	if res.Violations[0].SegmentEnd != 2 {
		t.Errorf("expected segment end 2, got %+v", res.Violations[0])
	}
}

func TestCheckSegmentMidpointUsesMaxAltitude(t *testing.T) {
	c := NewChecker(demoZone(), nil)

	// The higher endpoint is above the ceiling, so the midpoint is too.
	res := c.Check([]geo.Waypoint{
		geo.NewWaypoint(118.312711, 31.36727, 100),
		geo.NewWaypoint(118.324711, 31.36727, 300),
	})
	if !res.Valid {
		t.Errorf("expected clear route, got %+v", res)
	}
}

func TestCheckWaypointWinsOverEarlierSegment(t *testing.T) {
	reg := airspace.NewRegistry(
		&airspace.Circle{ZoneID: "a", ZoneName: "A", Center: orb.Point{118.318711, 31.36727}, Radius: 500, MaxAlt: 200},
		&airspace.Circle{ZoneID: "b", ZoneName: "B", Center: orb.Point{118.40, 31.40}, Radius: 100, MaxAlt: 200},
	)
	c := NewChecker(reg, nil)

	res := c.Check([]geo.Waypoint{
		geo.NewWaypoint(118.312711, 31.36727, 100),
		geo.NewWaypoint(118.324711, 31.36727, 100),
		geo.NewWaypoint(118.40, 31.40, 100),
	})
	if res.Valid || res.Violations[0].ZoneName != "B" || res.Violations[0].SegmentEnd != 0 {
		t.Errorf("expected waypoint 3 inside B to be reported first, got %+v", res)
	}
}

func TestCheckClippedCornerIsNotDetected(t *testing.T) {
	reg := airspace.NewRegistry(&airspace.Polygon{
		ZoneID:   "sq",
		ZoneName: "Square",
		Boundary: orb.Ring{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
		MaxAlt:   100,
	})
	c := NewChecker(reg, nil)

	// The segment cuts across the (1,1) corner but its midpoint lies outside.
	res := c.Check([]geo.Waypoint{
		geo.NewWaypoint(0.9, 1.05, 50),
		geo.NewWaypoint(3.9, -1.95, 50),
	})
	if !res.Valid {
		t.Errorf("midpoint sampling should miss the clipped corner, got %+v", res)
	}
}

func TestAnalyzeReportsEveryWaypoint(t *testing.T) {
	c := NewChecker(airspace.DefaultRegistry(), nil)

	violations := c.Analyze([]geo.Waypoint{
		geo.NewWaypoint(118.311, 31.365, 100),
		geo.NewWaypoint(118.20, 31.20, 100),
		geo.NewWaypoint(118.3275, 31.3725, 100),
	})

	if len(violations) != 2 {
		t.Fatalf("expected 2 violations, got %+v", violations)
	}
	if violations[0].WaypointIndex != 1 || violations[0].ZoneID != "zone1" {
		t.Errorf("unexpected first violation %+v", violations[0])
	}
	if violations[1].WaypointIndex != 3 || violations[1].ZoneID != "zone2" {
		t.Errorf("unexpected second violation %+v", violations[1])
	}
}

type countingChecker struct {
	calls int
	inner RouteChecker
}

func (c *countingChecker) Check(path []geo.Waypoint) Result {
	c.calls++
	return c.inner.Check(path)
}

func (c *countingChecker) Analyze(path []geo.Waypoint) []Violation {
	return c.inner.Analyze(path)
}

func TestCachedChecker(t *testing.T) {
	inner := &countingChecker{inner: NewChecker(demoZone(), nil)}
	cached, err := NewCachedChecker(inner, 8, nil)
	if err != nil {
		t.Fatalf("NewCachedChecker failed: %v", err)
	}

	path := []geo.Waypoint{
		geo.NewWaypoint(118.30, 31.36, 100),
		geo.NewWaypoint(118.318711, 31.36727, 150),
	}

	first := cached.Check(path)
	first.Violations[0].ZoneName = "mutated"
	second := cached.Check(path)

	if inner.calls != 1 {
		t.Errorf("expected 1 inner call, got %d", inner.calls)
	}
	if second.Violations[0].ZoneName != "Demo Zone A" {
		t.Errorf("cached result leaked caller mutation: %+v", second)
	}

	path[1].Altitude = 300
	cached.Check(path)
	if inner.calls != 2 || cached.Len() != 2 {
		t.Errorf("expected a miss for a changed route, calls=%d len=%d", inner.calls, cached.Len())
	}
}

func TestCachedChecker_RecordsEveryCheck(t *testing.T) {
	inner := &countingChecker{inner: NewChecker(demoZone(), nil)}
	rec := &mockRecorder{}
	cached, err := NewCachedChecker(inner, 8, rec)
	if err != nil {
		t.Fatalf("NewCachedChecker failed: %v", err)
	}

	blocked := []geo.Waypoint{
		geo.NewWaypoint(118.30, 31.36, 100),
		geo.NewWaypoint(118.318711, 31.36727, 150),
	}
	for i := 0; i < 5; i++ {
		cached.Check(blocked)
	}
	openAir := []geo.Waypoint{
		geo.NewWaypoint(118.00, 31.00, 100),
		geo.NewWaypoint(118.01, 31.01, 100),
	}
	cached.Check(openAir)
	cached.Check(openAir)

	if inner.calls != 2 {
		t.Errorf("expected 2 inner calls, got %d", inner.calls)
	}
	if rec.conflict != 5 || rec.clear != 2 {
		t.Errorf("expected 5 conflicts and 2 clear checks recorded, got %+v", rec)
	}
}

func TestDetourInsertsNorthWaypoint(t *testing.T) {
	start := geo.NewWaypoint(118.30, 31.36, 100)
	end := geo.NewWaypoint(118.337422, 31.37454, 120)

	plan := Detour(demoZone(), start, end)
	if !plan.Detoured || plan.ZoneID != "a" || len(plan.Path) != 3 {
		t.Fatalf("expected a detour around zone a, got %+v", plan)
	}
	mid := geo.Midpoint(start, end)
	via := plan.Path[1]
	if via.Longitude != mid.Longitude || math.Abs(via.Latitude-(mid.Latitude+DetourOffset)) > 1e-12 {
		t.Errorf("detour point not north of the midpoint: %+v vs %+v", via, mid)
	}
	if via.Altitude != DetourAltitude {
		t.Errorf("expected detour altitude %v, got %v", DetourAltitude, via.Altitude)
	}
	if plan.Path[0] != start || plan.Path[2] != end {
		t.Errorf("endpoints must be kept: %+v", plan.Path)
	}
}

func TestDetourMargin(t *testing.T) {
	// Midpoints east of the zone centre; one degree of longitude is about
	// 94.95 km at this latitude.
	tests := []struct {
		name     string
		offset   float64
		detoured bool
	}{
		{"inside radius", 0.002, true},
		{"within margin", 0.00579, true},
		{"beyond margin", 0.00685, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lng := 118.318711 + tt.offset
			start := geo.NewWaypoint(lng, 31.35727, 100)
			end := geo.NewWaypoint(lng, 31.37727, 100)
			plan := Detour(demoZone(), start, end)
			if plan.Detoured != tt.detoured {
				t.Errorf("expected detoured=%v, got %+v", tt.detoured, plan)
			}
			if !tt.detoured && len(plan.Path) != 2 {
				t.Errorf("expected the direct leg, got %+v", plan.Path)
			}
		})
	}
}

func TestDetourPolygonAndEmptyRegistry(t *testing.T) {
	reg := airspace.NewRegistry(&airspace.Polygon{
		ZoneID:   "p",
		ZoneName: "Yard",
		Boundary: orb.Ring{{118.0, 31.0}, {118.1, 31.0}, {118.1, 31.1}, {118.0, 31.1}},
		MaxAlt:   50,
	})
	start := geo.NewWaypoint(117.95, 31.05, 400)
	end := geo.NewWaypoint(118.15, 31.05, 400)

	plan := Detour(reg, start, end)
	if !plan.Detoured || plan.ZoneName != "Yard" {
		t.Errorf("polygon footprint should block the leg regardless of altitude: %+v", plan)
	}

	plan = Detour(nil, start, end)
	if plan.Detoured || len(plan.Path) != 2 {
		t.Errorf("expected the direct leg without a registry, got %+v", plan)
	}
}
