package geo

import (
	"encoding/json"
	"math"
	"testing"
)

func TestWaypointUnmarshalEncodings(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Waypoint
		wantErr bool
	}{
		{"tuple", `[118.1, 31.2, 150]`, Waypoint{118.1, 31.2, 150}, false},
		{"tuple without altitude", `[118.1, 31.2]`, Waypoint{118.1, 31.2, 0}, false},
		{"object", `{"lng": 118.1, "lat": 31.2, "alt": 90}`, Waypoint{118.1, 31.2, 90}, false},
		{"object without altitude", `{"lng": 118.1, "lat": 31.2}`, Waypoint{118.1, 31.2, 0}, false},
		{"long keys", `{"longitude": 118.1, "latitude": 31.2, "altitude": 5}`, Waypoint{118.1, 31.2, 5}, false},
		{"short tuple", `[118.1]`, Waypoint{}, true},
		{"object missing lat", `{"lng": 118.1}`, Waypoint{}, true},
		{"string", `"118,31"`, Waypoint{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Waypoint
			err := json.Unmarshal([]byte(tt.input), &got)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestWaypointInputTracksAltitude(t *testing.T) {
	tests := []struct {
		input  string
		alt    float64
		hasAlt bool
	}{
		{`[118.1, 31.2, 0]`, 0, true},
		{`[118.1, 31.2]`, 0, false},
		{`{"lng": 118.1, "lat": 31.2, "alt": 0}`, 0, true},
		{`{"lng": 118.1, "lat": 31.2, "altitude": 40}`, 40, true},
		{`{"lng": 118.1, "lat": 31.2}`, 0, false},
	}

	for _, tt := range tests {
		var in WaypointInput
		if err := json.Unmarshal([]byte(tt.input), &in); err != nil {
			t.Fatalf("%s: %v", tt.input, err)
		}
		if in.HasAltitude != tt.hasAlt || in.Altitude != tt.alt || in.Longitude != 118.1 {
			t.Errorf("%s: got %+v", tt.input, in)
		}
	}

	var in WaypointInput
	if err := json.Unmarshal([]byte(`[118.1]`), &in); err == nil {
		t.Error("expected an error for a short tuple")
	}
}

func TestPathMixedEncodings(t *testing.T) {
	var p Path
	if err := json.Unmarshal([]byte(`[[118.1,31.2,100],{"lng":118.2,"lat":31.3}]`), &p); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if len(p) != 2 || p[1].Altitude != 0 {
		t.Fatalf("unexpected path: %+v", p)
	}

	out, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(out) != `[[118.1,31.2,100],[118.2,31.3,0]]` {
		t.Errorf("unexpected tuple encoding: %s", out)
	}
}

func TestPathScanValue(t *testing.T) {
	p := Path{NewWaypoint(1, 2, 3), NewWaypoint(4, 5, 6)}
	v, err := p.Value()
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}

	var back Path
	if err := back.Scan(v); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(back) != 2 || back[1] != p[1] {
		t.Errorf("got %+v, want %+v", back, p)
	}

	if err := back.Scan(42); err == nil {
		t.Errorf("expected error scanning an int")
	}
}

func TestMidpointUsesHigherAltitude(t *testing.T) {
	m := Midpoint(NewWaypoint(118.0, 31.0, 80), NewWaypoint(118.2, 31.4, 150))
	if math.Abs(m.Longitude-118.1) > 1e-9 || math.Abs(m.Latitude-31.2) > 1e-9 {
		t.Errorf("unexpected midpoint footprint: %+v", m)
	}
	if m.Altitude != 150 {
		t.Errorf("expected altitude 150, got %v", m.Altitude)
	}
}

func TestDistanceAndLength(t *testing.T) {
	a := NewWaypoint(118.0, 31.0, 0)
	b := NewWaypoint(118.0, 31.01, 0)

	d := Distance(a, b)
	// 0.01 degree of latitude is roughly 1.11 km.
	if d < 1100 || d > 1125 {
		t.Errorf("unexpected distance %v", d)
	}

	p := Path{a, b, a}
	if math.Abs(p.Length()-2*d) > 1e-6 {
		t.Errorf("expected path length %v, got %v", 2*d, p.Length())
	}

	if h := Bearing(a, b); math.Abs(h) > 1e-6 && math.Abs(h-360) > 1e-6 {
		t.Errorf("expected due north bearing, got %v", h)
	}
}

func TestLerpClamps(t *testing.T) {
	a := NewWaypoint(0, 0, 0)
	b := NewWaypoint(10, 10, 100)

	if got := Lerp(a, b, 0.5); got != NewWaypoint(5, 5, 50) {
		t.Errorf("unexpected halfway point %+v", got)
	}
	if got := Lerp(a, b, 2); got != b {
		t.Errorf("expected clamp to end, got %+v", got)
	}
}
