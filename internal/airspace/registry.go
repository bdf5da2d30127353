package airspace

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"low-altitude/uavops/internal/logging"
)

// Registry is an immutable set of zones. It is safe to share between
// sessions without locking.
type Registry struct {
	zones []Zone
}

func NewRegistry(zones ...Zone) *Registry {
	cp := make([]Zone, len(zones))
	copy(cp, zones)
	return &Registry{zones: cp}
}

// Zones returns a copy of the zone list in registration order.
func (r *Registry) Zones() []Zone {
	cp := make([]Zone, len(r.zones))
	copy(cp, r.zones)
	return cp
}

func (r *Registry) Len() int {
	return len(r.zones)
}

// Find looks a zone up by id.
func (r *Registry) Find(id string) (Zone, bool) {
	for _, z := range r.zones {
		if z.ID() == id {
			return z, true
		}
	}
	return nil, false
}

// DefaultRegistry returns the demonstration zones shipped with the console.
func DefaultRegistry() *Registry {
	return NewRegistry(
		&Circle{
			ZoneID:   "nfz-demo-a",
			ZoneName: "Demo Zone A",
			Info:     "demonstration restricted area",
			Center:   orb.Point{118.318711, 31.36727},
			Radius:   500,
			MaxAlt:   200,
		},
		&Circle{
			ZoneID:   "zone1",
			ZoneName: "Government Core Zone",
			Info:     "core government no-fly zone",
			Center:   orb.Point{118.311, 31.365},
			Radius:   400,
			MaxAlt:   250,
		},
		&Polygon{
			ZoneID:   "zone2",
			ZoneName: "Industrial Zone",
			Info:     "industrial no-fly zone",
			Boundary: orb.Ring{
				{118.325, 31.375},
				{118.330, 31.375},
				{118.330, 31.370},
				{118.325, 31.370},
			},
			MaxAlt: 200,
		},
	)
}

// LoadGeoJSON builds a registry from a FeatureCollection. Point features need
// a "radius" property and become circles; Polygon features use their outer
// ring. The ceiling is read from "ceiling" or "maxAlt".
func LoadGeoJSON(r io.Reader) (*Registry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read zones: %w", err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse zones: %w", err)
	}

	zones := make([]Zone, 0, len(fc.Features))
	for i, f := range fc.Features {
		z, err := zoneFromFeature(i, f)
		if err != nil {
			return nil, err
		}
		zones = append(zones, z)
	}

	return NewRegistry(zones...), nil
}

// LoadGeoJSONFile reads zones from path. An empty path or unreadable file
// falls back to the default registry.
func LoadGeoJSONFile(path string) *Registry {
	if path == "" {
		return DefaultRegistry()
	}

	f, err := os.Open(path)
	if err != nil {
		logging.Warn("No-fly zone file unavailable, using defaults", "path", path, "error", err.Error())
		return DefaultRegistry()
	}
	defer f.Close()

	reg, err := LoadGeoJSON(f)
	if err != nil {
		logging.Warn("No-fly zone file malformed, using defaults", "path", path, "error", err.Error())
		return DefaultRegistry()
	}

	logging.Info("Loaded no-fly zones", "path", path, "count", reg.Len())
	return reg
}

func zoneFromFeature(i int, f *geojson.Feature) (Zone, error) {
	id := f.Properties.MustString("id", "")
	if id == "" {
		if s, ok := f.ID.(string); ok && s != "" {
			id = s
		} else {
			id = "zone-" + strconv.Itoa(i+1)
		}
	}
	name := f.Properties.MustString("name", id)
	info := f.Properties.MustString("description", "")
	ceiling := f.Properties.MustFloat64("ceiling", f.Properties.MustFloat64("maxAlt", 0))
	if ceiling <= 0 {
		return nil, fmt.Errorf("zone %q: ceiling must be positive", id)
	}

	switch g := f.Geometry.(type) {
	case orb.Point:
		radius := f.Properties.MustFloat64("radius", 0)
		if radius <= 0 {
			return nil, fmt.Errorf("zone %q: point zones need a positive radius", id)
		}
		return &Circle{ZoneID: id, ZoneName: name, Info: info, Center: g, Radius: radius, MaxAlt: ceiling}, nil

	case orb.Polygon:
		if len(g) == 0 || len(g[0]) < 3 {
			return nil, fmt.Errorf("zone %q: polygon needs at least 3 vertices", id)
		}
		return &Polygon{ZoneID: id, ZoneName: name, Info: info, Boundary: g[0], MaxAlt: ceiling}, nil
	}

	return nil, fmt.Errorf("zone %q: unsupported geometry %T", id, f.Geometry)
}
