package editor

import (
	"errors"
	"fmt"
	"iter"
	"sync"
	"time"

	"low-altitude/uavops/internal/geo"
	"low-altitude/uavops/internal/logging"
)

// DefaultAltitude is assigned to points placed without an explicit height.
const DefaultAltitude = 120.0

var ErrIndexOutOfRange = errors.New("waypoint index out of range")

// RouteInfo carries the cruise parameters attached on export.
type RouteInfo struct {
	ID          string
	Name        string
	Speed       float64
	Altitude    float64
	Description string
}

// Editor holds the waypoint list being drawn in one session. Every mutation
// calls the preview hook with the new polyline before returning.
type Editor struct {
	mu       sync.RWMutex
	points   []geo.Waypoint
	altitude float64

	preview func(path []geo.Waypoint)
	onClear func()
}

type Option func(*Editor)

// WithPreview sets the hook run after every mutation.
func WithPreview(fn func(path []geo.Waypoint)) Option {
	return func(e *Editor) { e.preview = fn }
}

// WithClearHook runs fn after Clear, before the preview hook.
func WithClearHook(fn func()) Option {
	return func(e *Editor) { e.onClear = fn }
}

func New(opts ...Option) *Editor {
	e := &Editor{altitude: DefaultAltitude}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Add appends p and returns its index.
func (e *Editor) Add(p geo.Waypoint) int {
	e.mu.Lock()
	e.points = append(e.points, p)
	idx := len(e.points) - 1
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.emit(snap)
	return idx
}

// AddAt appends a clicked map position at the editor's default altitude.
func (e *Editor) AddAt(lng, lat float64) int {
	e.mu.RLock()
	alt := e.altitude
	e.mu.RUnlock()
	return e.Add(geo.NewWaypoint(lng, lat, alt))
}

// Update replaces the waypoint at index.
func (e *Editor) Update(index int, p geo.Waypoint) error {
	e.mu.Lock()
	if index < 0 || index >= len(e.points) {
		n := len(e.points)
		e.mu.Unlock()
		return fmt.Errorf("%w: %d not in [0,%d)", ErrIndexOutOfRange, index, n)
	}
	e.points[index] = p
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.emit(snap)
	return nil
}

// Remove deletes the waypoint at index.
func (e *Editor) Remove(index int) error {
	e.mu.Lock()
	if index < 0 || index >= len(e.points) {
		n := len(e.points)
		e.mu.Unlock()
		return fmt.Errorf("%w: %d not in [0,%d)", ErrIndexOutOfRange, index, n)
	}
	e.points = append(e.points[:index], e.points[index+1:]...)
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.emit(snap)
	return nil
}

// Clear empties the editor and runs the clear hook.
func (e *Editor) Clear() {
	e.mu.Lock()
	e.points = nil
	e.mu.Unlock()

	if e.onClear != nil {
		e.onClear()
	}
	e.emit(nil)
}

// All is a lazy view over the current waypoints. Each step re-reads the
// live list, so iterating again sees later edits.
func (e *Editor) All() iter.Seq2[int, geo.Waypoint] {
	return func(yield func(int, geo.Waypoint) bool) {
		for i := 0; ; i++ {
			e.mu.RLock()
			if i >= len(e.points) {
				e.mu.RUnlock()
				return
			}
			p := e.points[i]
			e.mu.RUnlock()

			if !yield(i, p) {
				return
			}
		}
	}
}

// Waypoints returns a snapshot copy.
func (e *Editor) Waypoints() []geo.Waypoint {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshotLocked()
}

func (e *Editor) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.points)
}

func (e *Editor) Altitude() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.altitude
}

// SetAltitude changes the height given to newly clicked points. Existing
// waypoints keep their altitude.
func (e *Editor) SetAltitude(alt float64) {
	e.mu.Lock()
	e.altitude = alt
	e.mu.Unlock()
}

// Import replaces the editor contents with route's waypoints.
func (e *Editor) Import(route geo.Route) {
	e.mu.Lock()
	e.points = append([]geo.Waypoint(nil), route.Waypoints...)
	if route.Altitude > 0 {
		e.altitude = route.Altitude
	}
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.emit(snap)
}

// Export builds a route from the current waypoints. It returns nil when
// there are fewer than 2 points.
func (e *Editor) Export(info RouteInfo) *geo.Route {
	e.mu.RLock()
	snap := e.snapshotLocked()
	alt := e.altitude
	e.mu.RUnlock()

	if len(snap) < 2 {
		logging.Warn("Route export skipped", "name", info.Name, "waypoints", len(snap))
		return nil
	}

	if info.Altitude <= 0 {
		info.Altitude = alt
	}
	now := time.Now()
	return &geo.Route{
		ID:          info.ID,
		Name:        info.Name,
		Waypoints:   snap,
		Speed:       info.Speed,
		Altitude:    info.Altitude,
		Description: info.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (e *Editor) snapshotLocked() []geo.Waypoint {
	if len(e.points) == 0 {
		return nil
	}
	return append([]geo.Waypoint(nil), e.points...)
}

func (e *Editor) emit(path []geo.Waypoint) {
	if e.preview != nil {
		e.preview(path)
	}
}
