package simulation

import (
	"fmt"
	"math"
	"time"

	"low-altitude/uavops/internal/geo"
)

// NominalStart is the clock time every playback begins at.
var NominalStart = time.Date(2025, time.July, 31, 9, 0, 0, 0, time.UTC)

type sample struct {
	offset   time.Duration
	point    geo.Waypoint
	distance float64
}

// Playback is a time-indexed path: each waypoint is reached at the time it
// takes to fly the preceding segments at constant speed.
type Playback struct {
	samples []sample
	speed   float64
	start   time.Time
}

// Frame is the interpolated aircraft state at an instant.
type Frame struct {
	Time          time.Time     `json:"time"`
	Elapsed       time.Duration `json:"-"`
	Position      geo.Waypoint  `json:"position"`
	Heading       float64       `json:"heading"`
	Speed         float64       `json:"speed"`
	Distance      float64       `json:"distance"`
	Remaining     float64       `json:"remainingDistance"`
	RemainingTime time.Duration `json:"-"`
	Progress      float64       `json:"progress"`
	Segment       int           `json:"segment"`
	Done          bool          `json:"done"`
}

// NewPlayback samples path at speed metres per second.
func NewPlayback(path []geo.Waypoint, speed float64, start time.Time) (*Playback, error) {
	if len(path) < 2 {
		return nil, fmt.Errorf("playback needs at least 2 waypoints, got %d", len(path))
	}
	if speed <= 0 {
		speed = geo.DefaultSpeed
	}

	samples := make([]sample, len(path))
	samples[0] = sample{point: path[0]}
	total := 0.0
	for i := 1; i < len(path); i++ {
		total += geo.SlantDistance(path[i-1], path[i])
		samples[i] = sample{
			offset:   time.Duration(total / speed * float64(time.Second)),
			point:    path[i],
			distance: total,
		}
	}

	return &Playback{samples: samples, speed: speed, start: start}, nil
}

func (p *Playback) Duration() time.Duration {
	return p.samples[len(p.samples)-1].offset
}

// Distance is the total flown distance in metres.
func (p *Playback) Distance() float64 {
	return p.samples[len(p.samples)-1].distance
}

func (p *Playback) Speed() float64 {
	return p.speed
}

func (p *Playback) StartTime() time.Time {
	return p.start
}

func (p *Playback) StopTime() time.Time {
	return p.start.Add(p.Duration())
}

// At returns the frame elapsed into the flight. Elapsed times past the end
// clamp to the final waypoint with Done set.
func (p *Playback) At(elapsed time.Duration) Frame {
	if elapsed < 0 {
		elapsed = 0
	}
	total := p.Duration()
	last := len(p.samples) - 1

	if elapsed >= total {
		return Frame{
			Time:     p.start.Add(total),
			Elapsed:  total,
			Position: p.samples[last].point,
			Heading:  geo.Bearing(p.samples[last-1].point, p.samples[last].point),
			Speed:    p.speed,
			Distance: p.Distance(),
			Progress: 1,
			Segment:  last - 1,
			Done:     true,
		}
	}

	seg := 0
	for seg < last-1 && p.samples[seg+1].offset <= elapsed {
		seg++
	}
	from, to := p.samples[seg], p.samples[seg+1]

	t := 0.0
	if span := to.offset - from.offset; span > 0 {
		t = float64(elapsed-from.offset) / float64(span)
	}
	flown := from.distance + (to.distance-from.distance)*t

	progress := 0.0
	if d := p.Distance(); d > 0 {
		progress = math.Min(1, flown/d)
	}

	return Frame{
		Time:          p.start.Add(elapsed),
		Elapsed:       elapsed,
		Position:      geo.Lerp(from.point, to.point, t),
		Heading:       geo.Bearing(from.point, to.point),
		Speed:         p.speed,
		Distance:      flown,
		Remaining:     p.Distance() - flown,
		RemainingTime: total - elapsed,
		Progress:      progress,
		Segment:       seg,
	}
}
