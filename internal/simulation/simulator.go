package simulation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/brunoga/deep"
	"golang.org/x/time/rate"

	"low-altitude/uavops/internal/events"
	"low-altitude/uavops/internal/geo"
	"low-altitude/uavops/internal/logging"
)

type State string

const (
	Stopped State = "stopped"
	Running State = "running"
	Paused  State = "paused"
)

var (
	ErrRouteTooShort = errors.New("route needs at least 2 waypoints to simulate")
	ErrNoRoute       = errors.New("no route has been simulated yet")
)

// Options tune the playback clock.
type Options struct {
	// TickInterval is the wall-clock period of the playback loop.
	TickInterval time.Duration
	// TimeMultiplier scales simulated time per tick.
	TimeMultiplier float64
	// UpdateInterval throttles simulationUpdate events.
	UpdateInterval time.Duration
	// Manual disables the ticker goroutine; the caller drives Step.
	Manual bool
	// OnStateChange observes every transition, including silent ones.
	OnStateChange func(from, to State)
}

func (o Options) withDefaults() Options {
	if o.TickInterval <= 0 {
		o.TickInterval = 50 * time.Millisecond
	}
	if o.TimeMultiplier <= 0 {
		o.TimeMultiplier = 1
	}
	if o.UpdateInterval <= 0 {
		o.UpdateInterval = 100 * time.Millisecond
	}
	return o
}

// StartInfo is the simulationStart payload.
type StartInfo struct {
	Name       string    `json:"name"`
	Waypoints  int       `json:"waypoints"`
	Speed      float64   `json:"speed"`
	Distance   float64   `json:"distance"`
	DurationMs int64     `json:"durationMs"`
	StartTime  time.Time `json:"startTime"`
	StopTime   time.Time `json:"stopTime"`
}

// Update is the simulationUpdate payload. Attitude is synthetic and kept
// apart from the kinematic frame.
type Update struct {
	Name string `json:"name"`
	Frame
	ElapsedMs   int64    `json:"elapsedMs"`
	RemainingMs int64    `json:"remainingTimeMs"`
	Attitude    Attitude `json:"attitude"`
}

// StatusChange is the simulationStatusChanged payload.
type StatusChange struct {
	Status  State `json:"status"`
	IsStart bool  `json:"isStart"`
	IsPause bool  `json:"isPause"`
}

// Completion is the simulationComplete payload.
type Completion struct {
	Name       string  `json:"name"`
	Distance   float64 `json:"distance"`
	DurationMs int64   `json:"durationMs"`
}

// Status is a point-in-time view of the simulator.
type Status struct {
	State      State         `json:"state"`
	Route      string        `json:"route,omitempty"`
	Progress   float64       `json:"progress"`
	ElapsedMs  int64         `json:"elapsedMs"`
	DurationMs int64         `json:"durationMs"`
	Position   *geo.Waypoint `json:"position,omitempty"`
}

// Simulator replays one route at a time. Lifecycle calls are serialised by
// opMu; mu guards the playback state shared with the ticker goroutine.
// Events are always published with mu released. Update and completion
// events are delivered on the playback goroutine, so their handlers must not
// call Start, Stop or Reset synchronously.
type Simulator struct {
	opMu sync.Mutex
	mu   sync.Mutex

	pub  events.Publisher
	opts Options

	state    State
	route    *geo.Route
	playback *Playback
	elapsed  time.Duration
	last     Frame
	throttle *rate.Sometimes

	// gen invalidates ticks from a torn-down loop.
	gen    uint64
	cancel context.CancelFunc
	done   chan struct{}
}

func New(pub events.Publisher, opts Options) *Simulator {
	if pub == nil {
		pub = nopPublisher{}
	}
	return &Simulator{pub: pub, opts: opts.withDefaults(), state: Stopped}
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, any) {}

// Start replaces any running simulation with a fresh playback of route.
// The route is deep-copied, so later edits by the caller do not leak in.
func (s *Simulator) Start(route geo.Route) error {
	if !route.Simulatable() {
		logging.Warn("Simulation start ignored", "route", route.Name, "waypoints", len(route.Waypoints))
		return ErrRouteTooShort
	}

	cp := route
	wps, err := deep.Copy(route.Waypoints)
	if err != nil {
		return fmt.Errorf("failed to copy route: %w", err)
	}
	cp.Waypoints = wps

	pb, err := NewPlayback(cp.Waypoints, cp.EffectiveSpeed(), NominalStart)
	if err != nil {
		return err
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	was := s.teardown()
	s.notify(was, Stopped)

	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.route = &cp
	s.playback = pb
	s.elapsed = 0
	s.last = pb.At(0)
	s.state = Running
	s.throttle = &rate.Sometimes{First: 1, Interval: s.opts.UpdateInterval}
	if !s.opts.Manual {
		ctx, cancel := context.WithCancel(context.Background())
		s.cancel = cancel
		s.done = make(chan struct{})
		go s.run(ctx, gen, s.done)
	}
	s.mu.Unlock()

	s.notify(Stopped, Running)
	s.pub.Publish(events.SimulationStart, StartInfo{
		Name:       cp.Name,
		Waypoints:  len(cp.Waypoints),
		Speed:      pb.Speed(),
		Distance:   pb.Distance(),
		DurationMs: pb.Duration().Milliseconds(),
		StartTime:  pb.StartTime(),
		StopTime:   pb.StopTime(),
	})
	return nil
}

// Pause freezes playback. It only acts on a running simulation.
func (s *Simulator) Pause() bool {
	return s.transition(Running, Paused, StatusChange{Status: Paused, IsStart: true, IsPause: true})
}

// Resume continues a paused simulation from where it froze.
func (s *Simulator) Resume() bool {
	return s.transition(Paused, Running, StatusChange{Status: Running, IsStart: true, IsPause: false})
}

func (s *Simulator) transition(from, to State, payload StatusChange) bool {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	if s.state != from {
		s.mu.Unlock()
		return false
	}
	s.state = to
	s.mu.Unlock()

	s.notify(from, to)
	s.pub.Publish(events.SimulationStatusChanged, payload)
	return true
}

// Stop ends any simulation and waits for the playback loop to exit. A
// status change is published only when something was running or paused.
func (s *Simulator) Stop() {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	was := s.teardown()
	if was == Stopped {
		return
	}
	s.notify(was, Stopped)
	s.pub.Publish(events.SimulationStatusChanged, StatusChange{Status: Stopped})
}

// StopSilent is Stop without the status event.
func (s *Simulator) StopSilent() {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.notify(s.teardown(), Stopped)
}

// Reset restarts the last simulated route from the beginning.
func (s *Simulator) Reset() error {
	s.mu.Lock()
	route := s.route
	s.mu.Unlock()

	if route == nil {
		return ErrNoRoute
	}
	return s.Start(*route)
}

// Step advances a running simulation by d of simulated time.
func (s *Simulator) Step(d time.Duration) {
	s.mu.Lock()
	gen := s.gen
	s.mu.Unlock()
	s.advance(gen, d)
}

func (s *Simulator) run(ctx context.Context, gen uint64, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.opts.TickInterval)
	defer ticker.Stop()

	step := time.Duration(float64(s.opts.TickInterval) * s.opts.TimeMultiplier)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.advance(gen, step)
		}
	}
}

func (s *Simulator) advance(gen uint64, d time.Duration) {
	s.mu.Lock()
	if gen != s.gen || s.state != Running {
		s.mu.Unlock()
		return
	}

	s.elapsed += d
	frame := s.playback.At(s.elapsed)
	s.last = frame

	due := false
	s.throttle.Do(func() { due = true })

	upd := Update{
		Name:        s.route.Name,
		Frame:       frame,
		ElapsedMs:   frame.Elapsed.Milliseconds(),
		RemainingMs: frame.RemainingTime.Milliseconds(),
		Attitude:    SyntheticAttitude(frame.Time),
	}

	var done *Completion
	if frame.Done {
		s.state = Stopped
		// The loop exits on its own once this tick returns.
		if s.cancel != nil {
			s.cancel()
			s.cancel, s.done = nil, nil
		}
		done = &Completion{
			Name:       s.route.Name,
			Distance:   s.playback.Distance(),
			DurationMs: s.playback.Duration().Milliseconds(),
		}
	}
	s.mu.Unlock()

	if due || done != nil {
		s.pub.Publish(events.SimulationUpdate, upd)
	}
	if done != nil {
		s.notify(Running, Stopped)
		s.pub.Publish(events.SimulationComplete, *done)
	}
}

// teardown must be called with opMu held. It returns the prior state.
func (s *Simulator) teardown() State {
	s.mu.Lock()
	was := s.state
	s.state = Stopped
	s.gen++
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
	return was
}

func (s *Simulator) notify(from, to State) {
	if from != to && s.opts.OnStateChange != nil {
		s.opts.OnStateChange(from, to)
	}
}

func (s *Simulator) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Status reports progress of the current or most recent playback.
func (s *Simulator) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{State: s.state}
	if s.route == nil || s.playback == nil {
		return st
	}
	pos := s.last.Position
	st.Route = s.route.Name
	st.Progress = s.last.Progress
	st.ElapsedMs = s.last.Elapsed.Milliseconds()
	st.DurationMs = s.playback.Duration().Milliseconds()
	st.Position = &pos
	return st
}

// Route returns a copy of the route being flown, or nil.
func (s *Simulator) Route() *geo.Route {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.route == nil {
		return nil
	}
	cp := *s.route
	cp.Waypoints = append(geo.Path(nil), s.route.Waypoints...)
	return &cp
}
