package session

import (
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"low-altitude/uavops/internal/conflict"
	"low-altitude/uavops/internal/editor"
	"low-altitude/uavops/internal/events"
	"low-altitude/uavops/internal/geo"
	"low-altitude/uavops/internal/logging"
	"low-altitude/uavops/internal/metrics"
	"low-altitude/uavops/internal/simulation"
)

// Config is shared by every session a Manager creates.
type Config struct {
	Checker    conflict.RouteChecker
	Simulation simulation.Options
	// Redis mirrors session events to pub/sub when set.
	Redis   *redis.Client
	Metrics *metrics.MetricsRegistry
}

// Session is one map instance: an editor, a simulator and the bus they
// publish on. It replaces the page-level globals of a single-map console.
type Session struct {
	ID        string
	CreatedAt time.Time

	Bus       *events.Bus
	Editor    *editor.Editor
	Simulator *simulation.Simulator

	checker   conflict.RouteChecker
	bridge    *events.RedisBridge
	closeOnce sync.Once
	done      chan struct{}
}

func New(id string, cfg Config) *Session {
	bus := events.NewBus()
	s := &Session{
		ID:        id,
		CreatedAt: time.Now(),
		Bus:       bus,
		checker:   cfg.Checker,
		done:      make(chan struct{}),
	}

	simOpts := cfg.Simulation
	if m := cfg.Metrics; m != nil {
		prev := simOpts.OnStateChange
		simOpts.OnStateChange = func(from, to simulation.State) {
			switch {
			case from == simulation.Stopped && to != simulation.Stopped:
				m.SimulationsActive.Inc()
			case from != simulation.Stopped && to == simulation.Stopped:
				m.SimulationsActive.Dec()
			}
			if prev != nil {
				prev(from, to)
			}
		}
		bus.Subscribe(events.All, func(ev events.Event) {
			m.SimulationEvents.WithLabelValues(ev.Name).Inc()
		})
	}
	s.Simulator = simulation.New(bus, simOpts)

	s.Editor = editor.New(
		editor.WithClearHook(s.Simulator.StopSilent),
		editor.WithPreview(func(path []geo.Waypoint) {
			bus.Publish(events.RoutePreview, geo.Path(path))
		}),
	)

	if cfg.Redis != nil {
		s.bridge = events.AttachRedisBridge(bus, cfg.Redis, id)
	}

	return s
}

// Check runs the conflict checker over the editor's current waypoints and
// publishes the verdict.
func (s *Session) Check() conflict.Result {
	res := s.checker.Check(s.Editor.Waypoints())
	s.Bus.Publish(events.ConflictChecked, res)
	return res
}

// Analyze lists every waypoint-level violation.
func (s *Session) Analyze() []conflict.Violation {
	return s.checker.Analyze(s.Editor.Waypoints())
}

// StartSimulation flies the editor's current route.
func (s *Session) StartSimulation(info editor.RouteInfo) error {
	route := s.Editor.Export(info)
	if route == nil {
		return simulation.ErrRouteTooShort
	}
	return s.Simulator.Start(*route)
}

// Done is closed once the session has been closed.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Close stops the simulation silently and drops every subscription. It is
// safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.Simulator.StopSilent()
		if s.bridge != nil {
			s.bridge.Detach()
		}
		s.Bus.Close()
		close(s.done)
		logging.Debug("Session closed", "session_id", s.ID)
	})
}
