package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"low-altitude/uavops/internal/airspace"
	"low-altitude/uavops/internal/conflict"
	"low-altitude/uavops/internal/editor"
	"low-altitude/uavops/internal/events"
	"low-altitude/uavops/internal/geo"
	"low-altitude/uavops/internal/metrics"
	"low-altitude/uavops/internal/simulation"
)

func testConfig() Config {
	return Config{
		Checker:    conflict.NewChecker(airspace.DefaultRegistry(), nil),
		Simulation: simulation.Options{Manual: true},
	}
}

func TestPreviewPublishedOnEdit(t *testing.T) {
	s := New("s1", testConfig())
	defer s.Close()

	var previews []geo.Path
	s.Bus.Subscribe(events.RoutePreview, func(ev events.Event) {
		previews = append(previews, ev.Payload.(geo.Path))
	})

	s.Editor.AddAt(118.20, 31.20)
	s.Editor.AddAt(118.21, 31.21)

	if len(previews) != 2 || len(previews[1]) != 2 {
		t.Errorf("unexpected previews %v", previews)
	}
}

func TestClearStopsSimulationSilently(t *testing.T) {
	s := New("s1", testConfig())
	defer s.Close()

	s.Editor.Add(geo.NewWaypoint(118.20, 31.20, 100))
	s.Editor.Add(geo.NewWaypoint(118.21, 31.21, 100))
	if err := s.StartSimulation(editor.RouteInfo{Name: "r"}); err != nil {
		t.Fatalf("StartSimulation failed: %v", err)
	}

	statusEvents := 0
	s.Bus.Subscribe(events.SimulationStatusChanged, func(events.Event) { statusEvents++ })

	s.Editor.Clear()

	if s.Simulator.State() != simulation.Stopped {
		t.Errorf("expected simulation stopped after clear, got %s", s.Simulator.State())
	}
	if statusEvents != 0 {
		t.Errorf("clear must stop silently, got %d status events", statusEvents)
	}
}

func TestStartSimulationNeedsTwoPoints(t *testing.T) {
	s := New("s1", testConfig())
	defer s.Close()

	s.Editor.AddAt(118.2, 31.2)
	if err := s.StartSimulation(editor.RouteInfo{}); !errors.Is(err, simulation.ErrRouteTooShort) {
		t.Errorf("expected ErrRouteTooShort, got %v", err)
	}
}

func TestCheckPublishesVerdict(t *testing.T) {
	s := New("s1", testConfig())
	defer s.Close()

	var got []conflict.Result
	s.Bus.Subscribe(events.ConflictChecked, func(ev events.Event) {
		got = append(got, ev.Payload.(conflict.Result))
	})

	s.Editor.Add(geo.NewWaypoint(118.311, 31.365, 100))
	s.Editor.Add(geo.NewWaypoint(118.20, 31.20, 100))
	res := s.Check()

	if res.Valid || len(got) != 1 || got[0].Message != res.Message {
		t.Errorf("unexpected check result %+v / %+v", res, got)
	}
	if n := len(s.Analyze()); n != 1 {
		t.Errorf("expected 1 analysed violation, got %d", n)
	}
}

func TestCloseIsIdempotentAndDropsSubscribers(t *testing.T) {
	s := New("s1", testConfig())
	s.Bus.Subscribe(events.All, func(events.Event) {})

	s.Close()
	s.Close()

	if s.Bus.Count() != 0 {
		t.Errorf("expected no subscribers after close, got %d", s.Bus.Count())
	}
	select {
	case <-s.Done():
	default:
		t.Error("expected Done to be closed")
	}
}

func TestManagerLifecycle(t *testing.T) {
	cfg := testConfig()
	cfg.Metrics = metrics.NewMetricsRegistry(prometheus.NewRegistry())
	m := NewManager(cfg, time.Minute)

	s := m.Create()
	if m.Count() != 1 {
		t.Fatalf("expected 1 session, got %d", m.Count())
	}

	got, err := m.Get(s.ID)
	if err != nil || got != s {
		t.Fatalf("Get returned %v, %v", got, err)
	}

	s.Editor.Add(geo.NewWaypoint(118.20, 31.20, 100))
	s.Editor.Add(geo.NewWaypoint(118.21, 31.21, 100))
	_ = s.StartSimulation(editor.RouteInfo{Name: "r"})
	if v := testutil.ToFloat64(cfg.Metrics.SimulationsActive); v != 1 {
		t.Errorf("expected 1 active simulation, got %v", v)
	}

	if err := m.Close(s.ID); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if s.Simulator.State() != simulation.Stopped {
		t.Errorf("eviction must stop the simulation")
	}
	if v := testutil.ToFloat64(cfg.Metrics.SimulationsActive); v != 0 {
		t.Errorf("expected 0 active simulations, got %v", v)
	}
	if v := testutil.ToFloat64(cfg.Metrics.SessionsActive); v != 0 {
		t.Errorf("expected 0 active sessions, got %v", v)
	}

	if _, err := m.Get(s.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
	if err := m.Close(s.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound on double close, got %v", err)
	}
}

func TestManagerGetDropsClosedSession(t *testing.T) {
	cfg := testConfig()
	cfg.Metrics = metrics.NewMetricsRegistry(prometheus.NewRegistry())
	m := NewManager(cfg, time.Minute)

	s := m.Create()
	s.Close()

	if _, err := m.Get(s.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound for a closed session, got %v", err)
	}
	if m.Count() != 0 {
		t.Errorf("closed session must leave the cache, count %d", m.Count())
	}
	if v := testutil.ToFloat64(cfg.Metrics.SessionsActive); v != 0 {
		t.Errorf("expected 0 active sessions, got %v", v)
	}
}

func TestManagerGetRacingClose(t *testing.T) {
	m := NewManager(testConfig(), time.Minute)

	for round := 0; round < 50; round++ {
		s := m.Create()

		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 20; j++ {
					if got, err := m.Get(s.ID); err == nil && got != s {
						t.Errorf("Get returned a different session")
					}
				}
			}()
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.Close(s.ID)
		}()
		wg.Wait()

		if _, err := m.Get(s.ID); !errors.Is(err, ErrSessionNotFound) {
			t.Fatalf("round %d: closed session came back: %v", round, err)
		}
	}
	if m.Count() != 0 {
		t.Errorf("expected no sessions, got %d", m.Count())
	}
}

func TestManagerShutdown(t *testing.T) {
	m := NewManager(testConfig(), time.Minute)
	a := m.Create()
	m.Create()

	m.Shutdown()

	if m.Count() != 0 {
		t.Errorf("expected no sessions after shutdown, got %d", m.Count())
	}
	if a.Bus.Count() != 0 {
		t.Errorf("expected closed session buses")
	}
}
