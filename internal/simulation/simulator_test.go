package simulation

import (
	"math"
	"sync"
	"testing"
	"time"

	"low-altitude/uavops/internal/events"
	"low-altitude/uavops/internal/geo"
)

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(name string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events.Event{Name: name, Payload: payload})
}

func (r *recorder) count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Name == name {
			n++
		}
	}
	return n
}

func (r *recorder) last(name string) (events.Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Name == name {
			return r.events[i], true
		}
	}
	return events.Event{}, false
}

func (r *recorder) total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func testRoute() geo.Route {
	return geo.Route{
		Name:  "test",
		Speed: 10,
		Waypoints: geo.Path{
			geo.NewWaypoint(118.30, 31.30, 100),
			geo.NewWaypoint(118.30, 31.31, 100),
			geo.NewWaypoint(118.31, 31.31, 100),
		},
	}
}

func newManual(pub events.Publisher) *Simulator {
	return New(pub, Options{Manual: true})
}

func TestPlaybackTiming(t *testing.T) {
	a := geo.NewWaypoint(118.0, 31.0, 50)
	b := geo.NewWaypoint(118.0, 31.01, 50)
	dist := geo.Distance(a, b)

	pb, err := NewPlayback([]geo.Waypoint{a, b}, 20, NominalStart)
	if err != nil {
		t.Fatalf("NewPlayback failed: %v", err)
	}

	want := time.Duration(dist / 20 * float64(time.Second))
	if pb.Duration() != want {
		t.Errorf("duration = %v, want %v", pb.Duration(), want)
	}
	if !pb.StartTime().Equal(NominalStart) || !pb.StopTime().Equal(NominalStart.Add(want)) {
		t.Errorf("unexpected clock window %v..%v", pb.StartTime(), pb.StopTime())
	}

	half := pb.At(want / 2)
	if math.Abs(half.Progress-0.5) > 1e-3 || half.Done {
		t.Errorf("unexpected halfway frame %+v", half)
	}
	if math.Abs(half.Position.Latitude-31.005) > 1e-6 {
		t.Errorf("unexpected halfway latitude %v", half.Position.Latitude)
	}

	end := pb.At(want * 3)
	if !end.Done || end.Position != b || end.Progress != 1 || end.Elapsed != want {
		t.Errorf("expected clamped final frame, got %+v", end)
	}
}

func TestPlaybackDefaultsSpeed(t *testing.T) {
	pb, err := NewPlayback([]geo.Waypoint{geo.NewWaypoint(0, 0, 0), geo.NewWaypoint(0, 0.01, 0)}, 0, NominalStart)
	if err != nil {
		t.Fatalf("NewPlayback failed: %v", err)
	}
	if pb.Speed() != geo.DefaultSpeed {
		t.Errorf("expected default speed, got %v", pb.Speed())
	}

	if _, err := NewPlayback([]geo.Waypoint{geo.NewWaypoint(0, 0, 0)}, 10, NominalStart); err == nil {
		t.Errorf("expected error for single waypoint")
	}
}

func TestStartRejectsShortRoute(t *testing.T) {
	rec := &recorder{}
	sim := newManual(rec)

	err := sim.Start(geo.Route{Name: "short", Waypoints: geo.Path{geo.NewWaypoint(1, 1, 1)}})
	if err != ErrRouteTooShort {
		t.Errorf("expected ErrRouteTooShort, got %v", err)
	}
	if sim.State() != Stopped || rec.total() != 0 {
		t.Errorf("short route must be a no-op, state=%s events=%d", sim.State(), rec.total())
	}
}

func TestStartTwiceKeepsSingleSimulation(t *testing.T) {
	rec := &recorder{}
	sim := newManual(rec)

	if err := sim.Start(testRoute()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	sim.Step(5 * time.Second)

	second := testRoute()
	second.Name = "second"
	if err := sim.Start(second); err != nil {
		t.Fatalf("second Start failed: %v", err)
	}

	if rec.count(events.SimulationStart) != 2 {
		t.Errorf("expected one start event per call, got %d", rec.count(events.SimulationStart))
	}
	if rec.count(events.SimulationStatusChanged) != 0 {
		t.Errorf("implicit teardown must be silent")
	}
	st := sim.Status()
	if st.State != Running || st.Route != "second" || st.ElapsedMs != 0 {
		t.Errorf("unexpected status after restart %+v", st)
	}
}

func TestPauseResumeOnlyFromValidStates(t *testing.T) {
	rec := &recorder{}
	sim := newManual(rec)

	if sim.Pause() || sim.Resume() {
		t.Fatal("pause/resume must be no-ops while stopped")
	}
	if rec.total() != 0 {
		t.Fatalf("no-ops must not publish, got %d events", rec.total())
	}

	_ = sim.Start(testRoute())
	if sim.Resume() {
		t.Error("resume must be a no-op while running")
	}
	if !sim.Pause() {
		t.Fatal("expected pause to succeed")
	}
	if sim.Pause() {
		t.Error("second pause must be a no-op")
	}

	before := sim.Status().ElapsedMs
	sim.Step(10 * time.Second)
	if sim.Status().ElapsedMs != before {
		t.Error("paused simulation must not advance")
	}

	if !sim.Resume() {
		t.Fatal("expected resume to succeed")
	}
	if rec.count(events.SimulationStatusChanged) != 2 {
		t.Errorf("expected 2 status changes, got %d", rec.count(events.SimulationStatusChanged))
	}
	ev, _ := rec.last(events.SimulationStatusChanged)
	if sc := ev.Payload.(StatusChange); sc.Status != Running || sc.IsPause {
		t.Errorf("unexpected resume payload %+v", sc)
	}
}

func TestStopEmitsOnlyWhenActive(t *testing.T) {
	rec := &recorder{}
	sim := newManual(rec)

	sim.Stop()
	if rec.total() != 0 {
		t.Fatalf("stop while stopped must be silent")
	}

	_ = sim.Start(testRoute())
	sim.Pause()
	sim.Stop()
	sim.Stop()

	if n := rec.count(events.SimulationStatusChanged); n != 2 {
		t.Fatalf("expected pause + one stop, got %d status events", n)
	}
	ev, _ := rec.last(events.SimulationStatusChanged)
	if ev.Payload.(StatusChange).Status != Stopped {
		t.Errorf("expected stopped payload, got %+v", ev.Payload)
	}
}

func TestStopSilent(t *testing.T) {
	rec := &recorder{}
	var transitions []State
	sim := New(rec, Options{Manual: true, OnStateChange: func(_, to State) { transitions = append(transitions, to) }})

	_ = sim.Start(testRoute())
	sim.StopSilent()

	if sim.State() != Stopped {
		t.Errorf("expected stopped, got %s", sim.State())
	}
	if rec.count(events.SimulationStatusChanged) != 0 {
		t.Errorf("silent stop must not publish status")
	}
	if len(transitions) != 2 || transitions[1] != Stopped {
		t.Errorf("state observer must still see silent transitions, got %v", transitions)
	}
}

func TestCompletionClampsAndStops(t *testing.T) {
	rec := &recorder{}
	sim := newManual(rec)
	route := testRoute()
	_ = sim.Start(route)

	sim.Step(time.Hour)

	if sim.State() != Stopped {
		t.Fatalf("expected stopped after completion, got %s", sim.State())
	}
	if rec.count(events.SimulationComplete) != 1 {
		t.Fatalf("expected one completion event")
	}

	ev, ok := rec.last(events.SimulationUpdate)
	if !ok {
		t.Fatal("expected a final update")
	}
	upd := ev.Payload.(Update)
	if !upd.Done || upd.Position != route.Waypoints[2] || upd.Progress != 1 {
		t.Errorf("final update must sit on the last waypoint, got %+v", upd.Frame)
	}

	comp, _ := rec.last(events.SimulationComplete)
	if c := comp.Payload.(Completion); c.Name != "test" || c.Distance <= 0 {
		t.Errorf("unexpected completion payload %+v", c)
	}

	n := rec.total()
	sim.Step(time.Second)
	sim.Stop()
	if rec.total() != n {
		t.Errorf("completed simulation must be inert")
	}
}

func TestUpdatesAreThrottled(t *testing.T) {
	rec := &recorder{}
	sim := newManual(rec)
	_ = sim.Start(testRoute())

	for i := 0; i < 20; i++ {
		sim.Step(time.Second)
	}

	if n := rec.count(events.SimulationUpdate); n != 1 {
		t.Errorf("expected a single update inside one throttle window, got %d", n)
	}

	ev, _ := rec.last(events.SimulationUpdate)
	att := ev.Payload.(Update).Attitude
	if math.Abs(att.Roll) > 5 || math.Abs(att.Pitch) > 3 {
		t.Errorf("attitude out of range %+v", att)
	}
}

func TestStartDeepCopiesRoute(t *testing.T) {
	sim := newManual(nil)
	route := testRoute()
	_ = sim.Start(route)

	route.Waypoints[0].Altitude = 9999

	if got := sim.Route().Waypoints[0].Altitude; got != 100 {
		t.Errorf("simulator route changed with caller edits: %v", got)
	}
}

func TestReset(t *testing.T) {
	rec := &recorder{}
	sim := newManual(rec)

	if err := sim.Reset(); err != ErrNoRoute {
		t.Fatalf("expected ErrNoRoute, got %v", err)
	}

	_ = sim.Start(testRoute())
	sim.Step(30 * time.Second)
	if err := sim.Reset(); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	st := sim.Status()
	if st.State != Running || st.ElapsedMs != 0 {
		t.Errorf("expected fresh running playback, got %+v", st)
	}
	if rec.count(events.SimulationStart) != 2 || rec.count(events.SimulationStatusChanged) != 0 {
		t.Errorf("reset should restart silently with a new start event")
	}
}

func TestTickerDrivesToCompletion(t *testing.T) {
	bus := events.NewBus()
	completed := make(chan Completion, 1)
	bus.Subscribe(events.SimulationComplete, func(ev events.Event) {
		completed <- ev.Payload.(Completion)
	})

	sim := New(bus, Options{TickInterval: 5 * time.Millisecond, TimeMultiplier: 100000})
	if err := sim.Start(testRoute()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	select {
	case c := <-completed:
		if c.Name != "test" {
			t.Errorf("unexpected completion %+v", c)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("simulation did not complete")
	}

	sim.Stop()
	if sim.State() != Stopped {
		t.Errorf("expected stopped, got %s", sim.State())
	}
}

func TestStopJoinsTicker(t *testing.T) {
	rec := &recorder{}
	sim := New(rec, Options{TickInterval: time.Millisecond})
	_ = sim.Start(testRoute())

	time.Sleep(10 * time.Millisecond)
	sim.Stop()

	n := rec.total()
	time.Sleep(20 * time.Millisecond)
	if rec.total() != n {
		t.Errorf("events published after Stop returned")
	}
}

func TestSyntheticAttitudeMovesWithinASecond(t *testing.T) {
	base := time.Date(2024, 5, 1, 8, 30, 12, 0, time.UTC)

	a := SyntheticAttitude(base.Add(100 * time.Millisecond))
	b := SyntheticAttitude(base.Add(600 * time.Millisecond))
	if a == b {
		t.Fatalf("expected sub-second ticks to differ, both %+v", a)
	}

	secs := 8*3600 + 30*60 + 12.6
	want := Attitude{Roll: math.Sin(secs) * 5, Pitch: math.Sin(secs*0.5) * 3}
	if math.Abs(b.Roll-want.Roll) > 1e-9 || math.Abs(b.Pitch-want.Pitch) > 1e-9 {
		t.Errorf("expected %+v, got %+v", want, b)
	}

	shanghai := time.FixedZone("CST", 8*3600)
	if c := SyntheticAttitude(base.Add(600 * time.Millisecond).In(shanghai)); c != b {
		t.Errorf("phase must not depend on the location: %+v vs %+v", c, b)
	}
}
