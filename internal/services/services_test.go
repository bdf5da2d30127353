package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"gorm.io/gorm"

	"low-altitude/uavops/internal/airspace"
	"low-altitude/uavops/internal/common"
	"low-altitude/uavops/internal/conflict"
	"low-altitude/uavops/internal/constants"
	"low-altitude/uavops/internal/db"
	"low-altitude/uavops/internal/db/repositories"
	"low-altitude/uavops/internal/geo"
	"low-altitude/uavops/internal/metrics"
	"low-altitude/uavops/internal/models/dtos"
)

type testEnv struct {
	gdb      *gorm.DB
	routes   *repositories.RouteRepository
	aircraft *repositories.AircraftRepository
	pilots   *repositories.PilotRepository
	orders   *repositories.WorkOrderRepository
	tasks    *repositories.FlightTaskRepository
	apps     *repositories.AirspaceApplicationRepository
	stats    *repositories.StatsRepository
	cache    *common.CacheService
	checker  conflict.RouteChecker
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gdb, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := db.Seed(context.Background(), gdb); err != nil {
		t.Fatalf("Failed to seed: %v", err)
	}
	sx, err := db.WrapSQLX(gdb)
	if err != nil {
		t.Fatalf("Failed to wrap sqlx: %v", err)
	}
	return &testEnv{
		gdb:      gdb,
		routes:   repositories.NewRouteRepository(gdb),
		aircraft: repositories.NewAircraftRepository(gdb),
		pilots:   repositories.NewPilotRepository(gdb),
		orders:   repositories.NewWorkOrderRepository(gdb),
		tasks:    repositories.NewFlightTaskRepository(gdb),
		apps:     repositories.NewAirspaceApplicationRepository(gdb),
		stats:    repositories.NewStatsRepository(sx),
		cache:    common.NewCacheService(time.Minute, time.Minute),
		checker:  conflict.NewChecker(airspace.DefaultRegistry(), nil),
	}
}

func TestRouteService_SaveComputesDistanceAndChecks(t *testing.T) {
	env := setupTestEnv(t)
	svc := NewRouteService(env.routes, env.checker)
	ctx := context.Background()

	if _, err := svc.Save(ctx, dtos.SaveRouteRequest{Name: "x", Waypoints: geo.Path{geo.NewWaypoint(1, 1, 0)}}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for short route, got %v", err)
	}

	path := geo.Path{geo.NewWaypoint(118.311, 31.365, 100), geo.NewWaypoint(118.20, 31.20, 100)}
	route, err := svc.Save(ctx, dtos.SaveRouteRequest{Name: "Through zone A", Waypoints: path, Speed: 20})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if route.Distance <= 0 || route.EstimatedTime != route.Distance/20/60 {
		t.Errorf("Unexpected distance %v / estimate %v", route.Distance, route.EstimatedTime)
	}

	res, err := svc.Check(ctx, route.ID)
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if res.Valid {
		t.Error("Expected conflict for a waypoint inside a zone")
	}

	if _, err := svc.Check(ctx, "missing"); !errors.Is(err, repositories.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if err := svc.Delete(ctx, "missing"); !errors.Is(err, repositories.ErrNotFound) {
		t.Errorf("Expected ErrNotFound on delete, got %v", err)
	}
}

func TestRouteService_StatsExportAndFilters(t *testing.T) {
	env := setupTestEnv(t)
	svc := NewRouteService(env.routes, env.checker)
	ctx := context.Background()

	valley, err := svc.Save(ctx, dtos.SaveRouteRequest{
		Name:        "Valley",
		Description: "River survey",
		Waypoints: geo.Path{
			geo.NewWaypoint(117.10, 31.70, 50),
			geo.NewWaypoint(117.11, 31.71, 80),
			geo.NewWaypoint(117.12, 31.72, 300),
		},
		Speed:    20,
		Altitude: 250,
	})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	st, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	want := dtos.RouteStats{
		TotalRoutes:           2,
		TotalWaypoints:        5,
		AverageWaypoints:      3,
		AltitudeRange:         dtos.ValueRange{Min: 100, Max: 250},
		SpeedRange:            dtos.ValueRange{Min: 20, Max: geo.DefaultSpeed},
		WaypointAltitudeRange: dtos.ValueRange{Min: 50, Max: 300},
	}
	st.TotalDistance = 0
	if st != want {
		t.Errorf("Stats = %+v, want %+v", st, want)
	}

	doc, err := svc.Export(ctx, nil)
	if err != nil || doc.RouteCount != 2 || doc.Version != RouteExportVersion || doc.ExportTime.IsZero() {
		t.Errorf("Unexpected export %+v, %v", doc, err)
	}
	doc, err = svc.Export(ctx, []string{valley.ID, "missing"})
	if err != nil || doc.RouteCount != 1 || doc.Routes[0].Name != "Valley" {
		t.Errorf("Unexpected selective export %+v, %v", doc, err)
	}

	found, err := svc.List(ctx, dtos.RouteQuery{Keyword: "river"})
	if err != nil || len(found) != 1 {
		t.Errorf("Expected description match, got %d, %v", len(found), err)
	}
	lo, hi := 300.0, 100.0
	if _, err := svc.List(ctx, dtos.RouteQuery{MinAltitude: &lo, MaxAltitude: &hi}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for inverted bounds, got %v", err)
	}
}

func TestRouteService_StatsEmpty(t *testing.T) {
	env := setupTestEnv(t)
	svc := NewRouteService(env.routes, env.checker)
	ctx := context.Background()

	routes, _ := env.routes.List(ctx, repositories.RouteFilter{})
	for _, r := range routes {
		if err := svc.Delete(ctx, r.ID); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
	}

	st, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if st != (dtos.RouteStats{}) {
		t.Errorf("Expected zero stats, got %+v", st)
	}
	doc, _ := svc.Export(ctx, nil)
	if doc.RouteCount != 0 || doc.Routes == nil {
		t.Errorf("Expected an empty, non-nil export, got %+v", doc)
	}
}

func TestFleetService_DuplicateCodeAndStatsCache(t *testing.T) {
	env := setupTestEnv(t)
	svc := NewFleetService(env.aircraft, env.stats, env.cache)
	ctx := context.Background()

	stats, err := svc.Stats(ctx)
	if err != nil || stats.Total != 1 || stats.Active != 1 {
		t.Fatalf("Unexpected stats %+v, %v", stats, err)
	}

	_, err = svc.Create(ctx, dtos.AircraftRequest{ModelName: "Copy", ModelCode: "DJI-MINI3PRO"})
	if !errors.Is(err, repositories.ErrDuplicateCode) {
		t.Errorf("Expected ErrDuplicateCode, got %v", err)
	}

	inactive := constants.AircraftInactive
	item, err := svc.Create(ctx, dtos.AircraftRequest{ModelName: "Matrice 350", Manufacturer: "DJI", ModelCode: "M350", Status: &inactive})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if item.Status != constants.AircraftInactive {
		t.Errorf("Expected inactive status, got %d", item.Status)
	}

	stats, _ = svc.Stats(ctx)
	if stats.Total != 2 || stats.Inactive != 1 || stats.ByManufacturer["DJI"] != 2 {
		t.Errorf("Stats cache not invalidated: %+v", stats)
	}

	opts, _ := svc.Options(ctx)
	if len(opts) != 1 {
		t.Errorf("Expected 1 active option, got %d", len(opts))
	}

	if _, err := svc.Update(ctx, item.ID, dtos.AircraftRequest{ModelName: "M350", ModelCode: "DJI-MINI3PRO"}); !errors.Is(err, repositories.ErrDuplicateCode) {
		t.Errorf("Expected ErrDuplicateCode on update, got %v", err)
	}

	if _, err := svc.UpdateStatusMany(ctx, []uint{item.ID}, 7); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for bad status, got %v", err)
	}

	page, err := svc.List(ctx, "", nil, 1, 1)
	if err != nil || page.Total != 2 || page.PageSize != 1 {
		t.Errorf("Unexpected page %+v, %v", page, err)
	}
}

func TestPilotService_StatusAndStats(t *testing.T) {
	env := setupTestEnv(t)
	svc := NewPilotService(env.pilots, env.stats, env.cache)
	ctx := context.Background()

	if _, err := svc.UpdateStatus(ctx, "pilot-001", "flying"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}

	stats, _ := svc.Stats(ctx)
	if stats.Idle != 2 {
		t.Fatalf("Expected 2 idle pilots, got %+v", stats)
	}

	p, err := svc.UpdateStatus(ctx, "pilot-001", "leave")
	if err != nil || p.Status != constants.PilotLeave {
		t.Fatalf("UpdateStatus returned %+v, %v", p, err)
	}

	stats, _ = svc.Stats(ctx)
	if stats.Idle != 1 || stats.Leave != 2 || stats.Total != 4 {
		t.Errorf("Unexpected stats after update %+v", stats)
	}
}

func TestWorkOrderService_CreateNumbersAndDispatch(t *testing.T) {
	env := setupTestEnv(t)
	queue := common.NewMemoryQueueService(4)
	reg := metrics.NewMetricsRegistry(prometheus.NewRegistry())
	svc := NewWorkOrderService(env.orders, env.pilots, env.aircraft, env.stats, queue, env.cache, reg)
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	order, err := svc.Create(ctx, dtos.WorkOrderRequest{Title: "Bridge inspection", Type: "inspection"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if order.OrderNo != "WO-20240501-002" || order.Status != constants.WorkOrderPending || order.Priority != "medium" {
		t.Errorf("Unexpected order %+v", order)
	}

	if _, err := svc.Dispatch(ctx, order.ID, dtos.DispatchRequest{AircraftID: 1, PilotID: "pilot-002"}); !errors.Is(err, ErrPilotUnavailable) {
		t.Errorf("Expected ErrPilotUnavailable for busy pilot, got %v", err)
	}
	if _, err := svc.Dispatch(ctx, "WO-002", dtos.DispatchRequest{AircraftID: 1, PilotID: "pilot-001"}); !errors.Is(err, ErrOrderNotPending) {
		t.Errorf("Expected ErrOrderNotPending, got %v", err)
	}

	dispatched, err := svc.Dispatch(ctx, order.ID, dtos.DispatchRequest{AircraftID: 1, PilotID: "pilot-001"})
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if dispatched.Status != constants.WorkOrderProcessing || dispatched.PilotID == nil || *dispatched.PilotID != "pilot-001" {
		t.Errorf("Unexpected dispatched order %+v", dispatched)
	}

	job, _, err := queue.Dequeue(ctx, "test", 10*time.Millisecond)
	if err != nil || job == nil || job.WorkOrderNo != order.OrderNo {
		t.Fatalf("Expected queued job, got %+v, %v", job, err)
	}
	if v := testutil.ToFloat64(reg.DispatchJobsTotal.WithLabelValues("queued")); v != 1 {
		t.Errorf("Expected 1 queued dispatch metric, got %v", v)
	}

	stats, _ := svc.Stats(ctx)
	if stats.Total != 3 || stats.Processing != 2 {
		t.Errorf("Unexpected stats %+v", stats)
	}
}

type mockQueue struct {
	enqueueFn func(ctx context.Context, job *common.DispatchJob) error
}

func (m *mockQueue) Enqueue(ctx context.Context, job *common.DispatchJob) error {
	return m.enqueueFn(ctx, job)
}

func (m *mockQueue) Dequeue(context.Context, string, time.Duration) (*common.DispatchJob, string, error) {
	return nil, "", nil
}

func (m *mockQueue) Ack(context.Context, string) error { return nil }

func (m *mockQueue) Len(context.Context) (int64, error) { return 0, nil }

func TestWorkOrderService_DispatchClaimsPilotOnce(t *testing.T) {
	env := setupTestEnv(t)
	svc := NewWorkOrderService(env.orders, env.pilots, env.aircraft, env.stats, common.NewMemoryQueueService(4), env.cache, nil)
	ctx := context.Background()

	second, err := svc.Create(ctx, dtos.WorkOrderRequest{Title: "Pipeline survey", Type: "inspection"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := svc.Dispatch(ctx, "WO-001", dtos.DispatchRequest{AircraftID: 1, PilotID: "pilot-001"}); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	pilot, _ := env.pilots.GetByID(ctx, "pilot-001")
	if pilot.Status != constants.PilotBusy {
		t.Errorf("Dispatch must mark the pilot busy before the worker runs, got %s", pilot.Status)
	}

	if _, err := svc.Dispatch(ctx, second.ID, dtos.DispatchRequest{AircraftID: 1, PilotID: "pilot-001"}); !errors.Is(err, ErrPilotUnavailable) {
		t.Errorf("Expected ErrPilotUnavailable for a pilot already dispatched, got %v", err)
	}
	wo, _ := env.orders.GetByID(ctx, second.ID)
	if wo.Status != constants.WorkOrderPending || wo.PilotID != nil {
		t.Errorf("Losing dispatch must leave the order pending, got %+v", wo)
	}

	if _, err := svc.Dispatch(ctx, "WO-001", dtos.DispatchRequest{AircraftID: 1, PilotID: "pilot-004"}); !errors.Is(err, ErrOrderNotPending) {
		t.Errorf("Expected ErrOrderNotPending, got %v", err)
	}
	wo, _ = env.orders.GetByID(ctx, "WO-001")
	if *wo.PilotID != "pilot-001" {
		t.Errorf("Processing order must keep its pilot, got %s", *wo.PilotID)
	}
}

func TestWorkOrderService_DispatchRollsBackWhenQueueFails(t *testing.T) {
	env := setupTestEnv(t)
	reg := metrics.NewMetricsRegistry(prometheus.NewRegistry())
	queue := &mockQueue{enqueueFn: func(context.Context, *common.DispatchJob) error {
		return common.ErrQueueFull
	}}
	svc := NewWorkOrderService(env.orders, env.pilots, env.aircraft, env.stats, queue, env.cache, reg)
	ctx := context.Background()

	_, err := svc.Dispatch(ctx, "WO-001", dtos.DispatchRequest{AircraftID: 1, PilotID: "pilot-001"})
	if !errors.Is(err, common.ErrQueueFull) {
		t.Fatalf("Expected ErrQueueFull, got %v", err)
	}

	wo, _ := env.orders.GetByID(ctx, "WO-001")
	if wo.Status != constants.WorkOrderPending || wo.PilotID != nil || wo.AircraftID != nil {
		t.Errorf("Expected the order back in pending, got %+v", wo)
	}
	pilot, _ := env.pilots.GetByID(ctx, "pilot-001")
	if pilot.Status != constants.PilotIdle {
		t.Errorf("Expected the pilot released, got %s", pilot.Status)
	}
	if v := testutil.ToFloat64(reg.DispatchJobsTotal.WithLabelValues("enqueue_failed")); v != 1 {
		t.Errorf("Expected 1 enqueue_failed metric, got %v", v)
	}

	queue.enqueueFn = func(context.Context, *common.DispatchJob) error { return nil }
	if _, err := svc.Dispatch(ctx, "WO-001", dtos.DispatchRequest{AircraftID: 1, PilotID: "pilot-001"}); err != nil {
		t.Errorf("Retry after rollback failed: %v", err)
	}
}

func TestFlightTaskService_LinksAndRoutes(t *testing.T) {
	env := setupTestEnv(t)
	svc := NewFlightTaskService(env.tasks, env.orders, env.routes, env.pilots, env.aircraft)
	ctx := context.Background()

	pilot := "pilot-004"
	task, err := svc.Create(ctx, dtos.FlightTaskRequest{Name: "Survey", PilotID: &pilot})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if task.Status != constants.TaskPending || task.PilotName != "Zhao Min" {
		t.Errorf("Unexpected task %+v", task)
	}

	missing := "nobody"
	if _, err := svc.Create(ctx, dtos.FlightTaskRequest{Name: "x", PilotID: &missing}); !errors.Is(err, repositories.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown pilot, got %v", err)
	}

	linked, err := svc.LinkWorkOrder(ctx, task.ID, "WO-001")
	if err != nil || linked.WorkOrderNo != "WO-20240501-001" {
		t.Fatalf("LinkWorkOrder returned %+v, %v", linked, err)
	}

	routes, _ := env.routes.List(ctx, repositories.RouteFilter{})
	withRoute, err := svc.UpdateRoute(ctx, task.ID, routes[0].ID)
	if err != nil || withRoute.RouteName != "Test Route A" {
		t.Fatalf("UpdateRoute returned %+v, %v", withRoute, err)
	}

	done, err := svc.UpdateStatus(ctx, task.ID, "completed")
	if err != nil || done.Status != constants.TaskCompleted {
		t.Errorf("UpdateStatus returned %+v, %v", done, err)
	}
	if _, err := svc.UpdateStatus(ctx, "missing", "completed"); !errors.Is(err, repositories.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestAirspaceService_CreateStoresCheckVerdict(t *testing.T) {
	env := setupTestEnv(t)
	svc := NewAirspaceService(env.apps, env.routes, airspace.DefaultRegistry(), env.checker)
	ctx := context.Background()

	if len(svc.Zones()) != 3 {
		t.Errorf("Expected 3 default zones, got %d", len(svc.Zones()))
	}

	routes, _ := env.routes.List(ctx, repositories.RouteFilter{})
	app, err := svc.Create(ctx, dtos.AirspaceApplicationRequest{Name: "Morning window", RouteID: &routes[0].ID})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if app.CheckValid == nil || !*app.CheckValid || app.CheckMessage != conflict.MsgRouteClear {
		t.Errorf("Unexpected verdict %v %q", app.CheckValid, app.CheckMessage)
	}

	start := time.Now()
	end := start.Add(-time.Hour)
	if _, err := svc.Create(ctx, dtos.AirspaceApplicationRequest{Name: "bad", StartTime: &start, EndTime: &end}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}

	if err := svc.UpdateStatus(ctx, app.ID, dtos.StatusRequest{Status: "approved"}); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if err := svc.UpdateStatus(ctx, "missing", dtos.StatusRequest{Status: "approved"}); !errors.Is(err, repositories.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	list, _ := svc.List(ctx, "approved")
	if len(list) != 1 {
		t.Errorf("Expected 1 approved application, got %d", len(list))
	}
}

func TestAirspaceService_DetourChecksPlannedPath(t *testing.T) {
	env := setupTestEnv(t)
	svc := NewAirspaceService(env.apps, env.routes, airspace.DefaultRegistry(), env.checker)

	start := geo.NewWaypoint(118.30, 31.36, 100)
	end := geo.NewWaypoint(118.337422, 31.37454, 100)
	if res := env.checker.Check([]geo.Waypoint{start, end}); res.Valid {
		t.Fatalf("Direct leg should cross Demo Zone A: %+v", res)
	}

	plan, err := svc.Detour(dtos.DetourRequest{Start: &start, End: &end})
	if err != nil {
		t.Fatalf("Detour failed: %v", err)
	}
	if !plan.Detoured || plan.ZoneID != "nfz-demo-a" || len(plan.Path) != 3 {
		t.Fatalf("Unexpected plan %+v", plan)
	}
	if plan.Check == nil || !plan.Check.Valid {
		t.Errorf("Detoured path should be clear, got %+v", plan.Check)
	}

	if _, err := svc.Detour(dtos.DetourRequest{Start: &start}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}
