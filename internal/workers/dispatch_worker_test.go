package workers

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"low-altitude/uavops/internal/common"
	"low-altitude/uavops/internal/constants"
	"low-altitude/uavops/internal/db"
	"low-altitude/uavops/internal/db/repositories"
	"low-altitude/uavops/internal/metrics"
)

func TestDispatchWorker_ProcessCreatesTaskOnce(t *testing.T) {
	gdb, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	ctx := context.Background()
	if err := db.Seed(ctx, gdb); err != nil {
		t.Fatalf("Failed to seed: %v", err)
	}

	w := NewDispatchWorker("test", gdb, common.NewMemoryQueueService(1), nil)
	job := &common.DispatchJob{WorkOrderID: "WO-001", WorkOrderNo: "WO-20240501-001", AircraftID: 1, PilotID: "pilot-001"}

	if err := w.Process(ctx, job); err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if err := w.Process(ctx, job); err != nil {
		t.Fatalf("replayed Process failed: %v", err)
	}

	pilot, _ := repositories.NewPilotRepository(gdb).GetByID(ctx, "pilot-001")
	if pilot.Status != constants.PilotBusy {
		t.Errorf("Expected pilot busy, got %s", pilot.Status)
	}

	tasks, _ := repositories.NewFlightTaskRepository(gdb).List(ctx, "", "")
	if len(tasks) != 1 {
		t.Fatalf("Expected exactly 1 task, got %d", len(tasks))
	}
	task := tasks[0]
	if task.Status != constants.TaskPending || task.PilotName != "Zhang Wei" || task.AircraftName != "DJI Mini 3 Pro" {
		t.Errorf("Unexpected task %+v", task)
	}

	order, _ := repositories.NewWorkOrderRepository(gdb).GetByID(ctx, "WO-001")
	if order.FlightTaskID == nil || *order.FlightTaskID != task.ID {
		t.Errorf("Expected order linked to task %s, got %v", task.ID, order.FlightTaskID)
	}

	if err := w.Process(ctx, &common.DispatchJob{WorkOrderID: "missing"}); err == nil {
		t.Error("Expected error for unknown work order")
	}
}

func TestDispatchWorker_StartDrainsQueue(t *testing.T) {
	gdb, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := db.Seed(context.Background(), gdb); err != nil {
		t.Fatalf("Failed to seed: %v", err)
	}

	queue := common.NewMemoryQueueService(4)
	reg := metrics.NewMetricsRegistry(prometheus.NewRegistry())
	w := NewDispatchWorker("test", gdb, queue, reg)
	w.block = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx, 1) }()

	_ = queue.Enqueue(ctx, &common.DispatchJob{WorkOrderID: "WO-001", AircraftID: 1, PilotID: "pilot-004"})

	deadline := time.Now().Add(2 * time.Second)
	for testutil.ToFloat64(reg.DispatchJobsTotal.WithLabelValues("processed")) < 1 {
		if time.Now().After(deadline) {
			t.Fatal("Timed out waiting for job")
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Worker did not stop")
	}
}

func TestQueueMonitorSetsDepth(t *testing.T) {
	queue := common.NewMemoryQueueService(4)
	_ = queue.Enqueue(context.Background(), &common.DispatchJob{WorkOrderID: "a"})
	_ = queue.Enqueue(context.Background(), &common.DispatchJob{WorkOrderID: "b"})

	reg := metrics.NewMetricsRegistry(prometheus.NewRegistry())
	NewQueueMonitor(queue, reg).check(context.Background())

	if v := testutil.ToFloat64(reg.DispatchQueueDepth); v != 2 {
		t.Errorf("Expected depth 2, got %v", v)
	}
}
