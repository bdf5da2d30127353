package workers

import (
	"context"
	"time"

	"low-altitude/uavops/internal/common"
	"low-altitude/uavops/internal/logging"
	"low-altitude/uavops/internal/metrics"
)

// QueueMonitor reports the dispatch backlog
type QueueMonitor struct {
	queue     common.QueueService
	metrics   *metrics.MetricsRegistry
	threshold int64
}

func NewQueueMonitor(queue common.QueueService, m *metrics.MetricsRegistry) *QueueMonitor {
	return &QueueMonitor{queue: queue, metrics: m, threshold: 100}
}

func (m *QueueMonitor) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.check(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.check(ctx)
		}
	}
}

func (m *QueueMonitor) check(ctx context.Context) {
	n, err := m.queue.Len(ctx)
	if err != nil {
		logging.Warn("Dispatch queue length unavailable", "error", err.Error())
		return
	}
	if m.metrics != nil {
		m.metrics.DispatchQueueDepth.Set(float64(n))
	}
	if n > m.threshold {
		logging.Warn("Dispatch queue backlog high", "length", n)
		return
	}
	logging.Debug("Dispatch queue checked", "length", n)
}
