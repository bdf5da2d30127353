package common

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"time"
)

// DispatchJob asks the dispatch worker to assign a work order.
type DispatchJob struct {
	WorkOrderID string    `json:"work_order_id"`
	WorkOrderNo string    `json:"work_order_no"`
	AircraftID  uint      `json:"aircraft_id"`
	PilotID     string    `json:"pilot_id"`
	RouteID     string    `json:"route_id,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}

// QueueService is a durable-enough job queue. Dequeue blocks up to block
// and returns a nil job on timeout.
type QueueService interface {
	Enqueue(ctx context.Context, job *DispatchJob) error
	Dequeue(ctx context.Context, consumer string, block time.Duration) (*DispatchJob, string, error)
	Ack(ctx context.Context, messageID string) error
	Len(ctx context.Context) (int64, error)
}

var ErrQueueFull = errors.New("queue is full")

// MemoryQueueService is the single-process queue used without Redis.
// Messages are acknowledged on receipt.
type MemoryQueueService struct {
	ch  chan *DispatchJob
	seq atomic.Uint64
}

var _ QueueService = (*MemoryQueueService)(nil)

func NewMemoryQueueService(capacity int) *MemoryQueueService {
	if capacity <= 0 {
		capacity = 128
	}
	return &MemoryQueueService{ch: make(chan *DispatchJob, capacity)}
}

func (q *MemoryQueueService) Enqueue(ctx context.Context, job *DispatchJob) error {
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrQueueFull
	}
}

func (q *MemoryQueueService) Dequeue(ctx context.Context, _ string, block time.Duration) (*DispatchJob, string, error) {
	timer := time.NewTimer(block)
	defer timer.Stop()

	select {
	case job := <-q.ch:
		return job, strconv.FormatUint(q.seq.Add(1), 10), nil
	case <-timer.C:
		return nil, "", nil
	case <-ctx.Done():
		return nil, "", ctx.Err()
	}
}

func (q *MemoryQueueService) Ack(context.Context, string) error {
	return nil
}

func (q *MemoryQueueService) Len(context.Context) (int64, error) {
	return int64(len(q.ch)), nil
}
