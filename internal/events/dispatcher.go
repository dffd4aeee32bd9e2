package events

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"ats-sync/internal/pkg/logger"
)

// Dispatcher is the in-process Publisher: a bounded queue drained by a fixed
// number of workers. Publish never blocks; a full queue drops the event.
type Dispatcher struct {
	workers int
	handler Handler
	logger  *zap.SugaredLogger

	queue chan RecordUpserted
	wg    sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(workers, buffer int, handler Handler, log *zap.SugaredLogger) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if buffer < 0 {
		buffer = 0
	}
	return &Dispatcher{
		workers: workers,
		handler: handler,
		logger:  logger.OrNop(log),
		queue:   make(chan RecordUpserted, buffer),
	}
}

func (d *Dispatcher) Publish(_ context.Context, evt RecordUpserted) error {
	if d == nil {
		return ErrClosed
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrClosed
	}

	select {
	case d.queue <- evt:
		return nil
	default:
		d.logger.Warnw("sync event dropped", "reason", "buffer_full", "kind", evt.Kind, "local_id", evt.LocalID)
		return ErrQueueFull
	}
}

// Start launches the workers. They exit when ctx is done or after Close has
// drained the queue.
func (d *Dispatcher) Start(ctx context.Context) {
	if d == nil || d.handler == nil {
		return
	}
	d.wg.Add(d.workers)
	for i := 0; i < d.workers; i++ {
		go func() {
			defer d.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case evt, ok := <-d.queue:
					if !ok {
						return
					}
					d.handle(ctx, evt)
				}
			}
		}()
	}
}

func (d *Dispatcher) handle(ctx context.Context, evt RecordUpserted) {
	defer func() {
		if p := recover(); p != nil {
			d.logger.Errorw("sync event handler panicked", "kind", evt.Kind, "local_id", evt.LocalID, "panic", p)
		}
	}()
	if err := d.handler(ctx, evt); err != nil {
		d.logger.Warnw("sync event handling failed", "kind", evt.Kind, "local_id", evt.LocalID, "error", err)
	}
}

// Close stops accepting events and waits for queued ones to finish.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()
	d.wg.Wait()
}
