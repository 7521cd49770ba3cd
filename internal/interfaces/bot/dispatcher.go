package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/volleyball-bot/external/telegram"
	"github.com/riskibarqy/volleyball-bot/internal/platform/logging"
)

const defaultUpdateTimeout = 30 * time.Second

type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update telegram.Update) error
}

// Dispatcher runs updates on a bounded worker pool so different players are
// served in parallel.
type Dispatcher struct {
	pool    *ants.Pool
	handler UpdateHandler
	logger  *logging.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewDispatcher(handler UpdateHandler, workers int, timeout time.Duration, logger *logging.Logger) (*Dispatcher, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if workers < 1 {
		workers = 1
	}
	if timeout <= 0 {
		timeout = defaultUpdateTimeout
	}

	pool, err := ants.NewPool(workers, ants.WithPanicHandler(func(p any) {
		logger.Error("bot worker panic", "panic", fmt.Sprint(p))
	}))
	if err != nil {
		return nil, fmt.Errorf("create bot worker pool: %w", err)
	}

	return &Dispatcher{
		pool:    pool,
		handler: handler,
		logger:  logger,
		timeout: timeout,
	}, nil
}

// Dispatch queues update for processing and returns without waiting for it.
// It blocks while every worker is busy. The update outlives ctx cancellation
// so a webhook request can be acknowledged immediately.
func (d *Dispatcher) Dispatch(ctx context.Context, update telegram.Update) error {
	detached := context.WithoutCancel(ctx)

	d.wg.Add(1)
	err := d.pool.Submit(func() {
		defer d.wg.Done()

		taskCtx, cancel := context.WithTimeout(detached, d.timeout)
		defer cancel()
		_ = d.handler.HandleUpdate(taskCtx, update)
	})
	if err != nil {
		d.wg.Done()
		return fmt.Errorf("submit update=%d: %w", update.UpdateID, err)
	}

	return nil
}

func (d *Dispatcher) Running() int {
	return d.pool.Running()
}

// Close waits for queued updates to finish, up to ctx, then releases the pool.
func (d *Dispatcher) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	defer d.pool.Release()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		d.logger.Warn("bot dispatcher closed with updates in flight", "running", d.pool.Running())
		return ctx.Err()
	}
}
