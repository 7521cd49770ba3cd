package bot

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/riskibarqy/volleyball-bot/external/telegram"
	"github.com/riskibarqy/volleyball-bot/internal/platform/logging"
)

const (
	minPollBackoff = 500 * time.Millisecond
	maxPollBackoff = 30 * time.Second
)

type UpdateSource interface {
	GetUpdates(ctx context.Context, offset int64, pollTimeout time.Duration) ([]telegram.Update, error)
}

type UpdateDispatcher interface {
	Dispatch(ctx context.Context, update telegram.Update) error
}

// Poller long-polls getUpdates and forwards every update to the dispatcher.
type Poller struct {
	source      UpdateSource
	dispatcher  UpdateDispatcher
	logger      *logging.Logger
	pollTimeout time.Duration
	offset      atomic.Int64
	sleep       func(ctx context.Context, d time.Duration) bool
}

func NewPoller(source UpdateSource, dispatcher UpdateDispatcher, pollTimeout time.Duration, logger *logging.Logger) *Poller {
	if logger == nil {
		logger = logging.Default()
	}
	if pollTimeout < 0 {
		pollTimeout = 0
	}

	return &Poller{
		source:      source,
		dispatcher:  dispatcher,
		logger:      logger,
		pollTimeout: pollTimeout,
		sleep:       sleepContext,
	}
}

// Offset is the next update id the poller will ask for.
func (p *Poller) Offset() int64 {
	return p.offset.Load()
}

// Run polls until ctx is cancelled. Fetch failures back off exponentially.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.InfoContext(ctx, "telegram polling started", "poll_timeout", p.pollTimeout.String())
	backoff := minPollBackoff

	for {
		if ctx.Err() != nil {
			p.logger.Info("telegram polling stopped", "offset", p.Offset())
			return nil
		}

		updates, err := p.source.GetUpdates(ctx, p.offset.Load(), p.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			p.logger.WarnContext(ctx, "telegram getUpdates failed", "offset", p.Offset(), "retry_in", backoff.String(), "error", err)
			if !p.sleep(ctx, backoff) {
				continue
			}
			backoff = min(backoff*2, maxPollBackoff)
			continue
		}
		backoff = minPollBackoff

		for _, update := range updates {
			if update.UpdateID < p.offset.Load() {
				continue
			}
			p.offset.Store(update.UpdateID + 1)
			if err := p.dispatcher.Dispatch(ctx, update); err != nil {
				p.logger.ErrorContext(ctx, "dispatch telegram update failed", "update_id", update.UpdateID, "error", err)
			}
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
