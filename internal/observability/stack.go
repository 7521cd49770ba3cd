// Package observability starts the optional tracing and profiling
// exporters around the service and stops them in reverse order.
package observability

import (
	"context"
	"errors"
	"fmt"

	"github.com/riskibarqy/volleyball-bot/internal/config"
	"github.com/riskibarqy/volleyball-bot/internal/platform/logging"
)

type stopFunc func(context.Context) error

type component struct {
	name string
	stop stopFunc
}

// Stack holds the exporters that were enabled by configuration.
type Stack struct {
	logger     *logging.Logger
	components []component
	pprofAddr  string
}

type starter struct {
	name  string
	start func(config.Config, *logging.Logger, *Stack) (stopFunc, error)
}

var starters = []starter{
	{name: "uptrace", start: startTracing},
	{name: "pyroscope", start: startProfiler},
	{name: "pprof", start: startPprof},
}

// Start brings up every enabled exporter. On failure the ones already
// running are stopped before returning.
func Start(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Stack, error) {
	if logger == nil {
		logger = logging.Default()
	}
	s := &Stack{logger: logger.Named("observability")}

	for _, st := range starters {
		stop, err := st.start(cfg, s.logger, s)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("start %s: %w", st.name, err), s.Shutdown(ctx))
		}
		if stop != nil {
			s.components = append(s.components, component{name: st.name, stop: stop})
		}
	}
	return s, nil
}

// Enabled lists the running exporters in start order.
func (s *Stack) Enabled() []string {
	names := make([]string, 0, len(s.components))
	for _, c := range s.components {
		names = append(names, c.name)
	}
	return names
}

func (s *Stack) Shutdown(ctx context.Context) error {
	if s == nil {
		return nil
	}

	var errs []error
	for i := len(s.components) - 1; i >= 0; i-- {
		c := s.components[i]
		if err := c.stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stop %s: %w", c.name, err))
			continue
		}
		s.logger.Info("exporter stopped", "name", c.name)
	}
	s.components = nil
	return errors.Join(errs...)
}
