package resilience

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned by Allow while the breaker sheds load.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// State is the position of a Breaker.
type State int32

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig tunes a Breaker. Zero values fall back to
// DefaultCircuitBreakerConfig.
type CircuitBreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	OpenTimeout      time.Duration
	HalfOpenMaxReq   int
}

func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 5,
		OpenTimeout:      15 * time.Second,
		HalfOpenMaxReq:   2,
	}
}

func NormalizeCircuitBreakerConfig(cfg CircuitBreakerConfig) CircuitBreakerConfig {
	def := DefaultCircuitBreakerConfig()
	cfg.FailureThreshold = max(cfg.FailureThreshold, 0)
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = def.OpenTimeout
	}
	if cfg.HalfOpenMaxReq <= 0 {
		cfg.HalfOpenMaxReq = def.HalfOpenMaxReq
	}
	return cfg
}

// BreakerOption customizes a Breaker.
type BreakerOption func(*Breaker)

// OnStateChange registers fn to run after every transition. fn runs
// outside the breaker lock.
func OnStateChange(fn func(from, to State)) BreakerOption {
	return func(b *Breaker) { b.onChange = fn }
}

func withClock(now func() time.Time) BreakerOption {
	return func(b *Breaker) { b.now = now }
}

// Breaker trips after a run of consecutive failures, rejects calls for
// OpenTimeout, then lets HalfOpenMaxReq probes through before closing.
type Breaker struct {
	cfg      CircuitBreakerConfig
	now      func() time.Time
	onChange func(from, to State)

	mu        sync.Mutex
	state     State
	failures  int
	openUntil time.Time
	probes    int
	passed    int
}

func NewBreaker(cfg CircuitBreakerConfig, opts ...BreakerOption) *Breaker {
	b := &Breaker{
		cfg: NormalizeCircuitBreakerConfig(cfg),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Allow reports whether a call may proceed. Every nil return must be
// followed by RecordSuccess or RecordFailure.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	from, to := b.expire()
	var err error
	switch b.state {
	case StateOpen:
		err = ErrCircuitOpen
	case StateHalfOpen:
		if b.probes >= b.cfg.HalfOpenMaxReq {
			err = ErrCircuitOpen
		} else {
			b.probes++
		}
	}
	b.mu.Unlock()

	b.notify(from, to)
	return err
}

func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	from := b.state
	switch b.state {
	case StateClosed:
		b.failures = 0
	case StateHalfOpen:
		b.probes = max(b.probes-1, 0)
		b.passed++
		if b.passed >= b.cfg.HalfOpenMaxReq && b.probes == 0 {
			b.reset(StateClosed)
		}
	}
	to := b.state
	b.mu.Unlock()

	b.notify(from, to)
}

func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	from := b.state
	switch b.state {
	case StateClosed:
		b.failures++
		if b.failures >= b.cfg.FailureThreshold {
			b.trip()
		}
	case StateHalfOpen:
		b.trip()
	case StateOpen:
		b.openUntil = b.now().Add(b.cfg.OpenTimeout)
	}
	to := b.state
	b.mu.Unlock()

	b.notify(from, to)
}

// State reports the current position, moving an expired open breaker
// to half open.
func (b *Breaker) State() State {
	b.mu.Lock()
	from, to := b.expire()
	state := b.state
	b.mu.Unlock()

	b.notify(from, to)
	return state
}

func (b *Breaker) expire() (State, State) {
	from := b.state
	if b.state == StateOpen && !b.now().Before(b.openUntil) {
		b.reset(StateHalfOpen)
	}
	return from, b.state
}

func (b *Breaker) trip() {
	b.reset(StateOpen)
	b.openUntil = b.now().Add(b.cfg.OpenTimeout)
}

func (b *Breaker) reset(state State) {
	b.state = state
	b.failures = 0
	b.probes = 0
	b.passed = 0
	b.openUntil = time.Time{}
}

func (b *Breaker) notify(from, to State) {
	if from != to && b.onChange != nil {
		b.onChange(from, to)
	}
}
