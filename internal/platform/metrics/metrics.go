package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeOK      = "ok"
	OutcomeError   = "error"
	OutcomeRefused = "refused"
)

// Recorder owns every collector exposed on /metrics. A nil Recorder records nothing.
type Recorder struct {
	namespace string
	buckets   []float64
	registry  *prometheus.Registry

	updates          *prometheus.CounterVec
	commands         *prometheus.CounterVec
	commandDuration  *prometheus.HistogramVec
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	surveysCompleted prometheus.Counter
	eventJoins       *prometheus.CounterVec
	teamBalances     prometheus.Counter
	outboundCalls    *prometheus.CounterVec
}

type Option func(*Recorder)

func WithNamespace(namespace string) Option {
	return func(r *Recorder) {
		if namespace != "" {
			r.namespace = namespace
		}
	}
}

func WithHistogramBuckets(buckets []float64) Option {
	return func(r *Recorder) {
		if len(buckets) > 0 {
			r.buckets = buckets
		}
	}
}

// WithRuntimeCollectors registers Go runtime and process collectors on the recorder registry.
func WithRuntimeCollectors() Option {
	return func(r *Recorder) {
		r.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
}

func NewRecorder(opts ...Option) *Recorder {
	r := &Recorder{
		namespace: "volleyball",
		buckets:   prometheus.DefBuckets,
		registry:  prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(r)
	}

	auto := promauto.With(r.registry)
	r.updates = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Subsystem: "bot",
		Name:      "updates_total",
		Help:      "Telegram updates received, by kind and outcome.",
	}, []string{"kind", "outcome"})
	r.commands = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Subsystem: "bot",
		Name:      "commands_total",
		Help:      "Bot commands handled, by command and outcome.",
	}, []string{"command", "outcome"})
	r.commandDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: r.namespace,
		Subsystem: "bot",
		Name:      "command_duration_seconds",
		Help:      "Bot command handling latency.",
		Buckets:   r.buckets,
	}, []string{"command"})
	r.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests served, by method, route and status.",
	}, []string{"method", "route", "status"})
	r.httpDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: r.namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   r.buckets,
	}, []string{"method", "route"})
	r.surveysCompleted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: r.namespace,
		Subsystem: "survey",
		Name:      "completed_total",
		Help:      "Registration surveys completed.",
	})
	r.eventJoins = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Subsystem: "event",
		Name:      "joins_total",
		Help:      "Event join attempts, by outcome.",
	}, []string{"outcome"})
	r.teamBalances = auto.NewCounter(prometheus.CounterOpts{
		Namespace: r.namespace,
		Subsystem: "team",
		Name:      "balances_total",
		Help:      "Team balancing runs that produced teams.",
	})
	r.outboundCalls = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Subsystem: "telegram",
		Name:      "api_calls_total",
		Help:      "Telegram Bot API calls, by method and outcome.",
	}, []string{"method", "outcome"})

	return r
}

func (r *Recorder) ObserveUpdate(kind, outcome string) {
	if r == nil {
		return
	}
	r.updates.WithLabelValues(kind, outcome).Inc()
}

func (r *Recorder) ObserveCommand(command, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.commands.WithLabelValues(command, outcome).Inc()
	r.commandDuration.WithLabelValues(command).Observe(elapsed.Seconds())
}

func (r *Recorder) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (r *Recorder) SurveyCompleted() {
	if r == nil {
		return
	}
	r.surveysCompleted.Inc()
}

func (r *Recorder) EventJoin(outcome string) {
	if r == nil {
		return
	}
	r.eventJoins.WithLabelValues(outcome).Inc()
}

func (r *Recorder) TeamsBalanced() {
	if r == nil {
		return
	}
	r.teamBalances.Inc()
}

func (r *Recorder) TelegramCall(method, outcome string) {
	if r == nil {
		return
	}
	r.outboundCalls.WithLabelValues(method, outcome).Inc()
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
