package httpapi

import (
	"net/http"

	"github.com/riskibarqy/volleyball-bot/internal/platform/logging"
	"github.com/riskibarqy/volleyball-bot/internal/platform/metrics"
)

type RouterConfig struct {
	APIToken           string
	WebhookSecret      string
	WebhookEnabled     bool
	CORSAllowedOrigins []string
	Metrics            *metrics.Recorder
	Logger             *logging.Logger
}

func NewRouter(handler *Handler, cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler, cfg.Metrics)
	if cfg.WebhookEnabled {
		registerWebhookRoutes(mux, handler, cfg.WebhookSecret)
	}
	registerPlayerRoutes(mux, handler, cfg.APIToken)
	registerEventRoutes(mux, handler, cfg.APIToken)

	chain := recoverPanic(logger, mux)
	chain = CORS(cfg.CORSAllowedOrigins, chain)
	chain = RequestMetrics(cfg.Metrics, chain)
	chain = RequestLogging(logger, chain)
	chain = RequestID(chain)
	return RequestTracing(chain)
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(ctx, "panic recovered", "panic", rec)
				writeInternalError(ctx, w)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
