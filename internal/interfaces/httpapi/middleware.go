package httpapi

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/riskibarqy/volleyball-bot/internal/platform/id"
	"github.com/riskibarqy/volleyball-bot/internal/platform/logging"
	"github.com/riskibarqy/volleyball-bot/internal/platform/metrics"
	"github.com/riskibarqy/volleyball-bot/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	webhookSecretHeader = "X-Telegram-Bot-Api-Secret-Token"
	requestIDHeader     = "X-Request-ID"
)

var errUnauthenticated = errors.New("unauthenticated")

// RequireAPIToken guards the /v1 surface with a static bearer token and
// reads the optional organizer identity header.
func RequireAPIToken(token string, next http.Handler) http.Handler {
	expectedToken := strings.TrimSpace(token)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if expectedToken == "" {
			writeError(ctx, w, fmt.Errorf("%w: api token is not configured", usecase.ErrDependencyUnavailable))
			return
		}

		authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
		if authHeader == "" {
			writeError(ctx, w, fmt.Errorf("%w: missing Authorization header", errUnauthenticated))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			writeError(ctx, w, fmt.Errorf("%w: invalid Authorization header format", errUnauthenticated))
			return
		}
		if !secureEqual(strings.TrimSpace(parts[1]), expectedToken) {
			writeError(ctx, w, fmt.Errorf("%w: invalid api token", errUnauthenticated))
			return
		}

		if raw := strings.TrimSpace(r.Header.Get(callerIdentityHeader)); raw != "" {
			identity, err := parseIdentity(raw, callerIdentityHeader)
			if err != nil {
				writeError(ctx, w, err)
				return
			}
			ctx = withCaller(ctx, identity)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireWebhookSecret rejects webhook deliveries that do not carry the
// secret registered with setWebhook. An empty secret disables the check.
func RequireWebhookSecret(secret string, next http.Handler) http.Handler {
	expected := strings.TrimSpace(secret)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if expected != "" && !secureEqual(r.Header.Get(webhookSecretHeader), expected) {
			writeError(ctx, w, fmt.Errorf("%w: invalid webhook secret", errUnauthenticated))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func secureEqual(provided, expected string) bool {
	return subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) == 1
}

type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func newStatusWriter(w http.ResponseWriter) *statusWriter {
	return &statusWriter{ResponseWriter: w, status: http.StatusOK}
}

func (w *statusWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.status = status
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// RequestID reuses a well-formed inbound X-Request-ID or mints one, and
// echoes it on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := id.SanitizeRequestID(r.Header.Get(requestIDHeader))
		if requestID == "" {
			requestID = id.NewRequestID()
		}
		w.Header().Set(requestIDHeader, requestID)
		next.ServeHTTP(w, r.WithContext(id.WithRequestID(r.Context(), requestID)))
	})
}

func RequestLogging(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		started := time.Now()
		sw := newStatusWriter(w)
		next.ServeHTTP(sw, r)

		logger.InfoContext(ctx, "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"remote_addr", r.RemoteAddr,
			"duration_ms", time.Since(started).Milliseconds(),
		)
	})
}

// RequestMetrics records one observation per request, labelled with the
// matched route pattern rather than the raw path.
func RequestMetrics(recorder *metrics.Recorder, next http.Handler) http.Handler {
	if recorder == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		label := &routeLabel{pattern: "unmatched"}
		sw := newStatusWriter(w)

		next.ServeHTTP(sw, r.WithContext(withRouteLabel(r.Context(), label)))

		recorder.ObserveHTTP(r.Method, label.pattern, sw.status, time.Since(started))
	})
}

// routed stamps the route pattern into the label installed by RequestMetrics.
func routed(pattern string, next http.Handler) http.Handler {
	route := pattern
	if _, path, ok := strings.Cut(pattern, " "); ok {
		route = path
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if label, ok := routeLabelFromContext(r.Context()); ok {
			label.pattern = route
		}
		next.ServeHTTP(w, r)
	})
}

func RequestTracing(next http.Handler) http.Handler {
	return otelhttp.NewHandler(next, "volleyball-bot-http",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
		otelhttp.WithFilter(func(r *http.Request) bool {
			return shouldTraceRequest(r.URL.Path)
		}),
	)
}

func shouldTraceRequest(path string) bool {
	normalized := strings.ToLower(strings.TrimSpace(path))
	switch normalized {
	case "/healthz", "/health", "/livez", "/readyz", "/metrics":
		return false
	default:
		return true
	}
}

type corsPolicy struct {
	any     bool
	origins map[string]struct{}
}

func newCORSPolicy(allowed []string) corsPolicy {
	p := corsPolicy{origins: make(map[string]struct{}, len(allowed))}
	for _, origin := range allowed {
		switch origin = strings.TrimSpace(origin); origin {
		case "":
		case "*":
			p.any = true
		default:
			p.origins[origin] = struct{}{}
		}
	}
	return p
}

// allowOrigin returns the Access-Control-Allow-Origin value for origin, or
// "" when the origin is not allowed.
func (p corsPolicy) allowOrigin(origin string) string {
	if p.any {
		return "*"
	}
	if _, ok := p.origins[origin]; ok {
		return origin
	}
	return ""
}

func CORS(allowedOrigins []string, next http.Handler) http.Handler {
	policy := newCORSPolicy(allowedOrigins)
	allowHeaders := strings.Join([]string{"Authorization", "Content-Type", "Accept", callerIdentityHeader, requestIDHeader}, ",")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := strings.TrimSpace(r.Header.Get("Origin"))
		if origin == "" {
			next.ServeHTTP(w, r)
			return
		}

		if allowed := policy.allowOrigin(origin); allowed != "" {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", allowed)
			if allowed != "*" {
				h.Add("Vary", "Origin")
			}
			h.Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			h.Set("Access-Control-Allow-Headers", allowHeaders)
			h.Set("Access-Control-Expose-Headers", requestIDHeader)
			h.Set("Access-Control-Max-Age", "600")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
