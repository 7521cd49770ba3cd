package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/volleyball-bot/internal/config"
	"github.com/riskibarqy/volleyball-bot/internal/platform/logging"
)

func memoryConfig() config.Config {
	return config.Config{
		AppEnv:                  config.EnvDev,
		ServiceName:             "volleyball-bot",
		HTTPAddr:                "127.0.0.1:0",
		ReadTimeout:             time.Second,
		WriteTimeout:            time.Second,
		StorageDriver:           config.StorageMemory,
		CacheEnabled:            true,
		CacheTTL:                time.Minute,
		SurveySessionTTL:        time.Hour,
		TeamBalanceDefaultTeams: 2,
		AdminTelegramIDs:        []int64{1},
		APIToken:                "token",
		TelegramMode:            config.TelegramModeDisabled,
		MetricsEnabled:          true,
	}
}

func TestNew_MemoryStorage(t *testing.T) {
	a, err := New(context.Background(), memoryConfig(), logging.NewNop())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	t.Cleanup(func() { _ = a.Close(context.Background()) })

	status := a.Status(context.Background())
	if status.Mode != config.TelegramModeDisabled || status.Bot != "Disabled" {
		t.Fatalf("unexpected status: %+v", status)
	}

	rec := httptest.NewRecorder()
	a.server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected healthz 200, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/players", strings.NewReader(`{"identity":10,"handle":"kim"}`))
	req.Header.Set("Authorization", "Bearer token")
	rec = httptest.NewRecorder()
	a.server.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected seeded survey to start, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	a.server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "volleyball_http_requests_total") {
		t.Fatalf("expected metrics endpoint, got %d", rec.Code)
	}
}

func TestNew_CatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.json")
	raw := `{"questions":[{"question_text":"Can you spike?","options":[{"option_text":"No","response_points":1},{"option_text":"Yes","response_points":3}]}]}`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	cfg := memoryConfig()
	cfg.SurveyCatalogPath = path
	a, err := New(context.Background(), cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	t.Cleanup(func() { _ = a.Close(context.Background()) })

	req := httptest.NewRequest(http.MethodPost, "/v1/players", strings.NewReader(`{"identity":10}`))
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	a.server.Handler.ServeHTTP(rec, req)
	if !strings.Contains(rec.Body.String(), "Can you spike?") {
		t.Fatalf("expected question from file, got %s", rec.Body.String())
	}
}

func TestNew_Errors(t *testing.T) {
	t.Run("missing catalog file", func(t *testing.T) {
		cfg := memoryConfig()
		cfg.SurveyCatalogPath = filepath.Join(t.TempDir(), "missing.json")
		if _, err := New(context.Background(), cfg, nil); err == nil {
			t.Fatalf("expected error for missing catalog file")
		}
	})

	t.Run("empty http addr", func(t *testing.T) {
		cfg := memoryConfig()
		cfg.HTTPAddr = ""
		if _, err := New(context.Background(), cfg, nil); err == nil {
			t.Fatalf("expected error for empty addr")
		}
	})
}

func TestRun_StopsOnCancel(t *testing.T) {
	a, err := New(context.Background(), memoryConfig(), logging.NewNop())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("run did not stop after cancel")
	}
	if err := a.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
}
