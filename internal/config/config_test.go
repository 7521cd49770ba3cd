package config

import (
	"testing"
	"time"

	"github.com/riskibarqy/volleyball-bot/internal/platform/logging"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.StorageDriver != StorageMemory {
		t.Fatalf("unexpected default storage driver: %q", cfg.StorageDriver)
	}
	if cfg.TelegramMode != TelegramModeDisabled {
		t.Fatalf("unexpected default telegram mode: %q", cfg.TelegramMode)
	}
	if cfg.SurveySessionTTL != 24*time.Hour {
		t.Fatalf("unexpected default survey session ttl: %s", cfg.SurveySessionTTL)
	}
	if cfg.TeamBalanceDefaultTeams != 2 {
		t.Fatalf("unexpected default team count: %d", cfg.TeamBalanceDefaultTeams)
	}
	if cfg.TelegramWorkers != 16 {
		t.Fatalf("unexpected default telegram workers: %d", cfg.TelegramWorkers)
	}
	if cfg.TelegramAPIBaseURL != "https://api.telegram.org" {
		t.Fatalf("unexpected default telegram api base url: %q", cfg.TelegramAPIBaseURL)
	}
	if !cfg.MetricsEnabled {
		t.Fatalf("expected metrics enabled by default")
	}
	if len(cfg.AdminTelegramIDs) != 0 {
		t.Fatalf("expected no admins by default, got %v", cfg.AdminTelegramIDs)
	}
	if cfg.LogLevel != logging.LevelInfo {
		t.Fatalf("unexpected default log level: %v", cfg.LogLevel)
	}
}

func TestLoad_InvalidAppEnv(t *testing.T) {
	t.Setenv("APP_ENV", "staging-ish")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "foo=bar, uptrace-dsn='https://token@api.uptrace.dev/1'")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev/1" {
		t.Fatalf("unexpected uptrace dsn: %q", cfg.UptraceDSN)
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without dsn")
	}
}

func TestLoad_PprofDefaultsAddrWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PPROF_ENABLED", "true")
	t.Setenv("PPROF_ADDR", "  ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PprofAddr != ":6060" {
		t.Fatalf("expected default pprof addr :6060, got %q", cfg.PprofAddr)
	}
}

func TestLoad_PyroscopeRequiresServerAddressWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("APP_SERVICE_NAME", "volleyball-bot-test")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "http://localhost:4040")
	t.Setenv("PYROSCOPE_APP_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeAppName != "volleyball-bot-test" {
		t.Fatalf("unexpected pyroscope app name: %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_CORSOriginsDefaultAndParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("default wildcard", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
			t.Fatalf("unexpected default CORS origins: %+v", cfg.CORSAllowedOrigins)
		}
	})

	t.Run("comma separated parsing", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com, http://localhost:5173 ")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 2 {
			t.Fatalf("unexpected CORS origins length: %d", len(cfg.CORSAllowedOrigins))
		}
		if cfg.CORSAllowedOrigins[1] != "http://localhost:5173" {
			t.Fatalf("unexpected second CORS origin: %s", cfg.CORSAllowedOrigins[1])
		}
	})
}

func TestLoad_StorageDriverParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("postgres accepted", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", " Postgres ")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.StorageDriver != StoragePostgres {
			t.Fatalf("unexpected storage driver: %q", cfg.StorageDriver)
		}
	})

	t.Run("unknown driver rejected", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "sqlite")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for unknown STORAGE_DRIVER")
		}
	})
}

func TestLoad_CacheConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("CACHE_ENABLED", "")
		t.Setenv("CACHE_TTL", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.CacheEnabled {
			t.Fatalf("expected cache enabled by default")
		}
		if cfg.CacheTTL != 60*time.Second {
			t.Fatalf("unexpected default cache ttl: %s", cfg.CacheTTL)
		}
	})

	t.Run("invalid ttl", func(t *testing.T) {
		t.Setenv("CACHE_TTL", "bad")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid CACHE_TTL")
		}
	})
}

func TestLoad_SurveySessionTTL(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("zero disables expiry", func(t *testing.T) {
		t.Setenv("SURVEY_SESSION_TTL", "0s")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.SurveySessionTTL != 0 {
			t.Fatalf("expected zero ttl, got %s", cfg.SurveySessionTTL)
		}
	})

	t.Run("negative rejected", func(t *testing.T) {
		t.Setenv("SURVEY_SESSION_TTL", "-1h")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for negative SURVEY_SESSION_TTL")
		}
	})
}

func TestLoad_TeamBalanceDefaultTeams(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("TEAM_BALANCE_DEFAULT_TEAMS", "0")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for TEAM_BALANCE_DEFAULT_TEAMS=0")
	}
}

func TestLoad_AdminTelegramIDs(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("comma separated", func(t *testing.T) {
		t.Setenv("ADMIN_TELEGRAM_IDS", " 100, 200 ,,300")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		want := []int64{100, 200, 300}
		if len(cfg.AdminTelegramIDs) != len(want) {
			t.Fatalf("unexpected admin ids: %v", cfg.AdminTelegramIDs)
		}
		for i := range want {
			if cfg.AdminTelegramIDs[i] != want[i] {
				t.Fatalf("unexpected admin id at %d: %d", i, cfg.AdminTelegramIDs[i])
			}
		}
	})

	t.Run("invalid id", func(t *testing.T) {
		t.Setenv("ADMIN_TELEGRAM_IDS", "100,abc")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for non-numeric admin id")
		}
	})

	t.Run("non positive id", func(t *testing.T) {
		t.Setenv("ADMIN_TELEGRAM_IDS", "-5")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for negative admin id")
		}
	})
}

func TestLoad_TelegramModeValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("polling requires token", func(t *testing.T) {
		t.Setenv("TELEGRAM_MODE", TelegramModePolling)
		t.Setenv("TELEGRAM_BOT_TOKEN", "")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error when polling without token")
		}
	})

	t.Run("webhook requires url", func(t *testing.T) {
		t.Setenv("TELEGRAM_MODE", TelegramModeWebhook)
		t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
		t.Setenv("TELEGRAM_WEBHOOK_URL", "")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error when webhook mode without url")
		}
	})

	t.Run("webhook with url", func(t *testing.T) {
		t.Setenv("TELEGRAM_MODE", TelegramModeWebhook)
		t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
		t.Setenv("TELEGRAM_WEBHOOK_URL", "https://bot.example.com/telegram/webhook")
		t.Setenv("TELEGRAM_API_BASE_URL", "https://api.telegram.org/")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.TelegramAPIBaseURL != "https://api.telegram.org" {
			t.Fatalf("expected trailing slash trimmed, got %q", cfg.TelegramAPIBaseURL)
		}
	})

	t.Run("unknown mode", func(t *testing.T) {
		t.Setenv("TELEGRAM_MODE", "carrier-pigeon")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for unknown TELEGRAM_MODE")
		}
	})

	t.Run("workers must be positive", func(t *testing.T) {
		t.Setenv("TELEGRAM_MODE", TelegramModeDisabled)
		t.Setenv("TELEGRAM_WORKERS", "0")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for TELEGRAM_WORKERS=0")
		}
	})
}
