package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/volleyball-bot/external/telegram"
	"github.com/riskibarqy/volleyball-bot/internal/config"
	"github.com/riskibarqy/volleyball-bot/internal/domain/event"
	"github.com/riskibarqy/volleyball-bot/internal/domain/player"
	"github.com/riskibarqy/volleyball-bot/internal/domain/survey"
	"github.com/riskibarqy/volleyball-bot/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/volleyball-bot/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/volleyball-bot/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/volleyball-bot/internal/interfaces/bot"
	"github.com/riskibarqy/volleyball-bot/internal/interfaces/httpapi"
	basecache "github.com/riskibarqy/volleyball-bot/internal/platform/cache"
	"github.com/riskibarqy/volleyball-bot/internal/platform/logging"
	"github.com/riskibarqy/volleyball-bot/internal/platform/metrics"
	"github.com/riskibarqy/volleyball-bot/internal/platform/resilience"
	"github.com/riskibarqy/volleyball-bot/internal/usecase"
	"github.com/sourcegraph/conc/pool"
)

const (
	shutdownTimeout   = 10 * time.Second
	updateTaskTimeout = 30 * time.Second
)

type repositories struct {
	players  player.Repository
	events   event.Repository
	catalog  survey.CatalogRepository
	sessions survey.SessionStore
}

// App owns every long-lived component of the service.
type App struct {
	cfg        config.Config
	logger     *logging.Logger
	db         *sqlx.DB
	recorder   *metrics.Recorder
	telegram   *telegram.Client
	dispatcher *bot.Dispatcher
	poller     *bot.Poller
	server     *http.Server
	botStatus  string
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	a := &App{cfg: cfg, logger: logger, botStatus: "Disabled"}
	if cfg.MetricsEnabled {
		a.recorder = metrics.NewRecorder(metrics.WithRuntimeCollectors())
	}

	repos, err := a.openStorage(ctx)
	if err != nil {
		return nil, err
	}

	admins := usecase.NewAdminSet(cfg.AdminTelegramIDs)
	if admins.Len() == 0 {
		logger.Warn("no organizers configured", "env", "ADMIN_TELEGRAM_IDS")
	}

	services := bot.Services{
		Registration: usecase.NewRegistrationService(repos.players, repos.catalog, repos.sessions, logger.Named("registration")),
		Players:      usecase.NewPlayerService(repos.players, repos.catalog, repos.sessions),
		Events:       usecase.NewEventService(repos.events, repos.players, admins, logger.Named("events")),
		Teams:        usecase.NewTeamService(repos.events, admins, cfg.TeamBalanceDefaultTeams, logger.Named("teams")),
	}

	if cfg.TelegramMode != config.TelegramModeDisabled {
		if err := a.buildBot(services, admins); err != nil {
			_ = a.closeDB()
			return nil, err
		}
	}

	var dispatcher httpapi.UpdateDispatcher
	if a.dispatcher != nil {
		dispatcher = a.dispatcher
	}
	handler := httpapi.NewHandler(httpapi.Services{
		Registration: services.Registration,
		Players:      services.Players,
		Events:       services.Events,
		Teams:        services.Teams,
	}, dispatcher, a, a.recorder, logger.Named("http"))

	router := httpapi.NewRouter(handler, httpapi.RouterConfig{
		APIToken:           cfg.APIToken,
		WebhookSecret:      cfg.TelegramWebhookSecret,
		WebhookEnabled:     cfg.TelegramMode == config.TelegramModeWebhook,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		Metrics:            a.recorder,
		Logger:             logger.Named("http"),
	})

	a.server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return a, nil
}

func (a *App) openStorage(ctx context.Context) (repositories, error) {
	var repos repositories

	switch a.cfg.StorageDriver {
	case config.StoragePostgres:
		db, err := postgres.Open(ctx, a.cfg.DBURL, a.cfg.DBDisablePreparedBinary)
		if err != nil {
			return repositories{}, err
		}
		a.db = db
		repos = repositories{
			players:  postgres.NewPlayerRepository(db),
			events:   postgres.NewEventRepository(db),
			catalog:  postgres.NewCatalogRepository(db),
			sessions: postgres.NewSessionStore(db, a.cfg.SurveySessionTTL),
		}
	default:
		players := memory.NewPlayerRepository(nil)
		catalog, err := memory.NewCatalogRepository(memory.SeedQuestions())
		if err != nil {
			return repositories{}, fmt.Errorf("build seed survey catalog: %w", err)
		}
		repos = repositories{
			players:  players,
			events:   memory.NewEventRepository(players),
			catalog:  catalog,
			sessions: memory.NewSessionStore(a.cfg.SurveySessionTTL),
		}
	}

	if a.cfg.SurveyCatalogPath != "" {
		questions, err := memory.LoadQuestionsFile(a.cfg.SurveyCatalogPath)
		if err != nil {
			_ = a.closeDB()
			return repositories{}, fmt.Errorf("load survey catalog %s: %w", a.cfg.SurveyCatalogPath, err)
		}
		catalog, err := memory.NewCatalogRepository(questions)
		if err != nil {
			_ = a.closeDB()
			return repositories{}, fmt.Errorf("build survey catalog %s: %w", a.cfg.SurveyCatalogPath, err)
		}
		repos.catalog = catalog
		a.logger.Info("survey catalog loaded from file", "path", a.cfg.SurveyCatalogPath, "questions", len(questions))
	}

	if a.cfg.CacheEnabled {
		store := basecache.NewStore(a.cfg.CacheTTL)
		repos.catalog = cache.NewCatalogRepository(repos.catalog, store)
		repos.events = cache.NewEventRepository(repos.events, store)
	}

	a.logger.Info("storage ready", "driver", a.cfg.StorageDriver, "cache_enabled", a.cfg.CacheEnabled)
	return repos, nil
}

func (a *App) buildBot(services bot.Services, admins usecase.AdminSet) error {
	a.telegram = telegram.NewClient(telegram.ClientConfig{
		BaseURL: a.cfg.TelegramAPIBaseURL,
		Token:   a.cfg.TelegramBotToken,
		Timeout: a.cfg.TelegramTimeout,
		Logger:  a.logger.Named("telegram"),
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          a.cfg.TelegramCircuitEnabled,
			FailureThreshold: a.cfg.TelegramCircuitFailureCount,
			OpenTimeout:      a.cfg.TelegramCircuitOpenTimeout,
			HalfOpenMaxReq:   a.cfg.TelegramCircuitHalfOpenMaxReq,
		},
		Recorder: a.recorder,
	})

	handler := bot.New(services, admins, a.telegram, a.logger.Named("bot"), a.recorder)
	dispatcher, err := bot.NewDispatcher(handler, a.cfg.TelegramWorkers, updateTaskTimeout, a.logger.Named("dispatcher"))
	if err != nil {
		a.botStatus = fmt.Sprintf("Error: %v", err)
		return fmt.Errorf("build update dispatcher: %w", err)
	}
	a.dispatcher = dispatcher

	if a.cfg.TelegramMode == config.TelegramModePolling {
		a.poller = bot.NewPoller(a.telegram, dispatcher, a.cfg.TelegramPollTimeout, a.logger.Named("poller"))
	}
	a.botStatus = "Initialized"
	return nil
}

// Run serves HTTP and, in polling mode, long-polls Telegram until ctx is
// cancelled or one of them fails.
func (a *App) Run(ctx context.Context) error {
	if err := a.registerTransport(ctx); err != nil {
		return err
	}

	group := pool.New().WithContext(ctx).WithCancelOnError()

	group.Go(func(ctx context.Context) error {
		a.logger.Info("http server starting", "addr", a.cfg.HTTPAddr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	group.Go(func(ctx context.Context) error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		a.logger.Info("http server stopped")
		return nil
	})
	if a.poller != nil {
		group.Go(a.poller.Run)
	}

	return group.Wait()
}

func (a *App) registerTransport(ctx context.Context) error {
	if a.telegram == nil {
		a.logger.Info("telegram bot disabled", "mode", a.cfg.TelegramMode)
		return nil
	}

	switch a.cfg.TelegramMode {
	case config.TelegramModeWebhook:
		if err := a.telegram.SetWebhook(ctx, a.cfg.TelegramWebhookURL, a.cfg.TelegramWebhookSecret); err != nil {
			a.botStatus = fmt.Sprintf("Error: %v", err)
			return fmt.Errorf("set telegram webhook: %w", err)
		}
		a.logger.Info("telegram webhook registered", "url", a.cfg.TelegramWebhookURL)
	case config.TelegramModePolling:
		if err := a.telegram.DeleteWebhook(ctx); err != nil {
			a.botStatus = fmt.Sprintf("Error: %v", err)
			return fmt.Errorf("delete telegram webhook: %w", err)
		}
	}
	a.botStatus = "Running"
	return nil
}

// Close drains in-flight updates and releases storage.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.dispatcher != nil {
		if err := a.dispatcher.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close dispatcher: %w", err))
		}
	}
	if err := a.closeDB(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (a *App) closeDB() error {
	if a.db == nil {
		return nil
	}
	if err := a.db.Close(); err != nil {
		return fmt.Errorf("close postgres: %w", err)
	}
	return nil
}

// Status reports the state shown on the root status page.
func (a *App) Status(ctx context.Context) httpapi.ServiceStatus {
	status := httpapi.ServiceStatus{
		Mode:     a.cfg.TelegramMode,
		Bot:      a.botStatus,
		Database: "Connected (memory)",
	}
	if a.db == nil {
		return status
	}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := a.db.PingContext(pingCtx); err != nil {
		status.Database = fmt.Sprintf("Error: %v", err)
		return status
	}
	status.Database = "Connected"
	return status
}
