package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"

	"channel_reporter/internal/config"
	"channel_reporter/internal/domain/enums"
	"channel_reporter/internal/domain/model"
	"channel_reporter/internal/infra/metrics"
	s3infra "channel_reporter/internal/infra/s3"
	"channel_reporter/internal/infra/telegram"
	"channel_reporter/internal/repo/postgres"
	redisrepo "channel_reporter/internal/repo/redis"
	"channel_reporter/internal/repo/reportapi"
	"channel_reporter/internal/services/access"
	"channel_reporter/internal/services/audit"
	"channel_reporter/internal/services/bulk"
	exportsvc "channel_reporter/internal/services/export"
	"channel_reporter/internal/services/quota"
	"channel_reporter/internal/services/stats"
	"channel_reporter/internal/services/submitter"
	"channel_reporter/internal/transport/httpapi"
	"channel_reporter/internal/ui"
)

// Messenger is the chat surface commands reply through.
type Messenger interface {
	SendText(chatID int64, replyTo int, text string) (int, error)
	SendMenu(chatID int64, text string, rows [][]string) error
	EditText(chatID int64, messageID int, text string) error
}

type Submitter interface {
	Submit(context.Context, model.Target, enums.ReportReason) model.SubmissionResult
}

type BulkRunner interface {
	Run(context.Context, model.BulkJob, bulk.Status) model.BulkSummary
}

type App struct {
	cfg    config.Config
	logger *slog.Logger
	db     *sql.DB
	redis  *goredis.Client
	tg     *telegram.Client
	http   *httpapi.Server

	messenger    Messenger
	access       *access.Service
	tracker      *stats.Tracker
	submitter    Submitter
	orchestrator BulkRunner
	quota        *quota.Service
	audit        *audit.Service
	metrics      *metrics.Metrics

	delay    time.Duration
	pending  *pendingStore
	jobs     jobGuard
	jobsWG   sync.WaitGroup
	newJobID func() string
	nowFn    func() time.Time
}

func New(cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	gateway, err := reportapi.NewClient(cfg.ReportAPIURL, cfg.ReportAPIToken, cfg.ReportTimeout())
	if err != nil {
		return nil, fmt.Errorf("create reporting gateway client: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(registry)

	loc := stats.LoadLocation(cfg.StatsTimezone)
	tracker := stats.NewTracker(loc)

	db, err := postgres.Open(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Warn("postgres unavailable, continuing without audit trail", "error", err)
		db = nil
	}
	if err := postgres.EnsureSchema(context.Background(), db); err != nil {
		logger.Warn("audit schema unavailable, continuing without audit trail", "error", err)
		_ = db.Close()
		db = nil
	}
	var auditRepo audit.Repo
	if db != nil {
		auditRepo = postgres.NewAuditRepo(db)
	}

	var redisClient *goredis.Client
	var quotaStore quota.Store
	if strings.TrimSpace(cfg.RedisAddr) != "" {
		redisClient, err = redisrepo.Open(context.Background(), cfg.RedisAddr)
		if err != nil {
			logger.Warn("redis unavailable, daily quota kept in memory", "error", err)
			redisClient = nil
		} else {
			quotaStore = redisrepo.NewQuotaRepo(redisClient)
		}
	}

	var exporter bulk.Exporter
	if cfg.IsS3Enabled() {
		storage, err := s3infra.NewStorage(s3infra.Config{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			UseSSL:    cfg.S3UseSSL,
		})
		if err != nil {
			logger.Warn("s3 storage unavailable, bulk exports disabled", "error", err)
		} else {
			exporter = exportsvc.NewService(storage)
		}
	} else {
		logger.Info("bulk exports disabled: missing S3_ENDPOINT or S3_BUCKET")
	}

	submitService := submitter.NewService(gateway, gateway, tracker, appMetrics, logger)

	app := &App{
		cfg:          cfg,
		logger:       logger,
		db:           db,
		redis:        redisClient,
		access:       access.NewService(cfg.AdminIDs),
		tracker:      tracker,
		submitter:    submitService,
		orchestrator: bulk.NewOrchestrator(submitService, ui.BulkRenderer{}, exporter, appMetrics, logger),
		quota:        quota.NewService(quotaStore, cfg.DailyReportLimit, loc),
		audit:        audit.NewService(auditRepo),
		metrics:      appMetrics,
		delay:        cfg.ReportDelay(),
		pending:      newPendingStore(cfg.PendingTTL(), time.Now),
		newJobID:     uuid.NewString,
		nowFn:        time.Now,
	}

	app.tg, err = telegram.NewClient(cfg.BotToken, cfg.PollTimeoutSeconds, logger, app.routeUpdate)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("create telegram client: %w", err)
	}
	app.messenger = app.tg

	if strings.TrimSpace(cfg.HTTPAddr) != "" {
		app.http = httpapi.NewServer(cfg.HTTPAddr, httpapi.NewRouter(httpapi.Dependencies{
			Stats:    tracker,
			Jobs:     app,
			Gatherer: registry,
			Logger:   logger,
		}), logger)
	}

	logger.Info("app configured",
		"operators", app.access.Count(),
		"delay", app.delay.String(),
		"daily_limit", cfg.DailyReportLimit,
		"audit", app.audit.Enabled(),
		"redis_quota", quotaStore != nil,
		"exports", exporter != nil,
	)
	return app, nil
}

// Run polls for updates until ctx is cancelled. Running bulk jobs stop
// before their next item and still deliver their summary before Run returns.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	if a.http != nil {
		go func() {
			if err := a.http.Run(ctx); err != nil {
				a.logger.Error("http server stopped", "error", err)
			}
		}()
	}

	err := a.tg.Start(ctx)
	a.jobsWG.Wait()
	return err
}

func (a *App) BulkRunning() bool {
	return a.jobs.Running()
}

func (a *App) close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("close postgres", "error", err)
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("close redis", "error", err)
		}
	}
}
