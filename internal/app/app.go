package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"go_ngxmgr/internal/api"
	"go_ngxmgr/internal/cache"
	"go_ngxmgr/internal/cert"
	"go_ngxmgr/internal/composer"
	"go_ngxmgr/internal/config"
	"go_ngxmgr/internal/db"
	"go_ngxmgr/internal/health"
	"go_ngxmgr/internal/metrics"
	"go_ngxmgr/internal/nginx"
	"go_ngxmgr/internal/service"
	"go_ngxmgr/internal/store"
)

// App holds the wired components shared by the service and the CLI
type App struct {
	Config   *config.Config
	Logger   *logrus.Logger
	DB       *gorm.DB
	Store    *store.Store
	Redis    *redis.Client      // nil when Redis is disabled or unreachable
	Status   *cache.StatusStore // nil when Redis is nil
	Metrics  *metrics.Collector
	Composer *composer.Composer
	Lane     *nginx.Lane
	Monitor  *health.Monitor

	ConfigService *service.ConfigService
	Certificates  *service.CertificateService
}

// New opens MySQL and Redis and wires every component
func New(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*App, error) {
	conn, err := db.OpenMySQL(cfg.MySQL.DSN)
	if err != nil {
		return nil, err
	}
	logger.Info("✓ MySQL connected")

	if cfg.Migrate {
		if err := db.Migrate(conn, logger.WithField("component", "migrate")); err != nil {
			_ = db.Close(conn)
			return nil, err
		}
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = cache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.WithError(err).Warn("Redis unavailable, status values will not be cached")
			rdb = nil
		} else {
			logger.Info("✓ Redis connected")
		}
	}

	a, err := Wire(cfg, logger, conn, rdb)
	if err != nil {
		_ = db.Close(conn)
		if rdb != nil {
			_ = rdb.Close()
		}
		return nil, err
	}
	return a, nil
}

// Wire builds the components on already-open connections. rdb may be nil.
func Wire(cfg *config.Config, logger *logrus.Logger, conn *gorm.DB, rdb *redis.Client) (*App, error) {
	comp, err := composer.New(composer.Options{
		CertDir:           cfg.Nginx.CertDir,
		WorkerProcesses:   cfg.Nginx.WorkerProcesses,
		WorkerConnections: cfg.Nginx.WorkerConnections,
		MimeTypesPath:     cfg.Nginx.MimeTypesPath,
		PidPath:           cfg.Nginx.PidPath,
		ErrorLogPath:      cfg.Nginx.ErrorLogPath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	st := store.New(conn)
	collector := metrics.NewCollector(nil)
	tester := nginx.NewCommandTester(cfg.Nginx.Bin)
	lane := nginx.NewLane()

	a := &App{
		Config:   cfg,
		Logger:   logger,
		DB:       conn,
		Store:    st,
		Redis:    rdb,
		Metrics:  collector,
		Composer: comp,
		Lane:     lane,
		Monitor: health.NewMonitor(tester, st, collector, health.Config{
			ProbeTimeout:  cfg.HealthWorker.ProbeTimeout(),
			ClientTimeout: cfg.HealthWorker.ClientTimeout(),
			Concurrency:   cfg.HealthWorker.Concurrency,
		}),
	}
	if rdb != nil {
		a.Status = cache.NewStatusStore(rdb, cfg.Redis.Prefix, cfg.Redis.TTL())
	}

	a.ConfigService = service.NewConfigService(service.ConfigServiceConfig{
		Loader:    st,
		Composer:  comp,
		Validator: nginx.NewValidator(tester, cfg.Nginx.StagingDir),
		Activator: nginx.NewActivator(cfg.Nginx.ConfPath),
		Reloader:  nginx.NewReloader(cfg.Nginx.ReloadCmd),
		Files:     cert.Files{Dir: comp.Options().CertDir},
		Lane:      lane,
		Metrics:   collector,
		Logger:    logger,
	})
	a.Certificates = service.NewCertificateService(st, cfg.Nginx.CertDir, cfg.CertScanner.RenewBeforeDays, nil, logger)
	return a, nil
}

// statusStore returns the cache as an interface value that is nil when Redis is off
func (a *App) statusStore() health.ResultStore {
	if a.Status == nil {
		return nil
	}
	return a.Status
}

// APIDeps returns the dependencies of the HTTP routes
func (a *App) APIDeps() api.Deps {
	deps := api.Deps{
		Config:       a.ConfigService,
		Certificates: a.Certificates,
		Monitor:      a.Monitor,
		Upstreams:    a.Store,
		Metrics:      a.Metrics,
	}
	if a.Status != nil {
		deps.Status = a.Status
	}
	return deps
}

// HealthWorker builds the upstream health worker
func (a *App) HealthWorker() *health.Worker {
	return health.NewWorker(&health.WorkerConfig{
		Monitor:  a.Monitor,
		Lister:   a.Store,
		Results:  a.statusStore(),
		Logger:   a.Logger,
		Interval: a.Config.HealthWorker.Interval(),
	})
}

// Scanner builds the certificate scanner
func (a *App) Scanner() *cert.Scanner {
	var reports cert.ReportStore
	if a.Status != nil {
		reports = a.Status
	}
	return cert.NewScanner(a.Store, reports, a.Metrics, cert.ScannerConfig{
		Schedule:        a.Config.CertScanner.Schedule,
		CertDir:         a.Config.Nginx.CertDir,
		RenewBeforeDays: a.Config.CertScanner.RenewBeforeDays,
		Now:             time.Now,
	}, a.Logger)
}

// Close stops the lane and closes the connections
func (a *App) Close() error {
	a.Lane.Close()
	var errs []error
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	errs = append(errs, db.Close(a.DB))
	return errors.Join(errs...)
}
