// Package server wires the visitorhub components together and runs the HTTP
// and gRPC servers until the process is asked to stop.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/visitorhub/internal/dbx"
	"github.com/dmitrijs2005/visitorhub/internal/logging"
	"github.com/dmitrijs2005/visitorhub/internal/server/auth"
	"github.com/dmitrijs2005/visitorhub/internal/server/avatars"
	"github.com/dmitrijs2005/visitorhub/internal/server/config"
	"github.com/dmitrijs2005/visitorhub/internal/server/httpapi"
	"github.com/dmitrijs2005/visitorhub/internal/server/password"
	"github.com/dmitrijs2005/visitorhub/internal/server/ratelimit"
	"github.com/dmitrijs2005/visitorhub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/visitorhub/internal/server/services"
	"github.com/dmitrijs2005/visitorhub/internal/server/validation"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	gs "github.com/dmitrijs2005/visitorhub/internal/server/grpc"
)

const (
	AppName = "visitorhub"
	Version = "1.0.0"

	shutdownTimeout = 10 * time.Second
	pingTimeout     = 5 * time.Second
)

// Seams for tests.
var (
	logOutput          io.Writer = os.Stdout
	openDB                       = dbx.Open
	newPostgresManager           = func() repomanager.RepositoryManager { return repomanager.NewPostgresRepositoryManager() }
	newRedisClient               = func(opts *redis.Options) redis.UniversalClient { return redis.NewClient(opts) }
	newPresigner                 = func(ctx context.Context, cfg avatars.Config) (services.AvatarPresigner, error) {
		return avatars.NewPresigner(ctx, cfg)
	}
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	accounts *services.AccountService
	registry *prometheus.Registry
	checks   map[string]httpapi.HealthCheck
	closers  []func() error
}

// NewApp validates c and builds every component. Optional backends (Redis
// throttling, S3 avatars) are wired only when configured.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	app := &App{
		config:   c,
		logger:   logging.NewJSON(logOutput, c.LogLevel),
		registry: prometheus.NewRegistry(),
		checks:   map[string]httpapi.HealthCheck{},
	}
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	runner, repos, err := app.initStore(ctx)
	if err != nil {
		app.close()
		return nil, err
	}

	hasher, err := password.NewHasher(c.BcryptCost)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("password hasher: %w", err)
	}

	opts := services.Options{
		QueryTimeout:    c.DBQueryTimeout,
		DefaultPageSize: c.DefaultPageSize,
		MaxPageSize:     c.MaxPageSize,
		Logger:          app.logger,
		Metrics:         services.NewMetrics(app.registry),
	}
	if c.RedisAddr != "" {
		opts.Limiter = app.initLimiter()
	}
	if c.S3Bucket != "" {
		presigner, err := newPresigner(ctx, avatars.Config{
			AccessKey:    c.S3AccessKey,
			SecretKey:    c.S3SecretKey,
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
			Extensions:   c.AvatarExtensions,
			Expiry:       c.AvatarUploadExpiry,
		})
		if err != nil {
			app.close()
			return nil, fmt.Errorf("avatar storage: %w", err)
		}
		opts.Avatars = presigner
	}

	tokens := auth.NewTokenService([]byte(c.SecretKey), c.AccessTokenValidityDuration)
	app.accounts = services.NewAccountService(runner, repos, hasher, tokens, validation.New(), opts)

	return app, nil
}

// initStore opens PostgreSQL and applies migrations, or selects the
// in-memory store when the DSN is "memory".
func (app *App) initStore(ctx context.Context) (dbx.Runner, repomanager.RepositoryManager, error) {
	c := app.config

	if c.DatabaseDSN == config.DSNMemory {
		app.logger.Warn(ctx, "using in-memory account store, data is lost on restart")
		return dbx.NoTxRunner{}, repomanager.NewMemoryRepositoryManager(), nil
	}

	db, err := openDB(ctx, c.DatabaseDSN, dbx.PoolConfig{
		MaxOpenConns:    c.DBMaxOpenConns,
		MaxIdleConns:    c.DBMaxIdleConns,
		ConnMaxLifetime: c.DBConnMaxLifetime,
	}, pingTimeout)
	if err != nil {
		return nil, nil, fmt.Errorf("db init error: %w", err)
	}
	app.closers = append(app.closers, db.Close)

	rm := newPostgresManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, nil, fmt.Errorf("db migrations error: %w", err)
	}
	app.checks["database"] = db.PingContext

	return dbx.NewRunner(db), rm, nil
}

func (app *App) initLimiter() *ratelimit.LoginLimiter {
	c := app.config
	client := newRedisClient(&redis.Options{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	})
	app.closers = append(app.closers, client.Close)

	limiter := ratelimit.NewLoginLimiter(client, c.LoginMaxAttempts, c.LoginCooldown)
	app.checks["redis"] = limiter.Ping
	return limiter
}

func (app *App) close() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](); err != nil {
			app.logger.Warn(context.Background(), "close failed", "error", err)
		}
	}
	app.closers = nil
}

func (app *App) httpHandler() http.Handler {
	return httpapi.NewRouter(app.accounts, httpapi.Options{
		Logger:      app.logger,
		Registry:    app.registry,
		CORSOrigins: app.config.CORSOrigins,
		Info:        httpapi.Info{App: AppName, Version: Version},
		Checks:      app.checks,
		PublicList:  app.config.PublicVisitorList,
	})
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case <-sigs:
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	var opts []gs.Option
	if app.config.PublicVisitorList {
		opts = append(opts, gs.WithPublicVisitorList())
	}
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.accounts, app.registry, opts...)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "gRPC server failed", "error", err)
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	srv := &http.Server{
		Addr:              app.config.EndpointAddrHTTP,
		Handler:           app.httpHandler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Warn(ctx, "HTTP shutdown", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", srv.Addr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, "HTTP server failed", "error", err)
		cancelFunc()
	}
}

// Run serves HTTP and gRPC until ctx is cancelled, a termination signal
// arrives or either server fails, then releases the backends.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "version", Version)

	app.initSignalHandler(ctx, cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.close()
	app.logger.Info(context.Background(), "App stopped")
}
