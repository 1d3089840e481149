package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/api"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/app/storage"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/config"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/httpclient"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/period"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/report"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/service"
	database "github.com/NikolayVerchenko/wb-analytics-sub001/internal/service/db"
	pkgsync "github.com/NikolayVerchenko/wb-analytics-sub001/internal/sync"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/sync/coordinator"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/telemetry"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/versions"
)

const (
	defaultHTTPAddress = ":8080"
	// Refresh runs a full foreground pass, so its timeout is generous.
	defaultRequestTimeout = 10 * time.Minute
	defaultReadTimeout    = 10 * time.Second
	defaultWriteTimeout   = 11 * time.Minute
	defaultIdleTimeout    = 60 * time.Second
)

// SyncAppOptions is a function that configures the sync app builder
type SyncAppOptions func(*syncAppConfig) error

// syncAppConfig collects the builder inputs.
// Injected components (primarily for testing) replace the ones built from config.
type syncAppConfig struct {
	config *config.Config

	// Optional component overrides
	storageFactory storage.Factory
	fetcher        report.Fetcher
	telemetry      *telemetry.Telemetry
	observers      []pkgsync.Observer
	logger         *slog.Logger

	// HTTP server options
	address        string
	middlewares    []func(http.Handler) http.Handler
	requestTimeout time.Duration
	readTimeout    time.Duration
	writeTimeout   time.Duration
	idleTimeout    time.Duration
}

func baseConfig(opts ...SyncAppOptions) (*syncAppConfig, error) {
	cfg := &syncAppConfig{
		address:        defaultHTTPAddress,
		requestTimeout: defaultRequestTimeout,
		readTimeout:    defaultReadTimeout,
		writeTimeout:   defaultWriteTimeout,
		idleTimeout:    defaultIdleTimeout,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	return cfg, nil
}

// NewEngine builds the sync engine: store, upstream client, registry, scheduler, executor,
// maintenance sweeps and run loops. The caller must Close it.
func NewEngine(ctx context.Context, opts ...SyncAppOptions) (*Engine, error) {
	cfg, err := baseConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build base configuration: %w", err)
	}
	return buildEngine(ctx, cfg)
}

// NewSyncApp creates the long-running service: engine, coordinator, sync service and HTTP server.
func NewSyncApp(ctx context.Context, opts ...SyncAppOptions) (*SyncApp, error) {
	cfg, err := baseConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build base configuration: %w", err)
	}

	engine, err := buildEngine(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build sync engine: %w", err)
	}

	// Ensure cleanup happens on error
	cleanupNeeded := true
	defer func() {
		if cleanupNeeded {
			_ = engine.Close(context.WithoutCancel(ctx))
		}
	}()

	syncCoordinator := coordinator.New(engine.Runner, engine.Maintenance)

	syncService, err := engine.Storage().CreateSyncService(ctx, engine.Registry, syncCoordinator)
	if err != nil {
		return nil, fmt.Errorf("failed to create sync service: %w", err)
	}

	httpServer, err := buildHTTPServer(ctx, cfg, engine.Telemetry(), syncService)
	if err != nil {
		return nil, fmt.Errorf("failed to build HTTP server: %w", err)
	}

	cleanupNeeded = false
	return &SyncApp{
		config: cfg.config,
		components: &AppComponents{
			Engine:      engine,
			Coordinator: syncCoordinator,
			SyncService: syncService,
		},
		httpServer: httpServer,
	}, nil
}

// WithConfig sets the configuration
func WithConfig(c *config.Config) SyncAppOptions {
	return func(cfg *syncAppConfig) error {
		cfg.config = c
		return nil
	}
}

// WithAddress sets the HTTP server address
func WithAddress(addr string) SyncAppOptions {
	return func(cfg *syncAppConfig) error {
		if addr == "" {
			return fmt.Errorf("address cannot be empty")
		}

		host, port, found := strings.Cut(addr, ":")
		if !found || port == "" {
			return fmt.Errorf("address is not a valid port: %s", addr)
		}
		if host == "localhost" {
			host = "127.0.0.1"
		}
		if host == "" {
			host = "0.0.0.0"
		}

		if _, err := netip.ParseAddrPort(host + ":" + port); err != nil {
			return fmt.Errorf("address is not a valid port: %w", err)
		}

		cfg.address = addr
		return nil
	}
}

// WithMiddlewares sets custom HTTP middlewares
func WithMiddlewares(mw ...func(http.Handler) http.Handler) SyncAppOptions {
	return func(cfg *syncAppConfig) error {
		cfg.middlewares = mw
		return nil
	}
}

// WithStorageFactory allows injecting a custom storage factory (for testing)
func WithStorageFactory(f storage.Factory) SyncAppOptions {
	return func(cfg *syncAppConfig) error {
		cfg.storageFactory = f
		return nil
	}
}

// WithFetcher replaces the upstream report client (for testing)
func WithFetcher(f report.Fetcher) SyncAppOptions {
	return func(cfg *syncAppConfig) error {
		cfg.fetcher = f
		return nil
	}
}

// WithTelemetry injects already initialized telemetry providers
func WithTelemetry(t *telemetry.Telemetry) SyncAppOptions {
	return func(cfg *syncAppConfig) error {
		cfg.telemetry = t
		return nil
	}
}

// WithObserver adds an observer receiving engine events next to the log and metrics observers
func WithObserver(o pkgsync.Observer) SyncAppOptions {
	return func(cfg *syncAppConfig) error {
		if o == nil {
			return fmt.Errorf("observer cannot be nil")
		}
		cfg.observers = append(cfg.observers, o)
		return nil
	}
}

// WithLogger sets the logger engine events are written to. Defaults to slog.Default().
func WithLogger(l *slog.Logger) SyncAppOptions {
	return func(cfg *syncAppConfig) error {
		cfg.logger = l
		return nil
	}
}

// buildEngine wires the engine. On error everything opened so far is released.
func buildEngine(ctx context.Context, b *syncAppConfig) (_ *Engine, err error) {
	slog.Info("Initializing sync engine")

	calendar, err := period.NewCalendar(b.config.Upstream.GetTimezoneOffset())
	if err != nil {
		return nil, fmt.Errorf("invalid timezone offset: %w", err)
	}

	engine := &Engine{}
	defer func() {
		if err != nil {
			_ = engine.Close(context.WithoutCancel(ctx))
		}
	}()

	if engine.telemetry = b.telemetry; engine.telemetry == nil {
		engine.telemetry, err = telemetry.New(ctx, b.config.Telemetry)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
		}
	}

	if engine.storage = b.storageFactory; engine.storage == nil {
		engine.storage, err = storage.NewStorageFactory(ctx, b.config,
			storage.WithTracer(engine.telemetry.Tracer(database.ServiceTracerName)))
		if err != nil {
			return nil, fmt.Errorf("failed to create storage factory: %w", err)
		}
	}

	fetcher := b.fetcher
	if fetcher == nil {
		fetcher, err = buildReportClient(b.config.Upstream)
		if err != nil {
			return nil, fmt.Errorf("failed to create report client: %w", err)
		}
	}

	observer, err := buildObserver(b, engine.telemetry)
	if err != nil {
		return nil, err
	}

	engine.Registry, err = engine.storage.CreateRegistry(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create period registry: %w", err)
	}
	syncWriter, err := engine.storage.CreateSyncWriter(ctx, engine.Registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create sync writer: %w", err)
	}

	syncCfg := b.config.Sync
	engine.Scheduler = pkgsync.NewScheduler(
		engine.Registry, calendar, syncCfg.GetMinDate(), syncCfg.GetPendingLease())
	engine.Manager = pkgsync.NewDefaultSyncManager(fetcher, syncWriter, engine.Registry,
		pkgsync.WithPageSize(b.config.Upstream.GetPageSize()),
		pkgsync.WithRule(syncCfg.GetRule()),
		pkgsync.WithObserver(observer),
		pkgsync.WithTracer(engine.telemetry.Tracer(pkgsync.TracerName)),
	)
	engine.Maintenance = pkgsync.NewMaintenance(
		engine.Registry, syncWriter, engine.storage.Connection().Queries, calendar,
		syncCfg.GetSuspiciousQuantity(), observer)
	engine.Runner = coordinator.NewRunner(
		engine.Scheduler, engine.Manager, engine.Registry, coordinator.NewConfig(syncCfg))

	slog.Info("Sync engine initialized",
		"min_date", period.DayID(syncCfg.GetMinDate()),
		"timezone_offset", b.config.Upstream.GetTimezoneOffset(),
		"page_size", b.config.Upstream.GetPageSize(),
	)
	return engine, nil
}

func buildReportClient(u *config.UpstreamConfig) (*report.Client, error) {
	if u == nil {
		return nil, fmt.Errorf("upstream configuration is required")
	}
	token, err := u.GetToken()
	if err != nil {
		return nil, err
	}
	return report.NewClient(u.GetEndpoint(), token,
		report.WithHTTPClient(httpclient.NewDefaultClient(u.GetRequestTimeout())),
		report.WithRequestInterval(u.GetRequestInterval()),
		report.WithUserAgent(versions.UserAgent()),
	)
}

// buildObserver fans engine events out to the log, to sync metrics and to injected observers.
func buildObserver(b *syncAppConfig, tel *telemetry.Telemetry) (pkgsync.Observer, error) {
	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	syncMetrics, err := telemetry.NewSyncMetrics(tel.MeterProvider())
	if err != nil {
		return nil, fmt.Errorf("failed to create sync metrics: %w", err)
	}

	observers := pkgsync.MultiObserver{pkgsync.NewLogObserver(logger), pkgsync.NewMetricsObserver(syncMetrics)}
	return append(observers, b.observers...), nil
}

// buildHTTPServer builds the HTTP server with router and middleware
//
//nolint:unparam // we prefer having a similar interface
func buildHTTPServer(
	_ context.Context,
	b *syncAppConfig,
	tel *telemetry.Telemetry,
	svc service.SyncService,
) (*http.Server, error) {
	slog.Info("Initializing HTTP server")

	// Use default middlewares if not provided
	if b.middlewares == nil {
		b.middlewares = []func(http.Handler) http.Handler{
			middleware.RequestID,
			middleware.RealIP,
			middleware.Recoverer,
			middleware.Timeout(b.requestTimeout),
			api.LoggingMiddleware,
		}
	}

	serverOpts := []api.ServerOption{}
	if tel != nil {
		httpMetrics, err := telemetry.NewHTTPMetrics(tel.MeterProvider())
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP metrics: %w", err)
		}
		// Metrics and tracing come first so they see requests the later middlewares reject.
		b.middlewares = append([]func(http.Handler) http.Handler{
			httpMetrics.Middleware,
			telemetry.TracingMiddleware(tel.TracerProvider()),
		}, b.middlewares...)

		if h := tel.MetricsHandler(); h != nil {
			serverOpts = append(serverOpts, api.WithMetricsHandler(h))
			slog.Info("Prometheus metrics endpoint enabled", "path", "/metrics")
		}
	}
	serverOpts = append(serverOpts, api.WithMiddlewares(b.middlewares...))

	router := api.NewServer(svc, serverOpts...)

	server := &http.Server{
		Addr:         b.address,
		Handler:      router,
		ReadTimeout:  b.readTimeout,
		WriteTimeout: b.writeTimeout,
		IdleTimeout:  b.idleTimeout,
	}

	slog.Info("HTTP server configured", "address", b.address)
	return server, nil
}
