package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"go.opentelemetry.io/contrib/instrumentation/runtime"

	"github.com/joao-fontenele/maejang/internal/accounts"
	"github.com/joao-fontenele/maejang/internal/addresses"
	"github.com/joao-fontenele/maejang/internal/auth"
	"github.com/joao-fontenele/maejang/internal/carts"
	"github.com/joao-fontenele/maejang/internal/config"
	"github.com/joao-fontenele/maejang/internal/menus"
	"github.com/joao-fontenele/maejang/internal/orders"
	"github.com/joao-fontenele/maejang/internal/server"
	"github.com/joao-fontenele/maejang/internal/stores"
	"github.com/joao-fontenele/maejang/internal/telemetry"
)

const serviceName = "maejang"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))

	codec, err := auth.NewTokenCodec(cfg.JWTSecret)
	if err != nil {
		logger.Error("failed to initialize token codec", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, telemetry.TracingConfig{
		ServiceName:    serviceName,
		ServiceVersion: cfg.ServiceVersion,
		Endpoint:       cfg.OTLPEndpoint,
		Enabled:        cfg.TracingEnabled,
	})
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider(serviceName, cfg.ServiceVersion)
	if err != nil {
		logger.Error("failed to initialize meter", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(ctx) }()

	if err := runtime.Start(runtime.WithMinimumReadMemStatsInterval(time.Second)); err != nil {
		logger.Error("failed to start runtime metrics", "error", err)
		os.Exit(1)
	}

	db, err := telemetry.OpenPostgres(cfg.PostgresURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := db.PingContext(ctx); err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	policy, err := auth.DefaultAccessPolicy()
	if err != nil {
		logger.Error("failed to load access policy", "error", err)
		os.Exit(1)
	}
	pipeline, err := auth.NewPipeline(auth.NewPrincipalResolver(codec), policy, logger)
	if err != nil {
		logger.Error("failed to initialize request pipeline", "error", err)
		os.Exit(1)
	}

	storeService := stores.NewService(stores.NewPostgresRepository(db), logger)
	catalog := menus.NewCatalog(menus.NewPostgresRepository(db), storeService, logger)

	lifecycle, err := orders.NewLifecycle(orders.NewPostgresRepository(db), catalog, storeService, logger)
	if err != nil {
		logger.Error("failed to initialize orders", "error", err)
		os.Exit(1)
	}

	accountService := accounts.NewService(
		accounts.NewPostgresRepository(db),
		auth.NewPasswordHasher(0),
		codec,
		cfg.TokenTTL,
		logger,
	)
	addressManager := addresses.NewManager(addresses.NewPostgresStore(db), logger)
	cartService := carts.NewService(carts.NewPostgresRepository(db), catalog, lifecycle, logger)

	handler := server.New(
		server.Config{
			ServiceName: serviceName,
			Pipeline:    pipeline,
			Metrics:     metricsHandler,
			Logger:      logger,
		},
		accounts.NewHandler(accountService, cfg.CookieSecure, logger),
		stores.NewHandler(storeService, logger),
		menus.NewHandler(catalog, logger),
		orders.NewHandler(lifecycle, logger),
		addresses.NewHandler(addressManager, logger),
		carts.NewHandler(cartService, logger),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting server", "port", cfg.Port, "version", cfg.ServiceVersion)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
