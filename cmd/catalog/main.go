// Command catalog serves the product and stock API the cart's stock gateway
// reads. Listings live in the database and can be loaded from a json-server
// style seed file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/angelmondragon/rocketshoes/api/routes"
	"github.com/angelmondragon/rocketshoes/internal/catalog"
	"github.com/angelmondragon/rocketshoes/pkg/config"
	"github.com/angelmondragon/rocketshoes/pkg/db"
	"github.com/angelmondragon/rocketshoes/pkg/logger"
	"github.com/angelmondragon/rocketshoes/pkg/migrate"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "catalog"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	seedFile := flag.String("seed", "", "json seed file to load before serving (overrides ROCKETSHOES_CATALOG_SEED_FILE)")
	flag.Parse()

	cfg, err := config.Load()
	requireResource(context.Background(), logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "catalog",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	requireResource(ctx, logg, "database config", cfg.DB.EnsureDSN())
	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	requireResource(ctx, logg, "migrations", migrate.MaybeRun(ctx, cfg, logg, dbClient))

	service, err := catalog.NewService(catalog.NewRepository(dbClient.DB()), dbClient)
	requireResource(ctx, logg, "catalog service", err)

	path := cfg.Catalog.SeedFile
	if *seedFile != "" {
		path = *seedFile
	}
	if path != "" {
		seed, err := catalog.LoadSeedFile(path)
		requireResource(ctx, logg, "seed file", err)
		requireResource(ctx, logg, "seed import", service.ApplySeed(ctx, seed))
		logg.Info(logg.WithFields(ctx, map[string]any{
			"path":     path,
			"products": len(seed.Products),
			"stock":    len(seed.Stock),
		}), "catalog seeded")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})

	router := routes.NewRouter(cfg, logg, dbClient, service, registry)
	server := &http.Server{
		Addr:              addr,
		Handler:           otelhttp.NewHandler(router, "catalog"),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info(logCtx, "starting catalog server")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(logCtx, "catalog server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(logCtx, "graceful shutdown failed", err)
		}
		logg.Info(logCtx, "catalog server stopped")
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
