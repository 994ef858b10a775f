package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/davidwyly/chart-citizen-sub001/catalog"
	"github.com/davidwyly/chart-citizen-sub001/core"
	"github.com/davidwyly/chart-citizen-sub001/internal/logging"
	"github.com/davidwyly/chart-citizen-sub001/internal/observability"
	"github.com/davidwyly/chart-citizen-sub001/internal/server"
	"github.com/davidwyly/chart-citizen-sub001/timectrl"
	"github.com/davidwyly/chart-citizen-sub001/viewer"
	"github.com/davidwyly/chart-citizen-sub001/viewmode"
)

func main() {
	httpAddr := flag.String("http-addr", ":8080", "TCP address the viewer HTTP server listens on")
	catalogDB := flag.String("catalog-db", "viewer-catalog.db", "Path to the bbolt catalog database")
	systemsDir := flag.String("systems-dir", "configs/systems", "Directory of system JSON files to ingest at startup")
	configPath := flag.String("config", "", "Optional view mode override config (YAML)")
	initialSystem := flag.String("system", "", "System to load at startup")
	tick := flag.Duration("tick", time.Second, "simulation tick interval")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx := context.Background()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(ctx, shutdownTracing, log)

	collector, err := observability.NewViewerCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise metrics collector", logging.String("error", err.Error()))
		os.Exit(1)
	}

	installModeOverrides(ctx, log, *configPath)

	store, err := catalog.OpenBoltStore(*catalogDB)
	if err != nil {
		log.Error(ctx, "failed to open catalog store", logging.String("path", *catalogDB), logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	ingestSystems(ctx, log, store, *systemsDir)

	clock := timectrl.NewTimeController(time.Now().UTC(), *tick, timectrl.RealTime)
	pipeline := core.NewMechanicsPipeline(log, collector)
	v := viewer.NewViewer(log, store, pipeline, clock)

	if *initialSystem != "" {
		if err := v.LoadSystem(ctx, *initialSystem); err != nil {
			log.Error(ctx, "failed to load initial system",
				logging.String("system_id", *initialSystem),
				logging.String("error", err.Error()))
			os.Exit(1)
		}
		collector.SetLoadedObjects(len(v.Objects()))
	}

	clock.AddListener(v.UpdatePositions)
	clock.Start(0)

	srv := server.New(log, v, collector)
	httpSrv := &http.Server{
		Addr:    *httpAddr,
		Handler: srv.Router(),
	}

	log.Info(ctx, "starting viewer server",
		logging.String("addr", *httpAddr),
		logging.String("session_id", v.SessionID))
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "HTTP server exited", logging.String("error", err.Error()))
		}
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	<-stopCtx.Done()

	log.Info(ctx, "shutting down viewer server")
	srv.Hub().Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(shutdownCtx)
}

// installModeOverrides applies operator overrides to every built-in mode.
func installModeOverrides(ctx context.Context, log logging.Logger, configPath string) {
	for _, mode := range viewmode.Modes() {
		cfg, err := viewmode.LoadOverrides(configPath, mode)
		if err != nil {
			log.Warn(ctx, "ignoring bad view mode overrides",
				logging.String("mode", mode),
				logging.String("error", err.Error()))
			continue
		}
		if err := viewmode.Install(cfg); err != nil {
			log.Warn(ctx, "failed to install view mode config",
				logging.String("mode", mode),
				logging.String("error", err.Error()))
		}
	}
}

// ingestSystems loads every JSON file in dir into the catalog store. A missing
// directory is fine; the store may already hold systems from a previous run.
func ingestSystems(ctx context.Context, log logging.Logger, store *catalog.BoltStore, dir string) {
	if dir == "" {
		return
	}
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		log.Warn(ctx, "bad systems directory", logging.String("dir", dir), logging.String("error", err.Error()))
		return
	}
	loaded := 0
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			log.Warn(ctx, "skipping unreadable system file", logging.String("path", path), logging.String("error", err.Error()))
			continue
		}
		sys, err := catalog.LoadSystem(f)
		f.Close()
		if err != nil {
			log.Warn(ctx, "skipping malformed system file", logging.String("path", path), logging.String("error", err.Error()))
			continue
		}
		if err := store.PutSystem(sys); err != nil {
			log.Warn(ctx, "failed to store system", logging.String("system_id", sys.ID), logging.String("error", err.Error()))
			continue
		}
		loaded++
	}
	log.Info(ctx, "ingested system catalog", logging.String("dir", dir), logging.Int("systems", loaded))
}
