// Command hikefly-server runs the HTTP boundary over the reachability core:
// it loads configuration, opens the elevation store, place index and
// result/tile cache, and serves spec §6's external interfaces over HTTP.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hikefly/internal/api"
	"hikefly/internal/service"
	"hikefly/pkg/config"
	"hikefly/pkg/elevation"
	"hikefly/pkg/logging"
	"hikefly/pkg/placeindex"
	"hikefly/pkg/tilecache"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	configPath := flag.String("config", "./hikefly.yaml", "path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	closeLogs, err := logging.Init(&cfg.Log)
	if err != nil {
		return err
	}
	defer closeLogs()

	elev, err := elevation.NewStore(cfg.Elevation.TileDir, cfg.Elevation.CacheTiles,
		elevation.WithMinCellSize(float64(cfg.Elevation.MinCellSize)))
	if err != nil {
		return err
	}

	var places *placeindex.Index
	if f, err := os.Open(cfg.PlaceIndex.IndexPath); err == nil {
		places, err = placeindex.Deserialize(f)
		f.Close()
		if err != nil {
			slog.Warn("failed to load place index, autocomplete disabled", "path", cfg.PlaceIndex.IndexPath, "error", err)
			places = nil
		}
	} else {
		slog.Warn("place index not found, autocomplete disabled", "path", cfg.PlaceIndex.IndexPath)
	}

	cache, err := tilecache.Open(cfg.Cache.Path, cfg.Cache.TileLRUSize, cfg.Cache.ResultLRUSize)
	if err != nil {
		return err
	}
	defer cache.Close()

	svc := service.New(cfg, elev, places, cache, slog.Default())
	router := api.NewRouter(svc, slog.Default())

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("hikefly-server listening", "address", cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server exited", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
