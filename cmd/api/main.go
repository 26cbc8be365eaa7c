package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"ratemovie/proj/internal/api/tasks"
	"ratemovie/proj/internal/clients/tmdb"
	"ratemovie/proj/internal/config"
	"ratemovie/proj/internal/lib/logger"
	"ratemovie/proj/internal/services"
	"ratemovie/proj/internal/storage"
	"ratemovie/proj/internal/storage/postgres"
	"ratemovie/proj/internal/storage/sqlite"
)

const version = "1.0.0"

func main() {
	cfgPath := flag.String("config", "config/local.yml", "path to config file")

	flag.Parse()
	cfg := config.MustLoad(*cfgPath)
	log := logger.SetupLogger(cfg.Debug)

	manager := storage.NewManager(log, opener(cfg))
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Storage.InitTimeout)
	handle, err := manager.Initialize(ctx)
	cancel()
	if err != nil {
		log.Error("failed to initialize storage", "driver", cfg.Storage.Driver, "errMsg", err.Error())
		os.Exit(1)
	}
	defer manager.Close()

	svc, err := services.New(log, cfg, handle)
	if err != nil {
		log.Error("failed to set up services", "errMsg", err.Error())
		os.Exit(1)
	}
	catalog := tmdb.New(
		log,
		cfg.Clients.TMDB.Addr,
		cfg.Clients.TMDB.ImageBaseURL,
		cfg.Clients.TMDB.ApiKey,
		cfg.Clients.TMDB.Language,
		cfg.Clients.TMDB.Timeout,
		cfg.Clients.TMDB.RetriesCount,
		cfg.Clients.TMDB.RetryTimeout,
	)
	bgTasks := tasks.New(log, cfg.BgTasks.MaxWorkers, cfg.BgTasks.QueueSize)
	bgTasks.Run()
	bgTasks.Add(pruneOrphanPhotosTask(log, svc))

	app := NewApplication(cfg, log, svc, catalog, manager, bgTasks)
	if err := app.serve(); err != nil {
		log.Error("shutting down the server", "reason", err.Error())
		manager.Close()
		os.Exit(1)
	}
}

func opener(cfg *config.Config) storage.Opener {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		return func(ctx context.Context) (storage.Handle, error) {
			db, err := postgres.New(ctx, cfg.Storage.Dsn, cfg.Storage.MaxConns, cfg.Storage.MaxConnIdleTime)
			if err != nil {
				return nil, err
			}
			return db, nil
		}
	default:
		return func(ctx context.Context) (storage.Handle, error) {
			db, err := sqlite.New(ctx, cfg.DataPath(cfg.Storage.Path), cfg.Storage.BusyTimeout)
			if err != nil {
				return nil, err
			}
			return db, nil
		}
	}
}

func pruneOrphanPhotosTask(log *slog.Logger, svc *services.Services) tasks.Task {
	return tasks.Task{
		Name: "prune orphan photos",
		Run: func(ctx context.Context) error {
			removed, err := svc.Media.PruneOrphans(ctx)
			if err != nil {
				return fmt.Errorf("prune orphan photos: %w", err)
			}
			log.Info("orphan photos pruned", "removed", removed)
			return nil
		},
	}
}
