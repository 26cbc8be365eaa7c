package services

import (
	"fmt"
	"log/slog"
	"ratemovie/proj/internal/config"
	"ratemovie/proj/internal/services/auth"
	"ratemovie/proj/internal/services/media"
	"ratemovie/proj/internal/services/session"
	"ratemovie/proj/internal/services/watched"
	"ratemovie/proj/internal/storage"
	"ratemovie/proj/internal/storage/kv"
)

type Services struct {
	Auth    *auth.AuthService
	Watched *watched.WatchedService
	Media   *media.MediaService
}

// New wires every service to an initialized store handle. The session lives
// next to the database under the data directory.
func New(log *slog.Logger, cfg *config.Config, handle storage.Handle) (*Services, error) {
	kvStore, err := kv.NewFileStore(cfg.DataPath(cfg.Session.Path))
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	sessions := session.New(log, kvStore)
	return &Services{
		Auth:    auth.New(log, handle.Users(), sessions, cfg.Auth.BcryptCost),
		Watched: watched.New(log, handle.Watched()),
		Media:   media.New(log, handle.Users(), cfg.DataPath(cfg.Media.PhotosDir), cfg.Media.PruneGrace),
	}, nil
}
