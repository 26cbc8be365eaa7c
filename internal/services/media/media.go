package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"ratemovie/proj/internal/domain/models"
	"ratemovie/proj/internal/storage"
	"strconv"
	"strings"
	"time"
)

const (
	photoPrefix = "photo_"
	photoExt    = ".jpg"
)

type UsersStorage interface {
	Get(ctx context.Context, id int64) (*models.User, error)
	UpdatePhotoPath(ctx context.Context, id int64, photoPath string) error
}

type MediaService struct {
	log       *slog.Logger
	storage   UsersStorage
	photosDir string
	// PruneOrphans leaves files younger than this alone so it never races a
	// save that has copied but not yet recorded.
	pruneGrace time.Duration
}

func New(log *slog.Logger, storage UsersStorage, photosDir string, pruneGrace time.Duration) *MediaService {
	if abs, err := filepath.Abs(photosDir); err == nil {
		photosDir = abs
	}
	return &MediaService{
		log:        log,
		storage:    storage,
		photosDir:  filepath.Clean(photosDir),
		pruneGrace: pruneGrace,
	}
}

// PhotoPath is where the photo of userID is stored. Saving twice for the
// same user overwrites the file.
func (s *MediaService) PhotoPath(userID int64) string {
	return filepath.Join(s.photosDir, photoPrefix+strconv.FormatInt(userID, 10)+photoExt)
}

// SaveProfilePhoto copies source into the photo directory and then points the
// user row at the copy. The two steps are not atomic: on ErrPhotoNotSaved the
// profile is untouched, on ErrPhotoNotRecorded the file exists but is not yet
// referenced (see PhotoNotRecordedError).
func (s *MediaService) SaveProfilePhoto(ctx context.Context, userID int64, source string) (string, error) {
	const op = "media.MediaService.SaveProfilePhoto"
	log := s.log.With("op", op, "user_id", userID, "source", source)
	storedPath := s.PhotoPath(userID)
	if err := s.copyPhoto(ctx, source, storedPath); err != nil {
		log.Error("Error copying photo", "errMsg", err.Error())
		return "", fmt.Errorf("%w: %w", ErrPhotoNotSaved, err)
	}
	log.Debug("photo copied", "stored_path", storedPath)
	if err := s.RecordProfilePhoto(ctx, userID, storedPath); err != nil {
		return "", err
	}
	return storedPath, nil
}

// RecordProfilePhoto updates users.photo_path to an already stored photo.
func (s *MediaService) RecordProfilePhoto(ctx context.Context, userID int64, storedPath string) error {
	const op = "media.MediaService.RecordProfilePhoto"
	log := s.log.With("op", op, "user_id", userID, "stored_path", storedPath)
	if storedPath != s.PhotoPath(userID) {
		return &PhotoNotRecordedError{StoredPath: storedPath, Err: errors.New("path is not this user's photo")}
	}
	if _, err := os.Stat(storedPath); err != nil {
		log.Warn("stored photo missing", "errMsg", err.Error())
		return fmt.Errorf("%w: %w", ErrPhotoNotSaved, err)
	}
	if err := s.storage.UpdatePhotoPath(ctx, userID, storedPath); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Warn("user not found")
			err = ErrUserNotFound
		} else {
			log.Error("Error updating photo path", "errMsg", err.Error())
		}
		return &PhotoNotRecordedError{StoredPath: storedPath, Err: err}
	}
	log.Info("profile photo saved")
	return nil
}

func sourcePath(source string) (string, error) {
	if !strings.HasPrefix(source, "file://") {
		return source, nil
	}
	u, err := url.Parse(source)
	if err != nil {
		return "", err
	}
	return u.Path, nil
}

// copyPhoto writes through a temp file in the same directory so a failed copy
// never leaves a truncated photo under the final name.
func (s *MediaService) copyPhoto(ctx context.Context, source, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	src, err := sourcePath(source)
	if err != nil {
		return fmt.Errorf("parse source uri: %w", err)
	}
	if err := os.MkdirAll(s.photosDir, 0o755); err != nil {
		return fmt.Errorf("create photos dir: %w", err)
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	tmp, err := os.CreateTemp(s.photosDir, filepath.Base(dst)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dst)
}

func parsePhotoUserID(name string) (int64, bool) {
	if !strings.HasPrefix(name, photoPrefix) || !strings.HasSuffix(name, photoExt) {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimSuffix(strings.TrimPrefix(name, photoPrefix), photoExt), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// PruneOrphans deletes photos no user row refers to, the residue of saves that
// failed after the copy, plus stale temp files. It returns how many files it
// removed.
func (s *MediaService) PruneOrphans(ctx context.Context) (int, error) {
	const op = "media.MediaService.PruneOrphans"
	log := s.log.With("op", op, "dir", s.photosDir)
	entries, err := os.ReadDir(s.photosDir)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	removed := 0
	cutoff := time.Now().Add(-s.pruneGrace)
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		name := entry.Name()
		path := filepath.Join(s.photosDir, name)
		orphan := strings.HasSuffix(name, ".tmp")
		if userID, ok := parsePhotoUserID(name); ok {
			user, err := s.storage.Get(ctx, userID)
			switch {
			case errors.Is(err, storage.ErrNotFound):
				orphan = true
			case err != nil:
				log.Error("Error getting user", "user_id", userID, "errMsg", err.Error())
				continue
			default:
				orphan = user.PhotoPath == nil || *user.PhotoPath != path
			}
		}
		if !orphan {
			continue
		}
		if err := os.Remove(path); err != nil {
			log.Error("Error removing orphan photo", "path", path, "errMsg", err.Error())
			continue
		}
		log.Info("orphan photo removed", "path", path)
		removed++
	}
	return removed, nil
}
