package media

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"ratemovie/proj/internal/storage"
	"ratemovie/proj/internal/storage/sqlite"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	media  *MediaService
	users  storage.UserModel
	userID int64
	dir    string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()
	db, err := sqlite.New(ctx, filepath.Join(dir, "movies.db"), time.Second)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(ctx))
	t.Cleanup(func() { _ = db.Close() })
	user, err := db.Users().Insert(ctx, "a@x.com", "A", []byte("hash"))
	require.NoError(t, err)
	return &testEnv{
		media:  New(slog.Default(), db.Users(), filepath.Join(dir, "profile_photos"), 0),
		users:  db.Users(),
		userID: user.ID,
		dir:    dir,
	}
}

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSaveProfilePhoto(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	source := writeSource(t, env.dir, "picked.jpg", "first")

	stored, err := env.media.SaveProfilePhoto(ctx, env.userID, source)
	require.NoError(t, err)
	assert.Equal(t, env.media.PhotoPath(env.userID), stored)
	assert.Equal(t, "photo_1.jpg", filepath.Base(stored))
	content, err := os.ReadFile(stored)
	require.NoError(t, err)
	assert.Equal(t, "first", string(content))

	user, err := env.users.Get(ctx, env.userID)
	require.NoError(t, err)
	require.NotNil(t, user.PhotoPath)
	assert.Equal(t, stored, *user.PhotoPath)

	t.Run("second save overwrites", func(t *testing.T) {
		source := writeSource(t, env.dir, "other.jpg", "second")
		again, err := env.media.SaveProfilePhoto(ctx, env.userID, "file://"+source)
		require.NoError(t, err)
		assert.Equal(t, stored, again)
		content, err := os.ReadFile(stored)
		require.NoError(t, err)
		assert.Equal(t, "second", string(content))
		entries, err := os.ReadDir(filepath.Dir(stored))
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})
}

func TestSaveProfilePhotoMissingSource(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	_, err := env.media.SaveProfilePhoto(ctx, env.userID, filepath.Join(env.dir, "nope.jpg"))
	assert.ErrorIs(t, err, ErrPhotoNotSaved)
	assert.NotErrorIs(t, err, ErrPhotoNotRecorded)

	user, err := env.users.Get(ctx, env.userID)
	require.NoError(t, err)
	assert.Nil(t, user.PhotoPath)
	_, err = os.Stat(env.media.PhotoPath(env.userID))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

type failingUpdates struct {
	UsersStorage
	err error
}

func (f failingUpdates) UpdatePhotoPath(ctx context.Context, id int64, photoPath string) error {
	return f.err
}

func TestSaveProfilePhotoRowFailureThenRetry(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	photosDir := filepath.Join(env.dir, "profile_photos")
	cause := errors.New("database is locked")
	broken := New(slog.Default(), failingUpdates{UsersStorage: env.users, err: cause}, photosDir, 0)
	source := writeSource(t, env.dir, "picked.jpg", "bytes")

	_, err := broken.SaveProfilePhoto(ctx, env.userID, source)
	require.ErrorIs(t, err, ErrPhotoNotRecorded)
	assert.ErrorIs(t, err, cause)
	var notRecorded *PhotoNotRecordedError
	require.ErrorAs(t, err, &notRecorded)
	_, statErr := os.Stat(notRecorded.StoredPath)
	require.NoError(t, statErr)

	require.NoError(t, env.media.RecordProfilePhoto(ctx, env.userID, notRecorded.StoredPath))
	user, err := env.users.Get(ctx, env.userID)
	require.NoError(t, err)
	require.NotNil(t, user.PhotoPath)
	assert.Equal(t, notRecorded.StoredPath, *user.PhotoPath)
}

func TestSaveProfilePhotoUnknownUser(t *testing.T) {
	env := newTestEnv(t)
	source := writeSource(t, env.dir, "picked.jpg", "bytes")
	_, err := env.media.SaveProfilePhoto(context.Background(), env.userID+10, source)
	assert.ErrorIs(t, err, ErrPhotoNotRecorded)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestRecordProfilePhotoRejectsForeignPath(t *testing.T) {
	env := newTestEnv(t)
	err := env.media.RecordProfilePhoto(context.Background(), env.userID, env.media.PhotoPath(env.userID+1))
	assert.ErrorIs(t, err, ErrPhotoNotRecorded)
	err = env.media.RecordProfilePhoto(context.Background(), env.userID, env.media.PhotoPath(env.userID))
	assert.ErrorIs(t, err, ErrPhotoNotSaved)
}

func TestPruneOrphans(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	source := writeSource(t, env.dir, "picked.jpg", "bytes")
	kept, err := env.media.SaveProfilePhoto(ctx, env.userID, source)
	require.NoError(t, err)

	photosDir := filepath.Dir(kept)
	orphan := env.media.PhotoPath(env.userID + 5)
	stale := filepath.Join(photosDir, "photo_1.jpg.123.tmp")
	unrelated := filepath.Join(photosDir, "notes.txt")
	for _, path := range []string{orphan, stale, unrelated} {
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	}

	removed, err := env.media.PruneOrphans(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	for _, path := range []string{kept, unrelated} {
		_, err := os.Stat(path)
		assert.NoError(t, err, path)
	}
	for _, path := range []string{orphan, stale} {
		_, err := os.Stat(path)
		assert.ErrorIs(t, err, os.ErrNotExist, path)
	}

	t.Run("grace period", func(t *testing.T) {
		require.NoError(t, os.WriteFile(orphan, []byte("x"), 0o644))
		patient := New(slog.Default(), env.users, photosDir, time.Hour)
		removed, err := patient.PruneOrphans(ctx)
		require.NoError(t, err)
		assert.Zero(t, removed)
	})
	t.Run("missing dir", func(t *testing.T) {
		empty := New(slog.Default(), env.users, filepath.Join(env.dir, "absent"), 0)
		removed, err := empty.PruneOrphans(ctx)
		require.NoError(t, err)
		assert.Zero(t, removed)
	})
}
