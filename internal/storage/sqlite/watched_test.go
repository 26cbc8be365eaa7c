package sqlite

import (
	"context"
	"ratemovie/proj/internal/domain/models"
	"ratemovie/proj/internal/storage"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchedModel(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	user, err := s.Users().Insert(ctx, "a@x.com", "A", []byte("hash"))
	require.NoError(t, err)
	watched := s.Watched()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	dune := models.MovieSnapshot{
		MovieID:     438631,
		Title:       "Dune",
		PosterPath:  "https://image.tmdb.org/t/p/w500/dune.jpg",
		Overview:    "Spice.",
		ReleaseDate: "2021-09-15",
		Rating:      7.8,
	}
	id, err := watched.Insert(ctx, user.ID, dune, 4, base)
	require.NoError(t, err)
	assert.NotZero(t, id)

	t.Run("round trip", func(t *testing.T) {
		got, err := watched.Get(ctx, user.ID, dune.MovieID)
		require.NoError(t, err)
		assert.Equal(t, id, got.ID)
		assert.Equal(t, user.ID, got.UserID)
		assert.Equal(t, dune, got.MovieSnapshot)
		assert.EqualValues(t, 4, got.UserRating)
		assert.True(t, base.Equal(got.WatchedDate))
	})
	t.Run("duplicate pair", func(t *testing.T) {
		_, err := watched.Insert(ctx, user.ID, dune, 1, base.Add(time.Hour))
		assert.ErrorIs(t, err, storage.ErrConflict)
		got, err := watched.Get(ctx, user.ID, dune.MovieID)
		require.NoError(t, err)
		assert.EqualValues(t, 4, got.UserRating)
	})
	t.Run("unknown user", func(t *testing.T) {
		_, err := watched.Insert(ctx, user.ID+100, dune, 3, base)
		assert.ErrorIs(t, err, storage.ErrReference)
	})
	t.Run("empty snapshot fields", func(t *testing.T) {
		bare := models.MovieSnapshot{MovieID: 1, Title: "Untitled"}
		_, err := watched.Insert(ctx, user.ID, bare, 2, base.Add(-time.Hour))
		require.NoError(t, err)
		got, err := watched.Get(ctx, user.ID, 1)
		require.NoError(t, err)
		assert.Equal(t, bare, got.MovieSnapshot)
	})
	t.Run("update rating", func(t *testing.T) {
		later := base.Add(2 * time.Hour)
		require.NoError(t, watched.UpdateRating(ctx, user.ID, dune.MovieID, 2, later))
		got, err := watched.Get(ctx, user.ID, dune.MovieID)
		require.NoError(t, err)
		assert.EqualValues(t, 2, got.UserRating)
		assert.True(t, later.Equal(got.WatchedDate))
	})
	t.Run("update missing row", func(t *testing.T) {
		assert.NoError(t, watched.UpdateRating(ctx, user.ID, 999, 5, base))
		_, err := watched.Get(ctx, user.ID, 999)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
	t.Run("list ordering", func(t *testing.T) {
		list, err := watched.ListForUser(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, dune.MovieID, list[0].MovieID)
		assert.EqualValues(t, 1, list[1].MovieID)
	})
	t.Run("list for other user", func(t *testing.T) {
		list, err := watched.ListForUser(ctx, user.ID+100)
		require.NoError(t, err)
		assert.Empty(t, list)
	})
	t.Run("delete", func(t *testing.T) {
		require.NoError(t, watched.Delete(ctx, user.ID, dune.MovieID))
		require.NoError(t, watched.Delete(ctx, user.ID, dune.MovieID))
		_, err := watched.Get(ctx, user.ID, dune.MovieID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestWatchedDateAdvancesOnRepeatedInstant(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	user, err := s.Users().Insert(ctx, "a@x.com", "A", []byte("hash"))
	require.NoError(t, err)
	other, err := s.Users().Insert(ctx, "b@x.com", "B", []byte("hash"))
	require.NoError(t, err)
	watched := s.Watched()
	instant := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	_, err = watched.Insert(ctx, user.ID, models.MovieSnapshot{MovieID: 1, Title: "Heat"}, 3, instant)
	require.NoError(t, err)
	_, err = watched.Insert(ctx, user.ID, models.MovieSnapshot{MovieID: 2, Title: "Ronin"}, 3, instant)
	require.NoError(t, err)
	_, err = watched.Insert(ctx, other.ID, models.MovieSnapshot{MovieID: 1, Title: "Heat"}, 3, instant)
	require.NoError(t, err)

	second, err := watched.Get(ctx, user.ID, 2)
	require.NoError(t, err)
	assert.True(t, second.WatchedDate.After(instant))

	before, err := watched.Get(ctx, user.ID, 1)
	require.NoError(t, err)
	require.NoError(t, watched.UpdateRating(ctx, user.ID, 1, 5, instant))
	after, err := watched.Get(ctx, user.ID, 1)
	require.NoError(t, err)
	assert.True(t, after.WatchedDate.After(before.WatchedDate))
	assert.True(t, after.WatchedDate.After(second.WatchedDate))

	list, err := watched.ListForUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.EqualValues(t, 1, list[0].MovieID)
	assert.EqualValues(t, 2, list[1].MovieID)

	t.Run("other users keep the clock reading", func(t *testing.T) {
		got, err := watched.Get(ctx, other.ID, 1)
		require.NoError(t, err)
		assert.True(t, instant.Equal(got.WatchedDate))
	})
}

func TestWatchedDateKeepsNanoseconds(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	user, err := s.Users().Insert(ctx, "a@x.com", "A", []byte("hash"))
	require.NoError(t, err)
	instant := time.Date(2024, 5, 1, 12, 0, 0, 123456789, time.UTC)
	_, err = s.Watched().Insert(ctx, user.ID, models.MovieSnapshot{MovieID: 1, Title: "Heat"}, 3, instant)
	require.NoError(t, err)
	got, err := s.Watched().Get(ctx, user.ID, 1)
	require.NoError(t, err)
	assert.True(t, instant.Equal(got.WatchedDate))
}
