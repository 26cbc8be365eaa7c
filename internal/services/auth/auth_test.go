package auth

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"ratemovie/proj/internal/domain/models"
	"ratemovie/proj/internal/services/session"
	"ratemovie/proj/internal/storage/kv"
	"ratemovie/proj/internal/storage/sqlite"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	auth        *AuthService
	sessionPath string
	users       UsersStorage
}

func newSessionStore(t *testing.T, path string) *session.Store {
	t.Helper()
	fileStore, err := kv.NewFileStore(path)
	require.NoError(t, err)
	return session.New(slog.Default(), fileStore)
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	db, err := sqlite.New(context.Background(), filepath.Join(dir, "movies.db"), time.Second)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(context.Background()))
	t.Cleanup(func() { _ = db.Close() })
	sessionPath := filepath.Join(dir, "session.json")
	return &testEnv{
		auth:        New(slog.Default(), db.Users(), newSessionStore(t, sessionPath), bcrypt.MinCost),
		sessionPath: sessionPath,
		users:       db.Users(),
	}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	user, err := env.auth.Register(ctx, "a@x.com", "A", "p")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "a@x.com", user.Email)
	assert.Equal(t, "A", user.Name)
	assert.Nil(t, user.PasswordHash)

	loggedIn, ok, err := env.auth.LoggedInUserID(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, user.ID, loggedIn)

	t.Run("password is not stored verbatim", func(t *testing.T) {
		stored, err := env.users.Get(ctx, user.ID)
		require.NoError(t, err)
		assert.NotEqual(t, []byte("p"), stored.PasswordHash)
	})
	t.Run("duplicate email", func(t *testing.T) {
		_, err := env.auth.Register(ctx, "a@x.com", "Impostor", "other")
		assert.ErrorIs(t, err, ErrDuplicateEmail)
		profile, err := env.auth.UserProfile(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "A", profile.Name)
		signedIn, err := env.auth.SignIn(ctx, "a@x.com", "p")
		require.NoError(t, err)
		require.NotNil(t, signedIn)
	})
	t.Run("password too long", func(t *testing.T) {
		_, err := env.auth.Register(ctx, "b@x.com", "B", strings.Repeat("x", 73))
		assert.ErrorIs(t, err, ErrPasswordTooLong)
	})
}

func TestSignInScenario(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	_, err := env.auth.Register(ctx, "a@x.com", "A", "p")
	require.NoError(t, err)
	require.NoError(t, env.auth.SignOut(ctx))

	user, err := env.auth.SignIn(ctx, "a@x.com", "p")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "a@x.com", user.Email)

	wrong, err := env.auth.SignIn(ctx, "a@x.com", "wrong")
	require.NoError(t, err)
	assert.Nil(t, wrong)

	upper, err := env.auth.SignIn(ctx, "A@X.COM", "p")
	require.NoError(t, err)
	assert.Nil(t, upper)

	unknown, err := env.auth.SignIn(ctx, "nobody@x.com", "p")
	require.NoError(t, err)
	assert.Nil(t, unknown)
}

func TestSessionSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	_, err := env.auth.Register(ctx, "a@x.com", "A", "p")
	require.NoError(t, err)
	require.NoError(t, env.auth.SignOut(ctx))
	user, err := env.auth.SignIn(ctx, "a@x.com", "p")
	require.NoError(t, err)

	restarted := New(slog.Default(), env.users, newSessionStore(t, env.sessionPath), bcrypt.MinCost)
	userID, ok, err := restarted.LoggedInUserID(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, user.ID, userID)

	require.NoError(t, restarted.SignOut(ctx))
	require.NoError(t, restarted.SignOut(ctx))
	_, ok, err = env.auth.LoggedInUserID(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUserProfileMissing(t *testing.T) {
	env := newTestEnv(t)
	profile, err := env.auth.UserProfile(context.Background(), 12345)
	require.NoError(t, err)
	assert.Nil(t, profile)
}

type brokenUsers struct{}

var errDiskIO = errors.New("disk I/O error")

func (brokenUsers) Insert(ctx context.Context, email, name string, passwordHash []byte) (*models.User, error) {
	return nil, errDiskIO
}
func (brokenUsers) Get(ctx context.Context, id int64) (*models.User, error) { return nil, errDiskIO }
func (brokenUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, errDiskIO
}

func TestStorageFaults(t *testing.T) {
	ctx := context.Background()
	sessionStore := newSessionStore(t, filepath.Join(t.TempDir(), "session.json"))
	service := New(slog.Default(), brokenUsers{}, sessionStore, bcrypt.MinCost)

	_, err := service.SignIn(ctx, "a@x.com", "p")
	assert.ErrorIs(t, err, ErrAuthenticationUnavailable)
	assert.ErrorIs(t, err, errDiskIO)

	_, err = service.Register(ctx, "a@x.com", "A", "p")
	assert.ErrorIs(t, err, ErrRegistrationUnavailable)

	_, err = service.UserProfile(ctx, 1)
	assert.ErrorIs(t, err, ErrProfileUnavailable)

	_, ok, err := service.LoggedInUserID(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

type brokenSession struct{}

func (brokenSession) SetCurrentUser(ctx context.Context, userID int64) error { return errDiskIO }
func (brokenSession) CurrentUser(ctx context.Context) (int64, bool, error) {
	return 0, false, errDiskIO
}
func (brokenSession) ClearCurrentUser(ctx context.Context) error { return errDiskIO }

func TestRegisterSessionFailureKeepsAccount(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	service := New(slog.Default(), env.users, brokenSession{}, bcrypt.MinCost)

	user, err := service.Register(ctx, "a@x.com", "A", "p")
	assert.ErrorIs(t, err, ErrSessionUnavailable)
	require.NotNil(t, user)
	assert.NotZero(t, user.ID)
	assert.Nil(t, user.PasswordHash)

	signedIn, err := env.auth.SignIn(ctx, "a@x.com", "p")
	require.NoError(t, err)
	require.NotNil(t, signedIn)
	assert.Equal(t, user.ID, signedIn.ID)
}
