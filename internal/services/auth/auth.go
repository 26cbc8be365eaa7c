package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"ratemovie/proj/internal/domain/models"
	"ratemovie/proj/internal/storage"

	"golang.org/x/crypto/bcrypt"
)

type UsersStorage interface {
	Insert(ctx context.Context, email, name string, passwordHash []byte) (*models.User, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type SessionStore interface {
	SetCurrentUser(ctx context.Context, userID int64) error
	CurrentUser(ctx context.Context) (int64, bool, error)
	ClearCurrentUser(ctx context.Context) error
}

type AuthService struct {
	log        *slog.Logger
	storage    UsersStorage
	session    SessionStore
	bcryptCost int
}

func New(log *slog.Logger, storage UsersStorage, session SessionStore, bcryptCost int) *AuthService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		log:        log,
		storage:    storage,
		session:    session,
		bcryptCost: bcryptCost,
	}
}

func publicUser(user *models.User) *models.User {
	user.PasswordHash = nil
	return user
}

// Register creates the account and logs it in. If the session cannot be
// written the created user is returned together with ErrSessionUnavailable;
// the account exists and SignIn will succeed.
func (a *AuthService) Register(ctx context.Context, email, name, password string) (*models.User, error) {
	const op = "auth.AuthService.Register"
	log := a.log.With("op", op, "email", email)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, ErrPasswordTooLong
		}
		log.Error("Error hashing password", "errMsg", err.Error())
		return nil, fmt.Errorf("%w: %w", ErrRegistrationUnavailable, err)
	}
	user, err := a.storage.Insert(ctx, email, name, hash)
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			log.Info("email already registered")
			return nil, ErrDuplicateEmail
		}
		log.Error("Error inserting user", "errMsg", err.Error())
		return nil, fmt.Errorf("%w: %w", ErrRegistrationUnavailable, err)
	}
	if err := a.session.SetCurrentUser(ctx, user.ID); err != nil {
		log.Error("Error setting session", "errMsg", err.Error())
		return publicUser(user), fmt.Errorf("%w: %w", ErrSessionUnavailable, err)
	}
	log.Info("user registered", "user_id", user.ID)
	return publicUser(user), nil
}

// SignIn returns nil without an error when the credentials do not match.
// The email is compared exactly, case included.
func (a *AuthService) SignIn(ctx context.Context, email, password string) (*models.User, error) {
	const op = "auth.AuthService.SignIn"
	log := a.log.With("op", op, "email", email)
	user, err := a.storage.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("unknown email")
			return nil, nil
		}
		log.Error("Error getting user", "errMsg", err.Error())
		return nil, fmt.Errorf("%w: %w", ErrAuthenticationUnavailable, err)
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			log.Info("wrong password")
			return nil, nil
		}
		log.Error("Error comparing password", "errMsg", err.Error())
		return nil, fmt.Errorf("%w: %w", ErrAuthenticationUnavailable, err)
	}
	if err := a.session.SetCurrentUser(ctx, user.ID); err != nil {
		log.Error("Error setting session", "errMsg", err.Error())
		return nil, fmt.Errorf("%w: %w", ErrSessionUnavailable, err)
	}
	log.Info("user signed in", "user_id", user.ID)
	return publicUser(user), nil
}

func (a *AuthService) SignOut(ctx context.Context) error {
	const op = "auth.AuthService.SignOut"
	log := a.log.With("op", op)
	if err := a.session.ClearCurrentUser(ctx); err != nil {
		log.Error("Error clearing session", "errMsg", err.Error())
		return fmt.Errorf("%w: %w", ErrSessionUnavailable, err)
	}
	return nil
}

func (a *AuthService) LoggedInUserID(ctx context.Context) (int64, bool, error) {
	userID, ok, err := a.session.CurrentUser(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %w", ErrSessionUnavailable, err)
	}
	return userID, ok, nil
}

// UserProfile returns nil without an error when the user does not exist,
// which is how a stale session shows up.
func (a *AuthService) UserProfile(ctx context.Context, userID int64) (*models.User, error) {
	const op = "auth.AuthService.UserProfile"
	log := a.log.With("op", op, "user_id", userID)
	user, err := a.storage.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Warn("user not found")
			return nil, nil
		}
		log.Error("Error getting user", "errMsg", err.Error())
		return nil, fmt.Errorf("%w: %w", ErrProfileUnavailable, err)
	}
	return publicUser(user), nil
}
