package auth

import "errors"

// Messages are safe to show to the user as is.
var (
	ErrDuplicateEmail            = errors.New("this email is already registered")
	ErrPasswordTooLong           = errors.New("password is too long")
	ErrRegistrationUnavailable   = errors.New("could not create the account, please try again")
	ErrAuthenticationUnavailable = errors.New("could not sign in right now, please try again")
	ErrSessionUnavailable        = errors.New("could not remember the login, please sign in again")
	ErrProfileUnavailable        = errors.New("could not load the profile, please try again")
)
