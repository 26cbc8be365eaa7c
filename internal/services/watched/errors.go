package watched

import "errors"

var (
	ErrAlreadyRated       = errors.New("you already rated this movie")
	ErrUserNotFound       = errors.New("user not found")
	ErrWatchedUnavailable = errors.New("could not access your movies, please try again")
)
