package storage

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrReference      = errors.New("referenced row does not exist")
	ErrUnavailable    = errors.New("storage unavailable")
	ErrNotInitialized = errors.New("storage not initialized")
)
