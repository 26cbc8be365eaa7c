package storage

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

type Opener func(ctx context.Context) (Handle, error)

// Manager owns the single store handle of the process. Initialize must
// return before anything else queries the store.
type Manager struct {
	log    *slog.Logger
	open   Opener
	mu     sync.Mutex
	handle Handle
}

func NewManager(log *slog.Logger, open Opener) *Manager {
	return &Manager{log: log, open: open}
}

// Initialize opens the store and ensures the schema exists. Calling it again
// after a success returns the same handle.
func (m *Manager) Initialize(ctx context.Context) (Handle, error) {
	const op = "storage.Manager.Initialize"
	log := m.log.With("op", op)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.handle != nil {
		log.Debug("storage already initialized")
		return m.handle, nil
	}
	handle, err := m.open(ctx)
	if err != nil {
		log.Error("failed to open storage", "errMsg", err.Error())
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if err := handle.Migrate(ctx); err != nil {
		log.Error("failed to create schema", "errMsg", err.Error())
		_ = handle.Close()
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	log.Info("storage initialized")
	m.handle = handle
	return handle, nil
}

func (m *Manager) Handle() (Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.handle == nil {
		return nil, ErrNotInitialized
	}
	return m.handle, nil
}

func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.handle == nil {
		return nil
	}
	err := m.handle.Close()
	m.handle = nil
	return err
}
