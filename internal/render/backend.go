package render

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrBackendUnavailable is returned when the rendering engine cannot be
// loaded. It is transient: a later call retries the load.
var ErrBackendUnavailable = errors.New("rendering backend unavailable")

// Factory creates a fresh engine for one document
type Factory func(info DocumentInfo) Engine

// Loader performs the one-time, possibly expensive, backend load
type Loader func(ctx context.Context) (Factory, error)

// Backend is the shared, lazily loaded rendering backend. Loading is
// single-flight: concurrent first callers share one load. A successful
// load is kept; a failed one is retried on the next call.
type Backend struct {
	name   string
	load   Loader
	logger *zap.Logger

	group   singleflight.Group
	mu      sync.RWMutex
	factory Factory
}

// NewBackend creates a backend that loads with load on first use
func NewBackend(name string, load Loader, logger *zap.Logger) *Backend {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Backend{name: name, load: load, logger: logger}
}

// Name identifies the backend in logs and metrics
func (b *Backend) Name() string { return b.name }

// Ready reports whether the backend has loaded successfully
func (b *Backend) Ready() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.factory != nil
}

// Init loads the backend if it is not loaded yet
func (b *Backend) Init(ctx context.Context) error {
	_, err := b.ready(ctx)
	return err
}

// NewEngine returns an independent engine for a single document
func (b *Backend) NewEngine(ctx context.Context, info DocumentInfo) (Engine, error) {
	f, err := b.ready(ctx)
	if err != nil {
		return nil, err
	}
	return f(info), nil
}

func (b *Backend) ready(ctx context.Context) (Factory, error) {
	b.mu.RLock()
	f := b.factory
	b.mu.RUnlock()
	if f != nil {
		return f, nil
	}

	v, err, _ := b.group.Do(b.name, func() (interface{}, error) {
		b.mu.RLock()
		loaded := b.factory
		b.mu.RUnlock()
		if loaded != nil {
			return loaded, nil
		}

		b.logger.Info("Loading rendering backend", zap.String("backend", b.name))
		f, err := b.load(ctx)
		if err != nil {
			b.logger.Warn("Rendering backend failed to load", zap.String("backend", b.name), zap.Error(err))
			return nil, err
		}
		if f == nil {
			return nil, errors.New("loader returned no factory")
		}

		b.mu.Lock()
		b.factory = f
		b.mu.Unlock()
		return f, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBackendUnavailable, b.name, err)
	}
	return v.(Factory), nil
}
