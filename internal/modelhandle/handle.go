package modelhandle

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"NewsAnalyzer/internal/apperr"
)

// Loader builds a model. It runs at most once per Handle.
type Loader[T any] func(ctx context.Context) (T, error)

// Handle is a once-cell around an expensive model load. Concurrent first
// callers block on the same load; a failed load is remembered and returned to
// every later caller.
type Handle[T any] struct {
	name   string
	load   Loader[T]
	logger *slog.Logger

	once  sync.Once
	mu    sync.RWMutex
	done  bool
	value T
	err   error
}

// New wires a named loader.
func New[T any](name string, load Loader[T], logger *slog.Logger) *Handle[T] {
	return &Handle[T]{name: name, load: load, logger: logger}
}

// Ready wraps an already constructed model.
func Ready[T any](name string, value T) *Handle[T] {
	h := &Handle[T]{name: name, done: true, value: value}
	h.once.Do(func() {})
	return h
}

// Name identifies the model in logs and health output.
func (h *Handle[T]) Name() string {
	return h.name
}

// Get returns the model, loading it on first use.
func (h *Handle[T]) Get(ctx context.Context) (T, error) {
	h.once.Do(func() {
		value, err := h.run(ctx)
		h.mu.Lock()
		h.value, h.err, h.done = value, err, true
		h.mu.Unlock()
	})

	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.value, h.err
}

// Status reports "not_loaded", "ready" or "failed".
func (h *Handle[T]) Status() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	switch {
	case !h.done:
		return "not_loaded"
	case h.err != nil:
		return "failed"
	default:
		return "ready"
	}
}

// Warmup triggers the load and discards the model.
func (h *Handle[T]) Warmup(ctx context.Context) error {
	_, err := h.Get(ctx)
	return err
}

func (h *Handle[T]) run(ctx context.Context) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("load %s: panic: %v: %w", h.name, r, apperr.ErrModelUnavailable)
		}
	}()

	if h.load == nil {
		return value, fmt.Errorf("load %s: no loader configured: %w", h.name, apperr.ErrModelUnavailable)
	}

	start := time.Now()
	value, err = h.load(ctx)
	if err != nil {
		h.log(slog.LevelWarn, "model load failed", "error", err)
		return value, fmt.Errorf("load %s: %w: %w", h.name, err, apperr.ErrModelUnavailable)
	}
	h.log(slog.LevelInfo, "model loaded", "elapsed", time.Since(start))
	return value, nil
}

func (h *Handle[T]) log(level slog.Level, msg string, args ...any) {
	if h.logger != nil {
		h.logger.Log(context.Background(), level, msg, append([]any{"model", h.name}, args...)...)
	}
}
