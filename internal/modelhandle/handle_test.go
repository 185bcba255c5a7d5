package modelhandle

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"NewsAnalyzer/internal/apperr"
)

func TestGetLoadsOnceUnderConcurrency(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	h := New("stub", func(ctx context.Context) (string, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "model", nil
	}, nil)

	if got := h.Status(); got != "not_loaded" {
		t.Fatalf("unexpected status before load: %s", got)
	}

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := h.Get(context.Background())
			if err != nil || v != "model" {
				t.Errorf("unexpected result: %q, %v", v, err)
			}
		}()
	}
	wg.Wait()

	if calls.Load() != 1 {
		t.Fatalf("expected exactly one load, got %d", calls.Load())
	}
	if got := h.Status(); got != "ready" {
		t.Fatalf("unexpected status after load: %s", got)
	}
}

func TestGetRemembersFailure(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	h := New("broken", func(ctx context.Context) (int, error) {
		calls.Add(1)
		return 0, errors.New("weights missing")
	}, nil)

	for i := 0; i < 3; i++ {
		if _, err := h.Get(context.Background()); !errors.Is(err, apperr.ErrModelUnavailable) {
			t.Fatalf("expected ErrModelUnavailable, got %v", err)
		}
	}
	if calls.Load() != 1 {
		t.Fatalf("failed load must not be retried, got %d calls", calls.Load())
	}
	if got := h.Status(); got != "failed" {
		t.Fatalf("unexpected status: %s", got)
	}
}

func TestGetRecoversLoaderPanic(t *testing.T) {
	t.Parallel()

	h := New("panicky", func(ctx context.Context) (int, error) {
		panic("boom")
	}, nil)

	if err := h.Warmup(context.Background()); !errors.Is(err, apperr.ErrModelUnavailable) {
		t.Fatalf("expected ErrModelUnavailable, got %v", err)
	}
}

func TestReady(t *testing.T) {
	t.Parallel()

	h := Ready("prebuilt", 7)
	v, err := h.Get(context.Background())
	if err != nil || v != 7 {
		t.Fatalf("unexpected result: %d, %v", v, err)
	}
	if h.Status() != "ready" {
		t.Fatalf("unexpected status: %s", h.Status())
	}
}
