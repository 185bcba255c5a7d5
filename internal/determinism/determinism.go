package determinism

import (
	"context"
	"math"
	"math/rand/v2"

	"NewsAnalyzer/internal/domain"
)

// MaxSeed bounds generated seeds to a positive int32, matching what model
// runtimes accept as a seed.
const MaxSeed = math.MaxInt32

type stampKey struct{}

// Versions are the opaque strings echoed next to the seed.
type Versions struct {
	Contract string
	Model    string
}

// New creates the stamp for one request. A nil seed draws a fresh one.
func New(seed *int64, v Versions) domain.Stamp {
	s := rand.Int64N(MaxSeed)
	if seed != nil {
		s = *seed
	}
	return domain.Stamp{Seed: s, ContractVersion: v.Contract, ModelVersion: v.Model}
}

// WithStamp scopes the stamp to ctx so every model call of the request sees it.
func WithStamp(ctx context.Context, stamp domain.Stamp) context.Context {
	return context.WithValue(ctx, stampKey{}, stamp)
}

// Ensure returns ctx unchanged when it already carries a stamp; otherwise it
// attaches a freshly seeded one. Standalone detectors call it at entry.
func Ensure(ctx context.Context, v Versions) (context.Context, domain.Stamp) {
	if stamp, ok := FromContext(ctx); ok {
		return ctx, stamp
	}
	stamp := New(nil, v)
	return WithStamp(ctx, stamp), stamp
}

// FromContext returns the request stamp, if any.
func FromContext(ctx context.Context) (domain.Stamp, bool) {
	stamp, ok := ctx.Value(stampKey{}).(domain.Stamp)
	return stamp, ok
}

// SeedFromContext returns the request seed or 0.
func SeedFromContext(ctx context.Context) int64 {
	stamp, _ := FromContext(ctx)
	return stamp.Seed
}

// Rand returns a generator private to the request, seeded from its stamp.
// Callers must not share it across goroutines.
func Rand(ctx context.Context) *rand.Rand {
	seed := uint64(SeedFromContext(ctx))
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
