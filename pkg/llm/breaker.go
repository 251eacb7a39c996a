package llm

import (
	"context"
	"fmt"
	"time"

	"pdf-rag-be/pkg/ragerror"

	"github.com/sony/gobreaker"
)

// BreakerSettings configures WithCircuitBreaker.
type BreakerSettings struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 3,
	}
}

type breakerBackend struct {
	Backend
	cb *gobreaker.CircuitBreaker
}

// WithCircuitBreaker trips after FailureThreshold consecutive generation
// failures. While open the backend reports itself unavailable and
// generation fails immediately.
func WithCircuitBreaker(b Backend, settings BreakerSettings) Backend {
	threshold := settings.FailureThreshold
	if threshold == 0 {
		threshold = DefaultBreakerSettings().FailureThreshold
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        b.Name(),
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
	})
	return &breakerBackend{Backend: b, cb: cb}
}

func (b *breakerBackend) IsAvailable(ctx context.Context) bool {
	if b.cb.State() == gobreaker.StateOpen {
		return false
	}
	return b.Backend.IsAvailable(ctx)
}

func (b *breakerBackend) GenerateResponse(ctx context.Context, question, retrieved string, opts ...Option) (string, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.Backend.GenerateResponse(ctx, question, retrieved, opts...)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return "", fmt.Errorf("%w: %s circuit %v", ragerror.ErrGenerationFailed, b.Name(), err)
		}
		return "", err
	}
	return out.(string), nil
}

// ListModels forwards to the wrapped backend when it supports listing.
func (b *breakerBackend) ListModels(ctx context.Context) ([]string, error) {
	if lister, ok := b.Backend.(ModelLister); ok {
		return lister.ListModels(ctx)
	}
	return nil, fmt.Errorf("%w: %s", ErrListingUnsupported, b.Name())
}
