package prompt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"LiveDraws/internal/config"
)

const (
	defaultCBMaxFailures uint32        = 3
	defaultCBTimeout     time.Duration = 30 * time.Second
	defaultCBInterval    time.Duration = 60 * time.Second
)

// Breaker stops calling a failing Suggester until it has had time to recover.
// A missing API key is a configuration problem, not an outage, so it never
// trips the breaker.
type Breaker struct {
	inner   Suggester
	breaker *gobreaker.CircuitBreaker[string]
}

func NewBreaker(inner Suggester, cfg config.CircuitBreakerConfig, logger *slog.Logger) *Breaker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = defaultCBMaxFailures
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultCBTimeout
	}
	interval := cfg.Interval
	if interval == 0 {
		interval = defaultCBInterval
	}

	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "prompt",
		MaxRequests: 1,
		Interval:    interval,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotConfigured) || errors.Is(err, context.Canceled)
		},
	})
	return &Breaker{inner: inner, breaker: cb}
}

// Suggest implements Suggester.
func (b *Breaker) Suggest(ctx context.Context) (string, error) {
	idea, err := b.breaker.Execute(func() (string, error) {
		return b.inner.Suggest(ctx)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", fmt.Errorf("%w: circuit open: %w", ErrUnavailable, err)
	}
	return idea, err
}

func (b *Breaker) State() gobreaker.State {
	return b.breaker.State()
}

// Limited rejects suggestions beyond a request rate instead of queueing them.
type Limited struct {
	inner   Suggester
	limiter *rate.Limiter
}

// NewLimited allows perMinute requests a minute with a burst of one.
// perMinute <= 0 disables the limit.
func NewLimited(inner Suggester, perMinute int) *Limited {
	limit := rate.Inf
	if perMinute > 0 {
		limit = rate.Limit(float64(perMinute) / 60.0)
	}
	return &Limited{inner: inner, limiter: rate.NewLimiter(limit, 1)}
}

// ErrRateLimited is returned when suggestions are requested too quickly.
var ErrRateLimited = errors.New("too many requests, try again shortly")

// Suggest implements Suggester.
func (l *Limited) Suggest(ctx context.Context) (string, error) {
	if !l.limiter.Allow() {
		return "", ErrRateLimited
	}
	return l.inner.Suggest(ctx)
}

// New builds the suggestion chain described by cfg.
func New(cfg config.PromptConfig, logger *slog.Logger) Suggester {
	var s Suggester = NewGeminiClient(cfg, logger)
	if cfg.CircuitBreaker.Enabled {
		s = NewBreaker(s, cfg.CircuitBreaker, logger)
	}
	return NewLimited(s, cfg.RatePerMinute)
}
