package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"sjaggi1/resume-parser/internal/models"
)

// circuitState tracks rate-limit backoff for a single provider.
type circuitState struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = closed (healthy)
}

func (c *circuitState) isOpenWithReset(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// FallbackCompleter tries providers in order, skipping those with open circuits.
type FallbackCompleter struct {
	providers []Completer
	circuits  []*circuitState
	log       *zap.Logger
	now       func() time.Time
}

func NewFallbackCompleter(providers []Completer, log *zap.Logger) *FallbackCompleter {
	circuits := make([]*circuitState, len(providers))
	for i := range circuits {
		circuits[i] = &circuitState{}
	}
	return &FallbackCompleter{
		providers: providers,
		circuits:  circuits,
		log:       log,
		now:       time.Now,
	}
}

func (f *FallbackCompleter) Name() string {
	names := make([]string, len(f.providers))
	for i, p := range f.providers {
		names[i] = p.Name()
	}
	return strings.Join(names, ">")
}

func (f *FallbackCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if len(f.providers) == 0 {
		return "", fmt.Errorf("%w: no language model provider configured", models.ErrFeatureUnavailable)
	}

	now := f.now()
	var lastErr error
	allRateLimited := true
	var earliestReset time.Time

	for i, p := range f.providers {
		if resetAt, open := f.circuits[i].isOpenWithReset(now); open {
			f.log.Debug("skipping provider, circuit open",
				zap.String("provider", p.Name()),
				zap.Time("reset_at", resetAt),
			)
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
			continue
		}

		text, err := p.Complete(ctx, req)
		if err == nil {
			return text, nil
		}

		f.log.Warn("provider failed", zap.String("provider", p.Name()), zap.Error(err))
		lastErr = err

		if ctx.Err() != nil {
			return "", fmt.Errorf("completion cancelled: %w", ctx.Err())
		}

		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			resetAt := now.Add(rlErr.RetryAfter)
			f.circuits[i].open(resetAt)
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
		} else {
			allRateLimited = false
		}
	}

	if lastErr == nil || allRateLimited {
		retryAfter := earliestReset.Sub(f.now())
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		return "", NewRateLimitError("all", fmt.Errorf("all providers rate limited"), int(retryAfter.Seconds()))
	}

	return "", fmt.Errorf("all providers failed: %w", lastErr)
}
