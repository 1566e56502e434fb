package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ashureev/hr-assistant/internal/domain"
)

// DefaultTimeout bounds a single extraction when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// Guard wraps an Extractor so that it never fails: errors, panics, timeouts
// and malformed output all degrade to Unknown.
type Guard struct {
	next    Extractor
	timeout time.Duration
	logger  *slog.Logger
}

// NewGuard wraps next.
func NewGuard(next Extractor, timeout time.Duration, logger *slog.Logger) *Guard {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{next: next, timeout: timeout, logger: logger}
}

type outcome struct {
	res Result
	err error
}

// Extract runs the wrapped extractor. The returned error is always nil.
func (g *Guard) Extract(ctx context.Context, text string, history []domain.Message) (Result, error) {
	if g.next == nil {
		g.logger.Warn("slot extraction skipped", "error", errNoExtractor)
		return Unknown(), nil
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("%w: extractor panicked: %v", domain.ErrExternalService, r)}
			}
		}()
		res, err := g.next.Extract(ctx, text, history)
		done <- outcome{res: res, err: err}
	}()

	select {
	case <-ctx.Done():
		g.logger.Warn("slot extraction timed out, falling back to unknown", "timeout", g.timeout, "error", ctx.Err())
		return Unknown(), nil
	case out := <-done:
		if out.err != nil {
			g.logger.Warn("slot extraction failed, falling back to unknown", "error", out.err)
			return Unknown(), nil
		}
		if out.res.Intent == "" {
			g.logger.Warn("slot extraction returned no intent, falling back to unknown")
			return Unknown(), nil
		}
		if out.res.Slots == nil {
			out.res.Slots = domain.Slots{}
		}
		return out.res, nil
	}
}
