package ocr

import (
	"context"
	"fmt"
	"log/slog"

	"docverify/pkg/platform/circuit"
	"docverify/pkg/platform/sentinel"
)

// ErrCircuitOpen is returned without calling the engine while its breaker
// is open. It wraps sentinel.ErrUnavailable.
var ErrCircuitOpen = fmt.Errorf("ocr engine circuit open: %w", sentinel.ErrUnavailable)

// GuardedEngine skips a remote engine that keeps failing.
type GuardedEngine struct {
	next    Engine
	breaker *circuit.Breaker
	logger  *slog.Logger
}

// Guard wraps next with breaker. Cancelled or expired request contexts are
// not counted against the engine.
func Guard(next Engine, breaker *circuit.Breaker, logger *slog.Logger) *GuardedEngine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &GuardedEngine{next: next, breaker: breaker, logger: logger}
}

func (g *GuardedEngine) Name() string {
	return g.next.Name()
}

func (g *GuardedEngine) Recognize(ctx context.Context, data []byte) (Result, error) {
	if !g.breaker.Allow() {
		return Result{}, fmt.Errorf("%s: %w", g.next.Name(), ErrCircuitOpen)
	}

	res, err := g.next.Recognize(ctx, data)
	if err != nil {
		if ctx.Err() == nil {
			if _, change := g.breaker.RecordFailure(); change.Opened {
				g.logger.WarnContext(ctx, "ocr engine circuit opened", "engine", g.next.Name())
			}
		}
		return Result{}, err
	}

	if _, change := g.breaker.RecordSuccess(); change.Closed {
		g.logger.InfoContext(ctx, "ocr engine circuit closed", "engine", g.next.Name())
	}
	return res, nil
}
