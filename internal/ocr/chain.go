package ocr

import (
	"context"
	"errors"
	"log/slog"
	"strings"
)

// Chain tries each engine in order and returns the first result with
// non-empty text. When every engine fails the last error is returned; when
// they all succeed with blank text the last blank result is returned.
type Chain struct {
	engines []Engine
	logger  *slog.Logger
}

func NewChain(logger *slog.Logger, engines ...Engine) *Chain {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Chain{engines: engines, logger: logger}
}

func (c *Chain) Name() string {
	return EngineChain
}

func (c *Chain) Recognize(ctx context.Context, data []byte) (Result, error) {
	if len(c.engines) == 0 {
		return Result{}, errors.New("ocr chain: no engines configured")
	}

	var (
		lastErr error
		blank   *Result
	)
	for _, engine := range c.engines {
		res, err := engine.Recognize(ctx, data)
		if err != nil {
			c.logger.WarnContext(ctx, "ocr engine failed, trying next",
				"engine", engine.Name(),
				"error", err,
			)
			lastErr = err
			continue
		}
		if strings.TrimSpace(res.Text) != "" {
			return res, nil
		}
		c.logger.InfoContext(ctx, "ocr engine returned no text, trying next", "engine", engine.Name())
		blank = &res
	}

	if blank != nil {
		return *blank, nil
	}
	return Result{}, lastErr
}
