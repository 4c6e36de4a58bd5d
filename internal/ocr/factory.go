package ocr

import (
	"fmt"
	"log/slog"

	"docverify/pkg/platform/circuit"
)

// Options selects and configures an engine.
type Options struct {
	Engine        string
	TesseractPath string
	Language      string
	OpenAIKey     string
	OpenAIModel   string
}

// New builds the engine named by opts.Engine. "chain" runs tesseract first
// and falls back to the OpenAI engine when an API key is configured. The
// remote engine is always behind a circuit breaker.
func New(opts Options, logger *slog.Logger) (Engine, error) {
	tesseract := func() Engine {
		return NewTesseract(WithTesseractPath(opts.TesseractPath), WithLanguage(opts.Language))
	}
	openai := func() Engine {
		return Guard(NewOpenAI(opts.OpenAIKey, WithModel(opts.OpenAIModel)), circuit.New(EngineOpenAI), logger)
	}

	switch opts.Engine {
	case "", EngineTesseract:
		return tesseract(), nil
	case EngineOpenAI:
		if opts.OpenAIKey == "" {
			return nil, fmt.Errorf("ocr engine %q requires an API key", EngineOpenAI)
		}
		return openai(), nil
	case EngineChain:
		engines := []Engine{tesseract()}
		if opts.OpenAIKey != "" {
			engines = append(engines, openai())
		}
		return NewChain(logger, engines...), nil
	case EngineText:
		return NewText(), nil
	default:
		return nil, fmt.Errorf("unknown ocr engine %q", opts.Engine)
	}
}
