// Package ocr turns uploaded document images into text.
//
// Engines report their own failures as errors; the verification pipeline
// absorbs them into an empty, zero-confidence result so one unreadable
// upload never aborts a batch.
package ocr

import (
	"context"
	"errors"
)

// Engine names.
const (
	EngineTesseract = "tesseract"
	EngineOpenAI    = "openai"
	EngineChain     = "chain"
	EngineText      = "text"
)

// ErrEmptyInput is returned when an engine is handed zero bytes.
var ErrEmptyInput = errors.New("ocr: empty input")

// Result is the recognized text of one document and the engine's mean
// confidence in it, always within [0, 100].
type Result struct {
	Text       string `json:"text"`
	Confidence int    `json:"confidence"`
	Engine     string `json:"engine,omitempty"`
}

// Engine recognizes text in a document image.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, data []byte) (Result, error)
}
