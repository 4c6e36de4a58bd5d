package ocr

import "context"

// TextEngine treats the input as already-recognized text. It backs the CLI's
// --text mode and pipeline tests.
type TextEngine struct{}

func NewText() *TextEngine {
	return &TextEngine{}
}

func (e *TextEngine) Name() string {
	return EngineText
}

func (e *TextEngine) Recognize(_ context.Context, data []byte) (Result, error) {
	return Result{Text: string(data), Confidence: 100, Engine: EngineText}, nil
}
