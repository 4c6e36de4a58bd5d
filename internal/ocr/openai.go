package ocr

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"docverify/pkg/confidence"
)

const (
	defaultOpenAIModel = "gpt-4o-mini"
	openAIMaxTokens    = 2048
)

const transcriptionPrompt = `You transcribe identity and travel documents.
Return a JSON object {"text": string, "confidence": number}.
"text" is every line printed on the document in reading order, one line per
row, with machine-readable zone lines copied exactly including '<' fillers.
"confidence" is your confidence in the transcription from 0 to 100.`

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIEngine sends the image to a vision-capable chat model and asks for a
// JSON transcription.
type OpenAIEngine struct {
	client chatCompleter
	model  string
}

type OpenAIOption func(*OpenAIEngine)

func WithModel(model string) OpenAIOption {
	return func(e *OpenAIEngine) {
		if model != "" {
			e.model = model
		}
	}
}

func withChatCompleter(c chatCompleter) OpenAIOption {
	return func(e *OpenAIEngine) {
		e.client = c
	}
}

func NewOpenAI(apiKey string, opts ...OpenAIOption) *OpenAIEngine {
	e := &OpenAIEngine{model: defaultOpenAIModel}
	for _, opt := range opts {
		opt(e)
	}
	if e.client == nil {
		e.client = openai.NewClient(apiKey)
	}
	return e
}

func (e *OpenAIEngine) Name() string {
	return EngineOpenAI
}

func (e *OpenAIEngine) Recognize(ctx context.Context, data []byte) (Result, error) {
	if len(data) == 0 {
		return Result{}, ErrEmptyInput
	}

	req := openai.ChatCompletionRequest{
		Model: e.model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: transcriptionPrompt},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: "Transcribe this document."},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL(data),
							Detail: openai.ImageURLDetailHigh,
						},
					},
				},
			},
		},
	}
	// Reasoning models reject MaxTokens.
	if strings.HasPrefix(e.model, "o1") || strings.HasPrefix(e.model, "o3") ||
		strings.HasPrefix(e.model, "o4") || strings.HasPrefix(e.model, "gpt-5") {
		req.MaxCompletionTokens = openAIMaxTokens
	} else {
		req.MaxTokens = openAIMaxTokens
	}

	resp, err := e.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return Result{}, fmt.Errorf("create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Result{}, errors.New("create chat completion: no choices returned")
	}

	var payload struct {
		Text       string  `json:"text"`
		Confidence float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &payload); err != nil {
		return Result{}, fmt.Errorf("decode transcription: %w", err)
	}

	return Result{
		Text:       payload.Text,
		Confidence: confidence.Clamp(confidence.Round(payload.Confidence)),
		Engine:     EngineOpenAI,
	}, nil
}

func dataURL(data []byte) string {
	return "data:" + http.DetectContentType(data) + ";base64," + base64.StdEncoding.EncodeToString(data)
}
