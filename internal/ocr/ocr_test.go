package ocr

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"docverify/pkg/platform/circuit"
	"docverify/pkg/platform/sentinel"
)

//go:generate mockgen -source=ocr.go -destination=mocks/mocks.go -package=mocks Engine

type OCRSuite struct {
	suite.Suite
	ctx context.Context
}

func TestOCRSuite(t *testing.T) {
	suite.Run(t, new(OCRSuite))
}

func (s *OCRSuite) SetupTest() {
	s.ctx = context.Background()
}

const tesseractTSV = "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\n" +
	"1\t1\t0\t0\t0\t0\t0\t0\t600\t400\t-1\t\n" +
	"4\t1\t1\t1\t1\t0\t10\t10\t300\t20\t-1\t\n" +
	"5\t1\t1\t1\t1\t1\t10\t10\t100\t20\t96.5\tPASSPORT\n" +
	"5\t1\t1\t1\t1\t2\t120\t10\t100\t20\t91\tUTOPIA\n" +
	"5\t1\t1\t1\t2\t1\t10\t40\t100\t20\t80.5\tSurname:\n" +
	"5\t1\t1\t1\t2\t2\t120\t40\t100\t20\t88\tERIKSSON\n" +
	"5\t1\t1\t1\t2\t3\t230\t40\t10\t20\t95\t \n"

func (s *OCRSuite) TestTesseract() {
	s.Run("rebuilds lines and averages word confidence", func() {
		var gotName string
		var gotArgs []string
		var gotStdin []byte
		engine := NewTesseract(
			WithTesseractPath("/usr/bin/tesseract"),
			WithLanguage("eng+fra"),
			withRunner(func(_ context.Context, name string, args []string, stdin []byte) ([]byte, error) {
				gotName, gotArgs, gotStdin = name, args, stdin
				return []byte(tesseractTSV), nil
			}),
		)

		res, err := engine.Recognize(s.ctx, []byte("image"))
		s.Require().NoError(err)
		s.Equal("/usr/bin/tesseract", gotName)
		s.Equal([]string{"stdin", "stdout", "-l", "eng+fra", "tsv"}, gotArgs)
		s.Equal([]byte("image"), gotStdin)
		s.Equal("PASSPORT UTOPIA\nSurname: ERIKSSON", res.Text)
		s.Equal(89, res.Confidence) // (96.5+91+80.5+88)/4
		s.Equal(EngineTesseract, res.Engine)
	})

	s.Run("blank page yields empty text at zero confidence", func() {
		engine := NewTesseract(withRunner(func(context.Context, string, []string, []byte) ([]byte, error) {
			return []byte("level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\n"), nil
		}))
		res, err := engine.Recognize(s.ctx, []byte("image"))
		s.Require().NoError(err)
		s.Equal("", res.Text)
		s.Equal(0, res.Confidence)
	})

	s.Run("runner failure is wrapped", func() {
		engine := NewTesseract(withRunner(func(context.Context, string, []string, []byte) ([]byte, error) {
			return nil, errors.New("exit code 1: cannot read image")
		}))
		_, err := engine.Recognize(s.ctx, []byte("image"))
		s.Require().Error(err)
		s.Contains(err.Error(), "run tesseract")
	})

	s.Run("output without header is rejected", func() {
		engine := NewTesseract(withRunner(func(context.Context, string, []string, []byte) ([]byte, error) {
			return []byte("garbage"), nil
		}))
		_, err := engine.Recognize(s.ctx, []byte("image"))
		s.Require().Error(err)
	})

	s.Run("empty input", func() {
		_, err := NewTesseract().Recognize(s.ctx, nil)
		s.ErrorIs(err, ErrEmptyInput)
	})
}

type fakeCompleter struct {
	req  openai.ChatCompletionRequest
	resp openai.ChatCompletionResponse
	err  error
}

func (f *fakeCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.req = req
	return f.resp, f.err
}

func completion(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: content}}},
	}
}

func (s *OCRSuite) TestOpenAI() {
	png := []byte("\x89PNG\r\n\x1a\n0000")

	s.Run("decodes transcription and clamps confidence", func() {
		fake := &fakeCompleter{resp: completion(`{"text":"P<UTOERIKSSON","confidence":104.2}`)}
		engine := NewOpenAI("key", withChatCompleter(fake))

		res, err := engine.Recognize(s.ctx, png)
		s.Require().NoError(err)
		s.Equal("P<UTOERIKSSON", res.Text)
		s.Equal(100, res.Confidence)
		s.Equal(EngineOpenAI, res.Engine)

		s.Equal(defaultOpenAIModel, fake.req.Model)
		s.Equal(openAIMaxTokens, fake.req.MaxTokens)
		s.Require().Len(fake.req.Messages, 2)
		parts := fake.req.Messages[1].MultiContent
		s.Require().Len(parts, 2)
		s.True(strings.HasPrefix(parts[1].ImageURL.URL, "data:image/png;base64,"))
	})

	s.Run("reasoning models use completion token limit", func() {
		fake := &fakeCompleter{resp: completion(`{"text":"x","confidence":50}`)}
		engine := NewOpenAI("key", WithModel("o4-mini"), withChatCompleter(fake))
		_, err := engine.Recognize(s.ctx, png)
		s.Require().NoError(err)
		s.Equal(openAIMaxTokens, fake.req.MaxCompletionTokens)
		s.Zero(fake.req.MaxTokens)
	})

	s.Run("api error", func() {
		engine := NewOpenAI("key", withChatCompleter(&fakeCompleter{err: errors.New("rate limited")}))
		_, err := engine.Recognize(s.ctx, png)
		s.Require().Error(err)
	})

	s.Run("no choices", func() {
		engine := NewOpenAI("key", withChatCompleter(&fakeCompleter{}))
		_, err := engine.Recognize(s.ctx, png)
		s.Require().Error(err)
	})

	s.Run("non json content", func() {
		engine := NewOpenAI("key", withChatCompleter(&fakeCompleter{resp: completion("I cannot read this")}))
		_, err := engine.Recognize(s.ctx, png)
		s.Require().Error(err)
	})
}

type stubEngine struct {
	name  string
	res   Result
	err   error
	calls int
}

func (e *stubEngine) Name() string { return e.name }

func (e *stubEngine) Recognize(context.Context, []byte) (Result, error) {
	e.calls++
	return e.res, e.err
}

func (s *OCRSuite) TestGuard() {
	s.Run("open circuit skips the engine", func() {
		remote := &stubEngine{name: EngineOpenAI, err: errors.New("rate limited")}
		breaker := circuit.New(EngineOpenAI, circuit.WithFailureThreshold(2), circuit.WithCooldown(time.Hour))
		guarded := Guard(remote, breaker, nil)

		for range 2 {
			_, err := guarded.Recognize(s.ctx, []byte("x"))
			s.Require().Error(err)
		}
		_, err := guarded.Recognize(s.ctx, []byte("x"))

		s.ErrorIs(err, ErrCircuitOpen)
		s.ErrorIs(err, sentinel.ErrUnavailable)
		s.Equal(2, remote.calls)
		s.Equal(EngineOpenAI, guarded.Name())
	})

	s.Run("cancelled requests do not trip the breaker", func() {
		ctx, cancel := context.WithCancel(s.ctx)
		cancel()
		remote := &stubEngine{name: EngineOpenAI, err: context.Canceled}
		breaker := circuit.New(EngineOpenAI, circuit.WithFailureThreshold(1))

		_, err := Guard(remote, breaker, nil).Recognize(ctx, []byte("x"))

		s.ErrorIs(err, context.Canceled)
		s.False(breaker.IsOpen())
	})

	s.Run("chain falls through an open circuit", func() {
		breaker := circuit.New(EngineOpenAI, circuit.WithFailureThreshold(1), circuit.WithCooldown(time.Hour))
		breaker.RecordFailure()
		remote := &stubEngine{name: EngineOpenAI, res: Result{Text: "remote"}}
		local := &stubEngine{name: EngineTesseract, res: Result{Text: "local", Confidence: 70}}

		res, err := NewChain(nil, Guard(remote, breaker, nil), local).Recognize(s.ctx, []byte("x"))

		s.Require().NoError(err)
		s.Equal("local", res.Text)
		s.Zero(remote.calls)
	})
}

func (s *OCRSuite) TestChain() {
	s.Run("primary success short-circuits", func() {
		primary := &stubEngine{name: "a", res: Result{Text: "hello", Confidence: 80}}
		fallback := &stubEngine{name: "b", res: Result{Text: "other", Confidence: 90}}
		res, err := NewChain(nil, primary, fallback).Recognize(s.ctx, []byte("x"))
		s.Require().NoError(err)
		s.Equal("hello", res.Text)
		s.Zero(fallback.calls)
	})

	s.Run("falls back on error", func() {
		primary := &stubEngine{name: "a", err: errors.New("boom")}
		fallback := &stubEngine{name: "b", res: Result{Text: "other", Confidence: 90}}
		res, err := NewChain(nil, primary, fallback).Recognize(s.ctx, []byte("x"))
		s.Require().NoError(err)
		s.Equal("other", res.Text)
	})

	s.Run("falls back on blank text", func() {
		primary := &stubEngine{name: "a", res: Result{Text: "  \n", Confidence: 10}}
		fallback := &stubEngine{name: "b", res: Result{Text: "other", Confidence: 90}}
		res, err := NewChain(nil, primary, fallback).Recognize(s.ctx, []byte("x"))
		s.Require().NoError(err)
		s.Equal("other", res.Text)
	})

	s.Run("blank beats error when nothing reads", func() {
		primary := &stubEngine{name: "a", res: Result{Text: "", Confidence: 5}}
		fallback := &stubEngine{name: "b", err: errors.New("boom")}
		res, err := NewChain(nil, primary, fallback).Recognize(s.ctx, []byte("x"))
		s.Require().NoError(err)
		s.Equal(5, res.Confidence)
	})

	s.Run("all engines fail", func() {
		primary := &stubEngine{name: "a", err: errors.New("first")}
		fallback := &stubEngine{name: "b", err: errors.New("second")}
		_, err := NewChain(nil, primary, fallback).Recognize(s.ctx, []byte("x"))
		s.Require().EqualError(err, "second")
	})

	s.Run("no engines", func() {
		_, err := NewChain(nil).Recognize(s.ctx, []byte("x"))
		s.Require().Error(err)
	})
}

type fakeRedis struct {
	data   map[string]string
	ttl    time.Duration
	getErr error
	setErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	if f.setErr != nil {
		return redis.NewStatusResult("", f.setErr)
	}
	f.data[key] = string(value.([]byte))
	f.ttl = expiration
	return redis.NewStatusResult("OK", nil)
}

func (s *OCRSuite) TestCache() {
	doc := []byte("document")

	s.Run("miss then hit", func() {
		client := newFakeRedis()
		inner := &stubEngine{name: EngineTesseract, res: Result{Text: "hello", Confidence: 77, Engine: EngineTesseract}}
		cached := NewCached(inner, client, WithTTL(time.Hour))

		first, err := cached.Recognize(s.ctx, doc)
		s.Require().NoError(err)
		second, err := cached.Recognize(s.ctx, doc)
		s.Require().NoError(err)

		s.Equal(first, second)
		s.Equal(1, inner.calls)
		s.Equal(time.Hour, client.ttl)
		s.Contains(client.data, CacheKey(EngineTesseract, doc))
	})

	s.Run("blank results are not stored", func() {
		client := newFakeRedis()
		inner := &stubEngine{name: EngineTesseract, res: Result{Text: " ", Confidence: 3}}
		_, err := NewCached(inner, client).Recognize(s.ctx, doc)
		s.Require().NoError(err)
		s.Empty(client.data)
	})

	s.Run("engine errors are not stored", func() {
		client := newFakeRedis()
		inner := &stubEngine{name: EngineTesseract, err: errors.New("boom")}
		_, err := NewCached(inner, client).Recognize(s.ctx, doc)
		s.Require().Error(err)
		s.Empty(client.data)
	})

	s.Run("redis failures fall through", func() {
		client := newFakeRedis()
		client.getErr = errors.New("connection refused")
		client.setErr = errors.New("connection refused")
		inner := &stubEngine{name: EngineTesseract, res: Result{Text: "hello", Confidence: 77}}

		res, err := NewCached(inner, client).Recognize(s.ctx, doc)
		s.Require().NoError(err)
		s.Equal("hello", res.Text)
	})

	s.Run("corrupt entry is ignored", func() {
		client := newFakeRedis()
		client.data[CacheKey(EngineTesseract, doc)] = "{not json"
		inner := &stubEngine{name: EngineTesseract, res: Result{Text: "hello", Confidence: 77}}

		res, err := NewCached(inner, client).Recognize(s.ctx, doc)
		s.Require().NoError(err)
		s.Equal("hello", res.Text)
		s.Equal(1, inner.calls)
	})
}

func TestCacheKey(t *testing.T) {
	a := CacheKey(EngineTesseract, []byte("one"))
	b := CacheKey(EngineTesseract, []byte("two"))
	c := CacheKey(EngineOpenAI, []byte("one"))

	assert.True(t, strings.HasPrefix(a, "ocr:tesseract:"))
	assert.Len(t, strings.TrimPrefix(a, "ocr:tesseract:"), 64)
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestInstrument(t *testing.T) {
	ok := &stubEngine{name: "stub", res: Result{Text: "x", Confidence: 40}}
	res, err := Instrument(ok, nil, nil).Recognize(context.Background(), []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, 40, res.Confidence)

	failing := &stubEngine{name: "stub", err: errors.New("boom")}
	_, err = Instrument(failing, nil, nil).Recognize(context.Background(), []byte("x"))
	assert.Error(t, err)
	assert.Equal(t, "stub", Instrument(failing, nil, nil).Name())
}

func TestTextEngine(t *testing.T) {
	res, err := NewText().Recognize(context.Background(), []byte("Passport No: X"))
	require.NoError(t, err)
	assert.Equal(t, Result{Text: "Passport No: X", Confidence: 100, Engine: EngineText}, res)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		want    string
		wantErr bool
	}{
		{name: "default is tesseract", opts: Options{}, want: EngineTesseract},
		{name: "openai", opts: Options{Engine: EngineOpenAI, OpenAIKey: "k"}, want: EngineOpenAI},
		{name: "openai without key", opts: Options{Engine: EngineOpenAI}, wantErr: true},
		{name: "chain", opts: Options{Engine: EngineChain}, want: EngineChain},
		{name: "text", opts: Options{Engine: EngineText}, want: EngineText},
		{name: "unknown", opts: Options{Engine: "abbyy"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, err := New(tt.opts, nil)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, engine.Name())
		})
	}
}
