package ocr

import (
	"context"
	"time"

	"docverify/internal/ocr/metrics"
	"docverify/internal/platform/tracer"
)

// InstrumentedEngine records a span and latency for every recognition.
type InstrumentedEngine struct {
	next    Engine
	tracer  tracer.Tracer
	metrics *metrics.Metrics
}

func Instrument(next Engine, t tracer.Tracer, m *metrics.Metrics) *InstrumentedEngine {
	if t == nil {
		t = tracer.NewNoop()
	}
	return &InstrumentedEngine{next: next, tracer: t, metrics: m}
}

func (e *InstrumentedEngine) Name() string {
	return e.next.Name()
}

func (e *InstrumentedEngine) Recognize(ctx context.Context, data []byte) (res Result, err error) {
	ctx, span := e.tracer.Start(ctx, tracer.SpanOCRRecognize,
		tracer.String(tracer.AttrEngine, e.next.Name()),
		tracer.Int(tracer.AttrInputBytes, len(data)),
	)
	defer func() { span.End(err) }()

	start := time.Now()
	res, err = e.next.Recognize(ctx, data)
	e.metrics.ObserveRecognizeLatency(e.next.Name(), time.Since(start))
	if err != nil {
		e.metrics.IncrementFailure(e.next.Name())
		return Result{}, err
	}
	span.SetAttributes(tracer.Int(tracer.AttrConfidence, res.Confidence))
	return res, nil
}
