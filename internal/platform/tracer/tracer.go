// Package tracer is a small tracing abstraction over OpenTelemetry so the
// verification pipeline and OCR engines can emit spans without importing
// OTel APIs directly.
//
// Implementations:
//   - NoopTracer: for tests and when tracing is disabled
//   - OTelTracer: OpenTelemetry adapter for production
package tracer

import (
	"context"
	"time"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span. A non-nil err marks the span as failed.
	// End must be called exactly once, typically via defer.
	End(err error)

	SetAttributes(attrs ...Attribute)

	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	// Start creates a span. The returned context carries it and should be
	// passed to child operations.
	//
	//   ctx, span := t.Start(ctx, tracer.SpanOCRRecognize,
	//       tracer.String(tracer.AttrEngine, "tesseract"),
	//   )
	//   defer span.End(err)
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration creates a duration attribute in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// Span names.
const (
	SpanVerify       = "verification.verify"
	SpanDocument     = "verification.document"
	SpanOCRRecognize = "ocr.recognize"
)

// Attribute keys. Values must never carry applicant PII.
const (
	AttrDocumentCount = "document.count"
	AttrDocumentIndex = "document.index"
	AttrDetectedType  = "document.detected_type"
	AttrMrzFormat     = "mrz.format"
	AttrEngine        = "ocr.engine"
	AttrConfidence    = "confidence"
	AttrDecision      = "eligibility.decision"
	AttrCacheHit      = "cache.hit"
	AttrInputBytes    = "input.bytes"
)
