// Package verification runs the document pipeline: OCR, MRZ decoding, field
// reconciliation, per-document validation and eligibility scoring.
//
// Verify never fails. OCR errors degrade to empty text at zero confidence,
// unreadable fields skip their checks, and every input yields a complete
// Response.
package verification

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"docverify/internal/audit"
	"docverify/internal/document/extract"
	"docverify/internal/document/models"
	"docverify/internal/document/mrz"
	"docverify/internal/document/validate"
	"docverify/internal/eligibility"
	"docverify/internal/ocr"
	"docverify/internal/platform/tracer"
	"docverify/internal/verification/metrics"
	"docverify/pkg/confidence"
	"docverify/pkg/requestcontext"
)

type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

// Service orchestrates one verification request.
type Service struct {
	engine         ocr.Engine
	logger         *slog.Logger
	metrics        *metrics.Metrics
	tracer         tracer.Tracer
	auditPublisher AuditPublisher
	newID          func() string
	ocrTimeout     time.Duration
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

// WithOCRTimeout bounds each recognition call. Zero means no bound.
func WithOCRTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.ocrTimeout = d
	}
}

// WithIDGenerator overrides verification id generation.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// New constructs a Service around an OCR engine.
func New(engine ocr.Engine, opts ...Option) *Service {
	s := &Service{
		engine: engine,
		logger: slog.New(slog.DiscardHandler),
		tracer: tracer.NewNoop(),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Verify processes the documents one at a time in submission order and
// scores the batch. The request time from ctx drives every date computation.
func (s *Service) Verify(ctx context.Context, req Request) *Response {
	start := time.Now()
	now := requestcontext.Now(ctx)

	ctx, span := s.tracer.Start(ctx, tracer.SpanVerify,
		tracer.Int(tracer.AttrDocumentCount, len(req.Documents)),
	)
	defer span.End(nil)

	docs := make([]models.DocumentAnalysis, 0, len(req.Documents))
	for i, data := range req.Documents {
		docs = append(docs, s.AnalyzeDocument(ctx, i, data, req.Applicant, now))
	}

	global := validate.Global(docs)
	result := eligibility.Evaluate(eligibility.Input{
		Applicant: req.Applicant,
		Documents: docs,
		Policy:    req.Policy,
		Now:       now,
	})

	scores := make([]int, 0, len(docs)+len(global))
	for _, d := range docs {
		scores = append(scores, d.OverallConfidence)
	}
	for _, v := range global {
		scores = append(scores, v.Confidence)
	}

	resp := &Response{
		VerificationID:     s.newID(),
		Summary:            Summary(len(docs), result.Decision),
		OverallConfidence:  confidence.Average(confidence.Ints(scores...)...),
		Applicant:          req.Applicant,
		Documents:          docs,
		Eligibility:        result,
		Validations:        global,
		RecommendedActions: RecommendActions(result.Decision, docs),
	}

	span.SetAttributes(
		tracer.String(tracer.AttrDecision, string(result.Decision)),
		tracer.Int(tracer.AttrConfidence, resp.OverallConfidence),
	)
	s.metrics.IncrementDecision(string(result.Decision))
	s.metrics.ObserveVerifyLatency(time.Since(start))

	s.logger.InfoContext(ctx, "verification completed",
		"request_id", requestcontext.RequestID(ctx),
		"verification_id", resp.VerificationID,
		"document_count", len(docs),
		"decision", result.Decision,
		"score", result.Score,
		"overall_confidence", resp.OverallConfidence,
	)
	s.emitAudit(ctx, resp, now)

	return resp
}

// AnalyzeDocument runs the per-document pipeline for the document at index.
func (s *Service) AnalyzeDocument(ctx context.Context, index int, data []byte, applicant models.Applicant, now time.Time) models.DocumentAnalysis {
	ctx, span := s.tracer.Start(ctx, tracer.SpanDocument, tracer.Int(tracer.AttrDocumentIndex, index))
	defer span.End(nil)

	text := s.recognize(ctx, index, data)

	// Only the earliest MRZ candidate is decoded.
	record := mrz.DecodeText(text.Text)
	fields := extract.MergeMrz(extract.Extract(text.Text, now), record, now)
	detected := detectType(text.Text, fields)

	validations := validate.Document(validate.Input{
		Fields:    fields,
		Mrz:       record,
		Applicant: applicant,
		Now:       now,
	})

	scores := []int{text.Confidence}
	scores = append(scores, fields.Confidences()...)
	for _, v := range validations {
		scores = append(scores, v.Confidence)
	}

	analysis := models.DocumentAnalysis{
		Index:             index,
		DetectedType:      detected,
		RawText:           text.Text,
		OCRConfidence:     text.Confidence,
		Fields:            fields,
		Mrz:               record,
		Validations:       validations,
		OverallConfidence: confidence.Average(confidence.Ints(scores...)...),
	}

	typeLabel, formatLabel := "unknown", "none"
	if detected != nil {
		typeLabel = *detected
	}
	if record != nil {
		formatLabel = string(record.Format)
	}
	span.SetAttributes(
		tracer.String(tracer.AttrDetectedType, typeLabel),
		tracer.String(tracer.AttrMrzFormat, formatLabel),
		tracer.Int(tracer.AttrConfidence, analysis.OverallConfidence),
	)
	s.metrics.IncrementDocument(typeLabel)
	s.metrics.IncrementMrzFormat(formatLabel)

	return analysis
}

// DecodeMrz decodes the earliest MRZ candidate in text, or returns nil.
func (s *Service) DecodeMrz(ctx context.Context, text string) *models.ParsedMrz {
	record := mrz.DecodeText(text)
	format := "none"
	if record != nil {
		format = string(record.Format)
	}
	s.metrics.IncrementMrzFormat(format)
	s.logger.DebugContext(ctx, "mrz decoded",
		"request_id", requestcontext.RequestID(ctx),
		"format", format,
	)
	return record
}

// recognize absorbs engine failures into an empty, zero-confidence result.
func (s *Service) recognize(ctx context.Context, index int, data []byte) ocr.Result {
	if s.engine == nil {
		return ocr.Result{}
	}
	if s.ocrTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.ocrTimeout)
		defer cancel()
	}
	res, err := s.engine.Recognize(ctx, data)
	if err != nil {
		s.logger.WarnContext(ctx, "ocr failed, continuing with empty text",
			"request_id", requestcontext.RequestID(ctx),
			"document_index", index,
			"engine", s.engine.Name(),
			"error", err,
		)
		return ocr.Result{}
	}
	res.Confidence = confidence.Clamp(res.Confidence)
	return res
}

func (s *Service) emitAudit(ctx context.Context, resp *Response, now time.Time) {
	if s.auditPublisher == nil {
		return
	}
	err := s.auditPublisher.Emit(ctx, audit.Event{
		Name:              audit.EventVerificationCompleted,
		Timestamp:         now,
		VerificationID:    resp.VerificationID,
		RequestID:         requestcontext.RequestID(ctx),
		Decision:          string(resp.Eligibility.Decision),
		Score:             resp.Eligibility.Score,
		DocumentCount:     len(resp.Documents),
		OverallConfidence: resp.OverallConfidence,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to publish audit event",
			"request_id", requestcontext.RequestID(ctx),
			"verification_id", resp.VerificationID,
			"error", err,
		)
	}
}

// detectType prefers keywords in the text and falls back to the MRZ
// document code.
func detectType(text string, fields models.FieldMap) *string {
	if t, ok := extract.DetectType(text); ok {
		return &t
	}
	if t, ok := extract.TypeFromMrzCode(fields.Value(models.FieldDocumentType)); ok {
		return &t
	}
	return nil
}

// Summary renders the one-line report headline.
func Summary(documents int, decision eligibility.Decision) string {
	return fmt.Sprintf("Processed %d document(s); eligibility decision: %s.", documents, strings.ToUpper(string(decision)))
}

// RecommendActions derives next steps. Proceed is offered only when nothing
// else applies.
func RecommendActions(decision eligibility.Decision, docs []models.DocumentAnalysis) []RecommendedAction {
	actions := []RecommendedAction{}
	if decision != eligibility.DecisionEligible {
		actions = append(actions, RecommendedAction{Action: ActionEscalate, Priority: PriorityHigh})
	}
	for _, d := range docs {
		if d.HasFailure() {
			actions = append(actions, RecommendedAction{Action: ActionResubmit, Priority: PriorityMedium})
			break
		}
	}
	if len(actions) == 0 {
		actions = append(actions, RecommendedAction{Action: ActionProceed, Priority: PriorityLow})
	}
	return actions
}
