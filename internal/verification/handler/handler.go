package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"docverify/internal/document/models"
	"docverify/internal/eligibility"
	"docverify/internal/verification"
	dErrors "docverify/pkg/domain-errors"
	"docverify/pkg/platform/httputil"
	"docverify/pkg/requestcontext"
)

const (
	defaultMaxUploadBytes = 32 << 20
	multipartMemory       = 8 << 20

	fieldApplicant     = "applicant"
	fieldPolicy        = "policy"
	fieldPolicyProfile = "policyProfile"
	fieldDocuments     = "documents"
)

// Service defines the verification operations the handler needs.
type Service interface {
	Verify(ctx context.Context, req verification.Request) *verification.Response
	DecodeMrz(ctx context.Context, text string) *models.ParsedMrz
}

// PolicyResolver builds the sanitized policy for one request.
type PolicyResolver interface {
	Resolve(ctx context.Context, profile string, inline *eligibility.PolicyInput) (eligibility.Policy, error)
}

// Handler exposes document verification over HTTP.
type Handler struct {
	service        Service
	policies       PolicyResolver
	logger         *slog.Logger
	maxUploadBytes int64
}

type Option func(*Handler)

// WithMaxUploadBytes caps the multipart request body.
func WithMaxUploadBytes(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxUploadBytes = n
		}
	}
}

// New constructs a verification handler with its dependencies.
func New(service Service, policies PolicyResolver, logger *slog.Logger, opts ...Option) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	h := &Handler{
		service:        service,
		policies:       policies,
		logger:         logger,
		maxUploadBytes: defaultMaxUploadBytes,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts verification endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/verifications", h.HandleVerify)
	r.Post("/v1/mrz/decode", h.HandleDecodeMrz)
}

// HandleVerify handles POST /v1/verifications.
//
// Multipart fields: applicant (JSON, required), policy (JSON partial policy,
// optional), policyProfile (name, optional), documents (files, at least one).
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		h.logger.WarnContext(ctx, "failed to parse multipart form",
			"request_id", requestID,
			"error", err,
		)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.WriteError(w, dErrors.New(dErrors.CodePayloadTooLarge, "upload exceeds size limit"))
			return
		}
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid multipart form"))
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck // temp file cleanup

	applicant, err := parseApplicant(r.FormValue(fieldApplicant))
	if err != nil {
		h.logger.WarnContext(ctx, "invalid applicant payload",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	inline, err := parsePolicy(r.FormValue(fieldPolicy))
	if err != nil {
		h.logger.WarnContext(ctx, "invalid policy payload",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	files := r.MultipartForm.File[fieldDocuments]
	if len(files) == 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "No documents provided for verification"))
		return
	}

	documents, err := readFiles(files)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to read uploaded documents",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read uploaded documents"))
		return
	}

	policy, err := h.policies.Resolve(ctx, r.FormValue(fieldPolicyProfile), inline)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to resolve policy",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	resp := h.service.Verify(ctx, verification.Request{
		Documents: documents,
		Applicant: applicant.ToModel(),
		Policy:    policy,
	})
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleDecodeMrz handles POST /v1/mrz/decode.
func (h *Handler) HandleDecodeMrz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[DecodeMrzRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, DecodeMrzResponse{Mrz: h.service.DecodeMrz(ctx, req.Text)})
}

func parseApplicant(raw string) (*ApplicantRequest, error) {
	if raw == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "Missing applicant payload")
	}
	var req ApplicantRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "Invalid applicant payload")
	}
	if err := httputil.PrepareRequest(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

// parsePolicy decodes an optional partial policy. Malformed JSON is
// rejected; well-formed input with out-of-range values is left for the
// resolver, which falls back to the base policy.
func parsePolicy(raw string) (*eligibility.PolicyInput, error) {
	if raw == "" {
		return nil, nil
	}
	var in eligibility.PolicyInput
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "Invalid policy payload")
	}
	return &in, nil
}

func readFiles(files []*multipart.FileHeader) ([][]byte, error) {
	documents := make([][]byte, 0, len(files))
	for _, fh := range files {
		data, err := readFile(fh)
		if err != nil {
			return nil, err
		}
		documents = append(documents, data)
	}
	return documents, nil
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close() //nolint:errcheck // read-only
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", fh.Filename, err)
	}
	return data, nil
}
