package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"docverify/internal/eligibility"
	"docverify/pkg/platform/httputil"
	"docverify/pkg/requestcontext"
)

// Service defines the policy operations the handler needs.
type Service interface {
	Defaults() eligibility.Policy
	Profile(ctx context.Context, name string) (eligibility.Policy, error)
	SaveProfile(ctx context.Context, name string, in *eligibility.PolicyInput) (eligibility.Policy, error)
	ListProfiles(ctx context.Context) ([]string, error)
}

// Handler exposes the default policy and named policy profiles.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a policy handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts policy endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/v1/policies", h.HandleList)
	r.Get("/v1/policies/default", h.HandleDefault)
	r.Get("/v1/policies/{name}", h.HandleGet)
	r.Put("/v1/policies/{name}", h.HandlePut)
}

// HandleDefault handles GET /v1/policies/default.
func (h *Handler) HandleDefault(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.service.Defaults())
}

// HandleList handles GET /v1/policies.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	names, err := h.service.ListProfiles(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list policy profiles",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ProfileList{Profiles: names})
}

// HandleGet handles GET /v1/policies/{name}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := chi.URLParam(r, "name")

	policy, err := h.service.Profile(ctx, name)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ProfileResponse{Name: name, Policy: policy})
}

// HandlePut handles PUT /v1/policies/{name}. The body is a partial policy.
func (h *Handler) HandlePut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	name := chi.URLParam(r, "name")

	in, ok := httputil.DecodeAndPrepare[eligibility.PolicyInput](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	policy, err := h.service.SaveProfile(ctx, name, in)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to store policy profile",
			"request_id", requestID,
			"profile", name,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ProfileResponse{Name: name, Policy: policy})
}
