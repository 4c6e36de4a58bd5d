package eligibility

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	dErrors "docverify/pkg/domain-errors"
	"docverify/pkg/platform/sentinel"
)

// ProfileStore persists named partial policies.
type ProfileStore interface {
	Get(ctx context.Context, name string) (*PolicyInput, error)
	Put(ctx context.Context, name string, in *PolicyInput) error
	List(ctx context.Context) ([]string, error)
}

// Resolver turns caller policy input into a sanitized Policy.
type Resolver struct {
	defaults Policy
	profiles ProfileStore
	logger   *slog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithProfileStore enables named policy profiles.
func WithProfileStore(store ProfileStore) ResolverOption {
	return func(r *Resolver) {
		r.profiles = store
	}
}

// WithLogger sets the resolver logger.
func WithLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewResolver builds a resolver around the given defaults.
func NewResolver(defaults Policy, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		defaults: defaults.Clone(),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Defaults returns a copy of the configured default policy.
func (r *Resolver) Defaults() Policy {
	return r.defaults.Clone()
}

// Resolve builds the policy for one request. A named profile is loaded
// first and inline input is sanitized against it; without a profile the
// inline input is sanitized against the defaults. Inline input that fails
// validation is ignored and the base policy is used unchanged.
func (r *Resolver) Resolve(ctx context.Context, profile string, inline *PolicyInput) (Policy, error) {
	base := r.Defaults()

	if name := strings.TrimSpace(profile); name != "" {
		stored, err := r.Profile(ctx, name)
		if err != nil {
			return Policy{}, err
		}
		base = stored
	}

	if inline == nil {
		return base, nil
	}
	if err := inline.Validate(); err != nil {
		r.logger.WarnContext(ctx, "ignoring invalid inline policy", "error", err)
		return base, nil
	}
	return Sanitize(inline, base), nil
}

// Profile returns the sanitized policy stored under name.
func (r *Resolver) Profile(ctx context.Context, name string) (Policy, error) {
	if r.profiles == nil {
		return Policy{}, dErrors.New(dErrors.CodeNotFound, "policy profiles are not configured")
	}
	in, err := r.profiles.Get(ctx, normalizeProfileName(name))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Policy{}, dErrors.New(dErrors.CodeNotFound, "policy profile not found")
		}
		return Policy{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load policy profile")
	}
	return Sanitize(in, r.defaults), nil
}

// SaveProfile validates and stores a partial policy under name.
func (r *Resolver) SaveProfile(ctx context.Context, name string, in *PolicyInput) (Policy, error) {
	if r.profiles == nil {
		return Policy{}, dErrors.New(dErrors.CodeUnavailable, "policy profiles are not configured")
	}
	name = normalizeProfileName(name)
	if name == "" {
		return Policy{}, dErrors.New(dErrors.CodeValidation, "profile name is required")
	}
	if in == nil {
		in = &PolicyInput{}
	}
	if err := in.Validate(); err != nil {
		return Policy{}, err
	}
	if err := r.profiles.Put(ctx, name, in); err != nil {
		return Policy{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store policy profile")
	}
	r.logger.InfoContext(ctx, "policy profile stored", "profile", name)
	return Sanitize(in, r.defaults), nil
}

// ListProfiles returns the stored profile names in ascending order.
func (r *Resolver) ListProfiles(ctx context.Context) ([]string, error) {
	if r.profiles == nil {
		return []string{}, nil
	}
	names, err := r.profiles.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list policy profiles")
	}
	return names, nil
}

func normalizeProfileName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
