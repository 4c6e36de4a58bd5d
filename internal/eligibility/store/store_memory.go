// Package store persists named eligibility policy profiles.
package store

import (
	"context"
	"maps"
	"slices"
	"sync"

	"docverify/internal/eligibility"
	"docverify/pkg/platform/sentinel"
)

// InMemoryStore keeps profiles for the lifetime of the process.
type InMemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]eligibility.PolicyInput
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{profiles: make(map[string]eligibility.PolicyInput)}
}

func (s *InMemoryStore) Get(_ context.Context, name string) (*eligibility.PolicyInput, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	in, ok := s.profiles[name]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := copyInput(in)
	return &out, nil
}

func (s *InMemoryStore) Put(_ context.Context, name string, in *eligibility.PolicyInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[name] = copyInput(*in)
	return nil
}

func (s *InMemoryStore) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.profiles)), nil
}

// copyInput detaches slices and maps; pointer fields are replaced wholesale
// by callers, never written through.
func copyInput(in eligibility.PolicyInput) eligibility.PolicyInput {
	out := in
	out.ProhibitedNationalities = slices.Clone(in.ProhibitedNationalities)
	out.RequireDocumentTypes = slices.Clone(in.RequireDocumentTypes)
	out.VisaTypeRules = maps.Clone(in.VisaTypeRules)
	return out
}
