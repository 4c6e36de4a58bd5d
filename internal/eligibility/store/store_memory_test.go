package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"docverify/internal/eligibility"
	"docverify/internal/eligibility/store"
	"docverify/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	ctx   context.Context
	store *store.InMemoryStore
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = store.NewInMemoryStore()
}

func (s *InMemoryStoreSuite) TestGetMissing() {
	_, err := s.store.Get(s.ctx, "student")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestPutGetIsolation() {
	months := 3
	in := &eligibility.PolicyInput{
		MinPassportValidityMonths: &months,
		ProhibitedNationalities:   []string{"XXA"},
	}
	s.Require().NoError(s.store.Put(s.ctx, "strict", in))

	in.ProhibitedNationalities[0] = "ZZZ"

	got, err := s.store.Get(s.ctx, "strict")
	s.Require().NoError(err)
	s.Equal([]string{"XXA"}, got.ProhibitedNationalities, "stored copy is detached from the caller")
	s.Require().NotNil(got.MinPassportValidityMonths)
	s.Equal(3, *got.MinPassportValidityMonths)

	got.ProhibitedNationalities[0] = "YYY"
	again, err := s.store.Get(s.ctx, "strict")
	s.Require().NoError(err)
	s.Equal([]string{"XXA"}, again.ProhibitedNationalities, "returned copy is detached from the store")
}

func (s *InMemoryStoreSuite) TestPutOverwritesAndListSorts() {
	s.Require().NoError(s.store.Put(s.ctx, "tourist", &eligibility.PolicyInput{}))
	s.Require().NoError(s.store.Put(s.ctx, "student", &eligibility.PolicyInput{}))
	s.Require().NoError(s.store.Put(s.ctx, "tourist", &eligibility.PolicyInput{RequireDocumentTypes: []string{"passport"}}))

	names, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"student", "tourist"}, names)

	got, err := s.store.Get(s.ctx, "tourist")
	s.Require().NoError(err)
	s.Equal([]string{"passport"}, got.RequireDocumentTypes)
}
