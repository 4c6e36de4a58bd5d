package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"docverify/internal/eligibility"
	"docverify/internal/eligibility/store"
	"docverify/pkg/testutil"
)

type PolicyHandlerSuite struct {
	suite.Suite
	router chi.Router
}

func TestPolicyHandlerSuite(t *testing.T) {
	suite.Run(t, new(PolicyHandlerSuite))
}

func (s *PolicyHandlerSuite) SetupTest() {
	resolver := eligibility.NewResolver(eligibility.DefaultPolicy(), eligibility.WithProfileStore(store.NewInMemoryStore()))
	s.router = chi.NewRouter()
	New(resolver, nil).Register(s.router)
}

func (s *PolicyHandlerSuite) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequestWithContext(context.Background(), method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *PolicyHandlerSuite) TestDefault() {
	rec := s.do(http.MethodGet, "/v1/policies/default", "")
	s.Require().Equal(http.StatusOK, rec.Code)

	var got eligibility.Policy
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &got))
	s.Equal(eligibility.DefaultPolicy(), got)
}

func (s *PolicyHandlerSuite) TestPutThenGet() {
	rec := s.do(http.MethodPut, "/v1/policies/strict", `{"minPassportValidityMonths": 12, "visaTypeRules": {"Student": {"minAge": 16}}}`)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodGet, "/v1/policies/strict", "")
	s.Require().Equal(http.StatusOK, rec.Code)

	var got ProfileResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &got))
	s.Equal("strict", got.Name)
	s.Equal(12, got.Policy.MinPassportValidityMonths)
	s.Equal(map[string]eligibility.VisaRule{"student": {MinAge: 16, MaxStayDays: 90}}, got.Policy.VisaTypeRules)

	rec = s.do(http.MethodGet, "/v1/policies", "")
	s.Require().Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"profiles": ["strict"]}`, rec.Body.String())
}

func (s *PolicyHandlerSuite) TestPutRejectsOutOfRangeValues() {
	rec := s.do(http.MethodPut, "/v1/policies/strict", `{"maxApplicantAge": 130}`)
	body := testutil.AssertStatusAndError(s.T(), rec, http.StatusBadRequest, "validation_error")
	s.Equal("maxApplicantAge must be between 0 and 120", body.Description)
}

func (s *PolicyHandlerSuite) TestPutRejectsMalformedBody() {
	rec := s.do(http.MethodPut, "/v1/policies/strict", `{"minApplicantAge": "old"}`)
	testutil.AssertStatusAndError(s.T(), rec, http.StatusBadRequest, "bad_request")
}

func (s *PolicyHandlerSuite) TestGetUnknownProfile() {
	rec := s.do(http.MethodGet, "/v1/policies/missing", "")
	body := testutil.AssertStatusAndError(s.T(), rec, http.StatusNotFound, "not_found")
	s.Equal("policy profile not found", body.Description)
}

func (s *PolicyHandlerSuite) TestProfilesWithoutStore() {
	router := chi.NewRouter()
	New(eligibility.NewResolver(eligibility.DefaultPolicy()), nil).Register(router)

	rec := testutil.DoRequest(router, testutil.NewRequestWithBody(s.T(), http.MethodPut, "/v1/policies/strict", `{}`))
	testutil.AssertStatusAndError(s.T(), rec, http.StatusServiceUnavailable, "service_unavailable")
}
