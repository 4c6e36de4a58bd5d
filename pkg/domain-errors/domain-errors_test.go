package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

type DomainErrorsSuite struct {
	suite.Suite
}

func TestDomainErrorsSuite(t *testing.T) {
	suite.Run(t, new(DomainErrorsSuite))
}

func (s *DomainErrorsSuite) TestErrorInterface() {
	s.Run("returns message when present", func() {
		err := &Error{Code: CodeNotFound, Message: "policy profile not found"}
		s.Equal("policy profile not found", err.Error())
	})

	s.Run("returns code when message is empty", func() {
		err := &Error{Code: CodeNotFound}
		s.Equal("not_found", err.Error())
	})
}

func (s *DomainErrorsSuite) TestIsMatching() {
	s.Run("matches by code only", func() {
		a := &Error{Code: CodeValidation, Message: "applicant fullName too short"}
		b := &Error{Code: CodeValidation, Message: "no documents"}
		s.True(a.Is(b))
	})

	s.Run("does not match different codes", func() {
		s.False((&Error{Code: CodeNotFound}).Is(&Error{Code: CodeInternal}))
	})

	s.Run("does not match non-domain errors", func() {
		s.False((&Error{Code: CodeNotFound}).Is(errors.New("not found")))
	})

	s.Run("works with errors.Is through chain", func() {
		inner := &Error{Code: CodeNotFound, Message: "original"}
		wrapped := fmt.Errorf("load profile: %w", inner)
		s.True(errors.Is(wrapped, &Error{Code: CodeNotFound}))
	})
}

func (s *DomainErrorsSuite) TestWrap() {
	s.Run("preserves existing domain code", func() {
		inner := New(CodeNotFound, "missing")
		err := Wrap(inner, CodeInternal, "lookup failed")
		s.True(HasCode(err, CodeNotFound))
		s.Equal("lookup failed", err.Error())
	})

	s.Run("assigns code to plain errors", func() {
		err := Wrap(errors.New("connection refused"), CodeUnavailable, "store unavailable")
		s.True(HasCode(err, CodeUnavailable))
		s.ErrorContains(errors.Unwrap(err), "connection refused")
	})
}

func (s *DomainErrorsSuite) TestHasCode() {
	s.False(HasCode(nil, CodeInternal))
	s.False(HasCode(errors.New("plain"), CodeInternal))
	s.True(HasCode(New(CodeBadRequest, "bad"), CodeBadRequest))
}
