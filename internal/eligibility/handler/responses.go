package handler

import "docverify/internal/eligibility"

// ProfileResponse is the sanitized policy stored under a profile name.
type ProfileResponse struct {
	Name   string             `json:"name"`
	Policy eligibility.Policy `json:"policy"`
}

// ProfileList is the response for GET /v1/policies.
type ProfileList struct {
	Profiles []string `json:"profiles"`
}
