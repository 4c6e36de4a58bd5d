package handler

import "docverify/internal/document/models"

// DecodeMrzResponse holds the decoded zone, or null when none was found.
type DecodeMrzResponse struct {
	Mrz *models.ParsedMrz `json:"mrz"`
}
