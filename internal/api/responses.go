package api

import "gymops/internal/civil"

type ErrorResponse struct {
	Error   string            `json:"error" example:"package not found"`
	Code    string            `json:"code" example:"PACKAGE_NOT_FOUND"`
	Details []ValidationError `json:"details,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message" example:"ok"`
}

type HealthResponse struct {
	Status string     `json:"status" example:"ok"`
	Today  civil.Date `json:"today"`
}
