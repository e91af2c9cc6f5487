package api

import "github.com/mattjoyce/playhook/internal/history"

// HealthzResponse is returned by GET /healthz
type HealthzResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// PostEventResponse is returned by POST /events once dispatch has finished.
type PostEventResponse struct {
	Status string `json:"status"`
	Kind   string `json:"kind"`
}

// ListExecutionsResponse is returned by GET /executions
type ListExecutionsResponse struct {
	Executions []history.Record `json:"executions"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}
