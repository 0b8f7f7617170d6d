package models

import "time"

type JobResponse struct {
	ID           string    `json:"id"`
	ProcessID    string    `json:"process_id,omitempty"`
	Mode         string    `json:"mode"`
	Model        string    `json:"model"`
	OutputFormat string    `json:"output_format"`
	Status       string    `json:"status"`
	Progress     int       `json:"progress"`
	ErrorMessage string    `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type JobListResponse struct {
	Jobs []JobResponse `json:"jobs"`
}

type JobStatusResponse struct {
	ProcessID string  `json:"process_id"`
	Status    string  `json:"status"`
	Progress  float64 `json:"progress,omitempty"`
	Error     string  `json:"error,omitempty"`
}

type CatalogResponse struct {
	Modes []CatalogMode `json:"modes"`
}

type CatalogMode struct {
	Mode   string         `json:"mode"`
	Models []CatalogModel `json:"models"`
}

type CatalogModel struct {
	Name       string `json:"name"`
	Generative bool   `json:"generative"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
