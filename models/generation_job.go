package models

import (
	"encoding/json"
	"time"
)

// Generation job statuses, matching the article_generation_jobs table.
const (
	JobStatusPending    = "PENDING"
	JobStatusProcessing = "PROCESSING"
	JobStatusCompleted  = "COMPLETED"
	JobStatusFailed     = "FAILED"
)

// GenerationJob maps to the article_generation_jobs table.
// Pointers and omitempty keep null columns out of inserts.
type GenerationJob struct {
	JobID         string          `json:"job_id"`
	Status        string          `json:"status"`
	InputPayload  json.RawMessage `json:"input_payload,omitempty"`
	OutputDetails json.RawMessage `json:"output_details,omitempty"`
	ErrorMessage  *string         `json:"error_message,omitempty"`
	CreatedAt     time.Time       `json:"created_at,omitempty"`
	UpdatedAt     time.Time       `json:"updated_at,omitempty"`
}
