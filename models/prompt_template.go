package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// PromptTemplate represents a reusable AI prompt template row.
// Variables is the raw JSONB list; it mixes bare string names and structured
// descriptors, so decoding lives in internal/promptengine rather than here.
type PromptTemplate struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Prompt      string          `json:"prompt"`
	Variables   json.RawMessage `json:"variables,omitempty"` // JSONB array
	IsDefault   bool            `json:"is_default"`
	IsSystem    bool            `json:"is_system"` // System templates cannot be deleted
	CreatedBy   *uuid.UUID      `json:"created_by,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
