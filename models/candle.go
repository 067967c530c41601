package models

import (
	"time"

	"github.com/google/uuid"
)

// Candle lifecycle statuses. "expired" is never written to the database; it
// is computed from expires_at at read time (see internal/candlestate).
const (
	CandleStatusActive       = "active"
	CandleStatusExpired      = "expired"
	CandleStatusExtinguished = "extinguished"
)

// Candle types. A candle may also have no type at all (NULL column).
const (
	CandleTypeCalm      = "calm"
	CandleTypeSupport   = "support"
	CandleTypeMemory    = "memory"
	CandleTypeGratitude = "gratitude"
	CandleTypeFocus     = "focus"
)

// CandleTypes lists every valid candle type, in display order.
var CandleTypes = []string{
	CandleTypeCalm,
	CandleTypeSupport,
	CandleTypeMemory,
	CandleTypeGratitude,
	CandleTypeFocus,
}

// IsValidCandleType reports whether t is one of the known candle types.
func IsValidCandleType(t string) bool {
	for _, known := range CandleTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Candle represents the structure of a candle row in the database.
type Candle struct {
	ID          uuid.UUID  `json:"id"`
	UserID      *uuid.UUID `json:"user_id,omitempty"` // Nullable: anonymous candles have no owner
	Title       string     `json:"title"`
	Message     *string    `json:"message,omitempty"`
	CandleType  *string    `json:"candle_type,omitempty"`
	Status      string     `json:"status"` // active or extinguished as stored
	IsAnonymous bool       `json:"is_anonymous"`
	Latitude    *float64   `json:"latitude,omitempty"`  // Nullable DOUBLE PRECISION
	Longitude   *float64   `json:"longitude,omitempty"` // Nullable DOUBLE PRECISION
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   time.Time  `json:"expires_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
