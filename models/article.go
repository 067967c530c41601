package models

import (
	"time"

	"github.com/google/uuid"
)

// Article publication statuses.
const (
	ArticleStatusDraft     = "draft"
	ArticleStatusPublished = "published"
)

// Article represents the structure of an article row in the database.
// Generation jobs insert drafts; publishing is a separate admin action.
type Article struct {
	ID             uuid.UUID  `json:"id"`
	Slug           string     `json:"slug"`
	Title          string     `json:"title"`
	Content        string     `json:"content"`
	Excerpt        *string    `json:"excerpt,omitempty"`
	Language       string     `json:"language"`
	CategoryID     *uuid.UUID `json:"category_id,omitempty"` // Nullable foreign key
	Status         string     `json:"status"`
	SEOTitle       *string    `json:"seo_title,omitempty"`
	SEODescription *string    `json:"seo_description,omitempty"`
	PublishedAt    *time.Time `json:"published_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Category represents an article category row.
type Category struct {
	ID       uuid.UUID `json:"id"`
	Slug     string    `json:"slug"`
	Name     string    `json:"name"`
	Language string    `json:"language"`
}
