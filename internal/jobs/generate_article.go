package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"candletime/api-gateway/models"
)

// Generator is the slice of the AI client this job needs.
type Generator interface {
	GenerateArticle(ctx context.Context, prompt string) (string, error)
}

// executionTimeout bounds one generation call end to end.
const executionTimeout = 3 * time.Minute

// GenerateArticleJob produces one draft article from a fully substituted
// prompt. It owns its status record: every exit path leaves the job row in
// COMPLETED or FAILED.
type GenerateArticleJob struct {
	JobID      string
	Prompt     string
	Language   string
	CategoryID *uuid.UUID

	Generator Generator
	Store     *Store
	Logger    *logrus.Logger
}

// ID implements worker.Job.
func (j *GenerateArticleJob) ID() string { return j.JobID }

// Execute implements worker.Job.
func (j *GenerateArticleJob) Execute() error {
	if err := j.Store.UpdateJobStatus(j.JobID, models.JobStatusProcessing, nil, ""); err != nil {
		j.Logger.Errorf("Job %s: failed to mark processing: %v", j.JobID, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), executionTimeout)
	defer cancel()

	raw, err := j.Generator.GenerateArticle(ctx, j.Prompt)
	if err != nil {
		return j.fail(fmt.Errorf("generation call failed: %w", err))
	}

	draft, err := ParseGeneratedArticle(raw)
	if err != nil {
		return j.fail(fmt.Errorf("could not parse generated output: %w", err))
	}

	row := map[string]interface{}{
		"slug":     Slugify(draft.Title),
		"title":    draft.Title,
		"content":  draft.Content,
		"language": j.Language,
		"status":   models.ArticleStatusDraft,
	}
	if draft.Excerpt != "" {
		row["excerpt"] = draft.Excerpt
	}
	if j.CategoryID != nil {
		row["category_id"] = j.CategoryID.String()
	}

	article, err := j.Store.InsertDraftArticle(row)
	if err != nil {
		return j.fail(err)
	}

	output := map[string]interface{}{
		"article_id": article.ID.String(),
		"slug":       article.Slug,
	}
	if err := j.Store.UpdateJobStatus(j.JobID, models.JobStatusCompleted, output, ""); err != nil {
		j.Logger.Errorf("Job %s: draft stored but status update failed: %v", j.JobID, err)
	}
	return nil
}

func (j *GenerateArticleJob) fail(cause error) error {
	if err := j.Store.UpdateJobStatus(j.JobID, models.JobStatusFailed, nil, cause.Error()); err != nil {
		j.Logger.Errorf("Job %s: failed to record failure: %v", j.JobID, err)
	}
	return cause
}

// GeneratedArticle is the shape the model is instructed to answer with.
type GeneratedArticle struct {
	Title   string `json:"title"`
	Excerpt string `json:"excerpt"`
	Content string `json:"content"`
}

// ParseGeneratedArticle decodes the model output. The model is told to
// answer with a JSON object, but code fences and leading prose still happen;
// when no JSON can be found, the first line becomes the title and the rest
// the body.
func ParseGeneratedArticle(raw string) (*GeneratedArticle, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("empty generation output")
	}

	candidate := stripCodeFence(trimmed)
	if start := strings.Index(candidate, "{"); start >= 0 {
		if end := strings.LastIndex(candidate, "}"); end > start {
			var article GeneratedArticle
			if err := json.Unmarshal([]byte(candidate[start:end+1]), &article); err == nil && article.Title != "" && article.Content != "" {
				return &article, nil
			}
		}
	}

	// Plain-text fallback: first line is the title.
	lines := strings.SplitN(trimmed, "\n", 2)
	title := strings.TrimSpace(strings.TrimPrefix(lines[0], "#"))
	if title == "" {
		return nil, fmt.Errorf("generation output has no usable title")
	}
	content := ""
	if len(lines) > 1 {
		content = strings.TrimSpace(lines[1])
	}
	if content == "" {
		return nil, fmt.Errorf("generation output has no body")
	}
	return &GeneratedArticle{Title: title, Content: content}, nil
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns a title into a URL slug: lowercase, ASCII-ish, hyphen
// separated, capped at 80 characters.
func Slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = nonSlugChars.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > 80 {
		slug = strings.Trim(slug[:80], "-")
	}
	if slug == "" {
		slug = "article-" + uuid.NewString()[:8]
	}
	return slug
}
