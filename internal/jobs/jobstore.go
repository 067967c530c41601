// Package jobs contains the article-generation job executed by the worker
// pool, plus the job-status records it keeps in the database so the admin
// UI can poll progress.
package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	postgrest "github.com/supabase-community/postgrest-go"

	"candletime/api-gateway/models"
)

const jobStatusTable = "article_generation_jobs"
const articlesTable = "articles"

// Store reads and writes generation-job records through PostgREST.
type Store struct {
	client *postgrest.Client
}

// NewStore wraps a PostgREST client.
func NewStore(client *postgrest.Client) *Store {
	return &Store{client: client}
}

// CreateJobRecord inserts a PENDING job row and returns its generated id.
func (s *Store) CreateJobRecord(inputPayload interface{}) (string, error) {
	jobID := uuid.NewString()

	payloadBytes, err := json.Marshal(inputPayload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal input payload: %w", err)
	}

	record := models.GenerationJob{
		JobID:        jobID,
		Status:       models.JobStatusPending,
		InputPayload: payloadBytes,
	}

	var results []models.GenerationJob
	_, err = s.client.From(jobStatusTable).Insert(record, false, "", "representation", "").ExecuteTo(&results)
	if err != nil {
		return "", fmt.Errorf("failed to insert job record: %w", err)
	}
	if len(results) == 0 {
		return "", fmt.Errorf("no record returned after insert, job_id: %s", jobID)
	}
	return jobID, nil
}

// UpdateJobStatus advances a job record. outputDetails and errorMessage are
// optional; nil / empty leaves the columns alone.
func (s *Store) UpdateJobStatus(jobID, status string, outputDetails interface{}, errorMessage string) error {
	updateData := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}

	if outputDetails != nil {
		outputBytes, err := json.Marshal(outputDetails)
		if err != nil {
			return fmt.Errorf("failed to marshal output details: %w", err)
		}
		updateData["output_details"] = json.RawMessage(outputBytes)
	}
	if errorMessage != "" {
		updateData["error_message"] = errorMessage
	}

	var results []models.GenerationJob
	_, err := s.client.From(jobStatusTable).Update(updateData, "", "").Eq("job_id", jobID).ExecuteTo(&results)
	if err != nil {
		return fmt.Errorf("failed to update job record %s: %w", jobID, err)
	}
	return nil
}

// GetJobRecord fetches one job row by id.
func (s *Store) GetJobRecord(jobID string) (*models.GenerationJob, error) {
	var results []models.GenerationJob
	_, err := s.client.From(jobStatusTable).Select("*", "", false).Eq("job_id", jobID).ExecuteTo(&results)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch job record %s: %w", jobID, err)
	}
	if len(results) == 0 {
		return nil, nil
	}
	return &results[0], nil
}

// InsertDraftArticle stores a generated draft and returns the stored row.
func (s *Store) InsertDraftArticle(article map[string]interface{}) (*models.Article, error) {
	var results []models.Article
	_, err := s.client.From(articlesTable).Insert(article, false, "", "representation", "").ExecuteTo(&results)
	if err != nil {
		return nil, fmt.Errorf("failed to insert draft article: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no article returned after insert")
	}
	return &results[0], nil
}
