package handlers

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"candletime/api-gateway/internal/candlestate"
	"candletime/api-gateway/internal/jobs"
	"candletime/api-gateway/internal/promptengine"
	"candletime/api-gateway/models"
	"candletime/api-gateway/utils"
)

// GenerateArticleRequest drives the article generator. With a template_id
// set the declared variables apply; without one the simple path builds the
// prompt from topic, candle type and language.
type GenerateArticleRequest struct {
	TemplateID   *string           `json:"template_id,omitempty" validate:"omitempty,uuid"`
	Topic        string            `json:"topic"`
	CandleType   string            `json:"candle_type" validate:"omitempty,oneof=calm support memory gratitude focus"`
	Language     string            `json:"language" validate:"omitempty,oneof=en de"`
	CategoryID   *string           `json:"category_id,omitempty" validate:"omitempty,uuid"`
	CategoryName string            `json:"category_name,omitempty"`
	Variables    map[string]string `json:"variables,omitempty"`
}

// simplePrompt is the built-in prompt for the non-template path. Its
// markers line up with the keys of promptengine.BuildSimpleModeVariables.
const simplePrompt = "Write an SEO-oriented article for CandleTime about {topic}. " +
	"Write in the language with code {language}. " +
	"Use a warm, calm tone, short paragraphs and markdown headings. " +
	"The article belongs to the category {category_name}. {cta}"

// buildPrompt resolves the final prompt text for a generation request.
// It returns the prompt, the language, and a list of missing required
// variables (non-empty means the request is invalid).
func (h *ApplicationHandler) buildPrompt(payload *GenerateArticleRequest) (string, string, []string, error) {
	if payload.TemplateID == nil {
		// Blank-after-trim counts as missing, same as the template path.
		if strings.TrimSpace(payload.Topic) == "" {
			return "", "", []string{promptengine.KeyTopic}, nil
		}
		values := promptengine.BuildSimpleModeVariables(payload.Topic, payload.CandleType, payload.Language, payload.CategoryName)
		return promptengine.ReplaceVariables(simplePrompt, values), promptengine.GetVariable(values, promptengine.KeyLanguage), nil, nil
	}

	template, err := h.fetchTemplate(*payload.TemplateID)
	if err != nil {
		return "", "", nil, fmt.Errorf("could not load template: %w", err)
	}
	if template == nil {
		return "", "", nil, fmt.Errorf("template %s not found", *payload.TemplateID)
	}

	vars, err := promptengine.ParseVariables(template.Variables)
	if err != nil {
		return "", "", nil, err
	}

	// Declared defaults fill in before the required check.
	values := make(map[string]string, len(payload.Variables))
	for _, v := range vars {
		if v.Default != "" {
			values[v.Name] = v.Default
		}
	}
	for name, value := range payload.Variables {
		values[name] = value
	}

	if ok, missing := promptengine.ValidateRequiredVariables(vars, values); !ok {
		return "", "", missing, nil
	}

	language := payload.Language
	if language == "" {
		language = candlestate.DefaultLanguage
	}
	return promptengine.ReplaceVariables(template.Prompt, values), language, nil, nil
}

// GenerateArticle godoc
// @Summary Start an article-generation job
// @Description Validates the request, records a PENDING job and hands it to the worker pool. Poll the job endpoint for the result.
// @Tags admin
// @Accept json
// @Produce json
// @Param request body GenerateArticleRequest true "Generation request"
// @Success 202 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /admin/generate [post]
func (h *ApplicationHandler) GenerateArticle(c *fiber.Ctx) error {
	payload := new(GenerateArticleRequest)
	if err := c.BodyParser(payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Cannot parse generation JSON: %v", err))
	}
	if err := validate.Struct(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Validation failed",
			"errors":  utils.FormatValidationErrors(err),
		})
	}

	prompt, language, missing, err := h.buildPrompt(payload)
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, err.Error())
	}
	if len(missing) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Missing required variables",
			"missing": missing,
		})
	}

	jobID, err := h.Jobs.CreateJobRecord(payload)
	if err != nil {
		h.Logger.Errorf("Error creating generation job record: %v", err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not create generation job")
	}

	var categoryID *uuid.UUID
	if payload.CategoryID != nil {
		if parsed, err := uuid.Parse(*payload.CategoryID); err == nil {
			categoryID = &parsed
		}
	}

	job := &jobs.GenerateArticleJob{
		JobID:      jobID,
		Prompt:     prompt,
		Language:   language,
		CategoryID: categoryID,
		Generator:  h.Generator,
		Store:      h.Jobs,
		Logger:     h.Logger,
	}
	if err := h.Dispatcher.Submit(job); err != nil {
		// The record stays PENDING; mark it failed so the UI is not left polling.
		if updateErr := h.Jobs.UpdateJobStatus(jobID, models.JobStatusFailed, nil, err.Error()); updateErr != nil {
			h.Logger.Errorf("Error failing unqueued job %s: %v", jobID, updateErr)
		}
		return utils.RespondWithError(c, fiber.StatusServiceUnavailable, err.Error())
	}

	h.Logger.Infof("Generation job %s queued", jobID)
	return utils.RespondWithJSON(c, fiber.StatusAccepted, fiber.Map{"job_id": jobID})
}

// GetGenerationJob godoc
// @Summary Get a generation job's status
// @Tags admin
// @Produce json
// @Param jobId path string true "Job ID"
// @Success 200 {object} models.GenerationJob
// @Failure 404 {object} map[string]interface{}
// @Router /admin/generate/{jobId} [get]
func (h *ApplicationHandler) GetGenerationJob(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if _, err := uuid.Parse(jobID); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid job ID format")
	}

	record, err := h.Jobs.GetJobRecord(jobID)
	if err != nil {
		h.Logger.Errorf("Error fetching job %s: %v", jobID, err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not retrieve job")
	}
	if record == nil {
		return utils.RespondWithError(c, fiber.StatusNotFound, fmt.Sprintf("Job %s not found", jobID))
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, record)
}
