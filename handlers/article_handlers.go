package handlers

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	postgrest "github.com/supabase-community/postgrest-go"

	"candletime/api-gateway/internal/candlestate"
	"candletime/api-gateway/internal/jobs"
	"candletime/api-gateway/models"
	"candletime/api-gateway/utils"
)

// ListArticles godoc
// @Summary List published articles
// @Tags articles
// @Produce json
// @Param language query string false "Filter by language"
// @Param category query string false "Filter by category id"
// @Success 200 {array} models.Article
// @Router /articles [get]
func (h *ApplicationHandler) ListArticles(c *fiber.Ctx) error {
	query := h.DB.From("articles").
		Select("*", "", false).
		Eq("status", models.ArticleStatusPublished)
	if language := c.Query("language"); language != "" {
		query = query.Eq("language", language)
	}
	if category := c.Query("category"); category != "" {
		query = query.Eq("category_id", category)
	}

	body, _, err := query.Order("published_at", &postgrest.OrderOpts{Ascending: false}).Execute()
	if err != nil {
		h.Logger.Errorf("Error fetching articles: %v", err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not retrieve articles")
	}

	var articles []models.Article
	if err := json.Unmarshal(body, &articles); err != nil {
		h.Logger.Errorf("Error unmarshalling articles: %v", err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not process articles data")
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, articles)
}

// GetArticleBySlug godoc
// @Summary Get a published article by slug
// @Tags articles
// @Produce json
// @Param slug path string true "Article slug"
// @Success 200 {object} models.Article
// @Failure 404 {object} map[string]interface{}
// @Router /articles/{slug} [get]
func (h *ApplicationHandler) GetArticleBySlug(c *fiber.Ctx) error {
	slug := c.Params("slug")

	body, _, err := h.DB.From("articles").
		Select("*", "", false).
		Eq("slug", slug).
		Eq("status", models.ArticleStatusPublished).
		Execute()
	if err != nil {
		h.Logger.Errorf("Error fetching article %s: %v", slug, err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not retrieve article")
	}

	var articles []models.Article
	if err := json.Unmarshal(body, &articles); err != nil {
		h.Logger.Errorf("Error unmarshalling article %s: %v", slug, err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not process article data")
	}
	if len(articles) == 0 {
		return utils.RespondWithError(c, fiber.StatusNotFound, fmt.Sprintf("Article %s not found", slug))
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, articles[0])
}

// CreateArticleRequest defines the admin request body for a manual draft.
type CreateArticleRequest struct {
	Title          string  `json:"title" validate:"required,min=3,max=200"`
	Content        string  `json:"content" validate:"required,min=50"`
	Excerpt        *string `json:"excerpt,omitempty" validate:"omitempty,max=500"`
	Language       string  `json:"language" validate:"omitempty,oneof=en de"`
	CategoryID     *string `json:"category_id,omitempty" validate:"omitempty,uuid"`
	SEOTitle       *string `json:"seo_title,omitempty" validate:"omitempty,max=70"`
	SEODescription *string `json:"seo_description,omitempty" validate:"omitempty,max=160"`
}

// CreateArticle godoc
// @Summary Create a draft article
// @Tags admin
// @Accept json
// @Produce json
// @Param article body CreateArticleRequest true "Draft article"
// @Success 201 {object} models.Article
// @Failure 400 {object} map[string]interface{}
// @Router /admin/articles [post]
func (h *ApplicationHandler) CreateArticle(c *fiber.Ctx) error {
	payload := new(CreateArticleRequest)
	if err := c.BodyParser(payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Cannot parse article JSON: %v", err))
	}
	if err := validate.Struct(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Validation failed",
			"errors":  utils.FormatValidationErrors(err),
		})
	}

	language := payload.Language
	if language == "" {
		language = candlestate.DefaultLanguage
	}

	now := time.Now().UTC()
	articleData := map[string]interface{}{
		"slug":       jobs.Slugify(payload.Title),
		"title":      payload.Title,
		"content":    payload.Content,
		"language":   language,
		"status":     models.ArticleStatusDraft,
		"created_at": now,
		"updated_at": now,
	}
	if payload.Excerpt != nil {
		articleData["excerpt"] = *payload.Excerpt
	}
	if payload.CategoryID != nil {
		articleData["category_id"] = *payload.CategoryID
	}
	if payload.SEOTitle != nil {
		articleData["seo_title"] = *payload.SEOTitle
	}
	if payload.SEODescription != nil {
		articleData["seo_description"] = *payload.SEODescription
	}

	body, _, err := h.DB.From("articles").
		Insert(articleData, false, "", "representation", "").
		Execute()
	if err != nil {
		h.Logger.Errorf("Error inserting article: %v", err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not create article")
	}

	var articles []models.Article
	if err := json.Unmarshal(body, &articles); err != nil || len(articles) == 0 {
		h.Logger.Errorf("Error unmarshalling created article: %v", err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not process article creation response")
	}
	return utils.RespondWithJSON(c, fiber.StatusCreated, articles[0])
}

// UpdateArticle godoc
// @Summary Update an article
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Article ID"
// @Success 200 {object} models.Article
// @Failure 404 {object} map[string]interface{}
// @Router /admin/articles/{id} [patch]
func (h *ApplicationHandler) UpdateArticle(c *fiber.Ctx) error {
	articleID := c.Params("id")
	if _, err := uuid.Parse(articleID); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid article ID format")
	}

	var payload map[string]interface{}
	if err := c.BodyParser(&payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
	}

	updateData := make(map[string]interface{})
	for _, field := range []string{"title", "content", "excerpt", "language", "category_id", "seo_title", "seo_description"} {
		if val, exists := payload[field]; exists {
			updateData[field] = val
		}
	}
	if len(updateData) == 0 {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "No updatable fields provided")
	}
	if title, ok := updateData["title"].(string); ok {
		updateData["slug"] = jobs.Slugify(title)
	}
	updateData["updated_at"] = time.Now().UTC()

	body, _, err := h.DB.From("articles").
		Update(updateData, "representation", "").
		Eq("id", articleID).
		Execute()
	if err != nil {
		h.Logger.Errorf("Error updating article %s: %v", articleID, err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not update article")
	}

	var articles []models.Article
	if err := json.Unmarshal(body, &articles); err != nil {
		h.Logger.Errorf("Error unmarshalling updated article %s: %v", articleID, err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not process article update response")
	}
	if len(articles) == 0 {
		return utils.RespondWithError(c, fiber.StatusNotFound, fmt.Sprintf("Article %s not found", articleID))
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, articles[0])
}

// PublishArticle godoc
// @Summary Publish a draft article
// @Tags admin
// @Produce json
// @Param id path string true "Article ID"
// @Success 200 {object} models.Article
// @Failure 404 {object} map[string]interface{}
// @Router /admin/articles/{id}/publish [post]
func (h *ApplicationHandler) PublishArticle(c *fiber.Ctx) error {
	articleID := c.Params("id")
	if _, err := uuid.Parse(articleID); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid article ID format")
	}

	now := time.Now().UTC()
	updateData := map[string]interface{}{
		"status":       models.ArticleStatusPublished,
		"published_at": now,
		"updated_at":   now,
	}

	body, _, err := h.DB.From("articles").
		Update(updateData, "representation", "").
		Eq("id", articleID).
		Execute()
	if err != nil {
		h.Logger.Errorf("Error publishing article %s: %v", articleID, err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not publish article")
	}

	var articles []models.Article
	if err := json.Unmarshal(body, &articles); err != nil {
		h.Logger.Errorf("Error unmarshalling published article %s: %v", articleID, err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not process publish response")
	}
	if len(articles) == 0 {
		return utils.RespondWithError(c, fiber.StatusNotFound, fmt.Sprintf("Article %s not found", articleID))
	}

	h.Logger.Infof("Article %s published", articleID)
	return utils.RespondWithJSON(c, fiber.StatusOK, articles[0])
}
