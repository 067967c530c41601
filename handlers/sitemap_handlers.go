package handlers

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"

	"candletime/api-gateway/internal/candlestate"
	"candletime/api-gateway/models"
	"candletime/api-gateway/utils"
)

// SitemapEntry is one URL candidate for the SEO sitemap: an identifier
// (candle id or article slug) plus its short-formatted last-modified date.
type SitemapEntry struct {
	ID           string `json:"id"`
	LastModified string `json:"last_modified"`
}

// SitemapCandles godoc
// @Summary Sitemap data for active candles
// @Tags sitemap
// @Produce json
// @Success 200 {array} SitemapEntry
// @Router /sitemap/candles [get]
func (h *ApplicationHandler) SitemapCandles(c *fiber.Ctx) error {
	now := time.Now().UTC()
	body, _, err := h.DB.From("candles").
		Select("id,status,created_at,expires_at,updated_at", "", false).
		Eq("status", models.CandleStatusActive).
		Gt("expires_at", now.Format(time.RFC3339)).
		Execute()
	if err != nil {
		h.Logger.Errorf("Error fetching sitemap candles: %v", err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not retrieve sitemap data")
	}

	var candles []models.Candle
	if err := json.Unmarshal(body, &candles); err != nil {
		h.Logger.Errorf("Error unmarshalling sitemap candles: %v", err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not process sitemap data")
	}

	entries := make([]SitemapEntry, 0, len(candles))
	for _, candle := range candles {
		entries = append(entries, SitemapEntry{
			ID:           candle.ID.String(),
			LastModified: candlestate.ShortDate(candle.UpdatedAt),
		})
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, entries)
}

// SitemapArticles godoc
// @Summary Sitemap data for published articles
// @Tags sitemap
// @Produce json
// @Success 200 {array} SitemapEntry
// @Router /sitemap/articles [get]
func (h *ApplicationHandler) SitemapArticles(c *fiber.Ctx) error {
	body, _, err := h.DB.From("articles").
		Select("slug,status,updated_at", "", false).
		Eq("status", models.ArticleStatusPublished).
		Execute()
	if err != nil {
		h.Logger.Errorf("Error fetching sitemap articles: %v", err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not retrieve sitemap data")
	}

	var articles []models.Article
	if err := json.Unmarshal(body, &articles); err != nil {
		h.Logger.Errorf("Error unmarshalling sitemap articles: %v", err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not process sitemap data")
	}

	entries := make([]SitemapEntry, 0, len(articles))
	for _, article := range articles {
		entries = append(entries, SitemapEntry{
			ID:           article.Slug,
			LastModified: candlestate.ShortDate(article.UpdatedAt),
		})
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, entries)
}
