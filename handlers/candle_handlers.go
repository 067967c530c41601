package handlers

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	postgrest "github.com/supabase-community/postgrest-go"

	"candletime/api-gateway/internal/candlestate"
	"candletime/api-gateway/internal/geocluster"
	"candletime/api-gateway/models"
	"candletime/api-gateway/utils"
)

var validate = validator.New()

// Candle lifetime bounds in hours.
const (
	defaultCandleHours = 24
	maxCandleHours     = 168
)

// CreateCandleRequest defines the expected request body for lighting a candle.
type CreateCandleRequest struct {
	Title         string   `json:"title" validate:"required,min=1,max=100"`
	Message       *string  `json:"message,omitempty" validate:"omitempty,max=500"`
	CandleType    *string  `json:"candle_type,omitempty" validate:"omitempty,oneof=calm support memory gratitude focus"`
	DurationHours int      `json:"duration_hours" validate:"omitempty,min=1,max=168"`
	IsAnonymous   bool     `json:"is_anonymous"`
	Latitude      *float64 `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude     *float64 `json:"longitude,omitempty" validate:"omitempty,longitude"`
}

// CandleView is a candle row decorated with the derived fields every
// surface renders: effective status, its display label, remaining-time
// text and the short created date.
type CandleView struct {
	models.Candle
	EffectiveStatus string `json:"effective_status"`
	StatusLabel     string `json:"status_label"`
	RemainingTime   string `json:"remaining_time"`
	CreatedDate     string `json:"created_date"`
}

func decorateCandle(c models.Candle, now time.Time, lang string) CandleView {
	status := candlestate.EffectiveStatus(c, now)
	return CandleView{
		Candle:          c,
		EffectiveStatus: status,
		StatusLabel:     candlestate.StatusLabel(status, lang),
		RemainingTime:   candlestate.RemainingTime(c.ExpiresAt, now, lang),
		CreatedDate:     candlestate.ShortDate(c.CreatedAt),
	}
}

func requestLanguage(c *fiber.Ctx) string {
	lang := c.Query("lang")
	if lang == "" {
		return candlestate.DefaultLanguage
	}
	return lang
}

// CreateCandle godoc
// @Summary Light a new candle
// @Description Creates a candle with a title, optional message, type and geolocation. Expiry comes from duration_hours (default 24, max 168).
// @Tags candles
// @Accept json
// @Produce json
// @Param candle body CreateCandleRequest true "Candle to light"
// @Success 201 {object} CandleView
// @Failure 400 {object} map[string]interface{}
// @Router /candles [post]
func (h *ApplicationHandler) CreateCandle(c *fiber.Ctx) error {
	payload := new(CreateCandleRequest)
	if err := c.BodyParser(payload); err != nil {
		h.Logger.Errorf("Error parsing candle payload: %v", err)
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Cannot parse candle JSON: %v", err))
	}

	if err := validate.Struct(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Validation failed",
			"errors":  utils.FormatValidationErrors(err),
		})
	}

	// A candle with one coordinate and not the other never renders on the map.
	if (payload.Latitude == nil) != (payload.Longitude == nil) {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "latitude and longitude must be provided together")
	}

	hours := payload.DurationHours
	if hours == 0 {
		hours = defaultCandleHours
	}

	now := time.Now().UTC()
	candleData := map[string]interface{}{
		"title":        payload.Title,
		"status":       models.CandleStatusActive,
		"is_anonymous": payload.IsAnonymous,
		"created_at":   now,
		"updated_at":   now,
		"expires_at":   now.Add(time.Duration(hours) * time.Hour),
	}
	if payload.Message != nil {
		candleData["message"] = *payload.Message
	}
	if payload.CandleType != nil {
		candleData["candle_type"] = *payload.CandleType
	}
	if payload.Latitude != nil {
		candleData["latitude"] = *payload.Latitude
		candleData["longitude"] = *payload.Longitude
	}

	var results []models.Candle
	body, _, err := h.DB.From("candles").
		Insert(candleData, false, "", "representation", "").
		Execute()
	if err != nil {
		h.Logger.Errorf("Error inserting candle: %v", err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not create candle")
	}
	if err := json.Unmarshal(body, &results); err != nil || len(results) == 0 {
		h.Logger.Errorf("Error unmarshalling created candle: %v", err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not process candle creation response")
	}

	h.Logger.Infof("Candle %s created (expires %s)", results[0].ID, results[0].ExpiresAt)
	return utils.RespondWithJSON(c, fiber.StatusCreated, decorateCandle(results[0], now, requestLanguage(c)))
}

// ListCandles godoc
// @Summary List active candles
// @Description Returns the feed of currently burning candles, newest first.
// @Tags candles
// @Produce json
// @Param limit query int false "Page size (max 100, default 20)"
// @Param offset query int false "Offset into the feed"
// @Param lang query string false "Language for derived labels (en, de)"
// @Success 200 {array} CandleView
// @Router /candles [get]
func (h *ApplicationHandler) ListCandles(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	if offset < 0 {
		offset = 0
	}

	now := time.Now().UTC()
	body, _, err := h.DB.From("candles").
		Select("*", "", false).
		Eq("status", models.CandleStatusActive).
		Gt("expires_at", now.Format(time.RFC3339)).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Range(offset, offset+limit-1, "").
		Execute()
	if err != nil {
		h.Logger.Errorf("Error fetching candles: %v", err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not retrieve candles")
	}

	var candles []models.Candle
	if err := json.Unmarshal(body, &candles); err != nil {
		h.Logger.Errorf("Error unmarshalling candles: %v", err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not process candles data")
	}

	lang := requestLanguage(c)
	views := make([]CandleView, 0, len(candles))
	for _, candle := range candles {
		views = append(views, decorateCandle(candle, now, lang))
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, views)
}

// GetCandle godoc
// @Summary Get one candle
// @Tags candles
// @Produce json
// @Param id path string true "Candle ID"
// @Success 200 {object} CandleView
// @Failure 404 {object} map[string]interface{}
// @Router /candles/{id} [get]
func (h *ApplicationHandler) GetCandle(c *fiber.Ctx) error {
	candleID := c.Params("id")
	if _, err := uuid.Parse(candleID); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid candle ID format")
	}

	body, _, err := h.DB.From("candles").
		Select("*", "", false).
		Eq("id", candleID).
		Execute()
	if err != nil {
		h.Logger.Errorf("Error fetching candle %s: %v", candleID, err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not retrieve candle")
	}

	var candles []models.Candle
	if err := json.Unmarshal(body, &candles); err != nil {
		h.Logger.Errorf("Error unmarshalling candle %s: %v", candleID, err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not process candle data")
	}
	if len(candles) == 0 {
		return utils.RespondWithError(c, fiber.StatusNotFound, fmt.Sprintf("Candle %s not found", candleID))
	}

	return utils.RespondWithJSON(c, fiber.StatusOK, decorateCandle(candles[0], time.Now().UTC(), requestLanguage(c)))
}

// ExtinguishCandle godoc
// @Summary Extinguish a candle
// @Description Manually extinguishes a candle. An extinguished candle stays extinguished even past its expiry.
// @Tags candles
// @Produce json
// @Param id path string true "Candle ID"
// @Success 200 {object} CandleView
// @Failure 404 {object} map[string]interface{}
// @Router /candles/{id}/extinguish [post]
func (h *ApplicationHandler) ExtinguishCandle(c *fiber.Ctx) error {
	candleID := c.Params("id")
	if _, err := uuid.Parse(candleID); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid candle ID format")
	}

	updateData := map[string]interface{}{
		"status":     models.CandleStatusExtinguished,
		"updated_at": time.Now().UTC(),
	}

	body, _, err := h.DB.From("candles").
		Update(updateData, "representation", "").
		Eq("id", candleID).
		Execute()
	if err != nil {
		h.Logger.Errorf("Error extinguishing candle %s: %v", candleID, err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not extinguish candle")
	}

	var candles []models.Candle
	if err := json.Unmarshal(body, &candles); err != nil {
		h.Logger.Errorf("Error unmarshalling extinguished candle %s: %v", candleID, err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not process candle update response")
	}
	if len(candles) == 0 {
		return utils.RespondWithError(c, fiber.StatusNotFound, fmt.Sprintf("Candle %s not found", candleID))
	}

	h.Logger.Infof("Candle %s extinguished", candleID)
	return utils.RespondWithJSON(c, fiber.StatusOK, decorateCandle(candles[0], time.Now().UTC(), requestLanguage(c)))
}

// CandleMap godoc
// @Summary Clustered map markers
// @Description Returns active geolocated candles grouped into grid clusters for the world map.
// @Tags candles
// @Produce json
// @Param zoom query int false "Map zoom level (0-12)"
// @Success 200 {array} geocluster.Cluster
// @Router /candles/map [get]
func (h *ApplicationHandler) CandleMap(c *fiber.Ctx) error {
	zoom, _ := strconv.Atoi(c.Query("zoom", "2"))

	now := time.Now().UTC()
	body, _, err := h.DB.From("candles").
		Select("id,latitude,longitude,candle_type,status,expires_at", "", false).
		Eq("status", models.CandleStatusActive).
		Gt("expires_at", now.Format(time.RFC3339)).
		Execute()
	if err != nil {
		h.Logger.Errorf("Error fetching map candles: %v", err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not retrieve map data")
	}

	var candles []models.Candle
	if err := json.Unmarshal(body, &candles); err != nil {
		h.Logger.Errorf("Error unmarshalling map candles: %v", err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not process map data")
	}

	markers := make([]geocluster.Marker, 0, len(candles))
	for _, candle := range candles {
		if candle.Latitude == nil || candle.Longitude == nil {
			continue
		}
		marker := geocluster.Marker{
			ID:        candle.ID.String(),
			Latitude:  *candle.Latitude,
			Longitude: *candle.Longitude,
		}
		if candle.CandleType != nil {
			marker.CandleType = *candle.CandleType
		}
		markers = append(markers, marker)
	}

	return utils.RespondWithJSON(c, fiber.StatusOK, geocluster.Build(markers, zoom))
}
