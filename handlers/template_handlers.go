package handlers

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	postgrest "github.com/supabase-community/postgrest-go"

	"candletime/api-gateway/internal/promptengine"
	"candletime/api-gateway/middleware"
	"candletime/api-gateway/models"
	"candletime/api-gateway/utils"
)

// TemplateRequest is the admin request body for creating or replacing a
// prompt template. Variables carries the raw JSONB list (bare names and
// descriptors are both accepted).
type TemplateRequest struct {
	Name        string          `json:"name" validate:"required"`
	Description *string         `json:"description,omitempty" validate:"omitempty,max=500"`
	Prompt      string          `json:"prompt" validate:"required"`
	Variables   json.RawMessage `json:"variables,omitempty"`
}

// validateTemplatePayload runs the structural template checks and decodes
// the variable list. Warnings are logged, never returned as errors.
func (h *ApplicationHandler) validateTemplatePayload(payload *TemplateRequest) ([]promptengine.Variable, []string, error) {
	vars, err := promptengine.ParseVariables(payload.Variables)
	if err != nil {
		return nil, nil, err
	}
	errs, warnings := promptengine.ValidateTemplate(payload.Name, payload.Prompt, vars)
	for _, warning := range warnings {
		h.Logger.Warnf("Template %q: %s", payload.Name, warning)
	}
	return vars, errs, nil
}

// ListTemplates godoc
// @Summary List prompt templates
// @Tags admin
// @Produce json
// @Success 200 {array} models.PromptTemplate
// @Router /admin/templates [get]
func (h *ApplicationHandler) ListTemplates(c *fiber.Ctx) error {
	body, _, err := h.DB.From("prompt_templates").
		Select("*", "", false).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Execute()
	if err != nil {
		h.Logger.Errorf("Error fetching templates: %v", err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not retrieve templates")
	}

	var templates []models.PromptTemplate
	if err := json.Unmarshal(body, &templates); err != nil {
		h.Logger.Errorf("Error unmarshalling templates: %v", err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not process templates data")
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, templates)
}

// CreateTemplate godoc
// @Summary Create a prompt template
// @Tags admin
// @Accept json
// @Produce json
// @Param template body TemplateRequest true "Template"
// @Success 201 {object} models.PromptTemplate
// @Failure 400 {object} map[string]interface{}
// @Router /admin/templates [post]
func (h *ApplicationHandler) CreateTemplate(c *fiber.Ctx) error {
	payload := new(TemplateRequest)
	if err := c.BodyParser(payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Cannot parse template JSON: %v", err))
	}

	_, validationErrs, err := h.validateTemplatePayload(payload)
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, err.Error())
	}
	if len(validationErrs) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Template validation failed",
			"errors":  validationErrs,
		})
	}

	now := time.Now().UTC()
	templateData := map[string]interface{}{
		"name":       payload.Name,
		"prompt":     payload.Prompt,
		"is_default": false,
		"is_system":  false,
		"created_at": now,
		"updated_at": now,
	}
	if payload.Description != nil {
		templateData["description"] = *payload.Description
	}
	if len(payload.Variables) > 0 {
		templateData["variables"] = payload.Variables
	}
	if adminID, ok := c.Locals(middleware.LocalsAdminUserID).(string); ok && adminID != "" {
		templateData["created_by"] = adminID
	}

	body, _, err := h.DB.From("prompt_templates").
		Insert(templateData, false, "", "representation", "").
		Execute()
	if err != nil {
		h.Logger.Errorf("Error inserting template: %v", err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not create template")
	}

	var templates []models.PromptTemplate
	if err := json.Unmarshal(body, &templates); err != nil || len(templates) == 0 {
		h.Logger.Errorf("Error unmarshalling created template: %v", err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not process template creation response")
	}
	return utils.RespondWithJSON(c, fiber.StatusCreated, templates[0])
}

// fetchTemplate loads one template row or returns nil when absent.
func (h *ApplicationHandler) fetchTemplate(templateID string) (*models.PromptTemplate, error) {
	body, _, err := h.DB.From("prompt_templates").
		Select("*", "", false).
		Eq("id", templateID).
		Execute()
	if err != nil {
		return nil, err
	}
	var templates []models.PromptTemplate
	if err := json.Unmarshal(body, &templates); err != nil {
		return nil, err
	}
	if len(templates) == 0 {
		return nil, nil
	}
	return &templates[0], nil
}

// callerOwnsTemplate reports whether the authenticated admin authored the
// template. Templates without an author belong to nobody.
func callerOwnsTemplate(c *fiber.Ctx, template *models.PromptTemplate) bool {
	adminID, _ := c.Locals(middleware.LocalsAdminUserID).(string)
	return adminID != "" && template.CreatedBy != nil && template.CreatedBy.String() == adminID
}

// UpdateTemplate godoc
// @Summary Update a prompt template
// @Description A template is editable by its author; system templates are editable by any admin.
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Template ID"
// @Success 200 {object} models.PromptTemplate
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /admin/templates/{id} [patch]
func (h *ApplicationHandler) UpdateTemplate(c *fiber.Ctx) error {
	templateID := c.Params("id")
	if _, err := uuid.Parse(templateID); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid template ID format")
	}

	existing, err := h.fetchTemplate(templateID)
	if err != nil {
		h.Logger.Errorf("Error fetching template %s: %v", templateID, err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not retrieve template")
	}
	if existing == nil {
		return utils.RespondWithError(c, fiber.StatusNotFound, fmt.Sprintf("Template %s not found", templateID))
	}
	if !existing.IsSystem && !callerOwnsTemplate(c, existing) {
		return utils.RespondWithError(c, fiber.StatusForbidden, "Only the author can edit this template")
	}

	payload := new(TemplateRequest)
	if err := c.BodyParser(payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Cannot parse template JSON: %v", err))
	}

	_, validationErrs, err := h.validateTemplatePayload(payload)
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, err.Error())
	}
	if len(validationErrs) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Template validation failed",
			"errors":  validationErrs,
		})
	}

	updateData := map[string]interface{}{
		"name":       payload.Name,
		"prompt":     payload.Prompt,
		"updated_at": time.Now().UTC(),
	}
	if payload.Description != nil {
		updateData["description"] = *payload.Description
	}
	if len(payload.Variables) > 0 {
		updateData["variables"] = payload.Variables
	}

	body, _, err := h.DB.From("prompt_templates").
		Update(updateData, "representation", "").
		Eq("id", templateID).
		Execute()
	if err != nil {
		h.Logger.Errorf("Error updating template %s: %v", templateID, err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not update template")
	}

	var templates []models.PromptTemplate
	if err := json.Unmarshal(body, &templates); err != nil || len(templates) == 0 {
		h.Logger.Errorf("Error unmarshalling updated template %s: %v", templateID, err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not process template update response")
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, templates[0])
}

// DeleteTemplate godoc
// @Summary Delete a prompt template
// @Description System templates cannot be deleted; other templates only by their author.
// @Tags admin
// @Produce json
// @Param id path string true "Template ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /admin/templates/{id} [delete]
func (h *ApplicationHandler) DeleteTemplate(c *fiber.Ctx) error {
	templateID := c.Params("id")
	if _, err := uuid.Parse(templateID); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid template ID format")
	}

	existing, err := h.fetchTemplate(templateID)
	if err != nil {
		h.Logger.Errorf("Error fetching template %s: %v", templateID, err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not retrieve template")
	}
	if existing == nil {
		return utils.RespondWithError(c, fiber.StatusNotFound, fmt.Sprintf("Template %s not found", templateID))
	}
	if existing.IsSystem {
		return utils.RespondWithError(c, fiber.StatusForbidden, "System templates cannot be deleted")
	}
	if !callerOwnsTemplate(c, existing) {
		return utils.RespondWithError(c, fiber.StatusForbidden, "Only the author can delete this template")
	}

	_, _, err = h.DB.From("prompt_templates").
		Delete("", "").
		Eq("id", templateID).
		Execute()
	if err != nil {
		h.Logger.Errorf("Error deleting template %s: %v", templateID, err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not delete template")
	}

	h.Logger.Infof("Template %s deleted", templateID)
	return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{"deleted": templateID})
}

// SetDefaultTemplate godoc
// @Summary Mark a template as the default
// @Description Clears is_default on every other template first, so at most one template holds the flag.
// @Tags admin
// @Produce json
// @Param id path string true "Template ID"
// @Success 200 {object} models.PromptTemplate
// @Failure 404 {object} map[string]interface{}
// @Router /admin/templates/{id}/default [post]
func (h *ApplicationHandler) SetDefaultTemplate(c *fiber.Ctx) error {
	templateID := c.Params("id")
	if _, err := uuid.Parse(templateID); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid template ID format")
	}

	existing, err := h.fetchTemplate(templateID)
	if err != nil {
		h.Logger.Errorf("Error fetching template %s: %v", templateID, err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not retrieve template")
	}
	if existing == nil {
		return utils.RespondWithError(c, fiber.StatusNotFound, fmt.Sprintf("Template %s not found", templateID))
	}

	// Clear the flag everywhere else before setting it; the table never
	// holds two defaults, even transiently.
	_, _, err = h.DB.From("prompt_templates").
		Update(map[string]interface{}{"is_default": false}, "", "").
		Neq("id", templateID).
		Execute()
	if err != nil {
		h.Logger.Errorf("Error clearing default templates: %v", err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not clear previous default")
	}

	body, _, err := h.DB.From("prompt_templates").
		Update(map[string]interface{}{"is_default": true, "updated_at": time.Now().UTC()}, "representation", "").
		Eq("id", templateID).
		Execute()
	if err != nil {
		h.Logger.Errorf("Error setting default template %s: %v", templateID, err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not set default template")
	}

	var templates []models.PromptTemplate
	if err := json.Unmarshal(body, &templates); err != nil || len(templates) == 0 {
		h.Logger.Errorf("Error unmarshalling default template %s: %v", templateID, err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not process default update response")
	}

	h.Logger.Infof("Template %s is now the default", templateID)
	return utils.RespondWithJSON(c, fiber.StatusOK, templates[0])
}
