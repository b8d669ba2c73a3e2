package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tracepoint/tracker/internal/domain"
	"github.com/tracepoint/tracker/internal/service"
)

// OptionHandler handles dropdown option endpoints.
type OptionHandler struct {
	options *service.OptionService
}

// NewOptionHandler creates a new OptionHandler.
func NewOptionHandler(options *service.OptionService) *OptionHandler {
	return &OptionHandler{options: options}
}

// List returns the selectable values for one category of a project's
// dropdowns: built-ins first, then custom additions and observed values.
func (h *OptionHandler) List(c echo.Context) error {
	values, err := h.options.Available(c.Request().Context(),
		c.Param("projectID"), domain.OptionCategory(c.Param("category")))
	if err != nil {
		return err
	}
	return JSONList(c, http.StatusOK, values, len(values))
}

type optionRequest struct {
	Value string `json:"value" validate:"required,max=100"`
}

// Add stores a custom option value for the category.
func (h *OptionHandler) Add(c echo.Context) error {
	var req optionRequest
	if err := c.Bind(&req); err != nil {
		return domain.ErrInvalidInput
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.options.Add(c.Request().Context(),
		c.Param("projectID"), domain.OptionCategory(c.Param("category")), req.Value); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Remove deletes a custom option value. Built-ins cannot be removed.
func (h *OptionHandler) Remove(c echo.Context) error {
	var req optionRequest
	if err := c.Bind(&req); err != nil {
		return domain.ErrInvalidInput
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.options.Remove(c.Request().Context(),
		c.Param("projectID"), domain.OptionCategory(c.Param("category")), req.Value); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
