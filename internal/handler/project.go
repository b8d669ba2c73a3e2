package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tracepoint/tracker/internal/domain"
	"github.com/tracepoint/tracker/internal/service"
)

// ProjectHandler handles project endpoints.
type ProjectHandler struct {
	projects *service.ProjectService
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projects *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

// List returns all projects with their bug counts.
func (h *ProjectHandler) List(c echo.Context) error {
	summaries, err := h.projects.List(c.Request().Context())
	if err != nil {
		return err
	}
	return JSONList(c, http.StatusOK, summaries, len(summaries))
}

// Get returns one project.
func (h *ProjectHandler) Get(c echo.Context) error {
	project, err := h.projects.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, project)
}

type createProjectRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

// Create stores a new project.
func (h *ProjectHandler) Create(c echo.Context) error {
	var req createProjectRequest
	if err := c.Bind(&req); err != nil {
		return domain.ErrInvalidInput
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	project, err := h.projects.Create(c.Request().Context(), req.Name, req.Description)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusCreated, project)
}

type updateProjectRequest struct {
	Name           string  `json:"name" validate:"required,max=200"`
	Description    *string `json:"description" validate:"omitempty,max=2000"`
	ProjectDetails *string `json:"project_details" validate:"omitempty,max=10000"`
}

// Update replaces the project's editable fields.
func (h *ProjectHandler) Update(c echo.Context) error {
	var req updateProjectRequest
	if err := c.Bind(&req); err != nil {
		return domain.ErrInvalidInput
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	project, err := h.projects.Update(c.Request().Context(), c.Param("id"),
		req.Name, req.Description, req.ProjectDetails)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, project)
}

// Delete removes a project and everything under it.
func (h *ProjectHandler) Delete(c echo.Context) error {
	if err := h.projects.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
