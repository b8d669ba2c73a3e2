package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tracepoint/tracker/internal/domain"
	"github.com/tracepoint/tracker/internal/ratelimit"
	"github.com/tracepoint/tracker/internal/service"
)

// BugHandler handles bug endpoints.
type BugHandler struct {
	bugs           *service.BugService
	limiter        *ratelimit.Limiter
	maxUploadBytes int64
}

// NewBugHandler creates a new BugHandler.
func NewBugHandler(bugs *service.BugService, limiter *ratelimit.Limiter, maxUploadBytes int64) *BugHandler {
	return &BugHandler{bugs: bugs, limiter: limiter, maxUploadBytes: maxUploadBytes}
}

// List returns a project's bugs, newest first. Query parameters portal,
// status, priority, and assigned_to narrow the result; empty or "all" values
// impose no constraint.
func (h *BugHandler) List(c echo.Context) error {
	filter := domain.BugFilter{
		Portal:     c.QueryParam("portal"),
		Status:     c.QueryParam("status"),
		Priority:   c.QueryParam("priority"),
		AssignedTo: c.QueryParam("assigned_to"),
	}

	bugs, err := h.bugs.List(c.Request().Context(), c.Param("projectID"), filter)
	if err != nil {
		return err
	}
	return JSONList(c, http.StatusOK, bugs, len(bugs))
}

// bugDetail is a bug plus its note channels in display order.
type bugDetail struct {
	domain.Bug
	ClientNotesDisplay    []domain.DisplayNote `json:"client_notes_display"`
	DeveloperNotesDisplay []domain.DisplayNote `json:"developer_notes_display"`
}

// Get returns one bug with display-ordered notes: latest first, ordinals
// anchored to insertion order.
func (h *BugHandler) Get(c echo.Context) error {
	bug, err := h.bugs.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, bugDetail{
		Bug:                   *bug,
		ClientNotesDisplay:    domain.DisplayNotes(bug.ClientNotes),
		DeveloperNotesDisplay: domain.DisplayNotes(bug.DeveloperNotes),
	})
}

type createBugRequest struct {
	Portal         string  `json:"portal" validate:"required,max=100"`
	Priority       string  `json:"priority" validate:"required,max=100"`
	ModuleFeature  *string `json:"module_feature" validate:"omitempty,max=500"`
	BugDescription *string `json:"bug_description" validate:"omitempty,max=10000"`
	Status         string  `json:"status" validate:"required,max=100"`
	AssignedTo     string  `json:"assigned_to" validate:"required,max=100"`
	BugLink        *string `json:"bug_link" validate:"omitempty,max=2000"`
	ClientNote     string  `json:"client_note" validate:"omitempty,max=5000"`
	DeveloperNote  string  `json:"developer_note" validate:"omitempty,max=5000"`
}

// Create stores a new bug in the project.
func (h *BugHandler) Create(c echo.Context) error {
	var req createBugRequest
	if err := c.Bind(&req); err != nil {
		return domain.ErrInvalidInput
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	bug, err := h.bugs.Create(c.Request().Context(), c.Param("projectID"), service.CreateBugInput{
		Portal:         req.Portal,
		Priority:       req.Priority,
		ModuleFeature:  req.ModuleFeature,
		BugDescription: req.BugDescription,
		Status:         req.Status,
		AssignedTo:     req.AssignedTo,
		BugLink:        req.BugLink,
		ClientNote:     req.ClientNote,
		DeveloperNote:  req.DeveloperNote,
	})
	if err != nil {
		return err
	}
	return JSON(c, http.StatusCreated, bug)
}

type updateBugRequest struct {
	Portal         string  `json:"portal" validate:"required,max=100"`
	Priority       string  `json:"priority" validate:"required,max=100"`
	ModuleFeature  *string `json:"module_feature" validate:"omitempty,max=500"`
	BugDescription *string `json:"bug_description" validate:"omitempty,max=10000"`
	Status         string  `json:"status" validate:"required,max=100"`
	OriginalStatus string  `json:"original_status" validate:"required,max=100"`
	AssignedTo     string  `json:"assigned_to" validate:"required,max=100"`
	BugLink        *string `json:"bug_link" validate:"omitempty,max=2000"`
	ClientNote     string  `json:"client_note" validate:"omitempty,max=5000"`
	DeveloperNote  string  `json:"developer_note" validate:"omitempty,max=5000"`
}

// Update reconciles an edit form against the stored bug. original_status is
// the status the form was opened with; the status history grows only when the
// submitted status differs from it.
func (h *BugHandler) Update(c echo.Context) error {
	var req updateBugRequest
	if err := c.Bind(&req); err != nil {
		return domain.ErrInvalidInput
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	bug, err := h.bugs.Update(c.Request().Context(), c.Param("id"), service.UpdateBugInput{
		Portal:         req.Portal,
		Priority:       req.Priority,
		ModuleFeature:  req.ModuleFeature,
		BugDescription: req.BugDescription,
		Status:         req.Status,
		OriginalStatus: req.OriginalStatus,
		AssignedTo:     req.AssignedTo,
		BugLink:        req.BugLink,
		ClientNote:     req.ClientNote,
		DeveloperNote:  req.DeveloperNote,
	})
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, bug)
}

// Delete removes a bug and its attachment blobs.
func (h *BugHandler) Delete(c echo.Context) error {
	if err := h.bugs.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// UploadAttachments stores the files of a multipart form under the "files"
// field. Files exceeding the size cap are rejected individually; the rest
// still upload, so the response can report a partial success.
func (h *BugHandler) UploadAttachments(c echo.Context) error {
	if !h.limiter.AllowUpload() {
		return domain.ErrRateLimited
	}

	form, err := c.MultipartForm()
	if err != nil {
		return fmt.Errorf("%w: expected multipart form", domain.ErrInvalidInput)
	}

	headers := form.File["files"]
	if len(headers) == 0 {
		return fmt.Errorf("%w: no files provided", domain.ErrInvalidInput)
	}

	var files []service.UploadFile
	var failures []service.UploadFailure
	var opened []io.Closer
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()

	for _, hdr := range headers {
		if hdr.Size > h.maxUploadBytes {
			failures = append(failures, service.UploadFailure{
				Name:   hdr.Filename,
				Reason: fmt.Sprintf("file exceeds %d byte limit", h.maxUploadBytes),
			})
			continue
		}

		src, err := hdr.Open()
		if err != nil {
			failures = append(failures, service.UploadFailure{
				Name: hdr.Filename, Reason: "could not read file",
			})
			continue
		}
		opened = append(opened, src)

		files = append(files, service.UploadFile{
			Name:        hdr.Filename,
			ContentType: hdr.Header.Get("Content-Type"),
			Size:        hdr.Size,
			Body:        src,
		})
	}

	bug, uploadFailures, err := h.bugs.UploadAttachments(c.Request().Context(), c.Param("id"), files)
	if err != nil {
		return err
	}
	failures = append(failures, uploadFailures...)

	return JSON(c, http.StatusOK, map[string]any{
		"bug":      bug,
		"failures": failures,
	})
}

// RemoveAttachment deletes one attachment by name.
func (h *BugHandler) RemoveAttachment(c echo.Context) error {
	bug, err := h.bugs.RemoveAttachment(c.Request().Context(), c.Param("id"), c.Param("name"))
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, bug)
}
