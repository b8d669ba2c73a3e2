package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tracepoint/tracker/internal/domain"
	"github.com/tracepoint/tracker/internal/sanitize"
	"github.com/tracepoint/tracker/internal/storage"
)

// ProjectStore defines the project data access interface consumed by
// ProjectService.
type ProjectStore interface {
	List(ctx context.Context) ([]domain.ProjectSummary, error)
	FindByID(ctx context.Context, id string) (*domain.Project, error)
	Create(ctx context.Context, name string, description *string) (*domain.Project, error)
	Update(ctx context.Context, id, name string, description, details *string) (*domain.Project, error)
	Delete(ctx context.Context, id string) error
}

// BugStore defines the bug data access interface consumed by the services.
type BugStore interface {
	ListByProject(ctx context.Context, projectID string) ([]domain.Bug, error)
	FindByID(ctx context.Context, id string) (*domain.Bug, error)
	Create(ctx context.Context, bug *domain.Bug) (*domain.Bug, error)
	Update(ctx context.Context, bug *domain.Bug) (*domain.Bug, error)
	Delete(ctx context.Context, id string) error
	CountByProject(ctx context.Context, projectID string) (int, error)
	DistinctAssignees(ctx context.Context, projectID string) ([]string, error)
}

// ProjectService handles project lifecycle logic.
type ProjectService struct {
	projects ProjectStore
	bugs     BugStore
	blobs    storage.ObjectStore
	endpoint string
	bucket   string
	logger   *slog.Logger
	now      func() time.Time
}

// NewProjectService creates a new ProjectService.
func NewProjectService(projects ProjectStore, bugs BugStore, blobs storage.ObjectStore, endpoint, bucket string, logger *slog.Logger) *ProjectService {
	return &ProjectService{
		projects: projects,
		bugs:     bugs,
		blobs:    blobs,
		endpoint: endpoint,
		bucket:   bucket,
		logger:   logger,
		now:      time.Now,
	}
}

// List returns all projects with their bug counts.
func (s *ProjectService) List(ctx context.Context) ([]domain.ProjectSummary, error) {
	return s.projects.List(ctx)
}

// Get retrieves one project.
func (s *ProjectService) Get(ctx context.Context, id string) (*domain.Project, error) {
	return s.projects.FindByID(ctx, id)
}

// Create stores a new project and seeds it with an example bug labeled TP-0,
// so real bug labels start at TP-1 and a fresh project is never an empty
// screen.
func (s *ProjectService) Create(ctx context.Context, name string, description *string) (*domain.Project, error) {
	cleanName := sanitize.Length(sanitize.Text(name), 200, 0)
	if cleanName == "" {
		return nil, &domain.ValidationError{Field: "name", Message: "must not be empty"}
	}

	project, err := s.projects.Create(ctx, cleanName, sanitizeOptionalText(description, 2000))
	if err != nil {
		return nil, err
	}

	if err := s.seedExampleBug(ctx, project.ID); err != nil {
		// The project itself is fine without its example bug.
		s.logger.Warn("seed example bug failed",
			slog.String("project_id", project.ID), slog.String("error", err.Error()))
	}

	return project, nil
}

// Update replaces the project's name, description, and details.
func (s *ProjectService) Update(ctx context.Context, id, name string, description, details *string) (*domain.Project, error) {
	cleanName := sanitize.Length(sanitize.Text(name), 200, 0)
	if cleanName == "" {
		return nil, &domain.ValidationError{Field: "name", Message: "must not be empty"}
	}

	return s.projects.Update(ctx, id, cleanName,
		sanitizeOptionalText(description, 2000),
		sanitizeOptionalHTML(details, 10000))
}

// Delete removes a project and everything under it: attachment blobs first,
// then the project row (bug rows and custom options cascade in the database).
// A blob that fails to delete is logged and skipped so the project removal
// still completes.
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	if _, err := s.projects.FindByID(ctx, id); err != nil {
		return err
	}

	bugs, err := s.bugs.ListByProject(ctx, id)
	if err != nil {
		return fmt.Errorf("list bugs for delete: %w", err)
	}

	for _, bug := range bugs {
		for _, att := range bug.Attachments {
			key := storage.KeyFromURL(att.URL, s.endpoint, s.bucket)
			if err := s.blobs.Delete(ctx, key); err != nil {
				s.logger.Warn("delete attachment blob failed",
					slog.String("bug_id", bug.ID), slog.String("key", key),
					slog.String("error", err.Error()))
			}
		}
	}

	return s.projects.Delete(ctx, id)
}

func (s *ProjectService) seedExampleBug(ctx context.Context, projectID string) error {
	now := s.now()
	note := "This is an example bug. Edit or delete it, then add your own."
	desc := "Example entry showing how a tracked bug looks. " +
		"New bugs get sequential TP labels starting from TP-1."

	_, err := s.bugs.Create(ctx, &domain.Bug{
		ProjectID:      projectID,
		Label:          "TP-0",
		Portal:         domain.DefaultPortalOptions[0],
		Priority:       "Minor",
		BugDescription: &desc,
		Status:         "Open",
		AssignedTo:     "Developer",
		ClientNotes:    domain.NoteList{},
		DeveloperNotes: domain.AppendNote(nil, note, now),
		StatusHistory:  domain.SeedStatusHistory("Open", now),
		Attachments:    domain.AttachmentList{},
		DateAdded:      now,
	})
	return err
}

func sanitizeOptionalText(in *string, max int) *string {
	if in == nil {
		return nil
	}
	clean := sanitize.Length(sanitize.Text(*in), max, 0)
	if clean == "" {
		return nil
	}
	return &clean
}

func sanitizeOptionalHTML(in *string, max int) *string {
	if in == nil {
		return nil
	}
	clean := sanitize.Length(sanitize.HTML(*in), max, 0)
	if clean == "" {
		return nil
	}
	return &clean
}
