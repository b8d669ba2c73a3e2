package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/tracepoint/tracker/internal/domain"
	"github.com/tracepoint/tracker/internal/sanitize"
	"github.com/tracepoint/tracker/internal/storage"
)

// BugService handles bug lifecycle logic: label assignment, the append-only
// note and status-history sequences, and attachment storage.
type BugService struct {
	bugs     BugStore
	projects ProjectStore
	blobs    storage.ObjectStore
	endpoint string
	bucket   string
	logger   *slog.Logger
	now      func() time.Time
}

// NewBugService creates a new BugService.
func NewBugService(bugs BugStore, projects ProjectStore, blobs storage.ObjectStore, endpoint, bucket string, logger *slog.Logger) *BugService {
	return &BugService{
		bugs:     bugs,
		projects: projects,
		blobs:    blobs,
		endpoint: endpoint,
		bucket:   bucket,
		logger:   logger,
		now:      time.Now,
	}
}

// List returns a project's bugs, newest first, narrowed by the filter.
// Unset or "all" criteria impose no constraint.
func (s *BugService) List(ctx context.Context, projectID string, filter domain.BugFilter) ([]domain.Bug, error) {
	if _, err := s.projects.FindByID(ctx, projectID); err != nil {
		return nil, err
	}
	bugs, err := s.bugs.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return domain.FilterBugs(bugs, filter), nil
}

// Get retrieves one bug.
func (s *BugService) Get(ctx context.Context, id string) (*domain.Bug, error) {
	return s.bugs.FindByID(ctx, id)
}

// CreateBugInput carries a new-bug form submission.
type CreateBugInput struct {
	Portal         string
	Priority       string
	ModuleFeature  *string
	BugDescription *string
	Status         string
	AssignedTo     string
	BugLink        *string
	ClientNote     string
	DeveloperNote  string
}

// Create stores a new bug. The label is minted from the project's current bug
// count (the seeded example bug is TP-0, so real bugs start at TP-1), the
// status history is seeded with the initial status, and non-blank notes start
// their channels.
func (s *BugService) Create(ctx context.Context, projectID string, in CreateBugInput) (*domain.Bug, error) {
	if _, err := s.projects.FindByID(ctx, projectID); err != nil {
		return nil, err
	}

	link, err := cleanBugLink(in.BugLink)
	if err != nil {
		return nil, err
	}

	count, err := s.bugs.CountByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	bug := &domain.Bug{
		ProjectID:      projectID,
		Label:          fmt.Sprintf("TP-%d", count),
		Portal:         sanitize.Text(in.Portal),
		Priority:       sanitize.Text(in.Priority),
		ModuleFeature:  sanitizeOptionalText(in.ModuleFeature, 500),
		BugDescription: sanitizeOptionalHTML(in.BugDescription, 10000),
		Status:         sanitize.Text(in.Status),
		AssignedTo:     sanitize.Text(in.AssignedTo),
		BugLink:        link,
		ClientNotes:    domain.AppendNote(nil, sanitize.HTML(in.ClientNote), now),
		DeveloperNotes: domain.AppendNote(nil, sanitize.HTML(in.DeveloperNote), now),
		StatusHistory:  domain.SeedStatusHistory(sanitize.Text(in.Status), now),
		Attachments:    domain.AttachmentList{},
		DateAdded:      now,
	}

	return s.bugs.Create(ctx, bug)
}

// UpdateBugInput carries an edit-form submission. OriginalStatus is the status
// the form was opened with; history grows only when the submitted status
// differs from it.
type UpdateBugInput struct {
	Portal         string
	Priority       string
	ModuleFeature  *string
	BugDescription *string
	Status         string
	OriginalStatus string
	AssignedTo     string
	BugLink        *string
	ClientNote     string
	DeveloperNote  string
}

// Update reconciles an edit against the stored bug: scalar fields are
// replaced, non-blank notes are appended to their channels, and a status
// change appends a history entry. The stored sequences are never truncated.
func (s *BugService) Update(ctx context.Context, id string, in UpdateBugInput) (*domain.Bug, error) {
	bug, err := s.bugs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	link, err := cleanBugLink(in.BugLink)
	if err != nil {
		return nil, err
	}

	now := s.now()
	status := sanitize.Text(in.Status)

	bug.Portal = sanitize.Text(in.Portal)
	bug.Priority = sanitize.Text(in.Priority)
	bug.ModuleFeature = sanitizeOptionalText(in.ModuleFeature, 500)
	bug.BugDescription = sanitizeOptionalHTML(in.BugDescription, 10000)
	bug.AssignedTo = sanitize.Text(in.AssignedTo)
	bug.BugLink = link
	bug.ClientNotes = domain.AppendNote(bug.ClientNotes, sanitize.HTML(in.ClientNote), now)
	bug.DeveloperNotes = domain.AppendNote(bug.DeveloperNotes, sanitize.HTML(in.DeveloperNote), now)
	bug.StatusHistory = domain.NextStatusHistory(bug.StatusHistory, in.OriginalStatus, status, now)
	bug.Status = status

	return s.bugs.Update(ctx, bug)
}

// Delete removes a bug and its attachment blobs. A blob that fails to delete
// is logged and skipped so the row removal still completes.
func (s *BugService) Delete(ctx context.Context, id string) error {
	bug, err := s.bugs.FindByID(ctx, id)
	if err != nil {
		return err
	}

	for _, att := range bug.Attachments {
		key := storage.KeyFromURL(att.URL, s.endpoint, s.bucket)
		if err := s.blobs.Delete(ctx, key); err != nil {
			s.logger.Warn("delete attachment blob failed",
				slog.String("bug_id", bug.ID), slog.String("key", key),
				slog.String("error", err.Error()))
		}
	}

	return s.bugs.Delete(ctx, id)
}

// UploadFile is one file from a multipart upload.
type UploadFile struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadFailure reports one file that could not be stored.
type UploadFailure struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// UploadAttachments stores files sequentially and appends a descriptor per
// stored blob to the bug's attachment list. Files are independent: a failure
// is recorded and the rest proceed, so the result can be a partial success.
// The list is persisted once, after the last file.
func (s *BugService) UploadAttachments(ctx context.Context, bugID string, files []UploadFile) (*domain.Bug, []UploadFailure, error) {
	bug, err := s.bugs.FindByID(ctx, bugID)
	if err != nil {
		return nil, nil, err
	}

	var failures []UploadFailure
	uploaded := 0

	for _, f := range files {
		name := sanitize.FileName(f.Name)
		key := storage.ObjectKey(bug.ProjectID, name, s.now())

		url, err := s.blobs.Upload(ctx, key, f.ContentType, f.Body, f.Size)
		if err != nil {
			s.logger.Warn("upload attachment failed",
				slog.String("bug_id", bugID), slog.String("file", name),
				slog.String("error", err.Error()))
			failures = append(failures, UploadFailure{Name: name, Reason: "storage upload failed"})
			continue
		}

		bug.Attachments = append(bug.Attachments, domain.Attachment{
			Name: name,
			URL:  url,
			Size: f.Size,
			Type: f.ContentType,
		})
		uploaded++
	}

	if uploaded == 0 {
		return bug, failures, nil
	}

	stored, err := s.bugs.Update(ctx, bug)
	if err != nil {
		return nil, failures, err
	}
	return stored, failures, nil
}

// RemoveAttachment deletes one attachment by name: the blob first, then the
// descriptor. Ordering matters — if the blob delete fails, the descriptor
// stays so the file remains reachable and the operation can be retried.
func (s *BugService) RemoveAttachment(ctx context.Context, bugID, name string) (*domain.Bug, error) {
	bug, err := s.bugs.FindByID(ctx, bugID)
	if err != nil {
		return nil, err
	}

	next, found := domain.RemoveAttachment(bug.Attachments, name)
	if !found {
		return nil, domain.ErrNotFound
	}

	var removed domain.Attachment
	for _, att := range bug.Attachments {
		if att.Name == name {
			removed = att
			break
		}
	}

	key := storage.KeyFromURL(removed.URL, s.endpoint, s.bucket)
	if err := s.blobs.Delete(ctx, key); err != nil {
		return nil, fmt.Errorf("delete attachment blob: %w", err)
	}

	bug.Attachments = next
	return s.bugs.Update(ctx, bug)
}

func cleanBugLink(in *string) (*string, error) {
	if in == nil || *in == "" {
		return nil, nil
	}
	clean, ok := sanitize.URL(*in)
	if !ok {
		return nil, &domain.ValidationError{Field: "bug_link", Message: "must be a valid http or https URL"}
	}
	return &clean, nil
}
