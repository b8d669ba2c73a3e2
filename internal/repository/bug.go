package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/tracepoint/tracker/internal/domain"
)

// BugRepository handles bug data access.
type BugRepository struct {
	db *sqlx.DB
}

// NewBugRepository creates a new BugRepository.
func NewBugRepository(db *sqlx.DB) *BugRepository {
	return &BugRepository{db: db}
}

const bugColumns = `id, project_id, bug_id, portal, priority, module_feature,
	bug_description, status, assigned_to, bug_link, client_notes,
	developer_notes, status_history, attachments, date_added, created_at, updated_at`

// ListByProject returns every bug in a project, newest first.
func (r *BugRepository) ListByProject(ctx context.Context, projectID string) ([]domain.Bug, error) {
	var bugs []domain.Bug
	err := r.db.SelectContext(ctx, &bugs,
		`SELECT `+bugColumns+` FROM bugs
		 WHERE project_id = $1
		 ORDER BY date_added DESC, created_at DESC`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list bugs for project %s: %w", projectID, err)
	}
	for i := range bugs {
		backfillLegacyTimestamps(&bugs[i])
	}
	return bugs, nil
}

// FindByID retrieves a bug by ID.
func (r *BugRepository) FindByID(ctx context.Context, id string) (*domain.Bug, error) {
	var bug domain.Bug
	err := r.db.GetContext(ctx, &bug,
		`SELECT `+bugColumns+` FROM bugs WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find bug by id %s: %w", id, err)
	}
	backfillLegacyTimestamps(&bug)
	return &bug, nil
}

// Create inserts a fully formed bug and returns the stored row. The caller is
// responsible for label assignment and for seeding the note and history
// sequences.
func (r *BugRepository) Create(ctx context.Context, bug *domain.Bug) (*domain.Bug, error) {
	var stored domain.Bug
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO bugs (project_id, bug_id, portal, priority, module_feature,
		                   bug_description, status, assigned_to, bug_link, client_notes,
		                   developer_notes, status_history, attachments, date_added)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 RETURNING `+bugColumns,
		bug.ProjectID, bug.Label, bug.Portal, bug.Priority, bug.ModuleFeature,
		bug.BugDescription, bug.Status, bug.AssignedTo, bug.BugLink, bug.ClientNotes,
		bug.DeveloperNotes, bug.StatusHistory, bug.Attachments, bug.DateAdded,
	).StructScan(&stored)
	if err != nil {
		return nil, fmt.Errorf("create bug: %w", err)
	}
	return &stored, nil
}

// Update persists the bug's editable fields with whole-field replacement: the
// note, history, and attachment sequences passed in overwrite what is stored.
func (r *BugRepository) Update(ctx context.Context, bug *domain.Bug) (*domain.Bug, error) {
	var stored domain.Bug
	err := r.db.QueryRowxContext(ctx,
		`UPDATE bugs
		 SET portal = $2, priority = $3, module_feature = $4, bug_description = $5,
		     status = $6, assigned_to = $7, bug_link = $8, client_notes = $9,
		     developer_notes = $10, status_history = $11, attachments = $12,
		     updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+bugColumns,
		bug.ID, bug.Portal, bug.Priority, bug.ModuleFeature, bug.BugDescription,
		bug.Status, bug.AssignedTo, bug.BugLink, bug.ClientNotes,
		bug.DeveloperNotes, bug.StatusHistory, bug.Attachments,
	).StructScan(&stored)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update bug %s: %w", bug.ID, err)
	}
	return &stored, nil
}

// Delete removes the bug row. Attachment blobs must be cleaned up by the
// caller first.
func (r *BugRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM bugs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete bug %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CountByProject returns the number of bugs in a project. Labels are minted
// from this count, so the example bug created with a new project keeps real
// bugs starting at TP-1.
func (r *BugRepository) CountByProject(ctx context.Context, projectID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM bugs WHERE project_id = $1`, projectID)
	if err != nil {
		return 0, fmt.Errorf("count bugs for project %s: %w", projectID, err)
	}
	return count, nil
}

// DistinctAssignees returns the assignee values observed on a project's bugs,
// so historical values stay selectable after their custom option is removed.
func (r *BugRepository) DistinctAssignees(ctx context.Context, projectID string) ([]string, error) {
	var values []string
	err := r.db.SelectContext(ctx, &values,
		`SELECT DISTINCT assigned_to FROM bugs
		 WHERE project_id = $1 AND assigned_to <> ''`, projectID)
	if err != nil {
		return nil, fmt.Errorf("distinct assignees for project %s: %w", projectID, err)
	}
	return values, nil
}

// backfillLegacyTimestamps gives entries recovered from the legacy bare-string
// JSON shape a usable timestamp. Those entries scan with a zero time; the
// bug's date_added is the best available stand-in.
func backfillLegacyTimestamps(bug *domain.Bug) {
	for i := range bug.ClientNotes {
		if bug.ClientNotes[i].Timestamp.IsZero() {
			bug.ClientNotes[i].Timestamp = bug.DateAdded
		}
	}
	for i := range bug.DeveloperNotes {
		if bug.DeveloperNotes[i].Timestamp.IsZero() {
			bug.DeveloperNotes[i].Timestamp = bug.DateAdded
		}
	}
	for i := range bug.StatusHistory {
		if bug.StatusHistory[i].Timestamp.IsZero() {
			bug.StatusHistory[i].Timestamp = bug.DateAdded
		}
	}
}
