package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/tracepoint/tracker/internal/domain"
)

// ProjectRepository handles project data access.
type ProjectRepository struct {
	db *sqlx.DB
}

// NewProjectRepository creates a new ProjectRepository.
func NewProjectRepository(db *sqlx.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// List returns all projects, newest first, each with its bug count.
func (r *ProjectRepository) List(ctx context.Context) ([]domain.ProjectSummary, error) {
	var projects []domain.ProjectSummary
	err := r.db.SelectContext(ctx, &projects,
		`SELECT p.id, p.name, p.description, p.project_details, p.created_at, p.updated_at,
		        COUNT(b.id) AS bug_count
		 FROM projects p
		 LEFT JOIN bugs b ON b.project_id = p.id
		 GROUP BY p.id
		 ORDER BY p.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

// FindByID retrieves a project by ID.
func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*domain.Project, error) {
	var project domain.Project
	err := r.db.GetContext(ctx, &project,
		`SELECT id, name, description, project_details, created_at, updated_at
		 FROM projects WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find project by id %s: %w", id, err)
	}
	return &project, nil
}

// Create inserts a new project and returns the stored row.
func (r *ProjectRepository) Create(ctx context.Context, name string, description *string) (*domain.Project, error) {
	var project domain.Project
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO projects (name, description)
		 VALUES ($1, $2)
		 RETURNING id, name, description, project_details, created_at, updated_at`,
		name, description,
	).StructScan(&project)
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return &project, nil
}

// Update replaces the project's editable fields and returns the stored row.
func (r *ProjectRepository) Update(ctx context.Context, id, name string, description, details *string) (*domain.Project, error) {
	var project domain.Project
	err := r.db.QueryRowxContext(ctx,
		`UPDATE projects
		 SET name = $2, description = $3, project_details = $4, updated_at = NOW()
		 WHERE id = $1
		 RETURNING id, name, description, project_details, created_at, updated_at`,
		id, name, description, details,
	).StructScan(&project)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update project %s: %w", id, err)
	}
	return &project, nil
}

// Delete removes the project row. Bug rows and custom options go with it via
// ON DELETE CASCADE; attachment blobs are the service's responsibility and
// must be removed before calling this.
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete project %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
