package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/tracepoint/tracker/internal/domain"
)

// OptionRepository handles per-project custom dropdown options.
type OptionRepository struct {
	db *sqlx.DB
}

// NewOptionRepository creates a new OptionRepository.
func NewOptionRepository(db *sqlx.DB) *OptionRepository {
	return &OptionRepository{db: db}
}

// List returns the custom option values stored for one project and category.
func (r *OptionRepository) List(ctx context.Context, projectID string, category domain.OptionCategory) ([]string, error) {
	var values []string
	err := r.db.SelectContext(ctx, &values,
		`SELECT value FROM custom_options
		 WHERE project_id = $1 AND category = $2
		 ORDER BY value`, projectID, category)
	if err != nil {
		return nil, fmt.Errorf("list %s options for project %s: %w", category, projectID, err)
	}
	return values, nil
}

// Add stores a custom option value. Re-adding an existing value is a no-op at
// the database level via the unique constraint.
func (r *OptionRepository) Add(ctx context.Context, projectID string, category domain.OptionCategory, value string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO custom_options (project_id, category, value)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (project_id, category, value) DO NOTHING`,
		projectID, category, value)
	if err != nil {
		return fmt.Errorf("add %s option for project %s: %w", category, projectID, err)
	}
	return nil
}

// Remove deletes a custom option value. Removing a value that was never added
// is not an error; bugs that carry the value are untouched.
func (r *OptionRepository) Remove(ctx context.Context, projectID string, category domain.OptionCategory, value string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM custom_options
		 WHERE project_id = $1 AND category = $2 AND value = $3`,
		projectID, category, value)
	if err != nil {
		return fmt.Errorf("remove %s option for project %s: %w", category, projectID, err)
	}
	return nil
}
