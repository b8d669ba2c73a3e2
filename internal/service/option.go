package service

import (
	"context"

	"github.com/tracepoint/tracker/internal/domain"
	"github.com/tracepoint/tracker/internal/sanitize"
)

// OptionStore defines the custom-option data access interface consumed by
// OptionService.
type OptionStore interface {
	List(ctx context.Context, projectID string, category domain.OptionCategory) ([]string, error)
	Add(ctx context.Context, projectID string, category domain.OptionCategory, value string) error
	Remove(ctx context.Context, projectID string, category domain.OptionCategory, value string) error
}

// OptionService computes the selectable dropdown values for a project and
// manages its custom additions.
type OptionService struct {
	options  OptionStore
	bugs     BugStore
	projects ProjectStore
}

// NewOptionService creates a new OptionService.
func NewOptionService(options OptionStore, bugs BugStore, projects ProjectStore) *OptionService {
	return &OptionService{options: options, bugs: bugs, projects: projects}
}

// Available returns the selectable values for one category: built-ins in
// their fixed order, then the custom additions. For assignees, values
// observed on the project's bugs are folded in so historical data stays
// selectable after its custom option is removed.
func (s *OptionService) Available(ctx context.Context, projectID string, category domain.OptionCategory) ([]string, error) {
	builtins := domain.DefaultOptions(category)
	if builtins == nil {
		return nil, &domain.ValidationError{Field: "category", Message: "unknown option category"}
	}

	if _, err := s.projects.FindByID(ctx, projectID); err != nil {
		return nil, err
	}

	custom, err := s.options.List(ctx, projectID, category)
	if err != nil {
		return nil, err
	}

	var observed []string
	if category == domain.OptionAssignedTo {
		observed, err = s.bugs.DistinctAssignees(ctx, projectID)
		if err != nil {
			return nil, err
		}
	}

	return domain.AvailableOptions(builtins, custom, observed), nil
}

// Add stores a custom option value. Adding a value that duplicates a built-in
// or an existing custom entry is a no-op.
func (s *OptionService) Add(ctx context.Context, projectID string, category domain.OptionCategory, value string) error {
	if domain.DefaultOptions(category) == nil {
		return &domain.ValidationError{Field: "category", Message: "unknown option category"}
	}

	clean := sanitize.Length(sanitize.Text(value), 100, 0)
	if clean == "" {
		return &domain.ValidationError{Field: "value", Message: "must not be empty"}
	}
	if domain.IsDefaultOption(category, clean) {
		return nil
	}

	if _, err := s.projects.FindByID(ctx, projectID); err != nil {
		return err
	}

	return s.options.Add(ctx, projectID, category, clean)
}

// Remove deletes a custom option value. Built-ins cannot be removed. Bugs
// already carrying the value keep it.
func (s *OptionService) Remove(ctx context.Context, projectID string, category domain.OptionCategory, value string) error {
	if domain.DefaultOptions(category) == nil {
		return &domain.ValidationError{Field: "category", Message: "unknown option category"}
	}
	if domain.IsDefaultOption(category, value) {
		return domain.ErrInvalidInput
	}

	if _, err := s.projects.FindByID(ctx, projectID); err != nil {
		return err
	}

	return s.options.Remove(ctx, projectID, category, value)
}
