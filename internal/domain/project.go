package domain

import "time"

// Project represents a client project that bugs are reported against.
type Project struct {
	ID             string    `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	Description    *string   `json:"description,omitempty" db:"description"`
	ProjectDetails *string   `json:"project_details,omitempty" db:"project_details"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// ProjectSummary is a project together with its bug count, as shown on the dashboard.
type ProjectSummary struct {
	Project
	BugCount int `json:"bug_count" db:"bug_count"`
}
