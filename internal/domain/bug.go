package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// NoteEntry is one append-only note in a bug's client or developer channel.
type NoteEntry struct {
	Note      string    `json:"note"`
	Timestamp time.Time `json:"timestamp"`
}

// StatusEntry records one status transition in a bug's lifetime.
type StatusEntry struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// Attachment describes a file stored in the object store.
type Attachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
	Type string `json:"type"`
}

// NoteList is an ascending-by-timestamp sequence of notes, persisted as JSONB.
//
// Older rows stored the whole channel as a single free-text string. Scan
// normalizes that legacy shape into a one-entry list with a zero timestamp;
// the repository backfills the timestamp from the bug's date_added so the rest
// of the code never sees the old representation.
type NoteList []NoteEntry

// Value implements driver.Valuer.
func (n NoteList) Value() (driver.Value, error) {
	if n == nil {
		n = NoteList{}
	}
	return json.Marshal(n)
}

// Scan implements sql.Scanner.
func (n *NoteList) Scan(src any) error {
	raw, err := jsonbBytes(src)
	if err != nil {
		return fmt.Errorf("scan note list: %w", err)
	}
	if raw == nil {
		*n = NoteList{}
		return nil
	}

	var entries []NoteEntry
	if err := json.Unmarshal(raw, &entries); err == nil {
		*n = entries
		return nil
	}

	// Legacy shape: a bare JSON string holding the note text.
	var legacy string
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return fmt.Errorf("scan note list: unrecognized shape %q", raw)
	}
	if strings.TrimSpace(legacy) == "" {
		*n = NoteList{}
		return nil
	}
	*n = NoteList{{Note: legacy}}
	return nil
}

// StatusHistory is the append-only sequence of status transitions.
// It tolerates the same legacy string shape as NoteList.
type StatusHistory []StatusEntry

// Value implements driver.Valuer.
func (h StatusHistory) Value() (driver.Value, error) {
	if h == nil {
		h = StatusHistory{}
	}
	return json.Marshal(h)
}

// Scan implements sql.Scanner.
func (h *StatusHistory) Scan(src any) error {
	raw, err := jsonbBytes(src)
	if err != nil {
		return fmt.Errorf("scan status history: %w", err)
	}
	if raw == nil {
		*h = StatusHistory{}
		return nil
	}

	var entries []StatusEntry
	if err := json.Unmarshal(raw, &entries); err == nil {
		*h = entries
		return nil
	}

	var legacy string
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return fmt.Errorf("scan status history: unrecognized shape %q", raw)
	}
	if strings.TrimSpace(legacy) == "" {
		*h = StatusHistory{}
		return nil
	}
	*h = StatusHistory{{Status: legacy}}
	return nil
}

// AttachmentList is the sequence of attachment descriptors, persisted as JSONB.
type AttachmentList []Attachment

// Value implements driver.Valuer.
func (a AttachmentList) Value() (driver.Value, error) {
	if a == nil {
		a = AttachmentList{}
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner.
func (a *AttachmentList) Scan(src any) error {
	raw, err := jsonbBytes(src)
	if err != nil {
		return fmt.Errorf("scan attachment list: %w", err)
	}
	if raw == nil {
		*a = AttachmentList{}
		return nil
	}
	var list []Attachment
	if err := json.Unmarshal(raw, &list); err != nil {
		return fmt.Errorf("scan attachment list: %w", err)
	}
	*a = list
	return nil
}

func jsonbBytes(src any) ([]byte, error) {
	switch v := src.(type) {
	case nil:
		return nil, nil
	case []byte:
		if len(v) == 0 {
			return nil, nil
		}
		return v, nil
	case string:
		if v == "" {
			return nil, nil
		}
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported source type %T", src)
	}
}

// Bug represents a tracked issue within a project.
//
// ID and Label are assigned once at creation and never change. The note,
// status-history, and attachment sequences are append-only; the store performs
// whole-field replacement, so writers always persist the complete sequence.
type Bug struct {
	ID             string         `json:"id" db:"id"`
	ProjectID      string         `json:"project_id" db:"project_id"`
	Label          string         `json:"bug_id" db:"bug_id"`
	Portal         string         `json:"portal" db:"portal"`
	Priority       string         `json:"priority" db:"priority"`
	ModuleFeature  *string        `json:"module_feature,omitempty" db:"module_feature"`
	BugDescription *string        `json:"bug_description,omitempty" db:"bug_description"`
	Status         string         `json:"status" db:"status"`
	AssignedTo     string         `json:"assigned_to" db:"assigned_to"`
	BugLink        *string        `json:"bug_link,omitempty" db:"bug_link"`
	ClientNotes    NoteList       `json:"client_notes" db:"client_notes"`
	DeveloperNotes NoteList       `json:"developer_notes" db:"developer_notes"`
	StatusHistory  StatusHistory  `json:"status_history" db:"status_history"`
	Attachments    AttachmentList `json:"attachments" db:"attachments"`
	DateAdded      time.Time      `json:"date_added" db:"date_added"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at" db:"updated_at"`
}
