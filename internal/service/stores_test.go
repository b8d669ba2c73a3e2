package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/tracepoint/tracker/internal/domain"
)

const (
	testEndpoint = "http://blobs.local"
	testBucket   = "tp"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeProjectStore struct {
	projects map[string]*domain.Project
	nextID   int
}

func newFakeProjectStore() *fakeProjectStore {
	return &fakeProjectStore{projects: make(map[string]*domain.Project)}
}

func (s *fakeProjectStore) List(_ context.Context) ([]domain.ProjectSummary, error) {
	out := make([]domain.ProjectSummary, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, domain.ProjectSummary{Project: *p})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeProjectStore) FindByID(_ context.Context, id string) (*domain.Project, error) {
	p, ok := s.projects[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *fakeProjectStore) Create(_ context.Context, name string, description *string) (*domain.Project, error) {
	s.nextID++
	p := &domain.Project{
		ID:          fmt.Sprintf("proj-%d", s.nextID),
		Name:        name,
		Description: description,
	}
	s.projects[p.ID] = p
	cp := *p
	return &cp, nil
}

func (s *fakeProjectStore) Update(_ context.Context, id, name string, description, details *string) (*domain.Project, error) {
	p, ok := s.projects[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	p.Name = name
	p.Description = description
	p.ProjectDetails = details
	cp := *p
	return &cp, nil
}

func (s *fakeProjectStore) Delete(_ context.Context, id string) error {
	if _, ok := s.projects[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.projects, id)
	return nil
}

type fakeBugStore struct {
	bugs   map[string]*domain.Bug
	nextID int
}

func newFakeBugStore() *fakeBugStore {
	return &fakeBugStore{bugs: make(map[string]*domain.Bug)}
}

func (s *fakeBugStore) ListByProject(_ context.Context, projectID string) ([]domain.Bug, error) {
	var out []domain.Bug
	for _, b := range s.bugs {
		if b.ProjectID == projectID {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DateAdded.After(out[j].DateAdded) })
	return out, nil
}

func (s *fakeBugStore) FindByID(_ context.Context, id string) (*domain.Bug, error) {
	b, ok := s.bugs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *fakeBugStore) Create(_ context.Context, bug *domain.Bug) (*domain.Bug, error) {
	s.nextID++
	cp := *bug
	cp.ID = fmt.Sprintf("bug-%d", s.nextID)
	s.bugs[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (s *fakeBugStore) Update(_ context.Context, bug *domain.Bug) (*domain.Bug, error) {
	if _, ok := s.bugs[bug.ID]; !ok {
		return nil, domain.ErrNotFound
	}
	cp := *bug
	s.bugs[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (s *fakeBugStore) Delete(_ context.Context, id string) error {
	if _, ok := s.bugs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.bugs, id)
	return nil
}

func (s *fakeBugStore) CountByProject(_ context.Context, projectID string) (int, error) {
	count := 0
	for _, b := range s.bugs {
		if b.ProjectID == projectID {
			count++
		}
	}
	return count, nil
}

func (s *fakeBugStore) DistinctAssignees(_ context.Context, projectID string) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	for _, b := range s.bugs {
		if b.ProjectID != projectID || b.AssignedTo == "" {
			continue
		}
		if _, ok := seen[b.AssignedTo]; ok {
			continue
		}
		seen[b.AssignedTo] = struct{}{}
		out = append(out, b.AssignedTo)
	}
	sort.Strings(out)
	return out, nil
}

type fakeOptionStore struct {
	values map[string][]string // projectID + "/" + category
}

func newFakeOptionStore() *fakeOptionStore {
	return &fakeOptionStore{values: make(map[string][]string)}
}

func (s *fakeOptionStore) key(projectID string, category domain.OptionCategory) string {
	return projectID + "/" + string(category)
}

func (s *fakeOptionStore) List(_ context.Context, projectID string, category domain.OptionCategory) ([]string, error) {
	return append([]string{}, s.values[s.key(projectID, category)]...), nil
}

func (s *fakeOptionStore) Add(_ context.Context, projectID string, category domain.OptionCategory, value string) error {
	k := s.key(projectID, category)
	for _, v := range s.values[k] {
		if v == value {
			return nil
		}
	}
	s.values[k] = append(s.values[k], value)
	return nil
}

func (s *fakeOptionStore) Remove(_ context.Context, projectID string, category domain.OptionCategory, value string) error {
	k := s.key(projectID, category)
	out := s.values[k][:0]
	for _, v := range s.values[k] {
		if v != value {
			out = append(out, v)
		}
	}
	s.values[k] = out
	return nil
}

type fakeBlobStore struct {
	stored     map[string]bool
	deleted    []string
	failUpload bool
	failDelete bool
	uploadHook func(key string) error
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{stored: make(map[string]bool)}
}

func (s *fakeBlobStore) Upload(_ context.Context, key, _ string, _ io.Reader, _ int64) (string, error) {
	if s.uploadHook != nil {
		if err := s.uploadHook(key); err != nil {
			return "", err
		}
	}
	if s.failUpload {
		return "", errors.New("storage unavailable")
	}
	s.stored[key] = true
	return s.PublicURL(key), nil
}

func (s *fakeBlobStore) Delete(_ context.Context, key string) error {
	if s.failDelete {
		return errors.New("storage unavailable")
	}
	delete(s.stored, key)
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *fakeBlobStore) PublicURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", testEndpoint, testBucket, key)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
