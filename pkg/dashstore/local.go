package dashstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/vantage-crm/go-dashboards/components/dashboard"
)

// LocalStore persists dashboards in a single JSON file. It is the fallback
// when the remote API is unreachable, so dashboards survive restarts even
// offline. Ids are assigned locally from a monotonic counter.
type LocalStore struct {
	path string

	mu     sync.Mutex
	boards map[int64]dashboard.Dashboard
	nextID int64
}

type localFile struct {
	NextID     int64                 `json:"next_id"`
	Dashboards []dashboard.Dashboard `json:"dashboards"`
}

// NewLocalStore loads (or initializes) the JSON file at path.
func NewLocalStore(path string) (*LocalStore, error) {
	s := &LocalStore{
		path:   path,
		boards: make(map[int64]dashboard.Dashboard),
		nextID: 1,
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *LocalStore) load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("dashstore: read %s: %w", s.path, err)
	}
	var file localFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("dashstore: parse %s: %w", s.path, err)
	}
	for _, d := range file.Dashboards {
		s.boards[d.ID] = d
	}
	if file.NextID > 0 {
		s.nextID = file.NextID
	}
	return nil
}

// flush must be called with the mutex held.
func (s *LocalStore) flush() error {
	file := localFile{NextID: s.nextID}
	for _, d := range s.boards {
		file.Dashboards = append(file.Dashboards, d)
	}
	sort.Slice(file.Dashboards, func(i, j int) bool {
		return file.Dashboards[i].ID < file.Dashboards[j].ID
	})
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("dashstore: encode store: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("dashstore: create dir: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("dashstore: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("dashstore: replace %s: %w", s.path, err)
	}
	return nil
}

// List returns dashboards ordered by id.
func (s *LocalStore) List(context.Context) ([]dashboard.Dashboard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]dashboard.Dashboard, 0, len(s.boards))
	for _, d := range s.boards {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Get fetches a dashboard by id.
func (s *LocalStore) Get(_ context.Context, id int64) (dashboard.Dashboard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.boards[id]
	if !ok {
		return dashboard.Dashboard{}, ErrNotFound
	}
	return d, nil
}

// Create assigns the next id and persists the dashboard.
func (s *LocalStore) Create(_ context.Context, d dashboard.Dashboard) (dashboard.Dashboard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d.ID = s.nextID
	s.nextID++
	s.boards[d.ID] = d
	if err := s.flush(); err != nil {
		delete(s.boards, d.ID)
		return dashboard.Dashboard{}, err
	}
	return d, nil
}

// Update replaces an existing dashboard.
func (s *LocalStore) Update(_ context.Context, d dashboard.Dashboard) (dashboard.Dashboard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.boards[d.ID]
	if !ok {
		return dashboard.Dashboard{}, ErrNotFound
	}
	s.boards[d.ID] = d
	if err := s.flush(); err != nil {
		s.boards[d.ID] = prev
		return dashboard.Dashboard{}, err
	}
	return d, nil
}

// Delete removes a dashboard.
func (s *LocalStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.boards[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.boards, id)
	if err := s.flush(); err != nil {
		s.boards[id] = prev
		return err
	}
	return nil
}

// Duplicate deep-copies a dashboard under a fresh id with a "(Copy)" suffix.
func (s *LocalStore) Duplicate(ctx context.Context, id int64) (dashboard.Dashboard, error) {
	s.mu.Lock()
	src, ok := s.boards[id]
	s.mu.Unlock()
	if !ok {
		return dashboard.Dashboard{}, ErrNotFound
	}
	copy := dashboard.CloneDashboard(src)
	copy.Name = src.Name + " (Copy)"
	copy.Share = dashboard.ShareSettings{}
	now := time.Now().UTC()
	copy.CreatedAt = now
	copy.UpdatedAt = now
	return s.Create(ctx, copy)
}

// FindByShareToken scans for a matching public token.
func (s *LocalStore) FindByShareToken(_ context.Context, token string) (dashboard.Dashboard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.boards {
		if d.Share.Token != "" && d.Share.Token == token {
			return d, nil
		}
	}
	return dashboard.Dashboard{}, ErrNotFound
}
