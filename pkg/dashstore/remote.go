package dashstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/vantage-crm/go-dashboards/components/dashboard"
)

// ErrNotFound is returned when the backing service has no such dashboard.
var ErrNotFound = fmt.Errorf("dashstore: dashboard not found")

// RemoteConfig configures the HTTP dashboard store.
type RemoteConfig struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// RemoteStore persists dashboards through the CRM's REST endpoints.
type RemoteStore struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewRemoteStore builds a store backed by the remote dashboard API.
func NewRemoteStore(cfg RemoteConfig) (*RemoteStore, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("dashstore: base url is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &RemoteStore{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  httpClient,
	}, nil
}

// Probe checks whether the remote API is reachable. Callers use it once at
// startup to decide between remote and local persistence.
func (s *RemoteStore) Probe(ctx context.Context) error {
	return s.do(ctx, http.MethodGet, "/api/Dashboards", nil, nil)
}

// List returns every dashboard.
func (s *RemoteStore) List(ctx context.Context) ([]dashboard.Dashboard, error) {
	var out []dashboard.Dashboard
	if err := s.do(ctx, http.MethodGet, "/api/Dashboards", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches a dashboard by id.
func (s *RemoteStore) Get(ctx context.Context, id int64) (dashboard.Dashboard, error) {
	var out dashboard.Dashboard
	if err := s.do(ctx, http.MethodGet, fmt.Sprintf("/api/Dashboards/%d", id), nil, &out); err != nil {
		return dashboard.Dashboard{}, err
	}
	return out, nil
}

// Create persists a new dashboard; the service assigns the id.
func (s *RemoteStore) Create(ctx context.Context, d dashboard.Dashboard) (dashboard.Dashboard, error) {
	var out dashboard.Dashboard
	if err := s.do(ctx, http.MethodPost, "/api/Dashboards", d, &out); err != nil {
		return dashboard.Dashboard{}, err
	}
	return out, nil
}

// Update replaces a dashboard.
func (s *RemoteStore) Update(ctx context.Context, d dashboard.Dashboard) (dashboard.Dashboard, error) {
	var out dashboard.Dashboard
	if err := s.do(ctx, http.MethodPut, fmt.Sprintf("/api/Dashboards/%d", d.ID), d, &out); err != nil {
		return dashboard.Dashboard{}, err
	}
	return out, nil
}

// Delete removes a dashboard.
func (s *RemoteStore) Delete(ctx context.Context, id int64) error {
	return s.do(ctx, http.MethodDelete, fmt.Sprintf("/api/Dashboards/%d", id), nil, nil)
}

// Duplicate copies a dashboard server-side.
func (s *RemoteStore) Duplicate(ctx context.Context, id int64) (dashboard.Dashboard, error) {
	var out dashboard.Dashboard
	if err := s.do(ctx, http.MethodPost, fmt.Sprintf("/api/Dashboards/%d/duplicate", id), nil, &out); err != nil {
		return dashboard.Dashboard{}, err
	}
	return out, nil
}

// FindByShareToken resolves a public share token.
func (s *RemoteStore) FindByShareToken(ctx context.Context, token string) (dashboard.Dashboard, error) {
	var out dashboard.Dashboard
	path := "/api/Dashboards/shared/" + url.PathEscape(token)
	if err := s.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return dashboard.Dashboard{}, err
	}
	return out, nil
}

func (s *RemoteStore) do(ctx context.Context, method, path string, payload any, target any) error {
	var body *bytes.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("dashstore: encode payload: %w", err)
		}
		body = bytes.NewReader(encoded)
	} else {
		body = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("dashstore: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("dashstore: http request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode >= 300 {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		return fmt.Errorf("dashstore: remote error %d: %s", resp.StatusCode, buf.String())
	}
	if target == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("dashstore: decode response: %w", err)
	}
	return nil
}
