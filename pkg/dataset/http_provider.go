package dataset

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/vantage-crm/go-dashboards/components/dashboard"
)

// HTTPConfig configures the HTTP dataset provider.
type HTTPConfig struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// HTTPProvider aggregates CRM collections into a single dataset by calling
// the REST endpoints of the backing service. The dataset is cached in memory;
// Snapshot only hits the network on the first call or after a refresh.
type HTTPProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client

	mu      sync.RWMutex
	current dashboard.Dataset
	loaded  bool
	loading bool
}

// NewHTTPProvider builds a provider capable of hitting a live CRM API.
func NewHTTPProvider(cfg HTTPConfig) (*HTTPProvider, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("dataset: base url is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPProvider{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  httpClient,
	}, nil
}

var sourcePaths = map[dashboard.DataSource]string{
	dashboard.SourceSales:         "/api/Sales",
	dashboard.SourceOffers:        "/api/Offers",
	dashboard.SourceContacts:      "/api/Contacts",
	dashboard.SourceTasks:         "/api/Tasks",
	dashboard.SourceArticles:      "/api/Articles",
	dashboard.SourceServiceOrders: "/api/ServiceOrders",
	dashboard.SourceDispatches:    "/api/Dispatches",
	dashboard.SourceTimeExpenses:  "/api/TimeExpenses",
}

// Snapshot returns the aggregated dataset, fetching it on first use.
func (p *HTTPProvider) Snapshot(ctx context.Context) (dashboard.Dataset, error) {
	p.mu.RLock()
	if p.loaded {
		defer p.mu.RUnlock()
		return p.current, nil
	}
	p.mu.RUnlock()

	p.mu.Lock()
	p.loading = true
	p.mu.Unlock()

	ds, err := p.fetchAll(ctx)

	p.mu.Lock()
	p.loading = false
	if err == nil {
		p.current = ds
		p.loaded = true
	}
	p.mu.Unlock()

	if err != nil {
		return dashboard.Dataset{}, err
	}
	return ds, nil
}

// IsLoading reports whether the initial fetch is still in flight.
func (p *HTTPProvider) IsLoading() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.loading && !p.loaded
}

// SilentRefresh re-fetches every collection without flipping the loading
// flag. Widgets keep rendering their current values until the swap.
func (p *HTTPProvider) SilentRefresh(ctx context.Context) error {
	ds, err := p.fetchAll(ctx)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.current = ds
	p.loaded = true
	p.mu.Unlock()
	return nil
}

func (p *HTTPProvider) fetchAll(ctx context.Context) (dashboard.Dataset, error) {
	ds := dashboard.Dataset{
		Items: make(map[dashboard.DataSource][]dashboard.Item, len(sourcePaths)),
	}
	for source, path := range sourcePaths {
		var items []dashboard.Item
		if err := p.do(ctx, http.MethodGet, path, nil, &items); err != nil {
			return dashboard.Dataset{}, fmt.Errorf("dataset: fetch %s: %w", source, err)
		}
		ds.Items[source] = items
	}
	if err := p.do(ctx, http.MethodGet, "/api/Sales/stats", nil, &ds.SalesStats); err != nil {
		return dashboard.Dataset{}, fmt.Errorf("dataset: fetch sales stats: %w", err)
	}
	if err := p.do(ctx, http.MethodGet, "/api/Offers/stats", nil, &ds.OffersStats); err != nil {
		return dashboard.Dataset{}, fmt.Errorf("dataset: fetch offers stats: %w", err)
	}
	return ds, nil
}

func (p *HTTPProvider) do(ctx context.Context, method, path string, payload any, target any) error {
	var body *bytes.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("dataset: encode payload: %w", err)
		}
		body = bytes.NewReader(encoded)
	} else {
		body = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("dataset: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("dataset: http request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		return fmt.Errorf("dataset: remote error %d: %s", resp.StatusCode, buf.String())
	}
	if target == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("dataset: decode response: %w", err)
	}
	return nil
}
