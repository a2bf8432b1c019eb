package dataset

import (
	"context"
	"sync"

	"github.com/vantage-crm/go-dashboards/components/dashboard"
)

// MockProvider implements dashboard.DatasetProvider using in-memory fixtures,
// for tests and local demos.
type MockProvider struct {
	mu       sync.RWMutex
	data     dashboard.Dataset
	loading  bool
	refreshN int
}

// NewMockProvider builds a mock provider from the given dataset.
func NewMockProvider(data dashboard.Dataset) *MockProvider {
	return &MockProvider{data: data}
}

// Snapshot returns a shallow copy of the fixture dataset.
func (p *MockProvider) Snapshot(context.Context) (dashboard.Dataset, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.data, nil
}

// IsLoading reports the configured loading flag.
func (p *MockProvider) IsLoading() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.loading
}

// SetLoading toggles the loading flag.
func (p *MockProvider) SetLoading(loading bool) {
	p.mu.Lock()
	p.loading = loading
	p.mu.Unlock()
}

// SetData replaces the fixture dataset.
func (p *MockProvider) SetData(data dashboard.Dataset) {
	p.mu.Lock()
	p.data = data
	p.mu.Unlock()
}

// SilentRefresh counts invocations so tests can assert refresh behavior.
func (p *MockProvider) SilentRefresh(context.Context) error {
	p.mu.Lock()
	p.refreshN++
	p.mu.Unlock()
	return nil
}

// RefreshCount reports how many silent refreshes ran.
func (p *MockProvider) RefreshCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.refreshN
}
