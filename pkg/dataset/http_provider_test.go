package dataset

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/vantage-crm/go-dashboards/components/dashboard"
)

func crmStub(t *testing.T, hits *atomic.Int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		if r.Header.Get("Authorization") != "Bearer key" {
			t.Errorf("auth header missing on %s", r.URL.Path)
		}
		switch r.URL.Path {
		case "/api/Sales/stats":
			json.NewEncoder(w).Encode(dashboard.SourceStats{ConversionRate: 42.5})
		case "/api/Offers/stats":
			json.NewEncoder(w).Encode(dashboard.SourceStats{ConversionRate: 20})
		case "/api/Sales":
			json.NewEncoder(w).Encode([]dashboard.Item{{"id": 1}, {"id": 2}})
		default:
			w.Write([]byte("[]"))
		}
	}))
}

func TestHTTPProviderSnapshot(t *testing.T) {
	srv := crmStub(t, nil)
	defer srv.Close()

	p, err := NewHTTPProvider(HTTPConfig{BaseURL: srv.URL, APIKey: "key"})
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}

	ds, err := p.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(ds.Items[dashboard.SourceSales]) != 2 {
		t.Fatalf("sales items: %+v", ds.Items[dashboard.SourceSales])
	}
	if len(ds.Items) != len(sourcePaths) {
		t.Fatalf("every source must be fetched: %d", len(ds.Items))
	}
	if ds.SalesStats.ConversionRate != 42.5 || ds.OffersStats.ConversionRate != 20 {
		t.Fatalf("stats: %+v %+v", ds.SalesStats, ds.OffersStats)
	}
	if p.IsLoading() {
		t.Fatal("loading must clear after the fetch")
	}
}

func TestHTTPProviderSnapshotIsCached(t *testing.T) {
	var hits atomic.Int64
	srv := crmStub(t, &hits)
	defer srv.Close()

	p, _ := NewHTTPProvider(HTTPConfig{BaseURL: srv.URL, APIKey: "key"})

	if _, err := p.Snapshot(context.Background()); err != nil {
		t.Fatalf("first snapshot: %v", err)
	}
	first := hits.Load()
	if _, err := p.Snapshot(context.Background()); err != nil {
		t.Fatalf("second snapshot: %v", err)
	}
	if hits.Load() != first {
		t.Fatal("cached snapshots must not refetch")
	}
}

func TestHTTPProviderSilentRefresh(t *testing.T) {
	var hits atomic.Int64
	srv := crmStub(t, &hits)
	defer srv.Close()

	p, _ := NewHTTPProvider(HTTPConfig{BaseURL: srv.URL, APIKey: "key"})
	_, _ = p.Snapshot(context.Background())

	before := hits.Load()
	if err := p.SilentRefresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if hits.Load() == before {
		t.Fatal("refresh must refetch")
	}
	if p.IsLoading() {
		t.Fatal("silent refresh must not flip the loading flag")
	}
}

func TestHTTPProviderErrorKeepsDataset(t *testing.T) {
	flaky := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer flaky.Close()

	p, _ := NewHTTPProvider(HTTPConfig{BaseURL: flaky.URL})
	if _, err := p.Snapshot(context.Background()); err == nil {
		t.Fatal("failed fetch must surface")
	}
	if p.IsLoading() {
		t.Fatal("failed fetch must clear the loading flag")
	}
}

func TestNewHTTPProviderRequiresBaseURL(t *testing.T) {
	if _, err := NewHTTPProvider(HTTPConfig{}); err == nil {
		t.Fatal("base url is required")
	}
}

func TestMockProvider(t *testing.T) {
	p := NewMockProvider(dashboard.Dataset{
		Items: map[dashboard.DataSource][]dashboard.Item{
			dashboard.SourceTasks: {{"id": 1}},
		},
	})

	ds, err := p.Snapshot(context.Background())
	if err != nil || len(ds.Items[dashboard.SourceTasks]) != 1 {
		t.Fatalf("snapshot: %+v %v", ds, err)
	}

	p.SetLoading(true)
	if !p.IsLoading() {
		t.Fatal("loading flag")
	}

	_ = p.SilentRefresh(context.Background())
	_ = p.SilentRefresh(context.Background())
	if p.RefreshCount() != 2 {
		t.Fatalf("refresh count: %d", p.RefreshCount())
	}
}
