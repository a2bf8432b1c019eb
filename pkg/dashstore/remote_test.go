package dashstore

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vantage-crm/go-dashboards/components/dashboard"
)

func remoteFixture(t *testing.T, handler http.HandlerFunc) *RemoteStore {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	store, err := NewRemoteStore(RemoteConfig{BaseURL: srv.URL, APIKey: "key"})
	if err != nil {
		t.Fatalf("new remote store: %v", err)
	}
	return store
}

func TestRemoteStoreGet(t *testing.T) {
	store := remoteFixture(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/Dashboards/7" {
			t.Errorf("path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer key" {
			t.Errorf("auth header missing")
		}
		json.NewEncoder(w).Encode(dashboard.Dashboard{ID: 7, Name: "Sales"})
	})

	got, err := store.Get(context.Background(), 7)
	if err != nil || got.Name != "Sales" {
		t.Fatalf("get: %+v %v", got, err)
	}
}

func TestRemoteStoreCreateSendsPayload(t *testing.T) {
	store := remoteFixture(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/Dashboards" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		var in dashboard.Dashboard
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Errorf("decode: %v", err)
		}
		in.ID = 3
		json.NewEncoder(w).Encode(in)
	})

	created, err := store.Create(context.Background(), dashboard.Dashboard{Name: "Ops"})
	if err != nil || created.ID != 3 || created.Name != "Ops" {
		t.Fatalf("create: %+v %v", created, err)
	}
}

func TestRemoteStoreNotFound(t *testing.T) {
	store := remoteFixture(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	if _, err := store.Get(context.Background(), 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("404 maps to ErrNotFound: %v", err)
	}
}

func TestRemoteStoreServerError(t *testing.T) {
	store := remoteFixture(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	if _, err := store.List(context.Background()); err == nil {
		t.Fatal("5xx must surface as an error")
	}
}

func TestRemoteStoreFindByShareTokenEscapesToken(t *testing.T) {
	store := remoteFixture(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.EscapedPath() != "/api/Dashboards/shared/a%2Fb" {
			t.Errorf("path: %s", r.URL.EscapedPath())
		}
		json.NewEncoder(w).Encode(dashboard.Dashboard{ID: 1})
	})

	if _, err := store.FindByShareToken(context.Background(), "a/b"); err != nil {
		t.Fatalf("find: %v", err)
	}
}

func TestNewRemoteStoreRequiresBaseURL(t *testing.T) {
	if _, err := NewRemoteStore(RemoteConfig{}); err == nil {
		t.Fatal("base url is required")
	}
}
