package dashstore

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
)

func TestSelectPrefersReachableRemote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[]"))
	}))
	defer srv.Close()

	remote, err := NewRemoteStore(RemoteConfig{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("remote: %v", err)
	}

	store, err := Select(context.Background(), remote, filepath.Join(t.TempDir(), "d.json"))
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if _, ok := store.(*RemoteStore); !ok {
		t.Fatalf("expected the remote store, got %T", store)
	}
}

func TestSelectFallsBackToLocal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	remote, _ := NewRemoteStore(RemoteConfig{BaseURL: srv.URL})
	store, err := Select(context.Background(), remote, filepath.Join(t.TempDir(), "d.json"))
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if _, ok := store.(*LocalStore); !ok {
		t.Fatalf("expected the local store, got %T", store)
	}
}

func TestSelectWithoutRemote(t *testing.T) {
	store, err := Select(context.Background(), nil, filepath.Join(t.TempDir(), "d.json"))
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if _, ok := store.(*LocalStore); !ok {
		t.Fatalf("expected the local store, got %T", store)
	}
}
