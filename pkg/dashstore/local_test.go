package dashstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/vantage-crm/go-dashboards/components/dashboard"
)

func newLocal(t *testing.T) (*LocalStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dashboards.json")
	store, err := NewLocalStore(path)
	if err != nil {
		t.Fatalf("new local store: %v", err)
	}
	return store, path
}

func TestLocalStoreCRUD(t *testing.T) {
	store, _ := newLocal(t)
	ctx := context.Background()

	created, err := store.Create(ctx, dashboard.Dashboard{Name: "Sales"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID != 1 {
		t.Fatalf("first id: %d", created.ID)
	}

	got, err := store.Get(ctx, created.ID)
	if err != nil || got.Name != "Sales" {
		t.Fatalf("get: %+v %v", got, err)
	}

	got.Name = "Sales 2026"
	if _, err := store.Update(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}

	second, _ := store.Create(ctx, dashboard.Dashboard{Name: "Ops"})
	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Name != "Sales 2026" || list[1].ID != second.ID {
		t.Fatalf("list order: %+v", list)
	}

	if err := store.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted dashboard: %v", err)
	}
}

func TestLocalStoreNotFound(t *testing.T) {
	store, _ := newLocal(t)
	ctx := context.Background()

	if _, err := store.Get(ctx, 99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get: %v", err)
	}
	if _, err := store.Update(ctx, dashboard.Dashboard{ID: 99}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update: %v", err)
	}
	if err := store.Delete(ctx, 99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Duplicate(ctx, 99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("duplicate: %v", err)
	}
}

func TestLocalStoreSurvivesReopen(t *testing.T) {
	store, path := newLocal(t)
	ctx := context.Background()

	created, _ := store.Create(ctx, dashboard.Dashboard{
		Name: "Sales",
		Widgets: []dashboard.Widget{
			{ID: "w1", Type: dashboard.TypeKPI, DataSource: dashboard.SourceSales, Metric: dashboard.MetricCount},
		},
	})

	reopened, err := NewLocalStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, err := reopened.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if len(got.Widgets) != 1 || got.Widgets[0].ID != "w1" {
		t.Fatalf("widgets survive: %+v", got.Widgets)
	}

	// The id counter also survives, so new boards never reuse ids.
	next, _ := reopened.Create(ctx, dashboard.Dashboard{Name: "Ops"})
	if next.ID != created.ID+1 {
		t.Fatalf("next id: %d", next.ID)
	}
}

func TestLocalStoreDuplicate(t *testing.T) {
	store, _ := newLocal(t)
	ctx := context.Background()

	src, _ := store.Create(ctx, dashboard.Dashboard{
		Name:  "Sales",
		Share: dashboard.ShareSettings{Public: true, Token: "tok"},
	})

	copy, err := store.Duplicate(ctx, src.ID)
	if err != nil {
		t.Fatalf("duplicate: %v", err)
	}
	if copy.ID == src.ID || copy.Name != "Sales (Copy)" {
		t.Fatalf("copy: %+v", copy)
	}
	if copy.Share.Public || copy.Share.Token != "" {
		t.Fatal("share settings must not carry over to the copy")
	}
}

func TestLocalStoreFindByShareToken(t *testing.T) {
	store, _ := newLocal(t)
	ctx := context.Background()

	created, _ := store.Create(ctx, dashboard.Dashboard{
		Name:  "Sales",
		Share: dashboard.ShareSettings{Public: true, Token: "tok"},
	})

	got, err := store.FindByShareToken(ctx, "tok")
	if err != nil || got.ID != created.ID {
		t.Fatalf("find: %+v %v", got, err)
	}
	if _, err := store.FindByShareToken(ctx, "other"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown token: %v", err)
	}
	// An empty search token never matches unshared boards.
	if _, err := store.FindByShareToken(ctx, ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("empty token: %v", err)
	}
}
