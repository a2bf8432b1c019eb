package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	errMissingStore    = errors.New("dashboard: store not configured")
	errMissingDatasets = errors.New("dashboard: dataset provider not configured")
	errNotEditing      = errors.New("dashboard: dashboard is not in edit mode")

	// ErrShareNotFound is returned when a share token resolves to nothing,
	// either unknown or revoked.
	ErrShareNotFound = errors.New("dashboard: share link not found")
)

// Options configures the dashboard Service. Every collaborator is provided via
// interface so applications can swap implementations without importing
// internal packages.
type Options struct {
	Store           DashboardStore
	Datasets        DatasetProvider
	Registry        TypeRegistry
	ConfigValidator ConfigValidator
	Currency        CurrencyFormatter
	ExternalClient  *ExternalClient
	RefreshHook     RefreshHook
	Telemetry       Telemetry
	Locale          string
}

// Service orchestrates dashboards: widget lifecycle, edit sessions, layout
// resolution, data resolution, sharing, and refresh timers.
type Service struct {
	opts      Options
	resolver  *Resolver
	refresher *AutoRefresher
	pollers   *WidgetPollers

	mu       sync.Mutex
	sessions map[int64]*EditSession
}

// NewService builds a Service instance with safe defaults.
func NewService(opts Options) *Service {
	if opts.Registry == nil {
		opts.Registry = NewRegistry()
	}
	if opts.ConfigValidator == nil {
		opts.ConfigValidator = NewJSONSchemaValidator()
	}
	if opts.Currency == nil {
		opts.Currency = NewCurrencyFormatter(opts.Locale, "EUR")
	}
	if opts.ExternalClient == nil {
		opts.ExternalClient = NewExternalClient(ExternalClientConfig{})
	}
	if opts.RefreshHook == nil {
		opts.RefreshHook = noopRefreshHook{}
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	if opts.Locale == "" {
		opts.Locale = "en"
	}
	resolver := NewResolver(opts.Datasets,
		WithCurrencyFormatter(opts.Currency),
		WithLocale(opts.Locale),
		WithExternalClient(opts.ExternalClient),
	)
	return &Service{
		opts:      opts,
		resolver:  resolver,
		refresher: NewAutoRefresher(opts.Datasets, opts.Telemetry),
		pollers:   NewWidgetPollers(),
		sessions:  make(map[int64]*EditSession),
	}
}

// Resolver exposes the data resolution layer for transports and queries.
func (s *Service) Resolver() *Resolver {
	return s.resolver
}

func (s *Service) store() (DashboardStore, error) {
	if s.opts.Store == nil {
		return nil, errMissingStore
	}
	return s.opts.Store, nil
}

func (s *Service) record(ctx context.Context, event string, payload map[string]any) {
	s.opts.Telemetry.Record(ctx, event, payload)
}

func (s *Service) notify(ctx context.Context, event DashboardEvent) {
	if err := s.opts.RefreshHook.DashboardUpdated(ctx, event); err != nil {
		s.record(ctx, "dashboard.hook_error", map[string]any{"error": err.Error()})
	}
}

// Dashboards lists persisted dashboards.
func (s *Service) Dashboards(ctx context.Context) ([]Dashboard, error) {
	store, err := s.store()
	if err != nil {
		return nil, err
	}
	return store.List(ctx)
}

// Dashboard returns a dashboard by id. While an edit session is active the
// buffered state is returned, not the persisted one.
func (s *Service) Dashboard(ctx context.Context, id int64) (Dashboard, error) {
	if session := s.session(id); session != nil {
		return session.Dashboard(), nil
	}
	store, err := s.store()
	if err != nil {
		return Dashboard{}, err
	}
	return store.Get(ctx, id)
}

// CreateDashboard persists a blank dashboard with default grid settings.
func (s *Service) CreateDashboard(ctx context.Context, name string) (Dashboard, error) {
	return s.createDashboard(ctx, Dashboard{
		Name: name,
		Grid: DefaultGridSettings(),
	})
}

// CreateFromTemplate instantiates a named starter template, assigning fresh
// widget ids.
func (s *Service) CreateFromTemplate(ctx context.Context, templateName string) (Dashboard, error) {
	for _, tmpl := range DefaultTemplates() {
		if tmpl.Name != templateName {
			continue
		}
		for i := range tmpl.Widgets {
			tmpl.Widgets[i].ID = uuid.NewString()
		}
		return s.createDashboard(ctx, tmpl)
	}
	return Dashboard{}, fmt.Errorf("dashboard: unknown template %q", templateName)
}

func (s *Service) createDashboard(ctx context.Context, d Dashboard) (Dashboard, error) {
	store, err := s.store()
	if err != nil {
		return Dashboard{}, err
	}
	if err := ValidateDashboard(s.opts.Registry, d); err != nil {
		return Dashboard{}, err
	}
	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now
	created, err := store.Create(ctx, d)
	if err != nil {
		return Dashboard{}, err
	}
	s.record(ctx, "dashboard.create", map[string]any{
		"dashboard_id": created.ID,
		"widgets":      len(created.Widgets),
	})
	s.notify(ctx, DashboardEvent{DashboardID: created.ID, Reason: "create"})
	return created, nil
}

// DeleteDashboard removes a dashboard, tearing down any edit session.
func (s *Service) DeleteDashboard(ctx context.Context, id int64) error {
	store, err := s.store()
	if err != nil {
		return err
	}
	if err := store.Delete(ctx, id); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	s.record(ctx, "dashboard.delete", map[string]any{"dashboard_id": id})
	s.notify(ctx, DashboardEvent{DashboardID: id, Reason: "delete"})
	return nil
}

// DuplicateDashboard copies a dashboard under a new id.
func (s *Service) DuplicateDashboard(ctx context.Context, id int64) (Dashboard, error) {
	store, err := s.store()
	if err != nil {
		return Dashboard{}, err
	}
	copy, err := store.Duplicate(ctx, id)
	if err != nil {
		return Dashboard{}, err
	}
	s.record(ctx, "dashboard.duplicate", map[string]any{
		"source_id": id,
		"copy_id":   copy.ID,
	})
	return copy, nil
}

// BeginEdit opens (or returns) the edit session for a dashboard. All widget
// mutations require an active session.
func (s *Service) BeginEdit(ctx context.Context, id int64) error {
	s.mu.Lock()
	_, exists := s.sessions[id]
	s.mu.Unlock()
	if exists {
		return nil
	}
	store, err := s.store()
	if err != nil {
		return err
	}
	d, err := store.Get(ctx, id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.sessions[id] = NewEditSession(d)
	s.mu.Unlock()
	s.record(ctx, "dashboard.edit.begin", map[string]any{"dashboard_id": id})
	return nil
}

// IsEditing reports whether a dashboard has an open edit session.
func (s *Service) IsEditing(id int64) bool {
	return s.session(id) != nil
}

func (s *Service) session(id int64) *EditSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[id]
}

func (s *Service) requireSession(id int64) (*EditSession, error) {
	if session := s.session(id); session != nil {
		return session, nil
	}
	return nil, errNotEditing
}

// SaveEdit persists the edit buffer and closes the session. Last write wins;
// there is no cross-session merge.
func (s *Service) SaveEdit(ctx context.Context, id int64) (Dashboard, error) {
	session, err := s.requireSession(id)
	if err != nil {
		return Dashboard{}, err
	}
	store, err := s.store()
	if err != nil {
		return Dashboard{}, err
	}
	d := session.Snapshot()
	d.UpdatedAt = time.Now().UTC()
	saved, err := store.Update(ctx, d)
	if err != nil {
		return Dashboard{}, err
	}
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	s.record(ctx, "dashboard.edit.save", map[string]any{"dashboard_id": id})
	s.notify(ctx, DashboardEvent{DashboardID: id, Reason: "save"})
	return saved, nil
}

// DiscardEdit drops the edit buffer, reverting to the persisted state.
func (s *Service) DiscardEdit(ctx context.Context, id int64) error {
	session, err := s.requireSession(id)
	if err != nil {
		return err
	}
	session.Discard()
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	s.record(ctx, "dashboard.edit.discard", map[string]any{"dashboard_id": id})
	return nil
}

// AddWidget validates a widget, assigns its id and a non-overlapping grid
// position, and appends it to the edit buffer. Invalid combinations are
// refused with an error, never coerced.
func (s *Service) AddWidget(ctx context.Context, dashboardID int64, w Widget) (Widget, error) {
	session, err := s.requireSession(dashboardID)
	if err != nil {
		return Widget{}, err
	}
	spec, ok := s.opts.Registry.Spec(w.Type)
	if !ok {
		return Widget{}, fmt.Errorf("dashboard: unknown widget type %q", w.Type)
	}
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	if w.Layout.W <= 0 || w.Layout.H <= 0 {
		def := spec.DefaultLayout
		w.Layout.W, w.Layout.H = def.W, def.H
		w.Layout.MinW, w.Layout.MinH = def.MinW, def.MinH
		w.Layout.MaxW, w.Layout.MaxH = def.MaxW, def.MaxH
	}
	if w.Layout.W > GridColumns {
		w.Layout.W = GridColumns
	}

	buffer := session.Dashboard()
	existing := make([]WidgetLayout, len(buffer.Widgets))
	for i, bw := range buffer.Widgets {
		existing[i] = bw.Layout
	}
	pos := FindFreePosition(w.Layout.W, w.Layout.H, existing)
	w.Layout.X, w.Layout.Y = pos.X, pos.Y

	if err := ValidateWidget(s.opts.Registry, w); err != nil {
		return Widget{}, err
	}
	if err := s.opts.ConfigValidator.Validate(spec, w.Config); err != nil {
		return Widget{}, err
	}

	session.AddWidget(w)
	s.record(ctx, "dashboard.widget.add", map[string]any{
		"dashboard_id": dashboardID,
		"widget_id":    w.ID,
		"type":         string(w.Type),
	})
	s.notify(ctx, DashboardEvent{DashboardID: dashboardID, WidgetID: w.ID, Reason: "widget.add"})
	return w, nil
}

// UpdateWidget replaces a widget's configuration in the edit buffer after
// re-validation. The widget id is immutable.
func (s *Service) UpdateWidget(ctx context.Context, dashboardID int64, w Widget) error {
	session, err := s.requireSession(dashboardID)
	if err != nil {
		return err
	}
	spec, ok := s.opts.Registry.Spec(w.Type)
	if !ok {
		return fmt.Errorf("dashboard: unknown widget type %q", w.Type)
	}
	if err := ValidateWidget(s.opts.Registry, w); err != nil {
		return err
	}
	if err := s.opts.ConfigValidator.Validate(spec, w.Config); err != nil {
		return err
	}
	if err := session.UpdateWidget(w); err != nil {
		return err
	}
	// A config change invalidates the memoized results under every filter and
	// cancels the widget's external polling timer. Hosts that still want the
	// widget polled call TrackExternalWidget again with the new config.
	s.resolver.cache.DropWidget(w.ID)
	s.pollers.Release(w.ID)
	s.record(ctx, "dashboard.widget.update", map[string]any{
		"dashboard_id": dashboardID,
		"widget_id":    w.ID,
	})
	s.notify(ctx, DashboardEvent{DashboardID: dashboardID, WidgetID: w.ID, Reason: "widget.update"})
	return nil
}

// RemoveWidget deletes a widget from the edit buffer and stops its pollers.
func (s *Service) RemoveWidget(ctx context.Context, dashboardID int64, widgetID string) error {
	session, err := s.requireSession(dashboardID)
	if err != nil {
		return err
	}
	if !session.RemoveWidget(widgetID) {
		return fmt.Errorf("dashboard: widget %s not found", widgetID)
	}
	s.pollers.Release(widgetID)
	s.record(ctx, "dashboard.widget.remove", map[string]any{
		"dashboard_id": dashboardID,
		"widget_id":    widgetID,
	})
	s.notify(ctx, DashboardEvent{DashboardID: dashboardID, WidgetID: widgetID, Reason: "widget.remove"})
	return nil
}

// MoveWidget repositions a widget in the edit buffer.
func (s *Service) MoveWidget(ctx context.Context, dashboardID int64, widgetID string, x, y int) error {
	session, err := s.requireSession(dashboardID)
	if err != nil {
		return err
	}
	if err := session.MoveWidget(widgetID, x, y); err != nil {
		return err
	}
	s.notify(ctx, DashboardEvent{DashboardID: dashboardID, WidgetID: widgetID, Reason: "widget.move"})
	return nil
}

// ResizeWidget resizes a widget in the edit buffer.
func (s *Service) ResizeWidget(ctx context.Context, dashboardID int64, widgetID string, w, h int) error {
	session, err := s.requireSession(dashboardID)
	if err != nil {
		return err
	}
	if err := session.ResizeWidget(widgetID, w, h); err != nil {
		return err
	}
	s.notify(ctx, DashboardEvent{DashboardID: dashboardID, WidgetID: widgetID, Reason: "widget.resize"})
	return nil
}

// Layout computes the responsive placements for a dashboard. Widgets are
// draggable only while an edit session is open.
func (s *Service) Layout(ctx context.Context, id int64) (map[Breakpoint][]Placement, error) {
	d, err := s.Dashboard(ctx, id)
	if err != nil {
		return nil, err
	}
	return Placements(d.Widgets, s.IsEditing(id)), nil
}

// WidgetData resolves the renderable payload for one widget under the active
// date filter.
func (s *Service) WidgetData(ctx context.Context, dashboardID int64, widgetID string, filter DateRange) (Result, error) {
	d, err := s.Dashboard(ctx, dashboardID)
	if err != nil {
		return Result{}, err
	}
	for _, w := range d.Widgets {
		if w.ID == widgetID {
			return s.resolver.Resolve(ctx, w, filter), nil
		}
	}
	return Result{}, fmt.Errorf("dashboard: widget %s not found", widgetID)
}

// TrackExternalWidget starts the widget's external polling timer. Each tick
// re-resolves the widget and notifies transports; the timer is cancelled when
// the widget is removed or reconfigured, or when the context ends.
func (s *Service) TrackExternalWidget(ctx context.Context, dashboardID int64, w Widget, filter DateRange) {
	if w.DataSource != SourceExternalAPI {
		return
	}
	s.pollers.Track(ctx, w, func(tickCtx context.Context) {
		_ = s.resolver.Resolve(tickCtx, w, filter)
		if tickCtx.Err() != nil {
			return
		}
		s.notify(tickCtx, DashboardEvent{DashboardID: dashboardID, WidgetID: w.ID, Reason: "widget.data"})
	})
}

// StartAutoRefresh schedules the dashboard-level silent dataset refresh.
func (s *Service) StartAutoRefresh(ctx context.Context, interval time.Duration) {
	s.refresher.Start(ctx, interval)
}

// StopAutoRefresh cancels the refresh timer and all widget pollers.
func (s *Service) StopAutoRefresh() {
	s.refresher.Stop()
	s.pollers.StopAll()
}

// ShareDashboard enables public sharing, minting a token and optionally
// freezing a data snapshot for the unauthenticated read path.
func (s *Service) ShareDashboard(ctx context.Context, id int64, withSnapshot bool) (Dashboard, error) {
	store, err := s.store()
	if err != nil {
		return Dashboard{}, err
	}
	d, err := store.Get(ctx, id)
	if err != nil {
		return Dashboard{}, err
	}
	d.Share.Public = true
	if d.Share.Token == "" {
		d.Share.Token = uuid.NewString()
	}
	if withSnapshot {
		if s.opts.Datasets == nil {
			return Dashboard{}, errMissingDatasets
		}
		ds, err := s.opts.Datasets.Snapshot(ctx)
		if err != nil {
			return Dashboard{}, fmt.Errorf("dashboard: capture share snapshot: %w", err)
		}
		snap, err := CloneSnapshot(ds)
		if err != nil {
			return Dashboard{}, err
		}
		d.DataSnapshot = snap
	}
	d.UpdatedAt = time.Now().UTC()
	saved, err := store.Update(ctx, d)
	if err != nil {
		return Dashboard{}, err
	}
	s.record(ctx, "dashboard.share", map[string]any{
		"dashboard_id": id,
		"snapshot":     withSnapshot,
	})
	return saved, nil
}

// RevokeShare disables the public token.
func (s *Service) RevokeShare(ctx context.Context, id int64) error {
	store, err := s.store()
	if err != nil {
		return err
	}
	d, err := store.Get(ctx, id)
	if err != nil {
		return err
	}
	d.Share = ShareSettings{}
	d.DataSnapshot = nil
	d.UpdatedAt = time.Now().UTC()
	if _, err := store.Update(ctx, d); err != nil {
		return err
	}
	s.record(ctx, "dashboard.share.revoke", map[string]any{"dashboard_id": id})
	return nil
}

// ResolveShared returns a publicly shared dashboard by token. Tokens of
// revoked or unknown shares yield ErrShareNotFound.
func (s *Service) ResolveShared(ctx context.Context, token string) (Dashboard, error) {
	if token == "" {
		return Dashboard{}, ErrShareNotFound
	}
	store, err := s.store()
	if err != nil {
		return Dashboard{}, err
	}
	d, err := store.FindByShareToken(ctx, token)
	if err != nil {
		return Dashboard{}, ErrShareNotFound
	}
	if !d.Share.Public {
		return Dashboard{}, ErrShareNotFound
	}
	return d, nil
}

// SharedWidgetData resolves widget data for a shared dashboard from its frozen
// snapshot, never touching live datasets.
func (s *Service) SharedWidgetData(ctx context.Context, token, widgetID string, filter DateRange) (Result, error) {
	d, err := s.ResolveShared(ctx, token)
	if err != nil {
		return Result{}, err
	}
	if d.DataSnapshot == nil {
		return Result{}, fmt.Errorf("dashboard: share %s has no data snapshot", token)
	}
	for _, w := range d.Widgets {
		if w.ID == widgetID {
			return s.resolver.ResolveFromDataset(*d.DataSnapshot, w, filter), nil
		}
	}
	return Result{}, fmt.Errorf("dashboard: widget %s not found", widgetID)
}

type noopRefreshHook struct{}

func (noopRefreshHook) DashboardUpdated(context.Context, DashboardEvent) error {
	return nil
}
