package dashboard

import (
	"fmt"
	"sync"
)

// TypeHook lets packages register widget type specs during init().
type TypeHook func(reg *Registry) error

var (
	globalHookMu sync.Mutex
	globalHooks  []TypeHook
)

// RegisterTypeHook registers a hook executed against new registries.
func RegisterTypeHook(h TypeHook) {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	globalHooks = append(globalHooks, h)
}

// WidgetTypeSpec declares what a widget type supports: its palette category,
// its default grid rectangle, and the metric/source combinations it accepts.
type WidgetTypeSpec struct {
	Type          WidgetType
	Category      WidgetCategory
	DefaultLayout WidgetLayout
	Metrics       []Metric
	DataSources   []DataSource
	ConfigSchema  map[string]any
}

// TypeRegistry is the enforcement point for widget (type, source, metric)
// combinations. UI layers are expected to only offer valid combinations; any
// non-UI caller (AI generators, imports) is checked here.
type TypeRegistry interface {
	Spec(t WidgetType) (WidgetTypeSpec, bool)
	Specs() []WidgetTypeSpec
	IsValidCombination(t WidgetType, source DataSource, metric Metric) bool
}

// Registry implements TypeRegistry with hook support.
type Registry struct {
	mu    sync.RWMutex
	specs map[WidgetType]WidgetTypeSpec
	order []WidgetType
}

// NewRegistry builds a registry preloaded with the built-in widget types and
// applies global hooks.
func NewRegistry() *Registry {
	reg := &Registry{
		specs: map[WidgetType]WidgetTypeSpec{},
	}
	for _, spec := range DefaultWidgetTypeSpecs() {
		_ = reg.RegisterType(spec)
	}
	_ = reg.ApplyHooks()
	return reg
}

// ApplyHooks executes registered type hooks.
func (r *Registry) ApplyHooks() error {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	for _, hook := range globalHooks {
		if err := hook(r); err != nil {
			return err
		}
	}
	return nil
}

// RegisterType stores a widget type spec, replacing any previous spec for the
// same type.
func (r *Registry) RegisterType(spec WidgetTypeSpec) error {
	if spec.Type == "" {
		return fmt.Errorf("dashboard: widget type is required")
	}
	if len(spec.Metrics) == 0 {
		return fmt.Errorf("dashboard: widget type %s declares no metrics", spec.Type)
	}
	if len(spec.DataSources) == 0 {
		return fmt.Errorf("dashboard: widget type %s declares no data sources", spec.Type)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.specs[spec.Type]; !exists {
		r.order = append(r.order, spec.Type)
	}
	r.specs[spec.Type] = spec
	return nil
}

// Spec fetches a widget type spec.
func (r *Registry) Spec(t WidgetType) (WidgetTypeSpec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	spec, ok := r.specs[t]
	return spec, ok
}

// Specs returns all registered specs in registration order.
func (r *Registry) Specs() []WidgetTypeSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]WidgetTypeSpec, 0, len(r.order))
	for _, t := range r.order {
		out = append(out, r.specs[t])
	}
	return out
}

// IsValidCombination reports whether the registry declares support for the
// (type, source, metric) triple. Unknown types are always invalid.
func (r *Registry) IsValidCombination(t WidgetType, source DataSource, metric Metric) bool {
	spec, ok := r.Spec(t)
	if !ok {
		return false
	}
	return containsSource(spec.DataSources, source) && containsMetric(spec.Metrics, metric)
}

func containsSource(sources []DataSource, want DataSource) bool {
	for _, s := range sources {
		if s == want {
			return true
		}
	}
	return false
}

func containsMetric(metrics []Metric, want Metric) bool {
	for _, m := range metrics {
		if m == want {
			return true
		}
	}
	return false
}
