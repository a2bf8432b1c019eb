package dashboard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ConfigValidator validates widget configuration payloads against the schema
// declared by the widget's type spec.
type ConfigValidator interface {
	Validate(spec WidgetTypeSpec, config WidgetConfig) error
}

// ValidateWidget rejects widgets that violate the registry or the grid model.
// Violations are explicit errors, never silent coercions.
func ValidateWidget(reg TypeRegistry, w Widget) error {
	if _, ok := reg.Spec(w.Type); !ok {
		return fmt.Errorf("dashboard: unknown widget type %q", w.Type)
	}
	if !reg.IsValidCombination(w.Type, w.DataSource, w.Metric) {
		return fmt.Errorf("dashboard: widget type %q does not support source %q with metric %q",
			w.Type, w.DataSource, w.Metric)
	}
	if err := validateLayout(w.Layout); err != nil {
		return err
	}
	if w.DataSource == SourceExternalAPI {
		if w.Config.ExternalAPI == nil {
			return fmt.Errorf("dashboard: widget %s uses %s but has no external API config", w.ID, SourceExternalAPI)
		}
		if w.Config.ExternalAPI.URL == "" {
			return fmt.Errorf("dashboard: widget %s external API config is missing a url", w.ID)
		}
	} else if w.Config.ExternalAPI != nil {
		return fmt.Errorf("dashboard: widget %s carries an external API config but reads from %q", w.ID, w.DataSource)
	}
	return nil
}

func validateLayout(l WidgetLayout) error {
	if l.W <= 0 || l.H <= 0 {
		return fmt.Errorf("dashboard: layout dimensions must be positive, got %dx%d", l.W, l.H)
	}
	if l.X < 0 || l.Y < 0 {
		return fmt.Errorf("dashboard: layout position must be non-negative, got (%d,%d)", l.X, l.Y)
	}
	if l.W > GridColumns {
		return fmt.Errorf("dashboard: layout width %d exceeds %d columns", l.W, GridColumns)
	}
	if l.X+l.W > GridColumns {
		return fmt.Errorf("dashboard: layout right edge %d exceeds %d columns", l.X+l.W, GridColumns)
	}
	if l.MinW > l.W || l.MinH > l.H {
		return fmt.Errorf("dashboard: layout minimums %dx%d exceed size %dx%d", l.MinW, l.MinH, l.W, l.H)
	}
	if l.MaxW > 0 && l.MaxW < l.W {
		return fmt.Errorf("dashboard: layout width %d exceeds maxW %d", l.W, l.MaxW)
	}
	if l.MaxH > 0 && l.MaxH < l.H {
		return fmt.Errorf("dashboard: layout height %d exceeds maxH %d", l.H, l.MaxH)
	}
	return nil
}

// ValidateDashboard checks every widget plus dashboard-level invariants
// (unique widget ids).
func ValidateDashboard(reg TypeRegistry, d Dashboard) error {
	seen := make(map[string]struct{}, len(d.Widgets))
	for _, w := range d.Widgets {
		if w.ID != "" {
			if _, dup := seen[w.ID]; dup {
				return fmt.Errorf("dashboard: duplicate widget id %s", w.ID)
			}
			seen[w.ID] = struct{}{}
		}
		if err := ValidateWidget(reg, w); err != nil {
			return err
		}
	}
	return nil
}

// JSONSchemaValidator compiles widget type schemas and validates configuration
// payloads against them.
type JSONSchemaValidator struct {
	mu       sync.RWMutex
	compiled map[WidgetType]*jsonschema.Schema
}

// NewJSONSchemaValidator builds a validator backed by jsonschema v5.
func NewJSONSchemaValidator() *JSONSchemaValidator {
	return &JSONSchemaValidator{
		compiled: make(map[WidgetType]*jsonschema.Schema),
	}
}

// Validate ensures the provided configuration satisfies the type's schema.
func (v *JSONSchemaValidator) Validate(spec WidgetTypeSpec, config WidgetConfig) error {
	if len(spec.ConfigSchema) == 0 {
		return nil
	}
	schema, err := v.schemaFor(spec)
	if err != nil {
		return err
	}
	data, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("dashboard: marshal config for %s: %w", spec.Type, err)
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("dashboard: normalize config for %s: %w", spec.Type, err)
	}
	if payload == nil {
		payload = map[string]any{}
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("dashboard: configuration for %s failed validation: %w", spec.Type, err)
	}
	return nil
}

func (v *JSONSchemaValidator) schemaFor(spec WidgetTypeSpec) (*jsonschema.Schema, error) {
	v.mu.RLock()
	schema, ok := v.compiled[spec.Type]
	v.mu.RUnlock()
	if ok {
		return schema, nil
	}
	data, err := json.Marshal(spec.ConfigSchema)
	if err != nil {
		return nil, fmt.Errorf("dashboard: marshal schema %s: %w", spec.Type, err)
	}
	compiler := jsonschema.NewCompiler()
	name := string(spec.Type) + ".json"
	if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("dashboard: load schema %s: %w", spec.Type, err)
	}
	compiled, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("dashboard: compile schema %s: %w", spec.Type, err)
	}
	v.mu.Lock()
	v.compiled[spec.Type] = compiled
	v.mu.Unlock()
	return compiled, nil
}

type noopConfigValidator struct{}

func (noopConfigValidator) Validate(WidgetTypeSpec, WidgetConfig) error { return nil }
