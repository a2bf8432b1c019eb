package dashboard

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	manifestVersionV1 = "1"
	// ManifestVersion exposes the current manifest format version for tooling.
	ManifestVersion = manifestVersionV1
)

// TemplateManifestDocument models a YAML manifest describing dashboard
// templates that can be instantiated as starter boards.
type TemplateManifestDocument struct {
	Version    string              `json:"version" yaml:"version"`
	Name       string              `json:"name,omitempty" yaml:"name,omitempty"`
	Dashboards []ManifestDashboard `json:"dashboards" yaml:"dashboards"`
	Source     string              `json:"-" yaml:"-"`
}

// ManifestDashboard describes one dashboard template.
type ManifestDashboard struct {
	Name        string           `json:"name" yaml:"name"`
	AutoRefresh int              `json:"auto_refresh,omitempty" yaml:"auto_refresh,omitempty"`
	Widgets     []ManifestWidget `json:"widgets" yaml:"widgets"`
}

// ManifestWidget describes a widget entry inside a template. Layout positions
// are grid cells at the largest breakpoint.
type ManifestWidget struct {
	Type       WidgetType   `json:"type" yaml:"type"`
	TitleKey   string       `json:"title_key,omitempty" yaml:"title_key,omitempty"`
	Title      string       `json:"title,omitempty" yaml:"title,omitempty"`
	DataSource DataSource   `json:"data_source" yaml:"data_source"`
	Metric     Metric       `json:"metric" yaml:"metric"`
	X          int          `json:"x" yaml:"x"`
	Y          int          `json:"y" yaml:"y"`
	W          int          `json:"w" yaml:"w"`
	H          int          `json:"h" yaml:"h"`
	Config     WidgetConfig `json:"config,omitempty" yaml:"config,omitempty"`
}

// ReadTemplateManifest loads a manifest file from disk.
func ReadTemplateManifest(path string) (*TemplateManifestDocument, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("dashboard: open manifest %s: %w", path, err)
	}
	defer f.Close()
	doc, err := DecodeTemplateManifest(f)
	if err != nil {
		return nil, fmt.Errorf("dashboard: decode manifest %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// DecodeTemplateManifest reads a manifest from any reader.
func DecodeTemplateManifest(r io.Reader) (*TemplateManifestDocument, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc TemplateManifestDocument
	if err := decoder.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("dashboard: manifest is empty")
		}
		return nil, fmt.Errorf("dashboard: parse manifest: %w", err)
	}
	doc.applyDefaults()
	return &doc, nil
}

func (doc *TemplateManifestDocument) applyDefaults() {
	if doc.Version == "" {
		doc.Version = manifestVersionV1
	}
}

// Validate checks the manifest against the registry's type and combination
// rules.
func (doc *TemplateManifestDocument) Validate(reg TypeRegistry) error {
	if doc.Version != manifestVersionV1 {
		return fmt.Errorf("dashboard: unsupported manifest version %q", doc.Version)
	}
	if len(doc.Dashboards) == 0 {
		return fmt.Errorf("dashboard: manifest declares no dashboards")
	}
	seen := make(map[string]struct{}, len(doc.Dashboards))
	for _, tmpl := range doc.Dashboards {
		if tmpl.Name == "" {
			return fmt.Errorf("dashboard: manifest dashboard is missing a name")
		}
		if _, exists := seen[tmpl.Name]; exists {
			return fmt.Errorf("dashboard: manifest duplicates dashboard %q", tmpl.Name)
		}
		seen[tmpl.Name] = struct{}{}
		d := tmpl.toDashboard()
		if err := ValidateDashboard(reg, d); err != nil {
			return fmt.Errorf("dashboard: manifest template %q: %w", tmpl.Name, err)
		}
	}
	return nil
}

// Templates converts the manifest into instantiable dashboards. Widget ids
// are left empty; the service assigns them on creation.
func (doc *TemplateManifestDocument) Templates() []Dashboard {
	out := make([]Dashboard, len(doc.Dashboards))
	for i, tmpl := range doc.Dashboards {
		out[i] = tmpl.toDashboard()
	}
	return out
}

func (tmpl ManifestDashboard) toDashboard() Dashboard {
	d := Dashboard{
		Name:        tmpl.Name,
		AutoRefresh: tmpl.AutoRefresh,
		Grid:        DefaultGridSettings(),
	}
	for _, mw := range tmpl.Widgets {
		d.Widgets = append(d.Widgets, Widget{
			Type:        mw.Type,
			TitleKey:    mw.TitleKey,
			TitleCustom: mw.Title,
			DataSource:  mw.DataSource,
			Metric:      mw.Metric,
			Layout: WidgetLayout{
				X: mw.X,
				Y: mw.Y,
				W: mw.W,
				H: mw.H,
			},
			Config: mw.Config,
		})
	}
	return d
}
