package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/alecthomas/kong"
	"github.com/ettle/strcase"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/vantage-crm/go-dashboards/components/dashboard"
	"github.com/vantage-crm/go-dashboards/pkg/dashstore"
)

type cli struct {
	Validate validateCmd `cmd:"" help:"Validate a dashboard template manifest against the widget registry."`
	Scaffold scaffoldCmd `cmd:"" help:"Add a dashboard template entry to a manifest."`
	Seed     seedCmd     `cmd:"" help:"Instantiate manifest templates into a local JSON store."`
}

type validateCmd struct {
	ManifestPath string `arg:"" type:"path" help:"Path to the template manifest YAML file."`
}

type scaffoldCmd struct {
	Name         string `required:"" help:"Display name for the dashboard template."`
	ManifestPath string `required:"" type:"path" help:"Path to the manifest YAML file to update."`
	AutoRefresh  int    `help:"Auto refresh interval in seconds (0 disables)."`
	Overwrite    bool   `help:"Overwrite an existing template with the same name."`
}

type seedCmd struct {
	ManifestPath string `arg:"" type:"path" help:"Path to the template manifest YAML file."`
	StorePath    string `default:"dashboards.json" type:"path" help:"Path to the local JSON store to seed."`
}

func main() {
	ctx := kong.Parse(&cli{},
		kong.Description("Dashboard template utility for vantage dashboards."),
		kong.UsageOnError(),
	)
	err := ctx.Run(context.Background())
	ctx.FatalIfErrorf(err)
}

func (cmd *validateCmd) Run(_ context.Context) error {
	doc, err := dashboard.ReadTemplateManifest(cmd.ManifestPath)
	if err != nil {
		return err
	}
	if err := doc.Validate(dashboard.NewRegistry()); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ %s: %d template(s) valid\n", cmd.ManifestPath, len(doc.Dashboards))
	return nil
}

func (cmd *scaffoldCmd) Run(_ context.Context) error {
	manifestPath, err := filepath.Abs(cmd.ManifestPath)
	if err != nil {
		return fmt.Errorf("dashctl: resolve manifest path: %w", err)
	}
	doc, err := loadOrInitManifest(manifestPath)
	if err != nil {
		return err
	}

	entry := dashboard.ManifestDashboard{
		Name:        cmd.Name,
		AutoRefresh: cmd.AutoRefresh,
		Widgets: []dashboard.ManifestWidget{
			{
				Type:       dashboard.TypeKPI,
				TitleKey:   fmt.Sprintf("dashboard.%s.total", strcase.ToSnake(cmd.Name)),
				DataSource: dashboard.SourceSales,
				Metric:     dashboard.MetricCount,
				X:          0, Y: 0, W: 3, H: 2,
			},
		},
	}

	replaced := false
	for idx := range doc.Dashboards {
		if doc.Dashboards[idx].Name == cmd.Name {
			if !cmd.Overwrite {
				return fmt.Errorf("dashctl: manifest already defines template %q (use --overwrite to replace)", cmd.Name)
			}
			doc.Dashboards[idx] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		doc.Dashboards = append(doc.Dashboards, entry)
	}
	sort.Slice(doc.Dashboards, func(i, j int) bool {
		return doc.Dashboards[i].Name < doc.Dashboards[j].Name
	})

	if err := writeManifest(manifestPath, doc); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Added template %q to %s\n", cmd.Name, manifestPath)
	return nil
}

func (cmd *seedCmd) Run(ctx context.Context) error {
	doc, err := dashboard.ReadTemplateManifest(cmd.ManifestPath)
	if err != nil {
		return err
	}
	reg := dashboard.NewRegistry()
	if err := doc.Validate(reg); err != nil {
		return err
	}
	store, err := dashstore.NewLocalStore(cmd.StorePath)
	if err != nil {
		return err
	}
	for _, tmpl := range doc.Templates() {
		for i := range tmpl.Widgets {
			tmpl.Widgets[i].ID = uuid.NewString()
		}
		created, err := store.Create(ctx, tmpl)
		if err != nil {
			return fmt.Errorf("dashctl: seed template %q: %w", tmpl.Name, err)
		}
		fmt.Fprintf(os.Stdout, "✓ Seeded %q as dashboard %d\n", created.Name, created.ID)
	}
	return nil
}

func loadOrInitManifest(path string) (*dashboard.TemplateManifestDocument, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &dashboard.TemplateManifestDocument{
				Version: dashboard.ManifestVersion,
				Source:  path,
			}, nil
		}
		return nil, fmt.Errorf("dashctl: stat manifest: %w", err)
	}
	return dashboard.ReadTemplateManifest(path)
}

func writeManifest(path string, doc *dashboard.TemplateManifestDocument) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("dashctl: mkdir %s: %w", filepath.Dir(path), err)
	}
	tmpDoc := *doc
	tmpDoc.Source = ""

	file, err := os.Create(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("dashctl: create manifest %s: %w", path, err)
	}
	defer file.Close()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	defer encoder.Close()
	if err := encoder.Encode(tmpDoc); err != nil {
		return fmt.Errorf("dashctl: write manifest: %w", err)
	}
	return nil
}
