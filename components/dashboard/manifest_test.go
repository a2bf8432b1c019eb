package dashboard

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleManifest = `
version: "1"
name: starter boards
dashboards:
  - name: Sales Overview
    auto_refresh: 300
    widgets:
      - type: kpi
        title_key: dashboard.widget.sales_revenue
        data_source: sales
        metric: revenue
        x: 0
        y: 0
        w: 3
        h: 2
      - type: pie
        title: Offer Status
        data_source: offers
        metric: statusBreakdown
        x: 3
        y: 0
        w: 4
        h: 4
`

func TestDecodeTemplateManifest(t *testing.T) {
	doc, err := DecodeTemplateManifest(strings.NewReader(sampleManifest))
	require.NoError(t, err)

	assert.Equal(t, ManifestVersion, doc.Version)
	require.Len(t, doc.Dashboards, 1)

	tmpl := doc.Dashboards[0]
	assert.Equal(t, "Sales Overview", tmpl.Name)
	assert.Equal(t, 300, tmpl.AutoRefresh)
	require.Len(t, tmpl.Widgets, 2)
	assert.Equal(t, TypeKPI, tmpl.Widgets[0].Type)
	assert.Equal(t, SourceOffers, tmpl.Widgets[1].DataSource)
}

func TestDecodeTemplateManifestRejectsUnknownFields(t *testing.T) {
	_, err := DecodeTemplateManifest(strings.NewReader(`
version: "1"
dashboards:
  - name: Test
    widgets: []
    surprise: true
`))
	require.Error(t, err)
}

func TestDecodeTemplateManifestEmpty(t *testing.T) {
	_, err := DecodeTemplateManifest(strings.NewReader(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestDecodeTemplateManifestDefaultsVersion(t *testing.T) {
	doc, err := DecodeTemplateManifest(strings.NewReader(`
dashboards:
  - name: Test
    widgets: []
`))
	require.NoError(t, err)
	assert.Equal(t, ManifestVersion, doc.Version)
}

func TestManifestValidate(t *testing.T) {
	reg := NewRegistry()

	doc, err := DecodeTemplateManifest(strings.NewReader(sampleManifest))
	require.NoError(t, err)
	require.NoError(t, doc.Validate(reg))

	doc.Version = "2"
	require.Error(t, doc.Validate(reg))
	doc.Version = ManifestVersion

	doc.Dashboards = append(doc.Dashboards, doc.Dashboards[0])
	err = doc.Validate(reg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicates")
}

func TestManifestValidateBadCombination(t *testing.T) {
	doc, err := DecodeTemplateManifest(strings.NewReader(`
version: "1"
dashboards:
  - name: Broken
    widgets:
      - type: sparkline
        data_source: sales
        metric: revenue
        x: 0
        y: 0
        w: 3
        h: 2
`))
	require.NoError(t, err)
	require.Error(t, doc.Validate(NewRegistry()))
}

func TestManifestTemplates(t *testing.T) {
	doc, err := DecodeTemplateManifest(strings.NewReader(sampleManifest))
	require.NoError(t, err)

	templates := doc.Templates()
	require.Len(t, templates, 1)

	d := templates[0]
	assert.Equal(t, "Sales Overview", d.Name)
	assert.Equal(t, 300, d.AutoRefresh)
	require.Len(t, d.Widgets, 2)
	assert.Empty(t, d.Widgets[0].ID, "ids are assigned at creation, not in the manifest")
	assert.Equal(t, "Offer Status", d.Widgets[1].TitleCustom)
	assert.Equal(t, WidgetLayout{X: 3, Y: 0, W: 4, H: 4}, d.Widgets[1].Layout)
	assert.NotZero(t, d.Grid.RowHeight)
}
