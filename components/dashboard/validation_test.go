package dashboard

import (
	"strings"
	"testing"
)

func validWidget() Widget {
	return Widget{
		ID:         "w1",
		Type:       TypeKPI,
		DataSource: SourceSales,
		Metric:     MetricCount,
		Layout:     WidgetLayout{X: 0, Y: 0, W: 3, H: 2},
	}
}

func TestValidateWidget(t *testing.T) {
	reg := NewRegistry()

	if err := ValidateWidget(reg, validWidget()); err != nil {
		t.Fatalf("valid widget: %v", err)
	}

	w := validWidget()
	w.Type = "hologram"
	if err := ValidateWidget(reg, w); err == nil {
		t.Fatal("unknown type must fail")
	}

	w = validWidget()
	w.Type = TypeSparkline
	if err := ValidateWidget(reg, w); err == nil {
		t.Fatal("sparklines do not support the count metric")
	}

	w = validWidget()
	w.Layout.X = 10
	if err := ValidateWidget(reg, w); err == nil {
		t.Fatal("the right edge cannot pass the grid")
	}

	w = validWidget()
	w.Layout.W = 0
	if err := ValidateWidget(reg, w); err == nil {
		t.Fatal("zero width must fail")
	}
}

func TestValidateWidgetExternalConfig(t *testing.T) {
	reg := NewRegistry()

	w := validWidget()
	w.DataSource = SourceExternalAPI
	if err := ValidateWidget(reg, w); err == nil {
		t.Fatal("external source requires an API config")
	}

	w.Config.ExternalAPI = &ExternalAPIConfig{Method: "GET"}
	if err := ValidateWidget(reg, w); err == nil {
		t.Fatal("external config requires a url")
	}

	w.Config.ExternalAPI.URL = "https://example.test/feed"
	if err := ValidateWidget(reg, w); err != nil {
		t.Fatalf("complete external config: %v", err)
	}

	w.DataSource = SourceSales
	if err := ValidateWidget(reg, w); err == nil {
		t.Fatal("internal sources must not carry an external config")
	}
}

func TestValidateDashboardDuplicateIDs(t *testing.T) {
	reg := NewRegistry()
	d := Dashboard{
		Name:    "Test",
		Widgets: []Widget{validWidget(), validWidget()},
	}
	err := ValidateDashboard(reg, d)
	if err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("duplicate ids: %v", err)
	}

	// Empty ids (templates before instantiation) are exempt from the check.
	d.Widgets[0].ID = ""
	d.Widgets[1].ID = ""
	if err := ValidateDashboard(reg, d); err != nil {
		t.Fatalf("template widgets: %v", err)
	}
}

func TestJSONSchemaValidatorRejectsUnknownFields(t *testing.T) {
	reg := NewRegistry()
	spec, _ := reg.Spec(TypeKPI)
	v := NewJSONSchemaValidator()

	if err := v.Validate(spec, WidgetConfig{}); err != nil {
		t.Fatalf("empty config: %v", err)
	}
	if err := v.Validate(spec, WidgetConfig{Color: "#ff0000", FontSize: 24}); err != nil {
		t.Fatalf("kpi config: %v", err)
	}

	// KPI widgets have no legend; the schema drops the property.
	show := true
	if err := v.Validate(spec, WidgetConfig{ShowLegend: &show}); err == nil {
		t.Fatal("unknown properties must be rejected")
	}
}

func TestJSONSchemaValidatorBounds(t *testing.T) {
	reg := NewRegistry()
	spec, _ := reg.Spec(TypeKPI)
	v := NewJSONSchemaValidator()

	if err := v.Validate(spec, WidgetConfig{FontSize: 500}); err == nil {
		t.Fatal("font size above the maximum must fail")
	}
}
