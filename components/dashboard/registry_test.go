package dashboard

import "testing"

func TestRegistryDefaults(t *testing.T) {
	reg := NewRegistry()

	specs := reg.Specs()
	if len(specs) != 14 {
		t.Fatalf("built-in widget types: %d", len(specs))
	}
	if specs[0].Type != TypeKPI {
		t.Fatalf("registration order: %s", specs[0].Type)
	}

	spec, ok := reg.Spec(TypeGauge)
	if !ok {
		t.Fatal("gauge spec missing")
	}
	if spec.DefaultLayout.W <= 0 || spec.DefaultLayout.H <= 0 {
		t.Fatalf("default layout: %+v", spec.DefaultLayout)
	}
}

func TestRegistryCombinations(t *testing.T) {
	reg := NewRegistry()

	if !reg.IsValidCombination(TypeKPI, SourceSales, MetricRevenue) {
		t.Fatal("kpi/sales/revenue is valid")
	}
	if reg.IsValidCombination(TypeGauge, SourceExternalAPI, MetricConversionRate) {
		t.Fatal("gauges read internal sources only")
	}
	if reg.IsValidCombination(TypeLine, SourceSales, MetricCount) {
		t.Fatal("line charts only plot trends")
	}
	if reg.IsValidCombination("hologram", SourceSales, MetricCount) {
		t.Fatal("unknown types are invalid")
	}
}

func TestRegistryRegisterType(t *testing.T) {
	reg := NewRegistry()

	err := reg.RegisterType(WidgetTypeSpec{Type: "custom"})
	if err == nil {
		t.Fatal("specs without metrics must be refused")
	}

	err = reg.RegisterType(WidgetTypeSpec{
		Type:          "custom",
		Category:      CategoryData,
		DefaultLayout: WidgetLayout{W: 4, H: 3},
		Metrics:       []Metric{MetricCount},
		DataSources:   []DataSource{SourceSales},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if !reg.IsValidCombination("custom", SourceSales, MetricCount) {
		t.Fatal("registered combination must validate")
	}

	// Re-registering replaces without duplicating the order entry.
	before := len(reg.Specs())
	_ = reg.RegisterType(WidgetTypeSpec{
		Type:        "custom",
		Metrics:     []Metric{MetricTotal},
		DataSources: []DataSource{SourceTasks},
	})
	if len(reg.Specs()) != before {
		t.Fatal("replacement must not grow the spec list")
	}
}
