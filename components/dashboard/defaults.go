package dashboard

var internalSources = []DataSource{
	SourceSales,
	SourceOffers,
	SourceContacts,
	SourceTasks,
	SourceArticles,
	SourceServiceOrders,
	SourceDispatches,
	SourceTimeExpenses,
}

func allSources() []DataSource {
	out := make([]DataSource, 0, len(internalSources)+1)
	out = append(out, internalSources...)
	return append(out, SourceExternalAPI)
}

var defaultTypeSpecs = []WidgetTypeSpec{
	{
		Type:          TypeKPI,
		Category:      CategoryKPI,
		DefaultLayout: WidgetLayout{W: 3, H: 2, MinW: 2, MinH: 2, MaxH: 4},
		Metrics: []Metric{
			MetricCount, MetricTotal, MetricRevenue, MetricAverage,
			MetricConversionRate, MetricCompletionRate,
		},
		DataSources:  allSources(),
		ConfigSchema: kpiConfigSchema(),
	},
	{
		Type:          TypeSparkline,
		Category:      CategoryKPI,
		DefaultLayout: WidgetLayout{W: 3, H: 2, MinW: 2, MinH: 2, MaxH: 4},
		Metrics:       []Metric{MetricMonthlyTrend},
		DataSources:   allSources(),
		ConfigSchema:  kpiConfigSchema(),
	},
	{
		Type:          TypeBar,
		Category:      CategoryChart,
		DefaultLayout: WidgetLayout{W: 6, H: 4, MinW: 3, MinH: 3},
		Metrics: []Metric{
			MetricStatusBreakdown, MetricPriorityBreakdown,
			MetricMonthlyTrend, MetricTopItems,
		},
		DataSources:  allSources(),
		ConfigSchema: chartConfigSchema(true),
	},
	{
		Type:          TypeStackedBar,
		Category:      CategoryChart,
		DefaultLayout: WidgetLayout{W: 6, H: 4, MinW: 3, MinH: 3},
		Metrics: []Metric{
			MetricStatusBreakdown, MetricPriorityBreakdown, MetricMonthlyTrend,
		},
		DataSources:  internalSources,
		ConfigSchema: chartConfigSchema(true),
	},
	{
		Type:          TypePie,
		Category:      CategoryChart,
		DefaultLayout: WidgetLayout{W: 4, H: 4, MinW: 3, MinH: 3},
		Metrics:       []Metric{MetricStatusBreakdown, MetricPriorityBreakdown},
		DataSources:   allSources(),
		ConfigSchema:  chartConfigSchema(false),
	},
	{
		Type:          TypeDonut,
		Category:      CategoryChart,
		DefaultLayout: WidgetLayout{W: 4, H: 4, MinW: 3, MinH: 3},
		Metrics:       []Metric{MetricStatusBreakdown, MetricPriorityBreakdown},
		DataSources:   allSources(),
		ConfigSchema:  chartConfigSchema(false),
	},
	{
		Type:          TypeLine,
		Category:      CategoryChart,
		DefaultLayout: WidgetLayout{W: 6, H: 4, MinW: 3, MinH: 3},
		Metrics:       []Metric{MetricMonthlyTrend},
		DataSources:   allSources(),
		ConfigSchema:  chartConfigSchema(true),
	},
	{
		Type:          TypeArea,
		Category:      CategoryChart,
		DefaultLayout: WidgetLayout{W: 6, H: 4, MinW: 3, MinH: 3},
		Metrics:       []Metric{MetricMonthlyTrend},
		DataSources:   allSources(),
		ConfigSchema:  chartConfigSchema(true),
	},
	{
		Type:          TypeTable,
		Category:      CategoryData,
		DefaultLayout: WidgetLayout{W: 6, H: 4, MinW: 4, MinH: 3},
		Metrics:       []Metric{MetricTopItems},
		DataSources:   allSources(),
		ConfigSchema:  tableConfigSchema(),
	},
	{
		Type:          TypeGauge,
		Category:      CategoryProgress,
		DefaultLayout: WidgetLayout{W: 3, H: 3, MinW: 2, MinH: 3},
		Metrics:       []Metric{MetricConversionRate, MetricCompletionRate},
		DataSources:   internalSources,
		ConfigSchema:  kpiConfigSchema(),
	},
	{
		Type:          TypeFunnel,
		Category:      CategoryChart,
		DefaultLayout: WidgetLayout{W: 4, H: 4, MinW: 3, MinH: 3},
		Metrics:       []Metric{MetricStatusBreakdown},
		DataSources:   internalSources,
		ConfigSchema:  chartConfigSchema(false),
	},
	{
		Type:          TypeRadar,
		Category:      CategoryChart,
		DefaultLayout: WidgetLayout{W: 4, H: 4, MinW: 3, MinH: 3},
		Metrics:       []Metric{MetricStatusBreakdown, MetricPriorityBreakdown},
		DataSources:   internalSources,
		ConfigSchema:  chartConfigSchema(false),
	},
	{
		Type:          TypeHeatmap,
		Category:      CategoryChart,
		DefaultLayout: WidgetLayout{W: 6, H: 4, MinW: 4, MinH: 3},
		Metrics:       []Metric{MetricMonthlyTrend, MetricStatusBreakdown},
		DataSources:   internalSources,
		ConfigSchema:  chartConfigSchema(true),
	},
	{
		Type:          TypeMap,
		Category:      CategoryData,
		DefaultLayout: WidgetLayout{W: 6, H: 4, MinW: 4, MinH: 3},
		Metrics:       []Metric{MetricCount, MetricTopItems},
		DataSources:   internalSources,
		ConfigSchema:  tableConfigSchema(),
	},
}

// DefaultWidgetTypeSpecs returns copies of the built-in widget type specs.
func DefaultWidgetTypeSpecs() []WidgetTypeSpec {
	out := make([]WidgetTypeSpec, len(defaultTypeSpecs))
	copy(out, defaultTypeSpecs)
	return out
}

func baseConfigProperties() map[string]any {
	return map[string]any{
		"color":        map[string]any{"type": "string"},
		"showLegend":   map[string]any{"type": "boolean", "default": true},
		"showLabels":   map[string]any{"type": "boolean", "default": true},
		"showGrid":     map[string]any{"type": "boolean", "default": true},
		"axisPrefix":   map[string]any{"type": "string"},
		"axisSuffix":   map[string]any{"type": "string"},
		"icon":         map[string]any{"type": "string"},
		"fontSize":     map[string]any{"type": "integer", "minimum": 8, "maximum": 96},
		"fontWeight":   map[string]any{"type": "string"},
		"borderRadius": map[string]any{"type": "integer", "minimum": 0, "maximum": 48},
		"animate":      map[string]any{"type": "boolean", "default": true},
		"background":   map[string]any{"type": "string"},
		"externalApi":  externalAPISchema(),
	}
}

func externalAPISchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"url", "method"},
		"properties": map[string]any{
			"url":    map[string]any{"type": "string", "minLength": 1},
			"method": map[string]any{"type": "string", "enum": []string{"GET", "POST"}},
			"headers": map[string]any{
				"type":                 "object",
				"additionalProperties": map[string]any{"type": "string"},
			},
			"body":            map[string]any{"type": "string"},
			"valuePath":       map[string]any{"type": "string"},
			"labelPath":       map[string]any{"type": "string"},
			"dataPath":        map[string]any{"type": "string"},
			"refreshInterval": map[string]any{"type": "integer", "minimum": 0, "maximum": 86400, "default": 0},
		},
		"additionalProperties": false,
	}
}

func chartConfigSchema(includeAxis bool) map[string]any {
	props := baseConfigProperties()
	if !includeAxis {
		delete(props, "axisPrefix")
		delete(props, "axisSuffix")
		delete(props, "showGrid")
	}
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"additionalProperties": false,
	}
}

func kpiConfigSchema() map[string]any {
	props := baseConfigProperties()
	delete(props, "showLegend")
	delete(props, "showGrid")
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"additionalProperties": false,
	}
}

func tableConfigSchema() map[string]any {
	props := baseConfigProperties()
	delete(props, "axisPrefix")
	delete(props, "axisSuffix")
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"additionalProperties": false,
	}
}

// DefaultGridSettings returns the grid display defaults used by new dashboards.
func DefaultGridSettings() GridSettings {
	return GridSettings{
		Gap:          16,
		RowHeight:    80,
		CornerRadius: 12,
		CardStyle:    "elevated",
		Animation:    "fade",
	}
}

var defaultTemplates = []Dashboard{
	{
		Name: "Sales Overview",
		Grid: DefaultGridSettings(),
		Widgets: []Widget{
			{
				Type:       TypeKPI,
				TitleKey:   "dashboard.widget.sales_revenue",
				DataSource: SourceSales,
				Metric:     MetricRevenue,
				Layout:     WidgetLayout{X: 0, Y: 0, W: 3, H: 2, MinW: 2, MinH: 2},
			},
			{
				Type:       TypeKPI,
				TitleKey:   "dashboard.widget.offers_count",
				DataSource: SourceOffers,
				Metric:     MetricCount,
				Layout:     WidgetLayout{X: 3, Y: 0, W: 3, H: 2, MinW: 2, MinH: 2},
			},
			{
				Type:       TypeGauge,
				TitleKey:   "dashboard.widget.conversion",
				DataSource: SourceSales,
				Metric:     MetricConversionRate,
				Layout:     WidgetLayout{X: 6, Y: 0, W: 3, H: 3, MinW: 2, MinH: 3},
			},
			{
				Type:       TypeLine,
				TitleKey:   "dashboard.widget.sales_trend",
				DataSource: SourceSales,
				Metric:     MetricMonthlyTrend,
				Layout:     WidgetLayout{X: 0, Y: 2, W: 6, H: 4, MinW: 3, MinH: 3},
			},
			{
				Type:       TypePie,
				TitleKey:   "dashboard.widget.offer_status",
				DataSource: SourceOffers,
				Metric:     MetricStatusBreakdown,
				Layout:     WidgetLayout{X: 6, Y: 3, W: 4, H: 4, MinW: 3, MinH: 3},
			},
		},
	},
	{
		Name: "Operations",
		Grid: DefaultGridSettings(),
		Widgets: []Widget{
			{
				Type:       TypeKPI,
				TitleKey:   "dashboard.widget.open_tasks",
				DataSource: SourceTasks,
				Metric:     MetricCount,
				Layout:     WidgetLayout{X: 0, Y: 0, W: 3, H: 2, MinW: 2, MinH: 2},
			},
			{
				Type:       TypeGauge,
				TitleKey:   "dashboard.widget.task_completion",
				DataSource: SourceTasks,
				Metric:     MetricCompletionRate,
				Layout:     WidgetLayout{X: 3, Y: 0, W: 3, H: 3, MinW: 2, MinH: 3},
			},
			{
				Type:       TypeBar,
				TitleKey:   "dashboard.widget.dispatch_priority",
				DataSource: SourceDispatches,
				Metric:     MetricPriorityBreakdown,
				Layout:     WidgetLayout{X: 6, Y: 0, W: 6, H: 4, MinW: 3, MinH: 3},
			},
			{
				Type:       TypeTable,
				TitleKey:   "dashboard.widget.recent_service_orders",
				DataSource: SourceServiceOrders,
				Metric:     MetricTopItems,
				Layout:     WidgetLayout{X: 0, Y: 3, W: 6, H: 4, MinW: 4, MinH: 3},
			},
		},
	},
}

// DefaultTemplates returns deep copies of the starter dashboard templates.
// Widget IDs are left empty; the service assigns them on creation.
func DefaultTemplates() []Dashboard {
	out := make([]Dashboard, len(defaultTemplates))
	for i, tmpl := range defaultTemplates {
		cp := tmpl
		cp.Widgets = make([]Widget, len(tmpl.Widgets))
		copy(cp.Widgets, tmpl.Widgets)
		out[i] = cp
	}
	return out
}
