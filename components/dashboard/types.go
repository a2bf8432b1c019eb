package dashboard

import (
	"context"
	"time"
)

// WidgetType identifies the visual widget kind placed on the grid.
type WidgetType string

// Supported widget types.
const (
	TypeKPI        WidgetType = "kpi"
	TypeBar        WidgetType = "bar"
	TypePie        WidgetType = "pie"
	TypeDonut      WidgetType = "donut"
	TypeLine       WidgetType = "line"
	TypeArea       WidgetType = "area"
	TypeTable      WidgetType = "table"
	TypeGauge      WidgetType = "gauge"
	TypeSparkline  WidgetType = "sparkline"
	TypeFunnel     WidgetType = "funnel"
	TypeRadar      WidgetType = "radar"
	TypeStackedBar WidgetType = "stackedBar"
	TypeHeatmap    WidgetType = "heatmap"
	TypeMap        WidgetType = "map"
)

// DataSource names the backing dataset a widget reads from.
type DataSource string

// Supported data sources.
const (
	SourceSales         DataSource = "sales"
	SourceOffers        DataSource = "offers"
	SourceContacts      DataSource = "contacts"
	SourceTasks         DataSource = "tasks"
	SourceArticles      DataSource = "articles"
	SourceServiceOrders DataSource = "serviceOrders"
	SourceDispatches    DataSource = "dispatches"
	SourceTimeExpenses  DataSource = "timeExpenses"
	SourceExternalAPI   DataSource = "externalApi"
)

// Metric names the reduction applied to a data source.
type Metric string

// Supported metrics.
const (
	MetricCount             Metric = "count"
	MetricTotal             Metric = "total"
	MetricRevenue           Metric = "revenue"
	MetricAverage           Metric = "average"
	MetricStatusBreakdown   Metric = "statusBreakdown"
	MetricPriorityBreakdown Metric = "priorityBreakdown"
	MetricMonthlyTrend      Metric = "monthlyTrend"
	MetricTopItems          Metric = "topItems"
	MetricConversionRate    Metric = "conversionRate"
	MetricCompletionRate    Metric = "completionRate"
)

// WidgetCategory groups widget types in the palette.
type WidgetCategory string

// Palette categories.
const (
	CategoryKPI      WidgetCategory = "kpi"
	CategoryChart    WidgetCategory = "chart"
	CategoryData     WidgetCategory = "data"
	CategoryProgress WidgetCategory = "progress"
)

// WidgetLayout is an integer grid rectangle in the 12-column coordinate system.
// MaxW/MaxH of zero mean unbounded.
type WidgetLayout struct {
	X    int `json:"x"`
	Y    int `json:"y"`
	W    int `json:"w"`
	H    int `json:"h"`
	MinW int `json:"minW,omitempty"`
	MinH int `json:"minH,omitempty"`
	MaxW int `json:"maxW,omitempty"`
	MaxH int `json:"maxH,omitempty"`
}

// ExternalAPIConfig configures widgets backed by an arbitrary HTTP endpoint.
// The three dot-paths project a scalar, a label field, and an array out of the
// JSON response. RefreshInterval is in seconds; zero disables auto-refresh.
type ExternalAPIConfig struct {
	URL             string            `json:"url"`
	Method          string            `json:"method"`
	Headers         map[string]string `json:"headers,omitempty"`
	Body            string            `json:"body,omitempty"`
	ValuePath       string            `json:"valuePath,omitempty"`
	LabelPath       string            `json:"labelPath,omitempty"`
	DataPath        string            `json:"dataPath,omitempty"`
	RefreshInterval int               `json:"refreshInterval,omitempty"`
}

// WidgetConfig carries optional visual/behavioral overrides. ExternalAPI is
// present only when the widget's data source is SourceExternalAPI.
type WidgetConfig struct {
	Color        string             `json:"color,omitempty"`
	ShowLegend   *bool              `json:"showLegend,omitempty"`
	ShowLabels   *bool              `json:"showLabels,omitempty"`
	ShowGrid     *bool              `json:"showGrid,omitempty"`
	AxisPrefix   string             `json:"axisPrefix,omitempty"`
	AxisSuffix   string             `json:"axisSuffix,omitempty"`
	Icon         string             `json:"icon,omitempty"`
	FontSize     int                `json:"fontSize,omitempty"`
	FontWeight   string             `json:"fontWeight,omitempty"`
	BorderRadius int                `json:"borderRadius,omitempty"`
	Animate      *bool              `json:"animate,omitempty"`
	Background   string             `json:"background,omitempty"`
	ExternalAPI  *ExternalAPIConfig `json:"externalApi,omitempty"`
}

// Widget is a single configured dashboard tile. The ID is assigned at creation
// and immutable afterwards.
type Widget struct {
	ID                string       `json:"id"`
	Type              WidgetType   `json:"type"`
	TitleKey          string       `json:"titleKey,omitempty"`
	TitleCustom       string       `json:"titleCustom,omitempty"`
	DescriptionKey    string       `json:"descriptionKey,omitempty"`
	DescriptionCustom string       `json:"descriptionCustom,omitempty"`
	DataSource        DataSource   `json:"dataSource"`
	Metric            Metric       `json:"metric"`
	Layout            WidgetLayout `json:"layout"`
	Config            WidgetConfig `json:"config,omitempty"`
}

// GridSettings holds dashboard-level display options.
type GridSettings struct {
	Gap          int    `json:"gap"`
	RowHeight    int    `json:"rowHeight"`
	CornerRadius int    `json:"cornerRadius,omitempty"`
	CardStyle    string `json:"cardStyle,omitempty"`
	Animation    string `json:"animation,omitempty"`
}

// ShareSettings carries public-sharing metadata for a dashboard.
type ShareSettings struct {
	Public bool   `json:"public"`
	Token  string `json:"token,omitempty"`
}

// Dashboard is a named, ordered collection of widgets plus display settings.
// AutoRefresh is the silent dataset refresh interval in seconds (0 = off).
type Dashboard struct {
	ID           int64         `json:"id"`
	Name         string        `json:"name"`
	Widgets      []Widget      `json:"widgets"`
	Grid         GridSettings  `json:"grid"`
	Share        ShareSettings `json:"share"`
	AutoRefresh  int           `json:"autoRefresh,omitempty"`
	DataSnapshot *Dataset      `json:"dataSnapshot,omitempty"`
	CreatedAt    time.Time     `json:"createdAt,omitempty"`
	UpdatedAt    time.Time     `json:"updatedAt,omitempty"`
}

// Item is a loosely-typed record from an aggregated dataset. Field access goes
// through the resolver helpers so missing/renamed fields degrade gracefully.
type Item map[string]any

// SourceStats carries precomputed aggregate statistics supplied alongside the
// raw item lists.
type SourceStats struct {
	ConversionRate float64 `json:"conversionRate"`
	TotalRevenue   float64 `json:"totalRevenue,omitempty"`
	OpenCount      int     `json:"openCount,omitempty"`
}

// Dataset is the shared aggregated snapshot every internal data source reads
// from. It must stay JSON-serializable so it can be frozen into a dashboard
// share snapshot.
type Dataset struct {
	Items       map[DataSource][]Item `json:"items"`
	SalesStats  SourceStats           `json:"salesStats"`
	OffersStats SourceStats           `json:"offersStats"`
}

// DatasetProvider supplies the aggregated datasets plus their loading state.
// SilentRefresh re-fetches without flipping IsLoading so widgets keep their
// last rendered values during background refreshes.
type DatasetProvider interface {
	Snapshot(ctx context.Context) (Dataset, error)
	IsLoading() bool
	SilentRefresh(ctx context.Context) error
}

// CurrencyFormatter renders monetary amounts for the active locale/currency.
type CurrencyFormatter interface {
	Format(amount float64) string
}

// DashboardStore is the persistence strategy for dashboards. Remote and local
// implementations share this contract so callers never observe which one is
// active.
type DashboardStore interface {
	List(ctx context.Context) ([]Dashboard, error)
	Get(ctx context.Context, id int64) (Dashboard, error)
	Create(ctx context.Context, d Dashboard) (Dashboard, error)
	Update(ctx context.Context, d Dashboard) (Dashboard, error)
	Delete(ctx context.Context, id int64) error
	Duplicate(ctx context.Context, id int64) (Dashboard, error)
	FindByShareToken(ctx context.Context, token string) (Dashboard, error)
}

// RefreshHook notifies transports (REST/WebSocket) about dashboard changes.
type RefreshHook interface {
	DashboardUpdated(ctx context.Context, event DashboardEvent) error
}

// DashboardEvent describes changes that transports might care about.
type DashboardEvent struct {
	DashboardID int64  `json:"dashboardId"`
	WidgetID    string `json:"widgetId,omitempty"`
	Reason      string `json:"reason"`
}

// ViewerContext captures the active user/locale information needed to resolve
// widget data and labels.
type ViewerContext struct {
	UserID string
	Roles  []string
	Locale string
}

// ChartPoint is an individual labeled value in a widget's chart series.
type ChartPoint struct {
	Name  string    `json:"name"`
	Value float64   `json:"value"`
	Color string    `json:"color,omitempty"`
	Pair  []float64 `json:"pair,omitempty"`
}

// TrendPoint is a single sparkline/trend value.
type TrendPoint struct {
	Value float64 `json:"value"`
}

// TableRow is one row of a table widget.
type TableRow map[string]any

// Result is the renderable payload computed for a widget. Value is already
// formatted (counts, percentages, currency). Err carries a user-visible error
// string for external sources; internal reductions never fail.
type Result struct {
	Value     string       `json:"value"`
	ChartData []ChartPoint `json:"chartData,omitempty"`
	TableData []TableRow   `json:"tableData,omitempty"`
	TrendData []TrendPoint `json:"trendData,omitempty"`
	Err       string       `json:"error,omitempty"`
	Loading   bool         `json:"loading,omitempty"`
}

// Title returns the effective widget title source: the user override when
// present, otherwise the i18n key.
func (w Widget) Title() string {
	if w.TitleCustom != "" {
		return w.TitleCustom
	}
	return w.TitleKey
}

// Description mirrors Title for the description pair.
func (w Widget) Description() string {
	if w.DescriptionCustom != "" {
		return w.DescriptionCustom
	}
	return w.DescriptionKey
}
