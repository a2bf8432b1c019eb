package dashboard

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/goodsign/monday"
)

// chartPalette is cycled by first-seen group index for breakdown charts.
var chartPalette = []string{
	"#2563eb", "#16a34a", "#f59e0b", "#dc2626", "#7c3aed",
	"#0891b2", "#db2777", "#65a30d", "#ea580c", "#475569",
}

// completedStatuses feed the completionRate metric.
var completedStatuses = map[string]bool{
	"done":      true,
	"completed": true,
	"closed":    true,
	"invoiced":  true,
}

const topItemsLimit = 10

// Resolver maps a widget's declared data source and metric onto a concrete
// value, chart series, or table rows. Internal reductions are defensive and
// never fail; external sources go through the ExternalClient.
type Resolver struct {
	datasets DatasetProvider
	external *ExternalClient
	currency CurrencyFormatter
	locale   string
	cache    *ResultCache
	now      func() time.Time
}

// ResolverOption customizes resolver behavior.
type ResolverOption func(*Resolver)

// WithCurrencyFormatter injects the locale/currency-aware formatter.
func WithCurrencyFormatter(f CurrencyFormatter) ResolverOption {
	return func(r *Resolver) {
		if f != nil {
			r.currency = f
		}
	}
}

// WithLocale sets the UI locale used for month labels.
func WithLocale(locale string) ResolverOption {
	return func(r *Resolver) {
		if locale != "" {
			r.locale = locale
		}
	}
}

// WithExternalClient injects the client used for externalApi widgets.
func WithExternalClient(client *ExternalClient) ResolverOption {
	return func(r *Resolver) {
		r.external = client
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) ResolverOption {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}

// NewResolver builds a resolver with safe defaults.
func NewResolver(datasets DatasetProvider, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		datasets: datasets,
		external: NewExternalClient(ExternalClientConfig{}),
		currency: NewCurrencyFormatter("en", "EUR"),
		locale:   "en",
		cache:    NewResultCache(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve computes the renderable payload for a widget under the active date
// filter. While new data is loading the previously computed result is
// preserved and returned if one exists; otherwise an explicit loading state is
// reported.
func (r *Resolver) Resolve(ctx context.Context, w Widget, filter DateRange) Result {
	key := resultKey(w, filter)

	if w.DataSource == SourceExternalAPI {
		result, err := r.external.Fetch(ctx, w.Config.ExternalAPI)
		if err != nil {
			if prev, ok := r.cache.Get(key); ok {
				return prev
			}
			return Result{Err: err.Error()}
		}
		r.cache.Set(key, result)
		return result
	}

	if r.datasets == nil {
		return Result{Loading: true}
	}
	if r.datasets.IsLoading() {
		if prev, ok := r.cache.Get(key); ok {
			return prev
		}
		return Result{Loading: true}
	}
	ds, err := r.datasets.Snapshot(ctx)
	if err != nil {
		if prev, ok := r.cache.Get(key); ok {
			return prev
		}
		return Result{Err: err.Error()}
	}
	result := r.ResolveFromDataset(ds, w, filter)
	r.cache.Set(key, result)
	return result
}

// ResolveFromDataset reduces a widget against an already-materialized dataset.
// Shared dashboards use this path with their frozen snapshot.
func (r *Resolver) ResolveFromDataset(ds Dataset, w Widget, filter DateRange) Result {
	items := filter.FilterItems(ds.Items[w.DataSource], "")
	switch w.Metric {
	case MetricCount, MetricTotal:
		return Result{Value: strconv.Itoa(len(items))}
	case MetricRevenue:
		return Result{Value: r.currency.Format(r.sumAmounts(w.DataSource, items))}
	case MetricAverage:
		avg := 0.0
		if len(items) > 0 {
			avg = sumAmounts(items) / float64(len(items))
		}
		return Result{Value: r.currency.Format(avg)}
	case MetricConversionRate:
		return Result{Value: formatPercent(conversionRate(ds, w.DataSource))}
	case MetricCompletionRate:
		return Result{Value: formatPercent(completionRate(items))}
	case MetricStatusBreakdown:
		return breakdown(items, "status", "unknown")
	case MetricPriorityBreakdown:
		return breakdown(items, "priority", "none")
	case MetricMonthlyTrend:
		return r.monthlyTrend(items)
	case MetricTopItems:
		return topItems(items)
	default:
		return Result{Value: "0"}
	}
}

// sumAmounts for the revenue metric: only sales and offers carry revenue,
// every other source yields formatted zero.
func (r *Resolver) sumAmounts(source DataSource, items []Item) float64 {
	if source != SourceSales && source != SourceOffers {
		return 0
	}
	return sumAmounts(items)
}

func sumAmounts(items []Item) float64 {
	total := 0.0
	for _, item := range items {
		total += itemAmount(item)
	}
	return total
}

func conversionRate(ds Dataset, source DataSource) float64 {
	var rate float64
	switch source {
	case SourceSales:
		rate = ds.SalesStats.ConversionRate
	case SourceOffers:
		rate = ds.OffersStats.ConversionRate
	default:
		return 0
	}
	return clampPercent(rate)
}

func completionRate(items []Item) float64 {
	if len(items) == 0 {
		return 0
	}
	done := 0
	for _, item := range items {
		if completedStatuses[itemField(item, "status", "")] {
			done++
		}
	}
	return math.Round(float64(done) / float64(len(items)) * 100)
}

// breakdown groups items by a field, emitting one chart entry per bucket in
// first-seen order with a palette color cycled by index.
func breakdown(items []Item, field, fallback string) Result {
	counts := map[string]int{}
	var order []string
	for _, item := range items {
		bucket := itemField(item, field, fallback)
		if _, seen := counts[bucket]; !seen {
			order = append(order, bucket)
		}
		counts[bucket]++
	}
	points := make([]ChartPoint, len(order))
	for i, bucket := range order {
		points[i] = ChartPoint{
			Name:  bucket,
			Value: float64(counts[bucket]),
			Color: chartPalette[i%len(chartPalette)],
		}
	}
	return Result{
		Value:     strconv.Itoa(len(items)),
		ChartData: points,
	}
}

// monthlyTrend counts items per creation month for the six calendar months
// ending at the current month, oldest first. Month labels follow the active
// UI locale.
func (r *Resolver) monthlyTrend(items []Item) Result {
	now := r.now()
	currentMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	points := make([]ChartPoint, 0, 6)
	trend := make([]TrendPoint, 0, 6)
	for offset := -5; offset <= 0; offset++ {
		monthStart := currentMonth.AddDate(0, offset, 0)
		monthEnd := monthStart.AddDate(0, 1, 0)
		count := 0
		for _, item := range items {
			if ts, ok := itemDate(item, ""); ok && !ts.Before(monthStart) && ts.Before(monthEnd) {
				count++
			}
		}
		points = append(points, ChartPoint{
			Name:  monday.Format(monthStart, "Jan", mondayLocale(r.locale)),
			Value: float64(count),
		})
		trend = append(trend, TrendPoint{Value: float64(count)})
	}
	return Result{
		Value:     strconv.Itoa(len(items)),
		ChartData: points,
		TrendData: trend,
	}
}

// topItems projects the first ten items, in list order, to table rows.
func topItems(items []Item) Result {
	limit := topItemsLimit
	if len(items) < limit {
		limit = len(items)
	}
	rows := make([]TableRow, limit)
	for i := 0; i < limit; i++ {
		item := items[i]
		rows[i] = TableRow{
			"id":     item["id"],
			"name":   itemName(item),
			"status": itemField(item, "status", ""),
			"amount": itemAmount(item),
			"date":   itemField(item, "date", itemField(item, "createdAt", "")),
		}
	}
	return Result{
		Value:     strconv.Itoa(len(items)),
		TableData: rows,
	}
}

func itemAmount(item Item) float64 {
	if v, ok := pathNumber(item["totalAmount"]); ok {
		return v
	}
	if v, ok := pathNumber(item["amount"]); ok {
		return v
	}
	return 0
}

func itemField(item Item, field, fallback string) string {
	if v, ok := item[field]; ok {
		if s := pathString(v); s != "" {
			return s
		}
	}
	return fallback
}

func itemName(item Item) string {
	for _, field := range []string{"name", "title", "orderNumber"} {
		if s := itemField(item, field, ""); s != "" {
			return s
		}
	}
	if id := pathString(item["id"]); id != "" {
		return "#" + id
	}
	return ""
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(clampPercent(v), 'f', -1, 64) + "%"
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func resultKey(w Widget, filter DateRange) string {
	return fmt.Sprintf("%s:%s:%s:%s", w.ID, w.DataSource, w.Metric, filter.Key())
}

var mondayLocales = map[string]monday.Locale{
	"en": monday.LocaleEnUS,
	"de": monday.LocaleDeDE,
	"fr": monday.LocaleFrFR,
	"es": monday.LocaleEsES,
	"it": monday.LocaleItIT,
	"nl": monday.LocaleNlNL,
	"pt": monday.LocalePtPT,
	"pl": monday.LocalePlPL,
	"tr": monday.LocaleTrTR,
}

func mondayLocale(locale string) monday.Locale {
	if loc, ok := mondayLocales[normalizeLocale(locale)]; ok {
		return loc
	}
	if idx := len(locale); idx > 2 {
		if loc, ok := mondayLocales[normalizeLocale(locale[:2])]; ok {
			return loc
		}
	}
	return monday.LocaleEnUS
}
