package dashboard

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const (
	defaultChartHeight   = "360px"
	sparklineChartHeight = "80px"
)

var sharedChartCache = NewChartCache(5 * time.Minute)

// ChartRenderer turns resolved widget data into server-side ECharts HTML.
// Rendering is deterministic for a given widget and result, so output is
// memoized behind a TTL cache keyed by the widget configuration and data.
type ChartRenderer struct {
	cache      RenderCache
	theme      string
	assetsHost string
}

// ChartRendererOption customizes renderer behavior.
type ChartRendererOption func(*ChartRenderer)

// WithRenderCache injects a render cache.
func WithRenderCache(cache RenderCache) ChartRendererOption {
	return func(r *ChartRenderer) {
		r.cache = cache
	}
}

// WithChartTheme sets a static theme (defaults to Westeros).
func WithChartTheme(theme string) ChartRendererOption {
	return func(r *ChartRenderer) {
		r.theme = theme
	}
}

// WithChartAssetsHost rewrites the assets host so ECharts JS loads from a CDN.
func WithChartAssetsHost(host string) ChartRendererOption {
	return func(r *ChartRenderer) {
		r.assetsHost = host
	}
}

// NewChartRenderer builds a renderer with safe defaults.
func NewChartRenderer(options ...ChartRendererOption) *ChartRenderer {
	r := &ChartRenderer{
		cache: sharedChartCache,
		theme: types.ThemeWesteros,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Render produces chart HTML for a widget and its resolved result. Widget
// types without a chart body (kpi, table, map) return an error.
func (r *ChartRenderer) Render(w Widget, res Result) (string, error) {
	renderFn := func() (string, error) {
		return r.render(w, res)
	}
	if r.cache == nil {
		return renderFn()
	}
	key := fmt.Sprintf("%s:%s:%s:%s", w.ID, w.Type, configHash(w.Config), configHash(res))
	return r.cache.GetOrRender(key, renderFn)
}

func (r *ChartRenderer) render(w Widget, res Result) (string, error) {
	title := w.Title()
	switch w.Type {
	case TypeBar:
		return r.renderBar(title, w, res.ChartData, false)
	case TypeStackedBar:
		return r.renderBar(title, w, res.ChartData, true)
	case TypeLine:
		return r.renderLine(title, w, chartOrTrend(res), false, defaultChartHeight)
	case TypeArea:
		return r.renderLine(title, w, chartOrTrend(res), true, defaultChartHeight)
	case TypeSparkline:
		return r.renderLine("", w, trendPoints(res.TrendData), true, sparklineChartHeight)
	case TypePie:
		return r.renderPie(title, w, res.ChartData, nil)
	case TypeDonut:
		return r.renderPie(title, w, res.ChartData, []string{"45%", "70%"})
	case TypeGauge:
		return r.renderGauge(title, w, res)
	case TypeFunnel:
		return r.renderFunnel(title, w, res.ChartData)
	case TypeRadar:
		return r.renderRadar(title, w, res.ChartData)
	case TypeHeatmap:
		return r.renderHeatmap(title, w, res.ChartData)
	default:
		return "", fmt.Errorf("dashboard: widget type %q has no chart body", w.Type)
	}
}

func (r *ChartRenderer) renderBar(title string, w Widget, points []ChartPoint, stacked bool) (string, error) {
	bar := charts.NewBar()
	bar.SetGlobalOptions(r.globalChartOptions(title, w, defaultChartHeight)...)
	bar.SetXAxis(pointNames(points))
	bar.AddSeries(title, toBarData(points))
	if stacked {
		bar.SetSeriesOptions(charts.WithBarChartOpts(opts.BarChart{Stack: "total"}))
	}
	return renderChart(bar)
}

func (r *ChartRenderer) renderLine(title string, w Widget, points []ChartPoint, area bool, height string) (string, error) {
	line := charts.NewLine()
	line.SetGlobalOptions(r.globalChartOptions(title, w, height)...)
	line.SetXAxis(pointNames(points))
	line.AddSeries(title, toLineData(points))
	seriesOpts := []charts.SeriesOpts{
		charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
	}
	if area {
		seriesOpts = append(seriesOpts, charts.WithAreaStyleOpts(opts.AreaStyle{Opacity: 0.35}))
	}
	line.SetSeriesOptions(seriesOpts...)
	return renderChart(line)
}

func (r *ChartRenderer) renderPie(title string, w Widget, points []ChartPoint, radius []string) (string, error) {
	pie := charts.NewPie()
	pie.SetGlobalOptions(r.globalChartOptions(title, w, defaultChartHeight)...)
	pie.AddSeries(title, toPieData(points))
	if len(radius) > 0 {
		pie.SetSeriesOptions(charts.WithPieChartOpts(opts.PieChart{Radius: radius}))
	}
	return renderChart(pie)
}

func (r *ChartRenderer) renderGauge(title string, w Widget, res Result) (string, error) {
	gauge := charts.NewGauge()
	gauge.SetGlobalOptions(r.globalChartOptions(title, w, defaultChartHeight)...)
	gauge.AddSeries(title, []opts.GaugeData{
		{Name: title, Value: gaugeValue(res)},
	})
	return renderChart(gauge)
}

func (r *ChartRenderer) renderFunnel(title string, w Widget, points []ChartPoint) (string, error) {
	funnel := charts.NewFunnel()
	funnel.SetGlobalOptions(r.globalChartOptions(title, w, defaultChartHeight)...)
	data := make([]opts.FunnelData, len(points))
	for i, point := range points {
		data[i] = opts.FunnelData{Name: point.Name, Value: point.Value}
	}
	funnel.AddSeries(title, data)
	return renderChart(funnel)
}

func (r *ChartRenderer) renderRadar(title string, w Widget, points []ChartPoint) (string, error) {
	radar := charts.NewRadar()
	indicators := make([]*opts.Indicator, len(points))
	values := make([]float64, len(points))
	max := 0.0
	for _, point := range points {
		if point.Value > max {
			max = point.Value
		}
	}
	if max <= 0 {
		max = 1
	}
	for i, point := range points {
		indicators[i] = &opts.Indicator{Name: point.Name, Max: float32(max)}
		values[i] = point.Value
	}
	global := append(r.globalChartOptions(title, w, defaultChartHeight),
		charts.WithRadarComponentOpts(opts.RadarComponent{Indicator: indicators}),
	)
	radar.SetGlobalOptions(global...)
	radar.AddSeries(title, []opts.RadarData{{Name: title, Value: values}})
	return renderChart(radar)
}

func (r *ChartRenderer) renderHeatmap(title string, w Widget, points []ChartPoint) (string, error) {
	heatmap := charts.NewHeatMap()
	heatmap.SetGlobalOptions(r.globalChartOptions(title, w, defaultChartHeight)...)
	heatmap.SetXAxis(pointNames(points))
	data := make([]opts.HeatMapData, len(points))
	max := 0.0
	for i, point := range points {
		x, y := float64(i), 0.0
		if len(point.Pair) >= 2 {
			x, y = point.Pair[0], point.Pair[1]
		}
		data[i] = opts.HeatMapData{Value: [3]any{x, y, point.Value}}
		if point.Value > max {
			max = point.Value
		}
	}
	if max <= 0 {
		max = 1
	}
	heatmap.AddSeries(title, data)
	heatmap.SetGlobalOptions(charts.WithVisualMapOpts(opts.VisualMap{
		Calculable: opts.Bool(true),
		Max:        float32(max),
	}))
	return renderChart(heatmap)
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (r *ChartRenderer) globalChartOptions(title string, w Widget, height string) []charts.GlobalOpts {
	initOpts := opts.Initialization{
		Theme:  r.theme,
		Width:  "100%",
		Height: height,
	}
	if r.assetsHost != "" {
		initOpts.AssetsHost = r.assetsHost
	}
	showLegend := true
	if w.Config.ShowLegend != nil {
		showLegend = *w.Config.ShowLegend
	}
	if w.Type == TypeSparkline {
		showLegend = false
	}
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithInitializationOpts(initOpts),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(showLegend)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	}
}

func toBarData(points []ChartPoint) []opts.BarData {
	data := make([]opts.BarData, len(points))
	for i, point := range points {
		data[i] = opts.BarData{
			Name:  point.Name,
			Value: point.Value,
		}
		if point.Color != "" {
			data[i].ItemStyle = &opts.ItemStyle{Color: point.Color}
		}
	}
	return data
}

func toLineData(points []ChartPoint) []opts.LineData {
	data := make([]opts.LineData, len(points))
	for i, point := range points {
		data[i] = opts.LineData{
			Name:  point.Name,
			Value: point.Value,
		}
	}
	return data
}

func toPieData(points []ChartPoint) []opts.PieData {
	data := make([]opts.PieData, len(points))
	for i, point := range points {
		name := point.Name
		if name == "" {
			name = fmt.Sprintf("Slice %d", i+1)
		}
		data[i] = opts.PieData{
			Name:  name,
			Value: point.Value,
		}
		if point.Color != "" {
			data[i].ItemStyle = &opts.ItemStyle{Color: point.Color}
		}
	}
	return data
}

func pointNames(points []ChartPoint) []string {
	names := make([]string, len(points))
	for i, point := range points {
		if point.Name != "" {
			names[i] = point.Name
		} else {
			names[i] = fmt.Sprintf("Item %d", i+1)
		}
	}
	return names
}

func chartOrTrend(res Result) []ChartPoint {
	if len(res.ChartData) > 0 {
		return res.ChartData
	}
	return trendPoints(res.TrendData)
}

func trendPoints(trend []TrendPoint) []ChartPoint {
	points := make([]ChartPoint, len(trend))
	for i, t := range trend {
		points[i] = ChartPoint{Value: t.Value}
	}
	return points
}

// gaugeValue extracts the numeric needle position from a resolved result,
// preferring chart data and falling back to the formatted scalar.
func gaugeValue(res Result) float64 {
	if len(res.ChartData) > 0 {
		return res.ChartData[0].Value
	}
	raw := strings.TrimSuffix(strings.TrimSpace(res.Value), "%")
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return 0
}
