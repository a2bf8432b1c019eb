package dashboard

import (
	"context"
	"fmt"
	"io"
)

// Controller renders dashboard pages and JSON payloads on top of the service.
type Controller struct {
	service    *Service
	charts     *ChartRenderer
	renderer   Renderer
	translator TranslationService
}

// ControllerOption customizes a controller.
type ControllerOption func(*Controller)

// WithControllerRenderer injects the template renderer.
func WithControllerRenderer(renderer Renderer) ControllerOption {
	return func(c *Controller) {
		c.renderer = renderer
	}
}

// WithControllerCharts injects the chart renderer.
func WithControllerCharts(charts *ChartRenderer) ControllerOption {
	return func(c *Controller) {
		c.charts = charts
	}
}

// WithControllerTranslator injects the translation service used for widget
// titles and descriptions.
func WithControllerTranslator(translator TranslationService) ControllerOption {
	return func(c *Controller) {
		c.translator = translator
	}
}

// NewController wires the service into a controller.
func NewController(service *Service, options ...ControllerOption) *Controller {
	c := &Controller{
		service: service,
		charts:  NewChartRenderer(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// WidgetView is the render-ready projection of one widget.
type WidgetView struct {
	Widget      Widget
	Title       string
	Description string
	Result      Result
	ChartHTML   string
}

// Page bundles everything a dashboard template needs.
type Page struct {
	Dashboard  Dashboard
	Editing    bool
	Filter     DateRange
	Placements map[Breakpoint][]Placement
	Widgets    []WidgetView
}

// Page resolves every widget on a dashboard and renders chart bodies.
func (c *Controller) Page(ctx context.Context, id int64, viewer ViewerContext, filter DateRange) (Page, error) {
	d, err := c.service.Dashboard(ctx, id)
	if err != nil {
		return Page{}, err
	}
	editing := c.service.IsEditing(id)
	views := make([]WidgetView, 0, len(d.Widgets))
	for _, w := range d.Widgets {
		res := c.service.Resolver().Resolve(ctx, w, filter)
		views = append(views, c.widgetView(ctx, w, res, viewer))
	}
	return Page{
		Dashboard:  d,
		Editing:    editing,
		Filter:     filter,
		Placements: Placements(d.Widgets, editing),
		Widgets:    views,
	}, nil
}

// SharedPage resolves a publicly shared dashboard from its frozen snapshot.
func (c *Controller) SharedPage(ctx context.Context, token string, viewer ViewerContext, filter DateRange) (Page, error) {
	d, err := c.service.ResolveShared(ctx, token)
	if err != nil {
		return Page{}, err
	}
	views := make([]WidgetView, 0, len(d.Widgets))
	for _, w := range d.Widgets {
		var res Result
		if d.DataSnapshot != nil {
			res = c.service.Resolver().ResolveFromDataset(*d.DataSnapshot, w, filter)
		} else {
			res = c.service.Resolver().Resolve(ctx, w, filter)
		}
		views = append(views, c.widgetView(ctx, w, res, viewer))
	}
	return Page{
		Dashboard:  d,
		Filter:     filter,
		Placements: Placements(d.Widgets, false),
		Widgets:    views,
	}, nil
}

func (c *Controller) widgetView(ctx context.Context, w Widget, res Result, viewer ViewerContext) WidgetView {
	view := WidgetView{
		Widget:      w,
		Title:       ResolveTitle(ctx, c.translator, w, viewer.Locale),
		Description: ResolveDescription(ctx, c.translator, w, viewer.Locale),
		Result:      res,
	}
	if c.charts != nil && hasChartBody(w.Type) && res.Err == "" && !res.Loading {
		titled := w
		titled.TitleCustom = view.Title
		if html, err := c.charts.Render(titled, res); err == nil {
			view.ChartHTML = html
		} else {
			view.Result.Err = err.Error()
		}
	}
	return view
}

func hasChartBody(t WidgetType) bool {
	switch t {
	case TypeKPI, TypeTable, TypeMap:
		return false
	default:
		return true
	}
}

// RenderTemplate renders the dashboard HTML shell into out.
func (c *Controller) RenderTemplate(ctx context.Context, id int64, viewer ViewerContext, filter DateRange, out io.Writer) error {
	if c.renderer == nil {
		return fmt.Errorf("dashboard: controller has no template renderer")
	}
	page, err := c.Page(ctx, id, viewer, filter)
	if err != nil {
		return err
	}
	_, err = c.renderer.Render("dashboard", c.templateData(page, viewer), out)
	return err
}

// RenderShared renders the read-only shared view into out.
func (c *Controller) RenderShared(ctx context.Context, token string, viewer ViewerContext, filter DateRange, out io.Writer) error {
	if c.renderer == nil {
		return fmt.Errorf("dashboard: controller has no template renderer")
	}
	page, err := c.SharedPage(ctx, token, viewer, filter)
	if err != nil {
		return err
	}
	_, err = c.renderer.Render("shared", c.templateData(page, viewer), out)
	return err
}

func (c *Controller) templateData(page Page, viewer ViewerContext) map[string]any {
	widgets := make([]map[string]any, 0, len(page.Widgets))
	for _, view := range page.Widgets {
		w := view.Widget
		entry := map[string]any{
			"id":          w.ID,
			"type":        string(w.Type),
			"title":       view.Title,
			"description": view.Description,
			"x":           w.Layout.X,
			"y":           w.Layout.Y,
			"w":           w.Layout.W,
			"h":           w.Layout.H,
			"value":       view.Result.Value,
			"error":       view.Result.Err,
			"loading":     view.Result.Loading,
		}
		if view.ChartHTML != "" {
			entry["chart_html"] = view.ChartHTML
		}
		if len(view.Result.TableData) > 0 {
			entry["table"] = view.Result.TableData
		}
		widgets = append(widgets, entry)
	}
	return map[string]any{
		"dashboard_id":  page.Dashboard.ID,
		"name":          page.Dashboard.Name,
		"editing":       page.Editing,
		"filter_preset": string(page.Filter.Preset),
		"columns":       GridColumns,
		"locale":        viewer.Locale,
		"widgets":       widgets,
	}
}

// LayoutPayload returns the responsive placements as a JSON-ready payload.
func (c *Controller) LayoutPayload(ctx context.Context, id int64) (map[Breakpoint][]Placement, error) {
	return c.service.Layout(ctx, id)
}
