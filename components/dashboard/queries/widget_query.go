package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"

	"github.com/vantage-crm/go-dashboards/components/dashboard"
)

// WidgetDataInput identifies a widget data request under a date filter.
type WidgetDataInput struct {
	DashboardID int64               `json:"dashboard_id"`
	WidgetID    string              `json:"widget_id"`
	Filter      dashboard.DateRange `json:"filter"`
}

type widgetService interface {
	WidgetData(ctx context.Context, dashboardID int64, widgetID string, filter dashboard.DateRange) (dashboard.Result, error)
}

// WidgetDataQuery resolves the renderable payload for one widget.
type WidgetDataQuery struct {
	service widgetService
}

// NewWidgetDataQuery builds the query.
func NewWidgetDataQuery(service widgetService) *WidgetDataQuery {
	return &WidgetDataQuery{service: service}
}

var _ gocommand.Querier[WidgetDataInput, dashboard.Result] = (*WidgetDataQuery)(nil)

// Query resolves a single widget's data.
func (q *WidgetDataQuery) Query(ctx context.Context, input WidgetDataInput) (dashboard.Result, error) {
	return q.service.WidgetData(ctx, input.DashboardID, input.WidgetID, input.Filter)
}
