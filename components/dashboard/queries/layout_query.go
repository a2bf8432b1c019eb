package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"

	"github.com/vantage-crm/go-dashboards/components/dashboard"
)

type layoutService interface {
	Layout(ctx context.Context, id int64) (map[dashboard.Breakpoint][]dashboard.Placement, error)
}

// LayoutQuery executes read-only responsive layout resolution.
type LayoutQuery struct {
	service layoutService
}

// NewLayoutQuery builds the query.
func NewLayoutQuery(service layoutService) *LayoutQuery {
	return &LayoutQuery{service: service}
}

var _ gocommand.Querier[int64, map[dashboard.Breakpoint][]dashboard.Placement] = (*LayoutQuery)(nil)

// Query resolves the per-breakpoint placements for a dashboard.
func (q *LayoutQuery) Query(ctx context.Context, dashboardID int64) (map[dashboard.Breakpoint][]dashboard.Placement, error) {
	return q.service.Layout(ctx, dashboardID)
}
