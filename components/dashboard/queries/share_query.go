package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"

	"github.com/vantage-crm/go-dashboards/components/dashboard"
)

type shareService interface {
	ResolveShared(ctx context.Context, token string) (dashboard.Dashboard, error)
}

// SharedDashboardQuery resolves a public share token into a dashboard.
type SharedDashboardQuery struct {
	service shareService
}

// NewSharedDashboardQuery builds the query.
func NewSharedDashboardQuery(service shareService) *SharedDashboardQuery {
	return &SharedDashboardQuery{service: service}
}

var _ gocommand.Querier[string, dashboard.Dashboard] = (*SharedDashboardQuery)(nil)

// Query resolves the token. Unknown and revoked tokens both fail.
func (q *SharedDashboardQuery) Query(ctx context.Context, token string) (dashboard.Dashboard, error) {
	return q.service.ResolveShared(ctx, token)
}
