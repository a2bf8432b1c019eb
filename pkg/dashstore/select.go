package dashstore

import (
	"context"

	"github.com/vantage-crm/go-dashboards/components/dashboard"
)

// Select probes the remote API once and returns it when reachable, otherwise
// the local JSON store at localPath. The decision is made at startup and
// never revisited; flip-flopping between stores mid-session would scatter
// dashboards across both.
func Select(ctx context.Context, remote *RemoteStore, localPath string) (dashboard.DashboardStore, error) {
	if remote != nil {
		if err := remote.Probe(ctx); err == nil {
			return remote, nil
		}
	}
	return NewLocalStore(localPath)
}
