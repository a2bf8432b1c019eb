package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/vantage-crm/go-dashboards/components/dashboard"
)

// ShareDashboardInput enables public sharing for a dashboard.
type ShareDashboardInput struct {
	DashboardID  int64 `json:"dashboard_id"`
	WithSnapshot bool  `json:"with_snapshot"`
}

// RevokeShareInput disables public sharing.
type RevokeShareInput struct {
	DashboardID int64 `json:"dashboard_id"`
}

type shareService interface {
	ShareDashboard(ctx context.Context, id int64, withSnapshot bool) (dashboard.Dashboard, error)
	RevokeShare(ctx context.Context, id int64) error
}

// ShareDashboardCommand wraps Service.ShareDashboard.
type ShareDashboardCommand struct {
	service   shareService
	telemetry Telemetry
}

// NewShareDashboardCommand builds a command instance.
func NewShareDashboardCommand(service shareService, telemetry Telemetry) *ShareDashboardCommand {
	return &ShareDashboardCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ShareDashboardInput] = (*ShareDashboardCommand)(nil)

// Execute mints the share token (and snapshot when requested).
func (c *ShareDashboardCommand) Execute(ctx context.Context, msg ShareDashboardInput) error {
	if c.service == nil {
		return errors.New("share command requires service")
	}
	shared, err := c.service.ShareDashboard(ctx, msg.DashboardID, msg.WithSnapshot)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.share", map[string]any{
		"dashboard_id": msg.DashboardID,
		"token":        shared.Share.Token,
		"snapshot":     msg.WithSnapshot,
	})
	return nil
}

// RevokeShareCommand wraps Service.RevokeShare.
type RevokeShareCommand struct {
	service   shareService
	telemetry Telemetry
}

// NewRevokeShareCommand builds a command instance.
func NewRevokeShareCommand(service shareService, telemetry Telemetry) *RevokeShareCommand {
	return &RevokeShareCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RevokeShareInput] = (*RevokeShareCommand)(nil)

// Execute revokes the public token.
func (c *RevokeShareCommand) Execute(ctx context.Context, msg RevokeShareInput) error {
	if c.service == nil {
		return errors.New("share command requires service")
	}
	if err := c.service.RevokeShare(ctx, msg.DashboardID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.share.revoke", map[string]any{
		"dashboard_id": msg.DashboardID,
	})
	return nil
}
