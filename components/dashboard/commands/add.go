package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/vantage-crm/go-dashboards/components/dashboard"
)

// AddWidgetInput carries a widget definition destined for a dashboard's edit
// buffer.
type AddWidgetInput struct {
	DashboardID int64            `json:"dashboard_id"`
	Widget      dashboard.Widget `json:"widget"`
}

type addService interface {
	AddWidget(ctx context.Context, dashboardID int64, w dashboard.Widget) (dashboard.Widget, error)
}

// AddWidgetCommand wraps Service.AddWidget so transports can add widgets
// without linking directly against the service.
type AddWidgetCommand struct {
	service   addService
	telemetry Telemetry
}

// NewAddWidgetCommand creates a command instance.
func NewAddWidgetCommand(service addService, telemetry Telemetry) *AddWidgetCommand {
	return &AddWidgetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[AddWidgetInput] = (*AddWidgetCommand)(nil)

// Execute delegates to the dashboard service.
func (c *AddWidgetCommand) Execute(ctx context.Context, msg AddWidgetInput) error {
	if c.service == nil {
		return errors.New("add command requires service")
	}
	added, err := c.service.AddWidget(ctx, msg.DashboardID, msg.Widget)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.widget.add", map[string]any{
		"dashboard_id": msg.DashboardID,
		"widget_id":    added.ID,
		"type":         string(added.Type),
	})
	return nil
}
