package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

// RemoveWidgetInput identifies the widget to remove.
type RemoveWidgetInput struct {
	DashboardID int64  `json:"dashboard_id"`
	WidgetID    string `json:"widget_id"`
}

type removeService interface {
	RemoveWidget(ctx context.Context, dashboardID int64, widgetID string) error
}

// RemoveWidgetCommand wraps Service.RemoveWidget.
type RemoveWidgetCommand struct {
	service   removeService
	telemetry Telemetry
}

// NewRemoveWidgetCommand builds a command instance.
func NewRemoveWidgetCommand(service removeService, telemetry Telemetry) *RemoveWidgetCommand {
	return &RemoveWidgetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RemoveWidgetInput] = (*RemoveWidgetCommand)(nil)

// Execute removes the widget from the edit buffer.
func (c *RemoveWidgetCommand) Execute(ctx context.Context, msg RemoveWidgetInput) error {
	if c.service == nil {
		return errors.New("remove command requires service")
	}
	if err := c.service.RemoveWidget(ctx, msg.DashboardID, msg.WidgetID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.widget.remove", map[string]any{
		"dashboard_id": msg.DashboardID,
		"widget_id":    msg.WidgetID,
	})
	return nil
}
