package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

// MoveWidgetInput repositions a widget inside the grid.
type MoveWidgetInput struct {
	DashboardID int64  `json:"dashboard_id"`
	WidgetID    string `json:"widget_id"`
	X           int    `json:"x"`
	Y           int    `json:"y"`
}

// ResizeWidgetInput changes a widget's span inside the grid.
type ResizeWidgetInput struct {
	DashboardID int64  `json:"dashboard_id"`
	WidgetID    string `json:"widget_id"`
	W           int    `json:"w"`
	H           int    `json:"h"`
}

type layoutService interface {
	MoveWidget(ctx context.Context, dashboardID int64, widgetID string, x, y int) error
	ResizeWidget(ctx context.Context, dashboardID int64, widgetID string, w, h int) error
}

// MoveWidgetCommand wraps Service.MoveWidget.
type MoveWidgetCommand struct {
	service   layoutService
	telemetry Telemetry
}

// NewMoveWidgetCommand builds a command instance.
func NewMoveWidgetCommand(service layoutService, telemetry Telemetry) *MoveWidgetCommand {
	return &MoveWidgetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[MoveWidgetInput] = (*MoveWidgetCommand)(nil)

// Execute repositions the widget.
func (c *MoveWidgetCommand) Execute(ctx context.Context, msg MoveWidgetInput) error {
	if c.service == nil {
		return errors.New("move command requires service")
	}
	if err := c.service.MoveWidget(ctx, msg.DashboardID, msg.WidgetID, msg.X, msg.Y); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.widget.move", map[string]any{
		"dashboard_id": msg.DashboardID,
		"widget_id":    msg.WidgetID,
	})
	return nil
}

// ResizeWidgetCommand wraps Service.ResizeWidget.
type ResizeWidgetCommand struct {
	service   layoutService
	telemetry Telemetry
}

// NewResizeWidgetCommand builds a command instance.
func NewResizeWidgetCommand(service layoutService, telemetry Telemetry) *ResizeWidgetCommand {
	return &ResizeWidgetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ResizeWidgetInput] = (*ResizeWidgetCommand)(nil)

// Execute resizes the widget.
func (c *ResizeWidgetCommand) Execute(ctx context.Context, msg ResizeWidgetInput) error {
	if c.service == nil {
		return errors.New("resize command requires service")
	}
	if err := c.service.ResizeWidget(ctx, msg.DashboardID, msg.WidgetID, msg.W, msg.H); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.widget.resize", map[string]any{
		"dashboard_id": msg.DashboardID,
		"widget_id":    msg.WidgetID,
	})
	return nil
}
