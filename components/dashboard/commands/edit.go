package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/vantage-crm/go-dashboards/components/dashboard"
)

// EditSessionInput identifies the dashboard whose edit session to act on.
type EditSessionInput struct {
	DashboardID int64 `json:"dashboard_id"`
}

type editService interface {
	BeginEdit(ctx context.Context, id int64) error
	SaveEdit(ctx context.Context, id int64) (dashboard.Dashboard, error)
	DiscardEdit(ctx context.Context, id int64) error
}

// BeginEditCommand opens the edit buffer for a dashboard.
type BeginEditCommand struct {
	service   editService
	telemetry Telemetry
}

// NewBeginEditCommand builds a command instance.
func NewBeginEditCommand(service editService, telemetry Telemetry) *BeginEditCommand {
	return &BeginEditCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[EditSessionInput] = (*BeginEditCommand)(nil)

// Execute opens the session.
func (c *BeginEditCommand) Execute(ctx context.Context, msg EditSessionInput) error {
	if c.service == nil {
		return errors.New("edit command requires service")
	}
	return c.service.BeginEdit(ctx, msg.DashboardID)
}

// SaveEditCommand persists the edit buffer.
type SaveEditCommand struct {
	service   editService
	telemetry Telemetry
}

// NewSaveEditCommand builds a command instance.
func NewSaveEditCommand(service editService, telemetry Telemetry) *SaveEditCommand {
	return &SaveEditCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[EditSessionInput] = (*SaveEditCommand)(nil)

// Execute saves and closes the session.
func (c *SaveEditCommand) Execute(ctx context.Context, msg EditSessionInput) error {
	if c.service == nil {
		return errors.New("edit command requires service")
	}
	if _, err := c.service.SaveEdit(ctx, msg.DashboardID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.edit.save", map[string]any{
		"dashboard_id": msg.DashboardID,
	})
	return nil
}

// DiscardEditCommand reverts the edit buffer.
type DiscardEditCommand struct {
	service   editService
	telemetry Telemetry
}

// NewDiscardEditCommand builds a command instance.
func NewDiscardEditCommand(service editService, telemetry Telemetry) *DiscardEditCommand {
	return &DiscardEditCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[EditSessionInput] = (*DiscardEditCommand)(nil)

// Execute discards the session.
func (c *DiscardEditCommand) Execute(ctx context.Context, msg EditSessionInput) error {
	if c.service == nil {
		return errors.New("edit command requires service")
	}
	return c.service.DiscardEdit(ctx, msg.DashboardID)
}
