package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

// RefreshDatasetInput triggers a silent dataset refresh.
type RefreshDatasetInput struct{}

type refreshService interface {
	SilentRefresh(ctx context.Context) error
}

// RefreshDatasetCommand forces a background dataset refresh, typically bound
// to a manual "refresh now" action.
type RefreshDatasetCommand struct {
	datasets  refreshService
	telemetry Telemetry
}

// NewRefreshDatasetCommand builds a command instance.
func NewRefreshDatasetCommand(datasets refreshService, telemetry Telemetry) *RefreshDatasetCommand {
	return &RefreshDatasetCommand{datasets: datasets, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RefreshDatasetInput] = (*RefreshDatasetCommand)(nil)

// Execute refreshes the datasets without flipping the loading flag.
func (c *RefreshDatasetCommand) Execute(ctx context.Context, _ RefreshDatasetInput) error {
	if c.datasets == nil {
		return errors.New("refresh command requires dataset provider")
	}
	if err := c.datasets.SilentRefresh(ctx); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.refresh", nil)
	return nil
}
