package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	gocommand "github.com/goliatone/go-command"

	"github.com/vantage-crm/go-dashboards/components/dashboard"
	"github.com/vantage-crm/go-dashboards/components/dashboard/commands"
	"github.com/vantage-crm/go-dashboards/components/dashboard/queries"
)

// Executor is the command surface transports mount. It mirrors the widget and
// session mutations the service exposes in edit mode.
type Executor interface {
	Add(ctx context.Context, input commands.AddWidgetInput) error
	Remove(ctx context.Context, input commands.RemoveWidgetInput) error
	Move(ctx context.Context, input commands.MoveWidgetInput) error
	Resize(ctx context.Context, input commands.ResizeWidgetInput) error
	BeginEdit(ctx context.Context, input commands.EditSessionInput) error
	SaveEdit(ctx context.Context, input commands.EditSessionInput) error
	DiscardEdit(ctx context.Context, input commands.EditSessionInput) error
	Share(ctx context.Context, input commands.ShareDashboardInput) error
	RevokeShare(ctx context.Context, input commands.RevokeShareInput) error
	Refresh(ctx context.Context) error
}

// CommandExecutor bundles the shared commands into an Executor.
type CommandExecutor struct {
	AddCmd         gocommand.Commander[commands.AddWidgetInput]
	RemoveCmd      gocommand.Commander[commands.RemoveWidgetInput]
	MoveCmd        gocommand.Commander[commands.MoveWidgetInput]
	ResizeCmd      gocommand.Commander[commands.ResizeWidgetInput]
	BeginEditCmd   gocommand.Commander[commands.EditSessionInput]
	SaveEditCmd    gocommand.Commander[commands.EditSessionInput]
	DiscardEditCmd gocommand.Commander[commands.EditSessionInput]
	ShareCmd       gocommand.Commander[commands.ShareDashboardInput]
	RevokeCmd      gocommand.Commander[commands.RevokeShareInput]
	RefreshCmd     gocommand.Commander[commands.RefreshDatasetInput]
}

var _ Executor = (*CommandExecutor)(nil)

func (e *CommandExecutor) Add(ctx context.Context, input commands.AddWidgetInput) error {
	return e.AddCmd.Execute(ctx, input)
}

func (e *CommandExecutor) Remove(ctx context.Context, input commands.RemoveWidgetInput) error {
	return e.RemoveCmd.Execute(ctx, input)
}

func (e *CommandExecutor) Move(ctx context.Context, input commands.MoveWidgetInput) error {
	return e.MoveCmd.Execute(ctx, input)
}

func (e *CommandExecutor) Resize(ctx context.Context, input commands.ResizeWidgetInput) error {
	return e.ResizeCmd.Execute(ctx, input)
}

func (e *CommandExecutor) BeginEdit(ctx context.Context, input commands.EditSessionInput) error {
	return e.BeginEditCmd.Execute(ctx, input)
}

func (e *CommandExecutor) SaveEdit(ctx context.Context, input commands.EditSessionInput) error {
	return e.SaveEditCmd.Execute(ctx, input)
}

func (e *CommandExecutor) DiscardEdit(ctx context.Context, input commands.EditSessionInput) error {
	return e.DiscardEditCmd.Execute(ctx, input)
}

func (e *CommandExecutor) Share(ctx context.Context, input commands.ShareDashboardInput) error {
	return e.ShareCmd.Execute(ctx, input)
}

func (e *CommandExecutor) RevokeShare(ctx context.Context, input commands.RevokeShareInput) error {
	return e.RevokeCmd.Execute(ctx, input)
}

func (e *CommandExecutor) Refresh(ctx context.Context) error {
	return e.RefreshCmd.Execute(ctx, commands.RefreshDatasetInput{})
}

// Handlers exposes plain net/http endpoints backed by shared commands and
// queries, for hosts that do not mount the go-router integration.
type Handlers struct {
	Exec       Executor
	WidgetData gocommand.Querier[queries.WidgetDataInput, dashboard.Result]
}

func (h *Handlers) HandleAddWidget(w http.ResponseWriter, r *http.Request) {
	var payload commands.AddWidgetInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Exec.Add(r.Context(), payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handlers) HandleRemoveWidget(w http.ResponseWriter, r *http.Request, dashboardID int64, widgetID string) {
	input := commands.RemoveWidgetInput{DashboardID: dashboardID, WidgetID: widgetID}
	if err := h.Exec.Remove(r.Context(), input); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) HandleWidgetData(w http.ResponseWriter, r *http.Request) {
	var payload queries.WidgetDataInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	result, err := h.WidgetData.Query(r.Context(), payload)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func (h *Handlers) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := h.Exec.Refresh(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
