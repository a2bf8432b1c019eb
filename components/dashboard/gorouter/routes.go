package gorouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	gocommand "github.com/goliatone/go-command"
	router "github.com/goliatone/go-router"

	"github.com/vantage-crm/go-dashboards/components/dashboard"
	"github.com/vantage-crm/go-dashboards/components/dashboard/commands"
	"github.com/vantage-crm/go-dashboards/components/dashboard/httpapi"
	"github.com/vantage-crm/go-dashboards/components/dashboard/queries"
)

// ViewerResolver converts a router.Context into a dashboard.ViewerContext.
type ViewerResolver func(router.Context) dashboard.ViewerContext

// Config wires go-router with dashboard controllers, APIs, and hooks.
type Config[T any] struct {
	Router         router.Router[T]
	Controller     *dashboard.Controller
	API            httpapi.Executor
	WidgetData     gocommand.Querier[queries.WidgetDataInput, dashboard.Result]
	Proxy          *httpapi.ProxyHandler
	Broadcast      *dashboard.BroadcastHook
	ViewerResolver ViewerResolver
	BasePath       string
	Routes         RouteConfig
}

// RouteConfig customizes the relative paths used for dashboard endpoints.
type RouteConfig struct {
	HTML        string
	SharedHTML  string
	Layout      string
	WidgetData  string
	Widgets     string
	WidgetID    string
	Move        string
	Resize      string
	EditBegin   string
	EditSave    string
	EditDiscard string
	Share       string
	ShareRevoke string
	Refresh     string
	WebSocket   string
	Proxy       string
}

// Register mounts dashboard routes (HTML, JSON, REST, WebSocket) on a
// go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Controller == nil {
		return errors.New("gorouter: controller is required")
	}
	routes := defaultRouteConfig(cfg.Routes)
	base := cfg.BasePath
	if base == "" {
		base = "/dashboards"
	}
	viewerResolver := cfg.ViewerResolver
	if viewerResolver == nil {
		viewerResolver = defaultViewerResolver
	}

	group := cfg.Router.Group(base)

	group.Get(routes.HTML, router.WrapHandler(func(ctx router.Context) error {
		id, err := dashboardID(ctx)
		if err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		viewer := viewerResolver(ctx)
		var buf bytes.Buffer
		if err := cfg.Controller.RenderTemplate(ctx.Context(), id, viewer, filterFromContext(ctx), &buf); err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
		return ctx.Send(buf.Bytes())
	}))

	group.Get(routes.SharedHTML, router.WrapHandler(func(ctx router.Context) error {
		token := ctx.Param("token")
		viewer := viewerResolver(ctx)
		var buf bytes.Buffer
		err := cfg.Controller.RenderShared(ctx.Context(), token, viewer, filterFromContext(ctx), &buf)
		if errors.Is(err, dashboard.ErrShareNotFound) {
			return respondError(ctx, http.StatusNotFound, err)
		}
		if err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
		return ctx.Send(buf.Bytes())
	}))

	group.Get(routes.Layout, router.WrapHandler(func(ctx router.Context) error {
		id, err := dashboardID(ctx)
		if err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		payload, err := cfg.Controller.LayoutPayload(ctx.Context(), id)
		if err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return ctx.JSON(http.StatusOK, payload)
	}))

	if cfg.WidgetData != nil {
		group.Get(routes.WidgetData, router.WrapHandler(func(ctx router.Context) error {
			id, err := dashboardID(ctx)
			if err != nil {
				return respondError(ctx, http.StatusBadRequest, err)
			}
			widgetID := ctx.Param("widget")
			if widgetID == "" {
				return respondError(ctx, http.StatusBadRequest, errors.New("widget id is required"))
			}
			input := queries.WidgetDataInput{
				DashboardID: id,
				WidgetID:    widgetID,
				Filter:      filterFromContext(ctx),
			}
			result, err := cfg.WidgetData.Query(ctx.Context(), input)
			if err != nil {
				return respondError(ctx, http.StatusInternalServerError, err)
			}
			return ctx.JSON(http.StatusOK, result)
		}))
	}

	if cfg.API != nil {
		registerAPI(group, cfg.API, routes)
	}

	if cfg.Proxy != nil {
		cfg.Router.Post(routes.Proxy, router.WrapHandler(func(ctx router.Context) error {
			var payload httpapi.ProxyRequest
			if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
				return respondError(ctx, http.StatusBadRequest, err)
			}
			status, contentType, data, err := cfg.Proxy.Forward(ctx.Context(), payload)
			if err != nil {
				return respondError(ctx, http.StatusBadGateway, err)
			}
			if status >= http.StatusMultipleChoices {
				return respondError(ctx, status, errors.New("upstream request failed"))
			}
			if contentType != "" {
				ctx.SetHeader("Content-Type", contentType)
			}
			return ctx.Send(data)
		}))
	}

	if cfg.Broadcast != nil {
		registerWebSocket(group, cfg.Broadcast, routes.WebSocket)
	}

	return nil
}

func registerAPI[T any](r router.Router[T], api httpapi.Executor, routes RouteConfig) {
	r.Post(routes.Widgets, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.AddWidgetInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		if id, err := dashboardID(ctx); err == nil {
			payload.DashboardID = id
		}
		if err := api.Add(ctx.Context(), payload); err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return ctx.JSON(http.StatusCreated, map[string]string{"status": "created"})
	}))

	r.Delete(routes.WidgetID, router.WrapHandler(func(ctx router.Context) error {
		id, err := dashboardID(ctx)
		if err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		widgetID := ctx.Param("widget")
		if widgetID == "" {
			return respondError(ctx, http.StatusBadRequest, errors.New("widget id is required"))
		}
		input := commands.RemoveWidgetInput{DashboardID: id, WidgetID: widgetID}
		if err := api.Remove(ctx.Context(), input); err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return ctx.JSON(http.StatusNoContent, map[string]string{"status": "removed"})
	}))

	r.Post(routes.Move, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.MoveWidgetInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		if id, err := dashboardID(ctx); err == nil {
			payload.DashboardID = id
		}
		if err := api.Move(ctx.Context(), payload); err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "moved"})
	}))

	r.Post(routes.Resize, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.ResizeWidgetInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		if id, err := dashboardID(ctx); err == nil {
			payload.DashboardID = id
		}
		if err := api.Resize(ctx.Context(), payload); err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "resized"})
	}))

	sessionRoute := func(path string, exec func(context.Context, commands.EditSessionInput) error, status string) {
		r.Post(path, router.WrapHandler(func(ctx router.Context) error {
			id, err := dashboardID(ctx)
			if err != nil {
				return respondError(ctx, http.StatusBadRequest, err)
			}
			if err := exec(ctx.Context(), commands.EditSessionInput{DashboardID: id}); err != nil {
				return respondError(ctx, http.StatusInternalServerError, err)
			}
			return ctx.JSON(http.StatusOK, map[string]string{"status": status})
		}))
	}
	sessionRoute(routes.EditBegin, api.BeginEdit, "editing")
	sessionRoute(routes.EditSave, api.SaveEdit, "saved")
	sessionRoute(routes.EditDiscard, api.DiscardEdit, "discarded")

	r.Post(routes.Share, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.ShareDashboardInput
		if body := ctx.Body(); len(body) > 0 {
			if err := json.Unmarshal(body, &payload); err != nil {
				return respondError(ctx, http.StatusBadRequest, err)
			}
		}
		id, err := dashboardID(ctx)
		if err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		payload.DashboardID = id
		if err := api.Share(ctx.Context(), payload); err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "shared"})
	}))

	r.Delete(routes.ShareRevoke, router.WrapHandler(func(ctx router.Context) error {
		id, err := dashboardID(ctx)
		if err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		if err := api.RevokeShare(ctx.Context(), commands.RevokeShareInput{DashboardID: id}); err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "revoked"})
	}))

	r.Post(routes.Refresh, router.WrapHandler(func(ctx router.Context) error {
		if err := api.Refresh(ctx.Context()); err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return ctx.JSON(http.StatusAccepted, map[string]string{"status": "queued"})
	}))
}

func registerWebSocket[T any](r router.Router[T], hook *dashboard.BroadcastHook, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		events, cancel := hook.Subscribe(0)
		defer cancel()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

func dashboardID(ctx router.Context) (int64, error) {
	raw := ctx.Param("id")
	if raw == "" {
		return 0, errors.New("dashboard id is required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.New("dashboard id must be numeric")
	}
	return id, nil
}

func filterFromContext(ctx router.Context) dashboard.DateRange {
	preset := dashboard.RangePreset(ctx.Query("range"))
	if preset == "" {
		preset = dashboard.RangeAll
	}
	filter := dashboard.DateRange{Preset: preset}
	if preset == dashboard.RangeCustom {
		filter.From = parseQueryTime(ctx.Query("from"))
		filter.To = parseQueryTime(ctx.Query("to"))
	}
	return filter
}

func parseQueryTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t
	}
	return time.Time{}
}

func defaultViewerResolver(ctx router.Context) dashboard.ViewerContext {
	var viewer dashboard.ViewerContext
	if v, ok := ctx.Locals("user_id").(string); ok {
		viewer.UserID = v
	}
	if roles, ok := ctx.Locals("roles").([]string); ok {
		viewer.Roles = roles
	}
	viewer.Locale = inferLocale(ctx)
	return viewer
}

func inferLocale(ctx router.Context) string {
	if locale, ok := ctx.Locals("locale").(string); ok && locale != "" {
		return locale
	}
	if locale := strings.TrimSpace(ctx.Query("locale")); locale != "" {
		return strings.ToLower(locale)
	}
	if header := ctx.Header("Accept-Language"); header != "" {
		if lang := parseAcceptLanguage(header); lang != "" {
			return lang
		}
	}
	return ""
}

func parseAcceptLanguage(header string) string {
	for _, token := range strings.Split(header, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if idx := strings.Index(token, ";"); idx >= 0 {
			token = token[:idx]
		}
		if token != "" {
			return strings.ToLower(token)
		}
	}
	return ""
}

func respondError(ctx router.Context, status int, err error) error {
	return ctx.JSON(status, map[string]string{"error": err.Error()})
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.HTML == "" {
		routes.HTML = "/:id"
	}
	if routes.SharedHTML == "" {
		routes.SharedHTML = "/shared/:token"
	}
	if routes.Layout == "" {
		routes.Layout = "/:id/_layout"
	}
	if routes.WidgetData == "" {
		routes.WidgetData = "/:id/widgets/:widget/data"
	}
	if routes.Widgets == "" {
		routes.Widgets = "/:id/widgets"
	}
	if routes.WidgetID == "" {
		routes.WidgetID = "/:id/widgets/:widget"
	}
	if routes.Move == "" {
		routes.Move = "/:id/widgets/move"
	}
	if routes.Resize == "" {
		routes.Resize = "/:id/widgets/resize"
	}
	if routes.EditBegin == "" {
		routes.EditBegin = "/:id/edit"
	}
	if routes.EditSave == "" {
		routes.EditSave = "/:id/edit/save"
	}
	if routes.EditDiscard == "" {
		routes.EditDiscard = "/:id/edit/discard"
	}
	if routes.Share == "" {
		routes.Share = "/:id/share"
	}
	if routes.ShareRevoke == "" {
		routes.ShareRevoke = "/:id/share"
	}
	if routes.Refresh == "" {
		routes.Refresh = "/refresh"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/ws"
	}
	if routes.Proxy == "" {
		routes.Proxy = httpapi.DefaultProxyPath
	}
	return routes
}
