package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	externalChartLimit = 20
	externalTableLimit = 50
)

// ExternalClientConfig configures the external widget data client. ProxyURL
// points at the server-side relay used when the direct request fails
// (network/CORS); empty disables the fallback.
type ExternalClientConfig struct {
	ProxyURL   string
	HTTPClient *http.Client
}

// ExternalClient fetches and projects arbitrary JSON endpoints for
// externalApi widgets.
type ExternalClient struct {
	proxyURL string
	client   *http.Client
}

// NewExternalClient builds a client with safe defaults.
func NewExternalClient(cfg ExternalClientConfig) *ExternalClient {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &ExternalClient{
		proxyURL: cfg.ProxyURL,
		client:   client,
	}
}

// proxyRequest is the relay payload accepted by the proxy endpoint.
type proxyRequest struct {
	URL     string            `json:"url"`
	Method  string            `json:"method"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    string            `json:"body,omitempty"`
}

// Fetch performs the configured request, retrying once through the proxy on
// failure, and projects the JSON response into a Result via the configured
// dot-paths.
func (c *ExternalClient) Fetch(ctx context.Context, cfg *ExternalAPIConfig) (Result, error) {
	if cfg == nil || cfg.URL == "" {
		return Result{}, fmt.Errorf("dashboard: external widget has no API config")
	}
	payload, err := c.fetchDirect(ctx, cfg)
	if err != nil {
		if c.proxyURL == "" {
			return Result{}, err
		}
		payload, err = c.fetchViaProxy(ctx, cfg)
		if err != nil {
			return Result{}, err
		}
	}
	return projectExternal(cfg, payload), nil
}

func (c *ExternalClient) fetchDirect(ctx context.Context, cfg *ExternalAPIConfig) (any, error) {
	method := strings.ToUpper(cfg.Method)
	if method == "" {
		method = http.MethodGet
	}
	var body io.Reader
	if cfg.Body != "" && method != http.MethodGet {
		body = strings.NewReader(cfg.Body)
	}
	req, err := http.NewRequestWithContext(ctx, method, cfg.URL, body)
	if err != nil {
		return nil, fmt.Errorf("dashboard: build external request: %w", err)
	}
	for key, value := range cfg.Headers {
		req.Header.Set(key, value)
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	return c.doJSON(req)
}

func (c *ExternalClient) fetchViaProxy(ctx context.Context, cfg *ExternalAPIConfig) (any, error) {
	relay := proxyRequest{
		URL:     cfg.URL,
		Method:  strings.ToUpper(cfg.Method),
		Headers: cfg.Headers,
		Body:    cfg.Body,
	}
	if relay.Method == "" {
		relay.Method = http.MethodGet
	}
	encoded, err := json.Marshal(relay)
	if err != nil {
		return nil, fmt.Errorf("dashboard: encode proxy payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.proxyURL, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("dashboard: build proxy request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.doJSON(req)
}

func (c *ExternalClient) doJSON(req *http.Request) (any, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dashboard: external request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("dashboard: external endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(buf.String()))
	}
	var payload any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("dashboard: decode external response: %w", err)
	}
	return payload, nil
}

// projectExternal maps the decoded response onto a Result using the configured
// dot-paths. Defaults: the scalar value falls back to the response length when
// the response is an array; chart labels fall back to "Item N"; chart values
// fall back to the raw number or 1.
func projectExternal(cfg *ExternalAPIConfig, payload any) Result {
	result := Result{Value: externalScalar(cfg, payload)}

	items := externalArray(cfg, payload)
	if len(items) == 0 {
		return result
	}

	chartLen := len(items)
	if chartLen > externalChartLimit {
		chartLen = externalChartLimit
	}
	points := make([]ChartPoint, 0, chartLen)
	for i := 0; i < chartLen; i++ {
		points = append(points, externalChartPoint(cfg, items[i], i))
	}
	result.ChartData = points

	tableLen := len(items)
	if tableLen > externalTableLimit {
		tableLen = externalTableLimit
	}
	rows := make([]TableRow, 0, tableLen)
	for i := 0; i < tableLen; i++ {
		if row, ok := items[i].(map[string]any); ok {
			rows = append(rows, TableRow(row))
		} else {
			rows = append(rows, TableRow{"value": items[i]})
		}
	}
	result.TableData = rows
	return result
}

func externalScalar(cfg *ExternalAPIConfig, payload any) string {
	if cfg.ValuePath != "" {
		if node, ok := ResolvePath(payload, cfg.ValuePath); ok {
			if n, numeric := pathNumber(node); numeric {
				return strconv.FormatFloat(n, 'f', -1, 64)
			}
			if s := pathString(node); s != "" {
				return s
			}
		}
	}
	if arr, ok := payload.([]any); ok {
		return strconv.Itoa(len(arr))
	}
	return "0"
}

func externalArray(cfg *ExternalAPIConfig, payload any) []any {
	if cfg.DataPath != "" {
		if node, ok := ResolvePath(payload, cfg.DataPath); ok {
			if arr, isArr := node.([]any); isArr {
				return arr
			}
		}
		return nil
	}
	if arr, ok := payload.([]any); ok {
		return arr
	}
	return nil
}

func externalChartPoint(cfg *ExternalAPIConfig, element any, idx int) ChartPoint {
	label := ""
	if cfg.LabelPath != "" {
		if node, ok := ResolvePath(element, cfg.LabelPath); ok {
			label = pathString(node)
		}
	}
	if label == "" {
		label = fmt.Sprintf("Item %d", idx+1)
	}

	value := 1.0
	if raw, numeric := pathNumber(element); numeric {
		value = raw
	}
	if cfg.ValuePath != "" {
		if node, ok := ResolvePath(element, cfg.ValuePath); ok {
			if n, numeric := pathNumber(node); numeric {
				value = n
			}
		}
	}
	return ChartPoint{Name: label, Value: value}
}
