package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultProxyPath is where hosts conventionally mount the proxy handler.
const DefaultProxyPath = "/api/ExternalApiProxy/fetch"

const proxyBodyLimit = 4 << 20

// ProxyRequest is the payload widgets send when a direct external fetch is
// blocked by CORS and must be retried server-side.
type ProxyRequest struct {
	URL     string            `json:"url"`
	Method  string            `json:"method"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    string            `json:"body,omitempty"`
}

// ProxyHandler forwards external widget requests from the server so browser
// CORS policies do not apply. Only http and https targets are allowed.
type ProxyHandler struct {
	client *http.Client
}

// NewProxyHandler builds a handler with a bounded timeout.
func NewProxyHandler(client *http.Client) *ProxyHandler {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &ProxyHandler{client: client}
}

// Forward performs the proxied request and returns the upstream status,
// content type, and body. Transport adapters wrap it for their own context
// types.
func (h *ProxyHandler) Forward(ctx context.Context, payload ProxyRequest) (int, string, []byte, error) {
	target, err := url.Parse(payload.URL)
	if err != nil || (target.Scheme != "http" && target.Scheme != "https") {
		return 0, "", nil, errors.New("httpapi: invalid proxy target url")
	}
	method := strings.ToUpper(strings.TrimSpace(payload.Method))
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if payload.Body != "" && method != http.MethodGet {
		body = strings.NewReader(payload.Body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return 0, "", nil, err
	}
	for key, value := range payload.Headers {
		req.Header.Set(key, value)
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return 0, "", nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, proxyBodyLimit))
	if err != nil {
		return 0, "", nil, err
	}
	return resp.StatusCode, resp.Header.Get("Content-Type"), data, nil
}

// ServeHTTP implements POST {DefaultProxyPath}.
func (h *ProxyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var payload ProxyRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, proxyBodyLimit)).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	status, contentType, data, err := h.Forward(r.Context(), payload)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.WriteHeader(status)
	w.Write(data)
}
