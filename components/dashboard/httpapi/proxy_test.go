package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestProxyForward(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Api-Key") != "secret" {
			t.Errorf("header not forwarded")
		}
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("default accept header missing")
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"ok": true}`)
	}))
	defer upstream.Close()

	h := NewProxyHandler(nil)
	status, contentType, body, err := h.Forward(context.Background(), ProxyRequest{
		URL:     upstream.URL,
		Headers: map[string]string{"X-Api-Key": "secret"},
	})
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	if status != http.StatusOK || contentType != "application/json" {
		t.Fatalf("status=%d contentType=%q", status, contentType)
	}
	if !strings.Contains(string(body), "ok") {
		t.Fatalf("body: %s", body)
	}
}

func TestProxyForwardPostBody(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method: %s", r.Method)
		}
		var buf bytes.Buffer
		buf.ReadFrom(r.Body)
		if buf.String() != `{"q":1}` {
			t.Errorf("body: %s", buf.String())
		}
		w.Write([]byte("{}"))
	}))
	defer upstream.Close()

	h := NewProxyHandler(nil)
	_, _, _, err := h.Forward(context.Background(), ProxyRequest{
		URL:    upstream.URL,
		Method: "post",
		Body:   `{"q":1}`,
	})
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
}

func TestProxyForwardRejectsBadSchemes(t *testing.T) {
	h := NewProxyHandler(nil)
	for _, target := range []string{"file:///etc/passwd", "ftp://host/x", "://broken"} {
		if _, _, _, err := h.Forward(context.Background(), ProxyRequest{URL: target}); err == nil {
			t.Fatalf("%q must be refused", target)
		}
	}
}

func TestProxyServeHTTP(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	}))
	defer upstream.Close()

	payload, _ := json.Marshal(ProxyRequest{URL: upstream.URL})
	req := httptest.NewRequest(http.MethodPost, DefaultProxyPath, bytes.NewReader(payload))
	rec := httptest.NewRecorder()

	NewProxyHandler(nil).ServeHTTP(rec, req)

	// Upstream status codes pass through untouched.
	if rec.Code != http.StatusTeapot {
		t.Fatalf("status: %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "stout") {
		t.Fatalf("body: %s", rec.Body.String())
	}
}

func TestProxyServeHTTPMethodAndPayload(t *testing.T) {
	h := NewProxyHandler(nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, DefaultProxyPath, nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET status: %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, DefaultProxyPath, strings.NewReader("not json")))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad payload status: %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	payload, _ := json.Marshal(ProxyRequest{URL: "http://unreachable.invalid/x"})
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, DefaultProxyPath, bytes.NewReader(payload)))
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("unreachable upstream status: %d", rec.Code)
	}
}
