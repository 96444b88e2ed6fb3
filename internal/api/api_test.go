package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const serverPage = "<!DOCTYPE html>\n<html lang=\"en\">\n<body>\n<div id=\"root\"><h1>Hello Server</h1></div>\n</body>\n</html>"

func newTestServer() *Server {
	return New(":0")
}

func post(t *testing.T, srv *Server, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
}

func TestCompareEndpoint(t *testing.T) {
	srv := newTestServer()
	client := strings.Replace(serverPage, "Hello Server", "Hello Client", 1)

	w := post(t, srv, "/api/compare", compareRequest{ServerHTML: serverPage, ClientHTML: client})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp compareResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.ExitCode)
	require.Len(t, resp.Mismatches, 1)
	assert.Equal(t, 3, resp.Mismatches[0].ServerLines[0].Line)
	assert.Contains(t, resp.Mismatches[0].ClientLines[0].Snippet, "Hello Client")
}

func TestCompareEndpointClean(t *testing.T) {
	srv := newTestServer()

	w := post(t, srv, "/api/compare", compareRequest{ServerHTML: serverPage, ClientHTML: serverPage})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"mismatches": [], "exit_code": 0}`, w.Body.String())
}

func TestCompareEndpointFilterOptions(t *testing.T) {
	srv := newTestServer()
	client := strings.Replace(serverPage, "</body>", "<script src=\"/x.js\"></script>\n</body>", 1)

	var resp compareResponse
	w := post(t, srv, "/api/compare", compareRequest{ServerHTML: serverPage, ClientHTML: client})
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Mismatches, "script outside the root is filtered")

	w = post(t, srv, "/api/compare", compareRequest{ServerHTML: serverPage, ClientHTML: client, NoFilter: true})
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Mismatches, 1)

	w = post(t, srv, "/api/compare", compareRequest{ServerHTML: serverPage, ClientHTML: client, RootMarkers: []string{"x.js"}})
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Mismatches, 1)
	assert.Equal(t, 1, resp.ExitCode)
}

func TestCompareEndpointBadRequests(t *testing.T) {
	srv := newTestServer()

	tests := []struct {
		name string
		body any
	}{
		{"malformed", "{not json"},
		{"unknown field", `{"server": "<html>"}`},
		{"both empty", compareRequest{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(t, srv, "/api/compare", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			var resp map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp["error"])
		})
	}
}

func TestCompareEndpointOneSideEmpty(t *testing.T) {
	srv := newTestServer()

	w := post(t, srv, "/api/compare", compareRequest{ServerHTML: serverPage, NoFilter: true})
	require.Equal(t, http.StatusOK, w.Code)

	var resp compareResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Mismatches, 1)
	assert.Empty(t, resp.Mismatches[0].ClientLines)
	assert.NotNil(t, resp.Mismatches[0].ClientLines)
}

func TestNormalizeEndpoint(t *testing.T) {
	srv := newTestServer()

	w := post(t, srv, "/api/normalize", normalizeRequest{HTML: "<!DOCTYPE html>\n<html lang=\"en\"><meta charset=\"utf-8\" /></html>\n"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp normalizeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, `<html><meta charset="utf-8"></html>`, resp.HTML)

	w = post(t, srv, "/api/normalize", normalizeRequest{HTML: "<html><meta charset=\"utf-8\" /></html>", KeepMeta: true})
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, `<html><meta charset="utf-8" /></html>`, resp.HTML)
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/api/compare", nil)
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	srv := New("127.0.0.1:0")
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer()
	client := strings.Replace(serverPage, "Hello Server", "Hello Client", 1)

	post(t, srv, "/api/compare", compareRequest{ServerHTML: serverPage, ClientHTML: client})
	post(t, srv, "/api/compare", compareRequest{ServerHTML: serverPage, ClientHTML: serverPage})
	post(t, srv, "/api/compare", "{")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `hydrodiff_compare_requests_total{result="mismatch"} 1`)
	assert.Contains(t, body, `hydrodiff_compare_requests_total{result="clean"} 1`)
	assert.Contains(t, body, `hydrodiff_compare_requests_total{result="rejected"} 1`)
	assert.Contains(t, body, "hydrodiff_reported_mismatches_count 2")
}
