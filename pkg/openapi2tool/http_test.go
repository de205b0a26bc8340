// http_test.go
package openapi2tool

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func postJSON(t *testing.T, handler http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshaling request body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleConvert_Success(t *testing.T) {
	server := NewHTTPServer(nil, nil)
	rec := postJSON(t, server.Routes(), "/convert", HTTPConvertRequest{
		OpenAPISpec: petstoreJSON,
		Options:     HTTPConvertOptions{OutputFormat: "json", ToolNamePrefix: "pets"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp HTTPConvertResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("expected JSON response, got: %v", err)
	}
	if resp.Format != "json" {
		t.Fatalf("expected json format, got: %v", resp.Format)
	}
	if !strings.Contains(resp.Manifest, "pets_listPets") {
		t.Fatalf("expected prefixed tools in manifest, got: %s", resp.Manifest)
	}
	if resp.URL != "" {
		t.Fatalf("expected no URL without store option, got: %v", resp.URL)
	}
}

func TestHandleConvert_StoreOption(t *testing.T) {
	store := NewMemoryStore()
	server := NewHTTPServer(nil, store)
	rec := postJSON(t, server.Routes(), "/convert", HTTPConvertRequest{
		OpenAPISpec: petstoreJSON,
		Options:     HTTPConvertOptions{OutputFormat: "yaml", Store: true},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp HTTPConvertResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("expected JSON response, got: %v", err)
	}
	if !strings.HasPrefix(resp.URL, "mem://manifests/") || !strings.HasSuffix(resp.URL, ".yaml") {
		t.Fatalf("expected durable mem:// URL ending in .yaml, got: %v", resp.URL)
	}
	key := strings.TrimPrefix(resp.URL, "mem://")
	obj, ok := store.Get(key)
	if !ok {
		t.Fatalf("expected manifest persisted at %s", key)
	}
	if string(obj.Data) != resp.Manifest {
		t.Fatalf("expected stored bytes to match response manifest")
	}
}

func TestHandleConvert_ErrorMapping(t *testing.T) {
	server := NewHTTPServer(nil, nil)
	handler := server.Routes()
	cases := []struct {
		name   string
		req    HTTPConvertRequest
		status int
		kind   string
	}{
		{
			name:   "malformed",
			req:    HTTPConvertRequest{OpenAPISpec: "{"},
			status: http.StatusBadRequest,
			kind:   "malformed_spec",
		},
		{
			name:   "unsupported version",
			req:    HTTPConvertRequest{OpenAPISpec: `{"openapi": "4.0.0", "info": {"title": "x", "version": "1"}, "paths": {}}`},
			status: http.StatusBadRequest,
			kind:   "unsupported_version",
		},
		{
			name: "validation failed",
			req: HTTPConvertRequest{
				OpenAPISpec: sloppySpec,
				Options:     HTTPConvertOptions{Validate: true},
			},
			status: http.StatusUnprocessableEntity,
			kind:   "validation_failed",
		},
		{
			name: "unknown tool override",
			req: HTTPConvertRequest{
				OpenAPISpec: petstoreJSON,
				Overlay:     `{"tools": {"noSuchTool": {"description": "x"}}}`,
			},
			status: http.StatusUnprocessableEntity,
			kind:   "unknown_tool_override",
		},
	}
	for _, c := range cases {
		rec := postJSON(t, handler, "/convert", c.req)
		if rec.Code != c.status {
			t.Fatalf("%s: expected status %d, got %d: %s", c.name, c.status, rec.Code, rec.Body.String())
		}
		var resp HTTPErrorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("%s: expected error body, got: %v", c.name, err)
		}
		if resp.Kind != c.kind {
			t.Fatalf("%s: expected kind %s, got: %s", c.name, c.kind, resp.Kind)
		}
	}
}

func TestHandleConvert_ValidationIssuesInBody(t *testing.T) {
	server := NewHTTPServer(nil, nil)
	rec := postJSON(t, server.Routes(), "/convert", HTTPConvertRequest{
		OpenAPISpec: sloppySpec,
		Options:     HTTPConvertOptions{Validate: true},
	})
	var resp HTTPErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("expected error body, got: %v", err)
	}
	if len(resp.Issues) == 0 {
		t.Fatalf("expected validation issues in error body, got: %+v", resp)
	}
}

func TestHandleConvert_MissingSpec(t *testing.T) {
	server := NewHTTPServer(nil, nil)
	rec := postJSON(t, server.Routes(), "/convert", HTTPConvertRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing spec, got %d", rec.Code)
	}
}

func TestHandleConvert_MethodNotAllowed(t *testing.T) {
	server := NewHTTPServer(nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/convert", nil)
	rec := httptest.NewRecorder()
	server.Routes().ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestHandleValidate(t *testing.T) {
	server := NewHTTPServer(nil, nil)
	handler := server.Routes()

	rec := postJSON(t, handler, "/validate", HTTPValidateRequest{OpenAPISpec: petstoreJSON})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for a clean spec, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = postJSON(t, handler, "/validate", HTTPValidateRequest{OpenAPISpec: sloppySpec})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for violations, got %d", rec.Code)
	}
	var result ValidationResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("expected validation result body, got: %v", err)
	}
	if result.Success || result.ErrorCount != 3 {
		t.Fatalf("expected the complete violation set, got: %+v", result)
	}

	rec = postJSON(t, handler, "/validate", HTTPValidateRequest{OpenAPISpec: "{"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for an unparseable spec, got %d", rec.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	server := NewHTTPServer(nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	server.Routes().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("expected JSON body, got: %v", err)
	}
	if body["status"] != "healthy" {
		t.Fatalf("expected healthy status, got: %v", body)
	}
}

func TestHandlers_CORSPreflight(t *testing.T) {
	server := NewHTTPServer(nil, nil)
	handler := server.Routes()
	for _, path := range []string{"/convert", "/validate", "/health"} {
		req := httptest.NewRequest(http.MethodOptions, path, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 preflight, got %d", path, rec.Code)
		}
		if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
			t.Fatalf("%s: expected CORS headers on preflight", path)
		}
	}
}
