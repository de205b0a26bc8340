package openapi2tool

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestConvert_PingEndToEnd(t *testing.T) {
	spec := `{"openapi": "3.0.0", "info": {"title": "Svc", "version": "1"}, "paths": {"/ping": {"get": {"operationId": "ping", "responses": {"200": {"description": "ok"}}}}}}`
	res, err := Convert(ConvertRequest{
		SpecBytes:      []byte(spec),
		ToolNamePrefix: "svc",
		OutputFormat:   FormatJSON,
	})
	if err != nil {
		t.Fatalf("expected conversion to succeed, got: %v", err)
	}
	if res.Format != FormatJSON {
		t.Fatalf("expected json format, got: %v", res.Format)
	}

	var decoded map[string]any
	if err := json.Unmarshal(res.ManifestBytes, &decoded); err != nil {
		t.Fatalf("expected valid JSON manifest, got: %v", err)
	}
	server, _ := decoded["server"].(map[string]any)
	if server == nil || server["name"] != "Svc" {
		t.Fatalf("expected top-level server object, got: %v", decoded["server"])
	}
	tools, _ := decoded["tools"].([]any)
	if len(tools) != 1 {
		t.Fatalf("expected one tool, got: %v", decoded["tools"])
	}
	tool, _ := tools[0].(map[string]any)
	if tool["name"] != "svc_ping" {
		t.Fatalf("expected tool name svc_ping, got: %v", tool["name"])
	}
	tmpl, _ := tool["invocationTemplate"].(map[string]any)
	if tmpl["method"] != "GET" || tmpl["urlTemplate"] != "/ping" {
		t.Fatalf("expected GET /ping invocation template, got: %v", tmpl)
	}
}

func TestConvert_DefaultsToYAML(t *testing.T) {
	res, err := Convert(ConvertRequest{SpecBytes: []byte(petstoreJSON)})
	if err != nil {
		t.Fatalf("expected conversion to succeed, got: %v", err)
	}
	if res.Format != FormatYAML {
		t.Fatalf("expected yaml default format, got: %v", res.Format)
	}
	if !strings.HasPrefix(string(res.ManifestBytes), "server:") {
		t.Fatalf("expected YAML manifest starting with server:, got: %s", res.ManifestBytes[:40])
	}
}

// stripGeneratedAt drops the timestamp line, the only permitted difference
// between two conversions of identical input.
func stripGeneratedAt(data []byte) string {
	var kept []string
	for _, line := range strings.Split(string(data), "\n") {
		if strings.Contains(line, "generatedAt") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

func TestConvert_Idempotence(t *testing.T) {
	overlay := []byte(`{"serverName": "stable", "tools": {"listPets": {"description": "patched"}}}`)
	req := ConvertRequest{
		SpecBytes:    []byte(petstoreJSON),
		OverlayBytes: overlay,
		OutputFormat: FormatJSON,
	}
	first, err := Convert(req)
	if err != nil {
		t.Fatalf("expected first conversion to succeed, got: %v", err)
	}
	second, err := Convert(req)
	if err != nil {
		t.Fatalf("expected second conversion to succeed, got: %v", err)
	}
	if stripGeneratedAt(first.ManifestBytes) != stripGeneratedAt(second.ManifestBytes) {
		t.Fatalf("expected byte-identical output apart from the timestamp:\n%s\n---\n%s", first.ManifestBytes, second.ManifestBytes)
	}
}

func TestConvert_RoundTrip(t *testing.T) {
	res, err := Convert(ConvertRequest{SpecBytes: []byte(petstoreJSON), OutputFormat: FormatYAML})
	if err != nil {
		t.Fatalf("expected conversion to succeed, got: %v", err)
	}
	reparsed, err := DecodeManifest(res.ManifestBytes, FormatYAML)
	if err != nil {
		t.Fatalf("expected round-trip parse, got: %v", err)
	}
	if len(reparsed.Tools) != len(res.Manifest.Tools) {
		t.Fatalf("expected %d tools after round-trip, got: %d", len(res.Manifest.Tools), len(reparsed.Tools))
	}
	for i, tool := range res.Manifest.Tools {
		got := reparsed.Tools[i]
		if got.Name != tool.Name || got.Description != tool.Description {
			t.Fatalf("tool %d changed after round-trip: %+v vs %+v", i, got, tool)
		}
		if got.InvocationTemplate.Method != tool.InvocationTemplate.Method ||
			got.InvocationTemplate.URLTemplate != tool.InvocationTemplate.URLTemplate {
			t.Fatalf("invocation template %d changed after round-trip", i)
		}
		wantKeys := tool.InputSchema.Properties.Keys()
		gotKeys := got.InputSchema.Properties.Keys()
		if len(wantKeys) != len(gotKeys) {
			t.Fatalf("property count changed after round-trip: %v vs %v", gotKeys, wantKeys)
		}
		for j := range wantKeys {
			if wantKeys[j] != gotKeys[j] {
				t.Fatalf("property order changed after round-trip: %v vs %v", gotKeys, wantKeys)
			}
		}
	}
}

func TestConvert_OverlayUnknownTool(t *testing.T) {
	_, err := Convert(ConvertRequest{
		SpecBytes:    []byte(petstoreJSON),
		OverlayBytes: []byte(`{"tools": {"noSuchTool": {"description": "x"}}}`),
	})
	if ErrorKind(err) != "unknown_tool_override" {
		t.Fatalf("expected unknown_tool_override, got: %v", err)
	}
}

func TestConvertAndStore(t *testing.T) {
	store := NewMemoryStore()
	res, url, err := ConvertAndStore(context.Background(), ConvertRequest{
		SpecBytes:    []byte(petstoreJSON),
		OutputFormat: FormatJSON,
	}, store, "manifests/petstore.json")
	if err != nil {
		t.Fatalf("expected store to succeed, got: %v", err)
	}
	if url != "mem://manifests/petstore.json" {
		t.Fatalf("expected durable URL, got: %v", url)
	}
	obj, ok := store.Get("manifests/petstore.json")
	if !ok {
		t.Fatalf("expected stored object")
	}
	if string(obj.Data) != string(res.ManifestBytes) {
		t.Fatalf("expected stored bytes to match serialized manifest")
	}
	if obj.ContentType != "application/json" {
		t.Fatalf("expected application/json content type, got: %v", obj.ContentType)
	}
}

func TestErrorKind(t *testing.T) {
	cases := []struct {
		spec string
		kind string
	}{
		{"{", "malformed_spec"},
		{`{"openapi": "9.9"}`, "unsupported_version"},
	}
	for _, c := range cases {
		_, err := Convert(ConvertRequest{SpecBytes: []byte(c.spec)})
		if ErrorKind(err) != c.kind {
			t.Fatalf("expected %s for %s, got: %v", c.kind, c.spec, err)
		}
	}
}
