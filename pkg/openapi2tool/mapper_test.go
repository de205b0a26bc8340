package openapi2tool

import (
	"testing"
)

func mustLoad(t *testing.T, spec string) *SpecDocument {
	t.Helper()
	doc, err := LoadSpec([]byte(spec), FormatUnknown)
	if err != nil {
		t.Fatalf("expected spec to load, got: %v", err)
	}
	return doc
}

func TestMapOperations_Basic(t *testing.T) {
	doc := mustLoad(t, petstoreJSON)
	manifest := MapOperations(doc, MapperOptions{})
	if manifest.Server.Name != "Petstore" {
		t.Fatalf("expected server name from spec title, got: %v", manifest.Server.Name)
	}
	if manifest.Server.BaseURL != "https://api.example.com/v1" {
		t.Fatalf("expected first server URL, got: %v", manifest.Server.BaseURL)
	}
	if len(manifest.Tools) != 4 {
		t.Fatalf("expected one tool per operation, got: %d", len(manifest.Tools))
	}
	want := []string{"listPets", "createPet", "getPet", "deletePet"}
	for i, tool := range manifest.Tools {
		if tool.Name != want[i] {
			t.Fatalf("expected tool order %v, got %s at index %d", want, tool.Name, i)
		}
	}
	if manifest.Metadata.SourceSpecVersion != "3.0.0" {
		t.Fatalf("expected source spec version 3.0.0, got: %v", manifest.Metadata.SourceSpecVersion)
	}
}

func TestMapOperations_SynthesizedName(t *testing.T) {
	spec := `{
  "openapi": "3.0.0",
  "info": {"title": "T", "version": "1"},
  "paths": {
    "/accounts/{id}": {
      "get": {
        "parameters": [{"name": "id", "in": "path", "required": true, "schema": {"type": "string"}}],
        "responses": {"200": {"description": "ok"}}
      }
    }
  }
}`
	manifest := MapOperations(mustLoad(t, spec), MapperOptions{})
	if manifest.Tools[0].Name != "get_accounts_id" {
		t.Fatalf("expected synthesized name get_accounts_id, got: %v", manifest.Tools[0].Name)
	}

	prefixed := MapOperations(mustLoad(t, spec), MapperOptions{ToolNamePrefix: "svc"})
	if prefixed.Tools[0].Name != "svc_get_accounts_id" {
		t.Fatalf("expected prefixed name svc_get_accounts_id, got: %v", prefixed.Tools[0].Name)
	}
}

func TestMapOperations_NameCollisions(t *testing.T) {
	spec := `{
  "openapi": "3.0.0",
  "info": {"title": "T", "version": "1"},
  "paths": {
    "/a": {"get": {"operationId": "dup", "responses": {"200": {"description": "ok"}}}},
    "/b": {"get": {"operationId": "dup", "responses": {"200": {"description": "ok"}}}},
    "/c": {"get": {"operationId": "dup", "responses": {"200": {"description": "ok"}}}}
  }
}`
	manifest := MapOperations(mustLoad(t, spec), MapperOptions{})
	if len(manifest.Tools) != 3 {
		t.Fatalf("collision resolution must not change tool count, got: %d", len(manifest.Tools))
	}
	want := []string{"dup", "dup_2", "dup_3"}
	for i, tool := range manifest.Tools {
		if tool.Name != want[i] {
			t.Fatalf("expected deterministic suffixing %v, got %s at index %d", want, tool.Name, i)
		}
	}
}

func TestMapOperations_InputSchemaFlattening(t *testing.T) {
	doc := mustLoad(t, petstoreJSON)
	manifest := MapOperations(doc, MapperOptions{})

	var createPet *ToolDefinition
	for _, tool := range manifest.Tools {
		if tool.Name == "createPet" {
			createPet = tool
		}
	}
	if createPet == nil {
		t.Fatalf("expected createPet tool")
	}
	props := createPet.InputSchema.Properties
	if !props.Has("name") || !props.Has("tag") {
		t.Fatalf("expected body properties flattened into input schema, got: %v", props.Keys())
	}
	if len(createPet.InputSchema.Required) != 1 || createPet.InputSchema.Required[0] != "name" {
		t.Fatalf("expected required to mirror body required list, got: %v", createPet.InputSchema.Required)
	}
	if len(createPet.InvocationTemplate.BodyMap) != 2 {
		t.Fatalf("expected two body bindings, got: %+v", createPet.InvocationTemplate.BodyMap)
	}
	if createPet.InvocationTemplate.URLTemplate != "https://api.example.com/v1/pets" {
		t.Fatalf("expected base URL joined with path, got: %v", createPet.InvocationTemplate.URLTemplate)
	}
}

func TestMapOperations_BodyParameterCollision(t *testing.T) {
	spec := `{
  "openapi": "3.0.0",
  "info": {"title": "T", "version": "1"},
  "paths": {
    "/widgets/{id}": {
      "put": {
        "operationId": "updateWidget",
        "parameters": [
          {"name": "id", "in": "path", "required": true, "schema": {"type": "string"}}
        ],
        "requestBody": {
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "properties": {
                  "id": {"type": "integer"},
                  "label": {"type": "string"}
                },
                "required": ["id"]
              }
            }
          }
        },
        "responses": {"200": {"description": "ok"}}
      }
    }
  }
}`
	manifest := MapOperations(mustLoad(t, spec), MapperOptions{})
	tool := manifest.Tools[0]
	props := tool.InputSchema.Properties
	if !props.Has("id") || !props.Has("body_id") {
		t.Fatalf("expected body/parameter collision namespaced as body_id, got: %v", props.Keys())
	}
	foundRequired := false
	for _, r := range tool.InputSchema.Required {
		if r == "body_id" {
			foundRequired = true
		}
	}
	if !foundRequired {
		t.Fatalf("expected namespaced body field to keep its required flag, got: %v", tool.InputSchema.Required)
	}
	for _, binding := range tool.InvocationTemplate.BodyMap {
		if binding.Source == "id" && binding.Argument != "body_id" {
			t.Fatalf("expected body binding id -> body_id, got: %+v", binding)
		}
	}
}

func TestMapOperations_NonObjectBody(t *testing.T) {
	spec := `{
  "openapi": "3.0.0",
  "info": {"title": "T", "version": "1"},
  "paths": {
    "/notes": {
      "post": {
        "operationId": "addNote",
        "requestBody": {
          "required": true,
          "content": {
            "application/json": {
              "schema": {"type": "string"}
            }
          }
        },
        "responses": {"201": {"description": "created"}}
      }
    }
  }
}`
	manifest := MapOperations(mustLoad(t, spec), MapperOptions{})
	tool := manifest.Tools[0]
	if !tool.InputSchema.Properties.Has("body") {
		t.Fatalf("expected whole-body argument, got: %v", tool.InputSchema.Properties.Keys())
	}
	if len(tool.InputSchema.Required) != 1 || tool.InputSchema.Required[0] != "body" {
		t.Fatalf("expected body argument required, got: %v", tool.InputSchema.Required)
	}
	if len(tool.InvocationTemplate.BodyMap) != 1 || tool.InvocationTemplate.BodyMap[0].Source != "" {
		t.Fatalf("expected whole-body binding, got: %+v", tool.InvocationTemplate.BodyMap)
	}
}

func TestMapOperations_ParameterBindings(t *testing.T) {
	spec := `{
  "openapi": "3.0.0",
  "info": {"title": "T", "version": "1"},
  "paths": {
    "/search": {
      "get": {
        "operationId": "search",
        "parameters": [
          {"name": "q", "in": "query", "required": true, "schema": {"type": "string"}},
          {"name": "filter[created_at]", "in": "query", "schema": {"type": "string"}},
          {"name": "X-Trace", "in": "header", "schema": {"type": "string"}}
        ],
        "responses": {"200": {"description": "ok"}}
      }
    }
  }
}`
	manifest := MapOperations(mustLoad(t, spec), MapperOptions{})
	tool := manifest.Tools[0]
	bindings := tool.InvocationTemplate.ParameterMap
	if len(bindings) != 3 {
		t.Fatalf("expected 3 parameter bindings, got: %+v", bindings)
	}
	if bindings[1].Argument != "filter_created_at_" || bindings[1].Source != "filter[created_at]" {
		t.Fatalf("expected escaped argument to map back to original name, got: %+v", bindings[1])
	}
	if bindings[2].Location != "header" {
		t.Fatalf("expected header location preserved, got: %+v", bindings[2])
	}
	if !tool.InputSchema.Properties.Has("filter_created_at_") {
		t.Fatalf("expected escaped property name, got: %v", tool.InputSchema.Properties.Keys())
	}
}

func TestSelfTestManifest(t *testing.T) {
	doc := mustLoad(t, petstoreJSON)
	manifest := MapOperations(doc, MapperOptions{})
	if err := SelfTestManifest(doc, manifest); err != nil {
		t.Fatalf("expected self-test to pass, got: %v", err)
	}
	manifest.Tools = manifest.Tools[:len(manifest.Tools)-1]
	if err := SelfTestManifest(doc, manifest); err == nil {
		t.Fatalf("expected self-test to fail after dropping a tool")
	}
}
