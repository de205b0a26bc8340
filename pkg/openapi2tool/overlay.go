// overlay.go
package openapi2tool

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	invyaml "github.com/invopop/yaml"
	"github.com/xeipuuv/gojsonschema"
)

// TemplateOverlay is a caller-supplied patch document applied after
// automatic mapping. Override values always win over generated ones.
type TemplateOverlay struct {
	ServerName string                   `json:"serverName,omitempty" yaml:"serverName,omitempty"`
	Tools      map[string]*ToolOverride `json:"tools,omitempty" yaml:"tools,omitempty"`
}

// ToolOverride holds the partial tool-definition fields an overlay may
// replace or patch.
type ToolOverride struct {
	Description        string            `json:"description,omitempty" yaml:"description,omitempty"`
	InputSchema        *InputSchemaPatch `json:"inputSchema,omitempty" yaml:"inputSchema,omitempty"`
	InvocationTemplate *TemplatePatch    `json:"invocationTemplate,omitempty" yaml:"invocationTemplate,omitempty"`
}

// InputSchemaPatch patches individual input-schema properties and, when
// present, replaces the required list wholesale.
type InputSchemaPatch struct {
	Properties map[string]any `json:"properties,omitempty" yaml:"properties,omitempty"`
	Required   []string       `json:"required,omitempty" yaml:"required,omitempty"`
}

// TemplatePatch replaces invocation-template fields when non-empty.
type TemplatePatch struct {
	Method      string `json:"method,omitempty" yaml:"method,omitempty"`
	URLTemplate string `json:"urlTemplate,omitempty" yaml:"urlTemplate,omitempty"`
}

// overlaySchema is the JSON Schema every overlay document must satisfy
// before it is applied.
const overlaySchema = `{
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "serverName": {"type": "string"},
    "tools": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "additionalProperties": false,
        "properties": {
          "description": {"type": "string"},
          "inputSchema": {
            "type": "object",
            "additionalProperties": false,
            "properties": {
              "properties": {"type": "object"},
              "required": {"type": "array", "items": {"type": "string"}}
            }
          },
          "invocationTemplate": {
            "type": "object",
            "additionalProperties": false,
            "properties": {
              "method": {"type": "string"},
              "urlTemplate": {"type": "string"}
            }
          }
        }
      }
    }
  }
}`

// ParseOverlay parses and validates an overlay document from JSON or YAML
// bytes. Structural problems are reported through ErrMalformedSpec with the
// full list of schema violations.
// Example usage for ParseOverlay:
//
//	overlay, err := openapi2tool.ParseOverlay(overlayBytes)
//	if err != nil { log.Fatal(err) }
//	err = openapi2tool.ApplyOverlay(manifest, overlay)
func ParseOverlay(data []byte) (*TemplateOverlay, error) {
	jsonData := data
	if !json.Valid(data) {
		converted, err := invyaml.YAMLToJSON(data)
		if err != nil {
			return nil, fmt.Errorf("%w: overlay is neither valid JSON nor valid YAML: %v", ErrMalformedSpec, err)
		}
		jsonData = converted
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(overlaySchema),
		gojsonschema.NewBytesLoader(jsonData),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: validating overlay: %v", ErrMalformedSpec, err)
	}
	if !result.Valid() {
		var msgs []string
		for _, verr := range result.Errors() {
			msgs = append(msgs, verr.String())
		}
		return nil, fmt.Errorf("%w: overlay does not match the overlay schema: %s", ErrMalformedSpec, strings.Join(msgs, "; "))
	}

	var overlay TemplateOverlay
	if err := json.Unmarshal(jsonData, &overlay); err != nil {
		return nil, fmt.Errorf("%w: decoding overlay: %v", ErrMalformedSpec, err)
	}
	return &overlay, nil
}

// ApplyOverlay merges the overlay onto the generated manifest. All referenced
// tool names are resolved before any mutation, so an unknown name fails with
// UnknownToolOverrideError and leaves the manifest untouched. Merging is
// shallow and override values always win.
func ApplyOverlay(m *Manifest, overlay *TemplateOverlay) error {
	if overlay == nil {
		return nil
	}
	byName := make(map[string]*ToolDefinition, len(m.Tools))
	for _, tool := range m.Tools {
		byName[tool.Name] = tool
	}

	names := make([]string, 0, len(overlay.Tools))
	for name := range overlay.Tools {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, ok := byName[name]; !ok {
			return &UnknownToolOverrideError{Name: name}
		}
	}

	if overlay.ServerName != "" {
		m.Server.Name = overlay.ServerName
	}
	for _, name := range names {
		applyToolOverride(byName[name], overlay.Tools[name])
	}
	return nil
}

func applyToolOverride(tool *ToolDefinition, override *ToolOverride) {
	if override == nil {
		return
	}
	if override.Description != "" {
		tool.Description = override.Description
	}
	if patch := override.InputSchema; patch != nil {
		if tool.InputSchema == nil {
			tool.InputSchema = &InputSchema{Type: "object", Properties: NewPropertyMap()}
		}
		if tool.InputSchema.Properties == nil {
			tool.InputSchema.Properties = NewPropertyMap()
		}
		keys := make([]string, 0, len(patch.Properties))
		for k := range patch.Properties {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			tool.InputSchema.Properties.Set(k, patch.Properties[k])
		}
		if patch.Required != nil {
			tool.InputSchema.Required = patch.Required
		}
	}
	if patch := override.InvocationTemplate; patch != nil {
		if tool.InvocationTemplate == nil {
			tool.InvocationTemplate = &InvocationTemplate{}
		}
		if patch.Method != "" {
			tool.InvocationTemplate.Method = strings.ToUpper(patch.Method)
		}
		if patch.URLTemplate != "" {
			tool.InvocationTemplate.URLTemplate = patch.URLTemplate
		}
	}
}
