// spec.go
package openapi2tool

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"
	invyaml "github.com/invopop/yaml"
	"gopkg.in/yaml.v3"
)

// LoadSpecFile loads and parses an OpenAPI 3.x or Swagger 2.0 YAML or JSON
// file from the given path.
// Example usage for LoadSpecFile:
//
//	doc, err := openapi2tool.LoadSpecFile("petstore.yaml")
//	if err != nil { log.Fatal(err) }
//	manifest := openapi2tool.MapOperations(doc, openapi2tool.MapperOptions{})
func LoadSpecFile(path string) (*SpecDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read spec file: %w", err)
	}
	return LoadSpec(data, FormatUnknown)
}

// LoadSpecFromString loads and parses a spec from a string.
func LoadSpecFromString(data string) (*SpecDocument, error) {
	return LoadSpec([]byte(data), FormatUnknown)
}

// LoadSpec loads and parses a spec from a byte slice. The hint, when not
// FormatUnknown, pins the input encoding; otherwise JSON is attempted first,
// then YAML. The returned SpecDocument is fully populated and never partially
// initialized: any structural mismatch fails with ErrMalformedSpec, an
// unknown or missing version key with ErrUnsupportedVersion.
func LoadSpec(data []byte, hint Format) (*SpecDocument, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrMalformedSpec)
	}
	format, top, err := parseDocument(data, hint)
	if err != nil {
		return nil, err
	}
	version, rawVersion, err := detectVersion(top)
	if err != nil {
		return nil, err
	}

	var doc *openapi3.T
	switch version {
	case SpecVersionSwagger2:
		jsonData := data
		if format == FormatYAML {
			jsonData, err = invyaml.YAMLToJSON(data)
			if err != nil {
				return nil, fmt.Errorf("%w: converting Swagger YAML to JSON: %v", ErrMalformedSpec, err)
			}
		}
		// An unquoted "swagger: 2.0" arrives as a JSON number; the typed
		// model wants a string.
		jsonData, err = normalizeSwaggerVersion(jsonData)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedSpec, err)
		}
		var doc2 openapi2.T
		if err := json.Unmarshal(jsonData, &doc2); err != nil {
			return nil, fmt.Errorf("%w: parsing Swagger 2.0 document: %v", ErrMalformedSpec, err)
		}
		doc, err = openapi2conv.ToV3(&doc2)
		if err != nil {
			return nil, fmt.Errorf("%w: upconverting Swagger 2.0 document: %v", ErrMalformedSpec, err)
		}
	default:
		loader := openapi3.NewLoader()
		doc, err = loader.LoadFromData(data)
		if err != nil {
			return nil, fmt.Errorf("%w: parsing OpenAPI document: %v", ErrMalformedSpec, err)
		}
	}
	return buildSpecDocument(doc, version, rawVersion, data)
}

// parseDocument decodes the top-level document into a generic map, resolving
// the input format. JSON is attempted before YAML when no hint is given.
func parseDocument(data []byte, hint Format) (Format, map[string]any, error) {
	tryJSON := func() (map[string]any, error) {
		var top map[string]any
		err := json.Unmarshal(data, &top)
		return top, err
	}
	tryYAML := func() (map[string]any, error) {
		var top map[string]any
		err := yaml.Unmarshal(data, &top)
		if err == nil && top == nil {
			err = fmt.Errorf("document is not a mapping")
		}
		return top, err
	}
	switch hint {
	case FormatJSON:
		top, err := tryJSON()
		if err != nil {
			return FormatUnknown, nil, fmt.Errorf("%w: invalid JSON: %v", ErrMalformedSpec, err)
		}
		return FormatJSON, top, nil
	case FormatYAML:
		top, err := tryYAML()
		if err != nil {
			return FormatUnknown, nil, fmt.Errorf("%w: invalid YAML: %v", ErrMalformedSpec, err)
		}
		return FormatYAML, top, nil
	default:
		if top, err := tryJSON(); err == nil {
			return FormatJSON, top, nil
		}
		if top, err := tryYAML(); err == nil {
			return FormatYAML, top, nil
		}
		return FormatUnknown, nil, fmt.Errorf("%w: input is neither valid JSON nor valid YAML", ErrMalformedSpec)
	}
}

// detectVersion inspects the top-level openapi/swagger key and resolves the
// spec dialect once, at load time.
func detectVersion(top map[string]any) (SpecVersion, string, error) {
	if v, ok := top["openapi"]; ok {
		s := versionString(v)
		if strings.HasPrefix(s, "3.") || s == "3" {
			return SpecVersionOpenAPI3, s, nil
		}
		return "", "", fmt.Errorf("%w: openapi %s", ErrUnsupportedVersion, s)
	}
	if v, ok := top["swagger"]; ok {
		s := versionString(v)
		if s == "2.0" || s == "2" {
			return SpecVersionSwagger2, "2.0", nil
		}
		return "", "", fmt.Errorf("%w: swagger %s", ErrUnsupportedVersion, s)
	}
	return "", "", fmt.Errorf("%w: document has no top-level openapi or swagger key", ErrUnsupportedVersion)
}

// normalizeSwaggerVersion rewrites the top-level swagger key to the string
// "2.0" so the typed Swagger model can decode it.
func normalizeSwaggerVersion(jsonData []byte) ([]byte, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(jsonData, &top); err != nil {
		return nil, fmt.Errorf("parsing Swagger document: %v", err)
	}
	top["swagger"] = json.RawMessage(`"2.0"`)
	return json.Marshal(top)
}

// versionString normalizes a version value that YAML may have decoded as a
// number (e.g. an unquoted swagger: 2.0).
func versionString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		s := strconv.FormatFloat(val, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	case int:
		return strconv.Itoa(val) + ".0"
	default:
		return fmt.Sprintf("%v", val)
	}
}

// methodPriority fixes the order of operations within a path so manifest
// output is reproducible regardless of map iteration order.
var methodPriority = map[string]int{
	"GET":     0,
	"DELETE":  1,
	"PATCH":   2,
	"POST":    3,
	"PUT":     4,
	"HEAD":    5,
	"OPTIONS": 6,
	"TRACE":   7,
}

// buildSpecDocument populates the typed SpecDocument from the parsed
// kin-openapi model, recovering path declaration order from the raw bytes.
func buildSpecDocument(doc *openapi3.T, version SpecVersion, rawVersion string, data []byte) (*SpecDocument, error) {
	out := &SpecDocument{
		Version:    version,
		RawVersion: rawVersion,
	}
	if doc.Info != nil {
		out.Title = doc.Info.Title
		out.Description = doc.Info.Description
	}
	for _, s := range doc.Servers {
		if s != nil && s.URL != "" {
			out.Servers = append(out.Servers, s.URL)
		}
	}
	if doc.Components != nil && doc.Components.SecuritySchemes != nil {
		for name := range doc.Components.SecuritySchemes {
			out.SecuritySchemes = append(out.SecuritySchemes, name)
		}
		sort.Strings(out.SecuritySchemes)
	}

	var pathsMap map[string]*openapi3.PathItem
	if doc.Paths != nil {
		pathsMap = doc.Paths.Map()
	}
	for _, path := range orderedPathKeys(data, pathsMap) {
		item := pathsMap[path]
		if item == nil {
			continue
		}
		ps := PathSpec{
			Path:       path,
			Parameters: convertParameters(item.Parameters),
		}
		for method, op := range item.Operations() {
			if op == nil {
				continue
			}
			ps.Operations = append(ps.Operations, Operation{
				Method:      method,
				OperationID: op.OperationID,
				Summary:     op.Summary,
				Description: op.Description,
				Parameters:  mergeParameters(ps.Parameters, convertParameters(op.Parameters)),
				RequestBody: convertRequestBody(op.RequestBody),
				Responses:   convertResponses(op.Responses),
			})
		}
		sort.SliceStable(ps.Operations, func(i, j int) bool {
			return methodRank(ps.Operations[i].Method) < methodRank(ps.Operations[j].Method)
		})
		out.Paths = append(out.Paths, ps)
	}
	return out, nil
}

func methodRank(method string) int {
	if rank, ok := methodPriority[strings.ToUpper(method)]; ok {
		return rank
	}
	return len(methodPriority)
}

// orderedPathKeys returns the keys of pathsMap in the order they were
// declared in the raw document. The parsed model keeps paths in a map, so
// declaration order has to be recovered from the source bytes; any key the
// walk misses is appended in sorted order.
func orderedPathKeys(data []byte, pathsMap map[string]*openapi3.PathItem) []string {
	var order []string
	seen := map[string]bool{}
	for _, key := range pathDeclarationOrder(data) {
		if _, ok := pathsMap[key]; ok && !seen[key] {
			order = append(order, key)
			seen[key] = true
		}
	}
	var rest []string
	for key := range pathsMap {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	return append(order, rest...)
}

// pathDeclarationOrder walks the raw document as a YAML node tree (JSON is a
// YAML subset, so one walk covers both encodings) and returns the keys under
// the top-level paths mapping in declaration order.
func pathDeclarationOrder(data []byte) []string {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil
	}
	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(top.Content); i += 2 {
		if top.Content[i].Value != "paths" || top.Content[i+1].Kind != yaml.MappingNode {
			continue
		}
		paths := top.Content[i+1]
		var keys []string
		for j := 0; j+1 < len(paths.Content); j += 2 {
			keys = append(keys, paths.Content[j].Value)
		}
		return keys
	}
	return nil
}

// convertParameters converts kin-openapi parameters into the typed model,
// tolerating nil refs and values so best-effort conversion can proceed.
func convertParameters(params openapi3.Parameters) []Parameter {
	var out []Parameter
	for _, ref := range params {
		if ref == nil || ref.Value == nil {
			continue
		}
		p := ref.Value
		param := Parameter{
			Name:        p.Name,
			In:          p.In,
			Required:    p.Required,
			Description: p.Description,
		}
		if p.Schema != nil && p.Schema.Value != nil {
			param.Schema = extractProperty(p.Schema)
		}
		out = append(out, param)
	}
	return out
}

// mergeParameters unions path-item-level and operation-level parameters.
// An operation parameter with the same name and location replaces the
// path-level one in place; new parameters append in declaration order.
func mergeParameters(pathParams, opParams []Parameter) []Parameter {
	merged := make([]Parameter, len(pathParams))
	copy(merged, pathParams)
	for _, op := range opParams {
		replaced := false
		for i, existing := range merged {
			if existing.Name == op.Name && existing.In == op.In {
				merged[i] = op
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, op)
		}
	}
	return merged
}

// convertRequestBody extracts the JSON request body schema when present.
// Non-JSON content types are recorded without a schema so the validator can
// flag them; the mapper ignores them.
func convertRequestBody(ref *openapi3.RequestBodyRef) *RequestBody {
	if ref == nil || ref.Value == nil {
		return nil
	}
	if mt := ref.Value.Content.Get("application/json"); mt != nil {
		rb := &RequestBody{ContentType: "application/json", Required: ref.Value.Required}
		if mt.Schema != nil && mt.Schema.Value != nil {
			rb.Schema = extractProperty(mt.Schema)
		}
		return rb
	}
	var names []string
	for name := range ref.Value.Content {
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil
	}
	sort.Strings(names)
	return &RequestBody{ContentType: names[0], Required: ref.Value.Required}
}

// convertResponses records declared responses sorted by status code.
func convertResponses(responses *openapi3.Responses) []Response {
	if responses == nil {
		return nil
	}
	var out []Response
	for status, ref := range responses.Map() {
		r := Response{Status: status}
		if ref != nil && ref.Value != nil && ref.Value.Description != nil {
			r.Description = *ref.Value.Description
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Status < out[j].Status })
	return out
}

// extractProperty recursively extracts a property schema from an OpenAPI
// SchemaRef. Handles allOf, oneOf, anyOf, default, example, and basic
// OpenAPI 3.1 features.
func extractProperty(s *openapi3.SchemaRef) map[string]any {
	if s == nil || s.Value == nil {
		return nil
	}
	val := s.Value
	prop := map[string]any{}
	// allOf: merge all subschemas
	if len(val.AllOf) > 0 {
		for _, sub := range val.AllOf {
			for k, v := range extractProperty(sub) {
				prop[k] = v
			}
		}
	}
	if len(val.OneOf) > 0 {
		oneOf := []any{}
		for _, sub := range val.OneOf {
			oneOf = append(oneOf, extractProperty(sub))
		}
		prop["oneOf"] = oneOf
	}
	if len(val.AnyOf) > 0 {
		anyOf := []any{}
		for _, sub := range val.AnyOf {
			anyOf = append(anyOf, extractProperty(sub))
		}
		prop["anyOf"] = anyOf
	}
	if val.Type != nil && len(*val.Type) > 0 {
		// Use the first type if multiple types are specified
		prop["type"] = (*val.Type)[0]
	}
	if val.Format != "" {
		prop["format"] = val.Format
	}
	if val.Description != "" {
		prop["description"] = val.Description
	}
	if len(val.Enum) > 0 {
		prop["enum"] = val.Enum
	}
	if val.Default != nil {
		prop["default"] = val.Default
	}
	if val.Example != nil {
		prop["example"] = val.Example
	}
	if val.Type != nil && val.Type.Is("object") && val.Properties != nil {
		objProps := map[string]any{}
		for name, sub := range val.Properties {
			objProps[name] = extractProperty(sub)
		}
		prop["properties"] = objProps
		if len(val.Required) > 0 {
			prop["required"] = val.Required
		}
	}
	if val.Type != nil && val.Type.Is("array") && val.Items != nil {
		prop["items"] = extractProperty(val.Items)
	}
	return prop
}
