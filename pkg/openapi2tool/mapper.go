// mapper.go
package openapi2tool

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// MapperOptions controls tool generation for a single conversion.
//
// ServerName: logical server name for the manifest (defaults to the spec
// title, then "api")
// ToolNamePrefix: prepended to every tool name as "{prefix}_"
type MapperOptions struct {
	ServerName     string
	ToolNamePrefix string
}

// MapOperations walks every operation of the spec in declaration order and
// derives one tool definition per operation. Tool names are unique per
// manifest: collisions are resolved by appending _2, _3, ... in declaration
// order, so collision resolution changes names, never the tool count.
// Example usage for MapOperations:
//
//	doc, _ := openapi2tool.LoadSpecFile("petstore.yaml")
//	manifest := openapi2tool.MapOperations(doc, openapi2tool.MapperOptions{ToolNamePrefix: "petstore"})
func MapOperations(doc *SpecDocument, opts MapperOptions) *Manifest {
	serverName := opts.ServerName
	if serverName == "" {
		serverName = doc.Title
	}
	if serverName == "" {
		serverName = "api"
	}
	baseURL := ""
	if len(doc.Servers) > 0 {
		baseURL = doc.Servers[0]
	}

	manifest := &Manifest{
		Server: ServerInfo{Name: serverName, BaseURL: baseURL},
		Tools:  []*ToolDefinition{},
		Metadata: &GenerationMetadata{
			SourceSpecVersion: doc.RawVersion,
		},
	}

	used := map[string]bool{}
	for _, ps := range doc.Paths {
		for _, op := range ps.Operations {
			tool := buildTool(ps.Path, op, baseURL, opts.ToolNamePrefix)
			tool.Name = uniqueName(tool.Name, used)
			manifest.Tools = append(manifest.Tools, tool)
		}
	}
	return manifest
}

func buildTool(path string, op Operation, baseURL, prefix string) *ToolDefinition {
	name := op.OperationID
	if name == "" {
		name = fmt.Sprintf("%s_%s", strings.ToLower(op.Method), sanitizePath(path))
	}
	if prefix != "" {
		name = prefix + "_" + name
	}

	desc := op.Description
	if desc == "" {
		desc = op.Summary
	}

	schema, template := buildToolInput(op)
	template.Method = strings.ToUpper(op.Method)
	template.URLTemplate = joinURL(baseURL, path)

	return &ToolDefinition{
		Name:               name,
		Description:        desc,
		InputSchema:        schema,
		InvocationTemplate: template,
	}
}

// buildToolInput flattens the operation's parameters and JSON body fields
// into a single input schema, and records the argument bindings the
// invocation template needs to reassemble the HTTP request.
func buildToolInput(op Operation) (*InputSchema, *InvocationTemplate) {
	props := NewPropertyMap()
	var required []string
	template := &InvocationTemplate{}

	for _, p := range op.Parameters {
		arg := escapeParameterName(p.Name)
		prop := cloneSchema(p.Schema)
		if prop == nil {
			// Tolerate parameters without a schema when validation is off.
			prop = map[string]any{}
		}
		if p.Description != "" {
			prop["description"] = p.Description
		}
		props.Set(arg, prop)
		if p.Required {
			required = append(required, arg)
		}
		template.ParameterMap = append(template.ParameterMap, ArgumentBinding{
			Argument: arg,
			Source:   p.Name,
			Location: p.In,
		})
	}

	if body := op.RequestBody; body != nil && body.ContentType == "application/json" && body.Schema != nil {
		bodyProps, _ := body.Schema["properties"].(map[string]any)
		if len(bodyProps) > 0 {
			bodyRequired := map[string]bool{}
			if reqList, ok := body.Schema["required"].([]string); ok {
				for _, r := range reqList {
					bodyRequired[r] = true
				}
			}
			fields := make([]string, 0, len(bodyProps))
			for field := range bodyProps {
				fields = append(fields, field)
			}
			sort.Strings(fields)
			for _, field := range fields {
				arg := field
				if props.Has(arg) {
					// Body/parameter collisions are namespaced, never dropped.
					arg = "body_" + field
				}
				props.Set(arg, bodyProps[field])
				if bodyRequired[field] {
					required = append(required, arg)
				}
				template.BodyMap = append(template.BodyMap, ArgumentBinding{
					Argument: arg,
					Source:   field,
					Location: "body",
				})
			}
		} else {
			// Non-object JSON body: bind the whole body to one argument.
			arg := "body"
			if props.Has(arg) {
				arg = "body_" + arg
			}
			props.Set(arg, cloneSchema(body.Schema))
			if body.Required {
				required = append(required, arg)
			}
			template.BodyMap = append(template.BodyMap, ArgumentBinding{
				Argument: arg,
				Location: "body",
			})
		}
	}

	return &InputSchema{Type: "object", Properties: props, Required: required}, template
}

var nonNameChars = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// sanitizePath turns a path template into a name fragment: separators and
// {} placeholders become underscores, runs collapse, edges trim.
// "/accounts/{id}" becomes "accounts_id".
func sanitizePath(path string) string {
	return strings.Trim(nonNameChars.ReplaceAllString(path, "_"), "_")
}

// uniqueName reserves name, appending _2, _3, ... on collision.
func uniqueName(name string, used map[string]bool) string {
	if !used[name] {
		used[name] = true
		return name
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s_%d", name, i)
		if !used[candidate] {
			used[candidate] = true
			return candidate
		}
	}
}

// joinURL prepends the base URL to the path template, leaving {name}
// placeholders literal.
func joinURL(baseURL, path string) string {
	if baseURL == "" {
		return path
	}
	return strings.TrimSuffix(baseURL, "/") + path
}

// escapeParameterName converts parameter names with brackets to
// schema-compatible argument names. For example: "filter[created_at]"
// becomes "filter_created_at_". The trailing underscore distinguishes
// escaped names from naturally occurring names.
func escapeParameterName(name string) string {
	if !strings.Contains(name, "[") && !strings.Contains(name, "]") {
		return name
	}
	escaped := strings.ReplaceAll(name, "[", "_")
	escaped = strings.ReplaceAll(escaped, "]", "_")
	if !strings.HasSuffix(escaped, "_") {
		escaped += "_"
	}
	return escaped
}

// cloneSchema shallow-copies a property tree so per-tool mutations (e.g.
// parameter descriptions) never leak back into the spec document.
func cloneSchema(schema map[string]any) map[string]any {
	if schema == nil {
		return nil
	}
	out := make(map[string]any, len(schema))
	for k, v := range schema {
		out[k] = v
	}
	return out
}
