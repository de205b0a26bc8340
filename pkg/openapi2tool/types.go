// Package openapi2tool converts OpenAPI 3.x and Swagger 2.0 documents into
// agent-tool manifests. It provides functions to load and validate specs, map
// every HTTP operation onto a callable tool definition, apply a user-supplied
// overlay, and serialize the result deterministically to JSON or YAML.
package openapi2tool

// SpecVersion identifies the specification dialect of a loaded document.
type SpecVersion string

const (
	SpecVersionOpenAPI3 SpecVersion = "openapi3"
	SpecVersionSwagger2 SpecVersion = "swagger2"
)

// Format identifies a document encoding. It is used both as the optional
// input-format hint and as the requested manifest output format.
type Format string

const (
	FormatUnknown Format = ""
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
)

// SpecDocument is the typed in-memory representation of a parsed spec.
// It is built once per conversion, treated as immutable, and discarded
// after mapping.
type SpecDocument struct {
	Version         SpecVersion
	RawVersion      string // e.g. "3.0.3" or "2.0"
	Title           string
	Description     string
	Servers         []string // ordered base URLs
	Paths           []PathSpec
	SecuritySchemes []string // scheme names, informational
}

// PathSpec holds one path template with its path-item-level parameters and
// operations. Operations are ordered by the fixed method priority so that
// manifest output is reproducible.
type PathSpec struct {
	Path       string
	Parameters []Parameter
	Operations []Operation
}

// Operation describes a single HTTP operation extracted from the spec.
// Parameters are the merged union of path-item-level and operation-level
// parameters, with operation-level winning on same name+location.
type Operation struct {
	Method      string // upper-case, e.g. "GET"
	OperationID string // may be empty
	Summary     string
	Description string
	Parameters  []Parameter
	RequestBody *RequestBody
	Responses   []Response
}

// Parameter describes one declared operation parameter.
type Parameter struct {
	Name        string
	In          string // path|query|header|cookie
	Required    bool
	Description string
	Schema      map[string]any // extracted JSON-schema property tree, may be nil
}

// RequestBody describes the request body of an operation. Only
// application/json bodies contribute properties to the tool input schema;
// other content types are recorded for validation warnings.
type RequestBody struct {
	ContentType string
	Required    bool
	Schema      map[string]any
}

// Response records a declared response, informational only.
type Response struct {
	Status      string
	Description string
}

// Manifest is the immutable final output of a conversion: a server
// identity plus an ordered list of tool definitions. Metadata trails the
// document so that the generatedAt timestamp is the only nondeterministic
// tail of otherwise byte-identical output.
type Manifest struct {
	Server   ServerInfo          `json:"server" yaml:"server"`
	Tools    []*ToolDefinition   `json:"tools" yaml:"tools"`
	Metadata *GenerationMetadata `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// ServerInfo names the manifest's logical server and its base URL, taken
// from the first declared server of the source spec.
type ServerInfo struct {
	Name    string `json:"name" yaml:"name"`
	BaseURL string `json:"baseUrl,omitempty" yaml:"baseUrl,omitempty"`
}

// GenerationMetadata records provenance of a generated manifest.
type GenerationMetadata struct {
	SourceSpecVersion string `json:"sourceSpecVersion" yaml:"sourceSpecVersion"`
	GeneratedAt       string `json:"generatedAt,omitempty" yaml:"generatedAt,omitempty"`
}

// ToolDefinition is one callable unit of the manifest, mapped 1:1 from a
// source operation. Names are unique per manifest; collisions are resolved
// by deterministic numeric suffixing during mapping.
type ToolDefinition struct {
	Name               string              `json:"name" yaml:"name"`
	Description        string              `json:"description,omitempty" yaml:"description,omitempty"`
	InputSchema        *InputSchema        `json:"inputSchema" yaml:"inputSchema"`
	InvocationTemplate *InvocationTemplate `json:"invocationTemplate" yaml:"invocationTemplate"`
}

// InputSchema is the flattened JSON-schema object for a tool's arguments:
// the union of all parameter names plus the top-level properties of a JSON
// request body, with a required list mirroring the source flags.
type InputSchema struct {
	Type       string       `json:"type" yaml:"type"`
	Properties *PropertyMap `json:"properties" yaml:"properties"`
	Required   []string     `json:"required,omitempty" yaml:"required,omitempty"`
}

// InvocationTemplate describes how tool arguments become an HTTP request:
// the method, a URL template with literal {name} placeholders, and ordered
// bindings from input-schema arguments back to parameters and body fields.
type InvocationTemplate struct {
	Method       string            `json:"method" yaml:"method"`
	URLTemplate  string            `json:"urlTemplate" yaml:"urlTemplate"`
	ParameterMap []ArgumentBinding `json:"parameterMap,omitempty" yaml:"parameterMap,omitempty"`
	BodyMap      []ArgumentBinding `json:"bodyMap,omitempty" yaml:"bodyMap,omitempty"`
}

// ArgumentBinding links one input-schema argument to its source field.
// Location is the parameter location, or "body" for request-body fields.
// An empty Source with location "body" binds the argument to the whole body.
type ArgumentBinding struct {
	Argument string `json:"argument" yaml:"argument"`
	Source   string `json:"source,omitempty" yaml:"source,omitempty"`
	Location string `json:"location" yaml:"location"`
}

// ValidationIssue represents a single structural problem found in a spec.
type ValidationIssue struct {
	Type       string `json:"type"`                // "error" or "warning"
	Message    string `json:"message"`             // The main error/warning message
	Suggestion string `json:"suggestion"`          // Actionable suggestion for fixing the issue
	Operation  string `json:"operation,omitempty"` // Operation ID where the issue was found
	Path       string `json:"path,omitempty"`      // API path where the issue was found
	Method     string `json:"method,omitempty"`    // HTTP method where the issue was found
	Parameter  string `json:"parameter,omitempty"` // Parameter name where the issue was found
}

// ValidationResult represents the aggregated outcome of validating a spec.
// All violations are collected in one pass, never first-fail.
type ValidationResult struct {
	Success      bool              `json:"success"`
	ErrorCount   int               `json:"error_count"`
	WarningCount int               `json:"warning_count"`
	Issues       []ValidationIssue `json:"issues"`
	Summary      string            `json:"summary,omitempty"`
}
