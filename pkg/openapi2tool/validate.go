// validate.go
package openapi2tool

import (
	"fmt"
	"regexp"
	"strings"
)

var pathPlaceholderRe = regexp.MustCompile(`\{([^{}]+)\}`)

// ValidateSpec runs structural checks against every operation of the spec
// and aggregates all violations in one pass, so callers can fix everything
// before resubmitting. Errors block conversion when validation is enabled;
// warnings never do.
// Example usage for ValidateSpec:
//
//	doc, _ := openapi2tool.LoadSpecFile("petstore.yaml")
//	result := openapi2tool.ValidateSpec(doc)
//	if !result.Success { log.Fatal(result.Summary) }
func ValidateSpec(doc *SpecDocument) *ValidationResult {
	var issues []ValidationIssue
	for _, ps := range doc.Paths {
		for _, op := range ps.Operations {
			issues = append(issues, validateOperation(ps.Path, op)...)
		}
	}
	result := &ValidationResult{Issues: issues}
	for _, issue := range issues {
		switch issue.Type {
		case "error":
			result.ErrorCount++
		default:
			result.WarningCount++
		}
	}
	result.Success = result.ErrorCount == 0
	if result.Success {
		result.Summary = "Spec validation passed."
	} else {
		result.Summary = fmt.Sprintf("Spec validation failed: %d errors, %d warnings.", result.ErrorCount, result.WarningCount)
	}
	return result
}

func validateOperation(path string, op Operation) []ValidationIssue {
	var issues []ValidationIssue
	opName := op.OperationID
	if opName == "" {
		opName = fmt.Sprintf("%s %s", strings.ToLower(op.Method), path)
	}

	if len(op.Responses) == 0 {
		issues = append(issues, ValidationIssue{
			Type:       "error",
			Message:    fmt.Sprintf("operation '%s' declares no responses", opName),
			Suggestion: "Declare at least one response so callers know what the operation returns.",
			Operation:  op.OperationID,
			Path:       path,
			Method:     op.Method,
		})
	}
	if op.OperationID == "" {
		issues = append(issues, ValidationIssue{
			Type:       "warning",
			Message:    fmt.Sprintf("operation '%s' has no operationId; a tool name will be synthesized from the method and path", opName),
			Suggestion: "Add an operationId for a stable, human-chosen tool name.",
			Path:       path,
			Method:     op.Method,
		})
	}
	for _, p := range op.Parameters {
		switch p.In {
		case "path", "query", "header", "cookie":
		default:
			issues = append(issues, ValidationIssue{
				Type:       "error",
				Message:    fmt.Sprintf("parameter '%s' of operation '%s' uses unsupported location '%s'", p.Name, opName, p.In),
				Suggestion: "Use one of: path, query, header, cookie.",
				Operation:  op.OperationID,
				Path:       path,
				Method:     op.Method,
				Parameter:  p.Name,
			})
		}
		if p.Schema == nil {
			issues = append(issues, ValidationIssue{
				Type:       "warning",
				Message:    fmt.Sprintf("parameter '%s' of operation '%s' has no schema", p.Name, opName),
				Suggestion: "Declare a schema so the tool argument carries a type.",
				Operation:  op.OperationID,
				Path:       path,
				Method:     op.Method,
				Parameter:  p.Name,
			})
		}
	}
	if op.RequestBody != nil && op.RequestBody.ContentType != "" && op.RequestBody.ContentType != "application/json" {
		issues = append(issues, ValidationIssue{
			Type:       "warning",
			Message:    fmt.Sprintf("operation '%s' request body uses media type '%s'; only application/json contributes tool arguments", opName, op.RequestBody.ContentType),
			Suggestion: "Provide an application/json body schema for full tool input mapping.",
			Operation:  op.OperationID,
			Path:       path,
			Method:     op.Method,
		})
	}
	for _, m := range pathPlaceholderRe.FindAllStringSubmatch(path, -1) {
		placeholder := m[1]
		declared := false
		for _, p := range op.Parameters {
			if p.In == "path" && p.Name == placeholder {
				declared = true
				break
			}
		}
		if !declared {
			issues = append(issues, ValidationIssue{
				Type:       "error",
				Message:    fmt.Sprintf("path placeholder '{%s}' of operation '%s' has no declared path parameter", placeholder, opName),
				Suggestion: fmt.Sprintf("Declare a required path parameter named '%s'.", placeholder),
				Operation:  op.OperationID,
				Path:       path,
				Method:     op.Method,
				Parameter:  placeholder,
			})
		}
	}
	return issues
}
