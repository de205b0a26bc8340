// errors.go
package openapi2tool

import (
	"errors"
	"fmt"
)

// Sentinel errors for the conversion pipeline. Stage errors wrap these so
// callers can classify failures with errors.Is.
var (
	// ErrMalformedSpec indicates the input could not be parsed as JSON or
	// YAML, or its structure did not match the declared spec dialect.
	ErrMalformedSpec = errors.New("malformed spec")

	// ErrUnsupportedVersion indicates the document carries no openapi/swagger
	// version key, or a major version this converter does not handle.
	ErrUnsupportedVersion = errors.New("unsupported spec version")

	// ErrInternal indicates a converter bug rather than bad input.
	ErrInternal = errors.New("internal conversion error")
)

// ValidationError aborts a conversion when validation is requested and the
// spec has structural errors. It carries the complete violation set so
// callers can fix everything before resubmitting.
type ValidationError struct {
	Issues []ValidationIssue
}

func (e *ValidationError) Error() string {
	n := 0
	var first string
	for _, issue := range e.Issues {
		if issue.Type != "error" {
			continue
		}
		if n == 0 {
			first = issue.Message
		}
		n++
	}
	if n == 1 {
		return fmt.Sprintf("spec validation failed: %s", first)
	}
	return fmt.Sprintf("spec validation failed: %d errors (first: %s)", n, first)
}

// Errors returns only the error-level issues, omitting warnings.
func (e *ValidationError) Errors() []ValidationIssue {
	var out []ValidationIssue
	for _, issue := range e.Issues {
		if issue.Type == "error" {
			out = append(out, issue)
		}
	}
	return out
}

// UnknownToolOverrideError is returned when an overlay references a tool
// name that does not exist in the generated manifest. No partial merge is
// applied.
type UnknownToolOverrideError struct {
	Name string
}

func (e *UnknownToolOverrideError) Error() string {
	return fmt.Sprintf("overlay references unknown tool %q", e.Name)
}

// ErrorKind returns a stable machine-readable classification for err, used
// by the HTTP service and CLI when reporting failures.
func ErrorKind(err error) string {
	var vErr *ValidationError
	var oErr *UnknownToolOverrideError
	switch {
	case errors.As(err, &vErr):
		return "validation_failed"
	case errors.As(err, &oErr):
		return "unknown_tool_override"
	case errors.Is(err, ErrMalformedSpec):
		return "malformed_spec"
	case errors.Is(err, ErrUnsupportedVersion):
		return "unsupported_version"
	default:
		return "internal_error"
	}
}
