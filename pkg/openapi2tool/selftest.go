// selftest.go
package openapi2tool

import (
	"fmt"
	"strings"
)

// SelfTestManifest checks that a generated manifest matches the spec it was
// mapped from: one tool per operation, and every required argument present
// among that tool's properties. Returns an aggregated error listing every
// mismatch found.
// Example usage for SelfTestManifest:
//
//	doc, _ := openapi2tool.LoadSpecFile("petstore.yaml")
//	manifest := openapi2tool.MapOperations(doc, openapi2tool.MapperOptions{})
//	if err := openapi2tool.SelfTestManifest(doc, manifest); err != nil {
//	    log.Fatal(err)
//	}
func SelfTestManifest(doc *SpecDocument, m *Manifest) error {
	var problems []string

	opCount := 0
	for _, ps := range doc.Paths {
		opCount += len(ps.Operations)
	}
	if opCount != len(m.Tools) {
		problems = append(problems, fmt.Sprintf("spec has %d operations but manifest has %d tools", opCount, len(m.Tools)))
	}

	seen := map[string]bool{}
	for _, tool := range m.Tools {
		if seen[tool.Name] {
			problems = append(problems, fmt.Sprintf("tool name %q appears more than once", tool.Name))
		}
		seen[tool.Name] = true
		if tool.InputSchema == nil {
			problems = append(problems, fmt.Sprintf("tool %q has no input schema", tool.Name))
			continue
		}
		for _, req := range tool.InputSchema.Required {
			if !tool.InputSchema.Properties.Has(req) {
				problems = append(problems, fmt.Sprintf("tool %q requires argument %q that is not among its properties", tool.Name, req))
			}
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("manifest self-test failed: %d issues:\n%s", len(problems), strings.Join(problems, "\n"))
	}
	return nil
}
