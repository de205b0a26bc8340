// summary.go
package openapi2tool

import (
	"fmt"
	"sort"
)

// PrintManifestSummary prints a summary of the generated manifest (tool
// count, per-method counts) for CI use.
func PrintManifestSummary(m *Manifest) {
	methodCount := map[string]int{}
	for _, tool := range m.Tools {
		if tool.InvocationTemplate != nil {
			methodCount[tool.InvocationTemplate.Method]++
		}
	}
	fmt.Printf("Server: %s\n", m.Server.Name)
	fmt.Printf("Total tools: %d\n", len(m.Tools))
	if len(methodCount) > 0 {
		fmt.Println("Methods:")
		methods := make([]string, 0, len(methodCount))
		for method := range methodCount {
			methods = append(methods, method)
		}
		sort.Strings(methods)
		for _, method := range methods {
			fmt.Printf("  %s: %d\n", method, methodCount[method])
		}
	}
}

// Example usage for PrintManifestSummary:
//
//   doc, _ := openapi2tool.LoadSpecFile("petstore.yaml")
//   manifest := openapi2tool.MapOperations(doc, openapi2tool.MapperOptions{})
//   openapi2tool.PrintManifestSummary(manifest)
