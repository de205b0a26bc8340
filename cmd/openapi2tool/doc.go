// doc.go
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/Nishagh/openapi2tool/pkg/openapi2tool"
)

// writeMarkdownDoc writes Markdown documentation for every tool in the
// manifest.
func writeMarkdownDoc(path string, m *openapi2tool.Manifest, format string) error {
	if format != "markdown" {
		return fmt.Errorf("unknown doc format: %s", format)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	f.WriteString("# Tool Manifest Documentation\n\n")
	f.WriteString(fmt.Sprintf("**Server:** %s\n\n", m.Server.Name))
	if m.Server.BaseURL != "" {
		f.WriteString(fmt.Sprintf("**Base URL:** %s\n\n", m.Server.BaseURL))
	}
	for _, tool := range m.Tools {
		f.WriteString(fmt.Sprintf("## %s\n\n", tool.Name))
		if tool.Description != "" {
			f.WriteString(tool.Description + "\n\n")
		}
		if tmpl := tool.InvocationTemplate; tmpl != nil {
			f.WriteString(fmt.Sprintf("`%s %s`\n\n", tmpl.Method, tmpl.URLTemplate))
		}
		if schema := tool.InputSchema; schema != nil && schema.Properties.Len() > 0 {
			required := map[string]bool{}
			for _, r := range schema.Required {
				required[r] = true
			}
			f.WriteString("**Arguments:**\n\n")
			f.WriteString("| Name | Type | Required | Description |\n|------|------|----------|-------------|\n")
			for _, name := range schema.Properties.Keys() {
				prop, _ := schema.Properties.Get(name)
				propMap, _ := prop.(map[string]any)
				typeStr, _ := propMap["type"].(string)
				desc, _ := propMap["description"].(string)
				req := ""
				if required[name] {
					req = "yes"
				}
				f.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n", name, typeStr, req, strings.ReplaceAll(desc, "\n", " ")))
			}
			f.WriteString("\n")
		}
	}
	return nil
}
