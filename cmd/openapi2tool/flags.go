// flags.go
package main

import (
	"flag"
	"fmt"
)

// cliFlags holds all parsed CLI flags and arguments.
type cliFlags struct {
	showHelp   bool
	extended   bool
	format     string
	serverName string
	toolPrefix string
	validate   bool
	overlay    string
	outFile    string
	storeDir   string
	storePath  string
	summary    bool
	docFile    string
	docFormat  string
	httpAddr   string
	configFile string
	args       []string
}

// parseFlags parses all CLI flags and returns a cliFlags struct.
func parseFlags() *cliFlags {
	var flags cliFlags
	flag.BoolVar(&flags.showHelp, "h", false, "Show help")
	flag.BoolVar(&flags.showHelp, "help", false, "Show help")
	flag.BoolVar(&flags.extended, "extended", false, "Enable extended (human-friendly) output")
	flag.StringVar(&flags.format, "format", "yaml", "Manifest output format: json or yaml")
	flag.StringVar(&flags.serverName, "server-name", "", "Logical server name for the manifest (defaults to the spec title)")
	flag.StringVar(&flags.toolPrefix, "tool-prefix", "", "Prefix prepended to every tool name")
	flag.BoolVar(&flags.validate, "validate", false, "Validate the spec before mapping and abort on structural errors")
	flag.StringVar(&flags.overlay, "overlay", "", "Overlay file (JSON or YAML) applied after automatic mapping")
	flag.StringVar(&flags.outFile, "out", "", "Write the manifest to this file instead of stdout")
	flag.StringVar(&flags.storeDir, "store-dir", "", "Also store the manifest under this directory and print its durable URL")
	flag.StringVar(&flags.storePath, "store-path", "manifests/manifest.yaml", "Storage path used with --store-dir")
	flag.BoolVar(&flags.summary, "summary", false, "Print a summary of the generated tools (count, methods)")
	flag.StringVar(&flags.docFile, "doc", "", "Write Markdown documentation for all tools to this file")
	flag.StringVar(&flags.docFormat, "doc-format", "markdown", "Documentation format: markdown")
	flag.StringVar(&flags.httpAddr, "http", "", "If set, serve the conversion HTTP API on this address (e.g., :8080)")
	flag.StringVar(&flags.configFile, "config", "", "YAML config file for the HTTP service (used with --http)")
	flag.Parse()
	flags.args = flag.Args()
	return &flags
}

// printHelp prints the CLI help message.
func printHelp() {
	fmt.Print(`openapi2tool: Convert OpenAPI/Swagger specs into agent-tool manifests

Usage:
  openapi2tool [flags] <spec-path>
  openapi2tool validate <spec-path>
  openapi2tool --http :8080 [--config service.yaml]

Commands:
  validate <spec-path>  Validate the spec and report every structural issue (does not convert)

Flags:
  --format       Manifest output format: json or yaml (default yaml)
  --server-name  Logical server name for the manifest
  --tool-prefix  Prefix prepended to every tool name
  --validate     Abort conversion on structural spec errors
  --overlay      Overlay file applied after automatic mapping
  --out          Write the manifest to this file instead of stdout
  --store-dir    Also store the manifest under this directory
  --store-path   Storage path used with --store-dir
  --summary      Print a summary of the generated tools
  --doc          Write Markdown documentation for all tools to this file
  --http         Serve the conversion HTTP API on this address
  --config       YAML config file for the HTTP service
  --extended     Enable extended (human-friendly) output
  --help, -h     Show help

By default, output is minimal and agent-friendly. Use --extended for human-readable reports.
`)
}
