// main.go
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/Nishagh/openapi2tool/pkg/openapi2tool"
	"github.com/chzyer/readline"
)

// main loads a generated manifest and provides an interactive prompt for
// browsing its tools.
func main() {
	if len(os.Args) < 2 || os.Args[1] == "-h" || os.Args[1] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage: manifest-explorer <manifest-path>")
		fmt.Fprintln(os.Stderr, "Commands: list, show <tool>, schema <tool>, template <tool>, help, exit")
		if len(os.Args) < 2 {
			os.Exit(1)
		}
		os.Exit(0)
	}

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to read manifest:", err)
		os.Exit(1)
	}
	manifest, err := openapi2tool.DecodeManifest(data, openapi2tool.DetectManifestFormat(data))
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to parse manifest:", err)
		os.Exit(1)
	}

	tools := make(map[string]*openapi2tool.ToolDefinition, len(manifest.Tools))
	var toolNames []string
	for _, tool := range manifest.Tools {
		tools[tool.Name] = tool
		toolNames = append(toolNames, tool.Name)
	}

	// Set up readline for prompt/history and autocompletion
	makeCompleter := func() *readline.PrefixCompleter {
		toolItems := []readline.PrefixCompleterInterface{}
		for _, name := range toolNames {
			toolItems = append(toolItems, readline.PcItem(name))
		}
		return readline.NewPrefixCompleter(
			readline.PcItem("list"),
			readline.PcItem("help"),
			readline.PcItem("exit"),
			readline.PcItem("quit"),
			readline.PcItem("show", toolItems...),
			readline.PcItem("schema", toolItems...),
			readline.PcItem("template", toolItems...),
		)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "manifest> ",
		HistoryFile:     os.ExpandEnv("$HOME/.manifest_explorer_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    makeCompleter(),
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to initialize readline:", err)
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Printf("Loaded manifest for server %q with %d tools. Type 'help' for commands.\n", manifest.Server.Name, len(manifest.Tools))

	for {
		line, err := rl.Readline()
		if err != nil {
			break
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "exit", "quit":
			return
		case "help":
			fmt.Println("Commands: list, show <tool>, schema <tool>, template <tool>, help, exit")
		case "list":
			for _, name := range toolNames {
				fmt.Println(name)
			}
		case "show", "schema", "template":
			if len(fields) < 2 {
				fmt.Printf("Usage: %s <tool>\n", fields[0])
				continue
			}
			tool, ok := tools[fields[1]]
			if !ok {
				fmt.Printf("Unknown tool: %s\n", fields[1])
				continue
			}
			printToolCommand(fields[0], tool)
		default:
			fmt.Printf("Unknown command: %s (type 'help')\n", fields[0])
		}
	}
}

// printToolCommand renders one tool for the show/schema/template commands.
func printToolCommand(cmd string, tool *openapi2tool.ToolDefinition) {
	switch cmd {
	case "show":
		fmt.Printf("Name: %s\n", tool.Name)
		if tool.Description != "" {
			fmt.Printf("Description: %s\n", tool.Description)
		}
		if tmpl := tool.InvocationTemplate; tmpl != nil {
			fmt.Printf("Invocation: %s %s\n", tmpl.Method, tmpl.URLTemplate)
		}
		if tool.InputSchema != nil {
			fmt.Printf("Arguments: %s\n", strings.Join(tool.InputSchema.Properties.Keys(), ", "))
			if len(tool.InputSchema.Required) > 0 {
				fmt.Printf("Required: %s\n", strings.Join(tool.InputSchema.Required, ", "))
			}
		}
	case "schema":
		printJSON(tool.InputSchema)
	case "template":
		printJSON(tool.InvocationTemplate)
	}
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println(string(data))
}
