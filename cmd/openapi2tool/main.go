package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/Nishagh/openapi2tool/pkg/openapi2tool"
	"go.uber.org/zap"
)

// main is the entrypoint for the openapi2tool CLI.
// It parses flags and dispatches to the appropriate mode (convert, validate,
// doc, HTTP service).
func main() {
	flags := parseFlags()

	if flags.showHelp {
		printHelp()
		os.Exit(0)
	}

	if flags.httpAddr != "" || flags.configFile != "" {
		runHTTPService(flags)
		return
	}

	args := flags.args
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Error: missing required <spec-path> argument.")
		printHelp()
		os.Exit(1)
	}

	// --- Validate subcommand ---
	if args[0] == "validate" {
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "Error: missing required <spec-path> argument for validate.")
			os.Exit(1)
		}
		runValidate(args[1], flags.extended)
		return
	}
	// --- End validate subcommand ---

	runConvert(flags, args[len(args)-1])
}

// runValidate loads the spec and reports the aggregated validation result.
func runValidate(specPath string, extended bool) {
	doc, err := openapi2tool.LoadSpecFile(specPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}
	result := openapi2tool.ValidateSpec(doc)
	if extended {
		for _, issue := range result.Issues {
			fmt.Fprintf(os.Stderr, "[%s] %s\n", issue.Type, issue.Message)
			if issue.Suggestion != "" {
				fmt.Fprintf(os.Stderr, "        %s\n", issue.Suggestion)
			}
		}
		fmt.Fprintln(os.Stderr, result.Summary)
	} else {
		json.NewEncoder(os.Stdout).Encode(result)
	}
	if !result.Success {
		os.Exit(1)
	}
	os.Exit(0)
}

// runConvert performs a conversion and writes the manifest to the requested
// destination.
func runConvert(flags *cliFlags, specPath string) {
	specBytes, err := os.ReadFile(specPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not read spec: %v\n", err)
		os.Exit(1)
	}
	var overlayBytes []byte
	if flags.overlay != "" {
		overlayBytes, err = os.ReadFile(flags.overlay)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: could not read overlay: %v\n", err)
			os.Exit(1)
		}
	}

	req := openapi2tool.ConvertRequest{
		SpecBytes:      specBytes,
		ServerName:     flags.serverName,
		ToolNamePrefix: flags.toolPrefix,
		OutputFormat:   openapi2tool.Format(flags.format),
		Validate:       flags.validate,
		OverlayBytes:   overlayBytes,
	}

	var res *openapi2tool.ConvertResult
	if flags.storeDir != "" {
		store := openapi2tool.NewFileStore(flags.storeDir)
		var url string
		res, url, err = openapi2tool.ConvertAndStore(context.Background(), req, store, flags.storePath)
		if err == nil {
			fmt.Fprintf(os.Stderr, "Stored manifest at %s\n", url)
		}
	} else {
		res, err = openapi2tool.Convert(req)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Conversion failed (%s): %v\n", openapi2tool.ErrorKind(err), err)
		os.Exit(1)
	}

	if flags.outFile != "" {
		if err := os.WriteFile(flags.outFile, res.ManifestBytes, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error: could not write manifest: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Wrote manifest to %s\n", flags.outFile)
	} else {
		os.Stdout.Write(res.ManifestBytes)
	}

	if flags.docFile != "" {
		if err := writeMarkdownDoc(flags.docFile, res.Manifest, flags.docFormat); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing documentation: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Wrote documentation to %s\n", flags.docFile)
	}
	if flags.summary {
		openapi2tool.PrintManifestSummary(res.Manifest)
	}
}

// runHTTPService starts the conversion HTTP API.
func runHTTPService(flags *cliFlags) {
	cfg := openapi2tool.DefaultServiceConfig()
	if flags.configFile != "" {
		loaded, err := openapi2tool.LoadServiceConfig(flags.configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if flags.httpAddr != "" {
		cfg.Addr = flags.httpAddr
	}
	if flags.storeDir != "" {
		cfg.StoreDir = flags.storeDir
	}

	var logger *zap.Logger
	var err error
	if flags.extended {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := openapi2tool.ServeConvertHTTP(cfg, logger); err != nil {
		fmt.Fprintf(os.Stderr, "HTTP service failed: %v\n", err)
		os.Exit(1)
	}
}
