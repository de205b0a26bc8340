// convert.go
package openapi2tool

import (
	"context"
	"fmt"
	"time"
)

// ConvertRequest carries everything one conversion needs. Conversions are
// pure and synchronous; independent conversions share no mutable state.
type ConvertRequest struct {
	SpecBytes      []byte
	SpecFormatHint Format // optional; JSON is tried first when unset
	ServerName     string
	ToolNamePrefix string
	OutputFormat   Format // default FormatYAML
	Validate       bool
	OverlayBytes   []byte // optional
}

// ConvertResult is the successful output of a conversion.
type ConvertResult struct {
	ManifestBytes []byte
	Format        Format
	Manifest      *Manifest
}

// Convert runs the full pipeline: load, optionally validate, map, optionally
// overlay, then serialize. A failure at any stage aborts the whole conversion
// with a typed error; a partial manifest is never returned.
// Example usage for Convert:
//
//	res, err := openapi2tool.Convert(openapi2tool.ConvertRequest{
//		SpecBytes:    specBytes,
//		OutputFormat: openapi2tool.FormatJSON,
//	})
//	if err != nil { log.Fatal(err) }
//	os.Stdout.Write(res.ManifestBytes)
func Convert(req ConvertRequest) (*ConvertResult, error) {
	doc, err := LoadSpec(req.SpecBytes, req.SpecFormatHint)
	if err != nil {
		return nil, err
	}

	if req.Validate {
		result := ValidateSpec(doc)
		if result.ErrorCount > 0 {
			return nil, &ValidationError{Issues: result.Issues}
		}
	}

	manifest := MapOperations(doc, MapperOptions{
		ServerName:     req.ServerName,
		ToolNamePrefix: req.ToolNamePrefix,
	})

	if len(req.OverlayBytes) > 0 {
		overlay, err := ParseOverlay(req.OverlayBytes)
		if err != nil {
			return nil, err
		}
		if err := ApplyOverlay(manifest, overlay); err != nil {
			return nil, err
		}
	}

	// The manifest is frozen here; only the timestamp is stamped before
	// serialization.
	manifest.Metadata.GeneratedAt = time.Now().UTC().Format(time.RFC3339)

	format := req.OutputFormat
	if format == FormatUnknown {
		format = FormatYAML
	}
	data, err := EncodeManifest(manifest, format)
	if err != nil {
		return nil, err
	}
	return &ConvertResult{ManifestBytes: data, Format: format, Manifest: manifest}, nil
}

// ConvertAndStore runs Convert and then persists the manifest bytes through
// the gateway. The store call happens strictly after serialization completes
// and is never interleaved with parsing or mapping. The durable URL is
// returned alongside the result.
func ConvertAndStore(ctx context.Context, req ConvertRequest, gateway UploadGateway, destPath string) (*ConvertResult, string, error) {
	res, err := Convert(req)
	if err != nil {
		return nil, "", err
	}
	url, err := gateway.Store(ctx, destPath, res.ManifestBytes, contentTypeFor(res.Format))
	if err != nil {
		return nil, "", fmt.Errorf("storing manifest: %w", err)
	}
	return res, url, nil
}

func contentTypeFor(format Format) string {
	if format == FormatJSON {
		return "application/json"
	}
	return "application/yaml"
}
