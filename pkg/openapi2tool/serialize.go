// serialize.go
package openapi2tool

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// EncodeManifest renders the manifest deterministically: canonical JSON with
// 2-space indent, or canonical block-style YAML with 2-space indent. Field
// order follows struct declaration order and inputSchema properties keep
// their insertion order, so identical input produces byte-identical output
// apart from the trailing generatedAt timestamp.
func EncodeManifest(m *Manifest, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("%w: encoding manifest as JSON: %v", ErrInternal, err)
		}
		return append(data, '\n'), nil
	case FormatYAML, FormatUnknown:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(m); err != nil {
			return nil, fmt.Errorf("%w: encoding manifest as YAML: %v", ErrInternal, err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("%w: encoding manifest as YAML: %v", ErrInternal, err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: unknown output format %q", ErrInternal, format)
	}
}

// DecodeManifest parses a serialized manifest back into its typed form,
// preserving inputSchema property order.
func DecodeManifest(data []byte, format Format) (*Manifest, error) {
	var m Manifest
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("decoding JSON manifest: %w", err)
		}
	case FormatYAML, FormatUnknown:
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("decoding YAML manifest: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown manifest format %q", format)
	}
	return &m, nil
}

// DetectManifestFormat guesses the encoding of serialized manifest bytes.
func DetectManifestFormat(data []byte) Format {
	if json.Valid(data) {
		return FormatJSON
	}
	return FormatYAML
}
