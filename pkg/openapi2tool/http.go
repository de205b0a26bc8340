// http.go
package openapi2tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HTTPConvertRequest is the request body for the /convert endpoint.
type HTTPConvertRequest struct {
	OpenAPISpec string             `json:"openapi_spec"`           // spec as YAML or JSON string
	Overlay     string             `json:"overlay,omitempty"`      // optional overlay document
	Options     HTTPConvertOptions `json:"options"`                // conversion options
}

// HTTPConvertOptions mirrors ConvertRequest for the HTTP surface.
type HTTPConvertOptions struct {
	ServerName     string `json:"server_name,omitempty"`
	ToolNamePrefix string `json:"tool_name_prefix,omitempty"`
	OutputFormat   string `json:"output_format,omitempty"` // "json" or "yaml", default yaml
	Validate       bool   `json:"validate,omitempty"`
	Store          bool   `json:"store,omitempty"` // persist through the upload gateway
}

// HTTPConvertResponse is the success body for the /convert endpoint.
type HTTPConvertResponse struct {
	Manifest string `json:"manifest"`
	Format   string `json:"format"`
	URL      string `json:"url,omitempty"` // durable URL when stored
}

// HTTPErrorResponse is the error body for all endpoints.
type HTTPErrorResponse struct {
	Error  string            `json:"error"`
	Kind   string            `json:"kind"`
	Issues []ValidationIssue `json:"issues,omitempty"`
}

// HTTPValidateRequest is the request body for the /validate endpoint.
type HTTPValidateRequest struct {
	OpenAPISpec string `json:"openapi_spec"`
}

// HTTPServer exposes conversion and validation over HTTP.
type HTTPServer struct {
	logger  *zap.Logger
	gateway UploadGateway
}

// NewHTTPServer returns an HTTP server that converts through the given
// gateway. A nil gateway disables the store option; a nil logger falls back
// to a no-op logger.
func NewHTTPServer(logger *zap.Logger, gateway UploadGateway) *HTTPServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPServer{logger: logger, gateway: gateway}
}

// setCORSAndCacheHeaders sets CORS and caching headers for API responses.
func setCORSAndCacheHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization")
	w.Header().Set("Access-Control-Expose-Headers", "Content-Type")
	w.Header().Set("Access-Control-Max-Age", "86400")

	// Responses depend on the request body, never cache them.
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
}

// HandleConvert handles POST requests that convert a spec to a manifest.
func (s *HTTPServer) HandleConvert(w http.ResponseWriter, r *http.Request) {
	setCORSAndCacheHeaders(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Content-Type", "application/json")
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")

	var req HTTPConvertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeHTTPError(w, http.StatusBadRequest, &HTTPErrorResponse{
			Error: fmt.Sprintf("invalid JSON: %v", err),
			Kind:  "malformed_spec",
		})
		return
	}
	if req.OpenAPISpec == "" {
		writeHTTPError(w, http.StatusBadRequest, &HTTPErrorResponse{
			Error: "missing openapi_spec field",
			Kind:  "malformed_spec",
		})
		return
	}

	convReq := ConvertRequest{
		SpecBytes:      []byte(req.OpenAPISpec),
		ServerName:     req.Options.ServerName,
		ToolNamePrefix: req.Options.ToolNamePrefix,
		OutputFormat:   Format(req.Options.OutputFormat),
		Validate:       req.Options.Validate,
	}
	if req.Overlay != "" {
		convReq.OverlayBytes = []byte(req.Overlay)
	}

	var (
		res *ConvertResult
		url string
		err error
	)
	if req.Options.Store && s.gateway != nil {
		dest := fmt.Sprintf("manifests/%s.%s", uuid.NewString(), convReq.OutputFormat.orYAML())
		res, url, err = ConvertAndStore(r.Context(), convReq, s.gateway, dest)
	} else {
		res, err = Convert(convReq)
	}
	if err != nil {
		writeConversionError(w, err)
		return
	}

	json.NewEncoder(w).Encode(&HTTPConvertResponse{
		Manifest: string(res.ManifestBytes),
		Format:   string(res.Format),
		URL:      url,
	})
}

// HandleValidate handles POST requests that validate a spec without
// converting it, reporting the complete violation set.
func (s *HTTPServer) HandleValidate(w http.ResponseWriter, r *http.Request) {
	setCORSAndCacheHeaders(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Content-Type", "application/json")
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")

	var req HTTPValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeHTTPError(w, http.StatusBadRequest, &HTTPErrorResponse{
			Error: fmt.Sprintf("invalid JSON: %v", err),
			Kind:  "malformed_spec",
		})
		return
	}
	if req.OpenAPISpec == "" {
		writeHTTPError(w, http.StatusBadRequest, &HTTPErrorResponse{
			Error: "missing openapi_spec field",
			Kind:  "malformed_spec",
		})
		return
	}

	doc, err := LoadSpecFromString(req.OpenAPISpec)
	if err != nil {
		result := &ValidationResult{
			Success:    false,
			ErrorCount: 1,
			Issues: []ValidationIssue{{
				Type:       "error",
				Message:    fmt.Sprintf("failed to parse spec: %v", err),
				Suggestion: "Ensure the spec is valid YAML or JSON and declares an openapi or swagger version.",
			}},
			Summary: "Spec parsing failed.",
		}
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(result)
		return
	}

	result := ValidateSpec(doc)
	if result.Success {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}
	json.NewEncoder(w).Encode(result)
}

// HandleHealth handles GET requests for health checks.
func (s *HTTPServer) HandleHealth(w http.ResponseWriter, r *http.Request) {
	setCORSAndCacheHeaders(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodGet {
		w.Header().Set("Content-Type", "application/json")
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "openapi2tool",
	})
}

// Routes returns the service mux with request logging attached.
func (s *HTTPServer) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/convert", s.HandleConvert)
	mux.HandleFunc("/validate", s.HandleValidate)
	mux.HandleFunc("/health", s.HandleHealth)
	return s.withRequestLogging(mux)
}

// withRequestLogging tags every request with a generated ID and logs it on
// completion with its status and duration.
func (s *HTTPServer) withRequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(withRequestID(r.Context(), requestID)))
		s.logger.Info("request",
			zap.String("request_id", requestID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

type requestIDKey struct{}

func withRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the request ID attached by the logging
// middleware, if any.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func (f Format) orYAML() Format {
	if f == FormatUnknown {
		return FormatYAML
	}
	return f
}

func writeHTTPError(w http.ResponseWriter, status int, body *HTTPErrorResponse) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeConversionError maps typed conversion errors onto HTTP statuses and
// structured error bodies.
func writeConversionError(w http.ResponseWriter, err error) {
	body := &HTTPErrorResponse{Error: err.Error(), Kind: ErrorKind(err)}
	status := http.StatusInternalServerError
	switch body.Kind {
	case "malformed_spec", "unsupported_version":
		status = http.StatusBadRequest
	case "validation_failed":
		status = http.StatusUnprocessableEntity
		var vErr *ValidationError
		if errors.As(err, &vErr) {
			body.Issues = vErr.Issues
		}
	case "unknown_tool_override":
		status = http.StatusUnprocessableEntity
	}
	writeHTTPError(w, status, body)
}

// ServeConvertHTTP starts the conversion HTTP service with the given
// configuration. When cfg.StoreDir is set, stored manifests land there and
// get file:// URLs; otherwise storage is in-memory.
func ServeConvertHTTP(cfg *ServiceConfig, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	var gateway UploadGateway
	if cfg.StoreDir != "" {
		gateway = NewFileStore(cfg.StoreDir)
	} else {
		gateway = NewMemoryStore()
	}
	server := NewHTTPServer(logger, gateway)
	logger.Info("starting conversion HTTP service",
		zap.String("addr", cfg.Addr),
		zap.String("store_dir", cfg.StoreDir),
	)
	return http.ListenAndServe(cfg.Addr, server.Routes())
}
