// config.go
package openapi2tool

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ServiceConfig configures the conversion HTTP service. All values are
// explicit; nothing is read from process-wide state.
type ServiceConfig struct {
	Addr     string `yaml:"addr"`
	StoreDir string `yaml:"store_dir"`
}

// DefaultServiceConfig returns the service defaults.
func DefaultServiceConfig() *ServiceConfig {
	return &ServiceConfig{Addr: ":8080"}
}

// LoadServiceConfig reads a YAML service configuration file. Missing fields
// keep their defaults.
func LoadServiceConfig(path string) (*ServiceConfig, error) {
	cfg := DefaultServiceConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	return cfg, nil
}
