package binding

import (
	"fmt"
	"maps"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/benedoc-inc/graphbind/internal/envconfig"
)

// BackendConfig selects and parameterizes the execution backend. It is passed
// through to the engine at compile time; Params are opaque to this package.
//
// Example YAML:
//
//	backendName: mkldnn
//	backendParams:
//	  intra_op_num_threads: "4"
type BackendConfig struct {
	BackendName string            `yaml:"backendName" json:"backendName"`
	Params      map[string]string `yaml:"backendParams,omitempty" json:"backendParams,omitempty"`
}

// LoadBackendConfig reads a BackendConfig from a YAML file.
func LoadBackendConfig(path string) (BackendConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return BackendConfig{}, fmt.Errorf("failed to read backend config: %w", err)
	}
	return ParseBackendConfig(data)
}

// ParseBackendConfig decodes a YAML (or JSON) BackendConfig document.
func ParseBackendConfig(data []byte) (BackendConfig, error) {
	var cfg BackendConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return BackendConfig{}, fmt.Errorf("failed to parse backend config: %w", err)
	}
	return cfg, nil
}

// withDefaults fills an empty BackendName from GRAPHBIND_BACKEND and copies
// Params so the engine never aliases caller state.
func (c BackendConfig) withDefaults() BackendConfig {
	out := BackendConfig{BackendName: c.BackendName, Params: maps.Clone(c.Params)}
	if out.BackendName == "" {
		out.BackendName = envconfig.Backend()
	}
	return out
}

// Param returns the named parameter or fallback when unset.
func (c BackendConfig) Param(key, fallback string) string {
	if v, ok := c.Params[key]; ok {
		return v
	}
	return fallback
}
