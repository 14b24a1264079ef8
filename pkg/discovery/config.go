package discovery

import (
	"os"

	"github.com/antigravity-tools/gateway-discovery/pkg/errors"

	"gopkg.in/yaml.v3"
)

// ConfigFile is the top-level YAML configuration file structure.
type ConfigFile struct {
	Discovery Config `yaml:"discovery"`
	LogLevel  string `yaml:"log_level,omitempty"`
}

// LoadConfigFromFile loads discovery configuration from a YAML file.
func LoadConfigFromFile(filename string) (*ConfigFile, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.NewIOError("failed to read configuration file", err).WithContext("filename", filename)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.NewValidationError("failed to parse YAML configuration", err).WithContext("filename", filename)
	}

	if err := ValidateConfig(config.Discovery); err != nil {
		return nil, err
	}

	return &config, nil
}
