package discovery

import (
	"github.com/antigravity-tools/gateway-discovery/pkg/errors"
)

// ValidateConfig validates discovery configuration
func ValidateConfig(config Config) error {
	if config.ProcessName == "" {
		return errors.NewValidationError("process name is required for discovery", nil)
	}

	if config.Attempts < 1 {
		return errors.NewValidationError("attempts must be at least 1", nil)
	}

	if config.BaseDelay < 0 {
		return errors.NewValidationError("base delay cannot be negative", nil)
	}

	if config.CommandTimeout < 0 {
		return errors.NewValidationError("command timeout cannot be negative", nil)
	}

	if config.ProbeTimeout < 0 {
		return errors.NewValidationError("probe timeout cannot be negative", nil)
	}

	return nil
}
