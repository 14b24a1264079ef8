package discovery

import "time"

// ProcessRecord is raw OS process metadata produced by one enumeration call.
type ProcessRecord struct {
	PID         int
	PPID        int
	CommandLine string
}

// ServerCandidate is a process whose command line matched the gateway
// signature. Port may be 0, meaning unknown and to be resolved by port
// enumeration. Token is always non-empty.
type ServerCandidate struct {
	PID         int
	PPID        int
	Port        int
	Token       string
	WorkspaceID string
}

// VerifiedEndpoint is the final discovery result, confirmed by at least one
// successful authenticated probe.
type VerifiedEndpoint struct {
	Host  string
	Port  int
	Token string
}

// Config is the retry and matching policy for one discovery call.
type Config struct {
	// ProcessName is the executable name the strict path filters on,
	// e.g. "language_server_linux_x64".
	ProcessName string `yaml:"process_name"`

	// ProductName must appear (case-insensitive) in the --app_data_dir value
	// for strict-mode matching. Defaults to "antigravity".
	ProductName string `yaml:"product_name,omitempty"`

	// Attempts is the number of full enumerate-verify cycles, minimum 1.
	Attempts int `yaml:"attempts"`

	// BaseDelay seeds the exponential backoff between attempts.
	BaseDelay time.Duration `yaml:"base_delay"`

	// CommandTimeout bounds each external command execution.
	CommandTimeout time.Duration `yaml:"command_timeout,omitempty"`

	// ProbeTimeout bounds each HTTP verification probe.
	ProbeTimeout time.Duration `yaml:"probe_timeout,omitempty"`
}

const (
	defaultProductName    = "antigravity"
	defaultCommandTimeout = 10 * time.Second
	defaultProbeTimeout   = 3 * time.Second
	maxBackoffDelay       = 10 * time.Second
)

// DefaultConfig returns a config suitable for interactive use.
func DefaultConfig(processName string) Config {
	return Config{
		ProcessName:    processName,
		ProductName:    defaultProductName,
		Attempts:       3,
		BaseDelay:      500 * time.Millisecond,
		CommandTimeout: defaultCommandTimeout,
		ProbeTimeout:   defaultProbeTimeout,
	}
}

func (c Config) withDefaults() Config {
	if c.ProductName == "" {
		c.ProductName = defaultProductName
	}
	if c.Attempts < 1 {
		c.Attempts = 1
	}
	if c.CommandTimeout <= 0 {
		c.CommandTimeout = defaultCommandTimeout
	}
	if c.ProbeTimeout <= 0 {
		c.ProbeTimeout = defaultProbeTimeout
	}
	return c
}
