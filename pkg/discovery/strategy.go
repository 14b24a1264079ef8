package discovery

import (
	"runtime"
	"sort"
	"strconv"
	"strings"

	"github.com/antigravity-tools/gateway-discovery/pkg/logging"
	"github.com/antigravity-tools/gateway-discovery/pkg/shell"
)

// strategyDeps carries what a strategy needs for tool availability probing.
type strategyDeps struct {
	executor shell.Executor
	logger   logging.Logger
}

// PlatformStrategy builds the OS-native commands for process and port
// enumeration and parses their output. Command construction and parsing are
// pure text functions so every variant is unit-testable on any OS; only the
// shell executor actually touches the platform.
type PlatformStrategy interface {
	// ListCandidatesCommand returns the command listing processes whose
	// executable name matches processName, with pid, ppid and command line.
	ListCandidatesCommand(processName string) string

	// ListAllCommand returns the command listing every process that
	// textually carries the given marker, with no name filter.
	ListAllCommand(marker string) string

	// ParseCandidates parses candidate-listing output into process records.
	// Unparseable output yields nil, never an error.
	ParseCandidates(raw string) []ProcessRecord

	// ListPortsCommand returns the command listing TCP ports the process
	// with the given pid is listening on, one numeric token per line.
	ListPortsCommand(pid int) string

	// ParsePorts parses port-listing output into a deduplicated, ascending
	// port set.
	ParsePorts(raw string, pid int) []int
}

// NewPlatformStrategy selects the strategy for the current OS. The choice is
// made once per discovery session; each session owns its own instance so the
// memoized port-tool probe is never shared.
func NewPlatformStrategy(deps strategyDeps) PlatformStrategy {
	return newPlatformStrategyFor(runtime.GOOS, deps)
}

func newPlatformStrategyFor(goos string, deps strategyDeps) PlatformStrategy {
	if goos == "windows" {
		return &windowsStrategy{deps: deps}
	}
	return &unixStrategy{deps: deps, goos: goos}
}

// parsePortLines accepts only all-digit lines in (0, 65535], deduplicates
// and sorts ascending. Idempotent and order-independent.
func parsePortLines(raw string) []int {
	seen := make(map[int]bool)
	var ports []int
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		port, err := strconv.Atoi(line)
		if err != nil || port <= 0 || port > 65535 {
			continue
		}
		if !seen[port] {
			seen[port] = true
			ports = append(ports, port)
		}
	}
	sort.Ints(ports)
	return ports
}
