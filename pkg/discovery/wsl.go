package discovery

import (
	"os"
	"regexp"
	"runtime"
	"strings"

	"github.com/antigravity-tools/gateway-discovery/pkg/logging"
)

// WSLResolver detects Linux-under-Windows and supplies the Windows host's
// address as seen from the Linux guest. Under WSL's default NAT networking
// the guest's configured nameserver is the host's bridge IP, so a gateway
// bound on the Windows side is reachable there when loopback is not.
type WSLResolver struct {
	versionPath string
	resolvPath  string
	goos        string
	logger      logging.Logger

	detected *bool
}

func NewWSLResolver(logger logging.Logger) *WSLResolver {
	return &WSLResolver{
		versionPath: "/proc/version",
		resolvPath:  "/etc/resolv.conf",
		goos:        runtime.GOOS,
		logger:      logger,
	}
}

var nameserverPattern = regexp.MustCompile(`(?m)^\s*nameserver\s+(\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3})\b`)

// IsWSL is true only on Linux with a Microsoft/WSL kernel signature in the
// version file. The result is memoized for the session.
func (r *WSLResolver) IsWSL() bool {
	if r.detected != nil {
		return *r.detected
	}

	result := false
	if r.goos == "linux" {
		data, err := os.ReadFile(r.versionPath)
		if err == nil {
			version := strings.ToLower(string(data))
			result = strings.Contains(version, "microsoft") || strings.Contains(version, "wsl")
		}
	}

	r.detected = &result
	if result {
		r.logger.Debugf("WSL environment detected, version_file: %s", r.versionPath)
	}
	return result
}

// HostBridgeAddress returns the first nameserver IPv4 address from the
// resolver configuration, or "" when the file is unreadable or carries no
// nameserver line.
func (r *WSLResolver) HostBridgeAddress() string {
	data, err := os.ReadFile(r.resolvPath)
	if err != nil {
		r.logger.Debugf("Failed to read resolver configuration, path: %s, error: %v", r.resolvPath, err)
		return ""
	}

	match := nameserverPattern.FindStringSubmatch(string(data))
	if match == nil {
		return ""
	}
	return match[1]
}
