package discovery

import (
	"regexp"
	"strconv"
	"strings"
)

// Argument markers of the gateway process. Values may be bare, or wrapped in
// single or double quotes.
const (
	portMarker       = "--extension_server_port"
	tokenMarker      = "--csrf_token"
	workspaceMarker  = "--workspace_id"
	appDataDirMarker = "--app_data_dir"
)

var (
	portPattern       = regexp.MustCompile(portMarker + `=["']?(\d{1,5})["']?`)
	tokenPattern      = regexp.MustCompile(tokenMarker + `=["']?([A-Za-z0-9._-]+)["']?`)
	workspacePattern  = regexp.MustCompile(workspaceMarker + `=["']?([A-Za-z0-9._-]+)["']?`)
	appDataDirPattern = regexp.MustCompile(appDataDirMarker + `=["']?([^"'\s]+)["']?`)
)

// extractCandidate applies signature extraction to one process record.
// A record matches only when the command line carries both the token marker
// and the port marker. The token value must parse; if the port value does
// not, the candidate is kept with Port 0, meaning the port must be resolved
// by port enumeration. Returns nil when the record does not match.
//
// In strict mode the --app_data_dir value must additionally contain
// productName (case-insensitive); candidates failing that check are
// discarded even with valid port and token markers.
func extractCandidate(record ProcessRecord, productName string, strict bool) *ServerCandidate {
	tokenMatch := tokenPattern.FindStringSubmatch(record.CommandLine)
	if tokenMatch == nil {
		return nil
	}

	portMatch := portPattern.FindStringSubmatch(record.CommandLine)
	if portMatch == nil && !strings.Contains(record.CommandLine, portMarker) {
		return nil
	}

	if strict {
		dirMatch := appDataDirPattern.FindStringSubmatch(record.CommandLine)
		if dirMatch == nil {
			return nil
		}
		if !strings.Contains(strings.ToLower(dirMatch[1]), strings.ToLower(productName)) {
			return nil
		}
	}

	candidate := &ServerCandidate{
		PID:   record.PID,
		PPID:  record.PPID,
		Token: tokenMatch[1],
	}

	if portMatch != nil {
		port, err := strconv.Atoi(portMatch[1])
		if err == nil && port > 0 && port <= 65535 {
			candidate.Port = port
		}
	}

	if wsMatch := workspacePattern.FindStringSubmatch(record.CommandLine); wsMatch != nil {
		candidate.WorkspaceID = wsMatch[1]
	}

	return candidate
}

// hasSignatureMarkers reports whether a command line textually carries both
// required markers. Used by ambient discovery as a cheap pre-filter before
// full extraction.
func hasSignatureMarkers(commandLine string) bool {
	return strings.Contains(commandLine, portMarker) && strings.Contains(commandLine, tokenMarker)
}
