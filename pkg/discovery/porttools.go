package discovery

import (
	"context"
	"strings"
	"time"
)

// portToolPriority is the probe order on Linux. lsof first: its output shape
// is stable across distributions; ss and netstat formats drift.
var portToolPriority = []string{"lsof", "ss", "netstat"}

const portToolProbeTimeout = 2 * time.Second

// resolvePortTool probes for the first available port-listing tool and
// memoizes the result for the rest of the session. Returns "" when none of
// the tools is present, in which case callers fall back to an OR-chained
// command at invocation time.
func (s *unixStrategy) resolvePortTool() string {
	if s.portToolProbed {
		return s.portTool
	}
	s.portToolProbed = true

	for _, tool := range portToolPriority {
		if s.probeTool(tool) {
			s.deps.logger.Debugf("Port-listing tool selected, tool: %s", tool)
			s.portTool = tool
			return tool
		}
	}

	s.deps.logger.Warnf("No port-listing tool found, falling back to chained command, tried: %v", portToolPriority)
	return ""
}

func (s *unixStrategy) probeTool(tool string) bool {
	output, err := s.deps.executor.Run(context.Background(), "command -v "+tool, portToolProbeTimeout)
	if err != nil {
		return false
	}
	return strings.TrimSpace(output) != ""
}
