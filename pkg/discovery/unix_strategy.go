package discovery

import (
	"fmt"
	"strconv"
	"strings"
)

// unixStrategy covers macOS and Linux. Process enumeration is ps+grep with
// the bracket trick so the grep never matches itself; port listing uses the
// best available tool on Linux and always lsof on macOS.
type unixStrategy struct {
	deps strategyDeps
	goos string

	// portTool memoizes the Linux port-listing tool for this session.
	// Empty until probed; see resolvePortTool.
	portTool       string
	portToolProbed bool
}

func (s *unixStrategy) ListCandidatesCommand(processName string) string {
	return fmt.Sprintf("ps -eo pid,ppid,args | grep -i %q", bracketPattern(processName))
}

func (s *unixStrategy) ListAllCommand(marker string) string {
	return fmt.Sprintf("ps -eo pid,ppid,args | grep %q", bracketPattern(marker))
}

// bracketPattern wraps the first character in [...] so the grep command's
// own text never matches the search.
func bracketPattern(pattern string) string {
	if pattern == "" {
		return pattern
	}
	return "[" + pattern[:1] + "]" + pattern[1:]
}

func (s *unixStrategy) ParseCandidates(raw string) []ProcessRecord {
	var records []ProcessRecord
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		pid, err := strconv.Atoi(fields[0])
		if err != nil {
			continue
		}
		ppid, err := strconv.Atoi(fields[1])
		if err != nil {
			continue
		}
		records = append(records, ProcessRecord{
			PID:         pid,
			PPID:        ppid,
			CommandLine: strings.Join(fields[2:], " "),
		})
	}
	return records
}

func (s *unixStrategy) ListPortsCommand(pid int) string {
	if s.goos == "darwin" {
		// lsof ships with macOS; no availability probe needed.
		return lsofPortsCommand(pid)
	}

	switch s.resolvePortTool() {
	case "lsof":
		return lsofPortsCommand(pid)
	case "ss":
		return ssPortsCommand(pid)
	case "netstat":
		return netstatPortsCommand(pid)
	}

	// No tool detected: try each in sequence at invocation time.
	return fmt.Sprintf("(%s) || (%s) || (%s)",
		lsofPortsCommand(pid), ssPortsCommand(pid), netstatPortsCommand(pid))
}

func (s *unixStrategy) ParsePorts(raw string, pid int) []int {
	return parsePortLines(raw)
}

// Each command pipes tool output down to one numeric port token per line so
// ParsePorts stays tool-independent.

func lsofPortsCommand(pid int) string {
	return fmt.Sprintf(`lsof -nP -iTCP -sTCP:LISTEN -a -p %d 2>/dev/null | awk 'NR>1 {n=split($9,a,":"); print a[n]}'`, pid)
}

func ssPortsCommand(pid int) string {
	return fmt.Sprintf(`ss -tlnp 2>/dev/null | grep "pid=%d," | awk '{print $4}' | awk -F: '{print $NF}'`, pid)
}

func netstatPortsCommand(pid int) string {
	return fmt.Sprintf(`netstat -tlnp 2>/dev/null | grep "%d/" | awk '{print $4}' | awk -F: '{print $NF}'`, pid)
}
