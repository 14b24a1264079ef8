package discovery

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// windowsStrategy enumerates processes through PowerShell CIM and parses the
// JSON it emits. Output from older hosts that still route through WMIC's CSV
// serialization parses too.
type windowsStrategy struct {
	deps strategyDeps
}

func (s *windowsStrategy) ListCandidatesCommand(processName string) string {
	return fmt.Sprintf(`powershell -NoProfile -Command "Get-CimInstance Win32_Process -Filter \"Name='%s'\" | Select-Object ProcessId,ParentProcessId,CommandLine | ConvertTo-Json -Compress"`, processName)
}

func (s *windowsStrategy) ListAllCommand(marker string) string {
	return fmt.Sprintf(`powershell -NoProfile -Command "Get-CimInstance Win32_Process -Filter \"CommandLine LIKE '%%%s%%'\" | Select-Object ProcessId,ParentProcessId,CommandLine | ConvertTo-Json -Compress"`, marker)
}

// winProcess mirrors the CIM serialization of Win32_Process.
type winProcess struct {
	ProcessID       int    `json:"ProcessId"`
	ParentProcessID int    `json:"ParentProcessId"`
	CommandLine     string `json:"CommandLine"`
}

// ParseCandidates handles the quirks of PowerShell output: a single object
// instead of an array when exactly one process matches, stray banner or
// profile text before the JSON payload, and no output at all when nothing
// matches. Output that is not JSON is retried as legacy WMIC CSV.
func (s *windowsStrategy) ParseCandidates(raw string) []ProcessRecord {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}

	start := strings.IndexAny(trimmed, "[{")
	if start < 0 {
		return parseCandidatesCSV(trimmed)
	}
	payload := trimmed[start:]

	var procs []winProcess
	if payload[0] == '[' {
		if err := json.Unmarshal([]byte(payload), &procs); err != nil {
			return parseCandidatesCSV(trimmed)
		}
	} else {
		var single winProcess
		if err := json.Unmarshal([]byte(payload), &single); err != nil {
			return parseCandidatesCSV(trimmed)
		}
		procs = []winProcess{single}
	}

	var records []ProcessRecord
	for _, p := range procs {
		if p.ProcessID == 0 {
			continue
		}
		records = append(records, ProcessRecord{
			PID:         p.ProcessID,
			PPID:        p.ParentProcessID,
			CommandLine: p.CommandLine,
		})
	}
	return records
}

// parseCandidatesCSV parses the legacy WMIC CSV shape
// (Node,CommandLine,ParentProcessId,ProcessId): the trailing two numeric
// columns are (ppid, pid), everything between the node column and them is
// the command line, rejoined because command lines contain commas.
func parseCandidatesCSV(raw string) []ProcessRecord {
	var records []ProcessRecord
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == "" {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) < 3 {
			continue
		}
		pid, err := strconv.Atoi(strings.TrimSpace(fields[len(fields)-1]))
		if err != nil {
			// Header or malformed line
			continue
		}
		ppid, err := strconv.Atoi(strings.TrimSpace(fields[len(fields)-2]))
		if err != nil {
			continue
		}
		commandFields := fields[:len(fields)-2]
		if len(commandFields) > 1 {
			// Drop the leading node column
			commandFields = commandFields[1:]
		}
		records = append(records, ProcessRecord{
			PID:         pid,
			PPID:        ppid,
			CommandLine: strings.Join(commandFields, ","),
		})
	}
	return records
}

func (s *windowsStrategy) ListPortsCommand(pid int) string {
	return fmt.Sprintf(`powershell -NoProfile -Command "Get-NetTCPConnection -State Listen -OwningProcess %d -ErrorAction SilentlyContinue | Select-Object -ExpandProperty LocalPort"`, pid)
}

func (s *windowsStrategy) ParsePorts(raw string, pid int) []int {
	return parsePortLines(raw)
}
