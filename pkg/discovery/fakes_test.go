package discovery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/antigravity-tools/gateway-discovery/pkg/gateway"
)

// fakeExecutor maps command substrings to canned output so tests never touch
// the OS.
type fakeExecutor struct {
	outputs map[string]string
	errs    map[string]error
	calls   []string
}

func newFakeExecutor() *fakeExecutor {
	return &fakeExecutor{
		outputs: make(map[string]string),
		errs:    make(map[string]error),
	}
}

func (f *fakeExecutor) on(substring, output string) *fakeExecutor {
	f.outputs[substring] = output
	return f
}

func (f *fakeExecutor) failOn(substring string, err error) *fakeExecutor {
	f.errs[substring] = err
	return f
}

func (f *fakeExecutor) Run(ctx context.Context, command string, timeout time.Duration) (string, error) {
	f.calls = append(f.calls, command)
	for substring, err := range f.errs {
		if strings.Contains(command, substring) {
			return "", err
		}
	}
	for substring, output := range f.outputs {
		if strings.Contains(command, substring) {
			return output, nil
		}
	}
	return "", fmt.Errorf("no canned output for command: %s", command)
}

func (f *fakeExecutor) callCount(substring string) int {
	count := 0
	for _, call := range f.calls {
		if strings.Contains(call, substring) {
			count++
		}
	}
	return count
}

// fakeVerifier accepts exactly one (host, port, token) triple.
type fakeVerifier struct {
	host   string
	port   int
	token  string
	probes []string
}

func (v *fakeVerifier) Probe(ctx context.Context, host string, port int, token string) gateway.ProbeResult {
	v.probes = append(v.probes, fmt.Sprintf("%s:%d:%s", host, port, token))
	if host == v.host && port == v.port && token == v.token {
		return gateway.ProbeResult{Success: true, StatusCode: 200, Protocol: "http"}
	}
	return gateway.ProbeResult{StatusCode: 403, Protocol: "http", Error: "unexpected status: 403"}
}

// fakeStrategy emits fixed command strings so the executor fakes stay
// readable, and delegates parsing to the unix parsers.
type fakeStrategy struct {
	unix unixStrategy
}

func (s *fakeStrategy) ListCandidatesCommand(processName string) string {
	return "list-candidates " + processName
}

func (s *fakeStrategy) ListAllCommand(marker string) string {
	return "list-all " + marker
}

func (s *fakeStrategy) ParseCandidates(raw string) []ProcessRecord {
	return s.unix.ParseCandidates(raw)
}

func (s *fakeStrategy) ListPortsCommand(pid int) string {
	return fmt.Sprintf("list-ports %d", pid)
}

func (s *fakeStrategy) ParsePorts(raw string, pid int) []int {
	return parsePortLines(raw)
}
