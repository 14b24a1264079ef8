package discovery

import (
	"testing"

	"github.com/antigravity-tools/gateway-discovery/pkg/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUnixStrategy(goos string, executor *fakeExecutor) *unixStrategy {
	return &unixStrategy{
		deps: strategyDeps{executor: executor, logger: logging.NewNullLogger()},
		goos: goos,
	}
}

func TestUnixStrategy_ListCandidatesCommand(t *testing.T) {
	s := newTestUnixStrategy("linux", newFakeExecutor())

	command := s.ListCandidatesCommand("language_server")

	// The bracket trick keeps the grep from matching its own command line.
	assert.Contains(t, command, "[l]anguage_server")
	assert.Contains(t, command, "ps -eo pid,ppid,args")
	assert.NotContains(t, command, `"language_server"`)
}

func TestUnixStrategy_ParseCandidates(t *testing.T) {
	s := newTestUnixStrategy("linux", newFakeExecutor())

	raw := "  1234  1 /opt/ag/server --extension_server_port=45000 --csrf_token=abc\n" +
		"  5678  1234 /opt/ag/helper --mode=child\n" +
		"\n" +
		"garbage line\n"

	records := s.ParseCandidates(raw)

	require.Len(t, records, 2)
	assert.Equal(t, 1234, records[0].PID)
	assert.Equal(t, 1, records[0].PPID)
	assert.Equal(t, "/opt/ag/server --extension_server_port=45000 --csrf_token=abc", records[0].CommandLine)
	assert.Equal(t, 5678, records[1].PID)
	assert.Equal(t, 1234, records[1].PPID)
}

func TestUnixStrategy_ParseCandidates_Empty(t *testing.T) {
	s := newTestUnixStrategy("linux", newFakeExecutor())

	assert.Nil(t, s.ParseCandidates(""))
	assert.Nil(t, s.ParseCandidates("no numbers here\n"))
}

func TestUnixStrategy_DarwinAlwaysUsesLsof(t *testing.T) {
	executor := newFakeExecutor()
	s := newTestUnixStrategy("darwin", executor)

	command := s.ListPortsCommand(4321)

	assert.Contains(t, command, "lsof")
	assert.Contains(t, command, "-p 4321")
	// No availability probing on macOS
	assert.Zero(t, executor.callCount("command -v"))
}

func TestWindowsStrategy_ParseCandidates(t *testing.T) {
	s := &windowsStrategy{}

	tests := []struct {
		name string
		raw  string
		want []ProcessRecord
	}{
		{
			name: "json array",
			raw:  `[{"ProcessId":100,"ParentProcessId":10,"CommandLine":"srv.exe --csrf_token=a"},{"ProcessId":200,"ParentProcessId":20,"CommandLine":"srv.exe --csrf_token=b"}]`,
			want: []ProcessRecord{
				{PID: 100, PPID: 10, CommandLine: "srv.exe --csrf_token=a"},
				{PID: 200, PPID: 20, CommandLine: "srv.exe --csrf_token=b"},
			},
		},
		{
			name: "single object for one match",
			raw:  `{"ProcessId":100,"ParentProcessId":10,"CommandLine":"srv.exe"}`,
			want: []ProcessRecord{{PID: 100, PPID: 10, CommandLine: "srv.exe"}},
		},
		{
			name: "banner text before payload",
			raw:  "Windows PowerShell\r\nCopyright (C) Microsoft Corporation.\r\n{\"ProcessId\":100,\"ParentProcessId\":10,\"CommandLine\":\"srv.exe\"}",
			want: []ProcessRecord{{PID: 100, PPID: 10, CommandLine: "srv.exe"}},
		},
		{
			name: "no matches",
			raw:  "",
			want: nil,
		},
		{
			name: "legacy csv with header",
			raw:  "Node,CommandLine,ParentProcessId,ProcessId\r\nHOST1,srv.exe --a=1,10,100\r\n",
			want: []ProcessRecord{{PID: 100, PPID: 10, CommandLine: "srv.exe --a=1"}},
		},
		{
			name: "legacy csv with commas in command line",
			raw:  "HOST1,srv.exe --list=a,b,c,10,100\r\n",
			want: []ProcessRecord{{PID: 100, PPID: 10, CommandLine: "srv.exe --list=a,b,c"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.ParseCandidates(tt.raw))
		})
	}
}

func TestParsePortLines(t *testing.T) {
	raw := "45000\n80\n45000\nnot-a-port\n0\n65536\n  8080 \n"

	ports := parsePortLines(raw)

	assert.Equal(t, []int{80, 8080, 45000}, ports)

	// Idempotent and order-independent
	again := parsePortLines(raw)
	assert.Equal(t, ports, again)

	reversed := parsePortLines("  8080 \n65536\n0\nnot-a-port\n45000\n80\n45000\n")
	assert.Equal(t, ports, reversed)
}

func TestWindowsStrategy_Commands(t *testing.T) {
	s := &windowsStrategy{}

	candidates := s.ListCandidatesCommand("language_server_windows_x64.exe")
	assert.Contains(t, candidates, "Get-CimInstance Win32_Process")
	assert.Contains(t, candidates, "Name='language_server_windows_x64.exe'")
	assert.Contains(t, candidates, "ConvertTo-Json")

	ports := s.ListPortsCommand(777)
	assert.Contains(t, ports, "Get-NetTCPConnection")
	assert.Contains(t, ports, "-OwningProcess 777")
	assert.Contains(t, ports, "-State Listen")
}
