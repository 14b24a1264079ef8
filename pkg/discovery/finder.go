package discovery

import (
	"context"
	"time"

	"github.com/antigravity-tools/gateway-discovery/pkg/gateway"
	"github.com/antigravity-tools/gateway-discovery/pkg/logging"
	"github.com/antigravity-tools/gateway-discovery/pkg/shell"
)

const loopbackHost = "127.0.0.1"

// Finder locates the gateway process and returns a verified endpoint.
// One Finder instance owns one discovery session: its platform strategy
// (and the port-tool memo inside it) is never shared between sessions.
type Finder struct {
	config   Config
	executor shell.Executor
	strategy PlatformStrategy
	verifier gateway.Verifier
	wsl      *WSLResolver
	logger   logging.Logger
}

// NewFinder wires a discovery session with OS-native collaborators.
func NewFinder(config Config, logger logging.Logger) *Finder {
	config = config.withDefaults()
	executor := shell.NewStdExecutor(logger)
	return &Finder{
		config:   config,
		executor: executor,
		strategy: NewPlatformStrategy(strategyDeps{
			executor: executor,
			logger:   logger,
		}),
		verifier: gateway.NewHTTPVerifier(config.ProbeTimeout, logger),
		wsl:      NewWSLResolver(logger),
		logger:   logger,
	}
}

// Discover runs the strict discovery cycle with retry and exponential
// backoff. A nil result means the gateway was not found after all attempts;
// that is an expected outcome, not an error.
func (f *Finder) Discover(ctx context.Context) *VerifiedEndpoint {
	for attempt := 1; attempt <= f.config.Attempts; attempt++ {
		f.logger.Infof("Discovery attempt, attempt: %d/%d, process_name: %s",
			attempt, f.config.Attempts, f.config.ProcessName)

		if endpoint := f.discoverOnce(ctx); endpoint != nil {
			f.logger.Infof("Gateway discovered, host: %s, port: %d, attempt: %d",
				endpoint.Host, endpoint.Port, attempt)
			return endpoint
		}

		if attempt < f.config.Attempts {
			delay := backoffDelay(f.config.BaseDelay, attempt)
			f.logger.Debugf("Discovery attempt failed, retrying, delay: %v", delay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				f.logger.Warnf("Discovery cancelled, attempt: %d, error: %v", attempt, ctx.Err())
				return nil
			}
		}
	}

	f.logger.Warnf("Gateway not found after all attempts, attempts: %d", f.config.Attempts)
	return nil
}

func (f *Finder) discoverOnce(ctx context.Context) *VerifiedEndpoint {
	records := f.enumerate(ctx, f.strategy.ListCandidatesCommand(f.config.ProcessName))

	var candidates []ServerCandidate
	for _, record := range records {
		if candidate := extractCandidate(record, f.config.ProductName, true); candidate != nil {
			candidates = append(candidates, *candidate)
		}
	}

	f.logger.Debugf("Candidate filtering complete, records: %d, candidates: %d",
		len(records), len(candidates))

	return f.resolveAndVerify(ctx, candidates)
}

// enumerate runs a process-listing command and parses its output. Execution
// or parse failure is non-fatal and yields zero records.
func (f *Finder) enumerate(ctx context.Context, command string) []ProcessRecord {
	output, err := f.executor.Run(ctx, command, f.config.CommandTimeout)
	if err != nil {
		// grep exits non-zero on no match; the output still parses.
		f.logger.Debugf("Process enumeration command failed, error: %v", err)
	}
	return f.strategy.ParseCandidates(output)
}

// resolveAndVerify is the shared core of strict and ambient discovery:
// resolve each candidate's port set, then probe loopback and, under WSL,
// the host bridge address. First verified endpoint wins.
func (f *Finder) resolveAndVerify(ctx context.Context, candidates []ServerCandidate) *VerifiedEndpoint {
	for _, candidate := range candidates {
		if ctx.Err() != nil {
			return nil
		}

		ports := f.candidatePorts(ctx, candidate)
		if len(ports) == 0 {
			f.logger.Debugf("No ports resolved for candidate, pid: %d", candidate.PID)
			continue
		}

		for _, port := range ports {
			if endpoint := f.verifyPort(ctx, port, candidate.Token); endpoint != nil {
				return endpoint
			}
		}
	}
	return nil
}

// candidatePorts trusts a port extracted from the command line; otherwise it
// resolves ports by asking the OS what the pid is listening on.
func (f *Finder) candidatePorts(ctx context.Context, candidate ServerCandidate) []int {
	if candidate.Port != 0 {
		return []int{candidate.Port}
	}

	output, err := f.executor.Run(ctx, f.strategy.ListPortsCommand(candidate.PID), f.config.CommandTimeout)
	if err != nil {
		f.logger.Debugf("Port listing failed, pid: %d, error: %v", candidate.PID, err)
	}
	ports := f.strategy.ParsePorts(output, candidate.PID)
	f.logger.Debugf("Ports resolved, pid: %d, ports: %v", candidate.PID, ports)
	return ports
}

func (f *Finder) verifyPort(ctx context.Context, port int, token string) *VerifiedEndpoint {
	hosts := []string{loopbackHost}
	if f.wsl.IsWSL() {
		if bridge := f.wsl.HostBridgeAddress(); bridge != "" && bridge != loopbackHost {
			hosts = append(hosts, bridge)
		}
	}

	for _, host := range hosts {
		result := f.verifier.Probe(ctx, host, port, token)
		if result.Success {
			return &VerifiedEndpoint{Host: host, Port: port, Token: token}
		}
		f.logger.Debugf("Probe failed, host: %s, port: %d, status: %d, error: %s",
			host, port, result.StatusCode, result.Error)
	}
	return nil
}

// backoffDelay computes baseDelay * 2^(attempt-1), capped so large attempt
// counts cannot stall the caller.
func backoffDelay(baseDelay time.Duration, attempt int) time.Duration {
	delay := baseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= maxBackoffDelay {
			return maxBackoffDelay
		}
	}
	if delay > maxBackoffDelay {
		return maxBackoffDelay
	}
	return delay
}
