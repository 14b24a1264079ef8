package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/antigravity-tools/gateway-discovery/pkg/logging"
)

// The gateway exposes a Connect-style RPC surface over plain HTTP. The user
// status call is the cheapest authenticated endpoint, which makes it the
// verification probe: a 2xx proves both reachability and that the extracted
// CSRF token is accepted. The response body is never interpreted.
const (
	probePath           = "/exa.language_server_pb.LanguageServerService/GetUserStatus"
	csrfTokenHeader     = "X-Csrf-Token"
	protocolHeader      = "Connect-Protocol-Version"
	protocolVersion     = "1"
	defaultProbeTimeout = 3 * time.Second
)

// ProbeResult reports the outcome of one verification probe.
type ProbeResult struct {
	Success    bool
	StatusCode int
	Protocol   string
	Error      string
}

// Verifier confirms that a (host, port, token) triple belongs to the real
// gateway.
type Verifier interface {
	Probe(ctx context.Context, host string, port int, token string) ProbeResult
}

type httpVerifier struct {
	client  *http.Client
	timeout time.Duration
	logger  logging.Logger
}

// NewHTTPVerifier creates a Verifier probing over plain HTTP with the given
// per-probe timeout. A non-positive timeout selects the default.
func NewHTTPVerifier(timeout time.Duration, logger logging.Logger) Verifier {
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	return &httpVerifier{
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
		logger:  logger,
	}
}

func (v *httpVerifier) Probe(ctx context.Context, host string, port int, token string) ProbeResult {
	url := fmt.Sprintf("http://%s:%d%s", host, port, probePath)

	v.logger.Debugf("Probing gateway, url: %s", url)

	probeCtx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodPost, url, strings.NewReader("{}"))
	if err != nil {
		return ProbeResult{Protocol: "http", Error: fmt.Sprintf("failed to create probe request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(csrfTokenHeader, token)
	req.Header.Set(protocolHeader, protocolVersion)

	resp, err := v.client.Do(req)
	if err != nil {
		v.logger.Debugf("Gateway probe failed, url: %s, error: %v", url, err)
		return ProbeResult{Protocol: "http", Error: fmt.Sprintf("probe request failed: %v", err)}
	}
	defer resp.Body.Close()

	result := ProbeResult{
		StatusCode: resp.StatusCode,
		Protocol:   "http",
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		result.Success = true
		v.logger.Debugf("Gateway probe succeeded, url: %s, status: %d", url, resp.StatusCode)
	} else {
		result.Error = fmt.Sprintf("unexpected status: %d %s", resp.StatusCode, resp.Status)
		v.logger.Debugf("Gateway probe rejected, url: %s, status: %d", url, resp.StatusCode)
	}
	return result
}
