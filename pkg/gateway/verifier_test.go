package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/antigravity-tools/gateway-discovery/pkg/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serverHostPort(t *testing.T, server *httptest.Server) (string, int) {
	t.Helper()
	parsed, err := url.Parse(server.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(parsed.Port())
	require.NoError(t, err)
	return parsed.Hostname(), port
}

func TestHTTPVerifier_Probe_Success(t *testing.T) {
	var gotMethod, gotPath, gotToken, gotProtocol string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotToken = r.Header.Get("X-Csrf-Token")
		gotProtocol = r.Header.Get("Connect-Protocol-Version")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	host, port := serverHostPort(t, server)
	verifier := NewHTTPVerifier(time.Second, logging.NewNullLogger())

	result := verifier.Probe(context.Background(), host, port, "secret-token")

	assert.True(t, result.Success)
	assert.Equal(t, 200, result.StatusCode)
	assert.Equal(t, "http", result.Protocol)
	assert.Empty(t, result.Error)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/exa.language_server_pb.LanguageServerService/GetUserStatus", gotPath)
	assert.Equal(t, "secret-token", gotToken)
	assert.Equal(t, "1", gotProtocol)
}

func TestHTTPVerifier_Probe_RejectedToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	host, port := serverHostPort(t, server)
	verifier := NewHTTPVerifier(time.Second, logging.NewNullLogger())

	result := verifier.Probe(context.Background(), host, port, "wrong-token")

	assert.False(t, result.Success)
	assert.Equal(t, 403, result.StatusCode)
	assert.NotEmpty(t, result.Error)
}

func TestHTTPVerifier_Probe_BodyNotInterpreted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("this is not json {{{"))
	}))
	defer server.Close()

	host, port := serverHostPort(t, server)
	verifier := NewHTTPVerifier(time.Second, logging.NewNullLogger())

	result := verifier.Probe(context.Background(), host, port, "tok")

	assert.True(t, result.Success)
}

func TestHTTPVerifier_Probe_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	host, port := serverHostPort(t, server)
	server.Close()

	verifier := NewHTTPVerifier(time.Second, logging.NewNullLogger())

	result := verifier.Probe(context.Background(), host, port, "tok")

	assert.False(t, result.Success)
	assert.Zero(t, result.StatusCode)
	assert.NotEmpty(t, result.Error)
}

func TestHTTPVerifier_Probe_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer func() {
		close(release)
		server.Close()
	}()

	host, port := serverHostPort(t, server)
	verifier := NewHTTPVerifier(100*time.Millisecond, logging.NewNullLogger())

	start := time.Now()
	result := verifier.Probe(context.Background(), host, port, "tok")

	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
	assert.Less(t, time.Since(start), 2*time.Second)
}
