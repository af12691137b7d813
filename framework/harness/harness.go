package harness

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custom-select/browser-test-harness/framework"
	"github.com/custom-select/browser-test-harness/servicedef"
	"github.com/custom-select/browser-test-harness/serviceinfo"
)

// TestHarness is the client side of a remote cross-browser test execution service.
//
// It always communicates with a single service, which it verifies is alive on startup. It can
// then open sessions (Connect) in which jobs are submitted and lifecycle events are streamed
// back. It contains no knowledge of browsers or combinations; package browsertests builds on it.
type TestHarness struct {
	serviceBaseURL  string
	serviceInfo     serviceinfo.TestServiceInfo
	httpClient      *http.Client
	logger          framework.Logger
	eventRetryDelay time.Duration
}

// NewTestHarness creates a TestHarness instance, and verifies that the service is responding
// by querying its status resource until it answers or statusQueryTimeout elapses. Progress of
// the status query is written to startupOutput.
func NewTestHarness(
	serviceBaseURL string,
	statusQueryTimeout time.Duration,
	debugLogger framework.Logger,
	startupOutput io.Writer,
) (*TestHarness, error) {
	if debugLogger == nil {
		debugLogger = framework.NullLogger()
	}
	if startupOutput == nil {
		startupOutput = io.Discard
	}

	h := &TestHarness{
		serviceBaseURL:  strings.TrimSuffix(serviceBaseURL, "/"),
		httpClient:      &http.Client{},
		logger:          debugLogger,
		eventRetryDelay: time.Second,
	}

	info, err := queryTestServiceInfo(h.httpClient, h.serviceBaseURL, statusQueryTimeout, startupOutput)
	if err != nil {
		return nil, err
	}
	h.serviceInfo = info
	return h, nil
}

// TestServiceInfo returns the initial status information received from the service.
func (h *TestHarness) TestServiceInfo() serviceinfo.TestServiceInfo {
	return h.serviceInfo
}

// Connect opens a session on the service and subscribes to its event stream. Events are
// delivered to observer until the session is closed; observer may be nil.
//
// The returned session must be closed exactly once with Close.
func (h *TestHarness) Connect(
	ctx context.Context,
	creds Credentials,
	params servicedef.CreateSessionParams,
	observer EventObserver,
) (*Session, error) {
	if observer == nil {
		observer = nullObserver{}
	}
	if !params.Tunnel && h.serviceInfo.Capabilities.Has(servicedef.CapabilityTunnel) {
		params.Tunnel = true
	}

	data, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	h.logger.Printf("Opening session for user %q with parameters: %s", creds.User, string(data))
	_, headers, err := doRequest(ctx, h.httpClient, "POST", h.serviceBaseURL+servicedef.SessionsPath, creds, data)
	if err != nil {
		return nil, err
	}
	resourceURL := headers.Get("Location")
	if resourceURL == "" {
		return nil, errors.New("remote service did not return a Location header with a session URL")
	}
	if !strings.HasPrefix(resourceURL, "http:") && !strings.HasPrefix(resourceURL, "https:") {
		resourceURL = h.serviceBaseURL + resourceURL
	}

	s := newSession(h, resourceURL, creds, observer)
	if err := s.subscribe(); err != nil {
		h.logger.Printf("Could not subscribe to events for %s: %s", resourceURL, err)
		_, _, _ = doRequest(ctx, h.httpClient, "DELETE", resourceURL, creds, nil)
		return nil, err
	}
	return s, nil
}
