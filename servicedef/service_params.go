package servicedef

import (
	"github.com/custom-select/browser-test-harness/serviceinfo"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
)

const (
	// CapabilityTunnel means the service can reach locally hosted assets through a tunnel.
	CapabilityTunnel = "tunnel"
	// CapabilityCaptureHTML means the service honours the "capture-html" job capability.
	CapabilityCaptureHTML = "capture-html"
)

// Resource paths, relative to the service base URL or to a session resource.
const (
	SessionsPath = "/sessions"
	EventsPath   = "/events"
	JobsPath     = "/jobs"
)

// StatusRep is the body returned by GET on the service root.
type StatusRep struct {
	serviceinfo.TestServiceInfoBase
	ClientVersion string `json:"clientVersion,omitempty"`
}

// CreateSessionParams is the body of POST /sessions. Credentials travel in the Authorization
// header, not here.
type CreateSessionParams struct {
	Tunnel bool   `json:"tunnel"`
	RunID  string `json:"runId,omitempty"`
}

// RunJobParams is the body of POST <session>/jobs.
type RunJobParams struct {
	// Bundle is the full text of the test bundle.
	Bundle string `json:"bundle"`

	// Capabilities is the flat capability object for one combination: the original descriptor
	// fields plus name, capture-html and build.
	Capabilities map[string]ldvalue.Value `json:"capabilities"`

	// Options is free-form and forwarded as-is, e.g. {"timeout": 60000}.
	Options ldvalue.Value `json:"options"`
}

// JobResultRep is the response to POST <session>/jobs.
type JobResultRep struct {
	OK  bool   `json:"ok"`
	Raw string `json:"raw"`
}
