package servicedef

// Event names used on the session event stream.
const (
	EventNameTunnelConnect = "tunnel-connect"
	EventNameTunnel        = "tunnel"
	EventNameTunnelError   = "tunnel-error"
	EventNameBrowser       = "browser"
	EventNameResults       = "results"
	EventNameClose         = "close"
)

// Event payloads. Every field is optional; the service may send "{}" for any event.

type TunnelEventRep struct {
	TunnelID string `json:"tunnelId,omitempty"`
}

type TunnelErrorEventRep struct {
	Message string `json:"message,omitempty"`
}

type BrowserEventRep struct {
	JobID       string `json:"jobId,omitempty"`
	BrowserName string `json:"browserName,omitempty"`
}

type ResultsEventRep struct {
	JobID string `json:"jobId,omitempty"`
	OK    bool   `json:"ok"`
}
