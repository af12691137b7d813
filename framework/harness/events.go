package harness

import (
	"fmt"

	"github.com/custom-select/browser-test-harness/servicedef"

	"github.com/launchdarkly/go-jsonstream/v3/jreader"
)

// EventKind identifies one of the fixed set of lifecycle notifications a session can deliver.
type EventKind int

const (
	TunnelConnecting EventKind = iota
	TunnelEstablished
	TunnelFailed
	BrowserConnected
	ResultsReceived
	ConnectionClosed
)

// String returns the wire name of the event kind.
func (k EventKind) String() string {
	switch k {
	case TunnelConnecting:
		return servicedef.EventNameTunnelConnect
	case TunnelEstablished:
		return servicedef.EventNameTunnel
	case TunnelFailed:
		return servicedef.EventNameTunnelError
	case BrowserConnected:
		return servicedef.EventNameBrowser
	case ResultsReceived:
		return servicedef.EventNameResults
	case ConnectionClosed:
		return servicedef.EventNameClose
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is a lifecycle notification. The concrete type carries the payload for its kind.
type Event interface {
	Kind() EventKind
}

type TunnelConnectingEvent struct{}

type TunnelEstablishedEvent struct {
	TunnelID string
}

type TunnelErrorEvent struct {
	Message string
}

type BrowserConnectedEvent struct {
	JobID       string
	BrowserName string
}

type ResultsReceivedEvent struct {
	JobID string
	OK    bool
}

type ConnectionClosedEvent struct{}

func (TunnelConnectingEvent) Kind() EventKind  { return TunnelConnecting }
func (TunnelEstablishedEvent) Kind() EventKind { return TunnelEstablished }
func (TunnelErrorEvent) Kind() EventKind       { return TunnelFailed }
func (BrowserConnectedEvent) Kind() EventKind  { return BrowserConnected }
func (ResultsReceivedEvent) Kind() EventKind   { return ResultsReceived }
func (ConnectionClosedEvent) Kind() EventKind  { return ConnectionClosed }

// EventObserver receives lifecycle events for a session. Events that arrive on the stream are
// delivered from the session's stream goroutine, so implementations must not assume they run
// on the caller's goroutine. A session never calls its observer concurrently with itself.
type EventObserver interface {
	HandleEvent(Event)
}

// EventObserverFunc adapts a plain function to EventObserver.
type EventObserverFunc func(Event)

func (f EventObserverFunc) HandleEvent(e Event) { f(e) }

type nullObserver struct{}

func (nullObserver) HandleEvent(Event) {}

// parseEvent decodes one stream message. An empty payload is treated as "{}"; unknown event
// names are an error so that the caller can log and ignore them.
func parseEvent(name string, data []byte) (Event, error) {
	if len(data) == 0 {
		data = []byte("{}")
	}
	r := jreader.NewReader(data)
	var event Event

	switch name {
	case servicedef.EventNameTunnelConnect:
		_ = r.SkipValue()
		event = TunnelConnectingEvent{}
	case servicedef.EventNameTunnel:
		var e TunnelEstablishedEvent
		for obj := r.ObjectOrNull(); obj.Next(); {
			if string(obj.Name()) == "tunnelId" {
				e.TunnelID = r.String()
			}
		}
		event = e
	case servicedef.EventNameTunnelError:
		var e TunnelErrorEvent
		for obj := r.ObjectOrNull(); obj.Next(); {
			if string(obj.Name()) == "message" {
				e.Message = r.String()
			}
		}
		event = e
	case servicedef.EventNameBrowser:
		var e BrowserConnectedEvent
		for obj := r.ObjectOrNull(); obj.Next(); {
			switch string(obj.Name()) {
			case "jobId":
				e.JobID = r.String()
			case "browserName":
				e.BrowserName = r.String()
			}
		}
		event = e
	case servicedef.EventNameResults:
		var e ResultsReceivedEvent
		for obj := r.ObjectOrNull(); obj.Next(); {
			switch string(obj.Name()) {
			case "jobId":
				e.JobID = r.String()
			case "ok":
				e.OK = r.Bool()
			}
		}
		event = e
	case servicedef.EventNameClose:
		_ = r.SkipValue()
		event = ConnectionClosedEvent{}
	default:
		return nil, fmt.Errorf("unknown event %q", name)
	}

	if err := r.Error(); err != nil {
		return nil, fmt.Errorf("malformed %q event data: %w", name, err)
	}
	return event, nil
}
