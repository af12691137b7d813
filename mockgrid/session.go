package mockgrid

import (
	"encoding/json"

	"github.com/custom-select/browser-test-harness/servicedef"

	"github.com/launchdarkly/eventsource"
	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
)

const eventsChannel = "events"

type session struct {
	id      string
	tunnel  bool
	failure string
	streams *eventsource.Server
	loggers ldlog.Loggers
}

type eventImpl struct {
	name string
	data interface{}
}

func (e eventImpl) Event() string { return e.name }
func (e eventImpl) Id() string    { return "" } //nolint:stylecheck
func (e eventImpl) Data() string {
	bytes, _ := json.Marshal(e.data)
	return string(bytes)
}

func newSession(id string, tunnel bool, tunnelFailure string, loggers ldlog.Loggers) *session {
	streams := eventsource.NewServer()
	streams.ReplayAll = true
	streams.Logger = loggers.ForLevel(ldlog.Debug)

	s := &session{
		id:      id,
		tunnel:  tunnel,
		failure: tunnelFailure,
		streams: streams,
		loggers: loggers,
	}
	streams.Register(eventsChannel, s)
	return s
}

// Replay is called by the eventsource server for every new subscriber. The tunnel handshake
// happens as soon as a client starts listening, so each subscriber first sees the tunnel events.
func (s *session) Replay(channel, id string) chan eventsource.Event {
	var events []eventsource.Event
	if s.tunnel {
		events = append(events, eventImpl{name: servicedef.EventNameTunnelConnect, data: struct{}{}})
		if s.failure != "" {
			events = append(events,
				eventImpl{name: servicedef.EventNameTunnelError, data: servicedef.TunnelErrorEventRep{Message: s.failure}})
		} else {
			events = append(events,
				eventImpl{name: servicedef.EventNameTunnel, data: servicedef.TunnelEventRep{TunnelID: "tunnel-" + s.id}})
		}
	}
	eventsCh := make(chan eventsource.Event, len(events))
	for _, e := range events {
		s.logEvent(e)
		eventsCh <- e
	}
	close(eventsCh)
	return eventsCh
}

func (s *session) publish(name string, data interface{}) {
	e := eventImpl{name: name, data: data}
	s.logEvent(e)
	s.streams.Publish([]string{eventsChannel}, e)
}

func (s *session) close() {
	s.streams.Close()
}

func (s *session) logEvent(e eventsource.Event) {
	s.loggers.Debugf("session %s: sending %s event with data: %s", s.id, e.Event(), e.Data())
}
