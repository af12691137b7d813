package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEvent(t *testing.T) {
	for _, p := range []struct {
		name     string
		data     string
		expected Event
	}{
		{"tunnel-connect", "", TunnelConnectingEvent{}},
		{"tunnel-connect", "{}", TunnelConnectingEvent{}},
		{"tunnel", `{"tunnelId":"t1","extra":[1,2]}`, TunnelEstablishedEvent{TunnelID: "t1"}},
		{"tunnel-error", `{"message":"handshake failed"}`, TunnelErrorEvent{Message: "handshake failed"}},
		{"browser", `{"jobId":"j1","browserName":"chrome"}`, BrowserConnectedEvent{JobID: "j1", BrowserName: "chrome"}},
		{"results", `{"jobId":"j1","ok":true}`, ResultsReceivedEvent{JobID: "j1", OK: true}},
		{"results", `null`, ResultsReceivedEvent{}},
		{"close", "{}", ConnectionClosedEvent{}},
	} {
		t.Run(p.name+" "+p.data, func(t *testing.T) {
			event, err := parseEvent(p.name, []byte(p.data))
			require.NoError(t, err)
			assert.Equal(t, p.expected, event)
			assert.Equal(t, p.name, event.Kind().String())
		})
	}
}

func TestParseEventErrors(t *testing.T) {
	_, err := parseEvent("video", []byte("{}"))
	assert.ErrorContains(t, err, `unknown event "video"`)

	_, err = parseEvent("results", []byte(`{"ok":"yes"}`))
	assert.ErrorContains(t, err, `malformed "results" event data`)

	_, err = parseEvent("tunnel", []byte(`{"tunnelId":`))
	assert.Error(t, err)
}

func TestEventKindString(t *testing.T) {
	assert.Equal(t, "tunnel-connect", TunnelConnecting.String())
	assert.Equal(t, "close", ConnectionClosed.String())
	assert.Equal(t, "EventKind(99)", EventKind(99).String())
}
