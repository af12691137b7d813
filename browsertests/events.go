package browsertests

import (
	"github.com/custom-select/browser-test-harness/framework"
	"github.com/custom-select/browser-test-harness/framework/harness"
)

// EventMessage is the run-log line for a lifecycle event.
func EventMessage(e harness.Event) string {
	switch e.Kind() {
	case harness.TunnelConnecting:
		return "# Starting to connect the Sauce Connect tunnel..."
	case harness.TunnelEstablished:
		return "# The Sauce Connect tunnel has been connected!"
	case harness.TunnelFailed:
		return "# An error occurred when connecting the Sauce Connect tunnel"
	case harness.BrowserConnected:
		return "# Successfully connected to a new browser"
	case harness.ResultsReceived:
		return "# Test run has finished"
	case harness.ConnectionClosed:
		return "# The runner has been closed"
	default:
		return "# " + e.Kind().String()
	}
}

// LogObserver writes one line per lifecycle event to log.
func LogObserver(log framework.Logger) harness.EventObserver {
	return harness.EventObserverFunc(func(e harness.Event) {
		log.Println(EventMessage(e))
	})
}
