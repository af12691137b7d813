package browsertests

import "fmt"

// ConfigurationError is returned when the run options are incomplete. It is always detected
// before any connection to the remote service is made.
type ConfigurationError struct {
	// Field is the name of the offending option as it appears in a run file, e.g. "accessKey".
	Field   string
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

// TransportError is a failure to talk to the remote service: connecting, submitting a job or
// closing the connection. A TransportError ends the run.
type TransportError struct {
	Op  string // "connect", "run" or "close"
	Job string // label of the job being submitted, if any
	Err error
}

func (e *TransportError) Error() string {
	if e.Job != "" {
		return fmt.Sprintf("%s %s: %s", e.Op, e.Job, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
