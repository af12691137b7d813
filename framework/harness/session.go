package harness

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/custom-select/browser-test-harness/servicedef"

	"github.com/launchdarkly/eventsource"
)

// ErrSessionClosed is returned by RunJob after Close has been called.
var ErrSessionClosed = errors.New("session is closed")

// Session is one open connection to the remote service. Jobs submitted through it share the
// same tunnel and credentials.
type Session struct {
	owner       *TestHarness
	resourceURL string
	creds       Credentials
	observer    EventObserver
	stream      *eventsource.Stream
	stopStream  chan struct{}
	streamDone  chan struct{}
	closed      bool
	closedEvent sync.Once
	observeLock sync.Mutex
	lock        sync.Mutex
}

func newSession(owner *TestHarness, resourceURL string, creds Credentials, observer EventObserver) *Session {
	return &Session{
		owner:       owner,
		resourceURL: resourceURL,
		creds:       creds,
		observer:    observer,
		stopStream:  make(chan struct{}),
		streamDone:  make(chan struct{}),
	}
}

func (s *Session) subscribe() error {
	req, err := http.NewRequest("GET", s.resourceURL+servicedef.EventsPath, nil)
	if err != nil {
		return err
	}
	if s.creds.User != "" {
		req.SetBasicAuth(s.creds.User, s.creds.AccessKey)
	}
	stream, err := eventsource.SubscribeWithRequestAndOptions(req,
		eventsource.StreamOptionHTTPClient(s.owner.httpClient),
		eventsource.StreamOptionInitialRetry(s.owner.eventRetryDelay),
		eventsource.StreamOptionLogger(s.owner.logger),
	)
	if err != nil {
		return fmt.Errorf("event stream: %w", err)
	}
	s.stream = stream
	go s.consumeEvents()
	return nil
}

func (s *Session) consumeEvents() {
	defer close(s.streamDone)
	logger := s.owner.logger
	for {
		select {
		case <-s.stopStream:
			return
		case ev, ok := <-s.stream.Events:
			if !ok {
				return
			}
			event, err := parseEvent(ev.Event(), []byte(ev.Data()))
			if err != nil {
				logger.Printf("Ignoring event from %s: %s", s.resourceURL, err)
				continue
			}
			s.deliver(event)
		case err, ok := <-s.stream.Errors:
			if !ok {
				return
			}
			logger.Printf("Event stream error for %s: %s", s.resourceURL, err)
		}
	}
}

func (s *Session) deliver(event Event) {
	if event.Kind() == ConnectionClosed {
		s.closedEvent.Do(func() { s.notify(event) })
		return
	}
	s.notify(event)
}

func (s *Session) notify(event Event) {
	s.observeLock.Lock()
	defer s.observeLock.Unlock()
	s.observer.HandleEvent(event)
}

func (s *Session) isClosed() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.closed
}

// RunJob submits one job and blocks until the service returns its result. A non-2xx answer,
// an I/O failure or a malformed result body is returned as an error; a job whose tests failed
// is a normal result with OK false.
func (s *Session) RunJob(ctx context.Context, params servicedef.RunJobParams) (servicedef.JobResultRep, error) {
	if s.isClosed() {
		return servicedef.JobResultRep{}, ErrSessionClosed
	}
	data, err := json.Marshal(params)
	if err != nil {
		return servicedef.JobResultRep{}, err
	}
	s.owner.logger.Printf("Submitting job %s to %s", params.Capabilities["name"], s.resourceURL)
	body, _, err := doRequest(ctx, s.owner.httpClient, "POST", s.resourceURL+servicedef.JobsPath, s.creds, data)
	if err != nil {
		return servicedef.JobResultRep{}, err
	}
	var result servicedef.JobResultRep
	if err := json.Unmarshal(body, &result); err != nil {
		return servicedef.JobResultRep{}, fmt.Errorf("malformed job result from remote service: %w", err)
	}
	s.owner.logger.Printf("Job result: ok=%t, %d bytes of output", result.OK, len(result.Raw))
	return result, nil
}

// Close stops the event stream, tells the service to dispose of the session and then emits
// ConnectionClosed to the observer. Calling Close again is a no-op that returns nil.
func (s *Session) Close(ctx context.Context) error {
	s.lock.Lock()
	if s.closed {
		s.lock.Unlock()
		return nil
	}
	s.closed = true
	s.lock.Unlock()

	close(s.stopStream)
	s.stream.Close()
	<-s.streamDone

	s.owner.logger.Printf("Closing %s", s.resourceURL)
	_, _, err := doRequest(ctx, s.owner.httpClient, "DELETE", s.resourceURL, s.creds, nil)
	if err != nil {
		s.owner.logger.Printf("DELETE request to remote service failed: %s", err)
	}
	s.deliver(ConnectionClosedEvent{})
	return err
}
