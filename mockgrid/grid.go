// Package mockgrid is an in-process fake of a remote cross-browser test execution service. It
// speaks the protocol defined in package servicedef and is used by the harness tests and by the
// -dry-run mode of the command-line tool.
package mockgrid

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/custom-select/browser-test-harness/framework"
	"github.com/custom-select/browser-test-harness/framework/helpers"
	"github.com/custom-select/browser-test-harness/servicedef"
	"github.com/custom-select/browser-test-harness/serviceinfo"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
)

const serviceName = "mockgrid"

// PassingTAP and FailingTAP are the raw outputs used when a result is not scripted explicitly.
const (
	PassingTAP = "TAP version 13\nok 1 renders\n\n1..1\n# tests 1\n# pass  1\n\n# ok\n"
	FailingTAP = "TAP version 13\nnot ok 1 renders\n  ---\n    operator: equal\n  ...\n\n1..1\n# tests 1\n# fail  1\n"
)

// Behavior describes how the grid answers a job.
type Behavior struct {
	// OK and Raw are returned as the job result.
	OK  bool
	Raw string

	// TransportFailure makes the job request fail with HTTP 502 instead of returning a result.
	TransportFailure bool
}

// Passing is the default behavior: the job succeeds with PassingTAP output.
func Passing() Behavior { return Behavior{OK: true, Raw: PassingTAP} }

// Failing makes the job complete normally with failed tests.
func Failing() Behavior { return Behavior{OK: false, Raw: FailingTAP} }

// Broken makes the job fail at the transport level.
func Broken() Behavior { return Behavior{TransportFailure: true} }

// Grid is the fake service. It implements http.Handler.
type Grid struct {
	user, accessKey string
	capabilities    framework.Capabilities
	byBrowser       map[string]Behavior
	defaultBehavior Behavior
	tunnelFailure   string
	sessions        map[string]*session
	jobs            []servicedef.RunJobParams
	sessionsOpened  int
	sessionsClosed  int
	handler         http.Handler
	loggers         ldlog.Loggers
	lock            sync.Mutex
}

// Option configures a Grid.
type Option helpers.ConfigOption[Grid]

// WithCredentials makes the grid reject requests that do not carry this basic-auth pair.
func WithCredentials(user, accessKey string) Option {
	return helpers.ConfigOptionFunc[Grid](func(g *Grid) error {
		g.user, g.accessKey = user, accessKey
		return nil
	})
}

// WithBrowserBehavior scripts the answer for every job whose browserName matches.
func WithBrowserBehavior(browserName string, b Behavior) Option {
	return helpers.ConfigOptionFunc[Grid](func(g *Grid) error {
		g.byBrowser[browserName] = b
		return nil
	})
}

// WithDefaultBehavior scripts the answer for jobs without a browser-specific behavior.
func WithDefaultBehavior(b Behavior) Option {
	return helpers.ConfigOptionFunc[Grid](func(g *Grid) error {
		g.defaultBehavior = b
		return nil
	})
}

// WithTunnelFailure makes every tunnel handshake end with a tunnel-error event carrying
// message instead of a tunnel event. Jobs still run.
func WithTunnelFailure(message string) Option {
	return helpers.ConfigOptionFunc[Grid](func(g *Grid) error {
		g.tunnelFailure = message
		return nil
	})
}

// WithCapabilities replaces the capability list reported by the status resource.
func WithCapabilities(capabilities ...string) Option {
	return helpers.ConfigOptionFunc[Grid](func(g *Grid) error {
		g.capabilities = capabilities
		return nil
	})
}

// New creates a Grid. Logging goes to loggers; pass ldlog.NewDisabledLoggers() for silence.
func New(loggers ldlog.Loggers, options ...Option) *Grid {
	g := &Grid{
		capabilities:    framework.Capabilities{servicedef.CapabilityTunnel, servicedef.CapabilityCaptureHTML},
		byBrowser:       make(map[string]Behavior),
		defaultBehavior: Passing(),
		sessions:        make(map[string]*session),
		loggers:         loggers,
	}
	_ = helpers.ApplyOptions(g, options...)

	router := mux.NewRouter()
	router.HandleFunc("/", g.serveStatus).Methods("GET")
	router.HandleFunc(servicedef.SessionsPath, g.serveCreateSession).Methods("POST")
	router.HandleFunc(servicedef.SessionsPath+"/{id}", g.serveDeleteSession).Methods("DELETE")
	router.HandleFunc(servicedef.SessionsPath+"/{id}"+servicedef.EventsPath, g.serveEvents).Methods("GET")
	router.HandleFunc(servicedef.SessionsPath+"/{id}"+servicedef.JobsPath, g.serveRunJob).Methods("POST")
	g.handler = router
	return g
}

func (g *Grid) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.handler.ServeHTTP(w, r)
}

// SubmittedJobs returns every job the grid has received, in arrival order, including jobs that
// were scripted to fail at the transport level.
func (g *Grid) SubmittedJobs() []servicedef.RunJobParams {
	g.lock.Lock()
	defer g.lock.Unlock()
	return helpers.CopyOf(g.jobs)
}

// SessionsOpened returns how many sessions have been created.
func (g *Grid) SessionsOpened() int {
	g.lock.Lock()
	defer g.lock.Unlock()
	return g.sessionsOpened
}

// SessionsClosed returns how many sessions have been deleted.
func (g *Grid) SessionsClosed() int {
	g.lock.Lock()
	defer g.lock.Unlock()
	return g.sessionsClosed
}

func (g *Grid) authorized(r *http.Request) bool {
	if g.user == "" {
		return true
	}
	user, key, ok := r.BasicAuth()
	return ok && user == g.user && key == g.accessKey
}

func (g *Grid) serveStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, servicedef.StatusRep{
		TestServiceInfoBase: serviceinfo.TestServiceInfoBase{
			Name:         serviceName,
			Capabilities: g.capabilities,
		},
	})
}

func (g *Grid) serveCreateSession(w http.ResponseWriter, r *http.Request) {
	if !g.authorized(r) {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	var params servicedef.CreateSessionParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id := uuid.NewString()
	s := newSession(id, params.Tunnel, g.tunnelFailure, g.loggers)

	g.lock.Lock()
	g.sessions[id] = s
	g.sessionsOpened++
	g.lock.Unlock()

	g.loggers.Infof("Opened session %s (tunnel: %t)", id, params.Tunnel)
	w.Header().Set("Location", servicedef.SessionsPath+"/"+id)
	w.WriteHeader(http.StatusCreated)
}

func (g *Grid) serveDeleteSession(w http.ResponseWriter, r *http.Request) {
	if !g.authorized(r) {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	s := g.takeSession(mux.Vars(r)["id"])
	if s == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	s.close()
	g.loggers.Infof("Closed session %s", s.id)
	w.WriteHeader(http.StatusNoContent)
}

func (g *Grid) serveEvents(w http.ResponseWriter, r *http.Request) {
	if !g.authorized(r) {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	s := g.findSession(mux.Vars(r)["id"])
	if s == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	s.streams.Handler(eventsChannel)(w, r)
}

func (g *Grid) serveRunJob(w http.ResponseWriter, r *http.Request) {
	if !g.authorized(r) {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	s := g.findSession(mux.Vars(r)["id"])
	if s == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	var params servicedef.RunJobParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	browserName := params.Capabilities["browserName"].StringValue()
	g.lock.Lock()
	g.jobs = append(g.jobs, params)
	behavior, ok := g.byBrowser[browserName]
	if !ok {
		behavior = g.defaultBehavior
	}
	g.lock.Unlock()

	jobID := uuid.NewString()
	g.loggers.Infof("Job %s: %s", jobID, params.Capabilities["name"].StringValue())
	if behavior.TransportFailure {
		g.loggers.Warnf("Job %s: simulating transport failure", jobID)
		http.Error(w, "browser could not be provisioned", http.StatusBadGateway)
		return
	}

	s.publish(servicedef.EventNameBrowser, servicedef.BrowserEventRep{JobID: jobID, BrowserName: browserName})
	s.publish(servicedef.EventNameResults, servicedef.ResultsEventRep{JobID: jobID, OK: behavior.OK})
	writeJSON(w, http.StatusOK, servicedef.JobResultRep{OK: behavior.OK, Raw: behavior.Raw})
}

func (g *Grid) findSession(id string) *session {
	g.lock.Lock()
	defer g.lock.Unlock()
	return g.sessions[id]
}

func (g *Grid) takeSession(id string) *session {
	g.lock.Lock()
	defer g.lock.Unlock()
	s := g.sessions[id]
	if s != nil {
		delete(g.sessions, id)
		g.sessionsClosed++
	}
	return s
}

func writeJSON(w http.ResponseWriter, status int, value interface{}) {
	data, _ := json.Marshal(value)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
