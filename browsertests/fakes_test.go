package browsertests

import (
	"context"
	"errors"
	"sync"

	"github.com/custom-select/browser-test-harness/framework/harness"
	"github.com/custom-select/browser-test-harness/servicedef"
)

var errBrowserUnavailable = errors.New("browser could not be provisioned")

type fakeOutcome struct {
	ok  bool
	raw string
	err error
}

// fakeService is an in-memory RemoteService. Outcomes are looked up by browser name; browsers
// with no scripted outcome pass.
type fakeService struct {
	outcomes   map[string]fakeOutcome
	connectErr error
	closeErr   error

	lock     sync.Mutex
	connects []harness.Credentials
	handles  []*fakeHandle
}

type fakeHandle struct {
	owner    *fakeService
	observer harness.EventObserver

	lock      sync.Mutex
	submitted []servicedef.RunJobParams
	closes    int
}

func newFakeService(outcomes map[string]fakeOutcome) *fakeService {
	return &fakeService{outcomes: outcomes}
}

func (f *fakeService) Connect(
	ctx context.Context,
	creds harness.Credentials,
	observer harness.EventObserver,
) (ServiceHandle, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.connects = append(f.connects, creds)
	if f.connectErr != nil {
		return nil, f.connectErr
	}
	observer.HandleEvent(harness.TunnelConnectingEvent{})
	observer.HandleEvent(harness.TunnelEstablishedEvent{TunnelID: "t1"})
	h := &fakeHandle{owner: f, observer: observer}
	f.handles = append(f.handles, h)
	return h, nil
}

func (f *fakeService) connectCount() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return len(f.connects)
}

func (f *fakeService) onlyHandle() *fakeHandle {
	f.lock.Lock()
	defer f.lock.Unlock()
	if len(f.handles) != 1 {
		return nil
	}
	return f.handles[0]
}

func (h *fakeHandle) RunJob(ctx context.Context, params servicedef.RunJobParams) (servicedef.JobResultRep, error) {
	h.lock.Lock()
	h.submitted = append(h.submitted, params)
	h.lock.Unlock()

	if err := ctx.Err(); err != nil {
		return servicedef.JobResultRep{}, err
	}
	browser := params.Capabilities["browserName"].StringValue()
	outcome, ok := h.owner.outcomes[browser]
	if !ok {
		outcome = fakeOutcome{ok: true, raw: "ok 1 " + browser}
	}
	if outcome.err != nil {
		return servicedef.JobResultRep{}, outcome.err
	}
	h.observer.HandleEvent(harness.BrowserConnectedEvent{BrowserName: browser})
	h.observer.HandleEvent(harness.ResultsReceivedEvent{OK: outcome.ok})
	return servicedef.JobResultRep{OK: outcome.ok, Raw: outcome.raw}, nil
}

func (h *fakeHandle) Close(ctx context.Context) error {
	h.lock.Lock()
	h.closes++
	h.lock.Unlock()
	h.observer.HandleEvent(harness.ConnectionClosedEvent{})
	return h.owner.closeErr
}

func (h *fakeHandle) submittedBrowsers() []string {
	h.lock.Lock()
	defer h.lock.Unlock()
	ret := make([]string, 0, len(h.submitted))
	for _, p := range h.submitted {
		ret = append(ret, p.Capabilities["browserName"].StringValue())
	}
	return ret
}

func (h *fakeHandle) closeCount() int {
	h.lock.Lock()
	defer h.lock.Unlock()
	return h.closes
}
