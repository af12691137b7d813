package browsertests

import (
	"context"

	"github.com/custom-select/browser-test-harness/framework/harness"
	"github.com/custom-select/browser-test-harness/servicedef"
)

// ServiceHandle is an open connection to the remote test service.
type ServiceHandle interface {
	// RunJob submits one job and blocks until the service reports its result. An error means
	// the job could not be run at all; failing tests are reported through JobResultRep.OK.
	RunJob(ctx context.Context, params servicedef.RunJobParams) (servicedef.JobResultRep, error)

	// Close ends the connection.
	Close(ctx context.Context) error
}

// RemoteService opens connections to the remote test service.
type RemoteService interface {
	Connect(ctx context.Context, creds harness.Credentials, observer harness.EventObserver) (ServiceHandle, error)
}

type harnessService struct {
	harness *harness.TestHarness
	runID   string
}

// NewRemoteService adapts a TestHarness to RemoteService. The runID is passed to the service
// when the session is opened so that its logs can be correlated with ours; it may be empty.
func NewRemoteService(h *harness.TestHarness, runID string) RemoteService {
	return harnessService{harness: h, runID: runID}
}

func (s harnessService) Connect(
	ctx context.Context,
	creds harness.Credentials,
	observer harness.EventObserver,
) (ServiceHandle, error) {
	session, err := s.harness.Connect(ctx, creds, servicedef.CreateSessionParams{RunID: s.runID}, observer)
	if err != nil {
		return nil, err
	}
	return session, nil
}
