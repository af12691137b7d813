package browsertests

import (
	"context"
	"fmt"
	"os"

	"github.com/custom-select/browser-test-harness/framework/harness"
	"github.com/custom-select/browser-test-harness/framework/helpers"
	"github.com/custom-select/browser-test-harness/framework/runlog"
)

// State is a stage of the run lifecycle. StateIdle is the state before Run is called and is
// never reported.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateExpanding
	StateRunning
	StateFailed
	StateClosing
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateExpanding:
		return "expanding"
	case StateRunning:
		return "running"
	case StateFailed:
		return "failed"
	case StateClosing:
		return "closing"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Runner performs the whole lifecycle of a run. The zero value is ready to use.
type Runner struct {
	Validator Validator

	// ReadFile loads the bundle named by RunOptions.Src. Defaults to os.ReadFile.
	ReadFile func(string) ([]byte, error)

	// CoordinatorOptions configure the Coordinator that submits the jobs.
	CoordinatorOptions []CoordinatorOption

	// OnState, if set, is called on every lifecycle transition. StateRunning is reported once
	// per job.
	OnState func(State)
}

// Run is shorthand for Runner{}.Run.
func Run(ctx context.Context, options *RunOptions, service RemoteService, done func(error)) (RunSummary, error) {
	return Runner{}.Run(ctx, options, service, done)
}

// Run validates options, expands them into jobs, connects to service, runs every job in order
// and closes the connection.
//
// A *ConfigurationError is returned before anything is connected, and done is not called.
// Otherwise done is called exactly once, with nil or with the *TransportError that ended the
// run, and the same error is returned. The summary holds every result gathered, including
// those from before an abort. The connection is closed exactly once whenever it was opened.
func (r Runner) Run(
	ctx context.Context,
	options *RunOptions,
	service RemoteService,
	done func(error),
) (RunSummary, error) {
	r.enter(StateValidating)
	validated, err := r.Validator.Validate(options)
	if err != nil {
		return RunSummary{}, err
	}
	readFile := r.ReadFile
	if readFile == nil {
		readFile = os.ReadFile
	}
	bundle, err := readFile(validated.Src)
	if err != nil {
		return RunSummary{}, &ConfigurationError{
			Field:   "src",
			Message: fmt.Sprintf("cannot read `src` file %q: %s", validated.Src, err),
		}
	}
	log := validated.Log

	r.enter(StateExpanding)
	jobs := Expand(validated)
	summary := RunSummary{Build: validated.Build.Value()}

	finish := func(err error) (RunSummary, error) {
		r.enter(StateDone)
		if done != nil {
			done(err)
		}
		return summary, err
	}

	handle, err := service.Connect(ctx, harness.Credentials{User: validated.User, AccessKey: validated.AccessKey},
		LogObserver(log))
	if err != nil {
		r.enter(StateFailed)
		return finish(&TransportError{Op: "connect", Err: err})
	}

	coordinator := NewCoordinator(log, append(helpers.CopyOf(r.CoordinatorOptions), r.trackJobs())...)
	results, runErr := coordinator.Run(ctx, jobs, string(bundle), handle, validated.Options)
	summary.Results = results
	if runErr != nil {
		summary.Aborted = true
		r.enter(StateFailed)
	}
	log.Println("# All tests run completed")

	r.enter(StateClosing)
	// The connection is released even if ctx was cancelled.
	if closeErr := handle.Close(context.WithoutCancel(ctx)); closeErr != nil && runErr == nil {
		runErr = &TransportError{Op: "close", Err: closeErr}
	}
	return finish(runErr)
}

func (r Runner) enter(s State) {
	if r.OnState != nil {
		r.OnState(s)
	}
}

// trackJobs reports StateRunning as each job starts, by wrapping the configured job logger.
func (r Runner) trackJobs() CoordinatorOption {
	return helpers.ConfigOptionFunc[Coordinator](func(c *Coordinator) error {
		if r.OnState != nil {
			c.jobLogger = stateTrackingJobLogger{JobLogger: c.jobLogger, enter: r.enter}
		}
		return nil
	})
}

type stateTrackingJobLogger struct {
	runlog.JobLogger
	enter func(State)
}

func (l stateTrackingJobLogger) JobStarted(id runlog.JobID) {
	l.enter(StateRunning)
	l.JobLogger.JobStarted(id)
}
