package browsertests

import (
	"context"

	"github.com/custom-select/browser-test-harness/framework"
	"github.com/custom-select/browser-test-harness/framework/helpers"
	"github.com/custom-select/browser-test-harness/framework/runlog"
	"github.com/custom-select/browser-test-harness/servicedef"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
)

// Coordinator submits jobs to the remote service one at a time, in order.
type Coordinator struct {
	log       framework.Logger
	jobLogger runlog.JobLogger
	colorize  bool
}

type CoordinatorOption helpers.ConfigOption[Coordinator]

// WithJobLogger reports each job's outcome to jobLogger as well as to the run log.
func WithJobLogger(jobLogger runlog.JobLogger) CoordinatorOption {
	return helpers.ConfigOptionFunc[Coordinator](func(c *Coordinator) error {
		c.jobLogger = jobLogger
		return nil
	})
}

// WithColorizedOutput highlights the raw TAP output of each job in the run log.
func WithColorizedOutput(colorize bool) CoordinatorOption {
	return helpers.ConfigOptionFunc[Coordinator](func(c *Coordinator) error {
		c.colorize = colorize
		return nil
	})
}

func NewCoordinator(log framework.Logger, options ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		log:       log,
		jobLogger: runlog.NullJobLogger(),
	}
	if c.log == nil {
		c.log = framework.NullLogger()
	}
	_ = helpers.ApplyOptions(c, options...)
	return c
}

// Run submits each job and waits for its result before starting the next. If a job cannot be
// submitted, Run stops and returns the results gathered so far together with a
// *TransportError; the remaining jobs are never sent.
func (c *Coordinator) Run(
	ctx context.Context,
	jobs []JobDescriptor,
	bundle string,
	handle ServiceHandle,
	execOptions ldvalue.Value,
) ([]JobResult, error) {
	results := make([]JobResult, 0, len(jobs))
	for i, job := range jobs {
		id := runlog.JobID{Index: i, Label: job.Label}
		c.log.Println()
		c.log.Println()
		c.log.Printf("# Running %s...", job.Label)
		c.log.Println()

		c.jobLogger.JobStarted(id)
		rep, err := handle.RunJob(ctx, servicedef.RunJobParams{
			Bundle:       bundle,
			Capabilities: job.WireCapabilities(),
			Options:      execOptions,
		})
		if err != nil {
			c.jobLogger.JobAborted(id, err)
			return results, &TransportError{Op: "run", Job: job.Label, Err: err}
		}

		var captured framework.CapturingLogger
		out := framework.MultiLogger(c.log, &captured)
		out.Println()
		out.Println()
		out.Printf("# %s", job.Name)
		out.Println()
		out.Println(helpers.IfElse(c.colorize, runlog.ColorizeTAP(rep.Raw), rep.Raw))
		out.Println()

		results = append(results, JobResult{Job: job, OK: rep.OK, Raw: rep.Raw})
		c.jobLogger.JobFinished(id, rep.OK, captured.Output())
	}
	return results, nil
}
