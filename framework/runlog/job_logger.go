package runlog

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/custom-select/browser-test-harness/framework"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
)

var consoleJobErrorColor = color.New(color.FgYellow) //nolint:gochecknoglobals
var consoleJobFailedColor = color.New(color.FgRed)   //nolint:gochecknoglobals
var consoleDebugOutputColor = color.New(color.Faint) //nolint:gochecknoglobals
var anyJobPassedColor = color.New(color.FgGreen)     //nolint:gochecknoglobals

// JobID identifies one job of a run. Labels are not unique: two combinations that differ only
// in extra capability fields share a label, so loggers key their records by Index.
type JobID struct {
	Index int
	Label string
}

func (id JobID) String() string {
	return id.Label
}

// JobLogger receives status information about each job of a run.
type JobLogger interface {
	JobStarted(id JobID)
	JobFinished(id JobID, ok bool, output framework.CapturedOutput)
	JobAborted(id JobID, err error)
	EndLog() error
}

// JobRecord is what a logger remembers about one job.
type JobRecord struct {
	JobID
	OK     bool
	Err    error
	Output framework.CapturedOutput
}

// Status returns "passed", "failed" or "aborted".
func (r JobRecord) Status() string {
	switch {
	case r.Err != nil:
		return "aborted"
	case r.OK:
		return "passed"
	default:
		return "failed"
	}
}

// jobRecords keeps records in the order jobs were started.
type jobRecords struct {
	records []JobRecord
	lock    sync.Mutex
}

func (j *jobRecords) update(id JobID, fn func(*JobRecord)) {
	j.lock.Lock()
	defer j.lock.Unlock()
	for i := range j.records {
		if j.records[i].Index == id.Index {
			fn(&j.records[i])
			return
		}
	}
	j.records = append(j.records, JobRecord{JobID: id})
	fn(&j.records[len(j.records)-1])
}

func (j *jobRecords) snapshot() []JobRecord {
	j.lock.Lock()
	defer j.lock.Unlock()
	return append([]JobRecord(nil), j.records...)
}

type nullJobLogger struct{}

func (nullJobLogger) JobStarted(JobID)                                  {}
func (nullJobLogger) JobFinished(JobID, bool, framework.CapturedOutput) {}
func (nullJobLogger) JobAborted(JobID, error)                           {}
func (nullJobLogger) EndLog() error                                     { return nil }

// NullJobLogger returns a JobLogger that does nothing.
func NullJobLogger() JobLogger { return nullJobLogger{} }

// ConsoleJobLogger writes failures as they happen and a summary table at the end.
type ConsoleJobLogger struct {
	output               io.Writer
	DebugOutputOnFailure bool
	DebugOutputOnSuccess bool
	jobs                 jobRecords
}

// NewConsoleJobLogger creates a ConsoleJobLogger writing to output, or to standard output if
// output is nil.
func NewConsoleJobLogger(output io.Writer) *ConsoleJobLogger {
	if output == nil {
		output = os.Stdout
	}
	return &ConsoleJobLogger{output: output}
}

func (c *ConsoleJobLogger) JobStarted(id JobID) {
	c.jobs.update(id, func(*JobRecord) {})
}

func (c *ConsoleJobLogger) JobFinished(id JobID, ok bool, output framework.CapturedOutput) {
	c.jobs.update(id, func(r *JobRecord) {
		r.OK = ok
		r.Output = output
	})
	if !ok {
		_, _ = consoleJobFailedColor.Fprintf(c.output, "  FAILED: %s\n", id)
	}
	if len(output) > 0 && ((!ok && c.DebugOutputOnFailure) || (ok && c.DebugOutputOnSuccess)) {
		_, _ = consoleDebugOutputColor.Fprintln(c.output, output.ToString("    DEBUG "))
	}
}

func (c *ConsoleJobLogger) JobAborted(id JobID, err error) {
	c.jobs.update(id, func(r *JobRecord) { r.Err = err })
	_, _ = consoleJobFailedColor.Fprintf(c.output, "  ABORTED: %s\n", id)
	for _, line := range strings.Split(err.Error(), "\n") {
		_, _ = consoleJobErrorColor.Fprintf(c.output, "    %s\n", line)
	}
}

// Records returns what the logger has seen so far, in start order.
func (c *ConsoleJobLogger) Records() []JobRecord {
	return c.jobs.snapshot()
}

// EndLog prints the summary table.
func (c *ConsoleJobLogger) EndLog() error {
	PrintResults(c.output, c.jobs.snapshot())
	return nil
}

// PrintResults renders a table with one row per job, followed by a one-line verdict.
func PrintResults(w io.Writer, records []JobRecord) {
	passed, failed, aborted := 0, 0, 0
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Combination", "Result"})
	for i, r := range records {
		switch r.Status() {
		case "passed":
			passed++
		case "failed":
			failed++
		default:
			aborted++
		}
		t.AppendRow(table.Row{i + 1, r.Label, r.Status()})
	}
	t.AppendFooter(table.Row{"", "Total", fmt.Sprintf("%d passed, %d failed, %d aborted", passed, failed, aborted)})
	t.Render()

	if passed == len(records) && len(records) > 0 {
		_, _ = anyJobPassedColor.Fprintln(w, "All combinations passed")
	} else if failed+aborted > 0 {
		_, _ = consoleJobFailedColor.Fprintf(w, "FAILED COMBINATIONS (%d):\n", failed+aborted)
		for _, r := range records {
			if r.Status() != "passed" {
				_, _ = consoleJobFailedColor.Fprintf(w, "  * %s\n", r.Label)
			}
		}
	}
}

// MultiJobLogger forwards every call to each of its loggers.
type MultiJobLogger struct {
	Loggers []JobLogger
}

func (m *MultiJobLogger) JobStarted(id JobID) {
	for _, l := range m.Loggers {
		l.JobStarted(id)
	}
}

func (m *MultiJobLogger) JobFinished(id JobID, ok bool, output framework.CapturedOutput) {
	for _, l := range m.Loggers {
		l.JobFinished(id, ok, output)
	}
}

func (m *MultiJobLogger) JobAborted(id JobID, err error) {
	for _, l := range m.Loggers {
		l.JobAborted(id, err)
	}
}

// EndLog calls EndLog on every logger and returns the first error.
func (m *MultiJobLogger) EndLog() error {
	var ret error
	for _, l := range m.Loggers {
		if err := l.EndLog(); err != nil && ret == nil {
			ret = err
		}
	}
	return ret
}
