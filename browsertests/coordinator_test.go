package browsertests

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/custom-select/browser-test-harness/framework"
	"github.com/custom-select/browser-test-harness/framework/opt"
	"github.com/custom-select/browser-test-harness/framework/runlog"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeJobs() []JobDescriptor {
	return Expand(RunOptions{
		Name:  "proj",
		Build: opt.Some("b"),
		DesiredCapabilities: []CapabilityDescriptor{
			{Platform: "Windows 8.1", BrowserName: "chrome"},
			{Platform: "Windows 7", BrowserName: "firefox", Version: "40"},
			{Platform: "OS X 10.10", BrowserName: "safari"},
		},
	})
}

func openFakeHandle(t *testing.T, service *fakeService) *fakeHandle {
	handle, err := service.Connect(context.Background(), testCredentials(), LogObserver(framework.NullLogger()))
	require.NoError(t, err)
	return handle.(*fakeHandle)
}

func TestCoordinatorRunsJobsInOrder(t *testing.T) {
	service := newFakeService(map[string]fakeOutcome{"firefox": {ok: false, raw: "not ok 1"}})
	handle := openFakeHandle(t, service)
	var log framework.CapturingLogger
	options := ldvalue.ObjectBuild().Set("timeout", ldvalue.Int(60000)).Build()

	results, err := NewCoordinator(&log).Run(context.Background(), threeJobs(), "bundle", handle, options)
	require.NoError(t, err)

	assert.Equal(t, []string{"chrome", "firefox", "safari"}, handle.submittedBrowsers())
	require.Len(t, results, 3)
	assert.Equal(t, []bool{true, false, true}, []bool{results[0].OK, results[1].OK, results[2].OK})
	assert.Equal(t, "not ok 1", results[1].Raw)
	assert.Equal(t, "Windows 7 firefox 40", results[1].Job.Label)

	for _, p := range handle.submitted {
		assert.Equal(t, "bundle", p.Bundle)
		assert.Equal(t, options, p.Options)
	}

	messages := log.Output().Messages()
	assert.Equal(t, []string{
		"", "", "# Running Windows 8.1 chrome latest...", "",
		"", "", "# proj Windows 8.1 chrome latest", "", "ok 1 chrome", "",
	}, messages[:10])
	assert.Contains(t, messages, "# Running OS X 10.10 safari latest...")
}

func TestCoordinatorStopsOnTransportError(t *testing.T) {
	service := newFakeService(map[string]fakeOutcome{"firefox": {err: errBrowserUnavailable}})
	handle := openFakeHandle(t, service)

	results, err := NewCoordinator(nil).Run(context.Background(), threeJobs(), "bundle", handle, ldvalue.Null())

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "run", te.Op)
	assert.Equal(t, "Windows 7 firefox 40", te.Job)
	assert.ErrorIs(t, err, errBrowserUnavailable)
	assert.Equal(t, "run Windows 7 firefox 40: browser could not be provisioned", err.Error())

	require.Len(t, results, 1)
	assert.Equal(t, "Windows 8.1 chrome latest", results[0].Job.Label)
	assert.Equal(t, []string{"chrome", "firefox"}, handle.submittedBrowsers())
}

func TestCoordinatorReportsToJobLogger(t *testing.T) {
	service := newFakeService(map[string]fakeOutcome{
		"firefox": {ok: false, raw: "not ok 1"},
		"safari":  {err: errBrowserUnavailable},
	})
	handle := openFakeHandle(t, service)
	jobLogger := runlog.NewConsoleJobLogger(io.Discard)

	_, err := NewCoordinator(framework.NullLogger(), WithJobLogger(jobLogger)).
		Run(context.Background(), threeJobs(), "bundle", handle, ldvalue.Null())
	require.Error(t, err)

	records := jobLogger.Records()
	require.Len(t, records, 3)
	assert.Equal(t, "passed", records[0].Status())
	assert.Equal(t, "failed", records[1].Status())
	assert.Equal(t, []string{"", "", "# proj Windows 7 firefox 40", "", "not ok 1", ""},
		records[1].Output.Messages())
	assert.Equal(t, "aborted", records[2].Status())
}

func TestCoordinatorReportsCombinationsWithSameLabelSeparately(t *testing.T) {
	jobs := Expand(RunOptions{
		Name:  "proj",
		Build: opt.Some("b"),
		DesiredCapabilities: []CapabilityDescriptor{
			{BrowserName: "iphone", Version: "8.4", Extra: map[string]ldvalue.Value{"deviceName": ldvalue.String("iPhone 6")}},
			{BrowserName: "iphone", Version: "8.4", Extra: map[string]ldvalue.Value{"deviceName": ldvalue.String("iPad 2")}},
		},
	})
	handle := openFakeHandle(t, newFakeService(nil))
	console := runlog.NewConsoleJobLogger(io.Discard)
	junitPath := filepath.Join(t.TempDir(), "junit.xml")
	junit := runlog.NewJUnitJobLogger(junitPath, "suite", nil, nil)
	multi := &runlog.MultiJobLogger{Loggers: []runlog.JobLogger{console, junit}}

	results, err := NewCoordinator(nil, WithJobLogger(multi)).
		Run(context.Background(), jobs, "bundle", handle, ldvalue.Null())
	require.NoError(t, err)
	require.Len(t, results, 2)

	records := console.Records()
	require.Len(t, records, 2)
	assert.Equal(t, []int{0, 1}, []int{records[0].Index, records[1].Index})

	data, err := junit.Document()
	require.NoError(t, err)
	assert.Contains(t, string(data), `tests="2"`)
	assert.Contains(t, string(data), `name="iphone 8.4 (#1)"`)
	assert.Contains(t, string(data), `name="iphone 8.4 (#2)"`)
}
