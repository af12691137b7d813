package browsertests

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/custom-select/browser-test-harness/framework/harness"
	"github.com/custom-select/browser-test-harness/mockgrid"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"github.com/launchdarkly/go-sdk-common/v3/ldlogtest"
	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withMockGrid(t *testing.T, options []mockgrid.Option, action func(RemoteService, *mockgrid.Grid)) {
	testLog := ldlogtest.NewMockLog()
	defer testLog.DumpIfTestFailed(t)

	options = append(options, mockgrid.WithCredentials("user", "key"))
	grid := mockgrid.New(testLog.Loggers, options...)
	httphelpers.WithServer(grid, func(server *httptest.Server) {
		h, err := harness.NewTestHarness(server.URL, time.Second, testLog.Loggers.ForLevel(ldlog.Debug), nil)
		require.NoError(t, err)
		action(NewRemoteService(h, "run-1"), grid)
	})
}

func TestRunAgainstMockGrid(t *testing.T) {
	options := []mockgrid.Option{mockgrid.WithBrowserBehavior("firefox", mockgrid.Failing())}
	withMockGrid(t, options, func(service RemoteService, grid *mockgrid.Grid) {
		var rec runRecorder
		runOptions := rec.options("chrome", "firefox")
		runOptions.Options = ldvalue.ObjectBuild().Set("timeout", ldvalue.Int(60000)).Build()

		summary, err := rec.runner().Run(context.Background(), runOptions, service, rec.done)
		require.NoError(t, err)

		require.Len(t, summary.Results, 2)
		assert.True(t, summary.Results[0].OK)
		assert.Equal(t, mockgrid.PassingTAP, summary.Results[0].Raw)
		assert.False(t, summary.Results[1].OK)
		assert.True(t, summary.AnyOK())

		jobs := grid.SubmittedJobs()
		require.Len(t, jobs, 2)
		assert.Equal(t, "custom-select Windows 10 chrome latest", jobs[0].Capabilities["name"].StringValue())
		assert.Equal(t, "1438430400000", jobs[0].Capabilities["build"].StringValue())
		assert.True(t, jobs[0].Capabilities["capture-html"].BoolValue())
		assert.Equal(t, "require('tape')", jobs[0].Bundle)
		assert.Equal(t, 60000, jobs[1].Options.GetByKey("timeout").IntValue())

		assert.Equal(t, 1, grid.SessionsOpened())
		assert.Equal(t, 1, grid.SessionsClosed())
		assert.Equal(t, []error{nil}, rec.doneCalls)
		messages := rec.log.Output().Messages()
		assert.Equal(t, "# The runner has been closed", messages[len(messages)-1])
	})
}

func TestRunAgainstMockGridWithBrokenBrowser(t *testing.T) {
	options := []mockgrid.Option{mockgrid.WithBrowserBehavior("firefox", mockgrid.Broken())}
	withMockGrid(t, options, func(service RemoteService, grid *mockgrid.Grid) {
		var rec runRecorder

		summary, err := rec.runner().Run(context.Background(), rec.options("chrome", "firefox", "safari"),
			service, rec.done)

		var te *TransportError
		require.True(t, errors.As(err, &te))
		assert.Equal(t, "Windows 10 firefox latest", te.Job)
		assert.Contains(t, err.Error(), "error 502")
		assert.Len(t, summary.Results, 1)
		assert.Len(t, grid.SubmittedJobs(), 2)
		assert.Equal(t, 1, grid.SessionsClosed())
	})
}

func TestRunAgainstMockGridWithWrongCredentials(t *testing.T) {
	withMockGrid(t, nil, func(service RemoteService, grid *mockgrid.Grid) {
		var rec runRecorder
		options := rec.options("chrome")
		options.AccessKey = "wrong"

		_, err := rec.runner().Run(context.Background(), options, service, rec.done)

		var te *TransportError
		require.True(t, errors.As(err, &te))
		assert.Equal(t, "connect", te.Op)
		assert.Contains(t, err.Error(), "error 401")
		assert.Equal(t, 0, grid.SessionsOpened())
		assert.Len(t, grid.SubmittedJobs(), 0)
	})
}
