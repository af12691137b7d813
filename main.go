package main

import (
	"bufio"
	"context"
	_ "embed" // this is required in order for go:embed to work
	"errors"
	"fmt"
	"log"
	"net/http/httptest"
	"os"
	"os/signal"
	"regexp"
	"strings"
	"time"

	"github.com/custom-select/browser-test-harness/browsertests"
	"github.com/custom-select/browser-test-harness/data"
	"github.com/custom-select/browser-test-harness/framework"
	"github.com/custom-select/browser-test-harness/framework/harness"
	"github.com/custom-select/browser-test-harness/framework/runlog"
	"github.com/custom-select/browser-test-harness/mockgrid"
	"github.com/custom-select/browser-test-harness/servicedef"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
)

const statusQueryTimeout = time.Second * 10

//go:embed VERSION
var versionString string // comes from the VERSION file which we update for each release

func main() {
	fmt.Printf("browser-test-harness v%s\n", strings.TrimSpace(versionString))

	var params commandParams
	if !params.Read(os.Args, os.LookupEnv, os.Stderr) {
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	summary, err := run(ctx, params)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if !summary.AnyOK() {
		os.Exit(1)
	}
}

func run(ctx context.Context, params commandParams) (*browsertests.RunSummary, error) {
	if params.skipFile != "" {
		if err := loadSuppressions(&params); err != nil {
			return nil, err
		}
	}

	var options browsertests.RunOptions
	if err := data.LoadFile(params.configFile, os.LookupEnv, &options); err != nil {
		return nil, err
	}
	runlog.PrintFilterDescription(os.Stdout, params.filters)
	options.DesiredCapabilities = selectCapabilities(options.DesiredCapabilities, params.filters)

	mainDebugLogger := framework.NullLogger()
	if params.debugAll {
		mainDebugLogger = framework.LoggerWithPrefix(log.New(os.Stdout, "", log.LstdFlags), "[harness] ")
	}

	serviceURL := params.serviceURL
	if params.dryRun {
		grid := mockgrid.New(mockGridLoggers(params.debugAll))
		server := httptest.NewServer(grid)
		defer server.Close()
		serviceURL = server.URL
	}

	h, err := harness.NewTestHarness(
		serviceURL,
		statusQueryTimeout,
		mainDebugLogger,
		os.Stdout,
	)
	if err != nil {
		return nil, err
	}

	if !h.TestServiceInfo().Capabilities.Has(servicedef.CapabilityCaptureHTML) {
		fmt.Println("The remote service does not report the capture-html capability; HTML snapshots will be missing")
	}

	consoleLogger := runlog.NewConsoleJobLogger(os.Stdout)
	consoleLogger.DebugOutputOnFailure = params.debug || params.debugAll
	consoleLogger.DebugOutputOnSuccess = params.debugAll
	var jobLogger runlog.JobLogger = consoleLogger
	if params.jUnitFile != "" {
		jobLogger = &runlog.MultiJobLogger{Loggers: []runlog.JobLogger{
			consoleLogger,
			runlog.NewJUnitJobLogger(
				params.jUnitFile,
				fmt.Sprintf("Cross-browser tests: %s", options.Name),
				map[string]string{
					"tests.service.info":        string(h.TestServiceInfo().FullData),
					"tests.filter.mustMatch":    params.filters.MustMatch.String(),
					"tests.filter.mustNotMatch": params.filters.MustNotMatch.String(),
				},
				nil,
			),
		}}
	}

	runner := browsertests.Runner{
		CoordinatorOptions: []browsertests.CoordinatorOption{
			browsertests.WithJobLogger(jobLogger),
			browsertests.WithColorizedOutput(!color.NoColor),
		},
	}
	runID := uuid.NewString()
	mainDebugLogger.Printf("Run ID: %s", runID)
	summary, err := runner.Run(ctx, &options, browsertests.NewRemoteService(h, runID), nil)
	var configErr *browsertests.ConfigurationError
	if errors.As(err, &configErr) {
		return nil, err
	}

	fmt.Println()
	if logErr := jobLogger.EndLog(); logErr != nil && err == nil {
		err = fmt.Errorf("error writing log: %w", logErr)
	}

	if params.recordFailures != "" {
		if recordErr := recordFailures(params.recordFailures, summary, err); recordErr != nil && err == nil {
			err = recordErr
		}
	}

	return &summary, err
}

// selectCapabilities keeps the combinations whose labels pass the filters, in their original
// order.
func selectCapabilities(
	all []browsertests.CapabilityDescriptor,
	filters runlog.RegexFilters,
) []browsertests.CapabilityDescriptor {
	if !filters.IsDefined() {
		return all
	}
	ret := make([]browsertests.CapabilityDescriptor, 0, len(all))
	for _, c := range all {
		if filters.Match(c.Label()) {
			ret = append(ret, c)
		}
	}
	return ret
}

func mockGridLoggers(debug bool) ldlog.Loggers {
	loggers := ldlog.NewDefaultLoggers()
	if debug {
		loggers.SetMinLevel(ldlog.Debug)
	} else {
		loggers.SetMinLevel(ldlog.Warn)
	}
	loggers.SetPrefix("[mockgrid]")
	return loggers
}

// recordFailures writes one label per line: every combination whose tests failed, then the
// combination whose submission aborted the run, if any.
func recordFailures(path string, summary browsertests.RunSummary, runErr error) error {
	f, err := os.Create(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("cannot create failure file: %w", err)
	}
	for _, r := range summary.Failures() {
		fmt.Fprintln(f, r.Job.Label)
	}
	var transportErr *browsertests.TransportError
	if errors.As(runErr, &transportErr) && transportErr.Job != "" {
		fmt.Fprintln(f, transportErr.Job)
	}
	return f.Close()
}

func loadSuppressions(params *commandParams) error {
	file, err := os.Open(params.skipFile)
	if err != nil {
		return fmt.Errorf("cannot open provided suppression file: %w", err)
	}
	defer func() { _ = file.Close() }()
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		// Ignore blank lines
		if strings.TrimSpace(line) == "" {
			continue
		}
		escaped := "^" + regexp.QuoteMeta(line) + "$"
		if err := params.filters.MustNotMatch.Set(escaped); err != nil {
			return fmt.Errorf("cannot parse suppression: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("while processing suppression file: %w", err)
	}
	return nil
}
