package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/custom-select/browser-test-harness/framework/runlog"
)

const envGridURL = "SAUCE_GRID_URL"

type commandParams struct {
	configFile     string
	serviceURL     string
	filters        runlog.RegexFilters
	skipFile       string
	recordFailures string
	debug          bool
	debugAll       bool
	dryRun         bool
	jUnitFile      string
}

// Read parses the command line. Messages about bad arguments go to errOut.
func (c *commandParams) Read(args []string, lookupEnv func(string) (string, bool), errOut io.Writer) bool {
	defaultURL, _ := lookupEnv(envGridURL)

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.StringVar(&c.configFile, "config", "", "run configuration file (YAML or JSON)")
	fs.StringVar(&c.serviceURL, "url", defaultURL, "remote test service URL (default: $"+envGridURL+")")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select browser combinations to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select browser combinations not to run")
	fs.StringVar(&c.skipFile, "skip-from", "", "file of combination labels to skip, one per line")
	fs.StringVar(&c.recordFailures, "record-failures", "", "write the labels of failed combinations to a file")
	fs.BoolVar(&c.debug, "debug", false, "show captured output for failed combinations")
	fs.BoolVar(&c.debugAll, "debug-all", false, "show captured output for all combinations, and log HTTP traffic")
	fs.BoolVar(&c.dryRun, "dry-run", false, "run against an in-process mock grid instead of a real service")
	fs.StringVar(&c.jUnitFile, "junit", "", "write JUnit XML output to the specified path")

	if err := fs.Parse(args[1:]); err != nil {
		return false
	}
	if c.configFile == "" {
		fmt.Fprintln(errOut, "-config is required")
		fs.Usage()
		return false
	}
	if c.serviceURL == "" && !c.dryRun {
		fmt.Fprintf(errOut, "-url is required unless %s is set or -dry-run is used\n", envGridURL)
		fs.Usage()
		return false
	}
	return true
}
