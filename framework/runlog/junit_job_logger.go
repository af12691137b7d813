package runlog

import (
	"encoding/xml"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/custom-select/browser-test-harness/framework"
	"github.com/custom-select/browser-test-harness/framework/helpers"

	"code.cloudfoundry.org/clock"
)

// JUnitJobLogger collects job outcomes and writes them as a JUnit XML document in EndLog.
type JUnitJobLogger struct {
	filePath   string
	suiteName  string
	properties map[string]string
	clock      clock.Clock
	ids        []JobID // preserves the order that the jobs were run in
	jobs       map[int]jUnitJobStatus
	lock       sync.Mutex
}

type jUnitJobStatus struct {
	ok        bool
	err       error
	output    string
	startTime time.Time
	duration  time.Duration
}

// Struct definitions for the JUnit XML schema - see https://github.com/jstemmer/go-junit-report

type jUnitXMLDocument struct {
	XMLName xml.Name            `xml:"testsuites"`
	Suites  []jUnitXMLTestSuite `xml:"testsuite"`
}

type jUnitXMLTestSuite struct {
	XMLName    xml.Name           `xml:"testsuite"`
	Tests      int                `xml:"tests,attr"`
	Failures   int                `xml:"failures,attr"`
	Errors     int                `xml:"errors,attr"`
	Time       string             `xml:"time,attr"`
	Name       string             `xml:"name,attr"`
	Properties []jUnitXMLProperty `xml:"properties>property,omitempty"`
	TestCases  []jUnitXMLTestCase `xml:"testcase"`
}

type jUnitXMLTestCase struct {
	XMLName   xml.Name         `xml:"testcase"`
	Classname string           `xml:"classname,attr"`
	Name      string           `xml:"name,attr"`
	Time      string           `xml:"time,attr"`
	Failure   *jUnitXMLFailure `xml:"failure,omitempty"`
	Error     *jUnitXMLFailure `xml:"error,omitempty"`
}

type jUnitXMLProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type jUnitXMLFailure struct {
	Message  string `xml:"message,attr"`
	Type     string `xml:"type,attr"`
	Contents string `xml:",chardata"`
}

// NewJUnitJobLogger creates a JUnitJobLogger. The properties are written into the suite header
// in key order. If clk is nil, the real clock is used.
func NewJUnitJobLogger(
	filePath string,
	suiteName string,
	properties map[string]string,
	clk clock.Clock,
) *JUnitJobLogger {
	if clk == nil {
		clk = clock.NewClock()
	}
	return &JUnitJobLogger{
		filePath:   filePath,
		suiteName:  suiteName,
		properties: properties,
		clock:      clk,
		jobs:       make(map[int]jUnitJobStatus),
	}
}

func (j *JUnitJobLogger) JobStarted(id JobID) {
	j.lock.Lock()
	defer j.lock.Unlock()
	if _, ok := j.jobs[id.Index]; !ok {
		j.ids = append(j.ids, id)
	}
	j.jobs[id.Index] = jUnitJobStatus{startTime: j.clock.Now()}
}

func (j *JUnitJobLogger) JobFinished(id JobID, ok bool, output framework.CapturedOutput) {
	j.lock.Lock()
	defer j.lock.Unlock()
	status := j.jobs[id.Index]
	status.ok = ok
	status.output = output.ToString("")
	status.duration = j.clock.Since(status.startTime)
	j.jobs[id.Index] = status
}

func (j *JUnitJobLogger) JobAborted(id JobID, err error) {
	j.lock.Lock()
	defer j.lock.Unlock()
	status := j.jobs[id.Index]
	status.err = err
	status.duration = j.clock.Since(status.startTime)
	j.jobs[id.Index] = status
}

// Document builds the XML document without writing it.
func (j *JUnitJobLogger) Document() ([]byte, error) {
	j.lock.Lock()
	defer j.lock.Unlock()

	suite := jUnitXMLTestSuite{Name: j.suiteName}
	for _, key := range helpers.SortedKeys(j.properties) {
		suite.Properties = append(suite.Properties, jUnitXMLProperty{Name: key, Value: j.properties[key]})
	}
	labelCounts := make(map[string]int)
	for _, id := range j.ids {
		labelCounts[id.Label]++
	}
	total := time.Duration(0)
	for _, id := range j.ids {
		status := j.jobs[id.Index]
		suite.Tests++
		total += status.duration
		name := id.Label
		if labelCounts[id.Label] > 1 {
			// testcase names must stay distinct or report viewers merge them
			name = fmt.Sprintf("%s (#%d)", id.Label, id.Index+1)
		}
		testCase := jUnitXMLTestCase{
			Classname: j.suiteName,
			Name:      name,
			Time:      jUnitDurationString(status.duration),
		}
		switch {
		case status.err != nil:
			suite.Errors++
			testCase.Error = &jUnitXMLFailure{Message: status.err.Error(), Type: "transport"}
		case !status.ok:
			suite.Failures++
			testCase.Failure = &jUnitXMLFailure{Message: "remote tests reported failure", Contents: status.output}
		}
		suite.TestCases = append(suite.TestCases, testCase)
	}
	suite.Time = jUnitDurationString(total)

	bytes, err := xml.MarshalIndent(jUnitXMLDocument{Suites: []jUnitXMLTestSuite{suite}}, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(bytes, '\n'), nil
}

func (j *JUnitJobLogger) EndLog() error {
	fmt.Printf("Writing JUnit data to %s\n", j.filePath)
	bytes, err := j.Document()
	if err != nil {
		return err
	}
	return os.WriteFile(j.filePath, bytes, 0644) //nolint:gosec
}

func jUnitDurationString(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}
