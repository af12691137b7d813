package browsertests

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func resultsOf(oks ...bool) []JobResult {
	ret := make([]JobResult, 0, len(oks))
	for _, ok := range oks {
		ret = append(ret, JobResult{OK: ok})
	}
	return ret
}

func TestRunSummaryAggregates(t *testing.T) {
	for _, p := range []struct {
		desc         string
		summary      RunSummary
		anyOK, allOK bool
		failures     int
	}{
		{"empty", RunSummary{}, false, false, 0},
		{"all pass", RunSummary{Results: resultsOf(true, true)}, true, true, 0},
		{"mixed", RunSummary{Results: resultsOf(true, false)}, true, false, 1},
		{"all fail", RunSummary{Results: resultsOf(false, false)}, false, false, 2},
		{"aborted after a pass", RunSummary{Results: resultsOf(true), Aborted: true}, true, false, 0},
	} {
		t.Run(p.desc, func(t *testing.T) {
			assert.Equal(t, p.anyOK, p.summary.AnyOK())
			assert.Equal(t, p.allOK, p.summary.AllOK())
			assert.Len(t, p.summary.Failures(), p.failures)
		})
	}
}
