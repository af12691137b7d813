package browsertests

// JobResult is the outcome the remote service reported for one job.
type JobResult struct {
	Job JobDescriptor
	OK  bool
	Raw string
}

// RunSummary holds the results of a run in submission order. If the run was aborted by a
// transport error, Results holds only the jobs that completed before it.
type RunSummary struct {
	Build   string
	Results []JobResult
	Aborted bool
}

// AnyOK is true if at least one job passed. This is the lenient aggregate the command line
// uses for its exit status; see AllOK for the strict one.
func (s RunSummary) AnyOK() bool {
	for _, r := range s.Results {
		if r.OK {
			return true
		}
	}
	return false
}

// AllOK is true if the run completed and every job passed.
func (s RunSummary) AllOK() bool {
	if s.Aborted || len(s.Results) == 0 {
		return false
	}
	for _, r := range s.Results {
		if !r.OK {
			return false
		}
	}
	return true
}

func (s RunSummary) Failures() []JobResult {
	var ret []JobResult
	for _, r := range s.Results {
		if !r.OK {
			ret = append(ret, r)
		}
	}
	return ret
}
