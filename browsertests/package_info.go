// Package browsertests runs one test bundle against a list of browser/platform combinations on a
// remote cross-browser test service, strictly one combination at a time.
//
// The flow of a run is: Validate the RunOptions, Expand the capability list into jobs, connect
// to the service, let a Coordinator submit each job in order, then close the connection. Run
// performs the whole lifecycle.
package browsertests
