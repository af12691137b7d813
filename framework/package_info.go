// Package framework contains the low-level infrastructure for driving a remote cross-browser
// test execution service. The base package contains shared types such as Logger; other
// components are in the subpackages harness (the service client), runlog (job reporting),
// opt and helpers.
//
// The general model is:
//
// 1. The harness talks to a single remote execution service, which exposes a root endpoint
// for querying its status (GET) and a sessions resource for opening a connection (POST).
//
// 2. Within a session the harness submits jobs, one per browser/platform combination, and
// receives lifecycle events over a server-sent event stream.
//
// 3. Each job produces a pass/fail result plus the raw protocol output, which the reporting
// components record.
//
// The domain-specific code that knows what a combination is lives in package browsertests.
package framework
