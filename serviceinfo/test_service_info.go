// Package serviceinfo provides a data model for information reported by a remote execution
// service.
package serviceinfo

import "github.com/custom-select/browser-test-harness/framework"

// TestServiceInfo is status information returned by the remote service from the initial status query.
type TestServiceInfo struct {
	TestServiceInfoBase

	// FullData is the entire response received from the service, which might contain additional
	// properties beyond TestServiceInfoBase.
	FullData []byte
}

// TestServiceInfoBase is the basic set of properties that all execution services must provide.
type TestServiceInfoBase struct {
	// Name identifies the service, such as "saucelabs" or "mockgrid".
	Name string `json:"name"`

	// Capabilities is a list of strings representing optional features of the service.
	Capabilities framework.Capabilities `json:"capabilities"`
}

func Empty() TestServiceInfo {
	return TestServiceInfo{}
}
