// Package servicedef contains definitions for the REST protocol spoken between the harness and
// a remote cross-browser test execution service.
//
// The package is used by the harness client, but can also be imported by any Go-based service
// or fake that implements the protocol, such as package mockgrid.
package servicedef
