package framework

// Capabilities is a list of strings representing optional features that a remote execution
// service says it supports, such as "tunnel". The meanings of these strings are defined in
// package servicedef.
type Capabilities []string

// Has returns true if the specified string appears in the list.
func (cs Capabilities) Has(name string) bool {
	for _, c := range cs {
		if c == name {
			return true
		}
	}
	return false
}
