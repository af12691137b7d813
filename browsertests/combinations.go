package browsertests

import (
	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
)

// JobDescriptor is one unit of remote work: the bundle run against one combination.
type JobDescriptor struct {
	Capability  CapabilityDescriptor
	Label       string
	Name        string
	CaptureHTML bool
	Build       string
}

// WireCapabilities is the flat capability object sent to the remote service: the original
// descriptor fields plus name, capture-html and build. The computed fields win over extra
// fields of the same name.
func (j JobDescriptor) WireCapabilities() map[string]ldvalue.Value {
	ret := j.Capability.Fields()
	ret["name"] = ldvalue.String(j.Name)
	ret["capture-html"] = ldvalue.Bool(j.CaptureHTML)
	ret["build"] = ldvalue.String(j.Build)
	return ret
}

// Expand turns validated options into one job per desired capability, in the same order.
func Expand(options RunOptions) []JobDescriptor {
	build := options.Build.Value()
	ret := make([]JobDescriptor, 0, len(options.DesiredCapabilities))
	for _, c := range options.DesiredCapabilities {
		label := c.Label()
		ret = append(ret, JobDescriptor{
			Capability:  c,
			Label:       label,
			Name:        options.Name + " " + label,
			CaptureHTML: true,
			Build:       build,
		})
	}
	return ret
}
