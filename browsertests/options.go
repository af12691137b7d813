package browsertests

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/custom-select/browser-test-harness/framework"
	"github.com/custom-select/browser-test-harness/framework/helpers"
	"github.com/custom-select/browser-test-harness/framework/opt"

	"code.cloudfoundry.org/clock"
	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
)

const (
	// EnvUser is consulted when RunOptions.User is empty.
	EnvUser = "SAUCE_USERNAME"
	// EnvAccessKey is consulted when RunOptions.AccessKey is empty.
	EnvAccessKey = "SAUCE_ACCESS_KEY"

	DefaultLimit = 3
)

// RunOptions is the caller-supplied configuration for a run.
type RunOptions struct {
	Name                string                 `json:"name"`
	User                string                 `json:"user"`
	AccessKey           string                 `json:"accessKey"`
	Src                 string                 `json:"src"`
	DesiredCapabilities []CapabilityDescriptor `json:"desiredCapabilities"`

	// Build identifies the run on the remote dashboard. Defaults to the current Unix time in
	// milliseconds.
	Build opt.Maybe[string] `json:"build"`

	// Limit is reserved for a bounded-parallelism strategy; jobs currently run one at a time
	// whatever its value.
	Limit opt.Maybe[int] `json:"limit"`

	// Options is forwarded verbatim with every job, e.g. {"timeout": 60000}.
	Options ldvalue.Value `json:"options"`

	// Log receives the run log. Defaults to standard output.
	Log framework.Logger `json:"-"`
}

// CapabilityDescriptor describes one browser/platform combination. Fields other than the three
// known ones are kept in Extra and forwarded to the remote service untouched.
type CapabilityDescriptor struct {
	Platform    string
	BrowserName string
	Version     string
	Extra       map[string]ldvalue.Value
}

const (
	capabilityPlatform    = "platform"
	capabilityBrowserName = "browserName"
	capabilityVersion     = "version"
)

// Label is the human-readable name of the combination: "<platform> <browserName> <version>",
// with the platform left out when absent and "latest" standing in for a missing version.
func (c CapabilityDescriptor) Label() string {
	label := c.BrowserName + " " + helpers.IfElse(c.Version == "", "latest", c.Version)
	if c.Platform != "" {
		label = c.Platform + " " + label
	}
	return label
}

// Fields returns the descriptor as the flat set of fields it was read from. Absent platform
// and version are left out.
func (c CapabilityDescriptor) Fields() map[string]ldvalue.Value {
	ret := make(map[string]ldvalue.Value, len(c.Extra)+3)
	for k, v := range c.Extra {
		ret[k] = v
	}
	if c.Platform != "" {
		ret[capabilityPlatform] = ldvalue.String(c.Platform)
	}
	ret[capabilityBrowserName] = ldvalue.String(c.BrowserName)
	if c.Version != "" {
		ret[capabilityVersion] = ldvalue.String(c.Version)
	}
	return ret
}

func (c CapabilityDescriptor) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Fields())
}

func (c *CapabilityDescriptor) UnmarshalJSON(data []byte) error {
	var fields map[string]ldvalue.Value
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return errors.New("capability descriptor must be an object")
	}
	var ret CapabilityDescriptor
	for name, value := range fields {
		switch name {
		case capabilityPlatform, capabilityBrowserName, capabilityVersion:
			s, err := scalarString(name, value)
			if err != nil {
				return err
			}
			switch name {
			case capabilityPlatform:
				ret.Platform = s
			case capabilityBrowserName:
				ret.BrowserName = s
			default:
				ret.Version = s
			}
		default:
			if ret.Extra == nil {
				ret.Extra = make(map[string]ldvalue.Value)
			}
			ret.Extra[name] = value
		}
	}
	*c = ret
	return nil
}

// scalarString accepts numbers for fields like version, which run files often write as 8.4.
func scalarString(name string, value ldvalue.Value) (string, error) {
	switch value.Type() {
	case ldvalue.NullType:
		return "", nil
	case ldvalue.StringType:
		return value.StringValue(), nil
	case ldvalue.NumberType:
		if value.IsInt() {
			return strconv.Itoa(value.IntValue()), nil
		}
		return strconv.FormatFloat(value.Float64Value(), 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("capability field %q must be a string, not %s", name, value.Type())
	}
}

// Validator checks RunOptions and fills in defaults. The zero value reads the real environment
// and the real clock.
type Validator struct {
	Clock     clock.Clock
	LookupEnv func(string) (string, bool)
}

// Validate is shorthand for Validator{}.Validate.
func Validate(options *RunOptions) (RunOptions, error) {
	return Validator{}.Validate(options)
}

// Validate checks that every required option is present, in the order name, user, accessKey,
// src, desiredCapabilities, and returns a *ConfigurationError for the first that is not. User
// and AccessKey may come from the environment instead. On success it returns a copy with
// defaults applied; the value passed in is never modified.
func (v Validator) Validate(options *RunOptions) (RunOptions, error) {
	if options == nil {
		return RunOptions{}, &ConfigurationError{Message: "must supply an options object"}
	}
	ret := *options
	ret.DesiredCapabilities = helpers.CopyOf(options.DesiredCapabilities)

	if ret.Name == "" {
		return RunOptions{}, &ConfigurationError{Field: "name", Message: "must supply a project `name` option"}
	}
	if ret.User == "" {
		ret.User = v.lookupEnv(EnvUser)
	}
	if ret.User == "" {
		return RunOptions{}, &ConfigurationError{Field: "user", Message: "must supply a saucelabs `user` option"}
	}
	if ret.AccessKey == "" {
		ret.AccessKey = v.lookupEnv(EnvAccessKey)
	}
	if ret.AccessKey == "" {
		return RunOptions{}, &ConfigurationError{
			Field:   "accessKey",
			Message: "must supply a saucelabs `accessKey` option",
		}
	}
	if ret.Src == "" {
		return RunOptions{}, &ConfigurationError{Field: "src", Message: "must supply a `src` file option"}
	}
	if len(ret.DesiredCapabilities) == 0 {
		return RunOptions{}, &ConfigurationError{
			Field:   "desiredCapabilities",
			Message: "must supply a `desiredCapabilities` array option",
		}
	}

	ret.Build = opt.Some(opt.NonZero(ret.Build.Value()).OrElseGet(func() string {
		return strconv.FormatInt(v.now().UnixMilli(), 10)
	}))
	ret.Limit = opt.Some(ret.Limit.OrElse(DefaultLimit))
	if ret.Log == nil {
		ret.Log = framework.StdoutLogger()
	}
	return ret, nil
}

func (v Validator) now() time.Time {
	clk := v.Clock
	if clk == nil {
		clk = clock.NewClock()
	}
	return clk.Now()
}

func (v Validator) lookupEnv(name string) string {
	lookup := v.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	value, _ := lookup(name)
	return value
}
