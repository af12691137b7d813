package runlog

import (
	"fmt"
	"io"
	"regexp"
	"strings"
)

// RegexFilters decides which browser combinations to run, by matching against their labels.
type RegexFilters struct {
	MustMatch    LabelPatternList
	MustNotMatch LabelPatternList
}

func (r RegexFilters) Match(label string) bool {
	return (!r.MustMatch.IsDefined() || r.MustMatch.AnyMatch(label)) &&
		!r.MustNotMatch.AnyMatch(label)
}

// IsDefined is true if any pattern was given.
func (r RegexFilters) IsDefined() bool {
	return r.MustMatch.IsDefined() || r.MustNotMatch.IsDefined()
}

// LabelPatternList is a flag.Value that accumulates one regex per use of the flag.
type LabelPatternList []*regexp.Regexp

func (l LabelPatternList) String() string {
	ss := make([]string, 0, len(l))
	for _, p := range l {
		ss = append(ss, `"`+p.String()+`"`)
	}
	return strings.Join(ss, " or ")
}

// Set is called by the command line parser
func (l *LabelPatternList) Set(value string) error {
	rx, err := regexp.Compile(value)
	if err != nil {
		return fmt.Errorf("invalid regex: %w", err)
	}
	*l = append(*l, rx)
	return nil
}

func (l LabelPatternList) IsDefined() bool {
	return len(l) != 0
}

func (l LabelPatternList) AnyMatch(label string) bool {
	for _, p := range l {
		if p.MatchString(label) {
			return true
		}
	}
	return false
}

func PrintFilterDescription(w io.Writer, filters RegexFilters) {
	if !filters.IsDefined() {
		return
	}
	fmt.Fprintln(w, "Some browser combinations will be skipped based on the filter criteria for this run:")
	if filters.MustMatch.IsDefined() {
		fmt.Fprintf(w, "  skip any not matching %s\n", filters.MustMatch)
	}
	if filters.MustNotMatch.IsDefined() {
		fmt.Fprintf(w, "  skip any matching %s\n", filters.MustNotMatch)
	}
	fmt.Fprintln(w)
}
