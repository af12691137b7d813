package runlog

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type regexFilterTestParams struct {
	run         []string
	skip        []string
	label       string
	shouldMatch bool
}

func TestRegexFilters(t *testing.T) {
	allParams := []regexFilterTestParams{
		// matches everything by default
		{nil, nil, "", true},
		{nil, nil, "Windows 8.1 chrome latest", true},

		// --run
		{[]string{"chrome"}, nil, "Windows 8.1 chrome latest", true},
		{[]string{"chrome"}, nil, "OS X 10.10 safari latest", false},
		{[]string{"^iphone"}, nil, "iphone 8.4", true},
		{[]string{"^iphone"}, nil, "OS X 10.10 iphone 8.4", false},
		{[]string{"chrome", "safari"}, nil, "OS X 10.10 safari latest", true},
		{[]string{"chrome", "safari"}, nil, "Windows 7 firefox 40", false},

		// --skip
		{nil, []string{"internet explorer"}, "Windows 7 internet explorer 9", false},
		{nil, []string{"internet explorer"}, "Windows 7 firefox 40", true},

		// --run and --skip
		{[]string{"Windows"}, []string{" 9$"}, "Windows 7 internet explorer 9", false},
		{[]string{"Windows"}, []string{" 9$"}, "Windows 7 internet explorer 10", true},
		{[]string{"Windows"}, []string{" 9$"}, "Linux chrome 9", false},
	}
	for _, p := range allParams {
		t.Run(fmt.Sprintf("%+v", p), func(t *testing.T) {
			var filters RegexFilters
			for _, s := range p.run {
				require.NoError(t, filters.MustMatch.Set(s))
			}
			for _, s := range p.skip {
				require.NoError(t, filters.MustNotMatch.Set(s))
			}
			assert.Equal(t, p.shouldMatch, filters.Match(p.label))
		})
	}
}

func TestInvalidPatternIsRejected(t *testing.T) {
	var l LabelPatternList
	err := l.Set("chrome(")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid regex")
	assert.False(t, l.IsDefined())
}

func TestPrintFilterDescription(t *testing.T) {
	t.Run("no filters", func(t *testing.T) {
		var buf bytes.Buffer
		PrintFilterDescription(&buf, RegexFilters{})
		assert.Equal(t, "", buf.String())
	})

	t.Run("both filters", func(t *testing.T) {
		var filters RegexFilters
		require.NoError(t, filters.MustMatch.Set("chrome"))
		require.NoError(t, filters.MustMatch.Set("firefox"))
		require.NoError(t, filters.MustNotMatch.Set("Windows XP"))
		var buf bytes.Buffer
		PrintFilterDescription(&buf, filters)
		assert.Contains(t, buf.String(), `skip any not matching "chrome" or "firefox"`)
		assert.Contains(t, buf.String(), `skip any matching "Windows XP"`)
	})
}
