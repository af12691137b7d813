package runlog

import (
	"strings"

	"github.com/fatih/color"
)

var tapPassColor = color.New(color.FgGreen)   //nolint:gochecknoglobals
var tapFailColor = color.New(color.FgRed)     //nolint:gochecknoglobals
var tapCommentColor = color.New(color.Faint)  //nolint:gochecknoglobals
var tapPlanColor = color.New(color.FgHiBlack) //nolint:gochecknoglobals

// ColorizeTAP highlights the assertion lines of TAP output. Colour is only applied when
// fatih/color has decided the output is a terminal; otherwise the text is returned unchanged.
func ColorizeTAP(raw string) string {
	if color.NoColor {
		return raw
	}
	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "not ok"):
			lines[i] = tapFailColor.Sprint(line)
		case strings.HasPrefix(trimmed, "ok"):
			lines[i] = tapPassColor.Sprint(line)
		case strings.HasPrefix(trimmed, "#"):
			lines[i] = tapCommentColor.Sprint(line)
		case strings.HasPrefix(trimmed, "1.."):
			lines[i] = tapPlanColor.Sprint(line)
		}
	}
	return strings.Join(lines, "\n")
}
