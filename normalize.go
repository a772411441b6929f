package tex2yaml

import (
	"regexp"
	"strings"
)

// LimitBlankLines caps runs of blank lines at max. Lines containing
// only whitespace count as blank and are emptied.
func LimitBlankLines(s string, max int) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blanks := 0
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			blanks++
			if blanks > max {
				continue
			}
			out = append(out, "")
			continue
		}
		blanks = 0
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// Normalization rules, applied in order by NormalizeSource.
var (
	vspaceAfterSwitchRe  = regexp.MustCompile(`(\\switchcolumn)\n+\\vspace\{[^}]+\}\n+`)
	vspaceBeforeSwitchRe = regexp.MustCompile(`\n+\\vspace\{[^}]+\}\n+(\\switchcolumn)`)
	blanksBeforeSetupRe  = regexp.MustCompile(`\n\n+(\\renewcommand|\\setlength|\\deflen)`)
	blanksAfterSetupRe   = regexp.MustCompile(`((?:\\renewcommand|\\setlength|\\deflen)\{[^}]+\}\{[^}]*\})\n\n+`)
	blanksBeforeItemRe   = regexp.MustCompile(`\n+([ \t]*\\item)`)
	blanksBeforeEndRe    = regexp.MustCompile(`\n+([ \t]*\\end\{[^}]+\})`)
	blanksAfterEndRe     = regexp.MustCompile(`([ \t]*\\end\{[^}]+\})\n+`)
	blanksBeforeSectRe   = regexp.MustCompile(`\n+(\\section\*)`)
	bracketBraceGapRe    = regexp.MustCompile(`\][ \t]+\{`)
	commentOnlyLineRe    = regexp.MustCompile(`(?m)^[ \t]*%[ \t]*$`)
)

// NormalizeSource applies structural whitespace conventions to raw
// document source so that hand-edited files parse and diff cleanly:
// tabs become spaces, column-boundary \vspace commands are dropped,
// items and environment closings get a fixed number of blank lines
// around them, and comment-only lines disappear.
func NormalizeSource(src string) string {
	s := strings.ReplaceAll(src, "\t", strings.Repeat(" ", 8))

	s = vspaceAfterSwitchRe.ReplaceAllString(s, "$1\n\n")
	s = vspaceBeforeSwitchRe.ReplaceAllString(s, "\n\n$1")

	s = blanksBeforeSetupRe.ReplaceAllString(s, "\n$1")
	s = blanksAfterSetupRe.ReplaceAllString(s, "$1\n")

	s = blanksBeforeItemRe.ReplaceAllString(s, "\n\n$1")
	s = blanksBeforeEndRe.ReplaceAllString(s, "\n\n$1")
	s = blanksAfterEndRe.ReplaceAllString(s, "$1\n\n\n")
	s = blanksBeforeSectRe.ReplaceAllString(s, "\n\n\n$1")

	s = bracketBraceGapRe.ReplaceAllString(s, "]{")
	s = commentOnlyLineRe.ReplaceAllString(s, "")

	return LimitBlankLines(s, 2)
}
