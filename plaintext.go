package tex2yaml

import (
	"regexp"
	"strings"
)

// mathSymbols maps math-mode commands to readable text. Order matters:
// longer commands are replaced before shorter prefixes.
var mathSymbols = []struct{ cmd, text string }{
	{`$\to$`, " to "},
	{`\to`, "->"},
	{`\rightarrow`, "->"},
	{`\leftarrow`, "<-"},
	{`\leq`, "<="},
	{`\geq`, ">="},
	{`\neq`, "!="},
	{`\sim`, "~"},
	{`\approx`, "≈"},
	{`\texttimes`, "×"},
	{`\times`, "×"},
	{`\textonehalf`, "half"},
}

// escapedChars maps escape sequences to the characters they stand for.
var escapedChars = []struct{ seq, text string }{
	{`\%`, "%"},
	{`\&`, "&"},
	{`\#`, "#"},
	{`\_`, "_"},
	{`\ `, " "},
	{`\;`, " "},
	{`\,`, " "},
	{`\:`, " "},
	{`\!`, ""},
}

// UnwrapCommand removes every \command{...} in s, keeping the wrapped
// content. Nested braces inside the argument are preserved.
func UnwrapCommand(s, command string) string {
	return ReplaceCommand(s, command, "", "")
}

// ReplaceCommand rewrites every \command{content} in s as
// prefix + content + suffix, using balanced-brace matching so nested
// commands inside the argument survive.
func ReplaceCommand(s, command, prefix, suffix string) string {
	tok := `\` + command + `{`
	for {
		pos := strings.Index(s, tok)
		if pos < 0 {
			return s
		}
		content, end, err := ExtractBalanced(s, pos+len(tok)-1)
		if err != nil {
			return s
		}
		s = s[:pos] + prefix + content + suffix + s[end:]
	}
}

// StripFormatting removes standalone commands (those that take no
// argument) together with any trailing whitespace.
func StripFormatting(s string, commands []string) string {
	for _, cmd := range commands {
		re := regexp.MustCompile(`\\` + regexp.QuoteMeta(cmd) + `\s*`)
		s = re.ReplaceAllString(s, "")
	}
	return s
}

// Plaintext strips all markup from s, producing a plain rendition
// suitable for search and display. Formatting wrappers are unwrapped,
// escape sequences become their literal characters, math symbols become
// readable text, and remaining commands are dropped.
func Plaintext(s string) string {
	if s == "" {
		return ""
	}

	for _, w := range formattingWrappers {
		s = UnwrapCommand(s, w)
	}

	s = colorWithTextRe.ReplaceAllString(s, "$1")
	s = colorAloneRe.ReplaceAllString(s, "")

	s = StripFormatting(s, standaloneCommands)
	s = spacingCommandRe.ReplaceAllString(s, "")

	s = strings.ReplaceAll(s, `\\`, " ")

	// Escaped dollars must survive the math-delimiter strip below.
	const dollar = "\x00$\x00"
	s = strings.ReplaceAll(s, `\$`, dollar)

	for _, m := range mathSymbols {
		s = strings.ReplaceAll(s, m.cmd, m.text)
	}
	for _, e := range escapedChars {
		s = strings.ReplaceAll(s, e.seq, e.text)
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, dollar, "$")

	s = anyCommandBraced.ReplaceAllString(s, "")
	s = anyCommandBare.ReplaceAllString(s, "")

	// Option brackets like [leftmargin=0pt] are leftovers of stripped
	// environments; content brackets like [1] stay.
	s = optionParamsRe.ReplaceAllString(s, "")

	// Escaped braces become literal, grouping braces vanish.
	const lb, rb = "\x00LB\x00", "\x00RB\x00"
	s = strings.ReplaceAll(s, `\{`, lb)
	s = strings.ReplaceAll(s, `\}`, rb)
	s = strings.ReplaceAll(s, "{", "")
	s = strings.ReplaceAll(s, "}", "")
	s = strings.ReplaceAll(s, lb, "{")
	s = strings.ReplaceAll(s, rb, "}")

	s = multiSpaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// escapeReplacer escapes characters with syntactic meaning. Backslash
// must be first so later escapes are not re-escaped.
var escapeReplacer = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`%`, `\%`,
	`$`, `\$`,
	`&`, `\&`,
	`_`, `\_`,
	`#`, `\#`,
	`{`, `\{`,
	`}`, `\}`,
	`~`, `\textasciitilde{}`,
	`^`, `\textasciicircum{}`,
)

// Escape converts plain text to markup-safe text by escaping special
// characters. It is the inverse direction of Plaintext for simple
// content.
func Escape(s string) string {
	return escapeReplacer.Replace(s)
}
