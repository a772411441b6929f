package tex2yaml

import (
	"fmt"
	"regexp"
	"strings"
)

// ExtractBalanced reads a brace-balanced block from s starting at open,
// which must be the index of a '{'. It returns the content between the
// braces and the index just past the closing brace.
func ExtractBalanced(s string, open int) (string, int, error) {
	if open >= len(s) || s[open] != '{' {
		return "", 0, fmt.Errorf("%w: no opening brace at offset %d", ErrUnbalancedDelimiter, open)
	}
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[open+1 : i], i + 1, nil
			}
		}
	}
	return "", 0, fmt.Errorf("%w: unclosed brace at offset %d", ErrUnbalancedDelimiter, open)
}

// Environment is a matched \begin{...}...\end{...} block.
type Environment struct {
	Name     string   // environment name as written in the source
	Optional []string // optional [..] arguments after \begin{name}
	Params   []string // required {..} arguments after \begin{name}
	Body     string   // content between begin and end, arguments excluded
	Start    int      // offset of the backslash in \begin
	End      int      // offset just past \end{name}
}

// ExtractEnvironment finds the first \begin{name}...\end{name} block in s.
// numParams required brace arguments and up to numOptional bracket
// arguments are consumed after the \begin and returned separately from
// the body. Nested environments of the same name are handled.
func ExtractEnvironment(s, name string, numParams, numOptional int) (Environment, error) {
	beginTok := `\begin{` + name + `}`
	endTok := `\end{` + name + `}`

	start := strings.Index(s, beginTok)
	if start < 0 {
		return Environment{}, fmt.Errorf("%w: %s", ErrEnvironmentNotFound, name)
	}

	pos := start + len(beginTok)
	env := Environment{Name: name, Start: start}

	for i := 0; i < numOptional; i++ {
		rest := s[pos:]
		trimmed := strings.TrimLeft(rest, " \t\n")
		if !strings.HasPrefix(trimmed, "[") {
			break
		}
		pos += len(rest) - len(trimmed)
		close := strings.IndexByte(s[pos:], ']')
		if close < 0 {
			return Environment{}, fmt.Errorf("%w: unclosed bracket in %s arguments", ErrUnbalancedDelimiter, name)
		}
		env.Optional = append(env.Optional, s[pos+1:pos+close])
		pos += close + 1
	}

	for i := 0; i < numParams; i++ {
		rest := s[pos:]
		trimmed := strings.TrimLeft(rest, " \t\n")
		pos += len(rest) - len(trimmed)
		arg, next, err := ExtractBalanced(s, pos)
		if err != nil {
			return Environment{}, fmt.Errorf("argument %d of %s: %w", i+1, name, err)
		}
		env.Params = append(env.Params, arg)
		pos = next
	}

	bodyStart := pos
	depth := 1
	for pos < len(s) {
		nb := strings.Index(s[pos:], beginTok)
		ne := strings.Index(s[pos:], endTok)
		if ne < 0 {
			return Environment{}, fmt.Errorf("%w: missing %s", ErrUnbalancedDelimiter, endTok)
		}
		if nb >= 0 && nb < ne {
			depth++
			pos += nb + len(beginTok)
			continue
		}
		depth--
		if depth == 0 {
			env.Body = s[bodyStart : pos+ne]
			env.End = pos + ne + len(endTok)
			return env, nil
		}
		pos += ne + len(endTok)
	}
	return Environment{}, fmt.Errorf("%w: missing %s", ErrUnbalancedDelimiter, endTok)
}

// ExtractAllEnvironments returns every top-level environment whose name
// matches namePattern, in source order. Environments nested inside an
// already-matched block are not reported.
func ExtractAllEnvironments(s string, namePattern *regexp.Regexp) ([]Environment, error) {
	beginRe := regexp.MustCompile(`\\begin\{(` + namePattern.String() + `)\}`)
	var envs []Environment
	offset := 0
	for {
		loc := beginRe.FindStringSubmatchIndex(s[offset:])
		if loc == nil {
			return envs, nil
		}
		name := s[offset+loc[2] : offset+loc[3]]
		env, err := ExtractEnvironment(s[offset:], name, 0, 0)
		if err != nil {
			return nil, err
		}
		env.Start += offset
		env.End += offset
		envs = append(envs, env)
		offset = env.End
	}
}

// SkipArguments advances past any [..] and {..} argument groups at the
// start of s (ignoring leading whitespace) and returns the remainder.
// Used to separate environment arguments from the item list that follows.
func SkipArguments(s string, numParams, numOptional int) (string, error) {
	pos := 0
	for i := 0; i < numOptional; i++ {
		trimmed := strings.TrimLeft(s[pos:], " \t\n")
		if !strings.HasPrefix(trimmed, "[") {
			break
		}
		pos = len(s) - len(trimmed)
		close := strings.IndexByte(s[pos:], ']')
		if close < 0 {
			return "", fmt.Errorf("%w: unclosed bracket", ErrUnbalancedDelimiter)
		}
		pos += close + 1
	}
	for i := 0; i < numParams; i++ {
		trimmed := strings.TrimLeft(s[pos:], " \t\n")
		pos = len(s) - len(trimmed)
		_, next, err := ExtractBalanced(s, pos)
		if err != nil {
			return "", err
		}
		pos = next
	}
	return s[pos:], nil
}

// Item is one \item entry of an environment body.
type Item struct {
	Marker string // item command name, e.g. "itemi", without backslash
	Raw    string // item text as written, marker excluded
}

// ParseItems splits body into items introduced by markerRe. markerRe must
// contain a named group "marker" capturing the command name. Text before
// the first marker is ignored.
func ParseItems(body string, markerRe *regexp.Regexp) ([]Item, error) {
	idx := markerRe.FindAllStringSubmatchIndex(body, -1)
	if len(idx) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrMarkerNotFound, markerRe.String())
	}
	markerGroup := markerRe.SubexpIndex("marker")
	if markerGroup < 0 {
		return nil, fmt.Errorf("%w: marker pattern has no marker group", ErrMarkerNotFound)
	}
	items := make([]Item, 0, len(idx))
	for i, m := range idx {
		end := len(body)
		if i+1 < len(idx) {
			end = idx[i+1][0]
		}
		items = append(items, Item{
			Marker: body[m[2*markerGroup]:m[2*markerGroup+1]],
			Raw:    strings.TrimSpace(body[m[1]:end]),
		})
	}
	return items, nil
}

// ParseItemsComplex splits body into \item entries whose text may span
// multiple lines and contain nested braces or bracket arguments. Each
// item may carry an optional [..] label, returned in Marker.
func ParseItemsComplex(body string) ([]Item, error) {
	const tok = `\item`
	var items []Item
	pos := 0
	for {
		start := strings.Index(body[pos:], tok)
		if start < 0 {
			break
		}
		pos += start + len(tok)
		marker := ""
		rest := strings.TrimLeft(body[pos:], " \t")
		if strings.HasPrefix(rest, "[") {
			pos = len(body) - len(rest)
			// The label may contain braced groups, so ] only closes at
			// brace depth zero.
			depth := 0
			end := -1
			for i := pos + 1; i < len(body); i++ {
				switch body[i] {
				case '{':
					depth++
				case '}':
					depth--
				case ']':
					if depth == 0 {
						end = i
					}
				}
				if end >= 0 {
					break
				}
			}
			if end < 0 {
				return nil, fmt.Errorf("%w: unclosed item label", ErrUnbalancedDelimiter)
			}
			marker = body[pos+1 : end]
			pos = end + 1
		}
		next := strings.Index(body[pos:], tok)
		end := len(body)
		if next >= 0 {
			end = pos + next
		}
		items = append(items, Item{
			Marker: marker,
			Raw:    strings.TrimSpace(body[pos:end]),
		})
		pos = end
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: \\item", ErrMarkerNotFound)
	}
	return items, nil
}

// ExtractBraceArguments reads n consecutive brace-balanced arguments
// starting at offset start, skipping whitespace between them.
func ExtractBraceArguments(s string, start, n int) ([]string, int, error) {
	args := make([]string, 0, n)
	pos := start
	for i := 0; i < n; i++ {
		trimmed := strings.TrimLeft(s[pos:], " \t\n")
		pos = len(s) - len(trimmed)
		arg, next, err := ExtractBalanced(s, pos)
		if err != nil {
			return nil, 0, err
		}
		args = append(args, arg)
		pos = next
	}
	return args, pos, nil
}
