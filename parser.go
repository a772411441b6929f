package tex2yaml

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// ParseError reports a failed extraction step with enough context to
// find the offending source.
type ParseError struct {
	Type    string // content type being parsed
	Op      string // name of the failing operation
	Snippet string // leading slice of the source that failed
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s (op %s): %v; source: %q", e.Type, e.Op, e.Err, e.Snippet)
}

func (e *ParseError) Unwrap() error { return e.Err }

const snippetLen = 120

func snippet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > snippetLen {
		return s[:snippetLen] + "..."
	}
	return s
}

// opPatterns caches compiled config regexps across engine runs.
var opPatterns sync.Map

func compileOpPattern(pat string) (*regexp.Regexp, error) {
	if cached, ok := opPatterns.Load(pat); ok {
		return cached.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(pat)
	if err != nil {
		return nil, fmt.Errorf("pattern %q: %w", pat, err)
	}
	opPatterns.Store(pat, re)
	return re, nil
}

// engine interprets parse configs against markup source.
type engine struct {
	registry *Registry
}

// run executes every operation of cfg against latex and returns the
// accumulated result map.
func (e *engine) run(latex string, cfg *ParseConfig) (map[string]any, error) {
	result := map[string]any{}
	opCtx := map[string]any{}

	for i := range cfg.Operations {
		op := &cfg.Operations[i]
		if err := e.apply(latex, op, result, opCtx); err != nil {
			var pe *ParseError
			if errors.As(err, &pe) {
				return nil, err
			}
			return nil, &ParseError{Type: cfg.Type, Op: op.Name, Snippet: snippet(latex), Err: err}
		}
	}
	return result, nil
}

func (e *engine) apply(latex string, op *Op, result, opCtx map[string]any) error {
	switch op.Kind {
	case OpSetLiteral:
		return SetNested(result, op.OutputPath, op.Value)
	case OpExtractEnv:
		return e.extractEnvironment(latex, op, result, opCtx)
	case OpSplit:
		return e.split(latex, op, result, opCtx)
	case OpParseItems:
		return e.parseItems(latex, op, result, opCtx)
	case OpRecursiveParse:
		return e.recursiveParse(latex, op, result, opCtx)
	case OpExtractBraced:
		return e.extractBraced(latex, op, result, opCtx)
	case OpExtractRegex:
		return e.extractRegex(latex, op, result, opCtx)
	case OpPlaintext:
		if v := GetString(result, op.SourcePath); v != "" {
			return SetNested(result, op.OutputPath, Plaintext(v))
		}
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownOperation, op.Kind)
	}
}

// sourceContent resolves an operation's input: a named intermediate
// value, a path into the result so far, or the full source.
func sourceContent(latex string, op *Op, result, opCtx map[string]any) string {
	if op.Source != "" {
		if v, ok := opCtx[op.Source].(string); ok {
			return v
		}
		return latex
	}
	if op.SourcePath != "" {
		return GetString(result, op.SourcePath)
	}
	return latex
}

func (e *engine) extractEnvironment(latex string, op *Op, result, opCtx map[string]any) error {
	env, err := ExtractEnvironment(latex, op.EnvName, op.NumParams, op.NumOptional)
	if err != nil {
		return err
	}
	for i, path := range op.ParamPaths {
		if i < len(env.Params) {
			if err := SetNested(result, path, env.Params[i]); err != nil {
				return err
			}
		}
	}
	for i, path := range op.OptionalPaths {
		if i < len(env.Optional) {
			if err := SetNested(result, path, env.Optional[i]); err != nil {
				return err
			}
		}
	}
	if op.OutputContext != "" {
		opCtx[op.OutputContext] = env.Body
	}
	if op.OutputPath != "" {
		return SetNested(result, op.OutputPath, env.Body)
	}
	return nil
}

func (e *engine) split(latex string, op *Op, result, opCtx map[string]any) error {
	content := sourceContent(latex, op, result, opCtx)

	re, err := compileOpPattern(op.Delimiter)
	if err != nil {
		return err
	}

	var rawParts []string
	if op.KeepDelimiter {
		// Each part starts at a delimiter match; text before the first
		// match forms a leading part.
		locs := re.FindAllStringIndex(content, -1)
		prev := 0
		for _, loc := range locs {
			rawParts = append(rawParts, content[prev:loc[0]])
			prev = loc[0]
		}
		rawParts = append(rawParts, content[prev:])
	} else {
		rawParts = re.Split(content, -1)
	}

	parts := make([]string, 0, len(rawParts))
	for _, p := range rawParts {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}

	if len(op.OutputPaths) > 0 {
		for i, path := range op.OutputPaths {
			if i >= len(parts) {
				break
			}
			if err := SetNested(result, path, parts[i]); err != nil {
				return err
			}
		}
		return nil
	}
	if op.OutputContext != "" {
		opCtx[op.OutputContext] = parts
	}
	if op.OutputPath != "" {
		list := make([]any, len(parts))
		for i, p := range parts {
			list[i] = p
		}
		return SetNested(result, op.OutputPath, list)
	}
	return nil
}

func (e *engine) parseItems(latex string, op *Op, result, opCtx map[string]any) error {
	content := sourceContent(latex, op, result, opCtx)

	re, err := compileOpPattern(op.MarkerPattern)
	if err != nil {
		return err
	}
	items, err := ParseItems(content, re)
	if err != nil {
		return err
	}

	entries := make([]any, len(items))
	for i, it := range items {
		entries[i] = ContentItem(it.Marker, it.Raw)
	}
	return SetNested(result, op.OutputPath, entries)
}

func (e *engine) recursiveParse(latex string, op *Op, result, opCtx map[string]any) error {
	src := op.Source
	if src == "" {
		src = "environment_content"
	}
	input, ok := opCtx[src]
	if !ok {
		input = latex
	}

	nested, err := e.registry.Config(op.ConfigName)
	if err != nil {
		return err
	}

	switch in := input.(type) {
	case []string:
		// Pre-split chunks: parse each directly.
		results := make([]any, 0, len(in))
		for _, chunk := range in {
			r, err := e.run(chunk, nested)
			if err != nil {
				return err
			}
			results = append(results, r)
		}
		if len(results) > 0 {
			return SetNested(result, op.OutputPath, results)
		}
		return nil

	case string:
		pattern := op.EnvPattern
		if pattern == "" {
			pattern = `itemize[A-Za-z]*`
		}
		re, err := compileOpPattern(pattern)
		if err != nil {
			return err
		}
		envs, err := ExtractAllEnvironments(in, re)
		if err != nil {
			return err
		}
		if len(envs) == 0 {
			return nil
		}

		// Remove matched environments so later operations on the same
		// content see only what remains.
		cleaned := in
		for i := len(envs) - 1; i >= 0; i-- {
			cleaned = cleaned[:envs[i].Start] + cleaned[envs[i].End:]
		}
		opCtx["environment_content"] = cleaned

		results := make([]any, 0, len(envs))
		for _, env := range envs {
			r, err := e.run(in[env.Start:env.End], specializeConfig(nested, env.Name))
			if err != nil {
				return err
			}
			md, ok := r["metadata"].(map[string]any)
			if !ok {
				md = map[string]any{}
				r["metadata"] = md
			}
			md["environment_type"] = env.Name
			results = append(results, r)
		}
		return SetNested(result, op.OutputPath, results)

	default:
		return fmt.Errorf("recursive_parse source %q has unexpected shape", src)
	}
}

// specializeConfig substitutes the environment-name placeholder so one
// config serves every environment a pattern matches.
func specializeConfig(cfg *ParseConfig, envName string) *ParseConfig {
	needs := false
	for i := range cfg.Operations {
		if cfg.Operations[i].EnvName == envNamePlaceholder {
			needs = true
			break
		}
	}
	if !needs {
		return cfg
	}
	out := &ParseConfig{Type: cfg.Type, Operations: make([]Op, len(cfg.Operations))}
	copy(out.Operations, cfg.Operations)
	for i := range out.Operations {
		if out.Operations[i].EnvName == envNamePlaceholder {
			out.Operations[i].EnvName = envName
		}
	}
	return out
}

func (e *engine) extractBraced(latex string, op *Op, result, opCtx map[string]any) error {
	re, err := compileOpPattern(op.Pattern)
	if err != nil {
		return err
	}
	m := re.FindStringSubmatchIndex(latex)
	if m == nil {
		if op.Optional {
			return nil
		}
		return fmt.Errorf("%w: %s", ErrPatternMismatch, op.Pattern)
	}

	for _, name := range re.SubexpNames() {
		path, ok := op.GroupPaths[name]
		if !ok {
			continue
		}
		idx := re.SubexpIndex(name)
		if idx < 0 || m[2*idx] < 0 {
			continue
		}
		if err := SetNested(result, path, latex[m[2*idx]:m[2*idx+1]]); err != nil {
			return err
		}
	}

	// The pattern consumed the opening brace, so the scan starts at
	// depth one.
	depth := 1
	start := m[1]
	end := -1
	for i := start; i < len(latex); i++ {
		switch latex[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				end = i
			}
		}
		if end >= 0 {
			break
		}
	}
	if end < 0 {
		return fmt.Errorf("%w: no closing brace after pattern", ErrUnbalancedDelimiter)
	}
	content := latex[start:end]

	if op.OutputContext != "" {
		opCtx[op.OutputContext] = content
	}
	if op.OutputPath != "" {
		return SetNested(result, op.OutputPath, content)
	}
	return nil
}

func (e *engine) extractRegex(latex string, op *Op, result, opCtx map[string]any) error {
	content := sourceContent(latex, op, result, opCtx)

	re, err := compileOpPattern(op.Regex)
	if err != nil {
		return err
	}
	matches := re.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		if op.Optional {
			return nil
		}
		return fmt.Errorf("%w: %s", ErrPatternMismatch, op.Regex)
	}

	if len(op.GroupPaths) > 0 {
		// First match, named groups fan out to fields.
		for _, name := range re.SubexpNames() {
			path, ok := op.GroupPaths[name]
			if !ok {
				continue
			}
			idx := re.SubexpIndex(name)
			if idx < 0 {
				continue
			}
			if err := SetNested(result, path, matches[0][idx]); err != nil {
				return err
			}
		}
		return nil
	}

	// All matches collect into a list: strings for a single capture
	// group, maps otherwise.
	names := namedGroups(re)
	list := make([]any, 0, len(matches))
	for _, m := range matches {
		if len(names) == 1 {
			list = append(list, m[re.SubexpIndex(names[0])])
			continue
		}
		entry := map[string]any{}
		for _, name := range names {
			entry[name] = m[re.SubexpIndex(name)]
		}
		list = append(list, entry)
	}
	return SetNested(result, op.OutputPath, list)
}

func namedGroups(re *regexp.Regexp) []string {
	var names []string
	for _, n := range re.SubexpNames() {
		if n != "" {
			names = append(names, n)
		}
	}
	return names
}
