package tex2yaml

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Parser converts full documents to their structured representation.
type Parser struct {
	registry *Registry
	engine   *engine

	// OnWarning, when set, receives sections that were skipped because
	// their content could not be parsed.
	OnWarning func(sectionName string, err error)
}

// NewParser creates a Parser backed by the given registry.
func NewParser(registry *Registry) *Parser {
	return &Parser{
		registry: registry,
		engine:   &engine{registry: registry},
	}
}

// ParseSection runs the named parse config against a content fragment.
func (p *Parser) ParseSection(typeName, latex string) (map[string]any, error) {
	cfg, err := p.registry.Config(typeName)
	if err != nil {
		return nil, err
	}
	return p.engine.run(latex, cfg)
}

// ParseDocument parses a complete source document.
func (p *Parser) ParseDocument(src string) (*Document, error) {
	if strings.TrimSpace(src) == "" {
		return nil, ErrEmptyDocument
	}

	meta, err := p.parseMetadata(src)
	if err != nil {
		return nil, err
	}
	pages, err := p.parsePages(src)
	if err != nil {
		return nil, err
	}
	return &Document{Metadata: meta, Pages: pages}, nil
}

// parseMetadata reads the preamble settings preceding \begin{document}.
func (p *Parser) parseMetadata(src string) (Metadata, error) {
	loc := beginDocumentRe.FindStringIndex(src)
	if loc == nil {
		return Metadata{}, ErrNoDocumentMarkers
	}
	preamble := src[:loc[0]]

	// \renewcommand values may nest braces, so the value is read with
	// balanced matching rather than captured by the pattern.
	renewed := map[string]string{}
	for _, m := range renewCommandRe.FindAllStringSubmatchIndex(preamble, -1) {
		name := preamble[m[2]:m[3]]
		pos := m[1]
		if pos >= len(preamble) || preamble[pos] != '{' {
			continue
		}
		value, _, err := ExtractBalanced(preamble, pos)
		if err != nil {
			continue
		}
		renewed[name] = value
	}

	setLengths := map[string]string{}
	for _, m := range setLengthRe.FindAllStringSubmatch(preamble, -1) {
		setLengths[m[1]] = m[2]
	}
	defLens := map[string]string{}
	for _, m := range defLenRe.FindAllStringSubmatch(preamble, -1) {
		defLens[m[1]] = m[2]
	}

	meta := Metadata{
		SetLengths: setLengths,
		DefLens:    defLens,
		Colors:     map[string]string{},
	}

	if m := setHLColorRe.FindStringSubmatch(preamble); m != nil {
		meta.HighlightColor = m[1]
	}
	if m := nlinesPPRe.FindStringSubmatch(preamble); m != nil {
		meta.ProfileLines, _ = strconv.Atoi(m[1])
	}
	meta.ListTitleAfterName = true
	if m := titleToggleRe.FindStringSubmatch(preamble); m != nil {
		meta.ListTitleAfterName = m[1] == "true"
	}

	// Packages emitted by the preamble template are implied; anything
	// else is kept for regeneration.
	for _, line := range usePackageRe.FindAllString(preamble, -1) {
		if !isStandardPackage(line) {
			meta.CustomPackages = append(meta.CustomPackages, line)
		}
	}
	meta.CustomPackages = append(meta.CustomPackages, fontFamilyRe.FindAllString(preamble, -1)...)

	for _, c := range colorFields {
		if v, ok := renewed[c]; ok {
			meta.Colors[c] = v
			delete(renewed, c)
		}
	}

	meta.Name = renewed[FieldName]
	meta.Date = renewed[FieldDate]
	meta.Brand = renewed[FieldBrand]
	meta.Profile = renewed[FieldProfile]
	delete(renewed, FieldName)
	delete(renewed, FieldDate)
	delete(renewed, FieldBrand)
	delete(renewed, FieldProfile)
	meta.Fields = renewed

	if meta.Profile != "" {
		meta.Profile = LimitBlankLines(meta.Profile, 0)
	}
	meta.NamePlain = Plaintext(meta.Name)
	meta.BrandPlain = Plaintext(meta.Brand)
	meta.ProfilePlain = Plaintext(meta.Profile)

	return meta, nil
}

// parsePages splits the column layout on page breaks and parses each
// page's regions.
func (p *Parser) parsePages(src string) ([]Page, error) {
	docStart := beginDocumentRe.FindStringIndex(src)
	docEnd := endDocumentRe.FindStringIndex(src)
	if docStart == nil || docEnd == nil {
		return nil, ErrNoDocumentMarkers
	}
	body := src[docStart[1]:docEnd[0]]

	colStart := beginParacolRe.FindStringIndex(body)
	colEnd := endParacolRe.FindStringIndex(body)
	if colStart == nil || colEnd == nil {
		return nil, ErrNoColumnLayout
	}
	layout := body[colStart[1]:colEnd[0]]

	breakCount := len(clearPageRe.FindAllString(layout, -1))
	segments := clearPageRe.Split(layout, -1)

	var pages []Page
	for i, segment := range segments {
		if strings.TrimSpace(segment) == "" {
			continue
		}
		num := i + 1
		regions, err := p.parseRegions(segment, num)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", num, err)
		}
		pages = append(pages, Page{
			Number:        num,
			HasBreakAfter: num <= breakCount,
			Regions:       regions,
		})
	}
	return pages, nil
}

// parseRegions splits one page's content into its positional regions.
func (p *Parser) parseRegions(content string, pageNum int) (Regions, error) {
	regions := Regions{Top: TopRegion{ShowSummary: pageNum == 1}}

	regions.TextblockLiteral = extractTextblockLiteral(content)
	content, regions.Decorations = extractDecorations(content)

	var left, main string
	if sw := switchColumnRe.FindStringIndex(content); sw != nil {
		left = strings.TrimSpace(content[:sw[0]])
		main = strings.TrimSpace(content[sw[1]:])
	} else {
		// Continuation page: everything flows in the main column.
		main = strings.TrimSpace(content)
	}

	if sections := p.parseColumn(left); len(sections) > 0 {
		regions.LeftColumn = &Column{Sections: sections}
	}
	if sections := p.parseColumn(main); len(sections) > 0 {
		regions.MainColumn = &Column{Sections: sections}
	}
	return regions, nil
}

// extractTextblockLiteral keeps the inner content of a textblock*
// region verbatim. The positioning arguments live in decorations, so
// they are skipped here.
func extractTextblockLiteral(content string) *Literal {
	if !beginTextblock.MatchString(content) {
		return nil
	}
	env, err := ExtractEnvironment(content, "textblock*", 0, 0)
	if err != nil {
		return nil
	}
	body := strings.TrimSpace(env.Body)

	// Skip {width} then the (x,y) coordinate group.
	if strings.HasPrefix(body, "{") {
		if _, next, err := ExtractBalanced(body, 0); err == nil {
			body = body[next:]
		}
	}
	body = strings.TrimLeft(body, " \t\n")
	if strings.HasPrefix(body, "(") {
		if end := strings.IndexByte(body, ')'); end >= 0 {
			body = body[end+1:]
		}
	}
	return &Literal{Raw: strings.TrimSpace(body)}
}

// extractDecorations pulls absolutely positioned page ornaments out of
// the content so they do not interfere with section parsing.
func extractDecorations(content string) (string, []Decoration) {
	var decorations []Decoration

	if m := textblockArgsRe.FindStringSubmatch(content); m != nil {
		decorations = append(decorations, Decoration{
			Command: "textblock",
			Args:    []string{strings.Trim(m[1], "{}"), strings.Trim(m[2], "()")},
		})
		if env, err := ExtractEnvironment(content, "textblock*", 0, 0); err == nil {
			content = content[:env.Start] + content[env.End:]
		}
	}

	for _, re := range []struct {
		command string
		pattern *regexp.Regexp
	}{
		{"leftgrad", leftGradRe},
		{"bottombar", bottomBarRe},
		{"topgradtri", topGradTriRe},
	} {
		for _, m := range re.pattern.FindAllString(content, -1) {
			var args []string
			for _, a := range braceArgRe.FindAllStringSubmatch(m, -1) {
				args = append(args, a[1])
			}
			decorations = append(decorations, Decoration{Command: re.command, Args: args})
		}
		content = re.pattern.ReplaceAllString(content, "")
	}

	return content, decorations
}

// parseColumn finds section headers and parses each section's body.
// Sections whose content cannot be parsed are skipped, reported
// through OnWarning.
func (p *Parser) parseColumn(content string) []Section {
	if content == "" {
		return nil
	}

	type marker struct {
		start, end int
		name       string
	}
	var markers []marker
	for _, m := range sectionStartRe.FindAllStringIndex(content, -1) {
		name, end, err := ExtractBalanced(content, m[1]-1)
		if err != nil {
			continue
		}
		markers = append(markers, marker{start: m[0], end: end, name: strings.TrimSpace(name)})
	}
	if len(markers) == 0 {
		return nil
	}

	var sections []Section
	for i, mk := range markers {
		bodyEnd := len(content)
		if i+1 < len(markers) {
			bodyEnd = markers[i+1].start
		}
		body := strings.TrimSpace(content[mk.end:bodyEnd])

		spacingAfter := ""
		if m := trailingVspaceRe.FindStringSubmatchIndex(body); m != nil {
			spacingAfter = body[m[2]:m[3]]
			body = strings.TrimSpace(body[:m[0]])
		}

		section, err := p.parseSectionByInference(mk.name, body)
		if err != nil {
			if p.OnWarning != nil {
				p.OnWarning(mk.name, err)
			}
			continue
		}
		if spacingAfter != "" {
			section["spacing_after"] = spacingAfter
		}
		sections = append(sections, section)
	}
	return sections
}

// parseSectionByInference decides a section's content type from its
// structure and parses it accordingly. Checks run from most to least
// specific; anything unrecognized is kept raw.
func (p *Parser) parseSectionByInference(name, content string) (Section, error) {
	section := Section{
		"name":           name,
		"name_plaintext": Plaintext(name),
	}

	merge := func(parsed map[string]any) Section {
		for k, v := range parsed {
			section[k] = v
		}
		return section
	}

	switch {
	case beginProjMainRe.MatchString(content):
		parsed, err := p.ParseSection(TypeProjects, content)
		if err != nil {
			return nil, err
		}
		return merge(parsed), nil

	case beginAcademicRe.MatchString(content):
		subsections, err := p.parseWorkHistory(content)
		if err != nil {
			return nil, err
		}
		section["type"] = TypeWorkHistory
		section["subsections"] = subsections
		return section, nil

	case beginItemizeRe.MatchString(content) && strings.Contains(content, universitySignal):
		section["type"] = TypeEducation
		section["metadata"] = map[string]any{
			"include_dissertation": strings.Contains(content, dissertationWord),
			"include_minor":        strings.Contains(content, minorWord),
			"use_icon_bullets":     iconBulletRe.MatchString(content),
		}
		return section, nil

	case beginItemizeRe.MatchString(content) && itemBracketRe.MatchString(content) && scshapeRe.MatchString(content):
		parsed, err := p.ParseSection(TypeSkillCategories, content)
		if err != nil {
			return nil, err
		}
		return merge(parsed), nil

	case capsListSignalRe.MatchString(content) && scshapeRe.MatchString(content):
		parsed, err := p.ParseSection(TypeSkillListCaps, content)
		if err != nil {
			return nil, err
		}
		return merge(parsed), nil

	case strings.Contains(content, "|"):
		parsed, err := p.ParseSection(TypeSkillListPipes, content)
		if err != nil {
			return nil, err
		}
		return merge(parsed), nil

	case beginMainRe.MatchString(content):
		parsed, err := p.ParseSection(TypePersonality, content)
		if err != nil {
			return nil, err
		}
		return merge(parsed), nil

	case beginItemizeRe.MatchString(content):
		parsed, err := parseCustomItemize(content)
		if err != nil {
			return nil, err
		}
		return merge(parsed), nil

	case beginItemizeAny.MatchString(content):
		parsed, err := parseSimpleList(content)
		if err != nil {
			return nil, err
		}
		return merge(parsed), nil

	default:
		section["type"] = TypeUnknown
		section["content"] = map[string]any{"raw": content}
		return section, nil
	}
}

// parseWorkHistory parses every work entry environment in a section.
func (p *Parser) parseWorkHistory(content string) ([]any, error) {
	envs, err := ExtractAllEnvironments(content, regexp.MustCompile(regexp.QuoteMeta(EnvWorkExperience)))
	if err != nil {
		return nil, err
	}
	subsections := make([]any, 0, len(envs))
	for _, env := range envs {
		parsed, err := p.ParseSection(TypeWorkExperience, content[env.Start:env.End])
		if err != nil {
			return nil, err
		}
		subsections = append(subsections, parsed)
	}
	return subsections, nil
}

// parseCustomItemize handles a plain itemize whose items may carry
// per-item markers with nested braces.
func parseCustomItemize(content string) (map[string]any, error) {
	env, err := ExtractEnvironment(content, EnvItemize, 0, 1)
	if err != nil {
		return nil, err
	}
	items, err := ParseItemsComplex(env.Body)
	if err != nil {
		return nil, err
	}

	bullets := make([]any, len(items))
	for i, it := range items {
		bullets[i] = ContentItem(it.Marker, it.Raw)
	}

	metadata := map[string]any{}
	if len(env.Optional) > 0 {
		metadata["optional_params"] = env.Optional[0]
	}
	return map[string]any{
		"type":     TypeCustomItemize,
		"metadata": metadata,
		"content":  map[string]any{"bullets": bullets},
	}, nil
}

// itemCommandRe matches any item marker command inside a custom list
// environment.
var itemCommandRe = regexp.MustCompile(`\\(?P<marker>item[A-Za-z]*)\b`)

// parseSimpleList is the fallback for custom list environments that
// match no known shape: the environment and item command names are
// recorded so generation can reproduce them.
func parseSimpleList(content string) (map[string]any, error) {
	envs, err := ExtractAllEnvironments(content, regexp.MustCompile(`itemize[A-Za-z]+`))
	if err != nil {
		return nil, err
	}
	if len(envs) == 0 {
		return nil, fmt.Errorf("%w: no list environment", ErrEnvironmentNotFound)
	}
	env := envs[0]

	items, err := ParseItems(env.Body, itemCommandRe)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: empty list environment %s", ErrMarkerNotFound, env.Name)
	}

	entries := make([]any, len(items))
	for i, it := range items {
		entries[i] = ContentItem(it.Marker, it.Raw)
	}
	return map[string]any{
		"type": TypeSimpleList,
		"metadata": map[string]any{
			"itemize_env":  env.Name,
			"item_command": items[0].Marker,
		},
		"content": map[string]any{"items": entries},
	}, nil
}
