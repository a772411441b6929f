package tex2yaml

import (
	"bytes"
	"fmt"
	"strings"
)

const defaultBulletSymbol = `{{\large $\bullet$}}`

// Generator renders structured documents back to source form.
type Generator struct {
	registry *Registry
}

// NewGenerator creates a Generator backed by the given registry.
func NewGenerator(registry *Registry) *Generator {
	return &Generator{registry: registry}
}

// GenerateDocument renders a complete source document: preamble,
// two-column layout, and page breaks.
func (g *Generator) GenerateDocument(doc *Document) (string, error) {
	if doc == nil || len(doc.Pages) == 0 {
		return "", ErrEmptyDocument
	}

	preamble, err := g.renderPreamble(doc.Metadata)
	if err != nil {
		return "", err
	}

	var body strings.Builder
	body.WriteString(BeginParacol + "\n")
	for _, page := range doc.Pages {
		rendered, err := g.renderPage(page)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", page.Number, err)
		}
		body.WriteString("\n" + rendered + "\n")
		if page.HasBreakAfter {
			body.WriteString("\n" + ClearPage + "\n")
		}
	}
	body.WriteString("\n" + EndParacol)

	out, err := g.render("document", map[string]any{
		"preamble": preamble,
		"body":     body.String(),
	})
	if err != nil {
		return "", err
	}
	return LimitBlankLines(out, 1) + "\n", nil
}

// GenerateSection renders one section including its header line.
func (g *Generator) GenerateSection(sec Section) (string, error) {
	content, err := g.renderSectionContent(sec)
	if err != nil {
		return "", fmt.Errorf("section %q: %w", sec.Name(), err)
	}
	return g.render("section_wrapper", map[string]any{
		"name":          sec.Name(),
		"content":       content,
		"spacing_after": GetString(sec, "spacing_after"),
	})
}

func (g *Generator) renderPreamble(meta Metadata) (string, error) {
	data := map[string]any{
		"name":                  meta.Name,
		"date":                  meta.Date,
		"brand":                 meta.Brand,
		"professional_profile":  meta.Profile,
		"nlines_pp":             meta.ProfileLines,
		"list_title_after_name": meta.ListTitleAfterName,
		"hlcolor":               meta.HighlightColor,
		"colors":                meta.Colors,
		"fields":                meta.Fields,
		"setlengths":            meta.SetLengths,
		"deflens":               meta.DefLens,
		"custom_packages":       meta.CustomPackages,
	}
	return g.render("preamble", data)
}

func (g *Generator) renderPage(page Page) (string, error) {
	var parts []string

	if deco := renderDecorations(page.Regions); deco != "" {
		parts = append(parts, deco)
	}

	if page.Regions.LeftColumn != nil {
		left, err := g.renderColumn(page.Regions.LeftColumn)
		if err != nil {
			return "", err
		}
		parts = append(parts, left, SwitchColumn)
	}
	if page.Regions.MainColumn != nil {
		main, err := g.renderColumn(page.Regions.MainColumn)
		if err != nil {
			return "", err
		}
		parts = append(parts, main)
	}
	return strings.Join(parts, "\n\n"), nil
}

func (g *Generator) renderColumn(col *Column) (string, error) {
	rendered := make([]string, 0, len(col.Sections))
	for _, sec := range col.Sections {
		s, err := g.GenerateSection(sec)
		if err != nil {
			return "", err
		}
		rendered = append(rendered, strings.TrimRight(s, "\n"))
	}
	return strings.Join(rendered, "\n\n"), nil
}

// renderDecorations reassembles page ornaments extracted at parse time.
// The textblock decoration carries its positioning arguments; the inner
// content comes from the literal region.
func renderDecorations(regions Regions) string {
	var parts []string
	for _, d := range regions.Decorations {
		switch d.Command {
		case "textblock":
			if len(d.Args) < 2 || regions.TextblockLiteral == nil {
				continue
			}
			parts = append(parts, fmt.Sprintf("\\begin{textblock*}{%s}(%s)\n%s\n\\end{textblock*}",
				d.Args[0], d.Args[1], regions.TextblockLiteral.Raw))
		default:
			var b strings.Builder
			b.WriteString(`\` + d.Command)
			for _, a := range d.Args {
				b.WriteString("{" + a + "}")
			}
			parts = append(parts, b.String())
		}
	}
	return strings.Join(parts, "\n")
}

// renderSectionContent renders a section body according to its type.
func (g *Generator) renderSectionContent(sec Section) (string, error) {
	switch t := sec.Type(); t {
	case TypeWorkHistory:
		return g.renderWorkHistory(sec)

	case TypeWorkExperience:
		return g.renderWorkExperience(map[string]any(sec))

	case TypeProjects:
		return g.renderProjects(sec)

	case TypeSkillCategories:
		return g.renderSkillCategories(sec)

	case TypeSkillListCaps:
		return g.render(t, map[string]any{
			"baselineskip": GetString(sec, "metadata.baselineskip"),
			"parskip":      GetString(sec, "metadata.parskip"),
			"list":         nestedList(sec, "content.list"),
		})

	case TypeSkillListPipes:
		return g.render(t, map[string]any{
			"list": nestedList(sec, "content.list"),
		})

	case TypePersonality:
		return g.render(t, map[string]any{
			"items": nestedList(sec, "content.items"),
		})

	case TypeEducation:
		meta, _ := GetNested(sec, "metadata")
		return g.render(t, meta)

	case TypeCustomItemize:
		return g.render(t, map[string]any{
			"optional_params": GetString(sec, "metadata.optional_params"),
			"bullets":         nestedList(sec, "content.bullets"),
		})

	case TypeSimpleList:
		return g.render(t, map[string]any{
			"environment":  GetString(sec, "metadata.itemize_env"),
			"item_command": GetString(sec, "metadata.item_command"),
			"items":        nestedList(sec, "content.items"),
		})

	case TypeUnknown:
		return GetString(sec, "content.raw"), nil

	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
}

func (g *Generator) renderWorkHistory(sec Section) (string, error) {
	subs := nestedList(sec, "subsections")
	entries := make([]string, 0, len(subs))
	for _, sub := range subs {
		m, ok := sub.(map[string]any)
		if !ok {
			return "", fmt.Errorf("%w: work entry is not a map", ErrRender)
		}
		s, err := g.renderWorkExperience(m)
		if err != nil {
			return "", err
		}
		entries = append(entries, s)
	}
	return g.render("work_history_wrapper", map[string]any{
		"content": strings.Join(entries, "\n\n"),
	})
}

func (g *Generator) renderWorkExperience(m map[string]any) (string, error) {
	title := GetString(m, "metadata.title")
	if subtitle := GetString(m, "metadata.subtitle"); subtitle != "" {
		title += `\\` + subtitle
	}

	projects, err := g.renderProjectList(nestedList(m, "content.projects"), "    ")
	if err != nil {
		return "", err
	}

	env := GetString(m, "metadata.environment_type")
	if env == "" {
		env = EnvWorkExperience
	}
	return g.render(TypeWorkExperience, map[string]any{
		"environment": env,
		"company":     GetString(m, "metadata.company"),
		"title":       title,
		"location":    GetString(m, "metadata.location"),
		"dates":       GetString(m, "metadata.dates"),
		"bullets":     nestedList(m, "content.bullets"),
		"projects":    projects,
	})
}

func (g *Generator) renderProjects(sec Section) (string, error) {
	rendered, err := g.renderProjectList(nestedList(sec, "subsections"), "    ")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("\\begin{%s}\n\n%s\n\n\\end{%s}",
		EnvProjectsMain, strings.Join(rendered, "\n\n"), EnvProjectsMain), nil
}

func (g *Generator) renderProjectList(projects []any, indent string) ([]string, error) {
	rendered := make([]string, 0, len(projects))
	for _, p := range projects {
		m, ok := p.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: project entry is not a map", ErrRender)
		}
		env := GetString(m, "metadata.environment_type")
		if env == "" {
			env = EnvProject
		}
		symbol := GetString(m, "metadata.bullet_symbol")
		if symbol == "" {
			symbol = defaultBulletSymbol
		}
		s, err := g.render(TypeProject, map[string]any{
			"indent":        indent,
			"environment":   env,
			"bullet_symbol": symbol,
			"name":          GetString(m, "metadata.name"),
			"dates":         GetString(m, "metadata.dates"),
			"bullets":       nestedList(m, "content.bullets"),
		})
		if err != nil {
			return nil, err
		}
		rendered = append(rendered, strings.TrimRight(s, "\n"))
	}
	return rendered, nil
}

func (g *Generator) renderSkillCategories(sec Section) (string, error) {
	subs := nestedList(sec, "subsections")
	categories := make([]string, 0, len(subs))
	for _, sub := range subs {
		m, ok := sub.(map[string]any)
		if !ok {
			return "", fmt.Errorf("%w: skill category is not a map", ErrRender)
		}
		s, err := g.render(TypeSkillCategory, map[string]any{
			"icon":   GetString(m, "metadata.icon"),
			"name":   GetString(m, "metadata.name"),
			"skills": nestedList(m, "content.skills"),
		})
		if err != nil {
			return "", err
		}
		categories = append(categories, strings.TrimRight(s, "\n"))
	}
	return g.render(TypeSkillCategories, map[string]any{
		"optional_params": GetString(sec, "metadata.optional_params"),
		"categories":      categories,
	})
}

// render executes the named template against data.
func (g *Generator) render(name string, data any) (string, error) {
	tmpl, err := g.registry.Template(name)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrRender, name, err)
	}
	return buf.String(), nil
}

// nestedList reads a slice at a dotted path, nil when absent.
func nestedList(m map[string]any, path string) []any {
	v, ok := GetNested(m, path)
	if !ok {
		return nil
	}
	switch l := v.(type) {
	case []any:
		return l
	case []string:
		out := make([]any, len(l))
		for i, s := range l {
			out[i] = s
		}
		return out
	default:
		return nil
	}
}
