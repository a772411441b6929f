package tex2yaml

import (
	"fmt"
	"strings"
	"sync"
)

// Mode selects which rendition of stored text is returned.
type Mode string

const (
	// ModeRich returns text with its inline markup intact.
	ModeRich Mode = "latex_raw"
	// ModePlain returns text stripped to plain words.
	ModePlain Mode = "plaintext"
)

// View is a read-side index over a parsed document. Lookups by section
// name and flattened item lists are cached after first computation.
type View struct {
	doc *Document

	mu    sync.RWMutex
	items map[string][]string
}

// NewView creates a View over doc. The document must not be mutated
// while the view is in use.
func NewView(doc *Document) *View {
	return &View{doc: doc, items: map[string][]string{}}
}

// Sections returns every section of the document in page order, left
// column before main column.
func (v *View) Sections() []Section {
	var out []Section
	for _, page := range v.doc.Pages {
		for _, col := range []*Column{page.Regions.LeftColumn, page.Regions.MainColumn} {
			if col == nil {
				continue
			}
			out = append(out, col.Sections...)
		}
	}
	return out
}

// Section finds a section by title. Matching is case-insensitive on the
// plain rendition of the title.
func (v *View) Section(name string) (Section, bool) {
	want := strings.ToLower(strings.TrimSpace(name))
	for _, sec := range v.Sections() {
		title, _ := sec["name_plaintext"].(string)
		if strings.ToLower(strings.TrimSpace(title)) == want {
			return sec, true
		}
	}
	return nil, false
}

// Items returns the flattened item texts of the named section.
func (v *View) Items(name string, mode Mode) ([]string, error) {
	key := string(mode) + "\x00" + name

	v.mu.RLock()
	cached, ok := v.items[key]
	v.mu.RUnlock()
	if ok {
		return cached, nil
	}

	sec, found := v.Section(name)
	if !found {
		return nil, fmt.Errorf("%w: section %q", ErrUnknownType, name)
	}
	items := SectionItems(sec, mode)

	v.mu.Lock()
	v.items[key] = items
	v.mu.Unlock()
	return items, nil
}

// Text returns the whole document as flat text: metadata first, then
// every section title with its items.
func (v *View) Text(mode Mode) string {
	var b strings.Builder

	meta := v.doc.Metadata
	switch mode {
	case ModePlain:
		writeNonEmpty(&b, meta.NamePlain, meta.BrandPlain, meta.ProfilePlain)
	default:
		writeNonEmpty(&b, meta.Name, meta.Brand, meta.Profile)
	}

	for _, sec := range v.Sections() {
		title := sec.Name()
		if mode == ModePlain {
			title, _ = sec["name_plaintext"].(string)
		}
		writeNonEmpty(&b, title)
		writeNonEmpty(&b, SectionItems(sec, mode)...)
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeNonEmpty(b *strings.Builder, lines ...string) {
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		b.WriteString(line + "\n")
	}
}

// SectionItems flattens one section's content into item texts. Branch
// types descend through their subsections; leaf types read their item
// lists directly. Sections without items return nil.
func SectionItems(sec Section, mode Mode) []string {
	switch sec.Type() {
	case TypeWorkHistory:
		var out []string
		for _, sub := range nestedList(sec, "subsections") {
			if m, ok := sub.(map[string]any); ok {
				out = append(out, workEntryItems(m, mode)...)
			}
		}
		return out

	case TypeWorkExperience:
		return workEntryItems(sec, mode)

	case TypeProjects:
		var out []string
		for _, sub := range nestedList(sec, "subsections") {
			if m, ok := sub.(map[string]any); ok {
				out = append(out, itemTexts(nestedList(m, "content.bullets"), mode)...)
			}
		}
		return out

	case TypeSkillCategories:
		var out []string
		for _, sub := range nestedList(sec, "subsections") {
			if m, ok := sub.(map[string]any); ok {
				out = append(out, itemTexts(nestedList(m, "content.skills"), mode)...)
			}
		}
		return out

	case TypeProject:
		return itemTexts(nestedList(sec, "content.bullets"), mode)

	case TypeSkillCategory:
		return itemTexts(nestedList(sec, "content.skills"), mode)

	case TypeSkillListCaps, TypeSkillListPipes:
		return itemTexts(nestedList(sec, "content.list"), mode)

	case TypePersonality, TypeSimpleList:
		return itemTexts(nestedList(sec, "content.items"), mode)

	case TypeCustomItemize:
		return itemTexts(nestedList(sec, "content.bullets"), mode)

	case TypeUnknown:
		raw := GetString(sec, "content.raw")
		if raw == "" {
			return nil
		}
		if mode == ModePlain {
			raw = Plaintext(raw)
		}
		return []string{raw}

	default:
		return nil
	}
}

func workEntryItems(m map[string]any, mode Mode) []string {
	out := itemTexts(nestedList(m, "content.bullets"), mode)
	for _, p := range nestedList(m, "content.projects") {
		if pm, ok := p.(map[string]any); ok {
			out = append(out, itemTexts(nestedList(pm, "content.bullets"), mode)...)
		}
	}
	return out
}

// itemTexts extracts one rendition from a list of content entries.
// Entries may be maps produced by item parsing or bare strings from
// split lists.
func itemTexts(items []any, mode Mode) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		switch v := it.(type) {
		case map[string]any:
			s, _ := v[string(mode)].(string)
			out = append(out, s)
		case string:
			if mode == ModePlain {
				v = Plaintext(v)
			}
			out = append(out, v)
		}
	}
	return out
}
