package tex2yaml

import (
	"fmt"
	"strings"
)

// Document is the structured representation of a full resume source file.
type Document struct {
	Metadata Metadata `yaml:"metadata"`
	Pages    []Page   `yaml:"pages"`
}

// Metadata holds the preamble-level settings of a document.
type Metadata struct {
	Name      string `yaml:"name"`
	NamePlain string `yaml:"name_plaintext"`
	Date      string `yaml:"date"`

	Brand      string `yaml:"brand"`
	BrandPlain string `yaml:"brand_plaintext"`

	Profile      string `yaml:"professional_profile"`
	ProfilePlain string `yaml:"professional_profile_plaintext"`
	ProfileLines int    `yaml:"nlines_pp,omitempty"`

	ListTitleAfterName bool `yaml:"list_title_after_name"`

	HighlightColor string            `yaml:"hlcolor,omitempty"`
	Colors         map[string]string `yaml:"colors,omitempty"`
	SetLengths     map[string]string `yaml:"setlengths,omitempty"`
	DefLens        map[string]string `yaml:"deflens,omitempty"`
	Fields         map[string]string `yaml:"fields,omitempty"`
	CustomPackages []string          `yaml:"custom_packages,omitempty"`
}

// Page is one physical page of the document.
type Page struct {
	Number        int     `yaml:"page_number"`
	HasBreakAfter bool    `yaml:"has_clearpage_after"`
	Regions       Regions `yaml:"regions"`
}

// Regions groups the positional areas of a page. A nil LeftColumn marks
// a continuation page whose content flows in the main column only.
type Regions struct {
	Top              TopRegion    `yaml:"top"`
	LeftColumn       *Column      `yaml:"left_column,omitempty"`
	MainColumn       *Column      `yaml:"main_column,omitempty"`
	TextblockLiteral *Literal     `yaml:"textblock_literal,omitempty"`
	Decorations      []Decoration `yaml:"decorations,omitempty"`
}

// TopRegion is the header band above the columns.
type TopRegion struct {
	ShowSummary bool `yaml:"show_professional_profile"`
}

// Column is an ordered list of sections in one column.
type Column struct {
	Sections []Section `yaml:"sections"`
}

// Literal carries source text preserved verbatim, for regions whose
// markup is treated as opaque.
type Literal struct {
	Raw string `yaml:"content_latex"`
}

// Decoration is an absolutely positioned page ornament such as a left
// gradient bar, stored as command name plus raw arguments.
type Decoration struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args,omitempty"`
}

// Section is the open-schema representation of one titled content block.
// Well-known keys are "type", "name", "name_plaintext", "metadata",
// "content", "subsections" and "spacing_after"; everything nested is
// plain maps and slices so sections loaded from serialized form and
// sections built by the parser are interchangeable.
type Section map[string]any

// Type returns the section's content type, "unknown" when unset.
func (s Section) Type() string {
	if t, ok := s["type"].(string); ok && t != "" {
		return t
	}
	return TypeUnknown
}

// Name returns the section's display title as written in the source.
func (s Section) Name() string {
	n, _ := s["name"].(string)
	return n
}

// ContentItem is one parsed entry of a section body. Both renditions of
// the text are kept so either can be requested without re-parsing.
func ContentItem(marker, raw string) map[string]any {
	return map[string]any{
		"marker":    marker,
		"latex_raw": raw,
		"plaintext": Plaintext(raw),
	}
}

// SetNested writes value at a dotted path inside m, creating intermediate
// maps as needed. An existing non-map value on the path is an error.
func SetNested(m map[string]any, path string, value any) error {
	parts := strings.Split(path, ".")
	cur := m
	for _, p := range parts[:len(parts)-1] {
		next, ok := cur[p]
		if !ok {
			child := map[string]any{}
			cur[p] = child
			cur = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("path %q: %q is not a map", path, p)
		}
		cur = child
	}
	cur[parts[len(parts)-1]] = value
	return nil
}

// GetNested reads the value at a dotted path inside m. The second return
// is false when any path element is missing.
func GetNested(m map[string]any, path string) (any, bool) {
	parts := strings.Split(path, ".")
	cur := m
	for _, p := range parts[:len(parts)-1] {
		child, ok := cur[p].(map[string]any)
		if !ok {
			return nil, false
		}
		cur = child
	}
	v, ok := cur[parts[len(parts)-1]]
	return v, ok
}

// GetString reads a string value at a dotted path, "" when absent or of
// another type.
func GetString(m map[string]any, path string) string {
	v, ok := GetNested(m, path)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Section type names assigned by inference and carried through
// serialization.
const (
	TypeWorkHistory     = "work_history"
	TypeWorkExperience  = "work_experience"
	TypeProject         = "project"
	TypeProjects        = "projects"
	TypeSkillCategories = "skill_categories"
	TypeSkillCategory   = "skill_category"
	TypeSkillListCaps   = "skill_list_caps"
	TypeSkillListPipes  = "skill_list_pipes"
	TypeEducation       = "education"
	TypePersonality     = "personality_alias_array"
	TypeCustomItemize   = "custom_itemize"
	TypeSimpleList      = "simple_list"
	TypeUnknown         = "unknown"
)
