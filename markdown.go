package tex2yaml

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// previewTemplate wraps Goldmark's fragment output in a complete HTML5
// document.
const previewTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body>
%s
</body>
</html>`

var (
	colorCommandRe    = regexp.MustCompile(`\\color\{[^}]+\}`)
	remainingBracedRe = regexp.MustCompile(`\\[a-zA-Z]+\{([^}]+)\}`)
	mdWhitespaceRe    = regexp.MustCompile(`\s+`)
)

// ToMarkdown converts inline source markup to its Markdown equivalent:
// bold and emphasis commands become ** and *, monospace becomes
// backticks, links keep their display text, and everything without a
// Markdown counterpart is stripped to plain words.
func ToMarkdown(text string) string {
	if text == "" {
		return ""
	}

	text = ReplaceCommand(text, "textbf", "**", "**")
	text = ReplaceCommand(text, "coloremph", "**", "**")
	text = ReplaceCommand(text, "textit", "*", "*")
	text = ReplaceCommand(text, "texttt", "`", "`")

	text = stripLinksKeepText(text)

	text = strings.ReplaceAll(text, `\texttimes`, "×")
	text = strings.ReplaceAll(text, `\\`, " ")
	text = colorCommandRe.ReplaceAllString(text, "")
	for _, cmd := range []string{`\nolinebreak`, `\nopagebreak`, `\centering`, `\par`, `\hfill`} {
		text = strings.ReplaceAll(text, cmd, "")
	}

	text = remainingBracedRe.ReplaceAllString(text, "$1")
	text = strings.NewReplacer("{", "", "}", "", `\`, "").Replace(text)
	return strings.TrimSpace(mdWhitespaceRe.ReplaceAllString(text, " "))
}

// stripLinksKeepText replaces every \href{url}{text} with the display
// text. Both arguments may nest braces.
func stripLinksKeepText(text string) string {
	const prefix = `\href{`
	for {
		pos := strings.Index(text, prefix)
		if pos < 0 {
			return text
		}
		_, urlEnd, err := ExtractBalanced(text, pos+len(prefix)-1)
		if err != nil || urlEnd >= len(text) || text[urlEnd] != '{' {
			return text
		}
		display, textEnd, err := ExtractBalanced(text, urlEnd)
		if err != nil {
			return text
		}
		text = text[:pos] + strings.TrimSpace(display) + text[textEnd:]
	}
}

// DocumentMarkdown renders a whole document as Markdown: the name as
// top-level heading, the profile as an opening paragraph, then each
// section with its items as bullet lists.
func DocumentMarkdown(doc *Document) string {
	var parts []string

	if doc.Metadata.NamePlain != "" {
		parts = append(parts, "# "+doc.Metadata.NamePlain)
	}
	if doc.Metadata.BrandPlain != "" {
		parts = append(parts, "*"+doc.Metadata.BrandPlain+"*")
	}
	if doc.Metadata.Profile != "" {
		parts = append(parts, ToMarkdown(doc.Metadata.Profile))
	}

	view := NewView(doc)
	for _, sec := range view.Sections() {
		parts = append(parts, sectionMarkdown(sec))
	}
	return strings.Join(parts, "\n\n") + "\n"
}

func sectionMarkdown(sec Section) string {
	title, _ := sec["name_plaintext"].(string)
	parts := []string{"## " + title}

	switch sec.Type() {
	case TypeWorkHistory:
		for _, sub := range nestedList(sec, "subsections") {
			if m, ok := sub.(map[string]any); ok {
				parts = append(parts, workEntryMarkdown(m))
			}
		}

	case TypeProjects:
		for _, sub := range nestedList(sec, "subsections") {
			if m, ok := sub.(map[string]any); ok {
				parts = append(parts, projectMarkdown(m, "###"))
			}
		}

	case TypeSkillCategories:
		for _, sub := range nestedList(sec, "subsections") {
			m, ok := sub.(map[string]any)
			if !ok {
				continue
			}
			lines := []string{"### " + ToMarkdown(GetString(m, "metadata.name"))}
			for _, skill := range itemTexts(nestedList(m, "content.skills"), ModeRich) {
				lines = append(lines, "- "+ToMarkdown(skill))
			}
			parts = append(parts, strings.Join(lines, "\n"))
		}

	default:
		if items := SectionItems(sec, ModeRich); len(items) > 0 {
			lines := make([]string, len(items))
			for i, item := range items {
				lines[i] = "- " + ToMarkdown(item)
			}
			parts = append(parts, strings.Join(lines, "\n"))
		}
	}
	return strings.Join(parts, "\n\n")
}

func workEntryMarkdown(m map[string]any) string {
	var lines []string
	lines = append(lines, "### "+ToMarkdown(GetString(m, "metadata.company")))

	if title := GetString(m, "metadata.title"); title != "" {
		lines = append(lines, "**"+ToMarkdown(title)+"**")
	}
	if dates := GetString(m, "metadata.dates"); dates != "" {
		lines = append(lines, "*"+ToMarkdown(dates)+"*")
	}
	if loc := GetString(m, "metadata.location"); loc != "" {
		lines = append(lines, ToMarkdown(loc))
	}
	lines = append(lines, "")

	for _, bullet := range itemTexts(nestedList(m, "content.bullets"), ModeRich) {
		lines = append(lines, "- "+ToMarkdown(bullet))
	}
	for _, p := range nestedList(m, "content.projects") {
		if pm, ok := p.(map[string]any); ok {
			lines = append(lines, "", projectMarkdown(pm, "####"))
		}
	}
	return strings.Join(lines, "\n")
}

func projectMarkdown(m map[string]any, heading string) string {
	lines := []string{heading + " " + ToMarkdown(GetString(m, "metadata.name")), ""}
	for _, bullet := range itemTexts(nestedList(m, "content.bullets"), ModeRich) {
		lines = append(lines, "- "+ToMarkdown(bullet))
	}
	return strings.Join(lines, "\n")
}

// Previewer converts parsed documents to standalone HTML pages for
// quick visual inspection.
type Previewer struct {
	md goldmark.Markdown
}

// NewPreviewer creates a Previewer with GFM extensions enabled.
func NewPreviewer() *Previewer {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
		),
	)
	return &Previewer{md: md}
}

// ToHTML renders doc as a standalone HTML5 document. Conversion runs in
// a goroutine so cancellation is honored even mid-render.
func (p *Previewer) ToHTML(ctx context.Context, doc *Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html string
		err  error
	}
	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := p.md.Convert([]byte(DocumentMarkdown(doc)), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrRender, err)}
			return
		}
		title := doc.Metadata.NamePlain
		if title == "" {
			title = "Document"
		}
		done <- result{html: fmt.Sprintf(previewTemplate, title, buf.String())}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}
