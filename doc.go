// Package tex2yaml converts two-column LaTeX resume documents to a
// structured YAML representation and back.
//
// The parser recognizes the document's preamble metadata, page layout
// (paracol two-column structure split on \clearpage), section headers,
// and a set of known content shapes (work history, projects, skill
// lists, education). Each section keeps both the raw markup and a
// plaintext rendition of its text.
//
// The generator walks the same structure in reverse, rendering each
// content type through a template so that parse and generate stay
// symmetric: parsing generated output yields the original structure.
//
// Basic usage:
//
//	svc := tex2yaml.New()
//	doc, err := svc.Parse(ctx, texSource)
//	if err != nil { ... }
//	out, err := svc.Generate(ctx, doc)
package tex2yaml
