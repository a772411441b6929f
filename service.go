package tex2yaml

import (
	"context"
	"fmt"

	"github.com/alnah/go-tex2yaml/internal/yamlutil"
)

// Service orchestrates the conversion pipeline in both directions:
// source documents to structured form, and structured form back to
// source.
type Service struct {
	cfg       serviceConfig
	registry  *Registry
	parser    *Parser
	generator *Generator
	previewer *Previewer
}

// Option configures a Service.
type Option func(*Service)

// serviceConfig holds internal configuration for Service.
type serviceConfig struct {
	normalize bool
	assetPath string
	onWarning func(sectionName string, err error)
}

// WithNormalize enables structural whitespace normalization of input
// before parsing.
func WithNormalize(enabled bool) Option {
	return func(s *Service) {
		s.cfg.normalize = enabled
	}
}

// WithAssetPath overrides the embedded parse configs and templates with
// files from the given directory. Missing files fall back to the
// embedded copies.
func WithAssetPath(path string) Option {
	return func(s *Service) {
		s.cfg.assetPath = path
	}
}

// WithWarningHandler receives sections skipped during parsing because
// their content could not be understood.
func WithWarningHandler(fn func(sectionName string, err error)) Option {
	return func(s *Service) {
		s.cfg.onWarning = fn
	}
}

// New creates a Service with default configuration.
// Use options to customize behavior (e.g., WithAssetPath).
func New(opts ...Option) (*Service, error) {
	s := &Service{}
	for _, opt := range opts {
		opt(s)
	}

	if s.cfg.assetPath != "" {
		registry, err := NewRegistryWithPath(s.cfg.assetPath)
		if err != nil {
			return nil, err
		}
		s.registry = registry
	} else {
		s.registry = NewRegistry()
	}

	s.parser = NewParser(s.registry)
	s.parser.OnWarning = s.cfg.onWarning
	s.generator = NewGenerator(s.registry)
	s.previewer = NewPreviewer()
	return s, nil
}

// Parse converts a source document to its structured representation.
func (s *Service) Parse(ctx context.Context, src string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.cfg.normalize {
		src = NormalizeSource(src)
	}
	doc, err := s.parser.ParseDocument(src)
	if err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	return doc, nil
}

// Generate renders a structured document back to source form.
func (s *Service) Generate(ctx context.Context, doc *Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	out, err := s.generator.GenerateDocument(doc)
	if err != nil {
		return "", fmt.Errorf("generating document: %w", err)
	}
	return out, nil
}

// ToYAML serializes a structured document.
func (s *Service) ToYAML(doc *Document) ([]byte, error) {
	return yamlutil.Marshal(doc)
}

// FromYAML deserializes a structured document.
func (s *Service) FromYAML(data []byte) (*Document, error) {
	var doc Document
	if err := yamlutil.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Preview renders a parsed document as a standalone HTML page.
func (s *Service) Preview(ctx context.Context, doc *Document) (string, error) {
	return s.previewer.ToHTML(ctx, doc)
}

// Check verifies that src survives a parse-generate round trip. Both
// sides are compared after whitespace normalization; on mismatch the
// normalized want and got strings are returned for diffing.
func (s *Service) Check(ctx context.Context, src string) (bool, string, string, error) {
	doc, err := s.Parse(ctx, src)
	if err != nil {
		return false, "", "", err
	}
	generated, err := s.Generate(ctx, doc)
	if err != nil {
		return false, "", "", err
	}
	want := NormalizeSource(src)
	got := NormalizeSource(generated)
	return want == got, want, got, nil
}
