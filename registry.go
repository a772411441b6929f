package tex2yaml

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/template"

	"github.com/alnah/go-tex2yaml/internal/yamlutil"
)

//go:embed configs/*.yaml
var embeddedConfigs embed.FS

//go:embed templates/*.tmpl
var embeddedTemplates embed.FS

// Template delimiters chosen to never collide with the markup being
// generated.
const (
	tmplLeftDelim  = "<<<"
	tmplRightDelim = ">>>"
)

// Registry loads and caches parse configs and generation templates.
// Built-in assets are embedded; a base path can point at a directory
// whose <name>.yaml and <name>.tmpl files take precedence, with
// fallback to the embedded set.
type Registry struct {
	basePath string

	mu        sync.RWMutex
	configs   map[string]*ParseConfig
	templates map[string]*template.Template
}

// NewRegistry creates a Registry serving the embedded assets.
func NewRegistry() *Registry {
	return &Registry{
		configs:   make(map[string]*ParseConfig),
		templates: make(map[string]*template.Template),
	}
}

// NewRegistryWithPath creates a Registry that prefers assets from
// basePath. The directory must exist and be readable.
func NewRegistryWithPath(basePath string) (*Registry, error) {
	info, err := os.Stat(basePath)
	if err != nil {
		return nil, fmt.Errorf("asset path %q: %w", basePath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("asset path %q is not a directory", basePath)
	}
	r := NewRegistry()
	r.basePath = basePath
	return r, nil
}

// Config returns the parse config for a content type, loading and
// caching it on first use.
func (r *Registry) Config(typeName string) (*ParseConfig, error) {
	if err := validateAssetName(typeName); err != nil {
		return nil, err
	}

	r.mu.RLock()
	cfg, ok := r.configs[typeName]
	r.mu.RUnlock()
	if ok {
		return cfg, nil
	}

	data, err := r.readAsset(typeName+".yaml", "configs", embeddedConfigs)
	if err != nil {
		return nil, fmt.Errorf("parse config for %q: %w", typeName, err)
	}

	cfg = &ParseConfig{}
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config for %q: %w", typeName, err)
	}

	r.mu.Lock()
	r.configs[typeName] = cfg
	r.mu.Unlock()
	return cfg, nil
}

// Template returns the generation template for a content type, loading
// and caching it on first use. Missing keys in template data are
// rendering errors rather than silent blanks.
func (r *Registry) Template(typeName string) (*template.Template, error) {
	if err := validateAssetName(typeName); err != nil {
		return nil, err
	}

	r.mu.RLock()
	tmpl, ok := r.templates[typeName]
	r.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	data, err := r.readAsset(typeName+".tmpl", "templates", embeddedTemplates)
	if err != nil {
		return nil, fmt.Errorf("template for %q: %w", typeName, err)
	}

	tmpl, err = template.New(typeName).
		Delims(tmplLeftDelim, tmplRightDelim).
		Option("missingkey=error").
		Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("template for %q: %w", typeName, err)
	}

	r.mu.Lock()
	r.templates[typeName] = tmpl
	r.mu.Unlock()
	return tmpl, nil
}

// ClearCache drops all cached configs and templates. Assets are
// re-read on next access, which picks up edits under the base path.
func (r *Registry) ClearCache() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.configs = make(map[string]*ParseConfig)
	r.templates = make(map[string]*template.Template)
}

// readAsset tries the base path first, then the embedded filesystem.
func (r *Registry) readAsset(name, embeddedDir string, fsys embed.FS) ([]byte, error) {
	if r.basePath != "" {
		data, err := os.ReadFile(filepath.Join(r.basePath, name))
		if err == nil {
			return data, nil
		}
		if !os.IsNotExist(err) {
			return nil, err
		}
	}
	return fsys.ReadFile(embeddedDir + "/" + name)
}

// validateAssetName rejects names with path separators or traversal so
// a type name can never escape the asset directories.
func validateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty type name", ErrUnknownType)
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return fmt.Errorf("%w: invalid type name %q", ErrUnknownType, name)
	}
	return nil
}
