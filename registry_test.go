package tex2yaml

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRegistryConfig(t *testing.T) {
	r := NewRegistry()

	t.Run("loads embedded config", func(t *testing.T) {
		cfg, err := r.Config("work_experience")
		if err != nil {
			t.Fatalf("Config() error = %v", err)
		}
		if len(cfg.Operations) == 0 {
			t.Error("config has no parse ops")
		}
	})

	t.Run("caches between calls", func(t *testing.T) {
		a, err := r.Config("projects")
		if err != nil {
			t.Fatalf("Config() error = %v", err)
		}
		b, err := r.Config("projects")
		if err != nil {
			t.Fatalf("Config() second call error = %v", err)
		}
		if a != b {
			t.Error("expected the cached pointer on second call")
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		if _, err := r.Config("no_such_type"); err == nil {
			t.Error("expected error for unknown type")
		}
	})
}

func TestRegistryTemplate(t *testing.T) {
	r := NewRegistry()

	tmpl, err := r.Template("skill_list_pipes")
	if err != nil {
		t.Fatalf("Template() error = %v", err)
	}

	t.Run("missing keys are errors", func(t *testing.T) {
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, map[string]any{}); err == nil {
			t.Error("expected missing-key execution error")
		}
	})
}

func TestValidateAssetName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"work_experience", false},
		{"", true},
		{"../etc/passwd", true},
		{"a/b", true},
		{`a\b`, true},
	}
	for _, tt := range tests {
		err := validateAssetName(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("validateAssetName(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}

func TestRegistryBasePathOverride(t *testing.T) {
	dir := t.TempDir()
	override := "override <<<.name>>> text\n"
	if err := os.WriteFile(filepath.Join(dir, "skill_list_pipes.tmpl"), []byte(override), 0o600); err != nil {
		t.Fatal(err)
	}

	r, err := NewRegistryWithPath(dir)
	if err != nil {
		t.Fatalf("NewRegistryWithPath() error = %v", err)
	}

	tmpl, err := r.Template("skill_list_pipes")
	if err != nil {
		t.Fatalf("Template() error = %v", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]any{"name": "Tools"}); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got := buf.String(); !strings.Contains(got, "override Tools text") {
		t.Errorf("override not used, got %q", got)
	}

	t.Run("falls back to embedded for others", func(t *testing.T) {
		if _, err := r.Config("projects"); err != nil {
			t.Errorf("embedded fallback failed: %v", err)
		}
	})

	t.Run("rejects missing directory", func(t *testing.T) {
		if _, err := NewRegistryWithPath(filepath.Join(dir, "absent")); err == nil {
			t.Error("expected error for missing directory")
		}
	})
}

func TestRegistryClearCache(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "skill_list_pipes.tmpl")
	if err := os.WriteFile(path, []byte("first <<<.name>>>\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	r, err := NewRegistryWithPath(dir)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Template("skill_list_pipes"); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte("second <<<.name>>>\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	r.ClearCache()

	tmpl, err := r.Template("skill_list_pipes")
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]any{"name": "X"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "second X") {
		t.Errorf("edit not picked up after ClearCache, got %q", buf.String())
	}
}
