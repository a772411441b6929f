package tex2yaml

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSetNested(t *testing.T) {
	t.Run("creates intermediate maps", func(t *testing.T) {
		m := map[string]any{}
		if err := SetNested(m, "content.meta.dates", "2020"); err != nil {
			t.Fatalf("SetNested() error = %v", err)
		}
		want := map[string]any{
			"content": map[string]any{
				"meta": map[string]any{
					"dates": "2020",
				},
			},
		}
		if diff := cmp.Diff(want, m); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("reuses existing maps", func(t *testing.T) {
		m := map[string]any{
			"content": map[string]any{"existing": "x"},
		}
		if err := SetNested(m, "content.added", "y"); err != nil {
			t.Fatalf("SetNested() error = %v", err)
		}
		if got := GetString(m, "content.existing"); got != "x" {
			t.Errorf("existing value lost, got %q", got)
		}
		if got := GetString(m, "content.added"); got != "y" {
			t.Errorf("added value = %q, want %q", got, "y")
		}
	})

	t.Run("non-map on path is an error", func(t *testing.T) {
		m := map[string]any{"content": "scalar"}
		if err := SetNested(m, "content.inner", "v"); err == nil {
			t.Fatal("SetNested() expected error, got nil")
		}
	})

	t.Run("single element path", func(t *testing.T) {
		m := map[string]any{}
		if err := SetNested(m, "name", "Resume"); err != nil {
			t.Fatalf("SetNested() error = %v", err)
		}
		if m["name"] != "Resume" {
			t.Errorf("m[name] = %v, want Resume", m["name"])
		}
	})
}

func TestGetNested(t *testing.T) {
	m := map[string]any{
		"content": map[string]any{
			"items": []any{"a", "b"},
			"meta":  map[string]any{"title": "Engineer"},
		},
	}

	tests := []struct {
		name   string
		path   string
		want   any
		wantOK bool
	}{
		{"nested value", "content.meta.title", "Engineer", true},
		{"slice value", "content.items", []any{"a", "b"}, true},
		{"missing leaf", "content.meta.absent", nil, false},
		{"missing branch", "absent.meta.title", nil, false},
		{"non-map on path", "content.items.x", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := GetNested(m, tt.path)
			if ok != tt.wantOK {
				t.Fatalf("GetNested(%q) ok = %v, want %v", tt.path, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("GetNested(%q) mismatch (-want +got):\n%s", tt.path, diff)
			}
		})
	}
}

func TestGetString(t *testing.T) {
	m := map[string]any{
		"name": "Skills",
		"n":    3,
	}
	if got := GetString(m, "name"); got != "Skills" {
		t.Errorf("GetString(name) = %q, want %q", got, "Skills")
	}
	if got := GetString(m, "absent"); got != "" {
		t.Errorf("GetString(absent) = %q, want empty", got)
	}
	if got := GetString(m, "n"); got != "" {
		t.Errorf("GetString on non-string = %q, want empty", got)
	}
}

func TestSectionType(t *testing.T) {
	if got := (Section{"type": TypeProjects}).Type(); got != TypeProjects {
		t.Errorf("Type() = %q, want %q", got, TypeProjects)
	}
	if got := (Section{}).Type(); got != TypeUnknown {
		t.Errorf("Type() on empty = %q, want %q", got, TypeUnknown)
	}
	if got := (Section{"type": ""}).Type(); got != TypeUnknown {
		t.Errorf("Type() on blank = %q, want %q", got, TypeUnknown)
	}
}

func TestContentItem(t *testing.T) {
	item := ContentItem("itemi", `Built \textbf{large} systems`)
	if item["marker"] != "itemi" {
		t.Errorf("marker = %v", item["marker"])
	}
	if item["latex_raw"] != `Built \textbf{large} systems` {
		t.Errorf("latex_raw = %v", item["latex_raw"])
	}
	if item["plaintext"] != "Built large systems" {
		t.Errorf("plaintext = %v", item["plaintext"])
	}
}
