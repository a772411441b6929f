package yamlutil_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/alnah/go-tex2yaml/internal/yamlutil"
)

type testEntry struct {
	Title   string `yaml:"title"`
	Order   int    `yaml:"order"`
	Visible bool   `yaml:"visible"`
}

func TestUnmarshal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    []byte
		dest    any
		wantErr error
		check   func(t *testing.T, v any)
	}{
		{
			name: "valid YAML",
			data: []byte("title: intro\norder: 3\nvisible: true"),
			dest: &testEntry{},
			check: func(t *testing.T, v any) {
				e := v.(*testEntry)
				if e.Title != "intro" {
					t.Errorf("Title = %q, want %q", e.Title, "intro")
				}
				if e.Order != 3 {
					t.Errorf("Order = %d, want %d", e.Order, 3)
				}
				if !e.Visible {
					t.Error("Visible = false, want true")
				}
			},
		},
		{
			name:    "nil data",
			data:    nil,
			dest:    &testEntry{},
			wantErr: yamlutil.ErrNilData,
		},
		{
			name:    "empty data",
			data:    []byte{},
			dest:    &testEntry{},
			wantErr: yamlutil.ErrNilData,
		},
		{
			name:    "nil destination",
			data:    []byte("title: x"),
			dest:    nil,
			wantErr: yamlutil.ErrNilDestination,
		},
		{
			name:    "invalid YAML syntax",
			data:    []byte("title: [unclosed"),
			dest:    &testEntry{},
			wantErr: errors.New("yamlutil:"), // partial match
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := yamlutil.Unmarshal(tt.data, tt.dest)
			if tt.wantErr != nil {
				if err == nil {
					t.Fatalf("expected error containing %q, got nil", tt.wantErr)
				}
				if errors.Is(err, tt.wantErr) {
					return
				}
				if !strings.Contains(err.Error(), tt.wantErr.Error()) {
					t.Fatalf("error = %q, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.check != nil {
				tt.check(t, tt.dest)
			}
		})
	}
}

func TestUnmarshalStrict(t *testing.T) {
	t.Parallel()

	t.Run("known fields only", func(t *testing.T) {
		t.Parallel()

		var e testEntry
		if err := yamlutil.UnmarshalStrict([]byte("title: strict\norder: 1"), &e); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if e.Title != "strict" || e.Order != 1 {
			t.Errorf("got %+v, want title=strict order=1", e)
		}
	})

	t.Run("unknown field causes error", func(t *testing.T) {
		t.Parallel()

		var e testEntry
		err := yamlutil.UnmarshalStrict([]byte("title: x\nbogus_field: y"), &e)
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !strings.HasPrefix(err.Error(), "yamlutil:") {
			t.Errorf("error = %q, want prefix 'yamlutil:'", err)
		}
	})
}

func TestMarshal(t *testing.T) {
	t.Parallel()

	t.Run("valid struct", func(t *testing.T) {
		t.Parallel()

		data, err := yamlutil.Marshal(&testEntry{Title: "out", Order: 5, Visible: true})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		s := string(data)
		for _, want := range []string{"title: out", "order: 5", "visible: true"} {
			if !strings.Contains(s, want) {
				t.Errorf("output missing %q, got: %s", want, s)
			}
		}
	})

	t.Run("multiline string uses literal block", func(t *testing.T) {
		t.Parallel()

		data, err := yamlutil.Marshal(map[string]string{
			"body": "\\textbf{First line}\n\\textit{Second line}",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(string(data), "body: |") {
			t.Errorf("expected literal block style, got: %s", data)
		}
	})
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	original := testEntry{Title: "roundtrip", Order: 99, Visible: true}

	data, err := yamlutil.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded testEntry
	if err := yamlutil.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if decoded != original {
		t.Errorf("decoded = %+v, want %+v", decoded, original)
	}
}

// Note: these subtests modify the global MaxInputSize variable, so the
// test cannot run in parallel with others.
func TestInputSizeLimit(t *testing.T) {
	originalMax := yamlutil.MaxInputSize
	t.Cleanup(func() { yamlutil.MaxInputSize = originalMax })

	t.Run("input at limit succeeds", func(t *testing.T) {
		yamlutil.MaxInputSize = 100
		data := make([]byte, 100)
		copy(data, []byte("title: x"))
		var e testEntry
		if err := yamlutil.Unmarshal(data, &e); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("input exceeding limit fails", func(t *testing.T) {
		yamlutil.MaxInputSize = 100
		data := make([]byte, 101)
		copy(data, []byte("title: x"))
		var e testEntry
		err := yamlutil.Unmarshal(data, &e)
		if !errors.Is(err, yamlutil.ErrInputTooLarge) {
			t.Errorf("errors.Is(err, ErrInputTooLarge) = false, got: %v", err)
		}
	})

	t.Run("UnmarshalStrict also enforces limit", func(t *testing.T) {
		yamlutil.MaxInputSize = 100
		data := make([]byte, 101)
		copy(data, []byte("title: x"))
		var e testEntry
		err := yamlutil.UnmarshalStrict(data, &e)
		if !errors.Is(err, yamlutil.ErrInputTooLarge) {
			t.Errorf("errors.Is(err, ErrInputTooLarge) = false, got: %v", err)
		}
	})
}
