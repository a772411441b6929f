package tex2yaml

import (
	"strings"
	"testing"
)

func TestLimitBlankLines(t *testing.T) {
	tests := []struct {
		name  string
		input string
		max   int
		want  string
	}{
		{
			name:  "no blanks unchanged",
			input: "a\nb\nc",
			max:   1,
			want:  "a\nb\nc",
		},
		{
			name:  "run capped at one",
			input: "a\n\n\n\nb",
			max:   1,
			want:  "a\n\nb",
		},
		{
			name:  "zero removes all blanks",
			input: "a\n\nb\n\n\nc",
			max:   0,
			want:  "a\nb\nc",
		},
		{
			name:  "whitespace-only lines count as blank",
			input: "a\n   \n\t\nb",
			max:   1,
			want:  "a\n\nb",
		},
		{
			name:  "cap of two",
			input: "a\n\n\n\n\nb",
			max:   2,
			want:  "a\n\n\nb",
		},
		{
			name:  "empty string",
			input: "",
			max:   1,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LimitBlankLines(tt.input, tt.max)
			if got != tt.want {
				t.Errorf("LimitBlankLines(%q, %d) = %q, want %q", tt.input, tt.max, got, tt.want)
			}
		})
	}
}

func TestNormalizeSource(t *testing.T) {
	t.Run("tabs become spaces", func(t *testing.T) {
		got := NormalizeSource("a\tb")
		if strings.Contains(got, "\t") {
			t.Errorf("output still contains tabs: %q", got)
		}
	})

	t.Run("vspace at column boundary removed", func(t *testing.T) {
		src := "\\switchcolumn\n\\vspace{10pt}\ncontent"
		got := NormalizeSource(src)
		if strings.Contains(got, `\vspace`) {
			t.Errorf("vspace survived: %q", got)
		}
		if !strings.Contains(got, `\switchcolumn`) {
			t.Errorf("switchcolumn lost: %q", got)
		}
	})

	t.Run("items get a blank line before them", func(t *testing.T) {
		src := "\\begin{itemizeMain}\n    \\itemi one\n    \\itemi two\n\\end{itemizeMain}"
		got := NormalizeSource(src)
		if !strings.Contains(got, "\n\n    \\itemi one") {
			t.Errorf("missing blank line before first item: %q", got)
		}
		if !strings.Contains(got, "\n\n    \\itemi two") {
			t.Errorf("missing blank line before second item: %q", got)
		}
	})

	t.Run("comment-only lines removed", func(t *testing.T) {
		src := "a\n  %  \nb"
		got := NormalizeSource(src)
		if strings.Contains(got, "%") {
			t.Errorf("comment line survived: %q", got)
		}
	})

	t.Run("bracket brace gap closed", func(t *testing.T) {
		got := NormalizeSource(`\item[x]  {\scshape Name}`)
		if !strings.Contains(got, `]{\scshape`) {
			t.Errorf("gap not closed: %q", got)
		}
	})

	t.Run("blank runs capped at two", func(t *testing.T) {
		got := NormalizeSource("a\n\n\n\n\n\nb")
		if strings.Contains(got, "\n\n\n\n") {
			t.Errorf("blank run too long: %q", got)
		}
	})
}
