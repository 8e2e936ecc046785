package storypdf

// Notes:
// - The markdown helper is covered through TemplateRenderer in
//   templates_test.go; here only its nil and non-string inputs are checked.

import (
	"html/template"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/alnah/go-storypdf/internal/pipeline"
)

// ---------------------------------------------------------------------------
// TestHelperNames - The helper table is fixed
// ---------------------------------------------------------------------------

func TestHelperNames(t *testing.T) {
	t.Parallel()

	want := []string{"capitalize", "eq", "formatDate", "ifEq", "length", "markdown"}
	if got := HelperNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("HelperNames() = %v, want %v", got, want)
	}
}

// ---------------------------------------------------------------------------
// TestCapitalize - First rune upper-cased
// ---------------------------------------------------------------------------

type stringer string

func (s stringer) String() string { return string(s) }

func TestCapitalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   any
		want string
	}{
		{name: "nil", in: nil, want: ""},
		{name: "empty", in: "", want: ""},
		{name: "ascii", in: "el bosque", want: "El bosque"},
		{name: "already capitalized", in: "Luna", want: "Luna"},
		{name: "accented first rune", in: "ética", want: "Ética"},
		{name: "enye", in: "ñandú", want: "Ñandú"},
		{name: "only first word", in: "un dragón azul", want: "Un dragón azul"},
		{name: "stringer", in: stringer("sol"), want: "Sol"},
		{name: "number", in: 42, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := capitalize(tt.in); got != tt.want {
				t.Errorf("capitalize(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestStrictEqual - Same type and value
// ---------------------------------------------------------------------------

func TestStrictEqual(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{name: "equal strings", a: "a", b: "a", want: true},
		{name: "different strings", a: "a", b: "b", want: false},
		{name: "int vs string", a: 1, b: "1", want: false},
		{name: "int vs int64", a: 1, b: int64(1), want: false},
		{name: "equal ints", a: 3, b: 3, want: true},
		{name: "both nil", a: nil, b: nil, want: true},
		{name: "nil vs zero", a: nil, b: 0, want: false},
		{name: "slices are never equal", a: []int{1}, b: []int{1}, want: false},
		{name: "equal structs", a: ImageRef{URL: "x"}, b: ImageRef{URL: "x"}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := strictEqual(tt.a, tt.b); got != tt.want {
				t.Errorf("strictEqual(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestFormatDate - Spanish long form
// ---------------------------------------------------------------------------

func TestFormatDate(t *testing.T) {
	t.Parallel()

	when := time.Date(2026, time.October, 19, 14, 5, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   any
		want string
	}{
		{name: "time value", in: when, want: "19 de octubre de 2026, 14:05"},
		{name: "time pointer", in: &when, want: "19 de octubre de 2026, 14:05"},
		{name: "RFC 3339 string", in: "2026-01-02T08:30:00Z", want: "2 de enero de 2026, 08:30"},
		{name: "date only", in: "2026-12-31", want: "31 de diciembre de 2026, 00:00"},
		{name: "nil", in: nil, want: ""},
		{name: "nil pointer", in: (*time.Time)(nil), want: ""},
		{name: "zero time", in: time.Time{}, want: ""},
		{name: "blank string", in: "  ", want: ""},
		{name: "garbage", in: "yesterday", want: ""},
		{name: "number", in: 1700000000, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := formatDate(tt.in); got != tt.want {
				t.Errorf("formatDate(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestLength - Collection sizes
// ---------------------------------------------------------------------------

func TestLength(t *testing.T) {
	t.Parallel()

	chapters := []Chapter{{Number: 1}, {Number: 2}}

	tests := []struct {
		name string
		in   any
		want int
	}{
		{name: "nil", in: nil, want: 0},
		{name: "slice", in: chapters, want: 2},
		{name: "pointer to slice", in: &chapters, want: 2},
		{name: "nil slice", in: []ImageRef(nil), want: 0},
		{name: "map", in: map[string]int{"a": 1}, want: 1},
		{name: "string", in: "abc", want: 3},
		{name: "array", in: [3]int{}, want: 3},
		{name: "int", in: 5, want: 0},
		{name: "nil pointer", in: (*[]Chapter)(nil), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := length(tt.in); got != tt.want {
				t.Errorf("length(%v) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestIfEq - Branch selection inside templates
// ---------------------------------------------------------------------------

func TestIfEq(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		tmpl string
		data any
		want string
	}{
		{
			name: "equal selects then",
			tmpl: `{{ifEq .N 1 "capítulo" "capítulos"}}`,
			data: map[string]any{"N": 1},
			want: "capítulo",
		},
		{
			name: "different selects else",
			tmpl: `{{ifEq .N 1 "capítulo" "capítulos"}}`,
			data: map[string]any{"N": 3},
			want: "capítulos",
		},
		{
			name: "type mismatch selects else",
			tmpl: `{{ifEq .N "1" "yes" "no"}}`,
			data: map[string]any{"N": 1},
			want: "no",
		},
		{
			name: "eq overrides the loose builtin",
			tmpl: `{{if eq .N "1"}}yes{{else}}no{{end}}`,
			data: map[string]any{"N": 1},
			want: "no",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tmpl := template.Must(template.New("t").Funcs(helperFuncs(nil)).Parse(tt.tmpl))
			var sb strings.Builder
			if err := tmpl.Execute(&sb, tt.data); err != nil {
				t.Fatalf("Execute() error: %v", err)
			}
			if sb.String() != tt.want {
				t.Errorf("got %q, want %q", sb.String(), tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestMarkdownHelper - Edge inputs
// ---------------------------------------------------------------------------

func TestMarkdownHelper(t *testing.T) {
	t.Parallel()

	md := helperFuncs(pipeline.NewGoldmarkRenderer())[helperMarkdown].(func(any) (template.HTML, error))

	tests := []struct {
		name string
		in   any
		want string
	}{
		{name: "nil", in: nil, want: ""},
		{name: "empty", in: "", want: ""},
		{name: "non-string", in: 3, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := md(tt.in)
			if err != nil {
				t.Fatalf("markdown(%v) error: %v", tt.in, err)
			}
			if string(got) != tt.want {
				t.Errorf("markdown(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}

	t.Run("emphasis", func(t *testing.T) {
		t.Parallel()

		got, err := md("Había una *vez*.")
		if err != nil {
			t.Fatalf("markdown() error: %v", err)
		}
		if !strings.Contains(string(got), "<em>vez</em>") {
			t.Errorf("markdown() = %q, want <em>vez</em>", got)
		}
	})
}
