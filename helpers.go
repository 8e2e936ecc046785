package storypdf

import (
	"html/template"
	"reflect"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/alnah/go-storypdf/internal/dateutil"
	"github.com/alnah/go-storypdf/internal/pipeline"
)

// Template helper names. The table is fixed; templates cannot register more.
const (
	helperCapitalize = "capitalize"
	helperEq         = "eq"
	helperFormatDate = "formatDate"
	helperLength     = "length"
	helperIfEq       = "ifEq"
	helperMarkdown   = "markdown"
)

// HelperNames returns the names of the template helpers, sorted.
func HelperNames() []string {
	names := make([]string, 0, 6)
	for name := range helperFuncs(nil) {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// helperFuncs builds the helper table. md may be nil when only the names are needed.
func helperFuncs(md pipeline.FragmentRenderer) template.FuncMap {
	return template.FuncMap{
		helperCapitalize: capitalize,
		helperEq:         strictEqual,
		helperFormatDate: formatDate,
		helperLength:     length,
		helperIfEq:       ifEq,
		helperMarkdown: func(v any) (template.HTML, error) {
			s, ok := v.(string)
			if !ok || s == "" || md == nil {
				return "", nil
			}
			out, err := md.RenderFragment(s)
			if err != nil {
				return "", err
			}
			// #nosec G203 -- goldmark output with raw HTML disabled
			return template.HTML(out), nil
		},
	}
}

// capitalize upper-cases the first rune using Spanish casing rules.
// Non-string values are rendered with their String method when they have one.
func capitalize(v any) string {
	var s string
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		s = x
	case interface{ String() string }:
		s = x.String()
	default:
		return ""
	}
	if s == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(s)
	// A Caser is stateful, so one is built per call.
	return cases.Upper(language.Spanish).String(string(r)) + s[size:]
}

// strictEqual reports whether a and b have the same dynamic type and value.
// Values that cannot be compared are never equal.
func strictEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	if !va.Comparable() || !vb.Comparable() {
		return false
	}
	return va.Equal(vb)
}

// formatDate renders a time.Time, *time.Time or timestamp string in long
// Spanish form. Anything else, including unparsable strings, renders as "".
func formatDate(v any) string {
	switch x := v.(type) {
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return dateutil.FormatSpanishLong(x)
	case *time.Time:
		if x == nil || x.IsZero() {
			return ""
		}
		return dateutil.FormatSpanishLong(*x)
	case string:
		if strings.TrimSpace(x) == "" {
			return ""
		}
		t, err := dateutil.ParseTimestamp(x)
		if err != nil {
			return ""
		}
		return dateutil.FormatSpanishLong(t)
	default:
		return ""
	}
}

// length returns the length of a slice, array, map, string or channel,
// following pointers. Other values have length 0.
func length(v any) int {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return 0
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.String, reflect.Chan:
		return rv.Len()
	default:
		return 0
	}
}

// ifEq returns then when a and b are strictly equal, otherwise els.
func ifEq(a, b, then, els any) any {
	if strictEqual(a, b) {
		return then
	}
	return els
}
