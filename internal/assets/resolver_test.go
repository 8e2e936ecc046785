package assets

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNewAssetResolver(t *testing.T) {
	t.Parallel()

	t.Run("embedded only", func(t *testing.T) {
		t.Parallel()

		r, err := NewAssetResolver("")
		if err != nil {
			t.Fatalf("NewAssetResolver(\"\") error = %v", err)
		}
		if r.HasCustomLoader() {
			t.Error("HasCustomLoader() = true, want false")
		}
	})

	t.Run("invalid custom path", func(t *testing.T) {
		t.Parallel()

		_, err := NewAssetResolver("/nonexistent/storypdf/templates")
		if !errors.Is(err, ErrInvalidBasePath) {
			t.Errorf("error = %v, want ErrInvalidBasePath", err)
		}
	})
}

func TestAssetResolver_CustomWithFallback(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeAsset(t, dir, "pdf-styles.css", "body { color: blue; }")

	r, err := NewAssetResolver(dir)
	if err != nil {
		t.Fatalf("NewAssetResolver() error = %v", err)
	}

	t.Run("custom stylesheet overrides embedded", func(t *testing.T) {
		t.Parallel()

		css, err := r.LoadStyle(DefaultStyleName)
		if err != nil {
			t.Fatalf("LoadStyle() error = %v", err)
		}
		if css != "body { color: blue; }" {
			t.Errorf("LoadStyle() = %q, want custom content", css)
		}
	})

	t.Run("missing custom template falls back to embedded", func(t *testing.T) {
		t.Parallel()

		tpl, err := r.LoadTemplate(DefaultTemplateName)
		if err != nil {
			t.Fatalf("LoadTemplate() error = %v", err)
		}
		if !strings.Contains(tpl, "chapter") {
			t.Error("expected embedded template content")
		}
	})

	t.Run("missing everywhere", func(t *testing.T) {
		t.Parallel()

		_, err := r.LoadTemplate("ghost")
		if !errors.Is(err, ErrTemplateNotFound) {
			t.Errorf("error = %v, want ErrTemplateNotFound", err)
		}
	})

	t.Run("validation errors are not fallen back", func(t *testing.T) {
		t.Parallel()

		_, err := r.LoadTemplate("../etc")
		if !errors.Is(err, ErrInvalidAssetName) {
			t.Errorf("error = %v, want ErrInvalidAssetName", err)
		}
	})
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want bool
	}{
		{fmt.Errorf("wrap: %w", ErrTemplateNotFound), true},
		{ErrStyleNotFound, true},
		{ErrAssetRead, false},
		{nil, false},
	}
	for _, tt := range tests {
		if got := IsNotFound(tt.err); got != tt.want {
			t.Errorf("IsNotFound(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
