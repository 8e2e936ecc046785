package assets

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestNewFilesystemLoader(t *testing.T) {
	t.Parallel()

	t.Run("valid directory", func(t *testing.T) {
		t.Parallel()

		loader, err := NewFilesystemLoader(t.TempDir())
		if err != nil {
			t.Fatalf("NewFilesystemLoader() error = %v", err)
		}
		if loader.BasePath() == "" {
			t.Error("BasePath() is empty")
		}
	})

	t.Run("empty path returns error", func(t *testing.T) {
		t.Parallel()

		_, err := NewFilesystemLoader("")
		if !errors.Is(err, ErrInvalidBasePath) {
			t.Errorf("NewFilesystemLoader(\"\") error = %v, want ErrInvalidBasePath", err)
		}
	})

	t.Run("nonexistent directory returns error", func(t *testing.T) {
		t.Parallel()

		_, err := NewFilesystemLoader(filepath.Join(t.TempDir(), "missing"))
		if !errors.Is(err, ErrInvalidBasePath) {
			t.Errorf("NewFilesystemLoader() error = %v, want ErrInvalidBasePath", err)
		}
	})

	t.Run("file instead of directory returns error", func(t *testing.T) {
		t.Parallel()

		filePath := filepath.Join(t.TempDir(), "file.txt")
		if err := os.WriteFile(filePath, []byte("test"), 0o644); err != nil {
			t.Fatalf("failed to create test file: %v", err)
		}

		_, err := NewFilesystemLoader(filePath)
		if !errors.Is(err, ErrInvalidBasePath) {
			t.Errorf("NewFilesystemLoader() error = %v, want ErrInvalidBasePath", err)
		}
	})
}

func TestFilesystemLoader_Load(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeAsset(t, dir, "cuento.html", "<h1>{{.Story.Title}}</h1>")
	writeAsset(t, dir, "cuento.css", "h1 { color: red; }")

	loader, err := NewFilesystemLoader(dir)
	if err != nil {
		t.Fatalf("NewFilesystemLoader() error = %v", err)
	}

	t.Run("template", func(t *testing.T) {
		t.Parallel()

		got, err := loader.LoadTemplate("cuento")
		if err != nil {
			t.Fatalf("LoadTemplate() error = %v", err)
		}
		if got != "<h1>{{.Story.Title}}</h1>" {
			t.Errorf("LoadTemplate() = %q", got)
		}
	})

	t.Run("stylesheet", func(t *testing.T) {
		t.Parallel()

		got, err := loader.LoadStyle("cuento")
		if err != nil {
			t.Fatalf("LoadStyle() error = %v", err)
		}
		if got != "h1 { color: red; }" {
			t.Errorf("LoadStyle() = %q", got)
		}
	})

	t.Run("missing template names directory", func(t *testing.T) {
		t.Parallel()

		_, err := loader.LoadTemplate("other")
		if !errors.Is(err, ErrTemplateNotFound) {
			t.Fatalf("LoadTemplate(other) error = %v, want ErrTemplateNotFound", err)
		}
	})

	t.Run("invalid name", func(t *testing.T) {
		t.Parallel()

		_, err := loader.LoadStyle("a.b")
		if !errors.Is(err, ErrInvalidAssetName) {
			t.Errorf("LoadStyle(a.b) error = %v, want ErrInvalidAssetName", err)
		}
	})
}

func TestFilesystemLoader_PathContainment(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	secretFile := filepath.Join(t.TempDir(), "secret.css")
	writeAsset(t, filepath.Dir(secretFile), "secret.css", "secret content")

	if err := os.Symlink(secretFile, filepath.Join(dir, "evil.css")); err != nil {
		t.Skipf("symlink creation not supported: %v", err)
	}

	loader, err := NewFilesystemLoader(dir)
	if err != nil {
		t.Fatalf("NewFilesystemLoader() error = %v", err)
	}

	_, err = loader.LoadStyle("evil")
	if !errors.Is(err, ErrPathTraversal) {
		t.Errorf("LoadStyle() with symlink escape error = %v, want ErrPathTraversal", err)
	}
}

func writeAsset(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}
