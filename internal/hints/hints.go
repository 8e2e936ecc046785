// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-storypdf/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForBrowserConnect returns hints for browser launch and connection errors.
func ForBrowserConnect() string {
	var hints []string

	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""

	// The sandbox is disabled by default; re-enabling it in containers usually fails.
	if sandbox := os.Getenv("ROD_NO_SANDBOX"); (inCI || IsInContainer()) && (sandbox == "0" || sandbox == "false") {
		hints = append(hints, "unset ROD_NO_SANDBOX=0 for Docker/CI")
	}

	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use custom Chrome")
	}

	hints = append(hints, "run 'storypdf doctor' to check the browser setup")

	return formatHints(hints)
}

// ForTimeout returns a hint about increasing the content timeout.
func ForTimeout() string {
	return format("for stories with many remote images, use --timeout flag")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in ~/.config/go-storypdf/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/go-storypdf") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForTemplateNotFound returns hints for template loading errors.
func ForTemplateNotFound(templateDir string) string {
	if templateDir == "" {
		return format("set STORYPDF_TEMPLATE_DIR or --templates to a directory with <name>.html")
	}
	return format("check that " + templateDir + " contains the template as <name>.html")
}

// ForValidation returns a hint describing the minimal valid story document.
func ForValidation() string {
	return format(`a story needs "id", "name" and "story" with a "title" and at least one chapter`)
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
