package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-rod/rod/lib/launcher"

	"github.com/alnah/go-storypdf/internal/assets"
	"github.com/alnah/go-storypdf/internal/config"
	"github.com/alnah/go-storypdf/internal/fileutil"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status    string        `json:"status"` // "ready", "warnings", "errors"
	Chrome    chromeInfo    `json:"chrome"`
	Env       envInfo       `json:"environment"`
	Templates templatesInfo `json:"templates"`
	Output    outputInfo    `json:"output"`
	Warnings  []string      `json:"warnings,omitempty"`
	Errors    []string      `json:"errors,omitempty"`
}

// chromeInfo holds Chrome/Chromium detection results.
type chromeInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
}

// templatesInfo reports where templates are read from.
type templatesInfo struct {
	Dir      string   `json:"dir,omitempty"`
	Name     string   `json:"name"`
	Embedded bool     `json:"embedded"`
	Builtin  []string `json:"builtin"`
}

// outputInfo reports the artifact directory state.
type outputInfo struct {
	Dir      string `json:"dir"`
	Exists   bool   `json:"exists"`
	Writable bool   `json:"writable"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(args []string, env *Environment) int {
	jsonOutput := false
	for _, arg := range args {
		if arg == "--json" {
			jsonOutput = true
		}
	}

	result := runDoctor(env.Getenv)

	if jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(getenv func(string) string) *doctorResult {
	cfg := config.DefaultConfig()
	cfg.ApplyEnv(getenv)

	result := &doctorResult{
		Status: "ready",
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  getenv(config.EnvNoSandbox),
			BrowserBin: getenv(config.EnvBrowserBin),
		},
	}
	result.Chrome.Sandbox = cfg.Engine.Sandbox

	checkChrome(result)
	checkEnvironment(result, getenv)
	checkTemplates(result, cfg.Templates.Dir, cfg.Templates.Name)
	checkOutput(result, cfg.Output.Dir)

	// Determine final status
	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}

	return result
}

// checkChrome detects Chrome/Chromium installation.
func checkChrome(result *doctorResult) {
	chromePath := result.Env.BrowserBin

	if chromePath == "" {
		// Use rod's launcher to locate Chrome
		var found bool
		chromePath, found = launcher.LookPath()
		if !found {
			result.Errors = append(result.Errors,
				"Chrome/Chromium not found. Install Chrome or set ROD_BROWSER_BIN")
			return
		}
	}

	// Verify it exists
	if _, err := os.Stat(chromePath); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Chrome not found at %s", chromePath))
		return
	}

	result.Chrome.Found = true
	result.Chrome.Path = chromePath

	// Get version by running chrome --version
	cmd := exec.Command(chromePath, "--version") // #nosec G204 -- browser path from env or rod lookup
	out, err := cmd.Output()
	if err == nil {
		result.Chrome.Version = strings.TrimSpace(string(out))
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get Chrome version: %v", err))
	}
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult, getenv func(string) string) {
	result.Env.Container, result.Env.ContainerHint = isContainer(getenv)

	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}
	for _, v := range ciVars {
		if getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	// The sandbox is off unless ROD_NO_SANDBOX=0; containers rarely support it.
	if (result.Env.Container || result.Env.CI) && result.Chrome.Sandbox {
		result.Warnings = append(result.Warnings,
			"Container/CI detected with the Chrome sandbox enabled. Unset ROD_NO_SANDBOX=0")
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer(getenv func(string) string) (bool, string) {
	// Explicit override (highest priority)
	if getenv("STORYPDF_CONTAINER") == "1" {
		return true, "STORYPDF_CONTAINER=1"
	}
	// Docker
	if fileutil.FileExists("/.dockerenv") {
		return true, "/.dockerenv"
	}
	// Podman / systemd-nspawn / general container indicator
	if v := getenv("container"); v != "" {
		return true, "container=" + v
	}
	// Kubernetes
	if getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkTemplates verifies the configured template resolves, falling back to
// the embedded set the same way rendering does.
func checkTemplates(result *doctorResult, dir, name string) {
	result.Templates.Dir = dir
	result.Templates.Name = name
	result.Templates.Builtin = assets.NewEmbeddedLoader().TemplateNames()

	resolver, err := assets.NewAssetResolver(dir)
	if err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Template directory not found: %s", dir))
		return
	}
	result.Templates.Embedded = !resolver.HasCustomLoader()

	if name == "" {
		name = assets.DefaultTemplateName
		result.Templates.Name = name
	}
	if _, err := resolver.LoadTemplate(name); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Template %q cannot be loaded: %v", name, err))
	}
}

// checkOutput verifies the output directory is writable. A missing
// directory is fine; it is created on the first save.
func checkOutput(result *doctorResult, dir string) {
	result.Output.Dir = dir

	info, err := os.Stat(dir)
	if errors.Is(err, os.ErrNotExist) {
		result.Output.Writable = true
		return
	}
	if err != nil || !info.IsDir() {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Output path is not a directory: %s", dir))
		return
	}
	result.Output.Exists = true

	testFile := filepath.Join(dir, ".storypdf-doctor-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Output directory not writable: %s", dir))
		return
	}
	_ = os.Remove(testFile)
	result.Output.Writable = true
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "storypdf doctor")
	fmt.Fprintln(w)

	// Chrome section
	fmt.Fprintln(w, "Chrome/Chromium")
	if r.Chrome.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Chrome.Path)
		if r.Chrome.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Chrome.Version)
		}
		if r.Chrome.Sandbox {
			fmt.Fprintln(w, "  [OK] Sandbox: enabled (ROD_NO_SANDBOX=0)")
		} else {
			fmt.Fprintln(w, "  [OK] Sandbox: disabled")
		}
	} else {
		fmt.Fprintln(w, "  [ERROR] Not found")
	}
	fmt.Fprintln(w)

	// Environment section
	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	// Templates and output
	fmt.Fprintln(w, "Files")
	if r.Templates.Embedded {
		fmt.Fprintln(w, "  [OK] Templates: embedded")
	} else {
		fmt.Fprintf(w, "  [OK] Templates: %s\n", r.Templates.Dir)
	}
	if len(r.Templates.Builtin) > 0 {
		fmt.Fprintf(w, "       Built-in: %s\n", strings.Join(r.Templates.Builtin, ", "))
	}
	switch {
	case r.Output.Writable && r.Output.Exists:
		fmt.Fprintf(w, "  [OK] Output directory: %s (writable)\n", r.Output.Dir)
	case r.Output.Writable:
		fmt.Fprintf(w, "  [OK] Output directory: %s (created on first save)\n", r.Output.Dir)
	default:
		fmt.Fprintf(w, "  [ERROR] Output directory: %s\n", r.Output.Dir)
	}
	fmt.Fprintln(w)

	// Warnings
	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	// Errors
	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	// Final status
	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to generate")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
