package main

import (
	"context"
	"errors"
	"os"

	storypdf "github.com/alnah/go-storypdf"
	"github.com/alnah/go-storypdf/internal/config"
	"github.com/alnah/go-storypdf/internal/hints"
)

// Exit codes for storypdf CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful generation
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or story document
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Browser or template errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser/template errors (exit 4)
	if errors.Is(err, storypdf.ErrRender) ||
		errors.Is(err, storypdf.ErrBrowserConnect) ||
		errors.Is(err, storypdf.ErrPageCreate) ||
		errors.Is(err, storypdf.ErrPageLoad) ||
		errors.Is(err, storypdf.ErrFontsLoad) ||
		errors.Is(err, storypdf.ErrPDFGeneration) ||
		errors.Is(err, storypdf.ErrEngineClosed) ||
		errors.Is(err, storypdf.ErrTemplateLoad) ||
		errors.Is(err, storypdf.ErrTemplateRender) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, storypdf.ErrIO) ||
		errors.Is(err, ErrReadStory) ||
		errors.Is(err, ErrNoInput) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, storypdf.ErrValidation) ||
		errors.Is(err, storypdf.ErrInvalidOverrides) ||
		errors.Is(err, storypdf.ErrInvalidFileName) ||
		errors.Is(err, storypdf.ErrInvalidBackend) ||
		errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrUnknownCommand) ||
		errors.Is(err, ErrInvalidWorkerCount) {
		return ExitUsage
	}

	return ExitGeneral
}

// hintFor returns an actionable hint to append to err, or "".
// cfg may be nil when configuration failed to load.
func hintFor(err error, f *commonFlags, cfg *config.Config) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(config.SearchPaths(f.config))
	case errors.Is(err, storypdf.ErrTemplateLoad):
		dir := ""
		if cfg != nil {
			dir = cfg.Templates.Dir
		}
		return hints.ForTemplateNotFound(dir)
	case errors.Is(err, storypdf.ErrValidation):
		return hints.ForValidation()
	case errors.Is(err, storypdf.ErrRender) && errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, storypdf.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, storypdf.ErrIO):
		return hints.ForOutputDirectory()
	}
	return ""
}
