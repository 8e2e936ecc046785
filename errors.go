package storypdf

import (
	"errors"
	"strings"
)

// Sentinel errors for library operations.
var (
	ErrValidation     = errors.New("invalid story")
	ErrTemplateLoad   = errors.New("template loading failed")
	ErrTemplateRender = errors.New("template rendering failed")
	ErrIO             = errors.New("artifact I/O failed")

	// ErrInvalidFileName is returned when an artifact name would escape the output directory.
	ErrInvalidFileName = errors.New("invalid artifact file name")

	// Rendering errors. ErrRender is always joined with one of the phase
	// sentinels below so callers can match either.
	ErrRender         = errors.New("PDF rendering failed")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrFontsLoad      = errors.New("failed waiting for fonts")
	ErrPDFGeneration  = errors.New("PDF generation failed")
	ErrEngineClosed   = errors.New("rendering engine is shut down")

	// Configuration errors.
	ErrInvalidBackend   = errors.New("invalid rendering backend")
	ErrInvalidOverrides = errors.New("invalid print overrides")
)

// ValidationError lists every problem found in a story document.
// It matches ErrValidation with errors.Is.
type ValidationError struct {
	// Missing holds required top-level fields that were absent.
	Missing []string
	Reason  string
}

func (e *ValidationError) Error() string {
	if len(e.Missing) > 0 {
		return "missing required fields: " + strings.Join(e.Missing, ", ")
	}
	return e.Reason
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// renderError joins ErrRender with a phase sentinel and the underlying cause.
// The phase appears in the message so logs name the failing step.
type renderError struct {
	phase error
	cause error
}

func (e *renderError) Error() string {
	if e.cause == nil {
		return ErrRender.Error() + ": " + e.phase.Error()
	}
	return ErrRender.Error() + ": " + e.phase.Error() + ": " + e.cause.Error()
}

func (e *renderError) Unwrap() []error {
	if e.cause == nil {
		return []error{ErrRender, e.phase}
	}
	return []error{ErrRender, e.phase, e.cause}
}

func newRenderError(phase, cause error) error {
	return &renderError{phase: phase, cause: cause}
}
