// Package docerr holds the error taxonomy of the generation pipeline.
package docerr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ValidationError reports missing or malformed input fields. It is raised
// before composition and aborts only the affected document kind.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidation constructs an empty ValidationError ready for Add calls.
func NewValidation() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

// Add records a problem for the dotted field path.
func (e *ValidationError) Add(field, problem string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], problem)
}

// Empty reports whether no problem was recorded.
func (e *ValidationError) Empty() bool {
	return e == nil || len(e.Fields) == 0
}

// OrNil returns nil when no problem was recorded.
func (e *ValidationError) OrNil() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	if e.Empty() {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], ", ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// CompositionError reports a violated content-tree invariant.
type CompositionError struct {
	Kind   string
	Reason string
}

func (e *CompositionError) Error() string {
	if e.Kind == "" {
		return "composition failed: " + e.Reason
	}
	return fmt.Sprintf("composition failed (%s): %s", e.Kind, e.Reason)
}

// Compositionf builds a CompositionError with a formatted reason.
func Compositionf(kind, format string, args ...any) *CompositionError {
	return &CompositionError{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// RenderError reports a renderer-specific failure. Retryable marks failures
// of the shared browser resource that may clear after a recycle.
type RenderError struct {
	Renderer  string
	Format    string
	Retryable bool
	Err       error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s (%s): %v", e.Renderer, e.Format, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// PackagingError reports a storage write failure.
type PackagingError struct {
	Path string
	Err  error
}

func (e *PackagingError) Error() string {
	return fmt.Sprintf("package %s: %v", e.Path, e.Err)
}

func (e *PackagingError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err wraps a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsComposition reports whether err wraps a CompositionError.
func IsComposition(err error) bool {
	var target *CompositionError
	return errors.As(err, &target)
}

// IsRender reports whether err wraps a RenderError.
func IsRender(err error) bool {
	var target *RenderError
	return errors.As(err, &target)
}

// IsRetryable reports whether err wraps a retryable RenderError.
func IsRetryable(err error) bool {
	var target *RenderError
	return errors.As(err, &target) && target.Retryable
}

// IsPackaging reports whether err wraps a PackagingError.
func IsPackaging(err error) bool {
	var target *PackagingError
	return errors.As(err, &target)
}

// Category returns a stable identifier for the error class, used in API
// payloads and batch results.
func Category(err error) string {
	switch {
	case err == nil:
		return ""
	case IsValidation(err):
		return "validation"
	case IsComposition(err):
		return "composition"
	case IsRender(err):
		return "render"
	case IsPackaging(err):
		return "packaging"
	default:
		return "internal"
	}
}
