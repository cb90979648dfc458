package render

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-legaldocs/pkg/content"
	"github.com/goliatone/go-legaldocs/pkg/docerr"
)

// Fail wraps err into a RenderError attributed to r.
func Fail(r Renderer, retryable bool, err error) error {
	if err == nil {
		return nil
	}
	var existing *docerr.RenderError
	if errors.As(err, &existing) {
		return err
	}
	return &docerr.RenderError{
		Renderer:  r.Name(),
		Format:    string(r.Format()),
		Retryable: retryable,
		Err:       err,
	}
}

// Failf formats a non-retryable RenderError attributed to r.
func Failf(r Renderer, format string, args ...any) error {
	return Fail(r, false, fmt.Errorf(format, args...))
}

// Check validates the tree before rendering. A tree with an unknown node type
// or a malformed table yields a non-retryable RenderError.
func Check(r Renderer, tree content.Tree) error {
	if err := tree.Validate(); err != nil {
		return Fail(r, false, err)
	}
	return nil
}

// Unsupported reports a node type the renderer has no mapping for.
func Unsupported(r Renderer, n content.Node) error {
	return Failf(r, "unsupported node type %q", n.Type)
}
