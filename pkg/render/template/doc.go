// Package template defines the template engine contract used by HTML-based
// renderers. The gotemplate subpackage provides the pongo2 implementation.
package template
