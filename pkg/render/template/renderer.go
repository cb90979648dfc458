package template

import (
	"io"
)

// TemplateRenderer is the seam HTML-producing renderers rely on. Data is
// converted to a template context before execution.
type TemplateRenderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data any) error
}
