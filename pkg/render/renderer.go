package render

import (
	"context"

	"github.com/goliatone/go-legaldocs/pkg/content"
	"github.com/goliatone/go-legaldocs/pkg/records"
)

// Output is the artifact produced by one renderer invocation.
type Output struct {
	Data      []byte
	MimeType  string
	Extension string
}

// Renderer converts a content tree into a binary artifact. Implementations are
// stateless between calls.
type Renderer interface {
	Name() string
	Format() records.Format
	ContentType() string
	Render(ctx context.Context, tree content.Tree) (Output, error)
}

// NewOutput builds an Output whose mime type and extension follow format.
func NewOutput(format records.Format, data []byte) Output {
	return Output{Data: data, MimeType: format.MimeType(), Extension: string(format)}
}
