// Package text renders content trees as UTF-8 plain text wrapped at a fixed
// column width. Headings are underlined.
package text

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/goliatone/go-legaldocs/pkg/content"
	"github.com/goliatone/go-legaldocs/pkg/records"
	"github.com/goliatone/go-legaldocs/pkg/render"
)

// Name is the registry name of the renderer.
const Name = "text"

// DefaultWidth is the wrap column.
const DefaultWidth = 80

type Option func(*Renderer)

// WithWidth overrides the wrap column.
func WithWidth(width int) Option {
	return func(r *Renderer) {
		if width >= 20 {
			r.width = width
		}
	}
}

type Renderer struct {
	width int
}

// New constructs the renderer.
func New(options ...Option) *Renderer {
	r := &Renderer{width: DefaultWidth}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) Format() records.Format {
	return records.FormatTXT
}

func (r *Renderer) ContentType() string {
	return records.FormatTXT.MimeType()
}

func (r *Renderer) Render(ctx context.Context, tree content.Tree) (render.Output, error) {
	if err := ctx.Err(); err != nil {
		return render.Output{}, err
	}
	if err := render.Check(r, tree); err != nil {
		return render.Output{}, err
	}
	var b strings.Builder
	for _, n := range tree.Nodes {
		if err := r.node(&b, n); err != nil {
			return render.Output{}, render.Fail(r, false, err)
		}
	}
	out := strings.TrimRight(b.String(), "\n") + "\n"
	return render.NewOutput(records.FormatTXT, []byte(out)), nil
}

func (r *Renderer) node(b *strings.Builder, n content.Node) error {
	switch n.Type {
	case content.NodeTitle:
		title := strings.ToUpper(n.Text)
		if pad := (r.width - ansi.StringWidth(title)) / 2; pad > 0 {
			title = strings.Repeat(" ", pad) + title
		}
		b.WriteString(title + "\n\n")
	case content.NodeHeading:
		underline(b, n.Text, '=')
	case content.NodeArticle:
		underline(b, content.ArticleHeading(n), '-')
		for _, child := range n.Children {
			if err := r.node(b, child); err != nil {
				return err
			}
		}
	case content.NodeParagraph:
		b.WriteString(r.wrap(n.Text, "", "") + "\n\n")
	case content.NodeList:
		for _, item := range n.Items {
			b.WriteString(r.wrap(item, "  - ", "    ") + "\n")
		}
		b.WriteString("\n")
	case content.NodeTable:
		r.table(b, n)
	case content.NodeSignature:
		if n.Text != "" {
			b.WriteString(r.wrap(n.Text, "", "") + "\n\n")
		}
		for _, s := range n.Signatories {
			b.WriteString(s.Role + "\n\n\n")
			b.WriteString(s.Name + "\n\n")
		}
	default:
		return fmt.Errorf("unsupported node type %q", n.Type)
	}
	return nil
}

func underline(b *strings.Builder, heading string, mark rune) {
	b.WriteString(heading + "\n")
	b.WriteString(strings.Repeat(string(mark), ansi.StringWidth(heading)) + "\n\n")
}

// wrap breaks text at word boundaries. The first line starts with first and
// continuation lines with rest. Hyphens may overhang by one column, so the
// limit leaves room for them.
func (r *Renderer) wrap(text, first, rest string) string {
	limit := r.width - 1 - ansi.StringWidth(first)
	lines := strings.Split(ansi.Wordwrap(text, limit, ""), "\n")
	for i, line := range lines {
		prefix := rest
		if i == 0 {
			prefix = first
		}
		lines[i] = prefix + strings.TrimRight(line, " ")
	}
	return strings.Join(lines, "\n")
}

func (r *Renderer) table(b *strings.Builder, n content.Node) {
	if n.Title != "" {
		b.WriteString(r.wrap(n.Title, "", "") + "\n\n")
	}
	widths := make([]int, len(n.Headers))
	for i, h := range n.Headers {
		widths[i] = ansi.StringWidth(h)
	}
	for _, row := range n.Rows {
		for i, cell := range row {
			if w := ansi.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	total := 3 * (len(widths) - 1)
	for _, w := range widths {
		total += w
	}

	if total > r.width {
		// Too wide for columns: one record per row.
		for _, row := range n.Rows {
			for i, cell := range row {
				b.WriteString(r.wrap(n.Headers[i]+" : "+cell, "", "    ") + "\n")
			}
			b.WriteString("\n")
		}
		return
	}

	b.WriteString(tableLine(n.Headers, widths) + "\n")
	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("-", w)
	}
	b.WriteString(strings.Join(sep, "-+-") + "\n")
	for _, row := range n.Rows {
		b.WriteString(tableLine(row, widths) + "\n")
	}
	b.WriteString("\n")
}

func tableLine(cells []string, widths []int) string {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		parts[i] = cell + strings.Repeat(" ", widths[i]-ansi.StringWidth(cell))
	}
	return strings.TrimRight(strings.Join(parts, " | "), " ")
}
