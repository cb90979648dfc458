// Package docx builds word-processor documents from content trees with
// fumiama/go-docx. Paragraph styles follow the shared style map.
package docx

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/goliatone/go-legaldocs/pkg/content"
	"github.com/goliatone/go-legaldocs/pkg/records"
	"github.com/goliatone/go-legaldocs/pkg/render"
)

// Name is the registry name of the renderer.
const Name = "docx"

type Option func(*Renderer)

// WithFont sets the run font. Defaults to Times New Roman.
func WithFont(font string) Option {
	return func(r *Renderer) {
		if font = strings.TrimSpace(font); font != "" {
			r.font = font
		}
	}
}

type Renderer struct {
	font string
}

// New constructs the renderer.
func New(options ...Option) *Renderer {
	r := &Renderer{font: "Times New Roman"}
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
	return records.FormatDOCX
}

func (r *Renderer) ContentType() string {
	return records.FormatDOCX.MimeType()
}

func (r *Renderer) Render(ctx context.Context, tree content.Tree) (render.Output, error) {
	if err := ctx.Err(); err != nil {
		return render.Output{}, err
	}
	if err := render.Check(r, tree); err != nil {
		return render.Output{}, err
	}

	b := &builder{doc: docx.New().WithDefaultTheme(), font: r.font}
	for _, n := range tree.Nodes {
		if err := b.node(n); err != nil {
			return render.Output{}, render.Fail(r, false, err)
		}
	}
	b.doc.WithA4Page()

	var buf bytes.Buffer
	if _, err := b.doc.WriteTo(&buf); err != nil {
		return render.Output{}, render.Fail(r, false, fmt.Errorf("write docx: %w", err))
	}
	return render.NewOutput(records.FormatDOCX, buf.Bytes()), nil
}

type builder struct {
	doc  *docx.Docx
	font string
}

func (b *builder) node(n content.Node) error {
	switch n.Type {
	case content.NodeTitle:
		b.para(content.StyleTitle, n.Text, false)
	case content.NodeHeading:
		b.para(content.StyleSection, n.Text, false)
	case content.NodeParagraph:
		b.para(content.StyleBody, n.Text, false)
	case content.NodeList:
		for _, item := range n.Items {
			b.para(content.StyleListItem, "•\t"+item, false)
		}
	case content.NodeTable:
		b.table(n)
	case content.NodeSignature:
		b.signature(n)
	case content.NodeArticle:
		b.para(content.StyleArticle, content.ArticleHeading(n), false)
		for _, child := range n.Children {
			if err := b.node(child); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("unsupported node type %q", n.Type)
	}
	return nil
}

func (b *builder) para(name content.StyleName, text string, bold bool) *docx.Paragraph {
	s := content.StyleFor(name)
	if s.Uppercase {
		text = strings.ToUpper(text)
	}
	p := b.doc.AddParagraph().Justification(justification(s.Align))
	b.styleRun(p.AddText(text), s, bold)
	return p
}

func (b *builder) styleRun(run *docx.Run, s content.Style, bold bool) {
	run.Size(halfPoints(s.Size)).Font(b.font, b.font, b.font, "default")
	if s.Bold || bold {
		run.Bold()
	}
	if s.Italic {
		run.Italic()
	}
	if s.Underline {
		run.Underline("single")
	}
}

func (b *builder) table(n content.Node) {
	if n.Title != "" {
		b.para(content.StyleBody, n.Title, true)
	}
	if len(n.Headers) == 0 {
		return
	}
	tbl := b.doc.AddTable(len(n.Rows)+1, len(n.Headers), 0, nil)
	tbl.Justification("center")

	head := content.StyleFor(content.StyleTableHead)
	for j, h := range n.Headers {
		p := tbl.TableRows[0].TableCells[j].AddParagraph().Justification(justification(head.Align))
		b.styleRun(p.AddText(h), head, false)
	}
	body := content.StyleFor(content.StyleTable)
	for i, row := range n.Rows {
		for j, cell := range row {
			p := tbl.TableRows[i+1].TableCells[j].AddParagraph()
			b.styleRun(p.AddText(cell), body, false)
		}
	}
}

func (b *builder) signature(n content.Node) {
	if n.Text != "" {
		b.para(content.StyleSignature, n.Text, false)
	}
	for _, s := range n.Signatories {
		b.para(content.StyleSignature, s.Role, true)
		b.doc.AddParagraph()
		b.doc.AddParagraph()
		b.para(content.StyleBody, s.Name, false)
	}
}

func justification(a content.Align) string {
	switch a {
	case content.AlignCenter:
		return "center"
	case content.AlignJustify:
		return "both"
	default:
		return "start"
	}
}

// halfPoints converts a point size to the w:sz unit.
func halfPoints(pt float64) string {
	return strconv.Itoa(int(pt * 2))
}
