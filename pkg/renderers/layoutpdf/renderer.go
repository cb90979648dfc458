// Package layoutpdf draws content trees as PDF with go-pdf/fpdf. It needs no
// external process and is safe for concurrent use.
package layoutpdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/goliatone/go-legaldocs/pkg/content"
	"github.com/goliatone/go-legaldocs/pkg/records"
	"github.com/goliatone/go-legaldocs/pkg/render"
)

// Name is the registry name of the renderer.
const Name = "layoutpdf"

const (
	marginMM = 20.0
	ptToMM   = 0.3528
	leading  = 1.45
)

type Option func(*Renderer)

// WithPageSize selects the fpdf page size name. Defaults to A4.
func WithPageSize(size string) Option {
	return func(r *Renderer) {
		if size = strings.TrimSpace(size); size != "" {
			r.pageSize = size
		}
	}
}

// WithFontFamily selects one of the PDF core fonts. Defaults to Times.
func WithFontFamily(family string) Option {
	return func(r *Renderer) {
		if family = strings.TrimSpace(family); family != "" {
			r.family = family
		}
	}
}

// WithClock fixes the creation date written in the document metadata.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) {
		if now != nil {
			r.now = now
		}
	}
}

type Renderer struct {
	pageSize string
	family   string
	now      func() time.Time
}

// New constructs the renderer.
func New(options ...Option) *Renderer {
	r := &Renderer{pageSize: "A4", family: "Times", now: time.Now}
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
	return records.FormatPDF
}

func (r *Renderer) ContentType() string {
	return records.FormatPDF.MimeType()
}

// Render lays the tree out and draws it.
func (r *Renderer) Render(ctx context.Context, tree content.Tree) (render.Output, error) {
	if err := ctx.Err(); err != nil {
		return render.Output{}, err
	}
	if err := render.Check(r, tree); err != nil {
		return render.Output{}, err
	}
	blocks, err := Layout(tree)
	if err != nil {
		return render.Output{}, render.Fail(r, false, err)
	}
	data, err := r.draw(tree.Title, blocks)
	if err != nil {
		return render.Output{}, render.Fail(r, false, err)
	}
	return render.NewOutput(records.FormatPDF, data), nil
}

type page struct {
	pdf   *fpdf.Fpdf
	tr    func(string) string
	fam   string
	width float64
	limit float64
}

func (r *Renderer) draw(title string, blocks []Block) ([]byte, error) {
	pdf := fpdf.New("P", "mm", r.pageSize, "")
	pdf.SetMargins(marginMM, marginMM, marginMM)
	pdf.SetAutoPageBreak(true, marginMM)
	stamp := r.now()
	pdf.SetCreationDate(stamp)
	pdf.SetModificationDate(stamp)
	pdf.SetTitle(title, true)
	pdf.SetCreator("go-legaldocs", false)
	pdf.AliasNbPages("")

	w, h := pdf.GetPageSize()
	pg := &page{
		pdf:   pdf,
		tr:    pdf.UnicodeTranslatorFromDescriptor(""),
		fam:   r.family,
		width: w - 2*marginMM,
		limit: h - marginMM,
	}

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(pg.fam, "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	for _, b := range blocks {
		switch {
		case b.Table != nil:
			pg.table(b)
		case b.Style == content.StyleSignature:
			pg.signature(b)
		default:
			pg.text(b)
		}
		if pdf.Err() {
			return nil, fmt.Errorf("layoutpdf: %w", pdf.Error())
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("layoutpdf: output: %w", err)
	}
	return buf.Bytes(), nil
}

func (p *page) font(s content.Style, bold bool) float64 {
	style := ""
	if s.Bold || bold {
		style += "B"
	}
	if s.Italic {
		style += "I"
	}
	if s.Underline {
		style += "U"
	}
	p.pdf.SetFont(p.fam, style, s.Size)
	return s.Size * ptToMM * leading
}

func align(a content.Align) string {
	switch a {
	case content.AlignCenter:
		return "C"
	case content.AlignJustify:
		return "J"
	default:
		return "L"
	}
}

func (p *page) text(b Block) {
	s := content.StyleFor(b.Style)
	lh := p.font(s, false)
	text := b.Text
	if s.Uppercase {
		text = strings.ToUpper(text)
	}
	p.pdf.Ln(s.SpaceBefore * ptToMM)
	if b.Bullet {
		p.pdf.SetX(marginMM + 5)
		p.pdf.MultiCell(p.width-5, lh, p.tr("•  "+text), "", align(s.Align), false)
	} else {
		p.pdf.MultiCell(0, lh, p.tr(text), "", align(s.Align), false)
	}
	p.pdf.Ln(s.SpaceAfter * ptToMM)
}

func (p *page) table(b Block) {
	t := b.Table
	s := content.StyleFor(content.StyleTable)
	if t.Caption != "" {
		lh := p.font(content.StyleFor(content.StyleBody), true)
		p.pdf.MultiCell(0, lh, p.tr(t.Caption), "", "L", false)
	}
	cols := len(t.Headers)
	if cols == 0 {
		return
	}
	colW := p.width / float64(cols)

	p.font(content.StyleFor(content.StyleTableHead), false)
	p.row(t.Headers, colW, s.Size*ptToMM*leading, "C")
	p.font(s, false)
	for _, row := range t.Rows {
		p.row(row, colW, s.Size*ptToMM*leading, "L")
	}
	p.pdf.Ln(3)
}

// row draws one table row, growing every cell to the tallest wrapped cell.
func (p *page) row(cells []string, colW, lh float64, alignStr string) {
	lines := 1
	for _, c := range cells {
		// tr yields cp1252 bytes, so wrapping must be measured on bytes.
		if n := len(p.pdf.SplitLines([]byte(p.tr(c)), colW-2)); n > lines {
			lines = n
		}
	}
	h := float64(lines) * lh
	if p.pdf.GetY()+h > p.limit {
		p.pdf.AddPage()
	}
	y := p.pdf.GetY()
	for i, c := range cells {
		x := marginMM + float64(i)*colW
		p.pdf.Rect(x, y, colW, h, "D")
		p.pdf.SetXY(x, y)
		p.pdf.MultiCell(colW, lh, p.tr(c), "", alignStr, false)
	}
	p.pdf.SetXY(marginMM, y+h)
}

func (p *page) signature(b Block) {
	s := content.StyleFor(content.StyleSignature)
	lh := p.font(s, false)
	if p.pdf.GetY()+s.SpaceBefore*ptToMM+4*lh+15 > p.limit {
		p.pdf.AddPage()
	}
	p.pdf.Ln(s.SpaceBefore * ptToMM)
	if b.Text != "" {
		p.pdf.MultiCell(0, lh, p.tr(b.Text), "", "L", false)
		p.pdf.Ln(lh)
	}
	colW := p.width / 2
	for i := 0; i < len(b.Signatories); i += 2 {
		end := i + 2
		if end > len(b.Signatories) {
			end = len(b.Signatories)
		}
		pair := b.Signatories[i:end]
		if p.pdf.GetY()+2*lh+15 > p.limit {
			p.pdf.AddPage()
		}
		y := p.pdf.GetY()
		p.font(s, true)
		for j, sig := range pair {
			p.pdf.SetXY(marginMM+float64(j)*colW, y)
			p.pdf.CellFormat(colW, lh, p.tr(sig.Role), "", 0, "C", false, 0, "")
		}
		p.font(s, false)
		for j, sig := range pair {
			p.pdf.SetXY(marginMM+float64(j)*colW, y+lh+15)
			p.pdf.CellFormat(colW, lh, p.tr(sig.Name), "", 0, "C", false, 0, "")
		}
		p.pdf.SetXY(marginMM, y+2*lh+20)
	}
}
