// Package sheet exports the tabular content of a tree as an XLSX workbook.
// Every table node becomes one worksheet; a summary sheet lists the
// document headings.
package sheet

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/goliatone/go-legaldocs/pkg/content"
	"github.com/goliatone/go-legaldocs/pkg/records"
	"github.com/goliatone/go-legaldocs/pkg/render"
)

// Name is the registry name of the renderer.
const Name = "sheet"

// SummarySheet is the name of the first worksheet.
const SummarySheet = "Sommaire"

const maxSheetName = 31

type Renderer struct{}

// New constructs the renderer.
func New() *Renderer {
	return &Renderer{}
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) Format() records.Format {
	return records.FormatXLSX
}

func (r *Renderer) ContentType() string {
	return records.FormatXLSX.MimeType()
}

func (r *Renderer) Render(ctx context.Context, tree content.Tree) (render.Output, error) {
	if err := ctx.Err(); err != nil {
		return render.Output{}, err
	}
	if err := render.Check(r, tree); err != nil {
		return render.Output{}, err
	}
	data, err := build(tree)
	if err != nil {
		return render.Output{}, render.Fail(r, false, err)
	}
	return render.NewOutput(records.FormatXLSX, data), nil
}

func build(tree content.Tree) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return nil, fmt.Errorf("rename summary sheet: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6E6E6"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	if err := summary(f, tree, headerStyle); err != nil {
		return nil, err
	}

	names := map[string]int{strings.ToLower(SummarySheet): 1}
	count := 0
	walkTables(tree.Nodes, func(n content.Node) error {
		count++
		name := uniqueName(names, sheetName(n.Title, count))
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %q: %w", name, err)
		}
		return table(f, name, n, headerStyle)
	}, &err)
	if err != nil {
		return nil, err
	}

	f.SetActiveSheet(0)
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return bytes.Clone(buf.Bytes()), nil
}

// walkTables visits table nodes in document order and stops at the first
// error, which is stored in errp.
func walkTables(nodes []content.Node, visit func(content.Node) error, errp *error) {
	for _, n := range nodes {
		if *errp != nil {
			return
		}
		if n.Type == content.NodeTable {
			*errp = visit(n)
			continue
		}
		walkTables(n.Children, visit, errp)
	}
}

func summary(f *excelize.File, tree content.Tree, headerStyle int) error {
	rows := [][]any{
		{"Document", tree.Title},
		{"Type", tree.Kind},
		{},
		{"Rubrique"},
	}
	for _, h := range tree.Headings() {
		rows = append(rows, []any{h})
	}
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return fmt.Errorf("write summary row %d: %w", i+1, err)
		}
	}
	if err := f.SetCellStyle(SummarySheet, "A4", "A4", headerStyle); err != nil {
		return fmt.Errorf("style summary: %w", err)
	}
	return f.SetColWidth(SummarySheet, "A", "B", 45)
}

func table(f *excelize.File, name string, n content.Node, headerStyle int) error {
	header := make([]any, len(n.Headers))
	for i, h := range n.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("write header of %q: %w", name, err)
	}
	last, err := excelize.CoordinatesToCellName(len(n.Headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(name, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("style header of %q: %w", name, err)
	}

	widths := make([]int, len(n.Headers))
	for i, h := range n.Headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for r, row := range n.Rows {
		values := make([]any, len(row))
		for i, c := range row {
			values[i] = cellValue(c)
			if w := utf8.RuneCountInString(c); w > widths[i] {
				widths[i] = w
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, cell, &values); err != nil {
			return fmt.Errorf("write row %d of %q: %w", r+2, name, err)
		}
	}

	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(name, col, col, float64(w+4)); err != nil {
			return fmt.Errorf("set width of %q: %w", name, err)
		}
	}
	return f.SetPanes(name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// cellValue stores grouped integers ("1 000 000") as numbers and everything
// else as text.
func cellValue(s string) any {
	compact := strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if compact == "" || len(compact) > 15 {
		return s
	}
	n, err := strconv.ParseInt(compact, 10, 64)
	if err != nil {
		return s
	}
	return n
}

func sheetName(caption string, index int) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return ' '
		}
		return r
	}, strings.TrimSpace(caption))
	name = strings.Trim(name, "' ")
	if name == "" {
		name = fmt.Sprintf("Tableau %d", index)
	}
	return truncate(name, maxSheetName)
}

func uniqueName(seen map[string]int, name string) string {
	key := strings.ToLower(name)
	seen[key]++
	if seen[key] == 1 {
		return name
	}
	suffix := fmt.Sprintf(" (%d)", seen[key])
	return truncate(name, maxSheetName-len(suffix)) + suffix
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
