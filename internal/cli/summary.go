package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"github.com/goliatone/go-legaldocs/pkg/orchestrator"
)

const maxFileWidth = 56

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	detailStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0AEC0"))
	cellStyle   = lipgloss.NewStyle().PaddingRight(2)
)

// Row is one line of the summary table.
type Row struct {
	Kind      string
	Format    string
	Status    string
	File      string
	Size      string
	Detail    string
	Succeeded bool
}

// Rows flattens a batch result: one row per artifact, per failed format and
// per aborted kind.
func Rows(res orchestrator.BatchResult) []Row {
	var rows []Row
	for _, doc := range res.Documents {
		kind := string(doc.Kind)
		if doc.Error != nil {
			rows = append(rows, Row{Kind: kind, Format: "-", Status: doc.Error.Category, Detail: doc.Error.Message})
			continue
		}
		if doc.Result == nil {
			continue
		}
		for _, a := range doc.Result.Artifacts {
			rows = append(rows, Row{
				Kind:      kind,
				Format:    string(a.Format),
				Status:    "ok",
				File:      a.FileName,
				Size:      humanize.Bytes(uint64(a.Size)),
				Detail:    a.Renderer,
				Succeeded: true,
			})
		}
		for _, f := range doc.Result.Failures {
			row := Row{Kind: kind, Format: string(f.Format), Status: "failed", Detail: f.Renderer}
			if f.Error != nil {
				row.Status = f.Error.Category
				row.Detail = f.Error.Message
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// WriteSummary prints the batch result as an aligned table followed by a
// totals line.
func WriteSummary(w io.Writer, res orchestrator.BatchResult) error {
	rows := Rows(res)
	header := []string{"DOCUMENT", "FORMAT", "STATUT", "FICHIER", "TAILLE", "DÉTAIL"}
	cells := make([][]string, 0, len(rows))
	var produced, failed int
	var total uint64
	for _, r := range rows {
		cells = append(cells, []string{r.Kind, r.Format, r.Status, ansi.Truncate(r.File, maxFileWidth, "…"), r.Size, r.Detail})
		if r.Succeeded {
			produced++
		} else {
			failed++
		}
	}
	for _, doc := range res.Documents {
		if doc.Result != nil {
			for _, a := range doc.Result.Artifacts {
				total += uint64(a.Size)
			}
		}
	}

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = ansi.StringWidth(h)
	}
	for _, row := range cells {
		for i, c := range row {
			if w := ansi.StringWidth(c); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	b.WriteString(line(header, widths, func(int, string) lipgloss.Style { return headerStyle }))
	for idx, row := range cells {
		ok := rows[idx].Succeeded
		b.WriteString(line(row, widths, func(col int, _ string) lipgloss.Style {
			switch {
			case col == 2 && ok:
				return okStyle
			case col == 2:
				return failStyle
			case col == 5:
				return detailStyle
			default:
				return lipgloss.NewStyle()
			}
		}))
	}
	fmt.Fprintf(&b, "\n%d fichier(s), %s, %d échec(s)\n", produced, humanize.Bytes(total), failed)
	_, err := io.WriteString(w, b.String())
	return err
}

func line(row []string, widths []int, style func(col int, value string) lipgloss.Style) string {
	parts := make([]string, len(row))
	for i, v := range row {
		s := cellStyle.Width(widths[i] + 2)
		if i == len(row)-1 {
			s = lipgloss.NewStyle()
		}
		parts[i] = s.Render(style(i, v).Render(v))
	}
	return strings.TrimRight(lipgloss.JoinHorizontal(lipgloss.Top, parts...), " ") + "\n"
}
