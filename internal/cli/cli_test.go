package cli

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-legaldocs/pkg/orchestrator"
	"github.com/goliatone/go-legaldocs/pkg/records"
)

type fakePrompter struct {
	answer []int
	err    error
	asked  []SelectConfig
}

func (f *fakePrompter) MultiSelect(_ context.Context, cfg SelectConfig) ([]int, error) {
	f.asked = append(f.asked, cfg)
	return f.answer, f.err
}

func TestSelectKinds_PreselectsCurrentAndMapsAnswers(t *testing.T) {
	p := &fakePrompter{answer: []int{0, 6}}
	got, err := SelectKinds(context.Background(), p, []records.DocumentKind{records.KindLeaseContract})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if diff := cmp.Diff([]records.DocumentKind{records.KindStatutes, records.KindShareRegister}, got); diff != "" {
		t.Fatalf("kinds mismatch (-want +got):\n%s", diff)
	}
	cfg := p.asked[0]
	if len(cfg.Options) != len(records.AllKinds()) || cfg.Options[0] != "Statuts (statutes)" {
		t.Fatalf("options = %v", cfg.Options)
	}
	if diff := cmp.Diff([]int{1}, cfg.Defaults); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestSelectFormats(t *testing.T) {
	p := &fakePrompter{answer: []int{1, 3, 9}}
	got, err := SelectFormats(context.Background(), p, []records.Format{records.FormatPDF})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if diff := cmp.Diff([]records.Format{records.FormatDOCX, records.FormatXLSX}, got); diff != "" {
		t.Fatalf("formats mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0}, p.asked[0].Defaults); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestSelect_PropagatesAbort(t *testing.T) {
	p := &fakePrompter{err: ErrAborted}
	if _, err := SelectKinds(context.Background(), p, nil); !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
}

func TestIndicesHelpers(t *testing.T) {
	options := []string{"pdf", "docx", "txt"}
	if diff := cmp.Diff([]int{0, 2}, indicesOf(options, []string{"txt", "pdf", "rtf"})); diff != "" {
		t.Fatalf("indicesOf mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"docx"}, defaultsFromIndices(options, []int{1, 7, -1})); diff != "" {
		t.Fatalf("defaultsFromIndices mismatch (-want +got):\n%s", diff)
	}
}

func batch() orchestrator.BatchResult {
	return orchestrator.BatchResult{Documents: []orchestrator.KindResult{
		{
			Kind: records.KindStatutes,
			Result: &orchestrator.Result{
				Kind: records.KindStatutes,
				Artifacts: []records.GeneratedArtifact{
					{Format: records.FormatPDF, Renderer: "layoutpdf", FileName: "statutes_ft_20260801-000000.pdf", Size: 1536},
				},
				Failures: []orchestrator.FormatFailure{
					{Format: records.FormatDOCX, Renderer: "docx", Attempts: 1, Error: &orchestrator.ErrorInfo{Category: "render", Message: "docx: boom"}},
				},
			},
		},
		{
			Kind:  records.KindLeaseContract,
			Error: &orchestrator.ErrorInfo{Category: "composition", Message: "lease is missing"},
		},
	}}
}

func TestRows(t *testing.T) {
	want := []Row{
		{Kind: "statutes", Format: "pdf", Status: "ok", File: "statutes_ft_20260801-000000.pdf", Size: "1.5 kB", Detail: "layoutpdf", Succeeded: true},
		{Kind: "statutes", Format: "docx", Status: "render", Detail: "docx: boom"},
		{Kind: "lease_contract", Format: "-", Status: "composition", Detail: "lease is missing"},
	}
	if diff := cmp.Diff(want, Rows(batch())); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteSummary(t *testing.T) {
	var b strings.Builder
	if err := WriteSummary(&b, batch()); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := b.String()
	for _, want := range []string{"DOCUMENT", "statutes_ft_20260801-000000.pdf", "lease is missing", "1 fichier(s), 1.5 kB, 2 échec(s)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
}
