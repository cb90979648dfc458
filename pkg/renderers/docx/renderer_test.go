package docx_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/fumiama/go-docx"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-legaldocs/pkg/content"
	"github.com/goliatone/go-legaldocs/pkg/docerr"
	"github.com/goliatone/go-legaldocs/pkg/records"
	docxrenderer "github.com/goliatone/go-legaldocs/pkg/renderers/docx"
	"github.com/goliatone/go-legaldocs/pkg/testsupport"
)

func parse(t *testing.T, data []byte) (paragraphs []string, tables int) {
	t.Helper()
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("parse docx: %v", err)
	}
	for _, item := range doc.Document.Body.Items {
		switch v := item.(type) {
		case *docx.Paragraph:
			paragraphs = append(paragraphs, v.String())
		case *docx.Table:
			tables++
		}
	}
	return paragraphs, tables
}

// inOrder keeps the paragraphs that are headings of the tree.
func inOrder(paragraphs, headings []string) []string {
	wanted := make(map[string]struct{}, len(headings))
	for _, h := range headings {
		wanted[h] = struct{}{}
	}
	var out []string
	for _, p := range paragraphs {
		if _, ok := wanted[p]; ok {
			out = append(out, p)
		}
	}
	return out
}

func TestRender_HeadingsAndTablesSurvive(t *testing.T) {
	r := docxrenderer.New()
	for _, kind := range records.AllKinds() {
		tree := testsupport.Compose(t, kind, testsupport.MultiOwnerBundle(3))
		out, err := r.Render(context.Background(), tree)
		if err != nil {
			t.Fatalf("%s: render: %v", kind, err)
		}
		if out.Extension != "docx" || out.MimeType != records.FormatDOCX.MimeType() {
			t.Fatalf("%s: output metadata = %s/%s", kind, out.MimeType, out.Extension)
		}

		paragraphs, tables := parse(t, out.Data)
		if diff := cmp.Diff(tree.Headings(), inOrder(paragraphs, tree.Headings())); diff != "" {
			t.Fatalf("%s: headings mismatch (-want +got):\n%s", kind, diff)
		}

		wantTables := 0
		for _, n := range tree.Nodes {
			if n.Type == content.NodeTable {
				wantTables++
			}
			for _, c := range n.Children {
				if c.Type == content.NodeTable {
					wantTables++
				}
			}
		}
		if tables != wantTables {
			t.Fatalf("%s: tables = %d, want %d", kind, tables, wantTables)
		}
	}
}

func TestRender_SimpleTreeText(t *testing.T) {
	out, err := docxrenderer.New().Render(context.Background(), testsupport.SimpleTree())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	paragraphs, tables := parse(t, out.Data)
	if tables != 1 {
		t.Fatalf("tables = %d", tables)
	}
	for _, want := range []string{"FIHAVANANA TRADING", "Il est formé une société <SARL> & co.", "Répartition", "Rasoa"} {
		found := false
		for _, p := range paragraphs {
			if p == want {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("paragraph %q missing from %q", want, paragraphs)
		}
	}
}

func TestRender_UnknownNodeTypeIsPermanent(t *testing.T) {
	tree := content.Tree{Kind: "lease_contract", Nodes: []content.Node{{Type: "footnote"}}}
	_, err := docxrenderer.New().Render(context.Background(), tree)
	if !docerr.IsRender(err) || docerr.IsRetryable(err) {
		t.Fatalf("expected permanent RenderError, got %v", err)
	}
}
