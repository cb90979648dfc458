package text_test

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-legaldocs/pkg/content"
	"github.com/goliatone/go-legaldocs/pkg/docerr"
	"github.com/goliatone/go-legaldocs/pkg/records"
	"github.com/goliatone/go-legaldocs/pkg/renderers/text"
	"github.com/goliatone/go-legaldocs/pkg/testsupport"
)

// underlined returns lines followed by a line made only of '=' or '-'.
func underlined(doc string) []string {
	lines := strings.Split(doc, "\n")
	var out []string
	for i := 0; i+1 < len(lines); i++ {
		next := lines[i+1]
		if next == "" || lines[i] == "" {
			continue
		}
		if strings.Trim(next, "=") == "" || strings.Trim(next, "-") == "" {
			out = append(out, lines[i])
		}
	}
	return out
}

func TestRender_WrapsAtEightyColumns(t *testing.T) {
	r := text.New()
	for _, kind := range records.AllKinds() {
		tree := testsupport.Compose(t, kind, testsupport.MultiOwnerBundle(5))
		out, err := r.Render(context.Background(), tree)
		if err != nil {
			t.Fatalf("%s: render: %v", kind, err)
		}
		if !utf8.Valid(out.Data) {
			t.Fatalf("%s: output is not UTF-8", kind)
		}
		for i, line := range strings.Split(string(out.Data), "\n") {
			if n := utf8.RuneCountInString(line); n > text.DefaultWidth {
				t.Fatalf("%s: line %d has %d columns: %q", kind, i+1, n, line)
			}
		}
		if diff := cmp.Diff(tree.Headings(), underlined(string(out.Data))); diff != "" {
			t.Fatalf("%s: headings mismatch (-want +got):\n%s", kind, diff)
		}
	}
}

func TestRender_SimpleTree(t *testing.T) {
	out, err := text.New().Render(context.Background(), testsupport.SimpleTree())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	doc := string(out.Data)
	for _, want := range []string{
		"Préambule\n=========\n",
		"Article 1 - Forme\n-----------------\n",
		"Il est formé une société <SARL> & co.\n",
		"  - Import\n  - Export\n",
		"Associé | Parts\n--------+------\nRabe    | 60\nRasoa   | 40\n",
	} {
		if !strings.Contains(doc, want) {
			t.Fatalf("output missing %q:\n%s", want, doc)
		}
	}
	if out.MimeType != "text/plain; charset=utf-8" || out.Extension != "txt" {
		t.Fatalf("output metadata = %s/%s", out.MimeType, out.Extension)
	}
}

func TestRender_WideTableFallsBackToRecords(t *testing.T) {
	long := strings.Repeat("x", 50)
	tree := content.Tree{Kind: "share_register", Nodes: []content.Node{
		content.Table("", []string{"Nom", "Adresse"}, [][]string{{long, long}}),
	}}
	out, err := text.New().Render(context.Background(), tree)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(string(out.Data), "Adresse : "+long) {
		t.Fatalf("expected record layout:\n%s", out.Data)
	}
}

func TestRender_UnknownNodeTypeIsPermanent(t *testing.T) {
	tree := content.Tree{Kind: "statutes", Nodes: []content.Node{{Type: "image"}}}
	_, err := text.New().Render(context.Background(), tree)
	if !docerr.IsRender(err) || docerr.IsRetryable(err) {
		t.Fatalf("expected permanent RenderError, got %v", err)
	}
}
