package layoutpdf_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-legaldocs/pkg/content"
	"github.com/goliatone/go-legaldocs/pkg/docerr"
	"github.com/goliatone/go-legaldocs/pkg/records"
	"github.com/goliatone/go-legaldocs/pkg/renderers/layoutpdf"
	"github.com/goliatone/go-legaldocs/pkg/testsupport"
)

func TestLayout_SimpleTree(t *testing.T) {
	blocks, err := layoutpdf.Layout(testsupport.SimpleTree())
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	want := []layoutpdf.Block{
		{Style: content.StyleTitle, Text: "FIHAVANANA TRADING"},
		{Style: content.StyleBody, Text: "Société à Responsabilité Limitée au capital de 1 000 000 Ariary"},
		{Style: content.StyleSection, Text: "Préambule"},
		{Style: content.StyleArticle, Text: "Article 1 - Forme"},
		{Style: content.StyleBody, Text: "Il est formé une société <SARL> & co."},
		{Style: content.StyleArticle, Text: "Article 2 - Objet"},
		{Style: content.StyleBody, Text: "La société a pour objet :"},
		{Style: content.StyleListItem, Text: "Import", Bullet: true},
		{Style: content.StyleListItem, Text: "Export", Bullet: true},
		{Style: content.StyleArticle, Text: "Article 3 - Capital social"},
		{Style: content.StyleTable, Table: &layoutpdf.Table{
			Caption: "Répartition",
			Headers: []string{"Associé", "Parts"},
			Rows:    [][]string{{"Rabe", "60"}, {"Rasoa", "40"}},
		}},
		{Style: content.StyleSignature, Text: "Fait à Antananarivo, le 1er août 2026", Signatories: []content.Signatory{
			{Role: "L'associé", Name: "Rabe"},
			{Role: "L'associé", Name: "Rasoa"},
		}},
	}
	if diff := cmp.Diff(want, blocks); diff != "" {
		t.Fatalf("layout mismatch (-want +got):\n%s", diff)
	}
}

func TestHeadings_MatchTree(t *testing.T) {
	for _, kind := range records.AllKinds() {
		tree := testsupport.Compose(t, kind, testsupport.MultiOwnerBundle(3))
		blocks, err := layoutpdf.Layout(tree)
		if err != nil {
			t.Fatalf("%s: layout: %v", kind, err)
		}
		if diff := cmp.Diff(tree.Headings(), layoutpdf.Headings(blocks)); diff != "" {
			t.Fatalf("%s: headings mismatch (-want +got):\n%s", kind, diff)
		}
	}
}

func TestRender_ProducesPDFForEveryKind(t *testing.T) {
	r := layoutpdf.New(layoutpdf.WithClock(testsupport.FixedClock))
	for _, kind := range records.AllKinds() {
		tree := testsupport.Compose(t, kind, testsupport.MultiOwnerBundle(7))
		out, err := r.Render(context.Background(), tree)
		if err != nil {
			t.Fatalf("%s: render: %v", kind, err)
		}
		if !bytes.HasPrefix(out.Data, []byte("%PDF-")) {
			t.Fatalf("%s: output is not a PDF", kind)
		}
		if out.MimeType != "application/pdf" || out.Extension != "pdf" {
			t.Fatalf("%s: output metadata = %s/%s", kind, out.MimeType, out.Extension)
		}
	}
}

func TestRender_IsDeterministicWithFixedClock(t *testing.T) {
	r := layoutpdf.New(layoutpdf.WithClock(func() time.Time { return testsupport.IncorporationDate }))
	tree := testsupport.SimpleTree()
	a, err := r.Render(context.Background(), tree)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	b, _ := r.Render(context.Background(), tree)
	if !bytes.Equal(a.Data, b.Data) {
		t.Fatalf("renders differ")
	}
}

func TestRender_UnknownNodeTypeIsPermanent(t *testing.T) {
	tree := content.Tree{Kind: "statutes", Nodes: []content.Node{{Type: "chart"}}}
	_, err := layoutpdf.New().Render(context.Background(), tree)
	var rerr *docerr.RenderError
	if !errors.As(err, &rerr) || rerr.Retryable || rerr.Renderer != layoutpdf.Name {
		t.Fatalf("expected permanent layoutpdf RenderError, got %v", err)
	}
}

func TestRender_AccentedTableCells(t *testing.T) {
	tree := content.Tree{Kind: "registration_form", Title: "Fiche d'immatriculation", Nodes: []content.Node{
		content.Table("Identité",
			[]string{"Rubrique", "Valeur"},
			[][]string{
				{"Dénomination", "Société Générale d'Études et de Réalisations Économiques"},
				{"Pièce d'identité", "CIN n° 101 211 012 345 délivrée à Antsirabe"},
				{"Associé", "Rakotoarisoa Hérilalaina, née le 12 février 1988 à Fianarantsoa"},
			},
		),
	}}
	out, err := layoutpdf.New(layoutpdf.WithClock(testsupport.FixedClock)).Render(context.Background(), tree)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(out.Data, []byte("%PDF-")) {
		t.Fatalf("output is not a PDF")
	}
}
