package testsupport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-legaldocs/pkg/assembler"
	"github.com/goliatone/go-legaldocs/pkg/boilerplate"
	"github.com/goliatone/go-legaldocs/pkg/composer"
	"github.com/goliatone/go-legaldocs/pkg/content"
	"github.com/goliatone/go-legaldocs/pkg/records"
)

// IncorporationDate is the date every fixture uses.
var IncorporationDate = time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)

// FixedClock returns IncorporationDate.
func FixedClock() time.Time {
	return IncorporationDate
}

// Settings mirrors assembler.DefaultSettings so fixture bundles match
// assembled ones.
func Settings() records.Settings {
	return assembler.DefaultSettings()
}

// Person builds a complete identity for name.
func Person(name string) records.Person {
	return records.Person{
		Name:        name,
		Nationality: "Malagasy",
		BirthDate:   time.Date(1985, time.May, 12, 0, 0, 0, 0, time.UTC),
		BirthPlace:  "Antsirabe",
		Profession:  "Commerçant",
		Domicile:    "Lot II M 45 Analakely, Antananarivo",
		Identity: records.IdentityDocument{
			Type:     "CIN",
			Number:   "101 211 034 567",
			IssuedAt: time.Date(2005, time.June, 2, 0, 0, 0, 0, time.UTC),
			IssuedIn: "Antananarivo",
		},
	}
}

// Company returns the fixture company for variant with totalShares shares
// of 10 000 Ariary each.
func Company(variant records.Variant, totalShares int64) records.CompanyRecord {
	return records.CompanyRecord{
		ID:             "company-1",
		Denomination:   "Fihavanana Trading",
		Abbreviation:   "FT",
		Variant:        variant,
		Capital:        totalShares * 10000,
		TotalShares:    totalShares,
		ShareUnitValue: 10000,
		Purpose:        "Import et export de produits agricoles\nCommerce général",
		Address: records.Address{
			Street:   "Rue Rainandriamampandry",
			District: "Faravohitra",
			Lot:      "IVG 12",
			City:     "Antananarivo",
		},
		DurationYears:    99,
		IncorporatedAt:   IncorporationDate,
		ProjectedRevenue: 120000000,
		Projections: []records.Projection{
			{Year: 2026, Investment: 5000000, Employees: 3},
			{Year: 2027, Investment: 8000000, Employees: 5},
			{Year: 2028, Investment: 12000000, Employees: 8},
		},
	}
}

// Manager builds a manager record.
func Manager(name string, primary bool, years int) records.ManagerRecord {
	m := records.ManagerRecord{
		Person:     Person(name),
		FatherName: "Rakoto Jean",
		MotherName: "Rasoa Marie",
		IsPrimary:  primary,
	}
	if years > 0 {
		m.Mandate = records.Mandate{Years: years}
	} else {
		m.Mandate = records.Mandate{Indefinite: true}
	}
	return m
}

// Lease returns a lease with rent 500 000 and 2 + 2 months of guarantee.
func Lease() *records.LeaseRecord {
	return &records.LeaseRecord{
		LessorName:     "Randrianarisoa Hery",
		LessorIdentity: "CIN n° 101 981 000 111",
		LessorAddress:  "Ambatonakanga, Antananarivo",
		Premises:       "un local commercial sis Lot IVG 12 Faravohitra, Antananarivo",
		MonthlyRent:    500000,
		DepositMonths:  2,
		AdvanceMonths:  2,
		DurationYears:  3,
		StartDate:      IncorporationDate,
		EndDate:        IncorporationDate.AddDate(3, 0, 0),
	}
}

// SingleOwnerBundle is the canonical single-owner company: capital
// 1 000 000, one associate holding 100 of 100 shares.
func SingleOwnerBundle() records.Bundle {
	associate := records.AssociateRecord{
		Person:         Person("Rabe Andry"),
		ShareCount:     100,
		ShareUnitValue: 10000,
		Contribution:   1000000,
		Percentage:     10000,
	}
	return records.Bundle{
		Company:    Company(records.VariantSingleOwner, 100),
		Associates: []records.AssociateRecord{associate},
		Managers:   []records.ManagerRecord{Manager("Rabe Andry", true, 0)},
		Lease:      Lease(),
		Settings:   Settings(),
	}
}

// MultiOwnerBundle returns a multi-owner company with n associates. Shares
// are split as evenly as possible over 100 shares, the remainder going to
// the first associate. Two managers are declared, the second being primary.
func MultiOwnerBundle(n int) records.Bundle {
	if n < 2 {
		n = 2
	}
	const total = 100
	associates := make([]records.AssociateRecord, n)
	for i := range associates {
		shares := int64(total / n)
		if i == 0 {
			shares += int64(total % n)
		}
		associates[i] = records.AssociateRecord{
			Person:         Person(fmt.Sprintf("Associé %d", i+1)),
			ShareCount:     shares,
			ShareUnitValue: 10000,
			Contribution:   shares * 10000,
			Percentage:     assembler.Percentage(shares, total),
		}
	}
	return records.Bundle{
		Company:    Company(records.VariantMultiOwner, total),
		Associates: associates,
		Managers: []records.ManagerRecord{
			Manager("Co Gérant", false, 0),
			Manager("Associé 1", true, 4),
		},
		Lease:    Lease(),
		Settings: Settings(),
	}
}

// SingleOwnerInput is a loose request describing the SingleOwnerBundle
// company, associate shares and lease terms. Keys use aliases and the
// associate carries a stale percentage.
func SingleOwnerInput() assembler.RawInput {
	return assembler.RawInput{
		Company: map[string]any{
			"company_name": "Fihavanana Trading",
			"sigle":        "FT",
			"legal_form":   "SARLU",
			"capital":      "1 000 000",
			"nombre_parts": float64(100),
			"objet":        "<p>Import et export de produits agricoles</p><p>Commerce général</p>",
			"address": map[string]any{
				"rue":      "Rue Rainandriamampandry",
				"quartier": "Faravohitra",
				"lot":      "IVG 12",
			},
			"incorporation_date": "2026-08-01",
		},
		Associates: []map[string]any{personInput("Rabe Andry", map[string]any{"shares": float64(100), "percentage": float64(42)})},
		Managers:   []map[string]any{personInput("Rabe Andry", nil)},
		Lease: map[string]any{
			"bailleur":   "Randrianarisoa Hery",
			"loyer":      float64(500000),
			"date_debut": "2026-08-01",
		},
	}
}

// MultiOwnerInput returns a loose multi-owner request with the given share
// counts.
func MultiOwnerInput(shares ...int64) assembler.RawInput {
	associates := make([]map[string]any, len(shares))
	var total int64
	for i, s := range shares {
		total += s
		associates[i] = personInput(fmt.Sprintf("Associé %d", i+1), map[string]any{"share_count": float64(s)})
	}
	in := SingleOwnerInput()
	in.Company["legal_form"] = "SARL"
	in.Company["nombre_parts"] = float64(total)
	in.Company["capital"] = float64(total * 10000)
	in.Associates = associates
	return in
}

func personInput(name string, extra map[string]any) map[string]any {
	m := map[string]any{
		"nom":            name,
		"nationalite":    "Malagasy",
		"date_naissance": "1985-05-12",
		"lieu_naissance": "Antsirabe",
		"profession":     "Commerçant",
		"adresse":        "Lot II M 45 Analakely, Antananarivo",
		"cin":            "101 211 034 567",
	}
	for k, v := range extra {
		m[k] = v
	}
	return m
}

// MustAssemble runs the assembler with the fixture clock.
func MustAssemble(t *testing.T, in assembler.RawInput) records.Bundle {
	t.Helper()
	bundle, err := assembler.New(assembler.WithClock(FixedClock)).Assemble(context.Background(), in)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	return bundle
}

// SimpleTree is a small tree touching every node type.
func SimpleTree() content.Tree {
	return content.Tree{
		Kind:  string(records.KindStatutes),
		Title: "Statuts - Fihavanana Trading",
		Nodes: []content.Node{
			content.Title("FIHAVANANA TRADING"),
			content.Paragraph("Société à Responsabilité Limitée au capital de 1 000 000 Ariary"),
			content.Heading("Préambule"),
			content.Article(1, "Forme", content.Paragraph("Il est formé une société <SARL> & co.")),
			content.Article(2, "Objet",
				content.Paragraph("La société a pour objet :"),
				content.List("Import", "Export"),
			),
			content.Article(3, "Capital social",
				content.Table("Répartition", []string{"Associé", "Parts"}, [][]string{{"Rabe", "60"}, {"Rasoa", "40"}}),
			),
			content.Signature("Fait à Antananarivo, le 1er août 2026",
				content.Signatory{Role: "L'associé", Name: "Rabe"},
				content.Signatory{Role: "L'associé", Name: "Rasoa"},
			),
		},
	}
}

// WriteGolden writes value as indented JSON to a golden file when
// UPDATE_GOLDENS is set.
func WriteGolden(t *testing.T, path string, value any) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureOutput runs a render function writing to an io.Writer and returns
// what was written.
func CaptureOutput(t *testing.T, render func(io.Writer) error) string {
	t.Helper()

	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.String()
}

// Compose builds the tree of kind for bundle with the default catalog.
func Compose(t *testing.T, kind records.DocumentKind, bundle records.Bundle) content.Tree {
	t.Helper()
	reg, err := composer.Default(boilerplate.MustDefault())
	if err != nil {
		t.Fatalf("composer registry: %v", err)
	}
	tree, err := reg.Compose(kind, bundle)
	if err != nil {
		t.Fatalf("compose %s: %v", kind, err)
	}
	return tree
}
