package assembler_test

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-legaldocs/pkg/assembler"
	"github.com/goliatone/go-legaldocs/pkg/docerr"
	"github.com/goliatone/go-legaldocs/pkg/records"
	"github.com/goliatone/go-legaldocs/pkg/testsupport"
)

func newAssembler() *assembler.Assembler {
	return assembler.New(assembler.WithClock(testsupport.FixedClock))
}

func validationFields(t *testing.T, err error) map[string][]string {
	t.Helper()
	var verr *docerr.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	return verr.Fields
}

func TestAssemble_SingleOwnerResolvesAliasesAndDefaults(t *testing.T) {
	bundle, err := newAssembler().Assemble(context.Background(), testsupport.SingleOwnerInput())
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	c := bundle.Company
	wantCompany := records.CompanyRecord{
		Denomination:   "Fihavanana Trading",
		Abbreviation:   "FT",
		Variant:        records.VariantSingleOwner,
		Capital:        1000000,
		TotalShares:    100,
		ShareUnitValue: 10000,
		Purpose:        "Import et export de produits agricoles\nCommerce général",
		Address: records.Address{
			Street:   "Rue Rainandriamampandry",
			District: "Faravohitra",
			Lot:      "IVG 12",
			City:     "Antananarivo",
		},
		DurationYears:  assembler.DefaultDurationYears,
		IncorporatedAt: testsupport.IncorporationDate,
	}
	if diff := cmp.Diff(wantCompany, c); diff != "" {
		t.Fatalf("company mismatch (-want +got):\n%s", diff)
	}

	if len(bundle.Associates) != 1 {
		t.Fatalf("associates = %d", len(bundle.Associates))
	}
	a := bundle.Associates[0]
	if a.Percentage != 10000 || a.PercentText() != "100.00" {
		t.Fatalf("percentage = %d (%s), want recomputed 100.00", a.Percentage, a.PercentText())
	}
	if a.Contribution != 1000000 || a.ShareUnitValue != 10000 {
		t.Fatalf("contribution = %d unit = %d", a.Contribution, a.ShareUnitValue)
	}
	if a.Identity.Type != "CIN" || a.Identity.Number != "101 211 034 567" {
		t.Fatalf("identity = %#v", a.Identity)
	}

	if len(bundle.Managers) != 1 || !bundle.Managers[0].IsPrimary {
		t.Fatalf("first manager should default to primary: %#v", bundle.Managers)
	}
	if !bundle.Managers[0].Mandate.Indefinite {
		t.Fatalf("missing mandate should be indefinite")
	}
	if diff := cmp.Diff(assembler.DefaultSettings(), bundle.Settings); diff != "" {
		t.Fatalf("settings mismatch (-want +got):\n%s", diff)
	}
}

func TestAssemble_LeaseDefaultsAndGuarantee(t *testing.T) {
	bundle, err := newAssembler().Assemble(context.Background(), testsupport.SingleOwnerInput())
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	l := bundle.Lease
	if l == nil {
		t.Fatalf("lease not assembled")
	}
	if l.DepositMonths != 2 || l.AdvanceMonths != 2 || l.DurationYears != 3 {
		t.Fatalf("lease defaults = %d/%d/%d", l.DepositMonths, l.AdvanceMonths, l.DurationYears)
	}
	if got := l.GuaranteeTotal(); got != 2000000 {
		t.Fatalf("guarantee = %d, want 2000000", got)
	}
	wantEnd := time.Date(2029, time.August, 1, 0, 0, 0, 0, time.UTC)
	if !l.EndDate.Equal(wantEnd) {
		t.Fatalf("end date = %v, want %v", l.EndDate, wantEnd)
	}
}

func TestGuaranteeTotal_IsRentTimesMonths(t *testing.T) {
	cases := []struct {
		rent             int64
		deposit, advance int
	}{
		{500000, 2, 2},
		{350000, 3, 1},
		{1, 1, 1},
		{1200000, 6, 0},
	}
	for _, tc := range cases {
		l := records.LeaseRecord{MonthlyRent: tc.rent, DepositMonths: tc.deposit, AdvanceMonths: tc.advance}
		want := tc.rent * int64(tc.deposit+tc.advance)
		if got := l.GuaranteeTotal(); got != want {
			t.Fatalf("GuaranteeTotal(%d, %d, %d) = %d, want %d", tc.rent, tc.deposit, tc.advance, got, want)
		}
		if l.DepositAmount()+l.AdvanceAmount() != l.GuaranteeTotal() {
			t.Fatalf("deposit + advance != guarantee for %+v", tc)
		}
	}
}

func TestAssemble_CityDefaultsToConfiguredCapital(t *testing.T) {
	in := testsupport.SingleOwnerInput()
	a := assembler.New(
		assembler.WithClock(testsupport.FixedClock),
		assembler.WithSettings(records.Settings{CapitalCity: "Toamasina"}),
	)
	bundle, err := a.Assemble(context.Background(), in)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if bundle.Company.Address.City != "Toamasina" {
		t.Fatalf("city = %q", bundle.Company.Address.City)
	}
	if bundle.Settings.Currency != "Ariary" {
		t.Fatalf("unset settings fields must keep defaults, got %q", bundle.Settings.Currency)
	}
}

func TestAssemble_CityAliasOnNestedAddress(t *testing.T) {
	in := testsupport.SingleOwnerInput()
	in.Company["address"].(map[string]any)["ville"] = "Mahajanga"
	bundle := testsupport.MustAssemble(t, in)
	if bundle.Company.Address.City != "Mahajanga" {
		t.Fatalf("city = %q", bundle.Company.Address.City)
	}
}

func TestAssemble_MultiOwnerRecomputesPercentages(t *testing.T) {
	bundle := testsupport.MustAssemble(t, testsupport.MultiOwnerInput(1, 1, 1))
	var got []string
	for _, a := range bundle.Associates {
		got = append(got, a.PercentText())
	}
	want := []string{"33.33", "33.33", "33.33"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("percentages mismatch (-want +got):\n%s", diff)
	}
	if bundle.Company.Variant != records.VariantMultiOwner {
		t.Fatalf("variant = %q", bundle.Company.Variant)
	}
}

func TestPercentage_RoundsHalfUp(t *testing.T) {
	cases := []struct {
		shares, total, want int64
	}{
		{100, 100, 10000},
		{1, 3, 3333},
		{2, 3, 6667},
		{1, 8, 1250},
		{1, 16, 625},
		{1, 32, 313}, // 3.125 rounds up
		{0, 10, 0},
		{5, 0, 0},
	}
	for _, tc := range cases {
		if got := assembler.Percentage(tc.shares, tc.total); got != tc.want {
			t.Fatalf("Percentage(%d, %d) = %d, want %d", tc.shares, tc.total, got, tc.want)
		}
	}
}

func TestPercentage_SumWithinTolerance(t *testing.T) {
	distributions := [][]int64{
		{50, 50},
		{1, 1, 1},
		{1, 2},
		{10, 20, 30, 40},
		{333, 333, 334},
		{7, 11, 13},
	}
	for _, shares := range distributions {
		var total, sum int64
		for _, s := range shares {
			total += s
		}
		for _, s := range shares {
			sum += assembler.Percentage(s, total)
		}
		if sum < 9999 || sum > 10001 {
			t.Fatalf("%v: percentages sum to %s", shares, records.FormatHundredths(sum))
		}
	}
}

func TestAssemble_ReportsMissingIdentityFields(t *testing.T) {
	in := testsupport.MultiOwnerInput(60, 40)
	delete(in.Associates[1], "nationalite")
	delete(in.Associates[1], "cin")
	delete(in.Managers[0], "lieu_naissance")

	_, err := newAssembler().Assemble(context.Background(), in)
	fields := validationFields(t, err)

	want := map[string][]string{
		"associates[1].nationality": {"is required"},
		"associates[1].id_number":   {"is required"},
		"associates[1].id_type":     {"is required"},
		"managers[0].birth_place":   {"is required"},
	}
	if diff := cmp.Diff(want, fields); diff != "" {
		t.Fatalf("validation fields mismatch (-want +got):\n%s", diff)
	}
}

func TestAssemble_RejectsVariantMismatch(t *testing.T) {
	in := testsupport.MultiOwnerInput(60, 40)
	in.Company["legal_form"] = "SARLU"
	fields := validationFields(t, func() error {
		_, err := newAssembler().Assemble(context.Background(), in)
		return err
	}())
	if _, ok := fields["associates"]; !ok {
		t.Fatalf("expected associates problem, got %v", fields)
	}
}

func TestAssemble_RejectsShareTotalMismatch(t *testing.T) {
	in := testsupport.MultiOwnerInput(60, 40)
	in.Company["nombre_parts"] = float64(1000)
	_, err := newAssembler().Assemble(context.Background(), in)
	fields := validationFields(t, err)
	if _, ok := fields["company.total_shares"]; !ok {
		t.Fatalf("expected total_shares problem, got %v", fields)
	}
}

func TestAssemble_RejectsTwoPrimaryManagers(t *testing.T) {
	in := testsupport.MultiOwnerInput(60, 40)
	in.Managers = append(in.Managers, in.Associates[0], in.Associates[1])
	in.Managers[1]["is_primary"] = true
	in.Managers[2]["principal"] = "oui"
	_, err := newAssembler().Assemble(context.Background(), in)
	fields := validationFields(t, err)
	if _, ok := fields["managers"]; !ok {
		t.Fatalf("expected managers problem, got %v", fields)
	}
}

func TestAssemble_RequiresAssociates(t *testing.T) {
	in := testsupport.SingleOwnerInput()
	in.Associates = nil
	_, err := newAssembler().Assemble(context.Background(), in)
	fields := validationFields(t, err)
	if _, ok := fields["associates"]; !ok {
		t.Fatalf("expected associates problem, got %v", fields)
	}
}

func TestAssemble_InfersVariantFromAssociateCount(t *testing.T) {
	in := testsupport.MultiOwnerInput(30, 70)
	delete(in.Company, "legal_form")
	bundle := testsupport.MustAssemble(t, in)
	if bundle.Company.Variant != records.VariantMultiOwner {
		t.Fatalf("variant = %q", bundle.Company.Variant)
	}
}

func TestAssemble_MandateYears(t *testing.T) {
	in := testsupport.SingleOwnerInput()
	in.Managers[0]["duree_mandat"] = "4"
	bundle := testsupport.MustAssemble(t, in)
	if got := bundle.Managers[0].Mandate; got != (records.Mandate{Years: 4}) {
		t.Fatalf("mandate = %+v", got)
	}
}

func TestAssemble_HonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newAssembler().Assemble(ctx, testsupport.SingleOwnerInput()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDecodeRawInput(t *testing.T) {
	in, err := assembler.DecodeRawInput(strings.NewReader(`{
		"company": {"denomination": "Fihavanana Trading", "capital": 1000000},
		"associates": [{"nom": "Rabe Andry", "parts": 100}],
		"lease": {"loyer": 500000}
	}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := assembler.RawInput{
		Company:    map[string]any{"denomination": "Fihavanana Trading", "capital": float64(1000000)},
		Associates: []map[string]any{{"nom": "Rabe Andry", "parts": float64(100)}},
		Lease:      map[string]any{"loyer": float64(500000)},
	}
	if diff := cmp.Diff(want, in); diff != "" {
		t.Fatalf("input mismatch (-want +got):\n%s", diff)
	}

	if _, err := assembler.DecodeRawInput(strings.NewReader(`{"company": [`)); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestAssemble_RejectsDecimalAmountStrings(t *testing.T) {
	in := testsupport.SingleOwnerInput()
	in.Company["capital"] = "1000000.50"
	in.Company["nombre_parts"] = "1,5"

	_, err := newAssembler().Assemble(context.Background(), in)
	fields := validationFields(t, err)
	for _, path := range []string{"company.capital", "company.total_shares"} {
		if !slices.Contains(fields[path], "must be a whole number") {
			t.Fatalf("%s: messages = %v", path, fields[path])
		}
	}
}
