package composer

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-legaldocs/internal/textfmt"
	"github.com/goliatone/go-legaldocs/pkg/boilerplate"
	"github.com/goliatone/go-legaldocs/pkg/content"
	"github.com/goliatone/go-legaldocs/pkg/docerr"
	"github.com/goliatone/go-legaldocs/pkg/records"
)

var errNoLease = errors.New("bundle carries no lease")

func newEnv(catalog *boilerplate.Catalog, b records.Bundle) *env {
	return &env{catalog: catalog, bundle: b, vars: companyVars(b)}
}

// companyVars derives the placeholder values shared by every catalog text.
func companyVars(b records.Bundle) map[string]any {
	c := b.Company
	cur := currency(b)
	single := c.Variant == records.VariantSingleOwner

	vars := map[string]any{
		"denomination":       c.Denomination,
		"abbreviation":       c.Abbreviation,
		"legal_form":         c.Variant.LegalForm(),
		"legal_form_name":    c.Variant.LegalFormName(),
		"capital":            textfmt.Amount(c.Capital),
		"capital_words":      capitalWords(c),
		"capital_money":      fmt.Sprintf("%s %s (%s %s)", textfmt.Amount(c.Capital), cur, capitalWords(c), cur),
		"currency":           cur,
		"total_shares":       textfmt.Amount(c.TotalShares),
		"share_value":        textfmt.Amount(c.ShareUnitValue),
		"purpose":            c.Purpose,
		"address":            c.Address.String(),
		"city":               city(b),
		"duration":           textfmt.Years(c.DurationYears),
		"duration_words":     textfmt.Words(int64(c.DurationYears)),
		"court":              court(b),
		"incorporation_date": textfmt.Date(c.IncorporatedAt),
		"first_close":        textfmt.Date(firstClose(c.IncorporatedAt)),
	}
	if single {
		vars["decision_body"] = "de l'associé unique"
		vars["liquidation_split"] = "au profit de l'associé unique"
	} else {
		vars["decision_body"] = "collective des associés"
		vars["liquidation_split"] = "entre les associés au prorata de leurs parts"
	}
	if m, ok := b.PrimaryManager(); ok {
		vars["manager_name"] = m.Name
		vars["declarant_name"] = m.Name
		vars["declarant_identity"] = identity(m.Person)
	} else {
		vars["manager_name"] = textfmt.OrBlank("")
		vars["declarant_name"] = textfmt.OrBlank("")
		vars["declarant_identity"] = textfmt.OrBlank("")
	}
	return vars
}

func compositionErr(kind records.DocumentKind, err error) error {
	if docerr.IsComposition(err) {
		return err
	}
	return &docerr.CompositionError{Kind: string(kind), Reason: err.Error()}
}

func capitalWords(c records.CompanyRecord) string {
	if strings.TrimSpace(c.CapitalWords) != "" {
		return c.CapitalWords
	}
	return textfmt.Words(c.Capital)
}

func currency(b records.Bundle) string {
	if b.Settings.Currency != "" {
		return b.Settings.Currency
	}
	return "Ariary"
}

func city(b records.Bundle) string {
	if b.Company.Address.City != "" {
		return b.Company.Address.City
	}
	return b.Settings.CapitalCity
}

func court(b records.Bundle) string {
	if b.Settings.Court != "" {
		return b.Settings.Court
	}
	return "Tribunal de Commerce de " + city(b)
}

func money(b records.Bundle, n int64) string {
	return textfmt.Money(n, currency(b))
}

// firstClose is the end of the first financial year: 31 December of the
// incorporation year.
func firstClose(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return time.Date(t.Year(), time.December, 31, 0, 0, 0, 0, t.Location())
}

// identity renders the civil-status line of a natural person.
func identity(p records.Person) string {
	var sb strings.Builder
	sb.WriteString(p.Name)
	if p.Nationality != "" {
		sb.WriteString(", de nationalité " + p.Nationality)
	}
	if !p.BirthDate.IsZero() {
		sb.WriteString(", né(e) le " + textfmt.Date(p.BirthDate))
		if p.BirthPlace != "" {
			sb.WriteString(" à " + p.BirthPlace)
		}
	}
	if p.Profession != "" {
		sb.WriteString(", " + p.Profession)
	}
	if p.Domicile != "" {
		sb.WriteString(", demeurant à " + p.Domicile)
	}
	if doc := identityDocument(p.Identity); doc != "" {
		sb.WriteString(", titulaire " + doc)
	}
	return sb.String()
}

func identityDocument(d records.IdentityDocument) string {
	if d.Number == "" {
		return ""
	}
	kind := d.Type
	if kind == "" {
		kind = "CIN"
	}
	out := fmt.Sprintf("de la %s n° %s", kind, d.Number)
	if !d.IssuedAt.IsZero() {
		out += " délivrée le " + textfmt.Date(d.IssuedAt)
		if d.IssuedIn != "" {
			out += " à " + d.IssuedIn
		}
	}
	if !d.ValidUntil.IsZero() {
		out += ", valable jusqu'au " + textfmt.Date(d.ValidUntil)
	}
	return out
}

// shareLine renders "100 parts sociales (100.00%)".
func shareLine(a records.AssociateRecord) string {
	return fmt.Sprintf("%s %s (%s%%)", textfmt.Amount(a.ShareCount), textfmt.Plural(a.ShareCount, "part")+" "+textfmt.Plural(a.ShareCount, "sociale"), a.PercentText())
}

// closing builds the "Fait à ..." paragraph and the signature block.
func closing(e *env, key string, signatories ...content.Signatory) ([]content.Node, error) {
	line, err := e.text(key)
	if err != nil {
		return nil, err
	}
	return []content.Node{content.Signature(strings.Join(strings.Fields(line), " "), signatories...)}, nil
}

func associateSignatories(b records.Bundle) []content.Signatory {
	role := "L'associé"
	if b.Company.Variant == records.VariantSingleOwner {
		role = "L'associé unique"
	}
	out := make([]content.Signatory, 0, len(b.Associates))
	for _, a := range b.Associates {
		out = append(out, content.Signatory{Role: role, Name: a.Name})
	}
	return out
}

func managerSignatory(b records.Bundle) content.Signatory {
	m, _ := b.PrimaryManager()
	return content.Signatory{Role: "Le Gérant", Name: textfmt.OrBlank(m.Name)}
}

// checkBundle guards the invariants composers rely on. The assembler should
// already have enforced them.
func checkBundle(kind records.DocumentKind, b records.Bundle) error {
	c := b.Company
	if !c.Variant.Valid() {
		return docerr.Compositionf(string(kind), "unknown legal-form variant %q", c.Variant)
	}
	if len(b.Associates) == 0 {
		return docerr.Compositionf(string(kind), "no associates")
	}
	var total, percent int64
	for _, a := range b.Associates {
		total += a.ShareCount
		percent += a.Percentage
	}
	if total != c.TotalShares {
		return docerr.Compositionf(string(kind), "share counts sum to %d, company declares %d", total, c.TotalShares)
	}
	if c.Variant == records.VariantSingleOwner {
		if len(b.Associates) != 1 || b.Associates[0].Percentage != 10000 {
			return docerr.Compositionf(string(kind), "single-owner company must have one associate owning 100%%")
		}
	}
	// Each percentage is rounded to the hundredth, so the sum may drift by at
	// most half a hundredth per associate.
	drift := percent - 10000
	if drift < 0 {
		drift = -drift
	}
	if 2*drift > int64(len(b.Associates)) {
		return docerr.Compositionf(string(kind), "percentages sum to %s", records.FormatHundredths(percent))
	}
	if len(b.Managers) > 0 {
		primaries := 0
		for _, m := range b.Managers {
			if m.IsPrimary {
				primaries++
			}
		}
		if primaries != 1 {
			return docerr.Compositionf(string(kind), "%d primary managers, want exactly one", primaries)
		}
	}
	return nil
}

// orderedManagers returns the managers with the primary one first, keeping
// the declared order for the others.
func orderedManagers(ms []records.ManagerRecord) []records.ManagerRecord {
	out := make([]records.ManagerRecord, 0, len(ms))
	for _, m := range ms {
		if m.IsPrimary {
			out = append(out, m)
		}
	}
	for _, m := range ms {
		if !m.IsPrimary {
			out = append(out, m)
		}
	}
	return out
}

func mandateText(m records.Mandate) string {
	if m.Indefinite || m.Years <= 0 {
		return "durée indéterminée"
	}
	return textfmt.Years(m.Years)
}

// splitLines breaks a free-text field into trimmed, non-empty lines, dropping
// leading bullet markers.
func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(strings.TrimLeft(line, "-•* \t")); line != "" {
			out = append(out, line)
		}
	}
	return out
}
