package composer

import (
	"fmt"
	"strconv"

	"github.com/goliatone/go-legaldocs/internal/textfmt"
	"github.com/goliatone/go-legaldocs/pkg/boilerplate"
	"github.com/goliatone/go-legaldocs/pkg/content"
	"github.com/goliatone/go-legaldocs/pkg/records"
)

// ProjectionYears is the number of rows of the registration projection
// table.
const ProjectionYears = 3

// Registration form section headings, in emission order.
const (
	SectionDeclarant      = "I. Déclarant"
	SectionIdentification = "II. Identification de l'entreprise"
	SectionActivity       = "III. Activité"
	SectionLocation       = "IV. Localisation"
)

type registrationForm struct {
	catalog *boilerplate.Catalog
}

// NewRegistrationForm returns the government registration form strategy. Its
// section order does not depend on the variant.
func NewRegistrationForm(catalog *boilerplate.Catalog) Strategy {
	return &registrationForm{catalog: catalog}
}

func (s *registrationForm) Kind() records.DocumentKind { return records.KindRegistrationForm }

func (s *registrationForm) Compose(b records.Bundle) (content.Tree, error) {
	kind := records.KindRegistrationForm
	if err := checkBundle(kind, b); err != nil {
		return content.Tree{}, err
	}
	e := newEnv(s.catalog, b)
	c := b.Company
	primary, _ := b.PrimaryManager()

	nodes := []content.Node{
		content.Title("FORMULAIRE UNIQUE DE CRÉATION D'ENTREPRISE"),

		content.Heading(SectionDeclarant),
		fieldTable([][2]string{
			{"Nom et prénoms", textfmt.OrBlank(primary.Name)},
			{"Qualité", "Gérant"},
			{"Nationalité", textfmt.OrBlank(primary.Nationality)},
			{"Adresse", textfmt.OrBlank(primary.Domicile)},
			{"Pièce d'identité", textfmt.OrBlank(identityDocument(primary.Identity))},
		}),

		content.Heading(SectionIdentification),
		fieldTable([][2]string{
			{"Dénomination", c.Denomination},
			{"Sigle", textfmt.OrBlank(c.Abbreviation)},
			{"Nom commercial", textfmt.OrBlank(c.TradeName)},
			{"Forme juridique", fmt.Sprintf("%s (%s)", c.Variant.LegalFormName(), c.Variant.LegalForm())},
			{"Capital social", money(b, c.Capital)},
			{"Nombre de parts", textfmt.Amount(c.TotalShares)},
			{"Durée", textfmt.Years(c.DurationYears)},
			{"Date de constitution", textfmt.OrBlank(textfmt.Date(c.IncorporatedAt))},
		}),

		content.Heading(SectionActivity),
		content.Paragraphf("Activité principale : %s", textfmt.OrBlank(firstLine(c.Purpose))),
		content.Paragraphf("Chiffre d'affaires prévisionnel : %s", textfmt.OrBlank(amountOrEmpty(b, c.ProjectedRevenue))),
		projectionTable(b),

		content.Heading(SectionLocation),
		fieldTable([][2]string{
			{"Adresse du siège", c.Address.String()},
			{"Lot", textfmt.OrBlank(c.Address.Lot)},
			{"Îlot", textfmt.OrBlank(c.Address.Block)},
			{"Quartier", textfmt.OrBlank(c.Address.District)},
			{"Commune", textfmt.OrBlank(c.Address.Commune)},
			{"Ville", city(b)},
			{"Téléphone", textfmt.OrBlank(c.Phone)},
			{"Email", textfmt.OrBlank(c.Email)},
		}),
	}

	for i, m := range orderedManagers(b.Managers) {
		nodes = append(nodes,
			content.Heading(ManagerSection(i+1, m.Name)),
			fieldTable([][2]string{
				{"Nom et prénoms", m.Name},
				{"Nom du père", textfmt.OrBlank(m.FatherName)},
				{"Nom de la mère", textfmt.OrBlank(m.MotherName)},
				{"Date et lieu de naissance", textfmt.OrBlank(birth(m.Person))},
				{"Nationalité", textfmt.OrBlank(m.Nationality)},
				{"Domicile", textfmt.OrBlank(m.Domicile)},
				{"Pièce d'identité", textfmt.OrBlank(identityDocument(m.Identity))},
				{"Mandat", mandateText(m.Mandate)},
			}),
		)
	}

	decl, err := e.paragraphs("registration.declaration")
	if err != nil {
		return content.Tree{}, compositionErr(kind, err)
	}
	nodes = append(nodes, decl...)
	nodes = append(nodes, content.Signature(
		fmt.Sprintf("Fait à %s, le %s", city(b), textfmt.OrBlank(textfmt.Date(c.IncorporatedAt))),
		content.Signatory{Role: "Le déclarant", Name: textfmt.OrBlank(primary.Name)},
	))

	return content.Tree{
		Kind:  string(kind),
		Title: "Formulaire d'immatriculation - " + c.Denomination,
		Nodes: nodes,
	}, nil
}

// ManagerSection is the heading of the nth manager block, counted from 1.
func ManagerSection(n int, name string) string {
	return fmt.Sprintf("V. Gérant %d - %s", n, name)
}

// Projections returns exactly ProjectionYears rows. Missing years are
// numbered after the incorporation year and left at zero.
func Projections(c records.CompanyRecord) []records.Projection {
	base := c.IncorporatedAt.Year()
	if c.IncorporatedAt.IsZero() {
		base = 0
	}
	out := make([]records.Projection, ProjectionYears)
	for i := range out {
		out[i].Year = base + i
		if i < len(c.Projections) {
			out[i] = c.Projections[i]
			if out[i].Year == 0 {
				out[i].Year = base + i
			}
		}
	}
	return out
}

func projectionTable(b records.Bundle) content.Node {
	rows := make([][]string, 0, ProjectionYears)
	for i, p := range Projections(b.Company) {
		year := "Année " + strconv.Itoa(i+1)
		if p.Year > 0 {
			year = strconv.Itoa(p.Year)
		}
		rows = append(rows, []string{
			year,
			textfmt.Amount(p.Investment) + " " + currency(b),
			strconv.Itoa(p.Employees),
		})
	}
	return content.Table("Prévisions sur trois ans",
		[]string{"Année", "Investissement", "Emplois"}, rows)
}

func fieldTable(fields [][2]string) content.Node {
	rows := make([][]string, len(fields))
	for i, f := range fields {
		rows[i] = []string{f[0], f[1]}
	}
	return content.Table("", []string{"Rubrique", "Renseignement"}, rows)
}

func birth(p records.Person) string {
	d := textfmt.Date(p.BirthDate)
	if d == "" {
		return ""
	}
	if p.BirthPlace != "" {
		return d + " à " + p.BirthPlace
	}
	return d
}

func firstLine(s string) string {
	if lines := splitLines(s); len(lines) > 0 {
		return lines[0]
	}
	return ""
}

func amountOrEmpty(b records.Bundle, n int64) string {
	if n <= 0 {
		return ""
	}
	return textfmt.Amount(n) + " " + currency(b)
}
