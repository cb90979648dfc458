package composer

import (
	"strconv"

	"github.com/goliatone/go-legaldocs/internal/textfmt"
	"github.com/goliatone/go-legaldocs/pkg/boilerplate"
	"github.com/goliatone/go-legaldocs/pkg/content"
	"github.com/goliatone/go-legaldocs/pkg/records"
)

// RegisterHeaders are the columns of the share register table.
var RegisterHeaders = []string{"N°", "Associé", "Parts", "Numéros", "Pourcentage", "Apport"}

type shareRegister struct {
	catalog *boilerplate.Catalog
}

// NewShareRegister returns the share register strategy. Share numbers are
// allocated to associates in declaration order.
func NewShareRegister(catalog *boilerplate.Catalog) Strategy {
	return &shareRegister{catalog: catalog}
}

func (s *shareRegister) Kind() records.DocumentKind { return records.KindShareRegister }

func (s *shareRegister) Compose(b records.Bundle) (content.Tree, error) {
	kind := records.KindShareRegister
	if err := checkBundle(kind, b); err != nil {
		return content.Tree{}, err
	}
	e := newEnv(s.catalog, b)

	nodes := []content.Node{content.Title("REGISTRE DES PARTS SOCIALES")}
	intro, err := e.paragraphs("register.intro")
	if err != nil {
		return content.Tree{}, compositionErr(kind, err)
	}
	nodes = append(nodes, intro...)

	var (
		next          int64 = 1
		shares, total int64
		percent       int64
	)
	rows := make([][]string, 0, len(b.Associates)+1)
	for i, a := range b.Associates {
		span := "-"
		if a.ShareCount > 0 {
			span = strconv.FormatInt(next, 10) + " à " + strconv.FormatInt(next+a.ShareCount-1, 10)
			next += a.ShareCount
		}
		shares += a.ShareCount
		total += a.Contribution
		percent += a.Percentage
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			a.Name,
			textfmt.Amount(a.ShareCount),
			span,
			a.PercentText() + "%",
			textfmt.Amount(a.Contribution),
		})
	}
	rows = append(rows, []string{
		"", "Total", textfmt.Amount(shares), "", records.FormatHundredths(percent) + "%", textfmt.Amount(total),
	})
	nodes = append(nodes, content.Table("Répartition des parts", RegisterHeaders, rows))
	nodes = append(nodes, content.Signature(
		"Arrêté à "+city(b)+", le "+textfmt.OrBlank(textfmt.Date(b.Company.IncorporatedAt)),
		managerSignatory(b),
	))

	return content.Tree{
		Kind:  string(kind),
		Title: "Registre des parts - " + b.Company.Denomination,
		Nodes: nodes,
	}, nil
}
