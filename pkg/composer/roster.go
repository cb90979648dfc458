package composer

import (
	"fmt"

	"github.com/goliatone/go-legaldocs/internal/textfmt"
	"github.com/goliatone/go-legaldocs/pkg/boilerplate"
	"github.com/goliatone/go-legaldocs/pkg/content"
	"github.com/goliatone/go-legaldocs/pkg/records"
)

type managerRoster struct {
	catalog *boilerplate.Catalog
}

// NewManagerRoster returns the manager roster strategy. The primary manager
// is always listed first.
func NewManagerRoster(catalog *boilerplate.Catalog) Strategy {
	return &managerRoster{catalog: catalog}
}

func (s *managerRoster) Kind() records.DocumentKind { return records.KindManagerRoster }

func (s *managerRoster) Compose(b records.Bundle) (content.Tree, error) {
	kind := records.KindManagerRoster
	if err := checkBundle(kind, b); err != nil {
		return content.Tree{}, err
	}
	if len(b.Managers) == 0 {
		return content.Tree{}, compositionErr(kind, fmt.Errorf("no managers declared"))
	}
	e := newEnv(s.catalog, b)

	nodes := []content.Node{content.Title("LISTE DES GÉRANTS")}
	intro, err := e.paragraphs("roster.intro")
	if err != nil {
		return content.Tree{}, compositionErr(kind, err)
	}
	nodes = append(nodes, intro...)

	for i, m := range orderedManagers(b.Managers) {
		role := "Co-gérant"
		if m.IsPrimary {
			role = "Gérant principal"
		}
		nodes = append(nodes,
			content.Heading(fmt.Sprintf("%d. %s", i+1, m.Name)),
			content.List(
				"Qualité : "+role,
				"Né(e) le : "+textfmt.OrBlank(birth(m.Person)),
				"Fils/Fille de : "+textfmt.OrBlank(parents(m)),
				"Nationalité : "+textfmt.OrBlank(m.Nationality),
				"Domicile : "+textfmt.OrBlank(m.Domicile),
				"Pièce d'identité : "+textfmt.OrBlank(identityDocument(m.Identity)),
				"Durée du mandat : "+mandateText(m.Mandate),
			),
		)
	}

	nodes = append(nodes, content.Signature(
		fmt.Sprintf("Certifié conforme, à %s, le %s", city(b), textfmt.OrBlank(textfmt.Date(b.Company.IncorporatedAt))),
		managerSignatory(b),
	))

	return content.Tree{
		Kind:  string(kind),
		Title: "Liste des gérants - " + b.Company.Denomination,
		Nodes: nodes,
	}, nil
}

func parents(m records.ManagerRecord) string {
	switch {
	case m.FatherName != "" && m.MotherName != "":
		return m.FatherName + " et de " + m.MotherName
	case m.FatherName != "":
		return m.FatherName
	default:
		return m.MotherName
	}
}
