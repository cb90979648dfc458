package composer

import (
	"github.com/goliatone/go-legaldocs/internal/textfmt"
	"github.com/goliatone/go-legaldocs/pkg/boilerplate"
	"github.com/goliatone/go-legaldocs/pkg/content"
	"github.com/goliatone/go-legaldocs/pkg/records"
)

type honorDeclaration struct {
	catalog *boilerplate.Catalog
}

// NewHonorDeclaration returns the sworn declaration signed by the primary
// manager.
func NewHonorDeclaration(catalog *boilerplate.Catalog) Strategy {
	return &honorDeclaration{catalog: catalog}
}

func (s *honorDeclaration) Kind() records.DocumentKind { return records.KindHonorDeclaration }

func (s *honorDeclaration) Compose(b records.Bundle) (content.Tree, error) {
	kind := records.KindHonorDeclaration
	if err := checkBundle(kind, b); err != nil {
		return content.Tree{}, err
	}
	e := newEnv(s.catalog, b)

	nodes := []content.Node{content.Title("DÉCLARATION SUR L'HONNEUR")}
	intro, err := e.paragraphs("honor.intro")
	if err != nil {
		return content.Tree{}, compositionErr(kind, err)
	}
	nodes = append(nodes, intro...)

	statements, err := e.list("honor.statements")
	if err != nil {
		return content.Tree{}, compositionErr(kind, err)
	}
	nodes = append(nodes, statements)

	outro, err := e.paragraphs("honor.closing")
	if err != nil {
		return content.Tree{}, compositionErr(kind, err)
	}
	nodes = append(nodes, outro...)
	nodes = append(nodes, content.Signature("Lu et approuvé", managerSignatory(b)))

	return content.Tree{
		Kind:  string(kind),
		Title: "Déclaration sur l'honneur - " + b.Company.Denomination,
		Nodes: nodes,
	}, nil
}

type subscriptionDeclaration struct {
	catalog *boilerplate.Catalog
}

// NewSubscriptionDeclaration returns the declaration of subscription and
// payment of the share capital.
func NewSubscriptionDeclaration(catalog *boilerplate.Catalog) Strategy {
	return &subscriptionDeclaration{catalog: catalog}
}

func (s *subscriptionDeclaration) Kind() records.DocumentKind {
	return records.KindSubscriptionDeclaration
}

func (s *subscriptionDeclaration) Compose(b records.Bundle) (content.Tree, error) {
	kind := records.KindSubscriptionDeclaration
	if err := checkBundle(kind, b); err != nil {
		return content.Tree{}, err
	}
	e := newEnv(s.catalog, b)

	var paid int64
	rows := make([][]string, 0, len(b.Associates))
	for _, a := range b.Associates {
		paid += a.Contribution
		rows = append(rows, []string{
			a.Name,
			textfmt.Amount(a.ShareCount),
			textfmt.Amount(a.Contribution),
			textfmt.Amount(a.Contribution),
		})
	}
	e.vars["paid_money"] = money(b, paid)

	nodes := []content.Node{content.Title("DÉCLARATION DE SOUSCRIPTION ET DE VERSEMENT")}
	intro, err := e.paragraphs("subscription.intro")
	if err != nil {
		return content.Tree{}, compositionErr(kind, err)
	}
	nodes = append(nodes, intro...)
	nodes = append(nodes, content.Table("Souscriptions",
		[]string{"Associé", "Parts souscrites", "Montant souscrit (" + currency(b) + ")", "Montant versé (" + currency(b) + ")"},
		rows))

	for _, key := range []string{"subscription.total", "subscription.closing"} {
		paras, err := e.paragraphs(key)
		if err != nil {
			return content.Tree{}, compositionErr(kind, err)
		}
		nodes = append(nodes, paras...)
	}
	nodes = append(nodes, content.Signature("", managerSignatory(b)))

	return content.Tree{
		Kind:  string(kind),
		Title: "Déclaration de souscription - " + b.Company.Denomination,
		Nodes: nodes,
	}, nil
}
