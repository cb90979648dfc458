package composer

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-legaldocs/internal/textfmt"
	"github.com/goliatone/go-legaldocs/pkg/boilerplate"
	"github.com/goliatone/go-legaldocs/pkg/content"
	"github.com/goliatone/go-legaldocs/pkg/records"
)

// SingleOwnerStatutes lists the 25 articles of the SARLU articles of
// association.
var SingleOwnerStatutes = Manifest{
	Name: "statutes/single_owner",
	Articles: []ArticleSpec{
		clause("forme", "Forme", "statutes.single.forme"),
		{ID: "objet", Title: "Objet", Build: buildPurpose},
		clause("denomination", "Dénomination", "statutes.common.denomination"),
		clause("siege", "Siège social", "statutes.common.siege"),
		clause("duree", "Durée", "statutes.common.duree"),
		{ID: "apports", Title: "Apports", Build: buildContributions},
		clause("capital", "Capital social", "statutes.single.capital"),
		clause("parts", "Parts sociales", "statutes.common.parts"),
		clause("modification_capital", "Modification du capital", "statutes.common.modification_capital"),
		clause("cession", "Cession et transmission des parts", "statutes.single.cession"),
		clause("droits", "Droits et obligations attachés aux parts", "statutes.common.droits"),
		clause("deces", "Décès ou incapacité de l'associé unique", "statutes.single.deces"),
		{ID: "gerance", Title: "Gérance", Build: buildManagement},
		clause("pouvoirs", "Pouvoirs de la gérance", "statutes.common.pouvoirs"),
		clause("remuneration", "Rémunération de la gérance", "statutes.common.remuneration"),
		clause("responsabilite", "Responsabilité de la gérance", "statutes.common.responsabilite"),
		clause("decisions", "Décisions de l'associé unique", "statutes.single.decisions"),
		clause("conventions", "Conventions réglementées", "statutes.common.conventions"),
		clause("commissaire", "Commissaire aux comptes", "statutes.common.commissaire"),
		clause("exercice", "Exercice social", "statutes.common.exercice"),
		clause("comptes", "Comptes annuels", "statutes.common.comptes"),
		clause("affectation", "Affectation des résultats", "statutes.common.affectation"),
		clause("dissolution", "Dissolution - Liquidation", "statutes.common.dissolution"),
		clause("contestations", "Contestations", "statutes.common.contestations"),
		clause("frais", "Frais et pouvoirs", "statutes.common.frais"),
	},
}

// MultiOwnerStatutes lists the 31 articles of the SARL articles of
// association.
var MultiOwnerStatutes = Manifest{
	Name: "statutes/multi_owner",
	Articles: []ArticleSpec{
		clause("forme", "Forme", "statutes.multi.forme"),
		{ID: "objet", Title: "Objet", Build: buildPurpose},
		clause("denomination", "Dénomination", "statutes.common.denomination"),
		clause("siege", "Siège social", "statutes.common.siege"),
		clause("duree", "Durée", "statutes.common.duree"),
		{ID: "apports", Title: "Apports", Build: buildContributions},
		{ID: "capital", Title: "Capital social", Build: buildSharedCapital},
		clause("parts", "Parts sociales", "statutes.common.parts"),
		clause("modification_capital", "Modification du capital", "statutes.common.modification_capital"),
		clause("cession_associes", "Cession entre associés", "statutes.multi.cession_associes"),
		clause("cession_tiers", "Cession à des tiers", "statutes.multi.cession_tiers"),
		clause("transmission", "Transmission par décès", "statutes.multi.transmission"),
		clause("nantissement", "Nantissement des parts", "statutes.multi.nantissement"),
		clause("droits", "Droits et obligations attachés aux parts", "statutes.common.droits"),
		{ID: "gerance", Title: "Gérance", Build: buildManagement},
		clause("pouvoirs", "Pouvoirs de la gérance", "statutes.common.pouvoirs"),
		clause("remuneration", "Rémunération de la gérance", "statutes.common.remuneration"),
		clause("responsabilite", "Responsabilité de la gérance", "statutes.common.responsabilite"),
		clause("revocation", "Révocation des gérants", "statutes.multi.revocation"),
		clause("assemblees", "Décisions collectives", "statutes.multi.assemblees"),
		clause("decisions_ordinaires", "Décisions ordinaires", "statutes.multi.decisions_ordinaires"),
		clause("decisions_extraordinaires", "Décisions extraordinaires", "statutes.multi.decisions_extraordinaires"),
		clause("communication", "Droit de communication", "statutes.multi.communication"),
		clause("conventions", "Conventions réglementées", "statutes.common.conventions"),
		clause("commissaire", "Commissaire aux comptes", "statutes.common.commissaire"),
		clause("exercice", "Exercice social", "statutes.common.exercice"),
		clause("comptes", "Comptes annuels", "statutes.common.comptes"),
		clause("affectation", "Affectation des résultats", "statutes.common.affectation"),
		clause("dissolution", "Dissolution - Liquidation", "statutes.common.dissolution"),
		clause("contestations", "Contestations", "statutes.common.contestations"),
		clause("frais", "Frais et pouvoirs", "statutes.common.frais"),
	},
}

// ManifestFor returns the statutes manifest of a variant.
func ManifestFor(v records.Variant) (Manifest, error) {
	switch v {
	case records.VariantSingleOwner:
		return SingleOwnerStatutes, nil
	case records.VariantMultiOwner:
		return MultiOwnerStatutes, nil
	default:
		return Manifest{}, fmt.Errorf("composer: unknown variant %q", v)
	}
}

type statutes struct {
	catalog *boilerplate.Catalog
}

// NewStatutes returns the articles-of-association strategy. The variant of
// the bundle selects the manifest.
func NewStatutes(catalog *boilerplate.Catalog) Strategy {
	return &statutes{catalog: catalog}
}

func (s *statutes) Kind() records.DocumentKind { return records.KindStatutes }

func (s *statutes) Compose(b records.Bundle) (content.Tree, error) {
	kind := records.KindStatutes
	if err := checkBundle(kind, b); err != nil {
		return content.Tree{}, err
	}
	manifest, err := ManifestFor(b.Company.Variant)
	if err != nil {
		return content.Tree{}, err
	}
	e := newEnv(s.catalog, b)

	c := b.Company
	nodes := []content.Node{
		content.Title(strings.ToUpper(c.Denomination)),
		content.Paragraphf("%s au capital de %s", c.Variant.LegalFormName(), e.vars["capital_money"]),
		content.Paragraphf("Siège social : %s", c.Address.String()),
		content.Title("STATUTS"),
	}

	preamble, err := e.paragraphs(variantKey(c.Variant, "preamble"))
	if err != nil {
		return content.Tree{}, compositionErr(kind, err)
	}
	nodes = append(nodes, preamble...)
	for _, a := range b.Associates {
		nodes = append(nodes, content.Paragraph(identity(a.Person)))
	}

	articles, err := manifest.Build(string(kind), e)
	if err != nil {
		return content.Tree{}, err
	}
	nodes = append(nodes, articles...)

	sig, err := closing(e, "statutes.common.closing", associateSignatories(b)...)
	if err != nil {
		return content.Tree{}, compositionErr(kind, err)
	}
	nodes = append(nodes, sig...)

	return content.Tree{
		Kind:  string(kind),
		Title: "Statuts - " + c.Denomination,
		Nodes: nodes,
		Meta: map[string]string{
			"variant":  string(c.Variant),
			"manifest": manifest.Name,
		},
	}, nil
}

func variantKey(v records.Variant, name string) string {
	if v == records.VariantSingleOwner {
		return "statutes.single." + name
	}
	return "statutes.multi." + name
}

func buildPurpose(e *env) ([]content.Node, error) {
	c := e.bundle.Company
	nodes := []content.Node{
		content.Paragraph("La société a pour objet, tant à Madagascar qu'à l'étranger :"),
	}
	items := splitLines(c.Purpose)
	if len(items) > 0 {
		nodes = append(nodes, content.List(items...))
	}
	suffix, err := e.paragraphs("statutes.common.objet_suffix")
	if err != nil {
		return nil, err
	}
	return append(nodes, suffix...), nil
}

// buildContributions emits one block per associate ending with the share
// allocation, e.g. "100 parts sociales (100.00%)".
func buildContributions(e *env) ([]content.Node, error) {
	b := e.bundle
	var nodes []content.Node
	if b.Company.Variant == records.VariantSingleOwner {
		nodes = append(nodes, content.Paragraph("L'associé unique fait apport à la société d'une somme en numéraire :"))
	} else {
		nodes = append(nodes, content.Paragraph("Les associés font apport à la société des sommes en numéraire suivantes :"))
	}
	var total int64
	for _, a := range b.Associates {
		total += a.Contribution
		nodes = append(nodes,
			content.Paragraphf("%s apporte la somme de %s, rémunérée par l'attribution de %s.",
				a.Name, money(b, a.Contribution), shareLine(a)),
		)
	}
	nodes = append(nodes, content.Paragraphf(
		"Soit au total la somme de %s, déposée en banque au nom de la société en formation.",
		money(b, total)))
	return nodes, nil
}

func buildSharedCapital(e *env) ([]content.Node, error) {
	b := e.bundle
	nodes, err := e.paragraphs("statutes.multi.capital")
	if err != nil {
		return nil, err
	}
	cur := currency(b)
	rows := make([][]string, 0, len(b.Associates))
	for _, a := range b.Associates {
		rows = append(rows, []string{
			a.Name,
			textfmt.Amount(a.ShareCount),
			a.PercentText() + "%",
			textfmt.Amount(a.Contribution) + " " + cur,
		})
	}
	nodes = append(nodes, content.Table("Répartition du capital",
		[]string{"Associé", "Parts", "Pourcentage", "Apport"}, rows))
	return nodes, nil
}

func buildManagement(e *env) ([]content.Node, error) {
	b := e.bundle
	managers := orderedManagers(b.Managers)
	if len(managers) == 0 {
		return []content.Node{
			content.Paragraph("La société est gérée par un ou plusieurs gérants, personnes physiques, associés ou non, nommés par décision " + e.vars["decision_body"].(string) + "."),
		}, nil
	}
	nodes := []content.Node{
		content.Paragraph("La société est gérée par un ou plusieurs gérants, personnes physiques, associés ou non."),
	}
	if len(managers) == 1 {
		nodes = append(nodes, content.Paragraphf("Est nommé(e) gérant(e) pour %s : %s.",
			mandateText(managers[0].Mandate), identity(managers[0].Person)))
		return nodes, nil
	}
	nodes = append(nodes, content.Paragraph("Sont nommés gérants :"))
	items := make([]string, 0, len(managers))
	for _, m := range managers {
		role := "co-gérant"
		if m.IsPrimary {
			role = "gérant principal"
		}
		items = append(items, fmt.Sprintf("%s, %s, pour %s", identity(m.Person), role, mandateText(m.Mandate)))
	}
	return append(nodes, content.List(items...)), nil
}
