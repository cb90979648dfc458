package composer

import (
	"github.com/goliatone/go-legaldocs/internal/textfmt"
	"github.com/goliatone/go-legaldocs/pkg/boilerplate"
	"github.com/goliatone/go-legaldocs/pkg/content"
	"github.com/goliatone/go-legaldocs/pkg/records"
)

// LeaseArticles is the commercial lease manifest. Rent and guarantee are
// bound to a single article.
var LeaseArticles = Manifest{
	Name: "lease",
	Articles: []ArticleSpec{
		clause("objet", "Objet - Désignation", "lease.objet"),
		clause("duree", "Durée", "lease.duree"),
		clause("renouvellement", "Renouvellement", "lease.renouvellement"),
		clause("obligations_bailleur", "Obligations du Bailleur", "lease.obligations_bailleur"),
		clause("obligations_preneur", "Obligations du Preneur", "lease.obligations_preneur"),
		clause("loyer", "Loyer - Caution - Avance", "lease.loyer"),
		clause("sous_location", "Sous-location - Cession", "lease.sous_location"),
		clause("clause_resolutoire", "Clause résolutoire", "lease.clause_resolutoire"),
		clause("juridiction", "Élection de domicile - Juridiction", "lease.juridiction"),
	},
}

type lease struct {
	catalog *boilerplate.Catalog
}

// NewLease returns the commercial lease strategy.
func NewLease(catalog *boilerplate.Catalog) Strategy {
	return &lease{catalog: catalog}
}

func (s *lease) Kind() records.DocumentKind { return records.KindLeaseContract }

func (s *lease) Compose(b records.Bundle) (content.Tree, error) {
	kind := records.KindLeaseContract
	if err := checkBundle(kind, b); err != nil {
		return content.Tree{}, err
	}
	if b.Lease == nil {
		return content.Tree{}, compositionErr(kind, errNoLease)
	}
	e := newEnv(s.catalog, b)
	for k, v := range leaseVars(b, *b.Lease) {
		e.vars[k] = v
	}

	nodes := []content.Node{content.Title("CONTRAT DE BAIL COMMERCIAL")}
	parties, err := e.paragraphs("lease.parties")
	if err != nil {
		return content.Tree{}, compositionErr(kind, err)
	}
	nodes = append(nodes, parties...)

	articles, err := LeaseArticles.Build(string(kind), e)
	if err != nil {
		return content.Tree{}, err
	}
	nodes = append(nodes, articles...)

	sig, err := closing(e, "lease.closing",
		content.Signatory{Role: "Le Bailleur", Name: b.Lease.LessorName},
		content.Signatory{Role: "Le Preneur", Name: "Pour " + b.Company.Denomination + ", " + textfmt.OrBlank(e.vars["manager_name"].(string))},
	)
	if err != nil {
		return content.Tree{}, compositionErr(kind, err)
	}
	nodes = append(nodes, sig...)

	return content.Tree{
		Kind:  string(kind),
		Title: "Contrat de bail - " + b.Company.Denomination,
		Nodes: nodes,
		Meta:  map[string]string{"manifest": LeaseArticles.Name},
	}, nil
}

func leaseVars(b records.Bundle, l records.LeaseRecord) map[string]any {
	premises := l.Premises
	if premises == "" {
		premises = b.Company.Address.String()
	}
	return map[string]any{
		"lessor_name":     l.LessorName,
		"lessor_identity": l.LessorIdentity,
		"lessor_address":  l.LessorAddress,
		"premises":        premises,
		"lease_duration":  textfmt.Years(l.DurationYears),
		"start_date":      textfmt.Date(l.StartDate),
		"end_date":        textfmt.Date(l.EndDate),
		"rent_money":      money(b, l.MonthlyRent),
		"deposit_months":  l.DepositMonths,
		"deposit_money":   money(b, l.DepositAmount()),
		"advance_months":  l.AdvanceMonths,
		"advance_money":   money(b, l.AdvanceAmount()),
		"guarantee_money": money(b, l.GuaranteeTotal()),
	}
}
