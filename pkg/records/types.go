package records

import (
	"fmt"
	"strings"
	"time"
)

// Variant is the legal-form dimension of a company.
type Variant string

const (
	// VariantSingleOwner is the one-associate form (SARLU).
	VariantSingleOwner Variant = "single_owner"
	// VariantMultiOwner is the several-associates form (SARL).
	VariantMultiOwner Variant = "multi_owner"
)

// Valid reports whether v is one of the known variants.
func (v Variant) Valid() bool {
	return v == VariantSingleOwner || v == VariantMultiOwner
}

// LegalForm returns the abbreviation used in legal texts.
func (v Variant) LegalForm() string {
	if v == VariantSingleOwner {
		return "SARLU"
	}
	return "SARL"
}

// LegalFormName returns the spelled-out legal form.
func (v Variant) LegalFormName() string {
	if v == VariantSingleOwner {
		return "Société à Responsabilité Limitée Unipersonnelle"
	}
	return "Société à Responsabilité Limitée"
}

// Address is a registered or personal address.
type Address struct {
	Street   string `json:"street,omitempty"`
	District string `json:"district,omitempty"`
	Commune  string `json:"commune,omitempty"`
	Lot      string `json:"lot,omitempty"`
	Block    string `json:"block,omitempty"`
	City     string `json:"city,omitempty"`
}

// String joins the non-empty address parts in reading order.
func (a Address) String() string {
	parts := make([]string, 0, 6)
	if a.Lot != "" {
		parts = append(parts, "Lot "+a.Lot)
	}
	if a.Block != "" {
		parts = append(parts, "Îlot "+a.Block)
	}
	for _, p := range []string{a.Street, a.District, a.Commune, a.City} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Projection holds one year of the registration-form projections.
type Projection struct {
	Year       int   `json:"year"`
	Investment int64 `json:"investment"`
	Employees  int   `json:"employees"`
}

// CompanyRecord is the canonical company aggregate used by composers.
type CompanyRecord struct {
	ID               string       `json:"id,omitempty"`
	Denomination     string       `json:"denomination"`
	Abbreviation     string       `json:"abbreviation,omitempty"`
	TradeName        string       `json:"tradeName,omitempty"`
	Variant          Variant      `json:"variant"`
	Capital          int64        `json:"capital"`
	CapitalWords     string       `json:"capitalWords"`
	TotalShares      int64        `json:"totalShares"`
	ShareUnitValue   int64        `json:"shareUnitValue"`
	Purpose          string       `json:"purpose"`
	Address          Address      `json:"address"`
	DurationYears    int          `json:"durationYears"`
	IncorporatedAt   time.Time    `json:"incorporatedAt"`
	ProjectedRevenue int64        `json:"projectedRevenue,omitempty"`
	Projections      []Projection `json:"projections,omitempty"`
	Phone            string       `json:"phone,omitempty"`
	Email            string       `json:"email,omitempty"`
}

// IdentityDocument is the identity paper of a natural person.
type IdentityDocument struct {
	Type       string    `json:"type"`
	Number     string    `json:"number"`
	IssuedAt   time.Time `json:"issuedAt,omitempty"`
	IssuedIn   string    `json:"issuedIn,omitempty"`
	ValidUntil time.Time `json:"validUntil,omitempty"`
}

// Person holds the identity fields shared by associates and managers.
type Person struct {
	Name        string           `json:"name"`
	Nationality string           `json:"nationality"`
	BirthDate   time.Time        `json:"birthDate"`
	BirthPlace  string           `json:"birthPlace"`
	Profession  string           `json:"profession,omitempty"`
	Domicile    string           `json:"domicile"`
	Identity    IdentityDocument `json:"identity"`
}

// AssociateRecord is one shareholder of the company.
type AssociateRecord struct {
	Person
	ShareCount     int64 `json:"shareCount"`
	ShareUnitValue int64 `json:"shareUnitValue"`
	Contribution   int64 `json:"contribution"`
	// Percentage is expressed in hundredths of a percent (10000 = 100.00%).
	Percentage int64 `json:"percentage"`
}

// PercentText renders Percentage as "NN.NN".
func (a AssociateRecord) PercentText() string {
	return FormatHundredths(a.Percentage)
}

// Mandate is the duration of a manager's appointment.
type Mandate struct {
	Years      int  `json:"years,omitempty"`
	Indefinite bool `json:"indefinite,omitempty"`
}

// ManagerRecord is one manager (gérant) of the company.
type ManagerRecord struct {
	Person
	FatherName string  `json:"fatherName,omitempty"`
	MotherName string  `json:"motherName,omitempty"`
	Mandate    Mandate `json:"mandate"`
	IsPrimary  bool    `json:"isPrimary"`
}

// LeaseRecord describes the commercial lease of the registered office.
type LeaseRecord struct {
	LessorName     string    `json:"lessorName"`
	LessorIdentity string    `json:"lessorIdentity,omitempty"`
	LessorAddress  string    `json:"lessorAddress,omitempty"`
	LessorPhone    string    `json:"lessorPhone,omitempty"`
	Premises       string    `json:"premises,omitempty"`
	MonthlyRent    int64     `json:"monthlyRent"`
	DepositMonths  int       `json:"depositMonths"`
	AdvanceMonths  int       `json:"advanceMonths"`
	DurationYears  int       `json:"durationYears"`
	StartDate      time.Time `json:"startDate"`
	EndDate        time.Time `json:"endDate"`
}

// GuaranteeTotal is rent × (deposit months + advance months).
func (l LeaseRecord) GuaranteeTotal() int64 {
	return l.MonthlyRent * int64(l.DepositMonths+l.AdvanceMonths)
}

// DepositAmount is the security deposit alone.
func (l LeaseRecord) DepositAmount() int64 {
	return l.MonthlyRent * int64(l.DepositMonths)
}

// AdvanceAmount is the rent paid in advance.
func (l LeaseRecord) AdvanceAmount() int64 {
	return l.MonthlyRent * int64(l.AdvanceMonths)
}

// Bundle is the canonical record set produced by the assembler. It lives for
// the duration of one generation call.
type Bundle struct {
	Company    CompanyRecord     `json:"company"`
	Associates []AssociateRecord `json:"associates"`
	Managers   []ManagerRecord   `json:"managers"`
	Lease      *LeaseRecord      `json:"lease,omitempty"`
	Settings   Settings          `json:"settings"`
}

// PrimaryManager returns the manager flagged primary, if any.
func (b Bundle) PrimaryManager() (ManagerRecord, bool) {
	for _, m := range b.Managers {
		if m.IsPrimary {
			return m, true
		}
	}
	return ManagerRecord{}, false
}

// Settings carries jurisdiction values resolved by the assembler.
type Settings struct {
	CapitalCity    string `json:"capitalCity"`
	Currency       string `json:"currency"`
	CurrencySymbol string `json:"currencySymbol"`
	Court          string `json:"court"`
}

// FormatHundredths renders a hundredths value as "NN.NN".
func FormatHundredths(v int64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}
