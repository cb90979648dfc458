package assembler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	internal "github.com/goliatone/go-legaldocs/internal/assembler"
	"github.com/goliatone/go-legaldocs/pkg/docerr"
	"github.com/goliatone/go-legaldocs/pkg/records"
)

// Defaults applied when the request leaves a value out.
const (
	DefaultDurationYears      = 99
	DefaultDepositMonths      = 2
	DefaultAdvanceMonths      = 2
	DefaultLeaseDurationYears = 3
)

// DefaultSettings returns the jurisdiction values used when none are
// configured.
func DefaultSettings() records.Settings {
	return records.Settings{
		CapitalCity:    "Antananarivo",
		Currency:       "Ariary",
		CurrencySymbol: "Ar",
		Court:          "Tribunal de Commerce d'Antananarivo",
	}
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithSettings overrides the jurisdiction settings. Empty fields keep their
// defaults.
func WithSettings(s records.Settings) Option {
	return func(a *Assembler) {
		if s.CapitalCity != "" {
			a.settings.CapitalCity = s.CapitalCity
		}
		if s.Currency != "" {
			a.settings.Currency = s.Currency
		}
		if s.CurrencySymbol != "" {
			a.settings.CurrencySymbol = s.CurrencySymbol
		}
		if s.Court != "" {
			a.settings.Court = s.Court
		}
	}
}

// WithClock injects the time source used for defaulted dates.
func WithClock(now func() time.Time) Option {
	return func(a *Assembler) {
		if now != nil {
			a.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Assembler) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// Assembler turns a RawInput into a canonical records.Bundle.
type Assembler struct {
	settings records.Settings
	now      func() time.Time
	logger   *zap.Logger
	validate *validator.Validate
}

// New constructs an Assembler.
func New(options ...Option) *Assembler {
	a := &Assembler{
		settings: DefaultSettings(),
		now:      time.Now,
		logger:   zap.NewNop(),
		validate: newValidator(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// Settings returns the jurisdiction settings in effect.
func (a *Assembler) Settings() records.Settings {
	return a.settings
}

// Assemble resolves aliases, applies defaults, validates required fields and
// recomputes share percentages. Every field problem is reported in a single
// docerr.ValidationError.
func (a *Assembler) Assemble(ctx context.Context, in RawInput) (records.Bundle, error) {
	if err := ctx.Err(); err != nil {
		return records.Bundle{}, err
	}
	verr := docerr.NewValidation()

	company := a.company(verr, in)
	associates := a.associates(verr, in.Associates)
	managers := a.managers(verr, in.Managers)

	company.Variant = records.Variant(variantOf(string(company.Variant), len(in.Associates)))
	a.checkVariant(verr, company.Variant, len(associates))
	a.applyShares(verr, &company, associates)

	var lease *records.LeaseRecord
	if len(in.Lease) > 0 {
		lease = a.lease(verr, in.Lease, company)
	}

	if err := verr.OrNil(); err != nil {
		a.logger.Debug("assemble rejected", zap.Int("problems", len(verr.Fields)))
		return records.Bundle{}, err
	}

	bundle := records.Bundle{
		Company:    company,
		Associates: associates,
		Managers:   managers,
		Lease:      lease,
		Settings:   a.settings,
	}
	a.logger.Debug("bundle assembled",
		zap.String("denomination", company.Denomination),
		zap.String("variant", string(company.Variant)),
		zap.Int("associates", len(associates)),
		zap.Int("managers", len(managers)),
		zap.Bool("lease", lease != nil),
	)
	return bundle, nil
}

func (a *Assembler) company(verr *docerr.ValidationError, in RawInput) records.CompanyRecord {
	m := internal.CompanyAliases.Resolve(in.Company)
	addr := a.address(in.Company, m)

	c := records.CompanyRecord{
		ID:               internal.String(m, "id"),
		Denomination:     internal.String(m, "denomination"),
		Abbreviation:     internal.String(m, "abbreviation"),
		TradeName:        internal.String(m, "trade_name"),
		Variant:          records.Variant(internal.String(m, "variant")),
		Capital:          intField(verr, m, "capital", "company.capital"),
		CapitalWords:     internal.String(m, "capital_words"),
		TotalShares:      intField(verr, m, "total_shares", "company.total_shares"),
		ShareUnitValue:   intField(verr, m, "share_unit_value", "company.share_unit_value"),
		Purpose:          internal.PlainText(internal.String(m, "purpose")),
		Address:          addr,
		DurationYears:    int(intField(verr, m, "duration_years", "company.duration_years")),
		IncorporatedAt:   dateField(verr, m, "incorporated_at", "company.incorporated_at"),
		ProjectedRevenue: intField(verr, m, "projected_revenue", "company.projected_revenue"),
		Phone:            internal.String(m, "phone"),
		Email:            internal.String(m, "email"),
	}
	c.Projections = projections(verr, internal.Maps(m, "projections"))

	if c.DurationYears == 0 {
		c.DurationYears = DefaultDurationYears
	}
	if c.IncorporatedAt.IsZero() {
		now := a.now()
		c.IncorporatedAt = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}

	input := companyInput{
		Denomination: c.Denomination,
		Variant:      variantOf(string(c.Variant), len(in.Associates)),
		Capital:      c.Capital,
		TotalShares:  c.TotalShares,
		Purpose:      c.Purpose,
		Address:      addr.String(),
		Duration:     int64(c.DurationYears),
	}
	collect(verr, "company", a.validate.Struct(input))
	return c
}

// address reads the registered address either from a nested object or from
// flat keys on the company map. City falls back to the capital city.
func (a *Assembler) address(raw, resolved map[string]any) records.Address {
	fields := internal.AddressAliases.Resolve(raw)
	if nested := internal.Map(resolved, "address"); nested != nil {
		for k, v := range internal.AddressAliases.Resolve(nested) {
			fields[k] = v
		}
	} else if street := internal.String(resolved, "address"); street != "" {
		fields["street"] = street
	}
	addr := records.Address{
		Street:   internal.PlainText(internal.String(fields, "street")),
		District: internal.String(fields, "district"),
		Commune:  internal.String(fields, "commune"),
		Lot:      internal.String(fields, "lot"),
		Block:    internal.String(fields, "block"),
		City:     internal.String(fields, "city"),
	}
	if addr.City == "" {
		addr.City = a.settings.CapitalCity
	}
	return addr
}

func projections(verr *docerr.ValidationError, rows []map[string]any) []records.Projection {
	if len(rows) == 0 {
		return nil
	}
	out := make([]records.Projection, 0, len(rows))
	for i, row := range rows {
		r := internal.AliasTable{
			"year":       {"annee"},
			"investment": {"investissement"},
			"employees":  {"emplois", "jobs"},
		}.Resolve(row)
		out = append(out, records.Projection{
			Year:       int(intField(verr, r, "year", indexPath("company.projections", i, "year"))),
			Investment: intField(verr, r, "investment", indexPath("company.projections", i, "investment")),
			Employees:  int(intField(verr, r, "employees", indexPath("company.projections", i, "employees"))),
		})
	}
	return out
}

func (a *Assembler) person(verr *docerr.ValidationError, m map[string]any, path string) (records.Person, personInput) {
	p := records.Person{
		Name:        internal.String(m, "name"),
		Nationality: internal.String(m, "nationality"),
		BirthDate:   dateField(verr, m, "birth_date", path+".birth_date"),
		BirthPlace:  internal.String(m, "birth_place"),
		Profession:  internal.PlainText(internal.String(m, "profession")),
		Domicile:    internal.PlainText(internal.String(m, "domicile")),
		Identity: records.IdentityDocument{
			Type:       internal.String(m, "id_type"),
			Number:     internal.String(m, "id_number"),
			IssuedAt:   dateField(verr, m, "id_issued_at", path+".id_issued_at"),
			IssuedIn:   internal.String(m, "id_issued_in"),
			ValidUntil: dateField(verr, m, "id_valid_until", path+".id_valid_until"),
		},
	}
	if nested := internal.Map(m, "identity"); nested != nil && p.Identity.Number == "" {
		id := internal.AliasTable{
			"type":        {"kind"},
			"number":      {"numero"},
			"issued_at":   {"date"},
			"issued_in":   {"place"},
			"valid_until": {"expires_at"},
		}.Resolve(nested)
		p.Identity.Type = internal.String(id, "type")
		p.Identity.Number = internal.String(id, "number")
		p.Identity.IssuedAt = dateField(verr, id, "issued_at", path+".identity.issued_at")
		p.Identity.IssuedIn = internal.String(id, "issued_in")
		p.Identity.ValidUntil = dateField(verr, id, "valid_until", path+".identity.valid_until")
	}
	if p.Identity.Number != "" && p.Identity.Type == "" {
		p.Identity.Type = "CIN"
	}

	input := personInput{
		Name:        p.Name,
		Nationality: p.Nationality,
		BirthPlace:  p.BirthPlace,
		Domicile:    p.Domicile,
		IDType:      p.Identity.Type,
		IDNumber:    p.Identity.Number,
	}
	if !p.BirthDate.IsZero() {
		input.BirthDate = p.BirthDate.Format("2006-01-02")
	} else if internal.String(m, "birth_date") != "" {
		// Unparseable dates were already reported.
		input.BirthDate = "invalid"
	}
	return p, input
}

func (a *Assembler) associates(verr *docerr.ValidationError, raw []map[string]any) []records.AssociateRecord {
	if len(raw) == 0 {
		verr.Add("associates", "at least one associate is required")
		return nil
	}
	out := make([]records.AssociateRecord, 0, len(raw))
	for i, item := range raw {
		path := indexPath("associates", i, "")
		m := internal.PersonAliases.Resolve(item)
		person, pin := a.person(verr, m, path)
		rec := records.AssociateRecord{
			Person:         person,
			ShareCount:     intField(verr, m, "share_count", path+".share_count"),
			ShareUnitValue: intField(verr, m, "share_unit_value", path+".share_unit_value"),
			Contribution:   intField(verr, m, "contribution", path+".contribution"),
		}
		collect(verr, path, a.validate.Struct(associateInput{personInput: pin, ShareCount: rec.ShareCount}))
		out = append(out, rec)
	}
	return out
}

func (a *Assembler) managers(verr *docerr.ValidationError, raw []map[string]any) []records.ManagerRecord {
	if len(raw) == 0 {
		return nil
	}
	out := make([]records.ManagerRecord, 0, len(raw))
	primaries := 0
	for i, item := range raw {
		path := indexPath("managers", i, "")
		m := internal.PersonAliases.Resolve(item)
		person, pin := a.person(verr, m, path)
		rec := records.ManagerRecord{
			Person:     person,
			FatherName: internal.String(m, "father_name"),
			MotherName: internal.String(m, "mother_name"),
			Mandate:    mandate(verr, m, path),
			IsPrimary:  internal.Bool(m, "is_primary"),
		}
		if rec.IsPrimary {
			primaries++
		}
		collect(verr, path, a.validate.Struct(pin))
		out = append(out, rec)
	}
	switch {
	case primaries == 0:
		out[0].IsPrimary = true
	case primaries > 1:
		verr.Add("managers", fmt.Sprintf("exactly one primary manager is allowed, got %d", primaries))
	}
	return out
}

// mandate accepts a number of years or a textual "indefinite" marker. A
// missing mandate is indefinite.
func mandate(verr *docerr.ValidationError, m map[string]any, path string) records.Mandate {
	if internal.Bool(m, "mandate_indefinite") {
		return records.Mandate{Indefinite: true}
	}
	text := internal.Normalize(internal.String(m, "mandate_years"))
	if text == "" || strings.Contains(text, "indefini") || strings.Contains(text, "indetermin") {
		return records.Mandate{Indefinite: true}
	}
	years := intField(verr, m, "mandate_years", path+".mandate_years")
	if years <= 0 {
		return records.Mandate{Indefinite: true}
	}
	return records.Mandate{Years: int(years)}
}

func (a *Assembler) checkVariant(verr *docerr.ValidationError, v records.Variant, associates int) {
	if associates == 0 {
		return
	}
	switch v {
	case records.VariantSingleOwner:
		if associates != 1 {
			verr.Add("associates", fmt.Sprintf("single_owner requires exactly one associate, got %d", associates))
		}
	case records.VariantMultiOwner:
		if associates < 2 {
			verr.Add("associates", "multi_owner requires at least two associates")
		}
	}
}

// applyShares fills the share totals and recomputes every percentage from
// the share counts. Caller-supplied percentages are ignored.
func (a *Assembler) applyShares(verr *docerr.ValidationError, c *records.CompanyRecord, associates []records.AssociateRecord) {
	var sum int64
	for _, as := range associates {
		sum += as.ShareCount
	}
	if c.TotalShares == 0 {
		c.TotalShares = sum
	} else if sum != c.TotalShares && len(associates) > 0 {
		verr.Add("company.total_shares", fmt.Sprintf("does not match the sum of associate shares (%d)", sum))
	}
	if c.TotalShares <= 0 {
		return
	}
	if c.ShareUnitValue == 0 {
		c.ShareUnitValue = c.Capital / c.TotalShares
	}
	for i := range associates {
		as := &associates[i]
		if as.ShareUnitValue == 0 {
			as.ShareUnitValue = c.ShareUnitValue
		}
		if as.Contribution == 0 {
			as.Contribution = as.ShareCount * as.ShareUnitValue
		}
		as.Percentage = Percentage(as.ShareCount, c.TotalShares)
	}
}

func (a *Assembler) lease(verr *docerr.ValidationError, raw map[string]any, c records.CompanyRecord) *records.LeaseRecord {
	m := internal.LeaseAliases.Resolve(raw)
	l := records.LeaseRecord{
		LessorName:     internal.String(m, "lessor_name"),
		LessorIdentity: internal.String(m, "lessor_identity"),
		LessorAddress:  internal.PlainText(internal.String(m, "lessor_address")),
		LessorPhone:    internal.String(m, "lessor_phone"),
		Premises:       internal.PlainText(internal.String(m, "premises")),
		MonthlyRent:    intField(verr, m, "monthly_rent", "lease.monthly_rent"),
		StartDate:      dateField(verr, m, "start_date", "lease.start_date"),
		EndDate:        dateField(verr, m, "end_date", "lease.end_date"),
	}
	l.DepositMonths = monthsOrDefault(verr, m, "deposit_months", DefaultDepositMonths)
	l.AdvanceMonths = monthsOrDefault(verr, m, "advance_months", DefaultAdvanceMonths)
	l.DurationYears = monthsOrDefault(verr, m, "duration_years", DefaultLeaseDurationYears)

	if l.StartDate.IsZero() {
		l.StartDate = c.IncorporatedAt
	}
	if l.EndDate.IsZero() {
		l.EndDate = l.StartDate.AddDate(l.DurationYears, 0, 0)
	}
	if l.EndDate.Before(l.StartDate) {
		verr.Add("lease.end_date", "must not precede the start date")
	}

	collect(verr, "lease", a.validate.Struct(leaseInput{
		LessorName:  l.LessorName,
		MonthlyRent: l.MonthlyRent,
		Deposit:     int64(l.DepositMonths),
		Advance:     int64(l.AdvanceMonths),
		Duration:    int64(l.DurationYears),
	}))
	return &l
}

func monthsOrDefault(verr *docerr.ValidationError, m map[string]any, key string, def int) int {
	n, ok, err := internal.Int(m, key)
	if err != nil {
		verr.Add("lease."+key, "must be a whole number")
		return def
	}
	if !ok {
		return def
	}
	return int(n)
}

// Percentage returns shares / total × 100 in hundredths of a percent,
// rounded half up: 1 of 3 shares is 3333 (33.33%), 2 of 3 is 6667.
func Percentage(shares, total int64) int64 {
	if total <= 0 || shares <= 0 {
		return 0
	}
	return (shares*10000*2 + total) / (2 * total)
}
