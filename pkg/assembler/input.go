package assembler

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	internal "github.com/goliatone/go-legaldocs/internal/assembler"
	"github.com/goliatone/go-legaldocs/pkg/docerr"
	"github.com/goliatone/go-legaldocs/pkg/records"
)

// RawInput is the loosely typed request accepted by the assembler. Each map
// carries decoded JSON; keys may use any alias known to the assembler.
type RawInput struct {
	Company    map[string]any   `json:"company"`
	Associates []map[string]any `json:"associates"`
	Managers   []map[string]any `json:"managers,omitempty"`
	Lease      map[string]any   `json:"lease,omitempty"`
}

// DecodeRawInput reads a JSON request.
func DecodeRawInput(r io.Reader) (RawInput, error) {
	var in RawInput
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return RawInput{}, fmt.Errorf("assembler: decode input: %w", err)
	}
	return in, nil
}

// LoadRawInput reads a JSON request from path.
func LoadRawInput(path string) (RawInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return RawInput{}, fmt.Errorf("assembler: open input: %w", err)
	}
	defer f.Close()
	return DecodeRawInput(f)
}

// The input structs below carry the validator rules. Values are decoded from
// the resolved maps first, then validated as a whole so every problem is
// reported at once.

type companyInput struct {
	Denomination string `json:"denomination" validate:"required"`
	Variant      string `json:"variant" validate:"required,oneof=single_owner multi_owner"`
	Capital      int64  `json:"capital" validate:"gt=0"`
	TotalShares  int64  `json:"total_shares" validate:"gte=0"`
	Purpose      string `json:"purpose" validate:"required"`
	Address      string `json:"address" validate:"required"`
	Duration     int64  `json:"duration_years" validate:"gte=0,lte=99"`
}

type personInput struct {
	Name        string `json:"name" validate:"required"`
	Nationality string `json:"nationality" validate:"required"`
	BirthDate   string `json:"birth_date" validate:"required"`
	BirthPlace  string `json:"birth_place" validate:"required"`
	Domicile    string `json:"domicile" validate:"required"`
	IDType      string `json:"id_type" validate:"required"`
	IDNumber    string `json:"id_number" validate:"required"`
}

type associateInput struct {
	personInput
	ShareCount int64 `json:"share_count" validate:"gt=0"`
}

type leaseInput struct {
	LessorName  string `json:"lessor_name" validate:"required"`
	MonthlyRent int64  `json:"monthly_rent" validate:"gt=0"`
	Deposit     int64  `json:"deposit_months" validate:"gte=0,lte=24"`
	Advance     int64  `json:"advance_months" validate:"gte=0,lte=24"`
	Duration    int64  `json:"duration_years" validate:"gte=0,lte=99"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// collect maps validator failures onto dotted field paths under prefix.
func collect(verr *docerr.ValidationError, prefix string, err error) {
	if err == nil {
		return
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		verr.Add(prefix, err.Error())
		return
	}
	for _, fe := range errs {
		field := fe.Field()
		if prefix != "" {
			field = prefix + "." + field
		}
		switch fe.Tag() {
		case "required":
			verr.Add(field, "is required")
		case "oneof":
			verr.Add(field, "must be one of: "+strings.ReplaceAll(fe.Param(), " ", ", "))
		case "gt":
			verr.Add(field, "must be greater than "+fe.Param())
		case "gte":
			verr.Add(field, "must be at least "+fe.Param())
		case "lte":
			verr.Add(field, "must be at most "+fe.Param())
		default:
			verr.Add(field, "is invalid")
		}
	}
}

// variantOf accepts the canonical variant names and the usual legal-form
// spellings.
func variantOf(raw string, associates int) string {
	switch internal.Normalize(raw) {
	case "singleowner", "single", "sarlu", "unipersonnelle", "eurl":
		return string(records.VariantSingleOwner)
	case "multiowner", "multi", "sarl":
		return string(records.VariantMultiOwner)
	case "":
		switch {
		case associates == 1:
			return string(records.VariantSingleOwner)
		case associates > 1:
			return string(records.VariantMultiOwner)
		}
		return ""
	default:
		return raw
	}
}

func intField(verr *docerr.ValidationError, m map[string]any, key, path string) int64 {
	n, _, err := internal.Int(m, key)
	if err != nil {
		verr.Add(path, "must be a whole number")
	}
	return n
}

func dateField(verr *docerr.ValidationError, m map[string]any, key, path string) time.Time {
	t, _, err := internal.Date(m, key)
	if err != nil {
		verr.Add(path, "must be a date (YYYY-MM-DD)")
	}
	return t
}

func indexPath(list string, i int, field string) string {
	if field == "" {
		return fmt.Sprintf("%s[%d]", list, i)
	}
	return fmt.Sprintf("%s[%d].%s", list, i, field)
}
