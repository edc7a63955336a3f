package ingest

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// EndorsementAddInput is a validated coverage addition row.
type EndorsementAddInput struct {
	EmployeeCode string
	InsuredName  string
	Relation     string
	Gender       string
	ExternalID   string

	DateOfBirth   DateValue
	DateOfJoining DateValue

	SumInsuredBase        decimal.Decimal
	PremiumBase           decimal.Decimal
	SumInsuredTopup       decimal.Decimal
	PremiumTopup          decimal.Decimal
	SumInsuredParent      decimal.Decimal
	PremiumParent         decimal.Decimal
	SumInsuredParentInLaw decimal.Decimal
	PremiumParentInLaw    decimal.Decimal
}

// EndorsementRemoveInput is a validated coverage removal row.
type EndorsementRemoveInput struct {
	EmployeeCode string
	InsuredName  string
	Relation     string
	ExternalID   string

	DateOfLeaving DateValue

	RefundPremiumBase        decimal.Decimal
	RefundPremiumTopup       decimal.Decimal
	RefundPremiumParent      decimal.Decimal
	RefundPremiumParentInLaw decimal.Decimal
	RefundGSTBase            decimal.Decimal
	RefundGSTTopup           decimal.Decimal
	RefundGSTParent          decimal.Decimal
	RefundGSTParentInLaw     decimal.Decimal
}

var endorsementRelations = map[string]struct{}{
	"SELF":          {},
	"WIFE":          {},
	"HUSBAND":       {},
	"SON":           {},
	"DAUGHTER":      {},
	"MOTHER":        {},
	"FATHER":        {},
	"MOTHER-IN-LAW": {},
	"FATHER-IN-LAW": {},
	"SIBLING":       {},
	"SPOUSE":        {},
}

// EndorsementRules validates coverage rows. Additions fail fast on the
// first broken field; removals collect every missing field into one
// combined message so an admin can fix the whole row in a single pass.
type EndorsementRules struct{}

func NewEndorsementRules() *EndorsementRules {
	return &EndorsementRules{}
}

func (r *EndorsementRules) ValidateAdd(rec *Record, policyEnd time.Time) (*EndorsementAddInput, *RowError) {
	code := strings.TrimSpace(rec.Get(hdrEmployeeCode))

	for _, name := range endorsementAddRequired {
		if strings.TrimSpace(rec.Get(name)) == "" {
			return nil, rowErrorf(code, "%s is required", requiredLabel(name))
		}
	}

	gender := strings.TrimSpace(rec.Get(hdrGender))
	if _, ok := employeeGenders[strings.ToUpper(gender)]; !ok {
		return nil, rowErrorf(code, "Gender is not in correct format")
	}
	relation := strings.TrimSpace(rec.Get(hdrRelation))
	if _, ok := endorsementRelations[strings.ToUpper(relation)]; !ok {
		return nil, rowErrorf(code, "Relation is not in correct format")
	}

	in := &EndorsementAddInput{
		EmployeeCode:  code,
		InsuredName:   strings.TrimSpace(rec.Get(hdrInsuredName)),
		Relation:      relation,
		Gender:        gender,
		ExternalID:    strings.TrimSpace(rec.Get(hdrUHID)),
		DateOfBirth:   ParseDate(rec.Get(hdrDateOfBirth)),
		DateOfJoining: ParseDate(rec.Get(hdrDateOfJoining)),
	}

	for _, f := range []struct {
		name string
		dst  *decimal.Decimal
	}{
		{hdrSumInsuredBase, &in.SumInsuredBase},
		{hdrPremiumBase, &in.PremiumBase},
		{hdrSumInsuredTopup, &in.SumInsuredTopup},
		{hdrPremiumTopup, &in.PremiumTopup},
		{hdrSumInsuredParent, &in.SumInsuredParent},
		{hdrPremiumParent, &in.PremiumParent},
		{hdrSumInsuredParentInLaw, &in.SumInsuredParentInLaw},
		{hdrPremiumParentInLaw, &in.PremiumParentInLaw},
	} {
		d, err := decimal.NewFromString(strings.TrimSpace(rec.Get(f.name)))
		if err != nil {
			return nil, rowErrorf(code, "%s is not in correct format", requiredLabel(f.name))
		}
		*f.dst = d
	}

	// A joining date inside the last day of the policy term leaves no
	// coverage window to endorse.
	if doj, ok := in.DateOfJoining.Time(); ok && !policyEnd.IsZero() {
		days := math.Round(math.Abs(policyEnd.Sub(doj).Hours() / 24))
		if days < 1 {
			return nil, rowErrorf(code, "Date of Joining is too close to policy end date")
		}
	}

	return in, nil
}

func (r *EndorsementRules) ValidateRemove(rec *Record) (*EndorsementRemoveInput, *RowError) {
	code := strings.TrimSpace(rec.Get(hdrEmployeeCode))

	var missing []string
	for _, name := range endorsementRemoveRequired {
		if strings.TrimSpace(rec.Get(name)) == "" {
			missing = append(missing, requiredLabel(name))
		}
	}
	if len(missing) > 0 {
		return nil, rowErrorf(code, "Missing fields: %s", strings.Join(missing, ", "))
	}

	in := &EndorsementRemoveInput{
		EmployeeCode:  code,
		InsuredName:   strings.TrimSpace(rec.Get(hdrInsuredName)),
		Relation:      strings.TrimSpace(rec.Get(hdrRelation)),
		ExternalID:    strings.TrimSpace(rec.Get(hdrUHID)),
		DateOfLeaving: ParseDate(rec.Get(hdrDateOfLeaving)),
	}

	for _, f := range []struct {
		name string
		dst  *decimal.Decimal
	}{
		{hdrRefundPremiumBase, &in.RefundPremiumBase},
		{hdrRefundPremiumTopup, &in.RefundPremiumTopup},
		{hdrRefundPremiumParent, &in.RefundPremiumParent},
		{hdrRefundPremiumParentInLaw, &in.RefundPremiumParentInLaw},
		{hdrRefundGSTBase, &in.RefundGSTBase},
		{hdrRefundGSTTopup, &in.RefundGSTTopup},
		{hdrRefundGSTParent, &in.RefundGSTParent},
		{hdrRefundGSTParentInLaw, &in.RefundGSTParentInLaw},
	} {
		d, err := decimal.NewFromString(strings.TrimSpace(rec.Get(f.name)))
		if err != nil {
			return nil, rowErrorf(code, "%s is not in correct format", requiredLabel(f.name))
		}
		*f.dst = d
	}

	return in, nil
}

// requiredLabel strips the parenthetical format hint from a header name
// so messages read "Date of Birth is required", not the full template
// column title.
func requiredLabel(header string) string {
	if i := strings.Index(header, "("); i > 0 {
		if strings.HasPrefix(header, "Sum Insured") || strings.HasPrefix(header, "Premium") ||
			strings.HasPrefix(header, "Refund") {
			return header
		}
		return header[:i]
	}
	return header
}
