package ingest

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/vantagehr/benefits/modules/benefits/domain/employee"
)

// EmployeeAddInput is a validated employee addition row, ready for the
// executor. IsEdit distinguishes the update path (code already present
// with a matching email) from a fresh creation.
type EmployeeAddInput struct {
	Code          string
	Email         string
	NewEmail      string
	FirstName     string
	LastName      string
	Gender        string
	ContactNumber string
	Designation   string
	Grade         string

	DateOfBirth   DateValue
	DateOfJoining DateValue

	LocationID int64

	IsEdit   bool
	Existing *employee.Employee
}

type EmployeeRemoveInput struct {
	Existing      *employee.Employee
	DateOfLeaving DateValue
}

// EmployeeRules validates employee upload rows against the live employee
// and location directories. Checks run in a fixed order and the first
// failure wins; every message is written verbatim into the rejected
// report, so wording changes are visible to HR admins.
type EmployeeRules struct {
	employees employee.Repository
	locations employee.LocationRepository
	validate  *validator.Validate
}

func NewEmployeeRules(employees employee.Repository, locations employee.LocationRepository) *EmployeeRules {
	return &EmployeeRules{
		employees: employees,
		locations: locations,
		validate:  validator.New(),
	}
}

var employeeGenders = map[string]struct{}{
	"MALE":   {},
	"FEMALE": {},
	"OTHER":  {},
}

func (r *EmployeeRules) ValidateAdd(ctx context.Context, companyID int64, rec *Record) (*EmployeeAddInput, *RowError) {
	code := strings.TrimSpace(rec.Get(hdrEmployeeCode))
	if code == "" {
		return nil, &RowError{Message: "Employee Code is required"}
	}

	email := strings.TrimSpace(rec.Get(hdrEmail))
	in := &EmployeeAddInput{
		Code:          code,
		Email:         email,
		NewEmail:      strings.TrimSpace(rec.Get(hdrNewEmail)),
		FirstName:     strings.TrimSpace(rec.Get(hdrFirstName)),
		LastName:      strings.TrimSpace(rec.Get(hdrLastName)),
		Gender:        strings.TrimSpace(rec.Get(hdrGender)),
		ContactNumber: strings.TrimSpace(rec.Get(hdrContactNumber)),
		Designation:   strings.TrimSpace(rec.Get(hdrDesignation)),
		Grade:         strings.TrimSpace(rec.Get(hdrGrade)),
		DateOfBirth:   ParseDate(rec.Get(hdrDateOfBirth)),
		DateOfJoining: ParseDate(rec.Get(hdrDateOfJoining)),
	}

	// An existing code turns the row into an edit, but only when the
	// email matches the stored one; otherwise the code is being reused
	// for a different person, which is rejected.
	existing, err := r.employees.GetByCode(ctx, companyID, code)
	switch {
	case err == nil:
		if !strings.EqualFold(strings.TrimSpace(existing.Email), email) {
			return nil, rowErrorf(code, "Employee Code is not unique")
		}
		in.IsEdit = true
		in.Existing = existing
	case err != employee.ErrNotFound:
		return nil, rowErrorf(code, "%s", err.Error())
	}

	if r.validate.Var(email, "required,email") != nil {
		return nil, rowErrorf(code, "Email is not in correct format")
	}
	owner, err := r.employees.GetByEmail(ctx, companyID, email)
	if err == nil && !strings.EqualFold(owner.Code, code) {
		return nil, rowErrorf(code, "Email already exists")
	}
	if err != nil && err != employee.ErrNotFound {
		return nil, rowErrorf(code, "%s", err.Error())
	}

	if in.NewEmail != "" {
		if r.validate.Var(in.NewEmail, "email") != nil {
			return nil, rowErrorf(code, "New Email is not in correct format")
		}
		// The employee's own current address would match itself in the
		// global check; re-submitting it is a no-op, not a conflict.
		ownAddress := in.Existing != nil && strings.EqualFold(in.NewEmail, strings.TrimSpace(in.Existing.Email))
		if !ownAddress {
			taken, err := r.employees.EmailExists(ctx, in.NewEmail)
			if err != nil {
				return nil, rowErrorf(code, "%s", err.Error())
			}
			if taken {
				return nil, rowErrorf(code, "New Email already exists")
			}
		}
	}

	for _, req := range []struct{ label, value string }{
		{"First Name", in.FirstName},
		{"Gender", in.Gender},
		{"Date of Joining", in.DateOfJoining.Raw()},
		{"Date of Birth", in.DateOfBirth.Raw()},
		{"Designation", in.Designation},
		{"Grade", in.Grade},
	} {
		if req.value == "" {
			return nil, rowErrorf(code, "%s is required", req.label)
		}
	}

	// Contact number is optional; only the format of a provided one is
	// checked.
	if in.ContactNumber != "" {
		if digits := stripNonDigits(in.ContactNumber); len(digits) != 10 {
			return nil, rowErrorf(code, "Contact Number is not in correct format")
		}
	}
	if _, ok := employeeGenders[strings.ToUpper(in.Gender)]; !ok {
		return nil, rowErrorf(code, "Gender is not in correct format")
	}

	if entityCode := strings.TrimSpace(rec.Get(hdrEntityCode)); entityCode != "" {
		loc, err := r.locations.GetByCode(ctx, companyID, entityCode)
		if err != nil {
			return nil, rowErrorf(code, "Entity Code is not valid")
		}
		in.LocationID = loc.ID
	}

	return in, nil
}

func (r *EmployeeRules) ValidateRemove(ctx context.Context, companyID int64, rec *Record) (*EmployeeRemoveInput, *RowError) {
	code := strings.TrimSpace(rec.Get(hdrEmployeeCode))
	if code == "" {
		return nil, &RowError{Message: "Employee Code is required"}
	}
	dol := ParseDate(rec.Get(hdrDateOfLeaving))
	if dol.Empty() {
		return nil, rowErrorf(code, "Date of Leaving is required")
	}

	existing, err := r.employees.GetByCode(ctx, companyID, code)
	if err != nil {
		return nil, rowErrorf(code, "Employee Not Found")
	}
	return &EmployeeRemoveInput{Existing: existing, DateOfLeaving: dol}, nil
}

func stripNonDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
