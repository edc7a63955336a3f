package ingest

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/vantagehr/benefits/modules/benefits/domain/employee"
	"github.com/vantagehr/benefits/modules/benefits/domain/enrollment"
)

// Default profile pictures assigned on employee creation.
const (
	photoMale    = "/static/avatars/male.png"
	photoFemale  = "/static/avatars/female.png"
	photoNeutral = "/static/avatars/neutral.png"
)

// Executor applies validated rows to storage and converts results into
// report outcomes. The endorsement path surfaces storage error text
// verbatim in the rejected report; the employee path hides it behind a
// generic message. Both behaviors are load-bearing for the report
// consumers and must not be unified.
type Executor struct {
	rows      enrollment.Repository
	employees employee.Repository
}

func NewExecutor(rows enrollment.Repository, employees employee.Repository) *Executor {
	return &Executor{rows: rows, employees: employees}
}

func (e *Executor) AddEnrollment(ctx context.Context, bt *BatchTarget, member *Member, in *EndorsementAddInput) Outcome {
	row := &enrollment.Row{
		MappingID:     member.Mapping.ID,
		EmployeeID:    member.Employee.ID,
		PolicyID:      bt.Policy.ID,
		CompanyID:     bt.Policy.CompanyID,
		InsuredName:   in.InsuredName,
		Relation:      in.Relation,
		Gender:        in.Gender,
		DateOfBirth:   in.DateOfBirth.ISO(),
		DateOfJoining: in.DateOfJoining.ISO(),
		ExternalID:    in.ExternalID,

		SumInsuredBase:        in.SumInsuredBase,
		PremiumBase:           in.PremiumBase,
		SumInsuredTopup:       in.SumInsuredTopup,
		PremiumTopup:          in.PremiumTopup,
		SumInsuredParent:      in.SumInsuredParent,
		PremiumParent:         in.PremiumParent,
		SumInsuredParentInLaw: in.SumInsuredParentInLaw,
		PremiumParentInLaw:    in.PremiumParentInLaw,
	}
	if err := e.rows.Insert(ctx, bt.Route.TableName, bt.Route.ExternalIDColumn, row); err != nil {
		return Rejected(err.Error())
	}
	return Inserted("Data Added")
}

func (e *Executor) RemoveEnrollment(ctx context.Context, bt *BatchTarget, rowID int64, endorsementID int64, in *EndorsementRemoveInput) Outcome {
	removal := &enrollment.Removal{
		EndorsementID: endorsementID,
		DateOfLeaving: in.DateOfLeaving.ISO(),

		RefundPremiumBase:        in.RefundPremiumBase,
		RefundPremiumTopup:       in.RefundPremiumTopup,
		RefundPremiumParent:      in.RefundPremiumParent,
		RefundPremiumParentInLaw: in.RefundPremiumParentInLaw,
		RefundGSTBase:            in.RefundGSTBase,
		RefundGSTTopup:           in.RefundGSTTopup,
		RefundGSTParent:          in.RefundGSTParent,
		RefundGSTParentInLaw:     in.RefundGSTParentInLaw,
	}
	if err := e.rows.MarkRemoved(ctx, bt.Route.TableName, rowID, removal); err != nil {
		return Rejected(err.Error())
	}
	return Removed("Data Removed")
}

func (e *Executor) UpsertEmployee(ctx context.Context, companyID int64, in *EmployeeAddInput) Outcome {
	if in.IsEdit {
		emp := in.Existing
		emp.FirstName = in.FirstName
		emp.LastName = in.LastName
		emp.Gender = in.Gender
		emp.ContactNumber = in.ContactNumber
		emp.Designation = in.Designation
		emp.Grade = in.Grade
		emp.DateOfBirth = in.DateOfBirth.ISO()
		emp.DateOfJoining = in.DateOfJoining.ISO()
		if in.LocationID != 0 {
			emp.LocationID = in.LocationID
		}
		remark := "Data Updated"
		if in.NewEmail != "" {
			emp.Email = in.NewEmail
			remark = "Email Updated"
		}
		if err := e.employees.Update(ctx, emp); err != nil {
			return Rejected("Employee not added/updated due to internal server issue")
		}
		return Updated(remark)
	}

	// Initial credential is the date of birth; employees are forced to
	// change it on first login.
	hash, err := bcrypt.GenerateFromPassword([]byte(in.DateOfBirth.ISO()), bcrypt.DefaultCost)
	if err != nil {
		return Rejected("Employee not added/updated due to internal server issue")
	}
	emp := &employee.Employee{
		CompanyID:     companyID,
		Code:          in.Code,
		Email:         in.Email,
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		Gender:        in.Gender,
		ContactNumber: in.ContactNumber,
		Designation:   in.Designation,
		Grade:         in.Grade,
		DateOfBirth:   in.DateOfBirth.ISO(),
		DateOfJoining: in.DateOfJoining.ISO(),
		LocationID:    in.LocationID,
		PhotoURL:      defaultPhoto(in.Gender),
		PasswordHash:  string(hash),
	}
	if _, err := e.employees.Create(ctx, emp); err != nil {
		return Rejected("Employee not added/updated due to internal server issue")
	}
	return Inserted("Data Added")
}

func (e *Executor) RemoveEmployee(ctx context.Context, in *EmployeeRemoveInput) Outcome {
	if err := e.employees.SoftDelete(ctx, in.Existing.ID, in.DateOfLeaving.ISO()); err != nil {
		return Rejected("Employee not added/updated due to internal server issue")
	}
	return Removed("Data Removed")
}

func defaultPhoto(gender string) string {
	switch strings.ToUpper(gender) {
	case "MALE":
		return photoMale
	case "FEMALE":
		return photoFemale
	}
	return photoNeutral
}
