package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/vantagehr/benefits/modules/benefits/domain/employee"
	"github.com/vantagehr/benefits/pkg/composables"
)

const (
	employeeColumns = `
		id, company_id, employee_code, email, first_name, last_name, gender,
		contact_number, designation, grade, date_of_birth, date_of_joining,
		COALESCE(date_of_leaving, ''), COALESCE(location_id, 0),
		COALESCE(photo_url, ''), password_hash, is_delete`

	selectEmployeeByCodeQuery = `
		SELECT ` + employeeColumns + `
		FROM company_employees
		WHERE company_id = $1 AND employee_code = $2 AND is_delete = 0`

	selectEmployeeByEmailQuery = `
		SELECT ` + employeeColumns + `
		FROM company_employees
		WHERE company_id = $1 AND lower(email) = lower($2) AND is_delete = 0`

	employeeEmailExistsQuery = `
		SELECT EXISTS (
			SELECT 1 FROM company_employees
			WHERE lower(email) = lower($1) AND is_delete = 0
		)`

	insertEmployeeQuery = `
		INSERT INTO company_employees (
			company_id, employee_code, email, first_name, last_name, gender,
			contact_number, designation, grade, date_of_birth, date_of_joining,
			location_id, photo_url, password_hash, is_delete, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
			NULLIF($12, 0), $13, $14, 0, now(), now()
		)
		RETURNING id`

	updateEmployeeQuery = `
		UPDATE company_employees
		SET email = $2,
		    first_name = $3,
		    last_name = $4,
		    gender = $5,
		    contact_number = $6,
		    designation = $7,
		    grade = $8,
		    date_of_birth = $9,
		    date_of_joining = $10,
		    location_id = NULLIF($11, 0),
		    updated_at = now()
		WHERE id = $1`

	softDeleteEmployeeQuery = `
		UPDATE company_employees
		SET is_delete = 1, date_of_leaving = $2, updated_at = now()
		WHERE id = $1 AND is_delete = 0`

	selectLocationByCodeQuery = `
		SELECT id, company_id, location_code, name
		FROM company_locations
		WHERE company_id = $1 AND location_code = $2`
)

type EmployeeRepository struct{}

func NewEmployeeRepository() *EmployeeRepository {
	return &EmployeeRepository{}
}

func (r *EmployeeRepository) GetByCode(ctx context.Context, companyID int64, code string) (*employee.Employee, error) {
	return r.getOne(ctx, selectEmployeeByCodeQuery, companyID, code)
}

func (r *EmployeeRepository) GetByEmail(ctx context.Context, companyID int64, email string) (*employee.Employee, error) {
	return r.getOne(ctx, selectEmployeeByEmailQuery, companyID, email)
}

func (r *EmployeeRepository) getOne(ctx context.Context, query string, args ...any) (*employee.Employee, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	var (
		e       employee.Employee
		deleted int
	)
	err = tx.QueryRow(ctx, query, args...).Scan(
		&e.ID,
		&e.CompanyID,
		&e.Code,
		&e.Email,
		&e.FirstName,
		&e.LastName,
		&e.Gender,
		&e.ContactNumber,
		&e.Designation,
		&e.Grade,
		&e.DateOfBirth,
		&e.DateOfJoining,
		&e.DateOfLeaving,
		&e.LocationID,
		&e.PhotoURL,
		&e.PasswordHash,
		&deleted,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, employee.ErrNotFound
		}
		return nil, errors.Wrap(err, "select employee")
	}
	e.Deleted = deleted != 0
	return &e, nil
}

func (r *EmployeeRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return false, err
	}
	var exists bool
	if err := tx.QueryRow(ctx, employeeEmailExistsQuery, email).Scan(&exists); err != nil {
		return false, errors.Wrap(err, "check employee email")
	}
	return exists, nil
}

func (r *EmployeeRepository) Create(ctx context.Context, e *employee.Employee) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	var id int64
	err = tx.QueryRow(ctx, insertEmployeeQuery,
		e.CompanyID,
		e.Code,
		e.Email,
		e.FirstName,
		e.LastName,
		e.Gender,
		e.ContactNumber,
		e.Designation,
		e.Grade,
		e.DateOfBirth,
		e.DateOfJoining,
		e.LocationID,
		e.PhotoURL,
		e.PasswordHash,
	).Scan(&id)
	if err != nil {
		return 0, errors.Wrap(err, "insert employee")
	}
	e.ID = id
	return id, nil
}

func (r *EmployeeRepository) Update(ctx context.Context, e *employee.Employee) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, updateEmployeeQuery,
		e.ID,
		e.Email,
		e.FirstName,
		e.LastName,
		e.Gender,
		e.ContactNumber,
		e.Designation,
		e.Grade,
		e.DateOfBirth,
		e.DateOfJoining,
		e.LocationID,
	)
	if err != nil {
		return errors.Wrap(err, "update employee")
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrNotFound
	}
	return nil
}

func (r *EmployeeRepository) SoftDelete(ctx context.Context, id int64, dateOfLeaving string) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, softDeleteEmployeeQuery, id, dateOfLeaving)
	if err != nil {
		return errors.Wrap(err, "soft delete employee")
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrNotFound
	}
	return nil
}

type LocationRepository struct{}

func NewLocationRepository() *LocationRepository {
	return &LocationRepository{}
}

func (r *LocationRepository) GetByCode(ctx context.Context, companyID int64, code string) (*employee.Location, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	var l employee.Location
	err = tx.QueryRow(ctx, selectLocationByCodeQuery, companyID, code).Scan(
		&l.ID,
		&l.CompanyID,
		&l.Code,
		&l.Name,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, employee.ErrLocationNotFound
		}
		return nil, errors.Wrap(err, "select location")
	}
	return &l, nil
}
