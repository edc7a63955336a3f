package employee

import (
	"context"

	"github.com/go-faster/errors"
)

var (
	ErrNotFound         = errors.New("employee not found")
	ErrLocationNotFound = errors.New("location not found")
)

// Employee is a row in company_employees. Date columns are strings for
// the same permissive-storage reason as enrollment rows.
type Employee struct {
	ID        int64
	CompanyID int64

	Code      string
	Email     string
	FirstName string
	LastName  string
	Gender    string

	ContactNumber string
	Designation   string
	Grade         string

	DateOfBirth   string
	DateOfJoining string
	DateOfLeaving string

	LocationID   int64
	PhotoURL     string
	PasswordHash string

	Deleted bool
}

type Repository interface {
	// GetByCode matches live employees only (is_delete = 0).
	GetByCode(ctx context.Context, companyID int64, code string) (*Employee, error)
	// GetByEmail matches live employees of the company, case-insensitively.
	GetByEmail(ctx context.Context, companyID int64, email string) (*Employee, error)
	// EmailExists checks email ownership across all companies.
	EmailExists(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, e *Employee) (int64, error)
	Update(ctx context.Context, e *Employee) error
	SoftDelete(ctx context.Context, id int64, dateOfLeaving string) error
}

type Location struct {
	ID        int64
	CompanyID int64
	Code      string
	Name      string
}

type LocationRepository interface {
	GetByCode(ctx context.Context, companyID int64, code string) (*Location, error)
}
