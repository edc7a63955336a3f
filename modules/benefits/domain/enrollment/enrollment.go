package enrollment

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound        = errors.New("enrollment row not found")
	ErrMappingNotFound = errors.New("policy employee mapping not found")
	ErrInsurerNotFound = errors.New("insurer not found")
	ErrPolicyNotFound  = errors.New("policy not found")
)

// Row is one covered life in an insurer target table. Date columns are
// strings: validated uploads store ISO dates, but unparsable input is
// stored as-is (permissive fallback, see ingest.DateValue).
type Row struct {
	ID         int64
	MappingID  int64
	EmployeeID int64
	PolicyID   int64
	CompanyID  int64

	InsuredName   string
	Relation      string
	Gender        string
	DateOfBirth   string
	DateOfJoining string

	// ExternalID is the insurer-specific unique health identifier. The
	// column holding it varies per insurer (Route.ExternalIDColumn).
	ExternalID string

	SumInsuredBase        decimal.Decimal
	PremiumBase           decimal.Decimal
	SumInsuredTopup       decimal.Decimal
	PremiumTopup          decimal.Decimal
	SumInsuredParent      decimal.Decimal
	PremiumParent         decimal.Decimal
	SumInsuredParentInLaw decimal.Decimal
	PremiumParentInLaw    decimal.Decimal
}

// Removal carries the soft-delete fields written onto an existing row.
// The row is never physically deleted; DeletionEndorsementID becoming
// non-null is what takes it out of the live set.
type Removal struct {
	EndorsementID int64
	DateOfLeaving string

	RefundPremiumBase        decimal.Decimal
	RefundPremiumTopup       decimal.Decimal
	RefundPremiumParent      decimal.Decimal
	RefundPremiumParentInLaw decimal.Decimal
	RefundGSTBase            decimal.Decimal
	RefundGSTTopup           decimal.Decimal
	RefundGSTParent          decimal.Decimal
	RefundGSTParentInLaw     decimal.Decimal
}

// DuplicateKey identifies a logical covered life for the add path.
// ExternalIDColumn may be empty (unknown insurer), which drops the
// external-ID term from the match.
type DuplicateKey struct {
	EmployeeID int64
	PolicyID   int64
	CompanyID  int64

	ExternalIDColumn string
	ExternalID       string

	InsuredName string
	Gender      string
	Relation    string
}

// RemovalKey mirrors DuplicateKey minus gender so that an add followed
// by a remove resolves the same logical covered life.
type RemovalKey struct {
	EmployeeID int64
	PolicyID   int64
	CompanyID  int64

	ExternalIDColumn string
	ExternalID       string

	InsuredName string
	Relation    string
}

// Repository writes to dynamically resolved per-insurer target tables.
// All reads filter to live rows (deletion marker null).
type Repository interface {
	Exists(ctx context.Context, table string, key DuplicateKey) (bool, error)
	FindLive(ctx context.Context, table string, key RemovalKey) (int64, error)
	Insert(ctx context.Context, table string, externalIDColumn string, row *Row) error
	MarkRemoved(ctx context.Context, table string, rowID int64, removal *Removal) error
}
