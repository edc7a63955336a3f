package enrollment

import (
	"context"
	"time"
)

// Legacy data-location regimes for a policy's endorsement rows. Three
// real historical migrations left three places data can live; the value
// is stored on the policy and drives target-table resolution.
const (
	TableRegimeLegacy   = 0
	TableRegimeInsurer  = 1
	TableRegimeMigrated = 2
)

type Policy struct {
	ID        int64
	CompanyID int64
	InsurerID int64
	EndDate   time.Time
	IsOld     int
}

type PolicyRepository interface {
	GetByEndorsement(ctx context.Context, endorsementID int64) (*Policy, error)
}

// Insurer is the insurer-master read model: per-insurer destination
// table and the column holding the external unique health ID.
type Insurer struct {
	ID               int64
	Name             string
	TableName        string
	ExternalIDColumn string
}

type InsurerRepository interface {
	GetByID(ctx context.Context, id int64) (*Insurer, error)
}

// Route is the resolved destination for one batch: where rows go and
// which column carries the external ID. An empty ExternalIDColumn means
// the external-ID duplicate term is skipped, not that the row is invalid.
type Route struct {
	TableName        string
	ExternalIDColumn string
}

// Mapping links a policy, a company and an employee. Created lazily on
// first reference, reused afterwards, never updated by this subsystem.
type Mapping struct {
	ID            int64
	PolicyID      int64
	CompanyID     int64
	EmployeeID    int64
	EndorsementID *int64
	Status        int
}

type MappingRepository interface {
	// GetOrCreate is an atomic insert-if-absent: concurrent batches
	// touching the same (policy, company, employee) triple must converge
	// on a single row.
	GetOrCreate(ctx context.Context, policyID, companyID, employeeID, endorsementID int64) (*Mapping, error)
}
