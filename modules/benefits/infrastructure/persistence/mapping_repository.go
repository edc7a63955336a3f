package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/vantagehr/benefits/modules/benefits/domain/enrollment"
	"github.com/vantagehr/benefits/pkg/composables"
)

const (
	// ON CONFLICT DO NOTHING plus a follow-up SELECT keeps GetOrCreate
	// atomic under concurrent batches without advisory locks.
	insertMappingQuery = `
		INSERT INTO policy_employee_mappings (
			policy_id, company_id, employee_id, endorsement_id, status, created_at
		) VALUES ($1, $2, $3, $4, 1, now())
		ON CONFLICT (policy_id, company_id, employee_id) DO NOTHING`

	selectMappingQuery = `
		SELECT id, policy_id, company_id, employee_id, endorsement_id, status
		FROM policy_employee_mappings
		WHERE policy_id = $1 AND company_id = $2 AND employee_id = $3`
)

type MappingRepository struct{}

func NewMappingRepository() *MappingRepository {
	return &MappingRepository{}
}

func (r *MappingRepository) GetOrCreate(ctx context.Context, policyID, companyID, employeeID, endorsementID int64) (*enrollment.Mapping, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, insertMappingQuery, policyID, companyID, employeeID, endorsementID); err != nil {
		return nil, errors.Wrap(err, "insert mapping")
	}

	var m enrollment.Mapping
	err = tx.QueryRow(ctx, selectMappingQuery, policyID, companyID, employeeID).Scan(
		&m.ID,
		&m.PolicyID,
		&m.CompanyID,
		&m.EmployeeID,
		&m.EndorsementID,
		&m.Status,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, enrollment.ErrMappingNotFound
		}
		return nil, errors.Wrap(err, "select mapping")
	}
	return &m, nil
}
