package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/vantagehr/benefits/modules/benefits/domain/enrollment"
	"github.com/vantagehr/benefits/pkg/composables"
)

const (
	selectPolicyByEndorsementQuery = `
		SELECT p.id, p.company_id, p.insurer_id, p.end_date, p.is_old
		FROM endorsements e
		JOIN policies p ON p.id = e.policy_id
		WHERE e.id = $1`

	selectInsurerQuery = `
		SELECT id, name, COALESCE(endorsement_table, ''), COALESCE(external_id_column, '')
		FROM insurers
		WHERE id = $1`
)

type PolicyRepository struct{}

func NewPolicyRepository() *PolicyRepository {
	return &PolicyRepository{}
}

func (r *PolicyRepository) GetByEndorsement(ctx context.Context, endorsementID int64) (*enrollment.Policy, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	var p enrollment.Policy
	err = tx.QueryRow(ctx, selectPolicyByEndorsementQuery, endorsementID).Scan(
		&p.ID,
		&p.CompanyID,
		&p.InsurerID,
		&p.EndDate,
		&p.IsOld,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, enrollment.ErrPolicyNotFound
		}
		return nil, errors.Wrap(err, "select policy by endorsement")
	}
	return &p, nil
}

type InsurerRepository struct{}

func NewInsurerRepository() *InsurerRepository {
	return &InsurerRepository{}
}

func (r *InsurerRepository) GetByID(ctx context.Context, id int64) (*enrollment.Insurer, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	var ins enrollment.Insurer
	err = tx.QueryRow(ctx, selectInsurerQuery, id).Scan(
		&ins.ID,
		&ins.Name,
		&ins.TableName,
		&ins.ExternalIDColumn,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, enrollment.ErrInsurerNotFound
		}
		return nil, errors.Wrap(err, "select insurer")
	}
	return &ins, nil
}
