package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/vantagehr/benefits/modules/benefits/domain/batch"
	"github.com/vantagehr/benefits/pkg/composables"
)

const (
	insertBatchQuery = `
		INSERT INTO benefit_batch_actions (
			id, company_id, policy_id, endorsement_id, flow, action_type,
			uploaded_file, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())`

	selectBatchQuery = `
		SELECT id, company_id, policy_id, endorsement_id, flow, action_type,
		       uploaded_file, status, total_records, inserted_count, failed_count,
		       accepted_report_path, rejected_report_path, created_at, updated_at
		FROM benefit_batch_actions
		WHERE id = $1`

	updateBatchStatusQuery = `
		UPDATE benefit_batch_actions
		SET status = $2, updated_at = now()
		WHERE id = $1`

	finalizeBatchQuery = `
		UPDATE benefit_batch_actions
		SET status = $2,
		    total_records = $3,
		    inserted_count = $4,
		    failed_count = $5,
		    accepted_report_path = $6,
		    rejected_report_path = $7,
		    updated_at = now()
		WHERE id = $1`
)

type BatchRepository struct{}

func NewBatchRepository() *BatchRepository {
	return &BatchRepository{}
}

func (r *BatchRepository) Create(ctx context.Context, ba *batch.BatchAction) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, insertBatchQuery,
		ba.ID,
		ba.CompanyID,
		ba.PolicyID,
		ba.EndorsementID,
		string(ba.Flow),
		string(ba.ActionType),
		ba.UploadedFile,
		string(ba.Status),
	)
	return errors.Wrap(err, "insert batch action")
}

func (r *BatchRepository) GetByID(ctx context.Context, id uuid.UUID) (*batch.BatchAction, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	var (
		ba     batch.BatchAction
		flow   string
		action string
		status string
	)
	err = tx.QueryRow(ctx, selectBatchQuery, id).Scan(
		&ba.ID,
		&ba.CompanyID,
		&ba.PolicyID,
		&ba.EndorsementID,
		&flow,
		&action,
		&ba.UploadedFile,
		&status,
		&ba.TotalRecords,
		&ba.InsertedCount,
		&ba.FailedCount,
		&ba.AcceptedReportPath,
		&ba.RejectedReportPath,
		&ba.CreatedAt,
		&ba.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, batch.ErrNotFound
		}
		return nil, errors.Wrap(err, "select batch action")
	}
	ba.Flow = batch.Flow(flow)
	ba.ActionType = batch.ActionType(action)
	ba.Status = batch.StatusFrom(status)
	return &ba, nil
}

func (r *BatchRepository) SetStatus(ctx context.Context, id uuid.UUID, status batch.Status) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, updateBatchStatusQuery, id, string(status))
	if err != nil {
		return errors.Wrap(err, "update batch status")
	}
	if tag.RowsAffected() == 0 {
		return batch.ErrNotFound
	}
	return nil
}

func (r *BatchRepository) Finalize(ctx context.Context, ba *batch.BatchAction) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, finalizeBatchQuery,
		ba.ID,
		string(ba.Status),
		ba.TotalRecords,
		ba.InsertedCount,
		ba.FailedCount,
		ba.AcceptedReportPath,
		ba.RejectedReportPath,
	)
	if err != nil {
		return errors.Wrap(err, "finalize batch action")
	}
	if tag.RowsAffected() == 0 {
		return batch.ErrNotFound
	}
	return nil
}
