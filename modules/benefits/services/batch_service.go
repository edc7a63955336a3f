package services

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/vantagehr/benefits/modules/benefits/domain/batch"
	"github.com/vantagehr/benefits/pkg/composables"
)

// BatchJob is the queue payload handed to the worker. Everything else
// about the batch is read back from the database, so redeliveries carry
// no stale state.
type BatchJob struct {
	BatchID uuid.UUID `json:"batch_id"`
}

type jobEnqueuer interface {
	Enqueue(ctx context.Context, job any) error
}

type SubmitParams struct {
	CompanyID     int64
	PolicyID      int64
	EndorsementID *int64
	Flow          batch.Flow
	ActionType    batch.ActionType
	UploadedFile  string
}

type BatchService struct {
	repo  batch.Repository
	queue jobEnqueuer
}

func NewBatchService(repo batch.Repository, queue jobEnqueuer) *BatchService {
	return &BatchService{repo: repo, queue: queue}
}

// Submit records the batch as pending and enqueues it for the worker.
// The row is committed before the job is pushed, so a worker can never
// pick up a job whose batch it cannot load.
func (s *BatchService) Submit(ctx context.Context, params SubmitParams) (*batch.BatchAction, error) {
	if params.Flow == batch.FlowEndorsement && params.EndorsementID == nil {
		return nil, errors.New("endorsement batch requires an endorsement id")
	}

	ba := &batch.BatchAction{
		ID:            uuid.New(),
		CompanyID:     params.CompanyID,
		PolicyID:      params.PolicyID,
		EndorsementID: params.EndorsementID,
		Flow:          params.Flow,
		ActionType:    params.ActionType,
		UploadedFile:  params.UploadedFile,
		Status:        batch.StatusPending,
	}
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		return s.repo.Create(txCtx, ba)
	})
	if err != nil {
		return nil, errors.Wrap(err, "create batch")
	}

	if err := s.queue.Enqueue(ctx, BatchJob{BatchID: ba.ID}); err != nil {
		return nil, errors.Wrap(err, "enqueue batch")
	}
	return ba, nil
}

func (s *BatchService) GetByID(ctx context.Context, id uuid.UUID) (*batch.BatchAction, error) {
	return s.repo.GetByID(ctx, id)
}
