package ingest

import (
	"context"
	"io"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vantagehr/benefits/modules/benefits/domain/batch"
	"github.com/vantagehr/benefits/pkg/eventbus"
)

type OrchestratorDeps struct {
	Batches          batch.Repository
	EmployeeRules    *EmployeeRules
	EndorsementRules *EndorsementRules
	Resolver         *Resolver
	Detector         *Detector
	Executor         *Executor
	Reports          *ReportWriter
	Bus              eventbus.EventBus
	Log              *logrus.Logger
}

// Orchestrator drives one batch end to end: claim it, stream the upload
// row by row, write the reconciliation reports and persist the terminal
// state. Rows are isolated: any row-level failure lands in the rejected
// report and the loop moves on; only batch-level failures (unreadable
// file, unresolvable endorsement, cancellation) fail the whole batch.
type Orchestrator struct {
	deps OrchestratorDeps
}

func NewOrchestrator(deps OrchestratorDeps) *Orchestrator {
	return &Orchestrator{deps: deps}
}

func (o *Orchestrator) Run(ctx context.Context, batchID uuid.UUID) error {
	ba, err := o.deps.Batches.GetByID(ctx, batchID)
	if err != nil {
		return errors.Wrap(err, "load batch")
	}
	log := o.deps.Log.WithFields(logrus.Fields{
		"batch_id": ba.ID,
		"flow":     ba.Flow,
		"action":   ba.ActionType,
	})

	// Redelivered jobs for already finished batches are dropped, which
	// makes queue retries safe.
	if ba.Status.Terminal() {
		log.Warn("batch already finished, skipping")
		return nil
	}
	if err := o.deps.Batches.SetStatus(ctx, ba.ID, batch.StatusProcessing); err != nil {
		return errors.Wrap(err, "mark processing")
	}
	log.Info("batch processing started")

	header, tally, runErr := o.run(ctx, ba)
	if runErr != nil {
		log.WithError(runErr).Error("batch failed")
		return o.fail(ctx, ba, runErr)
	}
	return o.complete(ctx, ba, header, tally, log)
}

func (o *Orchestrator) run(ctx context.Context, ba *batch.BatchAction) ([]string, *Tally, error) {
	if ba.Flow == batch.FlowEndorsement && ba.ActionType != batch.ActionAdd && ba.ActionType != batch.ActionRemove {
		// Historically tolerated: the batch completes with zero rows
		// instead of failing, so stray records never wedge the queue.
		// Checked before the file is touched so the branch holds even
		// for unreadable uploads.
		o.deps.Log.WithFields(logrus.Fields{
			"batch_id": ba.ID,
			"action":   ba.ActionType,
		}).Warn("unknown endorsement action, completing with no rows")
		return nil, &Tally{}, nil
	}

	src, err := OpenSource(ba.UploadedFile)
	if err != nil {
		return nil, nil, errors.Wrap(err, "open upload")
	}
	defer func() { _ = src.Close() }()

	switch ba.Flow {
	case batch.FlowEndorsement:
		tally, err := o.runEndorsement(ctx, ba, src)
		return src.Header(), tally, err
	case batch.FlowEmployee:
		tally, err := o.runEmployee(ctx, ba, src)
		return src.Header(), tally, err
	default:
		return nil, nil, errors.Errorf("unknown flow %q", ba.Flow)
	}
}

func (o *Orchestrator) runEndorsement(ctx context.Context, ba *batch.BatchAction, src RowSource) (*Tally, error) {
	tally := &Tally{}

	if ba.EndorsementID == nil {
		return nil, errors.New("endorsement batch without endorsement id")
	}
	endorsementID := *ba.EndorsementID

	bt, err := o.deps.Resolver.ResolveTarget(ctx, endorsementID)
	if err != nil {
		return nil, err
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "batch interrupted")
		}
		rec, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "read upload")
		}
		if rec.Malformed {
			tally.RecordMalformed()
			continue
		}

		var out Outcome
		if ba.ActionType == batch.ActionAdd {
			out = o.endorsementAddRow(ctx, ba, bt, endorsementID, rec)
		} else {
			out = o.endorsementRemoveRow(ctx, ba, bt, endorsementID, rec)
		}
		tally.Record(rec.Values, out)
		Metrics().observeRow(string(ba.Flow), string(ba.ActionType), out)
	}
	return tally, nil
}

func (o *Orchestrator) endorsementAddRow(ctx context.Context, ba *batch.BatchAction, bt *BatchTarget, endorsementID int64, rec *Record) Outcome {
	in, verr := o.deps.EndorsementRules.ValidateAdd(rec, bt.Policy.EndDate)
	if verr != nil {
		return rejected(verr)
	}
	member, verr := o.deps.Resolver.ResolveMember(ctx, bt, ba.CompanyID, in.EmployeeCode, true, endorsementID)
	if verr != nil {
		return rejected(verr)
	}
	dup, verr := o.deps.Detector.CheckAdd(ctx, bt, member, in)
	if verr != nil {
		return rejected(verr)
	}
	if dup {
		return rejected(rowErrorf(in.EmployeeCode, "Record already exists"))
	}
	return o.deps.Executor.AddEnrollment(ctx, bt, member, in)
}

func (o *Orchestrator) endorsementRemoveRow(ctx context.Context, ba *batch.BatchAction, bt *BatchTarget, endorsementID int64, rec *Record) Outcome {
	in, verr := o.deps.EndorsementRules.ValidateRemove(rec)
	if verr != nil {
		return rejected(verr)
	}
	member, verr := o.deps.Resolver.ResolveMember(ctx, bt, ba.CompanyID, in.EmployeeCode, false, endorsementID)
	if verr != nil {
		return rejected(verr)
	}
	rowID, verr := o.deps.Detector.FindRemovable(ctx, bt, member, in)
	if verr != nil {
		return rejected(verr)
	}
	return o.deps.Executor.RemoveEnrollment(ctx, bt, rowID, endorsementID, in)
}

func (o *Orchestrator) runEmployee(ctx context.Context, ba *batch.BatchAction, src RowSource) (*Tally, error) {
	if ba.ActionType != batch.ActionAdd && ba.ActionType != batch.ActionRemove {
		return nil, errors.Errorf("unknown employee action %q", ba.ActionType)
	}

	tally := &Tally{}
	for {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "batch interrupted")
		}
		rec, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "read upload")
		}
		if rec.Malformed {
			tally.RecordMalformed()
			continue
		}

		var out Outcome
		if ba.ActionType == batch.ActionAdd {
			in, verr := o.deps.EmployeeRules.ValidateAdd(ctx, ba.CompanyID, rec)
			if verr != nil {
				out = rejected(verr)
			} else {
				out = o.deps.Executor.UpsertEmployee(ctx, ba.CompanyID, in)
			}
		} else {
			in, verr := o.deps.EmployeeRules.ValidateRemove(ctx, ba.CompanyID, rec)
			if verr != nil {
				out = rejected(verr)
			} else {
				out = o.deps.Executor.RemoveEmployee(ctx, in)
			}
		}
		tally.Record(rec.Values, out)
		Metrics().observeRow(string(ba.Flow), string(ba.ActionType), out)
	}
	return tally, nil
}

func (o *Orchestrator) complete(ctx context.Context, ba *batch.BatchAction, header []string, tally *Tally, log *logrus.Entry) error {
	accepted, rejectedPath, err := o.deps.Reports.Write(ba.ID, header, tally, time.Now())
	if err != nil {
		return o.fail(ctx, ba, errors.Wrap(err, "write reports"))
	}

	ba.Status = batch.StatusCompleted
	ba.TotalRecords = tally.Total
	ba.InsertedCount = tally.Inserted
	ba.FailedCount = tally.Failed
	ba.AcceptedReportPath = accepted
	ba.RejectedReportPath = rejectedPath
	if err := o.deps.Batches.Finalize(ctx, ba); err != nil {
		return errors.Wrap(err, "finalize batch")
	}

	Metrics().observeBatch(string(ba.Flow), string(batch.StatusCompleted))
	o.deps.Bus.Publish(batch.NewCompletedEvent(ba))
	log.WithFields(logrus.Fields{
		"total":    tally.Total,
		"inserted": tally.Inserted,
		"failed":   tally.Failed,
	}).Info("batch completed")
	return nil
}

func (o *Orchestrator) fail(ctx context.Context, ba *batch.BatchAction, cause error) error {
	ba.Status = batch.StatusFailed
	if err := o.deps.Batches.Finalize(ctx, ba); err != nil {
		o.deps.Log.WithError(err).WithField("batch_id", ba.ID).Error("could not mark batch failed")
	}
	Metrics().observeBatch(string(ba.Flow), string(batch.StatusFailed))
	o.deps.Bus.Publish(batch.NewFailedEvent(ba, cause.Error()))
	return cause
}
