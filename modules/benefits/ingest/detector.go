package ingest

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/vantagehr/benefits/modules/benefits/domain/enrollment"
)

// Detector answers the two row-level questions against the resolved
// target table: is this addition already covered, and which live row
// does this removal point at. Same-batch additions are visible to later
// rows because each row commits independently.
type Detector struct {
	rows enrollment.Repository
}

func NewDetector(rows enrollment.Repository) *Detector {
	return &Detector{rows: rows}
}

func (d *Detector) CheckAdd(ctx context.Context, bt *BatchTarget, member *Member, in *EndorsementAddInput) (bool, *RowError) {
	key := enrollment.DuplicateKey{
		EmployeeID:       member.Employee.ID,
		PolicyID:         bt.Policy.ID,
		CompanyID:        bt.Policy.CompanyID,
		ExternalIDColumn: bt.Route.ExternalIDColumn,
		ExternalID:       in.ExternalID,
		InsuredName:      in.InsuredName,
		Gender:           in.Gender,
		Relation:         in.Relation,
	}
	dup, err := d.rows.Exists(ctx, bt.Route.TableName, key)
	if err != nil {
		return false, rowErrorf(in.EmployeeCode, "%s", err.Error())
	}
	return dup, nil
}

func (d *Detector) FindRemovable(ctx context.Context, bt *BatchTarget, member *Member, in *EndorsementRemoveInput) (int64, *RowError) {
	key := enrollment.RemovalKey{
		EmployeeID:       member.Employee.ID,
		PolicyID:         bt.Policy.ID,
		CompanyID:        bt.Policy.CompanyID,
		ExternalIDColumn: bt.Route.ExternalIDColumn,
		ExternalID:       in.ExternalID,
		InsuredName:      in.InsuredName,
		Relation:         in.Relation,
	}
	id, err := d.rows.FindLive(ctx, bt.Route.TableName, key)
	if err != nil {
		if errors.Is(err, enrollment.ErrNotFound) {
			return 0, rowErrorf(in.EmployeeCode, "Record not found or already removed")
		}
		return 0, rowErrorf(in.EmployeeCode, "%s", err.Error())
	}
	return id, nil
}
