package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/vantagehr/benefits/modules/benefits/domain/enrollment"
	"github.com/vantagehr/benefits/pkg/composables"
)

// EnrollmentRepository writes to per-insurer target tables resolved at
// runtime. Table and column names come from trusted rows of the insurer
// master, never from upload content, and are still quoted through
// pgx.Identifier before being spliced into SQL.
type EnrollmentRepository struct{}

func NewEnrollmentRepository() *EnrollmentRepository {
	return &EnrollmentRepository{}
}

func quoteIdent(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func (r *EnrollmentRepository) Exists(ctx context.Context, table string, key enrollment.DuplicateKey) (bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return false, err
	}

	conds := []string{
		"employee_id = $1",
		"policy_id = $2",
		"company_id = $3",
		"insured_name = $4",
		"gender = $5",
		"relation = $6",
		"deletion_endorsement_id IS NULL",
	}
	args := []any{key.EmployeeID, key.PolicyID, key.CompanyID, key.InsuredName, key.Gender, key.Relation}
	if key.ExternalIDColumn != "" {
		args = append(args, key.ExternalID)
		conds = append(conds, fmt.Sprintf("%s = $%d", quoteIdent(key.ExternalIDColumn), len(args)))
	}

	query := fmt.Sprintf(
		"SELECT EXISTS (SELECT 1 FROM %s WHERE %s)",
		quoteIdent(table), strings.Join(conds, " AND "),
	)
	var exists bool
	if err := tx.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, errors.Wrap(err, "check enrollment duplicate")
	}
	return exists, nil
}

func (r *EnrollmentRepository) FindLive(ctx context.Context, table string, key enrollment.RemovalKey) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}

	conds := []string{
		"employee_id = $1",
		"policy_id = $2",
		"company_id = $3",
		"insured_name = $4",
		"relation = $5",
		"deletion_endorsement_id IS NULL",
	}
	args := []any{key.EmployeeID, key.PolicyID, key.CompanyID, key.InsuredName, key.Relation}
	if key.ExternalIDColumn != "" {
		args = append(args, key.ExternalID)
		conds = append(conds, fmt.Sprintf("%s = $%d", quoteIdent(key.ExternalIDColumn), len(args)))
	}

	query := fmt.Sprintf(
		"SELECT id FROM %s WHERE %s ORDER BY id LIMIT 1",
		quoteIdent(table), strings.Join(conds, " AND "),
	)
	var id int64
	if err := tx.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, enrollment.ErrNotFound
		}
		return 0, errors.Wrap(err, "find live enrollment")
	}
	return id, nil
}

func (r *EnrollmentRepository) Insert(ctx context.Context, table string, externalIDColumn string, row *enrollment.Row) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	cols := []string{
		"mapping_id", "employee_id", "policy_id", "company_id",
		"insured_name", "relation", "gender",
		"date_of_birth", "date_of_joining",
		"sum_insured_base", "premium_base",
		"sum_insured_topup", "premium_topup",
		"sum_insured_parent", "premium_parent",
		"sum_insured_parent_in_law", "premium_parent_in_law",
	}
	args := []any{
		row.MappingID, row.EmployeeID, row.PolicyID, row.CompanyID,
		row.InsuredName, row.Relation, row.Gender,
		row.DateOfBirth, row.DateOfJoining,
		row.SumInsuredBase, row.PremiumBase,
		row.SumInsuredTopup, row.PremiumTopup,
		row.SumInsuredParent, row.PremiumParent,
		row.SumInsuredParentInLaw, row.PremiumParentInLaw,
	}
	if externalIDColumn != "" {
		cols = append(cols, quoteIdent(externalIDColumn))
		args = append(args, row.ExternalID)
	}

	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf(
		"INSERT INTO %s (%s, created_at) VALUES (%s, now()) RETURNING id",
		quoteIdent(table), strings.Join(cols, ", "), strings.Join(placeholders, ", "),
	)
	if err := tx.QueryRow(ctx, query, args...).Scan(&row.ID); err != nil {
		return errors.Wrap(err, "insert enrollment")
	}
	return nil
}

func (r *EnrollmentRepository) MarkRemoved(ctx context.Context, table string, rowID int64, removal *enrollment.Removal) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET deletion_endorsement_id = $2,
		    date_of_leaving = $3,
		    refund_premium_base = $4,
		    refund_premium_topup = $5,
		    refund_premium_parent = $6,
		    refund_premium_parent_in_law = $7,
		    refund_gst_base = $8,
		    refund_gst_topup = $9,
		    refund_gst_parent = $10,
		    refund_gst_parent_in_law = $11
		WHERE id = $1 AND deletion_endorsement_id IS NULL`,
		quoteIdent(table),
	)
	tag, err := tx.Exec(ctx, query,
		rowID,
		removal.EndorsementID,
		removal.DateOfLeaving,
		removal.RefundPremiumBase,
		removal.RefundPremiumTopup,
		removal.RefundPremiumParent,
		removal.RefundPremiumParentInLaw,
		removal.RefundGSTBase,
		removal.RefundGSTTopup,
		removal.RefundGSTParent,
		removal.RefundGSTParentInLaw,
	)
	if err != nil {
		return errors.Wrap(err, "mark enrollment removed")
	}
	if tag.RowsAffected() == 0 {
		return enrollment.ErrNotFound
	}
	return nil
}
