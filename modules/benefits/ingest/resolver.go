package ingest

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/vantagehr/benefits/modules/benefits/domain/employee"
	"github.com/vantagehr/benefits/modules/benefits/domain/enrollment"
)

// legacyEnrollmentTable holds pre-migration rows for policies that were
// never moved to per-insurer tables (regime 0).
const legacyEnrollmentTable = "policy_endorsement_data"

// migratedEnrollmentTable is the consolidated destination for policies
// migrated off per-insurer tables (regime 2).
const migratedEnrollmentTable = "endorsement_data"

// BatchTarget is everything resolved once per batch before the row loop:
// the policy under endorsement and the destination route.
type BatchTarget struct {
	Policy *enrollment.Policy
	Route  enrollment.Route
}

// Resolver turns an endorsement into a batch target, and upload employee
// codes into member identities. Target resolution failures are fatal to
// the whole batch; member resolution failures reject single rows.
type Resolver struct {
	employees employee.Repository
	mappings  enrollment.MappingRepository
	policies  enrollment.PolicyRepository
	insurers  enrollment.InsurerRepository
}

func NewResolver(
	employees employee.Repository,
	mappings enrollment.MappingRepository,
	policies enrollment.PolicyRepository,
	insurers enrollment.InsurerRepository,
) *Resolver {
	return &Resolver{
		employees: employees,
		mappings:  mappings,
		policies:  policies,
		insurers:  insurers,
	}
}

func (r *Resolver) ResolveTarget(ctx context.Context, endorsementID int64) (*BatchTarget, error) {
	policy, err := r.policies.GetByEndorsement(ctx, endorsementID)
	if err != nil {
		return nil, errors.Wrap(err, "resolve policy")
	}
	route, err := r.routeFor(ctx, policy)
	if err != nil {
		return nil, err
	}
	return &BatchTarget{Policy: policy, Route: route}, nil
}

func (r *Resolver) routeFor(ctx context.Context, policy *enrollment.Policy) (enrollment.Route, error) {
	switch policy.IsOld {
	case enrollment.TableRegimeLegacy:
		return enrollment.Route{TableName: legacyEnrollmentTable}, nil

	case enrollment.TableRegimeInsurer:
		insurer, err := r.insurers.GetByID(ctx, policy.InsurerID)
		if err != nil {
			if errors.Is(err, enrollment.ErrInsurerNotFound) {
				// Unknown insurer drops the external-ID duplicate term
				// but the batch still runs against the migrated table.
				return enrollment.Route{TableName: migratedEnrollmentTable}, nil
			}
			return enrollment.Route{}, errors.Wrap(err, "resolve insurer")
		}
		if insurer.TableName == "" {
			return enrollment.Route{}, errors.Errorf("insurer %d has no endorsement table", insurer.ID)
		}
		return enrollment.Route{
			TableName:        insurer.TableName,
			ExternalIDColumn: insurer.ExternalIDColumn,
		}, nil

	case enrollment.TableRegimeMigrated:
		return enrollment.Route{TableName: migratedEnrollmentTable}, nil

	default:
		return enrollment.Route{}, errors.Errorf("unknown table regime %d", policy.IsOld)
	}
}

// Member is a resolved upload row identity: the employee the row belongs
// to and, when requested, the policy-employee mapping it writes under.
type Member struct {
	Employee *employee.Employee
	Mapping  *enrollment.Mapping
}

func (r *Resolver) ResolveMember(
	ctx context.Context,
	bt *BatchTarget,
	companyID int64,
	code string,
	createMapping bool,
	endorsementID int64,
) (*Member, *RowError) {
	emp, err := r.employees.GetByCode(ctx, companyID, code)
	if err != nil {
		if errors.Is(err, employee.ErrNotFound) {
			return nil, rowErrorf(code, "Employee Not Found")
		}
		return nil, rowErrorf(code, "%s", err.Error())
	}

	m := &Member{Employee: emp}
	if createMapping {
		mapping, err := r.mappings.GetOrCreate(ctx, bt.Policy.ID, companyID, emp.ID, endorsementID)
		if err != nil {
			return nil, rowErrorf(code, "%s", err.Error())
		}
		m.Mapping = mapping
	}
	return m, nil
}
