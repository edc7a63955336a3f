package ingest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/vantagehr/benefits/modules/benefits/domain/batch"
	"github.com/vantagehr/benefits/modules/benefits/domain/employee"
	"github.com/vantagehr/benefits/modules/benefits/domain/enrollment"
)

type fakeEmployeeRepo struct {
	mu        sync.Mutex
	nextID    int64
	employees []*employee.Employee
	createErr error
	updateErr error
}

func (f *fakeEmployeeRepo) add(e *employee.Employee) *employee.Employee {
	f.nextID++
	e.ID = f.nextID
	f.employees = append(f.employees, e)
	return e
}

func (f *fakeEmployeeRepo) GetByCode(_ context.Context, companyID int64, code string) (*employee.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.employees {
		if e.CompanyID == companyID && e.Code == code && !e.Deleted {
			return e, nil
		}
	}
	return nil, employee.ErrNotFound
}

func (f *fakeEmployeeRepo) GetByEmail(_ context.Context, companyID int64, email string) (*employee.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.employees {
		if e.CompanyID == companyID && strings.EqualFold(e.Email, email) && !e.Deleted {
			return e, nil
		}
	}
	return nil, employee.ErrNotFound
}

func (f *fakeEmployeeRepo) EmailExists(_ context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.employees {
		if strings.EqualFold(e.Email, email) && !e.Deleted {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeEmployeeRepo) Create(_ context.Context, e *employee.Employee) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return 0, f.createErr
	}
	return f.add(e).ID, nil
}

func (f *fakeEmployeeRepo) Update(_ context.Context, e *employee.Employee) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	for i, existing := range f.employees {
		if existing.ID == e.ID {
			f.employees[i] = e
			return nil
		}
	}
	return employee.ErrNotFound
}

func (f *fakeEmployeeRepo) SoftDelete(_ context.Context, id int64, dateOfLeaving string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.employees {
		if e.ID == id && !e.Deleted {
			e.Deleted = true
			e.DateOfLeaving = dateOfLeaving
			return nil
		}
	}
	return employee.ErrNotFound
}

type fakeLocationRepo struct {
	locations []*employee.Location
}

func (f *fakeLocationRepo) GetByCode(_ context.Context, companyID int64, code string) (*employee.Location, error) {
	for _, l := range f.locations {
		if l.CompanyID == companyID && l.Code == code {
			return l, nil
		}
	}
	return nil, employee.ErrLocationNotFound
}

type fakeEnrollmentRow struct {
	id      int64
	table   string
	row     enrollment.Row
	removed bool
	removal *enrollment.Removal
}

type fakeEnrollmentRepo struct {
	mu        sync.Mutex
	nextID    int64
	rows      []*fakeEnrollmentRow
	insertErr error
	removeErr error
}

func (f *fakeEnrollmentRepo) Exists(_ context.Context, table string, key enrollment.DuplicateKey) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.removed || r.table != table {
			continue
		}
		if r.row.EmployeeID == key.EmployeeID &&
			r.row.PolicyID == key.PolicyID &&
			r.row.CompanyID == key.CompanyID &&
			r.row.InsuredName == key.InsuredName &&
			r.row.Gender == key.Gender &&
			r.row.Relation == key.Relation &&
			(key.ExternalIDColumn == "" || r.row.ExternalID == key.ExternalID) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeEnrollmentRepo) FindLive(_ context.Context, table string, key enrollment.RemovalKey) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.removed || r.table != table {
			continue
		}
		if r.row.EmployeeID == key.EmployeeID &&
			r.row.PolicyID == key.PolicyID &&
			r.row.CompanyID == key.CompanyID &&
			r.row.InsuredName == key.InsuredName &&
			r.row.Relation == key.Relation &&
			(key.ExternalIDColumn == "" || r.row.ExternalID == key.ExternalID) {
			return r.id, nil
		}
	}
	return 0, enrollment.ErrNotFound
}

func (f *fakeEnrollmentRepo) Insert(_ context.Context, table string, _ string, row *enrollment.Row) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	f.nextID++
	row.ID = f.nextID
	f.rows = append(f.rows, &fakeEnrollmentRow{id: f.nextID, table: table, row: *row})
	return nil
}

func (f *fakeEnrollmentRepo) MarkRemoved(_ context.Context, table string, rowID int64, removal *enrollment.Removal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.removeErr != nil {
		return f.removeErr
	}
	for _, r := range f.rows {
		if r.id == rowID && r.table == table && !r.removed {
			r.removed = true
			r.removal = removal
			return nil
		}
	}
	return enrollment.ErrNotFound
}

type fakeMappingRepo struct {
	mu       sync.Mutex
	nextID   int64
	mappings map[string]*enrollment.Mapping
}

func (f *fakeMappingRepo) GetOrCreate(_ context.Context, policyID, companyID, employeeID, endorsementID int64) (*enrollment.Mapping, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mappings == nil {
		f.mappings = map[string]*enrollment.Mapping{}
	}
	key := fmt.Sprintf("%d/%d/%d", policyID, companyID, employeeID)
	if m, ok := f.mappings[key]; ok {
		return m, nil
	}
	f.nextID++
	m := &enrollment.Mapping{
		ID:            f.nextID,
		PolicyID:      policyID,
		CompanyID:     companyID,
		EmployeeID:    employeeID,
		EndorsementID: &endorsementID,
		Status:        1,
	}
	f.mappings[key] = m
	return m, nil
}

type fakePolicyRepo struct {
	policies map[int64]*enrollment.Policy
}

func (f *fakePolicyRepo) GetByEndorsement(_ context.Context, endorsementID int64) (*enrollment.Policy, error) {
	if p, ok := f.policies[endorsementID]; ok {
		return p, nil
	}
	return nil, enrollment.ErrPolicyNotFound
}

type fakeInsurerRepo struct {
	insurers map[int64]*enrollment.Insurer
}

func (f *fakeInsurerRepo) GetByID(_ context.Context, id int64) (*enrollment.Insurer, error) {
	if ins, ok := f.insurers[id]; ok {
		return ins, nil
	}
	return nil, enrollment.ErrInsurerNotFound
}

type fakeBatchRepo struct {
	mu      sync.Mutex
	batches map[uuid.UUID]*batch.BatchAction
}

func newFakeBatchRepo(batches ...*batch.BatchAction) *fakeBatchRepo {
	f := &fakeBatchRepo{batches: map[uuid.UUID]*batch.BatchAction{}}
	for _, ba := range batches {
		f.batches[ba.ID] = ba
	}
	return f
}

func (f *fakeBatchRepo) Create(_ context.Context, ba *batch.BatchAction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches[ba.ID] = ba
	return nil
}

func (f *fakeBatchRepo) GetByID(_ context.Context, id uuid.UUID) (*batch.BatchAction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ba, ok := f.batches[id]
	if !ok {
		return nil, batch.ErrNotFound
	}
	copied := *ba
	return &copied, nil
}

func (f *fakeBatchRepo) SetStatus(_ context.Context, id uuid.UUID, status batch.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ba, ok := f.batches[id]
	if !ok {
		return batch.ErrNotFound
	}
	ba.Status = status
	return nil
}

func (f *fakeBatchRepo) Finalize(_ context.Context, ba *batch.BatchAction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.batches[ba.ID]; !ok {
		return batch.ErrNotFound
	}
	copied := *ba
	f.batches[ba.ID] = &copied
	return nil
}
