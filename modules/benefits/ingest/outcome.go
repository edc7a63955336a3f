package ingest

import "fmt"

// RowError is a row-scoped rejection reason attributed to an employee
// code. It is a value carried into the rejected report, never a Go error
// propagated out of the pipeline.
type RowError struct {
	Code    string
	Message string
}

func (e *RowError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func rowErrorf(code, format string, args ...any) *RowError {
	return &RowError{Code: code, Message: fmt.Sprintf(format, args...)}
}

type OutcomeKind string

const (
	OutcomeInserted OutcomeKind = "inserted"
	OutcomeUpdated  OutcomeKind = "updated"
	OutcomeRemoved  OutcomeKind = "removed"
	OutcomeRejected OutcomeKind = "rejected"
)

type Outcome struct {
	Kind   OutcomeKind
	Remark string
	Err    string
}

func Inserted(remark string) Outcome {
	return Outcome{Kind: OutcomeInserted, Remark: remark}
}

func Updated(remark string) Outcome {
	return Outcome{Kind: OutcomeUpdated, Remark: remark}
}

func Removed(remark string) Outcome {
	return Outcome{Kind: OutcomeRemoved, Remark: remark}
}

func Rejected(errText string) Outcome {
	return Outcome{Kind: OutcomeRejected, Err: errText}
}

func rejected(err *RowError) Outcome {
	return Rejected(err.Error())
}

// ReportRow is one entry of an output report, holding the original cell
// values in upload order plus the appended remark/error columns.
type ReportRow struct {
	Values []string
	Remark string
	Err    string
}

// Tally accumulates per-row outcomes for one batch. It is a plain local
// value threaded through the processing loop and returned at the end;
// nothing mutates it through shared references.
//
// Add and remove successes both count toward Inserted: the batch-level
// counter vocabulary is reused across both action types.
type Tally struct {
	Total    int
	Inserted int
	Failed   int

	accepted []ReportRow
	rejected []ReportRow
}

func (t *Tally) Record(values []string, o Outcome) {
	t.Total++
	if o.Kind == OutcomeRejected {
		t.Failed++
		t.rejected = append(t.rejected, ReportRow{Values: values, Err: o.Err})
		return
	}
	t.Inserted++
	t.accepted = append(t.accepted, ReportRow{Values: values, Remark: o.Remark})
}

// RecordMalformed counts a structurally broken line. Malformed rows are
// excluded from both report bodies but still move the counters.
func (t *Tally) RecordMalformed() {
	t.Total++
	t.Failed++
}

func (t *Tally) Accepted() []ReportRow {
	return t.accepted
}

func (t *Tally) Rejected() []ReportRow {
	return t.rejected
}
