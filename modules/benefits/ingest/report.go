package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// ReportWriter serializes the accepted and rejected reconciliation
// reports for one batch. Column order is the upload's header order with
// the remark/error columns appended; a report with no rows produces no
// file at all (nil path), not an empty file.
type ReportWriter struct {
	dir string
}

func NewReportWriter(dir string) *ReportWriter {
	return &ReportWriter{dir: dir}
}

func (w *ReportWriter) Write(batchID uuid.UUID, header []string, tally *Tally, now time.Time) (accepted, rejected *string, err error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, nil, err
	}

	if rows := tally.Accepted(); len(rows) > 0 {
		name := fmt.Sprintf("%s_inserted_%d.csv", batchID, now.Unix())
		path := filepath.Join(w.dir, name)
		if err := writeReport(path, append(append([]string{}, header...), "Remark"), rows, func(r ReportRow) []string {
			return append(append([]string{}, r.Values...), r.Remark)
		}); err != nil {
			return nil, nil, err
		}
		accepted = &path
	}

	if rows := tally.Rejected(); len(rows) > 0 {
		name := fmt.Sprintf("%s_failed_%d.csv", batchID, now.Unix())
		path := filepath.Join(w.dir, name)
		if err := writeReport(path, append(append([]string{}, header...), "Error", "Remark"), rows, func(r ReportRow) []string {
			return append(append([]string{}, r.Values...), r.Err, r.Remark)
		}); err != nil {
			return nil, nil, err
		}
		rejected = &path
	}

	return accepted, rejected, nil
}

func writeReport(path string, header []string, rows []ReportRow, project func(ReportRow) []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	cw := csv.NewWriter(f)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(project(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return f.Close()
}
