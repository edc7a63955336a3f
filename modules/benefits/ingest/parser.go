package ingest

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Record is one data line keyed by header name. Malformed records (field
// count differing from the header, or unparsable CSV) carry no fields
// and never reach validation; they still count toward batch totals.
type Record struct {
	Line      int
	Values    []string
	Malformed bool

	fields map[string]string
}

// Get returns the trimmed-header field value, or "" when absent.
func (r *Record) Get(name string) string {
	return r.fields[name]
}

// RowSource is a lazy, finite, non-restartable sequence of records with
// the upload's header. Next returns io.EOF when exhausted.
type RowSource interface {
	Header() []string
	Next() (*Record, error)
	Close() error
}

// OpenSource opens an uploaded file as a row source, choosing the codec
// by extension (.xlsx via the spreadsheet reader, CSV otherwise).
func OpenSource(path string) (RowSource, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		rows, err := rowsFromXLSX(path)
		if err != nil {
			return nil, err
		}
		return NewSliceSource(rows)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	src, err := NewCSVSource(f, f.Close)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return src, nil
}

type csvSource struct {
	r       *csv.Reader
	header  []string
	index   map[string]int
	line    int
	closeFn func() error
}

// NewCSVSource reads the header line eagerly; closeFn may be nil.
// Header names are always trimmed so that matching is whitespace
// insensitive for both upload flows.
func NewCSVSource(r io.Reader, closeFn func() error) (RowSource, error) {
	br := stripUTF8BOM(bufio.NewReader(r))

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = false

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("missing header")
		}
		return nil, err
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	return &csvSource{
		r:       cr,
		header:  header,
		index:   headerIndex(header),
		line:    1,
		closeFn: closeFn,
	}, nil
}

func (s *csvSource) Header() []string {
	return s.header
}

func (s *csvSource) Next() (*Record, error) {
	for {
		s.line++
		rec, err := s.r.Read()
		if err != nil {
			if err == io.EOF {
				return nil, io.EOF
			}
			if _, ok := err.(*csv.ParseError); ok {
				return &Record{Line: s.line, Malformed: true}, nil
			}
			return nil, err
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		return s.record(rec), nil
	}
}

func (s *csvSource) record(values []string) *Record {
	if len(values) != len(s.header) {
		return &Record{Line: s.line, Values: values, Malformed: true}
	}
	fields := make(map[string]string, len(s.header))
	for name, i := range s.index {
		fields[name] = values[i]
	}
	return &Record{Line: s.line, Values: values, fields: fields}
}

func (s *csvSource) Close() error {
	if s.closeFn == nil {
		return nil
	}
	return s.closeFn()
}

func stripUTF8BOM(r *bufio.Reader) *bufio.Reader {
	b, err := r.Peek(3)
	if err == nil && len(b) == 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		_, _ = r.Discard(3)
	}
	return r
}

func headerIndex(header []string) map[string]int {
	m := make(map[string]int, len(header))
	for i, name := range header {
		m[name] = i
	}
	return m
}

// sliceSource serves pre-extracted spreadsheet rows through the same
// interface as the CSV source.
type sliceSource struct {
	header []string
	index  map[string]int
	rows   [][]string
	pos    int
}

func NewSliceSource(rows [][]string) (RowSource, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("missing header")
	}
	header := make([]string, len(rows[0]))
	for i, name := range rows[0] {
		header[i] = strings.TrimSpace(name)
	}
	return &sliceSource{
		header: header,
		index:  headerIndex(header),
		rows:   rows[1:],
	}, nil
}

func (s *sliceSource) Header() []string {
	return s.header
}

func (s *sliceSource) Next() (*Record, error) {
	if s.pos >= len(s.rows) {
		return nil, io.EOF
	}
	values := s.rows[s.pos]
	s.pos++
	line := s.pos + 1

	if len(values) != len(s.header) {
		return &Record{Line: line, Values: values, Malformed: true}, nil
	}
	fields := make(map[string]string, len(s.header))
	for name, i := range s.index {
		fields[name] = values[i]
	}
	return &Record{Line: line, Values: values, fields: fields}, nil
}

func (s *sliceSource) Close() error {
	return nil
}
