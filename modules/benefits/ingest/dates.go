package ingest

import (
	"strings"
	"time"
)

// DateValue is the result of parsing an upload date cell. Uploads use
// dd/mm/yyyy or dd-mm-yyyy; anything unparsable passes through as the
// raw string rather than failing the row, and callers decide whether to
// store the raw text (the historical behavior) or reject it.
type DateValue struct {
	t      time.Time
	raw    string
	parsed bool
}

func ParseDate(s string) DateValue {
	v := strings.TrimSpace(s)
	if v == "" {
		return DateValue{raw: v}
	}

	var layout string
	switch {
	case strings.Contains(v, "/"):
		layout = "02/01/2006"
	case strings.Contains(v, "-"):
		// dd-mm-yyyy unless the first segment is year-length (ISO).
		if len(strings.SplitN(v, "-", 2)[0]) <= 2 {
			layout = "02-01-2006"
		} else {
			layout = "2006-01-02"
		}
	default:
		return DateValue{raw: v}
	}

	t, err := time.Parse(layout, v)
	if err != nil {
		return DateValue{raw: v}
	}
	return DateValue{t: t, raw: v, parsed: true}
}

func (d DateValue) Parsed() bool {
	return d.parsed
}

func (d DateValue) Time() (time.Time, bool) {
	return d.t, d.parsed
}

func (d DateValue) Raw() string {
	return d.raw
}

// ISO returns the yyyy-mm-dd form when parsed, otherwise the raw input
// unchanged (permissive passthrough).
func (d DateValue) ISO() string {
	if !d.parsed {
		return d.raw
	}
	return d.t.Format("2006-01-02")
}

func (d DateValue) Empty() bool {
	return d.raw == ""
}
