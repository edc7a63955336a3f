package ingest

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// rowsFromXLSX extracts the first sheet of a workbook as string rows.
// excelize drops trailing blank cells, so data rows are padded back to
// the header width; rows wider than the header stay ragged and surface
// as malformed records downstream, same as ragged CSV lines.
func rowsFromXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return rows, nil
	}

	width := len(rows[0])
	for i := 1; i < len(rows); i++ {
		for len(rows[i]) < width {
			rows[i] = append(rows[i], "")
		}
	}
	return rows, nil
}
