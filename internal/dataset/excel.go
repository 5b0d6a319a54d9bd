package dataset

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// readXLSX reads the portal's Excel export. The data lives on the
// workbook's first sheet; excelize trims trailing empty cells per row, so
// the resulting table is ragged by construction.
func readXLSX(path string) (*rawTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("sheet %q: want a header row and at least one data row, got %d rows", sheets[0], len(rows))
	}

	return &rawTable{header: rows[0], rows: rows[1:]}, nil
}
