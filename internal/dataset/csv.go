package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// readCSV reads the portal's CSV export. Field counts are not enforced
// because real exports occasionally carry ragged rows; buildStore treats
// missing trailing cells as empty.
func readCSV(path string) (*rawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	all, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(all) < 2 {
		return nil, fmt.Errorf("want a header row and at least one data row, got %d rows", len(all))
	}

	header := all[0]
	if len(header) > 0 {
		// Portal CSV downloads start with a UTF-8 BOM.
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}
	return &rawTable{header: header, rows: all[1:]}, nil
}
