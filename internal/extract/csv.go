package extract

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// CSVTables returns a TableSource backed by a directory of CSV files, one
// per table: a request for table Param resolves to dir/Param.csv. The first
// row is the header. Files exported from spreadsheets are frequently
// Windows-1252 rather than UTF-8, so invalid UTF-8 input is re-decoded as
// cp1252 instead of rejected.
//
// A missing file is not an error: the table comes back empty and the
// generated document's guard handles the absence.
func CSVTables(dir string) TableSource {
	return func(_ string, names []string) (map[string][]Row, error) {
		tables := make(map[string][]Row, len(names))
		for _, name := range names {
			rows, err := readCSVTable(filepath.Join(dir, name+".csv"))
			if err != nil {
				if os.IsNotExist(err) {
					tables[name] = nil
					continue
				}
				return nil, fmt.Errorf("table %s: %w", name, err)
			}
			tables[name] = rows
		}
		return tables, nil
	}
}

func readCSVTable(path string) ([]Row, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(data) {
		decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("decoding %s as cp1252: %w", path, err)
		}
		data = decoded
	}

	r := csv.NewReader(strings.NewReader(string(data)))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	rows := make([]Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(Row, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = cellValue(rec[i])
			} else {
				row[col] = nil
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// cellValue narrows a CSV cell to the tightest of int64, float64, or string.
// Empty cells become nil so they embed as None.
func cellValue(s string) any {
	t := strings.TrimSpace(s)
	if t == "" {
		return nil
	}
	if n, err := strconv.ParseInt(t, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(t, 64); err == nil {
		return f
	}
	return s
}
