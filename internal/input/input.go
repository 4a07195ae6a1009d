// File: internal/input/input.go
package input

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/autoedu/autoedu-cli/api/schemas"
)

// MapRecord is a flat field map backed by one input row.
type MapRecord struct {
	id     string
	fields map[string]string
}

// ID returns the stable identifier chosen for the record.
func (r *MapRecord) ID() string { return r.id }

// Field returns the value for key, or "" when the row has no such column.
func (r *MapRecord) Field(key string) string {
	return r.fields[strings.ToLower(strings.TrimSpace(key))]
}

var _ schemas.Record = (*MapRecord)(nil)

// idCandidates are checked in order when picking a record identifier.
var idCandidates = []string{"pen", "student_id", "id"}

// LoadRecords reads student records from a CSV or JSON file. CSV files are
// header-mapped; JSON files hold an array of flat objects. Column names are
// normalized to lower case so portal routines can use fixed keys.
func LoadRecords(path string) ([]schemas.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return readCSV(f)
	case ".json":
		return readJSON(f)
	default:
		return nil, fmt.Errorf("unsupported input format %q (want .csv or .json)", ext)
	}
}

func readCSV(f *os.File) ([]schemas.Record, error) {
	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("csv input is empty, expected a header row")
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}

	records := make([]schemas.Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		fields := make(map[string]string, len(header))
		for j, cell := range row {
			if j < len(header) {
				fields[header[j]] = strings.TrimSpace(cell)
			}
		}
		records = append(records, newMapRecord(i, fields))
	}
	return records, nil
}

func readJSON(f *os.File) ([]schemas.Record, error) {
	var rows []map[string]string
	dec := json.NewDecoder(f)
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("failed to parse json: %w", err)
	}

	records := make([]schemas.Record, 0, len(rows))
	for i, row := range rows {
		fields := make(map[string]string, len(row))
		for k, v := range row {
			fields[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
		}
		records = append(records, newMapRecord(i, fields))
	}
	return records, nil
}

func newMapRecord(index int, fields map[string]string) *MapRecord {
	id := fmt.Sprintf("row-%d", index+1)
	for _, key := range idCandidates {
		if v := fields[key]; v != "" {
			id = v
			break
		}
	}
	return &MapRecord{id: id, fields: fields}
}
