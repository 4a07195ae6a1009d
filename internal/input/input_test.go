// File: internal/input/input_test.go
package input

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadRecordsCSV(t *testing.T) {
	path := writeTemp(t, "students.csv", "PEN, DOB ,Class\n1234567890,01/06/2015,6\n,02/07/2014,7\n")

	records, err := LoadRecords(path)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "1234567890", records[0].ID())
	assert.Equal(t, "01/06/2015", records[0].Field("dob"))
	assert.Equal(t, "6", records[0].Field("Class"), "field lookup should be case insensitive")

	// Missing PEN falls back to the row position.
	assert.Equal(t, "row-2", records[1].ID())
	assert.Equal(t, "", records[1].Field("pen"))
}

func TestLoadRecordsJSON(t *testing.T) {
	path := writeTemp(t, "students.json", `[
		{"PEN": "1234567890", "DOB": "01/06/2015", "class": "6"},
		{"student_id": "S-42", "dob": "02/07/2014"}
	]`)

	records, err := LoadRecords(path)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "1234567890", records[0].ID())
	assert.Equal(t, "6", records[0].Field("class"))
	assert.Equal(t, "S-42", records[1].ID())
}

func TestLoadRecordsErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadRecords(filepath.Join(t.TempDir(), "nope.csv"))
		require.Error(t, err)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		path := writeTemp(t, "students.xlsx", "binary")
		_, err := LoadRecords(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported input format")
	})

	t.Run("empty csv", func(t *testing.T) {
		path := writeTemp(t, "empty.csv", "")
		_, err := LoadRecords(path)
		require.Error(t, err)
	})

	t.Run("malformed json", func(t *testing.T) {
		path := writeTemp(t, "bad.json", `{"not": "an array"}`)
		_, err := LoadRecords(path)
		require.Error(t, err)
	})
}
