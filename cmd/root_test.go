// File: cmd/root_test.go
package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autoedu/autoedu-cli/internal/observability"
)

func TestRootCommandVersionFlag(t *testing.T) {
	observability.ResetForTest()

	root := NewRootCommand()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs([]string{"--version"})

	require.NoError(t, root.Execute())
	assert.Contains(t, buf.String(), Version)
}

func TestRunCommandRequiresPortalURL(t *testing.T) {
	observability.ResetForTest()

	root := NewRootCommand()
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{"run", "--input", "students.csv"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "portal.url")
}

func TestRunCommandRequiresInputFile(t *testing.T) {
	observability.ResetForTest()

	root := NewRootCommand()
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{"run", "--module", "student", "--task", "import"})
	t.Setenv("AUTOEDU_PORTAL_URL", "https://sdms.udiseplus.gov.in")

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input.file")
}
