package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the CLI with args and captures stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeQueries(t *testing.T, queries map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, text := range queries {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name+".m"), []byte(text), 0o644))
	}
	return dir
}

// TestConvert_SingleFile tests converting one query from a file to stdout.
func TestConvert_SingleFile(t *testing.T) {
	dir := writeQueries(t, map[string]string{
		"Sales": `let Source = Table.FromRecords({[A=1]}) in Source`,
	})

	out, _, err := execute(t, "convert", "--file", filepath.Join(dir, "Sales.m"))
	require.NoError(t, err)

	assert.Contains(t, out, "import pandas as pd")
	assert.Contains(t, out, "# === Sales ===")
	assert.Contains(t, out, "result = Sales")
}

// TestConvert_DependencyOrder tests that a rooted conversion pulls in and
// orders referenced queries.
func TestConvert_DependencyOrder(t *testing.T) {
	dir := writeQueries(t, map[string]string{
		"Base": `let S = Table.FromRecords({[A=1]}) in S`,
		"Top":  `let S = Base in S`,
	})

	out, _, err := execute(t, "convert", "--dir", dir, "--query", "Top")
	require.NoError(t, err)

	base := bytes.Index([]byte(out), []byte("# === Base ==="))
	top := bytes.Index([]byte(out), []byte("# === Top ==="))
	require.GreaterOrEqual(t, base, 0)
	require.GreaterOrEqual(t, top, 0)
	assert.Less(t, base, top, "referenced query comes first")
}

// TestConvert_MultipleQueriesNeedRoot tests the command error when the root
// is ambiguous.
func TestConvert_MultipleQueriesNeedRoot(t *testing.T) {
	dir := writeQueries(t, map[string]string{
		"A": `let S = Table.FromRecords({[X=1]}) in S`,
		"B": `let S = Table.FromRecords({[X=2]}) in S`,
	})

	_, _, err := execute(t, "convert", "--dir", dir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

// TestConvert_UnknownRoot tests the command error for a mistyped --query.
func TestConvert_UnknownRoot(t *testing.T) {
	dir := writeQueries(t, map[string]string{
		"A": `let S = Table.FromRecords({[X=1]}) in S`,
	})

	_, _, err := execute(t, "convert", "--dir", dir, "--query", "Nope")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

// TestConvert_All tests whole-set conversion without a result binding.
func TestConvert_All(t *testing.T) {
	dir := writeQueries(t, map[string]string{
		"A": `let S = Table.FromRecords({[X=1]}) in S`,
		"B": `let S = A in S`,
	})

	out, _, err := execute(t, "convert", "--dir", dir, "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "# === A ===")
	assert.Contains(t, out, "# === B ===")
	assert.NotContains(t, out, "\nresult = ")
}

// TestConvert_ParseErrorFails tests exit code 1 for malformed input.
func TestConvert_ParseErrorFails(t *testing.T) {
	dir := writeQueries(t, map[string]string{
		"Bad": `let S = Table.FromRecords({[A=1]})`,
	})

	out, _, err := execute(t, "convert", "--dir", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, ErrCodeParse)
}

// TestConvert_CycleFails tests exit code 1 for cyclic references.
func TestConvert_CycleFails(t *testing.T) {
	dir := writeQueries(t, map[string]string{
		"A": `let S = B in S`,
		"B": `let S = A in S`,
	})

	out, _, err := execute(t, "convert", "--dir", dir, "--query", "A")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, ErrCodeCycle)
}

// TestConvert_UnsupportedWarnsButSucceeds tests the degrade-don't-fail rule
// end to end: exit 0, warning on stderr, placeholder in the document.
func TestConvert_UnsupportedWarnsButSucceeds(t *testing.T) {
	dir := writeQueries(t, map[string]string{
		"Q": `let Source = Table.FromRecords({[A=1]}), Odd = Table.Buffer(Source) in Odd`,
	})

	out, errOut, err := execute(t, "convert", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, errOut, `unsupported step "Odd"`)
	assert.Contains(t, out, "# Unsupported: Odd = Table.Buffer(Source)")
}

// TestConvert_OutputFile tests writing the document to a file.
func TestConvert_OutputFile(t *testing.T) {
	dir := writeQueries(t, map[string]string{
		"Q": `let S = Table.FromRecords({[A=1]}) in S`,
	})
	outPath := filepath.Join(t.TempDir(), "out.py")

	out, _, err := execute(t, "convert", "--dir", dir, "--output", outPath)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Converted 1 query(ies)")

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "import pandas as pd")
}

// TestConvert_JSONEnvelope tests the JSON response format.
func TestConvert_JSONEnvelope(t *testing.T) {
	dir := writeQueries(t, map[string]string{
		"Q": `let S = Table.FromRecords({[A=1]}) in S`,
	})

	out, _, err := execute(t, "--format", "json", "convert", "--dir", dir)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Q", data["root"])
	assert.Contains(t, data["text"], "import pandas as pd")
}

// TestConvert_EmbeddedTables tests embedding CSV rows into the table guard.
func TestConvert_EmbeddedTables(t *testing.T) {
	dir := writeQueries(t, map[string]string{
		"Lookup": `let Source = Excel.CurrentWorkbook(){[Name="Param"]}[Content] in Source`,
	})
	tableDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tableDir, "Param.csv"),
		[]byte("K,N\nv,2\n"), 0o644))

	out, _, err := execute(t, "convert", "--dir", dir,
		"--tables", tableDir, "--workbook", "sales.xlsx")
	require.NoError(t, err)

	assert.Contains(t, out, "'Param': [{'K': 'v', 'N': 2}]")
	assert.Contains(t, out, "pd.read_excel('sales.xlsx', sheet_name=None)")
	assert.Contains(t, out, "except NameError:")
}

// TestConvert_NoInputFlag tests the command error when no source is given.
func TestConvert_NoInputFlag(t *testing.T) {
	_, _, err := execute(t, "convert")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

// TestConvert_ResultName tests the --result binding override.
func TestConvert_ResultName(t *testing.T) {
	dir := writeQueries(t, map[string]string{
		"Q": `let S = Table.FromRecords({[A=1]}) in S`,
	})

	out, _, err := execute(t, "convert", "--dir", dir, "--result", "df")
	require.NoError(t, err)
	assert.Contains(t, out, "df = Q")
	assert.NotContains(t, out, "\nresult = ")
}
