package extract

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDirQueries_NamesAndFiltering tests that only .m files load, named by base.
func TestDirQueries_NamesAndFiltering(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "Query A.m"), "let S = 1 in S")
	write(t, filepath.Join(dir, "Orders.m"), "let S = 2 in S")
	write(t, filepath.Join(dir, "notes.txt"), "ignore me")

	queries, err := DirQueries(dir)
	require.NoError(t, err)
	require.Len(t, queries, 2)
	assert.Equal(t, "let S = 1 in S", queries["Query A"])
	assert.Equal(t, "let S = 2 in S", queries["Orders"])
}

// TestDirQueries_Empty tests that a directory with no .m files is an error.
func TestDirQueries_Empty(t *testing.T) {
	_, err := DirQueries(t.TempDir())
	assert.Error(t, err)
}

// TestZipQueries tests reading .m entries out of an archive.
func TestZipQueries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	w := zip.NewWriter(f)
	for name, text := range map[string]string{
		"queries/Sales.m":  "let S = 1 in S",
		"queries/readme":   "not a query",
		"queries/Region.m": "let S = Sales in S",
	} {
		e, err := w.Create(name)
		require.NoError(t, err)
		_, err = e.Write([]byte(text))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	queries, err := ZipQueries(path)
	require.NoError(t, err)
	require.Len(t, queries, 2)
	assert.Equal(t, "let S = Sales in S", queries["Region"])
}

// TestYAMLQueries tests the YAML mapping form.
func TestYAMLQueries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queries.yaml")
	write(t, path, "Query A: let S = 1 in S\nQuery B: let S = #\"Query A\" in S\n")

	queries, err := YAMLQueries(path)
	require.NoError(t, err)
	assert.Equal(t, `let S = #"Query A" in S`, queries["Query B"])
}

// TestFileQuery tests the single-file form and its derived name.
func TestFileQuery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Changed Orders.m")
	write(t, path, "let S = 1 in S")

	queries, err := FileQuery(path)
	require.NoError(t, err)
	require.Len(t, queries, 1)
	assert.Equal(t, "let S = 1 in S", queries["Changed Orders"])
}

// TestCSVTables_TypesAndMissing tests value narrowing and the missing-file path.
func TestCSVTables_TypesAndMissing(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "Param.csv"), "Name,Count,Rate\nalpha,3,0.5\nbeta,,2\n")

	src := CSVTables(dir)
	tables, err := src("", []string{"Param", "Gone"})
	require.NoError(t, err)

	require.Len(t, tables["Param"], 2)
	assert.Equal(t, Row{"Name": "alpha", "Count": int64(3), "Rate": 0.5}, tables["Param"][0])
	assert.Equal(t, Row{"Name": "beta", "Count": nil, "Rate": int64(2)}, tables["Param"][1])
	assert.Empty(t, tables["Gone"], "absent tables come back empty, not as errors")
}

// TestCSVTables_Windows1252 tests the cp1252 fallback for non-UTF-8 exports.
func TestCSVTables_Windows1252(t *testing.T) {
	dir := t.TempDir()
	// "Café" with an 0xE9 é byte, as cp1252 exports write it.
	raw := []byte("Name\nCaf\xe9\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "T.csv"), raw, 0o644))

	tables, err := CSVTables(dir)("", []string{"T"})
	require.NoError(t, err)
	require.Len(t, tables["T"], 1)
	assert.Equal(t, "Café", tables["T"][0]["Name"])
}

// TestTableContext_Populate tests filling a context through a source.
func TestTableContext_Populate(t *testing.T) {
	ctx := &TableContext{Path: "book.xlsx"}
	src := func(path string, names []string) (map[string][]Row, error) {
		assert.Equal(t, "book.xlsx", path)
		assert.Equal(t, []string{"Param"}, names)
		return map[string][]Row{"Param": {{"K": "v"}}}, nil
	}

	require.NoError(t, ctx.Populate(src, []string{"Param"}))
	assert.Equal(t, []Row{{"K": "v"}}, ctx.Rows("Param"))
	assert.Nil(t, ctx.Rows("Other"))

	var nilCtx *TableContext
	assert.Nil(t, nilCtx.Rows("Param"), "nil context reads as empty")
}

func write(t *testing.T, path, text string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
}
