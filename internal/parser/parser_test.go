package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParse_Basic tests extraction of ordered steps from a simple query.
func TestParse_Basic(t *testing.T) {
	src := `let
    Source = Table.FromRecords({[A=1,B="X"],[A=2,B="Y"]}),
    Filtered = Table.SelectRows(Source, each [B] = "X"),
    Sorted = Table.Sort(Filtered, {{"A", Order.Descending}})
in
    Sorted`

	q, err := Parse("Demo", src)
	require.NoError(t, err)
	require.Len(t, q.Steps, 3)
	assert.Equal(t, "Source", q.Steps[0].Name)
	assert.Equal(t, "Filtered", q.Steps[1].Name)
	assert.Equal(t, "Sorted", q.Steps[2].Name)
	assert.Equal(t, "Sorted", q.Result)
	assert.Equal(t, `Table.SelectRows(Source, each [B] = "X")`, q.Steps[1].Expr)
}

// TestParse_QuotedStepNames tests #"..." step names with commas and parens inside.
func TestParse_QuotedStepNames(t *testing.T) {
	src := `let
    Source = Csv.Document(File.Contents("data.csv")),
    #"Promoted Headers" = Table.PromoteHeaders(Source),
    #"Changed, (odd) Type" = Table.TransformColumnTypes(#"Promoted Headers", {{"A", Int64.Type}})
in
    #"Changed, (odd) Type"`

	q, err := Parse("Quoted", src)
	require.NoError(t, err)
	require.Len(t, q.Steps, 3)
	assert.Equal(t, `#"Promoted Headers"`, q.Steps[1].Name)
	assert.Equal(t, `#"Changed, (odd) Type"`, q.Steps[2].Name)
	assert.Equal(t, `#"Changed, (odd) Type"`, q.Result)
	assert.Equal(t, `Table.PromoteHeaders(Source)`, q.Steps[1].Expr)
}

// TestParse_NestedLetIn tests that an inner let/in does not end the outer one.
func TestParse_NestedLetIn(t *testing.T) {
	src := `let
    Source = (let x = 1 in x),
    Next = Source
in
    Next`

	q, err := Parse("Nested", src)
	require.NoError(t, err)
	require.Len(t, q.Steps, 2)
	assert.Equal(t, "Next", q.Result)
}

// TestParse_BareClauseList tests a source with bindings but no let block.
func TestParse_BareClauseList(t *testing.T) {
	q, err := Parse("Bare", `A = 1, B = f(A)`)
	require.NoError(t, err)
	require.Len(t, q.Steps, 2)
	assert.Equal(t, "B", q.Result, "bare clause list results in its last step")
}

// TestParse_Comments tests that // comments are ignored even with commas.
func TestParse_Comments(t *testing.T) {
	src := `let
    // setup, with = noise
    Source = Table.PromoteHeaders(Raw), // trailing note
    Done = Source
in
    Done`

	q, err := Parse("Commented", src)
	require.NoError(t, err)
	require.Len(t, q.Steps, 2)
	assert.Equal(t, "Table.PromoteHeaders(Raw)", q.Steps[0].Expr)
}

// TestParse_Errors tests the fatal cases: malformed structure is never skipped.
func TestParse_Errors(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"empty", ""},
		{"no bindings", "just words"},
		{"let without in", "let A = 1"},
		{"missing result", "let A = 1 in"},
		{"unbalanced paren", "let A = f(1 in A"},
		{"unterminated string", `let A = "open in A`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse("Bad", tc.src)
			require.Error(t, err)
			assert.True(t, IsParseError(err), "want ParseError, got %v", err)
		})
	}
}

// TestParse_ResultNamesLaterStep tests that the in identifier may name any step.
func TestParse_ResultNamesLaterStep(t *testing.T) {
	src := `let A = 1, B = 2, C = 3 in B`
	q, err := Parse("Pick", src)
	require.NoError(t, err)
	assert.Equal(t, "B", q.Result)
}
