package resolver

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScanRefs_QuotedAndBare tests both reference forms against a known set.
func TestScanRefs_QuotedAndBare(t *testing.T) {
	known := map[string]bool{"Query A": true, "Orders": true, "Sort": true}
	text := `let
    Source = Table.Join(#"Query A", "k", Orders, "k", JoinKind.Inner),
    Sorted = Table.Sort(Source, {{"A", Order.Ascending}})
in
    Sorted`

	refs := ScanRefs(text, known)
	assert.Equal(t, []string{"Orders", "Query A"}, refs,
		"Table.Sort is one dotted token and must not count as a reference to Sort")
}

// TestScanRefs_IgnoresStringsAndComments tests that literal text never references.
func TestScanRefs_IgnoresStringsAndComments(t *testing.T) {
	known := map[string]bool{"Orders": true, "Customers": true}
	text := `let
    // Orders gets merged later
    A = Table.SelectRows(Customers, each [Note] = "see Orders")
in
    A`

	refs := ScanRefs(text, known)
	assert.Equal(t, []string{"Customers"}, refs)
}

// TestScanRefs_WholeTokenOnly tests that substring collisions are excluded.
func TestScanRefs_WholeTokenOnly(t *testing.T) {
	known := map[string]bool{"Ord": true}
	refs := ScanRefs(`let A = Orders in A`, known)
	assert.Empty(t, refs, "Ord must not match inside Orders")
}

// TestResolve_DependencyFirst tests the spec scenario: requesting B emits A first.
func TestResolve_DependencyFirst(t *testing.T) {
	sources := map[string]string{
		"Query A": `let Source = Table.FromRecords({[A=1]}) in Source`,
		"Query B": `let Base = #"Query A", Out = Table.Sort(Base, {{"A", Order.Ascending}}) in Out`,
	}

	order, err := Resolve("Query B", sources, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Query A", "Query B"}, order)
}

// TestResolve_SharedDependencyOnce tests that a diamond emits each query once.
func TestResolve_SharedDependencyOnce(t *testing.T) {
	sources := map[string]string{
		"Base":  `let S = Table.FromRecords({[A=1]}) in S`,
		"Left":  `let S = Base in S`,
		"Right": `let S = Base in S`,
		"Top":   `let S = Table.Join(Left, "A", Right, "A", JoinKind.Inner) in S`,
	}

	order, err := Resolve("Top", sources, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Base", "Left", "Right", "Top"}, order)
}

// TestResolve_TransitiveOrdering tests the dependency-first property for all
// pairs in a chain plus a shortcut edge.
func TestResolve_TransitiveOrdering(t *testing.T) {
	sources := map[string]string{
		"A": `let S = Table.FromRecords({[X=1]}) in S`,
		"B": `let S = A in S`,
		"C": `let S = Table.Join(A, "X", B, "X", JoinKind.Inner) in S`,
		"D": `let S = C in S`,
	}

	order, err := Resolve("D", sources, nil)
	require.NoError(t, err)

	pos := map[string]int{}
	for i, n := range order {
		pos[n] = i
	}
	deps := map[string][]string{"B": {"A"}, "C": {"A", "B"}, "D": {"C"}}
	for q, ds := range deps {
		for _, d := range ds {
			assert.Less(t, pos[d], pos[q], "%s must precede %s", d, q)
		}
	}
	assert.Equal(t, "D", order[len(order)-1], "root comes last")
}

// TestResolve_Cycle tests that a cycle is a terminal error naming members.
func TestResolve_Cycle(t *testing.T) {
	sources := map[string]string{
		"A": `let S = B in S`,
		"B": `let S = C in S`,
		"C": `let S = A in S`,
	}

	order, err := Resolve("A", sources, nil)
	require.Error(t, err)
	assert.Nil(t, order, "never a partial order on cycle")
	require.True(t, IsCycleError(err))

	var ce *CycleError
	require.ErrorAs(t, err, &ce)
	assert.GreaterOrEqual(t, len(ce.Path), 2)
	assert.Equal(t, ce.Path[0], ce.Path[len(ce.Path)-1], "path closes the loop")
	for _, member := range ce.Path {
		assert.Contains(t, []string{"A", "B", "C"}, member)
	}
}

// TestResolve_SelfReferenceIgnored tests that a query naming itself is not a cycle.
func TestResolve_SelfReferenceIgnored(t *testing.T) {
	sources := map[string]string{
		"A": `let A = Table.FromRecords({[X=1]}), S = A in S`,
	}
	order, err := Resolve("A", sources, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, order)
}

// TestResolve_MissingRoot tests the unresolved error for an unknown root.
func TestResolve_MissingRoot(t *testing.T) {
	_, err := Resolve("Nope", map[string]string{"A": "let X = 1 in X"}, nil)
	require.Error(t, err)
	assert.True(t, IsUnresolvedError(err))
	assert.False(t, IsCycleError(err), "missing reference is distinct from a cycle")
}

// TestResolve_MissingReference tests a known name whose text is unavailable.
func TestResolve_MissingReference(t *testing.T) {
	sources := map[string]string{
		"A": `let S = #"Gone" in S`,
	}
	known := map[string]bool{"A": true, "Gone": true}

	_, err := Resolve("A", sources, known)
	require.Error(t, err)
	require.True(t, IsUnresolvedError(err))

	var ue *UnresolvedError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "A", ue.Query)
	assert.Equal(t, "Gone", ue.Ref)
}

// TestOrder_Deterministic tests that the global order is stable across calls.
func TestOrder_Deterministic(t *testing.T) {
	sources := map[string]string{
		"Z": `let S = Table.FromRecords({[A=1]}) in S`,
		"M": `let S = Z in S`,
		"K": `let S = Table.FromRecords({[A=2]}) in S`,
	}

	first, err := Order(sources)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := Order(sources)
		require.NoError(t, err)
		require.Equal(t, first, again, "iteration %d", i)
	}
	assert.ElementsMatch(t, []string{"K", "M", "Z"}, first)

	pos := map[string]int{}
	for i, n := range first {
		pos[n] = i
	}
	assert.Less(t, pos["Z"], pos["M"])
}

// TestEdges tests edge construction with self-edge and duplicate collapse.
func TestEdges(t *testing.T) {
	sources := map[string]string{
		"A": `let S = Table.FromRecords({[X=1]}) in S`,
		"B": `let S = Table.Join(A, "X", A, "X", JoinKind.Inner), B = S in B`,
	}

	edges := Edges(sources)
	require.Len(t, edges, 1, "duplicates collapse, self-edges drop")
	assert.Equal(t, "B", edges[0].From)
	assert.Equal(t, "A", edges[0].To)
}

// TestResolve_WideFanIn tests a generated graph where many queries share one base.
func TestResolve_WideFanIn(t *testing.T) {
	sources := map[string]string{
		"Base": `let S = Table.FromRecords({[A=1]}) in S`,
	}
	rootText := "let S = Table.FromRecords({[A=0]})"
	for i := 0; i < 25; i++ {
		name := fmt.Sprintf("Leaf%02d", i)
		sources[name] = `let S = Base in S`
		rootText += fmt.Sprintf(", X%02d = %s", i, name)
	}
	sources["Root"] = rootText + " in S"

	order, err := Resolve("Root", sources, nil)
	require.NoError(t, err)
	require.Len(t, order, 27)
	assert.Equal(t, "Base", order[0])
	assert.Equal(t, "Root", order[26])
}
