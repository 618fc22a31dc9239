package ir

// Query represents one named M query: the raw `let ... in ...` source and
// its ordered steps. Immutable once parsed.
type Query struct {
	Name   string `json:"name"`
	Source string `json:"source"`
	Steps  []Step `json:"steps"`

	// Result is the identifier following the `in` keyword, in its raw
	// (possibly quoted) form. It selects which step's generated variable
	// is the query's output.
	Result string `json:"result"`
}

// Step is one `name = expression` binding inside a query's let block.
// Steps are ordered; order is significant and preserved from source.
type Step struct {
	// Name is the bound identifier as written, possibly quoted (#"Some Name").
	Name string `json:"name"`

	// Expr is the unparsed right-hand side text.
	Expr string `json:"expr"`

	// Pattern is the catalog tag assigned during conversion, or
	// PatternUnsupported. Empty until the step has been dispatched.
	Pattern string `json:"pattern,omitempty"`

	// Code holds the generated target statements for this step.
	Code []string `json:"code,omitempty"`
}

// PatternUnsupported tags a step whose expression matched no catalog entry.
const PatternUnsupported = "unsupported"

// Reference is a (referencing query, referenced query) pair discovered by
// scanning raw text. A query referenced many times collapses to one edge.
type Reference struct {
	From string `json:"from"`
	To   string `json:"to"`
}
