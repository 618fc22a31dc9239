// Package parser decomposes one M query into its ordered named steps.
//
// An M query has the shape
//
//	let
//	    Name1 = Expr1,
//	    #"Name 2" = Expr2
//	in
//	    #"Name 2"
//
// The extractor locates the top-level let/in pair, splits the body on
// top-level commas into name = expression clauses, and records the result
// identifier after in. Expressions stay unparsed text: recognizing what a
// step does is the catalog's job, not the parser's.
package parser

import (
	"strings"

	"github.com/querylift/querylift/internal/ir"
	"github.com/querylift/querylift/internal/scan"
)

// Parse extracts the ordered steps of one query. name is the query's
// display name, used in error messages and for the fallback result binding.
//
// A source without a let block but containing = clauses is accepted as a
// bare clause list whose result is its last step.
func Parse(name, source string) (*ir.Query, error) {
	src := scan.StripComments(source)

	if err := scan.CheckBalance(src); err != nil {
		return nil, &ParseError{Query: name, Message: "unbalanced delimiters", Err: err}
	}

	body, result, err := cutLetIn(name, src)
	if err != nil {
		return nil, err
	}

	q := &ir.Query{
		Name:   name,
		Source: source,
		Result: result,
	}

	for _, clause := range scan.SplitTop(body, ',') {
		lhs, rhs, ok := scan.CutTop(clause, '=')
		if !ok {
			// Stray fragment without a binding. Tolerated: dropping it
			// cannot lose the output binding, which lives after in.
			continue
		}
		q.Steps = append(q.Steps, ir.Step{
			Name: strings.TrimSpace(lhs),
			Expr: strings.TrimSuffix(strings.TrimSpace(rhs), ","),
		})
	}

	if len(q.Steps) == 0 {
		return nil, &ParseError{Query: name, Message: "no step bindings found"}
	}

	// A bare clause list has no in identifier: the last step is the output.
	if q.Result == "" {
		q.Result = q.Steps[len(q.Steps)-1].Name
	}

	return q, nil
}

// cutLetIn locates the top-level let ... in pair and returns the body
// between them plus the trimmed result identifier after in. A bare clause
// list (no let at all) returns the whole source with an empty result.
func cutLetIn(name, src string) (body, result string, err error) {
	lets := scan.TopLevelWords(src, "let")
	ins := scan.TopLevelWords(src, "in")

	if len(lets) == 0 {
		if scan.IndexTop(src, '=') >= 0 {
			return src, "", nil
		}
		return "", "", &ParseError{Query: name, Message: "no let/in block and no bindings"}
	}

	letPos := lets[0]
	// The result expression is a single identifier, so the matching in is
	// the last one at top level (identifiers cannot contain the keyword).
	inPos := -1
	for _, p := range ins {
		if p > letPos {
			inPos = p
		}
	}
	if inPos < 0 {
		return "", "", &ParseError{Query: name, Message: "let without matching in"}
	}

	body = src[letPos+len("let") : inPos]
	result = strings.TrimSpace(src[inPos+len("in"):])
	if result == "" {
		return "", "", &ParseError{Query: name, Message: "missing result identifier after in"}
	}
	return body, result, nil
}
