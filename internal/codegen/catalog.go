package codegen

import "strings"

// Pattern tags for the recognized constructs, in catalog order.
const (
	TagCsvDocument     = "csv.document"
	TagFromRecords     = "table.from-records"
	TagInlineTable     = "table.inline"
	TagPromoteHeaders  = "table.promote-headers"
	TagTransformTypes  = "table.transform-column-types"
	TagExpandRecord    = "table.expand-record-column"
	TagExpandTable     = "table.expand-table-column"
	TagJoin            = "table.join"
	TagSelectRows      = "table.select-rows"
	TagSort            = "table.sort"
	TagGroup           = "table.group"
	TagCurrentWorkbook = "workbook.current"
	TagQueryRef        = "query.ref"
)

// Entry is one recognized construct: a match predicate over the expression
// text and a generator that parses the call's arguments and emits Python.
//
// A Generate error means the head matched but the argument list did not;
// the dispatcher downgrades that step to unsupported. The error never
// propagates past the step.
type Entry struct {
	Tag      string
	Match    func(expr string) bool
	Generate func(c *Context, lhs, expr string) ([]string, error)
}

// Catalog is the fixed, ordered recognizer list. Dispatch takes the first
// match; no two entries may both claim a well-formed instance of the same
// construct, so order only decides how fast a match is found - except for
// the bare reference entry, which must stay last because any lone
// identifier would satisfy it.
var Catalog = []Entry{
	{Tag: TagCsvDocument, Match: matchCsvDocument, Generate: genCsvDocument},
	{Tag: TagFromRecords, Match: matchFromRecords, Generate: genFromRecords},
	{Tag: TagInlineTable, Match: matchInlineTable, Generate: genInlineTable},
	{Tag: TagPromoteHeaders, Match: matchPromoteHeaders, Generate: genPromoteHeaders},
	{Tag: TagTransformTypes, Match: matchTransformTypes, Generate: genTransformTypes},
	{Tag: TagExpandRecord, Match: matchExpandRecord, Generate: genExpandRecord},
	{Tag: TagExpandTable, Match: matchExpandTable, Generate: genExpandTable},
	{Tag: TagJoin, Match: matchJoin, Generate: genJoin},
	{Tag: TagSelectRows, Match: matchSelectRows, Generate: genSelectRows},
	{Tag: TagSort, Match: matchSort, Generate: genSort},
	{Tag: TagGroup, Match: matchGroup, Generate: genGroup},
	{Tag: TagCurrentWorkbook, Match: matchCurrentWorkbook, Generate: genCurrentWorkbook},
	{Tag: TagQueryRef, Match: matchQueryRef, Generate: genQueryRef},
}

// Tags returns the catalog tags in dispatch order.
func Tags() []string {
	tags := make([]string, len(Catalog))
	for i, e := range Catalog {
		tags[i] = e.Tag
	}
	return tags
}

// dispatch finds the first catalog entry matching expr.
func dispatch(expr string) (Entry, bool) {
	expr = strings.TrimSpace(expr)
	for _, e := range Catalog {
		if e.Match(expr) {
			return e, true
		}
	}
	return Entry{}, false
}
