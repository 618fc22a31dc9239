package codegen

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/querylift/querylift/internal/ir"
)

// Context carries conversion state across the steps of one query: which
// names are bound to which Python variables, the most recent dataframe for
// the unsupported-step placeholder, and which workbook tables the generated
// code reads. A Context is built fresh per query; the engine shares nothing
// across conversion calls.
type Context struct {
	env     map[string]string // normalized M name → Python variable
	lastVar string
	known   map[string]bool // known query names, for reference validation
	tables  map[string]bool // workbook tables pulled from the external set
	none    map[string]bool // variables that may hold the None sentinel
}

// NewContext creates a conversion context. knownQueries lists every query
// name in the working set so bare references can be validated.
func NewContext(knownQueries []string) *Context {
	c := &Context{
		env:    make(map[string]string),
		known:  make(map[string]bool),
		tables: make(map[string]bool),
		none:   make(map[string]bool),
	}
	for _, n := range knownQueries {
		c.known[ir.TrimQuoted(n)] = true
	}
	return c
}

// bind records that the M name is now available as the Python variable.
func (c *Context) bind(mName, pyVar string) {
	c.env[ir.TrimQuoted(mName)] = pyVar
	c.lastVar = pyVar
}

// resolve maps a referenced M name (step or query, quoted or bare) to the
// Python variable it will be bound to.
func (c *Context) resolve(ref string) string {
	key := ir.TrimQuoted(ref)
	if v, ok := c.env[key]; ok {
		return v
	}
	return NormalizeVar(key)
}

// isBound reports whether ref names an already-generated step or a known
// query in the working set.
func (c *Context) isBound(ref string) bool {
	key := ir.TrimQuoted(ref)
	if _, ok := c.env[key]; ok {
		return true
	}
	return c.known[key]
}

// useTable records that generated code reads the named workbook table.
func (c *Context) useTable(name string) {
	c.tables[name] = true
}

// Result is the generated code for one query.
type Result struct {
	Query *ir.Query

	// Lines holds the step statements in step order, without the final
	// result binding (the assembler owns that).
	Lines []string

	// OutputVar is the Python variable holding the query's output: the
	// step named after in, or the last dataframe when that name is not a
	// step of this query.
	OutputVar string

	// Tables lists the workbook tables the generated code reads from the
	// external table set, sorted.
	Tables []string

	// Unsupported lists the step names that fell through the catalog.
	Unsupported []string
}

// Convert generates pandas statements for every step of q, in step order.
// It never fails: steps that match no catalog entry (or match one with a
// malformed argument list) degrade to a marked comment plus a placeholder
// assignment. Step tags and code are recorded on q's steps.
func Convert(q *ir.Query, ctx *Context) *Result {
	if ctx == nil {
		ctx = NewContext(nil)
	}
	res := &Result{Query: q}

	for i := range q.Steps {
		step := &q.Steps[i]
		lhs := NormalizeVar(step.Name)
		expr := strings.TrimSpace(step.Expr)

		var lines []string
		entry, ok := dispatch(expr)
		if ok {
			generated, err := entry.Generate(ctx, lhs, expr)
			if err == nil {
				step.Pattern = entry.Tag
				lines = generated
			} else {
				// Recognized head, malformed arguments: local downgrade.
				ok = false
			}
		}
		if !ok {
			step.Pattern = ir.PatternUnsupported
			lines = unsupportedLines(ctx, step.Name, lhs, expr)
			res.Unsupported = append(res.Unsupported, step.Name)
		}

		step.Code = lines
		res.Lines = append(res.Lines, lines...)
		ctx.bind(step.Name, lhs)
	}

	res.OutputVar = outputVar(q, ctx)
	res.Tables = sortedTables(ctx)
	return res
}

// lineJoin collapses a line break and its surrounding indentation to one
// space, so a multi-line expression fits a single comment line.
var lineJoin = regexp.MustCompile(`\s*\n\s*`)

// unsupportedLines emits the fallback for an unrecognized construct: one
// comment naming it, then one placeholder binding so downstream steps
// referencing this one still execute. The expression is flattened to a
// single physical line; uncommented continuation lines would break the
// document. A placeholder chained onto the None sentinel stays a plain
// alias, since None has no .copy().
func unsupportedLines(ctx *Context, rawName, lhs, expr string) []string {
	comment := fmt.Sprintf("# Unsupported: %s = %s", rawName, lineJoin.ReplaceAllString(expr, " "))
	switch {
	case ctx.lastVar == "":
		ctx.none[lhs] = true
		return []string{comment, fmt.Sprintf("%s = None  # unsupported start", lhs)}
	case ctx.none[ctx.lastVar]:
		ctx.none[lhs] = true
		return []string{comment, fmt.Sprintf("%s = %s", lhs, ctx.lastVar)}
	default:
		return []string{comment, fmt.Sprintf("%s = %s.copy()", lhs, ctx.lastVar)}
	}
}

// outputVar picks the Python variable for the query's result binding:
// the step the in identifier names, else the last dataframe.
func outputVar(q *ir.Query, ctx *Context) string {
	key := ir.TrimQuoted(q.Result)
	if v, ok := ctx.env[key]; ok {
		return v
	}
	if ctx.lastVar != "" {
		return ctx.lastVar
	}
	return NormalizeVar(q.Name)
}

func sortedTables(ctx *Context) []string {
	if len(ctx.tables) == 0 {
		return nil
	}
	out := make([]string, 0, len(ctx.tables))
	for t := range ctx.tables {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
