package codegen

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/querylift/querylift/internal/ir"
)

// Excel.CurrentWorkbook(){[Name="Table1"]}[Content]
//
// The generated code reads from the external table set __cw, a caller-owned
// mapping from table name to row data. The engine never populates it; the
// bundle assembler emits a guard that creates an empty one when the caller
// did not supply it.

var currentWorkbookRE = regexp.MustCompile(
	`^Excel\.CurrentWorkbook\(\)\s*\{\s*\[\s*Name\s*=\s*"((?:[^"]|"")+)"\s*\]\s*\}\s*\[\s*Content\s*\]$`)

func matchCurrentWorkbook(expr string) bool {
	return currentWorkbookRE.MatchString(strings.TrimSpace(expr))
}

func genCurrentWorkbook(c *Context, lhs, expr string) ([]string, error) {
	m := currentWorkbookRE.FindStringSubmatch(strings.TrimSpace(expr))
	if m == nil {
		return nil, fmt.Errorf("Excel.CurrentWorkbook: malformed selector %q", expr)
	}
	table := strings.ReplaceAll(m[1], `""`, `"`)
	c.useTable(table)
	return []string{fmt.Sprintf("%s = pd.DataFrame(%s.get(%s, []))", lhs, ExternalTableVar, pyStr(table))}, nil
}

// ExternalTableVar names the external table mapping in generated code.
const ExternalTableVar = "__cw"

// A step whose whole expression is a reference to another query (or an
// earlier step) aliases that value directly.

var bareIdent = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

func matchQueryRef(expr string) bool {
	expr = strings.TrimSpace(expr)
	if ir.IsQuotedName(expr) {
		return true
	}
	return bareIdent.MatchString(expr) && !mKeywords[strings.ToLower(expr)]
}

// mKeywords are bare words that can never be value references.
var mKeywords = map[string]bool{
	"let": true, "in": true, "each": true, "and": true, "or": true,
	"not": true, "true": true, "false": true, "null": true, "as": true,
	"if": true, "then": true, "else": true, "error": true, "try": true,
	"otherwise": true, "type": true, "meta": true, "section": true,
}

func genQueryRef(c *Context, lhs, expr string) ([]string, error) {
	expr = strings.TrimSpace(expr)
	if !c.isBound(expr) {
		return nil, fmt.Errorf("reference to unknown name %q", expr)
	}
	src := c.resolve(expr)
	if c.none[src] {
		c.none[lhs] = true
	}
	return []string{fmt.Sprintf("%s = %s", lhs, src)}, nil
}
