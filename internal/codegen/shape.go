package codegen

import (
	"fmt"
	"strings"

	"github.com/querylift/querylift/internal/ir"
)

// Table.PromoteHeaders(Source, [PromoteAllScalars=true])

func matchPromoteHeaders(expr string) bool {
	return isCall(expr, "Table.PromoteHeaders")
}

func genPromoteHeaders(c *Context, lhs, expr string) ([]string, error) {
	inner, _ := callArgs(expr, "Table.PromoteHeaders")
	args := splitArgs(inner)
	if len(args) == 0 {
		return nil, fmt.Errorf("Table.PromoteHeaders: missing table argument")
	}
	src := c.resolve(args[0])
	return []string{
		fmt.Sprintf("%s = %s.copy()", lhs, src),
		fmt.Sprintf("%s.columns = %s.iloc[0]", lhs, lhs),
		fmt.Sprintf("%s = %s.iloc[1:].reset_index(drop=True)", lhs, lhs),
	}, nil
}

// Table.TransformColumnTypes(Source, {{"col", type text}, {"num", Int64.Type}})

func matchTransformTypes(expr string) bool {
	return isCall(expr, "Table.TransformColumnTypes")
}

func genTransformTypes(c *Context, lhs, expr string) ([]string, error) {
	inner, _ := callArgs(expr, "Table.TransformColumnTypes")
	args := splitArgs(inner)
	if len(args) < 2 {
		return nil, fmt.Errorf("Table.TransformColumnTypes: expected table and type list")
	}
	src := c.resolve(args[0])

	pairs, ok := braceItems(args[1])
	if !ok || len(pairs) == 0 {
		return nil, fmt.Errorf("Table.TransformColumnTypes: expected {{\"col\", type}, ...}, got %q", args[1])
	}

	lines := []string{fmt.Sprintf("%s = %s.copy()", lhs, src)}
	for _, p := range pairs {
		items, ok := braceItems(p)
		if !ok || len(items) < 2 {
			return nil, fmt.Errorf("Table.TransformColumnTypes: malformed pair %q", p)
		}
		col, ok := mUnquote(items[0])
		if !ok {
			col = ir.TrimQuoted(items[0])
		}
		lines = append(lines, coerceLine(lhs, col, items[1]))
	}
	return lines, nil
}

// coerceLine maps one M type tag onto a pandas dtype conversion.
// The tag may be written as `type text` or as a dotted form like Int64.Type.
func coerceLine(lhs, col, typeTok string) string {
	t := strings.TrimSpace(typeTok)
	t = strings.TrimPrefix(t, "type ")
	if i := strings.LastIndex(t, "."); i >= 0 && strings.EqualFold(t[i+1:], "type") {
		t = t[:i]
	}
	t = strings.ToLower(strings.TrimSpace(t))

	cell := fmt.Sprintf("%s[%s]", lhs, pyStr(col))
	switch t {
	case "text":
		return fmt.Sprintf("%s = %s.astype('string')", cell, cell)
	case "number", "double", "single", "decimal":
		return fmt.Sprintf("%s = %s.astype('float')", cell, cell)
	case "int64", "int32", "int16", "int8":
		return fmt.Sprintf("%s = pd.to_numeric(%s, errors='coerce').astype('Int64')", cell, cell)
	case "date", "datetime", "datetimezone":
		return fmt.Sprintf("%s = pd.to_datetime(%s, errors='coerce')", cell, cell)
	case "logical":
		return fmt.Sprintf("%s = %s.astype('boolean')", cell, cell)
	default:
		return fmt.Sprintf("# %s = %s.astype('object')  # unhandled type: %s", cell, cell, t)
	}
}
