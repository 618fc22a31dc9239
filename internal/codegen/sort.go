package codegen

import (
	"fmt"
	"strings"
)

// Table.Sort(Filtered, {{"A", Order.Descending}, {"B", Order.Ascending}})

func matchSort(expr string) bool {
	return isCall(expr, "Table.Sort")
}

func genSort(c *Context, lhs, expr string) ([]string, error) {
	inner, _ := callArgs(expr, "Table.Sort")
	args := splitArgs(inner)
	if len(args) < 2 {
		return nil, fmt.Errorf("Table.Sort: expected table and sort spec")
	}
	src := c.resolve(args[0])

	items, ok := braceItems(args[1])
	if !ok {
		return nil, fmt.Errorf("Table.Sort: expected a {..} sort spec, got %q", args[1])
	}

	var cols []string
	var asc []bool
	for _, it := range items {
		col, ascending, err := sortKey(it)
		if err != nil {
			return nil, fmt.Errorf("Table.Sort: %w", err)
		}
		cols = append(cols, col)
		asc = append(asc, ascending)
	}
	if len(cols) == 0 {
		// Empty spec sorts nothing.
		return []string{fmt.Sprintf("%s = %s.copy()", lhs, src)}, nil
	}

	return []string{fmt.Sprintf(
		"%s = %s.sort_values(by=%s, ascending=%s).reset_index(drop=True)",
		lhs, src, pyStrList(cols), pyBoolList(asc),
	)}, nil
}

// sortKey parses one sort item: either {"Col", Order.X} or a bare "Col"
// (ascending by default).
func sortKey(item string) (string, bool, error) {
	item = strings.TrimSpace(item)
	if col, ok := mUnquote(item); ok {
		return col, true, nil
	}

	parts, ok := braceItems(item)
	if !ok || len(parts) == 0 {
		return "", false, fmt.Errorf("malformed sort key %q", item)
	}
	col, ok := mUnquote(parts[0])
	if !ok {
		return "", false, fmt.Errorf("malformed sort column %q", parts[0])
	}
	ascending := true
	if len(parts) > 1 {
		switch strings.TrimSpace(parts[1]) {
		case "Order.Ascending":
		case "Order.Descending":
			ascending = false
		default:
			return "", false, fmt.Errorf("unknown sort direction %q", parts[1])
		}
	}
	return col, ascending, nil
}
