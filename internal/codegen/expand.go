package codegen

import "fmt"

// Table.ExpandRecordColumn(Source, "Rec", {"x","y"}, {"X","Y"})

func matchExpandRecord(expr string) bool {
	return isCall(expr, "Table.ExpandRecordColumn")
}

func genExpandRecord(c *Context, lhs, expr string) ([]string, error) {
	src, col, fields, newNames, err := expandArgs(expr, "Table.ExpandRecordColumn", c)
	if err != nil {
		return nil, err
	}

	lines := []string{
		fmt.Sprintf("%s = %s.drop(columns=[%s], errors='ignore').copy()", lhs, src, pyStr(col)),
		fmt.Sprintf("_exp = %s[%s].apply(lambda x: pd.Series(x) if isinstance(x, dict) else pd.Series(dtype='object'))", src, pyStr(col)),
	}
	if len(fields) > 0 {
		lines = append(lines,
			fmt.Sprintf("_exp = _exp[%s]", pyStrList(fields)),
			fmt.Sprintf("_exp = _exp.rename(columns=dict(zip(%s, %s)))", pyStrList(fields), pyStrList(newNames)),
		)
	}
	lines = append(lines, fmt.Sprintf("%s = %s.join(_exp)", lhs, lhs))
	return lines, nil
}

// Table.ExpandTableColumn(Source, "Tbl", {"x","y"}, {"X","Y"})

func matchExpandTable(expr string) bool {
	return isCall(expr, "Table.ExpandTableColumn")
}

func genExpandTable(c *Context, lhs, expr string) ([]string, error) {
	src, col, fields, newNames, err := expandArgs(expr, "Table.ExpandTableColumn", c)
	if err != nil {
		return nil, err
	}

	lines := []string{
		fmt.Sprintf("%s = %s.copy()", lhs, src),
		fmt.Sprintf("_tbl = %s.pop(%s) if %s in %s.columns else pd.Series(index=%s.index, dtype='object')",
			lhs, pyStr(col), pyStr(col), lhs, lhs),
		"_tbl = _tbl.apply(lambda t: t if isinstance(t, (list, tuple)) else ([] if t is None else [t]))",
		"_tbl = _tbl.explode()",
		"_df = pd.DataFrame(_tbl.tolist()) if not _tbl.empty else pd.DataFrame()",
	}
	if len(fields) > 0 {
		lines = append(lines,
			fmt.Sprintf("_df = _df.reindex(columns=%s)", pyStrList(fields)),
			fmt.Sprintf("_df = _df.rename(columns=dict(zip(%s, %s)))", pyStrList(fields), pyStrList(newNames)),
		)
	}
	lines = append(lines, fmt.Sprintf("%s = %s.join(_df.reset_index(drop=True))", lhs, lhs))
	return lines, nil
}

// expandArgs parses the shared signature of the two expand constructs:
// (table, "column", {field names}, {new names}). When the new-name list is
// missing or mismatched, the field names are reused as-is.
func expandArgs(expr, fn string, c *Context) (src, col string, fields, newNames []string, err error) {
	inner, _ := callArgs(expr, fn)
	args := splitArgs(inner)
	if len(args) < 3 {
		return "", "", nil, nil, fmt.Errorf("%s: expected table, column, and field list", fn)
	}

	src = c.resolve(args[0])
	col, ok := mUnquote(args[1])
	if !ok {
		return "", "", nil, nil, fmt.Errorf("%s: expected a column name, got %q", fn, args[1])
	}
	fields, ok = stringList(args[2])
	if !ok {
		return "", "", nil, nil, fmt.Errorf("%s: expected a {..} field list, got %q", fn, args[2])
	}
	if len(args) > 3 {
		newNames, _ = stringList(args[3])
	}
	if len(newNames) != len(fields) {
		newNames = fields
	}
	return src, col, fields, newNames, nil
}
