package codegen

import (
	"fmt"
	"strings"

	"github.com/querylift/querylift/internal/ir"
	"github.com/querylift/querylift/internal/scan"
)

// Table.FromRecords({[A=1, B="x"], [A=2, Rec=[x=1,y=2]]})

func matchFromRecords(expr string) bool {
	return isCall(expr, "Table.FromRecords")
}

func genFromRecords(c *Context, lhs, expr string) ([]string, error) {
	inner, _ := callArgs(expr, "Table.FromRecords")
	items, ok := braceItems(inner)
	if !ok {
		return nil, fmt.Errorf("Table.FromRecords: expected a {..} record list, got %q", inner)
	}

	recs := make([]record, 0, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if !strings.HasPrefix(it, "[") || !strings.HasSuffix(it, "]") {
			return nil, fmt.Errorf("Table.FromRecords: expected a [..] record, got %q", it)
		}
		rec, err := parseRecord(it[1 : len(it)-1])
		if err != nil {
			return nil, fmt.Errorf("Table.FromRecords: %w", err)
		}
		recs = append(recs, rec)
	}

	return []string{fmt.Sprintf("%s = pd.DataFrame(%s)", lhs, pyRecordList(recs))}, nil
}

// #table(type table [A=number, B=text], {{1,"x"},{2,"y"}})
// #table({"A","B"}, {{1,"x"},{2,"y"}})

func matchInlineTable(expr string) bool {
	return isCall(expr, "#table")
}

func genInlineTable(c *Context, lhs, expr string) ([]string, error) {
	inner, _ := callArgs(expr, "#table")
	args := splitArgs(inner)
	if len(args) != 2 {
		return nil, fmt.Errorf("#table: expected 2 arguments, got %d", len(args))
	}

	cols, err := inlineTableColumns(args[0])
	if err != nil {
		return nil, err
	}

	rowToks, ok := braceItems(args[1])
	if !ok {
		return nil, fmt.Errorf("#table: expected a {{..},..} row list, got %q", args[1])
	}

	recs := make([]record, 0, len(rowToks))
	for _, rt := range rowToks {
		vals, ok := braceItems(rt)
		if !ok {
			return nil, fmt.Errorf("#table: expected a {..} row, got %q", rt)
		}
		rec := make(record, 0, len(cols))
		for i, col := range cols {
			var v any
			if i < len(vals) {
				v = parseScalar(vals[i])
			}
			rec = append(rec, field{key: col, val: v})
		}
		recs = append(recs, rec)
	}

	return []string{fmt.Sprintf("%s = pd.DataFrame(%s)", lhs, pyRecordList(recs))}, nil
}

// inlineTableColumns parses the first #table argument, either a typed
// schema (type table [A=number, B=text]) or a plain name list ({"A","B"}).
func inlineTableColumns(tok string) ([]string, error) {
	tok = strings.TrimSpace(tok)

	if rest, ok := strings.CutPrefix(tok, "type table"); ok {
		rest = strings.TrimSpace(rest)
		if !strings.HasPrefix(rest, "[") || !strings.HasSuffix(rest, "]") {
			return nil, fmt.Errorf("#table: expected [col=type, ...] after type table, got %q", rest)
		}
		var cols []string
		for _, part := range scan.SplitTop(rest[1:len(rest)-1], ',') {
			name, _, _ := scan.CutTop(part, '=')
			cols = append(cols, ir.TrimQuoted(name))
		}
		if len(cols) == 0 {
			return nil, fmt.Errorf("#table: empty column schema")
		}
		return cols, nil
	}

	if cols, ok := stringList(tok); ok && len(cols) > 0 {
		return cols, nil
	}
	return nil, fmt.Errorf("#table: cannot read column names from %q", tok)
}
