package codegen

import (
	"fmt"
	"strings"
)

// Table.Group(Source, {"Cat"}, {{"Avg", each List.Average([V]), type number},
//                               {"Cnt", each Table.RowCount(_), Int64.Type}})

func matchGroup(expr string) bool {
	return isCall(expr, "Table.Group")
}

// aggKinds maps M list aggregators onto pandas named-aggregation functions.
// The P-suffixed forms are the population variants (Excel convention);
// pandas defaults to the sample ones.
var aggKinds = map[string]string{
	"List.Sum":                "'sum'",
	"List.Average":            "'mean'",
	"List.Count":              "'count'",
	"List.NonNullCount":       "'count'",
	"List.Min":                "'min'",
	"List.Max":                "'max'",
	"List.Median":             "'median'",
	"List.StandardDeviation":  "'std'",
	"List.StandardDeviationP": "lambda s: s.std(ddof=0)",
	"List.Variance":           "'var'",
	"List.VarianceP":          "lambda s: s.var(ddof=0)",
	"List.First":              "'first'",
	"List.Last":               "'last'",
	"List.Product":            "'prod'",
}

func genGroup(c *Context, lhs, expr string) ([]string, error) {
	inner, _ := callArgs(expr, "Table.Group")
	args := splitArgs(inner)
	if len(args) < 3 {
		return nil, fmt.Errorf("Table.Group: expected table, keys, and aggregations")
	}

	src := c.resolve(args[0])
	keys, err := keyList(args[1])
	if err != nil {
		return nil, fmt.Errorf("Table.Group: keys: %w", err)
	}

	items, ok := braceItems(args[2])
	if !ok || len(items) == 0 {
		return nil, fmt.Errorf("Table.Group: expected {{\"name\", each ..., type}, ...}, got %q", args[2])
	}

	aggs := make([]string, 0, len(items))
	for _, it := range items {
		out, col, fn, err := groupAggregation(it, keys[0])
		if err != nil {
			return nil, fmt.Errorf("Table.Group: %w", err)
		}
		aggs = append(aggs, fmt.Sprintf("%s=(%s, %s)", NormalizeVar(out), pyStr(col), fn))
	}

	return []string{fmt.Sprintf(
		"%s = %s.groupby(%s, as_index=False).agg(%s)",
		lhs, src, pyStrList(keys), strings.Join(aggs, ", "),
	)}, nil
}

// groupAggregation parses one aggregation triple {"Out", each Agg([Col]), type}
// into the output column, source column, and pandas aggregation function.
// Table.RowCount(_) counts rows, attributed to the first group key.
func groupAggregation(item, firstKey string) (out, col, fn string, err error) {
	parts, ok := braceItems(item)
	if !ok || len(parts) < 2 {
		return "", "", "", fmt.Errorf("malformed aggregation %q", item)
	}
	out, ok = mUnquote(parts[0])
	if !ok {
		return "", "", "", fmt.Errorf("malformed aggregation name %q", parts[0])
	}

	body, ok := strings.CutPrefix(strings.TrimSpace(parts[1]), "each ")
	if !ok {
		return "", "", "", fmt.Errorf("expected an each aggregator in %q", parts[1])
	}
	body = strings.TrimSpace(body)

	if isCall(body, "Table.RowCount") {
		return out, firstKey, "'count'", nil
	}

	for m, pandas := range aggKinds {
		argTok, ok := callArgs(body, m)
		if !ok {
			continue
		}
		argTok = strings.TrimSpace(argTok)
		if !strings.HasPrefix(argTok, "[") || !strings.HasSuffix(argTok, "]") {
			return "", "", "", fmt.Errorf("expected a [Col] argument in %q", body)
		}
		return out, strings.TrimSpace(argTok[1 : len(argTok)-1]), pandas, nil
	}
	return "", "", "", fmt.Errorf("unknown aggregator %q", body)
}
