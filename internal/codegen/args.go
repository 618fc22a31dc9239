package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/querylift/querylift/internal/scan"
)

// callArgs matches expr against a single call to fn and returns the raw
// argument text. The whole expression must be that one call: a trailing
// operator or a second call means the construct is something richer than
// the catalog entry claims, so the match fails.
func callArgs(expr, fn string) (string, bool) {
	expr = strings.TrimSpace(expr)
	prefix := fn + "("
	if !strings.HasPrefix(expr, prefix) || !strings.HasSuffix(expr, ")") {
		return "", false
	}
	inner := expr[len(prefix) : len(expr)-1]
	// The final ) must close the head call, so the inside must balance.
	if scan.CheckBalance(inner) != nil {
		return "", false
	}
	return inner, true
}

// splitArgs splits a call's argument text on top-level commas.
func splitArgs(inner string) []string {
	return scan.SplitTop(inner, ',')
}

// isCall reports whether expr is a single call to fn.
func isCall(expr, fn string) bool {
	_, ok := callArgs(expr, fn)
	return ok
}

// mUnquote parses an M string literal, unfolding the "" escape.
func mUnquote(tok string) (string, bool) {
	tok = strings.TrimSpace(tok)
	if len(tok) < 2 || tok[0] != '"' || tok[len(tok)-1] != '"' {
		return "", false
	}
	inner := tok[1 : len(tok)-1]
	return strings.ReplaceAll(inner, `""`, `"`), true
}

// braceItems splits a {..} list into its top-level items.
func braceItems(tok string) ([]string, bool) {
	tok = strings.TrimSpace(tok)
	if len(tok) < 2 || tok[0] != '{' || tok[len(tok)-1] != '}' {
		return nil, false
	}
	inner := tok[1 : len(tok)-1]
	if scan.CheckBalance(inner) != nil {
		return nil, false
	}
	return scan.SplitTop(inner, ','), true
}

// stringList parses {"a","b"} into its string values.
func stringList(tok string) ([]string, bool) {
	items, ok := braceItems(tok)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		s, ok := mUnquote(it)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

// keyList parses a join/group key argument: either one quoted column name
// or a brace list of them.
func keyList(tok string) ([]string, error) {
	tok = strings.TrimSpace(tok)
	if s, ok := mUnquote(tok); ok {
		return []string{s}, nil
	}
	if keys, ok := stringList(tok); ok && len(keys) > 0 {
		return keys, nil
	}
	return nil, fmt.Errorf("expected a column name or {\"col\", ...} list, got %q", tok)
}

// field is one key/value pair of an M record literal.
type field struct {
	key string
	val any
}

// record is an ordered M record literal. Order is preserved so the emitted
// Python dict reads like the source.
type record []field

// parseScalar parses one M value token: string, number, nested record, or
// anything else kept verbatim as a string.
func parseScalar(tok string) any {
	tok = strings.TrimSpace(tok)
	if tok == "" || strings.EqualFold(tok, "null") {
		return nil
	}
	if strings.EqualFold(tok, "true") {
		return true
	}
	if strings.EqualFold(tok, "false") {
		return false
	}
	if s, ok := mUnquote(tok); ok {
		return s
	}
	if strings.HasPrefix(tok, "[") && strings.HasSuffix(tok, "]") {
		if rec, err := parseRecord(tok[1 : len(tok)-1]); err == nil {
			return rec
		}
	}
	if n, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(tok, 64); err == nil {
		return f
	}
	return tok
}

// parseRecord parses the inside of an M record literal [k=v, ...].
func parseRecord(inner string) (record, error) {
	var rec record
	for _, part := range scan.SplitTop(inner, ',') {
		k, v, ok := scan.CutTop(part, '=')
		if !ok {
			return nil, fmt.Errorf("record field without '=': %q", part)
		}
		key := strings.Trim(strings.TrimSpace(k), `"`)
		rec = append(rec, field{key: key, val: parseScalar(v)})
	}
	return rec, nil
}

// recordOptions parses an M options record like [Delimiter=";", Encoding=65001]
// into a key → raw-token map. Later duplicates win.
func recordOptions(tok string) map[string]string {
	tok = strings.TrimSpace(tok)
	if len(tok) < 2 || tok[0] != '[' || tok[len(tok)-1] != ']' {
		return nil
	}
	opts := make(map[string]string)
	for _, part := range scan.SplitTop(tok[1:len(tok)-1], ',') {
		k, v, ok := scan.CutTop(part, '=')
		if !ok {
			continue
		}
		opts[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return opts
}
