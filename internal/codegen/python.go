package codegen

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/querylift/querylift/internal/ir"
)

var nonIdent = regexp.MustCompile(`[^0-9A-Za-z_]`)

// NormalizeVar turns an M binding name into a Python identifier that can be
// reused safely: #"Changed Type" becomes Changed_Type, leading digits get a
// leading underscore, and an empty result falls back to "step".
func NormalizeVar(name string) string {
	name = ir.TrimQuoted(name)
	name = nonIdent.ReplaceAllString(name, "_")
	if name != "" && name[0] >= '0' && name[0] <= '9' {
		name = "_" + name
	}
	if name == "" {
		return "step"
	}
	return name
}

// pyStr renders s as a single-quoted Python string literal.
func pyStr(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return "'" + s + "'"
}

// pyValue renders a parsed M scalar as a Python literal.
// nil renders as None; unparsed leftovers render as strings.
func pyValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "None"
	case bool:
		if x {
			return "True"
		}
		return "False"
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		if x == math.Trunc(x) && !math.IsInf(x, 0) {
			return strconv.FormatFloat(x, 'f', 1, 64)
		}
		return strconv.FormatFloat(x, 'g', -1, 64)
	case string:
		return pyStr(x)
	case record:
		return pyRecord(x)
	default:
		return pyStr(fmt.Sprint(x))
	}
}

// PyLiteral renders a plain Go value as a Python literal. Map keys are
// sorted so output is deterministic. It backs the external-table preamble,
// where caller-supplied rows get embedded into the generated document.
func PyLiteral(v any) string {
	switch x := v.(type) {
	case nil, bool, int64, float64, string:
		return pyValue(x)
	case int:
		return strconv.Itoa(x)
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = PyLiteral(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case []map[string]any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = PyLiteral(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = pyStr(k) + ": " + PyLiteral(x[k])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return pyStr(fmt.Sprint(x))
	}
}

// pyRecord renders an ordered record as a Python dict literal, preserving
// field order.
func pyRecord(r record) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(pyStr(f.key))
		b.WriteString(": ")
		b.WriteString(pyValue(f.val))
	}
	b.WriteByte('}')
	return b.String()
}

// pyRecordList renders records as a Python list-of-dicts literal.
func pyRecordList(recs []record) string {
	parts := make([]string, len(recs))
	for i, r := range recs {
		parts[i] = pyRecord(r)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// pyStrList renders names as a Python list-of-strings literal.
func pyStrList(names []string) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = pyStr(n)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// pyBoolList renders flags as a Python list of True/False.
func pyBoolList(flags []bool) string {
	parts := make([]string, len(flags))
	for i, f := range flags {
		if f {
			parts[i] = "True"
		} else {
			parts[i] = "False"
		}
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
