package codegen

import (
	"fmt"
	"regexp"
	"strings"
)

// Table.SelectRows(Source, each [B] = "X" and [A] >= 2)

func matchSelectRows(expr string) bool {
	return isCall(expr, "Table.SelectRows")
}

var (
	colRef  = regexp.MustCompile(`\[([^\[\]]+)\]`)
	andWord = regexp.MustCompile(`(?i)\band\b`)
	orWord  = regexp.MustCompile(`(?i)\bor\b`)
	notWord = regexp.MustCompile(`(?i)\bnot\b`)
	nullLit = regexp.MustCompile(`(?i)\bnull\b`)
	trueLit = regexp.MustCompile(`(?i)\btrue\b`)
	falsLit = regexp.MustCompile(`(?i)\bfalse\b`)
)

func genSelectRows(c *Context, lhs, expr string) ([]string, error) {
	inner, _ := callArgs(expr, "Table.SelectRows")
	args := splitArgs(inner)
	if len(args) != 2 {
		return nil, fmt.Errorf("Table.SelectRows: expected table and predicate, got %d arguments", len(args))
	}
	src := c.resolve(args[0])

	pred, ok := strings.CutPrefix(strings.TrimSpace(args[1]), "each ")
	if !ok {
		return nil, fmt.Errorf("Table.SelectRows: expected an each predicate, got %q", args[1])
	}

	cond, err := translatePredicate(src, strings.TrimSpace(pred))
	if err != nil {
		return nil, fmt.Errorf("Table.SelectRows: %w", err)
	}

	return []string{fmt.Sprintf("%s = %s[%s].copy()", lhs, src, cond)}, nil
}

// translatePredicate rewrites a simple M row predicate into a pandas
// boolean mask over src:
//
//	[Col]        → src['Col']
//	<>           → !=
//	bare =       → ==
//	and, or, not → &, |, ~
//	null/true/false → None/True/False
//
// Each and/or operand is parenthesized because & and | bind tighter than
// comparisons in Python.
func translatePredicate(src, pred string) (string, error) {
	if pred == "" {
		return "", fmt.Errorf("empty predicate")
	}

	cond := colRef.ReplaceAllStringFunc(pred, func(m string) string {
		col := m[1 : len(m)-1]
		return fmt.Sprintf("%s[%s]", src, pyStr(strings.TrimSpace(col)))
	})

	cond = strings.ReplaceAll(cond, "<>", "!=")
	cond = rewriteBareEquals(cond)

	cond = andWord.ReplaceAllString(cond, ") & (")
	cond = orWord.ReplaceAllString(cond, ") | (")
	cond = notWord.ReplaceAllString(cond, "~")

	cond = nullLit.ReplaceAllString(cond, "None")
	cond = trueLit.ReplaceAllString(cond, "True")
	cond = falsLit.ReplaceAllString(cond, "False")

	return "(" + cond + ")", nil
}

// rewriteBareEquals turns a lone = into ==, leaving <=, >=, ==, != and
// anything inside string literals untouched.
func rewriteBareEquals(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)
	inStr := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch == '"' {
			inStr = !inStr
			b.WriteByte(ch)
			continue
		}
		if ch == '=' && !inStr {
			prevOp := i > 0 && strings.IndexByte("<>=!", s[i-1]) >= 0
			nextEq := i+1 < len(s) && s[i+1] == '='
			if !prevOp && !nextEq {
				b.WriteString("==")
				continue
			}
		}
		b.WriteByte(ch)
	}
	return b.String()
}
