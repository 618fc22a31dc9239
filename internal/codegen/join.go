package codegen

import (
	"fmt"
	"strings"
)

// Table.Join(A, "k", B, "k", JoinKind.Inner)
// Table.Join(A, {"k1","k2"}, B, {"k1","k2"}, "Prefix", JoinKind.LeftOuter)

func matchJoin(expr string) bool {
	return isCall(expr, "Table.Join")
}

// joinKinds maps M join kinds onto pandas merge how= values.
var joinKinds = map[string]string{
	"JoinKind.Inner":      "inner",
	"JoinKind.LeftOuter":  "left",
	"JoinKind.RightOuter": "right",
	"JoinKind.FullOuter":  "outer",
}

func genJoin(c *Context, lhs, expr string) ([]string, error) {
	inner, _ := callArgs(expr, "Table.Join")
	args := splitArgs(inner)
	if len(args) < 4 {
		return nil, fmt.Errorf("Table.Join: expected at least 4 arguments, got %d", len(args))
	}

	left := c.resolve(args[0])
	leftKeys, err := keyList(args[1])
	if err != nil {
		return nil, fmt.Errorf("Table.Join: left keys: %w", err)
	}
	right := c.resolve(args[2])
	rightKeys, err := keyList(args[3])
	if err != nil {
		return nil, fmt.Errorf("Table.Join: right keys: %w", err)
	}
	if len(leftKeys) != len(rightKeys) {
		return nil, fmt.Errorf("Table.Join: key count mismatch (%d vs %d)", len(leftKeys), len(rightKeys))
	}

	// Optional trailing arguments: a column prefix string (ignored; pandas
	// suffixes collisions itself) and the join kind.
	how := "inner"
	for _, a := range args[4:] {
		a = strings.TrimSpace(a)
		if k, ok := joinKinds[a]; ok {
			how = k
		} else if _, isStr := mUnquote(a); !isStr {
			return nil, fmt.Errorf("Table.Join: unknown join kind %q", a)
		}
	}

	return []string{fmt.Sprintf(
		"%s = pd.merge(%s, %s, how=%s, left_on=%s, right_on=%s)",
		lhs, left, right, pyStr(how), pyStrList(leftKeys), pyStrList(rightKeys),
	)}, nil
}
