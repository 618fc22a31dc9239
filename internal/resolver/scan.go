// Package resolver finds cross-query references and orders queries so that
// every query appears after everything it depends on.
//
// Reference scanning is deliberately independent of pattern recognition: a
// reference can sit inside a recognized construct's arguments (a join's
// second table, say) or inside a step the catalog does not understand at
// all, and it must be found either way.
package resolver

import (
	"regexp"
	"sort"
	"strings"

	"github.com/querylift/querylift/internal/ir"
	"github.com/querylift/querylift/internal/scan"
)

var (
	quotedRef = regexp.MustCompile(`#"((?:[^"]|"")+)"`)
	// Bare tokens include dots so that Table.Sort is one token and can
	// never collide with a query named Sort. Matching is exact and
	// whole-token only, never substring.
	bareToken = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_.]*`)
)

// mKeywords are words that are never query references.
var mKeywords = map[string]bool{
	"let": true, "in": true, "each": true, "and": true, "or": true,
	"not": true, "true": true, "false": true, "null": true, "as": true,
	"if": true, "then": true, "else": true, "error": true, "try": true,
	"otherwise": true, "type": true, "meta": true, "section": true,
}

// ScanRefs returns the known query names referenced by text, sorted.
// Both #"Quoted Name" references and bare identifiers equal to a known name
// count; occurrences inside string literals and line comments do not.
func ScanRefs(text string, known map[string]bool) []string {
	src := scan.StripStrings(scan.StripComments(text))

	refs := make(map[string]bool)
	for _, m := range quotedRef.FindAllStringSubmatch(src, -1) {
		name := strings.TrimSpace(strings.ReplaceAll(m[1], `""`, `"`))
		if known[name] {
			refs[name] = true
		}
	}

	// Blank quoted identifiers so the bare pass cannot see inside them.
	bare := quotedRef.ReplaceAllStringFunc(src, func(m string) string {
		return strings.Repeat(" ", len(m))
	})
	for _, tok := range bareToken.FindAllString(bare, -1) {
		if mKeywords[strings.ToLower(tok)] {
			continue
		}
		if known[tok] {
			refs[tok] = true
		}
	}

	out := make([]string, 0, len(refs))
	for r := range refs {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

// Edges builds the full reference edge set over sources. Self-references
// are dropped; multiplicity collapses to one edge. Edges are sorted by
// (From, To).
func Edges(sources map[string]string) []ir.Reference {
	known := knownSet(sources)
	var edges []ir.Reference
	for name, text := range sources {
		for _, ref := range ScanRefs(text, known) {
			if ref == name {
				continue
			}
			edges = append(edges, ir.Reference{From: name, To: ref})
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	return edges
}

func knownSet(sources map[string]string) map[string]bool {
	known := make(map[string]bool, len(sources))
	for name := range sources {
		known[strings.TrimSpace(name)] = true
	}
	return known
}
