package resolver

import (
	"fmt"
	"sort"
	"strings"
)

// visit colors for the depth-first traversal.
const (
	white = iota // unvisited
	gray         // on the current path
	black        // emitted
)

// Resolve returns the working set of root - the root plus everything
// transitively reachable through references - in dependency-first order:
// every query appears strictly after all queries it references. The root is
// always last.
//
// known is the universe of query names used for reference scanning; nil
// means the keys of sources. The two can differ: an extractor may list a
// query whose text it could not supply, and a reference to such a name is
// an *UnresolvedError, not a structural fault. A back-edge to a query still
// on the current path is a *CycleError naming the cycle's members. Both are
// terminal: no partial order is returned.
func Resolve(root string, sources map[string]string, known map[string]bool) ([]string, error) {
	root = strings.TrimSpace(root)
	if known == nil {
		known = knownSet(sources)
	}
	if _, ok := sources[root]; !ok {
		return nil, &UnresolvedError{Query: root, Ref: root}
	}

	t := &traversal{
		sources: sources,
		known:   known,
		color:   make(map[string]int, len(sources)),
	}
	if err := t.visit(root); err != nil {
		return nil, err
	}
	return t.order, nil
}

// Order returns a deterministic dependency-first order over the whole query
// set. Roots are visited in name order, so independent components come out
// sorted.
func Order(sources map[string]string) ([]string, error) {
	names := make([]string, 0, len(sources))
	for n := range sources {
		names = append(names, n)
	}
	sort.Strings(names)

	t := &traversal{
		sources: sources,
		known:   knownSet(sources),
		color:   make(map[string]int, len(sources)),
	}
	for _, n := range names {
		if t.color[n] == white {
			if err := t.visit(n); err != nil {
				return nil, err
			}
		}
	}
	return t.order, nil
}

// traversal is one depth-first pass. Queries already emitted (black) are
// no-ops on later visits, so a query referenced by multiple others appears
// exactly once.
type traversal struct {
	sources map[string]string
	known   map[string]bool
	color   map[string]int
	path    []string
	order   []string
}

func (t *traversal) visit(name string) error {
	t.color[name] = gray
	t.path = append(t.path, name)

	for _, ref := range ScanRefs(t.sources[name], t.known) {
		if ref == name {
			continue
		}
		switch t.color[ref] {
		case black:
			continue
		case gray:
			return &CycleError{Path: cyclePath(t.path, ref)}
		}
		if _, ok := t.sources[ref]; !ok {
			return &UnresolvedError{Query: name, Ref: ref}
		}
		if err := t.visit(ref); err != nil {
			return err
		}
	}

	t.path = t.path[:len(t.path)-1]
	t.color[name] = black
	t.order = append(t.order, name)
	return nil
}

// cyclePath slices the current path from the first occurrence of ref and
// closes the loop: visiting A -> B -> C with a back-edge to B yields
// [B, C, B].
func cyclePath(path []string, ref string) []string {
	for i, n := range path {
		if n == ref {
			cycle := make([]string, 0, len(path)-i+1)
			cycle = append(cycle, path[i:]...)
			return append(cycle, ref)
		}
	}
	// Unreachable: ref is gray, so it is on the path.
	return []string{ref, ref}
}

// String renders an order for logs and the graph command.
func String(order []string) string {
	return fmt.Sprintf("[%s]", strings.Join(order, " -> "))
}
