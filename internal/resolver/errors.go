package resolver

import (
	"errors"
	"fmt"
	"strings"
)

// CycleError reports a reference cycle among queries. A cycle is a terminal
// error: the resolver never returns a partial or arbitrary order.
type CycleError struct {
	// Path is the cycle as visited, ending where it started:
	// ["A", "B", "A"].
	Path []string
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	return fmt.Sprintf("cyclic dependency: %s", strings.Join(e.Path, " -> "))
}

// IsCycleError reports whether err is (or wraps) a CycleError.
func IsCycleError(err error) bool {
	var ce *CycleError
	return errors.As(err, &ce)
}

// UnresolvedError reports a scanned reference to a name absent from the
// known-query lookup: an external or unresolvable dependency, not a
// structural fault in the graph.
type UnresolvedError struct {
	Query string // the referencing query
	Ref   string // the missing name
}

// Error implements the error interface.
func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("query %q references unknown query %q", e.Query, e.Ref)
}

// IsUnresolvedError reports whether err is (or wraps) an UnresolvedError.
func IsUnresolvedError(err error) bool {
	var ue *UnresolvedError
	return errors.As(err, &ue)
}
