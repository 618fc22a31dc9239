// Package codegen turns recognized M step expressions into pandas statements.
//
// The core is an ordered catalog of pattern entries, each pairing a match
// predicate over the expression text with a generator that parses the call's
// arguments and emits equivalent Python. Dispatch tries entries in catalog
// order and takes the first match; the order is exported and testable.
//
// Failure semantics follow one rule: never fail the whole conversion over a
// single step. An expression matching no entry, or a recognized head with a
// malformed argument list, degrades to an unsupported step - one marked
// comment plus one placeholder assignment - so downstream steps still run.
package codegen
