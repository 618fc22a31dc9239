// Package bundle assembles converted queries into one runnable Python
// document: dependency-first query sections, a shared import preamble, and
// the external-table guard that lets the output run with or without a
// caller-supplied table set.
package bundle
