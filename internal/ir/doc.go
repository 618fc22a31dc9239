// Package ir provides the shared data model for the M conversion engine.
//
// This package contains type definitions only. All other internal packages
// import ir; ir imports nothing internal. This keeps the model the
// foundational layer with no circular dependencies.
//
// Everything here is transient: a Query and its Steps are constructed fresh
// per conversion request and never persisted.
package ir
