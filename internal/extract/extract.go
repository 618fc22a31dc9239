// Package extract defines the collaborator contracts for pulling query
// texts and live table contents out of a workbook, plus static
// implementations that need no spreadsheet application.
//
// The engine depends on the contracts only: a platform-specific extractor
// (COM automation, say) satisfies the same two function signatures as the
// static readers here, and tests inject plain maps.
package extract

import "fmt"

// Row is one table row as a column → value mapping.
type Row = map[string]any

// QuerySource extracts every query's raw M text from a workbook path.
type QuerySource func(path string) (map[string]string, error)

// TableSource extracts the named workbook tables as row data. Names the
// source cannot find come back as empty, not as errors: the generated
// document guards against absent tables itself.
type TableSource func(path string, names []string) (map[string][]Row, error)

// TableContext is the external table set for one conversion: the tables a
// bundle's generated code will read. It is caller-owned; the engine only
// ever reads it. A nil or empty context still produces a runnable document,
// because the emitted guard initializes the mapping to empty tables.
type TableContext struct {
	// Path is the workbook the tables came from, used in the generated
	// template comment. Optional.
	Path string

	// Tables maps table name to rows. Optional: when present, the rows
	// are embedded into the generated document so it runs standalone.
	Tables map[string][]Row
}

// Rows returns the rows for name, or nil.
func (c *TableContext) Rows(name string) []Row {
	if c == nil {
		return nil
	}
	return c.Tables[name]
}

// Populate fills the context's tables through src. Only the requested
// names are fetched.
func (c *TableContext) Populate(src TableSource, names []string) error {
	if src == nil {
		return fmt.Errorf("no table source configured")
	}
	tables, err := src(c.Path, names)
	if err != nil {
		return fmt.Errorf("extracting tables: %w", err)
	}
	c.Tables = tables
	return nil
}
