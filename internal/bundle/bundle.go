package bundle

import (
	"fmt"
	"sort"
	"strings"

	"github.com/querylift/querylift/internal/codegen"
	"github.com/querylift/querylift/internal/extract"
	"github.com/querylift/querylift/internal/parser"
	"github.com/querylift/querylift/internal/resolver"
)

// Options tune one assembly.
type Options struct {
	// ResultName is the Python variable bound to the root query's output
	// at the end of the document. Defaults to "result".
	ResultName string

	// Tables supplies external table rows to embed. Nil embeds nothing:
	// the guard still runs, initializing every required table to empty.
	Tables *extract.TableContext
}

// UnsupportedStep locates one step that fell through the catalog.
type UnsupportedStep struct {
	Query string `json:"query"`
	Step  string `json:"step"`
}

// Bundle is one assembled document plus its provenance.
type Bundle struct {
	// Root is the requested query, empty when the whole set was assembled.
	Root string `json:"root,omitempty"`

	// Order lists the included queries, dependency-first.
	Order []string `json:"order"`

	// Tables lists the workbook tables the document reads, sorted.
	Tables []string `json:"tables,omitempty"`

	// Unsupported lists every step that degraded to a placeholder.
	Unsupported []UnsupportedStep `json:"unsupported,omitempty"`

	// Text is the complete Python document.
	Text string `json:"text"`

	// Results holds per-query conversion output in Order order.
	Results []*codegen.Result `json:"-"`
}

// Assemble converts root and everything it transitively references into one
// Python document. Unsupported steps degrade locally and are reported on the
// returned Bundle; parse failures, cycles, and unresolved references are
// terminal.
func Assemble(root string, sources map[string]string, known map[string]bool, opts Options) (*Bundle, error) {
	order, err := resolver.Resolve(root, sources, known)
	if err != nil {
		return nil, err
	}
	if opts.ResultName == "" {
		opts.ResultName = "result"
	}
	b, err := assemble(order, sources, known, opts)
	if err != nil {
		return nil, err
	}
	b.Root = root
	return b, nil
}

// AssembleAll converts every query of the set into one document, in the
// deterministic global dependency-first order. No result binding is emitted;
// each query stays bound to its own normalized name.
func AssembleAll(sources map[string]string, known map[string]bool, opts Options) (*Bundle, error) {
	order, err := resolver.Order(sources)
	if err != nil {
		return nil, err
	}
	opts.ResultName = ""
	return assemble(order, sources, known, opts)
}

func assemble(order []string, sources map[string]string, known map[string]bool, opts Options) (*Bundle, error) {
	names := knownNames(sources, known)
	b := &Bundle{Order: order}

	tableSet := make(map[string]bool)
	for _, name := range order {
		q, err := parser.Parse(name, sources[name])
		if err != nil {
			return nil, err
		}
		res := codegen.Convert(q, codegen.NewContext(names))
		b.Results = append(b.Results, res)
		for _, t := range res.Tables {
			tableSet[t] = true
		}
		for _, step := range res.Unsupported {
			b.Unsupported = append(b.Unsupported, UnsupportedStep{Query: name, Step: step})
		}
	}
	b.Tables = sortedKeys(tableSet)
	b.Text = render(b, opts)
	return b, nil
}

// render lays the document out: preamble, table guard, one section per
// query, and the result binding for a rooted assembly.
func render(b *Bundle, opts Options) string {
	var w strings.Builder
	w.WriteString("import pandas as pd\n")

	if len(b.Tables) > 0 {
		w.WriteString("\n")
		writeTableGuard(&w, b.Tables, opts.Tables)
	}

	for _, res := range b.Results {
		w.WriteString("\n")
		fmt.Fprintf(&w, "# === %s ===\n", res.Query.Name)
		for _, line := range res.Lines {
			w.WriteString(line)
			w.WriteString("\n")
		}
		queryVar := codegen.NormalizeVar(res.Query.Name)
		if queryVar != res.OutputVar {
			fmt.Fprintf(&w, "%s = %s\n", queryVar, res.OutputVar)
		}
	}

	if opts.ResultName != "" && len(b.Results) > 0 {
		last := b.Results[len(b.Results)-1]
		rootVar := codegen.NormalizeVar(last.Query.Name)
		if opts.ResultName != rootVar {
			fmt.Fprintf(&w, "\n%s = %s\n", opts.ResultName, rootVar)
		}
	}
	return w.String()
}

// writeTableGuard emits the external-table preamble: the guard creates the
// mapping only when the caller has not already provided one, so the same
// document runs standalone and embedded.
func writeTableGuard(w *strings.Builder, tables []string, ctx *extract.TableContext) {
	fmt.Fprintf(w, "# External workbook tables: %s\n", strings.Join(tables, ", "))
	w.WriteString("try:\n")
	fmt.Fprintf(w, "    %s\n", codegen.ExternalTableVar)
	w.WriteString("except NameError:\n")
	fmt.Fprintf(w, "    %s = {\n", codegen.ExternalTableVar)
	for _, name := range tables {
		rows := ctx.Rows(name)
		if len(rows) == 0 {
			fmt.Fprintf(w, "        %s: [],\n", codegen.PyLiteral(name))
			continue
		}
		fmt.Fprintf(w, "        %s: %s,\n", codegen.PyLiteral(name), codegen.PyLiteral(rows))
	}
	w.WriteString("    }\n")

	path := "workbook.xlsx"
	if ctx != nil && ctx.Path != "" {
		path = ctx.Path
	}
	w.WriteString("# To read them live from the workbook instead:\n")
	fmt.Fprintf(w, "# %s = {name: df.to_dict('records') for name, df in\n", codegen.ExternalTableVar)
	fmt.Fprintf(w, "#         pd.read_excel(%s, sheet_name=None).items()}\n", codegen.PyLiteral(path))
}

func knownNames(sources map[string]string, known map[string]bool) []string {
	if known == nil {
		known = make(map[string]bool, len(sources))
		for n := range sources {
			known[n] = true
		}
	}
	return sortedKeys(known)
}

func sortedKeys(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
