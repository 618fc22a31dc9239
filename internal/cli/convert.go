package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/querylift/querylift/internal/bundle"
	"github.com/querylift/querylift/internal/extract"
	"github.com/querylift/querylift/internal/parser"
	"github.com/querylift/querylift/internal/resolver"
)

// ConvertOptions holds flags for the convert command.
type ConvertOptions struct {
	*RootOptions
	InputOptions
	Query    string // root query name
	All      bool   // convert the whole set instead of one root
	Output   string // output file path
	Result   string // Python variable for the root's result
	Tables   string // directory of <table>.csv files to embed
	Workbook string // workbook path for the read_excel template comment
}

// NewConvertCommand creates the convert command.
func NewConvertCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConvertOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert M queries to a pandas document",
		Long: `Convert Power Query M queries to one runnable pandas document.

The root query and everything it references are emitted dependency-first.
Steps outside the recognized construct set degrade to a marked comment
plus a passthrough placeholder; they warn but never fail the conversion.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(opts, cmd)
		},
	}

	AddInputFlags(cmd, &opts.InputOptions)
	cmd.Flags().StringVarP(&opts.Query, "query", "q", "", "root query name (default: the only query)")
	cmd.Flags().BoolVar(&opts.All, "all", false, "convert every query in the input")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path (default: stdout)")
	cmd.Flags().StringVar(&opts.Result, "result", "", "Python variable bound to the result (default: result)")
	cmd.Flags().StringVar(&opts.Tables, "tables", "", "directory of <table>.csv files to embed as workbook tables")
	cmd.Flags().StringVar(&opts.Workbook, "workbook", "", "workbook path for the generated read_excel template")

	return cmd
}

func runConvert(opts *ConvertOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	sources, err := opts.Load()
	if err != nil {
		_ = formatter.Error(ErrCodeInput, err.Error(), nil)
		return err
	}
	formatter.VerboseLog("Loaded %d query(ies)", len(sources))

	bopts := bundle.Options{ResultName: opts.Result}
	if opts.Workbook != "" {
		bopts.Tables = &extract.TableContext{Path: opts.Workbook}
	}

	b, err := assembleFor(opts, sources, bopts)
	if err != nil {
		return outputConvertError(formatter, err)
	}

	// A document that reads workbook tables can embed their rows when a
	// CSV table directory is supplied. The required names are only known
	// after the first assembly.
	if len(b.Tables) > 0 && opts.Tables != "" {
		ctx := &extract.TableContext{Path: opts.Workbook}
		if err := ctx.Populate(extract.CSVTables(opts.Tables), b.Tables); err != nil {
			_ = formatter.Error(ErrCodeInput, err.Error(), nil)
			return WrapExitError(ExitCommandError, "reading table data", err)
		}
		bopts.Tables = ctx
		if b, err = assembleFor(opts, sources, bopts); err != nil {
			return outputConvertError(formatter, err)
		}
	}

	for _, u := range b.Unsupported {
		fmt.Fprintf(formatter.GetErrWriter(), "warning: unsupported step %q in query %q\n", u.Step, u.Query)
	}

	return outputConvertSuccess(formatter, b, opts.Output)
}

// assembleFor runs the rooted or whole-set assembly the flags select.
func assembleFor(opts *ConvertOptions, sources map[string]string, bopts bundle.Options) (*bundle.Bundle, error) {
	if opts.All {
		return bundle.AssembleAll(sources, nil, bopts)
	}

	root := opts.Query
	if root == "" {
		if len(sources) != 1 {
			return nil, NewExitError(ExitCommandError,
				fmt.Sprintf("input holds %d queries: pick a root with --query or use --all", len(sources)))
		}
		for name := range sources {
			root = name
		}
	}
	if _, ok := sources[root]; !ok {
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("query %q not found in input", root))
	}
	return bundle.Assemble(root, sources, nil, bopts)
}

// outputConvertSuccess emits the document: to the output file when set,
// otherwise to stdout.
func outputConvertSuccess(formatter *OutputFormatter, b *bundle.Bundle, outputFile string) error {
	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(b.Text), 0644); err != nil {
			_ = formatter.Error(ErrCodeWrite, fmt.Sprintf("writing output file: %v", err), nil)
			return WrapExitError(ExitCommandError, "writing output file", err)
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(b)
	}

	if outputFile != "" {
		fmt.Fprintf(formatter.Writer, "✓ Converted %d query(ies) to %s\n", len(b.Order), outputFile)
		return nil
	}
	fmt.Fprint(formatter.Writer, b.Text)
	return nil
}

// outputConvertError classifies an assembly failure: malformed queries,
// cycles, and unavailable references are conversion failures (exit 1),
// everything else a command error (exit 2).
func outputConvertError(formatter *OutputFormatter, err error) error {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		_ = formatter.Error(ErrCodeGeneric, exitErr.Message, nil)
		return err
	}

	code := ErrCodeGeneric
	exit := ExitCommandError
	switch {
	case parser.IsParseError(err):
		code, exit = ErrCodeParse, ExitFailure
	case resolver.IsCycleError(err):
		code, exit = ErrCodeCycle, ExitFailure
	case resolver.IsUnresolvedError(err):
		code, exit = ErrCodeUnresolved, ExitFailure
	}
	_ = formatter.Error(code, err.Error(), nil)
	return WrapExitError(exit, fmt.Sprintf("%s: %s", code, err.Error()), err)
}
