package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/querylift/querylift/internal/ir"
	"github.com/querylift/querylift/internal/resolver"
)

// GraphOptions holds flags for the graph command.
type GraphOptions struct {
	*RootOptions
	InputOptions
}

// GraphResult is the dependency graph of the input set.
type GraphResult struct {
	Order []string       `json:"order"`
	Edges []ir.Reference `json:"edges,omitempty"`
}

// NewGraphCommand creates the graph command.
func NewGraphCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GraphOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Show query references and the conversion order",
		Long: `Show the reference edges between queries and the dependency-first
order a whole-set conversion would use. A cyclic input is reported as a
failure, the same way convert would refuse it.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(opts, cmd)
		},
	}

	AddInputFlags(cmd, &opts.InputOptions)
	return cmd
}

func runGraph(opts *GraphOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	sources, err := opts.Load()
	if err != nil {
		_ = formatter.Error(ErrCodeInput, err.Error(), nil)
		return err
	}

	order, err := resolver.Order(sources)
	if err != nil {
		code := ErrCodeGeneric
		if resolver.IsCycleError(err) {
			code = ErrCodeCycle
		}
		_ = formatter.Error(code, err.Error(), nil)
		return WrapExitError(ExitFailure, fmt.Sprintf("%s: %s", code, err.Error()), err)
	}

	result := &GraphResult{Order: order, Edges: resolver.Edges(sources)}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "Order: %s\n", resolver.String(result.Order))
	if len(result.Edges) == 0 {
		fmt.Fprintln(formatter.Writer, "No references between queries")
		return nil
	}
	fmt.Fprintln(formatter.Writer, "References:")
	for _, e := range result.Edges {
		fmt.Fprintf(formatter.Writer, "  %s -> %s\n", e.From, e.To)
	}
	return nil
}
