package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/querylift/querylift/internal/codegen"
	"github.com/querylift/querylift/internal/ir"
	"github.com/querylift/querylift/internal/parser"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	InputOptions
}

// StepInfo is one step's recognition result.
type StepInfo struct {
	Name    string `json:"name"`
	Pattern string `json:"pattern"`
}

// QueryInfo summarizes one query for listing.
type QueryInfo struct {
	Name        string     `json:"name"`
	Steps       []StepInfo `json:"steps,omitempty"`
	Unsupported int        `json:"unsupported"`
	Error       string     `json:"error,omitempty"` // parse failure, if any
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queries and their recognized constructs",
		Long: `List every query of the input with its steps and the construct
each step matched. Queries that fail to parse are reported, not fatal:
listing is a survey, conversion is where parse errors stop the run.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	AddInputFlags(cmd, &opts.InputOptions)
	return cmd
}

func runList(opts *ListOptions, cmd *cobra.Command) error {
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

	names := make([]string, 0, len(sources))
	for n := range sources {
		names = append(names, n)
	}
	sort.Strings(names)

	infos := make([]QueryInfo, 0, len(names))
	for _, name := range names {
		infos = append(infos, surveyQuery(name, sources[name], names))
	}

	if formatter.Format == "json" {
		return formatter.Success(infos)
	}

	fmt.Fprintf(formatter.Writer, "✓ %d query(ies)\n\n", len(infos))
	for _, info := range infos {
		if info.Error != "" {
			fmt.Fprintf(formatter.Writer, "  %s: parse error: %s\n", info.Name, info.Error)
			continue
		}
		fmt.Fprintf(formatter.Writer, "  %s: %d step(s), %d unsupported\n",
			info.Name, len(info.Steps), info.Unsupported)
		if opts.Verbose {
			for _, s := range info.Steps {
				fmt.Fprintf(formatter.Writer, "    %s: %s\n", s.Name, s.Pattern)
			}
		}
	}
	return nil
}

// surveyQuery parses and dispatches one query to report per-step patterns.
func surveyQuery(name, source string, known []string) QueryInfo {
	info := QueryInfo{Name: name}

	q, err := parser.Parse(name, source)
	if err != nil {
		info.Error = err.Error()
		return info
	}

	res := codegen.Convert(q, codegen.NewContext(known))
	info.Unsupported = len(res.Unsupported)
	for _, step := range q.Steps {
		info.Steps = append(info.Steps, StepInfo{Name: ir.TrimQuoted(step.Name), Pattern: step.Pattern})
	}
	return info
}
