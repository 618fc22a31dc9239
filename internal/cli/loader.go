package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/querylift/querylift/internal/extract"
)

// InputOptions are the shared query-source flags: exactly one of them
// selects where the M texts come from.
type InputOptions struct {
	File string // one .m file
	Zip  string // exported archive of .m entries
	Dir  string // directory of .m files
	YAML string // YAML mapping of name → text
}

// AddInputFlags registers the query-source flags on cmd.
func AddInputFlags(cmd *cobra.Command, opts *InputOptions) {
	cmd.Flags().StringVar(&opts.File, "file", "", "read one query from an .m file")
	cmd.Flags().StringVar(&opts.Zip, "zip", "", "read queries from an exported .zip of .m entries")
	cmd.Flags().StringVar(&opts.Dir, "dir", "", "read queries from a directory of .m files")
	cmd.Flags().StringVar(&opts.YAML, "yaml", "", "read queries from a YAML name: text mapping")
}

// Load reads the query set the flags select. Flag misuse and unreadable
// inputs are command errors (exit code 2).
func (o *InputOptions) Load() (map[string]string, error) {
	var source extract.QuerySource
	var path string
	set := 0
	for _, p := range []struct {
		path string
		src  extract.QuerySource
	}{
		{o.File, extract.FileQuery},
		{o.Zip, extract.ZipQueries},
		{o.Dir, extract.DirQueries},
		{o.YAML, extract.YAMLQueries},
	} {
		if p.path != "" {
			set++
			source, path = p.src, p.path
		}
	}
	if set == 0 {
		return nil, NewExitError(ExitCommandError, "no input: use one of --file, --zip, --dir, --yaml")
	}
	if set > 1 {
		return nil, NewExitError(ExitCommandError, "flags --file, --zip, --dir, --yaml are mutually exclusive")
	}

	queries, err := source(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("reading queries from %s", path), err)
	}
	return queries, nil
}
