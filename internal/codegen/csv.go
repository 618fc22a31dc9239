package codegen

import (
	"fmt"
	"strings"
)

// Csv.Document(File.Contents("file.csv"), [Delimiter=";", Encoding=65001, QuoteStyle=QuoteStyle.None])

func matchCsvDocument(expr string) bool {
	return isCall(expr, "Csv.Document")
}

// codepages maps the Encoding option values seen in exported M to pandas
// encoding names. Anything else is left to pandas' default.
var codepages = map[string]string{
	"65001": "utf-8",
	"1252":  "cp1252",
}

func genCsvDocument(c *Context, lhs, expr string) ([]string, error) {
	inner, _ := callArgs(expr, "Csv.Document")
	args := splitArgs(inner)
	if len(args) == 0 {
		return nil, fmt.Errorf("Csv.Document: missing source argument")
	}

	contents, ok := callArgs(args[0], "File.Contents")
	if !ok {
		return nil, fmt.Errorf("Csv.Document: expected File.Contents(..) source, got %q", args[0])
	}
	path, ok := mUnquote(contents)
	if !ok {
		return nil, fmt.Errorf("File.Contents: expected a string path, got %q", contents)
	}

	// Headers come later via Table.PromoteHeaders, so read headerless.
	readArgs := []string{pyStr(path), "header=None"}

	if len(args) > 1 {
		opts := recordOptions(args[1])
		if d, ok := mUnquote(opts["Delimiter"]); ok {
			readArgs = append(readArgs, fmt.Sprintf("sep=%s", pyStr(d)))
		}
		if enc, ok := codepages[opts["Encoding"]]; ok {
			readArgs = append(readArgs, fmt.Sprintf("encoding=%s", pyStr(enc)))
		}
		if opts["QuoteStyle"] == "QuoteStyle.None" {
			readArgs = append(readArgs, "quoting=3") // csv.QUOTE_NONE
		}
	}

	return []string{fmt.Sprintf("%s = pd.read_csv(%s)", lhs, strings.Join(readArgs, ", "))}, nil
}
