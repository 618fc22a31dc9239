package extract

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ZipQueries reads every .m entry of a zip archive (the layout Power Query
// export tooling produces) into a name → text mapping. The entry's base
// name without the extension is the query name.
func ZipQueries(path string) (map[string]string, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening archive %s: %w", path, err)
	}
	defer archive.Close()

	queries := make(map[string]string)
	for _, entry := range archive.File {
		if !strings.HasSuffix(entry.Name, ".m") {
			continue
		}
		f, err := entry.Open()
		if err != nil {
			return nil, fmt.Errorf("opening entry %s: %w", entry.Name, err)
		}
		text, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("reading entry %s: %w", entry.Name, err)
		}
		queries[queryNameFromFile(entry.Name)] = string(text)
	}
	if len(queries) == 0 {
		return nil, fmt.Errorf("no .m entries in %s", path)
	}
	return queries, nil
}

// DirQueries reads every *.m file of a directory into a name → text
// mapping, one query per file.
func DirQueries(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	queries := make(map[string]string)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".m") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", e.Name(), err)
		}
		queries[queryNameFromFile(e.Name())] = string(data)
	}
	if len(queries) == 0 {
		return nil, fmt.Errorf("no .m files in %s", dir)
	}
	return queries, nil
}

// YAMLQueries reads a query set from a YAML mapping of name → M text.
func YAMLQueries(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var queries map[string]string
	if err := yaml.Unmarshal(data, &queries); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(queries) == 0 {
		return nil, fmt.Errorf("no queries in %s", path)
	}
	return queries, nil
}

// FileQuery reads one .m file as a single-query set named after the file.
func FileQuery(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return map[string]string{queryNameFromFile(path): string(data)}, nil
}

// queryNameFromFile derives a query name from a file or archive entry path.
func queryNameFromFile(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	return strings.TrimSuffix(base, filepath.Ext(base))
}
