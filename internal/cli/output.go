package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/robdd/pkg/errors"
	"github.com/matzehuels/robdd/pkg/pipeline"
)

// stdoutPath selects standard output for a single artifact.
const stdoutPath = "-"

// basePath derives the base output path. If output is empty, def is used.
// A known format extension on output is stripped.
func basePath(output, def string) string {
	if output == "" {
		return def
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// outputPaths maps each format to its destination. A single format with an
// explicit output is written exactly there; otherwise each format gets
// base.<format>.
func outputPaths(formats []string, output, def string) (map[string]string, error) {
	if output == stdoutPath && len(formats) != 1 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "writing to stdout needs exactly one format, got %d", len(formats))
	}
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths, nil
	}
	base := basePath(output, def)
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths, nil
}

// writeArtifacts writes every requested artifact and returns the files
// written, in format order.
func writeArtifacts(artifacts map[string][]byte, formats []string, output, def string) ([]string, error) {
	paths, err := outputPaths(formats, output, def)
	if err != nil {
		return nil, err
	}

	var written []string
	for _, f := range formats {
		path := paths[f]
		if path == stdoutPath {
			if _, err := os.Stdout.Write(artifacts[f]); err != nil {
				return nil, err
			}
			continue
		}
		if err := errors.ValidatePath(path); err != nil {
			return nil, err
		}
		if err := os.WriteFile(path, artifacts[f], 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}
