// Package output renders a CommitContext for the caller: machine JSON,
// narrator-facing markdown, or terminal text.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/narrate-dev/narrate/internal/pipeline"
)

// Writer writes a commit context in a specific format.
type Writer interface {
	Write(w io.Writer, cc *pipeline.CommitContext) error
}

// GetWriter returns a writer for the specified format.
func GetWriter(format string) (Writer, error) {
	switch format {
	case "text":
		return &TextWriter{}, nil
	case "json":
		return &JSONWriter{}, nil
	case "markdown":
		return &MarkdownWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteContext writes the context to the output path, or stdout when
// outPath is empty.
func WriteContext(cc *pipeline.CommitContext, format, outPath string) error {
	writer, err := GetWriter(format)
	if err != nil {
		return err
	}

	var w io.Writer
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
	} else {
		w = os.Stdout
	}

	return writer.Write(w, cc)
}
