package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/narrate-dev/narrate/internal/pipeline"
)

// JSONWriter outputs the full commit context as JSON.
type JSONWriter struct{}

func (j *JSONWriter) Write(w io.Writer, cc *pipeline.CommitContext) error {
	data, err := json.MarshalIndent(cc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	if _, err = w.Write(data); err != nil {
		return fmt.Errorf("writing JSON: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}
