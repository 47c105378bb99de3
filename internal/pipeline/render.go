package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ppiankov/coursegrid/internal/model"
)

// Renderer writes course records as a JSON array
type Renderer struct{}

// NewRenderer creates a new renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

// EncodeJSON writes records to w. Non-ASCII text and HTML characters are
// written as-is and there is no trailing newline. Compact output separates
// items with ", " and keys with ": "; pretty output is indented by two
// spaces.
func (r *Renderer) EncodeJSON(w io.Writer, records []model.CourseRecord, pretty bool) error {
	if records == nil {
		records = []model.CourseRecord{}
	}
	for i := range records {
		if records[i].Times == nil {
			records[i].Times = []string{}
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(records); err != nil {
		return err
	}

	out := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
	if !pretty {
		out = spaceSeparators(out)
	}
	_, err := w.Write(out)
	return err
}

// spaceSeparators adds a space after every ',' and ':' outside string
// literals of compact JSON
func spaceSeparators(compact []byte) []byte {
	out := make([]byte, 0, len(compact)+len(compact)/4)
	inString, escaped := false, false
	for _, c := range compact {
		out = append(out, c)
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case !inString && (c == ',' || c == ':'):
			out = append(out, ' ')
		}
	}
	return out
}

// RenderJSON writes records to path, replacing any existing file
func (r *Renderer) RenderJSON(records []model.CourseRecord, path string, pretty bool) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close output: %w", closeErr)
		}
	}()

	if err := r.EncodeJSON(f, records, pretty); err != nil {
		return fmt.Errorf("encode records: %w", err)
	}
	return nil
}

// RenderSummary prints the record count line
func (r *Renderer) RenderSummary(w io.Writer, count int, path string) {
	fmt.Fprintf(w, "Wrote %d records to %s\n", count, path)
}
