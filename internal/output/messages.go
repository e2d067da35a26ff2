package output

import (
	"fmt"
	"io"

	"github.com/dshills/sawmill/internal/model"
)

// ListWriter writes a flat list of messages, as shown by the show command.
type ListWriter interface {
	WriteMessages(w io.Writer, msgs []model.Message) error
}

// ListFormats lists the supported message listing formats.
func ListFormats() []string {
	return []string{"text", "json", "count"}
}

// GetListWriter returns a message listing writer for the specified format.
func GetListWriter(format string, opts Options) (ListWriter, error) {
	switch format {
	case "text", "":
		return &TextListWriter{Options: opts}, nil
	case "json":
		return &JSONListWriter{}, nil
	case "count":
		return &CountWriter{Options: opts}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// TextListWriter prints each message's raw text, coloured by severity.
type TextListWriter struct {
	Options
}

func (t *TextListWriter) WriteMessages(w io.Writer, msgs []model.Message) error {
	ew := &errWriter{w: w}
	p := painter{enabled: t.Color}
	scheme := t.scheme()
	for _, m := range msgs {
		ew.println(p.paint(scheme.Style(m.Severity), m.RawText))
	}
	return ew.err
}

// JSONListWriter prints the messages as a JSON array.
type JSONListWriter struct{}

func (j *JSONListWriter) WriteMessages(w io.Writer, msgs []model.Message) error {
	if msgs == nil {
		msgs = []model.Message{}
	}
	return writeJSON(w, msgs)
}

// CountWriter prints per-severity counts in scheme order and a total.
type CountWriter struct {
	Options
}

func (c *CountWriter) WriteMessages(w io.Writer, msgs []model.Message) error {
	ew := &errWriter{w: w}
	scheme := c.scheme()
	counts := make(map[string]int)
	for _, m := range msgs {
		counts[m.Severity]++
	}
	for _, sev := range severityOrder(scheme, counts) {
		ew.printf("%-18s %d\n", scheme.DisplayName(sev), counts[sev])
	}
	ew.printf("%-18s %d\n", "Total", len(msgs))
	return ew.err
}
