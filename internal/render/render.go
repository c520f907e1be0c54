// Package render writes command reports as an aligned text table, JSON or YAML.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/lherron/dedupe/internal/domain"
)

// Format represents an output format
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates a --format value
func ParseFormat(s string) (Format, error) {
	if err := domain.ValidateFormat(s); err != nil {
		return "", err
	}
	return Format(s), nil
}

// Renderer handles output rendering
type Renderer struct {
	writer io.Writer
	format Format
}

// NewRenderer creates a new renderer
func NewRenderer(writer io.Writer, format Format) *Renderer {
	if format == "" {
		format = FormatTable
	}
	return &Renderer{writer: writer, format: format}
}

// Structured reports whether the renderer emits a machine-readable document
// instead of text
func (r *Renderer) Structured() bool {
	return r.format != FormatTable
}

// Document writes data as JSON or YAML. It is a no-op for the table format.
func (r *Renderer) Document(data interface{}) error {
	switch r.format {
	case FormatJSON:
		return r.RenderJSON(data)
	case FormatYAML:
		return r.RenderYAML(data)
	default:
		return nil
	}
}

// RenderJSON renders data as indented JSON
func (r *Renderer) RenderJSON(data interface{}) error {
	encoder := json.NewEncoder(r.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// RenderYAML renders data as YAML
func (r *Renderer) RenderYAML(data interface{}) error {
	encoder := yaml.NewEncoder(r.writer)
	encoder.SetIndent(2)
	defer encoder.Close()
	return encoder.Encode(data)
}

// Printf writes a line of text in table mode only
func (r *Renderer) Printf(format string, args ...interface{}) {
	if r.Structured() {
		return
	}
	fmt.Fprintf(r.writer, format, args...)
}

// RenderTable renders rows under headers with columns padded to the widest
// cell. Nothing is written when there are no rows.
func (r *Renderer) RenderTable(headers []string, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], utf8.RuneCountInString(cell))
			}
		}
	}

	if err := r.renderTableRow(headers, widths); err != nil {
		return err
	}
	if err := r.renderTableSeparator(widths); err != nil {
		return err
	}
	for _, row := range rows {
		if err := r.renderTableRow(row, widths); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) renderTableRow(cells []string, widths []int) error {
	var b strings.Builder
	for i, cell := range cells {
		if i >= len(widths) {
			break
		}
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(cell)
		// Last column is not padded
		if i < len(cells)-1 {
			b.WriteString(strings.Repeat(" ", widths[i]-utf8.RuneCountInString(cell)))
		}
	}
	b.WriteByte('\n')
	_, err := io.WriteString(r.writer, b.String())
	return err
}

func (r *Renderer) renderTableSeparator(widths []int) error {
	parts := make([]string, len(widths))
	for i, width := range widths {
		parts[i] = strings.Repeat("-", width)
	}
	_, err := fmt.Fprintln(r.writer, strings.Join(parts, "  "))
	return err
}
