// Package export turns table rows into spreadsheet, CSV, JSON or YAML files.
//
// Export is two steps. Transform maps each column id to its header label and
// drops excluded columns, producing a Dataset in column order. A writer then
// serializes the Dataset, or the caller's callback receives Dataset.Records
// instead. Failures are returned as *Error and are never retried.
package export

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"
)

const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// SheetName is the name of the single worksheet in XLSX exports.
const SheetName = "Exported"

// DefaultFilename is used when no export filename is configured.
const DefaultFilename = "export"

// ErrUnknownFormat is returned for formats other than the Format constants.
var ErrUnknownFormat = errors.New("unknown export format")

// Column names one exportable column.
type Column struct {
	ID     string
	Header string
}

// Dataset is the transformed export: header labels and one value per
// header for each row.
type Dataset struct {
	Headers []string
	Rows    [][]any
}

// Len returns the number of rows.
func (d Dataset) Len() int { return len(d.Rows) }

// Records returns the rows as maps keyed by header label.
func (d Dataset) Records() []map[string]any {
	out := make([]map[string]any, len(d.Rows))
	for i, row := range d.Rows {
		rec := make(map[string]any, len(d.Headers))
		for j, h := range d.Headers {
			rec[h] = row[j]
		}
		out[i] = rec
	}
	return out
}

// Transform maps raw rows (keyed by column id) to a Dataset. Excluded column
// ids are dropped; column order is kept. Columns without a header use their id.
func Transform(columns []Column, rows []map[string]any, exclude []string) Dataset {
	kept := make([]Column, 0, len(columns))
	for _, c := range columns {
		if slices.Contains(exclude, c.ID) {
			continue
		}
		kept = append(kept, c)
	}

	d := Dataset{
		Headers: make([]string, len(kept)),
		Rows:    make([][]any, len(rows)),
	}
	for i, c := range kept {
		d.Headers[i] = c.Header
		if d.Headers[i] == "" {
			d.Headers[i] = c.ID
		}
	}
	for i, raw := range rows {
		row := make([]any, len(kept))
		for j, c := range kept {
			row[j] = raw[c.ID]
		}
		d.Rows[i] = row
	}
	return d
}

// Error reports a failed export.
type Error struct {
	Format   string
	Filename string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("export failed (%s %s): %v", e.Format, e.Filename, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ParseFormat normalizes a format name. Empty means XLSX.
func ParseFormat(s string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(s)); f {
	case "", FormatXLSX:
		return FormatXLSX, nil
	case FormatCSV, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Filename appends the format's extension to base.
func Filename(base, format string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		base = DefaultFilename
	}
	return base + "." + format
}

// ContentType returns the MIME type for a format.
func ContentType(format string) string {
	switch format {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatJSON:
		return "application/json"
	case FormatYAML:
		return "application/yaml"
	default:
		return "application/octet-stream"
	}
}

// Write serializes d in the given format. Any failure is returned as *Error.
func Write(w io.Writer, format, filename string, d Dataset) error {
	var err error
	switch format {
	case FormatXLSX:
		err = WriteXLSX(w, d)
	case FormatCSV:
		err = WriteCSV(w, d)
	case FormatJSON:
		err = WriteJSON(w, d)
	case FormatYAML:
		err = WriteYAML(w, d)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return &Error{Format: format, Filename: filename, Err: err}
	}
	return nil
}

// FormatCell renders a value for text based formats.
func FormatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case time.Time:
		if val.IsZero() {
			return ""
		}
		return val.Format("2006-01-02")
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
