package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

// WriteCSV writes a header line followed by one line per row.
func WriteCSV(w io.Writer, d Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(d.Headers); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	record := make([]string, len(d.Headers))
	for i, row := range d.Rows {
		for j, v := range row {
			record[j] = FormatCell(v)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the rows as an array of objects keyed by header label.
func WriteJSON(w io.Writer, d Dataset) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d.Records())
}

// WriteYAML writes the rows as a sequence of mappings, keeping the header
// order within each mapping.
func WriteYAML(w io.Writer, d Dataset) error {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, row := range d.Rows {
		m := &yaml.Node{Kind: yaml.MappingNode}
		for j, h := range d.Headers {
			key := &yaml.Node{Kind: yaml.ScalarNode, Value: h}
			val := &yaml.Node{}
			if err := val.Encode(yamlValue(row[j])); err != nil {
				return fmt.Errorf("encode %q: %w", h, err)
			}
			m.Content = append(m.Content, key, val)
		}
		seq.Content = append(seq.Content, m)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(seq); err != nil {
		return err
	}
	return enc.Close()
}

func yamlValue(v any) any {
	if t, ok := v.(time.Time); ok {
		return FormatCell(t)
	}
	return v
}
