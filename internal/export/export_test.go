package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

func sampleDataset() Dataset {
	columns := []Column{
		{ID: "firstName", Header: "First Name"},
		{ID: "age", Header: "Age"},
		{ID: "secret", Header: "Secret"},
		{ID: "lastUpdate", Header: "Last Update"},
	}
	rows := []map[string]any{
		{"firstName": "Tanner", "age": 33, "secret": "x", "lastUpdate": time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)},
		{"firstName": "Kevin", "age": 27, "secret": "y", "lastUpdate": time.Time{}},
	}
	return Transform(columns, rows, []string{"secret"})
}

func TestTransform(t *testing.T) {
	d := sampleDataset()

	assert.Equal(t, []string{"First Name", "Age", "Last Update"}, d.Headers)
	require.Equal(t, 2, d.Len())
	assert.Equal(t, []any{"Tanner", 33, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)}, d.Rows[0])

	records := d.Records()
	assert.Equal(t, "Kevin", records[1]["First Name"])
	assert.NotContains(t, records[0], "Secret")
}

func TestTransform_HeaderFallsBackToID(t *testing.T) {
	d := Transform([]Column{{ID: "raw"}}, []map[string]any{{"raw": 1}}, nil)
	assert.Equal(t, []string{"raw"}, d.Headers)
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatXLSX, "people.xlsx", sampleDataset()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"First Name", "Age", "Last Update"}, rows[0])
	assert.Equal(t, "Tanner", rows[1][0])
	assert.Equal(t, "33", rows[1][1])
	assert.Equal(t, []string{"Kevin", "27"}, rows[2])
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, "people.csv", sampleDataset()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"First Name", "Age", "Last Update"},
		{"Tanner", "33", "2024-01-05"},
		{"Kevin", "27", ""},
	}, records)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, "people.json", sampleDataset()))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "Tanner", got[0]["First Name"])
	assert.EqualValues(t, 33, got[0]["Age"])
}

func TestWriteYAML_KeepsHeaderOrder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatYAML, "people.yaml", sampleDataset()))

	var doc yaml.Node
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	seq := doc.Content[0]
	require.Len(t, seq.Content, 2)

	first := seq.Content[0]
	var keys []string
	for i := 0; i < len(first.Content); i += 2 {
		keys = append(keys, first.Content[i].Value)
	}
	assert.Equal(t, []string{"First Name", "Age", "Last Update"}, keys)
	assert.Equal(t, "2024-01-05", first.Content[5].Value)
}

func TestWrite_UnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, "pdf", "x.pdf", sampleDataset())

	var exportErr *Error
	require.True(t, errors.As(err, &exportErr))
	assert.Equal(t, "pdf", exportErr.Format)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", FormatXLSX, false},
		{"XLSX", FormatXLSX, false},
		{"csv", FormatCSV, false},
		{"yml", FormatYAML, false},
		{" json ", FormatJSON, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilenameAndContentType(t *testing.T) {
	assert.Equal(t, "people.xlsx", Filename("people", FormatXLSX))
	assert.Equal(t, "export.csv", Filename("  ", FormatCSV))
	assert.Contains(t, ContentType(FormatXLSX), "spreadsheetml")
	assert.Equal(t, "application/octet-stream", ContentType("pdf"))
}
