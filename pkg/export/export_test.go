package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterRendersHeaderAndRowsInOrder(t *testing.T) {
	data := Dataset{
		Headers: []string{"Student Name", "Overall Zone", "Overall %"},
		Rows: []map[string]string{
			{"Overall %": "78.26", "Student Name": "Ali, Ahmed", "Overall Zone": "green"},
			{"Student Name": "Sara", "Overall Zone": "red"},
		},
	}
	payload, err := NewCSVExporter().Render(data)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(payload)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, data.Headers, records[0])
	assert.Equal(t, []string{"Ali, Ahmed", "green", "78.26"}, records[1])
	assert.Equal(t, []string{"Sara", "red", ""}, records[2])
}

func TestExportersRejectEmptyHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
	_, err = NewPDFExporter().Render(Dataset{}, "x")
	assert.Error(t, err)
}

func TestPDFExporterProducesDocument(t *testing.T) {
	rows := make([]map[string]string, 0, 80)
	for i := 0; i < 80; i++ {
		rows = append(rows, map[string]string{"Level": "Class", "Name": "XI-A", "Green": "3"})
	}
	payload, err := NewPDFExporter().Render(Dataset{Headers: []string{"Level", "Name", "Green"}, Rows: rows}, "Zone Statistics 2024-2025")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(payload, []byte("%PDF")))
}
