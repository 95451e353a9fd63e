package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAndReadXLSX(t *testing.T) {
	var buf bytes.Buffer
	err := WriteXLSX(&buf, Table{
		Sheet:   "Inventory",
		Headers: []string{"SKU", "Name", "Quantity"},
		Rows: [][]interface{}{
			{"ONT-1", "Huawei ONT", 12},
			{"CAB-5", "Patch cord 5m", 0},
		},
	})
	require.NoError(t, err)
	require.NotZero(t, buf.Len())

	rows, err := ReadRows(&buf)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"SKU", "Name", "Quantity"}, rows[0])
	assert.Equal(t, "ONT-1", rows[1][0])
	assert.Equal(t, "12", rows[1][2])
}

func TestWriteXLSX_EmptyTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, Table{Headers: []string{"ID"}}))

	rows, err := ReadRows(&buf)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestHeaderIndexAndCell(t *testing.T) {
	idx := HeaderIndex([]string{" sku ", "NAME", "Price"}, "SKU", "Name", "Location")

	assert.Equal(t, 0, idx["SKU"])
	assert.Equal(t, 1, idx["Name"])
	assert.Equal(t, -1, idx["Location"])

	row := []string{"A-1", " Router "}
	assert.Equal(t, "Router", Cell(row, idx["Name"]))
	assert.Equal(t, "", Cell(row, idx["Location"]))
	assert.Equal(t, "", Cell(row, 5))
}

func TestReadRows_NotAnXLSX(t *testing.T) {
	_, err := ReadRows(bytes.NewBufferString("just text"))
	assert.Error(t, err)
}
