package availability

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, sheet string, rows [][]string) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		require.NoError(t, f.SetSheetName("Sheet1", sheet))
	}
	for i, row := range rows {
		values := make([]interface{}, len(row))
		for j, value := range row {
			values[j] = value
		}
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cellRef, &values))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

var sampleRows = [][]string{
	{"NOME", "ÁREA DE ATUAÇÃO", "QUA 04/06", "DOM 08/06"},
	{"Ana Souza", "Filmagem", "SIM", ""},
	{"Bruno Lima", "Take", "SIM", "SIM"},
}

func TestReadXLSX(t *testing.T) {
	buf := workbook(t, "Respostas", sampleRows)

	table, err := ReadXLSX(buf, "", DefaultLayout())
	require.NoError(t, err)
	assert.Equal(t, []string{"QUA 04/06", "DOM 08/06"}, table.DateLabels)
	require.Len(t, table.Records, 2)
	assert.Equal(t, "Bruno Lima", table.Records[1].RawName)
	assert.True(t, table.Records[1].Available["DOM 08/06"])
}

func TestReadXLSX_UnknownSheet(t *testing.T) {
	buf := workbook(t, "Respostas", sampleRows)

	_, err := ReadXLSX(buf, "Outra", DefaultLayout())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `sheet "Outra" not found`)
}

func TestReadCSV(t *testing.T) {
	input := "NOME,ÁREA DE ATUAÇÃO,QUA 04/06,DOM 08/06\n" +
		"Ana Souza,Filmagem,SIM,\n" +
		"Bruno Lima,\"Filmagem, Take\",SIM,SIM\n"

	table, err := ReadCSV(strings.NewReader(input), DefaultLayout())
	require.NoError(t, err)
	require.Len(t, table.Records, 2)
	assert.Equal(t, "Filmagem, Take", table.Records[1].ActivityArea)
	assert.False(t, table.Records[0].Available["DOM 08/06"])
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "disponibilidade.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("NOME,ÁREA DE ATUAÇÃO,04/06\nAna Souza,Take,SIM\n"), 0644))

	xlsxPath := filepath.Join(dir, "disponibilidade.xlsx")
	require.NoError(t, os.WriteFile(xlsxPath, workbook(t, "Sheet1", sampleRows).Bytes(), 0644))

	txtPath := filepath.Join(dir, "disponibilidade.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte("whatever"), 0644))

	table, err := NewFileSource(csvPath, "", DefaultLayout()).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, table.Records, 1)

	table, err = NewFileSource(xlsxPath, "", DefaultLayout()).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, table.Records, 2)

	_, err = NewFileSource(txtPath, "", DefaultLayout()).Load(context.Background())
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = NewFileSource(filepath.Join(dir, "missing.csv"), "", DefaultLayout()).Load(context.Background())
	assert.Error(t, err)
}

func TestWriteXLSXRows_ReadsBack(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSXRows(&buf, "Disponibilidade", sampleRows))

	table, err := ReadXLSX(&buf, "Disponibilidade", DefaultLayout())
	require.NoError(t, err)
	assert.Equal(t, []string{"QUA 04/06", "DOM 08/06"}, table.DateLabels)
	assert.Len(t, table.Records, 2)
}

func TestWriteCSVRows(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSVRows(&buf, [][]string{
		{"NOME", "ÁREA DE ATUAÇÃO", "QUA 04/06"},
		{"Bruno Lima", "Filmagem, Take", "SIM"},
	}))

	assert.Equal(t, "NOME,ÁREA DE ATUAÇÃO,QUA 04/06\nBruno Lima,\"Filmagem, Take\",SIM\n", buf.String())
}
