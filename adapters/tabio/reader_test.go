package tabio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fairlens/domain/table"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRead_CSVCoercion(t *testing.T) {
	path := writeTempCSV(t, "age,region,y_true\n34,north,1\n52,south,0\n,east,1\n")

	tbl, err := NewDataReader(path).Read()
	require.NoError(t, err)

	assert.Equal(t, []string{"age", "region", "y_true"}, tbl.Columns())
	require.Equal(t, 3, tbl.NumRows())
	assert.Equal(t, 34.0, tbl.Cell("age", 0))
	assert.Equal(t, "north", tbl.Cell("region", 0))
	// Blank cells load as missing.
	assert.Nil(t, tbl.Cell("age", 2))
	assert.Equal(t, 1, tbl.MissingCount("age"))
}

func TestRead_MissingFile(t *testing.T) {
	_, err := NewDataReader("/no/such/file.csv").Read()
	assert.Error(t, err)
}

func TestRead_HeaderOnly(t *testing.T) {
	path := writeTempCSV(t, "age,region\n")
	_, err := NewDataReader(path).Read()
	assert.Error(t, err)
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	tbl := table.New()
	require.NoError(t, tbl.AddColumn("Feature Name", []interface{}{"region", "region"}))
	require.NoError(t, tbl.AddColumn("Obs.", []interface{}{2.0, 4.0}))

	path := filepath.Join(t.TempDir(), "report.csv")
	require.NoError(t, WriteCSV(tbl, path))

	back, err := NewDataReader(path).Read()
	require.NoError(t, err)
	assert.Equal(t, tbl.Columns(), back.Columns())
	assert.Equal(t, 2.0, back.Cell("Obs.", 0))
	assert.Equal(t, "region", back.Cell("Feature Name", 1))
}

func TestWriteExcel_RoundTrip(t *testing.T) {
	tbl := table.New()
	require.NoError(t, tbl.AddColumn("Measure", []interface{}{"MAE", "MSE"}))
	require.NoError(t, tbl.AddColumn("Score", []interface{}{1.5, 2.25}))

	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, WriteExcel(tbl, path, "Scores"))

	back, err := NewDataReader(path).Read()
	require.NoError(t, err)
	assert.Equal(t, []string{"Measure", "Score"}, back.Columns())
	assert.Equal(t, 1.5, back.Cell("Score", 0))
	assert.Equal(t, "MSE", back.Cell("Measure", 1))
}

func TestColumn_Extraction(t *testing.T) {
	tbl := table.New()
	require.NoError(t, tbl.AddColumn("y_true", []interface{}{1.0, 0.0}))

	vals, err := Column(tbl, "y_true")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0}, vals)

	_, err = Column(tbl, "absent")
	assert.Error(t, err)
}
