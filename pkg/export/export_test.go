package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tosih/denso-rom-tool/pkg/models"
)

func TestMain(m *testing.M) {
	pterm.DisableOutput()
	os.Exit(m.Run())
}

func tables() ([]*models.Table2D, []*models.Table3D) {
	t2 := []*models.Table2D{
		{
			Location: 0x3200, CountX: 2, Type: models.UInt16,
			RangeX: models.ByteRange{Pos: 0x2600, Size: 8}, RangeY: models.ByteRange{Pos: 0x2500, Size: 4},
			ValuesX: []float32{1, 2}, ValuesY: []float32{5, 6},
			Metadata: models.Metadata{Selected: true},
		},
		{
			Location: 0x3000, CountX: 3, Type: models.UInt8,
			Scale: &models.AffineScale{Multiplier: 0.5, Offset: -10},
			RangeX: models.ByteRange{Pos: 0x2000, Size: 12}, RangeY: models.ByteRange{Pos: 0x2100, Size: 3},
			ValuesX: []float32{800, 1600, 2400}, ValuesY: []float32{1.5, 2.25, 3},
			Metadata: models.Metadata{Title: "Boost Target", Category: "Boost", NameX: "Engine Speed", UnitX: "rpm", UnitY: "kPa"},
		},
		{Location: 0x3400, CountX: 2, Type: models.Float32, ValuesX: []float32{1, 2}, ValuesY: []float32{0.25, 0.5}},
	}
	t3 := []*models.Table3D{
		{
			Location: 0x3100, CountX: 2, CountY: 2, Type: models.Int16,
			RangeX: models.ByteRange{Pos: 0x2200, Size: 8}, RangeY: models.ByteRange{Pos: 0x2300, Size: 8},
			RangeZ: models.ByteRange{Pos: 0x2400, Size: 8},
			ValuesX: []float32{10, 20}, ValuesY: []float32{100, 200},
			ValuesZ: []float32{1, 2, 3, 4},
			Metadata: models.Metadata{Title: "Timing", NameY: "Load", UnitY: "g/rev", UnitZ: "deg"},
		},
	}
	return t2, t3
}

func TestSelect(t *testing.T) {
	t2, t3 := tables()

	tests := []struct {
		sel    Selection
		want2D []int
		want3D int
	}{
		{All, []int{0x3000, 0x3200, 0x3400}, 1},
		{Selected, []int{0x3200}, 0},
		{Annotated, []int{0x3000}, 1},
		{Stored, []int{0x3000, 0x3200}, 1},
	}
	for _, tt := range tests {
		got2, got3 := Select(t2, t3, tt.sel)
		var locs []int
		for _, t := range got2 {
			locs = append(locs, t.Location)
		}
		assert.Equal(t, tt.want2D, locs)
		assert.Len(t, got3, tt.want3D)
	}
	assert.Equal(t, 0x3200, t2[0].Location, "input order untouched")
}

func TestParseSelection(t *testing.T) {
	sel, err := ParseSelection("Annotated")
	require.NoError(t, err)
	assert.Equal(t, Annotated, sel)

	_, err = ParseSelection("some")
	require.Error(t, err)
}

func TestWriteDefinition(t *testing.T) {
	t2, t3 := tables()
	t2, t3 = Select(t2, t3, Stored)

	var buf bytes.Buffer
	require.NoError(t, WriteDefinition(&buf, t2, t3))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, definitionHeader, rows[0])
	assert.Equal(t, []string{
		"table2D", "Boost", "12288", "rpm", "Engine Speed", "", "", "kPa",
		"3", "0", "uint8", "8192", "0", "8448", "0.5", "-10", "Boost Target",
	}, rows[1])
	assert.Equal(t, "0", rows[2][14], "no scale")
	assert.Equal(t, []string{
		"table3D", "", "12544", "", "", "g/rev", "Load", "deg",
		"2", "2", "int16", "8704", "8960", "9216", "0", "0", "Timing",
	}, rows[3])
}

func TestWriteTable2D(t *testing.T) {
	t2, _ := tables()
	var buf bytes.Buffer
	require.NoError(t, WriteTable2D(&buf, t2[1]))
	assert.Equal(t, "Engine Speed [rpm],Boost Target [kPa]\n800,1.5\n1600,2.25\n2400,3\n", buf.String())
}

func TestWriteTable3D(t *testing.T) {
	_, t3 := tables()
	var buf bytes.Buffer
	require.NoError(t, WriteTable3D(&buf, t3[0]))
	assert.Equal(t, "Load [g/rev] \\  [],10,20\n100,1,2\n200,3,4\n", buf.String())
}

func TestRomRaiderText(t *testing.T) {
	t2, t3 := tables()
	assert.Equal(t, "[Table2D]\n800\t1600\t2400\n1.5\t2.25\t3", RomRaiderText(t2[1]))
	assert.Equal(t, "[Table3D]\n\t10\t20\n100\t1\t2\n200\t3\t4", RomRaiderText(t3[0]))
}

func TestExportTablesToCSV(t *testing.T) {
	t2, t3 := tables()
	dir := filepath.Join(t.TempDir(), "out")

	n, err := ExportTablesToCSV(dir, t2, t3)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	assert.FileExists(t, filepath.Join(dir, "table2d_003000_boost_target.csv"))
	assert.FileExists(t, filepath.Join(dir, "table2d_003400.csv"))
	assert.FileExists(t, filepath.Join(dir, "table3d_003100_timing.csv"))
}
