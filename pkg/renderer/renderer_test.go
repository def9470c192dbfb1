package renderer

import (
	"os"
	"strings"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tosih/denso-rom-tool/pkg/checksum"
	"github.com/tosih/denso-rom-tool/pkg/models"
	"github.com/tosih/denso-rom-tool/pkg/rom"
)

func TestMain(m *testing.M) {
	pterm.DisableStyling()
	pterm.DisableOutput()
	os.Exit(m.Run())
}

func TestAutomaticMinDigits(t *testing.T) {
	tests := []struct {
		name   string
		values []float32
		want   int
	}{
		{"integers", []float32{1, 2, 300}, 0},
		{"empty", nil, 0},
		{"one decimal", []float32{0.1, 2}, 1},
		{"quarter", []float32{1.5, 2.25}, 2},
		{"six decimals", []float32{0.123456}, 6},
		{"thirds", []float32{1.0 / 3}, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AutomaticMinDigits(tt.values))
		})
	}
}

func TestAutomaticValueFormat(t *testing.T) {
	assert.Equal(t, 2, AutomaticValueFormat([]float32{1.5, 2.25}, 2.25))
	assert.Equal(t, 3, AutomaticValueFormat([]float32{0.123456}, 0.123456))
	assert.Equal(t, 2, AutomaticValueFormat([]float32{0.123456, 25}, 25))
	assert.Equal(t, 1, AutomaticValueFormat([]float32{0.123456, 250}, 250))
	assert.Equal(t, "2.250", FormatValue(2.25, 3))
	assert.Equal(t, "2.3", FormatValue(2.26, 1))
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("Heatmap")
	require.NoError(t, err)
	assert.Equal(t, ModeHeatmap, m)
	_, err = ParseMode("3d")
	require.Error(t, err)
}

func table3D() *models.Table3D {
	return &models.Table3D{
		Location: 0x3100, CountX: 3, CountY: 2, Type: models.UInt8,
		ValuesX: []float32{10, 20, 30},
		ValuesY: []float32{100, 200},
		ValuesZ: []float32{-9.5, -9, -8.5, -8, -7.5, -7},
		Stats:   models.Stats{Min: -9.5, Max: -7, Avg: -8.25},
		Metadata: models.Metadata{
			Title: "Timing", UnitZ: "deg",
		},
	}
}

func TestBuildTableString_3D(t *testing.T) {
	got := BuildTableString(table3D(), ModeValues)
	lines := strings.Split(got, "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "    |   10   20   30", lines[0])
	assert.Equal(t, "100 | -9.5 -9.0 -8.5", lines[2])
	assert.Equal(t, "200 | -8.0 -7.5 -7.0", lines[3])

	heat := BuildTableString(table3D(), ModeHeatmap)
	assert.Contains(t, heat, "Heatmap:")
	assert.Contains(t, heat, "▄▄")
}

func TestBuildTableString_2D(t *testing.T) {
	tbl := &models.Table2D{
		Location: 0x3000, CountX: 2, Type: models.UInt16,
		ValuesX: []float32{0, 1}, ValuesY: []float32{10, 20},
		Stats:    models.Stats{Min: 10, Max: 20, Avg: 15},
		Metadata: models.Metadata{NameX: "rpm", UnitY: "kPa"},
	}
	got := BuildTableString(tbl, ModeValues)
	lines := strings.Split(got, "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "rpm | kPa", lines[0])
	assert.Equal(t, "  0 | 10", lines[2])
	assert.Equal(t, "  1 | 20", lines[3])

	assert.Contains(t, BuildTableString(tbl, ModeSymbols), "Legend:")
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Timing | 0x003100 | 3D 3x2 | uint8 | Range: -9.5..-7 deg", Title(table3D()))
}

func TestTableRows(t *testing.T) {
	t2 := []*models.Table2D{{Location: 0x3200, CountX: 2, Type: models.UInt16, TypeUncertain: true}}
	t3 := []*models.Table3D{table3D()}
	t3[0].Scale = &models.AffineScale{Multiplier: 0.5, Offset: -10}

	rows := TableRows(t2, t3)
	require.Len(t, rows, 3)
	assert.Equal(t, "Location", rows[0][0])
	assert.Equal(t, []string{"0x003200", "2D", "2", "uint16?", "0", "0", "x", "", ""}, rows[1])
	assert.Equal(t, "x*0.5-10", rows[2][6])
	assert.Equal(t, "3x2", rows[2][2])
}

func TestChecksumRows(t *testing.T) {
	r := &checksum.Report{
		Results: []checksum.Result{
			{Index: 0, Record: checksum.Record{StartAddress: 0, EndAddress: 0x7FFF, Checksum: 0x1234}, Calculated: 0x1234, OK: true},
			{Index: 1, Record: checksum.Record{StartAddress: 0x8000, EndAddress: 0xFFFF, Checksum: 1}, Calculated: 2},
		},
	}
	rows := ChecksumRows(r)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"0", "0x000000", "0x007FFF", "00001234", "00001234", "OK"}, rows[1])
	assert.Equal(t, "MISMATCH", rows[2][5])
}

func TestInfoRows(t *testing.T) {
	n := 3
	rows := InfoRows(rom.Info{
		Type:    models.SH7058,
		Size:    models.MiB,
		Denso:   &rom.Marker{Pos: 0x2000, Text: "DENSO"},
		CID:     "A2WC500N",
		Reflash: &n,
	})
	got := map[string]string{}
	for _, r := range rows {
		got[r[0]] = r[1]
	}
	assert.Equal(t, "SH7058", got["Type"])
	assert.Equal(t, "1048576 (0x100000)", got["Size"])
	assert.Equal(t, `"DENSO" @ 0x2000`, got["DENSO"])
	assert.Equal(t, "-", got["TURBO"])
	assert.Equal(t, "A2WC500N", got["CID"])
	assert.Equal(t, "3", got["Reflash count"])
	assert.Equal(t, "-", got["Date"])
}
