package compare

import (
	"os"
	"strings"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tosih/denso-rom-tool/pkg/models"
	"github.com/tosih/denso-rom-tool/pkg/scanner"
)

func TestMain(m *testing.M) {
	pterm.DisableStyling()
	pterm.DisableOutput()
	os.Exit(m.Run())
}

func TestCompare(t *testing.T) {
	a := &scanner.Result{
		Tables2D: []*models.Table2D{
			{Location: 0x3000, CountX: 3, ValuesY: []float32{1, 2, 3}},
			{Location: 0x3200, CountX: 2, ValuesY: []float32{5, 5}},
			{Location: 0x3400, CountX: 2},
		},
		Tables3D: []*models.Table3D{
			{Location: 0x3100, CountX: 2, CountY: 2, ValuesZ: []float32{1, 1, 1, 1}},
		},
	}
	b := &scanner.Result{
		Tables2D: []*models.Table2D{
			{Location: 0x3000, CountX: 3, ValuesY: []float32{1, 4, 0}},
			{Location: 0x3200, CountX: 2, ValuesY: []float32{5, 5}},
			{Location: 0x3600, CountX: 2},
		},
		Tables3D: []*models.Table3D{
			{Location: 0x3100, CountX: 4, CountY: 1, ValuesZ: []float32{1, 1, 1, 1}},
		},
	}

	r := Compare(a, b)
	require.Len(t, r.Diffs, 3)
	assert.Equal(t, []int{0x3400}, r.OnlyA)
	assert.Equal(t, []int{0x3600}, r.OnlyB)

	d := r.Diffs[0]
	assert.Equal(t, 0x3000, d.Location)
	assert.Equal(t, []float32{0, 2, -3}, d.Values)
	assert.Equal(t, 2, d.Changed)
	assert.Equal(t, 3, d.Total())
	assert.Equal(t, float32(2), d.MaxIncrease)
	assert.Equal(t, float32(-3), d.MaxDecrease)
	assert.Equal(t, float32(-0.5), d.AvgChange)

	assert.True(t, r.Diffs[1].ShapeMismatch, "3D at 0x3100")
	assert.Zero(t, r.Diffs[2].Changed)

	changed := r.ChangedDiffs()
	require.Len(t, changed, 2)
	assert.Equal(t, 0x3100, changed[1].Location)

	DisplayReport(r, "a.bin", "b.bin")
}

func TestVisualizeDifferences(t *testing.T) {
	got := VisualizeDifferences(Diff{CountX: 3, CountY: 2, Values: []float32{0, 10, -10, 2, -2, 0.5}})
	lines := strings.Split(got, "\n")
	assert.Equal(t, "·· ▲▲ ▼▼ ", lines[0])
	assert.Equal(t, "▲  ▼  ·  ", lines[1])
}
