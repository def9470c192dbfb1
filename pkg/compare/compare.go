// Package compare diffs the tables found in two ROM images. Tables are
// paired by record location.
package compare

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/pterm/pterm"

	"github.com/tosih/denso-rom-tool/pkg/models"
	"github.com/tosih/denso-rom-tool/pkg/scanner"
)

// Diff is the cell-wise difference b - a of two tables at one location.
type Diff struct {
	Location int
	Kind     models.Kind
	Title    string
	CountX   int
	CountY   int
	// ShapeMismatch is set when counts differ; Values is then empty.
	ShapeMismatch bool
	Values        []float32
	Changed       int
	MaxIncrease   float32
	MaxDecrease   float32
	AvgChange     float32
}

// Total returns the number of cells.
func (d *Diff) Total() int {
	return d.CountX * max(d.CountY, 1)
}

// Report lists paired tables and the locations found in only one image.
type Report struct {
	Diffs []Diff
	OnlyA []int
	OnlyB []int
}

// ChangedDiffs returns diffs with at least one changed cell or a shape change.
func (r *Report) ChangedDiffs() []Diff {
	var out []Diff
	for _, d := range r.Diffs {
		if d.ShapeMismatch || d.Changed > 0 {
			out = append(out, d)
		}
	}
	return out
}

// Compare pairs the tables of a and b by location.
func Compare(a, b *scanner.Result) *Report {
	r := &Report{}
	pair(r, a.Tables2D, b.Tables2D, diff2D)
	pair(r, a.Tables3D, b.Tables3D, diff3D)
	slices.SortFunc(r.Diffs, func(x, y Diff) int { return x.Location - y.Location })
	slices.Sort(r.OnlyA)
	slices.Sort(r.OnlyB)
	return r
}

func pair[T models.Table](r *Report, a, b []T, diff func(a, b T) Diff) {
	byLoc := make(map[int]T, len(b))
	for _, t := range b {
		byLoc[t.Position()] = t
	}
	for _, ta := range a {
		tb, ok := byLoc[ta.Position()]
		if !ok {
			r.OnlyA = append(r.OnlyA, ta.Position())
			continue
		}
		delete(byLoc, ta.Position())
		r.Diffs = append(r.Diffs, diff(ta, tb))
	}
	for loc := range byLoc {
		r.OnlyB = append(r.OnlyB, loc)
	}
}

func diff2D(a, b *models.Table2D) Diff {
	d := Diff{Location: a.Location, Kind: models.Kind2D, Title: a.Metadata.Title, CountX: a.CountX}
	if a.CountX != b.CountX {
		d.ShapeMismatch = true
		return d
	}
	fill(&d, a.ValuesY, b.ValuesY)
	return d
}

func diff3D(a, b *models.Table3D) Diff {
	d := Diff{Location: a.Location, Kind: models.Kind3D, Title: a.Metadata.Title, CountX: a.CountX, CountY: a.CountY}
	if a.CountX != b.CountX || a.CountY != b.CountY {
		d.ShapeMismatch = true
		return d
	}
	fill(&d, a.ValuesZ, b.ValuesZ)
	return d
}

func fill(d *Diff, a, b []float32) {
	d.Values = make([]float32, len(a))
	var total float64
	for i := range a {
		v := b[i] - a[i]
		d.Values[i] = v
		if v == 0 {
			continue
		}
		d.Changed++
		total += float64(v)
		d.MaxIncrease = max(d.MaxIncrease, v)
		d.MaxDecrease = min(d.MaxDecrease, v)
	}
	if d.Changed > 0 {
		d.AvgChange = float32(total / float64(d.Changed))
	}
}

// DisplayReport prints changed tables and the unpaired locations.
func DisplayReport(r *Report, nameA, nameB string) {
	pterm.DefaultHeader.WithFullWidth().Println("ROM Comparison")
	pterm.Info.Printf("A: %s\n", nameA)
	pterm.Info.Printf("B: %s\n", nameB)

	changed := r.ChangedDiffs()
	pterm.Info.Printf("Paired tables: %d, changed: %d\n", len(r.Diffs), len(changed))

	for _, d := range changed {
		pterm.Println()
		title := d.Title
		if title == "" {
			title = fmt.Sprintf("Record 0x%X", d.Location)
		}
		pterm.DefaultSection.Printf("%s %s @ 0x%06X\n", d.Kind, title, d.Location)
		if d.ShapeMismatch {
			pterm.Warning.Println("Table shape differs")
			continue
		}
		displayDiff(d)
	}

	if len(r.OnlyA) > 0 {
		pterm.Warning.Printf("Only in A: %s\n", locations(r.OnlyA))
	}
	if len(r.OnlyB) > 0 {
		pterm.Warning.Printf("Only in B: %s\n", locations(r.OnlyB))
	}
}

func locations(locs []int) string {
	parts := make([]string, len(locs))
	for i, l := range locs {
		parts[i] = fmt.Sprintf("0x%X", l)
	}
	return strings.Join(parts, ", ")
}

func displayDiff(d Diff) {
	pterm.Info.Printf("Changed cells: %d / %d (%.1f%%)\n",
		d.Changed, d.Total(), float64(d.Changed)/float64(d.Total())*100)
	pterm.Info.Printf("Average change: %g\n", d.AvgChange)
	pterm.Info.Printf("Max increase: %g\n", d.MaxIncrease)
	pterm.Info.Printf("Max decrease: %g\n", d.MaxDecrease)

	pterm.Println("\nDifference Map (B - A):")
	pterm.DefaultBox.Println(VisualizeDifferences(d))
}

// VisualizeDifferences draws one symbol per cell, rows along y.
func VisualizeDifferences(d Diff) string {
	var result strings.Builder

	// Find max absolute difference for scaling
	maxAbs := 0.0
	for _, v := range d.Values {
		maxAbs = math.Max(maxAbs, math.Abs(float64(v)))
	}

	rows := max(d.CountY, 1)
	for y := 0; y < rows; y++ {
		for x := 0; x < d.CountX; x++ {
			result.WriteString(getDiffSymbol(float64(d.Values[y*d.CountX+x]), maxAbs))
		}
		result.WriteString("\n")
	}

	// Legend
	result.WriteString("\nLegend: ")
	result.WriteString(pterm.FgBlue.Sprint("▼▼") + " Large Decrease  ")
	result.WriteString(pterm.FgCyan.Sprint("▼ ") + " Small Decrease  ")
	result.WriteString(pterm.FgGray.Sprint("··") + " No Change  ")
	result.WriteString(pterm.FgYellow.Sprint("▲ ") + " Small Increase  ")
	result.WriteString(pterm.FgRed.Sprint("▲▲") + " Large Increase")

	return result.String()
}

func getDiffSymbol(val, maxAbs float64) string {
	if val == 0 {
		return pterm.FgGray.Sprint("·· ")
	}

	normalized := val / maxAbs

	if normalized < -0.5 {
		return pterm.FgBlue.Sprint("▼▼ ")
	} else if normalized < -0.1 {
		return pterm.FgCyan.Sprint("▼  ")
	} else if normalized > 0.5 {
		return pterm.FgRed.Sprint("▲▲ ")
	} else if normalized > 0.1 {
		return pterm.FgYellow.Sprint("▲  ")
	}

	return pterm.FgGray.Sprint("·  ")
}
