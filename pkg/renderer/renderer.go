// Package renderer prints discovered tables, checksum reports and ROM
// identification to the terminal with pterm.
package renderer

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"

	"github.com/tosih/denso-rom-tool/pkg/checksum"
	"github.com/tosih/denso-rom-tool/pkg/models"
	"github.com/tosih/denso-rom-tool/pkg/rom"
)

// Mode selects how cell values are drawn.
type Mode string

const (
	ModeValues  Mode = "values"
	ModeHeatmap Mode = "heatmap"
	ModeSymbols Mode = "symbols"
)

// ParseMode validates a display mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(s)); m {
	case ModeValues, ModeHeatmap, ModeSymbols:
		return m, nil
	default:
		return "", fmt.Errorf("unknown display mode %q", s)
	}
}

// RenderTable prints t in a titled box.
func RenderTable(t models.Table, mode Mode) {
	md := t.Meta()
	if md.Description != "" {
		pterm.Info.Println(md.Description)
	}
	pterm.DefaultBox.WithTitle(Title(t)).WithTitleTopLeft().Println(BuildTableString(t, mode))
}

// Title returns the one-line box title for t.
func Title(t models.Table) string {
	var size string
	var stats models.Stats
	switch t := t.(type) {
	case *models.Table2D:
		size = fmt.Sprintf("%d", t.CountX)
		stats = t.Stats
	case *models.Table3D:
		size = fmt.Sprintf("%dx%d", t.CountX, t.CountY)
		stats = t.Stats
	}
	title := fmt.Sprintf("%s | 0x%06X | %s %s | %s | Range: %g..%g",
		models.TitleForExport(t), t.Position(), t.Kind(), size, t.ElementType(), stats.Min, stats.Max)
	if unit := valueUnit(t); unit != "" {
		title += " " + unit
	}
	return title
}

func valueUnit(t models.Table) string {
	if t.Kind() == models.Kind3D {
		return t.Meta().UnitZ
	}
	return t.Meta().UnitY
}

// BuildTableString draws t as text.
func BuildTableString(t models.Table, mode Mode) string {
	switch t := t.(type) {
	case *models.Table2D:
		return build2D(t, mode)
	case *models.Table3D:
		return build3D(t, mode)
	default:
		return ""
	}
}

func build2D(t *models.Table2D, mode Mode) string {
	var result strings.Builder
	xDigits := AutomaticValueFormat(t.ValuesX, t.Xmax())
	yDigits := AutomaticValueFormat(t.ValuesY, t.Stats.Max)

	xCells := formatAll(t.ValuesX, xDigits)
	yCells := formatAll(t.ValuesY, yDigits)
	xw := max(maxLen(xCells), len(t.Metadata.NameX))
	yw := maxLen(yCells)

	result.WriteString(fmt.Sprintf("%*s | %s\n", xw, t.Metadata.NameX, t.Metadata.UnitY))
	result.WriteString(strings.Repeat("-", xw) + "-+-" + strings.Repeat("-", yw+8) + "\n")
	for i := 0; i < t.CountX; i++ {
		v := float64(t.ValuesY[i])
		result.WriteString(fmt.Sprintf("%*s | ", xw, xCells[i]))
		result.WriteString(cell(v, yCells[i], yw, float64(t.Stats.Min), float64(t.Stats.Max), mode))
		result.WriteString("\n")
	}
	writeLegend(&result, mode)
	return strings.TrimRight(result.String(), "\n")
}

func build3D(t *models.Table3D, mode Mode) string {
	var result strings.Builder
	xDigits := AutomaticValueFormat(t.ValuesX, t.Xmax())
	yDigits := AutomaticValueFormat(t.ValuesY, t.Ymax())
	zDigits := AutomaticValueFormat(t.ValuesZ, t.Stats.Max)

	xCells := formatAll(t.ValuesX, xDigits)
	yCells := formatAll(t.ValuesY, yDigits)
	zCells := formatAll(t.ValuesZ, zDigits)
	yw := maxLen(yCells)
	cw := max(maxLen(xCells), maxLen(zCells))
	if mode != ModeValues {
		cw = max(maxLen(xCells), 2)
	}
	lo, hi := float64(t.Stats.Min), float64(t.Stats.Max)

	// Header
	result.WriteString(fmt.Sprintf("%*s |", yw, ""))
	for _, x := range xCells {
		result.WriteString(fmt.Sprintf(" %*s", cw, x))
	}
	result.WriteString("\n")

	// Separator
	result.WriteString(strings.Repeat("-", yw) + "-+" + strings.Repeat("-", t.CountX*(cw+1)) + "\n")

	// Data rows
	for y := 0; y < t.CountY; y++ {
		result.WriteString(fmt.Sprintf("%*s |", yw, yCells[y]))
		for x := 0; x < t.CountX; x++ {
			i := y*t.CountX + x
			result.WriteString(" ")
			result.WriteString(cell(float64(t.ValuesZ[i]), zCells[i], cw, lo, hi, mode))
		}
		result.WriteString("\n")
	}
	writeLegend(&result, mode)
	return strings.TrimRight(result.String(), "\n")
}

// cell renders one value padded to width.
func cell(value float64, text string, width int, min, max float64, mode Mode) string {
	switch mode {
	case ModeHeatmap:
		return strings.Repeat(" ", max0(width-2)) + getHeatmapBlock(value, min, max)
	case ModeSymbols:
		symbol := getSymbolForValue(value, min, max)
		return strings.Repeat(" ", max0(width-2)) + symbol + symbol
	default:
		return getColorStyle(value, min, max).Sprintf("%*s", width, text)
	}
}

func writeLegend(result *strings.Builder, mode Mode) {
	switch mode {
	case ModeHeatmap:
		result.WriteString("\n" + getHeatmapLegend())
	case ModeSymbols:
		result.WriteString("\nLegend: ")
		result.WriteString(pterm.FgCyan.Sprint("░") + " Low  ")
		result.WriteString(pterm.FgGreen.Sprint("▒") + " Med  ")
		result.WriteString(pterm.FgYellow.Sprint("▓") + " High  ")
		result.WriteString(pterm.FgRed.Sprint("█") + " Max")
	}
}

func formatAll(values []float32, decimals int) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = FormatValue(v, decimals)
	}
	return out
}

func maxLen(cells []string) int {
	n := 0
	for _, c := range cells {
		n = max(n, len(c))
	}
	return n
}

func max0(n int) int {
	return max(n, 0)
}

func getHeatmapBlock(value, min, max float64) string {
	if max == min {
		return pterm.BgGray.Sprint("  ")
	}

	normalized := (value - min) / (max - min)

	switch {
	case normalized < 0.2:
		return pterm.NewStyle(pterm.BgBlue, pterm.FgWhite).Sprint("▄▄")
	case normalized < 0.4:
		return pterm.NewStyle(pterm.BgCyan, pterm.FgBlack).Sprint("▄▄")
	case normalized < 0.6:
		return pterm.NewStyle(pterm.BgGreen, pterm.FgBlack).Sprint("▄▄")
	case normalized < 0.8:
		return pterm.NewStyle(pterm.BgYellow, pterm.FgBlack).Sprint("▄▄")
	default:
		return pterm.NewStyle(pterm.BgRed, pterm.FgWhite).Sprint("▄▄")
	}
}

func getHeatmapLegend() string {
	var result strings.Builder
	result.WriteString("Heatmap: ")
	result.WriteString(pterm.NewStyle(pterm.BgBlue, pterm.FgWhite).Sprint("▄▄") + " Very Low  ")
	result.WriteString(pterm.NewStyle(pterm.BgCyan, pterm.FgBlack).Sprint("▄▄") + " Low  ")
	result.WriteString(pterm.NewStyle(pterm.BgGreen, pterm.FgBlack).Sprint("▄▄") + " Medium  ")
	result.WriteString(pterm.NewStyle(pterm.BgYellow, pterm.FgBlack).Sprint("▄▄") + " High  ")
	result.WriteString(pterm.NewStyle(pterm.BgRed, pterm.FgWhite).Sprint("▄▄") + " Very High")
	return result.String()
}

func getSymbolForValue(value, min, max float64) string {
	if max == min {
		return pterm.FgGray.Sprint("·")
	}

	normalized := (value - min) / (max - min)

	switch {
	case normalized < 0.25:
		return pterm.FgCyan.Sprint("░")
	case normalized < 0.5:
		return pterm.FgGreen.Sprint("▒")
	case normalized < 0.75:
		return pterm.FgYellow.Sprint("▓")
	default:
		return pterm.FgRed.Sprint("█")
	}
}

func getColorStyle(value, min, max float64) *pterm.Style {
	if max == min {
		return pterm.NewStyle(pterm.FgGray)
	}

	normalized := (value - min) / (max - min)

	switch {
	case normalized < 0.25:
		return pterm.NewStyle(pterm.FgCyan)
	case normalized < 0.5:
		return pterm.NewStyle(pterm.FgGreen)
	case normalized < 0.75:
		return pterm.NewStyle(pterm.FgYellow)
	default:
		return pterm.NewStyle(pterm.FgRed)
	}
}

// TableRows returns the list view rows for t2 and t3, header first.
func TableRows(t2 []*models.Table2D, t3 []*models.Table3D) [][]string {
	data := [][]string{
		{"Location", "Kind", "Size", "Type", "Min", "Max", "Scale", "Title", "Category"},
	}
	flag := func(t models.ElementType, uncertain bool) string {
		if uncertain {
			return t.String() + "?"
		}
		return t.String()
	}
	for _, t := range t2 {
		data = append(data, []string{
			fmt.Sprintf("0x%06X", t.Location), "2D", fmt.Sprintf("%d", t.CountX),
			flag(t.Type, t.TypeUncertain),
			fmt.Sprintf("%g", t.Stats.Min), fmt.Sprintf("%g", t.Stats.Max),
			models.Expression(t.Scale, "x"), t.Metadata.Title, t.Metadata.Category,
		})
	}
	for _, t := range t3 {
		data = append(data, []string{
			fmt.Sprintf("0x%06X", t.Location), "3D", fmt.Sprintf("%dx%d", t.CountX, t.CountY),
			flag(t.Type, t.TypeUncertain),
			fmt.Sprintf("%g", t.Stats.Min), fmt.Sprintf("%g", t.Stats.Max),
			models.Expression(t.Scale, "x"), t.Metadata.Title, t.Metadata.Category,
		})
	}
	return data
}

// ListTables displays all found tables in a table.
func ListTables(t2 []*models.Table2D, t3 []*models.Table3D) {
	pterm.DefaultHeader.WithFullWidth().Println(fmt.Sprintf("Tables: %d 2D, %d 3D", len(t2), len(t3)))
	pterm.DefaultTable.WithHasHeader().WithData(TableRows(t2, t3)).Render()
}

// ChecksumRows returns the checksum report rows, header first.
func ChecksumRows(r *checksum.Report) [][]string {
	data := [][]string{
		{"#", "Start", "End", "Stored", "Calculated", "Status"},
	}
	for _, res := range r.Results {
		status := pterm.FgGreen.Sprint("OK")
		switch {
		case res.Err != nil:
			status = pterm.FgRed.Sprint(res.Err.Error())
		case !res.OK:
			status = pterm.FgRed.Sprint("MISMATCH")
		}
		data = append(data, []string{
			fmt.Sprintf("%d", res.Index),
			fmt.Sprintf("0x%06X", res.Record.StartAddress),
			fmt.Sprintf("0x%06X", res.Record.EndAddress),
			fmt.Sprintf("%08X", res.Record.Checksum),
			fmt.Sprintf("%08X", res.Calculated),
			status,
		})
	}
	return data
}

// RenderChecksums prints a checksum report.
func RenderChecksums(r *checksum.Report) {
	pterm.DefaultSection.Println(fmt.Sprintf("Checksums @ 0x%X", r.Layout.TablePos))
	pterm.DefaultTable.WithHasHeader().WithData(ChecksumRows(r)).Render()
	if r.AllOK() {
		pterm.Success.Printf("All %d checksums OK, CVN %s\n", len(r.Results), r.CVNString())
		return
	}
	pterm.Warning.Printf("%d of %d checksums failed, CVN %s\n", len(r.Failed()), len(r.Results), r.CVNString())
}

// InfoRows returns identification rows as label/value pairs.
func InfoRows(info rom.Info) [][]string {
	marker := func(m *rom.Marker) string {
		if m == nil {
			return "-"
		}
		return fmt.Sprintf("%q @ 0x%X", m.Text, m.Pos)
	}
	orDash := func(s string) string {
		if s == "" {
			return "-"
		}
		return s
	}
	ssm := "-"
	if info.SSMID != "" {
		ssm = fmt.Sprintf("%s @ 0x%X", info.SSMID, info.SSMIDPos)
	}
	return [][]string{
		{"Type", info.Type.String()},
		{"Size", fmt.Sprintf("%d (0x%X)", info.Size, info.Size)},
		{"DENSO", marker(info.Denso)},
		{"DIESEL", marker(info.Diesel)},
		{"TURBO", marker(info.Turbo)},
		{"ROM ID", orDash(info.RomIDLong)},
		{"CID", orDash(info.CID)},
		{"Date", info.DateString()},
		{"SSM ID", ssm},
		{"Reflash count", info.ReflashString()},
		{"Edit stamp", info.EditStampString()},
	}
}

// RenderInfo prints ROM identification.
func RenderInfo(name string, info rom.Info) {
	pterm.DefaultSection.Println(name)
	pterm.DefaultTable.WithData(InfoRows(info)).Render()
}
