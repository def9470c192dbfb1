// Package export writes discovered tables in formats other tools read:
// a CSV table definition, per-table CSV files and RomRaider paste text.
package export

import (
	"strings"

	"github.com/tosih/denso-rom-tool/pkg/models"
)

// RomRaiderDelimiter separates cells in RomRaider clipboard text.
const RomRaiderDelimiter = '\t'

// RomRaiderText returns t in the layout RomRaider accepts when pasting a
// whole table.
func RomRaiderText(t models.Table) string {
	switch t := t.(type) {
	case *models.Table2D:
		return romRaider2D(t)
	case *models.Table3D:
		return romRaider3D(t)
	default:
		return ""
	}
}

func romRaider2D(t *models.Table2D) string {
	var sb strings.Builder
	sb.WriteString("[Table2D]\n")
	writeRow(&sb, t.ValuesX)
	sb.WriteByte('\n')
	writeRow(&sb, t.ValuesY)
	return sb.String()
}

func romRaider3D(t *models.Table3D) string {
	var sb strings.Builder
	sb.WriteString("[Table3D]")
	sb.WriteByte('\n')
	// leading delimiter leaves the corner cell empty
	for _, x := range t.ValuesX {
		sb.WriteByte(RomRaiderDelimiter)
		sb.WriteString(formatFloat(x))
	}
	for y := 0; y < t.CountY; y++ {
		sb.WriteByte('\n')
		sb.WriteString(formatFloat(t.ValuesY[y]))
		for x := 0; x < t.CountX; x++ {
			sb.WriteByte(RomRaiderDelimiter)
			sb.WriteString(formatFloat(t.Z(x, y)))
		}
	}
	return sb.String()
}

func writeRow(sb *strings.Builder, values []float32) {
	for i, v := range values {
		if i > 0 {
			sb.WriteByte(RomRaiderDelimiter)
		}
		sb.WriteString(formatFloat(v))
	}
}
