package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/pterm/pterm"

	"github.com/tosih/denso-rom-tool/pkg/models"
)

// Selection picks which tables an export covers.
type Selection int

const (
	All Selection = iota
	Selected
	Annotated
	// Stored is annotated or selected, the set persisted in metadata files.
	Stored
)

var selectionNames = map[string]Selection{
	"all":       All,
	"selected":  Selected,
	"annotated": Annotated,
	"stored":    Stored,
}

// ParseSelection parses "all", "selected", "annotated" or "stored".
func ParseSelection(s string) (Selection, error) {
	sel, ok := selectionNames[strings.ToLower(s)]
	if !ok {
		return 0, fmt.Errorf("unknown selection %q", s)
	}
	return sel, nil
}

func (s Selection) match(md *models.Metadata) bool {
	switch s {
	case Selected:
		return md.Selected
	case Annotated:
		return md.HasMetadata()
	case Stored:
		return md.Selected || md.HasMetadata()
	default:
		return true
	}
}

func selectSorted[T models.Table](tables []T, sel Selection) []T {
	var out []T
	for _, t := range tables {
		if sel.match(t.Meta()) {
			out = append(out, t)
		}
	}
	slices.SortFunc(out, func(a, b T) int { return a.Position() - b.Position() })
	return out
}

// Select returns the chosen tables sorted by location.
func Select(t2 []*models.Table2D, t3 []*models.Table3D, sel Selection) ([]*models.Table2D, []*models.Table3D) {
	return selectSorted(t2, sel), selectSorted(t3, sel)
}

var definitionHeader = []string{
	"table_type",
	"category",
	"storageaddress",
	"unit_x",
	"name_x",
	"unit_y",
	"name_y",
	"unit_z",
	"x_len",
	"y_len",
	"data_type",
	"axis_x_storageaddress",
	"axis_y_storageaddress",
	"axis_z_storageaddress",
	"multiplier",
	"offset",
	"name",
}

func formatFloat(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}

func scaleFields(s *models.AffineScale) (string, string) {
	if s == nil {
		return "0", "0"
	}
	return formatFloat(s.Multiplier), formatFloat(s.Offset)
}

// WriteDefinition writes a CSV table definition, one row per table.
// 2D values are reported as the z axis so both kinds share one layout.
func WriteDefinition(w io.Writer, t2 []*models.Table2D, t3 []*models.Table3D) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(definitionHeader); err != nil {
		return err
	}

	for _, t := range t2 {
		m, o := scaleFields(t.Scale)
		md := t.Metadata
		if err := cw.Write([]string{
			"table2D", md.Category, strconv.Itoa(t.Location),
			md.UnitX, md.NameX, "", "", md.UnitY,
			strconv.Itoa(t.CountX), "0", t.Type.String(),
			strconv.Itoa(t.RangeX.Pos), "0", strconv.Itoa(t.RangeY.Pos),
			m, o, md.Title,
		}); err != nil {
			return err
		}
	}
	for _, t := range t3 {
		m, o := scaleFields(t.Scale)
		md := t.Metadata
		if err := cw.Write([]string{
			"table3D", md.Category, strconv.Itoa(t.Location),
			md.UnitX, md.NameX, md.UnitY, md.NameY, md.UnitZ,
			strconv.Itoa(t.CountX), strconv.Itoa(t.CountY), t.Type.String(),
			strconv.Itoa(t.RangeX.Pos), strconv.Itoa(t.RangeY.Pos), strconv.Itoa(t.RangeZ.Pos),
			m, o, md.Title,
		}); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteDefinitionFile writes the definition CSV to path.
func WriteDefinitionFile(path string, t2 []*models.Table2D, t3 []*models.Table3D) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteDefinition(f, t2, t3); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

func axisLabel(name, unit string) string {
	return fmt.Sprintf("%s [%s]", name, unit)
}

// WriteTable2D writes axis and values as two columns. The first row holds
// the column labels, which spreadsheet apps pick up as headers.
func WriteTable2D(w io.Writer, t *models.Table2D) error {
	cw := csv.NewWriter(w)
	md := t.Metadata
	if err := cw.Write([]string{axisLabel(md.NameX, md.UnitX), axisLabel(md.Title, md.UnitY)}); err != nil {
		return err
	}
	for i := 0; i < t.CountX; i++ {
		if err := cw.Write([]string{formatFloat(t.ValuesX[i]), formatFloat(t.ValuesY[i])}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTable3D writes a grid: x axis in the first row, y axis in the first
// column.
func WriteTable3D(w io.Writer, t *models.Table3D) error {
	cw := csv.NewWriter(w)
	md := t.Metadata

	header := make([]string, 0, t.CountX+1)
	header = append(header, axisLabel(md.NameY, md.UnitY)+` \ `+axisLabel(md.NameX, md.UnitX))
	for _, x := range t.ValuesX {
		header = append(header, formatFloat(x))
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for y := 0; y < t.CountY; y++ {
		row := make([]string, 0, t.CountX+1)
		row = append(row, formatFloat(t.ValuesY[y]))
		for x := 0; x < t.CountX; x++ {
			row = append(row, formatFloat(t.Z(x, y)))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// FileName returns the CSV file name used for t by ExportTablesToCSV.
func FileName(t models.Table) string {
	name := fmt.Sprintf("table%s_%06X", strings.ToLower(t.Kind().String()), t.Position())
	if title := strings.TrimSpace(t.Meta().Title); title != "" {
		slug := strings.Map(func(r rune) rune {
			switch r {
			case ' ', '/', '\\', ':':
				return '_'
			}
			return r
		}, strings.ToLower(title))
		name += "_" + slug
	}
	return name + ".csv"
}

func writeTableFile(path string, t models.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	switch t := t.(type) {
	case *models.Table2D:
		err = WriteTable2D(f, t)
	case *models.Table3D:
		err = WriteTable3D(f, t)
	default:
		err = fmt.Errorf("unsupported table %T", t)
	}
	if err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ExportTablesToCSV writes one CSV file per table into dir and returns the
// number of files written. Tables that fail are reported and skipped.
func ExportTablesToCSV(dir string, t2 []*models.Table2D, t3 []*models.Table3D) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create export directory: %w", err)
	}

	tables := make([]models.Table, 0, len(t2)+len(t3))
	for _, t := range t2 {
		tables = append(tables, t)
	}
	for _, t := range t3 {
		tables = append(tables, t)
	}

	spinner, _ := pterm.DefaultSpinner.Start("Exporting tables to CSV...")

	written := 0
	for _, t := range tables {
		path := filepath.Join(dir, FileName(t))
		if err := writeTableFile(path, t); err != nil {
			if spinner != nil {
				spinner.Warning(fmt.Sprintf("Failed to export 0x%X: %v", t.Position(), err))
			}
			continue
		}
		written++
	}

	if spinner != nil {
		spinner.Success(fmt.Sprintf("%d tables exported to %s", written, dir))
	}
	return written, nil
}
