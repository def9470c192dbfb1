package editor

import (
	"fmt"
	"strconv"

	"github.com/pterm/pterm"

	"github.com/tosih/denso-rom-tool/pkg/checksum"
	"github.com/tosih/denso-rom-tool/pkg/models"
	"github.com/tosih/denso-rom-tool/pkg/rom"
)

// InteractiveEdit provides an interactive menu for editing found tables.
func InteractiveEdit(img *rom.Image, t2 []*models.Table2D, t3 []*models.Table3D, dryRun bool) {
	pterm.DefaultHeader.WithFullWidth().
		WithBackgroundStyle(pterm.NewStyle(pterm.BgRed)).
		WithTextStyle(pterm.NewStyle(pterm.FgBlack)).
		Println("⚠️  INTERACTIVE EDIT MODE - USE WITH EXTREME CAUTION  ⚠️")

	pterm.Warning.Println("Modifying ECU calibration can cause engine damage, unsafe driving conditions, warranty void, and legal issues.")

	result, _ := pterm.DefaultInteractiveConfirm.Show("Do you understand the risks and want to proceed?")
	if !result {
		pterm.Info.Println("Edit cancelled.")
		return
	}

	options := []string{
		"Edit Table Cell",
		"Scale Table",
		"Fix Checksums",
		"Exit",
	}

	selectedOption, _ := pterm.DefaultInteractiveSelect.
		WithOptions(options).
		Show("Select what to edit:")

	switch selectedOption {
	case "Edit Table Cell":
		if t := pickTable(t2, t3); t != nil {
			editCell(img, t, dryRun)
		}
	case "Scale Table":
		if t := pickTable(t2, t3); t != nil {
			scaleTable(img, t, dryRun)
		}
	case "Fix Checksums":
		fixChecksums(img, dryRun)
	case "Exit":
		pterm.Info.Println("Exiting edit mode.")
	}
}

func pickTable(t2 []*models.Table2D, t3 []*models.Table3D) models.Table {
	byLabel := make(map[string]models.Table, len(t2)+len(t3))
	var labels []string
	add := func(t models.Table) {
		label := fmt.Sprintf("0x%06X %s %s", t.Position(), t.Kind(), models.TitleForExport(t))
		labels = append(labels, label)
		byLabel[label] = t
	}
	for _, t := range t2 {
		add(t)
	}
	for _, t := range t3 {
		add(t)
	}
	if len(labels) == 0 {
		pterm.Error.Println("No tables to edit")
		return nil
	}
	labels = append(labels, "Cancel")

	selected, _ := pterm.DefaultInteractiveSelect.
		WithOptions(labels).
		WithMaxHeight(15).
		Show("Select table:")
	return byLabel[selected]
}

func promptInt(text string) (int, bool) {
	s, _ := pterm.DefaultInteractiveTextInput.Show(text)
	n, err := strconv.Atoi(s)
	if err != nil {
		pterm.Error.Printf("Invalid number %q\n", s)
		return 0, false
	}
	return n, true
}

func promptFloat(text string) (float32, bool) {
	s, _ := pterm.DefaultInteractiveTextInput.Show(text)
	f, err := strconv.ParseFloat(s, 32)
	if err != nil {
		pterm.Error.Printf("Invalid value %q\n", s)
		return 0, false
	}
	return float32(f), true
}

func editCell(img *rom.Image, t models.Table, dryRun bool) {
	data := make([]byte, len(img.Data))
	copy(data, img.Data)

	var err error
	switch t := t.(type) {
	case *models.Table2D:
		i, ok := promptInt(fmt.Sprintf("Enter index (0-%d)", t.CountX-1))
		if !ok || i < 0 || i >= t.CountX {
			pterm.Error.Println("Invalid cell coordinates")
			return
		}
		pterm.Info.Printf("Current value at [%d]: %g %s\n", i, t.ValuesY[i], t.Metadata.UnitY)
		v, ok := promptFloat("Enter new value")
		if !ok {
			return
		}
		err = SetCell2D(data, t.Clone(), i, v)
	case *models.Table3D:
		x, ok := promptInt(fmt.Sprintf("Enter column (0-%d)", t.CountX-1))
		if !ok {
			return
		}
		y, ok := promptInt(fmt.Sprintf("Enter row (0-%d)", t.CountY-1))
		if !ok || x < 0 || x >= t.CountX || y < 0 || y >= t.CountY {
			pterm.Error.Println("Invalid cell coordinates")
			return
		}
		pterm.Info.Printf("Current value at [%d,%d]: %g %s\n", x, y, t.Z(x, y), t.Metadata.UnitZ)
		v, ok := promptFloat("Enter new value")
		if !ok {
			return
		}
		err = SetCell3D(data, t.Clone(), x, y, v)
	}
	if err != nil {
		pterm.Error.Println(err)
		return
	}
	commit(img, data, true, dryRun)
}

func scaleTable(img *rom.Image, t models.Table, dryRun bool) {
	pterm.Warning.Println("This modifies ALL cells in the selected table!")
	factor, ok := promptFloat("Enter multiplier (e.g., 1.1 for +10%, 0.9 for -10%)")
	if !ok {
		return
	}
	if factor < 0.5 || factor > 2.0 {
		pterm.Error.Println("Multiplier out of safe range (0.5-2.0)")
		return
	}

	data := make([]byte, len(img.Data))
	copy(data, img.Data)
	var clone models.Table
	switch t := t.(type) {
	case *models.Table2D:
		clone = t.Clone()
	case *models.Table3D:
		clone = t.Clone()
	}
	if err := ScaleTable(data, clone, factor); err != nil {
		pterm.Error.Println(err)
		return
	}
	commit(img, data, true, dryRun)
}

func fixChecksums(img *rom.Image, dryRun bool) {
	data := make([]byte, len(img.Data))
	copy(data, img.Data)
	if !fixInPlace(img.Type, data) {
		return
	}
	commit(img, data, false, dryRun)
}

// fixInPlace recalculates checksums of data; false means nothing to write.
func fixInPlace(t models.RomType, data []byte) bool {
	layout, err := checksum.LayoutFor(t)
	if err != nil {
		pterm.Warning.Println(err)
		return false
	}
	changed, err := FixChecksums(data, layout)
	if err != nil {
		pterm.Error.Println(err)
		return false
	}
	if len(changed) == 0 {
		pterm.Success.Println("All checksums already correct")
		return false
	}
	pterm.Info.Printf("Checksum records updated: %v\n", changed)
	return true
}

// commit optionally recalculates checksums, then writes data over the
// image file.
func commit(img *rom.Image, data []byte, fix, dryRun bool) {
	if fix {
		if _, err := checksum.LayoutFor(img.Type); err == nil {
			fixInPlace(img.Type, data)
		}
	}

	if dryRun {
		pterm.Warning.Println("DRY RUN - No changes made")
		return
	}

	result, _ := pterm.DefaultInteractiveConfirm.Show("Write this change to file?")
	if !result {
		pterm.Info.Println("Cancelled.")
		return
	}

	backup, err := WriteImage(img.Path, data)
	if backup != "" {
		pterm.Success.Printf("Backup created: %s\n", backup)
	}
	if err != nil {
		pterm.Error.Println(err)
		return
	}
	copy(img.Data, data)
	pterm.Success.Println("ROM updated successfully!")
}
