package main

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/tosih/denso-rom-tool/pkg/analyzer"
	"github.com/tosih/denso-rom-tool/pkg/export"
	"github.com/tosih/denso-rom-tool/pkg/models"
	"github.com/tosih/denso-rom-tool/pkg/reader"
	"github.com/tosih/denso-rom-tool/pkg/renderer"
	"github.com/tosih/denso-rom-tool/pkg/store"
)

var (
	scanSelection string
	scanSave      bool

	showMode      string
	showRomRaider bool

	annotate struct {
		title, category, description string
		nameX, unitX, nameY, unitY   string
		unitZ, elementType           string
		selected, unselected         bool
	}
)

var scanCmd = &cobra.Command{
	Use:     "scan <rom.bin>",
	Aliases: []string{"list"},
	Short:   "Scan a ROM and list the detected tables",
	Args:    cobra.ExactArgs(1),
	RunE:    runScan,
}

var showCmd = &cobra.Command{
	Use:   "show <rom.bin> <address>",
	Short: "Display one table",
	Long: `Display the table whose record starts at address (hex with 0x prefix
or decimal). Modes: values, heatmap, symbols.`,
	Args: cobra.ExactArgs(2),
	RunE: runShow,
}

var infoCmd = &cobra.Command{
	Use:   "info <rom.bin>",
	Short: "Show ROM identification",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

var checksumCmd = &cobra.Command{
	Use:   "checksum <rom.bin>",
	Short: "Verify the checksum table",
	Args:  cobra.ExactArgs(1),
	RunE:  runChecksum,
}

var annotateCmd = &cobra.Command{
	Use:   "annotate <rom.bin> <address>",
	Short: "Set table metadata or element type and save it",
	Args:  cobra.ExactArgs(2),
	RunE:  runAnnotate,
}

func init() {
	scanCmd.Flags().StringVar(&scanSelection, "sel", "all", "Tables to list: all, selected, annotated, stored")
	scanCmd.Flags().BoolVar(&scanSave, "save", false, "Save table metadata after the scan")

	showCmd.Flags().StringVarP(&showMode, "mode", "m", "values", "Display mode: values, heatmap, symbols")
	showCmd.Flags().BoolVar(&showRomRaider, "romraider", false, "Print the table as RomRaider clipboard text")

	f := annotateCmd.Flags()
	f.StringVar(&annotate.title, "title", "", "Table title")
	f.StringVar(&annotate.category, "category", "", "Category")
	f.StringVar(&annotate.description, "description", "", "Description")
	f.StringVar(&annotate.nameX, "name-x", "", "X axis name")
	f.StringVar(&annotate.unitX, "unit-x", "", "X axis unit")
	f.StringVar(&annotate.nameY, "name-y", "", "Y axis name")
	f.StringVar(&annotate.unitY, "unit-y", "", "Y axis or 2D value unit")
	f.StringVar(&annotate.unitZ, "unit-z", "", "3D value unit")
	f.StringVar(&annotate.elementType, "type", "", "Reload values as this element type (uint8, int16, float32, ...)")
	f.BoolVar(&annotate.selected, "select", false, "Mark the table selected")
	f.BoolVar(&annotate.unselected, "unselect", false, "Clear the selected mark")
	annotateCmd.MarkFlagsMutuallyExclusive("select", "unselect")
}

func runScan(cmd *cobra.Command, args []string) error {
	sel, err := export.ParseSelection(scanSelection)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	sess, err := analyze(ctx, args[0])
	if err != nil {
		return err
	}

	t2, t3 := export.Select(sess.Result.Tables2D, sess.Result.Tables3D, sel)
	renderer.ListTables(t2, t3)

	if scanSave {
		if err := newAnalyzer().Save(ctx, sess); err != nil {
			return err
		}
		pterm.Success.Println("Metadata saved")
	}
	return nil
}

// lookupTable finds the table at the address argument.
func lookupTable(sess *analyzer.Session, arg string) (models.Table, error) {
	addr, err := store.ParseAddress(arg)
	if err != nil {
		return nil, err
	}
	if t := sess.Table3DAt(int(addr)); t != nil {
		return t, nil
	}
	if t := sess.Table2DAt(int(addr)); t != nil {
		return t, nil
	}
	return nil, fmt.Errorf("no table at %s", addr)
}

func runShow(cmd *cobra.Command, args []string) error {
	mode, err := renderer.ParseMode(showMode)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	sess, err := analyze(ctx, args[0])
	if err != nil {
		return err
	}
	t, err := lookupTable(sess, args[1])
	if err != nil {
		return err
	}

	if showRomRaider {
		fmt.Print(export.RomRaiderText(t))
		return nil
	}
	renderer.RenderTable(t, mode)
	return nil
}

func runInfo(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	sess, err := analyze(ctx, args[0])
	if err != nil {
		return err
	}
	renderer.RenderInfo(sess.Image.Name(), sess.Info)
	pterm.Info.Printf("Calibration ID: %s\n", sess.CalIDFromRom)
	pterm.Info.Printf("Tables: %d 2D, %d 3D\n", len(sess.Result.Tables2D), len(sess.Result.Tables3D))
	return nil
}

func runChecksum(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	sess, err := analyze(ctx, args[0])
	if err != nil {
		return err
	}
	if sess.Checksums == nil {
		pterm.Warning.Printf("Checksums not available: %v\n", sess.ChecksumErr)
		return nil
	}
	renderer.RenderChecksums(sess.Checksums)
	return nil
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	sess, err := analyze(ctx, args[0])
	if err != nil {
		return err
	}
	t, err := lookupTable(sess, args[1])
	if err != nil {
		return err
	}

	if annotate.elementType != "" {
		typ, err := models.ParseElementType(annotate.elementType)
		if err != nil {
			return err
		}
		switch t := t.(type) {
		case *models.Table2D:
			err = reader.Retype2D(sess.Image.Data, t, typ)
		case *models.Table3D:
			err = reader.Retype3D(sess.Image.Data, t, typ)
		}
		if err != nil {
			return err
		}
	}

	md := t.Meta()
	set := func(flag string, dst *string, v string) {
		if cmd.Flags().Changed(flag) {
			*dst = v
		}
	}
	set("title", &md.Title, annotate.title)
	set("category", &md.Category, annotate.category)
	set("description", &md.Description, annotate.description)
	set("name-x", &md.NameX, annotate.nameX)
	set("unit-x", &md.UnitX, annotate.unitX)
	set("name-y", &md.NameY, annotate.nameY)
	set("unit-y", &md.UnitY, annotate.unitY)
	set("unit-z", &md.UnitZ, annotate.unitZ)
	if annotate.selected {
		md.Selected = true
	}
	if annotate.unselected {
		md.Selected = false
	}

	if err := newAnalyzer().Save(ctx, sess); err != nil {
		return err
	}
	renderer.RenderTable(t, renderer.ModeValues)
	pterm.Success.Println("Metadata saved")
	return nil
}
