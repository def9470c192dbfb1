package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/tosih/denso-rom-tool/pkg/export"
	"github.com/tosih/denso-rom-tool/pkg/models"
	"github.com/tosih/denso-rom-tool/pkg/rom"
)

var (
	exportFormat    string
	exportSelection string
	exportOut       string
)

var exportCmd = &cobra.Command{
	Use:   "export <rom.bin>",
	Short: "Export detected tables",
	Long: `Export detected tables in one of three formats:

  definition  one CSV row per table describing its record (default <rom>.csv)
  csv         one CSV file per table with axes and values (default <rom>_tables/)
  romraider   tab separated RomRaider clipboard text (default <rom>_romraider.txt)`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "definition", "Export format: definition, csv, romraider")
	exportCmd.Flags().StringVar(&exportSelection, "sel", "all", "Tables to export: all, selected, annotated, stored")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file or directory")
}

func runExport(cmd *cobra.Command, args []string) error {
	sel, err := export.ParseSelection(exportSelection)
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
	if len(t2)+len(t3) == 0 {
		pterm.Warning.Printf("No %s tables to export\n", exportSelection)
		return nil
	}

	switch exportFormat {
	case "definition":
		out := outputPath(args[0], ".csv")
		if err := export.WriteDefinitionFile(out, t2, t3); err != nil {
			return err
		}
		pterm.Success.Printf("Wrote %d table definitions to %s\n", len(t2)+len(t3), out)
	case "csv":
		out := outputPath(args[0], "_tables")
		n, err := export.ExportTablesToCSV(out, t2, t3)
		if err != nil {
			return err
		}
		pterm.Success.Printf("Exported %d table(s) to %s\n", n, out)
	case "romraider":
		out := outputPath(args[0], "_romraider.txt")
		if err := writeRomRaider(out, t2, t3); err != nil {
			return err
		}
		pterm.Success.Printf("Wrote %d table(s) to %s\n", len(t2)+len(t3), out)
	default:
		return fmt.Errorf("unknown export format %q", exportFormat)
	}
	return nil
}

func outputPath(romPath, suffix string) string {
	if exportOut != "" {
		return exportOut
	}
	return rom.SidecarPath(romPath, suffix)
}

// writeRomRaider writes every table's clipboard text, separated by blank lines.
func writeRomRaider(path string, t2 []*models.Table2D, t3 []*models.Table3D) error {
	var sb strings.Builder
	for _, t := range t2 {
		sb.WriteString(export.RomRaiderText(t))
		sb.WriteString("\n")
	}
	for _, t := range t3 {
		sb.WriteString(export.RomRaiderText(t))
		sb.WriteString("\n")
	}
	return os.WriteFile(path, []byte(sb.String()), 0o644)
}
