package main

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tosih/denso-rom-tool/pkg/analyzer"
	"github.com/tosih/denso-rom-tool/pkg/checksum"
	"github.com/tosih/denso-rom-tool/pkg/compare"
	"github.com/tosih/denso-rom-tool/pkg/editor"
	"github.com/tosih/denso-rom-tool/pkg/renderer"
	"github.com/tosih/denso-rom-tool/pkg/rom"
)

var (
	dryRun      bool
	compareList bool
)

var compareCmd = &cobra.Command{
	Use:   "compare <a.bin> <b.bin>",
	Short: "Compare the tables of two ROMs",
	Long: `Scan both ROMs and compare the values of tables found at the same
record location.`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

var fixChecksumsCmd = &cobra.Command{
	Use:   "fix-checksums <rom.bin>",
	Short: "Recalculate the checksum table and write it back",
	Args:  cobra.ExactArgs(1),
	RunE:  runFixChecksums,
}

var editCmd = &cobra.Command{
	Use:   "edit <rom.bin>",
	Short: "Interactively edit table values",
	Long: `Edit single cells or scale whole tables. Checksums are recalculated
and a timestamped backup is written before the ROM is modified.`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func init() {
	compareCmd.Flags().BoolVar(&compareList, "list", false, "Also list the tables of both ROMs")
	fixChecksumsCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report changes without writing")
	editCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview changes without writing")
}

func runCompare(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	// Progress bars do not stack, so both scans run silently.
	an := newAnalyzer()
	var a, b *analyzer.Session
	spinner, _ := pterm.DefaultSpinner.Start("Scanning both ROMs...")
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		a, err = an.Open(gctx, args[0], nil)
		return err
	})
	g.Go(func() (err error) {
		b, err = an.Open(gctx, args[1], nil)
		return err
	})
	if err := g.Wait(); err != nil {
		spinner.Fail(err.Error())
		return err
	}
	spinner.Success("Scan complete")

	if compareList {
		renderer.ListTables(a.Result.Tables2D, a.Result.Tables3D)
		renderer.ListTables(b.Result.Tables2D, b.Result.Tables3D)
	}

	report := compare.Compare(a.Result, b.Result)
	compare.DisplayReport(report, a.Image.Name(), b.Image.Name())
	return nil
}

func runFixChecksums(cmd *cobra.Command, args []string) error {
	img, err := rom.Open(args[0])
	if err != nil {
		return err
	}
	layout, err := checksum.LayoutFor(img.Type)
	if err != nil {
		return err
	}

	data := make([]byte, len(img.Data))
	copy(data, img.Data)
	changed, err := editor.FixChecksums(data, layout)
	if err != nil {
		return err
	}
	if len(changed) == 0 {
		pterm.Success.Println("All checksums already correct")
		return nil
	}
	pterm.Info.Printf("Checksum records to update: %v\n", changed)

	if dryRun {
		pterm.Warning.Println("DRY RUN - No changes made")
		return nil
	}
	backup, err := editor.WriteImage(img.Path, data)
	if backup != "" {
		pterm.Success.Printf("Backup created: %s\n", backup)
	}
	if err != nil {
		return err
	}
	pterm.Success.Println("Checksums fixed")
	return nil
}

func runEdit(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	sess, err := analyze(ctx, args[0])
	if err != nil {
		return err
	}
	editor.InteractiveEdit(sess.Image, sess.Result.Tables2D, sess.Result.Tables3D, dryRun)
	return nil
}
