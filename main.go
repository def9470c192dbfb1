package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tosih/denso-rom-tool/pkg/analyzer"
	"github.com/tosih/denso-rom-tool/pkg/config"
	"github.com/tosih/denso-rom-tool/pkg/store"
)

var (
	configPath   string
	verbose      bool
	storeBackend string

	cfg    *config.Config
	logger *zap.Logger
	st     store.Store
)

var rootCmd = &cobra.Command{
	Use:   "denso-rom-tool",
	Short: "Find and edit calibration tables in Denso ECU ROM images",
	Long: `denso-rom-tool scans Denso (SH705x) ECU ROM dumps for 2D and 3D
calibration table records, decodes their axes and values, verifies the
checksum table and keeps table annotations in a sidecar YAML file or a
SQLite database.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if storeBackend != "" {
			cfg.Store.Backend = storeBackend
			if err := cfg.Validate(); err != nil {
				return err
			}
		}

		logger, err = buildLogger(cfg.Logging)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		st, err = openStore(cfg.Store)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if st != nil {
			if err := st.Close(); err != nil {
				logger.Warn("failed to close store", zap.Error(err))
			}
		}
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func buildLogger(lc config.LoggingConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if !lc.JSON {
		zc.Encoding = "console"
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	if lc.Level != "" {
		level, err := zap.ParseAtomicLevel(lc.Level)
		if err != nil {
			return nil, err
		}
		zc.Level = level
	}
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return zc.Build()
}

func openStore(sc config.StoreConfig) (store.Store, error) {
	switch sc.Backend {
	case config.BackendSQLite:
		return store.OpenSQLite(sc.SQLitePath)
	default:
		return store.NewYAMLStore(), nil
	}
}

func newAnalyzer() *analyzer.Analyzer {
	return analyzer.New(cfg, st, logger)
}

// analyze opens path with a progress bar.
func analyze(ctx context.Context, path string) (*analyzer.Session, error) {
	pb, _ := pterm.DefaultProgressbar.
		WithTotal(100).
		WithTitle("Scanning " + path).
		WithRemoveWhenDone(true).
		Start()

	last := 0
	sess, err := newAnalyzer().Open(ctx, path, func(p int) {
		if p > last {
			pb.Add(p - last)
			last = p
		}
	})
	if pb.IsActive {
		pb.Stop()
	}
	if err != nil {
		return nil, err
	}

	if sess.CalIDMismatch() {
		pterm.Warning.Printf("Stored calibration ID %s does not match ROM (%s)\n",
			sess.Rom.CalibrationID, sess.CalIDFromRom)
	}
	if sess.Merge.Stale > 0 {
		pterm.Warning.Printf("%d stored table(s) no longer found in ROM\n", sess.Merge.Stale)
	}
	return sess, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "denso-rom-tool.yaml", "Config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&storeBackend, "store", "", "Metadata store: yaml or sqlite (overrides config)")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(checksumCmd)
	rootCmd.AddCommand(annotateCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(fixChecksumsCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}
