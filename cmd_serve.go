package main

import (
	"github.com/spf13/cobra"

	"github.com/tosih/denso-rom-tool/pkg/web"
)

var (
	servePort      int
	serveNoBrowser bool
)

var serveCmd = &cobra.Command{
	Use:   "serve <rom.bin|dir>",
	Short: "Start the web table viewer",
	Long: `Serve a browser viewer for every .bin file in the directory of the
given ROM (or in the given directory).`,
	Args: cobra.ExactArgs(1),
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port (default from config)")
	serveCmd.Flags().BoolVar(&serveNoBrowser, "no-browser", false, "Do not open a browser")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	port := cfg.Web.Port
	if servePort > 0 {
		port = servePort
	}
	open := cfg.Web.OpenBrowser && !serveNoBrowser

	return web.NewServer(args[0], port, open, newAnalyzer(), logger).Start(ctx)
}
