package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/driftdash/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := *currentConfig()
		if serveAddr != "" {
			c.ListenAddr = serveAddr
		}
		p, st, err := buildPipeline(&c)
		if err != nil {
			return err
		}
		if err := st.Init(); err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Dashboard on %s (data: %s, reports: %s)\n", c.ListenAddr, c.DataPath, c.ReportsDir)
		return server.New(p, st, log.StandardLogger()).Serve(ctx, c.ListenAddr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides listen_addr, default :8501)")
}
