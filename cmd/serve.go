package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/KaramelBytes/fraudlens-cli/internal/server"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	srvAddr    string
	srvPreload string
	srvFlags   = tableFlags{sheetIndex: 1}
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard over HTTP; each upload replaces the loaded table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		lopt, err := loadOptions(c, &srvFlags)
		if err != nil {
			return err
		}
		popt := pipelineOptions(c, &srvFlags)
		s := server.New(server.Options{
			Load:           lopt,
			Pipeline:       popt,
			MaxUploadBytes: int64(c.MaxUploadMB) << 20,
		})

		if srvPreload != "" {
			d, err := analyzeFile(srvPreload, lopt, popt)
			if err != nil {
				return fmt.Errorf("preload: %w", err)
			}
			s.Store().Replace(d)
			log.Infof("preloaded %s (%d rows)", d.Source, d.Rows)
		}

		addr := pick(srvAddr, c.ServerAddr)
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Serving FraudLens dashboard on %s\n", addr)
		return s.ListenAndServe(ctx, addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&srvAddr, "addr", "", "listen address (default from config, :8080)")
	serveCmd.Flags().StringVar(&srvPreload, "load", "", "optional table to load before serving")
	srvFlags.register(serveCmd)
	_ = serveCmd.Flags().MarkHidden("format")
}
