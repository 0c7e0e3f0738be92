package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/worksheet/internal/config"
	"github.com/abhisek/worksheet/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the worksheet HTTP API",
	Long: `Serve the HTTP API: worksheet generation, saved history, printable text
and Prometheus metrics on /metrics.

The config file is watched; changes to the worksheet defaults apply to new
requests without a restart.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		st, err := e.openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		addr := e.cfg.Server.Addr
		if cmd.Flags().Changed("addr") {
			addr, _ = cmd.Flags().GetString("addr")
		}

		e.mgr.OnChange(func(cfg *config.Config) {
			e.logger.Info("configuration reloaded", "file", e.mgr.ConfigFile())
		})
		if e.mgr.ConfigFile() != "" {
			e.mgr.WatchConfig()
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := server.New(e.newService(ctx, st.EventRepo()),
			server.WithRepo(st.WorksheetRepo()),
			server.WithDefaults(func() config.Defaults { return e.mgr.Get().Defaults }),
			server.WithLogger(e.logger),
		)
		return srv.Run(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "Listen address (overrides server.addr)")
}
