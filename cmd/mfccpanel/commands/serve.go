package commands

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/thomasteplick/mfccpanel/panel"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP control panel",
	Long: `Serve the control panel on server.addr (default 127.0.0.1:8080).

Clips uploaded in the browser are sent to the feature service; the
returned matrix is drawn as a heatmap and a line graph with statistics,
console output and command history.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		p := panel.New(cfg, client(), log)
		return p.ListenAndServe(ctx, cfg.Server.Addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (server.addr)")
	if err := v.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr")); err != nil {
		panic(err)
	}
}
