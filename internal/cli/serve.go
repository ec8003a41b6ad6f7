package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"docchat/internal/httpapi"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the chat API over HTTP",
	Long: `Starts the HTTP API. Clients create a session, upload PDF and XLSX files
as multipart "files", then post questions to the session.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Log.Sync()

	addr := a.Config.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer a.Sessions.Shutdown(context.Background())

	srv := httpapi.NewServer(httpapi.RouterConfig{
		Log: a.Log.With("component", "http"),
		SessionHandler: httpapi.NewSessionHandler(a.Log, a.Service, a.Sessions,
			int64(a.Config.Server.MaxUploadMB)<<20),
	})
	a.Log.Info("listening", "addr", addr)
	return srv.Run(ctx, addr)
}
