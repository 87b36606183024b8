package cmd

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/runger/cmdbox/internal/logging"
	"github.com/runger/cmdbox/internal/rpc"
)

var serveSocket string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON RPC interface",
	Long: `Serve the line-delimited JSON RPC interface.

By default requests are read from stdin and answered on stdout, one
JSON object per line. With --socket the server listens on a unix socket
instead and handles multiple connections.

Methods: search_commands, add_command, get_command, delete_command,
list_tags, list_categories.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveSocket, "socket", "", "listen on a unix socket instead of stdio")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	logger := logging.New(&logging.Config{Level: logging.ParseLevel(cfg.Log.Level)})
	server := rpc.NewServer(st, newSearcher(cfg, st), cfg.Search.DefaultLimit, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	socket := serveSocket
	if socket == "" {
		socket = cfg.Serve.SocketPath
	}

	if socket != "" {
		err = server.ServeUnix(ctx, socket)
	} else {
		err = server.ServeStdio(ctx)
	}
	if errors.Is(err, context.Canceled) {
		return nil // clean shutdown on signal
	}
	return err
}
