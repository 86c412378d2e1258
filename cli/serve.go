// ABOUTME: REST API server subcommand
// ABOUTME: Starts the HTTP API with graceful shutdown on SIGINT/SIGTERM
package cli

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/sodamhq/sodam/api"
)

// ServeCommand runs the REST API server until interrupted.
func ServeCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", ":8080", "Listen address")
	_ = fs.Parse(args)

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := api.NewServer(database, logger)
	return server.Run(ctx, *addr)
}
