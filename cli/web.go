// ABOUTME: Web UI server subcommand
// ABOUTME: Starts the HTMX dashboard and pipeline board
package cli

import (
	"database/sql"
	"flag"

	"github.com/sodamhq/sodam/web"
)

// WebCommand runs the browser UI server.
func WebCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("web", flag.ExitOnError)
	port := fs.Int("port", 8000, "Port to listen on")
	_ = fs.Parse(args)

	server, err := web.NewServer(database)
	if err != nil {
		return err
	}
	return server.Start(*port)
}
