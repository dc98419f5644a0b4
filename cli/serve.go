// ABOUTME: Web server subcommand
// ABOUTME: Serves the HireOS JSON API until interrupted
package cli

import (
	"context"
	"flag"

	"github.com/harperreed/hireos/ghl"
	"github.com/harperreed/hireos/logging"
	"github.com/harperreed/hireos/web"
)

// ServeCommand starts the HTTP API.
func ServeCommand(ctx context.Context, svc *ghl.Service, defaultPort int, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	port := fs.Int("port", defaultPort, "Port to listen on")
	_ = fs.Parse(args)

	return web.NewServer(svc, logging.Component("web")).Start(ctx, *port)
}
