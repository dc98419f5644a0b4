// ABOUTME: Entry point for the HireOS CLI, web API, and MCP server
// ABOUTME: Routes to GHL sync, candidate, serve, or MCP commands based on arguments
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/harperreed/hireos/cli"
	"github.com/harperreed/hireos/config"
	"github.com/harperreed/hireos/db"
	"github.com/harperreed/hireos/ghl"
	"github.com/harperreed/hireos/logging"
)

const version = "0.2.0"

type command func(ctx context.Context, svc *ghl.Service, args []string) error

var ghlCommands = map[string]command{
	"preview": cli.GHLPreviewCommand,
	"sync":    cli.GHLSyncCommand,
	"analyze": cli.GHLAnalyzeCommand,
	"status":  cli.GHLStatusCommand,
}

var ghlNested = map[string]map[string]command{
	"contact": {
		"get":    cli.GHLContactGetCommand,
		"update": cli.GHLContactUpdateCommand,
	},
	"workflow": {
		"add": cli.GHLWorkflowAddCommand,
	},
	"token": {
		"set":     cli.GHLTokenSetCommand,
		"show":    cli.GHLTokenShowCommand,
		"refresh": cli.GHLTokenRefreshCommand,
	},
}

func main() {
	// Global flags
	showVersion := flag.Bool("version", false, "Show version and exit")
	dbPath := flag.String("db-path", "", "Database path (default: ~/.local/share/hireos/hireos.db)")
	initOnly := flag.Bool("init", false, "Initialize database and exit")

	// Parse global flags but don't fail on unknown (for subcommands)
	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("hireos version %s\n", version)
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	log := logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	args := flag.Args()
	if len(args) == 0 && !*initOnly {
		printUsage()
		os.Exit(0)
	}

	database, err := db.OpenDatabase(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("failed to open database")
	}

	if *initOnly {
		log.Info().Str("path", cfg.DBPath).Msg("database initialized")
		_ = database.Close()
		os.Exit(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	svc := ghl.NewService(cfg, database, log)

	err = run(ctx, cfg, database, svc, args)
	stop()
	_ = database.Close()

	if err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, database *sql.DB, svc *ghl.Service, args []string) error {
	name, rest := args[0], args[1:]

	switch name {
	case "mcp":
		return cli.MCPCommand(ctx, database, svc, version)

	case "serve":
		return cli.ServeCommand(ctx, svc, cfg.Server.Port, rest)

	case "candidates":
		if len(rest) == 0 {
			return usageError("candidates requires a subcommand")
		}
		switch rest[0] {
		case "add":
			return cli.CandidateAddCommand(ctx, svc.Candidates(), rest[1:])
		case "list":
			return cli.CandidateListCommand(ctx, svc.Candidates(), rest[1:])
		default:
			return usageError("unknown candidates command: " + rest[0])
		}

	case "ghl":
		if len(rest) == 0 {
			return usageError("ghl requires a subcommand")
		}
		if cmd, ok := ghlCommands[rest[0]]; ok {
			return cmd(ctx, svc, rest[1:])
		}
		group, ok := ghlNested[rest[0]]
		if !ok {
			return usageError("unknown ghl command: " + rest[0])
		}
		if len(rest) < 2 {
			return usageError("ghl " + rest[0] + " requires a subcommand")
		}
		cmd, ok := group[rest[1]]
		if !ok {
			return usageError("unknown ghl " + rest[0] + " command: " + rest[1])
		}
		return cmd(ctx, svc, rest[2:])

	default:
		return usageError("unknown command: " + name)
	}
}

func usageError(msg string) error {
	printUsage()
	return fmt.Errorf("%s", msg)
}

func printUsage() {
	fmt.Printf(`hireos v%s - Hiring pipeline toolkit with GoHighLevel sync

USAGE:
  hireos [global flags] <command> [subcommand] [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --db-path <path>       Database path (default: ~/.local/share/hireos/hireos.db)
  --init                 Initialize database and exit

COMMANDS:
  mcp                    Start MCP server for Claude Desktop
  serve                  Start the JSON API
    --port <n>             Port to listen on (default: $PORT or 8080)
  candidates             Candidate management
  ghl                    GoHighLevel integration

CANDIDATE COMMANDS:
  hireos candidates add     Add a candidate
    --name <name>             Candidate name (required)
    --email <email>           Email address
    --phone <phone>           Phone number
    --status <status>         Pipeline status (default: new)

  hireos candidates list    List candidates
    --query <text>            Search by name or email
    --limit <n>               Max results (default: 50)
    --unlinked                Only candidates without a GHL contact

GHL COMMANDS:
  hireos ghl preview        Show which contacts would be linked, without writing
  hireos ghl sync           Link GHL contacts to candidates by name
    --dry-run                 Preview only
    --max-records <n>         Stop after n remote contacts (default: 300)
    --page-size <n>           Contacts per page (default: 100)
    --verbose                 Log every record
    --json                    Print the result as JSON

  hireos ghl analyze        Compare remote and local names (exact/partial/unmatched)
  hireos ghl status         Show the last sync run

  hireos ghl contact get --id <id>
  hireos ghl contact update --id <id> [--first-name --last-name --email --phone]

  hireos ghl workflow add --contact <id> --workflow <id> [--start <RFC3339>]

  hireos ghl token set      Store an OAuth token pair
    --access-token <token>    Access token (required)
    --refresh-token <token>   Refresh token (prompted if omitted)
    --expires-in <duration>   Access token lifetime (default: 24h)
    --location-id <id>        GHL location
  hireos ghl token show     Show the stored token (masked)
  hireos ghl token refresh  Force a token refresh

ENVIRONMENT:
  GHL_API_KEY, GHL_CLIENT_ID, GHL_CLIENT_SECRET, GHL_PAGE_SIZE, GHL_MAX_RECORDS,
  GHL_PAGE_DELAY, LOG_LEVEL, LOG_FORMAT, PORT (a .env file is read if present)

EXAMPLES:
  hireos candidates add --name "Jane Doe" --email jane@example.com
  hireos ghl preview
  hireos ghl sync --max-records 1000 --verbose

`, version)
}
