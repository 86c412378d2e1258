// ABOUTME: Entry point for the sodam CRM server and CLI
// ABOUTME: Routes to the MCP server, API server, web UI, TUI, or CRM commands
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/sodamhq/sodam/cli"
	"github.com/sodamhq/sodam/db"
	"github.com/sodamhq/sodam/tui"
)

const version = "0.1.0"

func main() {
	// .env is optional; absence is not an error
	_ = godotenv.Load()

	showVersion := flag.Bool("version", false, "Show version and exit")
	dbPath := flag.String("db-path", "", "Database path (default: ~/.local/share/sodam/sodam.db)")
	initOnly := flag.Bool("init", false, "Initialize database and exit")

	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("sodam version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 && !*initOnly {
		printUsage()
		os.Exit(0)
	}

	database, err := db.OpenDatabase(getDatabasePath(*dbPath))
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	if *initOnly {
		log.Println("Database initialized successfully")
		os.Exit(0)
	}

	command := args[0]
	commandArgs := args[1:]

	switch command {
	case "mcp":
		if err := cli.MCPCommand(database); err != nil {
			log.Fatalf("MCP server failed: %v", err)
		}

	case "serve":
		if err := cli.ServeCommand(database, commandArgs); err != nil {
			log.Fatalf("API server failed: %v", err)
		}

	case "web":
		if err := cli.WebCommand(database, commandArgs); err != nil {
			log.Fatalf("Web server failed: %v", err)
		}

	case "tui":
		if err := tui.Run(database); err != nil {
			log.Fatalf("TUI failed: %v", err)
		}

	case "dashboard":
		if err := cli.DashboardCommand(database, commandArgs); err != nil {
			log.Fatalf("Error: %v", err)
		}

	case "graph":
		if err := cli.GraphCommand(database, commandArgs); err != nil {
			log.Fatalf("Error: %v", err)
		}

	case "crm":
		if len(commandArgs) == 0 {
			fmt.Println("Error: crm requires a subcommand")
			printUsage()
			os.Exit(1)
		}
		runCRMCommand(database, commandArgs[0], commandArgs[1:])

	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runCRMCommand(database *sql.DB, name string, args []string) {
	commands := map[string]func(*sql.DB, []string) error{
		"add-contact":    cli.AddContactCommand,
		"list-contacts":  cli.ListContactsCommand,
		"update-contact": cli.UpdateContactCommand,
		"delete-contact": cli.DeleteContactCommand,
		"add-company":    cli.AddCompanyCommand,
		"list-companies": cli.ListCompaniesCommand,
		"update-company": cli.UpdateCompanyCommand,
		"delete-company": cli.DeleteCompanyCommand,
		"add-deal":       cli.AddDealCommand,
		"list-deals":     cli.ListDealsCommand,
		"move-deal":      cli.MoveDealCommand,
		"delete-deal":    cli.DeleteDealCommand,
		"pipeline":       cli.PipelineCommand,
		"add-task":       cli.AddTaskCommand,
		"list-tasks":     cli.ListTasksCommand,
		"complete-task":  cli.CompleteTaskCommand,
		"add-tag":        cli.AddTagCommand,
		"list-tags":      cli.ListTagsCommand,
		"delete-tag":     cli.DeleteTagCommand,
		"tag":            cli.TagCommand,
		"search":         cli.SearchCommand,
	}

	cmd, ok := commands[name]
	if !ok {
		fmt.Printf("Unknown crm command: %s\n\n", name)
		printUsage()
		os.Exit(1)
	}
	if err := cmd(database, args); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func getDatabasePath(dbPath string) string {
	if dbPath != "" {
		return dbPath
	}
	return filepath.Join(xdg.DataHome, "sodam", "sodam.db")
}

func printUsage() {
	fmt.Printf(`sodam v%s - CRM with an auditable deal pipeline

USAGE:
  sodam [global flags] <command> [subcommand] [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --db-path <path>       Database path (default: ~/.local/share/sodam/sodam.db)
  --init                 Initialize database and exit

COMMANDS:
  mcp                    Start MCP server (for Claude Desktop integration)
  serve                  Start REST API server
    --addr <addr>          Listen address (default: :8080)
  web                    Start browser UI (dashboard + pipeline board)
    --port <n>             Port to listen on (default: 8000)
  tui                    Interactive terminal UI
  dashboard              Print pipeline dashboard to stdout
  graph                  Generate a relationship graph in DOT format
    --type <type>          pipeline or company
    --id <uuid>            Company ID (for --type company)
    --output <file>        Output file (default: stdout)
  crm                    CRM management commands

CRM COMMANDS:
  sodam crm add-contact      Add a new contact
    --name <name>              Contact name (required)
    --email <email>            Email address
    --phone <phone>            Phone number
    --position <position>      Job title
    --company <company>        Company name (created if missing)

  sodam crm list-contacts    List contacts
    --company <name>           Filter by company name
    --limit <n>                Max results (default: 50)

  sodam crm update-contact [flags] <id>  Update an existing contact
    --name, --email, --phone, --position, --memo
    Note: flags must come before the contact ID

  sodam crm delete-contact <id>  Delete a contact (shows impact, asks to confirm)
    --force                    Skip confirmation

  sodam crm search <query>   Search contacts, companies, and deals

  sodam crm add-company      Add a new company
    --name <name>              Company name (required)
    --industry <industry>      Industry
    --website <url>            Website

  sodam crm list-companies   List companies

  sodam crm update-company [flags] <id>  Update an existing company
    --name, --industry, --website, --memo
    Note: flags must come before the company ID

  sodam crm delete-company <id>  Delete a company (shows impact, asks to confirm)
    --force                    Skip confirmation

  sodam crm add-deal         Add a new deal
    --title <title>            Deal title (required)
    --company <company>        Company name
    --amount <n>               Deal amount
    --stage <stage>            Stage (default: lead)

  sodam crm list-deals       List deals
    --stage <stage>            Filter by stage
    --limit <n>                Max results (default: 50)

  sodam crm move-deal <id>   Move a deal to another stage
    --stage <stage>            Target stage (required)
    --as-of <timestamp>        The updated_at you last saw (RFC3339)

  sodam crm delete-deal <id> Delete a deal

  sodam crm pipeline         Show deal counts and totals per stage

  sodam crm add-task         Add a task
    --title <title>            Task title (required)
    --due <timestamp>          Due date (RFC3339)
    --priority <p>             low, medium, or high (default: medium)
    --deal <id>                Attach to a deal

  sodam crm list-tasks       List open tasks
    --all                      Include completed tasks
    --priority <p>             Filter by priority

  sodam crm complete-task <id>  Toggle a task's completion

  sodam crm add-tag          Create a tag
    --name <name>              Tag name (required)
    --color <hex>              Hex color (default: #808080)

  sodam crm list-tags        List tags

  sodam crm delete-tag <id>  Delete a tag and its assignments

  sodam crm tag <entity-id> <tag-id>  Attach a tag
    --entity <type>            contact, company, or deal (default: contact)
    --remove                   Detach instead of attach

EXAMPLES:
  # Start MCP server for Claude Desktop
  sodam mcp

  # Add a contact at a company
  sodam crm add-contact --name "Kim Minjun" --email "minjun@hanbit.io" --company "Hanbit Systems"

  # Move a deal forward in the pipeline
  sodam crm move-deal 6f1c... --stage qualified

  # See the pipeline at a glance
  sodam crm pipeline

`, version)
}
