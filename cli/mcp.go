// ABOUTME: MCP server subcommand
// ABOUTME: Starts the MCP server for agent integration
package cli

import (
	"context"
	"database/sql"
	"log"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sodamhq/sodam/handlers"
)

// MCPCommand starts the MCP server on stdio
func MCPCommand(db *sql.DB) error {
	log.Println("Starting Sodam MCP Server...")

	companyHandlers := handlers.NewCompanyHandlers(db)
	contactHandlers := handlers.NewContactHandlers(db)
	dealHandlers := handlers.NewDealHandlers(db)
	taskHandlers := handlers.NewTaskHandlers(db)
	queryHandlers := handlers.NewQueryHandlers(db)
	vizHandlers := handlers.NewVizHandlers(db)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "sodam",
		Version: "0.1.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_company",
		Description: "Add a new company to the CRM",
	}, companyHandlers.AddCompany)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_companies",
		Description: "Search for companies by name, industry, or website",
	}, companyHandlers.FindCompanies)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "preview_company_delete",
		Description: "Preview what deleting a company would detach or remove, without deleting",
	}, companyHandlers.PreviewCompanyDelete)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_contact",
		Description: "Add a new contact to the CRM",
	}, contactHandlers.AddContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_contacts",
		Description: "Search for contacts by name, email, or phone",
	}, contactHandlers.FindContacts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_contact",
		Description: "Update an existing contact's information",
	}, contactHandlers.UpdateContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "log_activity",
		Description: "Log a call, email, meeting, or note against a contact, company, or deal",
	}, contactHandlers.LogActivity)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_deal",
		Description: "Create a new deal in the CRM with optional company and contact",
	}, dealHandlers.CreateDeal)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_deal",
		Description: "Update a deal's title, amount, close date, or memo (not its stage)",
	}, dealHandlers.UpdateDeal)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "move_deal_stage",
		Description: "Move a deal to another pipeline stage, passing the updated_at last seen to detect concurrent edits",
	}, dealHandlers.MoveDealStage)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_deal",
		Description: "Delete a deal and its timeline",
	}, dealHandlers.DeleteDeal)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_task",
		Description: "Add a task, optionally attached to a contact, company, or deal",
	}, taskHandlers.AddTask)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "complete_task",
		Description: "Toggle a task's completion flag",
	}, taskHandlers.CompleteTask)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_tasks",
		Description: "List tasks filtered by completion, priority, or deal",
	}, taskHandlers.FindTasks)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_crm",
		Description: "Free-text search across contacts, companies, and deals",
	}, queryHandlers.SearchCRM)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "pipeline_summary",
		Description: "Deal count and amount totals per pipeline stage",
	}, queryHandlers.PipelineSummary)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_graph",
		Description: "Generate a GraphViz DOT graph of the pipeline or a single company",
	}, vizHandlers.GenerateGraph)

	resourceHandlers := handlers.NewResourceHandlers(db)
	for _, resource := range []struct {
		uri, name, description string
	}{
		{"crm://contacts", "contacts", "All contacts"},
		{"crm://companies", "companies", "All companies"},
		{"crm://deals", "deals", "All deals"},
		{"crm://pipeline", "pipeline", "Deal count and amount totals per stage"},
	} {
		server.AddResource(&mcp.Resource{
			URI:         resource.uri,
			Name:        resource.name,
			Description: resource.description,
			MIMEType:    "application/json",
		}, resourceHandlers.ReadResource)
	}

	promptHandlers := handlers.NewPromptHandlers(db)
	for _, prompt := range []struct {
		name, description string
	}{
		{"contact-summary", "Summarize a contact and suggest next steps"},
		{"pipeline-analysis", "Analyze pipeline health and distribution"},
		{"company-overview", "Overview of a company and its contacts"},
		{"follow-up-email", "Draft a follow-up email, optionally from a saved template"},
	} {
		server.AddPrompt(&mcp.Prompt{
			Name:        prompt.name,
			Description: prompt.description,
		}, promptHandlers.GetPrompt)
	}

	ctx := context.Background()
	return server.Run(ctx, &mcp.StdioTransport{})
}
