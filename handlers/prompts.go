// ABOUTME: MCP prompt handlers for reusable CRM workflow templates
// ABOUTME: Provides standardized prompts for common CRM operations
package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sodamhq/sodam/db"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type PromptHandlers struct {
	db *sql.DB
}

func NewPromptHandlers(database *sql.DB) *PromptHandlers {
	return &PromptHandlers{db: database}
}

// GetPrompt generates the prompt message based on the template
func (h *PromptHandlers) GetPrompt(ctx context.Context, request *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	name := request.Params.Name
	arguments := request.Params.Arguments
	switch name {
	case "contact-summary":
		return h.getContactSummaryPrompt(ctx, arguments)
	case "pipeline-analysis":
		return h.getPipelineAnalysisPrompt(ctx)
	case "company-overview":
		return h.getCompanyOverviewPrompt(ctx, arguments)
	case "follow-up-email":
		return h.getFollowUpEmailPrompt(ctx, arguments)
	default:
		return nil, fmt.Errorf("unknown prompt: %s", name)
	}
}

func (h *PromptHandlers) getContactSummaryPrompt(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	contactIDStr, ok := args["contact_id"]
	if !ok {
		return nil, fmt.Errorf("contact_id is required")
	}

	contactID, err := uuid.Parse(contactIDStr)
	if err != nil {
		return nil, fmt.Errorf("invalid contact_id: %w", err)
	}

	contact, err := db.GetContact(ctx, h.db, contactID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contact: %w", err)
	}

	var companyName string
	if contact.CompanyID != nil {
		company, err := db.GetCompany(ctx, h.db, *contact.CompanyID)
		if err == nil {
			companyName = company.Name
		}
	}

	activities, total, err := db.ListActivities(ctx, h.db, db.ActivityFilter{ContactID: &contactID}, 1, 10)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch activities: %w", err)
	}

	var promptText strings.Builder
	promptText.WriteString("Please provide a comprehensive summary of this contact:\n\n")
	promptText.WriteString(fmt.Sprintf("Name: %s\n", contact.Name))
	if contact.Email != "" {
		promptText.WriteString(fmt.Sprintf("Email: %s\n", contact.Email))
	}
	if contact.Phone != "" {
		promptText.WriteString(fmt.Sprintf("Phone: %s\n", contact.Phone))
	}
	if contact.Position != "" {
		promptText.WriteString(fmt.Sprintf("Position: %s\n", contact.Position))
	}
	if companyName != "" {
		promptText.WriteString(fmt.Sprintf("Company: %s\n", companyName))
	}
	if contact.Memo != "" {
		promptText.WriteString(fmt.Sprintf("\nMemo: %s\n", contact.Memo))
	}
	if total > 0 {
		promptText.WriteString(fmt.Sprintf("\nRecent activity (%d total):\n", total))
		for _, activity := range activities {
			promptText.WriteString(fmt.Sprintf("  - [%s] %s (%s)\n", activity.Type, activity.Title, activity.CreatedAt.Format("2006-01-02")))
		}
	}

	promptText.WriteString("\nPlease analyze this contact and provide:")
	promptText.WriteString("\n1. A brief summary of their role and background")
	promptText.WriteString("\n2. Recommendations for next steps or follow-up actions")
	promptText.WriteString("\n3. Any patterns or insights from their interaction history")

	return promptResult(fmt.Sprintf("Summary for contact: %s", contact.Name), promptText.String()), nil
}

func (h *PromptHandlers) getPipelineAnalysisPrompt(ctx context.Context) (*mcp.GetPromptResult, error) {
	summary, err := db.DealStageSummary(ctx, h.db)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize pipeline: %w", err)
	}

	totalCount := 0
	totalValue := int64(0)
	for _, s := range summary {
		totalCount += s.Count
		totalValue += s.Total
	}

	var promptText strings.Builder
	promptText.WriteString("Please analyze the current deal pipeline:\n\n")
	promptText.WriteString(fmt.Sprintf("Total Deals: %d\n", totalCount))
	promptText.WriteString(fmt.Sprintf("Total Value: %d\n\n", totalValue))
	promptText.WriteString("Pipeline by Stage:\n")
	for stage, s := range summary {
		promptText.WriteString(fmt.Sprintf("  - %s: %d deals, %d\n", stage, s.Count, s.Total))
	}

	promptText.WriteString("\nPlease provide:")
	promptText.WriteString("\n1. Analysis of pipeline health and distribution")
	promptText.WriteString("\n2. Stages that look under- or over-weighted")
	promptText.WriteString("\n3. Suggested focus deals for this week")

	return promptResult("Deal pipeline analysis", promptText.String()), nil
}

func (h *PromptHandlers) getCompanyOverviewPrompt(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	companyIDStr, ok := args["company_id"]
	if !ok {
		return nil, fmt.Errorf("company_id is required")
	}

	companyID, err := uuid.Parse(companyIDStr)
	if err != nil {
		return nil, fmt.Errorf("invalid company_id: %w", err)
	}

	company, err := db.GetCompany(ctx, h.db, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch company: %w", err)
	}

	contacts, _, err := db.ListContacts(ctx, h.db, &companyID, 1, 100)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contacts: %w", err)
	}

	var promptText strings.Builder
	promptText.WriteString("Please provide an overview of this company:\n\n")
	promptText.WriteString(fmt.Sprintf("Name: %s\n", company.Name))
	if company.Industry != "" {
		promptText.WriteString(fmt.Sprintf("Industry: %s\n", company.Industry))
	}
	if company.Website != "" {
		promptText.WriteString(fmt.Sprintf("Website: %s\n", company.Website))
	}
	if company.EmployeeCount != nil {
		promptText.WriteString(fmt.Sprintf("Employees: %d\n", *company.EmployeeCount))
	}
	if len(contacts) > 0 {
		promptText.WriteString(fmt.Sprintf("\nContacts (%d):\n", len(contacts)))
		for _, contact := range contacts {
			line := contact.Name
			if contact.Position != "" {
				line += " (" + contact.Position + ")"
			}
			promptText.WriteString(fmt.Sprintf("  - %s\n", line))
		}
	}
	if company.Memo != "" {
		promptText.WriteString(fmt.Sprintf("\nMemo: %s\n", company.Memo))
	}

	promptText.WriteString("\nPlease summarize the relationship with this company and suggest next steps.")

	return promptResult(fmt.Sprintf("Overview for company: %s", company.Name), promptText.String()), nil
}

func (h *PromptHandlers) getFollowUpEmailPrompt(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	contactIDStr, ok := args["contact_id"]
	if !ok {
		return nil, fmt.Errorf("contact_id is required")
	}

	contactID, err := uuid.Parse(contactIDStr)
	if err != nil {
		return nil, fmt.Errorf("invalid contact_id: %w", err)
	}

	contact, err := db.GetContact(ctx, h.db, contactID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contact: %w", err)
	}

	var promptText strings.Builder
	promptText.WriteString(fmt.Sprintf("Please draft a follow-up email to %s", contact.Name))
	if contact.Position != "" {
		promptText.WriteString(fmt.Sprintf(" (%s)", contact.Position))
	}
	promptText.WriteString(".\n")

	// Offer saved templates as starting points if any exist.
	templates, err := db.ListEmailTemplates(ctx, h.db)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch templates: %w", err)
	}
	if name, ok := args["template"]; ok && name != "" {
		for _, tmpl := range templates {
			if tmpl.Name == name {
				promptText.WriteString(fmt.Sprintf("\nBase it on this template:\nSubject: %s\n\n%s\n", tmpl.Subject, tmpl.Body))
				break
			}
		}
	} else if len(templates) > 0 {
		promptText.WriteString("\nAvailable templates:\n")
		for _, tmpl := range templates {
			promptText.WriteString(fmt.Sprintf("  - %s: %s\n", tmpl.Name, tmpl.Subject))
		}
	}

	promptText.WriteString("\nKeep the tone professional and concise.")

	return promptResult(fmt.Sprintf("Follow-up email for: %s", contact.Name), promptText.String()), nil
}

func promptResult(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []*mcp.PromptMessage{
			{
				Role: "user",
				Content: &mcp.TextContent{
					Text: text,
				},
			},
		},
	}
}
