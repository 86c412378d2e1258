// ABOUTME: MCP resource handlers for exposing CRM data
// ABOUTME: Provides read-only access to contacts, companies, deals, and the pipeline via URI
package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sodamhq/sodam/db"
	"github.com/sodamhq/sodam/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type ResourceHandlers struct {
	db *sql.DB
}

func NewResourceHandlers(database *sql.DB) *ResourceHandlers {
	return &ResourceHandlers{db: database}
}

// ReadResource handles resource read requests
func (h *ResourceHandlers) ReadResource(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	if !strings.HasPrefix(uri, "crm://") {
		return nil, fmt.Errorf("invalid URI scheme: expected crm://")
	}

	path := strings.TrimPrefix(uri, "crm://")
	parts := strings.Split(path, "/")

	switch parts[0] {
	case "contacts":
		if len(parts) == 1 {
			return h.readAllContacts(ctx)
		}
		return h.readContact(ctx, parts[1])

	case "companies":
		if len(parts) == 1 {
			return h.readAllCompanies(ctx)
		}
		return h.readCompany(ctx, parts[1])

	case "deals":
		if len(parts) == 1 {
			return h.readAllDeals(ctx)
		}
		return h.readDeal(ctx, parts[1])

	case "pipeline":
		return h.readPipeline(ctx)

	default:
		return nil, fmt.Errorf("unknown resource: %s", parts[0])
	}
}

func (h *ResourceHandlers) readAllContacts(ctx context.Context) (*mcp.ReadResourceResult, error) {
	contacts, _, err := db.ListContacts(ctx, h.db, nil, 1, 1000)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contacts: %w", err)
	}
	return jsonResource("crm://contacts", contacts)
}

func (h *ResourceHandlers) readContact(ctx context.Context, idStr string) (*mcp.ReadResourceResult, error) {
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid contact ID: %w", err)
	}

	contact, err := db.GetContact(ctx, h.db, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contact: %w", err)
	}

	return jsonResource(fmt.Sprintf("crm://contacts/%s", idStr), contact)
}

func (h *ResourceHandlers) readAllCompanies(ctx context.Context) (*mcp.ReadResourceResult, error) {
	companies, _, err := db.ListCompanies(ctx, h.db, 1, 1000)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch companies: %w", err)
	}
	return jsonResource("crm://companies", companies)
}

func (h *ResourceHandlers) readCompany(ctx context.Context, idStr string) (*mcp.ReadResourceResult, error) {
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid company ID: %w", err)
	}

	company, err := db.GetCompany(ctx, h.db, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch company: %w", err)
	}

	// Include associated contacts
	contacts, _, err := db.ListContacts(ctx, h.db, &id, 1, 1000)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch company contacts: %w", err)
	}

	companyData := struct {
		models.Company
		Contacts []models.Contact `json:"contacts"`
	}{
		Company:  *company,
		Contacts: contacts,
	}

	return jsonResource(fmt.Sprintf("crm://companies/%s", idStr), companyData)
}

func (h *ResourceHandlers) readAllDeals(ctx context.Context) (*mcp.ReadResourceResult, error) {
	deals, _, err := db.ListDeals(ctx, h.db, "", 1, 1000)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch deals: %w", err)
	}
	return jsonResource("crm://deals", deals)
}

func (h *ResourceHandlers) readDeal(ctx context.Context, idStr string) (*mcp.ReadResourceResult, error) {
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid deal ID: %w", err)
	}

	deal, err := db.GetDeal(ctx, h.db, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch deal: %w", err)
	}

	// Include the deal's timeline, stage-change audit entries included.
	activities, _, err := db.ListActivities(ctx, h.db, db.ActivityFilter{DealID: &id}, 1, 1000)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch deal activities: %w", err)
	}

	dealData := struct {
		models.Deal
		Activities []models.Activity `json:"activities"`
	}{
		Deal:       *deal,
		Activities: activities,
	}

	return jsonResource(fmt.Sprintf("crm://deals/%s", idStr), dealData)
}

func (h *ResourceHandlers) readPipeline(ctx context.Context) (*mcp.ReadResourceResult, error) {
	summary, err := db.DealStageSummary(ctx, h.db)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize pipeline: %w", err)
	}
	return jsonResource("crm://pipeline", summary)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource: %w", err)
	}

	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}
