// ABOUTME: Company MCP tool handlers
// ABOUTME: Implements add_company, find_companies, and preview_company_delete tools
package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sodamhq/sodam/db"
	"github.com/sodamhq/sodam/models"
)

type CompanyHandlers struct {
	db *sql.DB
}

func NewCompanyHandlers(database *sql.DB) *CompanyHandlers {
	return &CompanyHandlers{db: database}
}

type AddCompanyInput struct {
	Name          string `json:"name" jsonschema:"Company name (required)"`
	Industry      string `json:"industry,omitempty" jsonschema:"Industry sector"`
	Website       string `json:"website,omitempty" jsonschema:"Company website URL"`
	Address       string `json:"address,omitempty" jsonschema:"Company address"`
	EmployeeCount *int   `json:"employee_count,omitempty" jsonschema:"Number of employees"`
	Memo          string `json:"memo,omitempty" jsonschema:"Free-form memo"`
}

type CompanyOutput struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Industry      string `json:"industry,omitempty"`
	Website       string `json:"website,omitempty"`
	Address       string `json:"address,omitempty"`
	EmployeeCount *int   `json:"employee_count,omitempty"`
	Memo          string `json:"memo,omitempty"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

func (h *CompanyHandlers) AddCompany(ctx context.Context, request *mcp.CallToolRequest, input AddCompanyInput) (*mcp.CallToolResult, CompanyOutput, error) {
	if input.Name == "" {
		return nil, CompanyOutput{}, fmt.Errorf("name is required")
	}

	// Reuse an existing company with the same name instead of duplicating.
	existing, err := db.FindCompanyByName(ctx, h.db, input.Name)
	if err != nil {
		return nil, CompanyOutput{}, fmt.Errorf("failed to lookup company: %w", err)
	}
	if existing != nil {
		return nil, companyToOutput(existing), nil
	}

	company := &models.Company{
		Name:          input.Name,
		Industry:      input.Industry,
		Website:       input.Website,
		Address:       input.Address,
		EmployeeCount: input.EmployeeCount,
		Memo:          input.Memo,
	}
	if err := db.CreateCompany(ctx, h.db, company); err != nil {
		return nil, CompanyOutput{}, fmt.Errorf("failed to create company: %w", err)
	}

	return nil, companyToOutput(company), nil
}

type FindCompaniesInput struct {
	Query string `json:"query" jsonschema:"Search query matched against company names (required)"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum results to return (default 10)"`
}

type FindCompaniesOutput struct {
	Companies []CompanyOutput `json:"companies"`
	Count     int             `json:"count"`
}

func (h *CompanyHandlers) FindCompanies(ctx context.Context, request *mcp.CallToolRequest, input FindCompaniesInput) (*mcp.CallToolResult, FindCompaniesOutput, error) {
	if input.Query == "" {
		return nil, FindCompaniesOutput{}, fmt.Errorf("query is required")
	}

	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}

	results, err := db.Search(ctx, h.db, input.Query, limit)
	if err != nil {
		return nil, FindCompaniesOutput{}, fmt.Errorf("failed to search companies: %w", err)
	}

	output := FindCompaniesOutput{Companies: []CompanyOutput{}}
	for _, match := range results.Companies {
		company, err := db.GetCompany(ctx, h.db, match.ID)
		if err != nil {
			return nil, FindCompaniesOutput{}, fmt.Errorf("failed to fetch company: %w", err)
		}
		output.Companies = append(output.Companies, companyToOutput(company))
	}
	output.Count = len(output.Companies)

	return nil, output, nil
}

type PreviewCompanyDeleteInput struct {
	ID string `json:"id" jsonschema:"Company ID (required)"`
}

type PreviewCompanyDeleteOutput struct {
	Entity            string `json:"entity"`
	DetachedContacts  int    `json:"detached_contacts"`
	DetachedDeals     int    `json:"detached_deals"`
	DeletedActivities int    `json:"deleted_activities"`
	DeletedTasks      int    `json:"deleted_tasks"`
}

// PreviewCompanyDelete reports what a company deletion would touch without
// deleting anything.
func (h *CompanyHandlers) PreviewCompanyDelete(ctx context.Context, request *mcp.CallToolRequest, input PreviewCompanyDeleteInput) (*mcp.CallToolResult, PreviewCompanyDeleteOutput, error) {
	if input.ID == "" {
		return nil, PreviewCompanyDeleteOutput{}, fmt.Errorf("id is required")
	}

	id, err := uuid.Parse(input.ID)
	if err != nil {
		return nil, PreviewCompanyDeleteOutput{}, fmt.Errorf("invalid id: %w", err)
	}

	impact, err := db.CompanyDeletePreview(ctx, h.db, id)
	if err != nil {
		return nil, PreviewCompanyDeleteOutput{}, fmt.Errorf("failed to preview delete: %w", err)
	}

	return nil, PreviewCompanyDeleteOutput{
		Entity:            impact.EntityName,
		DetachedContacts:  impact.SetNull.Contacts,
		DetachedDeals:     impact.SetNull.Deals,
		DeletedActivities: impact.Cascade.Activities,
		DeletedTasks:      impact.Cascade.Tasks,
	}, nil
}

func companyToOutput(company *models.Company) CompanyOutput {
	return CompanyOutput{
		ID:            company.ID.String(),
		Name:          company.Name,
		Industry:      company.Industry,
		Website:       company.Website,
		Address:       company.Address,
		EmployeeCount: company.EmployeeCount,
		Memo:          company.Memo,
		CreatedAt:     company.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     company.UpdatedAt.Format(time.RFC3339),
	}
}
