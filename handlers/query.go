// ABOUTME: Cross-entity search and pipeline summary MCP tools
// ABOUTME: Implements search_crm and pipeline_summary
package handlers

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sodamhq/sodam/db"
	"github.com/sodamhq/sodam/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type QueryHandlers struct {
	db *sql.DB
}

func NewQueryHandlers(database *sql.DB) *QueryHandlers {
	return &QueryHandlers{db: database}
}

type SearchCRMInput struct {
	Query string `json:"query" jsonschema:"Search text matched against contacts, companies, and deals (required)"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum results per entity type (default 10, max 50)"`
}

type SearchCRMOutput struct {
	Contacts  []db.ContactMatch `json:"contacts"`
	Companies []db.CompanyMatch `json:"companies"`
	Deals     []db.DealMatch    `json:"deals"`
}

func (h *QueryHandlers) SearchCRM(ctx context.Context, request *mcp.CallToolRequest, input SearchCRMInput) (*mcp.CallToolResult, SearchCRMOutput, error) {
	if input.Query == "" {
		return nil, SearchCRMOutput{}, fmt.Errorf("query is required")
	}

	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}

	results, err := db.Search(ctx, h.db, input.Query, limit)
	if err != nil {
		return nil, SearchCRMOutput{}, fmt.Errorf("search failed: %w", err)
	}

	return nil, SearchCRMOutput{
		Contacts:  results.Contacts,
		Companies: results.Companies,
		Deals:     results.Deals,
	}, nil
}

type PipelineSummaryInput struct{}

type StageSummaryOutput struct {
	Stage  string `json:"stage"`
	Count  int    `json:"count"`
	Amount int64  `json:"total_amount"`
}

type PipelineSummaryOutput struct {
	Stages []StageSummaryOutput `json:"stages"`
}

// PipelineSummary reports deal count and amount totals per stage, in
// pipeline order, including empty stages.
func (h *QueryHandlers) PipelineSummary(ctx context.Context, request *mcp.CallToolRequest, input PipelineSummaryInput) (*mcp.CallToolResult, PipelineSummaryOutput, error) {
	summary, err := db.DealStageSummary(ctx, h.db)
	if err != nil {
		return nil, PipelineSummaryOutput{}, fmt.Errorf("failed to summarize pipeline: %w", err)
	}

	output := PipelineSummaryOutput{}
	for _, stage := range models.DealStages {
		s := summary[stage]
		output.Stages = append(output.Stages, StageSummaryOutput{
			Stage:  string(stage),
			Count:  s.Count,
			Amount: s.Total,
		})
	}

	return nil, output, nil
}
