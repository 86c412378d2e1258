// ABOUTME: Deal MCP tool handlers
// ABOUTME: Implements create_deal, update_deal, move_deal_stage, and delete_deal tools
package handlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sodamhq/sodam/db"
	"github.com/sodamhq/sodam/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type DealHandlers struct {
	db *sql.DB
}

func NewDealHandlers(database *sql.DB) *DealHandlers {
	return &DealHandlers{db: database}
}

type CreateDealInput struct {
	Title             string `json:"title" jsonschema:"Deal title (required)"`
	Amount            int64  `json:"amount,omitempty" jsonschema:"Deal amount"`
	Stage             string `json:"stage,omitempty" jsonschema:"Deal stage: lead, qualified, proposal, negotiation, closed_won, closed_lost"`
	CompanyName       string `json:"company_name,omitempty" jsonschema:"Company name (created if not found)"`
	ContactName       string `json:"contact_name,omitempty" jsonschema:"Contact name (looked up, optional)"`
	ExpectedCloseDate string `json:"expected_close_date,omitempty" jsonschema:"Expected close date in ISO 8601 format"`
	Memo              string `json:"memo,omitempty" jsonschema:"Free-form memo"`
}

type DealOutput struct {
	ID                string  `json:"id"`
	Title             string  `json:"title"`
	Amount            int64   `json:"amount"`
	Stage             string  `json:"stage"`
	CompanyID         *string `json:"company_id,omitempty"`
	ContactID         *string `json:"contact_id,omitempty"`
	ExpectedCloseDate *string `json:"expected_close_date,omitempty"`
	Memo              string  `json:"memo,omitempty"`
	CreatedAt         string  `json:"created_at"`
	UpdatedAt         string  `json:"updated_at"`
}

func (h *DealHandlers) CreateDeal(ctx context.Context, request *mcp.CallToolRequest, input CreateDealInput) (*mcp.CallToolResult, DealOutput, error) {
	if input.Title == "" {
		return nil, DealOutput{}, fmt.Errorf("title is required")
	}

	stage := models.DealStage(input.Stage)
	if stage == "" {
		stage = models.StageLead
	}
	if !models.ValidStage(stage) {
		return nil, DealOutput{}, fmt.Errorf("invalid stage: %s (valid: lead, qualified, proposal, negotiation, closed_won, closed_lost)", input.Stage)
	}

	deal := &models.Deal{
		Title:  input.Title,
		Amount: input.Amount,
		Stage:  stage,
		Memo:   input.Memo,
	}

	if input.CompanyName != "" {
		company, err := findOrCreateCompany(ctx, h.db, input.CompanyName)
		if err != nil {
			return nil, DealOutput{}, err
		}
		deal.CompanyID = &company.ID
	}

	if input.ContactName != "" {
		contact, err := db.FindContactByName(ctx, h.db, input.ContactName)
		if err != nil {
			return nil, DealOutput{}, fmt.Errorf("failed to lookup contact: %w", err)
		}
		if contact != nil {
			deal.ContactID = &contact.ID
		}
	}

	if input.ExpectedCloseDate != "" {
		closeDate, err := time.Parse(time.RFC3339, input.ExpectedCloseDate)
		if err != nil {
			return nil, DealOutput{}, fmt.Errorf("invalid expected_close_date format (use ISO 8601/RFC3339): %w", err)
		}
		deal.ExpectedCloseDate = &closeDate
	}

	if err := db.CreateDeal(ctx, h.db, deal); err != nil {
		return nil, DealOutput{}, fmt.Errorf("failed to create deal: %w", err)
	}

	return nil, dealToOutput(deal), nil
}

type UpdateDealInput struct {
	ID                string `json:"id" jsonschema:"Deal ID (required)"`
	Title             string `json:"title,omitempty" jsonschema:"Updated deal title"`
	Amount            *int64 `json:"amount,omitempty" jsonschema:"Updated deal amount"`
	ExpectedCloseDate string `json:"expected_close_date,omitempty" jsonschema:"Updated expected close date in ISO 8601 format"`
	Memo              string `json:"memo,omitempty" jsonschema:"Updated memo"`
}

// UpdateDeal edits deal fields other than stage. Stage moves go through
// move_deal_stage so every change leaves an audit activity.
func (h *DealHandlers) UpdateDeal(ctx context.Context, request *mcp.CallToolRequest, input UpdateDealInput) (*mcp.CallToolResult, DealOutput, error) {
	if input.ID == "" {
		return nil, DealOutput{}, fmt.Errorf("id is required")
	}

	dealID, err := uuid.Parse(input.ID)
	if err != nil {
		return nil, DealOutput{}, fmt.Errorf("invalid id: %w", err)
	}

	deal, err := db.GetDeal(ctx, h.db, dealID)
	if err != nil {
		return nil, DealOutput{}, fmt.Errorf("failed to get deal: %w", err)
	}

	if input.Title != "" {
		deal.Title = input.Title
	}
	if input.Amount != nil {
		deal.Amount = *input.Amount
	}
	if input.ExpectedCloseDate != "" {
		closeDate, err := time.Parse(time.RFC3339, input.ExpectedCloseDate)
		if err != nil {
			return nil, DealOutput{}, fmt.Errorf("invalid expected_close_date format (use ISO 8601/RFC3339): %w", err)
		}
		deal.ExpectedCloseDate = &closeDate
	}
	if input.Memo != "" {
		deal.Memo = input.Memo
	}

	if err := db.UpdateDeal(ctx, h.db, deal); err != nil {
		return nil, DealOutput{}, fmt.Errorf("failed to update deal: %w", err)
	}

	return nil, dealToOutput(deal), nil
}

type MoveDealStageInput struct {
	ID        string `json:"id" jsonschema:"Deal ID (required)"`
	Stage     string `json:"stage" jsonschema:"Target stage: lead, qualified, proposal, negotiation, closed_won, closed_lost (required)"`
	UpdatedAt string `json:"updated_at" jsonschema:"The deal's updated_at as last seen, in ISO 8601 format (required)"`
}

// MoveDealStage moves a deal through the pipeline. The caller passes the
// updated_at it last read; a stale value means someone else changed the
// deal in the meantime and the move is rejected.
func (h *DealHandlers) MoveDealStage(ctx context.Context, request *mcp.CallToolRequest, input MoveDealStageInput) (*mcp.CallToolResult, DealOutput, error) {
	if input.ID == "" {
		return nil, DealOutput{}, fmt.Errorf("id is required")
	}
	if input.Stage == "" {
		return nil, DealOutput{}, fmt.Errorf("stage is required")
	}
	if input.UpdatedAt == "" {
		return nil, DealOutput{}, fmt.Errorf("updated_at is required")
	}

	dealID, err := uuid.Parse(input.ID)
	if err != nil {
		return nil, DealOutput{}, fmt.Errorf("invalid id: %w", err)
	}

	updatedAt, err := time.Parse(time.RFC3339, input.UpdatedAt)
	if err != nil {
		return nil, DealOutput{}, fmt.Errorf("invalid updated_at format (use ISO 8601/RFC3339): %w", err)
	}

	deal, err := db.TransitionStage(ctx, h.db, dealID, models.DealStage(input.Stage), updatedAt)
	switch {
	case errors.Is(err, db.ErrStaleDeal):
		return nil, DealOutput{}, fmt.Errorf("deal has been modified by another user: re-read the deal and retry with its current updated_at")
	case errors.Is(err, db.ErrDealNotFound):
		return nil, DealOutput{}, fmt.Errorf("deal not found")
	case errors.Is(err, db.ErrInvalidStage):
		return nil, DealOutput{}, fmt.Errorf("invalid stage: %s (valid: lead, qualified, proposal, negotiation, closed_won, closed_lost)", input.Stage)
	case err != nil:
		return nil, DealOutput{}, fmt.Errorf("failed to move deal: %w", err)
	}

	return nil, dealToOutput(deal), nil
}

type DeleteDealInput struct {
	ID string `json:"id" jsonschema:"Deal ID (required)"`
}

type DeleteDealOutput struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (h *DealHandlers) DeleteDeal(ctx context.Context, request *mcp.CallToolRequest, input DeleteDealInput) (*mcp.CallToolResult, DeleteDealOutput, error) {
	if input.ID == "" {
		return nil, DeleteDealOutput{}, fmt.Errorf("id is required")
	}

	dealID, err := uuid.Parse(input.ID)
	if err != nil {
		return nil, DeleteDealOutput{}, fmt.Errorf("invalid id: %w", err)
	}

	if err := db.DeleteDeal(ctx, h.db, dealID); err != nil {
		return nil, DeleteDealOutput{}, fmt.Errorf("failed to delete deal: %w", err)
	}

	return nil, DeleteDealOutput{
		Success: true,
		Message: fmt.Sprintf("Deal %s deleted successfully", dealID),
	}, nil
}

func dealToOutput(deal *models.Deal) DealOutput {
	output := DealOutput{
		ID:        deal.ID.String(),
		Title:     deal.Title,
		Amount:    deal.Amount,
		Stage:     string(deal.Stage),
		Memo:      deal.Memo,
		CreatedAt: deal.CreatedAt.Format(time.RFC3339),
		UpdatedAt: deal.UpdatedAt.Format(time.RFC3339),
	}

	if deal.CompanyID != nil {
		cid := deal.CompanyID.String()
		output.CompanyID = &cid
	}
	if deal.ContactID != nil {
		cid := deal.ContactID.String()
		output.ContactID = &cid
	}
	if deal.ExpectedCloseDate != nil {
		ecd := deal.ExpectedCloseDate.Format(time.RFC3339)
		output.ExpectedCloseDate = &ecd
	}

	return output
}
