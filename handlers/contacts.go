// ABOUTME: Contact MCP tool handlers
// ABOUTME: Implements add_contact, find_contacts, update_contact, and log_activity tools
package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sodamhq/sodam/db"
	"github.com/sodamhq/sodam/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type ContactHandlers struct {
	db *sql.DB
}

func NewContactHandlers(database *sql.DB) *ContactHandlers {
	return &ContactHandlers{db: database}
}

type AddContactInput struct {
	Name        string `json:"name" jsonschema:"Contact name (required)"`
	Email       string `json:"email,omitempty" jsonschema:"Email address"`
	Phone       string `json:"phone,omitempty" jsonschema:"Phone number"`
	Position    string `json:"position,omitempty" jsonschema:"Job title or position"`
	CompanyName string `json:"company_name,omitempty" jsonschema:"Company name (created if not found)"`
	Memo        string `json:"memo,omitempty" jsonschema:"Free-form memo"`
}

type ContactOutput struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email,omitempty"`
	Phone     string  `json:"phone,omitempty"`
	Position  string  `json:"position,omitempty"`
	CompanyID *string `json:"company_id,omitempty"`
	Memo      string  `json:"memo,omitempty"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

func (h *ContactHandlers) AddContact(ctx context.Context, request *mcp.CallToolRequest, input AddContactInput) (*mcp.CallToolResult, ContactOutput, error) {
	if input.Name == "" {
		return nil, ContactOutput{}, fmt.Errorf("name is required")
	}

	contact := &models.Contact{
		Name:     input.Name,
		Email:    input.Email,
		Phone:    input.Phone,
		Position: input.Position,
		Memo:     input.Memo,
	}

	if input.CompanyName != "" {
		company, err := findOrCreateCompany(ctx, h.db, input.CompanyName)
		if err != nil {
			return nil, ContactOutput{}, err
		}
		contact.CompanyID = &company.ID
	}

	if err := db.CreateContact(ctx, h.db, contact); err != nil {
		return nil, ContactOutput{}, fmt.Errorf("failed to create contact: %w", err)
	}

	return nil, contactToOutput(contact), nil
}

type FindContactsInput struct {
	Query string `json:"query" jsonschema:"Search query matched against name, email, and phone (required)"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum results to return (default 10)"`
}

type FindContactsOutput struct {
	Contacts []ContactOutput `json:"contacts"`
	Count    int             `json:"count"`
}

func (h *ContactHandlers) FindContacts(ctx context.Context, request *mcp.CallToolRequest, input FindContactsInput) (*mcp.CallToolResult, FindContactsOutput, error) {
	if input.Query == "" {
		return nil, FindContactsOutput{}, fmt.Errorf("query is required")
	}

	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}

	results, err := db.Search(ctx, h.db, input.Query, limit)
	if err != nil {
		return nil, FindContactsOutput{}, fmt.Errorf("failed to search contacts: %w", err)
	}

	output := FindContactsOutput{Contacts: []ContactOutput{}}
	for _, match := range results.Contacts {
		contact, err := db.GetContact(ctx, h.db, match.ID)
		if err != nil {
			return nil, FindContactsOutput{}, fmt.Errorf("failed to fetch contact: %w", err)
		}
		output.Contacts = append(output.Contacts, contactToOutput(contact))
	}
	output.Count = len(output.Contacts)

	return nil, output, nil
}

type UpdateContactInput struct {
	ID       string `json:"id" jsonschema:"Contact ID (required)"`
	Name     string `json:"name,omitempty" jsonschema:"Updated name"`
	Email    string `json:"email,omitempty" jsonschema:"Updated email address"`
	Phone    string `json:"phone,omitempty" jsonschema:"Updated phone number"`
	Position string `json:"position,omitempty" jsonschema:"Updated position"`
	Memo     string `json:"memo,omitempty" jsonschema:"Updated memo"`
}

func (h *ContactHandlers) UpdateContact(ctx context.Context, request *mcp.CallToolRequest, input UpdateContactInput) (*mcp.CallToolResult, ContactOutput, error) {
	if input.ID == "" {
		return nil, ContactOutput{}, fmt.Errorf("id is required")
	}

	id, err := uuid.Parse(input.ID)
	if err != nil {
		return nil, ContactOutput{}, fmt.Errorf("invalid id: %w", err)
	}

	contact, err := db.GetContact(ctx, h.db, id)
	if err != nil {
		return nil, ContactOutput{}, fmt.Errorf("failed to get contact: %w", err)
	}

	if input.Name != "" {
		contact.Name = input.Name
	}
	if input.Email != "" {
		contact.Email = input.Email
	}
	if input.Phone != "" {
		contact.Phone = input.Phone
	}
	if input.Position != "" {
		contact.Position = input.Position
	}
	if input.Memo != "" {
		contact.Memo = input.Memo
	}

	if err := db.UpdateContact(ctx, h.db, contact); err != nil {
		return nil, ContactOutput{}, fmt.Errorf("failed to update contact: %w", err)
	}

	return nil, contactToOutput(contact), nil
}

type LogActivityInput struct {
	Type        string `json:"type" jsonschema:"Activity type: call, email, meeting, or note (required)"`
	Title       string `json:"title" jsonschema:"Activity title (required)"`
	Description string `json:"description,omitempty" jsonschema:"Activity details"`
	ContactID   string `json:"contact_id,omitempty" jsonschema:"Contact UUID to attach to"`
	CompanyID   string `json:"company_id,omitempty" jsonschema:"Company UUID to attach to"`
	DealID      string `json:"deal_id,omitempty" jsonschema:"Deal UUID to attach to"`
	ScheduledAt string `json:"scheduled_at,omitempty" jsonschema:"Scheduled time in ISO 8601 format"`
}

type ActivityOutput struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	ContactID   *string `json:"contact_id,omitempty"`
	CompanyID   *string `json:"company_id,omitempty"`
	DealID      *string `json:"deal_id,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

// LogActivity records a call, email, meeting, or note against at least one
// of contact, company, or deal.
func (h *ContactHandlers) LogActivity(ctx context.Context, request *mcp.CallToolRequest, input LogActivityInput) (*mcp.CallToolResult, ActivityOutput, error) {
	if input.Title == "" {
		return nil, ActivityOutput{}, fmt.Errorf("title is required")
	}
	if !models.ValidActivityType(models.ActivityType(input.Type)) {
		return nil, ActivityOutput{}, fmt.Errorf("invalid type: %s (valid: call, email, meeting, note)", input.Type)
	}

	activity := &models.Activity{
		Type:        models.ActivityType(input.Type),
		Title:       input.Title,
		Description: input.Description,
	}

	var err error
	if activity.ContactID, err = parseOptionalUUID(input.ContactID, "contact_id"); err != nil {
		return nil, ActivityOutput{}, err
	}
	if activity.CompanyID, err = parseOptionalUUID(input.CompanyID, "company_id"); err != nil {
		return nil, ActivityOutput{}, err
	}
	if activity.DealID, err = parseOptionalUUID(input.DealID, "deal_id"); err != nil {
		return nil, ActivityOutput{}, err
	}

	if !activity.HasParent() {
		return nil, ActivityOutput{}, fmt.Errorf("at least one of contact_id, company_id, or deal_id is required")
	}

	if input.ScheduledAt != "" {
		scheduled, err := time.Parse(time.RFC3339, input.ScheduledAt)
		if err != nil {
			return nil, ActivityOutput{}, fmt.Errorf("invalid scheduled_at format (use ISO 8601/RFC3339): %w", err)
		}
		activity.ScheduledAt = &scheduled
	}

	if err := db.CreateActivity(ctx, h.db, activity); err != nil {
		return nil, ActivityOutput{}, fmt.Errorf("failed to log activity: %w", err)
	}

	return nil, activityToOutput(activity), nil
}

func contactToOutput(contact *models.Contact) ContactOutput {
	output := ContactOutput{
		ID:        contact.ID.String(),
		Name:      contact.Name,
		Email:     contact.Email,
		Phone:     contact.Phone,
		Position:  contact.Position,
		Memo:      contact.Memo,
		CreatedAt: contact.CreatedAt.Format(time.RFC3339),
		UpdatedAt: contact.UpdatedAt.Format(time.RFC3339),
	}
	if contact.CompanyID != nil {
		cid := contact.CompanyID.String()
		output.CompanyID = &cid
	}
	return output
}

func activityToOutput(activity *models.Activity) ActivityOutput {
	output := ActivityOutput{
		ID:          activity.ID.String(),
		Type:        string(activity.Type),
		Title:       activity.Title,
		Description: activity.Description,
		CreatedAt:   activity.CreatedAt.Format(time.RFC3339),
	}
	if activity.ContactID != nil {
		s := activity.ContactID.String()
		output.ContactID = &s
	}
	if activity.CompanyID != nil {
		s := activity.CompanyID.String()
		output.CompanyID = &s
	}
	if activity.DealID != nil {
		s := activity.DealID.String()
		output.DealID = &s
	}
	return output
}

func parseOptionalUUID(s, field string) (*uuid.UUID, error) {
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", field, err)
	}
	return &id, nil
}

func findOrCreateCompany(ctx context.Context, database *sql.DB, name string) (*models.Company, error) {
	company, err := db.FindCompanyByName(ctx, database, name)
	if err != nil {
		return nil, fmt.Errorf("failed to lookup company: %w", err)
	}
	if company != nil {
		return company, nil
	}

	company = &models.Company{Name: name}
	if err := db.CreateCompany(ctx, database, company); err != nil {
		return nil, fmt.Errorf("failed to create company: %w", err)
	}
	return company, nil
}
