// ABOUTME: Tests for contact MCP tool handlers
// ABOUTME: Covers add_contact, find_contacts, and log_activity
package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sodamhq/sodam/db"
	"github.com/sodamhq/sodam/models"
)

func TestAddContactTool(t *testing.T) {
	database := setupHandlerDB(t)
	h := NewContactHandlers(database)

	_, output, err := h.AddContact(context.Background(), nil, AddContactInput{
		Name:        "Lee Seojun",
		Email:       "seojun@daehan.example",
		Position:    "CTO",
		CompanyName: "Daehan Systems",
	})
	require.NoError(t, err)
	assert.Equal(t, "Lee Seojun", output.Name)
	require.NotNil(t, output.CompanyID)

	// Adding a second contact for the same company reuses it.
	_, output2, err := h.AddContact(context.Background(), nil, AddContactInput{
		Name:        "Choi Yuna",
		CompanyName: "Daehan Systems",
	})
	require.NoError(t, err)
	assert.Equal(t, *output.CompanyID, *output2.CompanyID)
}

func TestAddContactToolRequiresName(t *testing.T) {
	database := setupHandlerDB(t)
	h := NewContactHandlers(database)

	_, _, err := h.AddContact(context.Background(), nil, AddContactInput{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")
}

func TestFindContactsTool(t *testing.T) {
	database := setupHandlerDB(t)
	h := NewContactHandlers(database)
	ctx := context.Background()

	require.NoError(t, db.CreateContact(ctx, database, &models.Contact{Name: "Kang Haneul"}))
	require.NoError(t, db.CreateContact(ctx, database, &models.Contact{Name: "Jung Dabin"}))

	_, output, err := h.FindContacts(ctx, nil, FindContactsInput{Query: "Haneul"})
	require.NoError(t, err)
	require.Equal(t, 1, output.Count)
	assert.Equal(t, "Kang Haneul", output.Contacts[0].Name)
}

func TestLogActivityTool(t *testing.T) {
	database := setupHandlerDB(t)
	h := NewContactHandlers(database)
	ctx := context.Background()

	contact := &models.Contact{Name: "Kim Minji"}
	require.NoError(t, db.CreateContact(ctx, database, contact))

	_, output, err := h.LogActivity(ctx, nil, LogActivityInput{
		Type:      "call",
		Title:     "Intro call",
		ContactID: contact.ID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, "call", output.Type)
	require.NotNil(t, output.ContactID)
	assert.Equal(t, contact.ID.String(), *output.ContactID)
}

func TestLogActivityToolRequiresParent(t *testing.T) {
	database := setupHandlerDB(t)
	h := NewContactHandlers(database)

	_, _, err := h.LogActivity(context.Background(), nil, LogActivityInput{
		Type:  "note",
		Title: "Orphan note",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one of")
}

func TestLogActivityToolInvalidType(t *testing.T) {
	database := setupHandlerDB(t)
	h := NewContactHandlers(database)

	_, _, err := h.LogActivity(context.Background(), nil, LogActivityInput{
		Type:  "fax",
		Title: "Old school",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid type")
}
