// ABOUTME: Tests for tag endpoints
// ABOUTME: Covers tag CRUD, duplicate-name conflicts, and contact assignment
package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sodamhq/sodam/db"
	"github.com/sodamhq/sodam/models"
)

func TestTagLifecycle(t *testing.T) {
	handler, _ := setupTestServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/tags", map[string]any{
		"name": "vip", "color": "#FF5733",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var tag models.Tag
	decodeBody(t, rec, &tag)
	assert.Equal(t, "vip", tag.Name)

	// Duplicate names collide.
	rec = doJSON(t, handler, http.MethodPost, "/api/tags", map[string]any{
		"name": "vip", "color": "#00FF00",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/api/tags", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var tags []models.Tag
	decodeBody(t, rec, &tags)
	assert.Len(t, tags, 1)

	rec = doJSON(t, handler, http.MethodDelete, "/api/tags/"+tag.ID.String(), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTagColorValidation(t *testing.T) {
	handler, _ := setupTestServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/tags", map[string]any{
		"name": "warm", "color": "red",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestContactTagAssignment(t *testing.T) {
	handler, database := setupTestServer(t)
	ctx := context.Background()

	contact := &models.Contact{Name: "Kim Minji"}
	require.NoError(t, db.CreateContact(ctx, database, contact))
	tag := &models.Tag{Name: "partner", Color: "#3366FF"}
	require.NoError(t, db.CreateTag(ctx, database, tag))

	rec := doJSON(t, handler, http.MethodPost, "/api/contacts/"+contact.ID.String()+"/tags", map[string]any{
		"tagId": tag.ID.String(),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, handler, http.MethodGet, "/api/contacts/"+contact.ID.String()+"/tags", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var tags []models.Tag
	decodeBody(t, rec, &tags)
	require.Len(t, tags, 1)
	assert.Equal(t, "partner", tags[0].Name)

	rec = doJSON(t, handler, http.MethodDelete, "/api/contacts/"+contact.ID.String()+"/tags/"+tag.ID.String(), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSearchEndpoint(t *testing.T) {
	handler, database := setupTestServer(t)
	ctx := context.Background()

	company := &models.Company{Name: "Hanbit Trading"}
	require.NoError(t, db.CreateCompany(ctx, database, company))
	contact := &models.Contact{Name: "Park Hanbyul"}
	require.NoError(t, db.CreateContact(ctx, database, contact))

	rec := doJSON(t, handler, http.MethodGet, "/api/search?q=Hanb", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var results db.SearchResults
	decodeBody(t, rec, &results)
	assert.Len(t, results.Companies, 1)
	assert.Len(t, results.Contacts, 1)
	assert.Empty(t, results.Deals)

	rec = doJSON(t, handler, http.MethodGet, "/api/search?q=Hanb&limit=99", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
