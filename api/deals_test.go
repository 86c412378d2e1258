// ABOUTME: Tests for deal REST endpoints
// ABOUTME: Exercises the stage endpoint's success, conflict, and not-found contract
package api

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sodamhq/sodam/db"
	"github.com/sodamhq/sodam/models"
)

func createDealViaStore(t *testing.T, database *sql.DB) *models.Deal {
	t.Helper()

	deal := &models.Deal{Title: "API deal", Amount: 750000, Stage: models.StageLead}
	require.NoError(t, db.CreateDeal(context.Background(), database, deal))
	return deal
}

func TestCreateDealEndpoint(t *testing.T) {
	handler, _ := setupTestServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/deals", map[string]any{
		"title":  "New deal",
		"amount": 100000,
		"stage":  "qualified",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var deal models.Deal
	decodeBody(t, rec, &deal)
	assert.Equal(t, "New deal", deal.Title)
	assert.Equal(t, models.StageQualified, deal.Stage)
	assert.NotEqual(t, uuid.Nil, deal.ID)
}

func TestCreateDealValidation(t *testing.T) {
	handler, _ := setupTestServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/deals", map[string]any{
		"title": "",
		"stage": "prospecting",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Error  string  `json:"error"`
		Issues []Issue `json:"issues"`
	}
	decodeBody(t, rec, &body)
	assert.Equal(t, "Validation failed", body.Error)
	assert.Len(t, body.Issues, 2)
}

func TestUpdateDealEndpointStageChangeWritesAudit(t *testing.T) {
	handler, database := setupTestServer(t)
	deal := createDealViaStore(t, database)

	rec := doJSON(t, handler, http.MethodPut, "/api/deals/"+deal.ID.String(), map[string]any{
		"title":  deal.Title,
		"amount": deal.Amount,
		"stage":  "proposal",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	activities, total, err := db.ListActivities(context.Background(), database, db.ActivityFilter{DealID: &deal.ID}, 1, 10)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	assert.Contains(t, activities[0].Title, "lead")
	assert.Contains(t, activities[0].Title, "proposal")

	// An update that leaves the stage out keeps the current one and must
	// not add another audit entry.
	rec = doJSON(t, handler, http.MethodPut, "/api/deals/"+deal.ID.String(), map[string]any{
		"title":  "Renamed deal",
		"amount": deal.Amount,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	_, total, err = db.ListActivities(context.Background(), database, db.ActivityFilter{DealID: &deal.ID}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestDealStageEndpoint(t *testing.T) {
	handler, database := setupTestServer(t)
	deal := createDealViaStore(t, database)

	rec := doJSON(t, handler, http.MethodPatch, "/api/deals/"+deal.ID.String()+"/stage", map[string]any{
		"stage":     "qualified",
		"updatedAt": deal.UpdatedAt.Format(time.RFC3339),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated models.Deal
	decodeBody(t, rec, &updated)
	assert.Equal(t, models.StageQualified, updated.Stage)
	assert.True(t, updated.UpdatedAt.After(deal.UpdatedAt))

	// Exactly one audit activity with both stage names in the title.
	var count int
	var title string
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM activities WHERE deal_id = ?`, deal.ID.String()).Scan(&count))
	assert.Equal(t, 1, count)
	require.NoError(t, database.QueryRow(`SELECT title FROM activities WHERE deal_id = ?`, deal.ID.String()).Scan(&title))
	assert.Contains(t, title, "lead")
	assert.Contains(t, title, "qualified")
}

func TestDealStageEndpointWithinTolerance(t *testing.T) {
	handler, database := setupTestServer(t)
	deal := createDealViaStore(t, database)

	// RFC 3339 second-precision truncation keeps the token within the
	// tolerance window even though sub-second detail is lost.
	token := deal.UpdatedAt.Add(500 * time.Millisecond).Format(time.RFC3339)

	rec := doJSON(t, handler, http.MethodPatch, "/api/deals/"+deal.ID.String()+"/stage", map[string]any{
		"stage":     "proposal",
		"updatedAt": token,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestDealStageEndpointConflict(t *testing.T) {
	handler, database := setupTestServer(t)
	deal := createDealViaStore(t, database)
	staleToken := deal.UpdatedAt

	// A concurrent writer commits a newer revision.
	_, err := database.Exec(`UPDATE deals SET stage = ?, updated_at = ? WHERE id = ?`,
		string(models.StageProposal), staleToken.Add(5*time.Second), deal.ID.String())
	require.NoError(t, err)

	rec := doJSON(t, handler, http.MethodPatch, "/api/deals/"+deal.ID.String()+"/stage", map[string]any{
		"stage":     "qualified",
		"updatedAt": staleToken.Format(time.RFC3339),
	})
	require.Equal(t, http.StatusConflict, rec.Code)

	var body struct {
		Error string `json:"error"`
	}
	decodeBody(t, rec, &body)
	assert.True(t, strings.Contains(body.Error, "modified by another user"), body.Error)
	assert.True(t, strings.Contains(body.Error, "refresh"), body.Error)

	// The losing request left the deal untouched.
	current, err := db.GetDeal(context.Background(), database, deal.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StageProposal, current.Stage)
}

func TestDealStageEndpointNotFound(t *testing.T) {
	handler, _ := setupTestServer(t)

	rec := doJSON(t, handler, http.MethodPatch, "/api/deals/"+uuid.NewString()+"/stage", map[string]any{
		"stage":     "qualified",
		"updatedAt": time.Now().UTC().Format(time.RFC3339),
	})
	require.Equal(t, http.StatusNotFound, rec.Code)

	var body struct {
		Error string `json:"error"`
	}
	decodeBody(t, rec, &body)
	assert.Equal(t, "Deal not found", body.Error)
}

func TestDealStageEndpointValidation(t *testing.T) {
	handler, database := setupTestServer(t)
	deal := createDealViaStore(t, database)

	cases := []struct {
		name string
		body map[string]any
	}{
		{"bad stage", map[string]any{"stage": "prospecting", "updatedAt": deal.UpdatedAt.Format(time.RFC3339)}},
		{"missing updatedAt", map[string]any{"stage": "qualified"}},
		{"malformed updatedAt", map[string]any{"stage": "qualified", "updatedAt": "yesterday"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, handler, http.MethodPatch, "/api/deals/"+deal.ID.String()+"/stage", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}

	// Rejected requests never touch the store.
	current, err := db.GetDeal(context.Background(), database, deal.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StageLead, current.Stage)
}

func TestListDealsEndpoint(t *testing.T) {
	handler, database := setupTestServer(t)

	for i := 0; i < 3; i++ {
		createDealViaStore(t, database)
	}

	rec := doJSON(t, handler, http.MethodGet, "/api/deals?page=1&limit=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data       []models.Deal `json:"data"`
		Pagination Pagination    `json:"pagination"`
	}
	decodeBody(t, rec, &body)
	assert.Len(t, body.Data, 2)
	assert.Equal(t, 3, body.Pagination.Total)
	assert.Equal(t, 2, body.Pagination.TotalPages)
	assert.True(t, body.Pagination.HasNext)
	assert.False(t, body.Pagination.HasPrev)
}

func TestDealSummaryEndpoint(t *testing.T) {
	handler, database := setupTestServer(t)

	deal := createDealViaStore(t, database)
	_, err := db.TransitionStage(context.Background(), database, deal.ID, models.StageClosedWon, deal.UpdatedAt)
	require.NoError(t, err)

	rec := doJSON(t, handler, http.MethodGet, "/api/deals/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Stages map[models.DealStage]db.StageSummary `json:"stages"`
	}
	decodeBody(t, rec, &body)
	assert.Len(t, body.Stages, len(models.DealStages))
	assert.Equal(t, 1, body.Stages[models.StageClosedWon].Count)
	assert.Equal(t, int64(750000), body.Stages[models.StageClosedWon].Total)
}
