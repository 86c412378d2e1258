// ABOUTME: Tests for deal MCP tool handlers
// ABOUTME: Covers create_deal, move_deal_stage, and delete_deal
package handlers

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sodamhq/sodam/db"
	"github.com/sodamhq/sodam/models"
)

func setupHandlerDB(t *testing.T) *sql.DB {
	t.Helper()

	database, err := db.OpenDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func TestCreateDealTool(t *testing.T) {
	database := setupHandlerDB(t)
	h := NewDealHandlers(database)

	_, output, err := h.CreateDeal(context.Background(), nil, CreateDealInput{
		Title:       "ERP license",
		Amount:      3000000,
		CompanyName: "Daehan Systems",
	})
	require.NoError(t, err)
	assert.Equal(t, "ERP license", output.Title)
	assert.Equal(t, "lead", output.Stage)
	require.NotNil(t, output.CompanyID)

	// Company was created as a side effect.
	company, err := db.FindCompanyByName(context.Background(), database, "Daehan Systems")
	require.NoError(t, err)
	require.NotNil(t, company)
	assert.Equal(t, company.ID.String(), *output.CompanyID)
}

func TestCreateDealToolInvalidStage(t *testing.T) {
	database := setupHandlerDB(t)
	h := NewDealHandlers(database)

	_, _, err := h.CreateDeal(context.Background(), nil, CreateDealInput{
		Title: "Bad stage",
		Stage: "prospecting",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid stage")
}

func TestMoveDealStageTool(t *testing.T) {
	database := setupHandlerDB(t)
	h := NewDealHandlers(database)
	ctx := context.Background()

	deal := &models.Deal{Title: "Pilot project", Stage: models.StageLead}
	require.NoError(t, db.CreateDeal(ctx, database, deal))

	_, output, err := h.MoveDealStage(ctx, nil, MoveDealStageInput{
		ID:        deal.ID.String(),
		Stage:     "qualified",
		UpdatedAt: deal.UpdatedAt.Format(time.RFC3339),
	})
	require.NoError(t, err)
	assert.Equal(t, "qualified", output.Stage)

	// The move left an audit entry on the deal timeline.
	activities, total, err := db.ListActivities(ctx, database, db.ActivityFilter{DealID: &deal.ID}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Contains(t, activities[0].Title, "lead")
	assert.Contains(t, activities[0].Title, "qualified")
}

func TestMoveDealStageToolStale(t *testing.T) {
	database := setupHandlerDB(t)
	h := NewDealHandlers(database)
	ctx := context.Background()

	deal := &models.Deal{Title: "Pilot project", Stage: models.StageLead}
	require.NoError(t, db.CreateDeal(ctx, database, deal))

	// Someone else moved it already.
	_, err := db.TransitionStage(ctx, database, deal.ID, models.StageProposal, deal.UpdatedAt)
	require.NoError(t, err)

	_, _, err = h.MoveDealStage(ctx, nil, MoveDealStageInput{
		ID:        deal.ID.String(),
		Stage:     "qualified",
		UpdatedAt: deal.UpdatedAt.Add(-time.Hour).Format(time.RFC3339),
	})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "modified by another user"), err.Error())
}

func TestMoveDealStageToolNotFound(t *testing.T) {
	database := setupHandlerDB(t)
	h := NewDealHandlers(database)

	_, _, err := h.MoveDealStage(context.Background(), nil, MoveDealStageInput{
		ID:        uuid.NewString(),
		Stage:     "qualified",
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestDeleteDealTool(t *testing.T) {
	database := setupHandlerDB(t)
	h := NewDealHandlers(database)
	ctx := context.Background()

	deal := &models.Deal{Title: "To delete", Stage: models.StageLead}
	require.NoError(t, db.CreateDeal(ctx, database, deal))

	_, output, err := h.DeleteDeal(ctx, nil, DeleteDealInput{ID: deal.ID.String()})
	require.NoError(t, err)
	assert.True(t, output.Success)

	_, err = db.GetDeal(ctx, database, deal.ID)
	assert.ErrorIs(t, err, db.ErrDealNotFound)
}
