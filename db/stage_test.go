// ABOUTME: Tests for optimistic-concurrency deal stage transitions
// ABOUTME: Covers tolerance window, conflict detection, atomicity, and audit content
package db

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sodamhq/sodam/models"
)

func createTestDeal(t *testing.T, database *sql.DB) *models.Deal {
	t.Helper()

	deal := &models.Deal{
		Title:  "Pipeline Deal",
		Amount: 500000,
		Stage:  models.StageLead,
	}
	require.NoError(t, CreateDeal(context.Background(), database, deal))
	return deal
}

func countDealActivities(t *testing.T, database *sql.DB, dealID uuid.UUID) int {
	t.Helper()

	var n int
	err := database.QueryRow(`SELECT COUNT(*) FROM activities WHERE deal_id = ?`, dealID.String()).Scan(&n)
	require.NoError(t, err)
	return n
}

func TestSameVersion(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		a    time.Time
		b    time.Time
		want bool
	}{
		{"equal", base, base, true},
		{"within tolerance ahead", base.Add(500 * time.Millisecond), base, true},
		{"within tolerance behind", base.Add(-500 * time.Millisecond), base, true},
		{"exactly at tolerance", base.Add(1000 * time.Millisecond), base, true},
		{"just past tolerance", base.Add(1001 * time.Millisecond), base, false},
		{"well past tolerance", base.Add(5 * time.Second), base, false},
		{"well before", base.Add(-5 * time.Second), base, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, sameVersion(tc.a, tc.b))
		})
	}
}

func TestTransitionStage(t *testing.T) {
	database := setupTestDB(t)
	deal := createTestDeal(t, database)
	ctx := context.Background()

	updated, err := TransitionStage(ctx, database, deal.ID, models.StageQualified, deal.UpdatedAt)
	require.NoError(t, err)

	assert.Equal(t, models.StageQualified, updated.Stage)
	assert.True(t, updated.UpdatedAt.After(deal.UpdatedAt), "updated_at must strictly increase")

	// Exactly one audit activity, titled with both stage names.
	require.Equal(t, 1, countDealActivities(t, database, deal.ID))

	var actType, title string
	err = database.QueryRow(`SELECT type, title FROM activities WHERE deal_id = ?`, deal.ID.String()).Scan(&actType, &title)
	require.NoError(t, err)
	assert.Equal(t, "note", actType)
	assert.Contains(t, title, "lead")
	assert.Contains(t, title, "qualified")
	assert.Equal(t, "단계 변경: lead → qualified", title)
}

func TestTransitionStageWithinTolerance(t *testing.T) {
	database := setupTestDB(t)
	deal := createTestDeal(t, database)

	// A token 500ms off the stored value still matches.
	skewed := deal.UpdatedAt.Add(500 * time.Millisecond)

	updated, err := TransitionStage(context.Background(), database, deal.ID, models.StageProposal, skewed)
	require.NoError(t, err)
	assert.Equal(t, models.StageProposal, updated.Stage)
}

func TestTransitionStageConflict(t *testing.T) {
	database := setupTestDB(t)
	deal := createTestDeal(t, database)
	ctx := context.Background()

	staleToken := deal.UpdatedAt

	// Another writer moves the deal and commits a newer updated_at.
	_, err := database.Exec(`UPDATE deals SET stage = ?, updated_at = ? WHERE id = ?`,
		string(models.StageProposal), staleToken.Add(5*time.Second), deal.ID.String())
	require.NoError(t, err)

	_, err = TransitionStage(ctx, database, deal.ID, models.StageQualified, staleToken)
	require.ErrorIs(t, err, ErrStaleDeal)

	// The losing call must leave the stored deal untouched.
	current, err := GetDeal(ctx, database, deal.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StageProposal, current.Stage)
	assert.Equal(t, staleToken.Add(5*time.Second).Unix(), current.UpdatedAt.Unix())

	// And no audit activity either.
	assert.Equal(t, 0, countDealActivities(t, database, deal.ID))
}

func TestTransitionStageNotFound(t *testing.T) {
	database := setupTestDB(t)

	_, err := TransitionStage(context.Background(), database, uuid.New(), models.StageQualified, time.Now())
	require.ErrorIs(t, err, ErrDealNotFound)
}

func TestTransitionStageInvalidStage(t *testing.T) {
	database := setupTestDB(t)
	deal := createTestDeal(t, database)

	_, err := TransitionStage(context.Background(), database, deal.ID, "prospecting", deal.UpdatedAt)
	require.ErrorIs(t, err, ErrInvalidStage)

	// No writes on the rejection path.
	assert.Equal(t, 0, countDealActivities(t, database, deal.ID))
}

func TestTransitionStageTokenChaining(t *testing.T) {
	database := setupTestDB(t)
	deal := createTestDeal(t, database)
	ctx := context.Background()

	// Each hop must carry forward the freshest token.
	first, err := TransitionStage(ctx, database, deal.ID, models.StageQualified, deal.UpdatedAt)
	require.NoError(t, err)

	second, err := TransitionStage(ctx, database, deal.ID, models.StageNegotiation, first.UpdatedAt)
	require.NoError(t, err)
	assert.Equal(t, models.StageNegotiation, second.Stage)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))

	assert.Equal(t, 2, countDealActivities(t, database, deal.ID))
}

func TestTransitionStageClosedToOpen(t *testing.T) {
	database := setupTestDB(t)
	deal := createTestDeal(t, database)
	ctx := context.Background()

	// No transition graph: closed deals may reopen.
	won, err := TransitionStage(ctx, database, deal.ID, models.StageClosedWon, deal.UpdatedAt)
	require.NoError(t, err)

	reopened, err := TransitionStage(ctx, database, deal.ID, models.StageNegotiation, won.UpdatedAt)
	require.NoError(t, err)
	assert.Equal(t, models.StageNegotiation, reopened.Stage)
}

func TestTransitionStagePreservesOtherFields(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	company := &models.Company{Name: "Hana Trading"}
	require.NoError(t, CreateCompany(ctx, database, company))

	closeDate := time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)
	deal := &models.Deal{
		Title:             "Q3 renewal",
		Amount:            9900000,
		Stage:             models.StageLead,
		CompanyID:         &company.ID,
		ExpectedCloseDate: &closeDate,
		Memo:              "annual contract",
	}
	require.NoError(t, CreateDeal(ctx, database, deal))

	updated, err := TransitionStage(ctx, database, deal.ID, models.StageQualified, deal.UpdatedAt)
	require.NoError(t, err)

	assert.Equal(t, deal.Title, updated.Title)
	assert.Equal(t, deal.Amount, updated.Amount)
	assert.Equal(t, deal.Memo, updated.Memo)
	require.NotNil(t, updated.CompanyID)
	assert.Equal(t, company.ID, *updated.CompanyID)
	require.NotNil(t, updated.ExpectedCloseDate)
	assert.Equal(t, closeDate.Unix(), updated.ExpectedCloseDate.Unix())
	assert.Equal(t, deal.CreatedAt.Unix(), updated.CreatedAt.Unix())
}

func TestTransitionStageConcurrent(t *testing.T) {
	database := setupTestDB(t)
	deal := createTestDeal(t, database)
	ctx := context.Background()

	// First writer wins.
	winner, err := TransitionStage(ctx, database, deal.ID, models.StageProposal, deal.UpdatedAt)
	require.NoError(t, err)

	// Simulate the winner committing well outside the tolerance window,
	// as a later drag from a stale browser tab would observe.
	_, err = database.Exec(`UPDATE deals SET updated_at = ? WHERE id = ?`,
		winner.UpdatedAt.Add(2*time.Second), deal.ID.String())
	require.NoError(t, err)

	// Second writer still cites the original token and must lose.
	_, err = TransitionStage(ctx, database, deal.ID, models.StageQualified, deal.UpdatedAt)
	require.ErrorIs(t, err, ErrStaleDeal)

	current, err := GetDeal(ctx, database, deal.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StageProposal, current.Stage)
	assert.Equal(t, 1, countDealActivities(t, database, deal.ID))
}
