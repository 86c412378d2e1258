// ABOUTME: Tests for deal database operations
// ABOUTME: Covers CRUD, stage-filtered listing, and the pipeline summary
package db

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sodamhq/sodam/models"
)

func TestCreateDeal(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	deal := &models.Deal{
		Title:  "Big Deal",
		Amount: 100000,
	}

	if err := CreateDeal(ctx, database, deal); err != nil {
		t.Fatalf("CreateDeal failed: %v", err)
	}

	if deal.ID == uuid.Nil {
		t.Error("Deal ID was not set")
	}

	if deal.Stage != models.StageLead {
		t.Errorf("Expected default stage lead, got %s", deal.Stage)
	}

	if deal.UpdatedAt.IsZero() {
		t.Error("UpdatedAt was not set")
	}
}

func TestGetDealNotFound(t *testing.T) {
	database := setupTestDB(t)

	_, err := GetDeal(context.Background(), database, uuid.New())
	if err != ErrDealNotFound {
		t.Errorf("Expected ErrDealNotFound, got %v", err)
	}
}

func TestUpdateDeal(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	company := &models.Company{Name: "Deal Corp"}
	if err := CreateCompany(ctx, database, company); err != nil {
		t.Fatalf("CreateCompany failed: %v", err)
	}

	deal := &models.Deal{
		Title:     "Test Deal",
		Stage:     models.StageLead,
		CompanyID: &company.ID,
	}

	if err := CreateDeal(ctx, database, deal); err != nil {
		t.Fatalf("CreateDeal failed: %v", err)
	}

	before := deal.UpdatedAt

	deal.Amount = 50000
	deal.Memo = "updated terms"

	if err := UpdateDeal(ctx, database, deal); err != nil {
		t.Fatalf("UpdateDeal failed: %v", err)
	}

	found, err := GetDeal(ctx, database, deal.ID)
	if err != nil {
		t.Fatalf("GetDeal failed: %v", err)
	}

	if found.Amount != 50000 {
		t.Errorf("Expected amount 50000, got %d", found.Amount)
	}
	if found.Memo != "updated terms" {
		t.Errorf("Expected updated memo, got %q", found.Memo)
	}
	if !found.UpdatedAt.After(before) {
		t.Error("Expected UpdatedAt to advance on update")
	}
	if found.CompanyID == nil || *found.CompanyID != company.ID {
		t.Error("CompanyID was lost on update")
	}

	if got := countDealActivities(t, database, deal.ID); got != 0 {
		t.Errorf("Expected no activities after a non-stage update, got %d", got)
	}
}

func TestUpdateDealStageChangeWritesAudit(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	deal := &models.Deal{Title: "Audited Deal", Stage: models.StageLead}
	if err := CreateDeal(ctx, database, deal); err != nil {
		t.Fatalf("CreateDeal failed: %v", err)
	}

	deal.Stage = models.StageProposal
	if err := UpdateDeal(ctx, database, deal); err != nil {
		t.Fatalf("UpdateDeal failed: %v", err)
	}

	if got := countDealActivities(t, database, deal.ID); got != 1 {
		t.Fatalf("Expected exactly 1 audit activity, got %d", got)
	}

	activities, _, err := ListActivities(ctx, database, ActivityFilter{DealID: &deal.ID}, 1, 10)
	if err != nil {
		t.Fatalf("ListActivities failed: %v", err)
	}
	if activities[0].Title != StageChangeTitle(models.StageLead, models.StageProposal) {
		t.Errorf("Unexpected audit title: %q", activities[0].Title)
	}
	if activities[0].Type != models.ActivityNote {
		t.Errorf("Expected note activity, got %s", activities[0].Type)
	}

	// A second update that keeps the stage must not add another one.
	deal.Memo = "terms agreed"
	if err := UpdateDeal(ctx, database, deal); err != nil {
		t.Fatalf("UpdateDeal failed: %v", err)
	}
	if got := countDealActivities(t, database, deal.ID); got != 1 {
		t.Errorf("Expected activity count to stay at 1, got %d", got)
	}
}

func TestDeleteDealCascadesActivities(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	deal := &models.Deal{Title: "Doomed Deal"}
	if err := CreateDeal(ctx, database, deal); err != nil {
		t.Fatalf("CreateDeal failed: %v", err)
	}

	activity := &models.Activity{
		Type:   models.ActivityNote,
		Title:  "kickoff",
		DealID: &deal.ID,
	}
	if err := CreateActivity(ctx, database, activity); err != nil {
		t.Fatalf("CreateActivity failed: %v", err)
	}

	if err := DeleteDeal(ctx, database, deal.ID); err != nil {
		t.Fatalf("DeleteDeal failed: %v", err)
	}

	var count int
	if err := database.QueryRow(`SELECT COUNT(*) FROM activities WHERE deal_id = ?`, deal.ID.String()).Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected activities to cascade, found %d", count)
	}
}

func TestListDealsByStage(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		deal := &models.Deal{Title: "Lead deal", Stage: models.StageLead}
		if err := CreateDeal(ctx, database, deal); err != nil {
			t.Fatalf("CreateDeal failed: %v", err)
		}
	}
	won := &models.Deal{Title: "Won deal", Stage: models.StageClosedWon}
	if err := CreateDeal(ctx, database, won); err != nil {
		t.Fatalf("CreateDeal failed: %v", err)
	}

	deals, total, err := ListDeals(ctx, database, models.StageLead, 1, 20)
	if err != nil {
		t.Fatalf("ListDeals failed: %v", err)
	}
	if total != 3 {
		t.Errorf("Expected total 3, got %d", total)
	}
	if len(deals) != 3 {
		t.Errorf("Expected 3 deals, got %d", len(deals))
	}

	all, total, err := ListDeals(ctx, database, "", 1, 2)
	if err != nil {
		t.Fatalf("ListDeals failed: %v", err)
	}
	if total != 4 {
		t.Errorf("Expected total 4, got %d", total)
	}
	if len(all) != 2 {
		t.Errorf("Expected page of 2 deals, got %d", len(all))
	}
}

func TestDealStageSummary(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	amounts := []int64{100, 250}
	for _, amount := range amounts {
		deal := &models.Deal{Title: "Deal", Amount: amount, Stage: models.StageProposal}
		if err := CreateDeal(ctx, database, deal); err != nil {
			t.Fatalf("CreateDeal failed: %v", err)
		}
	}

	summary, err := DealStageSummary(ctx, database)
	if err != nil {
		t.Fatalf("DealStageSummary failed: %v", err)
	}

	if len(summary) != len(models.DealStages) {
		t.Errorf("Expected %d stages, got %d", len(models.DealStages), len(summary))
	}

	proposal := summary[models.StageProposal]
	if proposal.Count != 2 || proposal.Total != 350 {
		t.Errorf("Expected proposal count 2 total 350, got %+v", proposal)
	}

	if lead := summary[models.StageLead]; lead.Count != 0 || lead.Total != 0 {
		t.Errorf("Expected empty lead summary, got %+v", lead)
	}
}
