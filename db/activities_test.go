// ABOUTME: Tests for activity database operations
// ABOUTME: Covers CRUD, parent constraint, filtered listing, and completion
package db

import (
	"context"
	"testing"
	"time"

	"github.com/sodamhq/sodam/models"
)

func TestCreateActivityRequiresParent(t *testing.T) {
	database := setupTestDB(t)

	orphan := &models.Activity{Type: models.ActivityNote, Title: "orphan"}
	if err := CreateActivity(context.Background(), database, orphan); err == nil {
		t.Error("Expected CHECK constraint to reject activity without a parent")
	}
}

func TestCompleteActivity(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	contact := &models.Contact{Name: "Park Jiwoo"}
	if err := CreateContact(ctx, database, contact); err != nil {
		t.Fatalf("CreateContact failed: %v", err)
	}

	activity := &models.Activity{
		Type:      models.ActivityCall,
		Title:     "Intro call",
		ContactID: &contact.ID,
	}
	if err := CreateActivity(ctx, database, activity); err != nil {
		t.Fatalf("CreateActivity failed: %v", err)
	}

	when := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
	completed, err := CompleteActivity(ctx, database, activity.ID, when)
	if err != nil {
		t.Fatalf("CompleteActivity failed: %v", err)
	}

	if completed.CompletedAt == nil || !completed.CompletedAt.Equal(when) {
		t.Errorf("Expected completedAt %v, got %v", when, completed.CompletedAt)
	}

	// Zero time means "now".
	completed, err = CompleteActivity(ctx, database, activity.ID, time.Time{})
	if err != nil {
		t.Fatalf("CompleteActivity failed: %v", err)
	}
	if completed.CompletedAt == nil || completed.CompletedAt.IsZero() {
		t.Error("Expected completedAt to default to now")
	}
}

func TestListActivitiesByDeal(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	deal := &models.Deal{Title: "Active deal"}
	if err := CreateDeal(ctx, database, deal); err != nil {
		t.Fatalf("CreateDeal failed: %v", err)
	}
	other := &models.Deal{Title: "Other deal"}
	if err := CreateDeal(ctx, database, other); err != nil {
		t.Fatalf("CreateDeal failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		a := &models.Activity{Type: models.ActivityNote, Title: "note", DealID: &deal.ID}
		if err := CreateActivity(ctx, database, a); err != nil {
			t.Fatalf("CreateActivity failed: %v", err)
		}
	}
	noise := &models.Activity{Type: models.ActivityNote, Title: "noise", DealID: &other.ID}
	if err := CreateActivity(ctx, database, noise); err != nil {
		t.Fatalf("CreateActivity failed: %v", err)
	}

	activities, total, err := ListActivities(ctx, database, ActivityFilter{DealID: &deal.ID}, 1, 20)
	if err != nil {
		t.Fatalf("ListActivities failed: %v", err)
	}
	if total != 2 || len(activities) != 2 {
		t.Errorf("Expected 2 deal activities, got total=%d len=%d", total, len(activities))
	}
	for _, a := range activities {
		if a.DealID == nil || *a.DealID != deal.ID {
			t.Errorf("Unexpected activity in filter results: %+v", a)
		}
	}
}
