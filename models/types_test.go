// ABOUTME: Tests for CRM data models
// ABOUTME: Covers enum validation and activity parent constraint
package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestValidStage(t *testing.T) {
	for _, stage := range DealStages {
		if !ValidStage(stage) {
			t.Errorf("Expected %s to be valid", stage)
		}
	}

	invalid := []DealStage{"", "prospecting", "won", "LEAD"}
	for _, stage := range invalid {
		if ValidStage(stage) {
			t.Errorf("Expected %q to be invalid", stage)
		}
	}
}

func TestValidActivityType(t *testing.T) {
	for _, at := range ActivityTypes {
		if !ValidActivityType(at) {
			t.Errorf("Expected %s to be valid", at)
		}
	}

	if ValidActivityType("todo") {
		t.Error("Expected 'todo' to be invalid")
	}
}

func TestValidPriority(t *testing.T) {
	for _, p := range TaskPriorities {
		if !ValidPriority(p) {
			t.Errorf("Expected %s to be valid", p)
		}
	}

	if ValidPriority("urgent") {
		t.Error("Expected 'urgent' to be invalid")
	}
}

func TestActivityHasParent(t *testing.T) {
	a := &Activity{Type: ActivityNote, Title: "orphan"}
	if a.HasParent() {
		t.Error("Expected activity without parents to report HasParent false")
	}

	dealID := uuid.New()
	a.DealID = &dealID
	if !a.HasParent() {
		t.Error("Expected activity with deal to report HasParent true")
	}
}

func TestDealJSONRoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	companyID := uuid.New()

	deal := Deal{
		ID:        uuid.New(),
		Title:     "Annual license",
		Amount:    1200000,
		Stage:     StageQualified,
		CompanyID: &companyID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	data, err := json.Marshal(deal)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded Deal
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if decoded.Stage != StageQualified {
		t.Errorf("Expected stage %s, got %s", StageQualified, decoded.Stage)
	}
	if decoded.CompanyID == nil || *decoded.CompanyID != companyID {
		t.Error("CompanyID did not survive round trip")
	}
	if !decoded.UpdatedAt.Equal(now) {
		t.Errorf("Expected updatedAt %v, got %v", now, decoded.UpdatedAt)
	}
}
