// ABOUTME: Tests for cross-entity search
// ABOUTME: Covers substring matching and the empty-query case
package db

import (
	"context"
	"testing"

	"github.com/sodamhq/sodam/models"
)

func TestSearch(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	company := &models.Company{Name: "Hangang Logistics", Industry: "Shipping"}
	if err := CreateCompany(ctx, database, company); err != nil {
		t.Fatalf("CreateCompany failed: %v", err)
	}

	contact := &models.Contact{Name: "Han Sora", Email: "sora@hangang.example"}
	if err := CreateContact(ctx, database, contact); err != nil {
		t.Fatalf("CreateContact failed: %v", err)
	}

	deal := &models.Deal{Title: "Hangang annual freight"}
	if err := CreateDeal(ctx, database, deal); err != nil {
		t.Fatalf("CreateDeal failed: %v", err)
	}

	results, err := Search(ctx, database, "hangang", 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(results.Companies) != 1 || results.Companies[0].Name != "Hangang Logistics" {
		t.Errorf("Expected company match, got %v", results.Companies)
	}
	if len(results.Contacts) != 1 || results.Contacts[0].Name != "Han Sora" {
		t.Errorf("Expected contact match via email, got %v", results.Contacts)
	}
	if len(results.Deals) != 1 || results.Deals[0].Title != "Hangang annual freight" {
		t.Errorf("Expected deal match, got %v", results.Deals)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	database := setupTestDB(t)

	results, err := Search(context.Background(), database, "", 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(results.Contacts) != 0 || len(results.Companies) != 0 || len(results.Deals) != 0 {
		t.Error("Expected empty results for empty query")
	}
}
