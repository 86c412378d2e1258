// ABOUTME: Tests for company and contact database operations
// ABOUTME: Covers CRUD, listing, name lookup, and delete previews
package db

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sodamhq/sodam/models"
)

func TestCreateAndGetCompany(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	count := 42
	company := &models.Company{
		Name:          "Acme Corp",
		Industry:      "Manufacturing",
		Website:       "https://acme.example",
		EmployeeCount: &count,
	}

	if err := CreateCompany(ctx, database, company); err != nil {
		t.Fatalf("CreateCompany failed: %v", err)
	}

	found, err := GetCompany(ctx, database, company.ID)
	if err != nil {
		t.Fatalf("GetCompany failed: %v", err)
	}

	if found.Name != "Acme Corp" {
		t.Errorf("Expected name 'Acme Corp', got %s", found.Name)
	}
	if found.EmployeeCount == nil || *found.EmployeeCount != 42 {
		t.Error("EmployeeCount did not round trip")
	}
}

func TestUpdateCompanyNotFound(t *testing.T) {
	database := setupTestDB(t)

	company := &models.Company{ID: uuid.New(), Name: "Ghost"}
	if err := UpdateCompany(context.Background(), database, company); err != ErrCompanyNotFound {
		t.Errorf("Expected ErrCompanyNotFound, got %v", err)
	}
}

func TestFindCompanyByName(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	company := &models.Company{Name: "Findable Inc"}
	if err := CreateCompany(ctx, database, company); err != nil {
		t.Fatalf("CreateCompany failed: %v", err)
	}

	found, err := FindCompanyByName(ctx, database, "Findable Inc")
	if err != nil {
		t.Fatalf("FindCompanyByName failed: %v", err)
	}
	if found == nil || found.ID != company.ID {
		t.Error("Expected to find company by name")
	}

	missing, err := FindCompanyByName(ctx, database, "Nope")
	if err != nil {
		t.Fatalf("FindCompanyByName failed: %v", err)
	}
	if missing != nil {
		t.Error("Expected nil for unknown company name")
	}
}

func TestCompanyDeletePreview(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	company := &models.Company{Name: "Busy Corp"}
	if err := CreateCompany(ctx, database, company); err != nil {
		t.Fatalf("CreateCompany failed: %v", err)
	}

	contact := &models.Contact{Name: "Kim Minji", CompanyID: &company.ID}
	if err := CreateContact(ctx, database, contact); err != nil {
		t.Fatalf("CreateContact failed: %v", err)
	}

	deal := &models.Deal{Title: "Busy deal", CompanyID: &company.ID}
	if err := CreateDeal(ctx, database, deal); err != nil {
		t.Fatalf("CreateDeal failed: %v", err)
	}

	activity := &models.Activity{Type: models.ActivityMeeting, Title: "intro", CompanyID: &company.ID}
	if err := CreateActivity(ctx, database, activity); err != nil {
		t.Fatalf("CreateActivity failed: %v", err)
	}

	task := &models.Task{Title: "follow up", CompanyID: &company.ID}
	if err := CreateTask(ctx, database, task); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	impact, err := CompanyDeletePreview(ctx, database, company.ID)
	if err != nil {
		t.Fatalf("CompanyDeletePreview failed: %v", err)
	}

	if impact.EntityName != "Busy Corp" {
		t.Errorf("Expected entity name 'Busy Corp', got %s", impact.EntityName)
	}
	if impact.SetNull.Contacts != 1 || impact.SetNull.Deals != 1 {
		t.Errorf("Expected 1 contact and 1 deal set-null, got %+v", impact.SetNull)
	}
	if impact.Cascade.Activities != 1 || impact.Cascade.Tasks != 1 {
		t.Errorf("Expected 1 activity and 1 task cascade, got %+v", impact.Cascade)
	}
}

func TestDeleteCompanySetNullOnContacts(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	company := &models.Company{Name: "Leaving Corp"}
	if err := CreateCompany(ctx, database, company); err != nil {
		t.Fatalf("CreateCompany failed: %v", err)
	}

	contact := &models.Contact{Name: "Lee Jun", CompanyID: &company.ID}
	if err := CreateContact(ctx, database, contact); err != nil {
		t.Fatalf("CreateContact failed: %v", err)
	}

	if err := DeleteCompany(ctx, database, company.ID); err != nil {
		t.Fatalf("DeleteCompany failed: %v", err)
	}

	found, err := GetContact(ctx, database, contact.ID)
	if err != nil {
		t.Fatalf("GetContact failed: %v", err)
	}
	if found.CompanyID != nil {
		t.Error("Expected contact company_id to be nulled on company delete")
	}
}

func TestListContactsByCompany(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	company := &models.Company{Name: "Roster Inc"}
	if err := CreateCompany(ctx, database, company); err != nil {
		t.Fatalf("CreateCompany failed: %v", err)
	}

	for _, name := range []string{"A", "B"} {
		contact := &models.Contact{Name: name, CompanyID: &company.ID}
		if err := CreateContact(ctx, database, contact); err != nil {
			t.Fatalf("CreateContact failed: %v", err)
		}
	}
	loner := &models.Contact{Name: "C"}
	if err := CreateContact(ctx, database, loner); err != nil {
		t.Fatalf("CreateContact failed: %v", err)
	}

	contacts, total, err := ListContacts(ctx, database, &company.ID, 1, 20)
	if err != nil {
		t.Fatalf("ListContacts failed: %v", err)
	}
	if total != 2 || len(contacts) != 2 {
		t.Errorf("Expected 2 company contacts, got total=%d len=%d", total, len(contacts))
	}
}
