// ABOUTME: Tests for tag operations and tag assignment
// ABOUTME: Covers uniqueness, junctions, and cascade on tag delete
package db

import (
	"context"
	"testing"

	"github.com/sodamhq/sodam/models"
)

func TestCreateTagDuplicate(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	tag := &models.Tag{Name: "vip", Color: "#FF5733"}
	if err := CreateTag(ctx, database, tag); err != nil {
		t.Fatalf("CreateTag failed: %v", err)
	}

	dup := &models.Tag{Name: "vip", Color: "#000000"}
	if err := CreateTag(ctx, database, dup); err != ErrDuplicateTag {
		t.Errorf("Expected ErrDuplicateTag, got %v", err)
	}
}

func TestAssignAndListDealTags(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	deal := &models.Deal{Title: "Tagged deal"}
	if err := CreateDeal(ctx, database, deal); err != nil {
		t.Fatalf("CreateDeal failed: %v", err)
	}

	tag := &models.Tag{Name: "priority", Color: "#4ADE80"}
	if err := CreateTag(ctx, database, tag); err != nil {
		t.Fatalf("CreateTag failed: %v", err)
	}

	if err := AssignTag(ctx, database, TagEntityDeal, deal.ID, tag.ID); err != nil {
		t.Fatalf("AssignTag failed: %v", err)
	}
	// Re-assignment is a no-op, not an error.
	if err := AssignTag(ctx, database, TagEntityDeal, deal.ID, tag.ID); err != nil {
		t.Fatalf("Repeated AssignTag failed: %v", err)
	}

	tags, err := ListEntityTags(ctx, database, TagEntityDeal, deal.ID)
	if err != nil {
		t.Fatalf("ListEntityTags failed: %v", err)
	}
	if len(tags) != 1 || tags[0].Name != "priority" {
		t.Errorf("Expected one 'priority' tag, got %v", tags)
	}

	if err := UnassignTag(ctx, database, TagEntityDeal, deal.ID, tag.ID); err != nil {
		t.Fatalf("UnassignTag failed: %v", err)
	}

	tags, err = ListEntityTags(ctx, database, TagEntityDeal, deal.ID)
	if err != nil {
		t.Fatalf("ListEntityTags failed: %v", err)
	}
	if len(tags) != 0 {
		t.Errorf("Expected no tags after unassign, got %v", tags)
	}
}

func TestDeleteTagRemovesAssignments(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	contact := &models.Contact{Name: "Tagged person"}
	if err := CreateContact(ctx, database, contact); err != nil {
		t.Fatalf("CreateContact failed: %v", err)
	}

	tag := &models.Tag{Name: "newsletter", Color: "#60A5FA"}
	if err := CreateTag(ctx, database, tag); err != nil {
		t.Fatalf("CreateTag failed: %v", err)
	}

	if err := AssignTag(ctx, database, TagEntityContact, contact.ID, tag.ID); err != nil {
		t.Fatalf("AssignTag failed: %v", err)
	}

	if err := DeleteTag(ctx, database, tag.ID); err != nil {
		t.Fatalf("DeleteTag failed: %v", err)
	}

	tags, err := ListEntityTags(ctx, database, TagEntityContact, contact.ID)
	if err != nil {
		t.Fatalf("ListEntityTags failed: %v", err)
	}
	if len(tags) != 0 {
		t.Errorf("Expected assignments to cascade away, got %v", tags)
	}
}
