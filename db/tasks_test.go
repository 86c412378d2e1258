// ABOUTME: Tests for task database operations
// ABOUTME: Covers CRUD, completion toggle, and filtered listing
package db

import (
	"context"
	"testing"

	"github.com/sodamhq/sodam/models"
)

func TestCreateTaskDefaults(t *testing.T) {
	database := setupTestDB(t)

	task := &models.Task{Title: "Call back"}
	if err := CreateTask(context.Background(), database, task); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	if task.Priority != models.PriorityMedium {
		t.Errorf("Expected default priority medium, got %s", task.Priority)
	}
	if task.IsCompleted {
		t.Error("Expected new task to be incomplete")
	}
}

func TestToggleTaskComplete(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	task := &models.Task{Title: "Send proposal", Priority: models.PriorityHigh}
	if err := CreateTask(ctx, database, task); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	toggled, err := ToggleTaskComplete(ctx, database, task.ID)
	if err != nil {
		t.Fatalf("ToggleTaskComplete failed: %v", err)
	}
	if !toggled.IsCompleted {
		t.Error("Expected task to be completed after toggle")
	}

	toggled, err = ToggleTaskComplete(ctx, database, task.ID)
	if err != nil {
		t.Fatalf("ToggleTaskComplete failed: %v", err)
	}
	if toggled.IsCompleted {
		t.Error("Expected task to be incomplete after second toggle")
	}
}

func TestListTasksFiltered(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	deal := &models.Deal{Title: "Filtered deal"}
	if err := CreateDeal(ctx, database, deal); err != nil {
		t.Fatalf("CreateDeal failed: %v", err)
	}

	attached := &models.Task{Title: "On deal", Priority: models.PriorityHigh, DealID: &deal.ID}
	if err := CreateTask(ctx, database, attached); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	loose := &models.Task{Title: "Loose", Priority: models.PriorityLow}
	if err := CreateTask(ctx, database, loose); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if _, err := ToggleTaskComplete(ctx, database, loose.ID); err != nil {
		t.Fatalf("ToggleTaskComplete failed: %v", err)
	}

	tasks, total, err := ListTasks(ctx, database, TaskFilter{DealID: &deal.ID}, 1, 20)
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if total != 1 || len(tasks) != 1 || tasks[0].Title != "On deal" {
		t.Errorf("Expected only the deal task, got total=%d %v", total, tasks)
	}

	done := true
	tasks, total, err = ListTasks(ctx, database, TaskFilter{Completed: &done}, 1, 20)
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if total != 1 || tasks[0].Title != "Loose" {
		t.Errorf("Expected only the completed task, got total=%d %v", total, tasks)
	}

	tasks, total, err = ListTasks(ctx, database, TaskFilter{Priority: models.PriorityHigh}, 1, 20)
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if total != 1 || tasks[0].Priority != models.PriorityHigh {
		t.Errorf("Expected only the high-priority task, got total=%d %v", total, tasks)
	}
}
