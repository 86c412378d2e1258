// ABOUTME: Task MCP tool handlers
// ABOUTME: Implements add_task, complete_task, and find_tasks tools
package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sodamhq/sodam/db"
	"github.com/sodamhq/sodam/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type TaskHandlers struct {
	db *sql.DB
}

func NewTaskHandlers(database *sql.DB) *TaskHandlers {
	return &TaskHandlers{db: database}
}

type AddTaskInput struct {
	Title       string `json:"title" jsonschema:"Task title (required)"`
	Description string `json:"description,omitempty" jsonschema:"Task details"`
	DueDate     string `json:"due_date,omitempty" jsonschema:"Due date in ISO 8601 format"`
	Priority    string `json:"priority,omitempty" jsonschema:"Priority: low, medium, or high (default medium)"`
	ContactID   string `json:"contact_id,omitempty" jsonschema:"Contact UUID to attach to"`
	CompanyID   string `json:"company_id,omitempty" jsonschema:"Company UUID to attach to"`
	DealID      string `json:"deal_id,omitempty" jsonschema:"Deal UUID to attach to"`
}

type TaskOutput struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
	Priority    string  `json:"priority"`
	IsCompleted bool    `json:"is_completed"`
	ContactID   *string `json:"contact_id,omitempty"`
	CompanyID   *string `json:"company_id,omitempty"`
	DealID      *string `json:"deal_id,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

func (h *TaskHandlers) AddTask(ctx context.Context, request *mcp.CallToolRequest, input AddTaskInput) (*mcp.CallToolResult, TaskOutput, error) {
	if input.Title == "" {
		return nil, TaskOutput{}, fmt.Errorf("title is required")
	}

	priority := models.TaskPriority(input.Priority)
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !models.ValidPriority(priority) {
		return nil, TaskOutput{}, fmt.Errorf("invalid priority: %s (valid: low, medium, high)", input.Priority)
	}

	task := &models.Task{
		Title:       input.Title,
		Description: input.Description,
		Priority:    priority,
	}

	var err error
	if task.ContactID, err = parseOptionalUUID(input.ContactID, "contact_id"); err != nil {
		return nil, TaskOutput{}, err
	}
	if task.CompanyID, err = parseOptionalUUID(input.CompanyID, "company_id"); err != nil {
		return nil, TaskOutput{}, err
	}
	if task.DealID, err = parseOptionalUUID(input.DealID, "deal_id"); err != nil {
		return nil, TaskOutput{}, err
	}

	if input.DueDate != "" {
		due, err := time.Parse(time.RFC3339, input.DueDate)
		if err != nil {
			return nil, TaskOutput{}, fmt.Errorf("invalid due_date format (use ISO 8601/RFC3339): %w", err)
		}
		task.DueDate = &due
	}

	if err := db.CreateTask(ctx, h.db, task); err != nil {
		return nil, TaskOutput{}, fmt.Errorf("failed to create task: %w", err)
	}

	return nil, taskToOutput(task), nil
}

type CompleteTaskInput struct {
	ID string `json:"id" jsonschema:"Task ID (required)"`
}

// CompleteTask flips the task's completion flag.
func (h *TaskHandlers) CompleteTask(ctx context.Context, request *mcp.CallToolRequest, input CompleteTaskInput) (*mcp.CallToolResult, TaskOutput, error) {
	if input.ID == "" {
		return nil, TaskOutput{}, fmt.Errorf("id is required")
	}

	taskID, err := uuid.Parse(input.ID)
	if err != nil {
		return nil, TaskOutput{}, fmt.Errorf("invalid id: %w", err)
	}

	task, err := db.ToggleTaskComplete(ctx, h.db, taskID)
	if err != nil {
		return nil, TaskOutput{}, fmt.Errorf("failed to toggle task: %w", err)
	}

	return nil, taskToOutput(task), nil
}

type FindTasksInput struct {
	Completed *bool  `json:"completed,omitempty" jsonschema:"Filter by completion state"`
	Priority  string `json:"priority,omitempty" jsonschema:"Filter by priority: low, medium, or high"`
	DealID    string `json:"deal_id,omitempty" jsonschema:"Filter by deal UUID"`
	Limit     int    `json:"limit,omitempty" jsonschema:"Maximum results to return (default 20)"`
}

type FindTasksOutput struct {
	Tasks []TaskOutput `json:"tasks"`
	Count int          `json:"count"`
}

func (h *TaskHandlers) FindTasks(ctx context.Context, request *mcp.CallToolRequest, input FindTasksInput) (*mcp.CallToolResult, FindTasksOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}

	filter := db.TaskFilter{
		Completed: input.Completed,
		Priority:  models.TaskPriority(input.Priority),
	}
	if input.Priority != "" && !models.ValidPriority(filter.Priority) {
		return nil, FindTasksOutput{}, fmt.Errorf("invalid priority: %s (valid: low, medium, high)", input.Priority)
	}

	var err error
	if filter.DealID, err = parseOptionalUUID(input.DealID, "deal_id"); err != nil {
		return nil, FindTasksOutput{}, err
	}

	tasks, _, err := db.ListTasks(ctx, h.db, filter, 1, limit)
	if err != nil {
		return nil, FindTasksOutput{}, fmt.Errorf("failed to list tasks: %w", err)
	}

	output := FindTasksOutput{Tasks: []TaskOutput{}, Count: len(tasks)}
	for i := range tasks {
		output.Tasks = append(output.Tasks, taskToOutput(&tasks[i]))
	}

	return nil, output, nil
}

func taskToOutput(task *models.Task) TaskOutput {
	output := TaskOutput{
		ID:          task.ID.String(),
		Title:       task.Title,
		Description: task.Description,
		Priority:    string(task.Priority),
		IsCompleted: task.IsCompleted,
		CreatedAt:   task.CreatedAt.Format(time.RFC3339),
	}

	if task.DueDate != nil {
		due := task.DueDate.Format(time.RFC3339)
		output.DueDate = &due
	}
	if task.ContactID != nil {
		s := task.ContactID.String()
		output.ContactID = &s
	}
	if task.CompanyID != nil {
		s := task.CompanyID.String()
		output.CompanyID = &s
	}
	if task.DealID != nil {
		s := task.DealID.String()
		output.DealID = &s
	}

	return output
}
