// ABOUTME: Task CLI commands
// ABOUTME: Human-friendly commands for managing tasks
package cli

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/sodamhq/sodam/db"
	"github.com/sodamhq/sodam/models"
)

// AddTaskCommand adds a new task.
func AddTaskCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("add-task", flag.ExitOnError)
	title := fs.String("title", "", "Task title (required)")
	due := fs.String("due", "", "Due date, ISO 8601")
	priority := fs.String("priority", "medium", "Priority (low, medium, high)")
	dealID := fs.String("deal", "", "Deal UUID to attach to")
	_ = fs.Parse(args)

	if *title == "" {
		return fmt.Errorf("--title is required")
	}
	if !models.ValidPriority(models.TaskPriority(*priority)) {
		return fmt.Errorf("invalid priority: %s", *priority)
	}

	task := &models.Task{
		Title:    *title,
		Priority: models.TaskPriority(*priority),
	}

	if *due != "" {
		dueDate, err := time.Parse(time.RFC3339, *due)
		if err != nil {
			return fmt.Errorf("invalid --due value (use ISO 8601/RFC3339): %w", err)
		}
		task.DueDate = &dueDate
	}

	if *dealID != "" {
		id, err := uuid.Parse(*dealID)
		if err != nil {
			return fmt.Errorf("invalid --deal value: %w", err)
		}
		task.DealID = &id
	}

	if err := db.CreateTask(context.Background(), database, task); err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	fmt.Printf("✓ Task created: %s (ID: %s)\n", task.Title, task.ID)
	return nil
}

// ListTasksCommand lists tasks, open ones by default.
func ListTasksCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("list-tasks", flag.ExitOnError)
	all := fs.Bool("all", false, "Include completed tasks")
	priority := fs.String("priority", "", "Filter by priority")
	limit := fs.Int("limit", 50, "Maximum results")
	_ = fs.Parse(args)

	filter := db.TaskFilter{Priority: models.TaskPriority(*priority)}
	if !*all {
		open := false
		filter.Completed = &open
	}
	if *priority != "" && !models.ValidPriority(filter.Priority) {
		return fmt.Errorf("invalid priority: %s", *priority)
	}

	tasks, total, err := db.ListTasks(context.Background(), database, filter, 1, *limit)
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}

	if len(tasks) == 0 {
		fmt.Println("No tasks found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TITLE\tPRIORITY\tDUE\tDONE\tID")
	_, _ = fmt.Fprintln(w, "-----\t--------\t---\t----\t--")

	for _, task := range tasks {
		due := "-"
		if task.DueDate != nil {
			due = task.DueDate.Format("2006-01-02")
		}
		done := " "
		if task.IsCompleted {
			done = "✓"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			task.Title, task.Priority, due, done, task.ID.String()[:8])
	}
	_ = w.Flush()

	fmt.Printf("\nShowing %d of %d task(s)\n", len(tasks), total)
	return nil
}

// CompleteTaskCommand toggles a task's completion flag.
func CompleteTaskCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("complete-task", flag.ExitOnError)
	_ = fs.Parse(args)

	if len(fs.Args()) != 1 {
		return fmt.Errorf("usage: complete-task <id>")
	}

	taskID, err := uuid.Parse(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("invalid task ID: %w", err)
	}

	task, err := db.ToggleTaskComplete(context.Background(), database, taskID)
	if err != nil {
		return err
	}

	state := "open"
	if task.IsCompleted {
		state = "done"
	}
	fmt.Printf("✓ Task %s is now %s\n", task.Title, state)
	return nil
}
