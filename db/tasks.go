// ABOUTME: Task database operations
// ABOUTME: Handles task CRUD, filtered listing, and completion toggle
package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/sodamhq/sodam/models"
)

func CreateTask(ctx context.Context, db *sql.DB, task *models.Task) error {
	task.ID = uuid.New()
	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now

	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO tasks (id, title, description, due_date, priority, is_completed, contact_id, company_id, deal_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, task.ID.String(), task.Title, task.Description, task.DueDate, string(task.Priority), task.IsCompleted,
		uuidPtrString(task.ContactID), uuidPtrString(task.CompanyID), uuidPtrString(task.DealID), task.CreatedAt, task.UpdatedAt)

	return err
}

func GetTask(ctx context.Context, db *sql.DB, id uuid.UUID) (*models.Task, error) {
	task := &models.Task{}
	var contactID, companyID, dealID sql.NullString
	var dueDate sql.NullTime

	err := db.QueryRowContext(ctx, `
		SELECT id, title, description, due_date, priority, is_completed, contact_id, company_id, deal_id, created_at, updated_at
		FROM tasks WHERE id = ?
	`, id.String()).Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&dueDate,
		&task.Priority,
		&task.IsCompleted,
		&contactID,
		&companyID,
		&dealID,
		&task.CreatedAt,
		&task.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, err
	}

	if dueDate.Valid {
		t := dueDate.Time
		task.DueDate = &t
	}
	task.ContactID = parseUUIDPtr(contactID)
	task.CompanyID = parseUUIDPtr(companyID)
	task.DealID = parseUUIDPtr(dealID)

	return task, nil
}

func UpdateTask(ctx context.Context, db *sql.DB, task *models.Task) error {
	task.UpdatedAt = time.Now().UTC()

	res, err := db.ExecContext(ctx, `
		UPDATE tasks
		SET title = ?, description = ?, due_date = ?, priority = ?, is_completed = ?, contact_id = ?, company_id = ?, deal_id = ?, updated_at = ?
		WHERE id = ?
	`, task.Title, task.Description, task.DueDate, string(task.Priority), task.IsCompleted,
		uuidPtrString(task.ContactID), uuidPtrString(task.CompanyID), uuidPtrString(task.DealID), task.UpdatedAt, task.ID.String())
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTaskNotFound
	}

	return nil
}

func DeleteTask(ctx context.Context, db *sql.DB, id uuid.UUID) error {
	res, err := db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id.String())
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTaskNotFound
	}

	return nil
}

// ToggleTaskComplete flips the completion flag and returns the updated task.
func ToggleTaskComplete(ctx context.Context, db *sql.DB, id uuid.UUID) (*models.Task, error) {
	task, err := GetTask(ctx, db, id)
	if err != nil {
		return nil, err
	}

	task.IsCompleted = !task.IsCompleted
	if err := UpdateTask(ctx, db, task); err != nil {
		return nil, err
	}

	return task, nil
}

// TaskFilter narrows ListTasks. Completed filters on the flag when set;
// the parent IDs narrow to one related entity.
type TaskFilter struct {
	Completed *bool
	Priority  models.TaskPriority
	ContactID *uuid.UUID
	CompanyID *uuid.UUID
	DealID    *uuid.UUID
}

func ListTasks(ctx context.Context, db *sql.DB, filter TaskFilter, page, limit int) ([]models.Task, int, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	where := "WHERE 1=1"
	args := []any{}
	if filter.Completed != nil {
		where += " AND is_completed = ?"
		args = append(args, *filter.Completed)
	}
	if filter.Priority != "" {
		where += " AND priority = ?"
		args = append(args, string(filter.Priority))
	}
	if filter.ContactID != nil {
		where += " AND contact_id = ?"
		args = append(args, filter.ContactID.String())
	}
	if filter.CompanyID != nil {
		where += " AND company_id = ?"
		args = append(args, filter.CompanyID.String())
	}
	if filter.DealID != nil {
		where += " AND deal_id = ?"
		args = append(args, filter.DealID.String())
	}

	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, (page-1)*limit)
	rows, err := db.QueryContext(ctx, `
		SELECT id, title, description, due_date, priority, is_completed, contact_id, company_id, deal_id, created_at, updated_at
		FROM tasks `+where+`
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		var task models.Task
		var contactID, companyID, dealID sql.NullString
		var dueDate sql.NullTime

		if err := rows.Scan(&task.ID, &task.Title, &task.Description, &dueDate, &task.Priority, &task.IsCompleted, &contactID, &companyID, &dealID, &task.CreatedAt, &task.UpdatedAt); err != nil {
			return nil, 0, err
		}

		if dueDate.Valid {
			t := dueDate.Time
			task.DueDate = &t
		}
		task.ContactID = parseUUIDPtr(contactID)
		task.CompanyID = parseUUIDPtr(companyID)
		task.DealID = parseUUIDPtr(dealID)

		tasks = append(tasks, task)
	}

	return tasks, total, rows.Err()
}
