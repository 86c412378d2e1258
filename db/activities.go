// ABOUTME: Activity database operations
// ABOUTME: Handles activity CRUD, filtered listing, and completion
package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/sodamhq/sodam/models"
)

func CreateActivity(ctx context.Context, db *sql.DB, activity *models.Activity) error {
	activity.ID = uuid.New()
	now := time.Now().UTC()
	activity.CreatedAt = now
	activity.UpdatedAt = now

	_, err := db.ExecContext(ctx, `
		INSERT INTO activities (id, type, title, description, scheduled_at, completed_at, contact_id, company_id, deal_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, activity.ID.String(), string(activity.Type), activity.Title, activity.Description, activity.ScheduledAt, activity.CompletedAt,
		uuidPtrString(activity.ContactID), uuidPtrString(activity.CompanyID), uuidPtrString(activity.DealID), activity.CreatedAt, activity.UpdatedAt)

	return err
}

func GetActivity(ctx context.Context, db *sql.DB, id uuid.UUID) (*models.Activity, error) {
	activity := &models.Activity{}
	var contactID, companyID, dealID sql.NullString
	var scheduledAt, completedAt sql.NullTime

	err := db.QueryRowContext(ctx, `
		SELECT id, type, title, description, scheduled_at, completed_at, contact_id, company_id, deal_id, created_at, updated_at
		FROM activities WHERE id = ?
	`, id.String()).Scan(
		&activity.ID,
		&activity.Type,
		&activity.Title,
		&activity.Description,
		&scheduledAt,
		&completedAt,
		&contactID,
		&companyID,
		&dealID,
		&activity.CreatedAt,
		&activity.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrActivityNotFound
	}
	if err != nil {
		return nil, err
	}

	if scheduledAt.Valid {
		t := scheduledAt.Time
		activity.ScheduledAt = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		activity.CompletedAt = &t
	}
	activity.ContactID = parseUUIDPtr(contactID)
	activity.CompanyID = parseUUIDPtr(companyID)
	activity.DealID = parseUUIDPtr(dealID)

	return activity, nil
}

func UpdateActivity(ctx context.Context, db *sql.DB, activity *models.Activity) error {
	activity.UpdatedAt = time.Now().UTC()

	res, err := db.ExecContext(ctx, `
		UPDATE activities
		SET type = ?, title = ?, description = ?, scheduled_at = ?, completed_at = ?, contact_id = ?, company_id = ?, deal_id = ?, updated_at = ?
		WHERE id = ?
	`, string(activity.Type), activity.Title, activity.Description, activity.ScheduledAt, activity.CompletedAt,
		uuidPtrString(activity.ContactID), uuidPtrString(activity.CompanyID), uuidPtrString(activity.DealID), activity.UpdatedAt, activity.ID.String())
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrActivityNotFound
	}

	return nil
}

func DeleteActivity(ctx context.Context, db *sql.DB, id uuid.UUID) error {
	res, err := db.ExecContext(ctx, `DELETE FROM activities WHERE id = ?`, id.String())
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrActivityNotFound
	}

	return nil
}

// CompleteActivity marks an activity done at the given time (now if zero).
func CompleteActivity(ctx context.Context, db *sql.DB, id uuid.UUID, completedAt time.Time) (*models.Activity, error) {
	if completedAt.IsZero() {
		completedAt = time.Now().UTC()
	}

	res, err := db.ExecContext(ctx, `
		UPDATE activities SET completed_at = ?, updated_at = ? WHERE id = ?
	`, completedAt, time.Now().UTC(), id.String())
	if err != nil {
		return nil, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrActivityNotFound
	}

	return GetActivity(ctx, db, id)
}

// ActivityFilter narrows ListActivities to one parent entity.
type ActivityFilter struct {
	ContactID *uuid.UUID
	CompanyID *uuid.UUID
	DealID    *uuid.UUID
}

func ListActivities(ctx context.Context, db *sql.DB, filter ActivityFilter, page, limit int) ([]models.Activity, int, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	where := ""
	args := []any{}
	switch {
	case filter.ContactID != nil:
		where = "WHERE contact_id = ?"
		args = append(args, filter.ContactID.String())
	case filter.CompanyID != nil:
		where = "WHERE company_id = ?"
		args = append(args, filter.CompanyID.String())
	case filter.DealID != nil:
		where = "WHERE deal_id = ?"
		args = append(args, filter.DealID.String())
	}

	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM activities `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, (page-1)*limit)
	rows, err := db.QueryContext(ctx, `
		SELECT id, type, title, description, scheduled_at, completed_at, contact_id, company_id, deal_id, created_at, updated_at
		FROM activities `+where+`
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var activities []models.Activity
	for rows.Next() {
		var a models.Activity
		var contactID, companyID, dealID sql.NullString
		var scheduledAt, completedAt sql.NullTime

		if err := rows.Scan(&a.ID, &a.Type, &a.Title, &a.Description, &scheduledAt, &completedAt, &contactID, &companyID, &dealID, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, 0, err
		}

		if scheduledAt.Valid {
			t := scheduledAt.Time
			a.ScheduledAt = &t
		}
		if completedAt.Valid {
			t := completedAt.Time
			a.CompletedAt = &t
		}
		a.ContactID = parseUUIDPtr(contactID)
		a.CompanyID = parseUUIDPtr(companyID)
		a.DealID = parseUUIDPtr(dealID)

		activities = append(activities, a)
	}

	return activities, total, rows.Err()
}
