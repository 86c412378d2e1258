// ABOUTME: Email template database operations
// ABOUTME: Handles template CRUD and listing
package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/sodamhq/sodam/models"
)

func CreateEmailTemplate(ctx context.Context, db *sql.DB, tmpl *models.EmailTemplate) error {
	tmpl.ID = uuid.New()
	now := time.Now().UTC()
	tmpl.CreatedAt = now
	tmpl.UpdatedAt = now

	_, err := db.ExecContext(ctx, `
		INSERT INTO email_templates (id, name, subject, body, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, tmpl.ID.String(), tmpl.Name, tmpl.Subject, tmpl.Body, tmpl.CreatedAt, tmpl.UpdatedAt)

	return err
}

func GetEmailTemplate(ctx context.Context, db *sql.DB, id uuid.UUID) (*models.EmailTemplate, error) {
	tmpl := &models.EmailTemplate{}

	err := db.QueryRowContext(ctx, `
		SELECT id, name, subject, body, created_at, updated_at
		FROM email_templates WHERE id = ?
	`, id.String()).Scan(&tmpl.ID, &tmpl.Name, &tmpl.Subject, &tmpl.Body, &tmpl.CreatedAt, &tmpl.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrTemplateNotFound
	}
	if err != nil {
		return nil, err
	}

	return tmpl, nil
}

func UpdateEmailTemplate(ctx context.Context, db *sql.DB, tmpl *models.EmailTemplate) error {
	tmpl.UpdatedAt = time.Now().UTC()

	res, err := db.ExecContext(ctx, `
		UPDATE email_templates SET name = ?, subject = ?, body = ?, updated_at = ? WHERE id = ?
	`, tmpl.Name, tmpl.Subject, tmpl.Body, tmpl.UpdatedAt, tmpl.ID.String())
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTemplateNotFound
	}

	return nil
}

func DeleteEmailTemplate(ctx context.Context, db *sql.DB, id uuid.UUID) error {
	res, err := db.ExecContext(ctx, `DELETE FROM email_templates WHERE id = ?`, id.String())
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTemplateNotFound
	}

	return nil
}

func ListEmailTemplates(ctx context.Context, db *sql.DB) ([]models.EmailTemplate, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, name, subject, body, created_at, updated_at
		FROM email_templates
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []models.EmailTemplate
	for rows.Next() {
		var t models.EmailTemplate
		if err := rows.Scan(&t.ID, &t.Name, &t.Subject, &t.Body, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}

	return templates, rows.Err()
}
