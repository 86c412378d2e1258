// ABOUTME: Contact database operations
// ABOUTME: Handles contact CRUD, listing, and delete impact preview
package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/sodamhq/sodam/models"
)

func CreateContact(ctx context.Context, db *sql.DB, contact *models.Contact) error {
	contact.ID = uuid.New()
	now := time.Now().UTC()
	contact.CreatedAt = now
	contact.UpdatedAt = now

	_, err := db.ExecContext(ctx, `
		INSERT INTO contacts (id, name, email, phone, position, company_id, memo, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, contact.ID.String(), contact.Name, contact.Email, contact.Phone, contact.Position, uuidPtrString(contact.CompanyID), contact.Memo, contact.CreatedAt, contact.UpdatedAt)

	return err
}

func GetContact(ctx context.Context, db *sql.DB, id uuid.UUID) (*models.Contact, error) {
	contact := &models.Contact{}
	var companyID sql.NullString

	err := db.QueryRowContext(ctx, `
		SELECT id, name, email, phone, position, company_id, memo, created_at, updated_at
		FROM contacts WHERE id = ?
	`, id.String()).Scan(
		&contact.ID,
		&contact.Name,
		&contact.Email,
		&contact.Phone,
		&contact.Position,
		&companyID,
		&contact.Memo,
		&contact.CreatedAt,
		&contact.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrContactNotFound
	}
	if err != nil {
		return nil, err
	}

	contact.CompanyID = parseUUIDPtr(companyID)

	return contact, nil
}

func UpdateContact(ctx context.Context, db *sql.DB, contact *models.Contact) error {
	contact.UpdatedAt = time.Now().UTC()

	res, err := db.ExecContext(ctx, `
		UPDATE contacts
		SET name = ?, email = ?, phone = ?, position = ?, company_id = ?, memo = ?, updated_at = ?
		WHERE id = ?
	`, contact.Name, contact.Email, contact.Phone, contact.Position, uuidPtrString(contact.CompanyID), contact.Memo, contact.UpdatedAt, contact.ID.String())
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrContactNotFound
	}

	return nil
}

func DeleteContact(ctx context.Context, db *sql.DB, id uuid.UUID) error {
	res, err := db.ExecContext(ctx, `DELETE FROM contacts WHERE id = ?`, id.String())
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrContactNotFound
	}

	return nil
}

func ListContacts(ctx context.Context, db *sql.DB, companyID *uuid.UUID, page, limit int) ([]models.Contact, int, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	where := ""
	args := []any{}
	if companyID != nil {
		where = "WHERE company_id = ?"
		args = append(args, companyID.String())
	}

	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contacts `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, (page-1)*limit)
	rows, err := db.QueryContext(ctx, `
		SELECT id, name, email, phone, position, company_id, memo, created_at, updated_at
		FROM contacts `+where+`
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var contacts []models.Contact
	for rows.Next() {
		var c models.Contact
		var cid sql.NullString

		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Position, &cid, &c.Memo, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, err
		}

		c.CompanyID = parseUUIDPtr(cid)
		contacts = append(contacts, c)
	}

	return contacts, total, rows.Err()
}

func FindContactByName(ctx context.Context, db *sql.DB, name string) (*models.Contact, error) {
	var id string
	err := db.QueryRowContext(ctx, `SELECT id FROM contacts WHERE name = ? LIMIT 1`, name).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	contactID, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}

	return GetContact(ctx, db, contactID)
}

func ContactDeletePreview(ctx context.Context, db *sql.DB, id uuid.UUID) (*DeleteImpact, error) {
	contact, err := GetContact(ctx, db, id)
	if err != nil {
		return nil, err
	}

	impact := &DeleteImpact{EntityName: contact.Name}
	cid := id.String()

	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM deals WHERE contact_id = ?`, cid).Scan(&impact.SetNull.Deals); err != nil {
		return nil, err
	}
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM activities WHERE contact_id = ?`, cid).Scan(&impact.Cascade.Activities); err != nil {
		return nil, err
	}
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE contact_id = ?`, cid).Scan(&impact.Cascade.Tasks); err != nil {
		return nil, err
	}

	return impact, nil
}

// uuidPtrString converts an optional UUID to the TEXT column value.
func uuidPtrString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

// parseUUIDPtr converts a nullable TEXT column back to an optional UUID.
func parseUUIDPtr(s sql.NullString) *uuid.UUID {
	if !s.Valid {
		return nil
	}
	id, err := uuid.Parse(s.String)
	if err != nil {
		return nil
	}
	return &id
}
