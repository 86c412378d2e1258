// ABOUTME: Tag database operations
// ABOUTME: Handles tag CRUD and tag assignment for contacts, companies, and deals
package db

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sodamhq/sodam/models"
)

func CreateTag(ctx context.Context, db *sql.DB, tag *models.Tag) error {
	tag.ID = uuid.New()
	tag.CreatedAt = time.Now().UTC()

	_, err := db.ExecContext(ctx, `
		INSERT INTO tags (id, name, color, created_at)
		VALUES (?, ?, ?, ?)
	`, tag.ID.String(), tag.Name, tag.Color, tag.CreatedAt)

	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return ErrDuplicateTag
	}

	return err
}

func GetTag(ctx context.Context, db *sql.DB, id uuid.UUID) (*models.Tag, error) {
	tag := &models.Tag{}

	err := db.QueryRowContext(ctx, `
		SELECT id, name, color, created_at FROM tags WHERE id = ?
	`, id.String()).Scan(&tag.ID, &tag.Name, &tag.Color, &tag.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrTagNotFound
	}
	if err != nil {
		return nil, err
	}

	return tag, nil
}

func UpdateTag(ctx context.Context, db *sql.DB, tag *models.Tag) error {
	res, err := db.ExecContext(ctx, `
		UPDATE tags SET name = ?, color = ? WHERE id = ?
	`, tag.Name, tag.Color, tag.ID.String())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicateTag
		}
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTagNotFound
	}

	return nil
}

func DeleteTag(ctx context.Context, db *sql.DB, id uuid.UUID) error {
	res, err := db.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id.String())
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTagNotFound
	}

	return nil
}

func ListTags(ctx context.Context, db *sql.DB) ([]models.Tag, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, name, color, created_at FROM tags ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var tag models.Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.Color, &tag.CreatedAt); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}

	return tags, rows.Err()
}

// TagEntity names the junction tables a tag can attach through.
type TagEntity string

const (
	TagEntityContact TagEntity = "contact"
	TagEntityCompany TagEntity = "company"
	TagEntityDeal    TagEntity = "deal"
)

func (e TagEntity) table() string {
	switch e {
	case TagEntityContact:
		return "contact_tags"
	case TagEntityCompany:
		return "company_tags"
	case TagEntityDeal:
		return "deal_tags"
	}
	return ""
}

func (e TagEntity) column() string {
	switch e {
	case TagEntityContact:
		return "contact_id"
	case TagEntityCompany:
		return "company_id"
	case TagEntityDeal:
		return "deal_id"
	}
	return ""
}

// AssignTag links a tag to an entity. Re-assigning an existing pair is a
// no-op.
func AssignTag(ctx context.Context, db *sql.DB, entity TagEntity, entityID, tagID uuid.UUID) error {
	if _, err := GetTag(ctx, db, tagID); err != nil {
		return err
	}

	_, err := db.ExecContext(ctx, `
		INSERT OR IGNORE INTO `+entity.table()+` (`+entity.column()+`, tag_id, created_at)
		VALUES (?, ?, ?)
	`, entityID.String(), tagID.String(), time.Now().UTC())

	return err
}

func UnassignTag(ctx context.Context, db *sql.DB, entity TagEntity, entityID, tagID uuid.UUID) error {
	res, err := db.ExecContext(ctx, `
		DELETE FROM `+entity.table()+` WHERE `+entity.column()+` = ? AND tag_id = ?
	`, entityID.String(), tagID.String())
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTagNotFound
	}

	return nil
}

// ListEntityTags returns the tags attached to one contact, company, or deal.
func ListEntityTags(ctx context.Context, db *sql.DB, entity TagEntity, entityID uuid.UUID) ([]models.Tag, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT t.id, t.name, t.color, t.created_at
		FROM tags t
		JOIN `+entity.table()+` j ON j.tag_id = t.id
		WHERE j.`+entity.column()+` = ?
		ORDER BY t.name
	`, entityID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var tag models.Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.Color, &tag.CreatedAt); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}

	return tags, rows.Err()
}
