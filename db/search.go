// ABOUTME: Cross-entity free-text search
// ABOUTME: LIKE matching over contacts, companies, and deals
package db

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/sodamhq/sodam/models"
)

// SearchResults groups matches per entity type.
type SearchResults struct {
	Contacts  []ContactMatch `json:"contacts"`
	Companies []CompanyMatch `json:"companies"`
	Deals     []DealMatch    `json:"deals"`
}

type ContactMatch struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email,omitempty"`
	Phone    string    `json:"phone,omitempty"`
	Position string    `json:"position,omitempty"`
}

type CompanyMatch struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Industry string    `json:"industry,omitempty"`
	Website  string    `json:"website,omitempty"`
}

type DealMatch struct {
	ID     uuid.UUID        `json:"id"`
	Title  string           `json:"title"`
	Amount int64            `json:"amount"`
	Stage  models.DealStage `json:"stage"`
}

// Search runs a case-insensitive substring match across contacts (name,
// email, phone), companies (name, industry, website), and deals (title).
func Search(ctx context.Context, db *sql.DB, query string, limit int) (*SearchResults, error) {
	results := &SearchResults{
		Contacts:  []ContactMatch{},
		Companies: []CompanyMatch{},
		Deals:     []DealMatch{},
	}

	if query == "" {
		return results, nil
	}
	if limit <= 0 {
		limit = 20
	}

	pattern := "%" + query + "%"

	rows, err := db.QueryContext(ctx, `
		SELECT id, name, email, phone, position
		FROM contacts
		WHERE name LIKE ? OR email LIKE ? OR phone LIKE ?
		LIMIT ?
	`, pattern, pattern, pattern, limit)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var m ContactMatch
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Phone, &m.Position); err != nil {
			rows.Close()
			return nil, err
		}
		results.Contacts = append(results.Contacts, m)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	rows, err = db.QueryContext(ctx, `
		SELECT id, name, industry, website
		FROM companies
		WHERE name LIKE ? OR industry LIKE ? OR website LIKE ?
		LIMIT ?
	`, pattern, pattern, pattern, limit)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var m CompanyMatch
		if err := rows.Scan(&m.ID, &m.Name, &m.Industry, &m.Website); err != nil {
			rows.Close()
			return nil, err
		}
		results.Companies = append(results.Companies, m)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	rows, err = db.QueryContext(ctx, `
		SELECT id, title, amount, stage
		FROM deals
		WHERE title LIKE ?
		LIMIT ?
	`, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var m DealMatch
		if err := rows.Scan(&m.ID, &m.Title, &m.Amount, &m.Stage); err != nil {
			return nil, err
		}
		results.Deals = append(results.Deals, m)
	}

	return results, rows.Err()
}
