// ABOUTME: Company database operations
// ABOUTME: Handles company CRUD, listing, and delete impact preview
package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/sodamhq/sodam/models"
)

func CreateCompany(ctx context.Context, db *sql.DB, company *models.Company) error {
	company.ID = uuid.New()
	now := time.Now().UTC()
	company.CreatedAt = now
	company.UpdatedAt = now

	_, err := db.ExecContext(ctx, `
		INSERT INTO companies (id, name, industry, website, address, employee_count, memo, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, company.ID.String(), company.Name, company.Industry, company.Website, company.Address, company.EmployeeCount, company.Memo, company.CreatedAt, company.UpdatedAt)

	return err
}

func GetCompany(ctx context.Context, db *sql.DB, id uuid.UUID) (*models.Company, error) {
	company := &models.Company{}
	var employeeCount sql.NullInt64

	err := db.QueryRowContext(ctx, `
		SELECT id, name, industry, website, address, employee_count, memo, created_at, updated_at
		FROM companies WHERE id = ?
	`, id.String()).Scan(
		&company.ID,
		&company.Name,
		&company.Industry,
		&company.Website,
		&company.Address,
		&employeeCount,
		&company.Memo,
		&company.CreatedAt,
		&company.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrCompanyNotFound
	}
	if err != nil {
		return nil, err
	}

	if employeeCount.Valid {
		n := int(employeeCount.Int64)
		company.EmployeeCount = &n
	}

	return company, nil
}

func UpdateCompany(ctx context.Context, db *sql.DB, company *models.Company) error {
	company.UpdatedAt = time.Now().UTC()

	res, err := db.ExecContext(ctx, `
		UPDATE companies
		SET name = ?, industry = ?, website = ?, address = ?, employee_count = ?, memo = ?, updated_at = ?
		WHERE id = ?
	`, company.Name, company.Industry, company.Website, company.Address, company.EmployeeCount, company.Memo, company.UpdatedAt, company.ID.String())
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCompanyNotFound
	}

	return nil
}

func DeleteCompany(ctx context.Context, db *sql.DB, id uuid.UUID) error {
	res, err := db.ExecContext(ctx, `DELETE FROM companies WHERE id = ?`, id.String())
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCompanyNotFound
	}

	return nil
}

func ListCompanies(ctx context.Context, db *sql.DB, page, limit int) ([]models.Company, int, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM companies`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, name, industry, website, address, employee_count, memo, created_at, updated_at
		FROM companies
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var companies []models.Company
	for rows.Next() {
		var c models.Company
		var employeeCount sql.NullInt64

		if err := rows.Scan(&c.ID, &c.Name, &c.Industry, &c.Website, &c.Address, &employeeCount, &c.Memo, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, err
		}

		if employeeCount.Valid {
			n := int(employeeCount.Int64)
			c.EmployeeCount = &n
		}

		companies = append(companies, c)
	}

	return companies, total, rows.Err()
}

func FindCompanyByName(ctx context.Context, db *sql.DB, name string) (*models.Company, error) {
	var id string
	err := db.QueryRowContext(ctx, `SELECT id FROM companies WHERE name = ? LIMIT 1`, name).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	companyID, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}

	return GetCompany(ctx, db, companyID)
}

// DeleteImpact summarizes what a delete would do to related rows: which
// references get nulled out and which rows cascade away.
type DeleteImpact struct {
	EntityName string `json:"entityName"`
	SetNull    struct {
		Contacts int `json:"contacts"`
		Deals    int `json:"deals"`
	} `json:"setNull"`
	Cascade struct {
		Activities int `json:"activities"`
		Tasks      int `json:"tasks"`
	} `json:"cascade"`
}

func CompanyDeletePreview(ctx context.Context, db *sql.DB, id uuid.UUID) (*DeleteImpact, error) {
	company, err := GetCompany(ctx, db, id)
	if err != nil {
		return nil, err
	}

	impact := &DeleteImpact{EntityName: company.Name}
	cid := id.String()

	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contacts WHERE company_id = ?`, cid).Scan(&impact.SetNull.Contacts); err != nil {
		return nil, err
	}
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM deals WHERE company_id = ?`, cid).Scan(&impact.SetNull.Deals); err != nil {
		return nil, err
	}
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM activities WHERE company_id = ?`, cid).Scan(&impact.Cascade.Activities); err != nil {
		return nil, err
	}
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE company_id = ?`, cid).Scan(&impact.Cascade.Tasks); err != nil {
		return nil, err
	}

	return impact, nil
}
