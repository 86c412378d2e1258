// ABOUTME: Deal database operations
// ABOUTME: Handles deal CRUD, stage-filtered listing, and pipeline summary
package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/sodamhq/sodam/models"
)

func CreateDeal(ctx context.Context, db *sql.DB, deal *models.Deal) error {
	deal.ID = uuid.New()
	now := time.Now().UTC()
	deal.CreatedAt = now
	deal.UpdatedAt = now

	if deal.Stage == "" {
		deal.Stage = models.StageLead
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO deals (id, title, amount, stage, expected_close_date, contact_id, company_id, memo, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, deal.ID.String(), deal.Title, deal.Amount, string(deal.Stage), deal.ExpectedCloseDate, uuidPtrString(deal.ContactID), uuidPtrString(deal.CompanyID), deal.Memo, deal.CreatedAt, deal.UpdatedAt)

	return err
}

func GetDeal(ctx context.Context, db *sql.DB, id uuid.UUID) (*models.Deal, error) {
	return getDeal(ctx, db, id)
}

// querier is satisfied by both *sql.DB and *sql.Tx so deal reads can run
// inside the stage transition transaction.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getDeal(ctx context.Context, q querier, id uuid.UUID) (*models.Deal, error) {
	deal := &models.Deal{}
	var contactID, companyID sql.NullString
	var expectedCloseDate sql.NullTime

	err := q.QueryRowContext(ctx, `
		SELECT id, title, amount, stage, expected_close_date, contact_id, company_id, memo, created_at, updated_at
		FROM deals WHERE id = ?
	`, id.String()).Scan(
		&deal.ID,
		&deal.Title,
		&deal.Amount,
		&deal.Stage,
		&expectedCloseDate,
		&contactID,
		&companyID,
		&deal.Memo,
		&deal.CreatedAt,
		&deal.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrDealNotFound
	}
	if err != nil {
		return nil, err
	}

	if expectedCloseDate.Valid {
		t := expectedCloseDate.Time
		deal.ExpectedCloseDate = &t
	}
	deal.ContactID = parseUUIDPtr(contactID)
	deal.CompanyID = parseUUIDPtr(companyID)

	return deal, nil
}

// UpdateDeal overwrites the mutable deal fields. Stage changes that need
// conflict detection go through TransitionStage instead, but if the update
// does carry a different stage the audit activity is still written, in the
// same transaction as the update.
func UpdateDeal(ctx context.Context, db *sql.DB, deal *models.Deal) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	current, err := getDeal(ctx, tx, deal.ID)
	if err != nil {
		return err
	}

	deal.UpdatedAt = time.Now().UTC()

	if _, err := tx.ExecContext(ctx, `
		UPDATE deals
		SET title = ?, amount = ?, stage = ?, expected_close_date = ?, contact_id = ?, company_id = ?, memo = ?, updated_at = ?
		WHERE id = ?
	`, deal.Title, deal.Amount, string(deal.Stage), deal.ExpectedCloseDate, uuidPtrString(deal.ContactID), uuidPtrString(deal.CompanyID), deal.Memo, deal.UpdatedAt, deal.ID.String()); err != nil {
		return err
	}

	if deal.Stage != current.Stage {
		if err := appendStageActivity(ctx, tx, deal.ID, current.Stage, deal.Stage, deal.UpdatedAt); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func DeleteDeal(ctx context.Context, db *sql.DB, id uuid.UUID) error {
	res, err := db.ExecContext(ctx, `DELETE FROM deals WHERE id = ?`, id.String())
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrDealNotFound
	}

	return nil
}

func ListDeals(ctx context.Context, db *sql.DB, stage models.DealStage, page, limit int) ([]models.Deal, int, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	where := ""
	args := []any{}
	if stage != "" {
		where = "WHERE stage = ?"
		args = append(args, string(stage))
	}

	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM deals `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, (page-1)*limit)
	rows, err := db.QueryContext(ctx, `
		SELECT id, title, amount, stage, expected_close_date, contact_id, company_id, memo, created_at, updated_at
		FROM deals `+where+`
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var deals []models.Deal
	for rows.Next() {
		var d models.Deal
		var contactID, companyID sql.NullString
		var expectedCloseDate sql.NullTime

		if err := rows.Scan(&d.ID, &d.Title, &d.Amount, &d.Stage, &expectedCloseDate, &contactID, &companyID, &d.Memo, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, 0, err
		}

		if expectedCloseDate.Valid {
			t := expectedCloseDate.Time
			d.ExpectedCloseDate = &t
		}
		d.ContactID = parseUUIDPtr(contactID)
		d.CompanyID = parseUUIDPtr(companyID)

		deals = append(deals, d)
	}

	return deals, total, rows.Err()
}

// StageSummary holds deal count and amount total for one pipeline stage.
type StageSummary struct {
	Count int   `json:"count"`
	Total int64 `json:"total"`
}

// DealStageSummary returns count and amount totals per stage, including
// zero rows for empty stages.
func DealStageSummary(ctx context.Context, db *sql.DB) (map[models.DealStage]StageSummary, error) {
	summary := make(map[models.DealStage]StageSummary, len(models.DealStages))
	for _, stage := range models.DealStages {
		summary[stage] = StageSummary{}
	}

	rows, err := db.QueryContext(ctx, `
		SELECT stage, COUNT(*), COALESCE(SUM(amount), 0)
		FROM deals
		GROUP BY stage
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var stage models.DealStage
		var s StageSummary
		if err := rows.Scan(&stage, &s.Count, &s.Total); err != nil {
			return nil, err
		}
		summary[stage] = s
	}

	return summary, rows.Err()
}
