// ABOUTME: Optimistic-concurrency deal stage transitions
// ABOUTME: Atomically updates a deal's stage and appends the audit activity
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sodamhq/sodam/models"
)

// versionTolerance is how far the client's updated_at may diverge from the
// stored value and still count as the same version. The slack absorbs
// sub-second precision loss when timestamps round-trip through JSON.
const versionTolerance = 1000 * time.Millisecond

// sameVersion reports whether two version tokens refer to the same deal
// revision under the tolerance window.
func sameVersion(a, b time.Time) bool {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return d <= versionTolerance
}

// TransitionStage moves a deal to a new pipeline stage, guarded by the
// updated_at value the client captured when it last read the deal.
//
// The read, version check, stage update, and audit activity insert all run
// in one transaction. Either the deal row and its activity both commit or
// neither does. Concurrent transitions against the same deal serialize on
// the store: the loser sees the winner's updated_at and gets ErrStaleDeal.
//
// On success the returned deal carries the new updated_at, which the caller
// must use as the version token for its next transition.
func TransitionStage(ctx context.Context, db *sql.DB, dealID uuid.UUID, stage models.DealStage, clientUpdatedAt time.Time) (*models.Deal, error) {
	if !models.ValidStage(stage) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStage, stage)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	current, err := getDeal(ctx, tx, dealID)
	if err != nil {
		return nil, err
	}

	if !sameVersion(clientUpdatedAt, current.UpdatedAt) {
		return nil, ErrStaleDeal
	}

	now := time.Now().UTC()
	if !now.After(current.UpdatedAt) {
		// updated_at must be strictly increasing per mutation.
		now = current.UpdatedAt.Add(time.Millisecond)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE deals SET stage = ?, updated_at = ? WHERE id = ?
	`, string(stage), now, dealID.String()); err != nil {
		return nil, err
	}

	if err := appendStageActivity(ctx, tx, dealID, current.Stage, stage, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return GetDeal(ctx, db, dealID)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// appendStageActivity inserts the audit record describing a stage change.
// It only ever runs inside the caller's transaction and never commits on
// its own.
func appendStageActivity(ctx context.Context, tx execer, dealID uuid.UUID, oldStage, newStage models.DealStage, now time.Time) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO activities (id, type, title, description, deal_id, created_at, updated_at)
		VALUES (?, ?, ?, '', ?, ?, ?)
	`, uuid.New().String(), string(models.ActivityNote), StageChangeTitle(oldStage, newStage), dealID.String(), now, now)
	return err
}

// StageChangeTitle formats the audit activity title for a stage change,
// embedding the literal old and new stage identifiers.
func StageChangeTitle(oldStage, newStage models.DealStage) string {
	return fmt.Sprintf("단계 변경: %s → %s", oldStage, newStage)
}
