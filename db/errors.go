// ABOUTME: Sentinel errors shared by the database layer
// ABOUTME: Callers map these onto HTTP/CLI/MCP error surfaces
package db

import "errors"

var (
	ErrCompanyNotFound  = errors.New("company not found")
	ErrContactNotFound  = errors.New("contact not found")
	ErrDealNotFound     = errors.New("deal not found")
	ErrActivityNotFound = errors.New("activity not found")
	ErrTaskNotFound     = errors.New("task not found")
	ErrTagNotFound      = errors.New("tag not found")
	ErrTemplateNotFound = errors.New("email template not found")

	// ErrStaleDeal means the client's version token diverged from the
	// stored updated_at by more than the tolerance window: another
	// writer committed after the client last read the deal.
	ErrStaleDeal = errors.New("deal has been modified by another user")

	// ErrInvalidStage means the requested stage is outside the closed
	// stage set. Normally caught by request validation before the store
	// is touched.
	ErrInvalidStage = errors.New("invalid deal stage")

	ErrDuplicateTag = errors.New("tag name already exists")
)
