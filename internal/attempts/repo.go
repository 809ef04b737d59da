// Package attempts stores the optional audit trail of submission attempts.
package attempts

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/customorder-backend/internal/submission"
	"github.com/angelmondragon/customorder-backend/pkg/db/models"
	"github.com/angelmondragon/customorder-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/customorder-backend/pkg/errors"
	"github.com/angelmondragon/customorder-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists submission attempts.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository backed by the provided DB.
func NewRepository(db *gorm.DB) (*Repository, error) {
	if db == nil {
		return nil, fmt.Errorf("db required")
	}
	return &Repository{db: db}, nil
}

// RecordAttempt satisfies submission.AuditRecorder.
func (r *Repository) RecordAttempt(ctx context.Context, attempt submission.Attempt) error {
	row := toModel(attempt)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("insert submission attempt: %w", err)
	}
	return nil
}

// Page is one newest-first slice of a session's attempts.
type Page struct {
	Attempts   []models.SubmissionAttempt `json:"attempts"`
	NextCursor string                     `json:"nextCursor,omitempty"`
}

// ListBySession returns the newest attempts for a session first, continuing
// after params.Cursor when it is set.
func (r *Repository) ListBySession(ctx context.Context, sessionID string, params pagination.Params) (*Page, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Where("session_id = ?", strings.TrimSpace(sessionID))
	if cursor != nil {
		query = query.Where("(submitted_at < ?) OR (submitted_at = ? AND id < ?)", cursor.At, cursor.At, cursor.ID)
	}
	var rows []models.SubmissionAttempt
	err = query.
		Order("submitted_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(limit)).
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "list submission attempts")
	}

	page := &Page{Attempts: rows}
	if len(rows) > limit {
		page.Attempts = rows[:limit]
		last := page.Attempts[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{At: last.SubmittedAt, ID: last.ID})
	}
	return page, nil
}

type outcomeCount struct {
	Outcome enums.SubmissionOutcome
	Total   int64
}

// CountByOutcome groups every stored attempt by outcome.
func (r *Repository) CountByOutcome(ctx context.Context) (map[enums.SubmissionOutcome]int64, error) {
	var rows []outcomeCount
	err := r.db.WithContext(ctx).
		Model(&models.SubmissionAttempt{}).
		Select("outcome, COUNT(*) AS total").
		Group("outcome").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count submission attempts: %w", err)
	}
	out := make(map[enums.SubmissionOutcome]int64, len(rows))
	for _, row := range rows {
		out[row.Outcome] = row.Total
	}
	return out, nil
}

func toModel(a submission.Attempt) models.SubmissionAttempt {
	row := models.SubmissionAttempt{
		ID:              uuid.New(),
		SessionID:       a.SessionID,
		Outcome:         a.Outcome,
		ProductCount:    a.ProductCount,
		Quantity:        a.Quantity,
		Quote:           a.Quote,
		UploadAttempted: a.UploadAttempted,
		UploadSucceeded: a.UploadSucceeded,
		DurationMS:      a.Duration.Milliseconds(),
		SubmittedAt:     a.SubmittedAt.UTC(),
	}
	if a.ErrorCode != "" {
		code := a.ErrorCode
		row.ErrorCode = &code
	}
	if !a.Quote && a.ProductCount > 0 {
		total := a.EstimatedTotal
		row.EstimatedTotal = &total
	}
	if a.StorageProvider != "" {
		provider := a.StorageProvider
		row.StorageProvider = &provider
	}
	return row
}
