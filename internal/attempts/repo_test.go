package attempts

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/angelmondragon/customorder-backend/internal/submission"
	"github.com/angelmondragon/customorder-backend/pkg/db/models"
	"github.com/angelmondragon/customorder-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/customorder-backend/pkg/errors"
	"github.com/angelmondragon/customorder-backend/pkg/pagination"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.SubmissionAttempt{}))
	repo, err := NewRepository(conn)
	require.NoError(t, err)
	return repo
}

func TestRecordAndListAttempts(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 5, 15, 0, 0, 0, time.UTC)

	require.NoError(t, repo.RecordAttempt(ctx, submission.Attempt{
		SessionID:    "s1",
		Outcome:      enums.SubmissionDispatchError,
		ErrorCode:    "DISPATCH_ERROR",
		ProductCount: 1,
		Quantity:     100,
		SubmittedAt:  base,
		Duration:     1500 * time.Millisecond,
	}))
	require.NoError(t, repo.RecordAttempt(ctx, submission.Attempt{
		SessionID:       "s1",
		Outcome:         enums.SubmissionSent,
		ProductCount:    1,
		Quantity:        100,
		EstimatedTotal:  decimal.NewFromInt(3000),
		UploadAttempted: true,
		UploadSucceeded: true,
		StorageProvider: enums.StorageProviderDrive,
		SubmittedAt:     base.Add(time.Minute),
	}))
	require.NoError(t, repo.RecordAttempt(ctx, submission.Attempt{SessionID: "s2", Outcome: enums.SubmissionInvalid, SubmittedAt: base}))

	page, err := repo.ListBySession(ctx, "s1", pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page.Attempts, 2)
	assert.Empty(t, page.NextCursor)
	rows := page.Attempts

	latest := rows[0]
	assert.Equal(t, enums.SubmissionSent, latest.Outcome)
	assert.Nil(t, latest.ErrorCode)
	require.NotNil(t, latest.EstimatedTotal)
	assert.True(t, latest.EstimatedTotal.Equal(decimal.NewFromInt(3000)))
	require.NotNil(t, latest.StorageProvider)
	assert.Equal(t, enums.StorageProviderDrive, *latest.StorageProvider)

	failed := rows[1]
	require.NotNil(t, failed.ErrorCode)
	assert.Equal(t, "DISPATCH_ERROR", *failed.ErrorCode)
	assert.Equal(t, int64(1500), failed.DurationMS)

	other, err := repo.ListBySession(ctx, "s2", pagination.Params{Limit: 5})
	require.NoError(t, err)
	require.Len(t, other.Attempts, 1)
	invalid := other.Attempts[0]
	assert.Nil(t, invalid.EstimatedTotal, "attempts without priced products store no total")
	assert.Nil(t, invalid.StorageProvider)
}

func TestListBySessionPages(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 5, 15, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.RecordAttempt(ctx, submission.Attempt{
			SessionID:   "paged",
			Outcome:     enums.SubmissionDispatchError,
			Quantity:    int64(100 + i),
			SubmittedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	var quantities []int64
	params := pagination.Params{Limit: 2}
	for pages := 0; ; pages++ {
		require.Less(t, pages, 5, "cursor never ran out")
		page, err := repo.ListBySession(ctx, "paged", params)
		require.NoError(t, err)
		for _, row := range page.Attempts {
			quantities = append(quantities, row.Quantity)
		}
		if page.NextCursor == "" {
			break
		}
		params.Cursor = page.NextCursor
	}
	assert.Equal(t, []int64{104, 103, 102, 101, 100}, quantities)
}

func TestListBySessionRejectsBadCursor(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.ListBySession(context.Background(), "s", pagination.Params{Cursor: "%%%"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestCountByOutcome(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	for _, outcome := range []enums.SubmissionOutcome{enums.SubmissionSent, enums.SubmissionSent, enums.SubmissionNotConfigured} {
		require.NoError(t, repo.RecordAttempt(ctx, submission.Attempt{SessionID: "s", Outcome: outcome, SubmittedAt: time.Now()}))
	}

	counts, err := repo.CountByOutcome(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[enums.SubmissionSent])
	assert.Equal(t, int64(1), counts[enums.SubmissionNotConfigured])
}

func TestNewRepositoryRequiresDB(t *testing.T) {
	_, err := NewRepository(nil)
	assert.Error(t, err)
}
